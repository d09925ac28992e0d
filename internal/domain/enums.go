package domain

// EntityKind identifies the kind of canonical entity. It is also the
// namespace key for the resolution cache: work and author mappings for the
// same external id string never collide.
type EntityKind string

const (
	EntityKindWork    EntityKind = "WORK"
	EntityKindEdition EntityKind = "EDITION"
	EntityKindAuthor  EntityKind = "AUTHOR"
)

func (k EntityKind) String() string { return string(k) }

func (k EntityKind) IsValid() bool {
	switch k {
	case EntityKindWork, EntityKindEdition, EntityKindAuthor:
		return true
	}
	return false
}

// ReviewStatus tracks how trustworthy an entity's descriptive payload is.
// It only ever advances: NEEDS_REVIEW -> VERIFIED -> USER_EDITED.
type ReviewStatus string

const (
	ReviewStatusNeedsReview ReviewStatus = "NEEDS_REVIEW"
	ReviewStatusVerified    ReviewStatus = "VERIFIED"
	ReviewStatusUserEdited  ReviewStatus = "USER_EDITED"
)

func (s ReviewStatus) String() string { return string(s) }

func (s ReviewStatus) IsValid() bool {
	switch s {
	case ReviewStatusNeedsReview, ReviewStatusVerified, ReviewStatusUserEdited:
		return true
	}
	return false
}

// Rank returns the position of the status on its ordering. Unknown values
// rank below NEEDS_REVIEW so they never displace a real status during merge.
func (s ReviewStatus) Rank() int {
	switch s {
	case ReviewStatusNeedsReview:
		return 1
	case ReviewStatusVerified:
		return 2
	case ReviewStatusUserEdited:
		return 3
	}
	return 0
}

// MaxReviewStatus returns the more advanced of two statuses.
func MaxReviewStatus(a, b ReviewStatus) ReviewStatus {
	if b.Rank() > a.Rank() {
		return b
	}
	return a
}

// EditionFormat is the physical or digital binding of an edition.
type EditionFormat string

const (
	FormatHardcover EditionFormat = "HARDCOVER"
	FormatPaperback EditionFormat = "PAPERBACK"
	FormatEbook     EditionFormat = "EBOOK"
	FormatAudiobook EditionFormat = "AUDIOBOOK"
	FormatUnknown   EditionFormat = "UNKNOWN"
)

func (f EditionFormat) String() string { return string(f) }

func (f EditionFormat) IsValid() bool {
	switch f {
	case FormatHardcover, FormatPaperback, FormatEbook, FormatAudiobook, FormatUnknown:
		return true
	}
	return false
}
