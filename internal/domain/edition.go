package domain

import (
	"time"

	"github.com/google/uuid"
)

// Edition is the canonical record for one specific printing of a work.
// WorkID may be uuid.Nil for a synthetic edition whose parent work is not
// known yet; it is attached once, after the parent exists in the store.
type Edition struct {
	ID              uuid.UUID
	WorkID          uuid.UUID
	Title           string
	Publisher       string
	Language        string
	PubYear         *int
	PageCount       *int
	Format          EditionFormat
	CoverURL        string
	ExternalIDs     []ExternalID
	Synthetic       bool
	PrimaryProvider string
	Quality         int
	ReviewStatus    ReviewStatus
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// EditionRecord is an immutable, provider-decoded description of an edition.
// WorkID is filled in by the importer after the parent work has been
// resolved; providers themselves never know canonical work handles.
type EditionRecord struct {
	WorkID          uuid.UUID
	Title           string
	Publisher       string
	Language        string
	PubYear         *int
	PageCount       *int
	Format          EditionFormat
	CoverURL        string
	ExternalIDs     []ExternalID
	Synthetic       bool
	PrimaryProvider string
	Quality         int
	ReviewStatus    ReviewStatus
}

// IDs returns the record's non-empty external identifiers in priority order.
func (r EditionRecord) IDs() []ExternalID {
	return CompactIDs(r.ExternalIDs)
}

// NewEditionFromRecord builds a fresh canonical edition from a record.
func NewEditionFromRecord(r EditionRecord) *Edition {
	now := time.Now().UTC()
	status := r.ReviewStatus
	if !status.IsValid() {
		status = ReviewStatusNeedsReview
	}
	format := r.Format
	if !format.IsValid() {
		format = FormatUnknown
	}
	return &Edition{
		ID:              uuid.New(),
		WorkID:          r.WorkID,
		Title:           r.Title,
		Publisher:       r.Publisher,
		Language:        r.Language,
		PubYear:         r.PubYear,
		PageCount:       r.PageCount,
		Format:          format,
		CoverURL:        r.CoverURL,
		ExternalIDs:     r.IDs(),
		Synthetic:       r.Synthetic,
		PrimaryProvider: r.PrimaryProvider,
		Quality:         r.Quality,
		ReviewStatus:    status,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// ApplyRecord merges a record into an existing edition under the same rules
// as Work.ApplyRecord: union ids, upgrade on synthetic -> real, otherwise
// fill missing fields; ReviewStatus and Quality are monotone.
func (e *Edition) ApplyRecord(r EditionRecord) {
	e.ExternalIDs = UnionIDs(e.ExternalIDs, r.IDs())

	if e.Synthetic && !r.Synthetic {
		e.Title = r.Title
		e.Publisher = r.Publisher
		e.Language = r.Language
		if r.PubYear != nil {
			y := *r.PubYear
			e.PubYear = &y
		}
		if r.PageCount != nil {
			p := *r.PageCount
			e.PageCount = &p
		}
		if r.Format.IsValid() {
			e.Format = r.Format
		}
		e.CoverURL = r.CoverURL
		e.PrimaryProvider = r.PrimaryProvider
		e.Synthetic = false
	} else {
		fillString(&e.Title, r.Title)
		fillString(&e.Publisher, r.Publisher)
		fillString(&e.Language, r.Language)
		fillIntPtr(&e.PubYear, r.PubYear)
		fillIntPtr(&e.PageCount, r.PageCount)
		if (e.Format == "" || e.Format == FormatUnknown) && r.Format.IsValid() && r.Format != FormatUnknown {
			e.Format = r.Format
		}
		fillString(&e.CoverURL, r.CoverURL)
		fillString(&e.PrimaryProvider, r.PrimaryProvider)
	}

	if e.WorkID == uuid.Nil && r.WorkID != uuid.Nil {
		e.WorkID = r.WorkID
	}

	e.ReviewStatus = MaxReviewStatus(e.ReviewStatus, r.ReviewStatus)
	e.Quality = maxInt(e.Quality, r.Quality)
	e.UpdatedAt = time.Now().UTC()
}

// EntityID returns the edition's handle.
func (e *Edition) EntityID() uuid.UUID { return e.ID }

// IDs returns the edition's recorded external identifiers.
func (e *Edition) IDs() []ExternalID { return e.ExternalIDs }
