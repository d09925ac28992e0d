package domain

import (
	"time"

	"github.com/google/uuid"
)

// Author is the canonical record for one contributor.
type Author struct {
	ID              uuid.UUID
	Name            string
	NameNormalized  string
	SortName        string
	Bio             string
	ExternalIDs     []ExternalID
	Synthetic       bool
	PrimaryProvider string
	Quality         int
	ReviewStatus    ReviewStatus
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// AuthorRecord is an immutable, provider-decoded description of an author.
type AuthorRecord struct {
	Name            string
	SortName        string
	Bio             string
	ExternalIDs     []ExternalID
	Synthetic       bool
	PrimaryProvider string
	Quality         int
	ReviewStatus    ReviewStatus
}

// IDs returns the record's non-empty external identifiers in priority order.
func (r AuthorRecord) IDs() []ExternalID {
	return CompactIDs(r.ExternalIDs)
}

// NewAuthorFromRecord builds a fresh canonical author from a record.
func NewAuthorFromRecord(r AuthorRecord) *Author {
	now := time.Now().UTC()
	status := r.ReviewStatus
	if !status.IsValid() {
		status = ReviewStatusNeedsReview
	}
	return &Author{
		ID:              uuid.New(),
		Name:            r.Name,
		NameNormalized:  NormalizeText(r.Name),
		SortName:        r.SortName,
		Bio:             r.Bio,
		ExternalIDs:     r.IDs(),
		Synthetic:       r.Synthetic,
		PrimaryProvider: r.PrimaryProvider,
		Quality:         r.Quality,
		ReviewStatus:    status,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// ApplyRecord merges a record into an existing author.
func (a *Author) ApplyRecord(r AuthorRecord) {
	a.ExternalIDs = UnionIDs(a.ExternalIDs, r.IDs())

	if a.Synthetic && !r.Synthetic {
		a.Name = r.Name
		a.NameNormalized = NormalizeText(r.Name)
		a.SortName = r.SortName
		a.Bio = r.Bio
		a.PrimaryProvider = r.PrimaryProvider
		a.Synthetic = false
	} else {
		fillString(&a.Name, r.Name)
		a.NameNormalized = NormalizeText(a.Name)
		fillString(&a.SortName, r.SortName)
		fillString(&a.Bio, r.Bio)
		fillString(&a.PrimaryProvider, r.PrimaryProvider)
	}

	a.ReviewStatus = MaxReviewStatus(a.ReviewStatus, r.ReviewStatus)
	a.Quality = maxInt(a.Quality, r.Quality)
	a.UpdatedAt = time.Now().UTC()
}

// EntityID returns the author's handle.
func (a *Author) EntityID() uuid.UUID { return a.ID }

// IDs returns the author's recorded external identifiers.
func (a *Author) IDs() []ExternalID { return a.ExternalIDs }
