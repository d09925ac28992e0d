package domain

import (
	"time"

	"github.com/google/uuid"
)

// Work is the canonical record for one literary work, independent of any
// particular printing. It accumulates data from every provider record that
// resolves to it: identifier lists only grow, Synthetic only transitions
// true -> false, and ReviewStatus never regresses.
type Work struct {
	ID              uuid.UUID
	Title           string
	TitleNormalized string
	Subtitle        string
	Description     string
	Language        string
	FirstPubYear    *int
	CoverURL        string
	Contributors    []string
	ExternalIDs     []ExternalID
	Synthetic       bool
	PrimaryProvider string
	Quality         int
	ReviewStatus    ReviewStatus
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// WorkRecord is an immutable, provider-decoded description of a work before
// resolution. Producers: the CSV row mapper, search providers, shelf scans.
type WorkRecord struct {
	Title           string
	Subtitle        string
	Description     string
	Language        string
	FirstPubYear    *int
	CoverURL        string
	Contributors    []string
	ExternalIDs     []ExternalID
	Synthetic       bool
	PrimaryProvider string
	Quality         int
	ReviewStatus    ReviewStatus
}

// IDs returns the record's non-empty external identifiers in priority order.
func (r WorkRecord) IDs() []ExternalID {
	return CompactIDs(r.ExternalIDs)
}

// NewWorkFromRecord builds a fresh canonical work from a record. Used only by
// the resolver's create path.
func NewWorkFromRecord(r WorkRecord) *Work {
	now := time.Now().UTC()
	status := r.ReviewStatus
	if !status.IsValid() {
		status = ReviewStatusNeedsReview
	}
	return &Work{
		ID:              uuid.New(),
		Title:           r.Title,
		TitleNormalized: NormalizeText(r.Title),
		Subtitle:        r.Subtitle,
		Description:     r.Description,
		Language:        r.Language,
		FirstPubYear:    r.FirstPubYear,
		CoverURL:        r.CoverURL,
		Contributors:    unionStrings(nil, r.Contributors),
		ExternalIDs:     r.IDs(),
		Synthetic:       r.Synthetic,
		PrimaryProvider: r.PrimaryProvider,
		Quality:         r.Quality,
		ReviewStatus:    status,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// ApplyRecord merges a record into an existing work. The work's identity (ID)
// never changes, so callers holding a reference observe the enriched values.
//
// A non-synthetic record arriving at a synthetic work is an upgrade: the
// descriptive payload is overwritten wholesale and Synthetic flips to false.
// Otherwise the merge fills missing fields only.
func (w *Work) ApplyRecord(r WorkRecord) {
	w.ExternalIDs = UnionIDs(w.ExternalIDs, r.IDs())

	if w.Synthetic && !r.Synthetic {
		w.Title = r.Title
		w.TitleNormalized = NormalizeText(r.Title)
		w.Subtitle = r.Subtitle
		w.Description = r.Description
		w.Language = r.Language
		if r.FirstPubYear != nil {
			y := *r.FirstPubYear
			w.FirstPubYear = &y
		}
		w.CoverURL = r.CoverURL
		w.Contributors = unionStrings(nil, r.Contributors)
		w.PrimaryProvider = r.PrimaryProvider
		w.Synthetic = false
	} else {
		fillString(&w.Title, r.Title)
		w.TitleNormalized = NormalizeText(w.Title)
		fillString(&w.Subtitle, r.Subtitle)
		fillString(&w.Description, r.Description)
		fillString(&w.Language, r.Language)
		fillIntPtr(&w.FirstPubYear, r.FirstPubYear)
		fillString(&w.CoverURL, r.CoverURL)
		w.Contributors = unionStrings(w.Contributors, r.Contributors)
		fillString(&w.PrimaryProvider, r.PrimaryProvider)
	}

	w.ReviewStatus = MaxReviewStatus(w.ReviewStatus, r.ReviewStatus)
	w.Quality = maxInt(w.Quality, r.Quality)
	w.UpdatedAt = time.Now().UTC()
}

// EntityID returns the work's handle.
func (w *Work) EntityID() uuid.UUID { return w.ID }

// IDs returns the work's recorded external identifiers.
func (w *Work) IDs() []ExternalID { return w.ExternalIDs }
