package testhelper

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mkovalev/mybooks-backend/internal/domain"
)

// uniqueSuffix returns a short unique string for generating non-conflicting test data.
func uniqueSuffix() string {
	return uuid.New().String()[:8]
}

func marshalIDs(t *testing.T, ids []domain.ExternalID) []byte {
	t.Helper()
	if ids == nil {
		ids = []domain.ExternalID{}
	}
	raw, err := json.Marshal(ids)
	if err != nil {
		t.Fatalf("testhelper: marshal external ids: %v", err)
	}
	return raw
}

// SeedWork creates a work with the given external ids. Returns a filled domain.Work.
func SeedWork(t *testing.T, pool *pgxpool.Pool, ids ...domain.ExternalID) domain.Work {
	t.Helper()
	ctx := context.Background()

	suffix := uniqueSuffix()
	now := time.Now().UTC().Truncate(time.Microsecond)
	work := domain.Work{
		ID:              uuid.New(),
		Title:           "Test Work " + suffix,
		TitleNormalized: domain.NormalizeText("Test Work " + suffix),
		Contributors:    []string{"Test Author " + suffix},
		ExternalIDs:     domain.CompactIDs(ids),
		PrimaryProvider: "test",
		ReviewStatus:    domain.ReviewStatusNeedsReview,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO works (id, title, title_normalized, contributors, external_ids,
		                    synthetic, primary_provider, quality, review_status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		work.ID, work.Title, work.TitleNormalized, work.Contributors, marshalIDs(t, work.ExternalIDs),
		work.Synthetic, work.PrimaryProvider, work.Quality, work.ReviewStatus, work.CreatedAt, work.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedWork insert: %v", err)
	}

	return work
}

// SeedEdition creates an edition attached to a work. Returns a filled domain.Edition.
func SeedEdition(t *testing.T, pool *pgxpool.Pool, workID uuid.UUID, ids ...domain.ExternalID) domain.Edition {
	t.Helper()
	ctx := context.Background()

	suffix := uniqueSuffix()
	now := time.Now().UTC().Truncate(time.Microsecond)
	year := 2005
	edition := domain.Edition{
		ID:              uuid.New(),
		WorkID:          workID,
		Title:           "Test Edition " + suffix,
		Publisher:       "Test Press",
		PubYear:         &year,
		Format:          domain.FormatPaperback,
		ExternalIDs:     domain.CompactIDs(ids),
		PrimaryProvider: "test",
		ReviewStatus:    domain.ReviewStatusNeedsReview,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO editions (id, work_id, title, publisher, pub_year, format, external_ids,
		                       synthetic, primary_provider, quality, review_status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		edition.ID, edition.WorkID, edition.Title, edition.Publisher, edition.PubYear,
		edition.Format, marshalIDs(t, edition.ExternalIDs), edition.Synthetic,
		edition.PrimaryProvider, edition.Quality, edition.ReviewStatus, edition.CreatedAt, edition.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedEdition insert: %v", err)
	}

	return edition
}

// SeedAuthor creates an author. Returns a filled domain.Author.
func SeedAuthor(t *testing.T, pool *pgxpool.Pool, name string) domain.Author {
	t.Helper()
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Microsecond)
	author := domain.Author{
		ID:              uuid.New(),
		Name:            name,
		NameNormalized:  domain.NormalizeText(name),
		ExternalIDs:     []domain.ExternalID{},
		PrimaryProvider: "test",
		ReviewStatus:    domain.ReviewStatusNeedsReview,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO authors (id, name, name_normalized, external_ids,
		                      synthetic, primary_provider, quality, review_status, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		author.ID, author.Name, author.NameNormalized, marshalIDs(t, author.ExternalIDs),
		author.Synthetic, author.PrimaryProvider, author.Quality, author.ReviewStatus,
		author.CreatedAt, author.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedAuthor insert: %v", err)
	}

	return author
}

// SeedLibraryEntry puts a work on the shelf. Returns a filled domain.LibraryEntry.
func SeedLibraryEntry(t *testing.T, pool *pgxpool.Pool, workID, editionID uuid.UUID, owned bool) domain.LibraryEntry {
	t.Helper()
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Microsecond)
	entry := domain.LibraryEntry{
		ID:        uuid.New(),
		WorkID:    workID,
		EditionID: editionID,
		Owned:     owned,
		AddedAt:   now,
	}

	var edID *uuid.UUID
	if editionID != uuid.Nil {
		edID = &editionID
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO library_entries (id, work_id, edition_id, owned, added_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		entry.ID, entry.WorkID, edID, entry.Owned, entry.AddedAt,
	)
	if err != nil {
		t.Fatalf("testhelper: SeedLibraryEntry insert: %v", err)
	}

	return entry
}
