//go:build integration

package libraryentry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/mkovalev/mybooks-backend/internal/adapter/postgres/libraryentry"
	"github.com/mkovalev/mybooks-backend/internal/adapter/postgres/testhelper"
	"github.com/mkovalev/mybooks-backend/internal/domain"
)

func TestRepo_InsertStoresTimestamp(t *testing.T) {
	t.Parallel()
	pool := testhelper.SetupTestDB(t)
	repo := libraryentry.New(pool)
	ctx := context.Background()

	w := testhelper.SeedWork(t, pool)
	addedAt := time.Now().UTC().Truncate(time.Microsecond)

	entry := &domain.LibraryEntry{
		ID:      uuid.New(),
		WorkID:  w.ID,
		Owned:   true,
		AddedAt: addedAt,
	}
	if err := repo.Insert(ctx, entry); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	got, err := repo.GetByWork(ctx, w.ID)
	if err != nil {
		t.Fatalf("GetByWork: %v", err)
	}
	if !got.AddedAt.Equal(addedAt) {
		t.Errorf("AddedAt = %v, want the value written at insert (%v)", got.AddedAt, addedAt)
	}
	if got.EditionID != uuid.Nil {
		t.Errorf("EditionID = %v, want uuid.Nil for an entry without a pinned edition", got.EditionID)
	}
}

func TestRepo_SecondEntryForWorkConflicts(t *testing.T) {
	t.Parallel()
	pool := testhelper.SetupTestDB(t)
	repo := libraryentry.New(pool)
	ctx := context.Background()

	w := testhelper.SeedWork(t, pool)
	testhelper.SeedLibraryEntry(t, pool, w.ID, uuid.Nil, false)

	err := repo.Insert(ctx, &domain.LibraryEntry{
		ID:      uuid.New(),
		WorkID:  w.ID,
		AddedAt: time.Now().UTC(),
	})
	if !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("Insert: got %v, want domain.ErrAlreadyExists for a second entry on the same work", err)
	}
}
