// Package libraryentry implements the shelf entry repository using PostgreSQL.
package libraryentry

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	postgres "github.com/mkovalev/mybooks-backend/internal/adapter/postgres"
	"github.com/mkovalev/mybooks-backend/internal/domain"
)

const table = "library_entries"

var columns = []string{"id", "work_id", "edition_id", "owned", "added_at"}

// Repo provides library entry persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new library entry repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

// Insert stores a new entry. One entry per work: a second insert for the
// same work returns domain.ErrAlreadyExists.
func (r *Repo) Insert(ctx context.Context, entry *domain.LibraryEntry) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	sql, args, err := postgres.Builder().
		Insert(table).
		Columns(columns...).
		Values(entry.ID, entry.WorkID, nullableUUID(entry.EditionID), entry.Owned,
			entry.AddedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	_, err = q.Exec(ctx, sql, args...)
	return postgres.MapError(err, "library_entry")
}

// List returns every entry, oldest first.
func (r *Repo) List(ctx context.Context) ([]domain.LibraryEntry, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	sql, args, err := postgres.Builder().
		Select(columns...).
		From(table).
		OrderBy("added_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, postgres.MapError(err, "library_entry")
	}
	defer rows.Close()

	var out []domain.LibraryEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, postgres.MapError(err, "library_entry")
		}
		out = append(out, e)
	}
	return out, postgres.MapError(rows.Err(), "library_entry")
}

// GetByWork returns the entry for a work, or domain.ErrNotFound.
func (r *Repo) GetByWork(ctx context.Context, workID uuid.UUID) (*domain.LibraryEntry, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	sql, args, err := postgres.Builder().
		Select(columns...).
		From(table).
		Where(squirrel.Eq{"work_id": workID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	e, err := scanEntry(q.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, postgres.MapError(err, "library_entry")
	}
	return &e, nil
}

// SetOwned marks or unmarks an entry as owned.
func (r *Repo) SetOwned(ctx context.Context, entryID uuid.UUID, owned bool) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	tag, err := q.Exec(ctx, "UPDATE library_entries SET owned = $1 WHERE id = $2", owned, entryID)
	if err != nil {
		return postgres.MapError(err, "library_entry")
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("library_entry %s: %w", entryID, domain.ErrNotFound)
	}
	return nil
}

// DeleteAll removes every entry. Used only by the library reset.
func (r *Repo) DeleteAll(ctx context.Context) error {
	q := postgres.QuerierFromCtx(ctx, r.db)
	_, err := q.Exec(ctx, "DELETE FROM library_entries")
	return postgres.MapError(err, "library_entry")
}

func scanEntry(row pgx.Row) (domain.LibraryEntry, error) {
	var (
		e         domain.LibraryEntry
		editionID *uuid.UUID
	)
	if err := row.Scan(&e.ID, &e.WorkID, &editionID, &e.Owned, &e.AddedAt); err != nil {
		return domain.LibraryEntry{}, err
	}
	if editionID != nil {
		e.EditionID = *editionID
	}
	return e, nil
}

func nullableUUID(id uuid.UUID) *uuid.UUID {
	if id == uuid.Nil {
		return nil
	}
	return &id
}
