// Package edition implements the canonical edition repository using PostgreSQL.
package edition

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	postgres "github.com/mkovalev/mybooks-backend/internal/adapter/postgres"
	"github.com/mkovalev/mybooks-backend/internal/domain"
)

const table = "editions"

var columns = []string{
	"id", "work_id", "title", "publisher", "language", "pub_year", "page_count",
	"format", "cover_url", "external_ids", "synthetic", "primary_provider",
	"quality", "review_status", "created_at", "updated_at",
}

// Repo provides edition persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new edition repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

// Insert stores a new edition.
func (r *Repo) Insert(ctx context.Context, e *domain.Edition) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	ids, err := json.Marshal(e.ExternalIDs)
	if err != nil {
		return fmt.Errorf("marshal external ids: %w", err)
	}

	sql, args, err := postgres.Builder().
		Insert(table).
		Columns(columns...).
		Values(e.ID, nullableUUID(e.WorkID), e.Title, e.Publisher, e.Language,
			e.PubYear, e.PageCount, e.Format, e.CoverURL, ids, e.Synthetic,
			e.PrimaryProvider, e.Quality, e.ReviewStatus, e.CreatedAt, e.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	_, err = q.Exec(ctx, sql, args...)
	return postgres.MapError(err, "edition")
}

// Update overwrites a stored edition.
func (r *Repo) Update(ctx context.Context, e *domain.Edition) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	ids, err := json.Marshal(e.ExternalIDs)
	if err != nil {
		return fmt.Errorf("marshal external ids: %w", err)
	}

	sql, args, err := postgres.Builder().
		Update(table).
		Set("work_id", nullableUUID(e.WorkID)).
		Set("title", e.Title).
		Set("publisher", e.Publisher).
		Set("language", e.Language).
		Set("pub_year", e.PubYear).
		Set("page_count", e.PageCount).
		Set("format", e.Format).
		Set("cover_url", e.CoverURL).
		Set("external_ids", ids).
		Set("synthetic", e.Synthetic).
		Set("primary_provider", e.PrimaryProvider).
		Set("quality", e.Quality).
		Set("review_status", e.ReviewStatus).
		Set("updated_at", e.UpdatedAt).
		Where(squirrel.Eq{"id": e.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(err, "edition")
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("edition %s: %w", e.ID, domain.ErrNotFound)
	}
	return nil
}

// Exists reports whether an edition with the given id is stored.
func (r *Repo) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	var exists bool
	err := q.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM editions WHERE id = $1)", id).Scan(&exists)
	if err != nil {
		return false, postgres.MapError(err, "edition")
	}
	return exists, nil
}

// GetByID returns an edition by primary key.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Edition, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	sql, args, err := postgres.Builder().
		Select(columns...).
		From(table).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	e, err := scanEdition(q.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, postgres.MapError(err, "edition")
	}
	return e, nil
}

// FindByExternalIDs returns every edition whose identifier set intersects ids.
func (r *Repo) FindByExternalIDs(ctx context.Context, ids []domain.ExternalID) ([]*domain.Edition, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	q := postgres.QuerierFromCtx(ctx, r.db)

	or := make(squirrel.Or, 0, len(ids))
	for _, id := range ids {
		doc, err := json.Marshal([]domain.ExternalID{id})
		if err != nil {
			return nil, fmt.Errorf("marshal external id: %w", err)
		}
		or = append(or, squirrel.Expr("external_ids @> ?::jsonb", doc))
	}

	sql, args, err := postgres.Builder().
		Select(columns...).
		From(table).
		Where(or).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	return r.queryMany(ctx, q, sql, args)
}

// ListByWork returns every edition attached to a work, oldest first so the
// scorer's input order is stable across calls.
func (r *Repo) ListByWork(ctx context.Context, workID uuid.UUID) ([]*domain.Edition, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	sql, args, err := postgres.Builder().
		Select(columns...).
		From(table).
		Where(squirrel.Eq{"work_id": workID}).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	return r.queryMany(ctx, q, sql, args)
}

// DeleteAll removes every edition. Used only by the library reset.
func (r *Repo) DeleteAll(ctx context.Context) error {
	q := postgres.QuerierFromCtx(ctx, r.db)
	_, err := q.Exec(ctx, "DELETE FROM editions")
	return postgres.MapError(err, "edition")
}

func (r *Repo) queryMany(ctx context.Context, q postgres.Querier, sql string, args []any) ([]*domain.Edition, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, postgres.MapError(err, "edition")
	}
	defer rows.Close()

	var out []*domain.Edition
	for rows.Next() {
		e, err := scanEdition(rows)
		if err != nil {
			return nil, postgres.MapError(err, "edition")
		}
		out = append(out, e)
	}
	return out, postgres.MapError(rows.Err(), "edition")
}

func scanEdition(row pgx.Row) (*domain.Edition, error) {
	var (
		e      domain.Edition
		workID *uuid.UUID
		rawIDs []byte
	)
	err := row.Scan(&e.ID, &workID, &e.Title, &e.Publisher, &e.Language,
		&e.PubYear, &e.PageCount, &e.Format, &e.CoverURL, &rawIDs,
		&e.Synthetic, &e.PrimaryProvider, &e.Quality, &e.ReviewStatus,
		&e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if workID != nil {
		e.WorkID = *workID
	}
	if len(rawIDs) > 0 {
		if err := json.Unmarshal(rawIDs, &e.ExternalIDs); err != nil {
			return nil, fmt.Errorf("unmarshal external ids: %w", err)
		}
	}
	return &e, nil
}

// nullableUUID maps uuid.Nil to SQL NULL.
func nullableUUID(id uuid.UUID) *uuid.UUID {
	if id == uuid.Nil {
		return nil
	}
	return &id
}
