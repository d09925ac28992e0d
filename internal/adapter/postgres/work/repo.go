// Package work implements the canonical work repository using PostgreSQL.
// External identifiers live in a jsonb column; the intersection scan uses
// jsonb containment so it stays on the GIN index.
package work

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

const table = "works"

var columns = []string{
	"id", "title", "title_normalized", "subtitle", "description", "language",
	"first_pub_year", "cover_url", "contributors", "external_ids", "synthetic",
	"primary_provider", "quality", "review_status", "created_at", "updated_at",
}

// Repo provides work persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new work repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

// Insert stores a new work.
func (r *Repo) Insert(ctx context.Context, w *domain.Work) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	ids, err := json.Marshal(w.ExternalIDs)
	if err != nil {
		return fmt.Errorf("marshal external ids: %w", err)
	}

	sql, args, err := postgres.Builder().
		Insert(table).
		Columns(columns...).
		Values(w.ID, w.Title, w.TitleNormalized, w.Subtitle, w.Description, w.Language,
			w.FirstPubYear, w.CoverURL, w.Contributors, ids, w.Synthetic,
			w.PrimaryProvider, w.Quality, w.ReviewStatus, w.CreatedAt, w.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	_, err = q.Exec(ctx, sql, args...)
	return postgres.MapError(err, "work")
}

// Update overwrites a stored work. Returns domain.ErrNotFound if the work
// does not exist.
func (r *Repo) Update(ctx context.Context, w *domain.Work) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	ids, err := json.Marshal(w.ExternalIDs)
	if err != nil {
		return fmt.Errorf("marshal external ids: %w", err)
	}

	sql, args, err := postgres.Builder().
		Update(table).
		Set("title", w.Title).
		Set("title_normalized", w.TitleNormalized).
		Set("subtitle", w.Subtitle).
		Set("description", w.Description).
		Set("language", w.Language).
		Set("first_pub_year", w.FirstPubYear).
		Set("cover_url", w.CoverURL).
		Set("contributors", w.Contributors).
		Set("external_ids", ids).
		Set("synthetic", w.Synthetic).
		Set("primary_provider", w.PrimaryProvider).
		Set("quality", w.Quality).
		Set("review_status", w.ReviewStatus).
		Set("updated_at", w.UpdatedAt).
		Where(squirrel.Eq{"id": w.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(err, "work")
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("work %s: %w", w.ID, domain.ErrNotFound)
	}
	return nil
}

// Exists reports whether a work with the given id is stored.
func (r *Repo) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	var exists bool
	err := q.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM works WHERE id = $1)", id).Scan(&exists)
	if err != nil {
		return false, postgres.MapError(err, "work")
	}
	return exists, nil
}

// GetByID returns a work by primary key.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Work, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	sql, args, err := postgres.Builder().
		Select(columns...).
		From(table).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	w, err := scanWork(q.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, postgres.MapError(err, "work")
	}
	return w, nil
}

// FindByExternalIDs returns every work whose identifier set intersects ids.
func (r *Repo) FindByExternalIDs(ctx context.Context, ids []domain.ExternalID) ([]*domain.Work, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	q := postgres.QuerierFromCtx(ctx, r.db)

	pred, err := containsAnyID(ids)
	if err != nil {
		return nil, err
	}

	sql, args, err := postgres.Builder().
		Select(columns...).
		From(table).
		Where(pred).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, postgres.MapError(err, "work")
	}
	defer rows.Close()

	var out []*domain.Work
	for rows.Next() {
		w, err := scanWork(rows)
		if err != nil {
			return nil, postgres.MapError(err, "work")
		}
		out = append(out, w)
	}
	return out, postgres.MapError(rows.Err(), "work")
}

// DeleteAll removes every work. Used only by the library reset.
func (r *Repo) DeleteAll(ctx context.Context) error {
	q := postgres.QuerierFromCtx(ctx, r.db)
	_, err := q.Exec(ctx, "DELETE FROM works")
	return postgres.MapError(err, "work")
}

// containsAnyID builds a jsonb containment disjunction over the identifiers.
func containsAnyID(ids []domain.ExternalID) (squirrel.Or, error) {
	or := make(squirrel.Or, 0, len(ids))
	for _, id := range ids {
		doc, err := json.Marshal([]domain.ExternalID{id})
		if err != nil {
			return nil, fmt.Errorf("marshal external id: %w", err)
		}
		or = append(or, squirrel.Expr("external_ids @> ?::jsonb", doc))
	}
	return or, nil
}

func scanWork(row pgx.Row) (*domain.Work, error) {
	var (
		w      domain.Work
		rawIDs []byte
	)
	err := row.Scan(&w.ID, &w.Title, &w.TitleNormalized, &w.Subtitle, &w.Description,
		&w.Language, &w.FirstPubYear, &w.CoverURL, &w.Contributors, &rawIDs,
		&w.Synthetic, &w.PrimaryProvider, &w.Quality, &w.ReviewStatus,
		&w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(rawIDs) > 0 {
		if err := json.Unmarshal(rawIDs, &w.ExternalIDs); err != nil {
			return nil, fmt.Errorf("unmarshal external ids: %w", err)
		}
	}
	return &w, nil
}
