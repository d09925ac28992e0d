// Package author implements the canonical author repository using PostgreSQL.
package author

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

const table = "authors"

var columns = []string{
	"id", "name", "name_normalized", "sort_name", "bio", "external_ids",
	"synthetic", "primary_provider", "quality", "review_status",
	"created_at", "updated_at",
}

// Repo provides author persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new author repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

// Insert stores a new author.
func (r *Repo) Insert(ctx context.Context, a *domain.Author) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	ids, err := json.Marshal(a.ExternalIDs)
	if err != nil {
		return fmt.Errorf("marshal external ids: %w", err)
	}

	sql, args, err := postgres.Builder().
		Insert(table).
		Columns(columns...).
		Values(a.ID, a.Name, a.NameNormalized, a.SortName, a.Bio, ids,
			a.Synthetic, a.PrimaryProvider, a.Quality, a.ReviewStatus,
			a.CreatedAt, a.UpdatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	_, err = q.Exec(ctx, sql, args...)
	return postgres.MapError(err, "author")
}

// Update overwrites a stored author.
func (r *Repo) Update(ctx context.Context, a *domain.Author) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	ids, err := json.Marshal(a.ExternalIDs)
	if err != nil {
		return fmt.Errorf("marshal external ids: %w", err)
	}

	sql, args, err := postgres.Builder().
		Update(table).
		Set("name", a.Name).
		Set("name_normalized", a.NameNormalized).
		Set("sort_name", a.SortName).
		Set("bio", a.Bio).
		Set("external_ids", ids).
		Set("synthetic", a.Synthetic).
		Set("primary_provider", a.PrimaryProvider).
		Set("quality", a.Quality).
		Set("review_status", a.ReviewStatus).
		Set("updated_at", a.UpdatedAt).
		Where(squirrel.Eq{"id": a.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := q.Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(err, "author")
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("author %s: %w", a.ID, domain.ErrNotFound)
	}
	return nil
}

// Exists reports whether an author with the given id is stored.
func (r *Repo) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	var exists bool
	err := q.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM authors WHERE id = $1)", id).Scan(&exists)
	if err != nil {
		return false, postgres.MapError(err, "author")
	}
	return exists, nil
}

// GetByID returns an author by primary key.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Author, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	sql, args, err := postgres.Builder().
		Select(columns...).
		From(table).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	a, err := scanAuthor(q.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, postgres.MapError(err, "author")
	}
	return a, nil
}

// GetByNameNormalized returns the author with the given normalized name.
// CSV rows carry no author catalog ids, so name identity is the import's
// dedup key.
func (r *Repo) GetByNameNormalized(ctx context.Context, nameNormalized string) (*domain.Author, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	sql, args, err := postgres.Builder().
		Select(columns...).
		From(table).
		Where(squirrel.Eq{"name_normalized": nameNormalized}).
		OrderBy("created_at ASC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	a, err := scanAuthor(q.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, postgres.MapError(err, "author")
	}
	return a, nil
}

// FindByExternalIDs returns every author whose identifier set intersects ids.
func (r *Repo) FindByExternalIDs(ctx context.Context, ids []domain.ExternalID) ([]*domain.Author, error) {
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

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, postgres.MapError(err, "author")
	}
	defer rows.Close()

	var out []*domain.Author
	for rows.Next() {
		a, err := scanAuthor(rows)
		if err != nil {
			return nil, postgres.MapError(err, "author")
		}
		out = append(out, a)
	}
	return out, postgres.MapError(rows.Err(), "author")
}

// DeleteAll removes every author. Used only by the library reset.
func (r *Repo) DeleteAll(ctx context.Context) error {
	q := postgres.QuerierFromCtx(ctx, r.db)
	_, err := q.Exec(ctx, "DELETE FROM authors")
	return postgres.MapError(err, "author")
}

func scanAuthor(row pgx.Row) (*domain.Author, error) {
	var (
		a      domain.Author
		rawIDs []byte
	)
	err := row.Scan(&a.ID, &a.Name, &a.NameNormalized, &a.SortName, &a.Bio, &rawIDs,
		&a.Synthetic, &a.PrimaryProvider, &a.Quality, &a.ReviewStatus,
		&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(rawIDs) > 0 {
		if err := json.Unmarshal(rawIDs, &a.ExternalIDs); err != nil {
			return nil, fmt.Errorf("unmarshal external ids: %w", err)
		}
	}
	return &a, nil
}
