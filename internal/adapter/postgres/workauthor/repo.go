// Package workauthor implements the work-to-author relation table.
package workauthor

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	postgres "github.com/mkovalev/mybooks-backend/internal/adapter/postgres"
)

// Repo provides work-author relation persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new work-author relation repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

// Relate links a work to an author. Idempotent: relating twice is not an
// error. Both sides must already be inserted; a missing side surfaces as
// domain.ErrNotFound via the foreign keys.
func (r *Repo) Relate(ctx context.Context, workID, authorID uuid.UUID) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	_, err := q.Exec(ctx,
		`INSERT INTO work_authors (work_id, author_id)
		 VALUES ($1, $2)
		 ON CONFLICT (work_id, author_id) DO NOTHING`,
		workID, authorID,
	)
	return postgres.MapError(err, "work_author")
}

// ListAuthorIDs returns the author ids related to a work, in relation order.
func (r *Repo) ListAuthorIDs(ctx context.Context, workID uuid.UUID) ([]uuid.UUID, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	rows, err := q.Query(ctx,
		"SELECT author_id FROM work_authors WHERE work_id = $1 ORDER BY created_at ASC",
		workID,
	)
	if err != nil {
		return nil, postgres.MapError(err, "work_author")
	}
	defer rows.Close()

	var out []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan author id: %w", err)
		}
		out = append(out, id)
	}
	return out, postgres.MapError(rows.Err(), "work_author")
}

// DeleteAll removes every relation. Used only by the library reset.
func (r *Repo) DeleteAll(ctx context.Context) error {
	q := postgres.QuerierFromCtx(ctx, r.db)
	_, err := q.Exec(ctx, "DELETE FROM work_authors")
	return postgres.MapError(err, "work_author")
}
