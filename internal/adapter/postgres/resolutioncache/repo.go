// Package resolutioncache implements the durable external-id index used by
// the resolver. The table deliberately carries no foreign key to the entity
// tables: entries are allowed to dangle after a reset and are evicted lazily
// by the resolver's liveness checks.
package resolutioncache

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	postgres "github.com/mkovalev/mybooks-backend/internal/adapter/postgres"
	"github.com/mkovalev/mybooks-backend/internal/domain"
	"github.com/mkovalev/mybooks-backend/internal/resolver"
)

// Repo provides resolution cache persistence backed by PostgreSQL.
type Repo struct {
	db postgres.Querier
}

// New creates a new resolution cache repository.
func New(db postgres.Querier) *Repo {
	return &Repo{db: db}
}

// Get returns the entity handle mapped to the key, or domain.ErrNotFound.
func (r *Repo) Get(ctx context.Context, kind domain.EntityKind, key domain.ExternalID) (uuid.UUID, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	var entityID uuid.UUID
	err := q.QueryRow(ctx,
		`SELECT entity_id FROM resolution_cache
		 WHERE entity_kind = $1 AND id_kind = $2 AND id_value = $3`,
		kind, key.Kind, key.Value,
	).Scan(&entityID)
	if err != nil {
		return uuid.Nil, postgres.MapError(err, "resolution_cache")
	}
	return entityID, nil
}

// Put registers a mapping, overwriting any previous target for the key. The
// write is committed before Put returns; the resolver relies on that for
// crash-safe dedup.
func (r *Repo) Put(ctx context.Context, kind domain.EntityKind, key domain.ExternalID, entityID uuid.UUID) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	_, err := q.Exec(ctx,
		`INSERT INTO resolution_cache (entity_kind, id_kind, id_value, entity_id, updated_at)
		 VALUES ($1, $2, $3, $4, now())
		 ON CONFLICT (entity_kind, id_kind, id_value)
		 DO UPDATE SET entity_id = EXCLUDED.entity_id, updated_at = now()`,
		kind, key.Kind, key.Value, entityID,
	)
	return postgres.MapError(err, "resolution_cache")
}

// Delete evicts one mapping. Deleting a missing key is not an error.
func (r *Repo) Delete(ctx context.Context, kind domain.EntityKind, key domain.ExternalID) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	_, err := q.Exec(ctx,
		"DELETE FROM resolution_cache WHERE entity_kind = $1 AND id_kind = $2 AND id_value = $3",
		kind, key.Kind, key.Value,
	)
	return postgres.MapError(err, "resolution_cache")
}

// Clear drops every mapping for one entity kind.
func (r *Repo) Clear(ctx context.Context, kind domain.EntityKind) error {
	q := postgres.QuerierFromCtx(ctx, r.db)

	_, err := q.Exec(ctx, "DELETE FROM resolution_cache WHERE entity_kind = $1", kind)
	return postgres.MapError(err, "resolution_cache")
}

// Entries returns every mapping for one entity kind.
func (r *Repo) Entries(ctx context.Context, kind domain.EntityKind) ([]resolver.CacheEntry, error) {
	q := postgres.QuerierFromCtx(ctx, r.db)

	rows, err := q.Query(ctx,
		"SELECT id_kind, id_value, entity_id FROM resolution_cache WHERE entity_kind = $1",
		kind,
	)
	if err != nil {
		return nil, postgres.MapError(err, "resolution_cache")
	}
	defer rows.Close()

	var out []resolver.CacheEntry
	for rows.Next() {
		var e resolver.CacheEntry
		if err := rows.Scan(&e.Key.Kind, &e.Key.Value, &e.EntityID); err != nil {
			return nil, fmt.Errorf("scan cache entry: %w", err)
		}
		out = append(out, e)
	}
	return out, postgres.MapError(rows.Err(), "resolution_cache")
}
