// Package resolver deduplicates incoming provider records against the
// canonical store. Every record is resolved to exactly one entity: a durable
// external-id cache gives the fast path, a store scan covers a cleared or
// never-populated cache, and only the create path ever inserts.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/mkovalev/mybooks-backend/internal/domain"
)

// Entity is a persisted canonical entity as the resolver sees it.
type Entity interface {
	EntityID() uuid.UUID
	IDs() []domain.ExternalID
}

// Record is an incoming provider record before resolution.
type Record interface {
	IDs() []domain.ExternalID
}

// Store is the authoritative persistence for one entity kind. Absence is a
// plain empty result, not an error, except GetByID which returns
// domain.ErrNotFound. Insert must be durable before it returns: the create
// path registers cache entries and attaches relationships only afterwards.
type Store[E Entity] interface {
	Insert(ctx context.Context, entity E) error
	Update(ctx context.Context, entity E) error
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	GetByID(ctx context.Context, id uuid.UUID) (E, error)
	FindByExternalIDs(ctx context.Context, ids []domain.ExternalID) ([]E, error)
}

// Cache is the durable external-id -> entity-handle index, namespaced by
// entity kind. Get returns domain.ErrNotFound on a miss. Entries a cache
// holds are never trusted blindly: the resolver re-checks liveness against
// the store on every read and evicts dangling mappings as it finds them.
type Cache interface {
	Get(ctx context.Context, kind domain.EntityKind, key domain.ExternalID) (uuid.UUID, error)
	Put(ctx context.Context, kind domain.EntityKind, key domain.ExternalID, entityID uuid.UUID) error
	Delete(ctx context.Context, kind domain.EntityKind, key domain.ExternalID) error
	Clear(ctx context.Context, kind domain.EntityKind) error
	Entries(ctx context.Context, kind domain.EntityKind) ([]CacheEntry, error)
}

// CacheEntry is one durable mapping as reported by Cache.Entries.
type CacheEntry struct {
	Key      domain.ExternalID
	EntityID uuid.UUID
}

// Resolver resolves records of one entity kind. A mutex serializes the
// probe, merge-or-create, and register sequence: two concurrent resolutions
// for the same external id must not each take the create path. Resolvers for
// different kinds are independent and may run concurrently.
type Resolver[E Entity, R Record] struct {
	log   *slog.Logger
	kind  domain.EntityKind
	store Store[E]
	cache Cache
	fresh func(R) E
	apply func(E, R)

	mu sync.Mutex
}

// New creates a resolver for one entity kind. fresh builds a new entity from
// a record (create path); apply merges a record into an existing entity
// (merge path).
func New[E Entity, R Record](
	logger *slog.Logger,
	kind domain.EntityKind,
	store Store[E],
	cache Cache,
	fresh func(R) E,
	apply func(E, R),
) *Resolver[E, R] {
	return &Resolver[E, R]{
		log:   logger.With("resolver", kind.String()),
		kind:  kind,
		store: store,
		cache: cache,
		fresh: fresh,
		apply: apply,
	}
}

// Resolve returns the single canonical entity for the record, creating or
// merging as needed. Records with no external identifiers always create: an
// empty identifier set matches nothing, including other empty sets.
//
// Cache writes are synchronous. A resolution has not happened until its
// mappings are durable, otherwise a crash would leave the new entity
// invisible to dedup on the next run.
func (r *Resolver[E, R]) Resolve(ctx context.Context, rec R) (E, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var zero E
	ids := domain.CompactIDs(rec.IDs())

	if len(ids) > 0 {
		entity, ok, err := r.probeCache(ctx, ids)
		if err != nil {
			return zero, err
		}
		if ok {
			return r.merge(ctx, entity, rec, ids)
		}

		entity, ok, err = r.scanStore(ctx, ids)
		if err != nil {
			return zero, err
		}
		if ok {
			return r.merge(ctx, entity, rec, ids)
		}
	}

	return r.create(ctx, rec, ids)
}

// probeCache tries each identifier in priority order and returns the first
// mapping whose target is still alive. Dangling mappings are evicted on
// discovery and probing continues with the remaining identifiers.
func (r *Resolver[E, R]) probeCache(ctx context.Context, ids []domain.ExternalID) (E, bool, error) {
	var zero E
	for _, id := range ids {
		entityID, err := r.cache.Get(ctx, r.kind, id)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return zero, false, fmt.Errorf("cache get %s=%s: %w", id.Kind, id.Value, err)
		}

		alive, err := r.store.Exists(ctx, entityID)
		if err != nil {
			return zero, false, fmt.Errorf("check %s exists: %w", entityID, err)
		}
		if !alive {
			if err := r.cache.Delete(ctx, r.kind, id); err != nil {
				return zero, false, fmt.Errorf("evict dangling entry %s=%s: %w", id.Kind, id.Value, err)
			}
			r.log.DebugContext(ctx, "evicted dangling cache entry",
				slog.String("id_kind", string(id.Kind)),
				slog.String("id_value", id.Value),
			)
			continue
		}

		entity, err := r.store.GetByID(ctx, entityID)
		if err != nil {
			return zero, false, fmt.Errorf("get %s: %w", entityID, err)
		}
		return entity, true, nil
	}
	return zero, false, nil
}

// scanStore looks for an existing entity whose recorded identifiers intersect
// the record's. When several entities match, the one holding the
// highest-priority identifier is adopted; the others are left untouched.
func (r *Resolver[E, R]) scanStore(ctx context.Context, ids []domain.ExternalID) (E, bool, error) {
	var zero E
	matches, err := r.store.FindByExternalIDs(ctx, ids)
	if err != nil {
		return zero, false, fmt.Errorf("scan by external ids: %w", err)
	}
	if len(matches) == 0 {
		return zero, false, nil
	}

	// ids is already priority-sorted.
	for _, id := range ids {
		for _, m := range matches {
			if hasID(m, id) {
				return m, true, nil
			}
		}
	}
	return zero, false, nil
}

func (r *Resolver[E, R]) merge(ctx context.Context, entity E, rec R, ids []domain.ExternalID) (E, error) {
	var zero E
	r.apply(entity, rec)
	if err := r.store.Update(ctx, entity); err != nil {
		return zero, fmt.Errorf("update %s: %w", entity.EntityID(), err)
	}
	if err := r.register(ctx, ids, entity.EntityID()); err != nil {
		return zero, err
	}

	r.log.DebugContext(ctx, "record merged into existing entity",
		slog.String("entity_id", entity.EntityID().String()),
		slog.Int("id_count", len(ids)),
	)
	return entity, nil
}

func (r *Resolver[E, R]) create(ctx context.Context, rec R, ids []domain.ExternalID) (E, error) {
	var zero E
	entity := r.fresh(rec)
	if err := r.store.Insert(ctx, entity); err != nil {
		return zero, fmt.Errorf("insert entity: %w", err)
	}
	if err := r.register(ctx, ids, entity.EntityID()); err != nil {
		return zero, err
	}

	r.log.InfoContext(ctx, "created canonical entity",
		slog.String("entity_id", entity.EntityID().String()),
		slog.Int("id_count", len(ids)),
	)
	return entity, nil
}

// register writes every identifier mapping through to the durable cache. A
// failure surfaces to the caller; the store mutation that preceded it stands.
func (r *Resolver[E, R]) register(ctx context.Context, ids []domain.ExternalID, entityID uuid.UUID) error {
	for _, id := range ids {
		if err := r.cache.Put(ctx, r.kind, id, entityID); err != nil {
			return fmt.Errorf("register %s=%s: %w", id.Kind, id.Value, err)
		}
	}
	return nil
}

func hasID[E Entity](entity E, id domain.ExternalID) bool {
	for _, have := range entity.IDs() {
		if have == id {
			return true
		}
	}
	return false
}
