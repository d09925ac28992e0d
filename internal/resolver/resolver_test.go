package resolver

import (
	"context"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkovalev/mybooks-backend/internal/domain"
)

// --- in-memory fakes ---

type memWorkStore struct {
	byID    map[uuid.UUID]*domain.Work
	inserts int
}

func newMemWorkStore() *memWorkStore {
	return &memWorkStore{byID: make(map[uuid.UUID]*domain.Work)}
}

func (s *memWorkStore) Insert(_ context.Context, w *domain.Work) error {
	s.byID[w.ID] = w
	s.inserts++
	return nil
}

func (s *memWorkStore) Update(_ context.Context, w *domain.Work) error {
	if _, ok := s.byID[w.ID]; !ok {
		return domain.ErrNotFound
	}
	s.byID[w.ID] = w
	return nil
}

func (s *memWorkStore) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	_, ok := s.byID[id]
	return ok, nil
}

func (s *memWorkStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Work, error) {
	w, ok := s.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return w, nil
}

func (s *memWorkStore) FindByExternalIDs(_ context.Context, ids []domain.ExternalID) ([]*domain.Work, error) {
	var out []*domain.Work
	for _, w := range s.byID {
		if domain.IntersectIDs(w.ExternalIDs, ids) {
			out = append(out, w)
		}
	}
	return out, nil
}

func (s *memWorkStore) delete(id uuid.UUID) { delete(s.byID, id) }

type cacheKey struct {
	kind domain.EntityKind
	key  domain.ExternalID
}

type memCache struct {
	m map[cacheKey]uuid.UUID
}

func newMemCache() *memCache {
	return &memCache{m: make(map[cacheKey]uuid.UUID)}
}

func (c *memCache) Get(_ context.Context, kind domain.EntityKind, key domain.ExternalID) (uuid.UUID, error) {
	id, ok := c.m[cacheKey{kind, key}]
	if !ok {
		return uuid.Nil, domain.ErrNotFound
	}
	return id, nil
}

func (c *memCache) Put(_ context.Context, kind domain.EntityKind, key domain.ExternalID, entityID uuid.UUID) error {
	c.m[cacheKey{kind, key}] = entityID
	return nil
}

func (c *memCache) Delete(_ context.Context, kind domain.EntityKind, key domain.ExternalID) error {
	delete(c.m, cacheKey{kind, key})
	return nil
}

func (c *memCache) Clear(_ context.Context, kind domain.EntityKind) error {
	for k := range c.m {
		if k.kind == kind {
			delete(c.m, k)
		}
	}
	return nil
}

func (c *memCache) Entries(_ context.Context, kind domain.EntityKind) ([]CacheEntry, error) {
	var out []CacheEntry
	for k, v := range c.m {
		if k.kind == kind {
			out = append(out, CacheEntry{Key: k.key, EntityID: v})
		}
	}
	return out, nil
}

// --- helpers ---

func newWorkResolver() (*Resolver[*domain.Work, domain.WorkRecord], *memWorkStore, *memCache) {
	store := newMemWorkStore()
	cache := newMemCache()
	return Works(slog.Default(), store, cache), store, cache
}

func workRecord(title string, ids ...domain.ExternalID) domain.WorkRecord {
	return domain.WorkRecord{
		Title:           title,
		ExternalIDs:     ids,
		PrimaryProvider: "test",
		ReviewStatus:    domain.ReviewStatusNeedsReview,
	}
}

func olWork(v string) domain.ExternalID {
	return domain.ExternalID{Kind: domain.IDKindOpenLibraryWork, Value: v}
}

func grWork(v string) domain.ExternalID {
	return domain.ExternalID{Kind: domain.IDKindGoodreadsWork, Value: v}
}

// --- tests ---

func TestResolve_Idempotent(t *testing.T) {
	t.Parallel()
	r, store, _ := newWorkResolver()
	ctx := context.Background()
	rec := workRecord("Dune", olWork("OL893415W"))

	first, err := r.Resolve(ctx, rec)
	require.NoError(t, err)
	second, err := r.Resolve(ctx, rec)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, store.inserts)
}

func TestResolve_DedupByAnySharedID(t *testing.T) {
	t.Parallel()
	r, store, _ := newWorkResolver()
	ctx := context.Background()

	a, err := r.Resolve(ctx, workRecord("Dune", olWork("OL893415W"), grWork("3634639")))
	require.NoError(t, err)

	// Same Goodreads id, different everything else.
	b, err := r.Resolve(ctx, workRecord("Dune (40th Anniversary)", grWork("3634639")))
	require.NoError(t, err)

	assert.Equal(t, a.ID, b.ID)
	assert.Equal(t, 1, store.inserts)
	assert.ElementsMatch(t, []domain.ExternalID{olWork("OL893415W"), grWork("3634639")}, b.ExternalIDs)
}

func TestResolve_DisjointIDSetsStayIsolated(t *testing.T) {
	t.Parallel()
	r, store, _ := newWorkResolver()
	ctx := context.Background()

	a, err := r.Resolve(ctx, workRecord("Dune", olWork("OL893415W")))
	require.NoError(t, err)
	b, err := r.Resolve(ctx, workRecord("Hyperion", olWork("OL1965137W")))
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, 2, store.inserts)
}

func TestResolve_EmptyIDSetsNeverMerge(t *testing.T) {
	t.Parallel()
	r, store, _ := newWorkResolver()
	ctx := context.Background()

	a, err := r.Resolve(ctx, workRecord("Dune"))
	require.NoError(t, err)
	b, err := r.Resolve(ctx, workRecord("Dune"))
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID, "records without identifiers always create")
	assert.Equal(t, 2, store.inserts)
}

func TestResolve_EvictsDanglingCacheEntry(t *testing.T) {
	t.Parallel()
	r, store, cache := newWorkResolver()
	ctx := context.Background()
	rec := workRecord("Dune", olWork("OL893415W"))

	old, err := r.Resolve(ctx, rec)
	require.NoError(t, err)

	// The entity disappears behind the cache's back (library reset).
	store.delete(old.ID)

	fresh, err := r.Resolve(ctx, rec)
	require.NoError(t, err)

	assert.NotEqual(t, old.ID, fresh.ID)
	got, err := cache.Get(ctx, domain.EntityKindWork, olWork("OL893415W"))
	require.NoError(t, err)
	assert.Equal(t, fresh.ID, got, "mapping now points at the replacement entity")
}

func TestResolve_SyntheticUpgradePreservesIdentity(t *testing.T) {
	t.Parallel()
	r, _, _ := newWorkResolver()
	ctx := context.Background()

	placeholder := workRecord("dune", grWork("3634639"))
	placeholder.Synthetic = true
	placeholder.Contributors = []string{"F. Herbert"}

	a, err := r.Resolve(ctx, placeholder)
	require.NoError(t, err)
	require.True(t, a.Synthetic)

	real := workRecord("Dune", grWork("3634639"), olWork("OL893415W"))
	real.Description = "Set on the desert planet Arrakis."
	real.Contributors = []string{"Frank Herbert"}

	b, err := r.Resolve(ctx, real)
	require.NoError(t, err)

	assert.Equal(t, a.ID, b.ID, "upgrade keeps the handle stable")
	assert.False(t, b.Synthetic)
	assert.Equal(t, "Dune", b.Title)
	assert.Equal(t, []string{"Frank Herbert"}, b.Contributors)
	// The caller that resolved the placeholder observes the enriched values.
	assert.False(t, a.Synthetic)
	assert.Equal(t, "Dune", a.Title)
}

func TestResolve_StoreScanRecoversFromClearedCache(t *testing.T) {
	t.Parallel()
	r, store, cache := newWorkResolver()
	ctx := context.Background()
	rec := workRecord("Dune", olWork("OL893415W"))

	a, err := r.Resolve(ctx, rec)
	require.NoError(t, err)

	require.NoError(t, r.ClearCache(ctx))

	b, err := r.Resolve(ctx, rec)
	require.NoError(t, err)

	assert.Equal(t, a.ID, b.ID, "scan fallback found the entity without the cache")
	assert.Equal(t, 1, store.inserts)

	got, err := cache.Get(ctx, domain.EntityKindWork, olWork("OL893415W"))
	require.NoError(t, err)
	assert.Equal(t, a.ID, got, "scan path re-registers the mappings")
}

func TestResolve_ConflictingIDsMergeIntoHighestPriority(t *testing.T) {
	t.Parallel()
	r, store, _ := newWorkResolver()
	ctx := context.Background()

	// Two distinct live entities, reachable by ids of different strength.
	strong, err := r.Resolve(ctx, workRecord("Dune", olWork("OL893415W")))
	require.NoError(t, err)
	weak, err := r.Resolve(ctx, workRecord("Dune?", grWork("3634639")))
	require.NoError(t, err)
	require.NotEqual(t, strong.ID, weak.ID)

	// A record claiming both: the OpenLibrary mapping outranks the Goodreads one.
	got, err := r.Resolve(ctx, workRecord("Dune", grWork("3634639"), olWork("OL893415W")))
	require.NoError(t, err)

	assert.Equal(t, strong.ID, got.ID)
	untouched, err := store.GetByID(ctx, weak.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dune?", untouched.Title, "the losing entity is not corrupted")
}

func TestResolve_CacheSurvivesResolverRestart(t *testing.T) {
	t.Parallel()
	store := newMemWorkStore()
	cache := newMemCache()
	ctx := context.Background()
	rec := workRecord("Dune", olWork("OL893415W"))

	a, err := Works(slog.Default(), store, cache).Resolve(ctx, rec)
	require.NoError(t, err)

	// A new resolver over the same store and cache sees the registrations.
	b, err := Works(slog.Default(), store, cache).Resolve(ctx, rec)
	require.NoError(t, err)

	assert.Equal(t, a.ID, b.ID)
	assert.Equal(t, 1, store.inserts)
}

func TestResolve_ReviewStatusNeverRegresses(t *testing.T) {
	t.Parallel()
	r, _, _ := newWorkResolver()
	ctx := context.Background()

	verified := workRecord("Dune", olWork("OL893415W"))
	verified.ReviewStatus = domain.ReviewStatusVerified
	_, err := r.Resolve(ctx, verified)
	require.NoError(t, err)

	got, err := r.Resolve(ctx, workRecord("Dune", olWork("OL893415W")))
	require.NoError(t, err)
	assert.Equal(t, domain.ReviewStatusVerified, got.ReviewStatus)
}

func TestClearCache_ResolutionKeepsWorking(t *testing.T) {
	t.Parallel()
	r, _, cache := newWorkResolver()
	ctx := context.Background()

	_, err := r.Resolve(ctx, workRecord("Dune", olWork("OL893415W"), grWork("3634639")))
	require.NoError(t, err)
	require.NoError(t, r.ClearCache(ctx))

	entries, err := cache.Entries(ctx, domain.EntityKindWork)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestPruneStaleEntries(t *testing.T) {
	t.Parallel()
	r, store, cache := newWorkResolver()
	ctx := context.Background()

	evicted, err := r.PruneStaleEntries(ctx)
	require.NoError(t, err)
	assert.Zero(t, evicted, "empty cache is a no-op")

	kept, err := r.Resolve(ctx, workRecord("Dune", olWork("OL893415W")))
	require.NoError(t, err)
	gone, err := r.Resolve(ctx, workRecord("Hyperion", olWork("OL1965137W"), grWork("77566")))
	require.NoError(t, err)
	store.delete(gone.ID)

	evicted, err = r.PruneStaleEntries(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, evicted, "both mappings of the deleted entity go")

	got, err := cache.Get(ctx, domain.EntityKindWork, olWork("OL893415W"))
	require.NoError(t, err)
	assert.Equal(t, kept.ID, got)
}

func TestResolve_CacheNamespacesAreIndependent(t *testing.T) {
	t.Parallel()
	store := newMemWorkStore()
	cache := newMemCache()
	ctx := context.Background()

	// The same external id string registered under another kind must not
	// short-circuit a work resolution.
	foreign := uuid.New()
	require.NoError(t, cache.Put(ctx, domain.EntityKindAuthor, olWork("OL893415W"), foreign))

	got, err := Works(slog.Default(), store, cache).Resolve(ctx, workRecord("Dune", olWork("OL893415W")))
	require.NoError(t, err)
	assert.NotEqual(t, foreign, got.ID)
}
