package resolver

import (
	"context"
	"fmt"
	"log/slog"
)

// ClearCache drops every mapping for this resolver's kind. Resolution keeps
// working afterwards: lookups fall back to the store scan until the cache is
// repopulated by later resolutions.
func (r *Resolver[E, R]) ClearCache(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.cache.Clear(ctx, r.kind); err != nil {
		return fmt.Errorf("clear %s cache: %w", r.kind, err)
	}
	r.log.InfoContext(ctx, "resolution cache cleared")
	return nil
}

// PruneStaleEntries evicts every mapping whose target entity no longer exists
// in the store and reports how many were removed. An empty cache is a no-op.
func (r *Resolver[E, R]) PruneStaleEntries(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries, err := r.cache.Entries(ctx, r.kind)
	if err != nil {
		return 0, fmt.Errorf("list %s cache entries: %w", r.kind, err)
	}

	evicted := 0
	for _, e := range entries {
		alive, err := r.store.Exists(ctx, e.EntityID)
		if err != nil {
			return evicted, fmt.Errorf("check %s exists: %w", e.EntityID, err)
		}
		if alive {
			continue
		}
		if err := r.cache.Delete(ctx, r.kind, e.Key); err != nil {
			return evicted, fmt.Errorf("evict %s=%s: %w", e.Key.Kind, e.Key.Value, err)
		}
		evicted++
	}

	if evicted > 0 {
		r.log.InfoContext(ctx, "pruned stale cache entries", slog.Int("evicted", evicted))
	}
	return evicted, nil
}
