package rest

import (
	"context"
	"log/slog"
	"net/http"
)

// libraryResetter wipes all catalog and library data.
type libraryResetter interface {
	Reset(ctx context.Context) error
}

// CacheMaintainer is the maintenance surface of one entity resolver.
type CacheMaintainer interface {
	ClearCache(ctx context.Context) error
	PruneStaleEntries(ctx context.Context) (int, error)
}

// AdminHandler serves the admin endpoints. The routes are mounted behind
// the admin-key middleware; handlers assume the key was already verified.
type AdminHandler struct {
	library libraryResetter
	caches  []CacheMaintainer
	log     *slog.Logger
}

// NewAdminHandler creates an AdminHandler. caches holds the maintenance
// surface of every resolver (works, editions, authors).
func NewAdminHandler(library libraryResetter, caches []CacheMaintainer, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		library: library,
		caches:  caches,
		log:     logger.With("handler", "admin"),
	}
}

// ResetLibrary handles POST /admin/library/reset. Resolution cache entries
// are left behind on purpose; resolvers evict them lazily.
func (h *AdminHandler) ResetLibrary(w http.ResponseWriter, r *http.Request) {
	if err := h.library.Reset(r.Context()); err != nil {
		handleError(r.Context(), w, h.log, err)
		return
	}

	h.log.InfoContext(r.Context(), "library reset")
	w.WriteHeader(http.StatusNoContent)
}

// ClearCache handles POST /admin/cache/clear.
func (h *AdminHandler) ClearCache(w http.ResponseWriter, r *http.Request) {
	for _, c := range h.caches {
		if err := c.ClearCache(r.Context()); err != nil {
			handleError(r.Context(), w, h.log, err)
			return
		}
	}

	h.log.InfoContext(r.Context(), "resolution cache cleared")
	w.WriteHeader(http.StatusNoContent)
}

// PruneCache handles POST /admin/cache/prune. It drops cache entries whose
// entity no longer exists and reports how many were evicted.
func (h *AdminHandler) PruneCache(w http.ResponseWriter, r *http.Request) {
	evicted := 0
	for _, c := range h.caches {
		n, err := c.PruneStaleEntries(r.Context())
		if err != nil {
			handleError(r.Context(), w, h.log, err)
			return
		}
		evicted += n
	}

	writeJSON(w, http.StatusOK, map[string]int{"evicted": evicted})
}
