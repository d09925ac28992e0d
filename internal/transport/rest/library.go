package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/mkovalev/mybooks-backend/internal/domain"
)

// libraryService defines the minimal interface needed by LibraryHandler.
type libraryService interface {
	AddEntry(ctx context.Context, workID, editionID uuid.UUID, owned bool) (*domain.LibraryEntry, error)
	ListEntries(ctx context.Context) ([]domain.LibraryEntry, error)
	SetOwned(ctx context.Context, entryID uuid.UUID, owned bool) error
	PrimaryEdition(ctx context.Context, workID uuid.UUID) (*domain.Edition, error)
	OverrideWorkField(ctx context.Context, workID uuid.UUID, field, value string) (*domain.Work, error)
}

// LibraryHandler serves library REST endpoints.
type LibraryHandler struct {
	svc libraryService
	log *slog.Logger
}

// NewLibraryHandler creates a LibraryHandler.
func NewLibraryHandler(svc libraryService, logger *slog.Logger) *LibraryHandler {
	return &LibraryHandler{svc: svc, log: logger.With("handler", "library")}
}

type addEntryRequest struct {
	WorkID    string `json:"workId"`
	EditionID string `json:"editionId,omitempty"`
	Owned     bool   `json:"owned"`
}

type setOwnedRequest struct {
	Owned bool `json:"owned"`
}

type overrideFieldRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

type entryResponse struct {
	ID        string    `json:"id"`
	WorkID    string    `json:"workId"`
	EditionID string    `json:"editionId,omitempty"`
	Owned     bool      `json:"owned"`
	AddedAt   time.Time `json:"addedAt"`
}

type workResponse struct {
	ID           string              `json:"id"`
	Title        string              `json:"title"`
	Subtitle     string              `json:"subtitle,omitempty"`
	Description  string              `json:"description,omitempty"`
	Language     string              `json:"language,omitempty"`
	FirstPubYear *int                `json:"firstPubYear,omitempty"`
	CoverURL     string              `json:"coverUrl,omitempty"`
	Contributors []string            `json:"contributors,omitempty"`
	ExternalIDs  []domain.ExternalID `json:"externalIds,omitempty"`
	Synthetic    bool                `json:"synthetic"`
	ReviewStatus string              `json:"reviewStatus"`
}

type editionResponse struct {
	ID           string              `json:"id"`
	WorkID       string              `json:"workId,omitempty"`
	Title        string              `json:"title"`
	Publisher    string              `json:"publisher,omitempty"`
	Language     string              `json:"language,omitempty"`
	PubYear      *int                `json:"pubYear,omitempty"`
	PageCount    *int                `json:"pageCount,omitempty"`
	Format       string              `json:"format,omitempty"`
	CoverURL     string              `json:"coverUrl,omitempty"`
	ExternalIDs  []domain.ExternalID `json:"externalIds,omitempty"`
	Synthetic    bool                `json:"synthetic"`
	ReviewStatus string              `json:"reviewStatus"`
}

// AddEntry handles POST /api/library/entries.
func (h *LibraryHandler) AddEntry(w http.ResponseWriter, r *http.Request) {
	var req addEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	workID, err := uuid.Parse(req.WorkID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "workId must be a UUID")
		return
	}

	editionID := uuid.Nil
	if req.EditionID != "" {
		editionID, err = uuid.Parse(req.EditionID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "editionId must be a UUID")
			return
		}
	}

	entry, err := h.svc.AddEntry(r.Context(), workID, editionID, req.Owned)
	if err != nil {
		handleError(r.Context(), w, h.log, err)
		return
	}

	writeJSON(w, http.StatusCreated, toEntryResponse(*entry))
}

// ListEntries handles GET /api/library/entries.
func (h *LibraryHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	entries, err := h.svc.ListEntries(r.Context())
	if err != nil {
		handleError(r.Context(), w, h.log, err)
		return
	}

	out := make([]entryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toEntryResponse(e))
	}
	writeJSON(w, http.StatusOK, out)
}

// SetOwned handles PATCH /api/library/entries/{id}/owned.
func (h *LibraryHandler) SetOwned(w http.ResponseWriter, r *http.Request) {
	entryID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "entry id must be a UUID")
		return
	}

	var req setOwnedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.svc.SetOwned(r.Context(), entryID, req.Owned); err != nil {
		handleError(r.Context(), w, h.log, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// PrimaryEdition handles GET /api/works/{id}/primary-edition.
func (h *LibraryHandler) PrimaryEdition(w http.ResponseWriter, r *http.Request) {
	workID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "work id must be a UUID")
		return
	}

	edition, err := h.svc.PrimaryEdition(r.Context(), workID)
	if err != nil {
		handleError(r.Context(), w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, toEditionResponse(edition))
}

// OverrideWorkField handles PATCH /api/works/{id}.
func (h *LibraryHandler) OverrideWorkField(w http.ResponseWriter, r *http.Request) {
	workID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "work id must be a UUID")
		return
	}

	var req overrideFieldRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	work, err := h.svc.OverrideWorkField(r.Context(), workID, req.Field, req.Value)
	if err != nil {
		handleError(r.Context(), w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, toWorkResponse(work))
}

func toEntryResponse(e domain.LibraryEntry) entryResponse {
	out := entryResponse{
		ID:      e.ID.String(),
		WorkID:  e.WorkID.String(),
		Owned:   e.Owned,
		AddedAt: e.AddedAt,
	}
	if e.EditionID != uuid.Nil {
		out.EditionID = e.EditionID.String()
	}
	return out
}

func toWorkResponse(w *domain.Work) workResponse {
	return workResponse{
		ID:           w.ID.String(),
		Title:        w.Title,
		Subtitle:     w.Subtitle,
		Description:  w.Description,
		Language:     w.Language,
		FirstPubYear: w.FirstPubYear,
		CoverURL:     w.CoverURL,
		Contributors: w.Contributors,
		ExternalIDs:  w.ExternalIDs,
		Synthetic:    w.Synthetic,
		ReviewStatus: string(w.ReviewStatus),
	}
}

func toEditionResponse(e *domain.Edition) editionResponse {
	out := editionResponse{
		ID:           e.ID.String(),
		Title:        e.Title,
		Publisher:    e.Publisher,
		Language:     e.Language,
		PubYear:      e.PubYear,
		PageCount:    e.PageCount,
		Format:       string(e.Format),
		CoverURL:     e.CoverURL,
		ExternalIDs:  e.ExternalIDs,
		Synthetic:    e.Synthetic,
		ReviewStatus: string(e.ReviewStatus),
	}
	if e.WorkID != uuid.Nil {
		out.WorkID = e.WorkID.String()
	}
	return out
}
