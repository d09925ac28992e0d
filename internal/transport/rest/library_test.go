package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/mkovalev/mybooks-backend/internal/domain"
)

type libraryServiceMock struct {
	AddEntryFunc          func(ctx context.Context, workID, editionID uuid.UUID, owned bool) (*domain.LibraryEntry, error)
	ListEntriesFunc       func(ctx context.Context) ([]domain.LibraryEntry, error)
	SetOwnedFunc          func(ctx context.Context, entryID uuid.UUID, owned bool) error
	PrimaryEditionFunc    func(ctx context.Context, workID uuid.UUID) (*domain.Edition, error)
	OverrideWorkFieldFunc func(ctx context.Context, workID uuid.UUID, field, value string) (*domain.Work, error)
}

func (m *libraryServiceMock) AddEntry(ctx context.Context, workID, editionID uuid.UUID, owned bool) (*domain.LibraryEntry, error) {
	return m.AddEntryFunc(ctx, workID, editionID, owned)
}

func (m *libraryServiceMock) ListEntries(ctx context.Context) ([]domain.LibraryEntry, error) {
	return m.ListEntriesFunc(ctx)
}

func (m *libraryServiceMock) SetOwned(ctx context.Context, entryID uuid.UUID, owned bool) error {
	return m.SetOwnedFunc(ctx, entryID, owned)
}

func (m *libraryServiceMock) PrimaryEdition(ctx context.Context, workID uuid.UUID) (*domain.Edition, error) {
	return m.PrimaryEditionFunc(ctx, workID)
}

func (m *libraryServiceMock) OverrideWorkField(ctx context.Context, workID uuid.UUID, field, value string) (*domain.Work, error) {
	return m.OverrideWorkFieldFunc(ctx, workID, field, value)
}

func TestAddEntry_Created(t *testing.T) {
	t.Parallel()

	workID := uuid.New()
	editionID := uuid.New()
	svc := &libraryServiceMock{
		AddEntryFunc: func(_ context.Context, gotWork, gotEdition uuid.UUID, owned bool) (*domain.LibraryEntry, error) {
			if gotWork != workID || gotEdition != editionID || !owned {
				t.Errorf("AddEntry(%s, %s, %v), want (%s, %s, true)", gotWork, gotEdition, owned, workID, editionID)
			}
			return &domain.LibraryEntry{
				ID:        uuid.New(),
				WorkID:    gotWork,
				EditionID: gotEdition,
				Owned:     owned,
				AddedAt:   time.Now(),
			}, nil
		},
	}
	h := NewLibraryHandler(svc, slog.Default())

	body := `{"workId":"` + workID.String() + `","editionId":"` + editionID.String() + `","owned":true}`
	req := httptest.NewRequest(http.MethodPost, "/api/library/entries", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.AddEntry(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201, body %s", rec.Code, rec.Body.String())
	}

	var resp entryResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.WorkID != workID.String() {
		t.Errorf("workId = %q, want %q", resp.WorkID, workID)
	}
}

func TestAddEntry_BadWorkID(t *testing.T) {
	t.Parallel()

	h := NewLibraryHandler(&libraryServiceMock{}, slog.Default())

	req := httptest.NewRequest(http.MethodPost, "/api/library/entries", strings.NewReader(`{"workId":"nope"}`))
	rec := httptest.NewRecorder()

	h.AddEntry(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestAddEntry_Conflict(t *testing.T) {
	t.Parallel()

	svc := &libraryServiceMock{
		AddEntryFunc: func(_ context.Context, _, _ uuid.UUID, _ bool) (*domain.LibraryEntry, error) {
			return nil, domain.ErrAlreadyExists
		},
	}
	h := NewLibraryHandler(svc, slog.Default())

	body := `{"workId":"` + uuid.New().String() + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/library/entries", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.AddEntry(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
}

func TestListEntries_OK(t *testing.T) {
	t.Parallel()

	svc := &libraryServiceMock{
		ListEntriesFunc: func(_ context.Context) ([]domain.LibraryEntry, error) {
			return []domain.LibraryEntry{
				{ID: uuid.New(), WorkID: uuid.New(), Owned: true, AddedAt: time.Now()},
				{ID: uuid.New(), WorkID: uuid.New(), AddedAt: time.Now()},
			}, nil
		},
	}
	h := NewLibraryHandler(svc, slog.Default())

	req := httptest.NewRequest(http.MethodGet, "/api/library/entries", nil)
	rec := httptest.NewRecorder()

	h.ListEntries(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var entries []entryResponse
	if err := json.NewDecoder(rec.Body).Decode(&entries); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len = %d, want 2", len(entries))
	}
	if entries[1].EditionID != "" {
		t.Errorf("editionId = %q, want omitted for nil edition", entries[1].EditionID)
	}
}

func TestSetOwned_NoContent(t *testing.T) {
	t.Parallel()

	entryID := uuid.New()
	svc := &libraryServiceMock{
		SetOwnedFunc: func(_ context.Context, gotID uuid.UUID, owned bool) error {
			if gotID != entryID || !owned {
				t.Errorf("SetOwned(%s, %v), want (%s, true)", gotID, owned, entryID)
			}
			return nil
		},
	}
	h := NewLibraryHandler(svc, slog.Default())

	req := httptest.NewRequest(http.MethodPatch, "/api/library/entries/"+entryID.String()+"/owned", strings.NewReader(`{"owned":true}`))
	req.SetPathValue("id", entryID.String())
	rec := httptest.NewRecorder()

	h.SetOwned(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
}

func TestSetOwned_NotFound(t *testing.T) {
	t.Parallel()

	svc := &libraryServiceMock{
		SetOwnedFunc: func(_ context.Context, _ uuid.UUID, _ bool) error {
			return domain.ErrNotFound
		},
	}
	h := NewLibraryHandler(svc, slog.Default())

	id := uuid.New().String()
	req := httptest.NewRequest(http.MethodPatch, "/api/library/entries/"+id+"/owned", strings.NewReader(`{"owned":false}`))
	req.SetPathValue("id", id)
	rec := httptest.NewRecorder()

	h.SetOwned(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestPrimaryEdition_OK(t *testing.T) {
	t.Parallel()

	workID := uuid.New()
	editionID := uuid.New()
	svc := &libraryServiceMock{
		PrimaryEditionFunc: func(_ context.Context, gotID uuid.UUID) (*domain.Edition, error) {
			if gotID != workID {
				t.Errorf("PrimaryEdition(%s), want %s", gotID, workID)
			}
			return &domain.Edition{
				ID:     editionID,
				WorkID: workID,
				Title:  "Dune",
				Format: domain.FormatHardcover,
			}, nil
		},
	}
	h := NewLibraryHandler(svc, slog.Default())

	req := httptest.NewRequest(http.MethodGet, "/api/works/"+workID.String()+"/primary-edition", nil)
	req.SetPathValue("id", workID.String())
	rec := httptest.NewRecorder()

	h.PrimaryEdition(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp editionResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.ID != editionID.String() {
		t.Errorf("id = %q, want %q", resp.ID, editionID)
	}
}

func TestPrimaryEdition_NoEditions404(t *testing.T) {
	t.Parallel()

	svc := &libraryServiceMock{
		PrimaryEditionFunc: func(_ context.Context, _ uuid.UUID) (*domain.Edition, error) {
			return nil, domain.ErrNotFound
		},
	}
	h := NewLibraryHandler(svc, slog.Default())

	id := uuid.New().String()
	req := httptest.NewRequest(http.MethodGet, "/api/works/"+id+"/primary-edition", nil)
	req.SetPathValue("id", id)
	rec := httptest.NewRecorder()

	h.PrimaryEdition(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestOverrideWorkField_OK(t *testing.T) {
	t.Parallel()

	workID := uuid.New()
	svc := &libraryServiceMock{
		OverrideWorkFieldFunc: func(_ context.Context, gotID uuid.UUID, field, value string) (*domain.Work, error) {
			if field != "title" || value != "Dune (Fixed)" {
				t.Errorf("OverrideWorkField(%q, %q)", field, value)
			}
			return &domain.Work{
				ID:           gotID,
				Title:        value,
				ReviewStatus: domain.ReviewStatusUserEdited,
			}, nil
		},
	}
	h := NewLibraryHandler(svc, slog.Default())

	req := httptest.NewRequest(http.MethodPatch, "/api/works/"+workID.String(), strings.NewReader(`{"field":"title","value":"Dune (Fixed)"}`))
	req.SetPathValue("id", workID.String())
	rec := httptest.NewRecorder()

	h.OverrideWorkField(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp workResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.ReviewStatus != string(domain.ReviewStatusUserEdited) {
		t.Errorf("reviewStatus = %q, want USER_EDITED", resp.ReviewStatus)
	}
}

func TestOverrideWorkField_UnknownField400(t *testing.T) {
	t.Parallel()

	svc := &libraryServiceMock{
		OverrideWorkFieldFunc: func(_ context.Context, _ uuid.UUID, field, _ string) (*domain.Work, error) {
			return nil, domain.NewValidationError("field", "not overridable")
		},
	}
	h := NewLibraryHandler(svc, slog.Default())

	id := uuid.New().String()
	req := httptest.NewRequest(http.MethodPatch, "/api/works/"+id, strings.NewReader(`{"field":"quality","value":"9"}`))
	req.SetPathValue("id", id)
	rec := httptest.NewRecorder()

	h.OverrideWorkField(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
