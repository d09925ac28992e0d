// Package library manages the user's shelf: entries over resolved works and
// editions, primary-edition selection, manual field overrides, and the
// destructive full reset.
package library

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mkovalev/mybooks-backend/internal/domain"
)

type entryRepo interface {
	Insert(ctx context.Context, entry *domain.LibraryEntry) error
	List(ctx context.Context) ([]domain.LibraryEntry, error)
	GetByWork(ctx context.Context, workID uuid.UUID) (*domain.LibraryEntry, error)
	SetOwned(ctx context.Context, entryID uuid.UUID, owned bool) error
	DeleteAll(ctx context.Context) error
}

type workRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Work, error)
	Update(ctx context.Context, work *domain.Work) error
	DeleteAll(ctx context.Context) error
}

type editionRepo interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	ListByWork(ctx context.Context, workID uuid.UUID) ([]*domain.Edition, error)
	DeleteAll(ctx context.Context) error
}

type authorRepo interface {
	DeleteAll(ctx context.Context) error
}

type workAuthorRepo interface {
	DeleteAll(ctx context.Context) error
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service implements shelf operations.
type Service struct {
	log         *slog.Logger
	entries     entryRepo
	works       workRepo
	editions    editionRepo
	authors     authorRepo
	workAuthors workAuthorRepo
	tx          txManager
}

// NewService creates the library service.
func NewService(
	logger *slog.Logger,
	entries entryRepo,
	works workRepo,
	editions editionRepo,
	authors authorRepo,
	workAuthors workAuthorRepo,
	tx txManager,
) *Service {
	return &Service{
		log:         logger.With("service", "library"),
		entries:     entries,
		works:       works,
		editions:    editions,
		authors:     authors,
		workAuthors: workAuthors,
		tx:          tx,
	}
}

// AddEntry puts a work on the shelf, optionally pinned to a concrete edition.
// Both referenced entities must already exist: entries are relations and are
// only attached after their targets are durable.
func (s *Service) AddEntry(ctx context.Context, workID, editionID uuid.UUID, owned bool) (*domain.LibraryEntry, error) {
	if workID == uuid.Nil {
		return nil, domain.NewValidationError("work_id", "required")
	}
	if _, err := s.works.GetByID(ctx, workID); err != nil {
		return nil, fmt.Errorf("get work: %w", err)
	}
	if editionID != uuid.Nil {
		alive, err := s.editions.Exists(ctx, editionID)
		if err != nil {
			return nil, fmt.Errorf("check edition: %w", err)
		}
		if !alive {
			return nil, fmt.Errorf("edition %s: %w", editionID, domain.ErrNotFound)
		}
	}

	entry := &domain.LibraryEntry{
		ID:        uuid.New(),
		WorkID:    workID,
		EditionID: editionID,
		Owned:     owned,
		AddedAt:   time.Now().UTC(),
	}
	if err := s.entries.Insert(ctx, entry); err != nil {
		return nil, fmt.Errorf("insert entry: %w", err)
	}

	s.log.InfoContext(ctx, "library entry added",
		slog.String("entry_id", entry.ID.String()),
		slog.String("work_id", workID.String()),
	)
	return entry, nil
}

// ListEntries returns every shelf entry.
func (s *Service) ListEntries(ctx context.Context) ([]domain.LibraryEntry, error) {
	return s.entries.List(ctx)
}

// SetOwned marks or unmarks an entry's edition as owned.
func (s *Service) SetOwned(ctx context.Context, entryID uuid.UUID, owned bool) error {
	if err := s.entries.SetOwned(ctx, entryID, owned); err != nil {
		return fmt.Errorf("set owned: %w", err)
	}
	return nil
}

// PrimaryEdition picks the edition to display for a work. A shelf entry
// owning a concrete edition overrides scoring. Returns domain.ErrNotFound
// when the work has no editions at all.
func (s *Service) PrimaryEdition(ctx context.Context, workID uuid.UUID) (*domain.Edition, error) {
	editions, err := s.editions.ListByWork(ctx, workID)
	if err != nil {
		return nil, fmt.Errorf("list editions: %w", err)
	}

	var owned *uuid.UUID
	entry, err := s.entries.GetByWork(ctx, workID)
	switch {
	case err == nil:
		if entry.Owned && entry.EditionID != uuid.Nil {
			owned = &entry.EditionID
		}
	case errors.Is(err, domain.ErrNotFound):
		// not on the shelf, score everything
	default:
		return nil, fmt.Errorf("get entry: %w", err)
	}

	primary := PickPrimaryEdition(editions, owned)
	if primary == nil {
		return nil, fmt.Errorf("work %s has no editions: %w", workID, domain.ErrNotFound)
	}
	return primary, nil
}

// overridableFields names the work fields a user may edit by hand.
var overridableFields = map[string]func(w *domain.Work, value string){
	"title": func(w *domain.Work, v string) {
		w.Title = v
		w.TitleNormalized = domain.NormalizeText(v)
	},
	"subtitle":    func(w *domain.Work, v string) { w.Subtitle = v },
	"description": func(w *domain.Work, v string) { w.Description = v },
	"language":    func(w *domain.Work, v string) { w.Language = v },
	"cover_url":   func(w *domain.Work, v string) { w.CoverURL = v },
}

// OverrideWorkField applies a manual edit to one work field and advances the
// review status to USER_EDITED, which later merges can no longer displace.
func (s *Service) OverrideWorkField(ctx context.Context, workID uuid.UUID, field, value string) (*domain.Work, error) {
	set, ok := overridableFields[field]
	if !ok {
		return nil, domain.NewValidationError("field", fmt.Sprintf("%q is not overridable", field))
	}
	if field == "title" && domain.NormalizeText(value) == "" {
		return nil, domain.NewValidationError("value", "title cannot be empty")
	}

	work, err := s.works.GetByID(ctx, workID)
	if err != nil {
		return nil, fmt.Errorf("get work: %w", err)
	}

	set(work, value)
	work.ReviewStatus = domain.MaxReviewStatus(work.ReviewStatus, domain.ReviewStatusUserEdited)

	if err := s.works.Update(ctx, work); err != nil {
		return nil, fmt.Errorf("update work: %w", err)
	}

	s.log.InfoContext(ctx, "work field overridden",
		slog.String("work_id", workID.String()),
		slog.String("field", field),
	)
	return work, nil
}

// Reset wipes the shelf and every canonical entity in one transaction. The
// resolution cache is deliberately left alone: its entries go dangling and
// the resolver evicts them lazily on the next probe.
func (s *Service) Reset(ctx context.Context) error {
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.entries.DeleteAll(txCtx); err != nil {
			return fmt.Errorf("delete entries: %w", err)
		}
		if err := s.workAuthors.DeleteAll(txCtx); err != nil {
			return fmt.Errorf("delete work-author relations: %w", err)
		}
		if err := s.editions.DeleteAll(txCtx); err != nil {
			return fmt.Errorf("delete editions: %w", err)
		}
		if err := s.authors.DeleteAll(txCtx); err != nil {
			return fmt.Errorf("delete authors: %w", err)
		}
		if err := s.works.DeleteAll(txCtx); err != nil {
			return fmt.Errorf("delete works: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("reset library: %w", err)
	}

	s.log.WarnContext(ctx, "library reset completed")
	return nil
}
