// Package importer orchestrates a CSV library import: validate the upload,
// map rows to records, and resolve each row into canonical entities.
package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/google/uuid"

	"github.com/mkovalev/mybooks-backend/internal/csvimport"
	"github.com/mkovalev/mybooks-backend/internal/domain"
)

type workResolver interface {
	Resolve(ctx context.Context, rec domain.WorkRecord) (*domain.Work, error)
}

type editionResolver interface {
	Resolve(ctx context.Context, rec domain.EditionRecord) (*domain.Edition, error)
}

type authorResolver interface {
	Resolve(ctx context.Context, rec domain.AuthorRecord) (*domain.Author, error)
}

type editionFinder interface {
	FindByExternalIDs(ctx context.Context, ids []domain.ExternalID) ([]*domain.Edition, error)
}

type authorLookup interface {
	GetByNameNormalized(ctx context.Context, nameNormalized string) (*domain.Author, error)
}

type workAuthorRepo interface {
	Relate(ctx context.Context, workID, authorID uuid.UUID) error
}

// Service runs CSV imports. Rows are processed sequentially: the resolvers
// already serialize per entity kind, and a library export is small enough
// that order beats parallelism here.
type Service struct {
	log         *slog.Logger
	works       workResolver
	editions    editionResolver
	authors     authorResolver
	editionIdx  editionFinder
	authorIdx   authorLookup
	workAuthors workAuthorRepo
	maxRows     int
}

// NewService creates the import service. maxRows <= 0 selects the validator
// default.
func NewService(
	logger *slog.Logger,
	works workResolver,
	editions editionResolver,
	authors authorResolver,
	editionIdx editionFinder,
	authorIdx authorLookup,
	workAuthors workAuthorRepo,
	maxRows int,
) *Service {
	return &Service{
		log:         logger.With("service", "importer"),
		works:       works,
		editions:    editions,
		authors:     authors,
		editionIdx:  editionIdx,
		authorIdx:   authorIdx,
		workAuthors: workAuthors,
		maxRows:     maxRows,
	}
}

// RowIssue is a per-row import problem. Issues never abort the import.
type RowIssue struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

// ImportResult summarizes one finished import.
type ImportResult struct {
	Rows     int        `json:"rows"`
	Imported int        `json:"imported"`
	Issues   []RowIssue `json:"issues,omitempty"`
}

// ImportCSV validates and imports one uploaded CSV export. A grammar
// violation fails the whole upload with a validation error; row-level
// problems are reported in the result and the remaining rows proceed.
func (s *Service) ImportCSV(ctx context.Context, csvText string) (*ImportResult, error) {
	cleaned := sanitizeExport(csvText)

	if err := csvimport.Validate(cleaned, s.maxRows); err != nil {
		return nil, err
	}

	rows, mapIssues := csvimport.MapRows(csvimport.Records(cleaned), "csv")

	result := &ImportResult{Rows: len(rows) + len(mapIssues)}
	for _, e := range mapIssues {
		result.Issues = append(result.Issues, RowIssue{Line: e.Line, Reason: e.Reason})
	}

	// Authors repeat heavily inside one export; remember resolutions by
	// normalized name so a 300-row shelf does not hit the store 300 times.
	seenAuthors := make(map[string]*domain.Author)

	for _, row := range rows {
		if err := s.importRow(ctx, row, seenAuthors); err != nil {
			if errors.Is(err, domain.ErrValidation) {
				result.Issues = append(result.Issues, RowIssue{Line: row.Line, Reason: err.Error()})
				continue
			}
			return nil, fmt.Errorf("import row at line %d: %w", row.Line, err)
		}
		result.Imported++
	}

	s.log.InfoContext(ctx, "csv import finished",
		slog.Int("rows", result.Rows),
		slog.Int("imported", result.Imported),
		slog.Int("issues", len(result.Issues)),
	)
	return result, nil
}

// importRow resolves one row: authors, then the work, then the edition.
// The work is durably created before any author relation is attached, and
// before the edition references it.
func (s *Service) importRow(ctx context.Context, row csvimport.RowRecords, seenAuthors map[string]*domain.Author) error {
	workID, err := s.resolveWork(ctx, row)
	if err != nil {
		return err
	}

	for _, rec := range row.Authors {
		author, err := s.resolveAuthor(ctx, rec, seenAuthors)
		if err != nil {
			return err
		}
		if err := s.workAuthors.Relate(ctx, workID, author.ID); err != nil {
			return fmt.Errorf("relate author %s: %w", author.ID, err)
		}
	}

	edition := row.Edition
	edition.WorkID = workID
	if _, err := s.editions.Resolve(ctx, edition); err != nil {
		return fmt.Errorf("resolve edition: %w", err)
	}
	return nil
}

// resolveWork finds the canonical work for the row. CSV rows carry no
// work-level identifiers, so identity comes from the edition: if any of the
// row's edition ids already belong to a known edition, that edition's work is
// reused instead of minting a synthetic duplicate.
func (s *Service) resolveWork(ctx context.Context, row csvimport.RowRecords) (uuid.UUID, error) {
	if ids := row.Edition.IDs(); len(ids) > 0 {
		known, err := s.editionIdx.FindByExternalIDs(ctx, ids)
		if err != nil {
			return uuid.Nil, fmt.Errorf("look up edition ids: %w", err)
		}
		for _, ed := range known {
			if ed.WorkID != uuid.Nil {
				return ed.WorkID, nil
			}
		}
	}

	work, err := s.works.Resolve(ctx, row.Work)
	if err != nil {
		return uuid.Nil, fmt.Errorf("resolve work: %w", err)
	}
	return work.ID, nil
}

// resolveAuthor dedupes by normalized name: CSV rows carry author names, not
// catalog ids, so name identity is all there is to go on.
func (s *Service) resolveAuthor(ctx context.Context, rec domain.AuthorRecord, seen map[string]*domain.Author) (*domain.Author, error) {
	norm := domain.NormalizeText(rec.Name)
	if a, ok := seen[norm]; ok {
		return a, nil
	}

	author, err := s.authorIdx.GetByNameNormalized(ctx, norm)
	if errors.Is(err, domain.ErrNotFound) {
		author, err = s.authors.Resolve(ctx, rec)
	}
	if err != nil {
		return nil, fmt.Errorf("resolve author %q: %w", rec.Name, err)
	}

	seen[norm] = author
	return author, nil
}

// isbnWrapper matches the ="..." cell wrapper Goodreads emits for ISBN
// columns to stop spreadsheets from eating leading zeros. It is stripped
// before validation because a bare = followed by a quote is a stray quote
// under the grammar.
var isbnWrapper = regexp.MustCompile(`="([0-9Xx-]*)"`)

func sanitizeExport(csvText string) string {
	return isbnWrapper.ReplaceAllString(csvText, "$1")
}
