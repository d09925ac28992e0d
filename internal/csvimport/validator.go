// Package csvimport validates and maps untrusted CSV book exports before any
// record reaches the entity resolver.
package csvimport

import (
	"fmt"
	"strings"

	"github.com/mkovalev/mybooks-backend/internal/domain"
)

// DefaultMaxRows is the data-row limit applied when the caller passes a
// non-positive limit to Validate.
const DefaultMaxRows = 500

// ErrorKind discriminates the CSV grammar violations.
type ErrorKind string

const (
	ErrInsufficientRows      ErrorKind = "insufficient_rows"
	ErrEmptyHeader           ErrorKind = "empty_header"
	ErrUnclosedQuote         ErrorKind = "unclosed_quote"
	ErrStrayQuote            ErrorKind = "stray_quote"
	ErrMismatchedColumnCount ErrorKind = "mismatched_column_count"
	ErrTooManyRows           ErrorKind = "too_many_rows"
)

// ValidateError is a recoverable, user-facing CSV violation. It carries
// enough to render a line-numbered message: Line is the 1-based physical
// line where applicable, the remaining fields depend on Kind.
type ValidateError struct {
	Kind     ErrorKind
	Line     int
	Count    int
	Limit    int
	Expected int
	Actual   int
}

func (e *ValidateError) Error() string {
	switch e.Kind {
	case ErrInsufficientRows:
		return fmt.Sprintf("csv needs a header and at least one data row, found %d line(s)", e.Count)
	case ErrEmptyHeader:
		return "csv header row has no column names"
	case ErrUnclosedQuote:
		return fmt.Sprintf("line %d: quoted field is never closed", e.Line)
	case ErrStrayQuote:
		return fmt.Sprintf("line %d: unexpected quote inside an unquoted field", e.Line)
	case ErrMismatchedColumnCount:
		return fmt.Sprintf("line %d: expected %d columns, found %d", e.Line, e.Expected, e.Actual)
	case ErrTooManyRows:
		return fmt.Sprintf("csv has %d data rows, the limit is %d", e.Count, e.Limit)
	}
	return fmt.Sprintf("csv validation failed: %s", e.Kind)
}

func (e *ValidateError) Unwrap() error { return domain.ErrValidation }

// Validate checks csvText against the import grammar in a single lexer pass.
// maxRows <= 0 selects DefaultMaxRows. When several rules are violated at
// once, the reported violation is chosen by rule priority, not scan order:
// row count, empty header, unclosed quote, stray quote, column-count
// mismatch, row limit.
func Validate(csvText string, maxRows int) error {
	if maxRows <= 0 {
		maxRows = DefaultMaxRows
	}

	if strings.TrimSpace(csvText) == "" {
		return &ValidateError{Kind: ErrInsufficientRows, Count: 0}
	}

	lx := lex(csvText)
	recs := nonBlank(lx.records)

	if len(recs) < 2 {
		return &ValidateError{Kind: ErrInsufficientRows, Count: len(recs)}
	}

	header := recs[0]
	if allBlank(header.fields) {
		return &ValidateError{Kind: ErrEmptyHeader, Line: header.line}
	}

	if lx.unclosedQuoteLine > 0 {
		return &ValidateError{Kind: ErrUnclosedQuote, Line: lx.unclosedQuoteLine}
	}
	if lx.strayQuoteLine > 0 {
		return &ValidateError{Kind: ErrStrayQuote, Line: lx.strayQuoteLine}
	}

	for _, r := range recs[1:] {
		if len(r.fields) != len(header.fields) {
			return &ValidateError{
				Kind:     ErrMismatchedColumnCount,
				Line:     r.line,
				Expected: len(header.fields),
				Actual:   len(r.fields),
			}
		}
	}

	if dataRows := len(recs) - 1; dataRows > maxRows {
		return &ValidateError{Kind: ErrTooManyRows, Count: dataRows, Limit: maxRows}
	}

	return nil
}

// Record is one logical CSV record with the 1-based physical line it
// started on.
type Record struct {
	Fields []string
	Line   int
}

// Records splits already-validated text into logical records (header first),
// blank lines removed. Call Validate first: Records performs no checking.
func Records(csvText string) []Record {
	recs := nonBlank(lex(csvText).records)
	out := make([]Record, len(recs))
	for i, r := range recs {
		out[i] = Record{Fields: r.fields, Line: r.line}
	}
	return out
}
