package csvimport

import (
	"strconv"
	"strings"

	"github.com/mkovalev/mybooks-backend/internal/domain"
)

// RowRecords is one data row mapped onto provider-agnostic records, ready
// for the resolver. Line is the physical line the row started on, for
// per-row error reporting downstream.
type RowRecords struct {
	Line    int
	Work    domain.WorkRecord
	Edition domain.EditionRecord
	Authors []domain.AuthorRecord
}

// RowError reports a data row that could not be mapped. Mapping errors are
// per-row and never abort the rest of the file.
type RowError struct {
	Line   int
	Reason string
}

// Column names recognized in the header, lowercased. The set follows the
// Goodreads library export format, which is what most users upload.
const (
	colTitle       = "title"
	colAuthor      = "author"
	colAddlAuthors = "additional authors"
	colISBN        = "isbn"
	colISBN13      = "isbn13"
	colBookID      = "book id"
	colPublisher   = "publisher"
	colBinding     = "binding"
	colPages       = "number of pages"
	colYear        = "year published"
	colOrigYear    = "original publication year"
	colASIN        = "asin"
)

// MapRows converts validated records (header first) into per-row domain
// records. Unknown columns are ignored; rows without a title are reported
// and skipped.
func MapRows(records []Record, provider string) ([]RowRecords, []RowError) {
	if len(records) < 2 {
		return nil, nil
	}

	idx := make(map[string]int, len(records[0].Fields))
	for i, name := range records[0].Fields {
		idx[strings.ToLower(strings.TrimSpace(name))] = i
	}

	var (
		rows []RowRecords
		errs []RowError
	)
	for _, rec := range records[1:] {
		get := func(col string) string {
			i, ok := idx[col]
			if !ok || i >= len(rec.Fields) {
				return ""
			}
			return strings.TrimSpace(rec.Fields[i])
		}

		title := get(colTitle)
		if title == "" {
			errs = append(errs, RowError{Line: rec.Line, Reason: "row has no title"})
			continue
		}

		contributors := splitAuthors(get(colAuthor), get(colAddlAuthors))

		work := domain.WorkRecord{
			Title:           title,
			FirstPubYear:    parseYear(get(colOrigYear)),
			Contributors:    contributors,
			Synthetic:       true,
			PrimaryProvider: provider,
			ReviewStatus:    domain.ReviewStatusNeedsReview,
		}

		var editionIDs []domain.ExternalID
		if v := cleanISBN(get(colISBN13)); v != "" {
			editionIDs = append(editionIDs, domain.ExternalID{Kind: domain.IDKindISBN13, Value: v})
		}
		if v := cleanISBN(get(colISBN)); v != "" {
			editionIDs = append(editionIDs, domain.ExternalID{Kind: domain.IDKindISBN10, Value: v})
		}
		if v := get(colBookID); v != "" {
			editionIDs = append(editionIDs, domain.ExternalID{Kind: domain.IDKindGoodreadsBook, Value: v})
		}
		if v := get(colASIN); v != "" {
			editionIDs = append(editionIDs, domain.ExternalID{Kind: domain.IDKindAmazonASIN, Value: v})
		}

		edition := domain.EditionRecord{
			Title:           title,
			Publisher:       get(colPublisher),
			PubYear:         parseYear(get(colYear)),
			PageCount:       parsePages(get(colPages)),
			Format:          parseBinding(get(colBinding)),
			ExternalIDs:     editionIDs,
			Synthetic:       false,
			PrimaryProvider: provider,
			ReviewStatus:    domain.ReviewStatusNeedsReview,
		}

		authors := make([]domain.AuthorRecord, 0, len(contributors))
		for _, name := range contributors {
			authors = append(authors, domain.AuthorRecord{
				Name:            name,
				Synthetic:       true,
				PrimaryProvider: provider,
				ReviewStatus:    domain.ReviewStatusNeedsReview,
			})
		}

		rows = append(rows, RowRecords{
			Line:    rec.Line,
			Work:    work,
			Edition: edition,
			Authors: authors,
		})
	}

	return rows, errs
}

// cleanISBN strips the ="..." wrapper Goodreads uses to stop spreadsheets
// from eating leading zeros, plus any hyphens.
func cleanISBN(s string) string {
	s = strings.TrimPrefix(s, "=")
	s = strings.Trim(s, `"`)
	s = strings.ReplaceAll(s, "-", "")
	return strings.TrimSpace(s)
}

func splitAuthors(primary, additional string) []string {
	var names []string
	if primary != "" {
		names = append(names, primary)
	}
	for _, n := range strings.Split(additional, ",") {
		if n = strings.TrimSpace(n); n != "" {
			names = append(names, n)
		}
	}
	// Dedupe while preserving order; exports often repeat the primary author.
	seen := make(map[string]bool, len(names))
	out := names[:0]
	for _, n := range names {
		key := domain.NormalizeText(n)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, n)
	}
	return out
}

func parseYear(s string) *int {
	if s == "" {
		return nil
	}
	y, err := strconv.Atoi(s)
	if err != nil || y <= 0 {
		return nil
	}
	return &y
}

func parsePages(s string) *int {
	if s == "" {
		return nil
	}
	p, err := strconv.Atoi(s)
	if err != nil || p <= 0 {
		return nil
	}
	return &p
}

func parseBinding(s string) domain.EditionFormat {
	switch strings.ToLower(s) {
	case "hardcover", "hardback", "library binding":
		return domain.FormatHardcover
	case "paperback", "mass market paperback", "trade paperback", "softcover":
		return domain.FormatPaperback
	case "kindle edition", "ebook", "nook":
		return domain.FormatEbook
	case "audiobook", "audio cd", "audible audio":
		return domain.FormatAudiobook
	}
	return domain.FormatUnknown
}
