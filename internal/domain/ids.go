package domain

import (
	"sort"
	"strings"
)

// IDKind names the external catalog an identifier comes from.
type IDKind string

const (
	IDKindOpenLibraryWork    IDKind = "ol_work"
	IDKindOpenLibraryEdition IDKind = "ol_edition"
	IDKindOpenLibraryAuthor  IDKind = "ol_author"
	IDKindISBN13             IDKind = "isbn_13"
	IDKindISBN10             IDKind = "isbn_10"
	IDKindGoogleBooksVolume  IDKind = "gbooks_volume"
	IDKindGoodreadsWork      IDKind = "goodreads_work"
	IDKindGoodreadsBook      IDKind = "goodreads_book"
	IDKindGoodreadsAuthor    IDKind = "goodreads_author"
	IDKindAmazonASIN         IDKind = "amazon_asin"
	IDKindLibraryThing       IDKind = "librarything"
	IDKindVIAF               IDKind = "viaf"
)

// idKindPriority fixes the tie-break order when a record carries identifiers
// that already map to different live entities: the lowest number wins.
// Unknown kinds rank last.
var idKindPriority = map[IDKind]int{
	IDKindISBN13:             1,
	IDKindISBN10:             2,
	IDKindOpenLibraryWork:    3,
	IDKindOpenLibraryEdition: 3,
	IDKindOpenLibraryAuthor:  3,
	IDKindGoogleBooksVolume:  4,
	IDKindGoodreadsWork:      5,
	IDKindGoodreadsBook:      5,
	IDKindGoodreadsAuthor:    5,
	IDKindAmazonASIN:         6,
	IDKindLibraryThing:       7,
	IDKindVIAF:               8,
}

// Priority returns the tie-break rank of the kind; lower is stronger.
func (k IDKind) Priority() int {
	if p, ok := idKindPriority[k]; ok {
		return p
	}
	return 99
}

// ExternalID is one identifier for an entity in an external catalog.
type ExternalID struct {
	Kind  IDKind `json:"kind"`
	Value string `json:"value"`
}

// IsZero reports whether the identifier is empty and must be ignored.
func (id ExternalID) IsZero() bool {
	return strings.TrimSpace(id.Value) == ""
}

// CompactIDs drops empty identifiers and duplicates, preserving first-seen
// order within a kind, and sorts the result by kind priority. The sort makes
// cache probing deterministic: the strongest identifier is always tried first.
func CompactIDs(ids []ExternalID) []ExternalID {
	seen := make(map[ExternalID]bool, len(ids))
	out := make([]ExternalID, 0, len(ids))
	for _, id := range ids {
		if id.IsZero() || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Kind.Priority() < out[j].Kind.Priority()
	})
	return out
}

// IntersectIDs reports whether the two identifier sets share at least one
// non-empty identifier. Two empty sets never intersect: empty-vs-empty is
// "no match", not "match everything".
func IntersectIDs(a, b []ExternalID) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	set := make(map[ExternalID]bool, len(a))
	for _, id := range a {
		if !id.IsZero() {
			set[id] = true
		}
	}
	for _, id := range b {
		if !id.IsZero() && set[id] {
			return true
		}
	}
	return false
}

// UnionIDs merges two identifier sets. Existing identifiers keep their
// position; new ones are appended in their incoming order. The result never
// shrinks: identifier lists on canonical entities only ever grow.
func UnionIDs(existing, incoming []ExternalID) []ExternalID {
	seen := make(map[ExternalID]bool, len(existing)+len(incoming))
	out := make([]ExternalID, 0, len(existing)+len(incoming))
	for _, id := range existing {
		if id.IsZero() || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	for _, id := range incoming {
		if id.IsZero() || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
