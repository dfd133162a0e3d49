// Package clean sequences the catalog cleaning stages: exact-duplicate
// removal, normalization, canonicalization, similarity deduplication, key
// deduplication, and the missing-field report.
package clean

import (
	"fmt"
	"log/slog"
	"regexp"
	"strconv"

	"github.com/openshelf/bookpipe/internal/dataset"
	"github.com/openshelf/bookpipe/internal/dedupe"
	"github.com/openshelf/bookpipe/internal/normalize"
)

const (
	// TitleSimilarityThreshold clusters near-duplicate canonical titles.
	TitleSimilarityThreshold = 0.90
	// AuthorSimilarityThreshold clusters near-duplicate canonical authors.
	// Author strings are shorter and denser, so the bar is higher.
	AuthorSimilarityThreshold = 0.95
)

var yearRe = regexp.MustCompile(`\d{4}`)

// FieldGap reports how many rows are missing one canonical column.
type FieldGap struct {
	Column  string  `json:"column" yaml:"column"`
	Missing int     `json:"missing" yaml:"missing"`
	Percent float64 `json:"percent" yaml:"percent"`
}

// CatalogStats summarizes the impact of every cleaning stage.
type CatalogStats struct {
	RowsIn                  int        `json:"rows_in" yaml:"rows_in"`
	ExactRemoved            int        `json:"exact_removed" yaml:"exact_removed"`
	TitleSimilarityRemoved  int        `json:"title_similarity_removed" yaml:"title_similarity_removed"`
	AuthorSimilarityRemoved int        `json:"author_similarity_removed" yaml:"author_similarity_removed"`
	KeyRemoved              int        `json:"key_removed" yaml:"key_removed"`
	RowsOut                 int        `json:"rows_out" yaml:"rows_out"`
	MissingFields           []FieldGap `json:"missing_fields" yaml:"missing_fields"`
}

// ReviewStats summarizes the review cleaning pass.
type ReviewStats struct {
	RowsIn       int `json:"rows_in" yaml:"rows_in"`
	ExactRemoved int `json:"exact_removed" yaml:"exact_removed"`
	RowsOut      int `json:"rows_out" yaml:"rows_out"`
}

// CleanCatalog runs the full cleaning sequence over the catalog and writes
// removed key-duplicates to the CSV audit log at auditPath. Stages mutate
// the rows in place and only ever shrink the table.
func CleanCatalog(records []dataset.BookRecord, auditPath string) ([]dataset.BookRecord, CatalogStats, error) {
	stats := CatalogStats{RowsIn: len(records)}

	records, stats.ExactRemoved = dropExactBookDuplicates(records)
	slog.Info("Exact duplicate rows removed", "removed", stats.ExactRemoved, "remaining", len(records))

	normalizeCatalog(records)
	canonicalizeCatalog(records)
	slog.Info("Normalization and canonicalization complete", "rows", len(records))

	records, stats.TitleSimilarityRemoved = dedupe.DropSimilarityDuplicates(records, "title_canonical",
		func(r *dataset.BookRecord) *string { return r.TitleCanonical }, TitleSimilarityThreshold)
	slog.Info("Title similarity duplicates removed", "removed", stats.TitleSimilarityRemoved, "remaining", len(records))

	records, stats.AuthorSimilarityRemoved = dedupe.DropSimilarityDuplicates(records, "authors_canonical",
		func(r *dataset.BookRecord) *string { return r.AuthorsCanonical }, AuthorSimilarityThreshold)
	slog.Info("Author similarity duplicates removed", "removed", stats.AuthorSimilarityRemoved, "remaining", len(records))

	records, keyRemoved, err := dedupe.DropKeyDuplicates(records, auditPath)
	if err != nil {
		return nil, stats, fmt.Errorf("key deduplication failed: %w", err)
	}
	stats.KeyRemoved = keyRemoved
	slog.Info("Composite key duplicates removed", "removed", keyRemoved, "remaining", len(records))

	stats.RowsOut = len(records)
	stats.MissingFields = missingFieldReport(records)
	for _, gap := range stats.MissingFields {
		slog.Info("Missing canonical field", "column", gap.Column, "missing", gap.Missing,
			"percent", fmt.Sprintf("%.1f%%", gap.Percent))
	}

	return records, stats, nil
}

// CleanReviews removes exact-duplicate review rows and derives the
// normalized title that links a review to the catalog.
func CleanReviews(reviews []dataset.ReviewRecord) ([]dataset.ReviewRecord, ReviewStats) {
	stats := ReviewStats{RowsIn: len(reviews)}

	seen := make(map[string]struct{}, len(reviews))
	kept := make([]dataset.ReviewRecord, 0, len(reviews))
	for _, r := range reviews {
		key := r.RawKey()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		r.TitleNorm = normalize.Scalar(r.Title)
		kept = append(kept, r)
	}

	stats.ExactRemoved = stats.RowsIn - len(kept)
	stats.RowsOut = len(kept)
	slog.Info("Review rows cleaned", "removed", stats.ExactRemoved, "remaining", len(kept))
	return kept, stats
}

func dropExactBookDuplicates(records []dataset.BookRecord) ([]dataset.BookRecord, int) {
	seen := make(map[string]struct{}, len(records))
	kept := make([]dataset.BookRecord, 0, len(records))
	for _, r := range records {
		key := r.RawKey()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, r)
	}
	return kept, len(records) - len(kept)
}

func normalizeCatalog(records []dataset.BookRecord) {
	for i := range records {
		r := &records[i]
		r.TitleNorm = normalize.Scalar(r.Title)
		r.AuthorsNorm = normalize.AuthorList(r.Authors)
		r.PublisherNorm = normalize.Scalar(r.Publisher)
		r.CategoriesNorm = normalize.CategoryList(r.Categories)
		r.PublishedYear = ParseYear(r.PublishedDate)
	}
}

// canonicalizeCatalog fills the canonical columns. The title maps each
// normalized value to its most frequent raw spelling across the table; the
// list-derived fields (authors, categories) and publisher canonicalize over
// their normalized form, since the raw column holds unnormalized literals
// that must never surface in the output. A nil normalized value always
// yields a nil canonical value.
func canonicalizeCatalog(records []dataset.BookRecord) {
	columns := []struct {
		norm      func(*dataset.BookRecord) *string
		original  func(*dataset.BookRecord) string
		canonical func(*dataset.BookRecord, *string)
	}{
		{
			norm:      func(r *dataset.BookRecord) *string { return r.TitleNorm },
			original:  func(r *dataset.BookRecord) string { return r.Title },
			canonical: func(r *dataset.BookRecord, v *string) { r.TitleCanonical = v },
		},
		{
			norm:      func(r *dataset.BookRecord) *string { return r.AuthorsNorm },
			original:  func(r *dataset.BookRecord) string { return derefOrEmpty(r.AuthorsNorm) },
			canonical: func(r *dataset.BookRecord, v *string) { r.AuthorsCanonical = v },
		},
		{
			norm:      func(r *dataset.BookRecord) *string { return r.PublisherNorm },
			original:  func(r *dataset.BookRecord) string { return derefOrEmpty(r.PublisherNorm) },
			canonical: func(r *dataset.BookRecord, v *string) { r.PublisherCanonical = v },
		},
		{
			norm:      func(r *dataset.BookRecord) *string { return r.CategoriesNorm },
			original:  func(r *dataset.BookRecord) string { return derefOrEmpty(r.CategoriesNorm) },
			canonical: func(r *dataset.BookRecord, v *string) { r.CategoriesCanonical = v },
		},
	}

	for _, col := range columns {
		pairs := make([]normalize.Pair, 0, len(records))
		for i := range records {
			if n := col.norm(&records[i]); n != nil {
				pairs = append(pairs, normalize.Pair{Normalized: *n, Original: col.original(&records[i])})
			}
		}

		canonicalByNorm := normalize.BuildCanonicalMap(pairs)
		for i := range records {
			n := col.norm(&records[i])
			if n == nil {
				col.canonical(&records[i], nil)
				continue
			}
			canonical := canonicalByNorm[*n]
			col.canonical(&records[i], &canonical)
		}
	}
}

func derefOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// ParseYear extracts the first four-digit year from a raw date string.
// Returns nil when no year is present.
func ParseYear(date string) *int {
	match := yearRe.FindString(date)
	if match == "" {
		return nil
	}
	year, err := strconv.Atoi(match)
	if err != nil {
		return nil
	}
	return &year
}

func missingFieldReport(records []dataset.BookRecord) []FieldGap {
	columns := []struct {
		name  string
		value func(*dataset.BookRecord) bool
	}{
		{"title_canonical", func(r *dataset.BookRecord) bool { return r.TitleCanonical == nil }},
		{"authors_canonical", func(r *dataset.BookRecord) bool { return r.AuthorsCanonical == nil }},
		{"publisher_canonical", func(r *dataset.BookRecord) bool { return r.PublisherCanonical == nil }},
		{"categories_canonical", func(r *dataset.BookRecord) bool { return r.CategoriesCanonical == nil }},
		{"published_year", func(r *dataset.BookRecord) bool { return r.PublishedYear == nil }},
	}

	gaps := make([]FieldGap, 0, len(columns))
	for _, col := range columns {
		missing := 0
		for i := range records {
			if col.value(&records[i]) {
				missing++
			}
		}
		percent := 0.0
		if len(records) > 0 {
			percent = float64(missing) / float64(len(records)) * 100
		}
		gaps = append(gaps, FieldGap{Column: col.name, Missing: missing, Percent: percent})
	}
	return gaps
}
