package enrich

import (
	"log/slog"
	"strconv"

	"github.com/openshelf/bookpipe/internal/dataset"
)

// Apply copies enrichment results into the catalog, filling only fields
// that are still empty. Already-populated fields are never overwritten, so
// applying the same results twice leaves the table unchanged. Returns the
// number of fields filled.
func Apply(records []dataset.BookRecord, results []Result) int {
	filled := 0

	for i := range results {
		res := &results[i]
		if res.RowIndex < 0 || res.RowIndex >= len(records) {
			slog.Warn("Enrichment result references unknown row", "row", res.RowIndex)
			continue
		}
		r := &records[res.RowIndex]

		if r.AuthorsCanonical == nil && res.Authors != nil {
			r.AuthorsCanonical = res.Authors
			filled++
		}
		if r.PublisherCanonical == nil && res.Publisher != nil {
			r.PublisherCanonical = res.Publisher
			filled++
		}
		if r.CategoriesCanonical == nil && res.Categories != nil {
			r.CategoriesCanonical = res.Categories
			filled++
		}
		if r.PublishedYear == nil && res.PublishedYear != nil {
			r.PublishedYear = res.PublishedYear
			if r.PublishedDate == "" {
				r.PublishedDate = strconv.Itoa(*res.PublishedYear)
			}
			filled++
		}
	}

	return filled
}
