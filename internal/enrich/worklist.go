package enrich

import (
	"github.com/openshelf/bookpipe/internal/dataset"
)

// WorkItem is one row scheduled for enrichment. Title is the canonical
// spelling when known, else the raw title; Author is the normalized
// comma-joined author list, empty when unknown.
type WorkItem struct {
	RowIndex int    `json:"row_index"`
	Title    string `json:"title"`
	Author   string `json:"author,omitempty"`
}

// FindMissing scans the cleaned catalog for rows missing at least one of
// the enrichable fields (authors, publisher, categories, year) and returns
// their worklist, in row order.
func FindMissing(records []dataset.BookRecord) []WorkItem {
	var items []WorkItem

	for i := range records {
		r := &records[i]
		if r.AuthorsCanonical != nil && r.PublisherCanonical != nil &&
			r.CategoriesCanonical != nil && r.PublishedYear != nil {
			continue
		}

		title := r.Title
		if r.TitleCanonical != nil && *r.TitleCanonical != "" {
			title = *r.TitleCanonical
		}

		author := ""
		if r.AuthorsNorm != nil {
			author = *r.AuthorsNorm
		}

		items = append(items, WorkItem{RowIndex: i, Title: title, Author: author})
	}

	return items
}
