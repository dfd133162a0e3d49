package dedupe

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/openshelf/bookpipe/internal/dataset"
)

// CompositeKey builds the exact-duplicate identity of a catalog row from
// its canonical title and authors; nil parts contribute an empty string.
func CompositeKey(r *dataset.BookRecord) string {
	key := ""
	if r.TitleCanonical != nil {
		key = *r.TitleCanonical
	}
	key += "_"
	if r.AuthorsCanonical != nil {
		key += *r.AuthorsCanonical
	}
	return key
}

// DropKeyDuplicates removes all but one row per composite title+authors
// key, keeping the most complete row (fewest missing fields; ties keep the
// earliest input row). Every removed row is appended to a CSV audit log
// with its columns intact before being dropped. Fully deterministic for a
// given input ordering.
func DropKeyDuplicates(records []dataset.BookRecord, auditPath string) ([]dataset.BookRecord, int, error) {
	order := make([]int, len(records))
	for i := range order {
		order[i] = i
	}

	// Most complete rows first; stable so ties keep input order.
	sort.SliceStable(order, func(a, b int) bool {
		return records[order[a]].MissingFieldCount() < records[order[b]].MissingFieldCount()
	})

	seen := make(map[string]struct{}, len(records))
	surviving := make(map[int]struct{}, len(records))
	var removed []dataset.BookRecord

	for _, i := range order {
		key := CompositeKey(&records[i])
		if _, dup := seen[key]; dup {
			removed = append(removed, records[i])
			continue
		}
		seen[key] = struct{}{}
		surviving[i] = struct{}{}
	}

	if len(removed) > 0 && auditPath != "" {
		if err := dataset.SaveBooks(auditPath, removed); err != nil {
			return nil, 0, fmt.Errorf("failed to write duplicate audit log: %w", err)
		}
		slog.Warn("Duplicates recorded in audit log", "count", len(removed), "path", auditPath)
	}

	// Survivors keep their original input order.
	kept := make([]dataset.BookRecord, 0, len(surviving))
	for i := range records {
		if _, keep := surviving[i]; keep {
			kept = append(kept, records[i])
		}
	}

	return kept, len(removed), nil
}
