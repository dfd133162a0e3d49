package dedupe

import (
	"log/slog"

	"github.com/openshelf/bookpipe/internal/dataset"
)

// FindSimilarityClusters greedily clusters near-duplicate texts: rows are
// visited in input order, and each unvisited row pulls in every row whose
// cosine similarity to it meets the threshold. The lowest index in the
// group becomes the representative; the rest map to it. The pass is
// single-sweep and not transitively closed, so chains of near-duplicates
// can stay apart.
func FindSimilarityClusters(texts []string, threshold float64) (map[int]int, error) {
	if len(texts) < 2 {
		return map[int]int{}, nil
	}

	vectors, err := NewVectorizer().FitTransform(texts)
	if err != nil {
		return nil, err
	}

	duplicateOf := make(map[int]int)
	visited := make(map[int]struct{})

	for i := range texts {
		if _, done := visited[i]; done {
			continue
		}

		var similar []int
		for j := range texts {
			if cosineSimilarity(vectors[i], vectors[j]) >= threshold {
				similar = append(similar, j)
			}
		}

		if len(similar) < 2 {
			continue
		}

		representative := similar[0]
		for _, j := range similar[1:] {
			if _, done := visited[j]; done {
				continue
			}
			duplicateOf[j] = representative
			visited[j] = struct{}{}
		}
		visited[representative] = struct{}{}
	}

	return duplicateOf, nil
}

// DropSimilarityDuplicates removes near-duplicate catalog rows detected on
// one column. For every duplicate/representative pair the row with strictly
// fewer missing fields survives; otherwise the representative stays.
// Degenerate inputs (under two non-null values, empty vocabulary) leave the
// table untouched.
func DropSimilarityDuplicates(records []dataset.BookRecord, column string, value func(*dataset.BookRecord) *string, threshold float64) ([]dataset.BookRecord, int) {
	// Collect the non-null values and remember their row positions.
	var texts []string
	var rowIdx []int
	for i := range records {
		if v := value(&records[i]); v != nil && *v != "" {
			texts = append(texts, *v)
			rowIdx = append(rowIdx, i)
		}
	}

	if len(texts) < 2 {
		return records, 0
	}

	clusters, err := FindSimilarityClusters(texts, threshold)
	if err != nil {
		slog.Warn("Skipping similarity dedup pass", "column", column, "error", err)
		return records, 0
	}

	if len(clusters) == 0 {
		slog.Info("No near-duplicates detected", "column", column, "threshold", threshold)
		return records, 0
	}

	slog.Info("Detected potential near-duplicates", "column", column, "count", len(clusters), "threshold", threshold)

	toRemove := make(map[int]struct{})
	for dup, rep := range clusters {
		dupRow := rowIdx[dup]
		repRow := rowIdx[rep]

		if records[dupRow].MissingFieldCount() < records[repRow].MissingFieldCount() {
			toRemove[repRow] = struct{}{}
		} else {
			toRemove[dupRow] = struct{}{}
		}
	}

	kept := make([]dataset.BookRecord, 0, len(records)-len(toRemove))
	for i := range records {
		if _, drop := toRemove[i]; drop {
			continue
		}
		kept = append(kept, records[i])
	}

	slog.Info("Removed near-duplicate rows", "column", column, "removed", len(toRemove))
	return kept, len(toRemove)
}
