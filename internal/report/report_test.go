package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/openshelf/bookpipe/internal/clean"
	"github.com/openshelf/bookpipe/internal/enrich"
)

func TestRunSummarySave(t *testing.T) {
	summary := NewRunSummary(RunConfig{CatalogPath: "books.csv", Concurrency: 20})
	summary.Catalog = &clean.CatalogStats{RowsIn: 100, RowsOut: 80, ExactRemoved: 20}
	summary.Enrichment = &enrich.RunStats{Processed: 10, Succeeded: 7, SuccessRate: 70}
	summary.FilledIn = 13

	path := filepath.Join(t.TempDir(), "reports", "summary.yaml")
	if err := summary.Save(path); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read summary: %v", err)
	}

	text := string(data)
	for _, want := range []string{"catalogpath: books.csv", "rows_in: 100", "success_rate: 70", "fieldsfilled: 13"} {
		if !strings.Contains(text, want) {
			t.Errorf("summary missing %q:\n%s", want, text)
		}
	}

	if summary.Config.Timestamp == "" {
		t.Error("timestamp not stamped")
	}
}

func TestCountStrategies(t *testing.T) {
	titleAuthor := "title_author"
	freeText := "free_text"
	results := []enrich.Result{
		{Strategy: &titleAuthor},
		{Strategy: &titleAuthor},
		{Strategy: &freeText},
		{},
	}

	summary := NewRunSummary(RunConfig{})
	summary.CountStrategies(results)

	if len(summary.Strategies) != 2 {
		t.Fatalf("got %d strategies, want 2", len(summary.Strategies))
	}
	if summary.Strategies[0].Strategy != "title_author" || summary.Strategies[0].Count != 2 {
		t.Errorf("first strategy = %+v", summary.Strategies[0])
	}
	if summary.Strategies[1].Strategy != "free_text" || summary.Strategies[1].Count != 1 {
		t.Errorf("second strategy = %+v", summary.Strategies[1])
	}
}
