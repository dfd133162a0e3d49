package dedupe

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/openshelf/bookpipe/internal/dataset"
)

func strPtr(s string) *string { return &s }

func TestVectorizerStopWordsAndShortTokens(t *testing.T) {
	vectors, err := NewVectorizer().FitTransform([]string{"the great gatsby", "a b great gatsby!!"})
	if err != nil {
		t.Fatalf("FitTransform() error: %v", err)
	}

	// Stop words and single-character tokens carry no signal, so the two
	// texts reduce to the same term set and must be fully similar.
	if sim := cosineSimilarity(vectors[0], vectors[1]); sim < 0.999 {
		t.Errorf("cosine similarity = %.3f, want 1.0 for texts equal after filtering", sim)
	}
}

func TestVectorizerEmptyVocabulary(t *testing.T) {
	if _, err := NewVectorizer().FitTransform([]string{"the", "of a"}); err == nil {
		t.Fatal("expected empty-vocabulary error for stop-word-only input")
	}
}

func TestVectorizerMaxFeatures(t *testing.T) {
	v := &Vectorizer{MaxFeatures: 3}
	vectors, err := v.FitTransform([]string{"alpha beta gamma delta", "alpha beta gamma delta"})
	if err != nil {
		t.Fatalf("FitTransform() error: %v", err)
	}

	for _, vec := range vectors {
		if len(vec) > 3 {
			t.Errorf("vector has %d features, want at most 3", len(vec))
		}
	}
}

func TestFindSimilarityClusters(t *testing.T) {
	texts := []string{
		"harry potter sorcerers stone",
		"war peace tolstoy classic",
		"harry potter sorcerers stone",
		"moby dick whale voyage",
	}

	clusters, err := FindSimilarityClusters(texts, 0.90)
	if err != nil {
		t.Fatalf("FindSimilarityClusters() error: %v", err)
	}

	rep, ok := clusters[2]
	if !ok {
		t.Fatal("expected row 2 to be marked duplicate of row 0")
	}
	if rep != 0 {
		t.Errorf("representative = %d, want 0", rep)
	}
	if _, clustered := clusters[1]; clustered {
		t.Error("unrelated row 1 should not be in a cluster")
	}
}

func TestFindSimilarityClustersTooFewRows(t *testing.T) {
	clusters, err := FindSimilarityClusters([]string{"only one"}, 0.90)
	if err != nil {
		t.Fatalf("FindSimilarityClusters() error: %v", err)
	}
	if len(clusters) != 0 {
		t.Errorf("expected no clusters for a single row, got %v", clusters)
	}
}

func TestDropSimilarityDuplicatesKeepsMostComplete(t *testing.T) {
	// Row 1 duplicates row 0 but is more complete, so row 0 is dropped.
	records := []dataset.BookRecord{
		{Title: "Harry Potter", TitleCanonical: strPtr("harry potter sorcerers stone")},
		{
			Title: "Harry Potter", Description: "Novel", Authors: "['J. K. Rowling']",
			Publisher: "Scholastic", PublishedDate: "1998", Categories: "['Fantasy']",
			TitleCanonical: strPtr("harry potter sorcerers stone"),
		},
		{Title: "War and Peace", TitleCanonical: strPtr("war peace tolstoy classic")},
	}

	kept, removed := DropSimilarityDuplicates(records, "title_canonical", func(r *dataset.BookRecord) *string {
		return r.TitleCanonical
	}, 0.90)

	if removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}
	if len(kept) != 2 {
		t.Fatalf("kept %d rows, want 2", len(kept))
	}
	if kept[0].Description != "Novel" {
		t.Error("expected the more complete duplicate to survive")
	}
}

func TestDropSimilarityDuplicatesNeverIncreasesRows(t *testing.T) {
	records := []dataset.BookRecord{
		{TitleCanonical: strPtr("dune")},
		{TitleCanonical: strPtr("dune")},
		{TitleCanonical: nil},
	}

	kept, _ := DropSimilarityDuplicates(records, "title_canonical", func(r *dataset.BookRecord) *string {
		return r.TitleCanonical
	}, 0.90)

	if len(kept) > len(records) {
		t.Errorf("row count increased from %d to %d", len(records), len(kept))
	}
}

func TestDropSimilarityDuplicatesDegenerateInput(t *testing.T) {
	records := []dataset.BookRecord{
		{TitleCanonical: strPtr("dune")},
		{TitleCanonical: nil},
	}

	kept, removed := DropSimilarityDuplicates(records, "title_canonical", func(r *dataset.BookRecord) *string {
		return r.TitleCanonical
	}, 0.90)

	if removed != 0 || len(kept) != 2 {
		t.Errorf("degenerate input should be a no-op, got %d rows with %d removed", len(kept), removed)
	}
}

func TestDropKeyDuplicates(t *testing.T) {
	records := []dataset.BookRecord{
		{Title: "Dune", TitleCanonical: strPtr("Dune"), AuthorsCanonical: strPtr("frank herbert")},
		{
			Title: "Dune", Description: "Desert planet epic", Authors: "['Frank Herbert']",
			TitleCanonical: strPtr("Dune"), AuthorsCanonical: strPtr("frank herbert"),
		},
		{Title: "Emma", TitleCanonical: strPtr("Emma"), AuthorsCanonical: strPtr("jane austen")},
	}

	auditPath := filepath.Join(t.TempDir(), "duplicates.csv")
	kept, removed, err := DropKeyDuplicates(records, auditPath)
	if err != nil {
		t.Fatalf("DropKeyDuplicates() error: %v", err)
	}

	if removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}
	if len(kept) != 2 {
		t.Fatalf("kept %d rows, want 2", len(kept))
	}

	// The surviving Dune row is the more complete one.
	for _, r := range kept {
		if CompositeKey(&r) == "Dune_frank herbert" && r.Description == "" {
			t.Error("less complete duplicate survived")
		}
	}

	// The audit log holds exactly the removed row.
	data, err := os.ReadFile(auditPath)
	if err != nil {
		t.Fatalf("failed to read audit log: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 { // header + one removed row
		t.Errorf("audit log has %d lines, want 2", len(lines))
	}
}

func TestDropKeyDuplicatesTieKeepsFirst(t *testing.T) {
	records := []dataset.BookRecord{
		{Title: "First", TitleCanonical: strPtr("same"), AuthorsCanonical: strPtr("same")},
		{Title: "Second", TitleCanonical: strPtr("same"), AuthorsCanonical: strPtr("same")},
	}

	kept, removed, err := DropKeyDuplicates(records, "")
	if err != nil {
		t.Fatalf("DropKeyDuplicates() error: %v", err)
	}
	if removed != 1 || len(kept) != 1 {
		t.Fatalf("kept %d removed %d, want 1/1", len(kept), removed)
	}
	if kept[0].Title != "First" {
		t.Errorf("tie should keep the earliest row, kept %q", kept[0].Title)
	}
}

func TestDropKeyDuplicatesNilKeyParts(t *testing.T) {
	records := []dataset.BookRecord{
		{Title: "A"},
		{Title: "B"},
	}

	// Both rows share the "_" key built from nil canonical parts.
	kept, removed, err := DropKeyDuplicates(records, "")
	if err != nil {
		t.Fatalf("DropKeyDuplicates() error: %v", err)
	}
	if removed != 1 || len(kept) != 1 {
		t.Errorf("kept %d removed %d, want 1/1", len(kept), removed)
	}
}
