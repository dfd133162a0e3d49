package dataset

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTempCSV(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	return path
}

func TestLoaderBooksCSV(t *testing.T) {
	csvData := `Title,description,authors,publisher,publishedDate,categories,ratingsCount
The Great Gatsby,A novel,"['F. Scott Fitzgerald']",Scribner,1925-04-10,"['Fiction']",360
Dune,,"['Frank Herbert']",,1965,,
`
	path := writeTempCSV(t, "books.csv", csvData)

	records, err := NewLoader(path).Books(0)
	if err != nil {
		t.Fatalf("Books() error: %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	first := records[0]
	if first.Title != "The Great Gatsby" {
		t.Errorf("Title = %q", first.Title)
	}
	if first.Authors != "['F. Scott Fitzgerald']" {
		t.Errorf("Authors = %q", first.Authors)
	}
	if first.PublishedDate != "1925-04-10" {
		t.Errorf("PublishedDate = %q", first.PublishedDate)
	}

	if records[1].Publisher != "" {
		t.Errorf("expected empty publisher, got %q", records[1].Publisher)
	}
}

func TestLoaderBooksCSVSampleLimit(t *testing.T) {
	csvData := "Title\nA\nB\nC\nD\n"
	path := writeTempCSV(t, "books.csv", csvData)

	records, err := NewLoader(path).Books(2)
	if err != nil {
		t.Fatalf("Books() error: %v", err)
	}
	if len(records) != 2 {
		t.Errorf("expected sample of 2 records, got %d", len(records))
	}
}

func TestLoaderReviewsCSV(t *testing.T) {
	csvData := `Id,Title,User_id,profileName,review/helpfulness,review/score,review/summary,review/text
B001,The Great Gatsby,U1,Jean,7/7,5.0,Loved it,A classic of the jazz age.
`
	path := writeTempCSV(t, "reviews.csv", csvData)

	records, err := NewLoader(path).Reviews(0)
	if err != nil {
		t.Fatalf("Reviews() error: %v", err)
	}

	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].Score != 5.0 {
		t.Errorf("Score = %v, want 5.0", records[0].Score)
	}
	if records[0].Summary != "Loved it" {
		t.Errorf("Summary = %q", records[0].Summary)
	}
}

func TestLoaderMissingFile(t *testing.T) {
	_, err := NewLoader(filepath.Join(t.TempDir(), "absent.csv")).Books(0)
	if err == nil {
		t.Fatal("expected error for missing input file")
	}
}

func TestLoaderUnsupportedFormat(t *testing.T) {
	path := writeTempCSV(t, "books.xlsx", "junk")
	if _, err := NewLoader(path).Books(0); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestSaveBooksCSVRoundTrip(t *testing.T) {
	norm := "the great gatsby"
	canonical := "The Great Gatsby"
	year := 1925
	records := []BookRecord{
		{
			Title:          "The Great Gatsby",
			Authors:        "['F. Scott Fitzgerald']",
			TitleNorm:      &norm,
			TitleCanonical: &canonical,
			PublishedYear:  &year,
		},
	}

	path := filepath.Join(t.TempDir(), "clean.csv")
	if err := SaveBooks(path, records); err != nil {
		t.Fatalf("SaveBooks() error: %v", err)
	}

	loaded, err := NewLoader(path).Books(0)
	if err != nil {
		t.Fatalf("Books() error: %v", err)
	}
	if len(loaded) != 1 {
		t.Fatalf("expected 1 record, got %d", len(loaded))
	}
	if loaded[0].Title != "The Great Gatsby" {
		t.Errorf("Title = %q", loaded[0].Title)
	}
	if loaded[0].TitleNorm == nil || *loaded[0].TitleNorm != "the great gatsby" {
		t.Errorf("TitleNorm = %v, want the great gatsby", loaded[0].TitleNorm)
	}
	if loaded[0].TitleCanonical == nil || *loaded[0].TitleCanonical != "The Great Gatsby" {
		t.Errorf("TitleCanonical = %v", loaded[0].TitleCanonical)
	}
	if loaded[0].PublishedYear == nil || *loaded[0].PublishedYear != 1925 {
		t.Errorf("PublishedYear = %v, want 1925", loaded[0].PublishedYear)
	}
	if loaded[0].AuthorsNorm != nil {
		t.Errorf("empty derived column should load as nil, got %q", *loaded[0].AuthorsNorm)
	}
}

func TestMissingFieldCount(t *testing.T) {
	full := BookRecord{
		Title: "T", Description: "D", Authors: "A", Publisher: "P",
		PublishedDate: "2000", Categories: "C", RatingsCount: "1",
	}
	canonical := "t"
	year := 2000
	full.TitleCanonical = &canonical
	full.AuthorsCanonical = &canonical
	full.PublisherCanonical = &canonical
	full.CategoriesCanonical = &canonical
	full.PublishedYear = &year

	if got := full.MissingFieldCount(); got != 0 {
		t.Errorf("complete record MissingFieldCount = %d, want 0", got)
	}

	empty := BookRecord{}
	if got := empty.MissingFieldCount(); got != 12 {
		t.Errorf("empty record MissingFieldCount = %d, want 12", got)
	}
}
