package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/parquet-go/parquet-go"
)

func newCSVReader(r io.Reader) *csv.Reader {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	return reader
}

// SaveBooks writes catalog records to a CSV or Parquet file by extension.
func SaveBooks(path string, records []BookRecord) error {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		return saveBooksCSV(path, records)
	case ".parquet":
		return saveParquet(path, records)
	default:
		return fmt.Errorf("unsupported output format: %s (supported: .csv, .parquet)", ext)
	}
}

// SaveReviews writes review records to a CSV or Parquet file by extension.
func SaveReviews(path string, records []ReviewRecord) error {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		return saveReviewsCSV(path, records)
	case ".parquet":
		return saveParquet(path, records)
	default:
		return fmt.Errorf("unsupported output format: %s (supported: .csv, .parquet)", ext)
	}
}

var bookCSVHeader = []string{
	"title", "description", "authors", "publisher", "published_date", "categories", "ratings_count",
	"title_norm", "authors_norm", "publisher_norm", "categories_norm",
	"title_canonical", "authors_canonical", "publisher_canonical", "categories_canonical",
	"published_year",
}

func saveBooksCSV(path string, records []BookRecord) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(bookCSVHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, r := range records {
		year := ""
		if r.PublishedYear != nil {
			year = strconv.Itoa(*r.PublishedYear)
		}
		row := []string{
			r.Title, r.Description, r.Authors, r.Publisher, r.PublishedDate, r.Categories, r.RatingsCount,
			deref(r.TitleNorm), deref(r.AuthorsNorm), deref(r.PublisherNorm), deref(r.CategoriesNorm),
			deref(r.TitleCanonical), deref(r.AuthorsCanonical), deref(r.PublisherCanonical), deref(r.CategoriesCanonical),
			year,
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	return nil
}

func saveReviewsCSV(path string, records []ReviewRecord) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	header := []string{"id", "title", "user_id", "profile_name", "helpfulness", "score", "summary", "text", "title_norm"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, r := range records {
		row := []string{
			r.ID, r.Title, r.UserID, r.ProfileName, r.Helpfulness,
			strconv.FormatFloat(r.Score, 'f', -1, 64), r.Summary, r.Text, deref(r.TitleNorm),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	return nil
}

func saveParquet[T any](path string, records []T) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	writer := parquet.NewGenericWriter[T](file)
	for offset := 0; offset < len(records); offset += 128 {
		end := offset + 128
		if end > len(records) {
			end = len(records)
		}
		if _, err := writer.Write(records[offset:end]); err != nil {
			return fmt.Errorf("failed to write parquet rows: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close parquet writer: %w", err)
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
