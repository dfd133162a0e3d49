package dataset

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/parquet-go/parquet-go"
)

// Loader reads catalog or review tables from CSV, Parquet, or JSONL files,
// detected by extension.
type Loader struct {
	path string
}

// NewLoader creates a loader for the given table file.
func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

// Books loads catalog records. A positive limit caps the number of rows
// read, useful for development runs against a sample.
func (l *Loader) Books(limit int) ([]BookRecord, error) {
	switch ext := strings.ToLower(filepath.Ext(l.path)); ext {
	case ".csv":
		return loadCSV(l.path, limit, bookFromCSVRow)
	case ".parquet":
		return loadParquet[BookRecord](l.path, limit)
	case ".jsonl", ".json":
		return loadJSONL[BookRecord](l.path, limit)
	default:
		return nil, fmt.Errorf("unsupported table format: %s (supported: .csv, .parquet, .jsonl)", ext)
	}
}

// Reviews loads review records with the same format detection as Books.
func (l *Loader) Reviews(limit int) ([]ReviewRecord, error) {
	switch ext := strings.ToLower(filepath.Ext(l.path)); ext {
	case ".csv":
		return loadCSV(l.path, limit, reviewFromCSVRow)
	case ".parquet":
		return loadParquet[ReviewRecord](l.path, limit)
	case ".jsonl", ".json":
		return loadJSONL[ReviewRecord](l.path, limit)
	default:
		return nil, fmt.Errorf("unsupported table format: %s (supported: .csv, .parquet, .jsonl)", ext)
	}
}

// bookFromCSVRow maps a header-indexed CSV row onto a BookRecord. Column
// naming follows the raw Kaggle exports but snake_case variants are
// accepted too; field presence is the real contract. Derived columns are
// present only in tables the pipeline itself wrote, so a cleaned table
// reloads with its normalized and canonical values intact.
func bookFromCSVRow(get func(...string) string) BookRecord {
	r := BookRecord{
		Title:         get("title"),
		Description:   get("description"),
		Authors:       get("authors"),
		Publisher:     get("publisher"),
		PublishedDate: get("publisheddate", "published_date"),
		Categories:    get("categories"),
		RatingsCount:  get("ratingscount", "ratings_count"),
	}

	r.TitleNorm = optionalString(get("title_norm"))
	r.AuthorsNorm = optionalString(get("authors_norm"))
	r.PublisherNorm = optionalString(get("publisher_norm"))
	r.CategoriesNorm = optionalString(get("categories_norm"))
	r.TitleCanonical = optionalString(get("title_canonical"))
	r.AuthorsCanonical = optionalString(get("authors_canonical"))
	r.PublisherCanonical = optionalString(get("publisher_canonical"))
	r.CategoriesCanonical = optionalString(get("categories_canonical"))

	if year, err := strconv.Atoi(get("published_year")); err == nil {
		r.PublishedYear = &year
	}

	return r
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func reviewFromCSVRow(get func(...string) string) ReviewRecord {
	score, _ := strconv.ParseFloat(get("review/score", "score"), 64)
	return ReviewRecord{
		ID:          get("id"),
		Title:       get("title"),
		UserID:      get("user_id", "userid"),
		ProfileName: get("profilename", "profile_name"),
		Helpfulness: get("review/helpfulness", "helpfulness"),
		Score:       score,
		Summary:     get("review/summary", "summary"),
		Text:        get("review/text", "text"),
	}
}

func loadCSV[T any](path string, limit int, fromRow func(func(...string) string) T) ([]T, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open table file: %w", err)
	}
	defer file.Close()

	reader := newCSVReader(file)

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}

	var records []T
	rowNum := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		rowNum++
		if err != nil {
			// Recoverable per-row failures are skipped, not fatal.
			slog.Warn("Skipping malformed CSV row", "path", path, "row", rowNum, "error", err)
			continue
		}

		get := func(names ...string) string {
			for _, name := range names {
				if i, ok := index[name]; ok && i < len(row) {
					return strings.TrimSpace(row[i])
				}
			}
			return ""
		}

		records = append(records, fromRow(get))
		if limit > 0 && len(records) >= limit {
			break
		}

		if rowNum%100000 == 0 {
			slog.Debug("Reading CSV", "path", path, "rows_read", rowNum)
		}
	}

	slog.Debug("Finished reading CSV", "path", path, "records", len(records))
	return records, nil
}

func loadParquet[T any](path string, limit int) ([]T, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	pf, err := parquet.OpenFile(file, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to open parquet: %w", err)
	}

	slog.Debug("Parquet file opened", "path", path, "num_rows", pf.NumRows(), "num_row_groups", len(pf.RowGroups()))

	reader := parquet.NewGenericReader[T](pf)
	defer reader.Close()

	var records []T
	rows := make([]T, 128) // Read in batches

	for limit <= 0 || len(records) < limit {
		n, err := reader.Read(rows)
		if n > 0 {
			if limit > 0 && len(records)+n > limit {
				n = limit - len(records)
			}
			records = append(records, rows[:n]...)
		}
		if err != nil {
			break
		}
	}

	slog.Debug("Finished reading parquet", "path", path, "records", len(records))
	return records, nil
}

func loadJSONL[T any](path string, limit int) ([]T, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open table file: %w", err)
	}
	defer file.Close()

	var records []T
	scanner := bufio.NewScanner(file)

	const maxCapacity = 10 * 1024 * 1024 // 10MB per line
	buf := make([]byte, maxCapacity)
	scanner.Buffer(buf, maxCapacity)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()

		if len(line) == 0 {
			continue
		}

		var record T
		if err := json.Unmarshal(line, &record); err != nil {
			slog.Warn("Skipping malformed JSON line", "path", path, "line", lineNum, "error", err)
			continue
		}

		records = append(records, record)
		if limit > 0 && len(records) >= limit {
			break
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading table: %w", err)
	}

	return records, nil
}
