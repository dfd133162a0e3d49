package pipecmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/openshelf/bookpipe/internal/clean"
	"github.com/openshelf/bookpipe/internal/config"
	"github.com/openshelf/bookpipe/internal/dataset"
	"github.com/openshelf/bookpipe/internal/enrich"
	"github.com/openshelf/bookpipe/internal/openlibrary"
	"github.com/openshelf/bookpipe/internal/report"
)

func setupLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// cleanedBooksPath is where executeClean leaves the catalog for the later
// stages.
func cleanedBooksPath(outputDir string) string {
	return filepath.Join(outputDir, "books_cleaned.csv")
}

func executeClean(catalogPath, reviewsPath, outputDir string, limit int) error {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	summary := report.NewRunSummary(report.RunConfig{
		CatalogPath: catalogPath,
		ReviewsPath: reviewsPath,
		SampleLimit: limit,
	})

	books, err := dataset.NewLoader(catalogPath).Books(limit)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	auditPath := filepath.Join(outputDir, "removed_duplicates.csv")
	cleaned, stats, err := clean.CleanCatalog(books, auditPath)
	if err != nil {
		return err
	}
	summary.Catalog = &stats

	if err := dataset.SaveBooks(cleanedBooksPath(outputDir), cleaned); err != nil {
		return fmt.Errorf("failed to save cleaned catalog: %w", err)
	}

	if reviewsPath != "" {
		reviews, err := dataset.NewLoader(reviewsPath).Reviews(limit)
		if err != nil {
			return fmt.Errorf("failed to load reviews: %w", err)
		}

		cleanedReviews, reviewStats := clean.CleanReviews(reviews)
		summary.Reviews = &reviewStats

		if err := dataset.SaveReviews(filepath.Join(outputDir, "reviews_cleaned.csv"), cleanedReviews); err != nil {
			return fmt.Errorf("failed to save cleaned reviews: %w", err)
		}
	}

	if err := summary.Save(filepath.Join(outputDir, "clean_summary.yaml")); err != nil {
		return err
	}

	fmt.Printf("Cleaned %d rows down to %d (%d exact, %d title, %d author, %d key duplicates removed)\n",
		stats.RowsIn, stats.RowsOut, stats.ExactRemoved,
		stats.TitleSimilarityRemoved, stats.AuthorSimilarityRemoved, stats.KeyRemoved)
	return nil
}

func executeEnrich(inputPath, outputDir, resumePath string, limit, concurrency int) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if concurrency <= 0 {
		concurrency = cfg.Concurrency
	}

	books, err := dataset.NewLoader(inputPath).Books(0)
	if err != nil {
		return fmt.Errorf("failed to load cleaned catalog: %w", err)
	}

	worklist := enrich.FindMissing(books)
	if limit > 0 && limit < len(worklist) {
		worklist = worklist[:limit]
	}
	slog.Info("Built enrichment worklist", "rows", len(worklist), "total", len(books))

	var prior []enrich.Result
	if resumePath != "" {
		prior, err = enrich.LoadCheckpoint(resumePath)
		if err != nil {
			return fmt.Errorf("failed to resume from checkpoint: %w", err)
		}
	}

	resolver := enrich.NewResolver(openlibrary.NewClient(cfg.OpenLibraryURL, cfg.OpenLibraryTimeout))
	resolver.Delay = cfg.RequestDelay

	orchestrator := &enrich.Orchestrator{
		Resolver:           resolver,
		Concurrency:        concurrency,
		CheckpointInterval: cfg.CheckpointInterval,
		OutputDir:          outputDir,
	}

	results, stats, err := orchestrator.Run(context.Background(), worklist, prior)
	if err != nil {
		return err
	}

	summary := report.NewRunSummary(report.RunConfig{
		CatalogPath: inputPath,
		Concurrency: concurrency,
	})
	summary.Enrichment = &stats
	summary.CountStrategies(results)
	if err := summary.Save(filepath.Join(outputDir, "enrich_summary.yaml")); err != nil {
		return err
	}

	fmt.Printf("Enriched %d rows, %d with at least one field found (%.1f%%)\n",
		stats.Processed, stats.Succeeded, stats.SuccessRate)
	return nil
}

func executeApply(inputPath, resultsPath, outputPath string) error {
	books, err := dataset.NewLoader(inputPath).Books(0)
	if err != nil {
		return fmt.Errorf("failed to load cleaned catalog: %w", err)
	}

	results, err := enrich.LoadCheckpoint(resultsPath)
	if err != nil {
		return fmt.Errorf("failed to load enrichment results: %w", err)
	}

	filled := enrich.Apply(books, results)
	slog.Info("Applied enrichment results", "results", len(results), "fields_filled", filled)

	if err := dataset.SaveBooks(outputPath, books); err != nil {
		return fmt.Errorf("failed to save final table: %w", err)
	}

	summary := report.NewRunSummary(report.RunConfig{CatalogPath: inputPath})
	summary.FilledIn = filled
	if err := summary.Save(filepath.Join(filepath.Dir(outputPath), "apply_summary.yaml")); err != nil {
		return err
	}

	fmt.Printf("Filled %d fields from %d results; final table at %s\n", filled, len(results), outputPath)
	return nil
}

func executeRun(catalogPath, reviewsPath, outputDir string, limit, enrichLimit, concurrency int) error {
	if err := executeClean(catalogPath, reviewsPath, outputDir, limit); err != nil {
		return err
	}

	cleanedPath := cleanedBooksPath(outputDir)
	if err := executeEnrich(cleanedPath, outputDir, "", enrichLimit, concurrency); err != nil {
		return err
	}

	resultsPath := filepath.Join(outputDir, "enrichment_results.json")
	finalPath := filepath.Join(outputDir, "books_final.csv")
	return executeApply(cleanedPath, resultsPath, finalPath)
}
