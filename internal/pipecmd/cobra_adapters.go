// Package pipecmd holds the flag surfaces and execution entry points of
// the pipeline subcommands.
package pipecmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewCleanCmd creates the clean command for deduplicating the raw catalog
func NewCleanCmd() *cobra.Command {
	var catalogPath string
	var reviewsPath string
	var outputDir string
	var limit int
	var verbose bool

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Normalize and deduplicate the raw catalog",
		Long: `Clean the raw book catalog: drop exact-duplicate rows, derive normalized
and canonical spellings per field, remove near-duplicate records by title and
author similarity, and collapse rows sharing a canonical title/author key.

Removed key-duplicates are written to a CSV audit log next to the cleaned
table, and a YAML run summary records the impact of every stage.`,
		Example: `  # Clean a CSV catalog together with its reviews
  bookpipe clean --catalog books.csv --reviews reviews.csv

  # Development run over the first 5000 rows of a parquet catalog
  bookpipe clean --catalog books.parquet --limit 5000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			setupLogging(verbose)

			if _, err := os.Stat(catalogPath); os.IsNotExist(err) {
				return fmt.Errorf("catalog file not found: %s", catalogPath)
			}
			if reviewsPath != "" {
				if _, err := os.Stat(reviewsPath); os.IsNotExist(err) {
					return fmt.Errorf("reviews file not found: %s", reviewsPath)
				}
			}

			return executeClean(catalogPath, reviewsPath, outputDir, limit)
		},
	}

	cmd.Flags().StringVar(&catalogPath, "catalog", "", "Path to the raw catalog table (csv, parquet, or jsonl)")
	cmd.Flags().StringVar(&reviewsPath, "reviews", "", "Path to the raw reviews table (optional)")
	cmd.Flags().StringVar(&outputDir, "output", "data/modified", "Output directory for cleaned tables and artifacts")
	cmd.Flags().IntVar(&limit, "limit", 0, "Process only the first N rows (0 for all)")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "Verbose logging")

	_ = cmd.MarkFlagRequired("catalog")
	return cmd
}

// NewEnrichCmd creates the enrich command for filling catalog gaps from Open Library
func NewEnrichCmd() *cobra.Command {
	var inputPath string
	var outputDir string
	var resumePath string
	var limit int
	var concurrency int
	var verbose bool

	cmd := &cobra.Command{
		Use:   "enrich",
		Short: "Fill missing catalog fields from Open Library",
		Long: `Scan the cleaned catalog for rows missing authors, publisher, categories,
or publication year, and query the Open Library search API for each one using
a ladder of search strategies. Results are checkpointed to JSON at a fixed
interval so an interrupted run can be resumed with --resume.`,
		Example: `  # Enrich a cleaned catalog
  bookpipe enrich --input data/modified/books_cleaned.csv

  # Resume from a checkpoint, limited to 1000 more rows
  bookpipe enrich --input data/modified/books_cleaned.csv \
    --resume data/modified/checkpoint_500.json --limit 1000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			setupLogging(verbose)

			if _, err := os.Stat(inputPath); os.IsNotExist(err) {
				return fmt.Errorf("input file not found: %s", inputPath)
			}

			return executeEnrich(inputPath, outputDir, resumePath, limit, concurrency)
		},
	}

	cmd.Flags().StringVar(&inputPath, "input", "", "Path to the cleaned catalog table")
	cmd.Flags().StringVar(&outputDir, "output", "data/modified", "Output directory for results and checkpoints")
	cmd.Flags().StringVar(&resumePath, "resume", "", "Checkpoint file to resume from")
	cmd.Flags().IntVar(&limit, "limit", 0, "Enrich only the first N worklist rows (0 for all)")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "Worker count (0 uses the configured default)")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "Verbose logging")

	_ = cmd.MarkFlagRequired("input")
	return cmd
}

// NewApplyCmd creates the apply command for merging enrichment results
func NewApplyCmd() *cobra.Command {
	var inputPath string
	var resultsPath string
	var outputPath string
	var verbose bool

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Merge enrichment results into the cleaned catalog",
		Long: `Apply a JSON enrichment results file to the cleaned catalog. Only fields
that are still empty are filled; existing values are never overwritten, so
the command is safe to re-run.`,
		Example: `  bookpipe apply --input data/modified/books_cleaned.csv \
    --results data/modified/enrichment_results.json \
    --final data/modified/books_final.csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			setupLogging(verbose)

			for _, path := range []string{inputPath, resultsPath} {
				if _, err := os.Stat(path); os.IsNotExist(err) {
					return fmt.Errorf("file not found: %s", path)
				}
			}

			return executeApply(inputPath, resultsPath, outputPath)
		},
	}

	cmd.Flags().StringVar(&inputPath, "input", "", "Path to the cleaned catalog table")
	cmd.Flags().StringVar(&resultsPath, "results", "", "Path to the enrichment results JSON")
	cmd.Flags().StringVar(&outputPath, "final", "data/modified/books_final.csv", "Path for the final table")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "Verbose logging")

	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("results")
	return cmd
}

// NewRunCmd creates the run command for the full pipeline
func NewRunCmd() *cobra.Command {
	var catalogPath string
	var reviewsPath string
	var outputDir string
	var limit int
	var enrichLimit int
	var concurrency int
	var verbose bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full pipeline: clean, enrich, apply",
		Example: `  bookpipe run --catalog books.csv --reviews reviews.csv

  # Bounded development run
  bookpipe run --catalog books.csv --limit 10000 --enrich-limit 500`,
		RunE: func(cmd *cobra.Command, args []string) error {
			setupLogging(verbose)

			if _, err := os.Stat(catalogPath); os.IsNotExist(err) {
				return fmt.Errorf("catalog file not found: %s", catalogPath)
			}
			if reviewsPath != "" {
				if _, err := os.Stat(reviewsPath); os.IsNotExist(err) {
					return fmt.Errorf("reviews file not found: %s", reviewsPath)
				}
			}

			return executeRun(catalogPath, reviewsPath, outputDir, limit, enrichLimit, concurrency)
		},
	}

	cmd.Flags().StringVar(&catalogPath, "catalog", "", "Path to the raw catalog table")
	cmd.Flags().StringVar(&reviewsPath, "reviews", "", "Path to the raw reviews table (optional)")
	cmd.Flags().StringVar(&outputDir, "output", "data/modified", "Output directory for all artifacts")
	cmd.Flags().IntVar(&limit, "limit", 0, "Process only the first N catalog rows (0 for all)")
	cmd.Flags().IntVar(&enrichLimit, "enrich-limit", 0, "Enrich only the first N worklist rows (0 for all)")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "Worker count (0 uses the configured default)")
	cmd.Flags().BoolVar(&verbose, "verbose", false, "Verbose logging")

	_ = cmd.MarkFlagRequired("catalog")
	return cmd
}
