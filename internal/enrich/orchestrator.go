package enrich

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// RunStats aggregates one enrichment run.
type RunStats struct {
	Processed   int     `json:"processed" yaml:"processed"`
	Succeeded   int     `json:"succeeded" yaml:"succeeded"`
	SuccessRate float64 `json:"success_rate" yaml:"success_rate"`
}

// Orchestrator runs the resolver over a worklist with bounded concurrency,
// checkpointing partial results so an interrupted run can be resumed.
type Orchestrator struct {
	Resolver           *Resolver
	Concurrency        int
	CheckpointInterval int
	OutputDir          string
}

// Run resolves every worklist item and returns the accumulated results
// together with run statistics. Item failures produce empty results, never
// abort the batch. Result order follows completion order, not row order.
func (o *Orchestrator) Run(ctx context.Context, items []WorkItem, prior []Result) ([]Result, RunStats, error) {
	stats := RunStats{}

	items = skipResolved(items, prior)
	slog.Info("Starting enrichment", "items", len(items), "resumed", len(prior), "concurrency", o.Concurrency)

	if o.OutputDir != "" {
		if err := os.MkdirAll(o.OutputDir, 0o755); err != nil {
			return nil, stats, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, o.Concurrency)
	resultsChan := make(chan Result, len(items))

	for i, item := range items {
		wg.Add(1)
		go func(idx int, item WorkItem) {
			defer wg.Done()
			semaphore <- struct{}{}        // Acquire
			defer func() { <-semaphore }() // Release

			slog.Debug("Resolving row", "row", item.RowIndex, "progress", fmt.Sprintf("%d/%d", idx+1, len(items)))
			resultsChan <- o.Resolver.Resolve(ctx, item.RowIndex, item.Title, item.Author)
		}(i, item)
	}

	// Wait for all goroutines to finish
	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	// Collect results; the accumulator is owned by this goroutine only.
	results := append([]Result(nil), prior...)
	succeeded := 0
	for _, r := range prior {
		if r.Found() {
			succeeded++
		}
	}

	processed := 0
	for result := range resultsChan {
		results = append(results, result)
		processed++
		if result.Found() {
			succeeded++
		}

		if o.CheckpointInterval > 0 && processed%o.CheckpointInterval == 0 {
			rate := float64(succeeded) / float64(len(results)) * 100
			slog.Info("Enrichment progress", "processed", processed, "total", len(items),
				"success_rate", fmt.Sprintf("%.1f%%", rate))

			if o.OutputDir != "" {
				path := filepath.Join(o.OutputDir, fmt.Sprintf("checkpoint_%d.json", processed))
				if err := SaveResults(path, results); err != nil {
					slog.Warn("Failed to write checkpoint", "path", path, "error", err)
				}
			}
		}
	}

	stats.Processed = len(results)
	stats.Succeeded = succeeded
	if len(results) > 0 {
		stats.SuccessRate = float64(succeeded) / float64(len(results)) * 100
	}
	slog.Info("Enrichment complete", "processed", stats.Processed, "succeeded", stats.Succeeded,
		"success_rate", fmt.Sprintf("%.1f%%", stats.SuccessRate))

	if o.OutputDir != "" {
		path := filepath.Join(o.OutputDir, "enrichment_results.json")
		if err := SaveResults(path, results); err != nil {
			return nil, stats, fmt.Errorf("failed to save enrichment results: %w", err)
		}
		slog.Info("Saved enrichment results", "path", path)
	}

	return results, stats, nil
}

// skipResolved drops worklist items already covered by a prior checkpoint.
func skipResolved(items []WorkItem, prior []Result) []WorkItem {
	if len(prior) == 0 {
		return items
	}

	done := make(map[int]struct{}, len(prior))
	for _, r := range prior {
		done[r.RowIndex] = struct{}{}
	}

	remaining := make([]WorkItem, 0, len(items))
	for _, item := range items {
		if _, ok := done[item.RowIndex]; ok {
			continue
		}
		remaining = append(remaining, item)
	}
	return remaining
}
