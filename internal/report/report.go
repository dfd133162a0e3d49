// Package report writes the run-summary YAML artifact that records the
// impact of every pipeline stage.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/openshelf/bookpipe/internal/clean"
	"github.com/openshelf/bookpipe/internal/enrich"
)

// RunConfig records the inputs and settings of a pipeline run.
type RunConfig struct {
	CatalogPath string `yaml:"catalogpath"`
	ReviewsPath string `yaml:"reviewspath,omitempty"`
	SampleLimit int    `yaml:"samplelimit,omitempty"`
	Concurrency int    `yaml:"concurrency,omitempty"`
	Timestamp   string `yaml:"timestamp"`
}

// StrategyUsage counts winning matches per search strategy.
type StrategyUsage struct {
	Strategy string `yaml:"strategy"`
	Count    int    `yaml:"count"`
}

// RunSummary is the complete YAML artifact for one pipeline run. Sections
// are omitted when the corresponding stage did not run.
type RunSummary struct {
	Config     RunConfig           `yaml:"config"`
	Catalog    *clean.CatalogStats `yaml:"catalog,omitempty"`
	Reviews    *clean.ReviewStats  `yaml:"reviews,omitempty"`
	Enrichment *enrich.RunStats    `yaml:"enrichment,omitempty"`
	Strategies []StrategyUsage     `yaml:"strategies,omitempty"`
	FilledIn   int                 `yaml:"fieldsfilled,omitempty"`
}

// NewRunSummary stamps a summary with the run configuration and the
// current time.
func NewRunSummary(config RunConfig) *RunSummary {
	config.Timestamp = time.Now().Format("2006-01-02_15-04-05")
	return &RunSummary{Config: config}
}

// CountStrategies tallies which search strategy produced each successful
// enrichment, sorted by the strategy ladder's own order.
func (s *RunSummary) CountStrategies(results []enrich.Result) {
	counts := map[string]int{}
	for i := range results {
		if results[i].Strategy != nil {
			counts[*results[i].Strategy]++
		}
	}

	for _, name := range []string{"title_author", "title_only", "free_text", "keywords"} {
		if counts[name] > 0 {
			s.Strategies = append(s.Strategies, StrategyUsage{Strategy: name, Count: counts[name]})
		}
	}
}

// Save writes the summary to a YAML file, creating parent directories as
// needed.
func (s *RunSummary) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create summary directory: %w", err)
		}
	}

	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	return nil
}
