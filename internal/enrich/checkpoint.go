package enrich

import (
	"encoding/json"
	"fmt"
	"os"
)

// SaveResults serializes results to a JSON file. Used for both periodic
// checkpoints and the final artifact; the formats are identical so any
// checkpoint can seed a resumed run.
func SaveResults(path string, results []Result) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write results file: %w", err)
	}
	return nil
}

// LoadCheckpoint reads a results file written by SaveResults back into
// memory, typically to resume an interrupted enrichment run.
func LoadCheckpoint(path string) ([]Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read checkpoint: %w", err)
	}

	var results []Result
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, fmt.Errorf("failed to parse checkpoint: %w", err)
	}
	return results, nil
}
