package normalize

// Pair links a normalized key to the original spelling it was derived from.
// Rows whose normalization failed should not be submitted.
type Pair struct {
	Normalized string
	Original   string
}

// BuildCanonicalMap picks one canonical original-form spelling per
// normalized key: the most frequent original among rows sharing that key.
// When two originals are equally frequent the lexicographically smallest
// wins, so canonical naming is reproducible across runs.
func BuildCanonicalMap(pairs []Pair) map[string]string {
	counts := make(map[string]map[string]int)
	for _, p := range pairs {
		if p.Normalized == "" || p.Original == "" {
			continue
		}
		byOriginal, ok := counts[p.Normalized]
		if !ok {
			byOriginal = make(map[string]int)
			counts[p.Normalized] = byOriginal
		}
		byOriginal[p.Original]++
	}

	canonical := make(map[string]string, len(counts))
	for key, byOriginal := range counts {
		best := ""
		bestCount := 0
		for original, count := range byOriginal {
			if count > bestCount || (count == bestCount && original < best) {
				best = original
				bestCount = count
			}
		}
		canonical[key] = best
	}
	return canonical
}
