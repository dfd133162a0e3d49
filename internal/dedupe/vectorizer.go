package dedupe

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// englishStopWords are filtered out before n-gram extraction so that
// high-frequency function words do not dominate the similarity signal.
var englishStopWords = map[string]struct{}{
	"a": {}, "about": {}, "above": {}, "after": {}, "again": {}, "against": {},
	"all": {}, "am": {}, "an": {}, "and": {}, "any": {}, "are": {}, "as": {},
	"at": {}, "be": {}, "because": {}, "been": {}, "before": {}, "being": {},
	"below": {}, "between": {}, "both": {}, "but": {}, "by": {}, "could": {},
	"did": {}, "do": {}, "does": {}, "doing": {}, "down": {}, "during": {},
	"each": {}, "few": {}, "for": {}, "from": {}, "further": {}, "had": {},
	"has": {}, "have": {}, "having": {}, "he": {}, "her": {}, "here": {},
	"hers": {}, "him": {}, "his": {}, "how": {}, "i": {}, "if": {}, "in": {},
	"into": {}, "is": {}, "it": {}, "its": {}, "me": {}, "more": {}, "most": {},
	"my": {}, "no": {}, "nor": {}, "not": {}, "of": {}, "off": {}, "on": {},
	"once": {}, "only": {}, "or": {}, "other": {}, "our": {}, "out": {},
	"over": {}, "own": {}, "same": {}, "she": {}, "so": {}, "some": {},
	"such": {}, "than": {}, "that": {}, "the": {}, "their": {}, "them": {},
	"then": {}, "there": {}, "these": {}, "they": {}, "this": {}, "those": {},
	"through": {}, "to": {}, "too": {}, "under": {}, "until": {}, "up": {},
	"very": {}, "was": {}, "we": {}, "were": {}, "what": {}, "when": {},
	"where": {}, "which": {}, "while": {}, "who": {}, "whom": {}, "why": {},
	"will": {}, "with": {}, "you": {}, "your": {},
}

// Vectorizer builds TF-IDF weighted bag-of-n-gram vectors (unigrams and
// bigrams) over a column of text values. The vocabulary is capped at
// MaxFeatures terms, kept by document frequency with lexicographic
// tie-break for reproducibility.
type Vectorizer struct {
	MaxFeatures int
}

// NewVectorizer creates a vectorizer with the default 1000-feature cap.
func NewVectorizer() *Vectorizer {
	return &Vectorizer{MaxFeatures: 1000}
}

// FitTransform learns the vocabulary from texts and returns one
// L2-normalized sparse vector per input text. Fails when no term survives
// stop-word filtering, which callers treat as "skip this dedup pass".
func (v *Vectorizer) FitTransform(texts []string) ([]map[int]float64, error) {
	docTerms := make([][]string, len(texts))
	docFreq := make(map[string]int)

	for i, text := range texts {
		terms := extractNGrams(text)
		docTerms[i] = terms

		seen := make(map[string]struct{}, len(terms))
		for _, term := range terms {
			if _, dup := seen[term]; dup {
				continue
			}
			seen[term] = struct{}{}
			docFreq[term]++
		}
	}

	if len(docFreq) == 0 {
		return nil, fmt.Errorf("empty vocabulary: no terms survived filtering")
	}

	vocabulary := v.selectVocabulary(docFreq)

	// Smoothed IDF, as if one extra document contained every term.
	n := float64(len(texts))
	idf := make([]float64, len(vocabulary))
	terms := make(map[string]int, len(vocabulary))
	for termIdx, term := range vocabulary {
		terms[term] = termIdx
		idf[termIdx] = math.Log((1+n)/(1+float64(docFreq[term]))) + 1
	}

	vectors := make([]map[int]float64, len(texts))
	for i, docTermList := range docTerms {
		vector := make(map[int]float64)
		for _, term := range docTermList {
			if termIdx, ok := terms[term]; ok {
				vector[termIdx] += idf[termIdx]
			}
		}
		normalizeVector(vector)
		vectors[i] = vector
	}

	return vectors, nil
}

// selectVocabulary keeps the MaxFeatures highest-document-frequency terms.
func (v *Vectorizer) selectVocabulary(docFreq map[string]int) []string {
	vocabulary := make([]string, 0, len(docFreq))
	for term := range docFreq {
		vocabulary = append(vocabulary, term)
	}

	sort.Slice(vocabulary, func(i, j int) bool {
		if docFreq[vocabulary[i]] != docFreq[vocabulary[j]] {
			return docFreq[vocabulary[i]] > docFreq[vocabulary[j]]
		}
		return vocabulary[i] < vocabulary[j]
	})

	if v.MaxFeatures > 0 && len(vocabulary) > v.MaxFeatures {
		vocabulary = vocabulary[:v.MaxFeatures]
	}
	return vocabulary
}

// extractNGrams tokenizes text into lowercase alphanumeric words, drops
// stop words, and emits unigrams plus adjacent bigrams.
func extractNGrams(text string) []string {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})

	kept := words[:0]
	for _, word := range words {
		if len(word) < 2 {
			continue
		}
		if _, stop := englishStopWords[word]; stop {
			continue
		}
		kept = append(kept, word)
	}

	terms := make([]string, 0, 2*len(kept))
	terms = append(terms, kept...)
	for i := 0; i+1 < len(kept); i++ {
		terms = append(terms, kept[i]+" "+kept[i+1])
	}
	return terms
}

// normalizeVector scales a sparse vector to unit L2 norm in place, so
// cosine similarity reduces to a dot product.
func normalizeVector(vector map[int]float64) {
	var sumSquares float64
	for _, weight := range vector {
		sumSquares += weight * weight
	}
	if sumSquares == 0 {
		return
	}
	norm := math.Sqrt(sumSquares)
	for termIdx, weight := range vector {
		vector[termIdx] = weight / norm
	}
}

// cosineSimilarity computes the dot product of two unit-norm sparse
// vectors, iterating the smaller of the two.
func cosineSimilarity(a, b map[int]float64) float64 {
	if len(b) < len(a) {
		a, b = b, a
	}
	var dot float64
	for termIdx, weight := range a {
		if other, ok := b[termIdx]; ok {
			dot += weight * other
		}
	}
	return dot
}
