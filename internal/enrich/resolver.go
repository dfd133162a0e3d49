// Package enrich fills gaps in the cleaned catalog by querying the Open
// Library search API with a ladder of search strategies and scoring each
// candidate document against the row being enriched.
package enrich

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/openshelf/bookpipe/internal/fuzzy"
	"github.com/openshelf/bookpipe/internal/openlibrary"
)

const (
	// minMatchScore is the floor below which a candidate is ignored.
	minMatchScore = 0.6
	// strategyStopScore ends the strategy ladder once the best match
	// clears it.
	strategyStopScore = 0.8
	// immediateStopScore ends the whole search on a near-exact match.
	immediateStopScore = 0.9
	// authorBonus is added when any candidate author matches the row's.
	authorBonus = 0.2

	searchLimit = 20
)

// Words that dilute a title query without narrowing it.
var searchStopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {},
	"in": {}, "on": {}, "at": {}, "to": {}, "for": {}, "of": {},
	"with": {}, "by": {},
}

var (
	// Letters and digits in any script survive; accented names must keep
	// their accents or the query no longer matches the API's index.
	nonWordRe = regexp.MustCompile(`[^\p{L}\p{N}\s]`)
	multiWsRe = regexp.MustCompile(`\s+`)
	docYearRe = regexp.MustCompile(`\d{4}`)
)

// Result is one enrichment outcome per worklist item. Metadata fields are
// nil when the winning candidate did not carry them, or when no candidate
// cleared the score floor.
type Result struct {
	RowIndex       int     `json:"row_index"`
	Authors        *string `json:"authors,omitempty"`
	Publisher      *string `json:"publisher,omitempty"`
	Categories     *string `json:"categories,omitempty"`
	PublishedYear  *int    `json:"published_year,omitempty"`
	Strategy       *string `json:"strategy_used,omitempty"`
	MatchScore     float64 `json:"match_score"`
	CandidatesSeen int     `json:"candidates_seen"`
}

// Found reports whether the result carries at least one metadata field.
func (r *Result) Found() bool {
	return r.Authors != nil || r.Publisher != nil || r.Categories != nil || r.PublishedYear != nil
}

// Resolver scores Open Library candidates against catalog rows.
type Resolver struct {
	client *openlibrary.Client
	// Delay is slept before every request to respect the API rate limit.
	Delay time.Duration
}

// NewResolver creates an enrichment resolver backed by the given client.
func NewResolver(client *openlibrary.Client) *Resolver {
	return &Resolver{client: client}
}

// Resolve searches for the row's metadata, trying strategies from most to
// least specific and keeping the best-scoring candidate seen so far. A
// strategy that errors is logged and skipped; the row never fails outright.
// An empty normalized title short-circuits to an empty result with no
// network traffic.
func (r *Resolver) Resolve(ctx context.Context, rowIndex int, title, author string) Result {
	best := Result{RowIndex: rowIndex}

	searchTitle := normalizeSearchTitle(title)
	searchAuthor := normalizeSearchAuthor(author)
	if searchTitle == "" {
		return best
	}

	for _, strategy := range buildStrategies(searchTitle, searchAuthor) {
		if r.Delay > 0 {
			time.Sleep(r.Delay)
		}

		docs, err := r.client.Search(ctx, strategy.query, searchLimit)
		if err != nil {
			slog.Warn("Search strategy failed", "strategy", strategy.name, "row", rowIndex, "error", err)
			continue
		}
		if len(docs) == 0 {
			continue
		}

		for i := range docs {
			score := scoreCandidate(&docs[i], title, searchAuthor)
			if score <= best.MatchScore || score <= minMatchScore {
				continue
			}

			best = extractMetadata(&docs[i], rowIndex, strategy.name, score, len(docs))
			if score > immediateStopScore {
				return best
			}
		}

		if best.MatchScore > strategyStopScore {
			break
		}
	}

	return best
}

type searchStrategy struct {
	name  string
	query string
}

// buildStrategies orders the query ladder from most to least specific.
func buildStrategies(searchTitle, searchAuthor string) []searchStrategy {
	var strategies []searchStrategy

	if searchAuthor != "" {
		strategies = append(strategies, searchStrategy{
			name:  "title_author",
			query: fmt.Sprintf("title:%s author:%s", searchTitle, searchAuthor),
		})
	}

	strategies = append(strategies,
		searchStrategy{name: "title_only", query: "title:" + searchTitle},
		searchStrategy{name: "free_text", query: searchTitle},
	)

	words := strings.Fields(searchTitle)
	if len(words) > 3 {
		words = words[:3]
	}
	if keywords := strings.Join(words, " "); len(keywords) > 5 {
		strategies = append(strategies, searchStrategy{name: "keywords", query: keywords})
	}

	return strategies
}

// scoreCandidate rates one document against the row: title similarity plus
// a flat bonus when any candidate author resembles the row's author.
// Capped at 1.0.
func scoreCandidate(doc *openlibrary.Doc, title, searchAuthor string) float64 {
	score := fuzzy.Similarity(title, doc.Title)

	if searchAuthor != "" {
		for _, candidate := range doc.AuthorName {
			if fuzzy.Similarity(searchAuthor, candidate) > 0.7 {
				score += authorBonus
				break
			}
		}
	}

	if score > 1.0 {
		score = 1.0
	}
	return score
}

func extractMetadata(doc *openlibrary.Doc, rowIndex int, strategy string, score float64, candidates int) Result {
	result := Result{
		RowIndex:       rowIndex,
		Strategy:       &strategy,
		MatchScore:     score,
		CandidatesSeen: candidates,
	}

	if len(doc.AuthorName) > 0 {
		authors := doc.AuthorName
		if len(authors) > 3 {
			authors = authors[:3]
		}
		joined := strings.Join(authors, ", ")
		result.Authors = &joined
	}

	if len(doc.Publisher) > 0 {
		publisher := doc.Publisher[0]
		result.Publisher = &publisher
	}

	if len(doc.Subject) > 0 {
		subjects := doc.Subject
		if len(subjects) > 5 {
			subjects = subjects[:5]
		}
		joined := strings.Join(subjects, ", ")
		result.Categories = &joined
	}

	if doc.FirstPublishYear != 0 {
		year := doc.FirstPublishYear
		result.PublishedYear = &year
	} else if len(doc.PublishDate) > 0 {
		if match := docYearRe.FindString(doc.PublishDate[0]); match != "" {
			if year, err := strconv.Atoi(match); err == nil {
				result.PublishedYear = &year
			}
		}
	}

	return result
}

// normalizeSearchTitle reduces a title to the query terms most likely to
// match: lowercase, punctuation stripped, stop words and short tokens
// dropped, capped at the first five words.
func normalizeSearchTitle(title string) string {
	cleaned := nonWordRe.ReplaceAllString(strings.ToLower(strings.TrimSpace(title)), "")
	cleaned = multiWsRe.ReplaceAllString(cleaned, " ")

	var kept []string
	for _, word := range strings.Fields(cleaned) {
		if _, stop := searchStopWords[word]; stop {
			continue
		}
		if utf8.RuneCountInString(word) <= 2 {
			continue
		}
		kept = append(kept, word)
		if len(kept) == 5 {
			break
		}
	}

	return strings.Join(kept, " ")
}

// normalizeSearchAuthor keeps only the first author and strips punctuation.
// Returns "" when nothing usable remains.
func normalizeSearchAuthor(author string) string {
	first := strings.TrimSpace(strings.SplitN(author, ",", 2)[0])
	cleaned := nonWordRe.ReplaceAllString(strings.ToLower(first), "")
	cleaned = strings.TrimSpace(multiWsRe.ReplaceAllString(cleaned, " "))

	if utf8.RuneCountInString(cleaned) <= 2 {
		return ""
	}
	return cleaned
}
