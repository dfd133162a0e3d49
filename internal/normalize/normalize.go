package normalize

import (
	"regexp"
	"sort"
	"strings"
)

var (
	nonAlnumRe   = regexp.MustCompile(`[^a-z0-9 ]`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// Scalar normalizes a free-text field into a comparable key: lowercase,
// characters outside [a-z0-9 ] stripped, whitespace collapsed, trimmed.
// Returns nil for empty input or input that normalizes to the empty string.
// Idempotent: Scalar(Scalar(x)) == Scalar(x).
func Scalar(text string) *string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	cleaned := strings.ToLower(text)
	cleaned = nonAlnumRe.ReplaceAllString(cleaned, "")
	cleaned = whitespaceRe.ReplaceAllString(cleaned, " ")
	cleaned = strings.TrimSpace(cleaned)

	if cleaned == "" {
		return nil
	}
	return &cleaned
}

// ListParseKind tags the outcome of parsing a literal list expression.
type ListParseKind int

const (
	// ParseFailed means the input was not a recognizable literal.
	ParseFailed ListParseKind = iota
	// ParsedScalar means the input is a plain string, not a list.
	ParsedScalar
	// ParsedList means the input was a quoted-element list literal.
	ParsedList
)

// ListParse is the tagged result of ParseLiteralList. Items is populated
// only for ParsedList; Text only for ParsedScalar.
type ListParse struct {
	Kind  ListParseKind
	Items []string
	Text  string
}

// ParseLiteralList parses a Python-style list literal such as
// `['J. K. Rowling', "Mary GrandPré"]`. Inputs that are not bracketed are
// returned as ParsedScalar; malformed bracketed inputs are ParseFailed.
func ParseLiteralList(text string) ListParse {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return ListParse{Kind: ParseFailed}
	}

	if !strings.HasPrefix(trimmed, "[") || !strings.HasSuffix(trimmed, "]") {
		return ListParse{Kind: ParsedScalar, Text: trimmed}
	}

	inner := strings.TrimSpace(trimmed[1 : len(trimmed)-1])
	if inner == "" {
		return ListParse{Kind: ParsedList}
	}

	items, ok := splitQuotedElements(inner)
	if !ok {
		return ListParse{Kind: ParseFailed}
	}
	return ListParse{Kind: ParsedList, Items: items}
}

// splitQuotedElements splits the body of a list literal into its quoted
// elements, honoring both quote styles and backslash escapes.
func splitQuotedElements(inner string) ([]string, bool) {
	var items []string
	runes := []rune(inner)
	i := 0

	for i < len(runes) {
		// Skip whitespace and element separators.
		for i < len(runes) && (runes[i] == ' ' || runes[i] == '\t' || runes[i] == ',') {
			i++
		}
		if i >= len(runes) {
			break
		}

		quote := runes[i]
		if quote != '\'' && quote != '"' {
			return nil, false
		}
		i++

		var sb strings.Builder
		closed := false
		for i < len(runes) {
			c := runes[i]
			if c == '\\' && i+1 < len(runes) {
				sb.WriteRune(runes[i+1])
				i += 2
				continue
			}
			if c == quote {
				closed = true
				i++
				break
			}
			sb.WriteRune(c)
			i++
		}
		if !closed {
			return nil, false
		}
		items = append(items, sb.String())
	}

	return items, true
}

// AuthorList normalizes an author field that may hold a literal list of
// names or a single name. List elements are lowercased, trimmed, deduped,
// sorted, and joined with ", ". A bare string falls back to lowercase+trim.
// Returns nil when nothing valid remains.
func AuthorList(text string) *string {
	return normalizeList(text)
}

// CategoryList normalizes a category tag field. Same contract as AuthorList.
func CategoryList(text string) *string {
	return normalizeList(text)
}

func normalizeList(text string) *string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	switch parsed := ParseLiteralList(text); parsed.Kind {
	case ParsedList:
		seen := make(map[string]struct{}, len(parsed.Items))
		cleaned := make([]string, 0, len(parsed.Items))
		for _, item := range parsed.Items {
			item = strings.ToLower(strings.TrimSpace(item))
			if item == "" {
				continue
			}
			if _, dup := seen[item]; dup {
				continue
			}
			seen[item] = struct{}{}
			cleaned = append(cleaned, item)
		}
		if len(cleaned) == 0 {
			return nil
		}
		sort.Strings(cleaned)
		joined := strings.Join(cleaned, ", ")
		return &joined

	case ParsedScalar:
		single := strings.ToLower(parsed.Text)
		if single == "" {
			return nil
		}
		return &single

	default:
		return nil
	}
}
