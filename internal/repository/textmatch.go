package repository

import (
	"strings"

	"github.com/k3a/html2text"
)

// maxSearchTokens caps how many derived tokens a free-text query expands
// into: the whole trimmed query plus its first few words.
const maxSearchTokens = 5

// searchTokens derives the matching tokens for a free-text query: the
// whole trimmed query first, then its leading whitespace-separated
// words, up to maxSearchTokens entries.
func searchTokens(query string) []string {
	trimmed := strings.TrimSpace(strings.ToLower(query))
	if trimmed == "" {
		return nil
	}

	tokens := []string{trimmed}
	for _, word := range strings.Fields(trimmed) {
		if len(tokens) >= maxSearchTokens {
			break
		}
		if word != trimmed {
			tokens = append(tokens, word)
		}
	}
	return tokens
}

// normalizeText strips markup and collapses whitespace so substring
// matching sees the text a reader would.
func normalizeText(s string) string {
	plain := html2text.HTML2Text(s)
	return strings.ToLower(strings.Join(strings.Fields(plain), " "))
}

// matchesAny reports whether any token occurs in the normalized target.
func matchesAny(target string, tokens []string) bool {
	if len(tokens) == 0 {
		return true
	}
	normalized := normalizeText(target)
	for _, token := range tokens {
		if strings.Contains(normalized, token) {
			return true
		}
	}
	return false
}
