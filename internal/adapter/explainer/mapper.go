package explainer

import (
	"strings"
	"unicode"

	"spamlens/internal/domain"
)

// SurrogateToken is the word a word-level vectorizer sees for a raw
// token: leading and trailing punctuation removed. Tokens made only of
// punctuation are returned unchanged.
func SurrogateToken(raw string) string {
	core := strings.TrimFunc(raw, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	if core == "" {
		return raw
	}
	return core
}

// MapAttributions labels each coefficient with the first word of doc that
// contains its surrogate token, ignoring case. When no word matches the
// surrogate token itself is shown. Repeated or overlapping words resolve to
// their first occurrence.
func MapAttributions(doc string, tokens []domain.Token, coefficients []float64) []domain.Attribution {
	words := strings.Fields(doc)
	lowered := make([]string, len(words))
	for i, w := range words {
		lowered[i] = strings.ToLower(w)
	}

	attrs := make([]domain.Attribution, len(coefficients))
	for i, coef := range coefficients {
		sur := ""
		if i < len(tokens) {
			sur = SurrogateToken(tokens[i].Text)
		}
		attrs[i] = domain.Attribution{Word: matchWord(sur, words, lowered), Weight: coef, Index: i}
	}
	return attrs
}

func matchWord(sur string, words, lowered []string) string {
	needle := strings.ToLower(sur)
	for i, w := range lowered {
		if strings.Contains(w, needle) {
			return words[i]
		}
	}
	return sur
}
