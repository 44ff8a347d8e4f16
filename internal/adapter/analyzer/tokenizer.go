package analyzer

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Tokenizer splits cleaned text into lowercase word tokens for the
// vectorizer. Words shorter than two runes are dropped.
type Tokenizer struct {
	stopwords map[string]struct{}
	lowercase bool
}

// NewTokenizer creates a new Tokenizer. Stopword removal is optional
// because most trained vocabularies keep them.
func NewTokenizer(removeStopwords, lowercase bool) *Tokenizer {
	var stops map[string]struct{}
	if removeStopwords {
		stops = defaultStopwords()
	}
	return &Tokenizer{
		stopwords: stops,
		lowercase: lowercase,
	}
}

// Tokenize splits text into tokens.
func (t *Tokenizer) Tokenize(text string) []string {
	words := splitWords(text)
	tokens := make([]string, 0, len(words))

	for _, word := range words {
		if t.lowercase {
			word = strings.ToLower(word)
		}
		if utf8.RuneCountInString(word) < 2 {
			continue
		}
		if _, isStop := t.stopwords[strings.ToLower(word)]; isStop {
			continue
		}
		tokens = append(tokens, word)
	}

	return tokens
}

// splitWords splits text into runs of letters, digits and underscores.
func splitWords(text string) []string {
	var words []string
	var current strings.Builder

	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			current.WriteRune(r)
		} else {
			if current.Len() > 0 {
				words = append(words, current.String())
				current.Reset()
			}
		}
	}
	if current.Len() > 0 {
		words = append(words, current.String())
	}

	return words
}

// defaultStopwords returns a set of common English stopwords.
func defaultStopwords() map[string]struct{} {
	stops := []string{
		"a", "an", "and", "are", "as", "at", "be", "by", "for",
		"from", "has", "he", "in", "is", "it", "its", "of", "on",
		"that", "the", "to", "was", "were", "will", "with", "this",
		"have", "had", "but", "not", "we", "our", "they", "their",
		"she", "her", "his", "if", "or", "so", "do", "does", "did",
		"been", "being", "which", "who", "whom", "what", "when",
		"where", "how", "am", "me", "my", "i",
	}
	m := make(map[string]struct{}, len(stops))
	for _, s := range stops {
		m[s] = struct{}{}
	}
	return m
}
