package analyzer

import (
	"regexp"
	"strings"
)

var (
	urlPattern         = regexp.MustCompile(`http\S+|www\S+`)
	phonePattern       = regexp.MustCompile(`\+?\p{Nd}{10,13}`)
	numberPattern      = regexp.MustCompile(`\p{Nd}+`)
	punctuationPattern = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)
	spacePattern       = regexp.MustCompile(`\s+`)
)

// NormalizerOptions toggles the masking steps applied before punctuation
// stripping.
type NormalizerOptions struct {
	MaskURLs    bool
	MaskPhones  bool
	MaskNumbers bool
}

func DefaultNormalizerOptions() NormalizerOptions {
	return NormalizerOptions{MaskURLs: true, MaskPhones: true, MaskNumbers: true}
}

// TextNormalizer lowercases a message, masks URLs, phone numbers and
// numbers in any script's decimal digits, replaces punctuation with spaces and collapses whitespace.
// The mask placeholders lose their angle brackets in the punctuation step,
// so "<URL>" reaches the vectorizer as the word "URL".
type TextNormalizer struct {
	opts NormalizerOptions
}

func NewTextNormalizer(opts NormalizerOptions) *TextNormalizer {
	return &TextNormalizer{opts: opts}
}

func (n *TextNormalizer) Normalize(text string) string {
	text = strings.ToLower(text)
	if n.opts.MaskURLs {
		text = urlPattern.ReplaceAllString(text, "<URL>")
	}
	if n.opts.MaskPhones {
		text = phonePattern.ReplaceAllString(text, "<PHONE>")
	}
	if n.opts.MaskNumbers {
		text = numberPattern.ReplaceAllString(text, "<NUM>")
	}
	text = punctuationPattern.ReplaceAllString(text, " ")
	text = spacePattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
