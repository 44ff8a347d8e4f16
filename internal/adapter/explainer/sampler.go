package explainer

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"unicode"

	"spamlens/internal/domain"
)

// Tokenize splits a message on Unicode whitespace, keeping each token's
// byte span so perturbed texts can be rebuilt around the original
// separators.
func Tokenize(doc string) []domain.Token {
	var tokens []domain.Token
	start := -1
	for i, r := range doc {
		if unicode.IsSpace(r) {
			if start >= 0 {
				tokens = append(tokens, domain.Token{Text: doc[start:i], Index: len(tokens), Start: start, End: i})
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		tokens = append(tokens, domain.Token{Text: doc[start:], Index: len(tokens), Start: start, End: len(doc)})
	}
	return tokens
}

// Sampler draws perturbed variants of a message by blanking random
// subsets of its tokens. A Sampler owns its generator and must not be
// shared between goroutines.
type Sampler struct {
	rng *rand.Rand
}

func NewSampler(seed uint64) *Sampler {
	return &Sampler{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Sample tokenizes doc and returns its tokens with numSamples perturbed
// variants. Row 0 is always the unmasked message; every other row masks
// between 1 and N tokens, the count drawn uniformly.
func (s *Sampler) Sample(doc string, numSamples int) ([]domain.Token, []domain.PerturbedSample, error) {
	tokens := Tokenize(doc)
	if len(tokens) == 0 {
		return nil, nil, domain.ErrEmptyInput
	}
	if numSamples < 1 {
		return nil, nil, fmt.Errorf("%w: num samples must be positive, got %d", domain.ErrInvalidRequest, numSamples)
	}

	n := len(tokens)
	samples := make([]domain.PerturbedSample, numSamples)
	samples[0] = domain.PerturbedSample{Mask: allKept(n), Text: doc}

	perm := make([]int, n)
	for i := 1; i < numSamples; i++ {
		for j := range perm {
			perm[j] = j
		}
		masked := s.rng.IntN(n) + 1
		// partial Fisher-Yates: perm[:masked] becomes a uniform subset
		for j := 0; j < masked; j++ {
			k := j + s.rng.IntN(n-j)
			perm[j], perm[k] = perm[k], perm[j]
		}
		mask := allKept(n)
		for _, idx := range perm[:masked] {
			mask[idx] = false
		}
		samples[i] = domain.PerturbedSample{Mask: mask, Text: render(doc, tokens, mask)}
	}
	return tokens, samples, nil
}

func allKept(n int) []bool {
	mask := make([]bool, n)
	for i := range mask {
		mask[i] = true
	}
	return mask
}

// render rebuilds doc with masked tokens replaced by the empty string.
func render(doc string, tokens []domain.Token, mask []bool) string {
	var b strings.Builder
	b.Grow(len(doc))
	prev := 0
	for i, tok := range tokens {
		b.WriteString(doc[prev:tok.Start])
		if mask[i] {
			b.WriteString(tok.Text)
		}
		prev = tok.End
	}
	b.WriteString(doc[prev:])
	return b.String()
}
