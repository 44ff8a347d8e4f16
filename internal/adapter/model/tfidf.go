package model

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"spamlens/internal/domain"
	"spamlens/internal/port"
)

// TFIDFVectorizer maps cleaned text onto a fixed vocabulary with tf-idf
// weighting, optionally over word n-grams up to ngramMax.
type TFIDFVectorizer struct {
	tokenizer   port.Tokenizer
	vocabulary  map[string]int
	idf         []float64
	dim         int
	sublinearTF bool
	ngramMax    int
	l2          bool
}

type VectorizerOptions struct {
	SublinearTF bool
	NgramMax    int
	L2Norm      bool
}

// NewTFIDFVectorizer creates a vectorizer. A nil idf weights every term 1.
func NewTFIDFVectorizer(tokenizer port.Tokenizer, vocabulary map[string]int, idf []float64, opts VectorizerOptions) (*TFIDFVectorizer, error) {
	if len(vocabulary) == 0 {
		return nil, fmt.Errorf("%w: empty vocabulary", domain.ErrInvalidModel)
	}
	dim := len(idf)
	if dim == 0 {
		for _, idx := range vocabulary {
			if idx+1 > dim {
				dim = idx + 1
			}
		}
	}
	for term, idx := range vocabulary {
		if idx < 0 || idx >= dim {
			return nil, fmt.Errorf("%w: term %q has index %d outside [0,%d)", domain.ErrInvalidModel, term, idx, dim)
		}
	}
	ngramMax := opts.NgramMax
	if ngramMax < 1 {
		ngramMax = 1
	}
	return &TFIDFVectorizer{
		tokenizer:   tokenizer,
		vocabulary:  vocabulary,
		idf:         idf,
		dim:         dim,
		sublinearTF: opts.SublinearTF,
		ngramMax:    ngramMax,
		l2:          opts.L2Norm,
	}, nil
}

func (v *TFIDFVectorizer) Dim() int {
	return v.dim
}

func (v *TFIDFVectorizer) Vectorize(texts []string) ([]domain.FeatureVector, error) {
	out := make([]domain.FeatureVector, len(texts))
	for i, text := range texts {
		out[i] = v.transform(text)
	}
	return out, nil
}

func (v *TFIDFVectorizer) transform(text string) domain.FeatureVector {
	counts := make(map[int]float64)
	for _, term := range v.terms(v.tokenizer.Tokenize(text)) {
		if idx, ok := v.vocabulary[term]; ok {
			counts[idx]++
		}
	}

	vec := domain.FeatureVector{
		Indices: make([]int, 0, len(counts)),
		Values:  make([]float64, 0, len(counts)),
		Dim:     v.dim,
	}
	for idx := range counts {
		vec.Indices = append(vec.Indices, idx)
	}
	sort.Ints(vec.Indices)

	norm := 0.0
	for _, idx := range vec.Indices {
		tf := counts[idx]
		if v.sublinearTF {
			tf = 1 + math.Log(tf)
		}
		if len(v.idf) > 0 {
			tf *= v.idf[idx]
		}
		vec.Values = append(vec.Values, tf)
		norm += tf * tf
	}

	if v.l2 && norm > 0 {
		norm = math.Sqrt(norm)
		for i := range vec.Values {
			vec.Values[i] /= norm
		}
	}
	return vec
}

// terms expands tokens into space-joined n-grams of length 1..ngramMax.
func (v *TFIDFVectorizer) terms(tokens []string) []string {
	if v.ngramMax == 1 {
		return tokens
	}
	terms := make([]string, 0, len(tokens)*v.ngramMax)
	for n := 1; n <= v.ngramMax; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			terms = append(terms, strings.Join(tokens[i:i+n], " "))
		}
	}
	return terms
}
