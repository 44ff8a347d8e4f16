package port

import "spamlens/internal/domain"

// Vectorizer turns cleaned texts into feature vectors, one per text.
type Vectorizer interface {
	Vectorize(texts []string) ([]domain.FeatureVector, error)

	// Dim returns the width of the produced feature space.
	Dim() int
}

type Tokenizer interface {
	Tokenize(text string) []string
}
