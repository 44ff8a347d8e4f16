package port

import "context"

// Oracle maps raw texts to per-class probabilities.
type Oracle interface {
	ClassProbabilities(ctx context.Context, texts []string) ([][]float64, error)

	Classes() []string
}
