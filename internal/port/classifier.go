package port

import "spamlens/internal/domain"

// Classifier is the minimal surface every model exposes. Predictions are
// obtained through one of the capability interfaces below.
type Classifier interface {
	Classes() []string
}

// ProbabilityModel returns one probability row per feature vector.
type ProbabilityModel interface {
	Classifier
	PredictProba(features []domain.FeatureVector) ([][]float64, error)
}

// DecisionModel returns a raw signed score per feature vector; positive
// values favour the second class.
type DecisionModel interface {
	Classifier
	DecisionFunction(features []domain.FeatureVector) ([]float64, error)
}
