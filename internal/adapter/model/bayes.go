package model

import (
	"fmt"

	"spamlens/internal/domain"
)

// NaiveBayes is a multinomial naive Bayes model over tf-idf or count
// features.
type NaiveBayes struct {
	classes        []string
	classLogPrior  []float64
	featureLogProb [][]float64
}

func NewNaiveBayes(classes []string, classLogPrior []float64, featureLogProb [][]float64) (*NaiveBayes, error) {
	if len(classes) < 2 {
		return nil, fmt.Errorf("%w: naive bayes needs at least 2 classes", domain.ErrInvalidModel)
	}
	if len(classLogPrior) != len(classes) || len(featureLogProb) != len(classes) {
		return nil, fmt.Errorf("%w: naive bayes parameters do not match %d classes", domain.ErrInvalidModel, len(classes))
	}
	width := len(featureLogProb[0])
	for k, row := range featureLogProb {
		if len(row) != width {
			return nil, fmt.Errorf("%w: feature_log_prob row %d has width %d, want %d", domain.ErrInvalidModel, k, len(row), width)
		}
	}
	return &NaiveBayes{classes: classes, classLogPrior: classLogPrior, featureLogProb: featureLogProb}, nil
}

func (m *NaiveBayes) Classes() []string {
	return m.classes
}

func (m *NaiveBayes) PredictProba(features []domain.FeatureVector) ([][]float64, error) {
	probs := make([][]float64, len(features))
	for i, f := range features {
		if err := checkDim(f, len(m.featureLogProb[0])); err != nil {
			return nil, err
		}
		jll := make([]float64, len(m.classes))
		for k := range m.classes {
			jll[k] = m.classLogPrior[k] + f.Dot(m.featureLogProb[k])
		}
		probs[i] = softmax(jll)
	}
	return probs, nil
}
