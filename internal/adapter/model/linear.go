package model

import (
	"fmt"
	"math"

	"spamlens/internal/domain"
)

// LinearSVM is a binary linear classifier that only exposes a signed
// decision score.
type LinearSVM struct {
	classes   []string
	coef      []float64
	intercept float64
}

func NewLinearSVM(classes []string, coef []float64, intercept float64) (*LinearSVM, error) {
	if len(classes) != 2 {
		return nil, fmt.Errorf("%w: linear svm needs 2 classes, got %d", domain.ErrInvalidModel, len(classes))
	}
	return &LinearSVM{classes: classes, coef: coef, intercept: intercept}, nil
}

func (m *LinearSVM) Classes() []string {
	return m.classes
}

func (m *LinearSVM) DecisionFunction(features []domain.FeatureVector) ([]float64, error) {
	scores := make([]float64, len(features))
	for i, f := range features {
		if err := checkDim(f, len(m.coef)); err != nil {
			return nil, err
		}
		scores[i] = f.Dot(m.coef) + m.intercept
	}
	return scores, nil
}

// Logistic is a logistic regression model. One coefficient row means a
// binary model scored with the sigmoid; more rows are scored with softmax.
type Logistic struct {
	classes   []string
	coef      [][]float64
	intercept []float64
}

func NewLogistic(classes []string, coef [][]float64, intercept []float64) (*Logistic, error) {
	switch {
	case len(coef) == 1 && len(classes) == 2:
	case len(coef) == len(classes) && len(classes) > 2:
	default:
		return nil, fmt.Errorf("%w: %d coefficient rows for %d classes", domain.ErrInvalidModel, len(coef), len(classes))
	}
	if len(intercept) != len(coef) {
		return nil, fmt.Errorf("%w: %d intercepts for %d coefficient rows", domain.ErrInvalidModel, len(intercept), len(coef))
	}
	return &Logistic{classes: classes, coef: coef, intercept: intercept}, nil
}

func (m *Logistic) Classes() []string {
	return m.classes
}

func (m *Logistic) PredictProba(features []domain.FeatureVector) ([][]float64, error) {
	probs := make([][]float64, len(features))
	for i, f := range features {
		if err := checkDim(f, len(m.coef[0])); err != nil {
			return nil, err
		}
		if len(m.coef) == 1 {
			p := sigmoid(f.Dot(m.coef[0]) + m.intercept[0])
			probs[i] = []float64{1 - p, p}
			continue
		}
		z := make([]float64, len(m.coef))
		for k, row := range m.coef {
			z[k] = f.Dot(row) + m.intercept[k]
		}
		probs[i] = softmax(z)
	}
	return probs, nil
}

func checkDim(f domain.FeatureVector, width int) error {
	if f.Dim != width {
		return fmt.Errorf("%w: feature width %d, model expects %d", domain.ErrInvalidModel, f.Dim, width)
	}
	return nil
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

// softmax is shifted by the maximum so large log-likelihoods do not overflow.
func softmax(z []float64) []float64 {
	maxZ := math.Inf(-1)
	for _, v := range z {
		if v > maxZ {
			maxZ = v
		}
	}
	sum := 0.0
	out := make([]float64, len(z))
	for i, v := range z {
		out[i] = math.Exp(v - maxZ)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}
