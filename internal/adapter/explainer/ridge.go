package explainer

import (
	"errors"
	"fmt"
	"math"

	"spamlens/internal/domain"
)

const DefaultRidgeAlpha = 1.0

var errNotPositiveDefinite = errors.New("matrix is not positive definite")

// FitRidge fits a weighted ridge regression with intercept of targets on
// the sample masks (1 = kept). The intercept is not penalised. Samples
// that all share one mask produce zero coefficients.
func FitRidge(samples []domain.PerturbedSample, targets, weights []float64, alpha float64) (domain.SurrogateModel, error) {
	if alpha <= 0 {
		return domain.SurrogateModel{}, fmt.Errorf("%w: ridge alpha must be positive, got %v", domain.ErrInvalidRequest, alpha)
	}
	if len(samples) == 0 || len(samples) != len(targets) || len(samples) != len(weights) {
		return domain.SurrogateModel{}, fmt.Errorf("%w: %d samples, %d targets, %d weights",
			domain.ErrInvalidRequest, len(samples), len(targets), len(weights))
	}
	d := len(samples[0].Mask)
	for i, s := range samples {
		if len(s.Mask) != d {
			return domain.SurrogateModel{}, fmt.Errorf("%w: sample %d has width %d, want %d", domain.ErrInvalidRequest, i, len(s.Mask), d)
		}
	}

	sw := 0.0
	ym := 0.0
	xm := make([]float64, d)
	for i, s := range samples {
		w := weights[i]
		sw += w
		ym += w * targets[i]
		for j, keep := range s.Mask {
			if keep {
				xm[j] += w
			}
		}
	}
	coef := make([]float64, d)
	if sw == 0 {
		return domain.SurrogateModel{Coefficients: coef}, nil
	}
	ym /= sw
	for j := range xm {
		xm[j] /= sw
	}

	if identicalMasks(samples) {
		return domain.SurrogateModel{Coefficients: coef, Intercept: ym, LocalPrediction: ym, Score: 1}, nil
	}

	// Normal equations on weighted-centred data: (XcᵀWXc + αI)β = XcᵀW(y-ȳ).
	a := make([][]float64, d)
	for j := range a {
		a[j] = make([]float64, d)
		a[j][j] = alpha
	}
	b := make([]float64, d)
	xc := make([]float64, d)
	for i, s := range samples {
		w := weights[i]
		if w == 0 {
			continue
		}
		for j, keep := range s.Mask {
			xc[j] = -xm[j]
			if keep {
				xc[j] += 1
			}
		}
		yc := targets[i] - ym
		for j := 0; j < d; j++ {
			wx := w * xc[j]
			b[j] += wx * yc
			for k := 0; k <= j; k++ {
				a[j][k] += wx * xc[k]
			}
		}
	}
	for j := 0; j < d; j++ {
		for k := j + 1; k < d; k++ {
			a[j][k] = a[k][j]
		}
	}

	coef, err := choleskySolve(a, b)
	if err != nil {
		return domain.SurrogateModel{}, fmt.Errorf("ridge solve: %w", err)
	}

	intercept := ym
	for j := range coef {
		intercept -= xm[j] * coef[j]
	}

	model := domain.SurrogateModel{Coefficients: coef, Intercept: intercept}
	model.LocalPrediction = predict(model, samples[0].Mask)
	model.Score = weightedR2(model, samples, targets, weights, ym)
	return model, nil
}

func identicalMasks(samples []domain.PerturbedSample) bool {
	first := samples[0].Mask
	for _, s := range samples[1:] {
		for j := range first {
			if s.Mask[j] != first[j] {
				return false
			}
		}
	}
	return true
}

func predict(m domain.SurrogateModel, mask []bool) float64 {
	y := m.Intercept
	for j, keep := range mask {
		if keep {
			y += m.Coefficients[j]
		}
	}
	return y
}

func weightedR2(m domain.SurrogateModel, samples []domain.PerturbedSample, targets, weights []float64, ym float64) float64 {
	ssRes, ssTot := 0.0, 0.0
	for i, s := range samples {
		r := targets[i] - predict(m, s.Mask)
		t := targets[i] - ym
		ssRes += weights[i] * r * r
		ssTot += weights[i] * t * t
	}
	if ssTot == 0 {
		if ssRes == 0 {
			return 1
		}
		return 0
	}
	return 1 - ssRes/ssTot
}

// choleskySolve solves a·x = b for a symmetric positive definite a.
func choleskySolve(a [][]float64, b []float64) ([]float64, error) {
	n := len(b)
	l := make([][]float64, n)
	for i := range l {
		l[i] = make([]float64, i+1)
	}
	for i := 0; i < n; i++ {
		for j := 0; j <= i; j++ {
			sum := a[i][j]
			for k := 0; k < j; k++ {
				sum -= l[i][k] * l[j][k]
			}
			if i == j {
				if sum <= 0 || math.IsNaN(sum) {
					return nil, errNotPositiveDefinite
				}
				l[i][i] = math.Sqrt(sum)
			} else {
				l[i][j] = sum / l[j][j]
			}
		}
	}

	// forward: L·z = b
	z := make([]float64, n)
	for i := 0; i < n; i++ {
		sum := b[i]
		for k := 0; k < i; k++ {
			sum -= l[i][k] * z[k]
		}
		z[i] = sum / l[i][i]
	}
	// backward: Lᵀ·x = z
	x := make([]float64, n)
	for i := n - 1; i >= 0; i-- {
		sum := z[i]
		for k := i + 1; k < n; k++ {
			sum -= l[k][i] * x[k]
		}
		x[i] = sum / l[i][i]
	}
	return x, nil
}
