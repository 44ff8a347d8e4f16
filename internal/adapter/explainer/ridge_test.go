package explainer

import (
	"errors"
	"math"
	"testing"

	"spamlens/internal/domain"
)

func samplesFromMasks(masks ...[]bool) []domain.PerturbedSample {
	out := make([]domain.PerturbedSample, len(masks))
	for i, m := range masks {
		out[i] = domain.PerturbedSample{Mask: m}
	}
	return out
}

func TestFitRidge_RecoversLinearModel(t *testing.T) {
	var samples []domain.PerturbedSample
	var targets, weights []float64
	for rep := 0; rep < 5; rep++ {
		for _, m := range [][]bool{{true, true}, {true, false}, {false, true}, {false, false}} {
			samples = append(samples, domain.PerturbedSample{Mask: m})
			y := 0.2
			if m[0] {
				y += 0.5
			}
			if m[1] {
				y -= 0.3
			}
			targets = append(targets, y)
			weights = append(weights, 1)
		}
	}

	model, err := FitRidge(samples, targets, weights, 1e-9)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(model.Coefficients[0]-0.5) > 1e-6 || math.Abs(model.Coefficients[1]+0.3) > 1e-6 {
		t.Errorf("expected coefficients [0.5 -0.3], got %v", model.Coefficients)
	}
	if math.Abs(model.Intercept-0.2) > 1e-6 {
		t.Errorf("expected intercept 0.2, got %f", model.Intercept)
	}
	if math.Abs(model.Score-1) > 1e-6 {
		t.Errorf("expected perfect fit, got score %f", model.Score)
	}
	if math.Abs(model.LocalPrediction-0.4) > 1e-6 {
		t.Errorf("expected local prediction 0.4, got %f", model.LocalPrediction)
	}
}

func TestFitRidge_ShrinksWithAlpha(t *testing.T) {
	samples := samplesFromMasks([]bool{true}, []bool{false}, []bool{true}, []bool{false})
	targets := []float64{1, 0, 1, 0}
	weights := []float64{1, 1, 1, 1}

	loose, _ := FitRidge(samples, targets, weights, 1e-6)
	tight, _ := FitRidge(samples, targets, weights, 10)

	if !(tight.Coefficients[0] < loose.Coefficients[0] && tight.Coefficients[0] > 0) {
		t.Errorf("expected alpha to shrink towards zero: loose=%f tight=%f", loose.Coefficients[0], tight.Coefficients[0])
	}
}

func TestFitRidge_WeightsMatter(t *testing.T) {
	samples := samplesFromMasks([]bool{true}, []bool{false}, []bool{false})
	targets := []float64{1, 0, 1}

	heavy, _ := FitRidge(samples, targets, []float64{1, 1, 0.01}, 1e-6)
	if heavy.Coefficients[0] < 0.9 {
		t.Errorf("expected down-weighted contradicting sample to be ignored, got %f", heavy.Coefficients[0])
	}
}

func TestFitRidge_Degenerate(t *testing.T) {
	samples := samplesFromMasks([]bool{true}, []bool{true}, []bool{true})

	model, err := FitRidge(samples, []float64{0.3, 0.3, 0.3}, []float64{1, 1, 1}, 1)
	if err != nil {
		t.Fatalf("degenerate fit must not fail: %v", err)
	}
	if len(model.Coefficients) != 1 || model.Coefficients[0] != 0 {
		t.Errorf("expected zero coefficients, got %v", model.Coefficients)
	}

	model, err = FitRidge(samples, []float64{1, 0, 1}, []float64{0, 0, 0}, 1)
	if err != nil || model.Coefficients[0] != 0 {
		t.Errorf("expected zero coefficients for zero weights, got %v, %v", model.Coefficients, err)
	}
}

func TestFitRidge_Errors(t *testing.T) {
	samples := samplesFromMasks([]bool{true}, []bool{false})

	if _, err := FitRidge(samples, []float64{1, 0}, []float64{1, 1}, 0); !errors.Is(err, domain.ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest for zero alpha, got %v", err)
	}
	if _, err := FitRidge(samples, []float64{1}, []float64{1, 1}, 1); !errors.Is(err, domain.ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest for length mismatch, got %v", err)
	}
	ragged := samplesFromMasks([]bool{true}, []bool{false, true})
	if _, err := FitRidge(ragged, []float64{1, 0}, []float64{1, 1}, 1); !errors.Is(err, domain.ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest for ragged masks, got %v", err)
	}
}

func TestCholeskySolve(t *testing.T) {
	a := [][]float64{{4, 2}, {2, 3}}
	x, err := choleskySolve(a, []float64{2, 1})
	if err != nil {
		t.Fatal(err)
	}
	// 4x+2y=2, 2x+3y=1 → x=0.5, y=0
	if math.Abs(x[0]-0.5) > 1e-12 || math.Abs(x[1]) > 1e-12 {
		t.Errorf("expected [0.5 0], got %v", x)
	}

	if _, err := choleskySolve([][]float64{{0}}, []float64{1}); err == nil {
		t.Error("expected error for singular matrix")
	}
}
