package oracle

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"spamlens/internal/domain"
)

// identityNormalizer and lengthVectorizer keep the tests independent of the
// real text pipeline: feature 0 carries the text length.
type identityNormalizer struct{}

func (identityNormalizer) Normalize(s string) string { return s }

type lengthVectorizer struct{}

func (lengthVectorizer) Dim() int { return 1 }

func (lengthVectorizer) Vectorize(texts []string) ([]domain.FeatureVector, error) {
	out := make([]domain.FeatureVector, len(texts))
	for i, t := range texts {
		out[i] = domain.FeatureVector{Indices: []int{0}, Values: []float64{float64(len(t))}, Dim: 1}
	}
	return out, nil
}

type scoreModel struct {
	classes []string
}

func (m scoreModel) Classes() []string { return m.classes }

func (m scoreModel) DecisionFunction(features []domain.FeatureVector) ([]float64, error) {
	out := make([]float64, len(features))
	for i, f := range features {
		out[i] = f.Values[0] - 5
	}
	return out, nil
}

type probaModel struct {
	delay time.Duration
}

func (probaModel) Classes() []string { return []string{"ham", "spam"} }

func (m probaModel) PredictProba(features []domain.FeatureVector) ([][]float64, error) {
	time.Sleep(m.delay)
	out := make([][]float64, len(features))
	for i, f := range features {
		p := math.Min(f.Values[0]/100, 1)
		out[i] = []float64{1 - p, p}
	}
	return out, nil
}

type labelsOnly struct{}

func (labelsOnly) Classes() []string { return []string{"ham", "spam"} }

type badRowsModel struct{}

func (badRowsModel) Classes() []string { return []string{"ham", "spam"} }

func (badRowsModel) PredictProba(features []domain.FeatureVector) ([][]float64, error) {
	out := make([][]float64, len(features))
	for i := range out {
		out[i] = []float64{-0.1, 1.1}
	}
	return out, nil
}

func TestNew_UnsupportedModel(t *testing.T) {
	_, err := New(identityNormalizer{}, lengthVectorizer{}, labelsOnly{}, DefaultOptions())
	if !errors.Is(err, domain.ErrUnsupportedModel) {
		t.Fatalf("expected ErrUnsupportedModel, got %v", err)
	}

	_, err = New(identityNormalizer{}, lengthVectorizer{}, nil, DefaultOptions())
	if !errors.Is(err, domain.ErrUnsupportedModel) {
		t.Fatalf("expected ErrUnsupportedModel for nil classifier, got %v", err)
	}

	_, err = New(identityNormalizer{}, lengthVectorizer{}, scoreModel{classes: []string{"a", "b", "c"}}, DefaultOptions())
	if !errors.Is(err, domain.ErrUnsupportedModel) {
		t.Fatalf("expected ErrUnsupportedModel for multiclass decision model, got %v", err)
	}
}

func TestClassProbabilities_DecisionFallbackSumsToOne(t *testing.T) {
	o, err := New(identityNormalizer{}, lengthVectorizer{}, scoreModel{classes: []string{"ham", "spam"}}, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}

	texts := []string{"", "a", "hello", "a much longer message body", strings.Repeat("x", 500)}
	probs, err := o.ClassProbabilities(context.Background(), texts)
	if err != nil {
		t.Fatal(err)
	}
	if len(probs) != len(texts) {
		t.Fatalf("expected %d rows, got %d", len(texts), len(probs))
	}
	for i, row := range probs {
		if len(row) != 2 {
			t.Fatalf("row %d: expected 2 classes, got %v", i, row)
		}
		if math.Abs(row[0]+row[1]-1) > 1e-6 {
			t.Errorf("row %d sums to %f", i, row[0]+row[1])
		}
		if row[0] < 0 || row[1] < 0 {
			t.Errorf("row %d has negative entries: %v", i, row)
		}
	}
	// score = len - 5, so "hello" sits exactly on the boundary
	if math.Abs(probs[2][1]-0.5) > 1e-12 {
		t.Errorf("expected 0.5 at zero score, got %f", probs[2][1])
	}
	if probs[4][1] <= probs[3][1] {
		t.Errorf("expected longer text to score higher: %v vs %v", probs[4], probs[3])
	}
}

func TestClassProbabilities_PreservesOrderAcrossBatches(t *testing.T) {
	o, err := New(identityNormalizer{}, lengthVectorizer{}, probaModel{}, Options{BatchSize: 3, Workers: 4})
	if err != nil {
		t.Fatal(err)
	}

	texts := make([]string, 50)
	for i := range texts {
		texts[i] = strings.Repeat("x", i)
	}
	probs, err := o.ClassProbabilities(context.Background(), texts)
	if err != nil {
		t.Fatal(err)
	}
	for i, row := range probs {
		want := float64(i) / 100
		if math.Abs(row[1]-want) > 1e-12 {
			t.Errorf("row %d: expected %f, got %f", i, want, row[1])
		}
	}
}

func TestClassProbabilities_Timeout(t *testing.T) {
	o, err := New(identityNormalizer{}, lengthVectorizer{}, probaModel{delay: 100 * time.Millisecond}, Options{
		BatchSize: 1,
		Workers:   1,
		Timeout:   20 * time.Millisecond,
	})
	if err != nil {
		t.Fatal(err)
	}

	probs, err := o.ClassProbabilities(context.Background(), []string{"a", "b", "c"})
	if !errors.Is(err, domain.ErrPredictionTimeout) {
		t.Fatalf("expected ErrPredictionTimeout, got %v", err)
	}
	if probs != nil {
		t.Errorf("expected no partial result, got %v", probs)
	}
}

func TestClassProbabilities_TimeoutInterruptsRunningBatch(t *testing.T) {
	o, err := New(identityNormalizer{}, lengthVectorizer{}, probaModel{delay: 2 * time.Second}, Options{
		BatchSize: 256,
		Workers:   1,
		Timeout:   20 * time.Millisecond,
	})
	if err != nil {
		t.Fatal(err)
	}

	start := time.Now()
	probs, err := o.ClassProbabilities(context.Background(), []string{"a", "b"})
	elapsed := time.Since(start)

	if !errors.Is(err, domain.ErrPredictionTimeout) {
		t.Fatalf("expected ErrPredictionTimeout, got %v", err)
	}
	if probs != nil {
		t.Errorf("expected no partial result, got %v", probs)
	}
	if elapsed > 500*time.Millisecond {
		t.Errorf("expected the call to return near its 20ms deadline, took %s", elapsed)
	}
}

func TestClassProbabilities_CallerCancel(t *testing.T) {
	o, err := New(identityNormalizer{}, lengthVectorizer{}, probaModel{delay: 2 * time.Second}, Options{
		BatchSize: 256,
		Workers:   1,
	})
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err = o.ClassProbabilities(ctx, []string{"a"})
	if !errors.Is(err, domain.ErrPredictionTimeout) {
		t.Fatalf("expected ErrPredictionTimeout from the caller deadline, got %v", err)
	}
	if time.Since(start) > 500*time.Millisecond {
		t.Errorf("caller deadline not honoured, took %s", time.Since(start))
	}
}

func TestClassProbabilities_InvalidRows(t *testing.T) {
	o, err := New(identityNormalizer{}, lengthVectorizer{}, badRowsModel{}, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}

	if _, err := o.ClassProbabilities(context.Background(), []string{"x"}); err == nil {
		t.Fatal("expected error for negative probabilities")
	}
}

func TestClassProbabilities_Empty(t *testing.T) {
	o, _ := New(identityNormalizer{}, lengthVectorizer{}, probaModel{}, DefaultOptions())

	probs, err := o.ClassProbabilities(context.Background(), nil)
	if err != nil || probs != nil {
		t.Errorf("expected nil, nil for no texts, got %v, %v", probs, err)
	}
}

func TestCheckRow_Renormalizes(t *testing.T) {
	row, err := checkRow([]float64{0.2, 0.3}, 2)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(row[0]-0.4) > 1e-12 || math.Abs(row[1]-0.6) > 1e-12 {
		t.Errorf("expected [0.4 0.6], got %v", row)
	}

	if _, err := checkRow([]float64{0.5}, 2); err == nil {
		t.Error("expected width error")
	}
	if _, err := checkRow([]float64{0, 0}, 2); err == nil {
		t.Error("expected zero-sum error")
	}
}
