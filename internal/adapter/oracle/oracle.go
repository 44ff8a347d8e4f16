package oracle

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"spamlens/internal/domain"
	"spamlens/internal/logger"
	"spamlens/internal/port"
)

const probabilityTolerance = 1e-6

// predictor is the capability chosen for a classifier at construction time.
type predictor interface {
	predict(features []domain.FeatureVector) ([][]float64, error)
}

type probaPredictor struct {
	model port.ProbabilityModel
}

func (p probaPredictor) predict(features []domain.FeatureVector) ([][]float64, error) {
	return p.model.PredictProba(features)
}

// decisionPredictor squashes a binary decision score into [1-p, p].
type decisionPredictor struct {
	model port.DecisionModel
}

func (p decisionPredictor) predict(features []domain.FeatureVector) ([][]float64, error) {
	scores, err := p.model.DecisionFunction(features)
	if err != nil {
		return nil, err
	}
	probs := make([][]float64, len(scores))
	for i, s := range scores {
		pos := 1 / (1 + math.Exp(-s))
		probs[i] = []float64{1 - pos, pos}
	}
	return probs, nil
}

type Options struct {
	BatchSize int
	Workers   int
	// Timeout bounds a whole ClassProbabilities call; zero disables it.
	Timeout time.Duration
}

func DefaultOptions() Options {
	return Options{BatchSize: 256, Workers: 4, Timeout: 10 * time.Second}
}

// Oracle runs raw texts through the normalizer, the vectorizer and the
// classifier, always yielding one probability row per text.
type Oracle struct {
	normalizer port.Normalizer
	vectorizer port.Vectorizer
	predictor  predictor
	classes    []string
	opts       Options
}

// New resolves the classifier's capability once. Probability output wins
// when a model offers both.
func New(normalizer port.Normalizer, vectorizer port.Vectorizer, clf port.Classifier, opts Options) (*Oracle, error) {
	if clf == nil {
		return nil, fmt.Errorf("%w: nil classifier", domain.ErrUnsupportedModel)
	}
	var p predictor
	switch m := clf.(type) {
	case port.ProbabilityModel:
		p = probaPredictor{model: m}
	case port.DecisionModel:
		if len(m.Classes()) != 2 {
			return nil, fmt.Errorf("%w: decision score models must be binary, got %d classes", domain.ErrUnsupportedModel, len(m.Classes()))
		}
		p = decisionPredictor{model: m}
	default:
		return nil, fmt.Errorf("%w: %T exposes neither probabilities nor a decision score", domain.ErrUnsupportedModel, clf)
	}

	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultOptions().BatchSize
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	return &Oracle{
		normalizer: normalizer,
		vectorizer: vectorizer,
		predictor:  p,
		classes:    clf.Classes(),
		opts:       opts,
	}, nil
}

func (o *Oracle) Classes() []string {
	return o.classes
}

// ClassProbabilities evaluates texts in parallel batches. The result is
// index-aligned with texts. A missed deadline fails the whole call as soon
// as it passes, even while a batch is still running.
func (o *Oracle) ClassProbabilities(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if o.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.opts.Timeout)
		defer cancel()
	}

	start := time.Now()
	results := make([][]float64, len(texts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.opts.Workers)

	for lo := 0; lo < len(texts); lo += o.opts.BatchSize {
		hi := min(lo+o.opts.BatchSize, len(texts))
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return o.evalBatch(texts[lo:hi], results[lo:hi])
		})
	}

	// A batch stuck inside the classifier cannot be interrupted, so the
	// wait is abandoned at the deadline. Batches write disjoint ranges of
	// results, which is dropped on that path.
	done := make(chan error, 1)
	go func() { done <- g.Wait() }()

	var err error
	select {
	case err = <-done:
		if err == nil {
			err = ctx.Err()
		}
	case <-ctx.Done():
		err = ctx.Err()
	}
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %d texts after %s", domain.ErrPredictionTimeout, len(texts), time.Since(start).Round(time.Millisecond))
		}
		return nil, err
	}

	logger.FromContext(ctx).Debug("oracle evaluated texts", "count", len(texts), "duration", time.Since(start))
	return results, nil
}

func (o *Oracle) evalBatch(texts []string, out [][]float64) error {
	cleaned := make([]string, len(texts))
	for i, t := range texts {
		cleaned[i] = o.normalizer.Normalize(t)
	}
	features, err := o.vectorizer.Vectorize(cleaned)
	if err != nil {
		return fmt.Errorf("vectorize: %w", err)
	}
	probs, err := o.predictor.predict(features)
	if err != nil {
		return fmt.Errorf("predict: %w", err)
	}
	if len(probs) != len(texts) {
		return fmt.Errorf("predict: got %d rows for %d texts", len(probs), len(texts))
	}
	for i, row := range probs {
		fixed, err := checkRow(row, len(o.classes))
		if err != nil {
			return fmt.Errorf("predict row %d: %w", i, err)
		}
		out[i] = fixed
	}
	return nil
}

// checkRow rejects negative or non-finite entries and rescales rows whose
// sum drifted by floating point error.
func checkRow(row []float64, classes int) ([]float64, error) {
	if len(row) != classes {
		return nil, fmt.Errorf("got %d probabilities for %d classes", len(row), classes)
	}
	sum := 0.0
	for _, p := range row {
		if p < 0 || math.IsNaN(p) || math.IsInf(p, 0) {
			return nil, fmt.Errorf("invalid probability %v", p)
		}
		sum += p
	}
	if sum == 0 {
		return nil, errors.New("probabilities sum to zero")
	}
	if math.Abs(sum-1) <= probabilityTolerance {
		return row, nil
	}
	out := make([]float64, len(row))
	for i, p := range row {
		out[i] = p / sum
	}
	return out, nil
}
