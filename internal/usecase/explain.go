package usecase

import (
	"context"

	"spamlens/internal/domain"
	"spamlens/internal/logger"
	"spamlens/internal/port"
)

// ExplainUseCase explains predictions and combines them with the verdict.
type ExplainUseCase struct {
	rt        *Runtime
	explainer port.Explainer
	classify  *ClassifyUseCase
	target    int
}

// NewExplainUseCase creates an explain use case. target is the class index
// explained when a request names none.
func NewExplainUseCase(rt *Runtime, explainer port.Explainer, classify *ClassifyUseCase, target int) *ExplainUseCase {
	return &ExplainUseCase{
		rt:        rt,
		explainer: explainer,
		classify:  classify,
		target:    target,
	}
}

func (u *ExplainUseCase) DefaultTarget() int {
	return u.target
}

func (u *ExplainUseCase) Explain(ctx context.Context, req domain.ExplainRequest) (domain.Explanation, error) {
	return u.explainer.Explain(ctx, req)
}

// AnalyzeOptions tunes Analyze. Zero counts fall back to the configured
// defaults and an empty Target explains the configured target class.
type AnalyzeOptions struct {
	Target      string
	NumFeatures int
	NumSamples  int
	Seed        *uint64
}

// Analyze classifies msg and explains the target class probability.
func (u *ExplainUseCase) Analyze(ctx context.Context, msg string, opts AnalyzeOptions) (domain.Analysis, error) {
	target := u.target
	if opts.Target != "" {
		idx, err := u.rt.ClassIndex(opts.Target)
		if err != nil {
			return domain.Analysis{}, err
		}
		target = idx
	}

	pred, err := u.classify.Classify(ctx, msg)
	if err != nil {
		return domain.Analysis{}, err
	}

	exp, err := u.explainer.Explain(ctx, domain.ExplainRequest{
		Document:    msg,
		TargetClass: target,
		NumFeatures: opts.NumFeatures,
		NumSamples:  opts.NumSamples,
		Seed:        opts.Seed,
	})
	if err != nil {
		return domain.Analysis{}, err
	}

	logger.FromContext(ctx).Debug("analyzed message",
		"label", pred.Label,
		"confidence", pred.Confidence,
		"top_words", exp.Words(),
	)
	return domain.Analysis{Message: msg, Prediction: pred, Explanation: exp}, nil
}
