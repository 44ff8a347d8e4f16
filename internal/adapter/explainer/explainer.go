package explainer

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"spamlens/internal/domain"
	"spamlens/internal/logger"
	"spamlens/internal/port"
)

const DefaultNumSamples = 5000

type Config struct {
	KernelWidth float64
	RidgeAlpha  float64
	NumFeatures int
	NumSamples  int
}

func DefaultConfig() Config {
	return Config{
		KernelWidth: DefaultKernelWidth,
		RidgeAlpha:  DefaultRidgeAlpha,
		NumFeatures: DefaultNumFeatures,
		NumSamples:  DefaultNumSamples,
	}
}

// Result carries the explanation together with the intermediate state
// that produced it.
type Result struct {
	Explanation  domain.Explanation
	Attributions []domain.Attribution
	Surrogate    domain.SurrogateModel
	Tokens       []domain.Token
	Seed         uint64
}

// Explainer estimates which words of a message drove the oracle's
// probability for a target class by fitting a weighted linear surrogate
// on perturbed copies of the message. It holds no per-request state and is
// safe for concurrent use.
type Explainer struct {
	oracle port.Oracle
	kernel Kernel
	cfg    Config
}

func New(oracle port.Oracle, cfg Config) (*Explainer, error) {
	if oracle == nil {
		return nil, fmt.Errorf("explainer: nil oracle")
	}
	if cfg.RidgeAlpha == 0 {
		cfg.RidgeAlpha = DefaultRidgeAlpha
	}
	if cfg.RidgeAlpha < 0 {
		return nil, fmt.Errorf("%w: ridge alpha must be positive, got %v", domain.ErrInvalidRequest, cfg.RidgeAlpha)
	}
	if cfg.NumFeatures <= 0 {
		cfg.NumFeatures = DefaultNumFeatures
	}
	if cfg.NumSamples <= 0 {
		cfg.NumSamples = DefaultNumSamples
	}
	return &Explainer{oracle: oracle, kernel: NewKernel(cfg.KernelWidth), cfg: cfg}, nil
}

func (e *Explainer) Explain(ctx context.Context, req domain.ExplainRequest) (domain.Explanation, error) {
	res, err := e.ExplainDetailed(ctx, req)
	if err != nil {
		return domain.Explanation{}, err
	}
	return res.Explanation, nil
}

// ExplainDetailed runs the full pipeline: sample, query the oracle, weight,
// fit, map and normalise. Any failure aborts the call; no partial
// explanation is returned.
func (e *Explainer) ExplainDetailed(ctx context.Context, req domain.ExplainRequest) (Result, error) {
	req, err := e.Resolve(req)
	if err != nil {
		return Result{}, err
	}
	log := logger.FromContext(ctx)

	seed := rand.Uint64()
	if req.Seed != nil {
		seed = *req.Seed
	}

	start := time.Now()
	tokens, samples, err := NewSampler(seed).Sample(req.Document, req.NumSamples)
	if err != nil {
		return Result{}, err
	}

	texts := make([]string, len(samples))
	for i, s := range samples {
		texts[i] = s.Text
	}
	probs, err := e.oracle.ClassProbabilities(ctx, texts)
	if err != nil {
		return Result{}, fmt.Errorf("explain: %w", err)
	}
	if len(probs) != len(samples) {
		return Result{}, fmt.Errorf("explain: oracle returned %d rows for %d samples", len(probs), len(samples))
	}

	targets := make([]float64, len(samples))
	weights := make([]float64, len(samples))
	for i, s := range samples {
		if req.TargetClass >= len(probs[i]) {
			return Result{}, fmt.Errorf("%w: target class %d, oracle returned %d classes", domain.ErrInvalidRequest, req.TargetClass, len(probs[i]))
		}
		targets[i] = probs[i][req.TargetClass]
		weights[i] = e.kernel.Weight(s.Mask)
	}

	surrogate, err := FitRidge(samples, targets, weights, e.cfg.RidgeAlpha)
	if err != nil {
		return Result{}, fmt.Errorf("explain: %w", err)
	}

	attrs := MapAttributions(req.Document, tokens, surrogate.Coefficients)
	exp := Normalize(attrs, req.NumFeatures)

	log.Debug("explained message",
		"tokens", len(tokens),
		"samples", len(samples),
		"seed", seed,
		"score", surrogate.Score,
		"local_pred", surrogate.LocalPrediction,
		"duration", time.Since(start),
	)

	return Result{
		Explanation:  exp,
		Attributions: attrs,
		Surrogate:    surrogate,
		Tokens:       tokens,
		Seed:         seed,
	}, nil
}

// Resolve fills zero feature and sample counts from the explainer's
// configuration and validates the request.
func (e *Explainer) Resolve(req domain.ExplainRequest) (domain.ExplainRequest, error) {
	if req.NumFeatures < 0 || req.NumSamples < 0 {
		return req, fmt.Errorf("%w: negative feature or sample count", domain.ErrInvalidRequest)
	}
	if req.NumFeatures == 0 {
		req.NumFeatures = e.cfg.NumFeatures
	}
	if req.NumSamples == 0 {
		req.NumSamples = e.cfg.NumSamples
	}
	if classes := len(e.oracle.Classes()); req.TargetClass < 0 || (classes > 0 && req.TargetClass >= classes) {
		return req, fmt.Errorf("%w: target class %d out of range for %d classes", domain.ErrInvalidRequest, req.TargetClass, classes)
	}
	return req, nil
}
