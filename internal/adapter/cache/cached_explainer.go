package cache

import (
	"context"

	"spamlens/internal/domain"
	"spamlens/internal/logger"
	"spamlens/internal/port"
)

// CachedExplainer serves repeated seeded requests from memory, then from
// the persistent store, before running the wrapped explainer.
type CachedExplainer struct {
	explainer port.Explainer
	cache     *ExplanationCache
	store     port.ModelStore // optional second level
	scope     string
}

// NewCachedExplainer wraps explainer. scope should identify the model
// (name and version) so explanations of different models never collide.
func NewCachedExplainer(explainer port.Explainer, cache *ExplanationCache, store port.ModelStore, scope string) *CachedExplainer {
	return &CachedExplainer{
		explainer: explainer,
		cache:     cache,
		store:     store,
		scope:     scope,
	}
}

// requestResolver is implemented by explainers that substitute configured
// defaults for zero request fields. Keys are built from the resolved request
// so a changed default never serves an explanation computed under the old one.
type requestResolver interface {
	Resolve(req domain.ExplainRequest) (domain.ExplainRequest, error)
}

func (e *CachedExplainer) Explain(ctx context.Context, req domain.ExplainRequest) (domain.Explanation, error) {
	if r, ok := e.explainer.(requestResolver); ok {
		resolved, err := r.Resolve(req)
		if err != nil {
			return domain.Explanation{}, err
		}
		req = resolved
	}
	key, cacheable := Key(e.scope, req)
	if !cacheable {
		return e.explainer.Explain(ctx, req)
	}
	log := logger.FromContext(ctx)

	if exp, hit := e.cache.Get(key); hit {
		log.Debug("explanation cache hit", "level", "memory")
		return exp, nil
	}

	gen := e.cache.Generation()
	if e.store != nil {
		exp, found, err := e.store.GetExplanation(key)
		if err != nil {
			log.Warn("explanation store lookup failed", "error", err)
		} else if found {
			log.Debug("explanation cache hit", "level", "store")
			e.cache.PutAt(key, exp, gen)
			return exp, nil
		}
	}

	exp, err := e.explainer.Explain(ctx, req)
	if err != nil {
		return domain.Explanation{}, err
	}

	e.cache.PutAt(key, exp, gen)
	if e.store != nil {
		if err := e.store.PutExplanation(key, exp); err != nil {
			log.Warn("failed to persist explanation", "error", err)
		}
	}
	return exp, nil
}

// Invalidate drops both cache levels.
func (e *CachedExplainer) Invalidate() error {
	e.cache.Invalidate()
	if e.store != nil {
		return e.store.ClearExplanations()
	}
	return nil
}

var _ port.Explainer = (*CachedExplainer)(nil)
