package usecase

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"spamlens/config"
	"spamlens/internal/adapter/analyzer"
	"spamlens/internal/adapter/cache"
	"spamlens/internal/adapter/explainer"
	"spamlens/internal/adapter/model"
	"spamlens/internal/adapter/oracle"
	"spamlens/internal/domain"
	"spamlens/internal/port"
)

// Runtime is the immutable classification context shared by every use
// case: the loaded model and the oracle built around it.
type Runtime struct {
	Info       domain.ModelInfo
	Normalizer port.Normalizer
	Vectorizer port.Vectorizer
	Classifier port.Classifier
	Oracle     *oracle.Oracle
}

// NewRuntime builds the text pipeline and oracle for an artifact.
func NewRuntime(a *model.Artifact, cfg *config.Config) (*Runtime, error) {
	vec, clf, err := a.Build()
	if err != nil {
		return nil, fmt.Errorf("build model %s: %w", a.Name, err)
	}

	norm := analyzer.NewTextNormalizer(analyzer.NormalizerOptions{
		MaskURLs:    cfg.Normalize.MaskURLs,
		MaskPhones:  cfg.Normalize.MaskPhones,
		MaskNumbers: cfg.Normalize.MaskNumbers,
	})

	orc, err := oracle.New(norm, vec, clf, oracle.Options{
		BatchSize: cfg.Oracle.BatchSize,
		Workers:   cfg.Oracle.Workers,
		Timeout:   cfg.Oracle.Timeout.Std(),
	})
	if err != nil {
		return nil, err
	}

	return &Runtime{
		Info:       a.Info(),
		Normalizer: norm,
		Vectorizer: vec,
		Classifier: clf,
		Oracle:     orc,
	}, nil
}

func (r *Runtime) Classes() []string {
	return r.Oracle.Classes()
}

// Scope identifies the model for cache keys.
func (r *Runtime) Scope() string {
	return r.Info.Name + "@" + r.Info.Version
}

// ClassIndex resolves a class label, case-insensitively, to its index.
func (r *Runtime) ClassIndex(label string) (int, error) {
	for i, c := range r.Classes() {
		if strings.EqualFold(c, label) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown class %q (model classes: %s)", domain.ErrInvalidRequest, label, strings.Join(r.Classes(), ", "))
}

// LoadArtifact resolves the configured model: an explicit artifact path
// wins, otherwise the named model is read from the store.
func LoadArtifact(cfg *config.Config, store port.ModelStore) (*model.Artifact, error) {
	if cfg.Model.Path != "" {
		return model.LoadArtifact(cfg.Model.Path)
	}
	if store == nil {
		return nil, fmt.Errorf("%w: no model path configured", domain.ErrModelNotFound)
	}
	_, data, err := store.GetModel(cfg.Model.Name)
	if err != nil {
		return nil, err
	}
	return model.ParseArtifact(data)
}

// ImportModel validates an artifact, makes sure it builds, and stores it
// under its own name or the override.
func ImportModel(store port.ModelStore, data []byte, name string) (domain.ModelInfo, error) {
	a, err := model.ParseArtifact(data)
	if err != nil {
		return domain.ModelInfo{}, err
	}
	if _, _, err := a.Build(); err != nil {
		return domain.ModelInfo{}, err
	}
	if name != "" && name != a.Name {
		a.Name = name
		if data, err = json.Marshal(a); err != nil {
			return domain.ModelInfo{}, err
		}
	}
	info := a.Info()
	info.ImportedAt = time.Now().UTC()
	return info, store.PutModel(info, data)
}

// App bundles the use cases wired around one Runtime.
type App struct {
	Runtime  *Runtime
	Classify *ClassifyUseCase
	Explain  *ExplainUseCase
	// Cache is nil when caching is disabled.
	Cache *cache.CachedExplainer
}

// NewApp wires the explainer, optional caching and use cases. With a nil
// store explanations are only cached in memory.
func NewApp(rt *Runtime, cfg *config.Config, store port.ModelStore) (*App, error) {
	eng, err := explainer.New(rt.Oracle, explainer.Config{
		KernelWidth: cfg.Explain.KernelWidth,
		RidgeAlpha:  cfg.Explain.RidgeAlpha,
		NumFeatures: cfg.Explain.NumFeatures,
		NumSamples:  cfg.Explain.NumSamples,
	})
	if err != nil {
		return nil, err
	}

	app := &App{Runtime: rt}
	var exp port.Explainer = eng
	if cfg.Cache.Enabled {
		var second port.ModelStore
		if cfg.Cache.Persist {
			second = store
		}
		app.Cache = cache.NewCachedExplainer(eng, cache.NewExplanationCache(cfg.Cache.Size, cfg.Cache.TTL.Std()), second, rt.Scope())
		exp = app.Cache
	}

	app.Classify = NewClassifyUseCase(rt)
	target, err := rt.ClassIndex(cfg.Explain.Target)
	if err != nil {
		// binary models with other labels explain the last class
		target = len(rt.Classes()) - 1
	}
	app.Explain = NewExplainUseCase(rt, exp, app.Classify, target)
	return app, nil
}
