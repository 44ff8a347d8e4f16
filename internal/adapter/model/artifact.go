package model

import (
	"encoding/json"
	"fmt"
	"os"

	"spamlens/internal/adapter/analyzer"
	"spamlens/internal/domain"
	"spamlens/internal/port"
)

const (
	KindLinearSVM  = "linear_svm"
	KindLogistic   = "logistic"
	KindNaiveBayes = "naive_bayes"
)

// Artifact is the on-disk form of a trained spam model: a tf-idf
// vocabulary plus the parameters of one classifier.
type Artifact struct {
	Name       string         `json:"name"`
	Version    string         `json:"version"`
	Classes    []string       `json:"classes"`
	Vectorizer VectorizerSpec `json:"vectorizer"`
	Classifier ClassifierSpec `json:"classifier"`
}

type VectorizerSpec struct {
	Vocabulary  map[string]int `json:"vocabulary"`
	IDF         []float64      `json:"idf,omitempty"`
	SublinearTF bool           `json:"sublinear_tf,omitempty"`
	NgramMax    int            `json:"ngram_max,omitempty"`
	Lowercase   *bool          `json:"lowercase,omitempty"`
	StopWords   bool           `json:"stop_words,omitempty"`
	Norm        string         `json:"norm,omitempty"` // "l2" or ""
}

type ClassifierSpec struct {
	Kind           string      `json:"kind"`
	Coef           [][]float64 `json:"coef,omitempty"`
	Intercept      []float64   `json:"intercept,omitempty"`
	ClassLogPrior  []float64   `json:"class_log_prior,omitempty"`
	FeatureLogProb [][]float64 `json:"feature_log_prob,omitempty"`
}

// LoadArtifact reads and validates an artifact file.
func LoadArtifact(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model artifact: %w", err)
	}
	return ParseArtifact(data)
}

func ParseArtifact(data []byte) (*Artifact, error) {
	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidModel, err)
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return &a, nil
}

// Validate checks structural consistency. Unknown classifier kinds are left
// to Build so they surface as unsupported models.
func (a *Artifact) Validate() error {
	if a.Name == "" {
		return fmt.Errorf("%w: missing name", domain.ErrInvalidModel)
	}
	if len(a.Classes) < 2 {
		return fmt.Errorf("%w: need at least 2 classes, got %d", domain.ErrInvalidModel, len(a.Classes))
	}
	if len(a.Vectorizer.Vocabulary) == 0 {
		return fmt.Errorf("%w: empty vocabulary", domain.ErrInvalidModel)
	}
	switch a.Vectorizer.Norm {
	case "", "l2":
	default:
		return fmt.Errorf("%w: unsupported norm %q", domain.ErrInvalidModel, a.Vectorizer.Norm)
	}
	dim := a.Dim()
	rows := a.Classifier.Coef
	if a.Classifier.Kind == KindNaiveBayes {
		rows = a.Classifier.FeatureLogProb
	}
	for i, row := range rows {
		if len(row) != dim {
			return fmt.Errorf("%w: classifier row %d has width %d, vocabulary has %d features", domain.ErrInvalidModel, i, len(row), dim)
		}
	}
	return nil
}

// Dim returns the feature space width implied by the vectorizer.
func (a *Artifact) Dim() int {
	if len(a.Vectorizer.IDF) > 0 {
		return len(a.Vectorizer.IDF)
	}
	dim := 0
	for _, idx := range a.Vectorizer.Vocabulary {
		if idx+1 > dim {
			dim = idx + 1
		}
	}
	return dim
}

// Build instantiates the vectorizer and classifier described by the
// artifact.
func (a *Artifact) Build() (*TFIDFVectorizer, port.Classifier, error) {
	lowercase := true
	if a.Vectorizer.Lowercase != nil {
		lowercase = *a.Vectorizer.Lowercase
	}
	vec, err := NewTFIDFVectorizer(
		analyzer.NewTokenizer(a.Vectorizer.StopWords, lowercase),
		a.Vectorizer.Vocabulary,
		a.Vectorizer.IDF,
		VectorizerOptions{
			SublinearTF: a.Vectorizer.SublinearTF,
			NgramMax:    a.Vectorizer.NgramMax,
			L2Norm:      a.Vectorizer.Norm == "l2",
		},
	)
	if err != nil {
		return nil, nil, err
	}

	cs := a.Classifier
	var clf port.Classifier
	switch cs.Kind {
	case KindLinearSVM:
		if len(cs.Coef) != 1 || len(cs.Intercept) != 1 {
			return nil, nil, fmt.Errorf("%w: linear svm needs one coefficient row and one intercept", domain.ErrInvalidModel)
		}
		clf, err = NewLinearSVM(a.Classes, cs.Coef[0], cs.Intercept[0])
	case KindLogistic:
		clf, err = NewLogistic(a.Classes, cs.Coef, cs.Intercept)
	case KindNaiveBayes:
		clf, err = NewNaiveBayes(a.Classes, cs.ClassLogPrior, cs.FeatureLogProb)
	default:
		return nil, nil, fmt.Errorf("%w: classifier kind %q", domain.ErrUnsupportedModel, cs.Kind)
	}
	if err != nil {
		return nil, nil, err
	}
	return vec, clf, nil
}

func (a *Artifact) Info() domain.ModelInfo {
	return domain.ModelInfo{
		Name:     a.Name,
		Version:  a.Version,
		Kind:     a.Classifier.Kind,
		Classes:  a.Classes,
		Features: a.Dim(),
	}
}
