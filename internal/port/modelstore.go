package port

import "spamlens/internal/domain"

// ModelStore persists model artifacts and previously computed explanations.
type ModelStore interface {
	PutModel(info domain.ModelInfo, artifact []byte) error

	GetModel(name string) (domain.ModelInfo, []byte, error)

	ListModels() ([]domain.ModelInfo, error)

	DeleteModel(name string) error

	PutExplanation(key string, exp domain.Explanation) error

	GetExplanation(key string) (domain.Explanation, bool, error)

	ClearExplanations() error

	Close() error
}
