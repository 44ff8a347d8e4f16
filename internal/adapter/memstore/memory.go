package memstore

import (
	"fmt"
	"sort"
	"sync"

	"spamlens/internal/domain"
	"spamlens/internal/port"
)

type storedModel struct {
	info     domain.ModelInfo
	artifact []byte
}

// MemoryStore is a port.ModelStore that lives only as long as the process.
type MemoryStore struct {
	mu           sync.RWMutex
	models       map[string]storedModel
	explanations map[string]domain.Explanation
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		models:       make(map[string]storedModel),
		explanations: make(map[string]domain.Explanation),
	}
}

func (s *MemoryStore) PutModel(info domain.ModelInfo, artifact []byte) error {
	if info.Name == "" {
		return fmt.Errorf("%w: model name is required", domain.ErrInvalidModel)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.models[info.Name]; ok {
		s.explanations = make(map[string]domain.Explanation)
	}
	s.models[info.Name] = storedModel{info: info, artifact: append([]byte(nil), artifact...)}
	return nil
}

func (s *MemoryStore) GetModel(name string) (domain.ModelInfo, []byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.models[name]
	if !ok {
		return domain.ModelInfo{}, nil, fmt.Errorf("%w: %s", domain.ErrModelNotFound, name)
	}
	return m.info, append([]byte(nil), m.artifact...), nil
}

func (s *MemoryStore) ListModels() ([]domain.ModelInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	models := make([]domain.ModelInfo, 0, len(s.models))
	for _, m := range s.models {
		models = append(models, m.info)
	}
	sort.Slice(models, func(i, j int) bool { return models[i].Name < models[j].Name })
	return models, nil
}

func (s *MemoryStore) DeleteModel(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.models[name]; !ok {
		return fmt.Errorf("%w: %s", domain.ErrModelNotFound, name)
	}
	delete(s.models, name)
	return nil
}

func (s *MemoryStore) PutExplanation(key string, exp domain.Explanation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.explanations[key] = exp
	return nil
}

func (s *MemoryStore) GetExplanation(key string) (domain.Explanation, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	exp, ok := s.explanations[key]
	return exp, ok, nil
}

func (s *MemoryStore) ClearExplanations() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.explanations = make(map[string]domain.Explanation)
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}

var _ port.ModelStore = (*MemoryStore)(nil)
