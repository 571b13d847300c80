package database

import (
	"context"
	"sync"

	"headshot-server/shared/interfaces"
	"headshot-server/shared/models"
)

// Compile-time check
var _ interfaces.VisitedStepStore = (*memoryVisitedStepStore)(nil)

// memoryVisitedStepStore держит наборы посещений в памяти процесса.
// Используется хостами без Redis и в тестах; содержимое живёт до рестарта.
type memoryVisitedStepStore struct {
	mu   sync.RWMutex
	sets map[string][]models.CategoryKey
}

// NewMemoryVisitedStepStore создает пустое in-memory хранилище посещений.
func NewMemoryVisitedStepStore() interfaces.VisitedStepStore {
	return &memoryVisitedStepStore{
		sets: make(map[string][]models.CategoryKey),
	}
}

func (s *memoryVisitedStepStore) GetVisited(_ context.Context, scope models.CompletionScope) ([]models.CategoryKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys, ok := s.sets[scope.StorageKey()]
	if !ok {
		return []models.CategoryKey{}, nil
	}
	return cloneKeys(keys), nil
}

func (s *memoryVisitedStepStore) SaveVisited(_ context.Context, scope models.CompletionScope, keys []models.CategoryKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sets[scope.StorageKey()] = cloneKeys(keys)
	return nil
}

func (s *memoryVisitedStepStore) ClearVisited(_ context.Context, scope models.CompletionScope) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sets, scope.StorageKey())
	return nil
}

func cloneKeys(keys []models.CategoryKey) []models.CategoryKey {
	out := make([]models.CategoryKey, len(keys))
	copy(out, keys)
	return out
}
