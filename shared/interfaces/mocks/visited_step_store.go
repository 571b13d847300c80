package mocks

import (
	"context"

	"headshot-server/shared/models"

	"github.com/stretchr/testify/mock"
)

// Mock VisitedStepStore
type VisitedStepStore struct {
	mock.Mock
}

func (m *VisitedStepStore) GetVisited(ctx context.Context, scope models.CompletionScope) ([]models.CategoryKey, error) {
	args := m.Called(ctx, scope)
	keys, _ := args.Get(0).([]models.CategoryKey)
	return keys, args.Error(1)
}

func (m *VisitedStepStore) SaveVisited(ctx context.Context, scope models.CompletionScope, keys []models.CategoryKey) error {
	args := m.Called(ctx, scope, keys)
	return args.Error(0)
}

func (m *VisitedStepStore) ClearVisited(ctx context.Context, scope models.CompletionScope) error {
	args := m.Called(ctx, scope)
	return args.Error(0)
}
