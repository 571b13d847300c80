package mocks

import (
	"context"

	"headshot-server/shared/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// Mock StylePackageProvider
type StylePackageProvider struct {
	mock.Mock
}

func (m *StylePackageProvider) GetPackage(ctx context.Context, id uuid.UUID) (*models.StylePackage, error) {
	args := m.Called(ctx, id)
	pkg, _ := args.Get(0).(*models.StylePackage)
	return pkg, args.Error(1)
}

func (m *StylePackageProvider) GetPackageBySlug(ctx context.Context, slug string) (*models.StylePackage, error) {
	args := m.Called(ctx, slug)
	pkg, _ := args.Get(0).(*models.StylePackage)
	return pkg, args.Error(1)
}

func (m *StylePackageProvider) DefaultSettingsFor(ctx context.Context, id uuid.UUID) (models.StyleSettings, error) {
	args := m.Called(ctx, id)
	settings, _ := args.Get(0).(models.StyleSettings)
	return settings, args.Error(1)
}

func (m *StylePackageProvider) StepKeysFor(ctx context.Context, id uuid.UUID) ([]models.CategoryKey, error) {
	args := m.Called(ctx, id)
	keys, _ := args.Get(0).([]models.CategoryKey)
	return keys, args.Error(1)
}
