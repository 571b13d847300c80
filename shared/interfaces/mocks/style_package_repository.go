package mocks

import (
	"context"

	"headshot-server/shared/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// Mock StylePackageRepository
type StylePackageRepository struct {
	mock.Mock
}

func (m *StylePackageRepository) Create(ctx context.Context, pkg *models.StylePackage) error {
	args := m.Called(ctx, pkg)
	return args.Error(0)
}

func (m *StylePackageRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.StylePackage, error) {
	args := m.Called(ctx, id)
	pkg, _ := args.Get(0).(*models.StylePackage)
	return pkg, args.Error(1)
}

func (m *StylePackageRepository) GetBySlug(ctx context.Context, slug string) (*models.StylePackage, error) {
	args := m.Called(ctx, slug)
	pkg, _ := args.Get(0).(*models.StylePackage)
	return pkg, args.Error(1)
}

func (m *StylePackageRepository) ListByStatuses(ctx context.Context, statuses []models.PackageStatus) ([]*models.StylePackage, error) {
	args := m.Called(ctx, statuses)
	packages, _ := args.Get(0).([]*models.StylePackage)
	return packages, args.Error(1)
}

func (m *StylePackageRepository) Update(ctx context.Context, pkg *models.StylePackage) error {
	args := m.Called(ctx, pkg)
	return args.Error(0)
}

func (m *StylePackageRepository) Archive(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
