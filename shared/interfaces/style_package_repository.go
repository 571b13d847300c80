package interfaces

import (
	"context"

	"headshot-server/shared/models"

	"github.com/google/uuid"
)

//go:generate mockery --name StylePackageRepository --output ./mocks --outpkg mocks --case=underscore
type StylePackageRepository interface {
	Create(ctx context.Context, pkg *models.StylePackage) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.StylePackage, error)
	GetBySlug(ctx context.Context, slug string) (*models.StylePackage, error)
	// ListByStatuses возвращает пакеты в любом из перечисленных статусов.
	ListByStatuses(ctx context.Context, statuses []models.PackageStatus) ([]*models.StylePackage, error)
	Update(ctx context.Context, pkg *models.StylePackage) error
	// Archive переводит пакет в status=archived, не удаляя строку.
	Archive(ctx context.Context, id uuid.UUID) error
}
