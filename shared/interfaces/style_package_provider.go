package interfaces

import (
	"context"

	"headshot-server/shared/models"

	"github.com/google/uuid"
)

// StylePackageProvider is the read-side lookup the customization session
// consumes: package metadata by id or slug, plus the two pieces the
// completion logic actually needs (defaults and step order).
//
//go:generate mockery --name StylePackageProvider --output ./mocks --outpkg mocks --case=underscore
type StylePackageProvider interface {
	GetPackage(ctx context.Context, id uuid.UUID) (*models.StylePackage, error)
	GetPackageBySlug(ctx context.Context, slug string) (*models.StylePackage, error)
	DefaultSettingsFor(ctx context.Context, id uuid.UUID) (models.StyleSettings, error)
	StepKeysFor(ctx context.Context, id uuid.UUID) ([]models.CategoryKey, error)
}
