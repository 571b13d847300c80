package interfaces

import (
	"context"

	"headshot-server/shared/models"
)

// VisitedStepStore persists accepted step visits per completion scope for
// the duration of a session. This is plain string-list storage: a missing
// scope and an unreadable payload both surface as an empty set, never as an
// error, because visited bookkeeping must not be able to break the UI gate.
//
//go:generate mockery --name VisitedStepStore --output ./mocks --outpkg mocks --case=underscore
type VisitedStepStore interface {
	GetVisited(ctx context.Context, scope models.CompletionScope) ([]models.CategoryKey, error)
	SaveVisited(ctx context.Context, scope models.CompletionScope, keys []models.CategoryKey) error
	ClearVisited(ctx context.Context, scope models.CompletionScope) error
}
