package messaging

import (
	"time"

	"headshot-server/shared/models"

	"github.com/google/uuid"
)

const (
	packageUpdateExchange     = "style_package_update_exchange"
	packageUpdateExchangeType = "fanout"
)

// PackageUpdatePayload - событие изменения пакета стилей. Несёт только
// идентификацию и статус; актуальное содержимое пакета подписчики
// перечитывают из своего репозитория.
type PackageUpdatePayload struct {
	PackageID uuid.UUID            `json:"packageId"`
	Slug      string               `json:"slug"`
	Status    models.PackageStatus `json:"status"`
	UpdatedAt time.Time            `json:"updatedAt"`
}
