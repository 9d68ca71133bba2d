package repository

import (
	"context"

	"github.com/kirimku/smartseller-backend/internal/domain/entity"
)

// PricingSettingsRepository persists the single active pricing
// configuration (table app_settings) the materializer reads per run.
type PricingSettingsRepository interface {
	Get(ctx context.Context) (*entity.PricingSettings, error)
	Update(ctx context.Context, settings *entity.PricingSettings) error
}
