package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/kirimku/smartseller-backend/internal/domain/entity"
	"github.com/kirimku/smartseller-backend/internal/domain/repository"
)

// PostgreSQLPricingSettingsRepository implements repository.PricingSettingsRepository.
// app_settings always holds exactly one row (id = 1), matching the
// teacher's singleton-settings idiom.
type PostgreSQLPricingSettingsRepository struct {
	db *sqlx.DB
}

func NewPostgreSQLPricingSettingsRepository(db *sqlx.DB) repository.PricingSettingsRepository {
	return &PostgreSQLPricingSettingsRepository{db: db}
}

func (r *PostgreSQLPricingSettingsRepository) Get(ctx context.Context) (*entity.PricingSettings, error) {
	var s entity.PricingSettings
	err := r.db.GetContext(ctx, &s, `SELECT * FROM app_settings WHERE id = 1`)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, NewNotFoundError("PricingSettings", "1")
		}
		return nil, fmt.Errorf("get pricing settings: %w", err)
	}
	return &s, nil
}

func (r *PostgreSQLPricingSettingsRepository) Update(ctx context.Context, settings *entity.PricingSettings) error {
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("pricing settings validation failed: %w", err)
	}
	settings.ID = 1
	settings.UpdatedAt = time.Now()

	query := `
		INSERT INTO app_settings (
			id, exchange_rate, margin_percent, commission_percent,
			international_shipping_per_kg, domestic_shipping, updated_at
		) VALUES (
			1, :exchange_rate, :margin_percent, :commission_percent,
			:international_shipping_per_kg, :domestic_shipping, :updated_at
		)
		ON CONFLICT (id) DO UPDATE SET
			exchange_rate = EXCLUDED.exchange_rate,
			margin_percent = EXCLUDED.margin_percent,
			commission_percent = EXCLUDED.commission_percent,
			international_shipping_per_kg = EXCLUDED.international_shipping_per_kg,
			domestic_shipping = EXCLUDED.domestic_shipping,
			updated_at = EXCLUDED.updated_at`

	if _, err := r.db.NamedExecContext(ctx, query, settings); err != nil {
		return fmt.Errorf("update pricing settings: %w", err)
	}
	return nil
}
