package postgres

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/pkg/errors"
)

// store_settings holds a single row with id = 1
type settingsRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSettingsRepository creates a new store settings repository
func NewSettingsRepository(db *sql.DB, logger *zap.Logger) *settingsRepository {
	return &settingsRepository{
		db:     db,
		logger: logger,
	}
}

func (r *settingsRepository) Get(ctx context.Context) (*domain.StoreSettings, error) {
	query := `
		SELECT currency_symbol, tax_rate_percent, delivery_charge, free_delivery_threshold,
			min_order_amount, updated_at
		FROM store_settings
		WHERE id = 1
	`

	var s domain.StoreSettings
	err := r.db.QueryRowContext(ctx, query).Scan(
		&s.CurrencySymbol,
		&s.TaxRatePercent,
		&s.DeliveryCharge,
		&s.FreeDeliveryThreshold,
		&s.MinOrderAmount,
		&s.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "store settings", ID: "1"}
	}
	if err != nil {
		r.logger.Error("Failed to get store settings", zap.Error(err))
		return nil, err
	}

	return &s, nil
}

func (r *settingsRepository) Update(ctx context.Context, s *domain.StoreSettings) error {
	query := `
		INSERT INTO store_settings (id, currency_symbol, tax_rate_percent, delivery_charge,
			free_delivery_threshold, min_order_amount, updated_at)
		VALUES (1, $1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE
		SET currency_symbol = EXCLUDED.currency_symbol,
			tax_rate_percent = EXCLUDED.tax_rate_percent,
			delivery_charge = EXCLUDED.delivery_charge,
			free_delivery_threshold = EXCLUDED.free_delivery_threshold,
			min_order_amount = EXCLUDED.min_order_amount,
			updated_at = EXCLUDED.updated_at
	`

	s.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		s.CurrencySymbol,
		s.TaxRatePercent,
		s.DeliveryCharge,
		s.FreeDeliveryThreshold,
		s.MinOrderAmount,
		s.UpdatedAt,
	)

	if err != nil {
		r.logger.Error("Failed to update store settings", zap.Error(err))
		return err
	}

	return nil
}
