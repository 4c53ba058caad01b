package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/jafarshop/storefront/internal/domain"
)

// SettingsRepository reads the store-wide pricing policy
type SettingsRepository interface {
	Get(ctx context.Context) (*domain.StoreSettings, error)
}

// SettingsWriter updates the store-wide pricing policy
type SettingsWriter interface {
	Update(ctx context.Context, settings *domain.StoreSettings) error
}

// CouponRepository looks up coupons and their product restrictions
type CouponRepository interface {
	// FindByCode returns *errors.ErrNotFound for unknown codes. Matching ignores case.
	FindByCode(ctx context.Context, code string) (*domain.Coupon, error)
	// ListForProduct returns active coupons assigned to the product
	ListForProduct(ctx context.Context, productID string) ([]*domain.Coupon, error)
	// AssignedProductIDs returns nil when the coupon applies to every product
	AssignedProductIDs(ctx context.Context, couponID uuid.UUID) ([]string, error)
}

// CouponWriter creates coupons and assigns them to products
type CouponWriter interface {
	Create(ctx context.Context, coupon *domain.Coupon) error
	AssignProducts(ctx context.Context, couponID uuid.UUID, productIDs []string) error
}

// Repositories bundles the data sources the services depend on.
// The writers are nil when the data source is read-only.
type Repositories struct {
	Settings       SettingsRepository
	Coupons        CouponRepository
	SettingsWriter SettingsWriter
	CouponWriter   CouponWriter
}
