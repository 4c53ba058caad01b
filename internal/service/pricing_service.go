package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/internal/pricing"
	"github.com/jafarshop/storefront/internal/repository"
)

// SettingsSource serves the current settings snapshot; nil means still loading
type SettingsSource interface {
	Settings() *domain.StoreSettings
}

type pricingService struct {
	coupons  *couponService
	settings SettingsSource
	logger   *zap.Logger
	now      func() time.Time
}

// NewPricingService creates a new pricing service
func NewPricingService(repos *repository.Repositories, settings SettingsSource, logger *zap.Logger) *pricingService {
	return &pricingService{
		coupons:  NewCouponService(repos, logger),
		settings: settings,
		logger:   logger,
		now:      time.Now,
	}
}

// Quote prices a cart snapshot. While settings load the breakdown is pending
// and carries only the subtotal.
func (s *pricingService) Quote(ctx context.Context, state domain.CartState) (domain.PriceBreakdown, error) {
	return s.quoteWith(ctx, state, s.settings.Settings())
}

func (s *pricingService) quoteWith(ctx context.Context, state domain.CartState, settings *domain.StoreSettings) (domain.PriceBreakdown, error) {
	in := pricing.Input{
		Items:    state.Items,
		Settings: settings,
		Now:      s.now(),
	}
	if in.Settings == nil {
		return pricing.ComputeBreakdown(in), nil
	}

	applied, err := s.coupons.Resolve(ctx, state.CouponCode)
	if err != nil {
		return domain.PriceBreakdown{}, err
	}
	in.Coupon = applied

	return pricing.ComputeBreakdown(in), nil
}
