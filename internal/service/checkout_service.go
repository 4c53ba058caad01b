package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/cart"
	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/internal/repository"
	"github.com/jafarshop/storefront/pkg/errors"
)

type checkoutService struct {
	pricing *pricingService
	logger  *zap.Logger
	now     func() time.Time
}

// NewCheckoutService creates a new checkout service
func NewCheckoutService(repos *repository.Repositories, settings SettingsSource, logger *zap.Logger) *checkoutService {
	return &checkoutService{
		pricing: NewPricingService(repos, settings, logger),
		logger:  logger,
		now:     time.Now,
	}
}

// Snapshot captures the cart and its breakdown for the checkout flow. The
// result shares no memory with the store, so later cart mutations never
// change it.
func (s *checkoutService) Snapshot(ctx context.Context, store *cart.Store) (*domain.CheckoutSnapshot, error) {
	state := store.State()
	settings := s.pricing.settings.Settings()
	if settings == nil {
		return nil, &errors.ErrPricingPending{}
	}
	if len(state.Items) == 0 {
		return nil, &errors.ErrEmptyCart{}
	}

	breakdown, err := s.pricing.quoteWith(ctx, state, settings)
	if err != nil {
		return nil, err
	}
	if !breakdown.IsReady() {
		return nil, &errors.ErrPricingPending{}
	}
	if !breakdown.IsMinimumOrderMet {
		return nil, &errors.ErrMinimumOrderNotMet{
			Minimum:  settings.MinOrderAmount,
			Subtotal: breakdown.Subtotal,
		}
	}

	snapshot := &domain.CheckoutSnapshot{
		ID:         uuid.New(),
		SessionID:  store.SessionID(),
		Items:      state.Items,
		Breakdown:  breakdown,
		CapturedAt: s.now(),
	}
	if breakdown.Coupon != nil && breakdown.Coupon.Valid {
		snapshot.CouponCode = breakdown.Coupon.Code
		c := *breakdown.Coupon
		snapshot.Breakdown.Coupon = &c
	}

	s.logger.Info("Checkout snapshot captured",
		zap.String("snapshot_id", snapshot.ID.String()),
		zap.String("session_id", snapshot.SessionID),
		zap.Int("items", len(snapshot.Items)),
		zap.String("grand_total", breakdown.GrandTotal.StringFixed(2)),
	)
	return snapshot, nil
}
