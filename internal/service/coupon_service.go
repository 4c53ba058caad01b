package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/cart"
	"github.com/jafarshop/storefront/internal/coupon"
	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/internal/metric"
	"github.com/jafarshop/storefront/internal/pricing"
	"github.com/jafarshop/storefront/internal/repository"
	"github.com/jafarshop/storefront/pkg/errors"
)

type couponService struct {
	repos  *repository.Repositories
	logger *zap.Logger
	now    func() time.Time
}

// NewCouponService creates a new coupon service
func NewCouponService(repos *repository.Repositories, logger *zap.Logger) *couponService {
	return &couponService{
		repos:  repos,
		logger: logger,
		now:    time.Now,
	}
}

// Apply validates the code against the current cart and, when valid, stores it
// on the cart. An invalid code is a result, not an error; the cart keeps its
// previous coupon in that case.
func (s *couponService) Apply(ctx context.Context, store *cart.Store, code string) (*domain.CouponOutcome, error) {
	code = coupon.NormalizeCode(code)
	if code == "" {
		return nil, &errors.ErrValidation{Field: "code", Message: "is required"}
	}

	applied, err := s.Resolve(ctx, code)
	if err != nil {
		return nil, err
	}

	state := store.State()
	res := coupon.Validate(applied.Coupon, pricing.Subtotal(state.Items), s.now(), state.ProductIDs(), applied.AssignedProductIDs)
	s.record(res)

	outcome := &domain.CouponOutcome{
		Code:    applied.Code,
		Valid:   res.Valid,
		Reason:  res.Reason,
		Message: res.Reason.Message(),
	}
	if !res.Valid {
		s.logger.Debug("Coupon rejected",
			zap.String("session_id", store.SessionID()),
			zap.String("code", code),
			zap.String("reason", string(res.Reason)),
		)
		return outcome, nil
	}

	store.SetCouponCode(applied.Code)
	return outcome, nil
}

// Remove detaches the coupon from the cart
func (s *couponService) Remove(store *cart.Store) {
	store.SetCouponCode("")
}

// Resolve looks up a coupon and its product restrictions. An empty code
// resolves to nil; an unknown code resolves to a coupon-less entry so pricing
// can report it as not found.
func (s *couponService) Resolve(ctx context.Context, code string) (*pricing.AppliedCoupon, error) {
	code = coupon.NormalizeCode(code)
	if code == "" {
		return nil, nil
	}

	c, err := s.repos.Coupons.FindByCode(ctx, code)
	if err != nil {
		if _, ok := err.(*errors.ErrNotFound); ok {
			return &pricing.AppliedCoupon{Code: code}, nil
		}
		s.logger.Error("Failed to find coupon", zap.String("code", code), zap.Error(err))
		return nil, err
	}

	assigned, err := s.repos.Coupons.AssignedProductIDs(ctx, c.ID)
	if err != nil {
		s.logger.Error("Failed to load coupon assignments", zap.String("code", code), zap.Error(err))
		return nil, err
	}

	return &pricing.AppliedCoupon{
		Coupon:             c,
		Code:               c.Code,
		AssignedProductIDs: assigned,
	}, nil
}

// OffersForCart lists the coupons assigned to any product in the cart, each
// checked against the cart's current subtotal
func (s *couponService) OffersForCart(ctx context.Context, items []domain.CartLineItem) ([]CouponOffer, error) {
	productIDs := domain.CartState{Items: items}.ProductIDs()
	subtotal := pricing.Subtotal(items)
	now := s.now()

	seen := make(map[string]struct{})
	offers := make([]CouponOffer, 0)
	for _, productID := range productIDs {
		coupons, err := s.repos.Coupons.ListForProduct(ctx, productID)
		if err != nil {
			s.logger.Error("Failed to list coupons for product", zap.String("product_id", productID), zap.Error(err))
			return nil, err
		}

		for _, c := range coupons {
			if _, ok := seen[c.ID.String()]; ok {
				continue
			}
			seen[c.ID.String()] = struct{}{}

			assigned, err := s.repos.Coupons.AssignedProductIDs(ctx, c.ID)
			if err != nil {
				s.logger.Error("Failed to load coupon assignments", zap.String("code", c.Code), zap.Error(err))
				return nil, err
			}

			res := coupon.Validate(c, subtotal, now, productIDs, assigned)
			offer := CouponOffer{
				Code:              c.Code,
				DiscountType:      c.DiscountType,
				DiscountValue:     c.DiscountValue,
				MinOrderAmount:    c.MinOrderAmount,
				MaxDiscountAmount: c.MaxDiscountAmount,
				Applicable:        res.Valid,
				Reason:            res.Reason,
			}
			if !c.ValidUntil.IsZero() {
				until := c.ValidUntil
				offer.ValidUntil = &until
			}
			if res.Valid {
				offer.EstimatedDiscount = coupon.Discount(c, subtotal)
			}
			offers = append(offers, offer)
		}
	}

	return offers, nil
}

func (s *couponService) record(res coupon.Result) {
	label := "valid"
	if !res.Valid {
		label = string(res.Reason)
	}
	metric.CouponValidationsTotal.WithLabelValues(label).Inc()
}
