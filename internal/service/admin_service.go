package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/coupon"
	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/internal/repository"
	"github.com/jafarshop/storefront/pkg/errors"
)

// SettingsStore is a settings source that can be updated in place
type SettingsStore interface {
	SettingsSource
	Set(s domain.StoreSettings)
}

type adminService struct {
	repos    *repository.Repositories
	settings SettingsStore
	logger   *zap.Logger
}

// NewAdminService creates a new admin service
func NewAdminService(repos *repository.Repositories, settings SettingsStore, logger *zap.Logger) *adminService {
	return &adminService{
		repos:    repos,
		settings: settings,
		logger:   logger,
	}
}

// UpdateSettings validates and stores new settings, then swaps them into the
// live snapshot so the next quote uses them
func (s *adminService) UpdateSettings(ctx context.Context, req UpdateSettingsRequest) (*domain.StoreSettings, error) {
	settings := &domain.StoreSettings{
		CurrencySymbol:        strings.TrimSpace(req.CurrencySymbol),
		TaxRatePercent:        req.TaxRatePercent,
		DeliveryCharge:        req.DeliveryCharge,
		FreeDeliveryThreshold: req.FreeDeliveryThreshold,
		MinOrderAmount:        req.MinOrderAmount,
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	if err := s.repos.SettingsWriter.Update(ctx, settings); err != nil {
		return nil, err
	}
	s.settings.Set(*settings)

	s.logger.Info("Store settings updated",
		zap.String("tax_rate_percent", settings.TaxRatePercent.String()),
		zap.String("delivery_charge", settings.DeliveryCharge.String()),
		zap.String("free_delivery_threshold", settings.FreeDeliveryThreshold.String()),
		zap.String("min_order_amount", settings.MinOrderAmount.String()),
	)
	return settings, nil
}

// CreateCoupon stores a new coupon and its optional product restrictions
func (s *adminService) CreateCoupon(ctx context.Context, req CreateCouponRequest) (*domain.Coupon, error) {
	c := &domain.Coupon{
		Code:              coupon.NormalizeCode(req.Code),
		DiscountType:      domain.DiscountType(req.DiscountType),
		DiscountValue:     req.DiscountValue,
		MinOrderAmount:    req.MinOrderAmount,
		MaxDiscountAmount: req.MaxDiscountAmount,
		IsActive:          true,
		UsageLimit:        req.UsageLimit,
	}
	if req.IsActive != nil {
		c.IsActive = *req.IsActive
	}
	if req.ValidFrom != nil {
		c.ValidFrom = *req.ValidFrom
	}
	if req.ValidUntil != nil {
		c.ValidUntil = *req.ValidUntil
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}

	if err := s.repos.CouponWriter.Create(ctx, c); err != nil {
		return nil, err
	}

	if ids := cleanProductIDs(req.ProductIDs); len(ids) > 0 {
		if err := s.repos.CouponWriter.AssignProducts(ctx, c.ID, ids); err != nil {
			return nil, err
		}
	}

	s.logger.Info("Coupon created",
		zap.String("coupon_id", c.ID.String()),
		zap.String("code", c.Code),
		zap.Int("products", len(req.ProductIDs)),
	)
	return c, nil
}

// AssignProducts restricts an existing coupon to the given products
func (s *adminService) AssignProducts(ctx context.Context, code string, productIDs []string) (*domain.Coupon, error) {
	ids := cleanProductIDs(productIDs)
	if len(ids) == 0 {
		return nil, &errors.ErrValidation{Field: "product_ids", Message: "must contain at least one product id"}
	}

	c, err := s.repos.Coupons.FindByCode(ctx, coupon.NormalizeCode(code))
	if err != nil {
		return nil, err
	}

	if err := s.repos.CouponWriter.AssignProducts(ctx, c.ID, ids); err != nil {
		return nil, err
	}

	s.logger.Info("Coupon assigned to products",
		zap.String("code", c.Code),
		zap.Strings("product_ids", ids),
	)
	return c, nil
}

func cleanProductIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
