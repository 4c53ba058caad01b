package domain

import (
	"github.com/shopspring/decimal"

	"github.com/jafarshop/storefront/pkg/errors"
)

var hundred = decimal.NewFromInt(100)

// Validate checks that every policy value is in range
func (s StoreSettings) Validate() error {
	if s.TaxRatePercent.IsNegative() || s.TaxRatePercent.GreaterThan(hundred) {
		return &errors.ErrValidation{Field: "tax_rate_percent", Message: "must be between 0 and 100"}
	}
	if s.DeliveryCharge.IsNegative() {
		return &errors.ErrValidation{Field: "delivery_charge", Message: "must not be negative"}
	}
	if s.FreeDeliveryThreshold.IsNegative() {
		return &errors.ErrValidation{Field: "free_delivery_threshold", Message: "must not be negative"}
	}
	if s.MinOrderAmount.IsNegative() {
		return &errors.ErrValidation{Field: "min_order_amount", Message: "must not be negative"}
	}
	return nil
}

// Validate checks the coupon definition before it is stored
func (c Coupon) Validate() error {
	if c.Code == "" {
		return &errors.ErrValidation{Field: "code", Message: "is required"}
	}
	if !c.DiscountType.IsValid() {
		return &errors.ErrValidation{Field: "discount_type", Message: "must be percentage or fixed"}
	}
	if !c.DiscountValue.IsPositive() {
		return &errors.ErrValidation{Field: "discount_value", Message: "must be greater than 0"}
	}
	if c.DiscountType == DiscountTypePercentage && c.DiscountValue.GreaterThan(hundred) {
		return &errors.ErrValidation{Field: "discount_value", Message: "percentage must not exceed 100"}
	}
	if c.MinOrderAmount.IsNegative() {
		return &errors.ErrValidation{Field: "min_order_amount", Message: "must not be negative"}
	}
	if c.MaxDiscountAmount != nil && c.MaxDiscountAmount.IsNegative() {
		return &errors.ErrValidation{Field: "max_discount_amount", Message: "must not be negative"}
	}
	if !c.ValidFrom.IsZero() && !c.ValidUntil.IsZero() && c.ValidUntil.Before(c.ValidFrom) {
		return &errors.ErrValidation{Field: "valid_until", Message: "must not be before valid_from"}
	}
	if c.UsageLimit != nil && *c.UsageLimit < 0 {
		return &errors.ErrValidation{Field: "usage_limit", Message: "must not be negative"}
	}
	return nil
}
