// Package pricing turns a cart snapshot and store policy into a checkout-ready breakdown.
package pricing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jafarshop/storefront/internal/coupon"
	"github.com/jafarshop/storefront/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// AppliedCoupon is a coupon the shopper entered, with its product restrictions
type AppliedCoupon struct {
	Coupon             *domain.Coupon
	Code               string
	AssignedProductIDs []string
}

// Input is an immutable snapshot of everything one computation needs.
// A nil Settings means the settings are still loading.
type Input struct {
	Items    []domain.CartLineItem
	Settings *domain.StoreSettings
	Coupon   *AppliedCoupon
	Now      time.Time
}

// ComputeBreakdown prices the cart. It has no side effects.
func ComputeBreakdown(in Input) domain.PriceBreakdown {
	subtotal := Subtotal(in.Items)

	if in.Settings == nil {
		return domain.PriceBreakdown{
			Status:   domain.BreakdownStatusPending,
			Subtotal: subtotal,
		}
	}
	s := in.Settings

	discount := decimal.Zero
	var outcome *domain.CouponOutcome
	if in.Coupon != nil {
		outcome, discount = applyCoupon(in.Coupon, in.Items, subtotal, in.Now)
	}

	discounted := subtotal.Sub(discount)
	if discounted.IsNegative() {
		discounted = decimal.Zero
	}

	tax := decimal.Zero
	if s.TaxRatePercent.IsPositive() {
		tax = discounted.Mul(s.TaxRatePercent).Div(hundred).Round(2)
	}

	hasThreshold := s.FreeDeliveryThreshold.IsPositive()
	deliveryFee := nonNegative(s.DeliveryCharge).Round(2)
	if hasThreshold && subtotal.GreaterThanOrEqual(s.FreeDeliveryThreshold) {
		deliveryFee = decimal.Zero
	}

	progress := hundred
	remaining := decimal.Zero
	if hasThreshold {
		progress = decimal.Min(subtotal.Div(s.FreeDeliveryThreshold).Mul(hundred), hundred).Truncate(2)
		if subtotal.LessThan(s.FreeDeliveryThreshold) {
			remaining = s.FreeDeliveryThreshold.Sub(subtotal).Round(2)
		}
	}

	return domain.PriceBreakdown{
		Status:                      domain.BreakdownStatusReady,
		CurrencySymbol:              s.CurrencySymbol,
		Subtotal:                    subtotal,
		DiscountAmount:              discount,
		TaxAmount:                   tax,
		DeliveryFee:                 deliveryFee,
		GrandTotal:                  discounted.Add(tax).Add(deliveryFee),
		FreeShippingProgressPercent: progress,
		AmountToFreeDelivery:        remaining,
		IsMinimumOrderMet:           subtotal.GreaterThanOrEqual(s.MinOrderAmount),
		Coupon:                      outcome,
	}
}

// Subtotal sums unit price times quantity, rounded to 2 places.
// Negative prices and non-positive quantities count as 0.
func Subtotal(items []domain.CartLineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal())
	}
	return total.Round(2)
}

func applyCoupon(applied *AppliedCoupon, items []domain.CartLineItem, subtotal decimal.Decimal, now time.Time) (*domain.CouponOutcome, decimal.Decimal) {
	code := applied.Code
	if applied.Coupon != nil {
		code = applied.Coupon.Code
	}

	res := coupon.Validate(applied.Coupon, subtotal, now, productIDs(items), applied.AssignedProductIDs)
	outcome := &domain.CouponOutcome{
		Code:    code,
		Valid:   res.Valid,
		Reason:  res.Reason,
		Message: res.Reason.Message(),
	}
	if !res.Valid {
		return outcome, decimal.Zero
	}
	return outcome, coupon.Discount(applied.Coupon, subtotal)
}

func productIDs(items []domain.CartLineItem) []string {
	return domain.CartState{Items: items}.ProductIDs()
}

func nonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
