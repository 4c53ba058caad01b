// Package coupon decides whether a coupon applies to a cart and how much it takes off.
package coupon

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jafarshop/storefront/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// Result is the outcome of validating a coupon against a cart.
// An invalid coupon is an expected outcome, not an error.
type Result struct {
	Valid  bool
	Reason domain.CouponRejection
}

func reject(reason domain.CouponRejection) Result {
	return Result{Valid: false, Reason: reason}
}

// NormalizeCode canonicalizes a shopper-entered code for case-insensitive matching
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Validate runs every applicability check against the cart subtotal.
// assignedProductIDs lists the products the coupon is restricted to; empty means unrestricted.
func Validate(c *domain.Coupon, subtotal decimal.Decimal, now time.Time, cartProductIDs, assignedProductIDs []string) Result {
	if c == nil {
		return reject(domain.CouponRejectionNotFound)
	}
	if !c.IsActive {
		return reject(domain.CouponRejectionInactive)
	}
	if !c.ValidFrom.IsZero() && now.Before(c.ValidFrom) {
		return reject(domain.CouponRejectionNotYetValid)
	}
	if !c.ValidUntil.IsZero() && now.After(c.ValidUntil) {
		return reject(domain.CouponRejectionExpired)
	}
	if subtotal.LessThan(c.MinOrderAmount) {
		return reject(domain.CouponRejectionBelowMinimum)
	}
	if c.UsageLimit != nil && c.UsedCount >= *c.UsageLimit {
		return reject(domain.CouponRejectionExhausted)
	}
	if len(assignedProductIDs) > 0 && !intersects(cartProductIDs, assignedProductIDs) {
		return reject(domain.CouponRejectionNotApplicable)
	}
	return Result{Valid: true}
}

// Discount returns the amount a valid coupon takes off subtotal, rounded to 2 places.
// The result never exceeds subtotal.
func Discount(c *domain.Coupon, subtotal decimal.Decimal) decimal.Decimal {
	if c == nil || !subtotal.IsPositive() || !c.DiscountValue.IsPositive() {
		return decimal.Zero
	}

	var amount decimal.Decimal
	switch c.DiscountType {
	case domain.DiscountTypePercentage:
		amount = subtotal.Mul(c.DiscountValue).Div(hundred).Round(2)
		if c.MaxDiscountAmount != nil && !c.MaxDiscountAmount.IsNegative() && amount.GreaterThan(*c.MaxDiscountAmount) {
			amount = c.MaxDiscountAmount.Round(2)
		}
	case domain.DiscountTypeFixed:
		amount = c.DiscountValue.Round(2)
	default:
		return decimal.Zero
	}

	if amount.GreaterThan(subtotal) {
		amount = subtotal
	}
	return amount
}

func intersects(cart, assigned []string) bool {
	set := make(map[string]struct{}, len(assigned))
	for _, id := range assigned {
		set[id] = struct{}{}
	}
	for _, id := range cart {
		if _, ok := set[id]; ok {
			return true
		}
	}
	return false
}
