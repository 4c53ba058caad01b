package domain

// DiscountType represents how a coupon reduces the subtotal
type DiscountType string

const (
	DiscountTypePercentage DiscountType = "percentage"
	DiscountTypeFixed      DiscountType = "fixed"
)

// IsValid checks if the discount type is valid
func (t DiscountType) IsValid() bool {
	switch t {
	case DiscountTypePercentage, DiscountTypeFixed:
		return true
	default:
		return false
	}
}

// CouponRejection is the reason a coupon could not be applied
type CouponRejection string

const (
	CouponRejectionNone          CouponRejection = ""
	CouponRejectionNotFound      CouponRejection = "not_found"
	CouponRejectionInactive      CouponRejection = "inactive"
	CouponRejectionNotYetValid   CouponRejection = "not_yet_valid"
	CouponRejectionExpired       CouponRejection = "expired"
	CouponRejectionBelowMinimum  CouponRejection = "below_minimum"
	CouponRejectionExhausted     CouponRejection = "usage_exhausted"
	CouponRejectionNotApplicable CouponRejection = "not_applicable_to_cart"
)

// Message returns shopper-facing feedback for the rejection
func (r CouponRejection) Message() string {
	switch r {
	case CouponRejectionNotFound:
		return "This coupon code does not exist."
	case CouponRejectionInactive:
		return "This coupon is no longer active."
	case CouponRejectionNotYetValid:
		return "This coupon is not valid yet."
	case CouponRejectionExpired:
		return "This coupon has expired."
	case CouponRejectionBelowMinimum:
		return "Your order does not meet the minimum amount for this coupon."
	case CouponRejectionExhausted:
		return "This coupon has reached its usage limit."
	case CouponRejectionNotApplicable:
		return "This coupon does not apply to the products in your cart."
	default:
		return ""
	}
}

// BreakdownStatus tells whether a price breakdown is final
type BreakdownStatus string

const (
	BreakdownStatusReady   BreakdownStatus = "ready"
	BreakdownStatusPending BreakdownStatus = "pending"
)

// Variant keys used when a product has no size selector
const (
	VariantStandard  = "Standard"
	VariantCustomFit = "Custom Fit"
)
