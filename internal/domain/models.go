package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MaxLineQuantity caps the quantity of a single line item
const MaxLineQuantity = 999

// LineKey identifies a line item within a cart
type LineKey struct {
	ProductID  string
	VariantKey string
}

// CartLineItem represents one product+variant entry in a cart.
// Price and display metadata are frozen at add time.
type CartLineItem struct {
	ProductID  string          `json:"product_id"`
	VariantKey string          `json:"variant_key"`
	Name       string          `json:"name"`
	Image      string          `json:"image"`
	Category   string          `json:"category"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Quantity   int             `json:"quantity"`
}

// Key returns the identity of the line item
func (i CartLineItem) Key() LineKey {
	return LineKey{ProductID: i.ProductID, VariantKey: i.VariantKey}
}

// LineTotal returns unit price times quantity
func (i CartLineItem) LineTotal() decimal.Decimal {
	if i.Quantity <= 0 || i.UnitPrice.IsNegative() {
		return decimal.Zero
	}
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Notification is the transient "added to cart" record
type Notification struct {
	Seq    uint64       `json:"seq"`
	Item   CartLineItem `json:"item"`
	IsOpen bool         `json:"is_open"`
}

// CartState is the full state of one shopper's cart
type CartState struct {
	Items                 []CartLineItem `json:"items"`
	IsCartPanelOpen       bool           `json:"is_cart_panel_open"`
	LastAddedNotification *Notification `json:"last_added_notification,omitempty"`
	CouponCode            string         `json:"coupon_code,omitempty"`
	UpdatedAt             time.Time      `json:"updated_at"`
}

// Clone returns a deep copy that shares no memory with s
func (s CartState) Clone() CartState {
	out := s
	out.Items = make([]CartLineItem, len(s.Items))
	copy(out.Items, s.Items)
	if s.LastAddedNotification != nil {
		n := *s.LastAddedNotification
		out.LastAddedNotification = &n
	}
	return out
}

// ProductIDs returns the distinct product ids in insertion order
func (s CartState) ProductIDs() []string {
	seen := make(map[string]struct{}, len(s.Items))
	ids := make([]string, 0, len(s.Items))
	for _, item := range s.Items {
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}
		ids = append(ids, item.ProductID)
	}
	return ids
}

// ProductSnapshot is the catalog record handed over when adding to cart
type ProductSnapshot struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Images    []string        `json:"images"`
	Category  string          `json:"category"`
	Price     decimal.Decimal `json:"price"`
	Sizes     []string        `json:"sizes"`
	CustomFit bool            `json:"custom_fit"`
}

// StoreSettings holds store-wide pricing policy
type StoreSettings struct {
	CurrencySymbol        string          `json:"currency_symbol"`
	TaxRatePercent        decimal.Decimal `json:"tax_rate_percent"`
	DeliveryCharge        decimal.Decimal `json:"delivery_charge"`
	FreeDeliveryThreshold decimal.Decimal `json:"free_delivery_threshold"`
	MinOrderAmount        decimal.Decimal `json:"min_order_amount"`
	UpdatedAt             time.Time       `json:"updated_at"`
}

// Coupon represents a promotional code
type Coupon struct {
	ID                uuid.UUID
	Code              string
	DiscountType      DiscountType
	DiscountValue     decimal.Decimal
	MinOrderAmount    decimal.Decimal
	MaxDiscountAmount *decimal.Decimal
	ValidFrom         time.Time
	ValidUntil        time.Time
	IsActive          bool
	UsageLimit        *int
	UsedCount         int
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// CouponOutcome reports what happened to the applied coupon during pricing
type CouponOutcome struct {
	Code    string          `json:"code"`
	Valid   bool            `json:"valid"`
	Reason  CouponRejection `json:"reason,omitempty"`
	Message string          `json:"message,omitempty"`
}

// PriceBreakdown is derived from a cart snapshot and never persisted
type PriceBreakdown struct {
	Status                      BreakdownStatus `json:"status"`
	CurrencySymbol              string          `json:"currency_symbol"`
	Subtotal                    decimal.Decimal `json:"subtotal"`
	DiscountAmount              decimal.Decimal `json:"discount_amount"`
	TaxAmount                   decimal.Decimal `json:"tax_amount"`
	DeliveryFee                 decimal.Decimal `json:"delivery_fee"`
	GrandTotal                  decimal.Decimal `json:"grand_total"`
	FreeShippingProgressPercent decimal.Decimal `json:"free_shipping_progress_percent"`
	AmountToFreeDelivery        decimal.Decimal `json:"amount_to_free_delivery"`
	IsMinimumOrderMet           bool            `json:"is_minimum_order_met"`
	Coupon                      *CouponOutcome  `json:"coupon,omitempty"`
}

// IsReady reports whether the breakdown carries a final grand total
func (b PriceBreakdown) IsReady() bool {
	return b.Status == BreakdownStatusReady
}

// CheckoutSnapshot is handed to the checkout flow and never mutated afterwards
type CheckoutSnapshot struct {
	ID         uuid.UUID      `json:"id"`
	SessionID  string         `json:"session_id"`
	Items      []CartLineItem `json:"items"`
	Breakdown  PriceBreakdown `json:"breakdown"`
	CouponCode string         `json:"coupon_code,omitempty"`
	CapturedAt time.Time      `json:"captured_at"`
}
