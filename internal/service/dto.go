package service

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jafarshop/storefront/internal/domain"
)

// AddItemRequest represents the add-to-cart payload
type AddItemRequest struct {
	Product    domain.ProductSnapshot `json:"product"`
	VariantKey string                 `json:"variant_key"`
	Quantity   int                    `json:"quantity" binding:"max=999"`
}

// UpdateQuantityRequest sets a line's quantity. Zero or less removes the line.
type UpdateQuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required,max=999"`
}

type ApplyCouponRequest struct {
	Code string `json:"code" binding:"required"`
}

// CartResponse is the cart state together with its price breakdown
type CartResponse struct {
	SessionID string                `json:"session_id"`
	Cart      domain.CartState      `json:"cart"`
	ItemCount int                   `json:"item_count"`
	Breakdown domain.PriceBreakdown `json:"breakdown"`
}

// CouponOffer is a coupon that can be shown to the shopper for the current cart
type CouponOffer struct {
	Code              string                 `json:"code"`
	DiscountType      domain.DiscountType    `json:"discount_type"`
	DiscountValue     decimal.Decimal        `json:"discount_value"`
	MinOrderAmount    decimal.Decimal        `json:"min_order_amount"`
	MaxDiscountAmount *decimal.Decimal       `json:"max_discount_amount,omitempty"`
	ValidUntil        *time.Time             `json:"valid_until,omitempty"`
	Applicable        bool                   `json:"applicable"`
	Reason            domain.CouponRejection `json:"reason,omitempty"`
	EstimatedDiscount decimal.Decimal        `json:"estimated_discount"`
}

// UpdateSettingsRequest replaces the store settings
type UpdateSettingsRequest struct {
	CurrencySymbol        string          `json:"currency_symbol" binding:"required"`
	TaxRatePercent        decimal.Decimal `json:"tax_rate_percent"`
	DeliveryCharge        decimal.Decimal `json:"delivery_charge"`
	FreeDeliveryThreshold decimal.Decimal `json:"free_delivery_threshold"`
	MinOrderAmount        decimal.Decimal `json:"min_order_amount"`
}

// CreateCouponRequest represents the coupon creation payload
type CreateCouponRequest struct {
	Code              string           `json:"code" binding:"required"`
	DiscountType      string           `json:"discount_type" binding:"required,oneof=percentage fixed"`
	DiscountValue     decimal.Decimal  `json:"discount_value"`
	MinOrderAmount    decimal.Decimal  `json:"min_order_amount"`
	MaxDiscountAmount *decimal.Decimal `json:"max_discount_amount,omitempty"`
	ValidFrom         *time.Time       `json:"valid_from,omitempty"`
	ValidUntil        *time.Time       `json:"valid_until,omitempty"`
	IsActive          *bool            `json:"is_active,omitempty"`
	UsageLimit        *int             `json:"usage_limit,omitempty" binding:"omitempty,min=0"`
	ProductIDs        []string         `json:"product_ids,omitempty"`
}

type AssignProductsRequest struct {
	ProductIDs []string `json:"product_ids" binding:"required,min=1,dive,required"`
}
