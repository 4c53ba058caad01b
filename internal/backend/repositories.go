package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/internal/repository"
	"github.com/jafarshop/storefront/pkg/errors"
)

const source = "managed backend"

type settingsRow struct {
	CurrencySymbol        string          `json:"currency_symbol"`
	TaxRatePercent        decimal.Decimal `json:"tax_rate_percent"`
	DeliveryCharge        decimal.Decimal `json:"delivery_charge"`
	FreeDeliveryThreshold decimal.Decimal `json:"free_delivery_threshold"`
	MinOrderAmount        decimal.Decimal `json:"min_order_amount"`
	UpdatedAt             *time.Time      `json:"updated_at"`
}

type couponRow struct {
	ID                uuid.UUID           `json:"id"`
	Code              string              `json:"code"`
	DiscountType      string              `json:"discount_type"`
	DiscountValue     decimal.Decimal     `json:"discount_value"`
	MinOrderAmount    decimal.NullDecimal `json:"min_order_amount"`
	MaxDiscountAmount decimal.NullDecimal `json:"max_discount_amount"`
	ValidFrom         *time.Time          `json:"valid_from"`
	ValidUntil        *time.Time          `json:"valid_until"`
	IsActive          bool                `json:"is_active"`
	UsageLimit        *int                `json:"usage_limit"`
	UsedCount         *int                `json:"used_count"`
	CreatedAt         *time.Time          `json:"created_at"`
	UpdatedAt         *time.Time          `json:"updated_at"`
}

func (r couponRow) toDomain() *domain.Coupon {
	c := &domain.Coupon{
		ID:             r.ID,
		Code:           r.Code,
		DiscountType:   domain.DiscountType(strings.ToLower(r.DiscountType)),
		DiscountValue:  r.DiscountValue,
		MinOrderAmount: r.MinOrderAmount.Decimal,
		IsActive:       r.IsActive,
		UsageLimit:     r.UsageLimit,
	}
	if r.MaxDiscountAmount.Valid {
		c.MaxDiscountAmount = &r.MaxDiscountAmount.Decimal
	}
	if r.ValidFrom != nil {
		c.ValidFrom = *r.ValidFrom
	}
	if r.ValidUntil != nil {
		c.ValidUntil = *r.ValidUntil
	}
	if r.UsedCount != nil {
		c.UsedCount = *r.UsedCount
	}
	if r.CreatedAt != nil {
		c.CreatedAt = *r.CreatedAt
	}
	if r.UpdatedAt != nil {
		c.UpdatedAt = *r.UpdatedAt
	}
	return c
}

type settingsRepository struct {
	client *Client
	logger *zap.Logger
}

// NewSettingsRepository creates a settings repository backed by the store_settings table
func NewSettingsRepository(client *Client, logger *zap.Logger) *settingsRepository {
	return &settingsRepository{client: client, logger: logger}
}

func (r *settingsRepository) Get(ctx context.Context) (*domain.StoreSettings, error) {
	body, err := r.client.Select(ctx, "store_settings", url.Values{
		"select": {"*"},
		"limit":  {"1"},
	})
	if err != nil {
		r.logger.Error("Failed to fetch store settings", zap.Error(err))
		return nil, err
	}

	var rows []settingsRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse store settings: %w", err)
	}
	if len(rows) == 0 {
		return nil, &errors.ErrNotFound{Resource: "store settings", ID: "1"}
	}

	row := rows[0]
	s := &domain.StoreSettings{
		CurrencySymbol:        row.CurrencySymbol,
		TaxRatePercent:        row.TaxRatePercent,
		DeliveryCharge:        row.DeliveryCharge,
		FreeDeliveryThreshold: row.FreeDeliveryThreshold,
		MinOrderAmount:        row.MinOrderAmount,
	}
	if row.UpdatedAt != nil {
		s.UpdatedAt = *row.UpdatedAt
	}
	return s, nil
}

func (r *settingsRepository) Update(context.Context, *domain.StoreSettings) error {
	return &errors.ErrReadOnly{Source: source}
}

type couponRepository struct {
	client *Client
	logger *zap.Logger
}

// NewCouponRepository creates a coupon repository backed by the coupons and
// product_coupons tables
func NewCouponRepository(client *Client, logger *zap.Logger) *couponRepository {
	return &couponRepository{client: client, logger: logger}
}

func (r *couponRepository) FindByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	code = strings.TrimSpace(code)
	// ilike without wildcards is a case-insensitive equality match
	body, err := r.client.Select(ctx, "coupons", url.Values{
		"select": {"*"},
		"code":   {"ilike." + escapeLike(code)},
		"limit":  {"1"},
	})
	if err != nil {
		r.logger.Error("Failed to fetch coupon by code", zap.Error(err))
		return nil, err
	}

	coupons, err := decodeCoupons(body)
	if err != nil {
		return nil, err
	}
	if len(coupons) == 0 {
		return nil, &errors.ErrNotFound{Resource: "coupon", ID: code}
	}
	return coupons[0], nil
}

func (r *couponRepository) ListForProduct(ctx context.Context, productID string) ([]*domain.Coupon, error) {
	body, err := r.client.Select(ctx, "product_coupons", url.Values{
		"select":     {"coupon_id"},
		"product_id": {"eq." + productID},
	})
	if err != nil {
		r.logger.Error("Failed to fetch coupon assignments for product", zap.Error(err))
		return nil, err
	}

	var links []struct {
		CouponID uuid.UUID `json:"coupon_id"`
	}
	if err := json.Unmarshal(body, &links); err != nil {
		return nil, fmt.Errorf("failed to parse coupon assignments: %w", err)
	}
	if len(links) == 0 {
		return nil, nil
	}

	ids := make([]string, len(links))
	for i, l := range links {
		ids[i] = l.CouponID.String()
	}
	body, err = r.client.Select(ctx, "coupons", url.Values{
		"select":    {"*"},
		"id":        {"in.(" + strings.Join(ids, ",") + ")"},
		"is_active": {"eq.true"},
		"order":     {"code"},
	})
	if err != nil {
		r.logger.Error("Failed to fetch coupons for product", zap.Error(err))
		return nil, err
	}
	return decodeCoupons(body)
}

func (r *couponRepository) AssignedProductIDs(ctx context.Context, couponID uuid.UUID) ([]string, error) {
	body, err := r.client.Select(ctx, "product_coupons", url.Values{
		"select":    {"product_id"},
		"coupon_id": {"eq." + couponID.String()},
		"order":     {"product_id"},
	})
	if err != nil {
		r.logger.Error("Failed to fetch coupon assignments", zap.Error(err))
		return nil, err
	}

	var links []struct {
		ProductID string `json:"product_id"`
	}
	if err := json.Unmarshal(body, &links); err != nil {
		return nil, fmt.Errorf("failed to parse coupon assignments: %w", err)
	}

	var ids []string
	for _, l := range links {
		ids = append(ids, l.ProductID)
	}
	return ids, nil
}

func (r *couponRepository) Create(context.Context, *domain.Coupon) error {
	return &errors.ErrReadOnly{Source: source}
}

func (r *couponRepository) AssignProducts(context.Context, uuid.UUID, []string) error {
	return &errors.ErrReadOnly{Source: source}
}

// NewRepositories wires the backend-backed repositories. Writes are refused.
func NewRepositories(client *Client, logger *zap.Logger) *repository.Repositories {
	settings := NewSettingsRepository(client, logger)
	coupons := NewCouponRepository(client, logger)
	return &repository.Repositories{
		Settings:       settings,
		Coupons:        coupons,
		SettingsWriter: settings,
		CouponWriter:   coupons,
	}
}

func decodeCoupons(body []byte) ([]*domain.Coupon, error) {
	var rows []couponRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse coupons: %w", err)
	}
	coupons := make([]*domain.Coupon, 0, len(rows))
	for _, row := range rows {
		coupons = append(coupons, row.toDomain())
	}
	return coupons, nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`, `*`, `\*`)
	return r.Replace(s)
}
