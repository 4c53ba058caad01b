package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/jafarshop/storefront/internal/domain"
)

// CartRepository stores cart state as JSON under cart:<session>
type CartRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCartRepository creates a new redis-backed cart repository. Each save
// refreshes the key's TTL, so abandoned carts expire on their own.
func NewCartRepository(client *redis.Client, ttl time.Duration) *CartRepository {
	return &CartRepository{
		client: client,
		ttl:    ttl,
	}
}

func (r *CartRepository) Save(ctx context.Context, sessionID string, state domain.CartState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal cart failed: %w", err)
	}
	if err := r.client.Set(ctx, cartKey(sessionID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// Load returns nil, nil when no cart is stored for the session. Line items
// written by older clients may carry prices and quantities as strings or
// omit them; those are coerced instead of failing the whole cart.
func (r *CartRepository) Load(ctx context.Context, sessionID string) (*domain.CartState, error) {
	data, err := r.client.Get(ctx, cartKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var stored storedCart
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("unmarshal cart failed: %w", err)
	}
	return stored.toDomain(), nil
}

func cartKey(sessionID string) string {
	return fmt.Sprintf("cart:%s", sessionID)
}

type storedItem struct {
	ProductID  string          `json:"product_id"`
	VariantKey string          `json:"variant_key"`
	Name       string          `json:"name"`
	Image      string          `json:"image"`
	Category   string          `json:"category"`
	UnitPrice  json.RawMessage `json:"unit_price"`
	Quantity   json.RawMessage `json:"quantity"`
}

type storedNotification struct {
	Seq    uint64     `json:"seq"`
	Item   storedItem `json:"item"`
	IsOpen bool       `json:"is_open"`
}

type storedCart struct {
	Items                 []storedItem        `json:"items"`
	IsCartPanelOpen       bool                `json:"is_cart_panel_open"`
	LastAddedNotification *storedNotification `json:"last_added_notification"`
	CouponCode            string              `json:"coupon_code"`
	UpdatedAt             time.Time           `json:"updated_at"`
}

func (s storedCart) toDomain() *domain.CartState {
	state := &domain.CartState{
		Items:           make([]domain.CartLineItem, 0, len(s.Items)),
		IsCartPanelOpen: s.IsCartPanelOpen,
		CouponCode:      s.CouponCode,
		UpdatedAt:       s.UpdatedAt,
	}
	for _, item := range s.Items {
		state.Items = append(state.Items, item.toDomain())
	}
	if n := s.LastAddedNotification; n != nil {
		state.LastAddedNotification = &domain.Notification{
			Seq:    n.Seq,
			Item:   n.Item.toDomain(),
			IsOpen: n.IsOpen,
		}
	}
	return state
}

func (i storedItem) toDomain() domain.CartLineItem {
	return domain.CartLineItem{
		ProductID:  i.ProductID,
		VariantKey: i.VariantKey,
		Name:       i.Name,
		Image:      i.Image,
		Category:   i.Category,
		UnitPrice:  parseDecimal(i.UnitPrice),
		Quantity:   parseQuantity(i.Quantity),
	}
}

func parseDecimal(raw json.RawMessage) decimal.Decimal {
	s := unquote(raw)
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func parseQuantity(raw json.RawMessage) int {
	s := unquote(raw)
	if s == "" {
		return 0
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	// fractional quantities are truncated
	if d, err := decimal.NewFromString(s); err == nil {
		return int(d.IntPart())
	}
	return 0
}

func unquote(raw json.RawMessage) string {
	s := strings.TrimSpace(string(raw))
	if s == "null" {
		return ""
	}
	if unq, err := strconv.Unquote(s); err == nil {
		s = unq
	}
	return strings.TrimSpace(s)
}
