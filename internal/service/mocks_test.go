package service

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/internal/repository"
	"github.com/jafarshop/storefront/pkg/errors"
)

// memCoupons is an in-memory coupon store for the happy paths
type memCoupons struct {
	mu       sync.Mutex
	coupons  map[string]*domain.Coupon
	assigned map[uuid.UUID][]string
}

func newMemCoupons(coupons ...*domain.Coupon) *memCoupons {
	m := &memCoupons{
		coupons:  make(map[string]*domain.Coupon),
		assigned: make(map[uuid.UUID][]string),
	}
	for _, c := range coupons {
		m.coupons[strings.ToUpper(c.Code)] = c
	}
	return m
}

func (m *memCoupons) assign(c *domain.Coupon, productIDs ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assigned[c.ID] = append(m.assigned[c.ID], productIDs...)
}

func (m *memCoupons) FindByCode(_ context.Context, code string) (*domain.Coupon, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.coupons[strings.ToUpper(code)]
	if !ok {
		return nil, &errors.ErrNotFound{Resource: "coupon", ID: code}
	}
	return c, nil
}

func (m *memCoupons) ListForProduct(_ context.Context, productID string) ([]*domain.Coupon, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.Coupon
	for _, c := range m.coupons {
		for _, id := range m.assigned[c.ID] {
			if id == productID && c.IsActive {
				out = append(out, c)
			}
		}
	}
	return out, nil
}

func (m *memCoupons) AssignedProductIDs(_ context.Context, couponID uuid.UUID) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.assigned[couponID], nil
}

func (m *memCoupons) Create(_ context.Context, c *domain.Coupon) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.coupons[c.Code]; ok {
		return &errors.ErrValidation{Field: "code", Message: "already exists"}
	}
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	m.coupons[c.Code] = c
	return nil
}

func (m *memCoupons) AssignProducts(_ context.Context, couponID uuid.UUID, productIDs []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assigned[couponID] = append(m.assigned[couponID], productIDs...)
	return nil
}

type mockCouponRepository struct {
	mock.Mock
}

func (m *mockCouponRepository) FindByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	args := m.Called(ctx, code)
	c, _ := args.Get(0).(*domain.Coupon)
	return c, args.Error(1)
}

func (m *mockCouponRepository) ListForProduct(ctx context.Context, productID string) ([]*domain.Coupon, error) {
	args := m.Called(ctx, productID)
	coupons, _ := args.Get(0).([]*domain.Coupon)
	return coupons, args.Error(1)
}

func (m *mockCouponRepository) AssignedProductIDs(ctx context.Context, couponID uuid.UUID) ([]string, error) {
	args := m.Called(ctx, couponID)
	ids, _ := args.Get(0).([]string)
	return ids, args.Error(1)
}

func (m *mockCouponRepository) Create(ctx context.Context, c *domain.Coupon) error {
	return m.Called(ctx, c).Error(0)
}

func (m *mockCouponRepository) AssignProducts(ctx context.Context, couponID uuid.UUID, productIDs []string) error {
	return m.Called(ctx, couponID, productIDs).Error(0)
}

type mockSettingsWriter struct {
	mock.Mock
}

func (m *mockSettingsWriter) Update(ctx context.Context, s *domain.StoreSettings) error {
	return m.Called(ctx, s).Error(0)
}

type stubSettings struct {
	mu sync.Mutex
	s  *domain.StoreSettings
}

func (s *stubSettings) Settings() *domain.StoreSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.s
}

func (s *stubSettings) Set(v domain.StoreSettings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.s = &v
}

func newRepos(coupons interface {
	repository.CouponRepository
	repository.CouponWriter
}) *repository.Repositories {
	return &repository.Repositories{
		Coupons:        coupons,
		CouponWriter:   coupons,
		SettingsWriter: &mockSettingsWriter{},
	}
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func percentCoupon(code string, pct string) *domain.Coupon {
	return &domain.Coupon{
		ID:            uuid.New(),
		Code:          code,
		DiscountType:  domain.DiscountTypePercentage,
		DiscountValue: d(pct),
		IsActive:      true,
	}
}

func storeSettings() *domain.StoreSettings {
	return &domain.StoreSettings{
		CurrencySymbol:        "Rs.",
		TaxRatePercent:        d("10"),
		DeliveryCharge:        d("50"),
		FreeDeliveryThreshold: d("500"),
		MinOrderAmount:        d("0"),
	}
}

func product(id, price string) domain.ProductSnapshot {
	return domain.ProductSnapshot{ID: id, Name: "Item " + id, Price: d(price)}
}
