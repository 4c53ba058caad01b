package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/config"
	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/pkg/errors"
)

func setupTestDB(t *testing.T) *sql.DB {
	if testing.Short() {
		t.Skip("postgres container tests are skipped in -short mode")
	}
	ctx := context.Background()

	// Start PostgreSQL container
	pgContainer, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("storefront"),
		tcpostgres.WithUsername("testuser"),
		tcpostgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	host, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	port, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	db, err := NewConnection(config.DatabaseConfig{
		Host:     host,
		Port:     port.Port(),
		User:     "testuser",
		Password: "testpass",
		DBName:   "storefront",
		SSLMode:  "disable",
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, Migrate(db, zap.NewNop()))
	// a second run is a no-op
	require.NoError(t, Migrate(db, zap.NewNop()))
	return db
}

func newCoupon(code string) *domain.Coupon {
	return &domain.Coupon{
		Code:           code,
		DiscountType:   domain.DiscountTypePercentage,
		DiscountValue:  decimal.NewFromInt(10),
		MinOrderAmount: decimal.Zero,
		IsActive:       true,
	}
}

func TestSettingsRepository_SeededRowAndUpdate(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSettingsRepository(db, zap.NewNop())
	ctx := context.Background()

	s, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Rs.", s.CurrencySymbol)
	assert.True(t, s.TaxRatePercent.IsZero())

	err = repo.Update(ctx, &domain.StoreSettings{
		CurrencySymbol:        "$",
		TaxRatePercent:        decimal.RequireFromString("8.25"),
		DeliveryCharge:        decimal.RequireFromString("4.99"),
		FreeDeliveryThreshold: decimal.NewFromInt(75),
		MinOrderAmount:        decimal.NewFromInt(10),
	})
	require.NoError(t, err)

	s, err = repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, "$", s.CurrencySymbol)
	assert.True(t, s.TaxRatePercent.Equal(decimal.RequireFromString("8.25")))
	assert.True(t, s.DeliveryCharge.Equal(decimal.RequireFromString("4.99")))
	assert.True(t, s.FreeDeliveryThreshold.Equal(decimal.NewFromInt(75)))
	assert.True(t, s.MinOrderAmount.Equal(decimal.NewFromInt(10)))
	assert.WithinDuration(t, time.Now(), s.UpdatedAt, time.Minute)
}

func TestCouponRepository_CreateAndFindIgnoresCase(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCouponRepository(db, zap.NewNop())
	ctx := context.Background()

	until := time.Now().Add(48 * time.Hour).Truncate(time.Microsecond)
	maxDiscount := decimal.NewFromInt(150)
	limit := 100
	c := newCoupon("SAVE10")
	c.MaxDiscountAmount = &maxDiscount
	c.ValidUntil = until
	c.UsageLimit = &limit
	require.NoError(t, repo.Create(ctx, c))
	require.NotEqual(t, uuid.Nil, c.ID)

	found, err := repo.FindByCode(ctx, "  save10 ")
	require.NoError(t, err)
	assert.Equal(t, c.ID, found.ID)
	assert.Equal(t, "SAVE10", found.Code)
	assert.Equal(t, domain.DiscountTypePercentage, found.DiscountType)
	assert.True(t, found.DiscountValue.Equal(decimal.NewFromInt(10)))
	require.NotNil(t, found.MaxDiscountAmount)
	assert.True(t, found.MaxDiscountAmount.Equal(maxDiscount))
	assert.True(t, found.ValidFrom.IsZero())
	assert.True(t, found.ValidUntil.Equal(until))
	require.NotNil(t, found.UsageLimit)
	assert.Equal(t, 100, *found.UsageLimit)

	_, err = repo.FindByCode(ctx, "NOPE")
	_, ok := err.(*errors.ErrNotFound)
	assert.True(t, ok, "expected not found, got %v", err)
}

func TestCouponRepository_CreateDuplicateCode(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCouponRepository(db, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newCoupon("WELCOME")))

	err := repo.Create(ctx, newCoupon("welcome"))
	verr, ok := err.(*errors.ErrValidation)
	require.True(t, ok, "expected validation error, got %v", err)
	assert.Equal(t, "code", verr.Field)
}

func TestCouponRepository_AssignProductsRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCouponRepository(db, zap.NewNop())
	ctx := context.Background()

	shirts := newCoupon("SHIRTS")
	require.NoError(t, repo.Create(ctx, shirts))
	retired := newCoupon("RETIRED")
	retired.IsActive = false
	require.NoError(t, repo.Create(ctx, retired))
	open := newCoupon("EVERYTHING")
	require.NoError(t, repo.Create(ctx, open))

	require.NoError(t, repo.AssignProducts(ctx, shirts.ID, []string{"p1", "p2"}))
	// re-assigning is idempotent
	require.NoError(t, repo.AssignProducts(ctx, shirts.ID, []string{"p2", "p3"}))
	require.NoError(t, repo.AssignProducts(ctx, retired.ID, []string{"p2"}))

	ids, err := repo.AssignedProductIDs(ctx, shirts.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2", "p3"}, ids)

	ids, err = repo.AssignedProductIDs(ctx, open.ID)
	require.NoError(t, err)
	assert.Nil(t, ids, "unassigned coupons apply to every product")

	listed, err := repo.ListForProduct(ctx, "p2")
	require.NoError(t, err)
	require.Len(t, listed, 1, "inactive coupons are not offered")
	assert.Equal(t, "SHIRTS", listed[0].Code)

	listed, err = repo.ListForProduct(ctx, "p9")
	require.NoError(t, err)
	assert.Empty(t, listed)

	err = repo.AssignProducts(ctx, uuid.New(), []string{"p1"})
	_, ok := err.(*errors.ErrNotFound)
	assert.True(t, ok, "expected not found, got %v", err)
}

func TestNewRepositories_WiresWriters(t *testing.T) {
	db := setupTestDB(t)
	repos := NewRepositories(db, zap.NewNop())
	ctx := context.Background()

	c := newCoupon("WIRED")
	require.NoError(t, repos.CouponWriter.Create(ctx, c))
	found, err := repos.Coupons.FindByCode(ctx, "wired")
	require.NoError(t, err)
	assert.Equal(t, c.ID, found.ID)
}
