package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jafarshop/storefront/internal/domain"
)

func setupTestRedis(t *testing.T) (*CartRepository, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewCartRepository(client, time.Hour), mr
}

func TestCartRepository_SaveAndLoad(t *testing.T) {
	repo, mr := setupTestRedis(t)
	ctx := context.Background()

	item := domain.CartLineItem{
		ProductID:  "p1",
		VariantKey: "M",
		Name:       "Linen Shirt",
		Image:      "/img/p1.jpg",
		UnitPrice:  decimal.RequireFromString("199.99"),
		Quantity:   2,
	}
	state := domain.CartState{
		Items:                 []domain.CartLineItem{item},
		IsCartPanelOpen:       true,
		LastAddedNotification: &domain.Notification{Seq: 3, Item: item, IsOpen: true},
		CouponCode:            "SAVE10",
	}
	require.NoError(t, repo.Save(ctx, "sess", state))

	assert.True(t, mr.Exists("cart:sess"))
	assert.Equal(t, time.Hour, mr.TTL("cart:sess"))

	loaded, err := repo.Load(ctx, "sess")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	require.Len(t, loaded.Items, 1)
	assert.True(t, loaded.Items[0].UnitPrice.Equal(item.UnitPrice))
	assert.Equal(t, 2, loaded.Items[0].Quantity)
	assert.True(t, loaded.IsCartPanelOpen)
	assert.Equal(t, "SAVE10", loaded.CouponCode)
	require.NotNil(t, loaded.LastAddedNotification)
	assert.Equal(t, uint64(3), loaded.LastAddedNotification.Seq)
}

func TestCartRepository_LoadMiss(t *testing.T) {
	repo, _ := setupTestRedis(t)

	loaded, err := repo.Load(context.Background(), "nobody")
	assert.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestCartRepository_LoadCoercesLegacyItems(t *testing.T) {
	repo, mr := setupTestRedis(t)
	require.NoError(t, mr.Set("cart:sess", `{
		"items": [
			{"product_id": "p1", "variant_key": "M", "unit_price": "49.50", "quantity": "3"},
			{"product_id": "p2", "quantity": 1},
			{"product_id": "p3", "unit_price": "n/a", "quantity": 2.7},
			{"product_id": "p4", "unit_price": 10, "quantity": "lots"}
		]
	}`))

	loaded, err := repo.Load(context.Background(), "sess")
	require.NoError(t, err)
	require.Len(t, loaded.Items, 4)

	assert.True(t, loaded.Items[0].UnitPrice.Equal(decimal.RequireFromString("49.50")))
	assert.Equal(t, 3, loaded.Items[0].Quantity)
	assert.True(t, loaded.Items[1].UnitPrice.IsZero())
	assert.True(t, loaded.Items[2].UnitPrice.IsZero())
	assert.Equal(t, 2, loaded.Items[2].Quantity)
	assert.Equal(t, 0, loaded.Items[3].Quantity)
}

func TestCartRepository_LoadInvalidJSON(t *testing.T) {
	repo, mr := setupTestRedis(t)
	require.NoError(t, mr.Set("cart:sess", "{not json"))

	_, err := repo.Load(context.Background(), "sess")
	assert.Error(t, err)
}

func TestCartRepository_ServerDown(t *testing.T) {
	repo, mr := setupTestRedis(t)
	mr.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	assert.Error(t, repo.Save(ctx, "sess", domain.CartState{}))
	_, err := repo.Load(ctx, "sess")
	assert.Error(t, err)
}
