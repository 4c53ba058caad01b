package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/backend"
	"github.com/jafarshop/storefront/internal/cart"
	"github.com/jafarshop/storefront/internal/config"
	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/internal/repository"
	"github.com/jafarshop/storefront/internal/repository/postgres"
	redisrepo "github.com/jafarshop/storefront/internal/repository/redis"
	"github.com/jafarshop/storefront/internal/service"
	"github.com/jafarshop/storefront/internal/settings"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run cmd/price-cart/main.go <cart-session-id>")
		fmt.Println("Example: go run cmd/price-cart/main.go 3f1c2a4e-8d7b-4a51-9a8e-2b6f0c1d9e77")
		os.Exit(1)
	}

	sessionID := os.Args[1]

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var repos *repository.Repositories
	if cfg.DataSource == config.DataSourceBackend {
		repos = backend.NewRepositories(backend.NewClient(cfg.Backend, logger), logger)
	} else {
		db, err := postgres.NewConnection(cfg.Database)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
			os.Exit(1)
		}
		defer db.Close()
		repos = postgres.NewRepositories(db, logger)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	persisted, err := redisrepo.NewCartRepository(rdb, cfg.Cart.TTL).Load(ctx, sessionID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load cart: %v\n", err)
		os.Exit(1)
	}
	if persisted == nil {
		fmt.Printf("No cart stored for session %s\n", sessionID)
		os.Exit(1)
	}
	state := cart.Restore(persisted)

	provider := settings.NewProvider(repos.Settings, logger)
	if err := provider.Refresh(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load store settings: %v\n", err)
		os.Exit(1)
	}

	breakdown, err := service.NewPricingService(repos, provider, logger).Quote(ctx, state)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to price cart: %v\n", err)
		os.Exit(1)
	}

	printBreakdown(sessionID, state, breakdown)
}

func printBreakdown(sessionID string, state domain.CartState, b domain.PriceBreakdown) {
	money := func(d decimal.Decimal) string {
		return b.CurrencySymbol + " " + d.StringFixed(2)
	}

	fmt.Printf("Cart %s (last updated %s)\n\n", sessionID, state.UpdatedAt.Format(time.RFC3339))
	for _, item := range state.Items {
		fmt.Printf("  %-30s %-12s %3d x %12s = %12s\n",
			item.Name, item.VariantKey, item.Quantity, money(item.UnitPrice), money(item.LineTotal()))
	}
	if len(state.Items) == 0 {
		fmt.Printf("  (empty)\n")
	}

	fmt.Printf("\nSubtotal:       %s\n", money(b.Subtotal))
	if b.Coupon != nil {
		if b.Coupon.Valid {
			fmt.Printf("Coupon %s:  -%s\n", b.Coupon.Code, money(b.DiscountAmount))
		} else {
			fmt.Printf("Coupon %s:  not applied (%s)\n", b.Coupon.Code, b.Coupon.Reason)
		}
	}
	fmt.Printf("Tax:            %s\n", money(b.TaxAmount))
	fmt.Printf("Delivery:       %s\n", money(b.DeliveryFee))
	fmt.Printf("Grand total:    %s\n", money(b.GrandTotal))
	fmt.Printf("\nFree delivery progress: %s%%", b.FreeShippingProgressPercent.StringFixed(2))
	if b.AmountToFreeDelivery.IsPositive() {
		fmt.Printf(" (%s to go)", money(b.AmountToFreeDelivery))
	}
	fmt.Printf("\n")
	if !b.IsMinimumOrderMet {
		fmt.Printf("Minimum order amount not met; checkout is blocked.\n")
	}
}
