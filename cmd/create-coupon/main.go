package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/jafarshop/storefront/internal/config"
	"github.com/jafarshop/storefront/internal/repository/postgres"
	"github.com/jafarshop/storefront/internal/service"
	"github.com/jafarshop/storefront/internal/settings"
)

func main() {
	if len(os.Args) == 3 && os.Args[1] == "hash-admin-key" {
		hashAdminKey(os.Args[2])
		return
	}

	if len(os.Args) < 4 {
		fmt.Println("Usage: go run cmd/create-coupon/main.go <code> <percentage|fixed> <value> [product-id,...]")
		fmt.Println("Example: go run cmd/create-coupon/main.go SAVE10 percentage 10")
		fmt.Println("Example: go run cmd/create-coupon/main.go SHIRTS25 fixed 25 shirt-1,shirt-2")
		fmt.Println("")
		fmt.Println("To generate ADMIN_KEY_HASH: go run cmd/create-coupon/main.go hash-admin-key <key>")
		os.Exit(1)
	}

	value, err := decimal.NewFromString(os.Args[3])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid discount value %q: %v\n", os.Args[3], err)
		os.Exit(1)
	}

	req := service.CreateCouponRequest{
		Code:          os.Args[1],
		DiscountType:  strings.ToLower(os.Args[2]),
		DiscountValue: value,
	}
	if len(os.Args) > 4 {
		req.ProductIDs = strings.Split(os.Args[4], ",")
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	// Connect to database
	db, err := postgres.NewConnection(cfg.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := postgres.Migrate(db, logger); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to migrate database: %v\n", err)
		os.Exit(1)
	}

	// Create repositories
	repos := postgres.NewRepositories(db, logger)
	admin := service.NewAdminService(repos, settings.NewProvider(repos.Settings, logger), logger)

	coupon, err := admin.CreateCoupon(context.Background(), req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create coupon: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Coupon created successfully!\n\n")
	fmt.Printf("Coupon ID: %s\n", coupon.ID.String())
	fmt.Printf("Code: %s\n", coupon.Code)
	fmt.Printf("Discount: %s %s\n", coupon.DiscountValue.String(), coupon.DiscountType)
	if len(req.ProductIDs) > 0 {
		fmt.Printf("Restricted to products: %s\n", strings.Join(req.ProductIDs, ", "))
	} else {
		fmt.Printf("Applies to every product\n")
	}
}

func hashAdminKey(key string) {
	hash, err := bcrypt.GenerateFromPassword([]byte(key), 10)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to hash admin key: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("ADMIN_KEY_HASH=%s\n", string(hash))
	fmt.Printf("\nIMPORTANT: Save the admin key securely! Only the hash is stored.\n")
	fmt.Printf("\nUse the key in the Authorization header:\n")
	fmt.Printf("Authorization: Bearer %s\n", key)
}
