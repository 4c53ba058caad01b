package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/pkg/errors"
)

const couponColumns = `id, code, discount_type, discount_value, min_order_amount, max_discount_amount,
		valid_from, valid_until, is_active, usage_limit, used_count, created_at, updated_at`

type couponRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewCouponRepository creates a new coupon repository
func NewCouponRepository(db *sql.DB, logger *zap.Logger) *couponRepository {
	return &couponRepository{
		db:     db,
		logger: logger,
	}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCoupon(row rowScanner) (*domain.Coupon, error) {
	var c domain.Coupon
	var discountType string
	var maxDiscount decimal.NullDecimal
	var validFrom, validUntil sql.NullTime
	var usageLimit sql.NullInt64

	err := row.Scan(
		&c.ID,
		&c.Code,
		&discountType,
		&c.DiscountValue,
		&c.MinOrderAmount,
		&maxDiscount,
		&validFrom,
		&validUntil,
		&c.IsActive,
		&usageLimit,
		&c.UsedCount,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	c.DiscountType = domain.DiscountType(discountType)
	if maxDiscount.Valid {
		c.MaxDiscountAmount = &maxDiscount.Decimal
	}
	if validFrom.Valid {
		c.ValidFrom = validFrom.Time
	}
	if validUntil.Valid {
		c.ValidUntil = validUntil.Time
	}
	if usageLimit.Valid {
		limit := int(usageLimit.Int64)
		c.UsageLimit = &limit
	}
	return &c, nil
}

func (r *couponRepository) FindByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	query := `
		SELECT ` + couponColumns + `
		FROM coupons
		WHERE upper(code) = upper($1)
	`

	c, err := scanCoupon(r.db.QueryRowContext(ctx, query, strings.TrimSpace(code)))
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "coupon", ID: code}
	}
	if err != nil {
		r.logger.Error("Failed to get coupon by code", zap.Error(err))
		return nil, err
	}
	return c, nil
}

func (r *couponRepository) ListForProduct(ctx context.Context, productID string) ([]*domain.Coupon, error) {
	query := `
		SELECT ` + prefixed("c", couponColumns) + `
		FROM coupons c
		JOIN product_coupons pc ON pc.coupon_id = c.id
		WHERE pc.product_id = $1 AND c.is_active = true
		ORDER BY c.code
	`

	rows, err := r.db.QueryContext(ctx, query, productID)
	if err != nil {
		r.logger.Error("Failed to query coupons for product", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var coupons []*domain.Coupon
	for rows.Next() {
		c, err := scanCoupon(rows)
		if err != nil {
			r.logger.Warn("Skipping unreadable coupon row", zap.Error(err))
			continue
		}
		coupons = append(coupons, c)
	}
	return coupons, rows.Err()
}

func (r *couponRepository) AssignedProductIDs(ctx context.Context, couponID uuid.UUID) ([]string, error) {
	query := `
		SELECT product_id
		FROM product_coupons
		WHERE coupon_id = $1
		ORDER BY product_id
	`

	rows, err := r.db.QueryContext(ctx, query, couponID)
	if err != nil {
		r.logger.Error("Failed to query coupon assignments", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *couponRepository) Create(ctx context.Context, coupon *domain.Coupon) error {
	query := `
		INSERT INTO coupons (` + couponColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	now := time.Now()
	if coupon.ID == uuid.Nil {
		coupon.ID = uuid.New()
	}
	if coupon.CreatedAt.IsZero() {
		coupon.CreatedAt = now
	}
	if coupon.UpdatedAt.IsZero() {
		coupon.UpdatedAt = now
	}

	var maxDiscount decimal.NullDecimal
	if coupon.MaxDiscountAmount != nil {
		maxDiscount = decimal.NewNullDecimal(*coupon.MaxDiscountAmount)
	}
	var usageLimit sql.NullInt64
	if coupon.UsageLimit != nil {
		usageLimit = sql.NullInt64{Int64: int64(*coupon.UsageLimit), Valid: true}
	}

	_, err := r.db.ExecContext(ctx, query,
		coupon.ID,
		coupon.Code,
		string(coupon.DiscountType),
		coupon.DiscountValue,
		coupon.MinOrderAmount,
		maxDiscount,
		nullTime(coupon.ValidFrom),
		nullTime(coupon.ValidUntil),
		coupon.IsActive,
		usageLimit,
		coupon.UsedCount,
		coupon.CreatedAt,
		coupon.UpdatedAt,
	)

	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
		return &errors.ErrValidation{Field: "code", Message: fmt.Sprintf("coupon %s already exists", coupon.Code)}
	}
	if err != nil {
		r.logger.Error("Failed to create coupon", zap.Error(err))
		return err
	}

	return nil
}

func (r *couponRepository) AssignProducts(ctx context.Context, couponID uuid.UUID, productIDs []string) error {
	query := `
		INSERT INTO product_coupons (coupon_id, product_id)
		SELECT $1::uuid, unnest($2::text[])
		ON CONFLICT DO NOTHING
	`

	var exists int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM coupons WHERE id = $1`, couponID).Scan(&exists)
	if err == sql.ErrNoRows {
		return &errors.ErrNotFound{Resource: "coupon", ID: couponID.String()}
	}
	if err != nil {
		r.logger.Error("Failed to look up coupon", zap.Error(err))
		return err
	}

	if _, err := r.db.ExecContext(ctx, query, couponID, pq.Array(productIDs)); err != nil {
		r.logger.Error("Failed to assign coupon to products", zap.Error(err))
		return err
	}

	return nil
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}

func prefixed(alias, columns string) string {
	parts := strings.Split(columns, ",")
	for i, p := range parts {
		parts[i] = alias + "." + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}
