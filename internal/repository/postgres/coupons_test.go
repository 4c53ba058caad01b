package postgres

import (
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jafarshop/storefront/internal/domain"
)

// fakeRow hands scanned values out in column order
type fakeRow []interface{}

func (r fakeRow) Scan(dest ...interface{}) error {
	if len(dest) != len(r) {
		return fmt.Errorf("expected %d columns, got %d", len(r), len(dest))
	}
	for i, d := range dest {
		if s, ok := d.(sql.Scanner); ok {
			if err := s.Scan(r[i]); err != nil {
				return err
			}
			continue
		}
		switch p := d.(type) {
		case *string:
			*p = r[i].(string)
		case *bool:
			*p = r[i].(bool)
		case *int:
			*p = int(r[i].(int64))
		case *time.Time:
			*p = r[i].(time.Time)
		default:
			return fmt.Errorf("unsupported destination %T", d)
		}
	}
	return nil
}

func TestScanCoupon(t *testing.T) {
	id := uuid.New()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	c, err := scanCoupon(fakeRow{
		id.String(), "SAVE20", "percentage", "20", "100.00", "150",
		now, nil, true, int64(50), int64(3), now, now,
	})
	require.NoError(t, err)

	assert.Equal(t, id, c.ID)
	assert.Equal(t, domain.DiscountTypePercentage, c.DiscountType)
	assert.True(t, c.DiscountValue.Equal(decimal.NewFromInt(20)))
	require.NotNil(t, c.MaxDiscountAmount)
	assert.True(t, c.MaxDiscountAmount.Equal(decimal.NewFromInt(150)))
	assert.Equal(t, now, c.ValidFrom)
	assert.True(t, c.ValidUntil.IsZero())
	require.NotNil(t, c.UsageLimit)
	assert.Equal(t, 50, *c.UsageLimit)
	assert.Equal(t, 3, c.UsedCount)
}

func TestScanCoupon_NullableColumns(t *testing.T) {
	now := time.Now()

	c, err := scanCoupon(fakeRow{
		uuid.NewString(), "FLAT50", "fixed", "50", "0", nil,
		nil, nil, false, nil, int64(0), now, now,
	})
	require.NoError(t, err)

	assert.Nil(t, c.MaxDiscountAmount)
	assert.Nil(t, c.UsageLimit)
	assert.True(t, c.ValidFrom.IsZero())
	assert.False(t, c.IsActive)
}

func TestPrefixed(t *testing.T) {
	assert.Equal(t, "c.id, c.code, c.is_active", prefixed("c", "id, code,\n\t\tis_active"))
}

func TestNullTime(t *testing.T) {
	assert.False(t, nullTime(time.Time{}).Valid)
	assert.True(t, nullTime(time.Now()).Valid)
}
