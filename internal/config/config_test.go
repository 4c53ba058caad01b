package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATA_SOURCE", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, DataSourcePostgres, cfg.DataSource)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 5*time.Second, cfg.Cart.NotificationDismiss)
	assert.Equal(t, 720*time.Hour, cfg.Cart.TTL)
	assert.Equal(t, time.Minute, cfg.Settings.RefreshInterval)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("NOTIFICATION_DISMISS_AFTER", "750ms")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.Equal(t, 750*time.Millisecond, cfg.Cart.NotificationDismiss)
}

func TestLoad_BackendRequiresURLAndKey(t *testing.T) {
	t.Setenv("DATA_SOURCE", DataSourceBackend)

	_, err := Load()
	require.ErrorContains(t, err, "BACKEND_URL")

	t.Setenv("BACKEND_URL", "https://example.supabase.co")
	_, err = Load()
	require.ErrorContains(t, err, "BACKEND_API_KEY")

	t.Setenv("BACKEND_API_KEY", "anon-key")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, cfg.Backend.Timeout)
}

func TestLoad_RejectsBadValues(t *testing.T) {
	t.Setenv("CART_TTL", "soon")
	_, err := Load()
	assert.ErrorContains(t, err, "CART_TTL")

	t.Setenv("CART_TTL", "1h")
	t.Setenv("DATA_SOURCE", "mongo")
	_, err = Load()
	assert.ErrorContains(t, err, "DATA_SOURCE")
}
