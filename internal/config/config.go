package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/viper"
)

// Data sources for settings and coupons
const (
	DataSourcePostgres = "postgres"
	DataSourceBackend  = "backend"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    string
	DataSource  string
	Database    DatabaseConfig
	Redis       RedisConfig
	Backend     BackendConfig
	Cart        CartConfig
	Settings    SettingsConfig
	Admin       AdminConfig
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// BackendConfig points at the managed backend's REST endpoint
type BackendConfig struct {
	URL     string
	APIKey  string
	Timeout time.Duration
}

type CartConfig struct {
	TTL                 time.Duration
	SessionIdleTTL      time.Duration
	WriteTimeout        time.Duration
	NotificationDismiss time.Duration
}

type SettingsConfig struct {
	RefreshInterval time.Duration
}

type AdminConfig struct {
	KeyHash string
}

func Load() (*Config, error) {
	viper.SetConfigType("env")
	viper.SetConfigName(".env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")

	// Set defaults
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("DATA_SOURCE", DataSourcePostgres)

	// Read from environment variables
	viper.AutomaticEnv()

	// Try to read .env file (optional)
	if err := viper.ReadInConfig(); err != nil {
		// It's okay if .env doesn't exist, we'll use env vars
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	redisDB, err := strconv.Atoi(getEnvOrViper("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("REDIS_DB must be an integer: %w", err)
	}

	cfg := &Config{
		Port:        getEnvOrViper("PORT", "8080"),
		Environment: getEnvOrViper("ENVIRONMENT", "development"),
		LogLevel:    getEnvOrViper("LOG_LEVEL", "info"),
		DataSource:  getEnvOrViper("DATA_SOURCE", DataSourcePostgres),
		Database: DatabaseConfig{
			Host:     getEnvOrViper("DB_HOST", "localhost"),
			Port:     getEnvOrViper("DB_PORT", "5432"),
			User:     getEnvOrViper("DB_USER", "postgres"),
			Password: getEnvOrViper("DB_PASSWORD", "postgres"),
			DBName:   getEnvOrViper("DB_NAME", "storefront"),
			SSLMode:  getEnvOrViper("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnvOrViper("REDIS_ADDR", "localhost:6379"),
			Password: getEnvOrViper("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Backend: BackendConfig{
			URL:    getEnvOrViper("BACKEND_URL", ""),
			APIKey: getEnvOrViper("BACKEND_API_KEY", ""),
		},
		Admin: AdminConfig{
			KeyHash: getEnvOrViper("ADMIN_KEY_HASH", ""),
		},
	}
	for _, d := range []struct {
		key string
		def string
		dst *time.Duration
	}{
		{"BACKEND_TIMEOUT", "10s", &cfg.Backend.Timeout},
		{"CART_TTL", "720h", &cfg.Cart.TTL},
		{"SESSION_IDLE_TTL", "30m", &cfg.Cart.SessionIdleTTL},
		{"CART_WRITE_TIMEOUT", "2s", &cfg.Cart.WriteTimeout},
		{"NOTIFICATION_DISMISS_AFTER", "5s", &cfg.Cart.NotificationDismiss},
		{"SETTINGS_REFRESH_INTERVAL", "1m", &cfg.Settings.RefreshInterval},
	} {
		v, err := getDuration(d.key, d.def)
		if err != nil {
			return nil, err
		}
		*d.dst = v
	}

	// Validate required fields
	switch cfg.DataSource {
	case DataSourcePostgres:
	case DataSourceBackend:
		if cfg.Backend.URL == "" {
			return nil, fmt.Errorf("BACKEND_URL is required when DATA_SOURCE=backend")
		}
		if cfg.Backend.APIKey == "" {
			return nil, fmt.Errorf("BACKEND_API_KEY is required when DATA_SOURCE=backend")
		}
	default:
		return nil, fmt.Errorf("DATA_SOURCE must be %q or %q", DataSourcePostgres, DataSourceBackend)
	}

	return cfg, nil
}

func getEnvOrViper(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	if viper.IsSet(key) {
		return viper.GetString(key)
	}
	return defaultValue
}

func getDuration(key, defaultValue string) (time.Duration, error) {
	d, err := time.ParseDuration(getEnvOrViper(key, defaultValue))
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive", key)
	}
	return d, nil
}
