package postgres

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/config"
	"github.com/jafarshop/storefront/internal/repository"
)

//go:embed migrations/*.sql
var migrations embed.FS

// NewConnection opens and pings a postgres connection pool
func NewConnection(cfg config.DatabaseConfig) (*sql.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.DBName,
		cfg.SSLMode,
	)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)
	return db, nil
}

// Migrate applies the embedded schema migrations
func Migrate(db *sql.DB, logger *zap.Logger) error {
	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("could not open migrations: %w", err)
	}

	driver, err := migratepg.WithInstance(db, &migratepg.Config{})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Debug("Database schema is up to date")
			return nil
		}
		return fmt.Errorf("could not run migrations: %w", err)
	}

	version, _, _ := m.Version()
	logger.Info("Applied database migrations", zap.Uint("version", version))
	return nil
}

// NewRepositories wires the postgres-backed repositories
func NewRepositories(db *sql.DB, logger *zap.Logger) *repository.Repositories {
	settings := NewSettingsRepository(db, logger)
	coupons := NewCouponRepository(db, logger)
	return &repository.Repositories{
		Settings:       settings,
		Coupons:        coupons,
		SettingsWriter: settings,
		CouponWriter:   coupons,
	}
}
