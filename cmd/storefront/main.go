package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/jafarshop/storefront/internal/api"
	"github.com/jafarshop/storefront/internal/backend"
	"github.com/jafarshop/storefront/internal/cart"
	"github.com/jafarshop/storefront/internal/config"
	"github.com/jafarshop/storefront/internal/notify"
	"github.com/jafarshop/storefront/internal/repository"
	"github.com/jafarshop/storefront/internal/repository/postgres"
	redisrepo "github.com/jafarshop/storefront/internal/repository/redis"
	"github.com/jafarshop/storefront/internal/settings"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("Storefront stopped with error", zap.Error(err))
	}
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	zcfg := zap.NewDevelopmentConfig()
	if cfg.Environment == "production" {
		zcfg = zap.NewProductionConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)
	return zcfg.Build()
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repos, closeRepos, err := openRepositories(cfg, logger)
	if err != nil {
		return err
	}
	defer closeRepos()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		// carts still work in memory; saves are retried on every mutation
		logger.Warn("Redis is unreachable, carts will not survive restarts until it recovers", zap.Error(err))
	}

	provider := settings.NewProvider(repos.Settings, logger)
	carts := redisrepo.NewCartRepository(rdb, cfg.Cart.TTL)
	writer := cart.NewWriter(carts, cfg.Cart.WriteTimeout, logger)
	presenter := notify.NewPresenter(cfg.Cart.NotificationDismiss, logger)
	registry := cart.NewRegistry(carts, writer, presenter, cfg.Cart.SessionIdleTTL, logger)

	bgCtx, cancelBg := context.WithCancel(context.Background())
	defer cancelBg()
	go writer.Run(bgCtx)
	go provider.Run(bgCtx, cfg.Settings.RefreshInterval)
	go registry.GC(bgCtx, cfg.Cart.SessionIdleTTL/2)

	router := api.NewRouter(cfg, registry, repos, provider, logger)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Starting storefront server",
			zap.String("port", cfg.Port),
			zap.String("environment", cfg.Environment),
			zap.String("data_source", cfg.DataSource),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info("Shutting down storefront server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Failed to shut down HTTP server cleanly", zap.Error(err))
	}
	cancelBg()
	presenter.Stop()
	writer.Flush(shutdownCtx)

	logger.Info("Storefront server stopped")
	return nil
}

func openRepositories(cfg *config.Config, logger *zap.Logger) (*repository.Repositories, func(), error) {
	if cfg.DataSource == config.DataSourceBackend {
		client := backend.NewClient(cfg.Backend, logger)
		return backend.NewRepositories(client, logger), func() {}, nil
	}

	db, err := postgres.NewConnection(cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := postgres.Migrate(db, logger); err != nil {
		db.Close()
		return nil, nil, err
	}
	return postgres.NewRepositories(db, logger), func() { db.Close() }, nil
}
