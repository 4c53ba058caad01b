// Package settings keeps an in-memory snapshot of the store settings.
package settings

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/internal/metric"
	"github.com/jafarshop/storefront/internal/repository"
)

// Provider serves the last good settings snapshot. Until the first
// successful refresh it reports that settings are still loading.
type Provider struct {
	repo    repository.SettingsRepository
	logger  *zap.Logger
	current atomic.Pointer[domain.StoreSettings]
	sfg     singleflight.Group
}

// NewProvider creates a new settings provider. Call Refresh or Run to load.
func NewProvider(repo repository.SettingsRepository, logger *zap.Logger) *Provider {
	return &Provider{
		repo:   repo,
		logger: logger,
	}
}

// Snapshot returns a copy of the current settings; ok is false while loading
func (p *Provider) Snapshot() (domain.StoreSettings, bool) {
	s := p.current.Load()
	if s == nil {
		return domain.StoreSettings{}, false
	}
	return *s, true
}

// Settings returns nil while loading. The result must not be modified.
func (p *Provider) Settings() *domain.StoreSettings {
	return p.current.Load()
}

// Set replaces the snapshot, e.g. after an admin update
func (p *Provider) Set(s domain.StoreSettings) {
	p.current.Store(&s)
}

// Refresh fetches settings from the repository. Concurrent calls share one fetch.
// On failure the previous snapshot is kept.
func (p *Provider) Refresh(ctx context.Context) error {
	_, err, _ := p.sfg.Do("settings", func() (interface{}, error) {
		s, err := p.repo.Get(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch store settings: %w", err)
		}
		if err := s.Validate(); err != nil {
			return nil, err
		}
		p.current.Store(s)
		return nil, nil
	})
	if err != nil {
		metric.SettingsRefreshTotal.WithLabelValues("error").Inc()
		p.logger.Warn("Failed to refresh store settings, keeping last snapshot", zap.Error(err))
		return err
	}
	metric.SettingsRefreshTotal.WithLabelValues("ok").Inc()
	return nil
}

// Run refreshes immediately and then every interval until ctx is done
func (p *Provider) Run(ctx context.Context, interval time.Duration) error {
	_ = p.Refresh(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_ = p.Refresh(ctx)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
