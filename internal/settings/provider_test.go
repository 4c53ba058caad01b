package settings

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/domain"
)

type stubRepo struct {
	mu       sync.Mutex
	settings *domain.StoreSettings
	err      error
	calls    atomic.Int32
	block    chan struct{}
}

func (r *stubRepo) Get(ctx context.Context) (*domain.StoreSettings, error) {
	r.calls.Add(1)
	if r.block != nil {
		<-r.block
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	s := *r.settings
	return &s, nil
}

func (r *stubRepo) set(s *domain.StoreSettings, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.settings = s
	r.err = err
}

func validSettings(tax int64) *domain.StoreSettings {
	return &domain.StoreSettings{
		CurrencySymbol:        "Rs.",
		TaxRatePercent:        decimal.NewFromInt(tax),
		DeliveryCharge:        decimal.NewFromInt(50),
		FreeDeliveryThreshold: decimal.NewFromInt(500),
	}
}

func TestProvider_LoadingUntilFirstRefresh(t *testing.T) {
	repo := &stubRepo{settings: validSettings(10)}
	p := NewProvider(repo, zap.NewNop())

	_, ok := p.Snapshot()
	assert.False(t, ok)
	assert.Nil(t, p.Settings())

	require.NoError(t, p.Refresh(context.Background()))

	s, ok := p.Snapshot()
	require.True(t, ok)
	assert.Equal(t, "Rs.", s.CurrencySymbol)
	assert.True(t, s.TaxRatePercent.Equal(decimal.NewFromInt(10)))
}

func TestProvider_FailureKeepsLastGood(t *testing.T) {
	repo := &stubRepo{settings: validSettings(10)}
	p := NewProvider(repo, zap.NewNop())
	require.NoError(t, p.Refresh(context.Background()))

	repo.set(nil, fmt.Errorf("connection reset"))
	assert.Error(t, p.Refresh(context.Background()))

	s, ok := p.Snapshot()
	require.True(t, ok)
	assert.True(t, s.TaxRatePercent.Equal(decimal.NewFromInt(10)))
}

func TestProvider_RejectsInvalidSettings(t *testing.T) {
	repo := &stubRepo{settings: validSettings(150)}
	p := NewProvider(repo, zap.NewNop())

	err := p.Refresh(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tax_rate_percent")

	_, ok := p.Snapshot()
	assert.False(t, ok)
}

func TestProvider_ConcurrentRefreshSharesFetch(t *testing.T) {
	repo := &stubRepo{settings: validSettings(5), block: make(chan struct{})}
	p := NewProvider(repo, zap.NewNop())

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = p.Refresh(context.Background())
		}()
	}
	require.Eventually(t, func() bool { return repo.calls.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(repo.block)
	wg.Wait()

	assert.LessOrEqual(t, repo.calls.Load(), int32(2))
	_, ok := p.Snapshot()
	assert.True(t, ok)
}

func TestProvider_RunRefreshesPeriodically(t *testing.T) {
	repo := &stubRepo{settings: validSettings(5)}
	p := NewProvider(repo, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx, 10*time.Millisecond) }()

	require.Eventually(t, func() bool {
		_, ok := p.Snapshot()
		return ok
	}, time.Second, time.Millisecond)

	repo.set(validSettings(12), nil)
	require.Eventually(t, func() bool {
		s, _ := p.Snapshot()
		return s.TaxRatePercent.Equal(decimal.NewFromInt(12))
	}, time.Second, 5*time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestProvider_Set(t *testing.T) {
	p := NewProvider(&stubRepo{err: fmt.Errorf("unused")}, zap.NewNop())
	p.Set(*validSettings(7))

	s, ok := p.Snapshot()
	require.True(t, ok)
	assert.True(t, s.TaxRatePercent.Equal(decimal.NewFromInt(7)))
}
