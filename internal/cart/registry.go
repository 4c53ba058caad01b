package cart

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/internal/metric"
)

// Watcher observes a store's notifications until stop is called
type Watcher interface {
	Watch(store *Store) (stop func())
}

type entry struct {
	store *Store
	stop  func()
}

// Registry owns one Store per cart session. A session is rehydrated from the
// persister once, on first use, and evicted from memory after it goes idle.
type Registry struct {
	persister Persister
	writer    *Writer
	watcher   Watcher
	idleTTL   time.Duration
	logger    *zap.Logger

	mu     sync.Mutex
	stores map[string]*entry
	sfg    singleflight.Group
}

// NewRegistry creates a new cart registry. watcher may be nil.
func NewRegistry(persister Persister, writer *Writer, watcher Watcher, idleTTL time.Duration, logger *zap.Logger) *Registry {
	return &Registry{
		persister: persister,
		writer:    writer,
		watcher:   watcher,
		idleTTL:   idleTTL,
		logger:    logger,
		stores:    make(map[string]*entry),
	}
}

// Get returns the store for a session, loading it if needed
func (r *Registry) Get(ctx context.Context, sessionID string) *Store {
	r.mu.Lock()
	e, ok := r.stores[sessionID]
	r.mu.Unlock()
	if ok {
		return e.store
	}

	v, _, _ := r.sfg.Do(sessionID, func() (interface{}, error) {
		r.mu.Lock()
		if e, ok := r.stores[sessionID]; ok {
			r.mu.Unlock()
			return e.store, nil
		}
		r.mu.Unlock()

		var sink Sink
		if r.writer != nil {
			sink = r.writer
		}
		store := NewStore(sessionID, r.load(ctx, sessionID), sink, r.logger)
		e := &entry{store: store, stop: func() {}}
		if r.watcher != nil {
			e.stop = r.watcher.Watch(store)
		}

		r.mu.Lock()
		r.stores[sessionID] = e
		metric.CartSessions.Set(float64(len(r.stores)))
		r.mu.Unlock()
		return store, nil
	})
	return v.(*Store)
}

// Len returns the number of sessions held in memory
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.stores)
}

// MinGCInterval is the shortest sweep interval GC accepts
const MinGCInterval = time.Second

// GC evicts idle sessions every interval until ctx is done.
// Intervals below MinGCInterval are raised to it.
func (r *Registry) GC(ctx context.Context, interval time.Duration) error {
	if interval < MinGCInterval {
		interval = MinGCInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := r.Evict(time.Now()); n > 0 {
				r.logger.Debug("Evicted idle cart sessions", zap.Int("count", n))
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Evict drops sessions idle for longer than the idle TTL and returns how many were dropped
func (r *Registry) Evict(now time.Time) int {
	r.mu.Lock()
	var evicted []*entry
	for id, e := range r.stores {
		if now.Sub(e.store.IdleSince()) > r.idleTTL {
			evicted = append(evicted, e)
			delete(r.stores, id)
		}
	}
	metric.CartSessions.Set(float64(len(r.stores)))
	r.mu.Unlock()

	for _, e := range evicted {
		e.stop()
	}
	return len(evicted)
}

func (r *Registry) load(ctx context.Context, sessionID string) *domain.CartState {
	if r.writer != nil {
		if state, ok := r.writer.Pending(sessionID); ok {
			return &state
		}
	}
	if r.persister == nil {
		return nil
	}

	state, err := r.persister.Load(ctx, sessionID)
	if err != nil {
		metric.PersistenceFailuresTotal.WithLabelValues("load").Inc()
		r.logger.Warn("Failed to load cart, starting empty",
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
		return nil
	}
	return state
}
