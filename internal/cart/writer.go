package cart

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/internal/metric"
)

// Persister is durable storage for cart state
type Persister interface {
	Save(ctx context.Context, sessionID string, state domain.CartState) error
	// Load returns nil, nil when nothing is stored for the session
	Load(ctx context.Context, sessionID string) (*domain.CartState, error)
}

// Writer persists cart state in the background. Only the latest state per
// session is kept; failures are logged and never reach the shopper.
type Writer struct {
	persister Persister
	logger    *zap.Logger
	timeout   time.Duration

	mu       sync.Mutex
	pending  map[string]domain.CartState
	inflight map[string]domain.CartState
	wake     chan struct{}

	saveMu sync.Mutex
}

// NewWriter creates a new background cart writer
func NewWriter(persister Persister, timeout time.Duration, logger *zap.Logger) *Writer {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Writer{
		persister: persister,
		logger:    logger,
		timeout:   timeout,
		pending:   make(map[string]domain.CartState),
		wake:      make(chan struct{}, 1),
	}
}

// Enqueue schedules state to be saved. It never blocks.
func (w *Writer) Enqueue(sessionID string, state domain.CartState) {
	w.mu.Lock()
	w.pending[sessionID] = state
	w.mu.Unlock()

	select {
	case w.wake <- struct{}{}:
	default:
	}
}

// Pending returns a state that was enqueued but not yet saved
func (w *Writer) Pending(sessionID string) (domain.CartState, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	state, ok := w.pending[sessionID]
	if !ok {
		state, ok = w.inflight[sessionID]
	}
	if !ok {
		return domain.CartState{}, false
	}
	return state.Clone(), true
}

// Run saves enqueued states until ctx is done
func (w *Writer) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.wake:
			w.drain(ctx)
		}
	}
}

// Flush saves everything still pending. Call it on shutdown with a fresh context.
func (w *Writer) Flush(ctx context.Context) {
	w.drain(ctx)
}

func (w *Writer) drain(ctx context.Context) {
	w.saveMu.Lock()
	defer w.saveMu.Unlock()

	w.mu.Lock()
	batch := w.pending
	w.pending = make(map[string]domain.CartState)
	w.inflight = batch
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.inflight = nil
		w.mu.Unlock()
	}()

	for sessionID, state := range batch {
		saveCtx, cancel := context.WithTimeout(ctx, w.timeout)
		err := w.persister.Save(saveCtx, sessionID, state)
		cancel()
		if err != nil {
			metric.PersistenceFailuresTotal.WithLabelValues("save").Inc()
			w.logger.Warn("Failed to persist cart",
				zap.String("session_id", sessionID),
				zap.Error(err),
			)
		}
	}
}
