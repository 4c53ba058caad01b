// Package notify owns the auto-dismiss timers of "added to cart" notifications.
package notify

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/cart"
	"github.com/jafarshop/storefront/internal/domain"
)

// DefaultDismissAfter is how long a notification stays open without interaction
const DefaultDismissAfter = 5 * time.Second

type scheduled struct {
	seq   uint64
	timer *time.Timer
}

// Presenter closes open notifications after a delay. Each session has at most
// one pending dismissal; a newer notification or an explicit close cancels it.
type Presenter struct {
	dismissAfter time.Duration
	logger       *zap.Logger

	mu      sync.Mutex
	pending map[string]*scheduled
	// highest open seq seen per session; listeners may deliver out of order
	latest map[string]uint64
}

// NewPresenter creates a new notification presenter
func NewPresenter(dismissAfter time.Duration, logger *zap.Logger) *Presenter {
	if dismissAfter <= 0 {
		dismissAfter = DefaultDismissAfter
	}
	return &Presenter{
		dismissAfter: dismissAfter,
		logger:       logger,
		pending:      make(map[string]*scheduled),
		latest:       make(map[string]uint64),
	}
}

// Watch subscribes to the store's notifications. The returned func
// unsubscribes and cancels any pending dismissal.
func (p *Presenter) Watch(store *cart.Store) func() {
	sessionID := store.SessionID()
	unsubscribe := store.Subscribe(func(n domain.Notification) {
		p.handle(store, n)
	})

	return func() {
		unsubscribe()
		p.cancel(sessionID)
	}
}

func (p *Presenter) handle(store *cart.Store, n domain.Notification) {
	sessionID := store.SessionID()
	if !n.IsOpen {
		p.cancelSeq(sessionID, n.Seq)
		p.logger.Debug("Notification closed",
			zap.String("session_id", sessionID),
			zap.Uint64("seq", n.Seq),
		)
		return
	}

	seq := n.Seq
	p.mu.Lock()
	if seq < p.latest[sessionID] {
		p.mu.Unlock()
		return
	}
	p.latest[sessionID] = seq

	p.logger.Debug("Notification shown",
		zap.String("session_id", sessionID),
		zap.Uint64("seq", seq),
		zap.String("product_id", n.Item.ProductID),
	)
	if prev, ok := p.pending[sessionID]; ok {
		prev.timer.Stop()
	}
	sch := &scheduled{seq: seq}
	sch.timer = time.AfterFunc(p.dismissAfter, func() {
		p.mu.Lock()
		if cur, ok := p.pending[sessionID]; ok && cur == sch {
			delete(p.pending, sessionID)
		}
		p.mu.Unlock()

		store.DismissNotification(seq)
	})
	p.pending[sessionID] = sch
	p.mu.Unlock()
}

// Pending reports whether a dismissal is scheduled for the session
func (p *Presenter) Pending(sessionID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.pending[sessionID]
	return ok
}

// Stop cancels every scheduled dismissal
func (p *Presenter) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for id, sch := range p.pending {
		sch.timer.Stop()
		delete(p.pending, id)
	}
	p.latest = make(map[string]uint64)
}

func (p *Presenter) cancel(sessionID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if sch, ok := p.pending[sessionID]; ok {
		sch.timer.Stop()
		delete(p.pending, sessionID)
	}
	delete(p.latest, sessionID)
}

func (p *Presenter) cancelSeq(sessionID string, seq uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if sch, ok := p.pending[sessionID]; ok && sch.seq == seq {
		sch.timer.Stop()
		delete(p.pending, sessionID)
	}
}
