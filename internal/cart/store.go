// Package cart holds the per-session cart state and the rules for mutating it.
package cart

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/domain"
	"github.com/jafarshop/storefront/internal/metric"
)

// Sink receives the latest state after every mutation. Enqueue must not block.
type Sink interface {
	Enqueue(sessionID string, state domain.CartState)
}

// Listener is called after the notification changes, outside the store lock
type Listener func(n domain.Notification)

// Store is the single source of truth for one shopper's cart.
// Every mutation keeps (ProductID, VariantKey) unique and quantities positive.
type Store struct {
	mu          sync.Mutex
	sessionID   string
	state       domain.CartState
	seq         uint64
	sink        Sink
	listeners   map[int]Listener
	nextID      int
	lastTouched time.Time
	logger      *zap.Logger
}

// NewStore creates a store, rehydrating from persisted state when given
func NewStore(sessionID string, persisted *domain.CartState, sink Sink, logger *zap.Logger) *Store {
	s := &Store{
		sessionID:   sessionID,
		state:       Restore(persisted),
		sink:        sink,
		listeners:   make(map[int]Listener),
		lastTouched: time.Now(),
		logger:      logger,
	}
	if n := s.state.LastAddedNotification; n != nil {
		s.seq = n.Seq
	}
	return s
}

// SessionID returns the cart session the store belongs to
func (s *Store) SessionID() string {
	return s.sessionID
}

// State returns a deep copy of the current state
func (s *Store) State() domain.CartState {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastTouched = time.Now()
	return s.state.Clone()
}

// AddItem merges the product into an existing line or appends a new one,
// and opens the "added to cart" notification. Quantity below 1 is treated as 1
// and a line never grows past MaxLineQuantity.
func (s *Store) AddItem(product domain.ProductSnapshot, variantKey string, quantity int) domain.CartLineItem {
	line := NewLineItem(product, variantKey, quantity)

	s.mu.Lock()
	if i := s.indexOf(line.Key()); i >= 0 {
		s.state.Items[i].Quantity = addQuantity(s.state.Items[i].Quantity, line.Quantity)
		line = s.state.Items[i]
	} else {
		s.state.Items = append(s.state.Items, line)
	}

	s.seq++
	n := domain.Notification{Seq: s.seq, Item: line, IsOpen: true}
	s.state.LastAddedNotification = &n
	s.commit("add_item")
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	s.logger.Debug("Item added to cart",
		zap.String("session_id", s.sessionID),
		zap.String("product_id", line.ProductID),
		zap.String("variant", line.VariantKey),
		zap.Int("quantity", line.Quantity),
	)
	emit(listeners, n)
	return line
}

// UpdateQuantity sets the quantity of a line; zero or less removes it and
// anything above MaxLineQuantity is capped. Unknown keys are ignored.
func (s *Store) UpdateQuantity(productID, variantKey string, quantity int) {
	if quantity <= 0 {
		s.RemoveItem(productID, variantKey)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(domain.LineKey{ProductID: productID, VariantKey: variantKey})
	if i < 0 {
		return
	}
	s.state.Items[i].Quantity = clampQuantity(quantity)
	s.commit("update_quantity")
}

// RemoveItem deletes the matching line if present
func (s *Store) RemoveItem(productID, variantKey string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(domain.LineKey{ProductID: productID, VariantKey: variantKey})
	if i < 0 {
		return
	}
	s.state.Items = append(s.state.Items[:i], s.state.Items[i+1:]...)
	s.commit("remove_item")
}

// ClearCart empties the cart and drops the applied coupon
func (s *Store) ClearCart() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Items = []domain.CartLineItem{}
	s.state.CouponCode = ""
	s.commit("clear_cart")
}

func (s *Store) TogglePanel() {
	s.setPanel(func(open bool) bool { return !open }, "toggle_panel")
}

func (s *Store) OpenPanel() {
	s.setPanel(func(bool) bool { return true }, "open_panel")
}

func (s *Store) ClosePanel() {
	s.setPanel(func(bool) bool { return false }, "close_panel")
}

func (s *Store) setPanel(next func(open bool) bool, op string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.IsCartPanelOpen = next(s.state.IsCartPanelOpen)
	s.commit(op)
}

// CloseNotification hides the notification but keeps its item for exit animations
func (s *Store) CloseNotification() {
	s.mu.Lock()
	n := s.state.LastAddedNotification
	if n == nil || !n.IsOpen {
		s.mu.Unlock()
		return
	}
	n.IsOpen = false
	closed := *n
	s.commit("close_notification")
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	emit(listeners, closed)
}

// DismissNotification closes the notification only if it is still the one
// identified by seq. It reports whether anything was closed.
func (s *Store) DismissNotification(seq uint64) bool {
	s.mu.Lock()
	n := s.state.LastAddedNotification
	if n == nil || !n.IsOpen || n.Seq != seq {
		s.mu.Unlock()
		return false
	}
	n.IsOpen = false
	closed := *n
	s.commit("dismiss_notification")
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	emit(listeners, closed)
	return true
}

// SetCouponCode records the code the shopper applied; an empty code removes it
func (s *Store) SetCouponCode(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.CouponCode == code {
		return
	}
	s.state.CouponCode = code
	s.commit("set_coupon")
}

// Subscribe registers a notification listener and returns its cancel func
func (s *Store) Subscribe(l Listener) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// IdleSince returns when the store was last read or mutated
func (s *Store) IdleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastTouched
}

// must hold s.mu
func (s *Store) indexOf(key domain.LineKey) int {
	for i, item := range s.state.Items {
		if item.Key() == key {
			return i
		}
	}
	return -1
}

// must hold s.mu
func (s *Store) commit(op string) {
	now := time.Now()
	s.state.UpdatedAt = now
	s.lastTouched = now
	metric.CartMutationsTotal.WithLabelValues(op).Inc()
	if s.sink != nil {
		s.sink.Enqueue(s.sessionID, s.state.Clone())
	}
}

// must hold s.mu
func (s *Store) snapshotListeners() []Listener {
	out := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		out = append(out, l)
	}
	return out
}

func emit(listeners []Listener, n domain.Notification) {
	for _, l := range listeners {
		l(n)
	}
}
