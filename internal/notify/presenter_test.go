package notify

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jafarshop/storefront/internal/cart"
	"github.com/jafarshop/storefront/internal/domain"
)

func product(id string) domain.ProductSnapshot {
	return domain.ProductSnapshot{ID: id, Name: "Denim Jacket", Price: decimal.NewFromInt(80)}
}

func isOpen(s *cart.Store) bool {
	n := s.State().LastAddedNotification
	return n != nil && n.IsOpen
}

func TestPresenter_AutoDismisses(t *testing.T) {
	p := NewPresenter(30*time.Millisecond, zap.NewNop())
	s := cart.NewStore("sess", nil, nil, zap.NewNop())
	defer p.Watch(s)()

	s.AddItem(product("p1"), "M", 1)
	require.True(t, isOpen(s))
	assert.True(t, p.Pending("sess"))

	require.Eventually(t, func() bool { return !isOpen(s) }, time.Second, 5*time.Millisecond)
	assert.False(t, p.Pending("sess"))
	assert.Equal(t, "p1", s.State().LastAddedNotification.Item.ProductID)
}

func TestPresenter_NewNotificationRestartsTimer(t *testing.T) {
	p := NewPresenter(120*time.Millisecond, zap.NewNop())
	s := cart.NewStore("sess", nil, nil, zap.NewNop())
	defer p.Watch(s)()

	s.AddItem(product("p1"), "M", 1)
	time.Sleep(80 * time.Millisecond)
	s.AddItem(product("p2"), "M", 1)

	// the first timer would have fired at 120ms
	time.Sleep(70 * time.Millisecond)
	assert.True(t, isOpen(s), "stale timer closed the newer notification")
	assert.Equal(t, "p2", s.State().LastAddedNotification.Item.ProductID)

	require.Eventually(t, func() bool { return !isOpen(s) }, time.Second, 5*time.Millisecond)
}

func TestPresenter_ExplicitCloseCancelsTimer(t *testing.T) {
	p := NewPresenter(time.Hour, zap.NewNop())
	s := cart.NewStore("sess", nil, nil, zap.NewNop())
	defer p.Watch(s)()

	s.AddItem(product("p1"), "M", 1)
	require.True(t, p.Pending("sess"))

	s.CloseNotification()

	assert.False(t, p.Pending("sess"))
	assert.False(t, isOpen(s))
}

func TestPresenter_StopWatchingCancelsTimer(t *testing.T) {
	p := NewPresenter(20*time.Millisecond, zap.NewNop())
	s := cart.NewStore("sess", nil, nil, zap.NewNop())
	stop := p.Watch(s)

	s.AddItem(product("p1"), "M", 1)
	stop()

	time.Sleep(60 * time.Millisecond)
	assert.True(t, isOpen(s))
	assert.False(t, p.Pending("sess"))
}

func TestPresenter_Stop(t *testing.T) {
	p := NewPresenter(20*time.Millisecond, zap.NewNop())
	a := cart.NewStore("a", nil, nil, zap.NewNop())
	b := cart.NewStore("b", nil, nil, zap.NewNop())
	p.Watch(a)
	p.Watch(b)

	a.AddItem(product("p1"), "M", 1)
	b.AddItem(product("p1"), "M", 1)
	p.Stop()

	time.Sleep(60 * time.Millisecond)
	assert.True(t, isOpen(a))
	assert.True(t, isOpen(b))
}

func TestPresenter_OutOfOrderDeliveryKeepsNewestTimer(t *testing.T) {
	p := NewPresenter(30*time.Millisecond, zap.NewNop())
	s := cart.NewStore("sess", nil, nil, zap.NewNop())

	first := s.AddItem(product("p1"), "M", 1)
	second := s.AddItem(product("p2"), "M", 1)
	require.Equal(t, uint64(2), s.State().LastAddedNotification.Seq)

	// listeners run outside the store lock, so seq 1 can arrive after seq 2
	p.handle(s, domain.Notification{Seq: 2, Item: second, IsOpen: true})
	p.handle(s, domain.Notification{Seq: 1, Item: first, IsOpen: true})
	assert.True(t, p.Pending("sess"))

	require.Eventually(t, func() bool { return !isOpen(s) }, time.Second, 5*time.Millisecond)
	assert.False(t, p.Pending("sess"))
}
