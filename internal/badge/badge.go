// Package badge keeps a visible cart item count consistent across
// components without a shared in-memory store. The Signal is a plain
// callback registry replacing an ambient event bus; the Counter is a
// pull-based mirror of server truth with an explicit Refresh contract,
// invoked post-mutation and post-login.
package badge

import (
	"context"
	"sync"

	"github.com/example/storefront/internal/event"
)

// Signal is an in-process cart-mutation broadcast. It carries no payload
// beyond the event itself; subscribers re-fetch whatever they mirror.
type Signal struct {
	mu   sync.RWMutex
	subs []func(context.Context, event.CartChanged)
}

func NewSignal() *Signal {
	return &Signal{}
}

// Subscribe registers a callback invoked on every cart mutation.
// Callbacks run synchronously on the mutating goroutine and must be cheap.
func (s *Signal) Subscribe(fn func(context.Context, event.CartChanged)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

// CartChanged fans the event out to all subscribers. Implements the cart
// service's Notifier port.
func (s *Signal) CartChanged(ctx context.Context, e event.CartChanged) {
	s.mu.RLock()
	subs := s.subs
	s.mu.RUnlock()
	for _, fn := range subs {
		fn(ctx, e)
	}
}

// CountSource yields the current total item count for a user.
type CountSource interface {
	Count(ctx context.Context, userID string) (int, error)
}

// Counter mirrors one user's cart item count. It is eventually consistent:
// overlapping refreshes are tolerated and the displayed count is simply the
// latest result to land.
type Counter struct {
	userID string
	source CountSource

	mu    sync.RWMutex
	count int
}

func NewCounter(userID string, source CountSource) *Counter {
	return &Counter{userID: userID, source: source}
}

// AttachTo subscribes the counter to a mutation signal. Events for other
// users are ignored. The refresh is fire-and-forget: a failed re-fetch
// keeps the previous count.
func (c *Counter) AttachTo(sig *Signal) {
	sig.Subscribe(func(ctx context.Context, e event.CartChanged) {
		if e.UserID != c.userID {
			return
		}
		_ = c.Refresh(ctx)
	})
}

// Refresh re-queries the cart and overwrites the displayed count.
func (c *Counter) Refresh(ctx context.Context) error {
	count, err := c.source.Count(ctx, c.userID)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.count = count
	c.mu.Unlock()
	return nil
}

// Count returns the last refreshed value.
func (c *Counter) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.count
}
