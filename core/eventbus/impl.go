package eventbus

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"streembit-go/core/event"
)

// subscription represents a single listener registration.
type subscription struct {
	id      string
	channel event.Channel
	handler Handler
}

// Bus is the synchronous implementation of EventBus.
type Bus struct {
	listeners map[event.Channel][]*subscription
	mu        sync.RWMutex
	closed    atomic.Bool
	logger    *slog.Logger
}

var (
	defaultBus  *Bus
	defaultOnce sync.Once
)

// Default returns the process-wide bus, creating it on first use.
func Default() *Bus {
	defaultOnce.Do(func() {
		defaultBus = New(nil)
	})
	return defaultBus
}

// New creates a bus with an empty listener list for every catalog channel.
func New(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}

	bus := &Bus{
		listeners: make(map[event.Channel][]*subscription),
		logger:    logger.With("component", "eventbus"),
	}
	for _, c := range event.Channels() {
		bus.listeners[c] = nil
	}

	return bus
}

// Register appends a listener to the named channel.
func (b *Bus) Register(channel string, handler Handler) (string, error) {
	c, err := event.ParseChannel(channel)
	if err != nil {
		return "", err
	}
	if handler == nil {
		return "", fmt.Errorf("%w: channel %s", ErrInvalidCallback, c)
	}

	sub := &subscription{
		id:      uuid.NewString(),
		channel: c,
		handler: handler,
	}

	b.mu.Lock()
	b.listeners[c] = append(b.listeners[c], sub)
	b.mu.Unlock()

	return sub.id, nil
}

// Unsubscribe removes a listener by its subscription ID.
func (b *Bus) Unsubscribe(subscriptionID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	for c, subs := range b.listeners {
		for i, sub := range subs {
			if sub.id != subscriptionID {
				continue
			}
			// Rebuild instead of shifting in place: dispatch may hold the old slice.
			next := make([]*subscription, 0, len(subs)-1)
			next = append(next, subs[:i]...)
			next = append(next, subs[i+1:]...)
			b.listeners[c] = next
			return true
		}
	}

	return false
}

// Listeners returns the number of listeners registered on a channel.
func (b *Bus) Listeners(channel event.Channel) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.listeners[channel])
}

// Publish delivers an event to every listener of its channel.
func (b *Bus) Publish(e event.Event) bool {
	if e == nil || b.closed.Load() {
		return true
	}

	b.mu.RLock()
	subs := b.listeners[e.Channel()]
	b.mu.RUnlock()

	for _, sub := range subs {
		b.deliver(sub, e)
	}

	return true
}

// Close shuts down the bus. Calling it twice is safe.
func (b *Bus) Close() {
	if b.closed.Swap(true) {
		return
	}

	b.mu.Lock()
	for c := range b.listeners {
		b.listeners[c] = nil
	}
	b.mu.Unlock()
}

// deliver calls a single listener, isolating panics so later listeners still run.
func (b *Bus) deliver(sub *subscription, e event.Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Event listener panicked",
				"channel", sub.channel,
				"event", e.EventName(),
				"subscription", sub.id,
				"panic", r)
		}
	}()
	sub.handler(e)
}

var _ EventBus = (*Bus)(nil)
