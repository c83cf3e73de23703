// Package eventbus provides the in-process event bus used to decouple subsystems.
// Delivery is synchronous: Publish returns after every listener has run.
package eventbus

import (
	"errors"
	"fmt"

	"streembit-go/core/event"
)

// ErrInvalidCallback is returned when a listener is missing.
var ErrInvalidCallback = errors.New("invalid event callback")

// ErrInvalidChannel is returned when a channel name is empty or unknown.
var ErrInvalidChannel = event.ErrInvalidChannel

// EventBus is the interface for the event bus.
type EventBus interface {
	// Publish delivers an event to every listener of its channel, in registration order.
	// It always returns true.
	Publish(e event.Event) bool

	// Register appends a listener to the named channel.
	// Returns a subscription ID that can be used to unsubscribe.
	Register(channel string, handler Handler) (string, error)

	// Unsubscribe removes a listener by its subscription ID.
	Unsubscribe(subscriptionID string) bool

	// Listeners returns the number of listeners registered on a channel.
	Listeners(channel event.Channel) int

	// Close shuts down the event bus.
	// After Close is called, Publish will be a no-op.
	Close()
}

// Handler is a function that handles an event.
type Handler func(e event.Event)

// Subscribe registers a typed listener. The channel is taken from E, so only
// catalog channels can be subscribed to.
func Subscribe[E event.Event](bus EventBus, fn func(E)) (string, error) {
	if fn == nil {
		return "", ErrInvalidCallback
	}

	var zero E
	if any(zero) == nil {
		return "", fmt.Errorf("%w: subscribe needs a concrete event type", ErrInvalidChannel)
	}
	return bus.Register(zero.Channel().String(), func(e event.Event) {
		if typed, ok := e.(E); ok {
			fn(typed)
		}
	})
}
