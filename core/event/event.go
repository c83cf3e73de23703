// Package event defines the closed catalog of events that can be published on the bus.
// Every event kind belongs to exactly one channel and carries its own typed payload.
package event

import (
	"errors"
	"fmt"
)

// ErrInvalidChannel is returned when a channel name is empty or not part of the catalog.
var ErrInvalidChannel = errors.New("invalid event channel")

// Channel identifies a named category of events.
type Channel string

// Catalog channels. Names are stable for the lifetime of the process.
const (
	ChannelAppInit    Channel = "app-init"
	ChannelAppEvent   Channel = "app-event"
	ChannelAppLog     Channel = "app-log"
	ChannelTaskInit   Channel = "task-init"
	ChannelIoT        Channel = "on-iotevent"
	ChannelPeer       Channel = "peer-message"
	ChannelBlockchain Channel = "on-bcevent"
	ChannelError      Channel = "on-errorevent"
)

var catalog = []Channel{
	ChannelAppInit,
	ChannelAppEvent,
	ChannelAppLog,
	ChannelTaskInit,
	ChannelIoT,
	ChannelPeer,
	ChannelBlockchain,
	ChannelError,
}

// Channels returns every channel in the catalog, in a stable order.
func Channels() []Channel {
	out := make([]Channel, len(catalog))
	copy(out, catalog)
	return out
}

// Valid reports whether c is part of the catalog.
func (c Channel) Valid() bool {
	for _, known := range catalog {
		if c == known {
			return true
		}
	}
	return false
}

func (c Channel) String() string {
	return string(c)
}

// ParseChannel resolves a channel name.
func ParseChannel(name string) (Channel, error) {
	if name == "" {
		return "", fmt.Errorf("%w: empty name", ErrInvalidChannel)
	}
	c := Channel(name)
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidChannel, name)
	}
	return c, nil
}

// Event is the base interface for all events.
// Only types declared in this package can satisfy it.
type Event interface {
	// EventName returns the name of the event for logging/debugging
	EventName() string

	// Channel returns the channel the event is published on.
	Channel() Channel

	sealed()
}

// ReplyFunc lets a listener hand a result back to the producer of an event.
type ReplyFunc func(result any, err error)

// baseEvent seals the catalog.
type baseEvent struct{}

func (baseEvent) sealed() {}
