// Package shipper provides transports that ship log entries to a remote collector.
package shipper

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrClosed is returned when a transport is used after Close.
var ErrClosed = errors.New("shipper: transport closed")

// Entry is a single log line handed to a remote collector.
type Entry struct {
	Time    time.Time `json:"time" bson:"time"`
	Level   string    `json:"level" bson:"level"`
	Message string    `json:"message" bson:"message"`
}

// Transport ships log entries to a remote collector.
type Transport interface {
	// Send queues an entry for delivery.
	Send(ctx context.Context, entry Entry) error

	// Flush delivers every queued entry.
	Flush(ctx context.Context) error

	// Close flushes what it can and releases resources.
	Close() error
}

// NoOpTransport discards every entry. Used when shipping is disabled and in tests.
type NoOpTransport struct{}

// NewNoOpTransport creates a transport that discards every entry.
func NewNoOpTransport() *NoOpTransport {
	return &NoOpTransport{}
}

func (t *NoOpTransport) Send(ctx context.Context, entry Entry) error { return nil }
func (t *NoOpTransport) Flush(ctx context.Context) error             { return nil }
func (t *NoOpTransport) Close() error                                { return nil }

var _ Transport = (*NoOpTransport)(nil)

// buffer holds queued entries up to a fixed size, dropping the oldest on overflow.
type buffer struct {
	entries []Entry
	max     int
	dropped int
}

func (b *buffer) push(e Entry) {
	if b.max > 0 && len(b.entries) >= b.max {
		b.entries = b.entries[1:]
		b.dropped++
	}
	b.entries = append(b.entries, e)
}

// take returns the queued entries and resets the buffer.
func (b *buffer) take() []Entry {
	out := b.entries
	b.entries = nil
	return out
}

// requeue puts entries that failed to ship back in front of newer ones.
func (b *buffer) requeue(entries []Entry) {
	merged := append(entries, b.entries...)
	if b.max > 0 && len(merged) > b.max {
		b.dropped += len(merged) - b.max
		merged = merged[len(merged)-b.max:]
	}
	b.entries = merged
}

// batcher queues entries and ships them in batches. Shipping happens without
// holding the queue lock, so Send never waits for a network round trip.
type batcher struct {
	ship func(ctx context.Context, entries []Entry) error

	flushMu sync.Mutex // serializes shipping
	mu      sync.Mutex // guards buf and closed
	buf     buffer
	closed  bool
}

func newBatcher(max int, ship func(ctx context.Context, entries []Entry) error) *batcher {
	return &batcher{ship: ship, buf: buffer{max: max}}
}

func (b *batcher) send(e Entry) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrClosed
	}
	b.buf.push(e)
	return nil
}

func (b *batcher) flush(ctx context.Context) error {
	b.flushMu.Lock()
	defer b.flushMu.Unlock()

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return ErrClosed
	}
	entries := b.buf.take()
	b.mu.Unlock()

	return b.shipOrRequeue(ctx, entries)
}

// close stops accepting entries and ships what is left.
// It reports false if the batcher was already closed.
func (b *batcher) close(ctx context.Context) (bool, error) {
	b.flushMu.Lock()
	defer b.flushMu.Unlock()

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return false, nil
	}
	b.closed = true
	entries := b.buf.take()
	b.mu.Unlock()

	return true, b.shipOrRequeue(ctx, entries)
}

func (b *batcher) pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.buf.entries)
}

// shipOrRequeue puts entries back in the queue when shipping fails.
func (b *batcher) shipOrRequeue(ctx context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}
	if err := b.ship(ctx, entries); err != nil {
		b.mu.Lock()
		b.buf.requeue(entries)
		b.mu.Unlock()
		return err
	}
	return nil
}
