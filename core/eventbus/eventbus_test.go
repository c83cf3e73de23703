package eventbus

import (
	"errors"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"streembit-go/core/event"
)

func TestBus_RegisterAndEmitEveryChannel(t *testing.T) {
	bus := New(nil)
	defer bus.Close()

	boom := errors.New("boom")
	req := httptest.NewRequest("POST", "/peer", nil)
	resp := httptest.NewRecorder()

	tests := []struct {
		channel event.Channel
		emit    func() bool
		check   func(t *testing.T, e event.Event)
	}{
		{event.ChannelAppInit, bus.AppInit, func(t *testing.T, e event.Event) {
			assert.IsType(t, &event.AppInit{}, e)
		}},
		{event.ChannelAppEvent, func() bool { return bus.AppEvent("ready", 42) }, func(t *testing.T, e event.Event) {
			got := e.(*event.AppEvent)
			assert.Equal(t, "ready", got.Name)
			assert.Equal(t, 42, got.Payload)
		}},
		{event.ChannelAppLog, func() bool { return bus.AppLog("warn", "disk low") }, func(t *testing.T, e event.Event) {
			got := e.(*event.AppLog)
			assert.Equal(t, "warn", got.Level)
			assert.Equal(t, "disk low", got.Message)
		}},
		{event.ChannelTaskInit, func() bool { return bus.TaskInit("sync", "data") }, func(t *testing.T, e event.Event) {
			got := e.(*event.TaskInit)
			assert.Equal(t, "sync", got.Task)
			assert.Equal(t, "data", got.Payload)
		}},
		{event.ChannelIoT, func() bool { return bus.IoTEvent("temp=21", nil) }, func(t *testing.T, e event.Event) {
			assert.Equal(t, "temp=21", e.(*event.IoTEvent).Payload)
		}},
		{event.ChannelPeer, func() bool { return bus.PeerMessage([]byte("hi"), req, resp, "m-1", nil) }, func(t *testing.T, e event.Event) {
			got := e.(*event.PeerMessage)
			assert.Equal(t, []byte("hi"), got.Payload)
			assert.Same(t, req, got.Request)
			assert.Equal(t, "m-1", got.MessageID)
		}},
		{event.ChannelBlockchain, func() bool { return bus.BlockchainEvent("block", nil) }, func(t *testing.T, e event.Event) {
			assert.Equal(t, "block", e.(*event.BlockchainEvent).Payload)
		}},
		{event.ChannelError, func() bool { return bus.ErrorEvent(boom, "ctx") }, func(t *testing.T, e event.Event) {
			got := e.(*event.ErrorEvent)
			assert.ErrorIs(t, got.Err, boom)
			assert.Equal(t, "ctx", got.Payload)
		}},
	}

	require.Len(t, tests, len(event.Channels()))

	for _, tt := range tests {
		t.Run(tt.channel.String(), func(t *testing.T) {
			var received []event.Event
			_, err := bus.Register(tt.channel.String(), func(e event.Event) {
				received = append(received, e)
			})
			require.NoError(t, err)

			assert.True(t, tt.emit())
			require.Len(t, received, 1)
			tt.check(t, received[0])
		})
	}
}

func TestBus_RegistrationOrder(t *testing.T) {
	bus := New(nil)
	defer bus.Close()

	var order []int
	for i := 1; i <= 3; i++ {
		n := i
		_, err := bus.Register("task-init", func(e event.Event) {
			order = append(order, n)
		})
		require.NoError(t, err)
	}

	bus.TaskInit("t", nil)
	assert.Equal(t, []int{1, 2, 3}, order)
}

func TestBus_NoDeduplication(t *testing.T) {
	bus := New(nil)
	defer bus.Close()

	var calls int
	handler := func(e event.Event) { calls++ }
	_, _ = bus.Register("app-init", handler)
	_, _ = bus.Register("app-init", handler)

	bus.AppInit()
	assert.Equal(t, 2, calls)
	assert.Equal(t, 2, bus.Listeners(event.ChannelAppInit))
}

func TestBus_RegisterInvalidChannel(t *testing.T) {
	bus := New(nil)
	defer bus.Close()

	for _, name := range []string{"", "unknown-channel"} {
		_, err := bus.Register(name, func(e event.Event) {})
		assert.ErrorIs(t, err, ErrInvalidChannel, "channel %q", name)
	}
}

func TestBus_RegisterInvalidCallback(t *testing.T) {
	bus := New(nil)
	defer bus.Close()

	_, err := bus.Register("app-init", nil)
	assert.ErrorIs(t, err, ErrInvalidCallback)
	assert.Equal(t, 0, bus.Listeners(event.ChannelAppInit))
}

func TestBus_OtherChannelsNotNotified(t *testing.T) {
	bus := New(nil)
	defer bus.Close()

	var received atomic.Int32
	_, err := bus.Register("on-iotevent", func(e event.Event) { received.Add(1) })
	require.NoError(t, err)

	bus.BlockchainEvent("block", nil)
	bus.AppInit()

	assert.Equal(t, int32(0), received.Load())
}

func TestSubscribe_Typed(t *testing.T) {
	bus := New(nil)
	defer bus.Close()

	var got *event.TaskInit
	_, err := Subscribe(bus, func(e *event.TaskInit) { got = e })
	require.NoError(t, err)

	bus.TaskInit("index", map[string]int{"n": 1})
	require.NotNil(t, got)
	assert.Equal(t, "index", got.Task)
}

func TestSubscribe_Invalid(t *testing.T) {
	bus := New(nil)
	defer bus.Close()

	_, err := Subscribe[*event.AppInit](bus, nil)
	assert.ErrorIs(t, err, ErrInvalidCallback)

	_, err = Subscribe(bus, func(e event.Event) {})
	assert.ErrorIs(t, err, ErrInvalidChannel)
}

func TestSubscribe_ReplyCallback(t *testing.T) {
	bus := New(nil)
	defer bus.Close()

	_, err := Subscribe(bus, func(e *event.IoTEvent) {
		e.Reply("ack:"+e.Payload.(string), nil)
	})
	require.NoError(t, err)

	var reply any
	bus.IoTEvent("ping", func(result any, err error) { reply = result })
	assert.Equal(t, "ack:ping", reply)
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := New(nil)
	defer bus.Close()

	var received atomic.Int32
	subID, err := bus.Register("app-init", func(e event.Event) {
		received.Add(1)
	})
	require.NoError(t, err)

	assert.True(t, bus.Unsubscribe(subID))
	assert.False(t, bus.Unsubscribe(subID))

	bus.AppInit()
	assert.Equal(t, int32(0), received.Load())
}

func TestBus_Close(t *testing.T) {
	bus := New(nil)

	var received atomic.Int32
	_, _ = bus.Register("app-init", func(e event.Event) {
		received.Add(1)
	})

	bus.Close()

	// Publish should be no-op after close but still report true
	assert.True(t, bus.AppInit())
	assert.Equal(t, int32(0), received.Load())

	// Close again should not panic
	bus.Close()
}

func TestBus_HandlerPanic(t *testing.T) {
	bus := New(nil)
	defer bus.Close()

	var received atomic.Int32

	// First handler panics
	_, _ = bus.Register("on-errorevent", func(e event.Event) {
		panic("test panic")
	})

	// Second handler should still receive the event
	_, _ = bus.Register("on-errorevent", func(e event.Event) {
		received.Add(1)
	})

	assert.NotPanics(t, func() { bus.ErrorEvent(errors.New("x"), nil) })
	assert.Equal(t, int32(1), received.Load())
}

func TestBus_RegisterFromListener(t *testing.T) {
	bus := New(nil)
	defer bus.Close()

	var inner atomic.Int32
	_, _ = bus.Register("app-event", func(e event.Event) {
		_, _ = bus.Register("app-event", func(e event.Event) { inner.Add(1) })
	})

	bus.AppEvent("first", nil)
	assert.Equal(t, int32(0), inner.Load(), "listener added during dispatch runs from the next publish")

	bus.AppEvent("second", nil)
	assert.Equal(t, int32(1), inner.Load())
}

func TestBus_ConcurrentPublish(t *testing.T) {
	bus := New(nil)
	defer bus.Close()

	var received atomic.Int32
	var wg sync.WaitGroup

	const numEvents = 100
	_, _ = bus.Register("app-event", func(e event.Event) {
		received.Add(1)
	})

	wg.Add(numEvents)
	for i := 0; i < numEvents; i++ {
		go func() {
			defer wg.Done()
			bus.AppEvent("test", nil)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(numEvents), received.Load())
}

func TestDefault_Singleton(t *testing.T) {
	assert.Same(t, Default(), Default())
}
