package bridge

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/go-playground/assert/v2"
)

func quiet() Option {
	return WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestCall(t *testing.T) {
	b := New(quiet())
	b.Handle("GET_FREQ", func(_ context.Context, args ...any) (any, error) {
		return args[0].(string) + ":118.300", nil
	})

	v, err := b.Call(context.Background(), "GET_FREQ", "COM1")
	assert.Equal(t, err, nil)
	assert.Equal(t, v, "COM1:118.300")

	_, err = b.Call(context.Background(), "MISSING")
	assert.Equal(t, errors.Is(err, ErrNoHandler), true)

	calls := b.Calls()
	assert.Equal(t, len(calls), 2)
	assert.Equal(t, calls[0].Method, "GET_FREQ")
	assert.Equal(t, calls[0].Args, []any{"COM1"})
}

func TestCallHandlerErrors(t *testing.T) {
	b := New(quiet())
	boom := errors.New("boom")
	b.Handle("FAIL", func(context.Context, ...any) (any, error) { return nil, boom })
	b.Handle("PANIC", func(context.Context, ...any) (any, error) { panic("bad") })

	_, err := b.Call(context.Background(), "FAIL")
	assert.Equal(t, errors.Is(err, boom), true)

	_, err = b.Call(context.Background(), "PANIC")
	assert.NotEqual(t, err, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = b.Call(ctx, "FAIL")
	assert.Equal(t, errors.Is(err, context.Canceled), true)
}

func TestGo(t *testing.T) {
	b := New(quiet())
	release := make(chan struct{})
	b.Handle("SLOW", func(ctx context.Context, _ ...any) (any, error) {
		<-release
		return 42, nil
	})

	ch := b.Go(context.Background(), "SLOW")
	close(release)
	res := <-ch
	assert.Equal(t, res.Err, nil)
	assert.Equal(t, res.Value, 42)

	_, open := <-ch
	assert.Equal(t, open, false)
}

func TestEvents(t *testing.T) {
	b := New(quiet())
	var order []string

	first := b.On("FLIGHT_LOADED", func(args ...any) { order = append(order, "first:"+args[0].(string)) })
	b.On("FLIGHT_LOADED", func(...any) { panic("listener failure") })
	b.On("FLIGHT_LOADED", func(args ...any) { order = append(order, "third:"+args[0].(string)) })
	assert.NotEqual(t, first, ListenerID(""))
	assert.Equal(t, b.Listeners("FLIGHT_LOADED"), 3)

	assert.Equal(t, b.Trigger("FLIGHT_LOADED", "KSEA"), 3)
	assert.Equal(t, order, []string{"first:KSEA", "third:KSEA"})

	assert.Equal(t, b.Off("FLIGHT_LOADED", first), true)
	assert.Equal(t, b.Off("FLIGHT_LOADED", first), false)
	order = nil
	b.Trigger("FLIGHT_LOADED", "KPDX")
	assert.Equal(t, order, []string{"third:KPDX"})

	assert.Equal(t, b.Trigger("UNKNOWN"), 0)
}

func TestListenerIDsAreUnique(t *testing.T) {
	b := New(quiet())
	seen := make(map[ListenerID]bool)
	for i := 0; i < 100; i++ {
		id := b.On("E", func(...any) {})
		assert.Equal(t, seen[id], false)
		seen[id] = true
	}
}
