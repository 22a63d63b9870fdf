// Package bridge is an in-memory stand-in for the simulator-to-instrument
// call bridge: method calls answered by registered handlers, and named
// events delivered to listeners.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/oklog/ulid/v2"
)

// ErrNoHandler is returned by Call for methods without a handler.
var ErrNoHandler = errors.New("bridge: no handler for method")

// HandlerFunc answers one method call.
type HandlerFunc func(ctx context.Context, args ...any) (any, error)

// Listener receives an event's arguments.
type Listener func(args ...any)

// ListenerID identifies a registered listener.
type ListenerID string

// Result is the outcome of an asynchronous call.
type Result struct {
	Value any
	Err   error
}

// Record is one call made through the bridge.
type Record struct {
	Method string
	Args   []any
}

type listener struct {
	id ListenerID
	fn Listener
}

// Bridge routes calls and events. It is safe for concurrent use.
type Bridge struct {
	mu        sync.Mutex
	handlers  map[string]HandlerFunc
	listeners map[string][]listener
	calls     []Record
	logger    *slog.Logger
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(b *Bridge) { b.logger = l }
}

// New creates a Bridge with no handlers.
func New(opts ...Option) *Bridge {
	b := &Bridge{
		handlers:  make(map[string]HandlerFunc),
		listeners: make(map[string][]listener),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.logger == nil {
		b.logger = slog.Default()
	}
	return b
}

// Handle registers fn for method, replacing any previous handler.
func (b *Bridge) Handle(method string, fn HandlerFunc) {
	b.mu.Lock()
	b.handlers[method] = fn
	b.mu.Unlock()
}

// Call invokes the handler for method. A handler panic is returned as an
// error.
func (b *Bridge) Call(ctx context.Context, method string, args ...any) (result any, err error) {
	b.mu.Lock()
	fn := b.handlers[method]
	b.calls = append(b.calls, Record{Method: method, Args: append([]any(nil), args...)})
	b.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if fn == nil {
		return nil, fmt.Errorf("%w %q", ErrNoHandler, method)
	}
	defer func() {
		if r := recover(); r != nil {
			result, err = nil, fmt.Errorf("bridge: handler %q panicked: %v", method, r)
			b.logger.Error("bridge handler panicked", "method", method, "panic", r)
		}
	}()
	return fn(ctx, args...)
}

// Go runs Call on its own goroutine. The returned channel receives exactly
// one Result and is then closed.
func (b *Bridge) Go(ctx context.Context, method string, args ...any) <-chan Result {
	ch := make(chan Result, 1)
	go func() {
		defer close(ch)
		v, err := b.Call(ctx, method, args...)
		ch <- Result{Value: v, Err: err}
	}()
	return ch
}

// Calls returns the calls made so far, in order.
func (b *Bridge) Calls() []Record {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Record, len(b.calls))
	copy(out, b.calls)
	return out
}

// On registers fn for event and returns an id for Off.
func (b *Bridge) On(event string, fn Listener) ListenerID {
	id := ListenerID(ulid.Make().String())
	b.mu.Lock()
	b.listeners[event] = append(b.listeners[event], listener{id: id, fn: fn})
	b.mu.Unlock()
	return id
}

// Off removes a listener. It reports whether the listener was registered.
func (b *Bridge) Off(event string, id ListenerID) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	ls := b.listeners[event]
	for i, l := range ls {
		if l.id == id {
			b.listeners[event] = append(ls[:i:i], ls[i+1:]...)
			if len(b.listeners[event]) == 0 {
				delete(b.listeners, event)
			}
			return true
		}
	}
	return false
}

// Trigger calls every listener of event in registration order and returns
// how many ran. Listeners added or removed during delivery take effect on
// the next Trigger.
func (b *Bridge) Trigger(event string, args ...any) int {
	b.mu.Lock()
	ls := append([]listener(nil), b.listeners[event]...)
	b.mu.Unlock()

	for _, l := range ls {
		b.deliver(event, l, args)
	}
	return len(ls)
}

func (b *Bridge) deliver(event string, l listener, args []any) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("bridge listener panicked", "event", event, "listener", string(l.id), "panic", r)
		}
	}()
	l.fn(args...)
}

// Listeners returns the number of listeners registered for event.
func (b *Bridge) Listeners(event string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.listeners[event])
}
