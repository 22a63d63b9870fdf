package reactive

import (
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
)

var cellIDs atomic.Uint64

type subscriber[T any] struct {
	fn func(T)
}

// subscriberList is the ordered subscriber set shared by Cell and Derived.
type subscriberList[T any] struct {
	id   uint64
	opts options

	mu   sync.Mutex
	subs []*subscriber[T]
}

func (l *subscriberList[T]) add(fn func(T)) func() {
	s := &subscriber[T]{fn: fn}
	l.mu.Lock()
	l.subs = append(l.subs, s)
	l.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { l.remove(s) })
	}
}

// remove deletes s and keeps the order of the others.
func (l *subscriberList[T]) remove(s *subscriber[T]) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, existing := range l.subs {
		if existing == s {
			l.subs = append(l.subs[:i:i], l.subs[i+1:]...)
			return
		}
	}
}

func (l *subscriberList[T]) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.subs)
}

// notify calls every subscriber with v, in subscription order. The list is
// copied first so subscribers may subscribe, unsubscribe or Set freely.
func (l *subscriberList[T]) notify(v T) {
	l.mu.Lock()
	subs := make([]*subscriber[T], len(l.subs))
	copy(subs, l.subs)
	l.mu.Unlock()

	var first any
	panicked := false
	for _, s := range subs {
		if r, ok := l.call(s.fn, v); ok && !panicked {
			first, panicked = r, true
		}
	}
	if panicked && l.opts.policy == PanicRethrow {
		panic(first)
	}
}

// runOne calls fn once under the panic policy.
func (l *subscriberList[T]) runOne(fn func(T), v T) {
	if r, ok := l.call(fn, v); ok && l.opts.policy == PanicRethrow {
		panic(r)
	}
}

func (l *subscriberList[T]) call(fn func(T), v T) (recovered any, panicked bool) {
	defer func() {
		if r := recover(); r != nil {
			recovered, panicked = r, true
			l.opts.logger.Error("reactive: subscriber panicked",
				"cell", l.label(),
				"panic", fmt.Sprint(r),
				"policy", l.opts.policy.String())
		}
	}()
	fn(v)
	return nil, false
}

func (l *subscriberList[T]) label() string {
	if l.opts.name != "" {
		return l.opts.name
	}
	return fmt.Sprintf("cell#%d", l.id)
}

// Cell is an observable value. It is safe for concurrent use; subscribers
// run on the goroutine that calls Set.
type Cell[T any] struct {
	subs subscriberList[T]

	mu    sync.RWMutex
	value T

	// equal decides whether Set changes the value. Nil uses defaultEquals.
	equal func(T, T) bool
}

// New creates a cell holding initial.
func New[T any](initial T, opts ...Option) *Cell[T] {
	return &Cell[T]{
		subs:  subscriberList[T]{id: cellIDs.Add(1), opts: applyOptions(opts)},
		value: initial,
	}
}

// Get returns the current value.
func (c *Cell[T]) Get() T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value
}

// Peek returns the current value. It is the same as Get; cells do not track
// readers.
func (c *Cell[T]) Peek() T { return c.Get() }

// Value returns the current value as any.
func (c *Cell[T]) Value() any { return c.Get() }

// Set stores value and notifies subscribers if it changed.
func (c *Cell[T]) Set(value T) {
	c.mu.Lock()
	changed := !c.equals(c.value, value)
	if changed {
		c.value = value
	}
	c.mu.Unlock()

	if changed {
		c.subs.notify(value)
	}
}

// Update sets the value to fn(current).
func (c *Cell[T]) Update(fn func(T) T) {
	c.mu.Lock()
	old := c.value
	value := fn(old)
	changed := !c.equals(old, value)
	if changed {
		c.value = value
	}
	c.mu.Unlock()

	if changed {
		c.subs.notify(value)
	}
}

// Subscribe registers fn. With runImmediately, fn is first called
// synchronously with the current value. The returned function removes fn and
// may be called more than once.
func (c *Cell[T]) Subscribe(fn func(T), runImmediately bool) func() {
	unsubscribe := c.subs.add(fn)
	if runImmediately {
		c.subs.runOne(fn, c.Get())
	}
	return unsubscribe
}

// SubscribeAny implements Source.
func (c *Cell[T]) SubscribeAny(fn func(any), runImmediately bool) func() {
	return c.Subscribe(func(v T) { fn(v) }, runImmediately)
}

// Subscribers returns the number of current subscribers.
func (c *Cell[T]) Subscribers() int { return c.subs.len() }

// WithEquals sets the equality used by Set and returns c.
func (c *Cell[T]) WithEquals(fn func(T, T) bool) *Cell[T] {
	c.equal = fn
	return c
}

// ID returns the cell's process-unique identifier.
func (c *Cell[T]) ID() uint64 { return c.subs.id }

func (c *Cell[T]) equals(a, b T) bool {
	if c.equal != nil {
		return c.equal(a, b)
	}
	return defaultEquals(a, b)
}

// defaultEquals uses == for basic types and reflect.DeepEqual otherwise.
// With T = any the two values may hold different dynamic types.
func defaultEquals[T any](a, b T) bool {
	switch av := any(a).(type) {
	case int:
		bv, ok := any(b).(int)
		return ok && av == bv
	case int64:
		bv, ok := any(b).(int64)
		return ok && av == bv
	case uint:
		bv, ok := any(b).(uint)
		return ok && av == bv
	case float32:
		bv, ok := any(b).(float32)
		return ok && av == bv
	case float64:
		bv, ok := any(b).(float64)
		return ok && av == bv
	case string:
		bv, ok := any(b).(string)
		return ok && av == bv
	case bool:
		bv, ok := any(b).(bool)
		return ok && av == bv
	default:
		return reflect.DeepEqual(a, b)
	}
}
