package reactive

import "sync"

// Derived is a read-only cell computed from another observable.
type Derived[T any] struct {
	subs subscriberList[T]

	mu    sync.RWMutex
	value T

	stop func()
}

// Map returns a Derived whose value is fn applied to src's value. It
// recomputes on every change of src and notifies its own subscribers when the
// result differs. Derived values chain: Map(Map(c, f), g).
func Map[T, U any](src Readable[T], fn func(T) U, opts ...Option) *Derived[U] {
	d := &Derived[U]{
		subs: subscriberList[U]{id: cellIDs.Add(1), opts: applyOptions(opts)},
	}
	first := true
	d.stop = src.Subscribe(func(v T) {
		next := fn(v)
		d.mu.Lock()
		changed := first || !defaultEquals(d.value, next)
		first = false
		d.value = next
		d.mu.Unlock()
		if changed {
			d.subs.notify(next)
		}
	}, true)
	return d
}

// Get returns the current derived value.
func (d *Derived[T]) Get() T {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.value
}

// Value returns the current value as any.
func (d *Derived[T]) Value() any { return d.Get() }

// Subscribe registers fn; see Cell.Subscribe.
func (d *Derived[T]) Subscribe(fn func(T), runImmediately bool) func() {
	unsubscribe := d.subs.add(fn)
	if runImmediately {
		d.subs.runOne(fn, d.Get())
	}
	return unsubscribe
}

// SubscribeAny implements Source.
func (d *Derived[T]) SubscribeAny(fn func(any), runImmediately bool) func() {
	return d.Subscribe(func(v T) { fn(v) }, runImmediately)
}

// Subscribers returns the number of current subscribers.
func (d *Derived[T]) Subscribers() int { return d.subs.len() }

// Close detaches d from its source. The last value stays readable.
func (d *Derived[T]) Close() {
	if d.stop != nil {
		d.stop()
	}
}
