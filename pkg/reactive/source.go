package reactive

// Source is a type-erased observable value.
type Source interface {
	// Value returns the current value.
	Value() any

	// SubscribeAny registers fn like Subscribe and returns the function that
	// removes it.
	SubscribeAny(fn func(any), runImmediately bool) (unsubscribe func())
}

// Readable is an observable value of a known type.
type Readable[T any] interface {
	Source
	Get() T
	Subscribe(fn func(T), runImmediately bool) (unsubscribe func())
}

// IsSource reports whether v is a Source.
func IsSource(v any) bool {
	_, ok := v.(Source)
	return ok
}

var (
	_ Readable[int] = (*Cell[int])(nil)
	_ Readable[int] = (*Derived[int])(nil)
)
