package vdom

import (
	"sync"

	"github.com/vango-dev/gaugekit/pkg/dom"
)

// Ref is a reference handle. A component creates it once, keeps it in a
// field and attaches it to a VNode with UseRef. When the tree is built the
// handle is registered in the build's RefArena, which holds the resolved
// value; the handle itself is only an index.
type Ref struct {
	name  string
	arena *RefArena
	slot  int
}

// NewRef creates an unattached reference handle.
func NewRef() *Ref { return &Ref{slot: -1} }

// NewNamedRef creates a handle with a label for reports and logs.
func NewNamedRef(name string) *Ref { return &Ref{name: name, slot: -1} }

// Name returns the handle's label.
func (r *Ref) Name() string {
	if r == nil {
		return ""
	}
	return r.name
}

// Arena returns the arena the handle is registered in, or nil.
func (r *Ref) Arena() *RefArena {
	if r == nil {
		return nil
	}
	return r.arena
}

// Current returns the resolved value: a *dom.Node, a Component, or nil.
func (r *Ref) Current() any {
	if r == nil || r.arena == nil {
		return nil
	}
	return r.arena.get(r.slot)
}

// Node returns the resolved DOM node, or nil when unresolved or bound to a
// component.
func (r *Ref) Node() *dom.Node {
	n, _ := r.Current().(*dom.Node)
	return n
}

// Component returns the resolved component, or nil.
func (r *Ref) Component() Component {
	c, _ := r.Current().(Component)
	return c
}

// IsSet reports whether the handle's arena slot holds a value.
func (r *Ref) IsSet() bool { return r.Current() != nil }

// RefArena holds the resolved values of every handle registered during one
// build. It is safe for concurrent use.
type RefArena struct {
	mu    sync.RWMutex
	refs  []*Ref
	slots []any
}

// NewRefArena creates an empty arena.
func NewRefArena() *RefArena { return &RefArena{} }

// Register adds r to the arena if it is not already there. A handle moved
// from another arena starts unset.
func (a *RefArena) Register(r *Ref) {
	if r == nil {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if r.arena == a {
		return
	}
	r.arena = a
	r.slot = len(a.slots)
	a.refs = append(a.refs, r)
	a.slots = append(a.slots, nil)
}

// Set registers r if needed and stores v in its slot.
func (a *RefArena) Set(r *Ref, v any) {
	if r == nil {
		return
	}
	a.Register(r)
	a.mu.Lock()
	a.slots[r.slot] = v
	a.mu.Unlock()
}

// Clear empties r's slot.
func (a *RefArena) Clear(r *Ref) {
	if r == nil || r.arena != a {
		return
	}
	a.mu.Lock()
	a.slots[r.slot] = nil
	a.mu.Unlock()
}

// Refs returns the registered handles in registration order.
func (a *RefArena) Refs() []*Ref {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]*Ref, len(a.refs))
	copy(out, a.refs)
	return out
}

// Len returns the number of registered handles.
func (a *RefArena) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.refs)
}

// Holder returns the handle other than except whose slot holds v, or nil.
func (a *RefArena) Holder(v any, except *Ref) *Ref {
	if v == nil {
		return nil
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	for i, s := range a.slots {
		if s == v && a.refs[i] != except {
			return a.refs[i]
		}
	}
	return nil
}

func (a *RefArena) get(slot int) any {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if slot < 0 || slot >= len(a.slots) {
		return nil
	}
	return a.slots[slot]
}
