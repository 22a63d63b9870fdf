package dom

// Event is dispatched to listeners by DispatchEvent.
type Event struct {
	Type    string
	Bubbles bool
	Detail  any

	Target        *Node
	CurrentTarget *Node

	stopped   bool
	prevented bool
}

// NewEvent creates an event of the given type.
func NewEvent(typ string, bubbles bool) *Event {
	return &Event{Type: typ, Bubbles: bubbles}
}

// StopPropagation prevents the event from reaching further ancestors.
func (e *Event) StopPropagation() { e.stopped = true }

// PreventDefault marks the event as canceled.
func (e *Event) PreventDefault() { e.prevented = true }

// DefaultPrevented reports whether PreventDefault was called.
func (e *Event) DefaultPrevented() bool { return e.prevented }

// Listener handles an event.
type Listener func(*Event)

type listenerEntry struct {
	fn Listener
}

// AddEventListener registers fn for events of type typ and returns a
// function that removes it.
func (n *Node) AddEventListener(typ string, fn Listener) func() {
	if n.listeners == nil {
		n.listeners = make(map[string][]*listenerEntry)
	}
	entry := &listenerEntry{fn: fn}
	n.listeners[typ] = append(n.listeners[typ], entry)
	return func() {
		list := n.listeners[typ]
		for i, e := range list {
			if e == entry {
				n.listeners[typ] = append(list[:i:i], list[i+1:]...)
				return
			}
		}
	}
}

// ListenerCount returns the number of listeners registered for typ.
func (n *Node) ListenerCount(typ string) int {
	return len(n.listeners[typ])
}

// DispatchEvent delivers e to n and, when e.Bubbles is set, to each
// ancestor in turn. It returns false if a listener called PreventDefault.
func (n *Node) DispatchEvent(e *Event) bool {
	e.Target = n
	for cur := n; cur != nil; cur = cur.ParentNode() {
		e.CurrentTarget = cur
		list := append([]*listenerEntry(nil), cur.listeners[e.Type]...)
		for _, l := range list {
			l.fn(e)
		}
		if e.stopped || !e.Bubbles {
			break
		}
	}
	e.CurrentTarget = nil
	return !e.prevented
}
