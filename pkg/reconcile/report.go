package reconcile

import (
	"fmt"
	"strings"

	"github.com/vango-dev/gaugekit/pkg/dom"
	"github.com/vango-dev/gaugekit/pkg/vdom"
)

// Strategy names how a handle was resolved.
type Strategy uint8

const (
	Unresolved Strategy = iota
	Fast
	ByID
	ByData
	ByClass
	Structural
)

// Strategies lists every strategy in report order.
var Strategies = []Strategy{Fast, ByID, ByData, ByClass, Structural, Unresolved}

func (s Strategy) String() string {
	switch s {
	case Fast:
		return "fast"
	case ByID:
		return "id"
	case ByData:
		return "data"
	case ByClass:
		return "class"
	case Structural:
		return "structural"
	default:
		return "unresolved"
	}
}

// Resolution is the outcome for one handle.
type Resolution struct {
	Ref      *vdom.Ref
	Tag      string
	Strategy Strategy

	// Node is the bound node, or nil.
	Node *dom.Node

	// Cleared is set when a stale value outside the container was dropped.
	Cleared bool
}

// Label returns the handle name, or the tag when the handle is unnamed.
func (r Resolution) Label() string {
	if name := r.Ref.Name(); name != "" {
		return name
	}
	return "<" + r.Tag + ">"
}

// Report lists resolutions in site order.
type Report struct {
	Resolutions []Resolution
}

// Count returns the number of handles resolved with s.
func (r Report) Count(s Strategy) int {
	n := 0
	for _, res := range r.Resolutions {
		if res.Strategy == s {
			n++
		}
	}
	return n
}

// Unresolved returns the handles no strategy could bind.
func (r Report) Unresolved() []Resolution {
	var out []Resolution
	for _, res := range r.Resolutions {
		if res.Strategy == Unresolved {
			out = append(out, res)
		}
	}
	return out
}

// Lookup returns the resolution for ref.
func (r Report) Lookup(ref *vdom.Ref) (Resolution, bool) {
	for _, res := range r.Resolutions {
		if res.Ref == ref {
			return res, true
		}
	}
	return Resolution{}, false
}

// OK reports whether every handle was resolved.
func (r Report) OK() bool { return r.Count(Unresolved) == 0 }

// String summarizes counts per strategy, e.g. "4 refs: 2 id, 2 data".
func (r Report) String() string {
	var parts []string
	for _, s := range Strategies {
		if n := r.Count(s); n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, s))
		}
	}
	head := fmt.Sprintf("%d refs", len(r.Resolutions))
	if len(parts) == 0 {
		return head
	}
	return head + ": " + strings.Join(parts, ", ")
}
