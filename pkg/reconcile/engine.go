package reconcile

import (
	"log/slog"

	"github.com/vango-dev/gaugekit/pkg/dom"
	"github.com/vango-dev/gaugekit/pkg/vdom"
)

// Engine reconciles reference handles after mount. An Engine keeps no
// state between calls and may be shared.
type Engine struct {
	logger  *slog.Logger
	observe func(Resolution)
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithObserver registers fn to receive every resolution as it is made final.
func WithObserver(fn func(Resolution)) Option {
	return func(e *Engine) { e.observe = fn }
}

// New creates an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	return e
}

// Reconcile runs with a default Engine.
func Reconcile(tree *vdom.VNode, container *dom.Node, sites []Site) Report {
	return New().Reconcile(tree, container, sites)
}

// pass holds the state of one Reconcile call.
type pass struct {
	container *dom.Node
	sites     []Site

	// claimed maps a node to the handle bound to it.
	claimed  map[*dom.Node]*vdom.Ref
	strategy map[*vdom.Ref]Strategy
	pending  map[*vdom.Ref]bool
	spare    *vdom.RefArena
}

// Reconcile binds every handle in sites to a node inside container. The
// sites must come from Collect on the same tree before it was mounted.
func (e *Engine) Reconcile(tree *vdom.VNode, container *dom.Node, sites []Site) Report {
	p := &pass{
		container: container,
		sites:     sites,
		claimed:   make(map[*dom.Node]*vdom.Ref),
		strategy:  make(map[*vdom.Ref]Strategy),
		pending:   make(map[*vdom.Ref]bool),
	}
	if container == nil {
		return p.finish(e)
	}

	for _, s := range sites {
		if s.Ref == nil || s.VNode == nil {
			continue
		}
		p.direct(s)
	}
	if len(p.pending) > 0 {
		if root := vdom.Host(tree); root != nil && root.MountedNode != nil {
			p.walk(tree, root.MountedNode)
		}
	}
	return p.finish(e)
}

// direct runs the Phase 1 strategies for one site.
func (p *pass) direct(s Site) {
	ref, v := s.Ref, s.VNode

	if n := ref.Node(); n != nil && n != p.container && p.container.Contains(n) {
		if _, taken := p.claimed[n]; !taken {
			p.claimed[n] = ref
		}
		p.strategy[ref] = Fast
		return
	}
	if n := p.byID(v, p.container, ref); n != nil {
		p.bind(ref, n, ByID)
		return
	}
	if n := p.byData(v, p.container, ref); n != nil {
		p.bind(ref, n, ByData)
		return
	}
	if n := p.byClass(v, p.container, ref); n != nil {
		p.bind(ref, n, ByClass)
		return
	}
	p.pending[ref] = true
}

// walk is the Phase 2 structural pass over v and its mounted node n.
func (p *pass) walk(v *vdom.VNode, n *dom.Node) {
	v = vdom.Host(v)
	if v == nil || n == nil || v.Kind != vdom.KindElement {
		return
	}

	if ref := v.Props.Ref(); ref != nil && p.pending[ref] {
		if tagMatches(n, v.Tag) && !p.takenByOther(n, ref) {
			p.bind(ref, n, Structural)
		}
		if id := v.Props.ID(); id != "" && n.ID() != id {
			if better := lookupID(n, id); better != nil && better != n &&
				tagMatches(better, v.Tag) && !p.takenByOther(better, ref) {
				p.bind(ref, better, Structural)
			}
		}
	}

	elems := n.Children()
	cursor := 0
	for _, c := range v.Children {
		child := vdom.Host(c)
		if child == nil || child.Kind == vdom.KindText {
			continue
		}
		if child.Kind == vdom.KindDOM {
			if cursor < len(elems) && child.MountedNode != nil && child.MountedNode.IsElement() {
				cursor++
			}
			continue
		}

		ref := child.Props.Ref()
		match := p.positional(child, ref, elems, cursor)
		if match == nil {
			match = p.byID(child, p.container, ref)
		}
		if match == nil {
			match = p.byData(child, n, ref)
		}
		if match == nil {
			match = p.byClass(child, n, ref)
		}

		if match == nil {
			if cursor < len(elems) && tagMatches(elems[cursor], child.Tag) {
				cursor++
			}
			continue
		}
		p.walk(child, match)
		for i := cursor; i < len(elems); i++ {
			if elems[i] == match {
				cursor = i + 1
				break
			}
		}
	}
}

// positional returns the element at the cursor when its tag matches and,
// for a referenced VNode, no other handle holds it.
func (p *pass) positional(v *vdom.VNode, ref *vdom.Ref, elems []*dom.Node, cursor int) *dom.Node {
	if cursor >= len(elems) {
		return nil
	}
	n := elems[cursor]
	if !tagMatches(n, v.Tag) {
		return nil
	}
	if ref != nil && p.takenByOther(n, ref) {
		return nil
	}
	return n
}

// bind stores n in ref's arena slot and claims it, releasing any node the
// handle claimed before.
func (p *pass) bind(ref *vdom.Ref, n *dom.Node, s Strategy) {
	for node, holder := range p.claimed {
		if holder == ref {
			delete(p.claimed, node)
		}
	}
	p.claimed[n] = ref
	p.arena(ref).Set(ref, n)
	p.strategy[ref] = s
	delete(p.pending, ref)
}

func (p *pass) arena(ref *vdom.Ref) *vdom.RefArena {
	if a := ref.Arena(); a != nil {
		return a
	}
	if p.spare == nil {
		p.spare = vdom.NewRefArena()
	}
	return p.spare
}

// takenByOther reports whether n is claimed in this pass, or currently held,
// by a handle other than ref.
func (p *pass) takenByOther(n *dom.Node, ref *vdom.Ref) bool {
	if holder, ok := p.claimed[n]; ok && holder != ref {
		return true
	}
	for _, s := range p.sites {
		if s.Ref != nil && s.Ref != ref && s.Ref.Node() == n {
			return true
		}
	}
	return false
}

// finish clears stale handles and builds the report.
func (p *pass) finish(e *Engine) Report {
	var r Report
	for _, s := range p.sites {
		if s.Ref == nil || s.VNode == nil {
			continue
		}
		res := Resolution{Ref: s.Ref, Tag: s.VNode.Tag, Strategy: p.strategy[s.Ref]}
		if res.Strategy == Unresolved {
			if n := s.Ref.Node(); n != nil && (p.container == nil || !p.container.Contains(n)) {
				p.arena(s.Ref).Clear(s.Ref)
				res.Cleared = true
			}
			e.logger.Warn("reference unresolved",
				"ref", res.Label(),
				"id", s.VNode.Props.ID(),
				"cleared", res.Cleared)
		} else {
			e.logger.Debug("reference resolved", "ref", res.Label(), "strategy", res.Strategy.String())
		}
		res.Node = s.Ref.Node()
		r.Resolutions = append(r.Resolutions, res)
		if e.observe != nil {
			e.observe(res)
		}
	}
	return r
}
