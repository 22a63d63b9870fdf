package vdom

import (
	"github.com/vango-dev/gaugekit/pkg/dom"
	"github.com/vango-dev/gaugekit/pkg/reactive"
)

// VKind is the node type discriminator.
type VKind uint8

const (
	KindElement   VKind = iota // <div>, <circle>, etc.
	KindText                   // Static or live text
	KindComponent              // Component instantiation
	KindDOM                    // Existing DOM node passed as a child
)

// String returns the string representation of the VKind.
func (k VKind) String() string {
	switch k {
	case KindElement:
		return "Element"
	case KindText:
		return "Text"
	case KindComponent:
		return "Component"
	case KindDOM:
		return "DOM"
	default:
		return "Unknown"
	}
}

// VNode describes one element, text node, component or existing DOM node.
type VNode struct {
	Kind     VKind
	Tag      string   // KindElement
	Props    Props    // Bindings in declaration order
	Children []*VNode // Normalized children
	Key      string   // Advisory only

	Text       string          // KindText
	TextSource reactive.Source // KindText, live text when non-nil

	Factory Factory   // KindComponent
	Node    *dom.Node // KindDOM

	// MountedNode is the DOM node currently representing this VNode. The
	// builder sets it and the mount engine replaces it when a node is
	// adopted or copied into the mount document.
	MountedNode *dom.Node

	// Instance and Rendered are set when a component VNode is built.
	Instance Component
	Rendered *VNode

	releases []func()
}

// OnRelease registers fn to run when the tree is released. The builder uses
// it for reactive subscriptions.
func (v *VNode) OnRelease(fn func()) {
	v.releases = append(v.releases, fn)
}

// Release runs and clears the release functions of every node in the tree,
// including rendered component output. It is safe to call more than once.
func Release(v *VNode) {
	Walk(v, func(n *VNode) bool {
		fns := n.releases
		n.releases = nil
		for _, fn := range fns {
			fn()
		}
		return true
	})
}

// Bound reports the number of pending release functions on v alone.
func (v *VNode) Bound() int { return len(v.releases) }

// Walk visits v and its descendants in pre-order. For component VNodes the
// rendered child is visited after the component itself. Returning false
// from fn skips the node's descendants.
func Walk(v *VNode, fn func(*VNode) bool) {
	if v == nil {
		return
	}
	if !fn(v) {
		return
	}
	if v.Kind == KindComponent {
		Walk(v.Rendered, fn)
		return
	}
	for _, c := range v.Children {
		Walk(c, fn)
	}
}

// Host returns the VNode that owns v's DOM node: v itself for elements, text
// and DOM nodes, the innermost rendered element for components.
func Host(v *VNode) *VNode {
	for v != nil && v.Kind == KindComponent {
		v = v.Rendered
	}
	return v
}

// IsLive reports whether v is a text node bound to a reactive source.
func (v *VNode) IsLive() bool {
	return v != nil && v.Kind == KindText && v.TextSource != nil
}
