package harness

import (
	"log/slog"

	"github.com/vango-dev/gaugekit/pkg/dom"
	"github.com/vango-dev/gaugekit/pkg/reconcile"
	"github.com/vango-dev/gaugekit/pkg/render"
	"github.com/vango-dev/gaugekit/pkg/vdom"
)

// Mounted is a tree rendered into an Env.
type Mounted struct {
	// Tree is the rendered VNode tree. MountedNode fields refer to nodes in
	// the container.
	Tree *vdom.VNode

	// Root is the node appended to the container.
	Root *dom.Node

	// Mount describes how the tree was attached.
	Mount *render.MountResult

	// Report lists how each reference handle was resolved.
	Report reconcile.Report

	env       *Env
	destroyed bool
}

// HTML returns the mounted root's outer HTML.
func (m *Mounted) HTML() string { return m.Root.OuterHTML() }

// Query returns the first element under the root matching sel, or the root
// itself when it matches.
func (m *Mounted) Query(sel string) (*dom.Node, error) {
	ok, err := m.Root.Matches(sel)
	if err != nil {
		return nil, err
	}
	if ok {
		return m.Root, nil
	}
	return m.Root.QuerySelector(sel)
}

// Destroy calls Destroy on every component, children first, releases all
// reactive bindings and removes the root from the container. Calling it
// again does nothing.
func (m *Mounted) Destroy() {
	if m.destroyed {
		return
	}
	m.destroyed = true
	destroy(m.Tree)
	vdom.Release(m.Tree)
	if m.Root != nil {
		m.Root.Remove()
	}
}

// Destroyed reports whether Destroy has run.
func (m *Mounted) Destroyed() bool { return m.destroyed }

func destroy(v *vdom.VNode) {
	if v == nil {
		return
	}
	if v.Kind == vdom.KindComponent {
		destroy(v.Rendered)
		if d, ok := v.Instance.(vdom.Destroyer); ok {
			d.Destroy()
		}
		return
	}
	for _, c := range v.Children {
		destroy(c)
	}
}

func defaultLogger() *slog.Logger { return slog.Default() }
