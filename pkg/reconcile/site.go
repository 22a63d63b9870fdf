package reconcile

import "github.com/vango-dev/gaugekit/pkg/vdom"

// Site is one reference handle and the VNode that declares it.
type Site struct {
	Ref   *vdom.Ref
	VNode *vdom.VNode
}

// Collect returns the reference sites of a built tree in pre-order. It must
// run before Mount, which may replace nodes. Component handles bind
// instances rather than nodes and are left out. A handle declared twice
// keeps its first site.
func Collect(tree *vdom.VNode) []Site {
	var sites []Site
	seen := make(map[*vdom.Ref]bool)
	vdom.Walk(tree, func(v *vdom.VNode) bool {
		if v.Kind != vdom.KindElement {
			return true
		}
		ref := v.Props.Ref()
		if ref == nil || seen[ref] {
			return true
		}
		seen[ref] = true
		sites = append(sites, Site{Ref: ref, VNode: v})
		return true
	})
	return sites
}
