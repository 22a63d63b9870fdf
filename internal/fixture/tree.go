package fixture

import (
	"strings"

	"github.com/vango-dev/gaugekit/pkg/vdom"
)

// Build converts the fixture tree into a VNode tree. The returned map holds
// a named handle for every declared ref.
func (f *Fixture) Build() (*vdom.VNode, map[string]*vdom.Ref) {
	refs := make(map[string]*vdom.Ref)
	return f.Tree.vnode(refs), refs
}

func (n *Node) vnode(refs map[string]*vdom.Ref) *vdom.VNode {
	if n.Tag == "" {
		return vdom.Text(n.Text)
	}

	var args []any
	if n.ID != "" {
		args = append(args, vdom.ID(n.ID))
	}
	if n.Class != "" {
		args = append(args, vdom.Class(strings.Fields(n.Class)...))
	}
	for _, k := range sortedKeys(n.Attrs) {
		args = append(args, vdom.Attr(k, n.Attrs[k]))
	}
	for _, k := range sortedKeys(n.Data) {
		args = append(args, vdom.Data(k, n.Data[k]))
	}
	for _, k := range sortedKeys(n.Style) {
		args = append(args, vdom.Style(k, n.Style[k]))
	}
	if n.Ref != "" {
		r := vdom.NewNamedRef(n.Ref)
		refs[n.Ref] = r
		args = append(args, vdom.UseRef(r))
	}
	for _, c := range n.Children {
		args = append(args, c.vnode(refs))
	}
	return vdom.H(n.Tag, args...)
}
