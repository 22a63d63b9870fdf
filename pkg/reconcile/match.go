package reconcile

import (
	"strings"

	"github.com/vango-dev/gaugekit/pkg/dom"
	"github.com/vango-dev/gaugekit/pkg/reactive"
	"github.com/vango-dev/gaugekit/pkg/vdom"
)

// byID looks up v's id within scope. The tag must match and the node must
// not be held by another handle.
func (p *pass) byID(v *vdom.VNode, scope *dom.Node, ref *vdom.Ref) *dom.Node {
	id := v.Props.ID()
	if id == "" {
		return nil
	}
	n := lookupID(scope, id)
	if n == nil || !tagMatches(n, v.Tag) || p.takenByOther(n, ref) {
		return nil
	}
	return n
}

// byData matches every data-* attribute v declares with one selector and
// returns the first candidate in scope that is free.
func (p *pass) byData(v *vdom.VNode, scope *dom.Node, ref *vdom.Ref) *dom.Node {
	sel := dataSelector(v)
	if sel == "" {
		return nil
	}
	for _, c := range p.candidates(scope, sel) {
		if tagMatches(c, v.Tag) && p.container.Contains(c) && !p.takenByOther(c, ref) {
			return c
		}
	}
	return nil
}

// byClass selects on the first class token and returns the earliest free
// candidate carrying every declared token.
func (p *pass) byClass(v *vdom.VNode, scope *dom.Node, ref *vdom.Ref) *dom.Node {
	tokens := v.Props.ClassTokens()
	if len(tokens) == 0 {
		return nil
	}
	sel := tagSelector(v.Tag) + "." + dom.EscapeIdent(tokens[0])
	for _, c := range p.candidates(scope, sel) {
		if !tagMatches(c, v.Tag) || !p.container.Contains(c) || p.takenByOther(c, ref) {
			continue
		}
		if len(tokens) > 1 && !hasTokens(c, tokens) {
			continue
		}
		return c
	}
	return nil
}

// candidates returns the descendants of scope matching sel in document
// order. Scope itself is never a candidate.
func (p *pass) candidates(scope *dom.Node, sel string) []*dom.Node {
	found, err := scope.QuerySelectorAll(sel)
	if err != nil {
		return nil
	}
	return found
}

// dataSelector builds a compound selector from v's tag and data-*
// attributes, or returns "" when v declares none.
func dataSelector(v *vdom.VNode) string {
	var b strings.Builder
	for _, d := range v.Props.Data() {
		val := d.Value
		if src, ok := val.(reactive.Source); ok {
			val = src.Value()
		}
		if val == nil {
			continue
		}
		b.WriteByte('[')
		b.WriteString(dom.EscapeIdent(d.Name))
		b.WriteByte('=')
		b.WriteString(dom.QuoteString(dom.FormatValue(val)))
		b.WriteByte(']')
	}
	if b.Len() == 0 {
		return ""
	}
	return tagSelector(v.Tag) + b.String()
}

// tagSelector returns a type selector for tag. Selectors are matched
// against lowercase names, so mixed-case SVG tags such as clipPath are left
// out and checked by tagMatches instead.
func tagSelector(tag string) string {
	if tag == "" || tag != strings.ToLower(tag) {
		return ""
	}
	return dom.EscapeIdent(tag)
}

// lookupID returns the first descendant of scope with the id.
func lookupID(scope *dom.Node, id string) *dom.Node {
	return scope.ElementByID(id)
}

func tagMatches(n *dom.Node, tag string) bool {
	if !n.IsElement() {
		return false
	}
	return tag == "" || n.HasTag(tag)
}

func hasTokens(n *dom.Node, tokens []string) bool {
	list := n.ClassList()
	for _, t := range tokens {
		if !list.Contains(t) {
			return false
		}
	}
	return true
}
