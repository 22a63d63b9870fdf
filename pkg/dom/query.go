package dom

import (
	"strconv"
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

func compile(sel string) (cascadia.SelectorGroup, error) {
	g, err := cascadia.ParseGroup(sel)
	if err != nil {
		return nil, newError(ErrSyntax, quote(sel)+" is not a valid selector: "+err.Error())
	}
	return g, nil
}

// QuerySelector returns the first descendant element matching sel in
// document order, or nil.
func (n *Node) QuerySelector(sel string) (*Node, error) {
	g, err := compile(sel)
	if err != nil {
		return nil, err
	}
	return n.doc.wrap(cascadia.Query(n.h, g)), nil
}

// QuerySelectorAll returns every descendant element matching sel in
// document order.
func (n *Node) QuerySelectorAll(sel string) ([]*Node, error) {
	g, err := compile(sel)
	if err != nil {
		return nil, err
	}
	hs := cascadia.QueryAll(n.h, g)
	out := make([]*Node, len(hs))
	for i, h := range hs {
		out[i] = n.doc.wrap(h)
	}
	return out, nil
}

// Matches reports whether n itself matches sel.
func (n *Node) Matches(sel string) (bool, error) {
	g, err := compile(sel)
	if err != nil {
		return false, err
	}
	return n.h.Type == html.ElementNode && g.Match(n.h), nil
}

// ElementByID returns the first descendant element whose id equals id.
func (n *Node) ElementByID(id string) *Node {
	if id == "" {
		return nil
	}
	var found *html.Node
	var walk func(h *html.Node) bool
	walk = func(h *html.Node) bool {
		for c := h.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			for _, a := range c.Attr {
				if a.Key == "id" && a.Val == id {
					found = c
					return true
				}
			}
			if walk(c) {
				return true
			}
		}
		return false
	}
	walk(n.h)
	return n.doc.wrap(found)
}

// QuoteString returns s as a double-quoted CSS string suitable for an
// attribute selector value.
func QuoteString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch {
		case r == '"' || r == '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		case r == 0:
			b.WriteRune('�')
		case r < 0x20 || r == 0x7f:
			b.WriteByte('\\')
			b.WriteString(strconv.FormatInt(int64(r), 16))
			b.WriteByte(' ')
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// EscapeIdent escapes s for use as a CSS identifier, such as a class name
// in a selector.
func EscapeIdent(s string) string {
	var b strings.Builder
	for i, r := range s {
		switch {
		case r == 0:
			b.WriteRune('�')
		case r < 0x20 || r == 0x7f:
			b.WriteByte('\\')
			b.WriteString(strconv.FormatInt(int64(r), 16))
			b.WriteByte(' ')
		case r >= '0' && r <= '9' && (i == 0 || (i == 1 && s[0] == '-')):
			b.WriteByte('\\')
			b.WriteString(strconv.FormatInt(int64(r), 16))
			b.WriteByte(' ')
		case r == '-' && i == 0 && len(s) == 1:
			b.WriteString(`\-`)
		case r >= 0x80 || r == '-' || r == '_' ||
			(r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
			b.WriteRune(r)
		default:
			b.WriteByte('\\')
			b.WriteRune(r)
		}
	}
	return b.String()
}
