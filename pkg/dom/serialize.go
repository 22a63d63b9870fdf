package dom

import (
	"strings"

	"golang.org/x/net/html"
)

// OuterHTML serializes n and its subtree.
func (n *Node) OuterHTML() string {
	var b strings.Builder
	if n.h.Type == html.DocumentNode {
		for c := n.h.FirstChild; c != nil; c = c.NextSibling {
			renderNode(&b, c)
		}
		return b.String()
	}
	renderNode(&b, n.h)
	return b.String()
}

// InnerHTML serializes n's children.
func (n *Node) InnerHTML() string {
	var b strings.Builder
	for c := n.h.FirstChild; c != nil; c = c.NextSibling {
		renderNode(&b, c)
	}
	return b.String()
}

// renderNode writes one subtree. html.Render refuses void elements with
// children; those are written without their children.
func renderNode(b *strings.Builder, h *html.Node) {
	if err := html.Render(b, h); err != nil {
		shallow := &html.Node{Type: h.Type, Data: h.Data, Namespace: h.Namespace, Attr: h.Attr}
		_ = html.Render(b, shallow)
	}
}
