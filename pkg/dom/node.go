package dom

import (
	"strings"

	"golang.org/x/net/html"
)

// NodeType mirrors the DOM nodeType constants.
type NodeType uint8

const (
	ElementNode  NodeType = 1
	TextNode     NodeType = 3
	CommentNode  NodeType = 8
	DocumentNode NodeType = 9
)

// Node is a DOM node. Pointer identity is node identity: the same storage
// node is always represented by the same *Node.
type Node struct {
	h   *html.Node
	doc *Document

	props     map[string]any
	listeners map[string][]*listenerEntry
}

// HTML returns the underlying storage node.
func (n *Node) HTML() *html.Node { return n.h }

// NodeType returns the DOM node type.
func (n *Node) NodeType() NodeType {
	switch n.h.Type {
	case html.ElementNode:
		return ElementNode
	case html.TextNode:
		return TextNode
	case html.CommentNode:
		return CommentNode
	case html.DocumentNode:
		return DocumentNode
	default:
		return 0
	}
}

// IsElement reports whether n is an element.
func (n *Node) IsElement() bool { return n != nil && n.h.Type == html.ElementNode }

// IsText reports whether n is a text node.
func (n *Node) IsText() bool { return n != nil && n.h.Type == html.TextNode }

// NodeName returns the DOM nodeName.
func (n *Node) NodeName() string {
	switch n.h.Type {
	case html.ElementNode:
		return n.TagName()
	case html.TextNode:
		return "#text"
	case html.CommentNode:
		return "#comment"
	case html.DocumentNode:
		return "#document"
	default:
		return ""
	}
}

// TagName returns the DOM tagName: uppercase for HTML elements, as created
// for every other namespace.
func (n *Node) TagName() string {
	if n.h.Type != html.ElementNode {
		return ""
	}
	if n.h.Namespace == "" {
		return strings.ToUpper(n.h.Data)
	}
	return n.h.Data
}

// LocalName returns the element's local name as created.
func (n *Node) LocalName() string {
	if n.h.Type != html.ElementNode {
		return ""
	}
	return n.h.Data
}

// NamespaceURI returns the element namespace URI, or "" for non-elements.
func (n *Node) NamespaceURI() string {
	if n.h.Type != html.ElementNode {
		return ""
	}
	return namespaceURI(n.h.Namespace)
}

// IsHTML reports whether n is an element in the HTML namespace.
func (n *Node) IsHTML() bool { return n.IsElement() && n.h.Namespace == "" }

// HasTag reports whether n is an element whose local name equals tag,
// ignoring ASCII case.
func (n *Node) HasTag(tag string) bool {
	return n.IsElement() && strings.EqualFold(n.h.Data, tag)
}

// OwnerDocument returns the document that owns n.
func (n *Node) OwnerDocument() *Document { return n.doc }

// ParentNode returns the parent, or nil.
func (n *Node) ParentNode() *Node { return n.doc.wrap(n.h.Parent) }

// ParentElement returns the parent if it is an element, or nil.
func (n *Node) ParentElement() *Node {
	p := n.ParentNode()
	if p == nil || !p.IsElement() {
		return nil
	}
	return p
}

// FirstChild returns the first child node, or nil.
func (n *Node) FirstChild() *Node { return n.doc.wrap(n.h.FirstChild) }

// LastChild returns the last child node, or nil.
func (n *Node) LastChild() *Node { return n.doc.wrap(n.h.LastChild) }

// NextSibling returns the next sibling, or nil.
func (n *Node) NextSibling() *Node { return n.doc.wrap(n.h.NextSibling) }

// PreviousSibling returns the previous sibling, or nil.
func (n *Node) PreviousSibling() *Node { return n.doc.wrap(n.h.PrevSibling) }

// ChildNodes returns all child nodes in order.
func (n *Node) ChildNodes() []*Node {
	var out []*Node
	for c := n.h.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, n.doc.wrap(c))
	}
	return out
}

// Children returns the element children in order.
func (n *Node) Children() []*Node {
	var out []*Node
	for c := n.h.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, n.doc.wrap(c))
		}
	}
	return out
}

// Contains reports whether other is n or a descendant of n.
func (n *Node) Contains(other *Node) bool {
	if n == nil || other == nil {
		return false
	}
	for h := other.h; h != nil; h = h.Parent {
		if h == n.h {
			return true
		}
	}
	return false
}

// AppendChild appends child as the last child of n, detaching it from its
// current parent first. It returns child.
func (n *Node) AppendChild(child *Node) (*Node, error) {
	return n.InsertBefore(child, nil)
}

// InsertBefore inserts child before ref. A nil ref appends.
func (n *Node) InsertBefore(child, ref *Node) (*Node, error) {
	if err := n.checkInsert(child); err != nil {
		return nil, err
	}
	if ref != nil && ref.h.Parent != n.h {
		return nil, newError(ErrNotFound, "reference node is not a child")
	}
	if ref == child {
		return child, nil
	}
	if child.doc != n.doc {
		n.doc.adopt(child)
	}
	child.detach()
	var refH *html.Node
	if ref != nil {
		refH = ref.h
	}
	n.h.InsertBefore(child.h, refH)
	return child, nil
}

// ReplaceChild replaces old with child and returns old.
func (n *Node) ReplaceChild(child, old *Node) (*Node, error) {
	if old == nil || old.h.Parent != n.h {
		return nil, newError(ErrNotFound, "node to replace is not a child")
	}
	if child == old {
		return old, nil
	}
	if err := n.checkInsert(child); err != nil {
		return nil, err
	}
	next := old.NextSibling()
	if next == child {
		next = child.NextSibling()
	}
	n.h.RemoveChild(old.h)
	if _, err := n.InsertBefore(child, next); err != nil {
		return nil, err
	}
	return old, nil
}

// RemoveChild removes child from n.
func (n *Node) RemoveChild(child *Node) (*Node, error) {
	if child == nil || child.h.Parent != n.h {
		return nil, newError(ErrNotFound, "node is not a child")
	}
	n.h.RemoveChild(child.h)
	return child, nil
}

// Remove detaches n from its parent, if any.
func (n *Node) Remove() { n.detach() }

func (n *Node) detach() {
	if n.h.Parent != nil {
		n.h.Parent.RemoveChild(n.h)
	}
}

func (n *Node) checkInsert(child *Node) error {
	if child == nil {
		return newError(ErrTypeError, "node is nil")
	}
	switch n.h.Type {
	case html.ElementNode, html.DocumentNode:
	default:
		return newError(ErrHierarchyRequest, n.NodeName()+" cannot have children")
	}
	if child.h.Type == html.DocumentNode {
		return newError(ErrHierarchyRequest, "a document cannot be inserted")
	}
	if child.Contains(n) {
		return newError(ErrHierarchyRequest, "the new child is an ancestor of the parent")
	}
	if child.doc != n.doc && n.doc.opts.StrictAppend {
		return newError(ErrWrongDocument, child.NodeName()+" is owned by "+child.doc.opts.Name+", not "+n.doc.opts.Name)
	}
	return nil
}

// CloneNode returns a copy of n in the same document. Listeners and
// properties are not copied.
func (n *Node) CloneNode(deep bool) *Node {
	return n.doc.copyNode(n, deep)
}

// TextContent returns the concatenated text of n and its descendants.
func (n *Node) TextContent() string {
	switch n.h.Type {
	case html.TextNode, html.CommentNode:
		return n.h.Data
	case html.DocumentNode:
		return ""
	}
	var b strings.Builder
	var walk func(h *html.Node)
	walk = func(h *html.Node) {
		for c := h.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode {
				b.WriteString(c.Data)
			} else if c.Type == html.ElementNode {
				walk(c)
			}
		}
	}
	walk(n.h)
	return b.String()
}

// SetTextContent replaces n's children with a single text node, or sets the
// data of a text or comment node.
func (n *Node) SetTextContent(s string) {
	switch n.h.Type {
	case html.TextNode, html.CommentNode:
		n.h.Data = s
		return
	case html.DocumentNode:
		return
	}
	for c := n.h.FirstChild; c != nil; {
		next := c.NextSibling
		n.h.RemoveChild(c)
		c = next
	}
	if s != "" {
		n.h.AppendChild(n.doc.CreateTextNode(s).h)
	}
}

// Data returns the character data of a text or comment node.
func (n *Node) Data() string {
	if n.h.Type == html.TextNode || n.h.Type == html.CommentNode {
		return n.h.Data
	}
	return ""
}

// SetData sets the character data of a text or comment node.
func (n *Node) SetData(s string) {
	if n.h.Type == html.TextNode || n.h.Type == html.CommentNode {
		n.h.Data = s
	}
}
