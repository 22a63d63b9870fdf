package dom

import (
	"strings"

	"golang.org/x/net/html"
)

// Namespace URIs.
const (
	HTMLNamespace   = "http://www.w3.org/1999/xhtml"
	SVGNamespace    = "http://www.w3.org/2000/svg"
	MathMLNamespace = "http://www.w3.org/1998/Math/MathML"
)

// AdoptPolicy selects how Document.AdoptNode behaves.
type AdoptPolicy uint8

const (
	// AdoptNative moves nodes between documents like a browser does.
	AdoptNative AdoptPolicy = iota
	// AdoptUnavailable behaves as if the host had no adoptNode at all.
	AdoptUnavailable
	// AdoptRejected has adoptNode present but failing for every node.
	AdoptRejected
)

// String returns the policy name.
func (p AdoptPolicy) String() string {
	switch p {
	case AdoptNative:
		return "native"
	case AdoptUnavailable:
		return "unavailable"
	case AdoptRejected:
		return "reject"
	default:
		return "unknown"
	}
}

// ParseAdoptPolicy returns the policy named by s, as printed by String.
func ParseAdoptPolicy(s string) (AdoptPolicy, error) {
	switch s {
	case "", "native":
		return AdoptNative, nil
	case "unavailable":
		return AdoptUnavailable, nil
	case "reject":
		return AdoptRejected, nil
	}
	return AdoptNative, newError(ErrSyntax, "unknown adopt policy "+quote(s))
}

// Options configures a Document.
type Options struct {
	// Name labels the document in logs and errors.
	Name string

	// Adopt selects the AdoptNode behavior.
	Adopt AdoptPolicy

	// StrictAppend makes insertion of a node owned by another document fail
	// with ErrWrongDocument instead of adopting it implicitly.
	StrictAppend bool

	// NoImport makes ImportNode fail with ErrNotSupported.
	NoImport bool
}

// Option configures a Document.
type Option func(*Options)

// WithName sets the document name.
func WithName(name string) Option {
	return func(o *Options) { o.Name = name }
}

// WithAdoptPolicy sets the AdoptNode behavior.
func WithAdoptPolicy(p AdoptPolicy) Option {
	return func(o *Options) { o.Adopt = p }
}

// WithStrictAppend makes cross-document insertion fail.
func WithStrictAppend() Option {
	return func(o *Options) { o.StrictAppend = true }
}

// WithoutImport makes ImportNode fail.
func WithoutImport() Option {
	return func(o *Options) { o.NoImport = true }
}

// Document owns a tree of nodes.
type Document struct {
	opts Options

	root *Node
	html *Node
	head *Node
	body *Node

	// nodes maps storage nodes to the wrappers owned by this document.
	nodes map[*html.Node]*Node
}

// NewDocument creates a document with an html/head/body skeleton.
func NewDocument(opts ...Option) *Document {
	d := &Document{nodes: make(map[*html.Node]*Node)}
	for _, opt := range opts {
		opt(&d.opts)
	}
	if d.opts.Name == "" {
		d.opts.Name = "document"
	}

	d.root = d.register(&html.Node{Type: html.DocumentNode})
	d.html = d.newElement("", "html")
	d.head = d.newElement("", "head")
	d.body = d.newElement("", "body")
	d.root.h.AppendChild(d.html.h)
	d.html.h.AppendChild(d.head.h)
	d.html.h.AppendChild(d.body.h)
	return d
}

// Name returns the document name.
func (d *Document) Name() string { return d.opts.Name }

// Options returns the options the document was created with.
func (d *Document) Options() Options { return d.opts }

// Node returns the document node itself.
func (d *Document) Node() *Node { return d.root }

// DocumentElement returns the <html> element.
func (d *Document) DocumentElement() *Node { return d.html }

// Head returns the <head> element.
func (d *Document) Head() *Node { return d.head }

// Body returns the <body> element.
func (d *Document) Body() *Node { return d.body }

// CreateElement creates an HTML element. The tag is lowercased.
func (d *Document) CreateElement(tag string) (*Node, error) {
	if !validName(tag) {
		return nil, newError(ErrInvalidCharacter, "invalid tag name "+quote(tag))
	}
	return d.newElement("", strings.ToLower(tag)), nil
}

// CreateElementNS creates an element in the given namespace. An empty
// namespace or the XHTML namespace creates an HTML element.
func (d *Document) CreateElementNS(namespace, qualifiedName string) (*Node, error) {
	if !validName(qualifiedName) {
		return nil, newError(ErrInvalidCharacter, "invalid qualified name "+quote(qualifiedName))
	}
	ns := storageNamespace(namespace)
	name := qualifiedName
	if ns == "" {
		name = strings.ToLower(name)
	}
	return d.newElement(ns, name), nil
}

// CreateTextNode creates a text node.
func (d *Document) CreateTextNode(data string) *Node {
	return d.register(&html.Node{Type: html.TextNode, Data: data})
}

// CreateComment creates a comment node.
func (d *Document) CreateComment(data string) *Node {
	return d.register(&html.Node{Type: html.CommentNode, Data: data})
}

// AdoptNode moves n, with its subtree, into this document and detaches it
// from its parent. Listeners and properties travel with the node.
func (d *Document) AdoptNode(n *Node) (*Node, error) {
	switch d.opts.Adopt {
	case AdoptUnavailable:
		return nil, newError(ErrNotSupported, "adoptNode is not available in "+d.opts.Name)
	case AdoptRejected:
		return nil, newError(ErrInvalidState, d.opts.Name+" refused to adopt "+n.NodeName())
	}
	if n == nil {
		return nil, newError(ErrTypeError, "adoptNode called with nil")
	}
	if n.h.Type == html.DocumentNode {
		return nil, newError(ErrNotSupported, "cannot adopt a document")
	}
	n.detach()
	d.adopt(n)
	return n, nil
}

// ImportNode returns a copy of n owned by this document. With deep set the
// copy includes all descendants. Listeners are not copied.
func (d *Document) ImportNode(n *Node, deep bool) (*Node, error) {
	if d.opts.NoImport {
		return nil, newError(ErrNotSupported, "importNode is not available in "+d.opts.Name)
	}
	if n == nil {
		return nil, newError(ErrTypeError, "importNode called with nil")
	}
	if n.h.Type == html.DocumentNode {
		return nil, newError(ErrNotSupported, "cannot import a document")
	}
	return d.copyNode(n, deep), nil
}

// GetElementByID returns the first element in the document with the id.
func (d *Document) GetElementByID(id string) *Node {
	return d.root.ElementByID(id)
}

// QuerySelector returns the first element in the document matching sel.
func (d *Document) QuerySelector(sel string) (*Node, error) {
	return d.root.QuerySelector(sel)
}

// QuerySelectorAll returns all elements in the document matching sel.
func (d *Document) QuerySelectorAll(sel string) ([]*Node, error) {
	return d.root.QuerySelectorAll(sel)
}

func (d *Document) newElement(ns, name string) *Node {
	return d.register(&html.Node{Type: html.ElementNode, Namespace: ns, Data: name})
}

func (d *Document) register(h *html.Node) *Node {
	n := &Node{h: h, doc: d}
	d.nodes[h] = n
	return n
}

// wrap returns the wrapper for a storage node owned by this document.
func (d *Document) wrap(h *html.Node) *Node {
	if h == nil {
		return nil
	}
	if n, ok := d.nodes[h]; ok {
		return n
	}
	// Storage nodes are only ever created through register; this keeps
	// wrappers unique if an outside caller stitched one in.
	return d.register(h)
}

// adopt moves the registry entries of n's subtree into d.
func (d *Document) adopt(n *Node) {
	if n.doc == d {
		return
	}
	old := n.doc
	var walk func(h *html.Node)
	walk = func(h *html.Node) {
		w := old.wrap(h)
		delete(old.nodes, h)
		w.doc = d
		d.nodes[h] = w
		for c := h.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n.h)
}

// copyNode clones n into d, copying attributes and, when deep, children.
func (d *Document) copyNode(n *Node, deep bool) *Node {
	h := &html.Node{
		Type:      n.h.Type,
		Namespace: n.h.Namespace,
		Data:      n.h.Data,
		DataAtom:  n.h.DataAtom,
	}
	if len(n.h.Attr) > 0 {
		h.Attr = make([]html.Attribute, len(n.h.Attr))
		copy(h.Attr, n.h.Attr)
	}
	c := d.register(h)
	if deep {
		for child := n.h.FirstChild; child != nil; child = child.NextSibling {
			cc := d.copyNode(n.doc.wrap(child), true)
			h.AppendChild(cc.h)
		}
	}
	return c
}

// storageNamespace maps a namespace URI to the x/net/html Namespace value.
func storageNamespace(uri string) string {
	switch uri {
	case "", HTMLNamespace:
		return ""
	case SVGNamespace:
		return "svg"
	case MathMLNamespace:
		return "math"
	default:
		return uri
	}
}

// namespaceURI maps an x/net/html Namespace value to its URI.
func namespaceURI(ns string) string {
	switch ns {
	case "":
		return HTMLNamespace
	case "svg":
		return SVGNamespace
	case "math":
		return MathMLNamespace
	default:
		return ns
	}
}

// validName reports whether s can be used as a tag or attribute name.
func validName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\f':
			return false
		case r == '"' || r == '\'' || r == '>' || r == '<' || r == '/' || r == '=':
			return false
		case i == 0 && (r == '-' || r == '.' || (r >= '0' && r <= '9')):
			return false
		}
	}
	return true
}

func quote(s string) string {
	return `"` + s + `"`
}
