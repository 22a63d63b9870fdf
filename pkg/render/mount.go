package render

import (
	"errors"
	"log/slog"

	gkerrors "github.com/vango-dev/gaugekit/internal/errors"
	"github.com/vango-dev/gaugekit/pkg/dom"
	"github.com/vango-dev/gaugekit/pkg/vdom"
)

// MountResult describes what Mount did.
type MountResult struct {
	// Root is the node appended to the container.
	Root *dom.Node

	// Strategy is how the root was made valid for the container's document.
	Strategy Strategy

	// AppendFallback is set when appending failed and the root was copied.
	AppendFallback bool

	// Repaired counts descendants the verification walk replaced.
	Repaired int

	// Restamped counts VNodes whose MountedNode changed during the re-stamp
	// walk.
	Restamped int
}

// Mounter attaches built trees to containers.
type Mounter struct {
	logger      *slog.Logger
	appendFirst bool

	// check repairs the appended root; tests replace it.
	check func(doc *dom.Document, root *dom.Node) (int, error)
}

// MountOption configures a Mounter.
type MountOption func(*Mounter)

// WithMountLogger sets the logger.
func WithMountLogger(l *slog.Logger) MountOption {
	return func(m *Mounter) { m.logger = l }
}

// WithAppendFirst makes Mount append the built root directly and only fall
// back to adoption or copying when the host rejects the append.
func WithAppendFirst() MountOption {
	return func(m *Mounter) { m.appendFirst = true }
}

// NewMounter creates a Mounter.
func NewMounter(opts ...MountOption) *Mounter {
	m := &Mounter{}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}
	m.check = m.verify
	return m
}

// Mount appends the built tree into container. Nodes owned by another
// document are adopted, imported or recreated; cross-document append
// failures take the same fallback. Afterwards every MountedNode in the tree
// refers to the node actually in the container.
func Mount(tree *vdom.VNode, container *dom.Node) (*MountResult, error) {
	return NewMounter().Mount(tree, container)
}

// Mount appends the built tree into container; see the package function.
func (m *Mounter) Mount(tree *vdom.VNode, container *dom.Node) (*MountResult, error) {
	if tree == nil || container == nil {
		return nil, gkerrors.New("E222").WithDetail("tree and container are required")
	}
	root := tree.MountedNode
	if root == nil {
		return nil, gkerrors.New("E222").WithDetail("the tree has not been built")
	}
	doc := container.OwnerDocument()
	res := &MountResult{}

	node, strategy, err := m.prepare(doc, root)
	if err != nil {
		return nil, err
	}
	res.Strategy = strategy

	if _, err := container.AppendChild(node); err != nil {
		if !errors.Is(err, dom.ErrWrongDocument) && !errors.Is(err, dom.ErrNotSupported) {
			return nil, domError(err, "appending to container")
		}
		m.logger.Debug("append rejected, copying node",
			"code", "E220",
			"node", node.NodeName(),
			"error", err)
		if node.OwnerDocument() == doc {
			return nil, domError(err, "appending to container")
		}
		copied, s, cerr := Transfer(doc, node, m.logger)
		if cerr != nil {
			return nil, cerr
		}
		if _, err := container.AppendChild(copied); err != nil {
			return nil, gkerrors.New("E221").WithDetail("copy could not be appended").Wrap(err)
		}
		node, res.Strategy, res.AppendFallback = copied, s, true
	}
	res.Root = node

	repaired, err := m.check(doc, node)
	if err != nil {
		node.Remove()
		return nil, err
	}
	res.Repaired = repaired
	res.Restamped = restamp(tree, node)
	return res, nil
}

// prepare returns the node to append. With appendFirst the root is used as
// is, leaving ownership to the host's append.
func (m *Mounter) prepare(doc *dom.Document, root *dom.Node) (*dom.Node, Strategy, error) {
	if m.appendFirst {
		return root, StrategyNone, nil
	}
	return Transfer(doc, root, m.logger)
}

// verify replaces every descendant of root still owned by another document.
func (m *Mounter) verify(doc *dom.Document, root *dom.Node) (int, error) {
	repaired := 0
	var walk func(n *dom.Node) error
	walk = func(n *dom.Node) error {
		for _, c := range n.ChildNodes() {
			if c.OwnerDocument() != doc {
				fixed, _, err := Transfer(doc, c, m.logger)
				if err != nil {
					return err
				}
				if _, err := n.ReplaceChild(fixed, c); err != nil {
					return domError(err, "replacing foreign descendant")
				}
				repaired++
				c = fixed
			}
			if err := walk(c); err != nil {
				return err
			}
		}
		return nil
	}
	return repaired, walk(root)
}

// restamp walks the tree top-down and points each VNode at the DOM node
// that now holds its position. Element children are matched against
// element children and text against text nodes, each with its own counter.
// Event listeners are re-attached to nodes that replaced the built ones.
func restamp(v *vdom.VNode, n *dom.Node) int {
	if v == nil || n == nil {
		return 0
	}
	changed := 0
	if v.Kind == vdom.KindComponent {
		if v.MountedNode != n {
			changed++
		}
		v.MountedNode = n
		return changed + restamp(v.Rendered, n)
	}
	if v.MountedNode != n {
		changed++
		v.MountedNode = n
		for _, p := range v.Props.Of(vdom.BindEvent) {
			if p.Handler != nil {
				n.AddEventListener(p.Name, p.Handler)
			}
		}
	}
	if v.Kind != vdom.KindElement {
		return changed
	}

	var elems, texts []*dom.Node
	for _, c := range n.ChildNodes() {
		switch c.NodeType() {
		case dom.ElementNode:
			elems = append(elems, c)
		case dom.TextNode:
			texts = append(texts, c)
		}
	}
	ei, ti := 0, 0
	for _, c := range v.Children {
		host := vdom.Host(c)
		if host == nil || host.MountedNode == nil {
			continue
		}
		if host.MountedNode.IsText() {
			if ti < len(texts) {
				changed += restamp(c, texts[ti])
				ti++
			}
			continue
		}
		if host.MountedNode.IsElement() && ei < len(elems) {
			changed += restamp(c, elems[ei])
			ei++
		}
	}
	return changed
}
