package render

import (
	"log/slog"

	gkerrors "github.com/vango-dev/gaugekit/internal/errors"
	"github.com/vango-dev/gaugekit/pkg/dom"
)

// Strategy records how a node was made valid for a document.
type Strategy uint8

const (
	StrategyNone     Strategy = iota // already owned by the document
	StrategyAdopt                    // moved with AdoptNode, identity kept
	StrategyImport                   // deep copy with ImportNode
	StrategyRecreate                 // rebuilt node by node
)

// String returns the strategy name used in logs and metrics.
func (s Strategy) String() string {
	switch s {
	case StrategyNone:
		return "none"
	case StrategyAdopt:
		return "adopt"
	case StrategyImport:
		return "import"
	case StrategyRecreate:
		return "recreate"
	default:
		return "unknown"
	}
}

// Transfer returns a node owned by doc that is equivalent to n. It adopts n
// when the document allows it, and otherwise falls back to a deep import and
// then to recreating the subtree node by node. Only when every step fails is
// an E221 error returned.
func Transfer(doc *dom.Document, n *dom.Node, logger *slog.Logger) (*dom.Node, Strategy, error) {
	if n.OwnerDocument() == doc {
		return n, StrategyNone, nil
	}
	if logger == nil {
		logger = slog.Default()
	}

	adopted, err := doc.AdoptNode(n)
	if err == nil {
		return adopted, StrategyAdopt, nil
	}
	logger.Debug("adoption failed, copying node",
		"code", "E220",
		"node", n.NodeName(),
		"from", n.OwnerDocument().Name(),
		"to", doc.Name(),
		"error", err)

	return copyInto(doc, n, logger, err)
}

// copyInto produces a copy of n owned by doc, without trying adoption.
func copyInto(doc *dom.Document, n *dom.Node, logger *slog.Logger, cause error) (*dom.Node, Strategy, error) {
	imported, err := doc.ImportNode(n, true)
	if err == nil {
		return imported, StrategyImport, nil
	}
	logger.Debug("import failed, recreating node",
		"node", n.NodeName(),
		"to", doc.Name(),
		"error", err)

	rebuilt, rerr := recreate(doc, n)
	if rerr == nil {
		return rebuilt, StrategyRecreate, nil
	}
	detail := "no strategy could move " + n.NodeName() + " into " + doc.Name()
	if cause != nil {
		detail += " (first failure: " + cause.Error() + ")"
	}
	return nil, StrategyNone, gkerrors.New("E221").WithDetail(detail).Wrap(rerr)
}

// recreate rebuilds n in doc preserving tag, namespace, attributes and
// children.
func recreate(doc *dom.Document, n *dom.Node) (*dom.Node, error) {
	switch n.NodeType() {
	case dom.TextNode:
		return doc.CreateTextNode(n.Data()), nil
	case dom.CommentNode:
		return doc.CreateComment(n.Data()), nil
	case dom.ElementNode:
	default:
		return nil, domError(dom.ErrNotSupported, "cannot recreate "+n.NodeName())
	}

	el, err := doc.CreateElementNS(n.NamespaceURI(), n.LocalName())
	if err != nil {
		return nil, err
	}
	for _, a := range n.Attributes() {
		if err := el.SetAttribute(a.Name, a.Value); err != nil {
			return nil, err
		}
	}
	for _, c := range n.ChildNodes() {
		rc, err := recreate(doc, c)
		if err != nil {
			return nil, err
		}
		if _, err := el.AppendChild(rc); err != nil {
			return nil, err
		}
	}
	return el, nil
}
