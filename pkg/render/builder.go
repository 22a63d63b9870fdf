package render

import (
	"fmt"
	"log/slog"
	"strings"

	gkerrors "github.com/vango-dev/gaugekit/internal/errors"
	"github.com/vango-dev/gaugekit/pkg/dom"
	"github.com/vango-dev/gaugekit/pkg/reactive"
	"github.com/vango-dev/gaugekit/pkg/vdom"
)

// Builder turns VNode trees into DOM nodes owned by one document. A Builder
// holds no global state: everything it touches is its document, its ref
// arena and the VNodes it is given.
type Builder struct {
	doc    *dom.Document
	arena  *vdom.RefArena
	logger *slog.Logger

	nodes int
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithArena sets the arena reference handles are registered in.
func WithArena(a *vdom.RefArena) BuilderOption {
	return func(b *Builder) { b.arena = a }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) BuilderOption {
	return func(b *Builder) { b.logger = l }
}

// NewBuilder creates a builder for doc.
func NewBuilder(doc *dom.Document, opts ...BuilderOption) *Builder {
	b := &Builder{doc: doc}
	for _, opt := range opts {
		opt(b)
	}
	if b.arena == nil {
		b.arena = vdom.NewRefArena()
	}
	if b.logger == nil {
		b.logger = slog.Default()
	}
	return b
}

// Document returns the build document.
func (b *Builder) Document() *dom.Document { return b.doc }

// Arena returns the ref arena.
func (b *Builder) Arena() *vdom.RefArena { return b.arena }

// NodesBuilt returns the number of DOM nodes created so far.
func (b *Builder) NodesBuilt() int { return b.nodes }

// Create describes and builds one node. elementType is a tag name or a
// vdom.Factory. Children are only used for intrinsic elements.
func (b *Builder) Create(elementType any, props vdom.Props, children ...any) (*vdom.VNode, *dom.Node, error) {
	var v *vdom.VNode
	switch t := elementType.(type) {
	case string:
		v = vdom.H(t, append([]any{props}, children...)...)
	case vdom.Factory:
		v = vdom.C(t, props)
	case func(vdom.Props) (vdom.Component, error):
		v = vdom.C(t, props)
	default:
		return nil, nil, gkerrors.New("E203").
			WithDetail(fmt.Sprintf("element type %T is neither a tag nor a component factory", elementType))
	}
	n, err := b.Build(v)
	if err != nil {
		return nil, nil, err
	}
	return v, n, nil
}

// Build creates the DOM for v and returns its root node. Build errors leave
// no partial tree: the returned node is nil whenever err is non-nil.
func (b *Builder) Build(v *vdom.VNode) (*dom.Node, error) {
	if v == nil {
		return nil, gkerrors.New("E203").WithDetail("nil VNode")
	}
	switch v.Kind {
	case vdom.KindElement:
		return b.buildElement(v)
	case vdom.KindText:
		return b.buildText(v), nil
	case vdom.KindComponent:
		return b.buildComponent(v)
	case vdom.KindDOM:
		return b.buildDOM(v)
	default:
		return nil, gkerrors.New("E203").WithDetail("unknown VNode kind " + v.Kind.String())
	}
}

func (b *Builder) buildText(v *vdom.VNode) *dom.Node {
	b.nodes++
	if v.TextSource == nil {
		n := b.doc.CreateTextNode(v.Text)
		v.MountedNode = n
		return n
	}
	n := b.doc.CreateTextNode(dom.FormatValue(v.TextSource.Value()))
	v.MountedNode = n
	v.OnRelease(v.TextSource.SubscribeAny(func(val any) {
		if cur := v.MountedNode; cur != nil {
			cur.SetData(dom.FormatValue(val))
		}
	}, false))
	return n
}

func (b *Builder) buildDOM(v *vdom.VNode) (*dom.Node, error) {
	if v.Node == nil {
		return nil, gkerrors.New("E203").WithDetail("DOM child without a node")
	}
	n, _, err := Transfer(b.doc, v.Node, b.logger)
	if err != nil {
		return nil, err
	}
	v.MountedNode = n
	return n, nil
}

func (b *Builder) buildComponent(v *vdom.VNode) (*dom.Node, error) {
	if v.Factory == nil {
		return nil, gkerrors.New("E203").WithDetail("component VNode without a factory")
	}

	comp, err := instantiate(v)
	if err != nil {
		return nil, err
	}
	if before, ok := comp.(vdom.BeforeRenderer); ok {
		if err := protect("E202", "OnBeforeRender", before.OnBeforeRender); err != nil {
			return nil, err
		}
	}

	var rendered *vdom.VNode
	if err := protect("E202", fmt.Sprintf("%T.Render", comp), func() { rendered = comp.Render() }); err != nil {
		return nil, err
	}
	if rendered == nil {
		return nil, gkerrors.New("E200").WithDetail(fmt.Sprintf("%T.Render returned nil", comp))
	}

	v.Instance = comp
	v.Rendered = rendered
	if ref := v.Props.Ref(); ref != nil {
		b.arena.Set(ref, comp)
	}

	n, err := b.Build(rendered)
	if err != nil {
		return nil, err
	}
	v.MountedNode = n
	return n, nil
}

func instantiate(v *vdom.VNode) (comp vdom.Component, err error) {
	defer func() {
		if r := recover(); r != nil {
			comp, err = nil, panicError("E201", r, "component factory panicked")
		}
	}()
	comp, err = v.Factory(v.Props)
	if err != nil {
		return nil, gkerrors.New("E201").Wrap(err)
	}
	if comp == nil {
		return nil, gkerrors.New("E201").WithDetail("factory returned a nil component")
	}
	return comp, nil
}

// protect runs fn, turning a panic into a coded error.
func protect(code, what string, fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = panicError(code, r, what+" panicked")
		}
	}()
	fn()
	return nil
}

func (b *Builder) buildElement(v *vdom.VNode) (*dom.Node, error) {
	if v.Tag == "" {
		return nil, gkerrors.New("E203").WithDetail("element VNode without a tag")
	}
	ns := dom.HTMLNamespace
	if vdom.IsSVGTag(v.Tag) {
		ns = dom.SVGNamespace
	}
	el, err := b.doc.CreateElementNS(ns, v.Tag)
	if err != nil {
		return nil, domError(err, "creating <"+v.Tag+">")
	}
	b.nodes++
	v.MountedNode = el

	classDone := false
	for _, p := range v.Props {
		if p.Kind == vdom.BindClass {
			if classDone {
				continue
			}
			classDone = true
		}
		if err := b.apply(v, el, p); err != nil {
			return nil, err
		}
	}
	if ref := v.Props.Ref(); ref != nil {
		b.arena.Set(ref, el)
	}

	for _, c := range v.Children {
		cn, err := b.Build(c)
		if err != nil {
			return nil, err
		}
		if _, err := el.AppendChild(cn); err != nil {
			return nil, domError(err, "appending child to <"+v.Tag+">")
		}
	}
	return el, nil
}

// apply binds one prop to el. Reactive values are set from their current
// value and then follow the source; updates always target v.MountedNode so
// they survive the node being copied during mount.
func (b *Builder) apply(v *vdom.VNode, el *dom.Node, p vdom.Binding) error {
	switch p.Kind {
	case vdom.BindKey, vdom.BindRef:
		return nil

	case vdom.BindEvent:
		if p.Handler != nil {
			el.AddEventListener(p.Name, p.Handler)
		}
		return nil

	case vdom.BindStyle:
		for _, e := range vdom.StyleEntries(p) {
			prop := e[0].(string)
			b.bind(v, e[1], func(n *dom.Node, val any) error {
				return n.Style().SetProperty(prop, dom.FormatValue(val))
			})
		}
		return nil

	case vdom.BindClass:
		// All class bindings contribute to one class list.
		set := func(n *dom.Node, _ any) error {
			return setClass(n, strings.Join(v.Props.ClassTokens(), " "))
		}
		if err := set(el, nil); err != nil {
			return domError(err, "setting class")
		}
		for _, c := range v.Props.Of(vdom.BindClass) {
			if src, ok := c.Value.(reactive.Source); ok {
				b.follow(v, src, set)
			}
		}
		return nil

	case vdom.BindData:
		name := p.Name
		return b.bindChecked(v, el, p.Value, func(n *dom.Node, val any) error {
			if val == nil {
				n.RemoveAttribute(name)
				return nil
			}
			return n.SetAttribute(name, dom.FormatValue(val))
		})

	default:
		name := p.Name
		return b.bindChecked(v, el, p.Value, func(n *dom.Node, val any) error {
			return setAttr(n, name, val)
		})
	}
}

// bind applies val through set and follows it if it is reactive. Errors are
// logged.
func (b *Builder) bind(v *vdom.VNode, val any, set func(*dom.Node, any) error) {
	if err := b.bindChecked(v, v.MountedNode, val, set); err != nil {
		b.logger.Warn("binding failed", "tag", v.Tag, "error", err)
	}
}

func (b *Builder) bindChecked(v *vdom.VNode, el *dom.Node, val any, set func(*dom.Node, any) error) error {
	src, live := val.(reactive.Source)
	initial := val
	if live {
		initial = src.Value()
	}
	if err := set(el, initial); err != nil {
		return domError(err, "binding on <"+v.Tag+">")
	}
	if live {
		b.follow(v, src, set)
	}
	return nil
}

func (b *Builder) follow(v *vdom.VNode, src reactive.Source, set func(*dom.Node, any) error) {
	logger := b.logger
	v.OnRelease(src.SubscribeAny(func(val any) {
		n := v.MountedNode
		if n == nil {
			return
		}
		if err := set(n, val); err != nil {
			logger.Warn("reactive update failed", "tag", v.Tag, "error", err)
		}
	}, false))
}

// setClass uses the attribute on SVG elements and the className property on
// HTML elements.
func setClass(n *dom.Node, s string) error {
	if n.IsHTML() {
		return n.SetProperty("className", s)
	}
	return n.SetAttribute("class", s)
}

// setAttr tries a property assignment and falls back to the attribute.
func setAttr(n *dom.Node, name string, val any) error {
	if err := n.SetProperty(name, val); err == nil {
		return nil
	}
	switch x := val.(type) {
	case nil:
		n.RemoveAttribute(name)
		return nil
	case bool:
		if !x {
			n.RemoveAttribute(name)
			return nil
		}
		return n.SetAttribute(name, "")
	}
	return n.SetAttribute(name, dom.FormatValue(val))
}
