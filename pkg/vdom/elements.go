package vdom

import "strings"

// svgTags are the tag names created in the SVG namespace, regardless of
// where they appear in the tree.
var svgTags = map[string]bool{
	"svg":            true,
	"g":              true,
	"circle":         true,
	"ellipse":        true,
	"line":           true,
	"path":           true,
	"polygon":        true,
	"polyline":       true,
	"rect":           true,
	"text":           true,
	"tspan":          true,
	"textPath":       true,
	"defs":           true,
	"use":            true,
	"symbol":         true,
	"marker":         true,
	"clipPath":       true,
	"mask":           true,
	"pattern":        true,
	"linearGradient": true,
	"radialGradient": true,
	"stop":           true,
	"image":          true,
	"foreignObject":  true,
	"filter":         true,
}

// IsSVGTag reports whether tag is created in the SVG namespace.
func IsSVGTag(tag string) bool {
	return svgTags[tag]
}

// voidElements are HTML elements that cannot have children.
var voidElements = map[string]bool{
	"area":   true,
	"base":   true,
	"br":     true,
	"col":    true,
	"embed":  true,
	"hr":     true,
	"img":    true,
	"input":  true,
	"link":   true,
	"meta":   true,
	"param":  true,
	"source": true,
	"track":  true,
	"wbr":    true,
}

// IsVoidElement returns true if the tag is a void element.
func IsVoidElement(tag string) bool {
	return voidElements[strings.ToLower(tag)]
}

// H creates an intrinsic element. Arguments can be Binding, []Binding,
// Props, or any child accepted by NormalizeChildren.
func H(tag string, args ...any) *VNode {
	node := &VNode{Kind: KindElement, Tag: tag}
	children := make([]any, 0, len(args))
	for _, arg := range args {
		if node.addProps(arg) {
			continue
		}
		children = append(children, arg)
	}
	node.Children = NormalizeChildren(children...)
	return node
}

// addProps appends arg if it is a binding or a list of bindings.
func (v *VNode) addProps(arg any) bool {
	switch b := arg.(type) {
	case Binding:
		v.addBinding(b)
	case []Binding:
		for _, x := range b {
			v.addBinding(x)
		}
	case Props:
		for _, x := range b {
			v.addBinding(x)
		}
	default:
		return false
	}
	return true
}

func (v *VNode) addBinding(b Binding) {
	if b.Kind == BindKey {
		if s, ok := b.Value.(string); ok {
			v.Key = s
		}
	}
	v.Props = append(v.Props, b)
}

// HTML elements

func Div(args ...any) *VNode     { return H("div", args...) }
func Span(args ...any) *VNode    { return H("span", args...) }
func P(args ...any) *VNode       { return H("p", args...) }
func Section(args ...any) *VNode { return H("section", args...) }
func Header(args ...any) *VNode  { return H("header", args...) }
func Footer(args ...any) *VNode  { return H("footer", args...) }
func Ul(args ...any) *VNode      { return H("ul", args...) }
func Li(args ...any) *VNode      { return H("li", args...) }
func Label(args ...any) *VNode   { return H("label", args...) }
func Button(args ...any) *VNode  { return H("button", args...) }
func Input(args ...any) *VNode   { return H("input", args...) }
func Canvas(args ...any) *VNode  { return H("canvas", args...) }
func Img(args ...any) *VNode     { return H("img", args...) }
func Table(args ...any) *VNode   { return H("table", args...) }
func Tr(args ...any) *VNode      { return H("tr", args...) }
func Td(args ...any) *VNode      { return H("td", args...) }
func B(args ...any) *VNode       { return H("b", args...) }
func Strong(args ...any) *VNode  { return H("strong", args...) }

// SVG elements

func Svg(args ...any) *VNode            { return H("svg", args...) }
func G(args ...any) *VNode              { return H("g", args...) }
func Circle(args ...any) *VNode         { return H("circle", args...) }
func Ellipse(args ...any) *VNode        { return H("ellipse", args...) }
func Line(args ...any) *VNode           { return H("line", args...) }
func Path(args ...any) *VNode           { return H("path", args...) }
func Polygon(args ...any) *VNode        { return H("polygon", args...) }
func Polyline(args ...any) *VNode       { return H("polyline", args...) }
func Rect(args ...any) *VNode           { return H("rect", args...) }
func SvgText(args ...any) *VNode        { return H("text", args...) }
func Tspan(args ...any) *VNode          { return H("tspan", args...) }
func Defs(args ...any) *VNode           { return H("defs", args...) }
func Use(args ...any) *VNode            { return H("use", args...) }
func ClipPath(args ...any) *VNode       { return H("clipPath", args...) }
func LinearGradient(args ...any) *VNode { return H("linearGradient", args...) }
func Stop(args ...any) *VNode           { return H("stop", args...) }
