package vdom

import (
	"fmt"
	"reflect"

	"github.com/vango-dev/gaugekit/pkg/dom"
	"github.com/vango-dev/gaugekit/pkg/reactive"
)

// Text creates a text node.
func Text(content string) *VNode {
	return &VNode{Kind: KindText, Text: content}
}

// Textf creates a formatted text node.
func Textf(format string, args ...any) *VNode {
	return Text(fmt.Sprintf(format, args...))
}

// TextOf creates a text node that follows a reactive source.
func TextOf(src reactive.Source) *VNode {
	return &VNode{Kind: KindText, TextSource: src}
}

// DOMNode wraps an existing DOM node as a child.
func DOMNode(n *dom.Node) *VNode {
	return &VNode{Kind: KindDOM, Node: n}
}

// If returns the node if condition is true, nil otherwise.
func If(condition bool, node *VNode) *VNode {
	if condition {
		return node
	}
	return nil
}

// When is like If but only calls fn when condition is true.
func When(condition bool, fn func() *VNode) *VNode {
	if condition {
		return fn()
	}
	return nil
}

// Range maps items to VNodes.
func Range[T any](items []T, fn func(int, T) *VNode) []*VNode {
	out := make([]*VNode, 0, len(items))
	for i, item := range items {
		if v := fn(i, item); v != nil {
			out = append(out, v)
		}
	}
	return out
}

// NormalizeChildren flattens nested slices, drops nil and boolean values,
// turns strings and numbers into text, reactive sources into live text, DOM
// nodes into KindDOM children and components into component VNodes.
// Adjacent static text is merged into one text node.
func NormalizeChildren(args ...any) []*VNode {
	var out []*VNode
	for _, arg := range args {
		out = appendChild(out, arg)
	}
	return out
}

func appendChild(out []*VNode, arg any) []*VNode {
	if isNil(arg) {
		return out
	}
	switch v := arg.(type) {
	case bool:
		return out
	case *VNode:
		if v.Kind == KindText && !v.IsLive() {
			return appendText(out, v)
		}
		return append(out, v)
	case []*VNode:
		for _, c := range v {
			out = appendChild(out, c)
		}
		return out
	case []any:
		for _, c := range v {
			out = appendChild(out, c)
		}
		return out
	case string:
		return appendText(out, Text(v))
	case *dom.Node:
		return append(out, DOMNode(v))
	case reactive.Source:
		return append(out, TextOf(v))
	case Component:
		return append(out, &VNode{Kind: KindComponent, Factory: Static(v)})
	case Binding, []Binding, Props:
		return out
	}

	rv := reflect.ValueOf(arg)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			out = appendChild(out, rv.Index(i).Interface())
		}
		return out
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return appendText(out, Text(dom.FormatValue(arg)))
	}
	return appendText(out, Text(fmt.Sprint(arg)))
}

// appendText merges t into a trailing static text node. The merged node is
// a fresh VNode so callers' text nodes are never mutated.
func appendText(out []*VNode, t *VNode) []*VNode {
	if n := len(out); n > 0 {
		last := out[n-1]
		if last.Kind == KindText && !last.IsLive() && last.MountedNode == nil {
			out[n-1] = Text(last.Text + t.Text)
			return out
		}
	}
	return append(out, t)
}
