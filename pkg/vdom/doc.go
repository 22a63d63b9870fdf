// Package vdom describes instrument UIs as VNode trees.
//
// A VNode is an intrinsic element, a text node (static or bound to a
// reactive source), a component instantiation, or an existing DOM node.
// Elements are created with variadic factory functions that take bindings
// and children in any order:
//
//	needle := vdom.NewRef()
//	vdom.Svg(vdom.Attr("viewBox", "0 0 100 100"),
//	    vdom.Circle(vdom.Class("ring"), vdom.Data("range", 25)),
//	    vdom.Path(vdom.ID("needle"), vdom.UseRef(needle),
//	        vdom.Style("opacity", opacity)),
//	)
//
// # Bindings
//
// Props are an ordered list of Binding values. Each binding carries a
// BindingKind decided when it is constructed: attribute, class, style,
// data marker, event, ref or key. Prop classifies loosely named props in a
// single step; dataRange and data-range name the same marker.
//
// # References
//
// A Ref is created once per reference site and attached with UseRef. When
// a tree is built the handle is registered in a RefArena, and the resolved
// value (a *dom.Node, or the Component for component VNodes) lives in the
// arena slot. Current, Node and IsSet read that slot.
//
// # Children
//
// NormalizeChildren flattens nested slices, drops nil and booleans, and
// turns strings and numbers into text. Adjacent static text merges into one
// text node.
package vdom
