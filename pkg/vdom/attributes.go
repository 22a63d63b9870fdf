package vdom

import (
	"reflect"
	"sort"
	"strings"
	"unicode"

	"github.com/vango-dev/gaugekit/pkg/dom"
	"github.com/vango-dev/gaugekit/pkg/reactive"
)

// BindingKind classifies a prop. The kind is fixed when the binding is
// constructed, never while building DOM.
type BindingKind uint8

const (
	BindAttr  BindingKind = iota // property assignment with attribute fallback
	BindClass                    // class tokens
	BindStyle                    // one inline style property, or a map of them
	BindData                     // data-* marker, set verbatim as an attribute
	BindEvent                    // DOM event listener
	BindRef                      // reference handle
	BindKey                      // advisory key
)

// String returns the kind name.
func (k BindingKind) String() string {
	switch k {
	case BindAttr:
		return "attr"
	case BindClass:
		return "class"
	case BindStyle:
		return "style"
	case BindData:
		return "data"
	case BindEvent:
		return "event"
	case BindRef:
		return "ref"
	case BindKey:
		return "key"
	default:
		return "unknown"
	}
}

// Binding is one prop on a VNode.
type Binding struct {
	Kind  BindingKind
	Name  string
	Value any

	Handler dom.Listener // BindEvent
	Ref     *Ref         // BindRef
}

// IsReactive reports whether the binding value is a reactive source.
func (b Binding) IsReactive() bool { return reactive.IsSource(b.Value) }

// Props holds a VNode's bindings in declaration order.
type Props []Binding

// Get returns the last binding with the given kind and name.
func (p Props) Get(kind BindingKind, name string) (Binding, bool) {
	for i := len(p) - 1; i >= 0; i-- {
		if p[i].Kind == kind && p[i].Name == name {
			return p[i], true
		}
	}
	return Binding{}, false
}

// Value returns the value of an attribute binding, or nil.
func (p Props) Value(name string) any {
	b, ok := p.Get(BindAttr, name)
	if !ok {
		return nil
	}
	return b.Value
}

// ID returns the declared id, or "" when none is declared.
func (p Props) ID() string {
	v := p.Value("id")
	if v == nil {
		return ""
	}
	return dom.FormatValue(current(v))
}

// Ref returns the declared reference handle, or nil.
func (p Props) Ref() *Ref {
	for i := len(p) - 1; i >= 0; i-- {
		if p[i].Kind == BindRef {
			return p[i].Ref
		}
	}
	return nil
}

// Data returns the data-* bindings in declaration order, later duplicates
// replacing earlier ones in place.
func (p Props) Data() []Binding {
	var out []Binding
	index := make(map[string]int)
	for _, b := range p {
		if b.Kind != BindData {
			continue
		}
		if i, ok := index[b.Name]; ok {
			out[i] = b
			continue
		}
		index[b.Name] = len(out)
		out = append(out, b)
	}
	return out
}

// ClassTokens returns every declared class token in order, without
// duplicates. Reactive class values contribute their current tokens.
func (p Props) ClassTokens() []string {
	var tokens []string
	for _, b := range p {
		if b.Kind == BindClass {
			tokens = append(tokens, ClassTokens(b.Value)...)
		}
	}
	return dom.SplitTokens(strings.Join(tokens, " "))
}

// Of returns the bindings of the given kind.
func (p Props) Of(kind BindingKind) []Binding {
	var out []Binding
	for _, b := range p {
		if b.Kind == kind {
			out = append(out, b)
		}
	}
	return out
}

// current resolves a reactive value to its present value.
func current(v any) any {
	if s, ok := v.(reactive.Source); ok {
		return s.Value()
	}
	return v
}

// ID sets the id attribute.
func ID(id any) Binding { return Binding{Kind: BindAttr, Name: "id", Value: id} }

// Attr sets an attribute or property. Values may be reactive.
func Attr(name string, value any) Binding {
	return Binding{Kind: BindAttr, Name: name, Value: value}
}

// Class adds class tokens. Each argument may hold several space-separated
// tokens.
func Class(classes ...string) Binding {
	return Binding{Kind: BindClass, Name: "class", Value: strings.Join(classes, " ")}
}

// ClassMap adds the keys whose value is true, in sorted key order.
func ClassMap(m map[string]bool) Binding {
	return Binding{Kind: BindClass, Name: "class", Value: m}
}

// ClassOf binds the class list to a reactive source.
func ClassOf(src reactive.Source) Binding {
	return Binding{Kind: BindClass, Name: "class", Value: src}
}

// ClassTokens returns the tokens a class value stands for. Strings are split
// on whitespace, []string values are split per element, map[string]bool
// yields its true keys in sorted order, and reactive values their current
// value's tokens.
func ClassTokens(v any) []string {
	switch x := current(v).(type) {
	case nil:
		return nil
	case string:
		return strings.Fields(x)
	case []string:
		var out []string
		for _, s := range x {
			out = append(out, strings.Fields(s)...)
		}
		return out
	case map[string]bool:
		keys := make([]string, 0, len(x))
		for k, on := range x {
			if on {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		return keys
	default:
		return strings.Fields(dom.FormatValue(x))
	}
}

// Data sets a data-* marker. The name may be given with or without the
// data- prefix, or in camelCase form (dataRange).
func Data(name string, value any) Binding {
	if !strings.HasPrefix(name, "data-") && !IsDataName(name) {
		name = "data-" + name
	}
	return Binding{Kind: BindData, Name: DataName(name), Value: value}
}

// IsDataName reports whether name is a data marker: data-x, or dataX with
// an uppercase fifth character.
func IsDataName(name string) bool {
	if strings.HasPrefix(name, "data-") && len(name) > 5 {
		return true
	}
	if len(name) > 4 && strings.HasPrefix(name, "data") {
		return unicode.IsUpper(rune(name[4]))
	}
	return false
}

// DataName returns the kebab-case attribute name of a data marker, so that
// dataRange and data-range name the same attribute. Names that are not data
// markers are returned unchanged.
func DataName(name string) string {
	if strings.HasPrefix(name, "data-") {
		return name
	}
	if !IsDataName(name) {
		return name
	}
	var b strings.Builder
	b.WriteString("data")
	for _, r := range name[4:] {
		if unicode.IsUpper(r) {
			b.WriteByte('-')
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Style sets one inline style property. The value may be reactive.
func Style(property string, value any) Binding {
	return Binding{Kind: BindStyle, Name: property, Value: value}
}

// Styles sets several inline style properties, applied in sorted property
// order.
func Styles(m map[string]any) Binding {
	return Binding{Kind: BindStyle, Value: m}
}

// StyleEntries expands a style binding to (property, value) pairs.
func StyleEntries(b Binding) [][2]any {
	if b.Name != "" {
		return [][2]any{{b.Name, b.Value}}
	}
	m, ok := b.Value.(map[string]any)
	if !ok {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([][2]any, len(keys))
	for i, k := range keys {
		out[i] = [2]any{k, m[k]}
	}
	return out
}

// UseRef attaches a reference handle. On a component VNode the handle
// resolves to the component instance.
func UseRef(r *Ref) Binding { return Binding{Kind: BindRef, Name: "ref", Ref: r} }

// Key sets the advisory key.
func Key(k string) Binding { return Binding{Kind: BindKey, Name: "key", Value: k} }

// Prop classifies a loosely named prop once, at construction time:
// key, ref, class/className, style, data markers, on* handlers, and
// everything else as an attribute.
func Prop(name string, value any) Binding {
	switch {
	case name == "key":
		return Binding{Kind: BindKey, Name: "key", Value: dom.FormatValue(value)}
	case name == "ref":
		r, _ := value.(*Ref)
		return UseRef(r)
	case name == "class" || name == "className":
		return Binding{Kind: BindClass, Name: "class", Value: value}
	case name == "style":
		if m, ok := value.(map[string]any); ok {
			return Styles(m)
		}
		return Binding{Kind: BindAttr, Name: "style", Value: value}
	case IsDataName(name):
		return Binding{Kind: BindData, Name: DataName(name), Value: value}
	case isHandlerName(name):
		if h := listenerOf(value); h != nil {
			return On(strings.ToLower(name[2:]), h)
		}
	}
	return Binding{Kind: BindAttr, Name: name, Value: value}
}

func isHandlerName(name string) bool {
	return len(name) > 2 && strings.HasPrefix(name, "on") && unicode.IsUpper(rune(name[2]))
}

func listenerOf(v any) dom.Listener {
	switch fn := v.(type) {
	case dom.Listener:
		return fn
	case func(*dom.Event):
		return fn
	case func():
		return func(*dom.Event) { fn() }
	}
	return nil
}

// isNil reports whether v is nil or a typed nil pointer.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
