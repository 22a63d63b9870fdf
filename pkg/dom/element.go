package dom

import (
	"sort"
	"strings"

	"golang.org/x/net/html"
)

// Attr is a single element attribute.
type Attr struct {
	Name  string
	Value string
}

// attrName normalizes an attribute name for storage. HTML elements store
// lowercase names; other namespaces keep the name as given (viewBox).
func (n *Node) attrName(name string) string {
	if n.h.Namespace == "" {
		return strings.ToLower(name)
	}
	return name
}

// GetAttribute returns the attribute value, or "" when absent.
func (n *Node) GetAttribute(name string) string {
	v, _ := n.Attribute(name)
	return v
}

// Attribute returns the attribute value and whether it is present.
func (n *Node) Attribute(name string) (string, bool) {
	if n.h.Type != html.ElementNode {
		return "", false
	}
	key := n.attrName(name)
	for _, a := range n.h.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// HasAttribute reports whether the attribute is present.
func (n *Node) HasAttribute(name string) bool {
	_, ok := n.Attribute(name)
	return ok
}

// SetAttribute sets an attribute, replacing any existing value.
func (n *Node) SetAttribute(name, value string) error {
	if n.h.Type != html.ElementNode {
		return newError(ErrHierarchyRequest, n.NodeName()+" has no attributes")
	}
	if !validName(name) {
		return newError(ErrInvalidCharacter, "invalid attribute name "+quote(name))
	}
	key := n.attrName(name)
	for i := range n.h.Attr {
		if n.h.Attr[i].Key == key {
			n.h.Attr[i].Val = value
			return nil
		}
	}
	n.h.Attr = append(n.h.Attr, html.Attribute{Key: key, Val: value})
	return nil
}

// RemoveAttribute removes an attribute if present.
func (n *Node) RemoveAttribute(name string) {
	if n.h.Type != html.ElementNode {
		return
	}
	key := n.attrName(name)
	for i, a := range n.h.Attr {
		if a.Key == key {
			n.h.Attr = append(n.h.Attr[:i], n.h.Attr[i+1:]...)
			return
		}
	}
}

// Attributes returns a copy of the attributes in insertion order.
func (n *Node) Attributes() []Attr {
	out := make([]Attr, 0, len(n.h.Attr))
	for _, a := range n.h.Attr {
		out = append(out, Attr{Name: a.Key, Value: a.Val})
	}
	return out
}

// ID returns the id attribute.
func (n *Node) ID() string { return n.GetAttribute("id") }

// ClassName returns the class attribute.
func (n *Node) ClassName() string { return n.GetAttribute("class") }

// ClassList returns the element's class tokens.
func (n *Node) ClassList() TokenList { return TokenList{n: n} }

// TokenList is a live view of the class attribute.
type TokenList struct {
	n *Node
}

// Values returns the class tokens in order, without duplicates.
func (l TokenList) Values() []string {
	return SplitTokens(l.n.ClassName())
}

// Len returns the number of tokens.
func (l TokenList) Len() int { return len(l.Values()) }

// Contains reports whether the token is present.
func (l TokenList) Contains(token string) bool {
	for _, t := range l.Values() {
		if t == token {
			return true
		}
	}
	return false
}

// Add appends tokens that are not already present.
func (l TokenList) Add(tokens ...string) error {
	vals := l.Values()
	for _, t := range tokens {
		if err := checkToken(t); err != nil {
			return err
		}
		if !containsString(vals, t) {
			vals = append(vals, t)
		}
	}
	return l.n.SetAttribute("class", strings.Join(vals, " "))
}

// Remove removes tokens.
func (l TokenList) Remove(tokens ...string) error {
	vals := l.Values()
	out := vals[:0]
	for _, v := range vals {
		if !containsString(tokens, v) {
			out = append(out, v)
		}
	}
	return l.n.SetAttribute("class", strings.Join(out, " "))
}

// Toggle removes the token if present, adds it otherwise, and reports
// whether it is present afterwards.
func (l TokenList) Toggle(token string) (bool, error) {
	if l.Contains(token) {
		return false, l.Remove(token)
	}
	return true, l.Add(token)
}

func checkToken(t string) error {
	if t == "" {
		return newError(ErrSyntax, "empty class token")
	}
	if strings.ContainsAny(t, " \t\n\r\f") {
		return newError(ErrInvalidCharacter, "class token contains whitespace: "+quote(t))
	}
	return nil
}

// SplitTokens splits a whitespace-separated token string, dropping
// duplicates while keeping first-seen order.
func SplitTokens(s string) []string {
	fields := strings.Fields(s)
	out := fields[:0]
	for _, f := range fields {
		if !containsString(out, f) {
			out = append(out, f)
		}
	}
	return out
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// reflected maps HTML IDL property names to the attribute they reflect.
var reflected = map[string]string{
	"id":          "id",
	"className":   "class",
	"title":       "title",
	"lang":        "lang",
	"dir":         "dir",
	"htmlFor":     "for",
	"tabIndex":    "tabindex",
	"name":        "name",
	"type":        "type",
	"href":        "href",
	"src":         "src",
	"alt":         "alt",
	"placeholder": "placeholder",
	"role":        "role",
}

// booleanReflected maps boolean IDL properties to their attributes.
var booleanReflected = map[string]string{
	"hidden":   "hidden",
	"disabled": "disabled",
	"checked":  "checked",
	"readOnly": "readonly",
	"required": "required",
}

// SetProperty assigns an IDL property. HTML elements accept the common
// reflected properties plus value and textContent; elements in other
// namespaces only accept id and textContent. Any other name fails with
// ErrTypeError so callers can fall back to SetAttribute.
func (n *Node) SetProperty(name string, value any) error {
	if n.h.Type != html.ElementNode {
		return newError(ErrTypeError, "cannot set "+name+" on "+n.NodeName())
	}
	switch name {
	case "textContent":
		n.SetTextContent(FormatValue(value))
		return nil
	case "id":
		return n.SetAttribute("id", FormatValue(value))
	}
	if n.h.Namespace != "" {
		return newError(ErrTypeError, name+" is read-only on "+n.NodeName())
	}
	if attr, ok := reflected[name]; ok {
		return n.SetAttribute(attr, FormatValue(value))
	}
	if attr, ok := booleanReflected[name]; ok {
		if truthy(value) {
			return n.SetAttribute(attr, "")
		}
		n.RemoveAttribute(attr)
		return nil
	}
	if name == "value" {
		n.setProp(name, FormatValue(value))
		return nil
	}
	return newError(ErrTypeError, "no settable property "+name+" on "+n.NodeName())
}

// Property returns an IDL property value and whether the element has it.
func (n *Node) Property(name string) (any, bool) {
	if n.h.Type != html.ElementNode {
		return nil, false
	}
	switch name {
	case "textContent":
		return n.TextContent(), true
	case "id":
		return n.ID(), true
	case "tagName":
		return n.TagName(), true
	}
	if n.h.Namespace != "" {
		return nil, false
	}
	if attr, ok := reflected[name]; ok {
		return n.GetAttribute(attr), true
	}
	if attr, ok := booleanReflected[name]; ok {
		return n.HasAttribute(attr), true
	}
	if name == "value" {
		if v, ok := n.props[name]; ok {
			return v, true
		}
		return n.GetAttribute("value"), true
	}
	return nil, false
}

func (n *Node) setProp(name string, v any) {
	if n.props == nil {
		n.props = make(map[string]any)
	}
	n.props[name] = v
}

// PropertyNames returns the names of properties stored on the node itself,
// sorted.
func (n *Node) PropertyNames() []string {
	names := make([]string, 0, len(n.props))
	for k := range n.props {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	case int:
		return x != 0
	case int64:
		return x != 0
	case float64:
		return x != 0
	default:
		return true
	}
}
