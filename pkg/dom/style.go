package dom

import (
	"strings"
	"unicode"
)

// Style is a live view of an element's inline style attribute.
type Style struct {
	n *Node
}

// Style returns the element's inline style declaration.
func (n *Node) Style() Style { return Style{n: n} }

type declaration struct {
	prop  string
	value string
}

// SetProperty sets a style property. Names may be camelCase (backgroundColor)
// or kebab-case. An empty value removes the property.
func (s Style) SetProperty(name, value string) error {
	prop := CSSPropertyName(name)
	if prop == "" {
		return newError(ErrSyntax, "empty style property name")
	}
	value = strings.TrimSpace(value)
	decls := s.parse()
	if value == "" {
		return s.write(removeDecl(decls, prop))
	}
	for i := range decls {
		if decls[i].prop == prop {
			decls[i].value = value
			return s.write(decls)
		}
	}
	return s.write(append(decls, declaration{prop: prop, value: value}))
}

// GetPropertyValue returns a style property, or "" when unset.
func (s Style) GetPropertyValue(name string) string {
	prop := CSSPropertyName(name)
	for _, d := range s.parse() {
		if d.prop == prop {
			return d.value
		}
	}
	return ""
}

// RemoveProperty removes a style property and returns its old value.
func (s Style) RemoveProperty(name string) string {
	prop := CSSPropertyName(name)
	decls := s.parse()
	old := ""
	for _, d := range decls {
		if d.prop == prop {
			old = d.value
		}
	}
	_ = s.write(removeDecl(decls, prop))
	return old
}

// Len returns the number of declared properties.
func (s Style) Len() int { return len(s.parse()) }

// CSSText returns the serialized declarations.
func (s Style) CSSText() string { return s.n.GetAttribute("style") }

func (s Style) parse() []declaration {
	var out []declaration
	for _, part := range strings.Split(s.n.GetAttribute("style"), ";") {
		prop, value, ok := strings.Cut(part, ":")
		if !ok {
			continue
		}
		prop = strings.ToLower(strings.TrimSpace(prop))
		value = strings.TrimSpace(value)
		if prop == "" || value == "" {
			continue
		}
		out = removeDecl(out, prop)
		out = append(out, declaration{prop: prop, value: value})
	}
	return out
}

func (s Style) write(decls []declaration) error {
	if len(decls) == 0 {
		s.n.RemoveAttribute("style")
		return nil
	}
	parts := make([]string, len(decls))
	for i, d := range decls {
		parts[i] = d.prop + ": " + d.value + ";"
	}
	return s.n.SetAttribute("style", strings.Join(parts, " "))
}

func removeDecl(decls []declaration, prop string) []declaration {
	out := decls[:0]
	for _, d := range decls {
		if d.prop != prop {
			out = append(out, d)
		}
	}
	return out
}

// CSSPropertyName converts a camelCase style name to its kebab-case CSS
// property name. Custom properties (--x) and kebab-case names are returned
// unchanged apart from trimming.
func CSSPropertyName(name string) string {
	name = strings.TrimSpace(name)
	if strings.HasPrefix(name, "--") || strings.ContainsRune(name, '-') {
		return name
	}
	var b strings.Builder
	for i, r := range name {
		if unicode.IsUpper(r) {
			if i > 0 || isVendorPrefix(name) {
				b.WriteByte('-')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isVendorPrefix(name string) bool {
	for _, p := range []string{"Webkit", "Moz", "Ms"} {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}
