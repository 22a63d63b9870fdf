package fixture

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/gaugekit/internal/errors"
	"github.com/vango-dev/gaugekit/pkg/dom"
	"github.com/vango-dev/gaugekit/pkg/reconcile"
)

// Fixture is one parsed fixture file.
type Fixture struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description,omitempty"`
	Harness     Harness  `yaml:"harness,omitempty"`
	Tree        *Node    `yaml:"tree"`
	Expect      Expect   `yaml:"expect,omitempty"`
	Tags        []string `yaml:"tags,omitempty"`

	// Path is the file the fixture was read from.
	Path string `yaml:"-"`

	src []byte
}

// Harness overrides the project's harness settings. Unset fields keep the
// project value.
type Harness struct {
	SeparateBuildDocument *bool  `yaml:"separateBuildDocument,omitempty"`
	Adopt                 string `yaml:"adopt,omitempty"`
	StrictAppend          *bool  `yaml:"strictAppend,omitempty"`
	NoImport              bool   `yaml:"noImport,omitempty"`
	AppendFirst           bool   `yaml:"appendFirst,omitempty"`
}

// Node is an element or text node in a fixture tree. Exactly one of Tag and
// Text is set.
type Node struct {
	Tag      string            `yaml:"tag,omitempty"`
	Text     string            `yaml:"text,omitempty"`
	ID       string            `yaml:"id,omitempty"`
	Class    string            `yaml:"class,omitempty"`
	Attrs    map[string]string `yaml:"attrs,omitempty"`
	Data     map[string]string `yaml:"data,omitempty"`
	Style    map[string]string `yaml:"style,omitempty"`
	Ref      string            `yaml:"ref,omitempty"`
	Children []*Node           `yaml:"children,omitempty"`

	Line   int `yaml:"-"`
	Column int `yaml:"-"`
}

// UnmarshalYAML records the node's position.
func (n *Node) UnmarshalYAML(value *yaml.Node) error {
	type plain Node
	if err := value.Decode((*plain)(n)); err != nil {
		return err
	}
	n.Line, n.Column = value.Line, value.Column
	return nil
}

// Expect lists what a fixture must produce.
type Expect struct {
	Refs map[string]RefExpect `yaml:"refs,omitempty"`

	// Unresolved is the number of handles allowed to stay unresolved.
	Unresolved *int `yaml:"unresolved,omitempty"`

	// Snapshot names the stored HTML to compare against. Empty disables the
	// comparison.
	Snapshot string `yaml:"snapshot,omitempty"`
}

// RefExpect describes one reference's expected target.
type RefExpect struct {
	// Selector must match the bound node.
	Selector string `yaml:"selector,omitempty"`

	// Strategy is the reconcile strategy name, e.g. "id" or "data".
	Strategy string `yaml:"strategy,omitempty"`

	// Attrs must all be present on the bound node with these values.
	Attrs map[string]string `yaml:"attrs,omitempty"`

	// Unbound expects the handle to end up empty.
	Unbound bool `yaml:"unbound,omitempty"`
}

// RefNames returns every ref declared in the tree, in tree order.
func (f *Fixture) RefNames() []string {
	var names []string
	f.Tree.walk(func(n *Node) {
		if n.Ref != "" {
			names = append(names, n.Ref)
		}
	})
	return names
}

func (n *Node) walk(fn func(*Node)) {
	if n == nil {
		return
	}
	fn(n)
	for _, c := range n.Children {
		c.walk(fn)
	}
}

var lineRe = regexp.MustCompile(`line (\d+)`)

// Parse decodes and validates a fixture. path is used for error locations
// and to default the name.
func Parse(data []byte, path string) (*Fixture, error) {
	var f Fixture
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if err == io.EOF {
			return nil, errors.New("E160").WithDetail(path + " is empty")
		}
		e := errors.New("E160").WithDetail(err.Error()).Wrap(err)
		if m := lineRe.FindStringSubmatch(err.Error()); m != nil {
			line, _ := strconv.Atoi(m[1])
			e = e.WithLocation(path, line, 0).WithSource(data)
		}
		return nil, e
	}
	f.Path = path
	f.src = data
	if f.Name == "" {
		f.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Load reads and parses one fixture file.
func Load(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New("E162").WithDetail("cannot read " + path).Wrap(err)
	}
	return Parse(data, path)
}

// LoadDir loads every file in dir matching pattern, sorted by name.
func LoadDir(dir, pattern string) ([]*Fixture, error) {
	paths, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, errors.New("E160").WithDetail("bad fixture pattern " + pattern).Wrap(err)
	}
	sort.Strings(paths)

	var out []*Fixture
	seen := make(map[string]string)
	for _, p := range paths {
		f, err := Load(p)
		if err != nil {
			return nil, err
		}
		if prev, dup := seen[f.Name]; dup {
			return nil, errors.New("E160").
				WithDetail(fmt.Sprintf("fixture name %q used by %s and %s", f.Name, prev, p))
		}
		seen[f.Name] = p
		out = append(out, f)
	}
	return out, nil
}

// Validate checks the tree shape and that expectations refer to declared
// refs.
func (f *Fixture) Validate() error {
	if f.Tree == nil {
		return errors.New("E160").WithDetail("fixture " + f.Name + " has no tree")
	}
	if f.Harness.Adopt != "" {
		if _, err := dom.ParseAdoptPolicy(f.Harness.Adopt); err != nil {
			return errors.New("E160").WithDetail("harness.adopt: " + err.Error())
		}
	}

	refs := make(map[string]bool)
	var bad error
	f.Tree.walk(func(n *Node) {
		if bad != nil {
			return
		}
		switch {
		case n.Tag == "" && n.Text == "":
			bad = f.nodeError(n, "node needs a tag or text")
		case n.Tag != "" && n.Text != "":
			bad = f.nodeError(n, "node has both tag and text")
		case n.Text != "" && (n.Ref != "" || len(n.Children) > 0 || n.ID != "" || n.Class != ""):
			bad = f.nodeError(n, "text nodes take no ref, id, class or children")
		case n.Ref != "" && refs[n.Ref]:
			bad = f.nodeError(n, "ref "+strconv.Quote(n.Ref)+" declared twice")
		}
		if n.Ref != "" {
			refs[n.Ref] = true
		}
	})
	if bad != nil {
		return bad
	}

	for _, name := range sortedKeys(f.Expect.Refs) {
		if !refs[name] {
			return errors.New("E160").WithDetail("expect.refs." + name + " names no declared ref")
		}
		if s := f.Expect.Refs[name].Strategy; s != "" && !validStrategy(s) {
			return errors.New("E160").WithDetail("expect.refs." + name + ": unknown strategy " + strconv.Quote(s))
		}
	}
	return nil
}

func (f *Fixture) nodeError(n *Node, msg string) error {
	return errors.New("E160").WithDetail(msg).WithLocation(f.Path, n.Line, n.Column).WithSource(f.src)
}

func validStrategy(s string) bool {
	for _, st := range reconcile.Strategies {
		if st.String() == s {
			return true
		}
	}
	return false
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
