package render

import (
	"errors"
	"strings"
	"testing"

	gkerrors "github.com/vango-dev/gaugekit/internal/errors"
	"github.com/vango-dev/gaugekit/pkg/dom"
	"github.com/vango-dev/gaugekit/pkg/reactive"
	"github.com/vango-dev/gaugekit/pkg/vdom"
)

func newBuilder() *Builder {
	return NewBuilder(dom.NewDocument(dom.WithName("build")))
}

func TestBuildNamespaces(t *testing.T) {
	b := newBuilder()

	circle := vdom.Circle()
	tree := vdom.Svg(vdom.G(circle), vdom.Div(vdom.Circle()))
	if _, err := b.Build(tree); err != nil {
		t.Fatal(err)
	}
	if got := circle.MountedNode.NamespaceURI(); got != dom.SVGNamespace {
		t.Errorf("circle namespace = %q, want SVG", got)
	}

	div := tree.Children[1]
	if got := div.MountedNode.NamespaceURI(); got != dom.HTMLNamespace {
		t.Errorf("div under svg namespace = %q, want HTML", got)
	}
	if got := div.Children[0].MountedNode.NamespaceURI(); got != dom.SVGNamespace {
		t.Errorf("circle under div namespace = %q, want SVG", got)
	}

	clip := vdom.ClipPath()
	if _, err := b.Build(clip); err != nil {
		t.Fatal(err)
	}
	if clip.MountedNode.LocalName() != "clipPath" {
		t.Errorf("clipPath local name = %q", clip.MountedNode.LocalName())
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	gaugeTree := func() *vdom.VNode {
		return vdom.Svg(
			vdom.ClassMap(map[string]bool{"b": true, "a": true, "c": true}),
			vdom.Styles(map[string]any{"stroke": "red", "fill": "none"}),
			vdom.Circle(vdom.Data("dataRange", 25)),
		)
	}
	first, err := newBuilder().Build(gaugeTree())
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		n, err := newBuilder().Build(gaugeTree())
		if err != nil {
			t.Fatal(err)
		}
		if n.OuterHTML() != first.OuterHTML() {
			t.Fatalf("build %d differs:\n%s\n%s", i, n.OuterHTML(), first.OuterHTML())
		}
	}
	if !strings.Contains(first.OuterHTML(), `class="a b c"`) {
		t.Errorf("class map should be emitted sorted: %s", first.OuterHTML())
	}
}

func TestBuildChildrenFlattening(t *testing.T) {
	b := newBuilder()
	x := vdom.H("x")
	var undefined *vdom.VNode
	tree := vdom.Div(nil, "a", []any{1, false, x}, undefined)

	n, err := b.Build(tree)
	if err != nil {
		t.Fatal(err)
	}
	kids := n.ChildNodes()
	if len(kids) != 2 {
		t.Fatalf("child count = %d, want 2 (%s)", len(kids), n.OuterHTML())
	}
	if !kids[0].IsText() || kids[0].Data() != "a1" {
		t.Errorf("first child = %q", kids[0].Data())
	}
	if kids[1] != x.MountedNode || kids[1].LocalName() != "x" {
		t.Errorf("second child should be the built <x>")
	}
}

func TestBuildBindings(t *testing.T) {
	b := newBuilder()
	clicks := 0
	tree := vdom.Div(
		vdom.ID("panel"),
		vdom.Class("gauge", "dark"),
		vdom.Attr("title", "Airspeed"),
		vdom.Attr("aria-label", "speed"),
		vdom.Attr("hidden", false),
		vdom.Prop("dataRange", 200),
		vdom.Style("backgroundColor", "black"),
		vdom.OnClick(func(*dom.Event) { clicks++ }),
		vdom.Key("k"),
	)
	n, err := b.Build(tree)
	if err != nil {
		t.Fatal(err)
	}

	checks := map[string]string{
		"id":         "panel",
		"class":      "gauge dark",
		"title":      "Airspeed",
		"aria-label": "speed",
		"data-range": "200",
		"style":      "background-color: black;",
	}
	for attr, want := range checks {
		if got := n.GetAttribute(attr); got != want {
			t.Errorf("%s = %q, want %q", attr, got, want)
		}
	}
	if n.HasAttribute("hidden") || n.HasAttribute("key") {
		t.Error("false booleans and keys must not produce attributes")
	}

	n.DispatchEvent(dom.NewEvent("click", false))
	if clicks != 1 {
		t.Errorf("clicks = %d", clicks)
	}
}

func TestBuildSVGClassAndAttributes(t *testing.T) {
	b := newBuilder()
	tree := vdom.Circle(vdom.Class("ring"), vdom.Attr("cx", 50), vdom.Attr("viewBox", "0 0 1 1"))
	n, err := b.Build(tree)
	if err != nil {
		t.Fatal(err)
	}
	if n.GetAttribute("class") != "ring" {
		t.Errorf("svg class attr = %q", n.GetAttribute("class"))
	}
	if n.GetAttribute("cx") != "50" || n.GetAttribute("viewBox") != "0 0 1 1" {
		t.Errorf("svg attrs = %s", n.OuterHTML())
	}
}

func TestBuildRefsAtBuildTime(t *testing.T) {
	b := newBuilder()
	needle := vdom.NewRef()
	tree := vdom.Svg(vdom.Path(vdom.UseRef(needle)))

	if _, err := b.Build(tree); err != nil {
		t.Fatal(err)
	}
	if needle.Node() == nil || needle.Node() != tree.Children[0].MountedNode {
		t.Error("ref should point at the built node")
	}
	if needle.Arena() != b.Arena() {
		t.Error("ref should be registered in the builder's arena")
	}
}

type gauge struct {
	before int
	value  float64
}

func (g *gauge) OnBeforeRender() { g.before++ }
func (g *gauge) Render() *vdom.VNode {
	return vdom.Svg(vdom.Attr("data-value", g.value))
}

func TestBuildComponent(t *testing.T) {
	b := newBuilder()
	var made *gauge
	factory := vdom.Factory(func(p vdom.Props) (vdom.Component, error) {
		v, _ := p.Value("value").(float64)
		made = &gauge{value: v}
		return made, nil
	})
	ref := vdom.NewRef()

	v, n, err := b.Create(factory, vdom.Props{vdom.Attr("value", 0.5), vdom.UseRef(ref)})
	if err != nil {
		t.Fatal(err)
	}
	if made.before != 1 {
		t.Errorf("OnBeforeRender calls = %d", made.before)
	}
	if v.Instance != made || v.Rendered == nil || v.MountedNode != n {
		t.Error("component VNode not populated")
	}
	if ref.Component() != made || ref.Node() != nil {
		t.Error("component refs bind the instance, not a node")
	}
	if n.GetAttribute("data-value") != "0.5" {
		t.Errorf("rendered = %s", n.OuterHTML())
	}
}

type nilRender struct{}

func (nilRender) Render() *vdom.VNode { return nil }

type panicRender struct{}

func (panicRender) Render() *vdom.VNode { panic("render exploded") }

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name string
		tree *vdom.VNode
		code string
	}{
		{"nil render", vdom.C(vdom.Static(nilRender{})), "E200"},
		{"factory error", vdom.C(func(vdom.Props) (vdom.Component, error) {
			return nil, errors.New("no sim")
		}), "E201"},
		{"factory panic", vdom.C(func(vdom.Props) (vdom.Component, error) {
			panic("boom")
		}), "E201"},
		{"render panic", vdom.C(vdom.Static(panicRender{})), "E202"},
		{"empty tag", &vdom.VNode{Kind: vdom.KindElement}, "E203"},
		{"bad tag", vdom.H("bad tag"), "E242"},
		{"nested failure", vdom.Div(vdom.Span(vdom.C(vdom.Static(nilRender{})))), "E200"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := newBuilder().Build(tt.tree)
			if n != nil {
				t.Error("failed builds must not return a partial tree")
			}
			if !gkerrors.HasCode(err, tt.code) {
				t.Errorf("err = %v, want %s", err, tt.code)
			}
		})
	}

	if _, err := newBuilder().Build(nil); !gkerrors.HasCode(err, "E203") {
		t.Errorf("Build(nil) err = %v", err)
	}
	if _, _, err := newBuilder().Create(42, nil); !gkerrors.HasCode(err, "E203") {
		t.Errorf("Create(42) err = %v", err)
	}
}

func TestBuildReactiveStyle(t *testing.T) {
	b := newBuilder()
	opacity := reactive.New(0.0)
	tree := vdom.Div(vdom.Style("opacity", opacity))

	n, err := b.Build(tree)
	if err != nil {
		t.Fatal(err)
	}
	if got := n.Style().GetPropertyValue("opacity"); got != "0" {
		t.Errorf("opacity = %q, want 0", got)
	}
	opacity.Set(0.5)
	if got := n.Style().GetPropertyValue("opacity"); got != "0.5" {
		t.Errorf("opacity = %q, want 0.5", got)
	}

	vdom.Release(tree)
	opacity.Set(1)
	if got := n.Style().GetPropertyValue("opacity"); got != "0.5" {
		t.Errorf("released binding still updates: %q", got)
	}
	if opacity.Subscribers() != 0 {
		t.Errorf("Subscribers() = %d after Release", opacity.Subscribers())
	}
}

func TestBuildReactiveAttributesAndText(t *testing.T) {
	b := newBuilder()
	heading := reactive.New(90)
	mode := reactive.New("normal")
	label := reactive.Map[int, string](heading, func(h int) string { return dom.FormatValue(h) + "°" })

	tree := vdom.Div(
		vdom.Data("heading", heading),
		vdom.Class("hsi"),
		vdom.ClassOf(mode),
		vdom.Attr("title", label),
		label,
	)
	n, err := b.Build(tree)
	if err != nil {
		t.Fatal(err)
	}
	if n.GetAttribute("data-heading") != "90" || n.ClassName() != "hsi normal" || n.TextContent() != "90°" {
		t.Fatalf("initial = %s", n.OuterHTML())
	}

	heading.Set(270)
	mode.Set("alert")
	if n.GetAttribute("data-heading") != "270" {
		t.Errorf("data-heading = %q", n.GetAttribute("data-heading"))
	}
	if n.ClassName() != "hsi alert" {
		t.Errorf("class = %q", n.ClassName())
	}
	if n.GetAttribute("title") != "270°" || n.TextContent() != "270°" {
		t.Errorf("title/text = %q/%q", n.GetAttribute("title"), n.TextContent())
	}
}

func TestBuildForeignDOMChild(t *testing.T) {
	other := dom.NewDocument(dom.WithName("other"), dom.WithAdoptPolicy(dom.AdoptUnavailable))
	foreign, _ := other.CreateElement("canvas")

	b := newBuilder()
	tree := vdom.Div(foreign)
	n, err := b.Build(tree)
	if err != nil {
		t.Fatal(err)
	}
	child := n.FirstChild()
	if child == nil || child.OwnerDocument() != b.Document() {
		t.Fatal("foreign DOM children must be moved into the build document")
	}
	if child != foreign {
		t.Error("the build document adopts, so identity should be kept")
	}
}
