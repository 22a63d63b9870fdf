package reconcile

import (
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/vango-dev/gaugekit/pkg/dom"
	"github.com/vango-dev/gaugekit/pkg/render"
	"github.com/vango-dev/gaugekit/pkg/vdom"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

// mountApart builds tree in one document and mounts it into another that
// cannot adopt, so every handle starts out pointing at a detached node.
func mountApart(t *testing.T, tree *vdom.VNode) (*dom.Node, []Site) {
	t.Helper()
	build := dom.NewDocument(dom.WithName("build"))
	mount := dom.NewDocument(dom.WithName("mount"), dom.WithAdoptPolicy(dom.AdoptUnavailable))
	if _, err := render.NewBuilder(build).Build(tree); err != nil {
		t.Fatalf("Build: %v", err)
	}
	sites := Collect(tree)
	if _, err := render.Mount(tree, mount.Body()); err != nil {
		t.Fatalf("Mount: %v", err)
	}
	return mount.Body(), sites
}

func run(tree *vdom.VNode, container *dom.Node, sites []Site) Report {
	return New(WithLogger(quiet)).Reconcile(tree, container, sites)
}

func TestFastAcceptKeepsBindings(t *testing.T) {
	doc := dom.NewDocument()
	a, b := vdom.NewRef(), vdom.NewRef()
	tree := vdom.Svg(vdom.Circle(vdom.UseRef(a), vdom.Class("ring")), vdom.Circle(vdom.UseRef(b), vdom.Class("ring")))
	if _, err := render.NewBuilder(doc).Build(tree); err != nil {
		t.Fatal(err)
	}
	sites := Collect(tree)
	if _, err := render.Mount(tree, doc.Body()); err != nil {
		t.Fatal(err)
	}
	before := []*dom.Node{a.Node(), b.Node()}

	rep := run(tree, doc.Body(), sites)
	if a.Node() != before[0] || b.Node() != before[1] {
		t.Error("fast-accepted handles must not move")
	}
	if rep.Count(Fast) != 2 {
		t.Errorf("report = %s", rep)
	}
}

func TestDistinctIDsResolveUniquely(t *testing.T) {
	refs := make([]*vdom.Ref, 5)
	for i := range refs {
		refs[i] = vdom.NewNamedRef(fmt.Sprintf("r%d", i))
	}
	tree := vdom.Div(
		vdom.Svg(vdom.ID("face"), vdom.UseRef(refs[0]),
			vdom.G(vdom.ID("ticks"), vdom.UseRef(refs[1]),
				vdom.Line(vdom.ID("t0"), vdom.UseRef(refs[2])),
				vdom.Line(vdom.ID("t1"), vdom.UseRef(refs[3])),
			),
		),
		vdom.Span(vdom.ID("readout"), vdom.UseRef(refs[4]), "0"),
	)
	container, sites := mountApart(t, tree)
	rep := run(tree, container, sites)

	want := []string{"face", "ticks", "t0", "t1", "readout"}
	for i, r := range refs {
		n := r.Node()
		if n == nil || n.ID() != want[i] {
			t.Errorf("%s bound to %v, want #%s", r.Name(), n, want[i])
			continue
		}
		if !container.Contains(n) {
			t.Errorf("%s outside the container", r.Name())
		}
		for j := 0; j < i; j++ {
			if refs[j].Node() == n {
				t.Errorf("%s and %s share a node", refs[j].Name(), r.Name())
			}
		}
	}
	if rep.Count(ByID) != 5 {
		t.Errorf("report = %s", rep)
	}
}

func TestDataBeatsClass(t *testing.T) {
	refs := make([]*vdom.Ref, 4)
	children := []any{
		// A decoy earlier in the document that only a class match would take.
		vdom.Div(vdom.Class("cell"), vdom.Data("index", 99)),
	}
	for i := range refs {
		refs[i] = vdom.NewRef()
		children = append(children, vdom.Div(vdom.Class("cell"), vdom.Data("index", i), vdom.UseRef(refs[i])))
	}
	tree := vdom.Div(children...)
	container, sites := mountApart(t, tree)
	rep := run(tree, container, sites)

	for i, r := range refs {
		if got := r.Node().GetAttribute("data-index"); got != fmt.Sprint(i) {
			t.Errorf("ref %d bound to data-index %q", i, got)
		}
	}
	if rep.Count(ByData) != 4 {
		t.Errorf("report = %s", rep)
	}
}

func TestRingsResolveByDataRange(t *testing.T) {
	ranges := []int{25, 50, 100, 200}
	refs := make([]*vdom.Ref, len(ranges))
	var circles []any
	for i, r := range ranges {
		refs[i] = vdom.NewRef()
		circles = append(circles, vdom.Circle(vdom.Class("ring"), vdom.Data("range", r), vdom.UseRef(refs[i])))
	}
	tree := vdom.Svg(vdom.G(circles...))
	container, sites := mountApart(t, tree)
	run(tree, container, sites)

	for i, r := range refs {
		n := r.Node()
		if n == nil || !container.Contains(n) {
			t.Fatalf("ring %d not resolved into the container", i)
		}
		if got := n.GetAttribute("data-range"); got != fmt.Sprint(ranges[i]) {
			t.Errorf("ring %d data-range = %q", i, got)
		}
		if n.NamespaceURI() != dom.SVGNamespace {
			t.Errorf("ring %d namespace = %q", i, n.NamespaceURI())
		}
	}
}

func TestIDAndClassSpansResolve(t *testing.T) {
	x, y1, y2 := vdom.NewRef(), vdom.NewRef(), vdom.NewRef()
	tree := vdom.Div(
		vdom.Span(vdom.Class("y"), vdom.UseRef(y1)),
		vdom.Span(vdom.ID("x"), vdom.UseRef(x)),
		vdom.Span(vdom.Class("y"), vdom.UseRef(y2)),
	)
	container, sites := mountApart(t, tree)
	rep := run(tree, container, sites)

	if x.Node() == nil || x.Node().ID() != "x" {
		t.Errorf("id handle bound to %v", x.Node())
	}
	if y1.Node() == nil || y2.Node() == nil || y1.Node() == y2.Node() {
		t.Fatal("class handles must bind two different spans")
	}
	for _, r := range []*vdom.Ref{y1, y2} {
		if !r.Node().ClassList().Contains("y") || !container.Contains(r.Node()) {
			t.Errorf("class handle bound to %s", r.Node().OuterHTML())
		}
	}
	if res, _ := rep.Lookup(x); res.Strategy != ByID {
		t.Errorf("x strategy = %v", res.Strategy)
	}
	if rep.Count(ByClass) != 2 {
		t.Errorf("report = %s", rep)
	}
}

func TestClassRequiresEveryToken(t *testing.T) {
	r := vdom.NewRef()
	tree := vdom.Div(
		vdom.Span(vdom.Class("needle")),
		vdom.Span(vdom.Class("needle", "primary"), vdom.UseRef(r)),
	)
	container, sites := mountApart(t, tree)
	run(tree, container, sites)

	if r.Node() == nil || !r.Node().ClassList().Contains("primary") {
		t.Errorf("bound to %v", r.Node())
	}
}

func TestIdenticalSiblingsFallBackToPosition(t *testing.T) {
	refs := []*vdom.Ref{vdom.NewRef(), vdom.NewRef(), vdom.NewRef()}
	tree := vdom.Div(vdom.Span(vdom.UseRef(refs[0])), vdom.Span(vdom.UseRef(refs[1])), vdom.Span(vdom.UseRef(refs[2])))
	container, sites := mountApart(t, tree)
	rep := run(tree, container, sites)

	spans := container.FirstChild().Children()
	for i, r := range refs {
		if r.Node() != spans[i] {
			t.Errorf("ref %d not bound to span %d", i, i)
		}
	}
	if rep.Count(Structural) != 3 {
		t.Errorf("report = %s", rep)
	}
}

func TestDuplicateIDNeverSharesNode(t *testing.T) {
	a, b := vdom.NewRef(), vdom.NewRef()
	tree := vdom.Div(vdom.Span(vdom.ID("dup"), vdom.UseRef(a)), vdom.Span(vdom.ID("dup"), vdom.UseRef(b)))
	container, sites := mountApart(t, tree)
	rep := run(tree, container, sites)

	if a.Node() == nil || b.Node() == nil || a.Node() == b.Node() {
		t.Fatalf("a=%v b=%v", a.Node(), b.Node())
	}
	if res, _ := rep.Lookup(b); res.Strategy != Structural {
		t.Errorf("b strategy = %v", res.Strategy)
	}
	if b.Node() != container.FirstChild().LastChild() {
		t.Error("b should take the second span")
	}
}

func TestMixedCaseSVGTag(t *testing.T) {
	r := vdom.NewRef()
	tree := vdom.Svg(vdom.Defs(
		vdom.ClipPath(vdom.Data("clip", "bezel")),
		vdom.ClipPath(vdom.Data("clip", "dial"), vdom.UseRef(r)),
	))
	container, sites := mountApart(t, tree)
	rep := run(tree, container, sites)

	if r.Node() == nil || r.Node().GetAttribute("data-clip") != "dial" || r.Node().LocalName() != "clipPath" {
		t.Errorf("bound to %v", r.Node())
	}
	if res, _ := rep.Lookup(r); res.Strategy != ByData {
		t.Errorf("strategy = %v", res.Strategy)
	}
}

func TestContainerIsNeverACandidate(t *testing.T) {
	tests := []struct {
		name  string
		attr  string
		value string
		tree  func(r *vdom.Ref) *vdom.VNode
		want  Strategy
	}{
		{"id", "id", "root", func(r *vdom.Ref) *vdom.VNode {
			return vdom.Div(vdom.ID("root"), vdom.UseRef(r), vdom.Span("alt"))
		}, ByID},
		{"class", "class", "gauge", func(r *vdom.Ref) *vdom.VNode {
			return vdom.Div(vdom.Class("gauge"), vdom.UseRef(r))
		}, ByClass},
		{"data", "data-kind", "dial", func(r *vdom.Ref) *vdom.VNode {
			return vdom.Div(vdom.Data("kind", "dial"), vdom.UseRef(r))
		}, ByData},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			build := dom.NewDocument(dom.WithName("build"))
			mount := dom.NewDocument(dom.WithName("mount"), dom.WithAdoptPolicy(dom.AdoptUnavailable))
			container, _ := mount.CreateElement("div")
			_ = container.SetAttribute(tt.attr, tt.value)
			_, _ = mount.Body().AppendChild(container)

			r := vdom.NewRef()
			tree := tt.tree(r)
			if _, err := render.NewBuilder(build).Build(tree); err != nil {
				t.Fatal(err)
			}
			sites := Collect(tree)
			res, err := render.Mount(tree, container)
			if err != nil {
				t.Fatal(err)
			}
			rep := run(tree, container, sites)

			if r.Node() == container {
				t.Fatal("handle bound to the container")
			}
			if r.Node() != res.Root {
				t.Errorf("handle bound to %v, want the mounted root", r.Node())
			}
			if got, _ := rep.Lookup(r); got.Strategy != tt.want {
				t.Errorf("strategy = %v, want %v", got.Strategy, tt.want)
			}
		})
	}
}

func TestWalkPrefersDescendantCarryingID(t *testing.T) {
	a, b := vdom.NewRef(), vdom.NewRef()
	tree := vdom.Div(
		vdom.Span(vdom.ID("dup"), vdom.UseRef(a)),
		vdom.Div(vdom.Span(vdom.ID("dup"), vdom.UseRef(b))),
	)
	container, sites := mountApart(t, tree)

	// Wrap b's span so the position the walk reaches first is a bare span.
	inner := container.FirstChild().LastChild()
	target := inner.FirstChild()
	wrapper, _ := container.OwnerDocument().CreateElement("span")
	if _, err := inner.InsertBefore(wrapper, target); err != nil {
		t.Fatal(err)
	}
	if _, err := wrapper.AppendChild(target); err != nil {
		t.Fatal(err)
	}

	rep := run(tree, container, sites)
	if a.Node() != container.FirstChild().FirstChild() {
		t.Errorf("a bound to %v", a.Node())
	}
	if b.Node() != target {
		t.Errorf("b bound to %s, want the span with the id", b.Node().OuterHTML())
	}
	if res, _ := rep.Lookup(b); res.Strategy != Structural {
		t.Errorf("b strategy = %v", res.Strategy)
	}
}

func TestWalkRecoversDisplacedParent(t *testing.T) {
	tests := []struct {
		name   string
		marker any
	}{
		{"id", vdom.ID("panel")},
		{"data", vdom.Data("panel", "fuel")},
		{"class", vdom.Class("panel")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := vdom.NewRef()
			tree := vdom.Div(vdom.Section(tt.marker, vdom.Span(vdom.UseRef(r))))
			container, sites := mountApart(t, tree)

			// A foreign element in front of the section breaks the
			// positional match, leaving only the section's own markers.
			root := container.FirstChild()
			section := root.FirstChild()
			intruder, _ := container.OwnerDocument().CreateElement("p")
			if _, err := root.InsertBefore(intruder, section); err != nil {
				t.Fatal(err)
			}

			rep := run(tree, container, sites)
			if r.Node() != section.FirstChild() {
				t.Errorf("bound to %v, want the span inside the section", r.Node())
			}
			if res, _ := rep.Lookup(r); res.Strategy != Structural {
				t.Errorf("strategy = %v", res.Strategy)
			}
		})
	}
}

func TestDataHandlesSurviveReorderedSiblings(t *testing.T) {
	const n = 8
	refs := make([]*vdom.Ref, n)
	var cells []any
	for i := range refs {
		refs[i] = vdom.NewRef()
		cells = append(cells, vdom.Span(vdom.Class("cell"), vdom.Data("row", i/2), vdom.Data("col", i%2), vdom.UseRef(refs[i])))
	}
	tree := vdom.Div(cells...)
	container, sites := mountApart(t, tree)

	// Reverse the mounted siblings so position and class both mislead.
	root := container.FirstChild()
	kids := root.Children()
	for i := len(kids) - 1; i >= 0; i-- {
		if _, err := root.AppendChild(kids[i]); err != nil {
			t.Fatal(err)
		}
	}

	rep := run(tree, container, sites)
	for i, r := range refs {
		node := r.Node()
		if node == nil {
			t.Fatalf("ref %d unresolved", i)
		}
		row, col := node.GetAttribute("data-row"), node.GetAttribute("data-col")
		if row != fmt.Sprint(i/2) || col != fmt.Sprint(i%2) {
			t.Errorf("ref %d bound to row %s col %s", i, row, col)
		}
	}
	if rep.Count(ByData) != n {
		t.Errorf("report = %s", rep)
	}
}

func TestUnresolvedHandlesAreCleared(t *testing.T) {
	build := dom.NewDocument(dom.WithName("build"))
	orphanRef := vdom.NewNamedRef("orphan")
	orphan := vdom.Rect(vdom.ID("nowhere"), vdom.UseRef(orphanRef))
	if _, err := render.NewBuilder(build).Build(orphan); err != nil {
		t.Fatal(err)
	}

	tree := vdom.Svg()
	container, sites := mountApart(t, tree)
	sites = append(sites, Collect(orphan)...)

	var seen []Resolution
	rep := New(WithLogger(quiet), WithObserver(func(r Resolution) { seen = append(seen, r) })).
		Reconcile(tree, container, sites)

	if orphanRef.IsSet() {
		t.Error("stale handle should be cleared")
	}
	if rep.OK() || len(rep.Unresolved()) != 1 || !rep.Unresolved()[0].Cleared {
		t.Errorf("report = %+v", rep)
	}
	if len(seen) != 1 || seen[0].Label() != "orphan" {
		t.Errorf("observer saw %+v", seen)
	}
}

func TestCollectSkipsComponentRefs(t *testing.T) {
	compRef, inner := vdom.NewRef(), vdom.NewRef()
	panel := vdom.Func(func() *vdom.VNode {
		return vdom.Div(vdom.Span(vdom.UseRef(inner)))
	})
	tree := vdom.Div(vdom.C(panel, vdom.UseRef(compRef)))
	container, sites := mountApart(t, tree)

	if len(sites) != 1 || sites[0].Ref != inner {
		t.Fatalf("sites = %+v", sites)
	}
	rep := run(tree, container, sites)
	if !rep.OK() || !container.Contains(inner.Node()) {
		t.Errorf("report = %s", rep)
	}
	if compRef.Component() == nil {
		t.Error("component handle should still hold its instance")
	}
}

func TestReportString(t *testing.T) {
	r := Report{Resolutions: []Resolution{
		{Strategy: ByID}, {Strategy: ByData}, {Strategy: ByData}, {Strategy: Unresolved},
	}}
	if got, want := r.String(), "4 refs: 1 id, 2 data, 1 unresolved"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	if (Report{}).String() != "0 refs" {
		t.Errorf("empty = %q", Report{}.String())
	}
}
