package fixture

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vango-dev/gaugekit/internal/errors"
	"github.com/vango-dev/gaugekit/internal/snapshot"
	"github.com/vango-dev/gaugekit/pkg/harness"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func runner() *Runner {
	return &Runner{Options: []harness.Option{harness.WithLogger(quiet)}}
}

func TestLoadDir(t *testing.T) {
	fixtures, err := LoadDir("testdata", "*.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if len(fixtures) != 2 {
		t.Fatalf("loaded %d fixtures", len(fixtures))
	}
	if fixtures[0].Name != "range-rings" || fixtures[1].Name != "id-and-classes" {
		t.Errorf("names = %s, %s", fixtures[0].Name, fixtures[1].Name)
	}
	if got := strings.Join(fixtures[0].RefNames(), ","); got != "r25,r50,r100,r200" {
		t.Errorf("RefNames() = %s", got)
	}
	circle := fixtures[0].Tree.Children[0].Children[0]
	if circle.Line != 12 {
		t.Errorf("circle line = %d", circle.Line)
	}
}

func TestRunRings(t *testing.T) {
	f, err := Load(filepath.Join("testdata", "rings.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	store, err := snapshot.NewDirStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	rn := runner()
	rn.Snapshots = store

	res := rn.Run(context.Background(), f)
	if !res.Passed() {
		t.Fatalf("failures: %v", res.Err())
	}
	if res.Snapshot != "created" || res.Mount != "import" {
		t.Errorf("snapshot = %s, mount = %s", res.Snapshot, res.Mount)
	}
	if res.Summary != "4 refs: 4 data" {
		t.Errorf("summary = %q", res.Summary)
	}
	if len(res.Refs) != 4 || res.Refs[3].Node != `<circle class="ring" data-range="200">` {
		t.Errorf("refs = %+v", res.Refs)
	}

	res = rn.Run(context.Background(), f)
	if res.Snapshot != "matched" {
		t.Errorf("second run snapshot = %s", res.Snapshot)
	}
}

func TestRunIDAndClasses(t *testing.T) {
	f, err := Load(filepath.Join("testdata", "spans.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	res := runner().Run(context.Background(), f)
	if err := res.Err(); err != nil {
		t.Fatal(err)
	}
	if res.Mount != "import" {
		t.Errorf("mount = %s", res.Mount)
	}
}

func TestFailedExpectations(t *testing.T) {
	f, err := Parse([]byte(`
name: wrong
harness: {separateBuildDocument: true, adopt: unavailable}
tree:
  tag: div
  children:
    - {tag: span, id: a, ref: a}
    - {tag: b, ref: gone}
expect:
  refs:
    a: {selector: span#b, strategy: class}
    gone: {unbound: true}
  unresolved: 1
`), "wrong.yaml")
	if err != nil {
		t.Fatal(err)
	}
	res := runner().Run(context.Background(), f)
	if res.Passed() {
		t.Fatal("fixture should fail")
	}
	if len(res.Failures) != 4 {
		t.Errorf("failures = %q", res.Failures)
	}
	if !errors.HasCode(res.Err(), "E161") {
		t.Errorf("Err() = %v", res.Err())
	}
}

func TestSameDocumentFastPath(t *testing.T) {
	f, err := Parse([]byte(`
tree: {tag: div, ref: root}
expect:
  refs:
    root: {strategy: fast}
`), "fast.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if f.Name != "fast" {
		t.Errorf("default name = %q", f.Name)
	}
	res := runner().Run(context.Background(), f)
	if err := res.Err(); err != nil {
		t.Error(err)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
		line int
	}{
		{"empty", ``, "is empty", 0},
		{"no tree", `name: x`, "has no tree", 0},
		{"unknown field", "tree: {tag: div}\ncolour: red", "colour", 2},
		{"tag and text", "tree:\n  tag: div\n  children:\n    - {tag: b, text: hi}", "both tag and text", 4},
		{"neither", "tree:\n  children: [{tag: b}]", "needs a tag or text", 2},
		{"text with ref", "tree: {tag: div, children: [{text: hi, ref: r}]}", "text nodes take no", 1},
		{"duplicate ref", "tree: {tag: div, ref: r, children: [{tag: b, ref: r}]}", "declared twice", 1},
		{"unknown ref", "tree: {tag: div}\nexpect: {refs: {r: {}}}", "names no declared ref", 0},
		{"bad strategy", "tree: {tag: div, ref: r}\nexpect: {refs: {r: {strategy: magic}}}", "unknown strategy", 0},
		{"bad adopt", "harness: {adopt: sometimes}\ntree: {tag: div}", "harness.adopt", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src), "bad.yaml")
			if !errors.HasCode(err, "E160") {
				t.Fatalf("err = %v", err)
			}
			ge := err.(*errors.GaugeError)
			if !strings.Contains(ge.Detail, tt.want) {
				t.Errorf("detail = %q, want %q", ge.Detail, tt.want)
			}
			if tt.line == 0 {
				return
			}
			if ge.Location == nil || ge.Location.Line != tt.line {
				t.Fatalf("location = %+v, want line %d", ge.Location, tt.line)
			}
			x := ge.Excerpt
			if x == nil || tt.line < x.First || tt.line >= x.First+len(x.Lines) {
				t.Fatalf("excerpt = %+v, want one covering line %d", x, tt.line)
			}
			if got, want := x.Lines[tt.line-x.First], strings.Split(tt.src, "\n")[tt.line-1]; got != want {
				t.Errorf("excerpt line %d = %q, want %q", tt.line, got, want)
			}
		})
	}
}

func TestParseErrorFormatPointsAtNode(t *testing.T) {
	errors.DisableColors()
	defer errors.EnableColors()

	src := "name: bad\ntree:\n  tag: div\n  children:\n    - {tag: b, text: hi}\n"
	_, err := Parse([]byte(src), "bad.yaml")
	ge, ok := err.(*errors.GaugeError)
	if !ok {
		t.Fatalf("err = %v", err)
	}
	out := ge.Format()
	for _, want := range []string{
		"at bad.yaml:5:7",
		"> 5 |     - {tag: b, text: hi}",
		"|       ^",
		"node has both tag and text",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Format should contain %q, got:\n%s", want, out)
		}
	}
}

func TestLoadMissing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); !errors.HasCode(err, "E162") {
		t.Errorf("err = %v", err)
	}
}

func TestLoadDirDuplicateNames(t *testing.T) {
	dir := t.TempDir()
	for _, f := range []string{"a.yaml", "b.yaml"} {
		if err := os.WriteFile(filepath.Join(dir, f), []byte("name: same\ntree: {tag: div}\n"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := LoadDir(dir, "*.yaml"); !errors.HasCode(err, "E160") {
		t.Errorf("err = %v", err)
	}
}

func TestBuildAttributes(t *testing.T) {
	f, err := Parse([]byte(`
tree:
  tag: div
  id: dial
  class: "gauge  primary"
  style: {opacity: "0.5"}
  attrs: {role: img}
  data: {unit: knots}
`), "build.yaml")
	if err != nil {
		t.Fatal(err)
	}
	rn := runner()
	res := rn.Run(context.Background(), f)
	for _, want := range []string{`id="dial"`, `class="gauge primary"`, `role="img"`, `data-unit="knots"`, `opacity: 0.5`} {
		if !strings.Contains(res.HTML, want) {
			t.Errorf("HTML %s missing %s", res.HTML, want)
		}
	}
}
