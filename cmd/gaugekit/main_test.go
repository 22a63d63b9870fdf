package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vango-dev/gaugekit/internal/errors"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(&stdout, &stderr)
	cmd.SetArgs(append([]string{"--no-color", "--log-level=error"}, args...))
	err := cmd.Execute()
	return stdout.String(), err
}

func newProject(t *testing.T, template string) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "instruments")
	if _, err := execute(t, "init", dir, "--template", template); err != nil {
		t.Fatalf("init: %v", err)
	}
	return dir
}

func TestVersionShort(t *testing.T) {
	out, err := execute(t, "version", "--short")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != version {
		t.Errorf("version --short = %q", out)
	}
}

func TestInit(t *testing.T) {
	dir := newProject(t, "panel")
	for _, p := range []string{"gaugekit.json", "fixtures/range-rings.yaml", "fixtures/dial.yaml"} {
		if _, err := os.Stat(filepath.Join(dir, p)); err != nil {
			t.Errorf("missing %s: %v", p, err)
		}
	}

	_, err := execute(t, "init", dir)
	if !errors.HasCode(err, "E140") {
		t.Errorf("second init err = %v, want E140", err)
	}
}

func TestInitUnknownTemplate(t *testing.T) {
	_, err := execute(t, "init", t.TempDir(), "--template", "cockpit")
	if !errors.HasCode(err, "E143") {
		t.Errorf("err = %v, want E143", err)
	}
}

func TestInitS3NeedsBucket(t *testing.T) {
	_, err := execute(t, "init", t.TempDir(), "--template", "s3")
	if !errors.HasCode(err, "E121") {
		t.Errorf("err = %v, want E121", err)
	}
}

func TestCheck(t *testing.T) {
	dir := newProject(t, "panel")
	cfg := filepath.Join(dir, "gaugekit.json")

	out, err := execute(t, "--config", cfg, "check")
	if err != nil {
		t.Fatalf("check: %v\n%s", err, out)
	}
	if !strings.Contains(out, "✓ range-rings") || !strings.Contains(out, "snapshot created") {
		t.Errorf("output:\n%s", out)
	}
	if !strings.Contains(out, "0 failed") {
		t.Errorf("output:\n%s", out)
	}

	out, err = execute(t, "--config", cfg, "check", "range-rings")
	if err != nil {
		t.Fatalf("second check: %v", err)
	}
	if strings.Contains(out, "snapshot created") || strings.Contains(out, "dial") {
		t.Errorf("second check output:\n%s", out)
	}
}

func TestCheckFailure(t *testing.T) {
	dir := newProject(t, "minimal")
	broken := `name: broken
tree:
  tag: div
  children:
    - {tag: span, id: a, ref: a}
expect:
  refs:
    a: {selector: "span#b"}
`
	if err := os.WriteFile(filepath.Join(dir, "fixtures", "broken.yaml"), []byte(broken), 0644); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "--config", filepath.Join(dir, "gaugekit.json"), "check", "--no-snapshots")
	if !errors.HasCode(err, "E142") {
		t.Fatalf("err = %v, want E142", err)
	}
	if !strings.Contains(out, "✗ broken") || !strings.Contains(out, "want span#b") {
		t.Errorf("output:\n%s", out)
	}
	if !strings.Contains(out, "1 passed, 1 failed") {
		t.Errorf("output:\n%s", out)
	}
}

func TestCheckUnknownName(t *testing.T) {
	dir := newProject(t, "minimal")
	_, err := execute(t, "--config", filepath.Join(dir, "gaugekit.json"), "check", "airspeed")
	if !errors.HasCode(err, "E162") {
		t.Errorf("err = %v, want E162", err)
	}
}

func TestCheckJSON(t *testing.T) {
	dir := newProject(t, "minimal")
	out, err := execute(t, "--config", filepath.Join(dir, "gaugekit.json"), "check", "--json")
	if err != nil {
		t.Fatal(err)
	}
	var results []struct {
		Name    string `json:"name"`
		Summary string `json:"summary"`
		Refs    []struct {
			Name     string `json:"name"`
			Strategy string `json:"strategy"`
		} `json:"refs"`
	}
	if err := json.Unmarshal([]byte(out), &results); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if len(results) != 1 || results[0].Name != "range-rings" {
		t.Fatalf("results = %+v", results)
	}
	if results[0].Summary != "4 refs: 4 data" || results[0].Refs[0].Strategy != "data" {
		t.Errorf("result = %+v", results[0])
	}
}

func TestRender(t *testing.T) {
	dir := newProject(t, "minimal")
	path := filepath.Join(dir, "fixtures", "range-rings.yaml")

	out, err := execute(t, "--config", filepath.Join(dir, "gaugekit.json"), "render", path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, `<circle class="ring" data-range="25">`) {
		t.Errorf("html missing:\n%s", out)
	}
	if !strings.Contains(out, "mount: import") || !strings.Contains(out, "r200") {
		t.Errorf("report missing:\n%s", out)
	}

	// Adopting natively moves the built tree, so every handle is kept and
	// the fixture's data expectations no longer hold.
	out, err = execute(t, "--config", filepath.Join(dir, "gaugekit.json"), "render", path, "--adopt=native")
	if !errors.HasCode(err, "E161") {
		t.Fatalf("err = %v, want E161", err)
	}
	if !strings.Contains(out, "mount: adopt") || !strings.Contains(out, "4 refs: 4 fast") {
		t.Errorf("output:\n%s", out)
	}
}

func TestRenderBadAdopt(t *testing.T) {
	dir := newProject(t, "minimal")
	_, err := execute(t, "--config", filepath.Join(dir, "gaugekit.json"),
		"render", filepath.Join(dir, "fixtures", "range-rings.yaml"), "--adopt=sometimes")
	if !errors.HasCode(err, "E123") {
		t.Errorf("err = %v, want E123", err)
	}
}
