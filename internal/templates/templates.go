package templates

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"text/template"

	"github.com/vango-dev/gaugekit/internal/errors"
)

// Config contains template configuration.
type Config struct {
	// ProjectName is the name of the project.
	ProjectName string

	// Description is a short project description.
	Description string

	// Bucket is the snapshot bucket for the s3 template.
	Bucket string

	// Region is the bucket's AWS region.
	Region string
}

// Template represents a project template.
type Template struct {
	// Name is the template name.
	Name string

	// Description describes the template.
	Description string

	// Files is a map of relative paths to file contents.
	Files map[string]string
}

// Available templates.
var templates = map[string]*Template{
	"minimal": minimalTemplate(),
	"panel":   panelTemplate(),
	"s3":      s3Template(),
}

// Get returns a template by name.
func Get(name string) (*Template, error) {
	tmpl, ok := templates[name]
	if !ok {
		return nil, errors.New("E143").
			WithDetail("Template '" + name + "' not found").
			WithSuggestion("Available templates: minimal, panel, s3")
	}
	return tmpl, nil
}

// List returns all available template names, sorted.
func List() []string {
	names := make([]string, 0, len(templates))
	for name := range templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Paths returns the template's file paths, sorted.
func (t *Template) Paths() []string {
	paths := make([]string, 0, len(t.Files))
	for p := range t.Files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Create generates a project from the template. Existing files are
// overwritten.
func (t *Template) Create(dir string, cfg Config) error {
	if cfg.Description == "" {
		cfg.Description = "Instrument fixtures for " + cfg.ProjectName
	}
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}
	for _, relPath := range t.Paths() {
		tmpl, err := template.New(relPath).Parse(t.Files[relPath])
		if err != nil {
			return errors.Newf(errors.CategoryCLI, "invalid template %s: %v", relPath, err)
		}

		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, cfg); err != nil {
			return errors.Newf(errors.CategoryCLI, "template execute error %s: %v", relPath, err)
		}

		fullPath := filepath.Join(dir, filepath.FromSlash(relPath))
		if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
			return err
		}
		if err := os.WriteFile(fullPath, buf.Bytes(), 0644); err != nil {
			return err
		}
	}
	return nil
}

const gitignore = `# Snapshot staging files
.snapshot-*
`

const readme = `# {{.ProjectName}}

{{.Description}}

## Getting Started

` + "```" + `bash
# Check every fixture
gaugekit check

# Re-record snapshots after an intended change
gaugekit check --update

# Inspect results in the browser
gaugekit serve --watch
` + "```" + `
`

const ringsFixture = `name: range-rings
description: Range rings built in one document and mounted into another.
harness:
  separateBuildDocument: true
  adopt: unavailable
tree:
  tag: svg
  attrs: {viewBox: "0 0 400 400"}
  children:
    - tag: g
      children:
        - {tag: circle, class: ring, data: {range: "25"}, ref: r25}
        - {tag: circle, class: ring, data: {range: "50"}, ref: r50}
        - {tag: circle, class: ring, data: {range: "100"}, ref: r100}
        - {tag: circle, class: ring, data: {range: "200"}, ref: r200}
expect:
  refs:
    r25: {selector: 'circle[data-range="25"]', strategy: data}
    r50: {selector: 'circle[data-range="50"]', strategy: data}
    r100: {selector: 'circle[data-range="100"]', strategy: data}
    r200: {selector: 'circle[data-range="200"]', strategy: data}
  unresolved: 0
  snapshot: range-rings
`

func minimalTemplate() *Template {
	return &Template{
		Name:        "minimal",
		Description: "gaugekit.json and one example fixture",
		Files: map[string]string{
			"gaugekit.json": `{
  "name": "{{.ProjectName}}",
  "fixtures": {
    "dir": "fixtures",
    "pattern": "*.yaml"
  },
  "harness": {
    "separateBuildDocument": true,
    "adopt": "native"
  },
  "snapshots": {
    "backend": "dir",
    "dir": "testdata/snapshots"
  }
}
`,
			"fixtures/range-rings.yaml": ringsFixture,
			".gitignore":                gitignore,
			"README.md":                 readme,
		},
	}
}

func panelTemplate() *Template {
	t := minimalTemplate()
	t.Name = "panel"
	t.Description = "Instrument fixtures covering every resolution strategy"
	t.Files = copyFiles(t.Files)
	t.Files["fixtures/readouts.yaml"] = `name: readouts
description: One span found by id, two told apart only by class.
harness:
  separateBuildDocument: true
  adopt: reject
tree:
  tag: div
  class: readouts
  children:
    - {tag: span, class: y, ref: y1}
    - {tag: span, id: x, ref: x, children: [{text: "0"}]}
    - {tag: span, class: y, ref: y2}
expect:
  refs:
    x: {selector: "span#x", strategy: id}
    y1: {selector: span.y, strategy: class}
    y2: {selector: span.y, strategy: class}
`
	t.Files["fixtures/ticks.yaml"] = `name: ticks
description: Identical tick marks that only their position tells apart.
harness:
  separateBuildDocument: true
  adopt: unavailable
tree:
  tag: svg
  children:
    - tag: g
      children:
        - {tag: line, ref: t0}
        - {tag: line, ref: t1}
        - {tag: line, ref: t2}
expect:
  refs:
    t0: {selector: "g > line:nth-child(1)", strategy: structural}
    t1: {selector: "g > line:nth-child(2)", strategy: structural}
    t2: {selector: "g > line:nth-child(3)", strategy: structural}
`
	t.Files["fixtures/dial.yaml"] = `name: dial
description: Same-document mount keeps every handle as built.
tree:
  tag: div
  class: dial
  style: {opacity: "0.8"}
  ref: face
  children:
    - {tag: span, class: needle, ref: needle}
expect:
  refs:
    face: {selector: div.dial, strategy: fast}
    needle: {selector: span.needle, strategy: fast}
  snapshot: dial
`
	return t
}

func s3Template() *Template {
	t := minimalTemplate()
	t.Name = "s3"
	t.Description = "Snapshots stored in an S3 bucket"
	t.Files = copyFiles(t.Files)
	t.Files["gaugekit.json"] = `{
  "name": "{{.ProjectName}}",
  "fixtures": {
    "dir": "fixtures",
    "pattern": "*.yaml"
  },
  "harness": {
    "separateBuildDocument": true,
    "adopt": "native"
  },
  "snapshots": {
    "backend": "s3",
    "bucket": "{{.Bucket}}",
    "prefix": "{{.ProjectName}}",
    "region": "{{.Region}}"
  }
}
`
	return t
}

func copyFiles(files map[string]string) map[string]string {
	out := make(map[string]string, len(files))
	for k, v := range files {
		out[k] = v
	}
	return out
}
