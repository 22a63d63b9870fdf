package templates

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vango-dev/gaugekit/internal/config"
	"github.com/vango-dev/gaugekit/internal/errors"
	"github.com/vango-dev/gaugekit/internal/fixture"
	"github.com/vango-dev/gaugekit/pkg/harness"
)

func TestGet(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"minimal", false},
		{"panel", false},
		{"s3", false},
		{"nonexistent", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl, err := Get(tt.name)
			if tt.wantErr {
				if !errors.HasCode(err, "E143") {
					t.Errorf("err = %v, want E143", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if tmpl.Name != tt.name {
				t.Errorf("Name = %q, want %q", tmpl.Name, tt.name)
			}
			if tmpl.Description == "" {
				t.Error("template should have a description")
			}
		})
	}
}

func TestList(t *testing.T) {
	if got := strings.Join(List(), ","); got != "minimal,panel,s3" {
		t.Errorf("List() = %s", got)
	}
}

func TestTemplatesDoNotShareFiles(t *testing.T) {
	minimal, _ := Get("minimal")
	panel, _ := Get("panel")
	if _, ok := minimal.Files["fixtures/dial.yaml"]; ok {
		t.Error("panel fixtures leaked into minimal")
	}
	if len(panel.Files) <= len(minimal.Files) {
		t.Errorf("panel has %d files, minimal %d", len(panel.Files), len(minimal.Files))
	}
}

// TestTemplate_FixturesPass creates each template and checks its fixtures
// under the generated configuration.
func TestTemplate_FixturesPass(t *testing.T) {
	for _, name := range []string{"minimal", "panel"} {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			tmpl, _ := Get(name)
			if err := tmpl.Create(dir, Config{ProjectName: "pfd"}); err != nil {
				t.Fatalf("Create error: %v", err)
			}

			cfg, err := config.Load(dir)
			if err != nil {
				t.Fatal(err)
			}
			if err := cfg.Validate(); err != nil {
				t.Fatal(err)
			}
			if cfg.Name != "pfd" {
				t.Errorf("config name = %q", cfg.Name)
			}

			fixtures, err := fixture.LoadDir(cfg.FixturesPath(), cfg.Fixtures.Pattern)
			if err != nil {
				t.Fatal(err)
			}
			if len(fixtures) == 0 {
				t.Fatal("no fixtures generated")
			}
			rn := &fixture.Runner{Options: []harness.Option{
				harness.FromConfig(cfg),
				harness.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
			}}
			for _, f := range fixtures {
				if err := rn.Run(context.Background(), f).Err(); err != nil {
					t.Errorf("%s: %s", f.Name, errors.Summary(err))
				}
			}
		})
	}
}

func TestTemplate_Create_S3(t *testing.T) {
	dir := t.TempDir()
	tmpl, _ := Get("s3")
	if err := tmpl.Create(dir, Config{ProjectName: "pfd", Bucket: "cockpit-snapshots"}); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	cfg, err := config.Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Snapshots.Backend != config.SnapshotS3 || cfg.Snapshots.Bucket != "cockpit-snapshots" {
		t.Errorf("snapshots = %+v", cfg.Snapshots)
	}
	if cfg.Snapshots.Region != "us-east-1" || cfg.Snapshots.Prefix != "pfd" {
		t.Errorf("snapshots = %+v", cfg.Snapshots)
	}

	readme, _ := os.ReadFile(filepath.Join(dir, "README.md"))
	if !strings.Contains(string(readme), "Instrument fixtures for pfd") {
		t.Errorf("README = %s", readme)
	}
}
