package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/vango-dev/gaugekit/internal/errors"
	"github.com/vango-dev/gaugekit/internal/fixture"
	"github.com/vango-dev/gaugekit/internal/snapshot"
	"github.com/vango-dev/gaugekit/pkg/harness"
	"github.com/vango-dev/gaugekit/pkg/telemetry"
)

func checkCmd(flags *globalFlags) *cobra.Command {
	var (
		update      bool
		noSnapshots bool
		jsonOut     bool
		failFast    bool
	)

	cmd := &cobra.Command{
		Use:   "check [fixture...]",
		Short: "Run fixtures and check their expectations",
		Long: `Run every fixture in the project, or only the named ones, and check
that each reference handle resolved as expected.

A fixture that names a snapshot is compared against the stored HTML.
Missing snapshots are recorded; --update re-records changed ones.

Examples:
  gaugekit check
  gaugekit check range-rings dial
  gaugekit check --update
  gaugekit check --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), flags, checkOptions{
				names:       args,
				update:      update,
				noSnapshots: noSnapshots,
				jsonOut:     jsonOut,
				failFast:    failFast,
			})
		},
	}

	cmd.Flags().BoolVarP(&update, "update", "u", false, "Re-record snapshots that differ")
	cmd.Flags().BoolVar(&noSnapshots, "no-snapshots", false, "Skip snapshot comparison")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print results as JSON")
	cmd.Flags().BoolVar(&failFast, "fail-fast", false, "Stop at the first failing fixture")

	return cmd
}

type checkOptions struct {
	names       []string
	update      bool
	noSnapshots bool
	jsonOut     bool
	failFast    bool
}

func runCheck(ctx context.Context, stdout, stderr io.Writer, flags *globalFlags, opts checkOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := flags.loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg, stderr)

	fixtures, err := fixture.LoadDir(cfg.FixturesPath(), cfg.Fixtures.Pattern)
	if err != nil {
		return err
	}
	fixtures, err = selectFixtures(fixtures, opts.names)
	if err != nil {
		return err
	}

	rn := &fixture.Runner{
		Options: []harness.Option{
			harness.FromConfig(cfg),
			harness.WithLogger(logger),
			harness.WithTelemetry(telemetry.Discard()),
		},
		Update: opts.update,
	}
	if !opts.noSnapshots {
		store, err := snapshot.Open(cfg)
		if err != nil {
			return err
		}
		rn.Snapshots = store
	}

	var (
		results []*fixture.Result
		failed  int
	)
	for _, f := range fixtures {
		res := rn.Run(ctx, f)
		results = append(results, res)
		if !opts.jsonOut {
			printResult(stdout, res, cfg.Dir(), f.Path)
		}
		if !res.Passed() {
			failed++
			if opts.failFast {
				break
			}
		}
	}

	if opts.jsonOut {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			return err
		}
	} else {
		fmt.Fprintln(stdout)
		info(stdout, "%d passed, %d failed", len(results)-failed, failed)
	}

	if failed > 0 {
		return errors.New("E142").WithDetail(fmt.Sprintf("%d of %d fixtures failed", failed, len(results)))
	}
	return nil
}

func selectFixtures(all []*fixture.Fixture, names []string) ([]*fixture.Fixture, error) {
	if len(names) == 0 {
		return all, nil
	}
	byName := make(map[string]*fixture.Fixture, len(all))
	for _, f := range all {
		byName[f.Name] = f
	}
	out := make([]*fixture.Fixture, 0, len(names))
	for _, name := range names {
		f, ok := byName[name]
		if !ok {
			return nil, errors.New("E162").WithDetail("no fixture named " + name)
		}
		out = append(out, f)
	}
	return out, nil
}

func printResult(w io.Writer, res *fixture.Result, root, path string) {
	if rel, err := filepath.Rel(root, path); err == nil && !strings.HasPrefix(rel, "..") {
		path = rel
	}
	if res.Passed() {
		line := fmt.Sprintf("%s  %s  (%s)", res.Name, res.Summary, res.Duration.Round(time.Microsecond))
		if res.Snapshot != "" && res.Snapshot != "matched" {
			line += "  snapshot " + res.Snapshot
		}
		success(w, "%s", line)
		return
	}
	failure(w, "%s  %s", res.Name, path)
	if res.Error != "" {
		info(w, "  %s", res.Error)
	}
	for _, f := range res.Failures {
		info(w, "  %s", f)
	}
}
