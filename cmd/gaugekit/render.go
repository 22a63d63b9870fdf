package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/vango-dev/gaugekit/internal/config"
	"github.com/vango-dev/gaugekit/internal/errors"
	"github.com/vango-dev/gaugekit/internal/fixture"
	"github.com/vango-dev/gaugekit/pkg/dom"
	"github.com/vango-dev/gaugekit/pkg/harness"
	"github.com/vango-dev/gaugekit/pkg/telemetry"
)

func renderCmd(flags *globalFlags) *cobra.Command {
	var (
		adopt    string
		separate bool
		strict   bool
		report   bool
	)

	cmd := &cobra.Command{
		Use:   "render <fixture.yaml>",
		Short: "Render one fixture file and print the mounted HTML",
		Long: `Render a fixture file and print the container's HTML, followed by how
each reference handle was resolved.

Flags override the fixture's harness settings. gaugekit.json is optional
for this command.

Examples:
  gaugekit render fixtures/range-rings.yaml
  gaugekit render rings.yaml --adopt=reject --separate
  gaugekit render rings.yaml --report=false`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var overrides []harness.Option
			if cmd.Flags().Changed("adopt") {
				p, err := dom.ParseAdoptPolicy(adopt)
				if err != nil {
					return errors.New("E123").WithDetail("--adopt: " + err.Error())
				}
				overrides = append(overrides, harness.WithAdoptPolicy(p))
			}
			if cmd.Flags().Changed("separate") {
				overrides = append(overrides, func(c *harness.Config) { c.SeparateBuildDocument = separate })
			}
			if cmd.Flags().Changed("strict-append") {
				overrides = append(overrides, func(c *harness.Config) { c.StrictAppend = strict })
			}
			return runRender(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), flags, args[0], overrides, report)
		},
	}

	cmd.Flags().StringVar(&adopt, "adopt", "native", "AdoptNode behavior: native, unavailable, reject")
	cmd.Flags().BoolVar(&separate, "separate", false, "Build in a separate document")
	cmd.Flags().BoolVar(&strict, "strict-append", false, "Reject cross-document appends")
	cmd.Flags().BoolVar(&report, "report", true, "Print the reference report")

	return cmd
}

func runRender(ctx context.Context, stdout, stderr io.Writer, flags *globalFlags, path string, overrides []harness.Option, report bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := flags.loadConfig()
	if errors.HasCode(err, "E141") {
		cfg, err = config.New(), nil
	}
	if err != nil {
		return err
	}

	f, err := fixture.Load(path)
	if err != nil {
		return err
	}

	base := []harness.Option{
		harness.FromConfig(cfg),
		harness.WithLogger(newLogger(cfg, stderr)),
		harness.WithTelemetry(telemetry.Discard()),
	}
	// Fixture settings come after the project's, flags last.
	rn := &fixture.Runner{Options: base}
	res := rn.RunWith(ctx, f, overrides...)

	fmt.Fprintln(stdout, res.HTML)
	if report {
		fmt.Fprintln(stdout)
		info(stdout, "mount: %s", res.Mount)
		info(stdout, "refs:  %s", res.Summary)
		for _, r := range res.Refs {
			node := r.Node
			if node == "" {
				node = "(none)"
			}
			info(stdout, "  %-12s %-10s %s", r.Name, r.Strategy, node)
		}
	}
	return res.Err()
}
