package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vango-dev/gaugekit/internal/dev"
	"github.com/vango-dev/gaugekit/internal/snapshot"
)

func serveCmd(flags *globalFlags) *cobra.Command {
	var (
		port  int
		host  string
		watch bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the fixture inspector",
		Long: `Start an HTTP server that runs fixtures and shows the results.

Features:
  • Fixture list with the last result of each
  • JSON API for runs and fixtures
  • Live reload over WebSocket when fixtures change (--watch)
  • Prometheus metrics at /metrics

Examples:
  gaugekit serve
  gaugekit serve --port=8080 --watch
  gaugekit serve --host=0.0.0.0`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), flags, port, host, watch)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to run on (default from gaugekit.json)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from gaugekit.json)")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Re-run fixtures when their files change")

	return cmd
}

func runServe(ctx context.Context, stdout, stderr io.Writer, flags *globalFlags, port int, host string, watch bool) error {
	cfg, err := flags.loadConfig()
	if err != nil {
		return err
	}
	if port > 0 {
		cfg.Serve.Port = port
	}
	if host != "" {
		cfg.Serve.Host = host
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	store, err := snapshot.Open(cfg)
	if err != nil {
		return err
	}

	printBanner(stdout)
	fmt.Fprintln(stdout, "  serve")
	fmt.Fprintln(stdout)
	info(stdout, "Inspector: %s", cfg.ServeURL())
	info(stdout, "Fixtures:  %s", cfg.FixturesPath())
	if watch {
		info(stdout, "Watching for changes...")
	}
	fmt.Fprintln(stdout)

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := dev.NewServer(dev.ServerOptions{
		Config:    cfg,
		Logger:    newLogger(cfg, stderr),
		Snapshots: store,
		Watch:     watch,
		OnRun: func(run *dev.Run) {
			if run.Failed > 0 {
				failure(stdout, "run %s: %d passed, %d failed", run.ID, run.Passed, run.Failed)
				return
			}
			success(stdout, "run %s: %d passed", run.ID, run.Passed)
		},
	})
	return server.Start(ctx)
}
