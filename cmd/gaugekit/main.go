package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vango-dev/gaugekit/internal/config"
	"github.com/vango-dev/gaugekit/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ┌─┐┌─┐┬ ┬┌─┐┌─┐┬┌─┬┌┬┐
  │ ┬├─┤│ ││ ┬├┤ ├┴┐│ │
  └─┘┴ ┴└─┘└─┘└─┘┴ ┴┴ ┴
`

// globalFlags are shared by every command.
type globalFlags struct {
	configPath string
	logLevel   string
	logFormat  string
	noColor    bool
}

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		errors.PrintError(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var flags globalFlags

	rootCmd := &cobra.Command{
		Use:   "gaugekit",
		Short: "Render and check cockpit instrument fixtures",
		Long: `gaugekit renders instrument VNode trees in an isolated DOM and checks
that every reference handle ends up on the right mounted element.

  • Cross-document mounts (adopt, import, recreate)
  • Reference reconciliation by id, data, class and position
  • YAML fixtures with HTML snapshots on disk or S3
  • A live inspector with Prometheus metrics`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if flags.noColor || !isTerminal(stderr) {
				errors.DisableColors()
				colors = false
			}
		},
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "c", "", "Path to gaugekit.json (default: search upwards from the working directory)")
	pf.StringVar(&flags.logLevel, "log-level", "", "Log level: debug, info, warn, error (default from gaugekit.json)")
	pf.StringVar(&flags.logFormat, "log-format", "", "Log format: text or json (default from gaugekit.json)")
	pf.BoolVar(&flags.noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(
		initCmd(&flags),
		checkCmd(&flags),
		renderCmd(&flags),
		serveCmd(&flags),
		versionCmd(),
	)
	return rootCmd
}

// loadConfig reads gaugekit.json from --config or the nearest project root
// and applies the logging flags.
func (f *globalFlags) loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if f.configPath != "" {
		cfg, err = config.LoadFile(f.configPath)
	} else {
		cfg, err = config.LoadFromWorkingDir()
	}
	if err != nil {
		return nil, err
	}
	if f.logLevel != "" {
		cfg.Log.Level = f.logLevel
	}
	if f.logFormat != "" {
		cfg.Log.Format = f.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger builds the slog logger described by cfg.
func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel()}
	if cfg.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// printBanner prints the ASCII art banner.
func printBanner(w io.Writer) {
	fmt.Fprint(w, banner)
}

// success prints a success message.
func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", green("✓"), fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "  %s\n", fmt.Sprintf(format, args...))
}

// failure prints a failure message.
func failure(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", red("✗"), fmt.Sprintf(format, args...))
}

var colors = true

func green(s string) string {
	if !colors {
		return s
	}
	return "\033[32m" + s + "\033[0m"
}

func red(s string) string {
	if !colors {
		return s
	}
	return "\033[31m" + s + "\033[0m"
}
