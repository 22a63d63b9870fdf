package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/gaugekit/internal/config"
	"github.com/vango-dev/gaugekit/internal/errors"
	"github.com/vango-dev/gaugekit/internal/templates"
)

func initCmd(_ *globalFlags) *cobra.Command {
	var opts initOptions

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Create a fixture project",
		Long: `Create gaugekit.json and a set of starter fixtures.

Templates:
  minimal   One range-ring fixture
  panel     Readouts, tick marks and a dial
  s3        Like minimal, with snapshots stored in S3

Examples:
  gaugekit init
  gaugekit init instruments --template=panel
  gaugekit init --template=s3 --bucket=my-snapshots`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.dir = "."
			if len(args) == 1 {
				opts.dir = args[0]
			}
			return runInit(cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.template, "template", "t", "minimal", "Project template ("+strings.Join(templates.List(), ", ")+")")
	cmd.Flags().StringVar(&opts.name, "name", "", "Project name (default: directory name)")
	cmd.Flags().StringVar(&opts.description, "description", "", "Project description")
	cmd.Flags().StringVar(&opts.bucket, "bucket", "", "S3 bucket for the s3 template")
	cmd.Flags().StringVar(&opts.region, "region", "", "S3 region for the s3 template")

	return cmd
}

type initOptions struct {
	dir         string
	template    string
	name        string
	description string
	bucket      string
	region      string
}

func runInit(w io.Writer, opts initOptions) error {
	dir, err := filepath.Abs(opts.dir)
	if err != nil {
		return err
	}
	if config.Exists(dir) {
		return errors.New("E140").WithDetail(filepath.Join(dir, config.ConfigFileName) + " already exists")
	}

	tmpl, err := templates.Get(opts.template)
	if err != nil {
		return err
	}
	if opts.template == "s3" && opts.bucket == "" {
		return errors.New("E121").WithDetail("the s3 template needs --bucket").
			WithSuggestion("gaugekit init --template=s3 --bucket=<name>")
	}

	name := opts.name
	if name == "" {
		name = filepath.Base(dir)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	info(w, "Creating project from '%s' template...", tmpl.Name)
	err = tmpl.Create(dir, templates.Config{
		ProjectName: name,
		Description: opts.description,
		Bucket:      opts.bucket,
		Region:      opts.region,
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(w)
	success(w, "Created %s", name)
	for _, p := range tmpl.Paths() {
		info(w, "%s", p)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  To get started:")
	fmt.Fprintln(w)
	if opts.dir != "." {
		fmt.Fprintf(w, "    cd %s\n", opts.dir)
	}
	fmt.Fprintln(w, "    gaugekit check")
	fmt.Fprintln(w)
	return nil
}
