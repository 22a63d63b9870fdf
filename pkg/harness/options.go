package harness

import (
	"log/slog"

	"github.com/vango-dev/gaugekit/internal/config"
	"github.com/vango-dev/gaugekit/pkg/bridge"
	"github.com/vango-dev/gaugekit/pkg/dom"
	"github.com/vango-dev/gaugekit/pkg/reactive"
	"github.com/vango-dev/gaugekit/pkg/simvar"
	"github.com/vango-dev/gaugekit/pkg/telemetry"
)

// Config configures an Env.
type Config struct {
	// Name labels the environment in logs. Default: the env id.
	Name string

	// SeparateBuildDocument builds trees in their own document so mounting
	// crosses a document boundary.
	SeparateBuildDocument bool

	// Adopt selects how the mount document answers AdoptNode.
	Adopt dom.AdoptPolicy

	// StrictAppend makes the mount document reject foreign nodes on append.
	StrictAppend bool

	// NoImport makes ImportNode unavailable in the mount document.
	NoImport bool

	// AppendFirst appends built roots as is and only copies them when the
	// append is rejected.
	AppendFirst bool

	// Logger receives pipeline logs. Default: slog.Default().
	Logger *slog.Logger

	// Telemetry records metrics and spans. Default: a private registry.
	Telemetry *telemetry.Telemetry

	// CellOptions apply to the cells of a store created by New.
	CellOptions []reactive.Option

	// SimVars and Bridge are the simulator mocks handed to components.
	// Fresh ones are created when nil.
	SimVars *simvar.Store
	Bridge  *bridge.Bridge
}

// Option configures an Env.
type Option func(*Config)

// WithName sets the environment label.
func WithName(name string) Option {
	return func(c *Config) {
		c.Name = name
	}
}

// WithSeparateBuildDocument builds trees outside the mount document.
func WithSeparateBuildDocument() Option {
	return func(c *Config) {
		c.SeparateBuildDocument = true
	}
}

// WithAdoptPolicy sets the mount document's AdoptNode behavior.
func WithAdoptPolicy(p dom.AdoptPolicy) Option {
	return func(c *Config) {
		c.Adopt = p
	}
}

// WithStrictAppend makes cross-document appends fail.
func WithStrictAppend() Option {
	return func(c *Config) {
		c.StrictAppend = true
	}
}

// WithoutImport disables ImportNode in the mount document.
func WithoutImport() Option {
	return func(c *Config) {
		c.NoImport = true
	}
}

// WithAppendFirst tries a plain append before adopting or copying.
func WithAppendFirst() Option {
	return func(c *Config) {
		c.AppendFirst = true
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = l
	}
}

// WithTelemetry sets the metrics and tracing sink.
func WithTelemetry(t *telemetry.Telemetry) Option {
	return func(c *Config) {
		c.Telemetry = t
	}
}

// WithSimVars sets the simulator variable store.
func WithSimVars(s *simvar.Store) Option {
	return func(c *Config) {
		c.SimVars = s
	}
}

// WithBridge sets the call bridge.
func WithBridge(b *bridge.Bridge) Option {
	return func(c *Config) {
		c.Bridge = b
	}
}

// FromConfig applies the harness section of a project configuration.
// Unknown adopt policies are rejected by config.Validate, so they are
// treated as native here.
func FromConfig(cfg *config.Config) Option {
	return func(c *Config) {
		c.SeparateBuildDocument = cfg.Harness.SeparateBuildDocument
		c.StrictAppend = cfg.Harness.StrictAppend
		if p, err := dom.ParseAdoptPolicy(cfg.Harness.Adopt); err == nil {
			c.Adopt = p
		}
		c.CellOptions = append(c.CellOptions,
			reactive.WithPanicPolicy(reactive.ParsePanicPolicy(cfg.Reactive.PanicPolicy)))
	}
}
