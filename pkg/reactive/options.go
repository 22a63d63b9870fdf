package reactive

import "log/slog"

// PanicPolicy selects what happens after a subscriber panics.
type PanicPolicy uint8

const (
	// PanicLog logs the panic and continues.
	PanicLog PanicPolicy = iota
	// PanicRethrow re-panics with the first recovered value after all
	// subscribers have run.
	PanicRethrow
)

// String returns the policy name used in configuration.
func (p PanicPolicy) String() string {
	switch p {
	case PanicLog:
		return "log"
	case PanicRethrow:
		return "rethrow"
	default:
		return "unknown"
	}
}

// ParsePanicPolicy maps a configuration value to a policy. Unknown values
// map to PanicLog.
func ParsePanicPolicy(s string) PanicPolicy {
	if s == "rethrow" {
		return PanicRethrow
	}
	return PanicLog
}

// Option configures a cell.
type Option func(*options)

type options struct {
	logger *slog.Logger
	policy PanicPolicy
	name   string
}

// WithLogger sets the logger used to report subscriber panics.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithPanicPolicy sets the subscriber panic policy.
func WithPanicPolicy(p PanicPolicy) Option {
	return func(o *options) { o.policy = p }
}

// WithName labels the cell in log records.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

func applyOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return o
}
