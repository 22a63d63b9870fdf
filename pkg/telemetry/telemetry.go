package telemetry

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	gkerrors "github.com/vango-dev/gaugekit/internal/errors"
)

const defaultTracerName = "gaugekit"

// Config configures metrics and tracing.
type Config struct {
	// Namespace is the metrics namespace (default: "gaugekit").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are added to every metric.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for stage durations.
	Buckets []float64

	// Registry receives the metrics.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer

	// TracerName is the name of the tracer (default: "gaugekit").
	TracerName string
}

// Option configures telemetry.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) Option {
	return func(c *Config) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

// WithTracerName sets the tracer name.
func WithTracerName(name string) Option {
	return func(c *Config) {
		c.TracerName = name
	}
}

func defaultConfig() Config {
	return Config{
		Namespace:  "gaugekit",
		Buckets:    []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
		Registry:   prometheus.DefaultRegisterer,
		TracerName: defaultTracerName,
	}
}

// Telemetry holds the pipeline metrics and tracer.
type Telemetry struct {
	rendersTotal  *prometheus.CounterVec
	stageDuration *prometheus.HistogramVec
	stageErrors   *prometheus.CounterVec
	nodesBuilt    prometheus.Counter
	mountStrategy *prometheus.CounterVec
	refsResolved  *prometheus.CounterVec
	activeEnvs    prometheus.Gauge

	tracer trace.Tracer
}

var (
	defaultTelemetry     *Telemetry
	defaultTelemetryOnce sync.Once
)

// Default returns the process-wide Telemetry registered with the default
// Prometheus registerer. It is created on first use.
func Default() *Telemetry {
	defaultTelemetryOnce.Do(func() {
		defaultTelemetry = New()
	})
	return defaultTelemetry
}

// Discard returns a Telemetry whose metrics go to a private registry.
func Discard() *Telemetry {
	return New(WithRegistry(prometheus.NewRegistry()))
}

// New registers a fresh set of metrics. Registering twice with the same
// registry panics, as with promauto.
func New(opts ...Option) *Telemetry {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Telemetry{
		rendersTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "renders_total",
			Help:        "Total number of component renders by status",
			ConstLabels: config.ConstLabels,
		}, []string{"status"}),

		stageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "stage_duration_seconds",
			Help:        "Pipeline stage duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"stage"}),

		stageErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "stage_errors_total",
			Help:        "Total number of failed pipeline stages by error code",
			ConstLabels: config.ConstLabels,
		}, []string{"stage", "code"}),

		nodesBuilt: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "nodes_built_total",
			Help:        "Total number of DOM nodes created by builders",
			ConstLabels: config.ConstLabels,
		}),

		mountStrategy: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "mount_strategy_total",
			Help:        "Mounted roots by transfer strategy",
			ConstLabels: config.ConstLabels,
		}, []string{"strategy"}),

		refsResolved: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "refs_resolved_total",
			Help:        "Reference handles by reconcile strategy",
			ConstLabels: config.ConstLabels,
		}, []string{"strategy"}),

		activeEnvs: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "active_envs",
			Help:        "Number of open harness environments",
			ConstLabels: config.ConstLabels,
		}),

		tracer: otel.Tracer(config.TracerName),
	}
}

// Stage is one traced and timed pipeline step.
type Stage struct {
	t     *Telemetry
	name  string
	start time.Time
	span  trace.Span
}

// StartStage starts a span and timer for a pipeline stage.
func (t *Telemetry) StartStage(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, *Stage) {
	ctx, span := t.tracer.Start(ctx, "gaugekit."+name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
	return ctx, &Stage{t: t, name: name, start: time.Now(), span: span}
}

// SetAttributes adds attributes to the stage's span.
func (s *Stage) SetAttributes(attrs ...attribute.KeyValue) {
	s.span.SetAttributes(attrs...)
}

// End records the stage duration and ends its span. A non-nil err marks the
// span failed and counts the error by code.
func (s *Stage) End(err error) {
	s.t.stageDuration.WithLabelValues(s.name).Observe(time.Since(s.start).Seconds())
	if err != nil {
		code := ErrorCode(err)
		s.t.stageErrors.WithLabelValues(s.name, code).Inc()
		s.span.RecordError(err)
		s.span.SetStatus(codes.Error, err.Error())
		s.span.SetAttributes(attribute.String("gaugekit.error_code", code))
	} else {
		s.span.SetStatus(codes.Ok, "")
	}
	s.span.End()
}

// RecordRender counts a finished render.
func (t *Telemetry) RecordRender(err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	t.rendersTotal.WithLabelValues(status).Inc()
}

// RecordNodes adds n to the built node count.
func (t *Telemetry) RecordNodes(n int) {
	if n > 0 {
		t.nodesBuilt.Add(float64(n))
	}
}

// RecordMount counts a mount by strategy name.
func (t *Telemetry) RecordMount(strategy string) {
	t.mountStrategy.WithLabelValues(strategy).Inc()
}

// RecordRef counts one reconciled handle by strategy name.
func (t *Telemetry) RecordRef(strategy string) {
	t.refsResolved.WithLabelValues(strategy).Inc()
}

// EnvOpened increments the open environment gauge.
func (t *Telemetry) EnvOpened() { t.activeEnvs.Inc() }

// EnvClosed decrements the open environment gauge.
func (t *Telemetry) EnvClosed() { t.activeEnvs.Dec() }

// ErrorCode returns the code of the outermost GaugeError in err, or
// "unknown".
func ErrorCode(err error) string {
	var ge *gkerrors.GaugeError
	if errors.As(err, &ge) && ge.Code != "" {
		return ge.Code
	}
	return "unknown"
}
