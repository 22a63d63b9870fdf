// Package telemetry records Prometheus metrics and OpenTelemetry spans for
// the render pipeline.
//
// Metrics collected (namespace "gaugekit" by default):
//   - renders_total: renders by status (ok, error)
//   - stage_duration_seconds: build, mount and reconcile durations
//   - stage_errors_total: failed stages by error code
//   - nodes_built_total: DOM nodes created by builders
//   - mount_strategy_total: how mounted roots reached their document
//   - refs_resolved_total: reference handles by reconcile strategy
//   - active_envs: harness environments not yet closed
//
// Spans are started from the global tracer provider. Configure it before
// rendering to export them:
//
//	otel.SetTracerProvider(tp)
//	t := telemetry.New(telemetry.WithRegistry(reg))
package telemetry
