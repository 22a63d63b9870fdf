package telemetry

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	gkerrors "github.com/vango-dev/gaugekit/internal/errors"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("counter Write() error: %v", err)
	}
	return m.GetCounter().GetValue()
}

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var m dto.Metric
	if err := g.Write(&m); err != nil {
		t.Fatalf("gauge Write() error: %v", err)
	}
	return m.GetGauge().GetValue()
}

func histogramCount(t *testing.T, o prometheus.Observer) uint64 {
	t.Helper()
	metric, ok := o.(prometheus.Metric)
	if !ok {
		t.Fatalf("observer %T does not implement prometheus.Metric", o)
	}
	var m dto.Metric
	if err := metric.Write(&m); err != nil {
		t.Fatalf("histogram Write() error: %v", err)
	}
	return m.GetHistogram().GetSampleCount()
}

func TestStageRecordsDurationAndErrors(t *testing.T) {
	tel := New(WithRegistry(prometheus.NewRegistry()))

	_, s := tel.StartStage(context.Background(), "build")
	s.End(nil)
	_, s = tel.StartStage(context.Background(), "build")
	s.End(gkerrors.New("E200"))

	if got := histogramCount(t, tel.stageDuration.WithLabelValues("build")); got != 2 {
		t.Errorf("build duration samples = %d, want 2", got)
	}
	if got := counterValue(t, tel.stageErrors.WithLabelValues("build", "E200")); got != 1 {
		t.Errorf("E200 errors = %v, want 1", got)
	}
}

func TestRecorders(t *testing.T) {
	tel := New(WithRegistry(prometheus.NewRegistry()), WithNamespace("test"))

	tel.RecordRender(nil)
	tel.RecordRender(errors.New("x"))
	tel.RecordRender(nil)
	tel.RecordNodes(12)
	tel.RecordNodes(0)
	tel.RecordMount("import")
	tel.RecordRef("data")
	tel.RecordRef("data")
	tel.EnvOpened()
	tel.EnvOpened()
	tel.EnvClosed()

	checks := []struct {
		name string
		c    prometheus.Counter
		want float64
	}{
		{"renders ok", tel.rendersTotal.WithLabelValues("ok"), 2},
		{"renders error", tel.rendersTotal.WithLabelValues("error"), 1},
		{"nodes", tel.nodesBuilt, 12},
		{"mount import", tel.mountStrategy.WithLabelValues("import"), 1},
		{"refs data", tel.refsResolved.WithLabelValues("data"), 2},
	}
	for _, c := range checks {
		if got := counterValue(t, c.c); got != c.want {
			t.Errorf("%s = %v, want %v", c.name, got, c.want)
		}
	}
	if got := gaugeValue(t, tel.activeEnvs); got != 1 {
		t.Errorf("active envs = %v, want 1", got)
	}
}

func TestRegistryCollision(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(WithRegistry(reg))
	defer func() {
		if recover() == nil {
			t.Error("registering twice on one registry should panic")
		}
	}()
	New(WithRegistry(reg))
}

func TestErrorCode(t *testing.T) {
	wrapped := fmt.Errorf("mount: %w", gkerrors.New("E221"))
	if got := ErrorCode(wrapped); got != "E221" {
		t.Errorf("ErrorCode = %q", got)
	}
	if got := ErrorCode(errors.New("plain")); got != "unknown" {
		t.Errorf("ErrorCode(plain) = %q", got)
	}
}
