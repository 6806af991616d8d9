package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestExpvarMetricsRecorderAggregates(t *testing.T) {
	rec := NewExpvarMetricsRecorder("")
	if rec.Name() == "" {
		t.Fatalf("expected generated name")
	}
	ctx := context.Background()
	rec.Observe(ctx, "register_probe", true, 10*time.Millisecond)
	rec.Observe(ctx, "register_probe", true, 5*time.Millisecond)
	rec.Observe(ctx, "register_probe", false, time.Millisecond)
	rec.Observe(ctx, "", true, time.Millisecond) // ignored

	snap := rec.Snapshot()
	if snap.DurationsMS["register_probe"] != 16 {
		t.Fatalf("unexpected duration total %v", snap.DurationsMS)
	}
	if snap.Results["register_probe"]["success"] != 2 || snap.Results["register_probe"]["error"] != 1 {
		t.Fatalf("unexpected results %v", snap.Results)
	}
	if len(snap.DurationsMS) != 1 {
		t.Fatalf("empty operation must be ignored: %v", snap.DurationsMS)
	}
}

func TestExpvarSnapshotIsolatedCopy(t *testing.T) {
	rec := NewExpvarMetricsRecorder("")
	rec.Observe(context.Background(), "op", true, time.Millisecond)
	snap := rec.Snapshot()
	snap.Results["op"]["success"] = 99
	if rec.Snapshot().Results["op"]["success"] != 1 {
		t.Fatalf("snapshot must not alias internal state")
	}
}

func TestPrometheusMetricsRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec, err := NewPrometheusMetricsRecorder(reg)
	if err != nil {
		t.Fatalf("new recorder: %v", err)
	}
	ctx := context.Background()
	rec.Observe(ctx, "register_probe", true, 25*time.Millisecond)
	rec.Observe(ctx, "register_probe", false, time.Millisecond)
	rec.Observe(ctx, "", true, time.Millisecond) // ignored

	if got := testutil.ToFloat64(rec.operations.WithLabelValues("register_probe", "success")); got != 1 {
		t.Fatalf("unexpected success count %v", got)
	}
	if got := testutil.ToFloat64(rec.operations.WithLabelValues("register_probe", "error")); got != 1 {
		t.Fatalf("unexpected error count %v", got)
	}
	if got := testutil.CollectAndCount(rec.durations); got != 1 {
		t.Fatalf("expected one histogram series, got %d", got)
	}
}

func TestPrometheusMetricsRecorderDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewPrometheusMetricsRecorder(reg); err != nil {
		t.Fatalf("first registration: %v", err)
	}
	if _, err := NewPrometheusMetricsRecorder(reg); err == nil {
		t.Fatalf("expected duplicate registration error")
	}
}
