package metrics

import (
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	rec := NewPrometheusRecorder(reg)

	rec.ObserveStepDuration("cloud_sync", 2*time.Second)
	rec.IncStepResult("cloud_sync", true)
	rec.IncStepResult("cloud_sync", true)
	rec.IncStepResult("commit_and_push", false)
	rec.IncRunOutcome("all", "success")
	rec.SetFilesSynced(42)

	if got := testutil.ToFloat64(rec.stepResults.WithLabelValues("cloud_sync", "success")); got != 2 {
		t.Errorf("cloud_sync success count = %v, want 2", got)
	}
	if got := testutil.ToFloat64(rec.stepResults.WithLabelValues("commit_and_push", "failure")); got != 1 {
		t.Errorf("commit_and_push failure count = %v, want 1", got)
	}
	if got := testutil.ToFloat64(rec.runOutcome.WithLabelValues("all", "success")); got != 1 {
		t.Errorf("run outcome count = %v, want 1", got)
	}
	if got := testutil.ToFloat64(rec.filesSynced); got != 42 {
		t.Errorf("files synced gauge = %v, want 42", got)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatal(err)
	}
	if len(families) != 4 {
		t.Errorf("expected 4 metric families, got %d", len(families))
	}
}

func TestNewPrometheusRecorderNilRegistry(t *testing.T) {
	rec := NewPrometheusRecorder(nil)
	rec.IncRunOutcome("sync", "failure")
	if got := testutil.ToFloat64(rec.runOutcome.WithLabelValues("sync", "failure")); got != 1 {
		t.Errorf("count = %v, want 1", got)
	}
}

func TestNoopRecorderSatisfiesInterface(t *testing.T) {
	var r Recorder = NoopRecorder{}
	r.ObserveStepDuration("update", time.Second)
	r.IncStepResult("update", true)
	r.IncRunOutcome("update", "success")
	r.SetFilesSynced(1)
}
