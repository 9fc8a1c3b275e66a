package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	stepDuration *prom.HistogramVec
	stepResults  *prom.CounterVec
	runOutcome   *prom.CounterVec
	filesSynced  prom.Gauge
}

// NewPrometheusRecorder constructs and registers the cloudmirror metrics on
// the given registry (a fresh registry when nil).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		stepDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "cloudmirror",
			Name:      "step_duration_seconds",
			Help:      "Duration of individual pipeline steps",
			Buckets:   prom.DefBuckets,
		}, []string{"step"}),
		stepResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "cloudmirror",
			Name:      "step_results_total",
			Help:      "Step result counts by outcome",
		}, []string{"step", "result"}),
		runOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "cloudmirror",
			Name:      "run_outcomes_total",
			Help:      "Workflow run outcomes by final status",
		}, []string{"workflow", "outcome"}),
		filesSynced: prom.NewGauge(prom.GaugeOpts{
			Namespace: "cloudmirror",
			Name:      "files_synced",
			Help:      "Files present in the working tree after the last sync",
		}),
	}
	reg.MustRegister(pr.stepDuration, pr.stepResults, pr.runOutcome, pr.filesSynced)
	return pr
}

func (pr *PrometheusRecorder) ObserveStepDuration(step string, d time.Duration) {
	pr.stepDuration.WithLabelValues(step).Observe(d.Seconds())
}

func (pr *PrometheusRecorder) IncStepResult(step string, success bool) {
	result := "failure"
	if success {
		result = "success"
	}
	pr.stepResults.WithLabelValues(step, result).Inc()
}

func (pr *PrometheusRecorder) IncRunOutcome(workflow, outcome string) {
	pr.runOutcome.WithLabelValues(workflow, outcome).Inc()
}

func (pr *PrometheusRecorder) SetFilesSynced(n int) {
	pr.filesSynced.Set(float64(n))
}
