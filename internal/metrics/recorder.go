// Package metrics defines observability hooks for pipeline runs. The default
// NoopRecorder keeps one-shot CLI invocations dependency-free at runtime; the
// daemon installs the Prometheus recorder.
package metrics

import "time"

// Recorder defines observability hooks for workflow and step metrics.
type Recorder interface {
	ObserveStepDuration(step string, d time.Duration)
	IncStepResult(step string, success bool)
	IncRunOutcome(workflow string, outcome string) // outcome: success|failure
	SetFilesSynced(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics are not
// configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStepDuration(string, time.Duration) {}
func (NoopRecorder) IncStepResult(string, bool)                {}
func (NoopRecorder) IncRunOutcome(string, string)              {}
func (NoopRecorder) SetFilesSynced(int)                        {}
