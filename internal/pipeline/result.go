package pipeline

import (
	"time"

	fnderr "git.home.luguber.info/inful/cloudmirror/internal/foundation/errors"
)

// StepResult is the outcome of one executed step.
type StepResult struct {
	Step     StepID
	Duration time.Duration
	Err      error
}

// Success reports whether the step completed without error.
func (r StepResult) Success() bool { return r.Err == nil }

// RunResult aggregates the outcome of one workflow run. Steps after the first
// failing step are never executed and never appear in Steps.
type RunResult struct {
	RunID       string
	Workflow    Workflow
	Steps       []StepResult
	FilesSynced int
	Committed   bool
	CommitSHA   string
	Err         error
}

// Success reports whether every executed step succeeded.
func (r RunResult) Success() bool { return r.Err == nil }

// ErrorCategory returns the classification of the failing step's error, or
// empty on success.
func (r RunResult) ErrorCategory() string {
	if r.Err == nil {
		return ""
	}
	return string(fnderr.GetCategory(r.Err))
}
