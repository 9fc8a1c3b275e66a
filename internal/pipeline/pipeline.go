package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/cloudmirror/internal/config"
	"git.home.luguber.info/inful/cloudmirror/internal/logfields"
	"git.home.luguber.info/inful/cloudmirror/internal/metrics"
)

// Runner executes workflows against one settings instance and its adapters.
// It is strictly sequential: each step blocks until its adapter call returns,
// and no step runs after a failure.
type Runner struct {
	settings *config.Settings
	git      GitAdapter
	cloud    CloudAdapter
	recorder metrics.Recorder
}

// NewRunner creates a pipeline runner. Metrics default to the noop recorder.
func NewRunner(settings *config.Settings, gitAdapter GitAdapter, cloudAdapter CloudAdapter) *Runner {
	return &Runner{
		settings: settings,
		git:      gitAdapter,
		cloud:    cloudAdapter,
		recorder: metrics.NoopRecorder{},
	}
}

// WithRecorder installs a metrics recorder.
func (r *Runner) WithRecorder(recorder metrics.Recorder) *Runner {
	if recorder != nil {
		r.recorder = recorder
	}
	return r
}

// Run executes the named workflow's steps in order, halting at the first
// failing step. The overall result is success iff every executed step
// succeeded.
func (r *Runner) Run(ctx context.Context, workflow Workflow) RunResult {
	result := RunResult{
		RunID:    uuid.NewString(),
		Workflow: workflow,
	}

	slog.Info("Starting workflow", logfields.Workflow(string(workflow)), logfields.RunID(result.RunID))

	for _, step := range Steps(workflow) {
		start := time.Now()
		err := r.executeStep(ctx, step, &result)
		stepResult := StepResult{Step: step, Duration: time.Since(start), Err: err}
		result.Steps = append(result.Steps, stepResult)

		r.recorder.ObserveStepDuration(string(step), stepResult.Duration)
		r.recorder.IncStepResult(string(step), stepResult.Success())

		if err != nil {
			slog.Error("Step failed, halting workflow",
				logfields.Workflow(string(workflow)),
				logfields.Step(string(step)),
				logfields.DurationMS(float64(stepResult.Duration.Milliseconds())),
				logfields.Error(err))
			result.Err = err
			break
		}
		slog.Info("Step completed",
			logfields.Step(string(step)),
			logfields.DurationMS(float64(stepResult.Duration.Milliseconds())))
	}

	outcome := "success"
	if !result.Success() {
		outcome = "failure"
	}
	r.recorder.IncRunOutcome(string(workflow), outcome)
	slog.Info("Workflow finished", logfields.Workflow(string(workflow)), logfields.RunID(result.RunID), slog.String("outcome", outcome))
	return result
}

// executeStep dispatches one step identifier to its adapter call.
func (r *Runner) executeStep(ctx context.Context, step StepID, result *RunResult) error {
	switch step {
	case StepEnsureCloned:
		_, err := r.git.EnsureCloned()
		return err

	case StepUpdate:
		_, err := r.git.Update()
		return err

	case StepCloudSync:
		if _, err := r.cloud.TestConnection(ctx); err != nil {
			return err
		}
		count, err := r.cloud.SyncToLocal(ctx, r.settings.LocalRepoPath)
		if err != nil {
			return err
		}
		result.FilesSynced = count
		r.recorder.SetFilesSynced(count)
		return nil

	case StepShowChanges:
		// Diagnostic only; a report failure never fails the run.
		changed, err := r.git.ChangedFiles()
		if err != nil {
			slog.Warn("Failed to list changed files", logfields.Error(err))
			return nil
		}
		if len(changed) == 0 {
			slog.Info("No files changed after sync")
			return nil
		}
		slog.Info("Files changed after sync", logfields.Files(len(changed)))
		for _, path := range changed {
			slog.Debug("Changed file", logfields.Path(path))
		}
		return nil

	case StepCommitPush:
		commit, err := r.git.CommitAndPush()
		if err != nil {
			return err
		}
		result.Committed = commit.Committed
		result.CommitSHA = commit.CommitSHA
		return nil

	default:
		// Unreachable for workflows built through ParseWorkflow.
		return nil
	}
}
