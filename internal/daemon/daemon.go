// Package daemon runs the mirror pipeline unattended: a fixed-interval
// schedule drives the all workflow, outcomes land in the run-history store,
// and Prometheus metrics plus a health endpoint are served over HTTP.
//
// Runs against the same working tree are serialized by the scheduler's
// singleton mode; the pipeline itself has no internal locking.
package daemon

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/cloudmirror/internal/cloud"
	"git.home.luguber.info/inful/cloudmirror/internal/config"
	fnderr "git.home.luguber.info/inful/cloudmirror/internal/foundation/errors"
	"git.home.luguber.info/inful/cloudmirror/internal/git"
	"git.home.luguber.info/inful/cloudmirror/internal/history"
	"git.home.luguber.info/inful/cloudmirror/internal/logfields"
	"git.home.luguber.info/inful/cloudmirror/internal/metrics"
	"git.home.luguber.info/inful/cloudmirror/internal/pipeline"
)

// Options configures a Daemon.
type Options struct {
	Settings *config.Settings
	Workflow pipeline.Workflow
	Interval time.Duration

	// Resolve re-resolves settings after a config change. Optional; when nil
	// the daemon keeps its initial settings for its whole lifetime.
	Resolve func() (*config.Settings, error)
	// ConfigFile is watched for changes when Resolve is set.
	ConfigFile string

	// ListenAddr serves /metrics and /healthz. Empty disables the server.
	ListenAddr string
	// HistoryPath is the SQLite run-history database path. Empty disables
	// history.
	HistoryPath string
}

// Daemon owns the scheduler, the metrics registry, the HTTP server, and the
// run-history store.
type Daemon struct {
	opts      Options
	scheduler gocron.Scheduler
	registry  *prom.Registry
	recorder  *metrics.PrometheusRecorder
	store     history.Store
	server    *httpServer
	watcher   *configWatcher

	mu           sync.Mutex
	settings     *config.Settings
	reloadNeeded bool
	lastOutcome  string
}

// New creates a daemon from options. Interval defaults to one hour, workflow
// to all.
func New(opts Options) (*Daemon, error) {
	if opts.Settings == nil {
		return nil, fnderr.DaemonError("daemon requires resolved settings").Build()
	}
	if opts.Interval <= 0 {
		opts.Interval = time.Hour
	}
	if opts.Workflow == "" {
		opts.Workflow = pipeline.WorkflowAll
	}

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fnderr.DaemonError("failed to create scheduler").WithCause(err).Build()
	}

	registry := prom.NewRegistry()
	d := &Daemon{
		opts:      opts,
		scheduler: scheduler,
		registry:  registry,
		recorder:  metrics.NewPrometheusRecorder(registry),
		settings:  opts.Settings,
	}

	if opts.HistoryPath != "" {
		store, err := history.NewSQLiteStore(opts.HistoryPath)
		if err != nil {
			return nil, fnderr.DaemonError("failed to open run history store").WithCause(err).Build()
		}
		d.store = store
	}
	if opts.ListenAddr != "" {
		d.server = newHTTPServer(opts.ListenAddr, registry, d.healthStatus)
	}
	if opts.ConfigFile != "" && opts.Resolve != nil {
		d.watcher = newConfigWatcher(opts.ConfigFile, d.markReload)
	}
	return d, nil
}

// Start schedules the mirror job and blocks until ctx is canceled.
func (d *Daemon) Start(ctx context.Context) error {
	_, err := d.scheduler.NewJob(
		gocron.DurationJob(d.opts.Interval),
		gocron.NewTask(d.runOnce),
		gocron.WithName("mirror"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return fnderr.DaemonError("failed to schedule mirror job").WithCause(err).Build()
	}

	if d.server != nil {
		d.server.start()
	}
	if d.watcher != nil {
		if err := d.watcher.start(); err != nil {
			slog.Warn("Config watcher unavailable", logfields.Error(err))
		}
	}

	slog.Info("Daemon started",
		logfields.Workflow(string(d.opts.Workflow)),
		slog.Duration("interval", d.opts.Interval))
	d.scheduler.Start()

	<-ctx.Done()
	return nil
}

// Stop shuts the daemon down gracefully.
func (d *Daemon) Stop(ctx context.Context) error {
	slog.Info("Stopping daemon")
	if d.watcher != nil {
		d.watcher.stop()
	}
	var firstErr error
	if err := d.scheduler.Shutdown(); err != nil {
		firstErr = err
	}
	if d.server != nil {
		if err := d.server.stop(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if d.store != nil {
		if err := d.store.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if firstErr != nil {
		return fnderr.DaemonError("daemon shutdown incomplete").WithCause(firstErr).Build()
	}
	return nil
}

// markReload flags the settings for re-resolution before the next run.
func (d *Daemon) markReload() {
	d.mu.Lock()
	d.reloadNeeded = true
	d.mu.Unlock()
	slog.Info("Configuration change detected, will re-resolve before next run")
}

// currentSettings returns the settings to use for the next run, re-resolving
// them when a config change was observed. A failed re-resolution keeps the
// previous settings.
func (d *Daemon) currentSettings() *config.Settings {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.reloadNeeded && d.opts.Resolve != nil {
		if fresh, err := d.opts.Resolve(); err != nil {
			slog.Error("Settings re-resolution failed, keeping previous settings", logfields.Error(err))
		} else {
			d.settings = fresh
			slog.Info("Settings re-resolved")
		}
		d.reloadNeeded = false
	}
	return d.settings
}

// runOnce executes one scheduled workflow run and records the outcome.
func (d *Daemon) runOnce() {
	settings := d.currentSettings()
	started := time.Now()

	runner := pipeline.NewRunner(settings, git.NewClient(settings), cloud.NewAdapter(settings)).
		WithRecorder(d.recorder)
	result := runner.Run(context.Background(), d.opts.Workflow)

	outcome := "success"
	if !result.Success() {
		outcome = "failure"
	}
	d.mu.Lock()
	d.lastOutcome = outcome
	d.mu.Unlock()

	if d.store == nil {
		return
	}
	run := history.Run{
		ID:            result.RunID,
		Workflow:      string(result.Workflow),
		StartedAt:     started,
		FinishedAt:    time.Now(),
		Outcome:       outcome,
		FilesSynced:   result.FilesSynced,
		Committed:     result.Committed,
		CommitSHA:     result.CommitSHA,
		ErrorCategory: result.ErrorCategory(),
	}
	if result.Err != nil {
		if classified, ok := fnderr.AsClassified(result.Err); ok {
			run.ErrorMessage = classified.Message()
		} else {
			run.ErrorMessage = result.Err.Error()
		}
	}
	recordCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := d.store.Record(recordCtx, run); err != nil {
		slog.Warn("Failed to record run history", logfields.RunID(result.RunID), logfields.Error(err))
	}
}

// healthStatus reports the last run outcome for the health endpoint.
func (d *Daemon) healthStatus() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.lastOutcome == "" {
		return "idle"
	}
	return d.lastOutcome
}
