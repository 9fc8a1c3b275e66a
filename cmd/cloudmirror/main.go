package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/cloudmirror/internal/cloud"
	"git.home.luguber.info/inful/cloudmirror/internal/config"
	"git.home.luguber.info/inful/cloudmirror/internal/daemon"
	fnderr "git.home.luguber.info/inful/cloudmirror/internal/foundation/errors"
	"git.home.luguber.info/inful/cloudmirror/internal/git"
	"git.home.luguber.info/inful/cloudmirror/internal/history"
	"git.home.luguber.info/inful/cloudmirror/internal/pipeline"
)

var CLI struct {
	Config  string `short:"c" help:"Optional configuration file path"`
	Verbose bool   `short:"v" help:"Enable verbose logging"`

	GitRemoteURL       string   `help:"Git remote repository URL"`
	GitUsername        string   `help:"Git username for authentication"`
	GitAccessToken     string   `help:"Git access token for authentication"`
	LocalRepoPath      string   `help:"Local working tree path"`
	CommitMessage      string   `help:"Commit message for sync commits"`
	CommitAuthorName   string   `help:"Commit author name"`
	CommitAuthorEmail  string   `help:"Commit author email"`
	CloudBackendConfig string   `help:"Backend configuration blob for the sync tool"`
	CloudRemoteName    string   `help:"Cloud remote name"`
	CloudRemoteFolder  string   `help:"Cloud remote folder to mirror"`
	Exclude            []string `help:"Additional exclude patterns (repeatable)"`

	All    struct{} `cmd:"" help:"Clone or reuse the repository, sync from the cloud backend, commit and push"`
	Clone  struct{} `cmd:"" help:"Clone the repository if it is not present locally"`
	Update struct{} `cmd:"" help:"Fetch and fast-forward the existing repository"`
	Sync   struct{} `cmd:"" help:"Pull the cloud folder into the local working tree"`

	Daemon struct {
		Interval time.Duration `help:"Interval between scheduled mirror runs" default:"1h"`
		Listen   string        `help:"Address for /metrics and /healthz" default:":9215"`
		History  string        `help:"SQLite run-history database path" default:"cloudmirror-history.db"`
	} `cmd:"" help:"Run the all workflow on a schedule with metrics and run history"`

	History struct {
		Database string `help:"SQLite run-history database path" default:"cloudmirror-history.db"`
		Limit    int    `help:"Number of runs to show" default:"20"`
	} `cmd:"" help:"Show recent workflow runs recorded by the daemon"`
}

func main() {
	ctx := kong.Parse(&CLI)

	logLevel := slog.LevelInfo
	if CLI.Verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	errAdapter := fnderr.NewCLIErrorAdapter(CLI.Verbose, slog.Default())

	switch ctx.Command() {
	case "all", "clone", "update", "sync":
		workflow, err := pipeline.ParseWorkflow(ctx.Command())
		if err != nil {
			errAdapter.HandleError(err)
		}
		settings, err := resolveSettings()
		if err != nil {
			errAdapter.HandleError(err)
		}
		if settings.Verbose {
			slog.Debug("Resolved configuration", slog.String("settings", settings.String()))
		}
		runner := pipeline.NewRunner(settings, git.NewClient(settings), cloud.NewAdapter(settings))
		result := runner.Run(context.Background(), workflow)
		if !result.Success() {
			errAdapter.HandleError(result.Err)
		}

	case "daemon":
		if err := runDaemon(); err != nil {
			errAdapter.HandleError(err)
		}

	case "history":
		if err := runHistory(); err != nil {
			errAdapter.HandleError(err)
		}
	}
}

// resolveSettings merges the config file, the CLOUDMIRROR_* environment, and
// the CLI flags, in that order of increasing precedence.
func resolveSettings() (*config.Settings, error) {
	return config.Resolve(config.ResolveOptions{
		ConfigFile: CLI.Config,
		Overrides: config.Overrides{
			RemoteRepoURL:      CLI.GitRemoteURL,
			GitUsername:        CLI.GitUsername,
			GitAccessToken:     CLI.GitAccessToken,
			LocalRepoPath:      CLI.LocalRepoPath,
			CommitMessage:      CLI.CommitMessage,
			CommitAuthorName:   CLI.CommitAuthorName,
			CommitAuthorEmail:  CLI.CommitAuthorEmail,
			CloudBackendConfig: CLI.CloudBackendConfig,
			CloudRemoteName:    CLI.CloudRemoteName,
			CloudRemoteFolder:  CLI.CloudRemoteFolder,
			ExcludePatterns:    CLI.Exclude,
			Verbose:            CLI.Verbose,
		},
	})
}

func runDaemon() error {
	settings, err := resolveSettings()
	if err != nil {
		return err
	}

	d, err := daemon.New(daemon.Options{
		Settings:    settings,
		Workflow:    pipeline.WorkflowAll,
		Interval:    CLI.Daemon.Interval,
		Resolve:     resolveSettings,
		ConfigFile:  CLI.Config,
		ListenAddr:  CLI.Daemon.Listen,
		HistoryPath: CLI.Daemon.History,
	})
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	errChan := make(chan error, 1)
	go func() {
		errChan <- d.Start(ctx)
	}()

	slog.Info("Daemon started, waiting for shutdown signal...")
	select {
	case err := <-errChan:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		slog.Info("Shutdown signal received, stopping daemon...")
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer stopCancel()
	return d.Stop(stopCtx)
}

func runHistory() error {
	store, err := history.NewSQLiteStore(CLI.History.Database)
	if err != nil {
		return fnderr.DaemonError("failed to open run history store").WithCause(err).Build()
	}
	defer store.Close()

	runs, err := store.Recent(context.Background(), CLI.History.Limit)
	if err != nil {
		return fnderr.DaemonError("failed to read run history").WithCause(err).Build()
	}
	if len(runs) == 0 {
		fmt.Println("No recorded runs.")
		return nil
	}
	for _, run := range runs {
		line := fmt.Sprintf("%s  %-7s %-8s files=%-4d", run.StartedAt.Format(time.RFC3339), run.Workflow, run.Outcome, run.FilesSynced)
		if run.Committed {
			line += fmt.Sprintf(" commit=%.8s", run.CommitSHA)
		}
		if run.ErrorMessage != "" {
			line += fmt.Sprintf(" error=%s: %s", run.ErrorCategory, run.ErrorMessage)
		}
		fmt.Println(line)
	}
	return nil
}
