// Package cloud adapts the rclone binary as cloudmirror's cloud-sync
// collaborator. The adapter exposes exactly two operations, a reachability
// check and a one-way pull, and keeps the backend configuration in a transient
// file that is removed even on failure.
package cloud

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/cloudmirror/internal/config"
	fnderr "git.home.luguber.info/inful/cloudmirror/internal/foundation/errors"
	"git.home.luguber.info/inful/cloudmirror/internal/logfields"
)

// Transfer tuning passed to every sync invocation. Conservative values keep
// rate-limited consumer backends (iCloud, Nextcloud) happy.
var syncArgs = []string{
	"--transfers", "3",
	"--checkers", "4",
	"--tpslimit", "10",
	"--retries", "5",
	"--low-level-retries", "10",
	"--delete-excluded=false",
	"--checksum",
}

// Adapter wraps rclone for one settings instance.
type Adapter struct {
	settings *config.Settings
	runner   Runner
}

// NewAdapter creates a cloud-sync adapter using the rclone binary on PATH.
func NewAdapter(settings *config.Settings) *Adapter {
	return &Adapter{settings: settings, runner: &execRunner{binary: "rclone"}}
}

// WithRunner replaces the command runner. Used by tests.
func (a *Adapter) WithRunner(r Runner) *Adapter {
	a.runner = r
	return a
}

// remotePath formats the rclone source as remote:folder.
func (a *Adapter) remotePath() string {
	return fmt.Sprintf("%s:%s", a.settings.CloudRemoteName, a.settings.CloudRemoteFolder)
}

// TestConnection verifies the backend is reachable and returns the number of
// entries in the remote folder. No file content is transferred.
func (a *Adapter) TestConnection(ctx context.Context) (int, error) {
	cfg, err := a.writeBackendConfig()
	if err != nil {
		return 0, err
	}
	defer cfg.cleanup()

	slog.Debug("Testing cloud storage connection", logfields.Remote(a.settings.CloudRemoteName), logfields.Folder(a.settings.CloudRemoteFolder))

	out, err := a.runner.Run(ctx, "lsjson", a.remotePath(), "--config", cfg.path)
	if err != nil {
		return 0, fnderr.CloudError("cloud backend unreachable").
			WithCause(err).
			WithContext("remote", a.settings.CloudRemoteName).
			WithContext("folder", a.settings.CloudRemoteFolder).
			Build()
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(out, &entries); err != nil {
		return 0, fnderr.CloudError("unexpected listing output from sync tool").
			WithCause(err).
			WithContext("remote", a.settings.CloudRemoteName).
			Build()
	}
	slog.Info("Cloud backend reachable", logfields.Remote(a.settings.CloudRemoteName), logfields.Files(len(entries)))
	return len(entries), nil
}

// SyncToLocal pulls the remote folder into destPath, applying the exclusion
// deny-list. The destination is created if absent. Re-running reflects the
// current remote state; the last remote state wins. Returns the number of
// files present locally after the sync.
func (a *Adapter) SyncToLocal(ctx context.Context, destPath string) (int, error) {
	cfg, err := a.writeBackendConfig()
	if err != nil {
		return 0, err
	}
	defer cfg.cleanup()

	if err := os.MkdirAll(destPath, 0o750); err != nil {
		return 0, fnderr.FileSystemError("failed to create sync destination").
			WithCause(err).
			WithContext("path", destPath).
			Build()
	}

	args := []string{"sync", a.remotePath(), destPath, "--config", cfg.path}
	args = append(args, syncArgs...)
	for _, pattern := range a.settings.ExcludePatterns {
		args = append(args, "--exclude", pattern)
	}
	if a.settings.Verbose {
		args = append(args, "-v")
	}

	slog.Info("Syncing from cloud storage",
		logfields.Remote(a.settings.CloudRemoteName),
		logfields.Folder(a.settings.CloudRemoteFolder),
		logfields.Path(destPath),
		slog.Int("exclude_patterns", len(a.settings.ExcludePatterns)))

	if _, err := a.runner.Run(ctx, args...); err != nil {
		return 0, fnderr.CloudError("cloud sync failed").
			WithCause(err).
			WithContext("remote", a.settings.CloudRemoteName).
			WithContext("folder", a.settings.CloudRemoteFolder).
			Build()
	}

	count, err := countSyncedFiles(destPath)
	if err != nil {
		slog.Warn("Failed to count synced files", logfields.Error(err))
		count = 0
	}
	slog.Info("Cloud sync completed", logfields.Path(destPath), logfields.Files(count))
	return count, nil
}

// countSyncedFiles counts regular files under root, skipping the Git metadata
// directory.
func countSyncedFiles(root string) (int, error) {
	count := 0
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() && d.Name() == ".git" {
			return filepath.SkipDir
		}
		if !d.IsDir() {
			count++
		}
		return nil
	})
	return count, err
}
