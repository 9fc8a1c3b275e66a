package cloud

import (
	"log/slog"
	"os"
	"strings"

	fnderr "git.home.luguber.info/inful/cloudmirror/internal/foundation/errors"
	"git.home.luguber.info/inful/cloudmirror/internal/logfields"
)

// backendConfig is the transient on-disk form of the backend configuration
// blob. It exists only for the duration of one adapter call.
type backendConfig struct {
	path string
}

// writeBackendConfig materializes the configured backend blob into a 0600
// temporary file. Callers must invoke cleanup when done; cleanup is safe to
// call after a failure.
func (a *Adapter) writeBackendConfig() (*backendConfig, error) {
	if strings.TrimSpace(a.settings.CloudBackendConfig) == "" {
		return nil, fnderr.ConfigError("cloud backend configuration is empty").Build()
	}

	f, err := os.CreateTemp("", "cloudmirror-*.conf")
	if err != nil {
		return nil, fnderr.FileSystemError("failed to create backend config file").
			WithCause(err).
			Build()
	}

	if _, err := f.WriteString(a.settings.CloudBackendConfig); err != nil {
		f.Close()
		os.Remove(f.Name())
		return nil, fnderr.FileSystemError("failed to write backend config file").
			WithCause(err).
			Build()
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return nil, fnderr.FileSystemError("failed to flush backend config file").
			WithCause(err).
			Build()
	}

	slog.Debug("Backend config ready", slog.Int("bytes", len(a.settings.CloudBackendConfig)))
	return &backendConfig{path: f.Name()}, nil
}

// cleanup removes the transient config file. Errors are logged, not returned;
// nothing actionable remains at this point.
func (c *backendConfig) cleanup() {
	if c == nil || c.path == "" {
		return
	}
	if err := os.Remove(c.path); err != nil && !os.IsNotExist(err) {
		slog.Warn("Failed to remove backend config file", logfields.Error(err))
	}
	c.path = ""
}
