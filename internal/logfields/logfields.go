package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyWorkflow   = "workflow"
	KeyStep       = "step"
	KeyRunID      = "run_id"
	KeyPath       = "path"
	KeyURL        = "url"
	KeyRemote     = "remote"
	KeyFolder     = "folder"
	KeyBranch     = "branch"
	KeyCommit     = "commit"
	KeyFiles      = "files"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Workflow(w string) slog.Attr      { return slog.String(KeyWorkflow, w) }
func Step(s string) slog.Attr          { return slog.String(KeyStep, s) }
func RunID(id string) slog.Attr        { return slog.String(KeyRunID, id) }
func Path(p string) slog.Attr          { return slog.String(KeyPath, p) }
func URL(u string) slog.Attr           { return slog.String(KeyURL, u) }
func Remote(r string) slog.Attr        { return slog.String(KeyRemote, r) }
func Folder(f string) slog.Attr        { return slog.String(KeyFolder, f) }
func Branch(b string) slog.Attr        { return slog.String(KeyBranch, b) }
func Commit(c string) slog.Attr        { return slog.String(KeyCommit, c) }
func Files(n int) slog.Attr            { return slog.Int(KeyFiles, n) }
func DurationMS(ms float64) slog.Attr  { return slog.Float64(KeyDurationMS, ms) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
