// Package history persists workflow run outcomes so operators of an
// unattended mirror can audit what happened between visits.
package history

import (
	"context"
	"time"
)

// Run is one recorded workflow execution.
type Run struct {
	ID            string
	Workflow      string
	StartedAt     time.Time
	FinishedAt    time.Time
	Outcome       string // success|failure
	FilesSynced   int
	Committed     bool
	CommitSHA     string
	ErrorCategory string
	ErrorMessage  string
}

// Store defines the interface for persisting and retrieving run records.
type Store interface {
	// Record appends a finished run.
	Record(ctx context.Context, run Run) error

	// Recent returns the most recent runs, newest first.
	Recent(ctx context.Context, limit int) ([]Run, error)

	// Close closes the store and releases resources.
	Close() error
}
