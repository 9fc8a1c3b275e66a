package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func sampleRun(id string, started time.Time) Run {
	return Run{
		ID:          id,
		Workflow:    "all",
		StartedAt:   started,
		FinishedAt:  started.Add(30 * time.Second),
		Outcome:     "success",
		FilesSynced: 12,
		Committed:   true,
		CommitSHA:   "abc123def456",
	}
}

func TestRecordAndRecent(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	base := time.Now().Truncate(time.Second)

	require.NoError(t, store.Record(ctx, sampleRun("run-1", base)))
	require.NoError(t, store.Record(ctx, sampleRun("run-2", base.Add(time.Minute))))

	runs, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	// Newest first.
	assert.Equal(t, "run-2", runs[0].ID)
	assert.Equal(t, "run-1", runs[1].ID)

	got := runs[1]
	assert.Equal(t, "all", got.Workflow)
	assert.True(t, got.StartedAt.Equal(base))
	assert.Equal(t, "success", got.Outcome)
	assert.Equal(t, 12, got.FilesSynced)
	assert.True(t, got.Committed)
	assert.Equal(t, "abc123def456", got.CommitSHA)
	assert.Empty(t, got.ErrorCategory)
}

func TestRecordFailureRun(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	run := sampleRun("run-err", time.Now())
	run.Outcome = "failure"
	run.Committed = false
	run.CommitSHA = ""
	run.ErrorCategory = "cloud"
	run.ErrorMessage = "cloud backend unreachable"
	require.NoError(t, store.Record(ctx, run))

	runs, err := store.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "failure", runs[0].Outcome)
	assert.False(t, runs[0].Committed)
	assert.Equal(t, "cloud", runs[0].ErrorCategory)
	assert.Equal(t, "cloud backend unreachable", runs[0].ErrorMessage)
}

func TestRecentHonorsLimit(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	base := time.Now()

	for i := 0; i < 5; i++ {
		run := sampleRun(string(rune('a'+i)), base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, store.Record(ctx, run))
	}

	runs, err := store.Recent(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, runs, 3)

	// Non-positive limits fall back to the default window.
	runs, err = store.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, runs, 5)
}

func TestRecentEmptyStore(t *testing.T) {
	store := newStore(t)
	runs, err := store.Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestDuplicateRunIDRejected(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	run := sampleRun("dup", time.Now())

	require.NoError(t, store.Record(ctx, run))
	assert.Error(t, store.Record(ctx, run))
}
