package pipeline

import (
	"context"

	"git.home.luguber.info/inful/cloudmirror/internal/git"
)

// GitAdapter is the version-control capability the pipeline depends on.
// *git.Client satisfies it; tests substitute fakes.
type GitAdapter interface {
	EnsureCloned() (git.RepositoryState, error)
	Update() (git.RepositoryState, error)
	CommitAndPush() (git.CommitResult, error)
	ChangedFiles() ([]string, error)
}

// CloudAdapter is the remote-file-sync capability the pipeline depends on.
// *cloud.Adapter satisfies it.
type CloudAdapter interface {
	TestConnection(ctx context.Context) (int, error)
	SyncToLocal(ctx context.Context, destPath string) (int, error)
}
