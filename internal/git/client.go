package git

import (
	"log/slog"
	"os"
	"path/filepath"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"

	"git.home.luguber.info/inful/cloudmirror/internal/config"
	"git.home.luguber.info/inful/cloudmirror/internal/excludes"
	fnderr "git.home.luguber.info/inful/cloudmirror/internal/foundation/errors"
	"git.home.luguber.info/inful/cloudmirror/internal/logfields"
)

// RepositoryState describes the working tree at settings.LocalRepoPath. It is
// read from disk on demand and never cached across steps.
type RepositoryState struct {
	Present bool
	Dirty   bool
	Path    string
}

// Client performs Git operations for one settings instance.
type Client struct {
	settings *config.Settings
	matcher  *excludes.Matcher
}

// NewClient creates a Git adapter bound to the given settings.
func NewClient(settings *config.Settings) *Client {
	return &Client{
		settings: settings,
		matcher:  excludes.NewMatcher(settings.ExcludePatterns),
	}
}

// State inspects the local path and reports whether a working tree exists
// there and whether it has uncommitted changes.
func (c *Client) State() (RepositoryState, error) {
	state := RepositoryState{Path: c.settings.LocalRepoPath}
	repo, err := gogit.PlainOpen(c.settings.LocalRepoPath)
	if err != nil {
		if err == gogit.ErrRepositoryNotExists {
			return state, nil
		}
		return state, fnderr.GitError("failed to inspect repository").
			WithCause(err).
			WithContext("path", c.settings.LocalRepoPath).
			Build()
	}
	state.Present = true

	wt, err := repo.Worktree()
	if err != nil {
		return state, fnderr.GitError("failed to open worktree").
			WithCause(err).
			WithContext("path", c.settings.LocalRepoPath).
			Build()
	}
	status, err := wt.Status()
	if err != nil {
		return state, fnderr.GitError("failed to read worktree status").
			WithCause(err).
			WithContext("path", c.settings.LocalRepoPath).
			Build()
	}
	state.Dirty = !status.IsClean()
	return state, nil
}

// EnsureCloned clones the remote repository to the local path unless a working
// tree already exists there. Calling it twice is a no-op the second time.
func (c *Client) EnsureCloned() (RepositoryState, error) {
	state, err := c.State()
	if err != nil {
		return state, err
	}
	if state.Present {
		slog.Debug("Repository already present, skipping clone", logfields.Path(state.Path))
		return state, nil
	}

	slog.Info("Cloning repository", logfields.URL(c.settings.RemoteRepoURL), logfields.Path(c.settings.LocalRepoPath))

	if err := os.MkdirAll(filepath.Dir(c.settings.LocalRepoPath), 0o750); err != nil {
		return state, fnderr.FileSystemError("failed to create parent directory for clone").
			WithCause(err).
			WithContext("path", c.settings.LocalRepoPath).
			Build()
	}

	repo, err := gogit.PlainClone(c.settings.LocalRepoPath, false, &gogit.CloneOptions{
		URL:  c.settings.RemoteRepoURL,
		Auth: c.auth(),
	})
	if err != nil {
		return state, ClassifyGitError(err, "clone", c.settings.RemoteRepoURL)
	}

	if ref, err := repo.Head(); err == nil {
		slog.Info("Repository cloned", logfields.URL(c.settings.RemoteRepoURL), logfields.Commit(shortHash(ref.Hash().String())))
	}
	return RepositoryState{Present: true, Path: c.settings.LocalRepoPath}, nil
}

// auth builds HTTP basic-auth credentials from the configured username and
// access token.
func (c *Client) auth() transport.AuthMethod {
	return &http.BasicAuth{
		Username: c.settings.GitUsername,
		Password: c.settings.GitAccessToken,
	}
}

// open returns the repository at the local path, classifying an absent tree as
// a not-found git error (Update and CommitAndPush never clone implicitly).
func (c *Client) open() (*gogit.Repository, error) {
	repo, err := gogit.PlainOpen(c.settings.LocalRepoPath)
	if err != nil {
		if err == gogit.ErrRepositoryNotExists {
			return nil, fnderr.NewError(fnderr.CategoryGit, "no repository at configured path").
				WithContext("path", c.settings.LocalRepoPath).
				Build()
		}
		return nil, ClassifyGitError(err, "open", c.settings.LocalRepoPath)
	}
	return repo, nil
}

func shortHash(h string) string {
	if len(h) > 8 {
		return h[:8]
	}
	return h
}
