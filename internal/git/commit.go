package git

import (
	"errors"
	"log/slog"
	"sort"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"git.home.luguber.info/inful/cloudmirror/internal/logfields"
)

// CommitResult is the outcome of CommitAndPush. Committed is false when the
// working tree had nothing to commit; that is a legitimate terminal state, not
// an error.
type CommitResult struct {
	Committed bool
	CommitSHA string
}

// CommitAndPush stages every tracked and untracked change outside the
// exclusion deny-list, commits with the configured identity if the tree is
// dirty after staging, and pushes the current branch to its upstream.
func (c *Client) CommitAndPush() (CommitResult, error) {
	repo, err := c.open()
	if err != nil {
		return CommitResult{}, err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return CommitResult{}, ClassifyGitError(err, "worktree", c.settings.LocalRepoPath)
	}

	staged, err := c.stageChanges(wt)
	if err != nil {
		return CommitResult{}, err
	}
	if staged == 0 {
		slog.Info("No changes to commit", logfields.Path(c.settings.LocalRepoPath))
		return CommitResult{}, nil
	}

	sha, err := wt.Commit(c.settings.CommitMessage, &gogit.CommitOptions{
		Author: &object.Signature{
			Name:  c.settings.CommitAuthorName,
			Email: c.settings.CommitAuthorEmail,
			When:  time.Now(),
		},
	})
	if err != nil {
		return CommitResult{}, ClassifyGitError(err, "commit", c.settings.LocalRepoPath)
	}
	slog.Info("Changes committed", logfields.Commit(shortHash(sha.String())), logfields.Files(staged))

	if err := repo.Push(&gogit.PushOptions{RemoteName: "origin", Auth: c.auth()}); err != nil {
		if !errors.Is(err, gogit.NoErrAlreadyUpToDate) {
			return CommitResult{Committed: true, CommitSHA: sha.String()}, ClassifyGitError(err, "push", c.settings.RemoteRepoURL)
		}
	}
	slog.Info("Changes pushed", logfields.URL(c.settings.RemoteRepoURL))

	return CommitResult{Committed: true, CommitSHA: sha.String()}, nil
}

// stageChanges adds every changed path not covered by the exclusion patterns
// and returns the number of staged paths.
func (c *Client) stageChanges(wt *gogit.Worktree) (int, error) {
	status, err := wt.Status()
	if err != nil {
		return 0, ClassifyGitError(err, "status", c.settings.LocalRepoPath)
	}

	staged := 0
	for path, fs := range status {
		if fs.Worktree == gogit.Unmodified && fs.Staging == gogit.Unmodified {
			continue
		}
		if c.matcher.Match(path) {
			slog.Debug("Skipping excluded path", logfields.Path(path))
			continue
		}
		if _, err := wt.Add(path); err != nil {
			return staged, ClassifyGitError(err, "add", path)
		}
		staged++
	}
	return staged, nil
}

// ChangedFiles lists the paths with pending changes, excluded paths omitted.
// Used for the post-sync change report.
func (c *Client) ChangedFiles() ([]string, error) {
	repo, err := c.open()
	if err != nil {
		return nil, err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, ClassifyGitError(err, "worktree", c.settings.LocalRepoPath)
	}
	status, err := wt.Status()
	if err != nil {
		return nil, ClassifyGitError(err, "status", c.settings.LocalRepoPath)
	}

	var changed []string
	for path, fs := range status {
		if fs.Worktree == gogit.Unmodified && fs.Staging == gogit.Unmodified {
			continue
		}
		if c.matcher.Match(path) {
			continue
		}
		changed = append(changed, path)
	}
	sort.Strings(changed)
	return changed, nil
}
