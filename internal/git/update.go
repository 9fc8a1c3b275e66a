package git

import (
	"errors"
	"log/slog"

	gogit "github.com/go-git/go-git/v5"
	ggitcfg "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"

	fnderr "git.home.luguber.info/inful/cloudmirror/internal/foundation/errors"
	"git.home.luguber.info/inful/cloudmirror/internal/logfields"
)

// Update fetches the remote and fast-forwards the current branch. The local
// path must already hold a working tree; Update never clones. Divergent
// history is reported as an error, never force-resolved.
func (c *Client) Update() (RepositoryState, error) {
	state := RepositoryState{Path: c.settings.LocalRepoPath}

	repo, err := c.open()
	if err != nil {
		return state, err
	}
	state.Present = true

	wt, err := repo.Worktree()
	if err != nil {
		return state, ClassifyGitError(err, "worktree", c.settings.LocalRepoPath)
	}

	if err := c.fetchOrigin(repo); err != nil {
		return state, err
	}

	branch, err := currentBranch(repo)
	if err != nil {
		return state, err
	}

	localRef, err := repo.Reference(plumbing.NewBranchReferenceName(branch), true)
	if err != nil {
		return state, ClassifyGitError(err, "local ref", c.settings.RemoteRepoURL)
	}
	remoteRef, err := repo.Reference(plumbing.NewRemoteReferenceName("origin", branch), true)
	if err != nil {
		return state, ClassifyGitError(err, "remote ref", c.settings.RemoteRepoURL)
	}

	if localRef.Hash() == remoteRef.Hash() {
		slog.Info("Repository already up-to-date", logfields.Branch(branch), logfields.Commit(shortHash(remoteRef.Hash().String())))
		return state, nil
	}

	fastForwardPossible, ffErr := isAncestor(repo, localRef.Hash(), remoteRef.Hash())
	if ffErr != nil {
		slog.Warn("ancestor check failed", logfields.Error(ffErr))
	}
	if !fastForwardPossible {
		diverged := &RemoteDivergedError{Op: "update", URL: c.settings.RemoteRepoURL, Branch: branch, Err: errors.New("local branch diverged from remote")}
		return state, fnderr.GitError("local branch diverged from remote").
			WithCause(diverged).
			WithContext("branch", branch).
			WithContext("diverged", true).
			UserAction().
			Build()
	}

	if err := wt.Reset(&gogit.ResetOptions{Commit: remoteRef.Hash(), Mode: gogit.HardReset}); err != nil {
		return state, ClassifyGitError(err, "fast-forward", c.settings.RemoteRepoURL)
	}

	slog.Info("Fast-forwarded repository",
		logfields.Branch(branch),
		slog.String("from", shortHash(localRef.Hash().String())),
		slog.String("to", shortHash(remoteRef.Hash().String())))
	return state, nil
}

// fetchOrigin fetches all branch heads from origin with the configured
// credentials. An already-up-to-date fetch is not an error.
func (c *Client) fetchOrigin(repo *gogit.Repository) error {
	err := repo.Fetch(&gogit.FetchOptions{
		RemoteName: "origin",
		Tags:       gogit.NoTags,
		RefSpecs:   []ggitcfg.RefSpec{"+refs/heads/*:refs/remotes/origin/*"},
		Auth:       c.auth(),
	})
	if err != nil && !errors.Is(err, gogit.NoErrAlreadyUpToDate) {
		return ClassifyGitError(err, "fetch", c.settings.RemoteRepoURL)
	}
	return nil
}

// currentBranch resolves the branch HEAD points at.
func currentBranch(repo *gogit.Repository) (string, error) {
	headRef, err := repo.Head()
	if err != nil {
		return "", ClassifyGitError(err, "head", "")
	}
	if !headRef.Name().IsBranch() {
		return "", fnderr.GitError("HEAD is not on a branch").
			WithContext("head", headRef.Name().String()).
			Build()
	}
	return headRef.Name().Short(), nil
}

// isAncestor walks b's history looking for a.
func isAncestor(repo *gogit.Repository, a, b plumbing.Hash) (bool, error) {
	if a == b {
		return true, nil
	}
	seen := map[plumbing.Hash]struct{}{}
	queue := []plumbing.Hash{b}
	for len(queue) > 0 {
		h := queue[0]
		queue = queue[1:]
		if h == a {
			return true, nil
		}
		if _, ok := seen[h]; ok {
			continue
		}
		seen[h] = struct{}{}
		commit, err := repo.CommitObject(h)
		if err != nil {
			return false, err
		}
		queue = append(queue, commit.ParentHashes...)
	}
	return false, nil
}
