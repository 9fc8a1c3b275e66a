package git

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	ggitcfg "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/cloudmirror/internal/config"
	fnderr "git.home.luguber.info/inful/cloudmirror/internal/foundation/errors"
)

// testRemote is a bare repository seeded through a scratch working tree, so
// clients can clone, fetch, and push against a real on-disk remote.
type testRemote struct {
	barePath string
	workPath string
	work     *gogit.Repository
}

func newTestRemote(t *testing.T) *testRemote {
	t.Helper()
	barePath := filepath.Join(t.TempDir(), "remote.git")
	workPath := filepath.Join(t.TempDir(), "seed")

	_, err := gogit.PlainInit(barePath, true)
	require.NoError(t, err)

	work, err := gogit.PlainInit(workPath, false)
	require.NoError(t, err)
	_, err = work.CreateRemote(&ggitcfg.RemoteConfig{Name: "origin", URLs: []string{barePath}})
	require.NoError(t, err)

	r := &testRemote{barePath: barePath, workPath: workPath, work: work}
	r.commitAndPush(t, "README.md", "hello\n", "initial import")
	return r
}

// commitAndPush writes a file into the seed tree, commits it, and pushes the
// branch to the bare remote.
func (r *testRemote) commitAndPush(t *testing.T, name, content, message string) plumbing.Hash {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(r.workPath, name), []byte(content), 0o600))

	wt, err := r.work.Worktree()
	require.NoError(t, err)
	_, err = wt.Add(name)
	require.NoError(t, err)
	sha, err := wt.Commit(message, &gogit.CommitOptions{
		Author: &object.Signature{Name: "Seeder", Email: "seed@example.com", When: time.Now()},
	})
	require.NoError(t, err)

	err = r.work.Push(&gogit.PushOptions{RemoteName: "origin"})
	if err != nil && !errors.Is(err, gogit.NoErrAlreadyUpToDate) {
		t.Fatalf("push seed commit: %v", err)
	}
	return sha
}

func (r *testRemote) headHash(t *testing.T) plumbing.Hash {
	t.Helper()
	bare, err := gogit.PlainOpen(r.barePath)
	require.NoError(t, err)
	ref, err := bare.Reference(plumbing.NewBranchReferenceName("master"), true)
	require.NoError(t, err)
	return ref.Hash()
}

func clientFor(t *testing.T, remote *testRemote) (*Client, string) {
	t.Helper()
	clonePath := filepath.Join(t.TempDir(), "mirror")
	settings := &config.Settings{
		RemoteRepoURL:     remote.barePath,
		GitUsername:       "mirror",
		GitAccessToken:    "unused-for-file-remotes",
		LocalRepoPath:     clonePath,
		CommitMessage:     "Sync git with iCloud Drive",
		CommitAuthorName:  "Sync Bot",
		CommitAuthorEmail: "sync-bot@example.com",
		ExcludePatterns:   append(config.DefaultExcludePatterns(), "*.tmp"),
	}
	return NewClient(settings), clonePath
}

func TestEnsureClonedIsIdempotent(t *testing.T) {
	remote := newTestRemote(t)
	client, clonePath := clientFor(t, remote)

	state, err := client.EnsureCloned()
	require.NoError(t, err)
	assert.True(t, state.Present)
	assert.FileExists(t, filepath.Join(clonePath, "README.md"))

	// Second call must not re-clone or touch the tree.
	marker := filepath.Join(clonePath, "marker.txt")
	require.NoError(t, os.WriteFile(marker, []byte("x"), 0o600))
	state, err = client.EnsureCloned()
	require.NoError(t, err)
	assert.True(t, state.Present)
	assert.FileExists(t, marker)
}

func TestStateAbsent(t *testing.T) {
	remote := newTestRemote(t)
	client, _ := clientFor(t, remote)

	state, err := client.State()
	require.NoError(t, err)
	assert.False(t, state.Present)
	assert.False(t, state.Dirty)
}

func TestUpdateNeverClones(t *testing.T) {
	remote := newTestRemote(t)
	client, clonePath := clientFor(t, remote)

	_, err := client.Update()
	require.Error(t, err)
	assert.True(t, fnderr.HasCategory(err, fnderr.CategoryGit))
	assert.NoDirExists(t, filepath.Join(clonePath, ".git"))
}

func TestUpdateAlreadyUpToDate(t *testing.T) {
	remote := newTestRemote(t)
	client, _ := clientFor(t, remote)

	_, err := client.EnsureCloned()
	require.NoError(t, err)
	state, err := client.Update()
	require.NoError(t, err)
	assert.True(t, state.Present)
}

func TestUpdateFastForwards(t *testing.T) {
	remote := newTestRemote(t)
	client, clonePath := clientFor(t, remote)

	_, err := client.EnsureCloned()
	require.NoError(t, err)

	newHead := remote.commitAndPush(t, "notes.md", "fresh content\n", "add notes")

	_, err = client.Update()
	require.NoError(t, err)

	local, err := gogit.PlainOpen(clonePath)
	require.NoError(t, err)
	ref, err := local.Head()
	require.NoError(t, err)
	assert.Equal(t, newHead, ref.Hash())
	assert.FileExists(t, filepath.Join(clonePath, "notes.md"))
}

func TestUpdateRejectsDivergedHistory(t *testing.T) {
	remote := newTestRemote(t)
	client, clonePath := clientFor(t, remote)

	_, err := client.EnsureCloned()
	require.NoError(t, err)

	// Commit locally without pushing, then advance the remote independently.
	local, err := gogit.PlainOpen(clonePath)
	require.NoError(t, err)
	wt, err := local.Worktree()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(clonePath, "local.md"), []byte("local"), 0o600))
	_, err = wt.Add("local.md")
	require.NoError(t, err)
	_, err = wt.Commit("local only", &gogit.CommitOptions{
		Author: &object.Signature{Name: "Local", Email: "local@example.com", When: time.Now()},
	})
	require.NoError(t, err)

	remote.commitAndPush(t, "remote.md", "remote", "remote only")

	_, err = client.Update()
	require.Error(t, err)
	assert.True(t, fnderr.HasCategory(err, fnderr.CategoryGit))

	var diverged *RemoteDivergedError
	assert.True(t, errors.As(err, &diverged))
	assert.Equal(t, "update", diverged.Op)

	classified, ok := fnderr.AsClassified(err)
	require.True(t, ok)
	flag, _ := classified.Context().Get("diverged")
	assert.Equal(t, true, flag)
}

func TestCommitAndPushNothingToCommit(t *testing.T) {
	remote := newTestRemote(t)
	client, _ := clientFor(t, remote)

	_, err := client.EnsureCloned()
	require.NoError(t, err)

	result, err := client.CommitAndPush()
	require.NoError(t, err)
	assert.False(t, result.Committed)
	assert.Empty(t, result.CommitSHA)
}

func TestCommitAndPushPublishesChanges(t *testing.T) {
	remote := newTestRemote(t)
	client, clonePath := clientFor(t, remote)

	_, err := client.EnsureCloned()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(clonePath, "synced.md"), []byte("from cloud\n"), 0o600))

	result, err := client.CommitAndPush()
	require.NoError(t, err)
	require.True(t, result.Committed)
	require.NotEmpty(t, result.CommitSHA)

	// The bare remote advanced to the new commit.
	assert.Equal(t, result.CommitSHA, remote.headHash(t).String())

	// The commit carries the configured identity and message.
	local, err := gogit.PlainOpen(clonePath)
	require.NoError(t, err)
	commit, err := local.CommitObject(plumbing.NewHash(result.CommitSHA))
	require.NoError(t, err)
	assert.Equal(t, "Sync git with iCloud Drive", commit.Message)
	assert.Equal(t, "Sync Bot", commit.Author.Name)
	assert.Equal(t, "sync-bot@example.com", commit.Author.Email)
}

func TestCommitAndPushSkipsExcludedPaths(t *testing.T) {
	remote := newTestRemote(t)
	client, clonePath := clientFor(t, remote)

	_, err := client.EnsureCloned()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(clonePath, "keep.md"), []byte("keep"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(clonePath, "scratch.tmp"), []byte("drop"), 0o600))

	result, err := client.CommitAndPush()
	require.NoError(t, err)
	require.True(t, result.Committed)

	local, err := gogit.PlainOpen(clonePath)
	require.NoError(t, err)
	commit, err := local.CommitObject(plumbing.NewHash(result.CommitSHA))
	require.NoError(t, err)
	tree, err := commit.Tree()
	require.NoError(t, err)

	_, err = tree.File("keep.md")
	assert.NoError(t, err)
	_, err = tree.File("scratch.tmp")
	assert.Error(t, err, "excluded file must not be committed")
}

func TestChangedFilesSortedAndFiltered(t *testing.T) {
	remote := newTestRemote(t)
	client, clonePath := clientFor(t, remote)

	_, err := client.EnsureCloned()
	require.NoError(t, err)
	for _, name := range []string{"zzz.md", "aaa.md", "skip.tmp"} {
		require.NoError(t, os.WriteFile(filepath.Join(clonePath, name), []byte("x"), 0o600))
	}

	changed, err := client.ChangedFiles()
	require.NoError(t, err)
	assert.Equal(t, []string{"aaa.md", "zzz.md"}, changed)
}

func TestClassifyGitError(t *testing.T) {
	cases := []struct {
		err  error
		want fnderr.ErrorCategory
	}{
		{errors.New("authentication required"), fnderr.CategoryAuth},
		{errors.New("repository not found"), fnderr.CategoryNotFound},
		{errors.New("dial tcp: connection refused"), fnderr.CategoryNetwork},
		{errors.New("worktree locked"), fnderr.CategoryGit},
	}
	for _, tc := range cases {
		got := ClassifyGitError(tc.err, "test", "https://git.example.com/repo.git")
		if !fnderr.HasCategory(got, tc.want) {
			t.Errorf("ClassifyGitError(%q) category = %v, want %v", tc.err, fnderr.GetCategory(got), tc.want)
		}
	}

	if ClassifyGitError(nil, "test", "") != nil {
		t.Error("nil error must stay nil")
	}

	already := fnderr.AuthError("bad credentials").Build()
	if got := ClassifyGitError(already, "test", ""); !errors.Is(got, already) {
		t.Error("classified errors must pass through unchanged")
	}
}

func TestShortHash(t *testing.T) {
	if got := shortHash("0123456789abcdef"); got != "01234567" {
		t.Errorf("shortHash = %q", got)
	}
	if got := shortHash("abc"); got != "abc" {
		t.Errorf("shortHash short input = %q", got)
	}
}
