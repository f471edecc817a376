package git_test

import (
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/grove/pkg/git"
)

// initRepo creates a repository with one commit on branch main.
func initRepo(tb testing.TB) string {
	tb.Helper()

	if _, err := exec.LookPath("git"); err != nil {
		tb.Skip("git binary not available")
	}

	dir := tb.TempDir()

	run := func(args ...string) {
		tb.Helper()

		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		cmd.Env = append(cmd.Environ(),
			"GIT_AUTHOR_NAME=test", "GIT_AUTHOR_EMAIL=test@example.com",
			"GIT_COMMITTER_NAME=test", "GIT_COMMITTER_EMAIL=test@example.com",
		)

		out, err := cmd.CombinedOutput()
		require.NoError(tb, err, "git %v: %s", args, out)
	}

	run("init", "--initial-branch=main")
	run("commit", "--allow-empty", "-m", "initial")

	return dir
}

func TestClientRoot(t *testing.T) {
	t.Parallel()

	dir := initRepo(t)
	c := git.NewClient()

	root, err := c.Root(t.Context(), dir)
	require.NoError(t, err)

	want, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)

	got, err := filepath.EvalSymlinks(root)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestClientNotARepository(t *testing.T) {
	t.Parallel()

	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git binary not available")
	}

	c := git.NewClient()

	_, err := c.Root(t.Context(), t.TempDir())
	require.ErrorIs(t, err, git.ErrNotARepository)
}

func TestClientBranches(t *testing.T) {
	t.Parallel()

	dir := initRepo(t)
	c := git.NewClient()

	branch, err := c.CurrentBranch(t.Context(), dir)
	require.NoError(t, err)
	assert.Equal(t, "main", branch)

	exists, err := c.BranchExists(t.Context(), dir, "main")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = c.BranchExists(t.Context(), dir, "nope")
	require.NoError(t, err)
	assert.False(t, exists)

	clean, err := c.IsClean(t.Context(), dir)
	require.NoError(t, err)
	assert.True(t, clean)
}

func TestClientWorktrees(t *testing.T) {
	t.Parallel()

	dir := initRepo(t)
	c := git.NewClient()

	isWt, err := c.IsWorktree(t.Context(), dir)
	require.NoError(t, err)
	assert.False(t, isWt)

	wtPath := filepath.Join(t.TempDir(), "review")
	require.NoError(t, c.AddWorktree(t.Context(), dir, wtPath, "review", true))

	isWt, err = c.IsWorktree(t.Context(), wtPath)
	require.NoError(t, err)
	assert.True(t, isWt)

	source, err := c.SourceRoot(t.Context(), wtPath)
	require.NoError(t, err)

	wantSource, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)

	gotSource, err := filepath.EvalSymlinks(source)
	require.NoError(t, err)
	assert.Equal(t, wantSource, gotSource)

	worktrees, err := c.Worktrees(t.Context(), dir)
	require.NoError(t, err)
	require.Len(t, worktrees, 2)
	assert.Equal(t, "main", worktrees[0].Branch)
	assert.Equal(t, "review", worktrees[1].Branch)

	require.NoError(t, c.RemoveWorktree(t.Context(), dir, wtPath, false))

	worktrees, err = c.Worktrees(t.Context(), dir)
	require.NoError(t, err)
	assert.Len(t, worktrees, 1)
}
