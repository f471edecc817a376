package migrate_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/grove/pkg/migrate"
	"github.com/macropower/grove/pkg/rule"
)

// fakeRepo creates a directory with a .git dir (source) or .git file
// (worktree).
func fakeRepo(tb testing.TB, root, rel string, worktree bool) string {
	tb.Helper()

	dir := filepath.Join(root, rel)
	require.NoError(tb, os.MkdirAll(dir, 0o755))

	gitPath := filepath.Join(dir, ".git")
	if worktree {
		require.NoError(tb, os.WriteFile(gitPath, []byte("gitdir: /somewhere/.git/worktrees/x\n"), 0o600))
	} else {
		require.NoError(tb, os.MkdirAll(gitPath, 0o755))
	}

	return dir
}

func TestScan(t *testing.T) {
	t.Parallel()

	root := t.TempDir()

	source := fakeRepo(t, root, "a/grove", false)
	worktree := fakeRepo(t, root, "a/grove.review", true)
	fakeRepo(t, root, "a/grove/vendored/inner", false) // Nested, must be ignored.
	require.NoError(t, os.MkdirAll(filepath.Join(root, "b/empty"), 0o755))

	repos, err := migrate.Scan(root)
	require.NoError(t, err)
	require.Len(t, repos, 2)

	byPath := map[string]migrate.Repo{}
	for _, r := range repos {
		byPath[r.Path] = r
	}

	require.Contains(t, byPath, source)
	assert.False(t, byPath[source].IsWorktree)
	require.Contains(t, byPath, worktree)
	assert.True(t, byPath[worktree].IsWorktree)
}

type fakeInspector struct {
	remotes  map[string]string
	branches map[string]string
}

func (f *fakeInspector) RemoteURL(_ context.Context, dir string) (string, error) {
	remote, ok := f.remotes[dir]
	if !ok {
		return "", os.ErrNotExist
	}

	return remote, nil
}

func (f *fakeInspector) CurrentBranch(_ context.Context, dir string) (string, error) {
	if b, ok := f.branches[dir]; ok {
		return b, nil
	}

	return "main", nil
}

func (f *fakeInspector) SourceRoot(_ context.Context, dir string) (string, error) {
	return dir, nil
}

func TestPlannerPlan(t *testing.T) {
	t.Parallel()

	resolver := &rule.Resolver{
		Defaults: rule.Defaults{
			Sources:   "/organized/host()/path(-2)/path(-1)",
			Worktrees: `/organized/host()/path(-2)/path(-1)prefix_worktree(".")`,
		},
	}

	repos := []migrate.Repo{
		{Path: "/mess/grove.review", IsWorktree: true},
		{Path: "/mess/grove"},
		{Path: "/mess/no-remote"},
		{Path: "/organized/github.com/macropower/placed"},
	}

	inspector := &fakeInspector{
		remotes: map[string]string{
			"/mess/grove":                          "git@github.com:macropower/grove.git",
			"/mess/grove.review":                   "git@github.com:macropower/grove.git",
			"/organized/github.com/macropower/placed": "https://github.com/macropower/placed.git",
		},
		branches: map[string]string{
			"/mess/grove.review": "feature/login",
		},
	}

	planner := migrate.NewPlanner(inspector, resolver, nil)

	plan, err := planner.Plan(t.Context(), repos)
	require.NoError(t, err)

	// The already-placed repo needs no move; the remoteless one is skipped.
	require.Len(t, plan.Moves, 2)
	assert.Equal(t, []string{"/mess/no-remote"}, plan.Skipped)

	// Sources are ordered before worktrees.
	assert.Equal(t, migrate.Move{
		From: "/mess/grove",
		To:   "/organized/github.com/macropower/grove",
	}, plan.Moves[0])
	assert.Equal(t, migrate.Move{
		From:       "/mess/grove.review",
		To:         "/organized/github.com/macropower/grove.feature-login",
		IsWorktree: true,
	}, plan.Moves[1])
}

type fakeRepairer struct {
	calls [][]string
}

func (f *fakeRepairer) RepairWorktrees(_ context.Context, repoDir string, paths ...string) error {
	f.calls = append(f.calls, append([]string{repoDir}, paths...))

	return nil
}

func (f *fakeRepairer) SourceRoot(_ context.Context, _ string) (string, error) {
	return "/organized/source", nil
}

func TestExecutorExec(t *testing.T) {
	t.Parallel()

	t.Run("moves and repairs", func(t *testing.T) {
		t.Parallel()

		root := t.TempDir()
		from := fakeRepo(t, root, "mess/grove", false)
		to := filepath.Join(root, "organized", "grove")

		repairer := &fakeRepairer{}
		e := migrate.NewExecutor(repairer)

		err := e.Exec(t.Context(), &migrate.Plan{
			Moves: []migrate.Move{{From: from, To: to}},
		})
		require.NoError(t, err)
		assert.NoDirExists(t, from)
		assert.DirExists(t, to)
		require.Len(t, repairer.calls, 1)
		assert.Equal(t, []string{to}, repairer.calls[0])
	})

	t.Run("worktree repair runs from source", func(t *testing.T) {
		t.Parallel()

		root := t.TempDir()
		from := fakeRepo(t, root, "mess/grove.review", true)
		to := filepath.Join(root, "organized", "grove.review")

		repairer := &fakeRepairer{}
		e := migrate.NewExecutor(repairer)

		err := e.Exec(t.Context(), &migrate.Plan{
			Moves: []migrate.Move{{From: from, To: to, IsWorktree: true}},
		})
		require.NoError(t, err)
		require.Len(t, repairer.calls, 1)
		assert.Equal(t, []string{"/organized/source", to}, repairer.calls[0])
	})

	t.Run("dry run moves nothing", func(t *testing.T) {
		t.Parallel()

		root := t.TempDir()
		from := fakeRepo(t, root, "mess/grove", false)
		to := filepath.Join(root, "organized", "grove")

		repairer := &fakeRepairer{}
		e := migrate.NewExecutor(repairer, migrate.WithDryRun())

		err := e.Exec(t.Context(), &migrate.Plan{
			Moves: []migrate.Move{{From: from, To: to}},
		})
		require.NoError(t, err)
		assert.DirExists(t, from)
		assert.NoDirExists(t, to)
		assert.Empty(t, repairer.calls)
	})

	t.Run("refuses to overwrite destination", func(t *testing.T) {
		t.Parallel()

		root := t.TempDir()
		from := fakeRepo(t, root, "mess/grove", false)
		to := fakeRepo(t, root, "organized/grove", false)

		e := migrate.NewExecutor(&fakeRepairer{})

		err := e.Exec(t.Context(), &migrate.Plan{
			Moves: []migrate.Move{{From: from, To: to}},
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "already exists")
	})
}
