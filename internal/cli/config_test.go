package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/grove/api/v1beta1/configs"
	"github.com/macropower/grove/pkg/git"
	"github.com/macropower/grove/pkg/rule"
)

func TestParseTags(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		want    map[string]string
		pairs   []string
		wantErr bool
	}{
		"empty": {
			pairs: nil,
			want:  nil,
		},
		"single pair": {
			pairs: []string{"team=infra"},
			want:  map[string]string{"team": "infra"},
		},
		"value containing equals": {
			pairs: []string{"query=a=b"},
			want:  map[string]string{"query": "a=b"},
		},
		"empty value": {
			pairs: []string{"work="},
			want:  map[string]string{"work": ""},
		},
		"missing separator": {
			pairs:   []string{"work"},
			wantErr: true,
		},
		"empty key": {
			pairs:   []string{"=infra"},
			wantErr: true,
		},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := parseTags(tc.pairs)
			if tc.wantErr {
				require.Error(t, err)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestFindWorktree(t *testing.T) {
	t.Parallel()

	worktrees := []git.Worktree{
		{Path: "/dev/github.com/macropower/grove", Branch: "main"},
		{Path: "/dev/github.com/macropower/grove.feature-login", Branch: "feature/login"},
		{Path: "/dev/github.com/macropower/grove.review", Branch: "review"},
	}
	sourceRoot := "/dev/github.com/macropower/grove"

	tcs := map[string]struct {
		target string
		want   string
	}{
		"by branch":          {target: "feature/login", want: "/dev/github.com/macropower/grove.feature-login"},
		"by normalized name": {target: "feature-login", want: "/dev/github.com/macropower/grove.feature-login"},
		"by path":            {target: "/dev/github.com/macropower/grove.review", want: "/dev/github.com/macropower/grove.review"},
		"by path basename":   {target: "grove.review", want: "/dev/github.com/macropower/grove.review"},
		"source is never matched": {target: "main", want: ""},
		"no match":                {target: "nope", want: ""},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			wt := findWorktree(worktrees, sourceRoot, tc.target)
			if tc.want == "" {
				assert.Nil(t, wt)

				return
			}

			require.NotNil(t, wt)
			assert.Equal(t, tc.want, wt.Path)
		})
	}
}

func TestRuleName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "defaults", ruleName(nil))
	assert.Equal(t, "defaults", ruleName(&rule.SourceRule{}))
	assert.Equal(t, "work", ruleName(&rule.SourceRule{Name: "work"}))
}

func TestLoadResolver(t *testing.T) {
	t.Run("missing default config falls back to defaults", func(t *testing.T) {
		// GetPath resolves under the fake config home. Setenv forbids
		// parallelism here.
		t.Setenv("XDG_CONFIG_HOME", t.TempDir())

		r, err := loadResolver(&RootArgs{})
		require.NoError(t, err)
		assert.Equal(t, configs.DefaultSourcesTemplate, r.Defaults.Sources)
	})

	t.Run("explicit missing config is an error", func(t *testing.T) {
		t.Parallel()

		_, err := loadResolver(&RootArgs{Config: filepath.Join(t.TempDir(), "nope.yaml")})
		require.Error(t, err)
	})

	t.Run("explicit config is loaded", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "config.yaml")
		data := `apiVersion: grove.jacobcolvin.com/v1beta1
kind: Configuration
defaults:
  sources: /src/host()/path(-1)
  worktrees: /src/host()/path(-1)prefix_worktree(".")
`
		require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

		r, err := loadResolver(&RootArgs{Config: path})
		require.NoError(t, err)
		assert.Equal(t, "/src/host()/path(-1)", r.Defaults.Sources)
	})

	t.Run("invalid predicate is rejected", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "config.yaml")
		data := `apiVersion: grove.jacobcolvin.com/v1beta1
kind: Configuration
defaults:
  sources: /src
  worktrees: /src
sources:
  - name: broken
    predicate: host() =
`
		require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

		_, err := loadResolver(&RootArgs{Config: path})
		require.Error(t, err)
	})
}

func TestWorktreeName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "feature-login", worktreeName("feature/login"))
	assert.Equal(t, "main", worktreeName("main"))
}
