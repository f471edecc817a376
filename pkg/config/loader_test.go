package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/macropower/grove/api/v1beta1/configs"
	"github.com/macropower/grove/pkg/config"
)

const validConfig = `apiVersion: grove.jacobcolvin.com/v1beta1
kind: Configuration
defaults:
  sources: ~/dev/host()/path(-2)/path(-1)
  worktrees: ~/dev/host()/path(-2)/path(-1)prefix_worktree(".")
`

func TestLoaderFromBytes(t *testing.T) {
	t.Parallel()

	t.Run("valid", func(t *testing.T) {
		t.Parallel()

		loader := config.NewLoaderFromBytes([]byte(validConfig), configs.New, configs.DefaultValidator)
		require.NoError(t, loader.Validate())

		cfg, err := loader.Load()
		require.NoError(t, err)
		assert.Equal(t, "Configuration", cfg.GetKind())
	})

	t.Run("malformed yaml", func(t *testing.T) {
		t.Parallel()

		loader := config.NewLoaderFromBytes([]byte("defaults: [\n"), configs.New, configs.DefaultValidator)
		require.Error(t, loader.Validate())
	})

	t.Run("load applies defaults", func(t *testing.T) {
		t.Parallel()

		data := "apiVersion: grove.jacobcolvin.com/v1beta1\nkind: Configuration\n"
		loader := config.NewLoaderFromBytes([]byte(data), configs.New, configs.DefaultValidator)

		cfg, err := loader.Load()
		require.NoError(t, err)
		require.NotNil(t, cfg.Defaults)
		assert.Equal(t, configs.DefaultSourcesTemplate, cfg.Defaults.Sources)
	})
}

func TestLoaderFromFile(t *testing.T) {
	t.Parallel()

	t.Run("existing file", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte(validConfig), 0o600))

		loader, err := config.NewLoaderFromFile(path, configs.New, configs.DefaultValidator)
		require.NoError(t, err)
		require.NoError(t, loader.Validate())
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, err := config.NewLoaderFromFile(filepath.Join(t.TempDir(), "nope.yaml"), configs.New, configs.DefaultValidator)
		require.Error(t, err)
	})
}
