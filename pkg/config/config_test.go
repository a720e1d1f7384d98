package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	t.Run("Should provide sane built-in defaults", func(t *testing.T) {
		cfg := Default()
		assert.Equal(t, 90*time.Second, cfg.MicroAgentTimeout)
		assert.Equal(t, 3, cfg.DefaultMaxParallel)
		assert.Equal(t, []string{"flows/core", "flows/contrib"}, cfg.DiscoveryRoots)
	})
}

func TestLoad(t *testing.T) {
	t.Run("Should load defaults when no file is given", func(t *testing.T) {
		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, 3, cfg.DefaultMaxParallel)
	})

	t.Run("Should override defaults from a YAML file", func(t *testing.T) {
		dir := t.TempDir()
		file := filepath.Join(dir, "flowengine.yaml")
		require.NoError(t, os.WriteFile(file, []byte("default_max_parallel: 7\nmodel:\n  primary_model: custom-model\n"), 0o600))

		cfg, err := Load(file)
		require.NoError(t, err)
		assert.Equal(t, 7, cfg.DefaultMaxParallel)
		assert.Equal(t, "custom-model", cfg.Model.PrimaryModel)
	})

	t.Run("Should override defaults from environment variables", func(t *testing.T) {
		t.Setenv("FLOWENGINE_DEFAULT_MAX_PARALLEL", "9")
		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, 9, cfg.DefaultMaxParallel)
	})
}
