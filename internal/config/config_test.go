package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chtemp runs the test from a temp dir so ensureDirs and the default
// config file lookup do not touch the repo tree.
func chtemp(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoad_Defaults(t *testing.T) {
	chtemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, ":8080", cfg.Address())
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "data/uploads", cfg.Paths.UploadsDir)
	assert.Equal(t, "https://api.groq.com/openai/v1", cfg.AI.BaseURL)
	assert.Empty(t, cfg.AI.APIKey)
	assert.Equal(t, 200, cfg.Store.MaxEntries)
	assert.Equal(t, int64(16777216), cfg.Upload.MaxBytes)
	assert.True(t, cfg.Security.RateLimit.Enabled)

	// Load creates the working directories.
	assert.DirExists(t, cfg.Paths.UploadsDir)
	assert.DirExists(t, cfg.Paths.LogsDir)
}

func TestLoad_EnvOverrides(t *testing.T) {
	chtemp(t)
	t.Setenv("FINSIGHT_SERVER_PORT", "9999")
	t.Setenv("FINSIGHT_LOGGING_LEVEL", "debug")
	t.Setenv("FINSIGHT_AI_API_KEY", "sk-test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "sk-test", cfg.AI.APIKey)
}

func TestLoad_ConfigFile(t *testing.T) {
	chtemp(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("ai:\n  api_key: from-file\n"), 0o644))
	t.Setenv("FINSIGHT_CONFIG", path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.AI.APIKey)
}

func TestLoad_EnvBeatsFile(t *testing.T) {
	chtemp(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("ai:\n  api_key: from-file\n"), 0o644))
	t.Setenv("FINSIGHT_CONFIG", path)
	t.Setenv("FINSIGHT_AI_API_KEY", "from-env")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.AI.APIKey)
}

func TestLoad_InvalidLevelRejected(t *testing.T) {
	chtemp(t)
	t.Setenv("FINSIGHT_LOGGING_LEVEL", "loud")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation")
}
