package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load(viper.New(), t.TempDir())
	require.NoError(t, err)
	d := Default()
	assert.Equal(t, d.MaxFileSize, cfg.MaxFileSize)
	assert.Equal(t, d.CacheSize, cfg.CacheSize)
	assert.Zero(t, cfg.MaxFiles)
	assert.Empty(t, cfg.Exclude)

	lvl, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, lvl)
	assert.True(t, cfg.Policy().TopLevelOnRecursiveMiss)
}

func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	content := "max-files: 12\nno-headers: true\nexclude:\n  - third_party/\nclass-containers: false\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, FileName), []byte(content), 0o644))

	cfg, err := Load(viper.New(), root)
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.MaxFiles)
	assert.True(t, cfg.NoHeaders)
	assert.Equal(t, []string{"third_party/"}, cfg.Exclude)
	assert.False(t, cfg.Policy().ClassUnderNonNamespace)
	assert.Equal(t, int64(1_000_000), cfg.MaxFileSize)
}

func TestLoadBadConfigFile(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, FileName), []byte("max-files: [\n"), 0o644))

	_, err := Load(viper.New(), root)
	assert.Error(t, err)
}

// Environment tests mutate process state and cannot run in parallel.

func TestLoadEnvOverridesFile(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, FileName), []byte("workers: 2\n"), 0o644))
	t.Setenv("CPPFACTS_WORKERS", "7")
	t.Setenv("CPPFACTS_LOG_LEVEL", "debug")

	cfg, err := Load(viper.New(), root)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Workers)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadDotEnv(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ".env"), []byte("CPPFACTS_MAX_FILES=3\n"), 0o644))
	// Registered so the variable godotenv sets is removed afterwards.
	t.Setenv("CPPFACTS_MAX_FILES", "")
	require.NoError(t, os.Unsetenv("CPPFACTS_MAX_FILES"))

	cfg, err := Load(viper.New(), root)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.MaxFiles)
}

func TestLoadInvalidLevel(t *testing.T) {
	t.Setenv("CPPFACTS_LOG_LEVEL", "chatty")

	_, err := Load(viper.New(), t.TempDir())
	assert.ErrorContains(t, err, "invalid log level")
}

func TestWriteDefault(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, WriteDefault(path, false))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got Config
	require.NoError(t, yaml.Unmarshal(data, &got))
	assert.Equal(t, Default(), got)

	assert.Error(t, WriteDefault(path, false), "existing file needs force")
	assert.NoError(t, WriteDefault(path, true))
}
