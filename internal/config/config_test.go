package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, BackendFile, cfg.Backend)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.True(t, cfg.Bell)
	assert.True(t, cfg.FinalSeconds)
	assert.NotEmpty(t, cfg.DataDir)
	assert.Equal(t, filepath.Join(cfg.DataDir, "interval-trainer.log"), cfg.LogFile)
	assert.False(t, cfg.BatchMode())
}

func TestLoad_Flags(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load([]string{
		"--data-dir", dir,
		"--backend", "SQLite",
		"--bell=false",
		"--export-format", "csv",
		"--export-out", "out.csv",
	})
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.DataDir)
	assert.Equal(t, BackendSQLite, cfg.Backend)
	assert.False(t, cfg.Bell)
	assert.Equal(t, "csv", cfg.ExportFormat)
	assert.Equal(t, "out.csv", cfg.ExportOut)
	assert.True(t, cfg.BatchMode())
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("INTERVAL_TRAINER_LOG_LEVEL", "debug")
	t.Setenv("INTERVAL_TRAINER_STORAGE_BACKEND", "sqlite")

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, BackendSQLite, cfg.Backend)
}

func TestLoad_FlagBeatsEnvironment(t *testing.T) {
	t.Setenv("INTERVAL_TRAINER_LOG_LEVEL", "debug")
	cfg, err := Load([]string{"--log-level", "warn"})
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "trainer.yaml")
	content := "data_dir: " + dir + "\nstorage:\n  backend: sqlite\ncues:\n  final_seconds: false\nprofile: Alex\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load([]string{"--config", path})
	require.NoError(t, err)
	assert.Equal(t, dir, cfg.DataDir)
	assert.Equal(t, BackendSQLite, cfg.Backend)
	assert.False(t, cfg.FinalSeconds)
	assert.Equal(t, "Alex", cfg.Profile)
}

func TestLoad_Invalid(t *testing.T) {
	_, err := Load([]string{"--backend", "redis"})
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = Load([]string{"--export-format", "xml"})
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = Load([]string{"--config", filepath.Join(t.TempDir(), "missing.yaml")})
	assert.Error(t, err)

	_, err = Load([]string{"--no-such-flag"})
	assert.Error(t, err)
}
