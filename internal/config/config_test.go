package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"TIMESHEET_DB", "TIMESHEET_USER", "TIMESHEET_CONFIG", "TIMESHEET_EXPORT_DIR", "TIMESHEET_LOG_USE_CASES"} {
		t.Setenv(k, "")
	}
}

func TestLoadFile_MissingUsesDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOME", t.TempDir())

	cfg, err := LoadFile(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, cfg.Ledger.WorkDays)
	assert.Equal(t, ".", cfg.Export.Dir)
	assert.True(t, filepath.IsAbs(cfg.Database.Path))
	assert.Equal(t, "timesheet.db", filepath.Base(cfg.Database.Path))
}

func TestLoadFile_ParsesTOML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[database]
path = "/tmp/ts.db"

[user]
name = "ann"

[ledger]
show_empty_days = true
work_days = [1, 3]

[log]
use_cases = true
`), 0o644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/ts.db", cfg.Database.Path)
	assert.Equal(t, "ann", cfg.User.Name)
	assert.True(t, cfg.Ledger.ShowEmptyDays)
	assert.Equal(t, []time.Weekday{time.Monday, time.Wednesday}, cfg.Ledger.Weekdays())
	assert.True(t, cfg.Log.UseCases)
	assert.Equal(t, ".", cfg.Export.Dir)
}

func TestLoadFile_EnvOverrides(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[user]\nname = \"ann\"\n"), 0o644))
	t.Setenv("TIMESHEET_USER", "bob")
	t.Setenv("TIMESHEET_DB", ":memory:")
	t.Setenv("TIMESHEET_EXPORT_DIR", "/exports")
	t.Setenv("TIMESHEET_LOG_USE_CASES", "true")

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "bob", cfg.User.Name)
	assert.Equal(t, ":memory:", cfg.Database.Path)
	assert.Equal(t, "/exports", cfg.Export.Dir)
	assert.True(t, cfg.Log.UseCases)
}

func TestLoadFile_BadTOML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[ledger\n"), 0o644))

	_, err := LoadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing config file")
}

func TestConfigPath_EnvOverride(t *testing.T) {
	t.Setenv("TIMESHEET_CONFIG", "/etc/timesheet.toml")
	p, err := ConfigPath()
	require.NoError(t, err)
	assert.Equal(t, "/etc/timesheet.toml", p)
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Database.Path = "x.db"
	require.NoError(t, cfg.Validate())

	cfg.Ledger.WorkDays = []int{1, 1, 9}
	cfg.Export.Dir = ""
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "work day 1 listed twice")
	assert.Contains(t, err.Error(), "invalid work day 9")
	assert.Contains(t, err.Error(), "export directory")
}
