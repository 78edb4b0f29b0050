// Package config loads the timesheet configuration from
// ~/.config/timesheet/config.toml with environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

type Config struct {
	Database DatabaseConfig `toml:"database"`
	User     UserConfig     `toml:"user"`
	Ledger   LedgerConfig   `toml:"ledger"`
	Export   ExportConfig   `toml:"export"`
	Log      LogConfig      `toml:"log"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

// UserConfig names the acting user (username or id).
type UserConfig struct {
	Name string `toml:"name"`
}

type LedgerConfig struct {
	ShowEmptyDays bool `toml:"show_empty_days"`
	// WorkDays uses 0 for Sunday through 6 for Saturday.
	WorkDays []int `toml:"work_days"`
}

type ExportConfig struct {
	Dir string `toml:"dir"`
}

type LogConfig struct {
	UseCases bool `toml:"use_cases"`
}

func DefaultConfig() Config {
	return Config{
		Ledger: LedgerConfig{
			ShowEmptyDays: false,
			WorkDays:      []int{1, 2, 3, 4, 5},
		},
		Export: ExportConfig{Dir: "."},
	}
}

func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}
	return filepath.Join(home, ".config", "timesheet"), nil
}

// ConfigPath honours TIMESHEET_CONFIG before the default location.
func ConfigPath() (string, error) {
	if v := os.Getenv("TIMESHEET_CONFIG"); v != "" {
		return v, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// DefaultDBPath is ~/.timesheet/timesheet.db.
func DefaultDBPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}
	return filepath.Join(home, ".timesheet", "timesheet.db"), nil
}

func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

// LoadFile reads path over the defaults. A missing file is not an error.
func LoadFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("reading config file: %w", err)
	default:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	applyEnvOverrides(&cfg)

	if cfg.Database.Path == "" {
		p, err := DefaultDBPath()
		if err != nil {
			return nil, err
		}
		cfg.Database.Path = p
	}
	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("TIMESHEET_DB"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("TIMESHEET_USER"); v != "" {
		cfg.User.Name = v
	}
	if v := os.Getenv("TIMESHEET_EXPORT_DIR"); v != "" {
		cfg.Export.Dir = v
	}
	if v := os.Getenv("TIMESHEET_LOG_USE_CASES"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Log.UseCases = b
		}
	}
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var problems []string

	if c.Database.Path == "" {
		problems = append(problems, "database path cannot be empty")
	}
	seen := make(map[int]bool)
	for _, d := range c.Ledger.WorkDays {
		if d < 0 || d > 6 {
			problems = append(problems, fmt.Sprintf("invalid work day %d: must be between 0 (Sunday) and 6 (Saturday)", d))
			continue
		}
		if seen[d] {
			problems = append(problems, fmt.Sprintf("work day %d listed twice", d))
		}
		seen[d] = true
	}
	if c.Export.Dir == "" {
		problems = append(problems, "export directory cannot be empty")
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(problems, "\n  - "))
	}
	return nil
}

// Weekdays returns the configured work days.
func (c LedgerConfig) Weekdays() []time.Weekday {
	days := make([]time.Weekday, 0, len(c.WorkDays))
	for _, d := range c.WorkDays {
		days = append(days, time.Weekday(d))
	}
	return days
}

func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0o755)
}
