// Package config loads the YAML configuration file and applies ORGAUNS_*
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v6"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const (
	defaultSyncSchedule     = "*/15 * * * *"
	defaultReminderSchedule = "* * * * *"
	defaultReminderLead     = 30 * time.Minute
)

type Config struct {
	// DBPath is the SQLite database file. "~" is expanded.
	DBPath string `yaml:"db_path" env:"ORGAUNS_DB_PATH"`

	LogLevel  string `yaml:"log_level" env:"ORGAUNS_LOG_LEVEL"`
	LogFormat string `yaml:"log_format" env:"ORGAUNS_LOG_FORMAT"`
	// LogFile receives log output while the TUI owns the terminal.
	LogFile string `yaml:"log_file" env:"ORGAUNS_LOG_FILE"`

	// Timezone is an IANA zone name used in place of the system zone for
	// every epoch-to-date conversion. Empty keeps the system zone.
	Timezone string `yaml:"timezone" env:"ORGAUNS_TIMEZONE"`

	// SyncSchedule and ReminderSchedule are standard 5-field cron specs.
	SyncSchedule     string `yaml:"sync_schedule" env:"ORGAUNS_SYNC_SCHEDULE"`
	ReminderSchedule string `yaml:"reminder_schedule" env:"ORGAUNS_REMINDER_SCHEDULE"`
	// ReminderLead is how far ahead of a due instant a reminder fires.
	ReminderLead time.Duration `yaml:"reminder_lead" env:"ORGAUNS_REMINDER_LEAD"`
}

// Default returns the configuration written on first run.
func Default() *Config {
	return &Config{
		DBPath:           "~/.config/orgauns/orgauns.db",
		LogLevel:         "info",
		LogFormat:        "text",
		LogFile:          "~/.config/orgauns/orgauns.log",
		SyncSchedule:     defaultSyncSchedule,
		ReminderSchedule: defaultReminderSchedule,
		ReminderLead:     defaultReminderLead,
	}
}

// DefaultPath returns ~/.config/orgauns/config.yaml
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "orgauns", "config.yaml"), nil
}

// Load reads path, writing the defaults there first if it does not exist,
// then applies environment overrides and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if err := Save(path, cfg); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	cfg.Normalize()
	if err := cfg.expandPaths(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg as YAML with owner-only permissions.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Normalize fills zero values with defaults.
func (c *Config) Normalize() {
	def := Default()
	if c.DBPath == "" {
		c.DBPath = def.DBPath
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
	if c.LogFormat == "" {
		c.LogFormat = def.LogFormat
	}
	if c.SyncSchedule == "" {
		c.SyncSchedule = def.SyncSchedule
	}
	if c.ReminderSchedule == "" {
		c.ReminderSchedule = def.ReminderSchedule
	}
	if c.ReminderLead <= 0 {
		c.ReminderLead = def.ReminderLead
	}
}

func (c *Config) expandPaths() error {
	var err error
	if c.DBPath, err = homedir.Expand(c.DBPath); err != nil {
		return fmt.Errorf("expand db_path: %w", err)
	}
	if c.LogFile, err = homedir.Expand(c.LogFile); err != nil {
		return fmt.Errorf("expand log_file: %w", err)
	}
	return nil
}

func (c *Config) Validate() error {
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("log_format: want text or json, got %q", c.LogFormat)
	}
	if _, err := cron.ParseStandard(c.SyncSchedule); err != nil {
		return fmt.Errorf("sync_schedule: %w", err)
	}
	if _, err := cron.ParseStandard(c.ReminderSchedule); err != nil {
		return fmt.Errorf("reminder_schedule: %w", err)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves Timezone, falling back to time.Local.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone: %w", err)
	}
	return loc, nil
}
