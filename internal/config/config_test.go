package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadCreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orgauns", "config.yaml")
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.SyncSchedule != defaultSyncSchedule || cfg.ReminderLead != defaultReminderLead {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if strings.HasPrefix(cfg.DBPath, "~") {
		t.Fatalf("db path not expanded: %s", cfg.DBPath)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("config not written: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("expected 0600, got %v", info.Mode().Perm())
	}
}

func TestLoadReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "db_path: /tmp/agenda.db\nlog_format: json\nreminder_lead: 1h\ntimezone: UTC\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DBPath != "/tmp/agenda.db" || cfg.LogFormat != "json" || cfg.ReminderLead != time.Hour {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	// Missing keys fall back to defaults.
	if cfg.LogLevel != "info" || cfg.SyncSchedule != defaultSyncSchedule {
		t.Fatalf("defaults not filled: %+v", cfg)
	}
	loc, err := cfg.Location()
	if err != nil || loc != time.UTC {
		t.Fatalf("Location() = %v, %v", loc, err)
	}
}

func TestEnvironmentOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	os.WriteFile(path, []byte("log_level: info\n"), 0o600)

	t.Setenv("ORGAUNS_LOG_LEVEL", "debug")
	t.Setenv("ORGAUNS_DB_PATH", "/var/lib/orgauns.db")
	t.Setenv("ORGAUNS_REMINDER_LEAD", "5m")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.LogLevel != "debug" || cfg.DBPath != "/var/lib/orgauns.db" || cfg.ReminderLead != 5*time.Minute {
		t.Fatalf("env not applied: %+v", cfg)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad level", func(c *Config) { c.LogLevel = "chatty" }},
		{"bad format", func(c *Config) { c.LogFormat = "xml" }},
		{"bad sync cron", func(c *Config) { c.SyncSchedule = "every minute" }},
		{"bad reminder cron", func(c *Config) { c.ReminderSchedule = "* * *" }},
		{"bad timezone", func(c *Config) { c.Timezone = "Mars/Olympus" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}

	if err := Default().Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestNormalize(t *testing.T) {
	cfg := &Config{}
	cfg.Normalize()
	if cfg.LogLevel == "" || cfg.ReminderSchedule == "" || cfg.ReminderLead <= 0 {
		t.Fatalf("normalize left zero values: %+v", cfg)
	}
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	os.WriteFile(path, []byte("db_path: [unclosed"), 0o600)
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}
