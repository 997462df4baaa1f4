package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.StateFile != "oracle_state.json" {
		t.Errorf("StateFile = %q, want %q", cfg.StateFile, "oracle_state.json")
	}
	if cfg.ListenAddr != "localhost:9000" {
		t.Errorf("ListenAddr = %q, want %q", cfg.ListenAddr, "localhost:9000")
	}
	if cfg.Loop.IdleInterval() != 2*time.Second {
		t.Errorf("Loop.IdleInterval() = %v, want 2s", cfg.Loop.IdleInterval())
	}
	if cfg.Loop.WorkDelay() != 2*time.Second {
		t.Errorf("Loop.WorkDelay() = %v, want 2s", cfg.Loop.WorkDelay())
	}
	if cfg.Loop.SettleDelay() != time.Second {
		t.Errorf("Loop.SettleDelay() = %v, want 1s", cfg.Loop.SettleDelay())
	}
	if cfg.Dashboard.RefreshSeconds != 2 {
		t.Errorf("Dashboard.RefreshSeconds = %d, want 2", cfg.Dashboard.RefreshSeconds)
	}
	if cfg.Dashboard.LogTail != 10 {
		t.Errorf("Dashboard.LogTail = %d, want 10", cfg.Dashboard.LogTail)
	}
	if errs := cfg.Validate(); len(errs) != 0 {
		t.Errorf("default config should be valid, got %v", errs)
	}
}

func TestLoad_Defaults(t *testing.T) {
	resetViper(t)
	SetDefaults()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *cfg != *Default() {
		t.Errorf("Load() = %+v, want %+v", cfg, Default())
	}
}

func TestInit_ConfigFile(t *testing.T) {
	resetViper(t)

	path := filepath.Join(t.TempDir(), "custom.yaml")
	content := `state_file: /tmp/custom_state.json
listen_addr: 127.0.0.1:9100
loop:
  work_delay_ms: 10
dashboard:
  log_tail: 5
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	if err := Init(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.StateFile != "/tmp/custom_state.json" {
		t.Errorf("StateFile = %q", cfg.StateFile)
	}
	if cfg.ListenAddr != "127.0.0.1:9100" {
		t.Errorf("ListenAddr = %q", cfg.ListenAddr)
	}
	if cfg.Loop.WorkDelayMs != 10 {
		t.Errorf("Loop.WorkDelayMs = %d, want 10", cfg.Loop.WorkDelayMs)
	}
	// Unset keys keep their defaults.
	if cfg.Loop.IdleIntervalMs != 2000 {
		t.Errorf("Loop.IdleIntervalMs = %d, want 2000", cfg.Loop.IdleIntervalMs)
	}
	if cfg.Dashboard.LogTail != 5 {
		t.Errorf("Dashboard.LogTail = %d, want 5", cfg.Dashboard.LogTail)
	}
}

func TestInit_MissingExplicitFile(t *testing.T) {
	resetViper(t)

	if err := Init(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestInit_NoConfigFileInWorkingDir(t *testing.T) {
	resetViper(t)

	originalWd, _ := os.Getwd()
	os.Chdir(t.TempDir())
	defer os.Chdir(originalWd)

	if err := Init(""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.StateFile != Default().StateFile {
		t.Errorf("StateFile = %q", cfg.StateFile)
	}
}

func TestInit_EnvOverride(t *testing.T) {
	resetViper(t)
	t.Setenv("ORACLE_LISTEN_ADDR", "127.0.0.1:9999")
	t.Setenv("ORACLE_LOOP_SETTLE_DELAY_MS", "5")

	originalWd, _ := os.Getwd()
	os.Chdir(t.TempDir())
	defer os.Chdir(originalWd)

	if err := Init(""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ListenAddr != "127.0.0.1:9999" {
		t.Errorf("ListenAddr = %q", cfg.ListenAddr)
	}
	if cfg.Loop.SettleDelayMs != 5 {
		t.Errorf("Loop.SettleDelayMs = %d, want 5", cfg.Loop.SettleDelayMs)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		field  string
	}{
		{"empty state file", func(c *Config) { c.StateFile = " " }, "state_file"},
		{"bad listen addr", func(c *Config) { c.ListenAddr = "nope" }, "listen_addr"},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"negative delay", func(c *Config) { c.Loop.WorkDelayMs = -1 }, "loop.work_delay_ms"},
		{"zero refresh", func(c *Config) { c.Dashboard.RefreshSeconds = 0 }, "dashboard.refresh_seconds"},
		{"negative tail", func(c *Config) { c.Dashboard.LogTail = -3 }, "dashboard.log_tail"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)

			errs := cfg.Validate()
			if len(errs) != 1 {
				t.Fatalf("got %d errors, want 1: %v", len(errs), errs)
			}
			if errs[0].Field != tt.field {
				t.Errorf("got field %q, want %q", errs[0].Field, tt.field)
			}
		})
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	resetViper(t)
	SetDefaults()
	viper.Set("logging.level", "loud")
	viper.Set("dashboard.refresh_seconds", 0)

	_, err := Load()
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "2 validation errors") {
		t.Errorf("unexpected error: %v", err)
	}
}
