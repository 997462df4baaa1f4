// Package config loads oracle settings from defaults, an optional config
// file, and ORACLE_* environment variables via viper.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment variable overrides (ORACLE_STATE_FILE, ...).
const EnvPrefix = "ORACLE"

// DefaultConfigName is the config file looked up in the working directory.
const DefaultConfigName = "oracle"

// Config represents the complete oracle configuration
type Config struct {
	// StateFile is the path of the persisted state document
	StateFile string `mapstructure:"state_file"`
	// ListenAddr is the host:port the dashboard binds to
	ListenAddr string          `mapstructure:"listen_addr"`
	Logging    LoggingConfig   `mapstructure:"logging"`
	Loop       LoopConfig      `mapstructure:"loop"`
	Dashboard  DashboardConfig `mapstructure:"dashboard"`
}

// LoggingConfig controls structured logging
type LoggingConfig struct {
	// Level is one of debug, info, warn, error
	Level string `mapstructure:"level"`
	// Format is text or json
	Format string `mapstructure:"format"`
}

// LoopConfig controls the task loop timings
type LoopConfig struct {
	// IdleIntervalMs is how long to wait before re-checking an empty queue
	IdleIntervalMs int `mapstructure:"idle_interval_ms"`
	// WorkDelayMs is the simulated execution time of each task
	WorkDelayMs int `mapstructure:"work_delay_ms"`
	// SettleDelayMs is the pause after recording a task result
	SettleDelayMs int `mapstructure:"settle_delay_ms"`
	// Progress enables the JSON Lines progress trail next to the state file
	Progress bool `mapstructure:"progress"`
}

// DashboardConfig controls the HTML status page
type DashboardConfig struct {
	// RefreshSeconds is the browser auto-refresh interval
	RefreshSeconds int `mapstructure:"refresh_seconds"`
	// LogTail is how many recent log entries are shown
	LogTail int `mapstructure:"log_tail"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		StateFile:  "oracle_state.json",
		ListenAddr: "localhost:9000",
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Loop: LoopConfig{
			IdleIntervalMs: 2000,
			WorkDelayMs:    2000,
			SettleDelayMs:  1000,
			Progress:       true,
		},
		Dashboard: DashboardConfig{
			RefreshSeconds: 2,
			LogTail:        10,
		},
	}
}

// IdleInterval returns the idle interval as a time.Duration
func (c *LoopConfig) IdleInterval() time.Duration {
	return time.Duration(c.IdleIntervalMs) * time.Millisecond
}

// WorkDelay returns the work delay as a time.Duration
func (c *LoopConfig) WorkDelay() time.Duration {
	return time.Duration(c.WorkDelayMs) * time.Millisecond
}

// SettleDelay returns the settle delay as a time.Duration
func (c *LoopConfig) SettleDelay() time.Duration {
	return time.Duration(c.SettleDelayMs) * time.Millisecond
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	viper.SetDefault("state_file", defaults.StateFile)
	viper.SetDefault("listen_addr", defaults.ListenAddr)

	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.format", defaults.Logging.Format)

	viper.SetDefault("loop.idle_interval_ms", defaults.Loop.IdleIntervalMs)
	viper.SetDefault("loop.work_delay_ms", defaults.Loop.WorkDelayMs)
	viper.SetDefault("loop.settle_delay_ms", defaults.Loop.SettleDelayMs)
	viper.SetDefault("loop.progress", defaults.Loop.Progress)

	viper.SetDefault("dashboard.refresh_seconds", defaults.Dashboard.RefreshSeconds)
	viper.SetDefault("dashboard.log_tail", defaults.Dashboard.LogTail)
}

// Init wires viper to the config file and environment. An explicit
// configFile must exist; otherwise oracle.yaml (or .json/.toml) in the
// working directory is used when present.
func Init(configFile string) error {
	SetDefaults()

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if configFile != "" {
		viper.SetConfigFile(configFile)
		return viper.ReadInConfig()
	}

	viper.SetConfigName(DefaultConfigName)
	viper.AddConfigPath(".")
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return err
	}
	return nil
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}
