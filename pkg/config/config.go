// Package config loads sessiond's configuration, layering CLI flags over
// environment variables over a YAML file over built-in defaults, mirroring
// the precedence rules and viper/mapstructure wiring used throughout the
// retrieved reference stack.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config is sessiond's static configuration.
//
// Configuration sources, in ascending precedence:
//  1. Default values
//  2. Configuration file (YAML)
//  3. Environment variables (SESSIOND_*)
//  4. CLI flags (highest priority)
type Config struct {
	// Socket is the Unix-domain socket path the daemon listens on.
	Socket string `mapstructure:"socket" yaml:"socket"`

	// Dir is the directory holding users.cdb and the transient files the
	// save pipeline produces alongside it.
	Dir string `mapstructure:"dir" yaml:"dir"`

	// Logging controls log output behavior.
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// Metrics controls the optional Prometheus /metrics endpoint.
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`

	// Session controls session lifetime, lockout threshold, and the
	// maintenance task's cadence.
	Session SessionConfig `mapstructure:"session" yaml:"session"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum log level to output: DEBUG, INFO, WARN, ERROR.
	Level string `mapstructure:"level" yaml:"level"`

	// Format is the log output format: text or json.
	Format string `mapstructure:"format" yaml:"format"`

	// Output is stdout, stderr, or a file path.
	Output string `mapstructure:"output" yaml:"output"`
}

// MetricsConfig configures the Prometheus metrics HTTP server. When
// Enabled is false, no /metrics endpoint is started.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Addr    string `mapstructure:"addr" yaml:"addr"`
}

// SessionConfig makes the daemon's lockout threshold, session inactivity
// window, and maintenance cadence operator-tunable.
type SessionConfig struct {
	Period              time.Duration `mapstructure:"period" yaml:"period"`
	LockCount           uint64        `mapstructure:"lock_count" yaml:"lock_count"`
	MaintenanceInterval time.Duration `mapstructure:"maintenance_interval" yaml:"maintenance_interval"`
}

// Load loads configuration from file, environment, and defaults.
// configPath empty uses the default location
// ($XDG_CONFIG_HOME/sessiond/config.yaml).
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setupViper(v, configPath)
	// AutomaticEnv only covers keys viper already knows, so bind every key
	// explicitly to let SESSIOND_* variables apply with or without a file.
	for _, key := range []string{"socket", "dir", "logging.level", "logging.format", "logging.output",
		"metrics.enabled", "metrics.addr", "session.period", "session.lock_count", "session.maintenance_interval"} {
		_ = v.BindEnv(key)
	}

	if _, err := readConfigFile(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(durationDecodeHook())); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	ApplyDefaults(&cfg)
	return &cfg, nil
}

// SaveConfig writes cfg to path in YAML, creating parent directories as
// needed.
func SaveConfig(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func setupViper(v *viper.Viper, configPath string) {
	v.SetEnvPrefix("SESSIOND")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		return
	}
	v.AddConfigPath(getConfigDir())
	v.SetConfigName("config")
	v.SetConfigType("yaml")
}

func readConfigFile(v *viper.Viper) (bool, error) {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return false, nil
		}
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read config file: %w", err)
	}
	return true, nil
}

func durationDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}
		switch v := data.(type) {
		case string:
			return time.ParseDuration(v)
		case int:
			return time.Duration(v), nil
		case int64:
			return time.Duration(v), nil
		case float64:
			return time.Duration(v), nil
		default:
			return data, nil
		}
	}
}

func getConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "sessiond")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "sessiond")
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}

// DefaultConfigExists checks if a config file exists at the default location.
func DefaultConfigExists() bool {
	_, err := os.Stat(GetDefaultConfigPath())
	return err == nil
}
