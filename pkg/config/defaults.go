package config

import "time"

// GetDefaultConfig returns a Config populated entirely from defaults.
func GetDefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills zero-valued fields of cfg with their defaults. It is
// safe to call on a partially populated Config, such as one just
// unmarshalled from a config file that only sets a few keys.
func ApplyDefaults(cfg *Config) {
	applyServerDefaults(cfg)
	applyLoggingDefaults(cfg)
	applyMetricsDefaults(cfg)
	applySessionDefaults(cfg)
}

func applyServerDefaults(cfg *Config) {
	if cfg.Socket == "" {
		cfg.Socket = "/var/run/sessiond.sock"
	}
	if cfg.Dir == "" {
		cfg.Dir = "/var/lib/sessiond"
	}
}

func applyLoggingDefaults(cfg *Config) {
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "INFO"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stderr"
	}
}

func applyMetricsDefaults(cfg *Config) {
	if cfg.Metrics.Addr == "" {
		cfg.Metrics.Addr = "127.0.0.1:9090"
	}
}

func applySessionDefaults(cfg *Config) {
	if cfg.Session.Period == 0 {
		cfg.Session.Period = 3600 * time.Second
	}
	if cfg.Session.LockCount == 0 {
		cfg.Session.LockCount = 5
	}
	if cfg.Session.MaintenanceInterval == 0 {
		cfg.Session.MaintenanceInterval = 600 * time.Second
	}
}
