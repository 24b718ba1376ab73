package config

import (
	"runtime"
	"time"
)

// Default values for configuration fields.
const (
	// Engine defaults
	DefaultSequentialThreshold = 2

	// Refdata defaults
	DefaultRefdataBackend = "yaml"
	DefaultBaseCurrency   = "USD"

	// Logging defaults
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	// Metrics defaults
	DefaultMetricsEnabled = true
	DefaultMetricsPath    = "/metrics"

	// Server defaults
	DefaultListenAddress   = "127.0.0.1:8080"
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
)

// ApplyDefaults fills in default values for any zero-valued fields.
// Boolean fields with a true default are handled by NewDefault instead,
// since a zero bool is indistinguishable from an explicit false.
func ApplyDefaults(cfg *Config) {
	if cfg.Engine.Workers == 0 {
		cfg.Engine.Workers = runtime.NumCPU()
	}
	if cfg.Engine.SequentialThreshold == 0 {
		cfg.Engine.SequentialThreshold = DefaultSequentialThreshold
	}

	if cfg.Refdata.Backend == "" {
		cfg.Refdata.Backend = DefaultRefdataBackend
	}
	if cfg.Refdata.BaseCurrency == "" {
		cfg.Refdata.BaseCurrency = DefaultBaseCurrency
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = DefaultLogLevel
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = DefaultLogFormat
	}

	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = DefaultMetricsPath
	}

	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
}

// NewDefault returns a configuration with every field set to its
// default value.
func NewDefault() *Config {
	cfg := &Config{
		Metrics: MetricsConfig{Enabled: DefaultMetricsEnabled},
	}
	ApplyDefaults(cfg)
	return cfg
}
