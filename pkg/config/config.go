package config

import "time"

// Config is the root configuration structure for Meridian. It contains
// all configuration sections for the evaluation engine, reference data,
// telemetry, and the HTTP server.
type Config struct {
	// Engine contains evaluation engine configuration including the
	// worker pool size and tracing.
	Engine EngineConfig `yaml:"engine"`

	// Refdata contains reference-data configuration including backend
	// selection, source paths, and reload settings.
	Refdata RefdataConfig `yaml:"refdata"`

	// Logging contains structured logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains Prometheus metrics configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Server contains HTTP server configuration including listen
	// address and timeouts.
	Server ServerConfig `yaml:"server"`
}

// EngineConfig contains configuration for the evaluation engine.
type EngineConfig struct {
	// Workers is the worker pool size for parallel batch evaluation.
	// A value of 1 disables parallelism.
	// Default: number of CPUs.
	Workers int `yaml:"workers"`

	// SequentialThreshold is the batch size below which batches are
	// evaluated inline instead of through the pool.
	// Default: 2.
	SequentialThreshold int `yaml:"sequential_threshold"`

	// Trace enables per-rule debug logging.
	// Default: false.
	Trace bool `yaml:"trace"`
}

// RefdataConfig contains configuration for reference-data loading.
type RefdataConfig struct {
	// Backend selects the reference-data store: "memory", "yaml", or
	// "sqlite".
	// Default: "yaml".
	Backend string `yaml:"backend"`

	// Path is the YAML file/directory or the SQLite database file,
	// depending on the backend. Unused for "memory".
	Path string `yaml:"path"`

	// Watch enables fsnotify-based hot reload of YAML reference data.
	// Default: false.
	Watch bool `yaml:"watch"`

	// ReloadSchedule is an optional cron expression for periodic
	// reloads of exchange rates (standard 5-field format).
	ReloadSchedule string `yaml:"reload_schedule"`

	// BaseCurrency is the cross-rate base for currency conversion.
	// Default: "USD".
	BaseCurrency string `yaml:"base_currency"`
}

// LoggingConfig contains configuration for structured logging.
type LoggingConfig struct {
	// Level is the minimum log level ("debug", "info", "warn", "error").
	// Default: "info".
	Level string `yaml:"level"`

	// Format is the output format ("json", "text").
	// Default: "json".
	Format string `yaml:"format"`

	// AddSource includes file and line number in logs.
	// Default: false.
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig contains configuration for Prometheus metrics.
type MetricsConfig struct {
	// Enabled controls whether metrics are collected and exposed.
	// Default: true.
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path the metrics endpoint is served on.
	// Default: "/metrics".
	Path string `yaml:"path"`
}

// ServerConfig contains configuration for the HTTP server.
type ServerConfig struct {
	// ListenAddress is the address and port to listen on.
	// Format: "host:port" (e.g., "127.0.0.1:8080", "0.0.0.0:8080").
	// Default: "127.0.0.1:8080".
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire
	// request, including the body.
	// Default: 30s.
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out response
	// writes.
	// Default: 30s.
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the maximum time to wait for the next request on
	// a kept-alive connection.
	// Default: 120s.
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout bounds graceful shutdown.
	// Default: 10s.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}
