package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path.
// It applies default values, validates the configuration, and returns
// any errors. Environment variables are not consulted; use
// LoadConfigWithEnvOverrides for that.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	cfg := &Config{Metrics: MetricsConfig{Enabled: DefaultMetricsEnabled}}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and
// applies environment variable overrides. Environment variables follow
// the naming convention MERIDIAN_SECTION_FIELD (e.g.,
// MERIDIAN_SERVER_LISTEN_ADDRESS) and always take precedence over
// file-based configuration.
//
// The loading sequence is:
//  1. Load YAML from file
//  2. Apply default values
//  3. Apply environment variable overrides
//  4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the
// configuration. Environment variables use the format MERIDIAN_SECTION_FIELD.
func applyEnvOverrides(cfg *Config) {
	// Engine overrides
	if val := os.Getenv("MERIDIAN_ENGINE_WORKERS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Engine.Workers = i
		}
	}
	if val := os.Getenv("MERIDIAN_ENGINE_TRACE"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Engine.Trace = b
		}
	}

	// Refdata overrides
	if val := os.Getenv("MERIDIAN_REFDATA_BACKEND"); val != "" {
		cfg.Refdata.Backend = val
	}
	if val := os.Getenv("MERIDIAN_REFDATA_PATH"); val != "" {
		cfg.Refdata.Path = val
	}
	if val := os.Getenv("MERIDIAN_REFDATA_WATCH"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Refdata.Watch = b
		}
	}
	if val := os.Getenv("MERIDIAN_REFDATA_RELOAD_SCHEDULE"); val != "" {
		cfg.Refdata.ReloadSchedule = val
	}
	if val := os.Getenv("MERIDIAN_REFDATA_BASE_CURRENCY"); val != "" {
		cfg.Refdata.BaseCurrency = val
	}

	// Logging overrides
	if val := os.Getenv("MERIDIAN_LOGGING_LEVEL"); val != "" {
		cfg.Logging.Level = val
	}
	if val := os.Getenv("MERIDIAN_LOGGING_FORMAT"); val != "" {
		cfg.Logging.Format = val
	}

	// Metrics overrides
	if val := os.Getenv("MERIDIAN_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Metrics.Enabled = b
		}
	}
	if val := os.Getenv("MERIDIAN_METRICS_PATH"); val != "" {
		cfg.Metrics.Path = val
	}

	// Server overrides
	if val := os.Getenv("MERIDIAN_SERVER_LISTEN_ADDRESS"); val != "" {
		cfg.Server.ListenAddress = val
	}
	if val := os.Getenv("MERIDIAN_SERVER_READ_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.ReadTimeout = d
		}
	}
	if val := os.Getenv("MERIDIAN_SERVER_WRITE_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.WriteTimeout = d
		}
	}
	if val := os.Getenv("MERIDIAN_SERVER_IDLE_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.IdleTimeout = d
		}
	}
	if val := os.Getenv("MERIDIAN_SERVER_SHUTDOWN_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.ShutdownTimeout = d
		}
	}
}
