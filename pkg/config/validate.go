package config

import (
	"fmt"
	"strings"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "server.listen_address").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
// It implements the error interface and provides access to all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. All validation errors are collected and
// returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateEngine(&cfg.Engine)...)
	errs = append(errs, validateRefdata(&cfg.Refdata)...)
	errs = append(errs, validateLogging(&cfg.Logging)...)
	errs = append(errs, validateMetrics(&cfg.Metrics)...)
	errs = append(errs, validateServer(&cfg.Server)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

func validateEngine(cfg *EngineConfig) []FieldError {
	var errs []FieldError
	if cfg.Workers < 1 {
		errs = append(errs, FieldError{Field: "engine.workers", Message: "must be at least 1"})
	}
	if cfg.SequentialThreshold < 1 {
		errs = append(errs, FieldError{Field: "engine.sequential_threshold", Message: "must be at least 1"})
	}
	return errs
}

func validateRefdata(cfg *RefdataConfig) []FieldError {
	var errs []FieldError
	switch cfg.Backend {
	case "memory":
	case "yaml", "sqlite":
		if cfg.Path == "" {
			errs = append(errs, FieldError{
				Field:   "refdata.path",
				Message: fmt.Sprintf("required for backend %q", cfg.Backend),
			})
		}
	default:
		errs = append(errs, FieldError{
			Field:   "refdata.backend",
			Message: fmt.Sprintf("must be one of memory, yaml, sqlite; got %q", cfg.Backend),
		})
	}
	if cfg.Watch && cfg.Backend != "yaml" {
		errs = append(errs, FieldError{Field: "refdata.watch", Message: "only supported for the yaml backend"})
	}
	if len(cfg.BaseCurrency) != 3 {
		errs = append(errs, FieldError{Field: "refdata.base_currency", Message: "must be a 3-letter currency code"})
	}
	return errs
}

func validateLogging(cfg *LoggingConfig) []FieldError {
	var errs []FieldError
	switch cfg.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, FieldError{
			Field:   "logging.level",
			Message: fmt.Sprintf("must be one of debug, info, warn, error; got %q", cfg.Level),
		})
	}
	switch cfg.Format {
	case "json", "text":
	default:
		errs = append(errs, FieldError{
			Field:   "logging.format",
			Message: fmt.Sprintf("must be json or text; got %q", cfg.Format),
		})
	}
	return errs
}

func validateMetrics(cfg *MetricsConfig) []FieldError {
	var errs []FieldError
	if cfg.Enabled && !strings.HasPrefix(cfg.Path, "/") {
		errs = append(errs, FieldError{Field: "metrics.path", Message: "must start with /"})
	}
	return errs
}

func validateServer(cfg *ServerConfig) []FieldError {
	var errs []FieldError
	if cfg.ListenAddress == "" {
		errs = append(errs, FieldError{Field: "server.listen_address", Message: "must not be empty"})
	} else if !strings.Contains(cfg.ListenAddress, ":") {
		errs = append(errs, FieldError{Field: "server.listen_address", Message: "must be host:port"})
	}
	if cfg.ShutdownTimeout <= 0 {
		errs = append(errs, FieldError{Field: "server.shutdown_timeout", Message: "must be positive"})
	}
	return errs
}
