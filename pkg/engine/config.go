package engine

import (
	"fmt"
	"runtime"
)

// maxWorkers bounds the pool size to keep a misconfigured deployment
// from spawning an unbounded goroutine fan-out.
const maxWorkers = 256

// Config contains configuration for the evaluation engine.
type Config struct {
	// Workers is the size of the worker pool evaluating itineraries in
	// parallel. A value of 1 disables parallelism entirely.
	// Default: the number of CPUs.
	Workers int

	// SequentialThreshold is the batch size below which the engine
	// skips the worker pool and evaluates inline; the pool overhead is
	// not worth it for tiny batches.
	// Default: 2.
	SequentialThreshold int

	// EnableTrace enables per-rule debug logging.
	// Warning: tracing logs one line per rule per record.
	// Default: false.
	EnableTrace bool
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() *Config {
	return &Config{
		Workers:             runtime.NumCPU(),
		SequentialThreshold: 2,
		EnableTrace:         false,
	}
}

// Validate validates the engine configuration.
func (c *Config) Validate() error {
	if c.Workers <= 0 {
		return fmt.Errorf("%w: workers must be positive", ErrInvalidConfig)
	}
	if c.Workers > maxWorkers {
		return fmt.Errorf("%w: workers must not exceed %d", ErrInvalidConfig, maxWorkers)
	}
	if c.SequentialThreshold < 1 {
		return fmt.Errorf("%w: sequential threshold must be at least 1", ErrInvalidConfig)
	}
	return nil
}

// WithWorkers sets the worker pool size.
func (c *Config) WithWorkers(n int) *Config {
	c.Workers = n
	return c
}

// WithTrace enables or disables per-rule tracing.
func (c *Config) WithTrace(enabled bool) *Config {
	c.EnableTrace = enabled
	return c
}
