// Package logging provides structured logging for the evaluation engine.
//
// # Overview
//
// The logging package wraps Go's standard log/slog package to provide:
//   - Structured logging with JSON and text formats
//   - Context-aware logging with request IDs and itinerary metadata
//   - Configurable log levels (debug, info, warn, error)
//
// # Usage
//
//	// Create a logger
//	logger, err := logging.New(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	})
//
//	// Log structured data
//	logger.Info("evaluation finished",
//	    "itineraries", 100,
//	    "duration_ms", 12,
//	)
//
//	// Context-aware logging
//	ctx := logging.WithRequestID(ctx, "req-123")
//	logger.InfoContext(ctx, "evaluating batch")  // Includes request_id
//
// Loggers are constructed explicitly and injected into the components
// that need them. There is no package-level logger and no lazily
// initialized global state.
package logging
