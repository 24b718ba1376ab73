// Package telemetry groups the observability building blocks of the
// evaluation service.
//
// # Components
//
//   - logging: structured logging with request-scoped context fields
//   - health: liveness and readiness probes
//
// Engine metrics live next to the engine itself (see pkg/engine) so
// counter labels can follow the evaluation modes they describe.
package telemetry
