// Package server provides the HTTP surface for rule evaluation.
//
// This package ties the engine and reference data together behind a
// small JSON API and manages server lifecycle including start, graceful
// shutdown, and OS signals (SIGTERM, SIGINT).
//
// # Endpoints
//
//   - POST /evaluate — evaluate a batch of itineraries against a tax list
//   - GET  /healthz  — liveness probe
//   - GET  /readyz   — readiness probe (when a health checker is attached)
//   - GET  /metrics  — Prometheus metrics (when enabled)
//
// Wire parsing stays in this package; evaluation semantics live in
// pkg/engine and pkg/rules. Amounts cross the wire as decimal strings
// so no precision is lost to binary floating point.
package server
