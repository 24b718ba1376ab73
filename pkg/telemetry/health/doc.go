// Package health provides liveness and readiness probes for the
// evaluation service.
//
// # Overview
//
// A Checker holds named component checks (reference-data store,
// database connectivity) and aggregates them into a readiness status.
// Liveness is a constant-time probe that only confirms the process is
// serving HTTP.
//
// # Usage
//
//	checker := health.New(5 * time.Second)
//	checker.Register("refdata", func(ctx context.Context) error {
//		return store.Ping(ctx)
//	})
//
//	mux.HandleFunc("/healthz", checker.LivenessHandler())
//	mux.HandleFunc("/readyz", checker.ReadinessHandler())
//
// Readiness returns HTTP 503 while any registered check fails, which
// lets orchestrators hold traffic until reference data is loaded.
package health
