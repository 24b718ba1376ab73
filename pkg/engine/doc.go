// Package engine orchestrates rule evaluation across itineraries.
//
// # Overview
//
// The engine takes a batch of priced itineraries and a pre-ordered tax
// list, builds the per-itinerary payment records, and applies each
// tax's rule sequence in the deterministic order. Evaluation of one
// itinerary is fully independent of every other: it mutates only its
// own records and reads only shared, read-only reference data.
//
// # Concurrency
//
// Batches are fanned out across a fixed-size worker pool. If any
// worker panics mid-batch, all in-flight parallel results are
// discarded and the whole batch re-runs sequentially on the calling
// goroutine. Partial or mixed results are never returned; only a
// failure of the sequential re-run surfaces to the caller.
//
// # Usage
//
//	eng, err := engine.New(engine.DefaultConfig(), currency, customers, baggage)
//	if err != nil { ... }
//	payments, err := eng.Evaluate(ctx, itins, orderedTaxes)
package engine
