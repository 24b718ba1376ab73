// Package rules implements the jurisdiction-defined monetary rules
// evaluated against priced itineraries and the contract they share.
//
// A Rule is immutable, loaded once from reference data, and shared
// read-only by every evaluation. Per itinerary and evaluation pass it
// produces a short-lived Applicator whose single operation, Apply,
// inspects one payment record and either passes it through or annotates
// it with a failure. Expected business conditions (missing customer
// record, missing currency rate, no matching entries) are never panics;
// they surface as record-level failures or pass-throughs.
package rules
