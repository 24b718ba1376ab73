// Package payment defines the mutable per-tax-point payment records that
// rule applicators read and annotate during evaluation.
//
// A Detail tracks one tax at one tax-point range for one itinerary. The
// RawPayments collection for an itinerary is exclusively owned by that
// itinerary's evaluation path; applicators mutate records in place and
// the collection is never copied or shared across goroutines.
package payment
