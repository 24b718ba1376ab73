// Package itinerary holds the read-only itinerary structures consumed by
// rule evaluation: the geo path of tax points, the priced fare path,
// carrier-imposed YqYr surcharges with their geo-path mapping, and the
// per-itinerary detail that records itinerary-wide rule failures.
//
// Everything here except Detail is immutable once the request is set up
// and safe to share across evaluation goroutines.
package itinerary
