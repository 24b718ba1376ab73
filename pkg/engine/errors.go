package engine

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the engine.
var (
	// ErrInvalidConfig indicates an invalid engine configuration.
	ErrInvalidConfig = errors.New("invalid engine configuration")

	// ErrNoOrderedTaxes indicates Evaluate was called without a tax order.
	ErrNoOrderedTaxes = errors.New("no ordered taxes")
)

// InterruptedError reports that an itinerary's evaluation was cut short
// by a panic in its worker. The parallel driver treats it as a signal
// to discard the batch and fall back to sequential evaluation.
type InterruptedError struct {
	// ItinID identifies the itinerary whose evaluation was interrupted.
	ItinID int

	// Cause is the recovered panic value.
	Cause any
}

// Error implements the error interface.
func (e *InterruptedError) Error() string {
	return fmt.Sprintf("evaluation of itinerary %d interrupted: %v", e.ItinID, e.Cause)
}
