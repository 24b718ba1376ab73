package rules

import (
	"fmt"
)

// ConfigurationError indicates reference data a rule depends on is
// missing or malformed. It fails the whole itinerary detail, suppressing
// all later rules for that itinerary.
type ConfigurationError struct {
	Rule   string
	Reason string
}

// Error returns the error message.
func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("rule %s: configuration error: %s", e.Rule, e.Reason)
}

// UnknownQualifierError indicates a ticket-value rule carries a
// qualifier value the engine does not recognize.
type UnknownQualifierError struct {
	Qualifier string
}

// Error returns the error message.
func (e *UnknownQualifierError) Error() string {
	return fmt.Sprintf("unknown ticket value qualifier %q", e.Qualifier)
}
