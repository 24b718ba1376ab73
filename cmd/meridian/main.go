// Meridian is a tax rule-evaluation service for airline itineraries.
//
// It evaluates ordered tax records against a configurable set of rules
// (customer restrictions, ticket value limits, optional-service limits,
// service and baggage matching) and reports which taxes remain payable
// on each itinerary.
//
// Usage:
//
//	# Start server with default configuration
//	meridian run
//
//	# Start with custom configuration file
//	meridian run --config /path/to/config.yaml
//
//	# Show version information
//	meridian version
//
//	# Validate configuration and reference-data files
//	meridian validate
package main

func main() {
	Execute()
}
