package logging

import (
	"context"
)

// Context keys for common log fields.
type contextKey string

const (
	// RequestIDKey is the context key for request IDs.
	RequestIDKey contextKey = "request_id"

	// PCCKey is the context key for the agency pseudo-city code.
	PCCKey contextKey = "pcc"

	// ItineraryKey is the context key for itinerary identifiers.
	ItineraryKey contextKey = "itinerary"
)

// WithRequestID adds a request ID to the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// GetRequestID retrieves the request ID from the context.
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// WithPCC adds the agency pseudo-city code to the context.
func WithPCC(ctx context.Context, pcc string) context.Context {
	return context.WithValue(ctx, PCCKey, pcc)
}

// GetPCC retrieves the agency pseudo-city code from the context.
func GetPCC(ctx context.Context) string {
	if pcc, ok := ctx.Value(PCCKey).(string); ok {
		return pcc
	}
	return ""
}

// WithItinerary adds an itinerary identifier to the context.
func WithItinerary(ctx context.Context, id int) context.Context {
	return context.WithValue(ctx, ItineraryKey, id)
}

// GetItinerary retrieves the itinerary identifier from the context. The
// second return is false when none is set.
func GetItinerary(ctx context.Context) (int, bool) {
	id, ok := ctx.Value(ItineraryKey).(int)
	return id, ok
}

// extractContextFields extracts common fields from context for logging.
// Returns a slice of key-value pairs suitable for logger.With().
func extractContextFields(ctx context.Context) []any {
	var fields []any

	if requestID := GetRequestID(ctx); requestID != "" {
		fields = append(fields, "request_id", requestID)
	}

	if pcc := GetPCC(ctx); pcc != "" {
		fields = append(fields, "pcc", pcc)
	}

	if id, ok := GetItinerary(ctx); ok {
		fields = append(fields, "itinerary", id)
	}

	return fields
}
