package logging

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestContextRoundTrip(t *testing.T) {
	ctx := context.Background()

	if GetRequestID(ctx) != "" {
		t.Error("GetRequestID on empty context")
	}
	ctx = WithRequestID(ctx, "req-42")
	if got := GetRequestID(ctx); got != "req-42" {
		t.Errorf("GetRequestID = %q", got)
	}

	ctx = WithPCC(ctx, "KRK1")
	if got := GetPCC(ctx); got != "KRK1" {
		t.Errorf("GetPCC = %q", got)
	}

	if _, ok := GetItinerary(ctx); ok {
		t.Error("GetItinerary ok before set")
	}
	ctx = WithItinerary(ctx, 7)
	if id, ok := GetItinerary(ctx); !ok || id != 7 {
		t.Errorf("GetItinerary = %d, %v", id, ok)
	}
}

func TestInfoContext_IncludesContextFields(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Writer: &buf})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx := WithItinerary(WithRequestID(context.Background(), "req-42"), 7)
	logger.InfoContext(ctx, "evaluating")

	out := buf.String()
	for _, want := range []string{`"request_id":"req-42"`, `"itinerary":7`} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %s", out, want)
		}
	}
}
