package health

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestLiveness(t *testing.T) {
	c := New(0)
	status := c.Liveness(context.Background())
	if status.Status != "ok" {
		t.Errorf("Status = %q, want ok", status.Status)
	}
}

func TestReadiness_NoChecks(t *testing.T) {
	c := New(0)
	status := c.Readiness(context.Background())
	if status.Status != "ready" {
		t.Errorf("Status = %q, want ready", status.Status)
	}
}

func TestReadiness_AllHealthy(t *testing.T) {
	c := New(0)
	c.Register("refdata", func(ctx context.Context) error { return nil })
	c.Register("rates", func(ctx context.Context) error { return nil })

	status := c.Readiness(context.Background())
	if status.Status != "ready" {
		t.Errorf("Status = %q, want ready", status.Status)
	}
	if len(status.Checks) != 2 {
		t.Errorf("Checks = %d, want 2", len(status.Checks))
	}
	for name, result := range status.Checks {
		if result.Status != "ok" {
			t.Errorf("check %s = %q, want ok", name, result.Status)
		}
	}
}

func TestReadiness_UnhealthyComponentDegrades(t *testing.T) {
	c := New(0)
	c.Register("refdata", func(ctx context.Context) error { return nil })
	c.Register("database", func(ctx context.Context) error {
		return errors.New("connection refused")
	})

	status := c.Readiness(context.Background())
	if status.Status != "degraded" {
		t.Errorf("Status = %q, want degraded", status.Status)
	}
	if got := status.Checks["database"]; got.Status != "unhealthy" || got.Message != "connection refused" {
		t.Errorf("database check = %+v", got)
	}
}

func TestReadiness_CheckTimeout(t *testing.T) {
	c := New(50 * time.Millisecond)
	c.Register("slow", func(ctx context.Context) error {
		select {
		case <-time.After(time.Second):
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})

	status := c.Readiness(context.Background())
	if status.Status != "degraded" {
		t.Errorf("Status = %q, want degraded", status.Status)
	}
}

func TestRegister_ReplacesExisting(t *testing.T) {
	c := New(0)
	c.Register("refdata", func(ctx context.Context) error { return errors.New("old") })
	c.Register("refdata", func(ctx context.Context) error { return nil })

	status := c.Readiness(context.Background())
	if status.Status != "ready" {
		t.Errorf("Status = %q, want ready", status.Status)
	}
}

func TestReadinessHandler(t *testing.T) {
	c := New(0)
	c.Register("refdata", func(ctx context.Context) error { return errors.New("not loaded") })

	rec := httptest.NewRecorder()
	c.ReadinessHandler()(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "not loaded") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestLivenessHandler_MethodNotAllowed(t *testing.T) {
	c := New(0)
	rec := httptest.NewRecorder()
	c.LivenessHandler()(rec, httptest.NewRequest(http.MethodPost, "/healthz", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d", rec.Code)
	}
}
