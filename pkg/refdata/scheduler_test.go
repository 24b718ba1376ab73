package refdata

import (
	"context"
	"testing"
	"time"
)

func TestReloadScheduler_Start(t *testing.T) {
	tests := []struct {
		name        string
		schedule    string
		wantRunning bool
		wantError   bool
	}{
		{
			name:        "valid daily schedule",
			schedule:    "0 3 * * *",
			wantRunning: true,
			wantError:   false,
		},
		{
			name:        "valid hourly schedule",
			schedule:    "0 * * * *",
			wantRunning: true,
			wantError:   false,
		},
		{
			name:        "empty schedule - no error, not running",
			schedule:    "",
			wantRunning: false,
			wantError:   false,
		},
		{
			name:        "invalid schedule",
			schedule:    "invalid cron",
			wantRunning: false,
			wantError:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scheduler := NewReloadScheduler(func() error { return nil }, tt.schedule, nil)

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			err := scheduler.Start(ctx)

			if (err != nil) != tt.wantError {
				t.Errorf("Start() error = %v, wantError %v", err, tt.wantError)
			}
			if scheduler.IsRunning() != tt.wantRunning {
				t.Errorf("IsRunning() = %v, want %v", scheduler.IsRunning(), tt.wantRunning)
			}

			if tt.wantRunning {
				next := scheduler.NextRun()
				if next == nil {
					t.Error("NextRun() returned nil for running scheduler")
				} else if next.Before(time.Now()) {
					t.Errorf("NextRun() = %v, in the past", next)
				}
				scheduler.Stop()
				if scheduler.IsRunning() {
					t.Error("IsRunning() = true after Stop()")
				}
			}
		})
	}
}

func TestReloadScheduler_StopIdempotent(t *testing.T) {
	scheduler := NewReloadScheduler(func() error { return nil }, "0 3 * * *", nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := scheduler.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	scheduler.Stop()
	scheduler.Stop()
	if scheduler.IsRunning() {
		t.Error("IsRunning() = true after Stop()")
	}
}
