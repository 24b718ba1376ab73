package refdata

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"skyfare/meridian/pkg/telemetry/logging"
)

// ReloadFunc performs one reference-data reload cycle.
type ReloadFunc func() error

// ReloadScheduler runs a reload callback on a cron schedule. Bank
// selling rates in particular are republished daily, so a typical
// schedule is "0 3 * * *".
type ReloadScheduler struct {
	reload   ReloadFunc
	schedule string
	cron     *cron.Cron
	mu       sync.Mutex
	logger   *logging.Logger
	running  bool
}

// NewReloadScheduler creates a scheduler for the given reload callback.
// An empty schedule disables scheduling.
func NewReloadScheduler(reload ReloadFunc, schedule string, logger *logging.Logger) *ReloadScheduler {
	if logger == nil {
		logger = logging.Default()
	}
	return &ReloadScheduler{
		reload:   reload,
		schedule: schedule,
		cron:     cron.New(),
		logger:   logger.With("component", "refdata.scheduler"),
	}
}

// Start begins scheduled reloading. It validates the cron expression and
// stops automatically when the context is cancelled.
func (s *ReloadScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.schedule == "" {
		s.logger.Info("reload schedule not configured, skipping scheduler")
		return nil
	}

	if _, err := cron.ParseStandard(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", s.schedule, err)
	}

	if _, err := s.cron.AddFunc(s.schedule, func() {
		s.runReload()
	}); err != nil {
		return fmt.Errorf("failed to schedule reload: %w", err)
	}

	s.cron.Start()
	s.running = true

	s.logger.Info("reference-data reload scheduler started",
		"schedule", s.schedule,
	)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// runReload executes one reload cycle.
func (s *ReloadScheduler) runReload() {
	s.logger.Info("starting scheduled reference-data reload")

	if err := s.reload(); err != nil {
		s.logger.Error("scheduled reload failed", "error", err)
		return
	}
	s.logger.Info("scheduled reload completed")
}

// Stop stops the scheduler and waits for any running reload to finish.
func (s *ReloadScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil && s.running {
		ctx := s.cron.Stop()
		<-ctx.Done()
		s.running = false
		s.logger.Info("reference-data reload scheduler stopped")
	}
}

// IsRunning reports whether the scheduler is active.
func (s *ReloadScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// NextRun returns the next scheduled reload time, nil when not running.
func (s *ReloadScheduler) NextRun() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.cron.Entries()
	if len(entries) == 0 {
		return nil
	}
	next := entries[0].Next
	return &next
}
