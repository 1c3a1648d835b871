// Package scheduler wires up the cron job that periodically refreshes the
// job stores from the configured collectors.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/robfig/cron/v3"

	"github.com/garnizeh/jobpulse/internal/collectors"
)

// Scheduler wraps robfig/cron and manages the refresh loop.
type Scheduler struct {
	cron    *cron.Cron
	manager *collectors.Manager
	spec    string // cron spec, e.g. "@every 6h"
	running int32
	wg      sync.WaitGroup // tracks the bootstrap refresh goroutine
	logger  *slog.Logger
}

// New creates a Scheduler that fires every intervalHours hours.
func New(manager *collectors.Manager, intervalHours int, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		cron:    cron.New(),
		manager: manager,
		spec:    fmt.Sprintf("@every %dh", intervalHours),
		logger:  logger,
	}
}

// Start registers the job and starts the scheduler. Also runs one refresh
// immediately so the stores are populated without waiting for the first tick.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.runRefresh(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	s.logger.Info("scheduler: cron started", "spec", s.spec)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.runRefresh(ctx)
	}()
	return nil
}

// Stop shuts the scheduler down and waits for any running refresh, including
// the bootstrap one, to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.wg.Wait()
	s.logger.Info("scheduler: cron stopped")
}

// runRefresh triggers one collection cycle. Ticks that land while a refresh
// is still in flight are dropped rather than queued.
func (s *Scheduler) runRefresh(ctx context.Context) {
	if !atomic.CompareAndSwapInt32(&s.running, 0, 1) {
		s.logger.Warn("scheduler: refresh already running, skipping tick")
		return
	}
	defer atomic.StoreInt32(&s.running, 0)

	s.logger.Info("scheduler: refresh cycle started")
	stats, err := s.manager.Refresh(ctx)
	if err != nil {
		s.logger.Error("scheduler: refresh failed", "error", err)
		return
	}
	s.logger.Info("scheduler: refresh cycle complete",
		"collected", stats.Collected, "inserted", stats.Inserted, "indexed", stats.Indexed)
}
