// Package jobs runs the periodic background work of the server.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/diewo77/decor-booking/internal/logging"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Reloader refreshes an in-memory snapshot from its store.
type Reloader interface {
	Reload(ctx context.Context) error
}

// Purger drops expired entries and reports how many were removed.
type Purger interface {
	Purge() int
}

// Scheduler wraps a cron runner. Job failures are logged and never stop the
// scheduler.
type Scheduler struct {
	cron    *cron.Cron
	log     *zap.Logger
	timeout time.Duration
}

func NewScheduler(log *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithChain(cron.Recover(cron.DiscardLogger))),
		log:     logging.OrNop(log),
		timeout: 30 * time.Second,
	}
}

// Reload runs every reloader in order on spec. The settings must come before
// the override snapshot so defaults derived afterwards see the new policy.
func (s *Scheduler) Reload(spec string, reloaders ...Reloader) error {
	_, err := s.cron.AddFunc(spec, func() { s.RunReload(context.Background(), reloaders...) })
	if err != nil {
		return fmt.Errorf("schedule reload %q: %w", spec, err)
	}
	return nil
}

// RunReload executes one reload pass and returns the number of failures.
func (s *Scheduler) RunReload(ctx context.Context, reloaders ...Reloader) int {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	failed := 0
	for _, r := range reloaders {
		if err := r.Reload(ctx); err != nil {
			failed++
			s.log.Warn("scheduled reload failed", zap.String("target", fmt.Sprintf("%T", r)), zap.Error(err))
		}
	}
	if failed == 0 {
		s.log.Debug("scheduled reload done", zap.Int("targets", len(reloaders)))
	}
	return failed
}

// Purge runs p on spec.
func (s *Scheduler) Purge(spec string, p Purger) error {
	_, err := s.cron.AddFunc(spec, func() {
		if n := p.Purge(); n > 0 {
			s.log.Info("expired quote sessions purged", zap.Int("sessions", n))
		}
	})
	if err != nil {
		return fmt.Errorf("schedule purge %q: %w", spec, err)
	}
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("scheduler started", zap.Int("jobs", len(s.cron.Entries())))
}

// Stop waits for running jobs or ctx, whichever ends first.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.log.Warn("scheduler stop timed out")
	}
}
