// Package scheduler reruns the fetch and derivation cycle on a cron schedule
// and keeps the most recent snapshot.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"oilfx/internal/dashboard"
)

// Refresher produces a fresh snapshot.
type Refresher interface {
	Refresh(ctx context.Context) (*dashboard.Snapshot, error)
}

// RefresherFunc adapts a function to Refresher.
type RefresherFunc func(ctx context.Context) (*dashboard.Snapshot, error)

// Refresh calls f.
func (f RefresherFunc) Refresh(ctx context.Context) (*dashboard.Snapshot, error) {
	return f(ctx)
}

// Scheduler runs a Refresher on a cron schedule. A successful refresh replaces
// the latest snapshot; a failed one leaves it in place.
type Scheduler struct {
	cron      *cron.Cron
	refresher Refresher
	ctx       context.Context
	log       zerolog.Logger

	// OnUpdate, when set, is called with every new snapshot.
	OnUpdate func(*dashboard.Snapshot)

	mu      sync.RWMutex
	latest  *dashboard.Snapshot
	lastErr error
	runs    int
}

// New creates a scheduler whose refreshes run under ctx. Cron schedules take a
// leading seconds field. A tick that fires while the previous refresh is
// still running is skipped.
func New(ctx context.Context, r Refresher, log zerolog.Logger) *Scheduler {
	cl := cronLogger{log: log}
	return &Scheduler{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		refresher: r,
		ctx:       ctx,
		log:       log,
	}
}

// Register schedules the refresh on schedule, e.g. "0 0 6 * * *".
func (s *Scheduler) Register(schedule string) error {
	if _, err := s.cron.AddFunc(schedule, s.tick); err != nil {
		return fmt.Errorf("register refresh %q: %w", schedule, err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for a running refresh to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info().Msg("scheduler stopped")
}

// RunNow executes a refresh immediately.
func (s *Scheduler) RunNow() error {
	return s.refresh(s.ctx)
}

// Latest returns the last successful snapshot, or nil before the first one.
func (s *Scheduler) Latest() *dashboard.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest
}

// LastError returns the error of the most recent refresh, nil if it succeeded.
func (s *Scheduler) LastError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// Runs returns how many refreshes have been attempted.
func (s *Scheduler) Runs() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.runs
}

func (s *Scheduler) tick() {
	if err := s.refresh(s.ctx); err != nil {
		s.log.Error().Err(err).Msg("scheduled refresh failed")
	}
}

func (s *Scheduler) refresh(ctx context.Context) error {
	start := time.Now()
	snap, err := s.refresher.Refresh(ctx)

	s.mu.Lock()
	s.runs++
	s.lastErr = err
	if err == nil {
		s.latest = snap
	}
	s.mu.Unlock()

	if err != nil {
		return err
	}

	s.log.Info().
		Int("rows", len(snap.Rows)).
		Dur("elapsed", time.Since(start)).
		Msg("snapshot refreshed")
	if s.OnUpdate != nil {
		s.OnUpdate(snap)
	}
	return nil
}

// cronLogger routes cron's own messages through zerolog.
type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
