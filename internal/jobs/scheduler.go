// Package jobs runs periodic maintenance tasks inside the API process.
package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"jobboard/internal/middleware"
	"jobboard/internal/observability"

	"github.com/robfig/cron/v3"
)

const sweepTimeout = time.Minute

// OfferExpirer deactivates offers whose deadline has passed.
type OfferExpirer interface {
	ExpireOverdue(ctx context.Context) (int64, error)
}

// Scheduler owns the cron runner. Runs of the same task never overlap.
type Scheduler struct {
	cron *cron.Cron
	mu   sync.Mutex
}

func NewScheduler() *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithChain(cron.Recover(cronLogger{}), cron.SkipIfStillRunning(cronLogger{}))),
	}
}

// ScheduleOfferExpiry registers the sweep on spec, e.g. "@every 15m" or "*/5 * * * *".
// An empty spec disables the sweep.
func (s *Scheduler) ScheduleOfferExpiry(spec string, expirer OfferExpirer) error {
	if spec == "" {
		middleware.Logger.Info("offer expiry sweep disabled")
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.cron.AddFunc(spec, func() { SweepExpiredOffers(context.Background(), expirer) }); err != nil {
		return fmt.Errorf("schedule offer expiry %q: %w", spec, err)
	}
	middleware.Logger.Info("offer expiry sweep scheduled", "schedule", spec)
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop prevents new runs and waits for running ones until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		middleware.Logger.Warn("scheduler stop timed out")
	}
}

// SweepExpiredOffers runs one expiry pass and records how many offers closed.
func SweepExpiredOffers(ctx context.Context, expirer OfferExpirer) int64 {
	ctx, cancel := context.WithTimeout(ctx, sweepTimeout)
	defer cancel()

	n, err := expirer.ExpireOverdue(ctx)
	if err != nil {
		middleware.Logger.ErrorContext(ctx, "offer expiry sweep failed", "error", err)
		return 0
	}
	if n > 0 {
		observability.OffersExpired.Add(float64(n))
		middleware.Logger.InfoContext(ctx, "expired job offers deactivated", "count", n)
	}
	return n
}

// cronLogger adapts the slog logger to cron.Logger.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	middleware.Logger.Debug("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	middleware.Logger.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
