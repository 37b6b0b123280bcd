// Package scheduler runs the background jobs (feed poller, expiry sweeper) on
// a shared cron instance, off the request-handling path. Each job runs in its
// own goroutine, so a slow tick for one job never blocks the other's schedule.
package scheduler

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler wraps a UTC cron runner.
type Scheduler struct {
	cron   *cron.Cron
	logger *zap.SugaredLogger
}

// New creates a stopped scheduler. Jobs are added before Start.
func New(logger *zap.SugaredLogger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(cron.WithLocation(time.UTC)),
		logger: logger,
	}
}

// AddEvery schedules job at a fixed interval.
func (s *Scheduler) AddEvery(interval time.Duration, name string, job func()) error {
	return s.add(fmt.Sprintf("@every %s", interval), name, job)
}

// AddCron schedules job with a standard cron expression, evaluated in UTC.
func (s *Scheduler) AddCron(spec, name string, job func()) error {
	return s.add(spec, name, job)
}

func (s *Scheduler) add(spec, name string, job func()) error {
	_, err := s.cron.AddFunc(spec, job)
	if err != nil {
		return fmt.Errorf("schedule %s (%q): %w", name, spec, err)
	}
	s.logger.Infow("scheduled job", "job", name, "spec", spec)
	return nil
}

// Start launches the cron runner in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts scheduling and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
