package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/q8810247/air-quality-insights/internal/collect"
)

// Scheduler triggers capture runs on a fixed interval. Runs are serialized:
// a tick that arrives while the previous run is still in flight is skipped.
type Scheduler struct {
	scheduler *gocron.Scheduler
	collector *collect.Collector
	interval  time.Duration
	logger    *slog.Logger
}

// New creates a new Scheduler.
func New(collector *collect.Collector, interval time.Duration, logger *slog.Logger) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		collector: collector,
		interval:  interval,
		logger:    logger,
	}
}

// Start schedules the periodic capture job and starts the underlying
// scheduler. The first tick fires one full interval after start; any boot
// capture belongs to the caller.
func (s *Scheduler) Start() error {
	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 60
	}

	// Interval jobs fire immediately at StartAsync unless told to wait.
	_, err := s.scheduler.Every(minutes).Minutes().WaitForSchedule().SingletonMode().Do(func() {
		s.logger.Info("scheduler: running capture job")

		if _, err := s.collector.Run(context.Background()); err != nil {
			s.logger.Error("scheduler: capture run failed", "error", err)
			return
		}

		s.logger.Info("scheduler: completed capture job")
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
