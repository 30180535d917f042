package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"

	"github.com/vzahanych/weather-dashboard/internal/collector"
)

// Runner is satisfied by *collector.Collector.
type Runner interface {
	Run(ctx context.Context) (*collector.Summary, error)
}

// Scheduler triggers collection runs on a fixed interval. Singleton mode keeps a slow run
// from overlapping the next tick.
type Scheduler struct {
	scheduler *gocron.Scheduler
	runner    Runner
	interval  time.Duration
	logger    *zap.Logger
	ctx       context.Context
}

func New(runner Runner, interval time.Duration, logger *zap.Logger) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()

	return &Scheduler{
		scheduler: s,
		runner:    runner,
		interval:  interval,
		logger:    logger,
	}
}

// ParseInterval turns the configured interval into a duration. Empty means disabled.
func ParseInterval(v string) (time.Duration, error) {
	if v == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid schedule interval %q: %w", v, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid schedule interval %q: must be positive", v)
	}
	return d, nil
}

func (s *Scheduler) Enabled() bool {
	return s.interval > 0
}

// Start schedules the job; the first run fires immediately. ctx bounds every run.
func (s *Scheduler) Start(ctx context.Context) error {
	if !s.Enabled() {
		s.logger.Info("Schedule disabled")
		return nil
	}
	s.ctx = ctx

	if _, err := s.scheduler.Every(s.interval).Do(s.runOnce); err != nil {
		return fmt.Errorf("failed to schedule collection: %w", err)
	}

	s.scheduler.StartAsync()
	s.logger.Info("Schedule started", zap.Duration("interval", s.interval))
	return nil
}

func (s *Scheduler) runOnce() {
	s.logger.Info("Scheduled collection run starting")

	summary, err := s.runner.Run(s.ctx)
	if err != nil {
		s.logger.Error("Scheduled collection run failed", zap.Error(err))
		return
	}

	s.logger.Info("Scheduled collection run completed",
		zap.String("run_id", summary.RunID),
		zap.Int("saved", summary.Saved()),
		zap.Int("failed", summary.Failed()))
}

func (s *Scheduler) Stop() {
	if s.scheduler != nil && s.scheduler.IsRunning() {
		s.scheduler.Stop()
	}
}
