// Package scheduler runs periodic full rebuilds.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/docnav/internal/logfields"
)

// Task is a scheduled unit of work. Its error is logged.
type Task func(ctx context.Context) error

// Scheduler wraps a gocron scheduler.
type Scheduler struct {
	scheduler gocron.Scheduler
	ctx       context.Context
	cancel    context.CancelFunc
}

// New creates a stopped scheduler.
func New() (*Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{scheduler: s, ctx: ctx, cancel: cancel}, nil
}

// Every runs task every interval. A run that is still in progress when the
// next one is due causes that one to be skipped.
func (s *Scheduler) Every(name string, interval time.Duration, task Task) (string, error) {
	job, err := s.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(s.execute, name, task),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create periodic job %q: %w", name, err)
	}
	slog.Info("Scheduled periodic job", slog.String("job", name), slog.Duration("interval", interval))
	return job.ID().String(), nil
}

func (s *Scheduler) execute(name string, task Task) {
	start := time.Now()
	err := task(s.ctx)
	ms := float64(time.Since(start).Milliseconds())
	if err != nil {
		slog.Warn("Scheduled job failed", slog.String("job", name), logfields.DurationMS(ms), logfields.Error(err))
		return
	}
	slog.Debug("Scheduled job completed", slog.String("job", name), logfields.DurationMS(ms))
}

// Run starts the scheduler and blocks until ctx is canceled, then shuts it down.
func (s *Scheduler) Run(ctx context.Context) error {
	slog.Info("Starting scheduler")
	s.scheduler.Start()
	<-ctx.Done()
	return s.Stop()
}

// Stop cancels running tasks and waits for the scheduler to shut down.
func (s *Scheduler) Stop() error {
	slog.Info("Stopping scheduler")
	s.cancel()
	return s.scheduler.Shutdown()
}
