// Package cron provides scheduled catalog sync runs using robfig/cron.
package cron

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// SyncJob is one scheduled batch run.
type SyncJob func(ctx context.Context) error

// Scheduler runs the catalog sync on a cron schedule.
type Scheduler struct {
	cron   *cron.Cron
	job    SyncJob
	logger *slog.Logger
}

// NewScheduler creates a scheduler for the given job.
func NewScheduler(job SyncJob, logger *slog.Logger) *Scheduler {
	// Standard 5-field cron format, no seconds.
	c := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelDebug))))

	return &Scheduler{
		cron:   c,
		job:    job,
		logger: logger,
	}
}

// Start begins running the job on the given cron spec.
func (s *Scheduler) Start(spec string) error {
	_, err := s.cron.AddFunc(spec, s.run)
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("cron scheduler started", slog.String("spec", spec))
	return nil
}

// Stop gracefully stops the scheduler, returning a context that completes
// when any in-flight run finishes.
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("cron scheduler stopping")
	return s.cron.Stop()
}

func (s *Scheduler) run() {
	if err := s.job(context.Background()); err != nil {
		s.logger.Error("scheduled sync failed", slog.String("error", err.Error()))
	}
}
