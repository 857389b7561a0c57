// Package jobs runs the scheduled background work: daily instance
// generation, hourly overdue checks, and the Sunday evening summary and
// weekly reset pair.
package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mboehm/chorequest/internal/chore"
	"github.com/mboehm/chorequest/internal/gamification"
	"github.com/mboehm/chorequest/internal/store"
	"github.com/mboehm/chorequest/internal/summary"
)

// Scheduler owns the cron runner. Schedules fire in the configured location;
// the work itself operates on UTC days.
type Scheduler struct {
	cron      *cron.Cron
	chores    *store.ChoreStore
	service   *gamification.Service
	generator *summary.Generator
	logger    *slog.Logger
}

func NewScheduler(loc *time.Location, chores *store.ChoreStore, service *gamification.Service, generator *summary.Generator, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		cron:      cron.New(cron.WithLocation(loc)),
		chores:    chores,
		service:   service,
		generator: generator,
		logger:    logger.With("component", "jobs"),
	}
}

// Start registers all jobs and starts the runner.
func (s *Scheduler) Start(ctx context.Context) {
	// Daily at 00:05: materialize today's chore instances.
	s.cron.AddFunc("5 0 * * *", func() {
		count, err := chore.GenerateInstances(s.chores, time.Now().UTC())
		if err != nil {
			s.logger.Error("daily instance generation failed", "error", err)
			return
		}
		s.logger.Info("daily instance generation", "created", count)
	})

	// Hourly: report overdue pending instances.
	s.cron.AddFunc("0 * * * *", func() {
		count, err := s.chores.CountOverdue(time.Now().UTC())
		if err != nil {
			s.logger.Error("overdue check failed", "error", err)
			return
		}
		if count > 0 {
			s.logger.Warn("overdue chores", "count", count)
		}
	})

	// Sunday 19:00: generate the weekly summary while the week's points are
	// still on the board.
	s.cron.AddFunc("0 19 * * 0", func() {
		if _, err := s.generator.Generate(ctx, time.Time{}); err != nil {
			s.logger.Error("weekly summary generation failed", "error", err)
		}
	})

	// Sunday 20:00: evaluate weekly achievements, then zero weekly points.
	s.cron.AddFunc("0 20 * * 0", func() {
		if err := s.service.WeeklyReset(); err != nil {
			s.logger.Error("weekly reset failed", "error", err)
			return
		}
		s.logger.Info("weekly points reset")
	})

	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
}

// Stop halts the runner and waits for in-flight jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("scheduler stopped")
}
