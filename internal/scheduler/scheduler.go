// Package scheduler runs the periodic maintenance jobs in-process. There is
// a single instance per deployment; all jobs also remain manually
// triggerable through the admin endpoints.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"knowo_wallet/internal/billing"
	"knowo_wallet/internal/domain"

	"github.com/robfig/cron/v3"
)

// Scheduler wraps a cron runner around the billing engine.
type Scheduler struct {
	cron     *cron.Cron
	engine   *billing.Engine
	logger   *slog.Logger
	schedule string
}

// New builds a scheduler firing the combined maintenance run on the given
// cron expression. Job panics are recovered and logged, not propagated.
func New(engine *billing.Engine, logger *slog.Logger, schedule string) *Scheduler {
	cronLogger := cron.PrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelInfo))
	c := cron.New(cron.WithChain(cron.Recover(cronLogger)))

	return &Scheduler{
		cron:     c,
		engine:   engine,
		logger:   logger,
		schedule: schedule,
	}
}

// Start registers the maintenance job and starts the cron runner.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.runMaintenance); err != nil {
		return err
	}
	s.logger.Info("scheduled maintenance jobs", "schedule", s.schedule)
	s.cron.Start()
	return nil
}

// Stop halts the cron runner and waits for an in-flight run to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) runMaintenance() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	result, err := s.engine.RunAll(ctx, domain.PerformedByScheduler)
	if err != nil {
		s.logger.Error("scheduled maintenance run failed", "error", err)
		return
	}
	s.logger.Info("scheduled maintenance run finished",
		"cleanup_ok", result.Cleanup.Success,
		"daily_check_ok", result.DailyCheck.Success,
		"monthly_deduction_ok", result.MonthlyDeduction.Success,
	)
}
