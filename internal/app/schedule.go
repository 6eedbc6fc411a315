package app

import (
	"context"
	"fmt"

	"github.com/itprism/itpcron/internal/cron"
	"github.com/itprism/itpcron/internal/logger"
	"github.com/itprism/itpcron/internal/runner"
)

// NewScheduler builds a scheduler holding every [[schedule]] entry. Each
// firing is a full run through the runner.
func (a *App) NewScheduler() (*cron.Scheduler, error) {
	entries, err := cron.EntriesFromConfig(a.config.Schedule)
	if err != nil {
		return nil, err
	}

	s := cron.NewScheduler(a.logger, func(ctx context.Context, e cron.Entry) {
		result := a.Run(ctx, runner.NewInvocation(e.Mode, e.Context))
		if result.Err != nil {
			a.logger.Warn("scheduled run failed",
				logger.Field{Key: "name", Value: e.Name},
				logger.Field{Key: "run_id", Value: result.RunID})
		}
	})
	for _, e := range entries {
		if err := s.Add(e); err != nil {
			return nil, fmt.Errorf("failed to schedule %s: %w", e.Name, err)
		}
	}
	return s, nil
}

// Schedule runs the configured entries until ctx is cancelled.
func (a *App) Schedule(ctx context.Context) error {
	s, err := a.NewScheduler()
	if err != nil {
		return err
	}
	if err := s.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	a.logger.Info("stopping scheduler")
	if err := s.Stop(); err != nil {
		a.logger.Error("failed to stop scheduler", err)
	}
	return nil
}
