// AngelaMos | 2026
// scheduler.go

// Package jobs runs the recurring maintenance work: the end-of-day sales
// summary and the expired-token sweep.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

const tokenSweepSpec = "0 * * * *"

type SummarySender interface {
	SendDailySummaries(ctx context.Context) error
}

type TokenSweeper interface {
	PurgeExpiredTokens(
		ctx context.Context,
		retention time.Duration,
	) (int64, error)
}

type Scheduler struct {
	cron   *cron.Cron
	logger *slog.Logger
}

func NewScheduler(
	summaryCronSpec string,
	tokenRetention time.Duration,
	summaries SummarySender,
	sweeper TokenSweeper,
	logger *slog.Logger,
) (*Scheduler, error) {
	if logger == nil {
		logger = slog.Default()
	}

	c := cron.New()

	_, err := c.AddFunc(summaryCronSpec, func() {
		ctx, cancel := context.WithTimeout(
			context.Background(),
			5*time.Minute,
		)
		defer cancel()

		if err := summaries.SendDailySummaries(ctx); err != nil {
			logger.Error("daily summary job failed", "error", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("schedule daily summary: %w", err)
	}

	_, err = c.AddFunc(tokenSweepSpec, func() {
		ctx, cancel := context.WithTimeout(
			context.Background(),
			time.Minute,
		)
		defer cancel()

		removed, err := sweeper.PurgeExpiredTokens(ctx, tokenRetention)
		if err != nil {
			logger.Error("token sweep failed", "error", err)
			return
		}
		if removed > 0 {
			logger.Info("expired tokens swept", "removed", removed)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("schedule token sweep: %w", err)
	}

	return &Scheduler{cron: c, logger: logger}, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("job scheduler started")
}

// Stop halts scheduling and waits for running jobs to finish.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop().Done()

	select {
	case <-done:
	case <-ctx.Done():
		s.logger.Warn("job scheduler stop timed out")
	}

	s.logger.Info("job scheduler stopped")
}
