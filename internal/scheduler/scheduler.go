package scheduler

import (
	"context"
	"log/slog"
	"time"

	"news_digest/internal/domain"
)

// Runner is one pipeline execution. It reports its outcome in the result,
// never through an error.
type Runner interface {
	Run(ctx context.Context, hours, topN int) domain.RunResult
}

type Scheduler struct {
	runner   Runner
	interval time.Duration
	hours    int
	topN     int
	logger   *slog.Logger
}

func NewScheduler(runner Runner, interval time.Duration, hours, topN int, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		runner:   runner,
		interval: interval,
		hours:    hours,
		topN:     topN,
		logger:   logger,
	}
}

func (s *Scheduler) Start(ctx context.Context) error {
	s.logger.Info("scheduler started", "interval", s.interval)

	s.runPipeline(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			s.runPipeline(ctx)
		}
	}
}

// runPipeline bounds one run: the model calls alone can take many minutes
// under rate limiting, so the timeout is generous.
func (s *Scheduler) runPipeline(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, time.Hour)
	defer cancel()

	result := s.runner.Run(runCtx, s.hours, s.topN)
	if !result.Success {
		s.logger.Error("pipeline run unsuccessful",
			"error", result.Error,
			"email_error", result.Email.Error,
			"duration", result.Duration,
		)
		return
	}

	s.logger.Info("pipeline run succeeded",
		"digests", result.Digests.Processed,
		"emails_sent", result.Email.Sent,
		"duration", result.Duration,
	)
}
