package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"post_browser/internal/domain"
)

// Refresher re-fetches whatever page is currently shown.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Scheduler refreshes the current page on a fixed interval so local edits
// and the total count are brought back in line with the server.
type Scheduler struct {
	refresher Refresher
	interval  time.Duration
	timeout   time.Duration
	logger    *slog.Logger
}

func NewScheduler(refresher Refresher, interval, timeout time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		refresher: refresher,
		interval:  interval,
		timeout:   timeout,
		logger:    logger,
	}
}

// Start blocks until ctx is done. The first refresh happens after one
// interval; the initial load belongs to the renderer.
func (s *Scheduler) Start(ctx context.Context) error {
	s.logger.Info("scheduler started", "interval", s.interval)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			s.runRefresh(ctx)
		}
	}
}

func (s *Scheduler) runRefresh(ctx context.Context) {
	refreshCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	err := s.refresher.Refresh(refreshCtx)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrSuperseded):
		s.logger.Debug("refresh superseded")
	default:
		s.logger.Error("refresh failed", "error", err)
	}
}
