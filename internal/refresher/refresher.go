// Package refresher renews slow-moving backend vocabulary out of band
// so webhook turns stay inside the platform deadline. The schedule is
// a standard cron expression.
package refresher

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Service runs a refresh callback on a cron schedule.
type Service struct {
	schedule cron.Schedule
	refresh  func(ctx context.Context) error
	logger   *slog.Logger
	now      func() time.Time
}

func New(spec string, refresh func(ctx context.Context) error, logger *slog.Logger) (*Service, error) {
	schedule, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("parse refresh schedule %q: %w", spec, err)
	}
	return &Service{
		schedule: schedule,
		refresh:  refresh,
		logger:   logger.With("component", "refresher"),
		now:      time.Now,
	}, nil
}

// Start blocks until the context is done, firing the refresh at each
// scheduled instant. A failed refresh is logged and retried at the
// next tick; the cached copy stays valid until replaced.
func (s *Service) Start(ctx context.Context) error {
	s.logger.Info("refresher started")
	for {
		next := s.schedule.Next(s.now())
		timer := time.NewTimer(next.Sub(s.now()))
		select {
		case <-ctx.Done():
			timer.Stop()
			s.logger.Info("refresher stopped")
			return nil
		case <-timer.C:
		}

		refreshCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		if err := s.refresh(refreshCtx); err != nil {
			s.logger.Error("refresh failed", "error", err)
		} else {
			s.logger.Info("refresh finished", "next_run", s.schedule.Next(s.now()).Format(time.RFC3339))
		}
		cancel()
	}
}
