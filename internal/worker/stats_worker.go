package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/TGOO-Worldwide/tgoo-auth-backend/internal/domain"
	"github.com/TGOO-Worldwide/tgoo-auth-backend/internal/observability/metrics"
)

// StatsWorker periodically refreshes the per-platform user-count gauges.
type StatsWorker struct {
	users     domain.UserRepository
	platforms domain.PlatformRepository
	logger    *slog.Logger
	interval  time.Duration
}

// NewStatsWorker creates a new stats worker
func NewStatsWorker(
	users domain.UserRepository,
	platforms domain.PlatformRepository,
	logger *slog.Logger,
	interval time.Duration,
) *StatsWorker {
	if interval <= 0 {
		interval = time.Minute
	}
	return &StatsWorker{
		users:     users,
		platforms: platforms,
		logger:    logger,
		interval:  interval,
	}
}

// Start runs the refresh loop until the context is cancelled.
func (w *StatsWorker) Start(ctx context.Context) {
	w.logger.Info("stats worker started", slog.Duration("interval", w.interval))

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.refresh(ctx)
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("stats worker stopped")
			return
		case <-ticker.C:
			w.refresh(ctx)
		}
	}
}

func (w *StatsWorker) refresh(ctx context.Context) {
	platforms, err := w.platforms.ListActive(ctx)
	if err != nil {
		w.logger.Warn("stats refresh failed to list platforms", slog.String("error", err.Error()))
		return
	}
	for _, p := range platforms {
		count, err := w.users.CountByPlatform(ctx, p.ID)
		if err != nil {
			w.logger.Warn("stats refresh failed to count users",
				slog.String("platform", p.Code),
				slog.String("error", err.Error()),
			)
			continue
		}
		metrics.SetPlatformUsers(p.Code, count)
	}
}
