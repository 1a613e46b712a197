package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go-media-cms/internal/metrics"
)

const DefaultSweepInterval = time.Hour

type ExpiredTokenPruner interface {
	DeleteExpiredBefore(ctx context.Context, threshold time.Time) (int64, error)
}

// TokenSweeper removes records whose expiry has passed. Records it has not
// reached yet are already unusable, so sweeping only reclaims space.
type TokenSweeper struct {
	store    ExpiredTokenPruner
	interval time.Duration
	now      func() time.Time
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

func NewTokenSweeper(store ExpiredTokenPruner, interval time.Duration, logger *slog.Logger, m *metrics.Metrics) *TokenSweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TokenSweeper{
		store:    store,
		interval: interval,
		now:      time.Now,
		logger:   logger.With("component", "token_sweeper"),
		metrics:  m,
	}
}

// Run sweeps once immediately and then on every tick until ctx is cancelled.
// Failed runs are logged and counted; the loop keeps going.
func (s *TokenSweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("token sweeper started", "interval", s.interval.String())
	_, _ = s.SweepOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("token sweeper stopped")
			return
		case <-ticker.C:
			_, _ = s.SweepOnce(ctx)
		}
	}
}

// SweepOnce deletes every record that expired strictly before now. A panic
// inside the store is recovered and reported as an error.
func (s *TokenSweeper) SweepOnce(ctx context.Context) (removed int64, err error) {
	now := s.now().UTC()

	defer func() {
		if rec := recover(); rec != nil {
			removed = 0
			err = fmt.Errorf("token sweep panicked: %v", rec)
		}
		if err != nil {
			s.metrics.SweepFailed()
			s.logger.Error("token sweep failed", "error", err)
		}
	}()

	removed, err = s.store.DeleteExpiredBefore(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("delete expired tokens: %w", err)
	}

	s.metrics.SweepSucceeded(removed, now)
	s.logger.Info("token sweep completed", "removed", removed)
	return removed, nil
}
