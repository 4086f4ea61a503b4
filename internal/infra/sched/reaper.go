// File: internal/infra/sched/reaper.go
package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"aura-studio/internal/infra/metrics"
)

// IdleSweeper removes sessions untouched since the cutoff.
type IdleSweeper interface {
	SweepIdle(ctx context.Context, cutoff time.Time) (int, error)
}

// Reaper periodically drops idle sessions from the store. Sessions are
// tab-scoped; an abandoned tab should not pin memory forever.
type Reaper struct {
	interval time.Duration
	maxIdle  time.Duration
	store    IdleSweeper
	log      *zerolog.Logger
}

func NewReaper(interval, maxIdle time.Duration, store IdleSweeper, logger *zerolog.Logger) *Reaper {
	reapLog := logger.With().Str("component", "Reaper").Logger()
	return &Reaper{
		interval: interval,
		maxIdle:  maxIdle,
		store:    store,
		log:      &reapLog,
	}
}

func (r *Reaper) Run(ctx context.Context) error {
	r.log.Info().Dur("interval", r.interval).Dur("max_idle", r.maxIdle).Msg("starting session reaper")
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.log.Info().Msg("stopping session reaper")
			return ctx.Err()
		case <-ticker.C:
			n, err := r.store.SweepIdle(ctx, time.Now().Add(-r.maxIdle))
			if err != nil {
				r.log.Error().Err(err).Msg("session sweep failed")
				continue
			}
			if n > 0 {
				metrics.AddSessionsReaped(n)
				r.log.Info().Int("count", n).Msg("idle sessions reaped")
			}
		}
	}
}
