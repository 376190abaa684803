package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Reaper fails PENDING messages older than a cutoff.
type Reaper interface {
	ReapStale(ctx context.Context, olderThan time.Time) (int64, error)
}

// StaleReaper periodically fails AI placeholders whose generation never
// reached a terminal write, e.g. after a crash mid-stream.
type StaleReaper struct {
	interval   time.Duration
	staleAfter time.Duration
	reaper     Reaper
	now        func() time.Time
	log        *zerolog.Logger
}

func NewStaleReaper(interval, staleAfter time.Duration, reaper Reaper, logger *zerolog.Logger) *StaleReaper {
	if interval <= 0 {
		interval = time.Minute
	}
	compLog := logger.With().Str("component", "StaleReaper").Logger()
	return &StaleReaper{
		interval:   interval,
		staleAfter: staleAfter,
		reaper:     reaper,
		now:        time.Now,
		log:        &compLog,
	}
}

func (w *StaleReaper) Run(ctx context.Context) error {
	w.log.Info().Dur("stale_after", w.staleAfter).Msg("Starting stale message reaper")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping stale message reaper")
			return ctx.Err()
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single sweep and returns the number of messages failed.
func (w *StaleReaper) RunOnce(ctx context.Context) int64 {
	n, err := w.reaper.ReapStale(ctx, w.now().Add(-w.staleAfter))
	if err != nil {
		w.log.Error().Err(err).Msg("stale reaper error")
		return 0
	}
	if n > 0 {
		w.log.Warn().Int64("count", n).Msg("failed stale pending messages")
	}
	return n
}
