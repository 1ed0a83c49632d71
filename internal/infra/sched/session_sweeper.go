package sched

import (
	"context"
	"time"

	"parallel-muhit-webapp/internal/infra/metrics"

	"github.com/rs/zerolog"
)

// Sweeper drops expired entries and reports how many went.
type Sweeper interface {
	Sweep() int
}

// SessionSweeper periodically evicts expired in-memory sessions. Redis
// expires its keys on its own and needs no sweeper.
type SessionSweeper struct {
	interval time.Duration
	store    Sweeper
	log      *zerolog.Logger
}

func NewSessionSweeper(interval time.Duration, store Sweeper, logger *zerolog.Logger) *SessionSweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	l := logger.With().Str("component", "SessionSweeper").Logger()
	return &SessionSweeper{interval: interval, store: store, log: &l}
}

func (w *SessionSweeper) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Msg("Starting session sweeper")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping session sweeper")
			return ctx.Err()
		case <-ticker.C:
			w.sweepOnce()
		}
	}
}

func (w *SessionSweeper) sweepOnce() int {
	n := w.store.Sweep()
	if n > 0 {
		metrics.IncSessionsExpired(n)
		w.log.Debug().Int("count", n).Msg("expired sessions dropped")
	}
	return n
}
