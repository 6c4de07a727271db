package quiz

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Sweeper is a state store that can drop idle sessions in bulk.
type Sweeper interface {
	Sweep() int
	Len() int
}

var _ Sweeper = (*MemoryStateStore)(nil)

// SessionSweeper periodically removes expired sessions from process memory.
// Redis expires its keys on its own and needs no sweeper.
type SessionSweeper struct {
	store    Sweeper
	interval time.Duration
	logger   zerolog.Logger
}

func NewSessionSweeper(store Sweeper, interval time.Duration, logger zerolog.Logger) *SessionSweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &SessionSweeper{
		store:    store,
		interval: interval,
		logger:   logger.With().Str("component", "session_sweeper").Logger(),
	}
}

// Run blocks until context cancellation.
func (w *SessionSweeper) Run(ctx context.Context) error {
	if w.store == nil {
		return nil
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.sweep()
		}
	}
}

func (w *SessionSweeper) sweep() {
	removed := w.store.Sweep()
	if removed == 0 {
		return
	}
	w.logger.Debug().Int("removed", removed).Int("remaining", w.store.Len()).Msg("expired sessions swept")
}
