package question

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// ReloadNotifier is told when the shared bank changed on disk.
type ReloadNotifier interface {
	BankReloaded(ctx context.Context, version Version, notice error) error
}

// ReloadWorker polls the bank file and refreshes the store when it changes,
// so connected clients can redraw without waiting for their next action.
type ReloadWorker struct {
	store    *Store
	notifier ReloadNotifier
	interval time.Duration
	logger   zerolog.Logger
	lastSeen Version
}

func NewReloadWorker(store *Store, notifier ReloadNotifier, interval time.Duration, logger zerolog.Logger) *ReloadWorker {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &ReloadWorker{
		store:    store,
		notifier: notifier,
		interval: interval,
		logger:   logger.With().Str("component", "bank_reload_worker").Logger(),
	}
}

// Run blocks until context cancellation.
func (w *ReloadWorker) Run(ctx context.Context) error {
	if w.store == nil {
		return nil
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.store.Bank(ctx)
	w.lastSeen = w.store.Version()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

func (w *ReloadWorker) tick(ctx context.Context) {
	w.store.Bank(ctx)
	current := w.store.Version()
	if current == w.lastSeen {
		return
	}
	w.lastSeen = current

	w.logger.Info().Int64("version", int64(current)).Msg("question bank changed")
	if w.notifier == nil {
		return
	}
	if err := w.notifier.BankReloaded(ctx, current, w.store.Notice()); err != nil {
		w.logger.Warn().Err(err).Msg("bank reload notification failed")
	}
}
