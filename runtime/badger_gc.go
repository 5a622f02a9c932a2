package runtime

import (
	"context"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// BadgerGCWorker periodically rewrites badger value-log files so space from
// superseded chat and index entries is reclaimed. Badger never runs this on
// its own.
type BadgerGCWorker struct {
	db       *badger.DB
	interval time.Duration
	log      *slog.Logger
}

func NewBadgerGCWorker(db *badger.DB, interval time.Duration, log *slog.Logger) *BadgerGCWorker {
	return &BadgerGCWorker{db: db, interval: interval, log: log}
}

func (w *BadgerGCWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping worker")
			return nil
		case <-ticker.C:
			// Repeat until a pass finds nothing worth rewriting.
			for {
				if err := w.db.RunValueLogGC(0.5); err != nil {
					if err != badger.ErrNoRewrite {
						w.log.Warn("Value log GC failed", "error", err)
					}
					break
				}
			}
		}
	}
}
