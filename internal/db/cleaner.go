package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
)

const purgeTombstones = `DELETE FROM kv_slots WHERE deleted = true AND updated_at < $1`

// PurgeTombstones hard-deletes slots soft-deleted before cutoff and returns
// how many rows were removed.
func PurgeTombstones(ctx context.Context, db *sql.DB, cutoff time.Time) (int64, error) {
	res, err := db.ExecContext(ctx, purgeTombstones, cutoff.Unix())
	if err != nil {
		return 0, fmt.Errorf("purge tombstones: %w", err)
	}
	return res.RowsAffected()
}

// StartTombstoneCleaner runs PurgeTombstones every interval in the background
// until ctx is cancelled. Slots younger than retention are kept.
func StartTombstoneCleaner(
	ctx context.Context,
	db *sql.DB,
	interval time.Duration,
	retention time.Duration,
	log *zap.Logger,
) {
	log = log.With(zap.Duration("retention", retention))
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				removed, err := PurgeTombstones(ctx, db, now.Add(-retention))
				switch {
				case err != nil:
					log.Error("failed to purge deleted slots", zap.Error(err))
				case removed > 0:
					log.Info("purged deleted slots", zap.Int64("removed", removed))
				}
			}
		}
	}()
}
