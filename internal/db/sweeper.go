package db

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"
)

// StartMembershipSweeper periodically removes playlist membership rows whose
// track no longer exists. Track deletion purges memberships before dropping
// the track row, so this only reconciles rows left behind by a crash between
// the two writes.
func StartMembershipSweeper(
	ctx context.Context,
	db *sql.DB,
	interval time.Duration,
	log *zap.Logger,
) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				res, err := db.ExecContext(ctx, `
                    DELETE FROM playlist_tracks pt
                     WHERE NOT EXISTS (
                        SELECT 1 FROM tracks t WHERE t.id = pt.track_id
                     )
                `)
				if err != nil {
					log.Error("failed to sweep dangling playlist memberships", zap.Error(err))
					continue
				}
				if rows, _ := res.RowsAffected(); rows > 0 {
					log.Info("swept dangling playlist memberships", zap.Int64("removed", rows))
				}
			}
		}
	}()
}
