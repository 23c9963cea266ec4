// internal/app/system/tasks/jobs.go
package tasks

import (
	"context"
	"errors"
	"strings"
	"time"

	historystore "github.com/dalemusser/tabtrail/internal/app/store/history"
	userstore "github.com/dalemusser/tabtrail/internal/app/store/users"
	"go.uber.org/zap"
)

// RetentionSweepJob creates a job that prunes every user's history past their
// configured retention window. The capture path also prunes opportunistically
// after each insert, but that only covers active users; the sweep catches
// accounts that stopped capturing.
func RetentionSweepJob(users *userstore.Store, history *historystore.Store, interval time.Duration, logger *zap.Logger) Job {
	if interval <= 0 {
		interval = 12 * time.Hour
	}
	return Job{
		Name:     "retention-sweep",
		Interval: interval,
		Run: func(ctx context.Context) error {
			targets, err := users.ListWithRetention(ctx)
			if err != nil {
				return err
			}

			var total int64
			var problems []string
			for _, u := range targets {
				deleted, err := history.DeleteOlderThan(ctx, u.ID, u.Preferences.RetentionDays)
				if err != nil {
					if ctx.Err() != nil {
						return ctx.Err()
					}
					// One user's failure must not stop the sweep.
					problems = append(problems, u.ID.Hex()+": "+err.Error())
					continue
				}
				total += deleted
			}

			if total > 0 {
				logger.Info("retention sweep pruned expired history",
					zap.Int64("deleted", total),
					zap.Int("users", len(targets)))
			}
			if len(problems) > 0 {
				return errors.New("retention sweep: " + strings.Join(problems, "; "))
			}
			return nil
		},
	}
}
