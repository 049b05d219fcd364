package scheduleservice

import (
	"context"
	"log/slog"

	"github.com/Black-And-White-Club/league-scheduler/pkg/observability/attr"
	"github.com/google/uuid"
)

// WithBuildLock runs fn while holding the season's build lock. A nil lock
// runs fn unguarded.
func WithBuildLock(ctx context.Context, lock BuildLock, logger *slog.Logger, seasonID uuid.UUID, fn func(ctx context.Context) error) error {
	if lock == nil {
		return fn(ctx)
	}

	unlock, err := lock.TryLock(ctx, seasonID)
	if err != nil {
		return err
	}
	defer func() {
		// The build's ctx may already be cancelled; release on a fresh one.
		if err := unlock(context.WithoutCancel(ctx)); err != nil && logger != nil {
			logger.WarnContext(ctx, "Failed to release build lock", attr.SeasonID(seasonID), attr.Error(err))
		}
	}()

	return fn(ctx)
}
