package scheduleservice

import (
	"context"
	"errors"
	"fmt"

	scheduledb "github.com/Black-And-White-Club/league-scheduler/app/modules/schedule/infrastructure/repositories"
	"github.com/Black-And-White-Club/league-scheduler/pkg/observability/attr"
	"github.com/Black-And-White-Club/league-scheduler/pkg/results"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Undo deletes every game of the season together with the bracket seeds and
// device links that point at them. Calling it on an empty season returns 0.
func (s *ScheduleService) Undo(ctx context.Context, seasonID uuid.UUID) (int, error) {
	undoTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[int, error], error) {
		return s.undoLogic(ctx, db, seasonID)
	}

	result, err := withTelemetry(s, ctx, "Undo", seasonID.String(), func(ctx context.Context) (results.OperationResult[int, error], error) {
		return runInTx(s, ctx, undoTx)
	})
	deleted, err := unwrap(result, err)
	if err != nil {
		return 0, err
	}

	s.invalidateAnalysis(ctx, seasonID)
	return deleted, nil
}

func (s *ScheduleService) undoLogic(ctx context.Context, db bun.IDB, seasonID uuid.UUID) (results.OperationResult[int, error], error) {
	if _, err := s.repo.GetSeason(ctx, db, seasonID); err != nil {
		if errors.Is(err, scheduledb.ErrNotFound) {
			return results.FailureResult[int, error](ErrSeasonNotFound), nil
		}
		return results.OperationResult[int, error]{}, fmt.Errorf("failed to load season: %w", err)
	}

	deleted, err := s.repo.DeleteSeasonGames(ctx, db, seasonID)
	if err != nil {
		return results.OperationResult[int, error]{}, fmt.Errorf("failed to delete games: %w", err)
	}

	s.logger.InfoContext(ctx, "Season games deleted",
		attr.ExtractCorrelationID(ctx),
		attr.SeasonID(seasonID),
		attr.Int("deleted", deleted),
	)
	return results.SuccessResult[int, error](deleted), nil
}
