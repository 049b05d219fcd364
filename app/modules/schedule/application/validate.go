package scheduleservice

import (
	"context"
	"errors"
	"fmt"

	scheduledomain "github.com/Black-And-White-Club/league-scheduler/app/modules/schedule/domain"
	scheduledb "github.com/Black-And-White-Club/league-scheduler/app/modules/schedule/infrastructure/repositories"
	"github.com/Black-And-White-Club/league-scheduler/pkg/observability/attr"
	"github.com/Black-And-White-Club/league-scheduler/pkg/results"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type qaResult = results.OperationResult[*scheduledomain.AutoBuildQaResult, error]

// Validate runs the QA checks over the season's stored games. Bad data is
// reported, never returned as an error; only an unknown season fails.
func (s *ScheduleService) Validate(ctx context.Context, seasonID uuid.UUID) (*scheduledomain.AutoBuildQaResult, error) {
	validateTx := func(ctx context.Context, db bun.IDB) (qaResult, error) {
		return s.validateLogic(ctx, db, seasonID)
	}

	result, err := withTelemetry(s, ctx, "Validate", seasonID.String(), func(ctx context.Context) (qaResult, error) {
		return runReadOnly(s, ctx, validateTx)
	})
	return unwrap(result, err)
}

func (s *ScheduleService) validateLogic(ctx context.Context, db bun.IDB, seasonID uuid.UUID) (qaResult, error) {
	season, err := s.repo.GetSeason(ctx, db, seasonID)
	if err != nil {
		if errors.Is(err, scheduledb.ErrNotFound) {
			return results.FailureResult[*scheduledomain.AutoBuildQaResult, error](ErrSeasonNotFound), nil
		}
		return qaResult{}, fmt.Errorf("failed to load season: %w", err)
	}
	location, err := s.seasonLocation(season)
	if err != nil {
		s.logger.WarnContext(ctx, "Validating in the default time zone", attr.SeasonID(seasonID), attr.Error(err))
		location = s.settings.DefaultLocation
	}

	games, err := s.repo.ListSeasonGames(ctx, db, seasonID)
	if err != nil {
		return qaResult{}, fmt.Errorf("failed to load games: %w", err)
	}
	teams, err := s.repo.ListTeams(ctx, db, seasonID)
	if err != nil {
		return qaResult{}, fmt.Errorf("failed to load teams: %w", err)
	}
	divisions, err := s.repo.ListDivisions(ctx, db, seasonID)
	if err != nil {
		return qaResult{}, fmt.Errorf("failed to load divisions: %w", err)
	}

	qa, err := scheduledomain.ValidateSchedule(ctx, toQaSnapshot(seasonID, location, games, teams, divisions), scheduledomain.QaOptions{
		DefaultMinGap: s.settings.DefaultMinGap,
	})
	if err != nil {
		return qaResult{}, err
	}

	s.logger.InfoContext(ctx, "Schedule validated",
		attr.ExtractCorrelationID(ctx),
		attr.SeasonID(seasonID),
		attr.Int("games", qa.TotalGames),
		attr.Int("critical", qa.CriticalCount()),
		attr.Int("warnings", qa.WarningCount()),
	)
	return results.SuccessResult[*scheduledomain.AutoBuildQaResult, error](&qa), nil
}
