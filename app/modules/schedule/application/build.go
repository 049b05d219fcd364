package scheduleservice

import (
	"context"
	"errors"
	"fmt"

	scheduledomain "github.com/Black-And-White-Club/league-scheduler/app/modules/schedule/domain"
	"github.com/Black-And-White-Club/league-scheduler/pkg/observability/attr"
	"github.com/Black-And-White-Club/league-scheduler/pkg/results"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type buildResult = results.OperationResult[*scheduledomain.AutoBuildResult, error]

// Build generates the season's games from the source season's patterns. All
// inserts happen in one transaction; per-game placement failures are part of
// the result, not errors.
func (s *ScheduleService) Build(ctx context.Context, seasonID uuid.UUID, req scheduledomain.AutoBuildRequest) (*scheduledomain.AutoBuildResult, error) {
	buildTx := func(ctx context.Context, db bun.IDB) (buildResult, error) {
		return s.buildLogic(ctx, db, seasonID, req)
	}

	result, err := withTelemetry(s, ctx, "Build", seasonID.String(), func(ctx context.Context) (buildResult, error) {
		return runInTx(s, ctx, buildTx)
	})
	built, err := unwrap(result, err)
	if err != nil {
		return nil, err
	}

	s.invalidateAnalysis(ctx, seasonID)
	if s.metrics != nil {
		s.metrics.RecordGamesPlaced(ctx, built.TotalGamesPlaced)
		s.metrics.RecordGamesFailed(ctx, built.GamesFailedToPlace)
	}
	return built, nil
}

func (s *ScheduleService) buildLogic(ctx context.Context, db bun.IDB, seasonID uuid.UUID, req scheduledomain.AutoBuildRequest) (buildResult, error) {
	fail := func(err error) (buildResult, error) {
		return results.FailureResult[*scheduledomain.AutoBuildResult, error](err), nil
	}

	if err := validateBuildRequest(req); err != nil {
		return fail(err)
	}

	loaded, err := s.loadAnalysis(ctx, db, seasonID, req.SourceSeasonID)
	if err != nil {
		return buildResult{}, err
	}
	if loaded.IsFailure() {
		return fail(*loaded.Failure)
	}
	state := *loaded.Success
	if !state.feasibility.Buildable() {
		return fail(ErrNothingToSchedule)
	}

	start, err := s.resolveStartDate(ctx, db, state.season, state.location, req.StartDate)
	if err != nil {
		if errors.Is(err, ErrNoStartDate) {
			return fail(err)
		}
		return buildResult{}, err
	}

	teams, err := s.repo.ListTeams(ctx, db, seasonID)
	if err != nil {
		return buildResult{}, fmt.Errorf("failed to load teams: %w", err)
	}
	pairings, err := s.repo.ListPairings(ctx, db, seasonID)
	if err != nil {
		return buildResult{}, fmt.Errorf("failed to load pairings: %w", err)
	}
	timeslots, err := s.repo.ListTimeslots(ctx, db, seasonID)
	if err != nil {
		return buildResult{}, fmt.Errorf("failed to load timeslots: %w", err)
	}
	existing, err := s.repo.ListSeasonGames(ctx, db, seasonID)
	if err != nil {
		return buildResult{}, fmt.Errorf("failed to load existing games: %w", err)
	}

	plan, err := scheduledomain.PlanBuild(ctx, scheduledomain.BuildInput{
		SeasonID:      seasonID,
		Request:       req,
		Matches:       state.matches,
		Patterns:      state.patterns,
		StartDate:     start,
		Fields:        toFields(state.fields),
		Teams:         toTeams(teams),
		Pairings:      toPairings(pairings),
		Timeslots:     toTimeslots(timeslots, state.location),
		ExistingGames: toExistingGames(existing, state.location),
	})
	if err != nil {
		return buildResult{}, fmt.Errorf("failed to plan build: %w", err)
	}

	leagueByDivision := make(map[uuid.UUID]uuid.UUID, len(state.divisions))
	for _, d := range state.divisions {
		leagueByDivision[d.ID] = d.LeagueID
	}
	if err := s.repo.CreateGames(ctx, db, toGameModels(seasonID, plan.Games, leagueByDivision, state.league.ID)); err != nil {
		return buildResult{}, fmt.Errorf("failed to create games: %w", err)
	}

	s.logger.InfoContext(ctx, "Schedule built",
		attr.ExtractCorrelationID(ctx),
		attr.SeasonID(seasonID),
		attr.UUID("source_season_id", req.SourceSeasonID),
		attr.Time("start_date", plan.Result.StartDate),
		attr.Int("divisions_scheduled", plan.Result.DivisionsScheduled),
		attr.Int("divisions_skipped", plan.Result.DivisionsSkipped),
		attr.Int("games_placed", plan.Result.TotalGamesPlaced),
		attr.Int("games_failed", plan.Result.GamesFailedToPlace),
	)

	result := plan.Result
	return results.SuccessResult[*scheduledomain.AutoBuildResult, error](&result), nil
}

func validateBuildRequest(req scheduledomain.AutoBuildRequest) error {
	if req.SourceSeasonID == uuid.Nil {
		return ErrNoSourceSeason
	}
	seen := make(map[uuid.UUID]struct{}, len(req.Resolutions))
	for _, r := range req.Resolutions {
		if r.DivisionID == uuid.Nil {
			return fmt.Errorf("%w: resolution without division id", ErrInvalidBuildRequest)
		}
		if _, dup := seen[r.DivisionID]; dup {
			return fmt.Errorf("%w: more than one resolution for division %s", ErrInvalidBuildRequest, r.DivisionID)
		}
		seen[r.DivisionID] = struct{}{}
		switch r.Strategy {
		case scheduledomain.UseCurrentPairings, scheduledomain.AutoSchedule, scheduledomain.Skip:
		default:
			return fmt.Errorf("%w: unknown strategy for division %s", ErrInvalidBuildRequest, r.DivisionID)
		}
	}
	return nil
}

func (s *ScheduleService) invalidateAnalysis(ctx context.Context, seasonID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, seasonID); err != nil {
		s.logger.WarnContext(ctx, "Analysis cache invalidation failed", attr.SeasonID(seasonID), attr.Error(err))
	}
}
