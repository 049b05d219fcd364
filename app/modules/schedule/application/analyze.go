package scheduleservice

import (
	"context"
	"errors"
	"fmt"
	"time"

	scheduledomain "github.com/Black-And-White-Club/league-scheduler/app/modules/schedule/domain"
	scheduledb "github.com/Black-And-White-Club/league-scheduler/app/modules/schedule/infrastructure/repositories"
	"github.com/Black-And-White-Club/league-scheduler/pkg/observability/attr"
	"github.com/Black-And-White-Club/league-scheduler/pkg/results"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// analysisState is everything analysis loads. Build reuses it.
type analysisState struct {
	season      *scheduledb.Season
	source      *scheduledb.Season
	league      *scheduledb.League
	location    *time.Location
	sourceGames []scheduledb.GameRow
	patterns    []scheduledomain.GamePlacementPattern
	summaries   []scheduledomain.SourceDivisionSummary
	divisions   []scheduledb.DivisionRow
	fields      []scheduledb.Field
	matches     []scheduledomain.DivisionMatch
	feasibility scheduledomain.AutoBuildFeasibility
}

type analysisResult = results.OperationResult[*analysisState, error]

// Analyze matches the source season's divisions against the current season's.
func (s *ScheduleService) Analyze(ctx context.Context, seasonID, sourceSeasonID uuid.UUID) (*AutoBuildAnalysisResponse, error) {
	cacheKey, cacheable := s.analysisCacheKey(ctx, seasonID, sourceSeasonID)
	if cacheable {
		var cached AutoBuildAnalysisResponse
		hit, err := s.cache.Load(ctx, cacheKey, &cached)
		if err != nil {
			s.logger.WarnContext(ctx, "Analysis cache read failed", attr.SeasonID(seasonID), attr.Error(err))
		} else if hit {
			return &cached, nil
		}
	}

	analyzeTx := func(ctx context.Context, db bun.IDB) (results.OperationResult[*AutoBuildAnalysisResponse, error], error) {
		return s.analyzeLogic(ctx, db, seasonID, sourceSeasonID)
	}

	result, err := withTelemetry(s, ctx, "Analyze", seasonID.String(), func(ctx context.Context) (results.OperationResult[*AutoBuildAnalysisResponse, error], error) {
		return runReadOnly(s, ctx, analyzeTx)
	})
	resp, err := unwrap(result, err)
	if err != nil {
		return nil, err
	}

	if cacheable {
		if err := s.cache.Store(ctx, cacheKey, resp); err != nil {
			s.logger.WarnContext(ctx, "Analysis cache write failed", attr.SeasonID(seasonID), attr.Error(err))
		}
	}
	return resp, nil
}

// analysisCacheKey fingerprints the analysis inputs. The cache is skipped when
// there is none or the fingerprint cannot be read.
func (s *ScheduleService) analysisCacheKey(ctx context.Context, seasonID, sourceSeasonID uuid.UUID) (AnalysisKey, bool) {
	if s.cache == nil || sourceSeasonID == uuid.Nil {
		return AnalysisKey{}, false
	}
	fingerprint, err := s.repo.AnalysisFingerprint(ctx, nil, seasonID, sourceSeasonID)
	if err != nil {
		s.logger.WarnContext(ctx, "Analysis fingerprint failed, bypassing cache", attr.SeasonID(seasonID), attr.Error(err))
		return AnalysisKey{}, false
	}
	return AnalysisKey{SeasonID: seasonID, SourceSeasonID: sourceSeasonID, Fingerprint: fingerprint}, true
}

func (s *ScheduleService) analyzeLogic(ctx context.Context, db bun.IDB, seasonID, sourceSeasonID uuid.UUID) (results.OperationResult[*AutoBuildAnalysisResponse, error], error) {
	loaded, err := s.loadAnalysis(ctx, db, seasonID, sourceSeasonID)
	if err != nil {
		return results.OperationResult[*AutoBuildAnalysisResponse, error]{}, err
	}
	if loaded.IsFailure() {
		return results.FailureResult[*AutoBuildAnalysisResponse, error](*loaded.Failure), nil
	}
	state := *loaded.Success

	resp := &AutoBuildAnalysisResponse{
		SeasonID: seasonID,
		Source: SourceSummary{
			SeasonID:  state.source.ID,
			Name:      state.source.Name,
			Year:      state.source.Year,
			GameCount: len(state.sourceGames),
			Divisions: state.summaries,
			GameDays:  countGameDays(state.patterns),
		},
		Matches:     state.matches,
		Feasibility: state.feasibility,
	}

	start, err := s.resolveStartDate(ctx, db, state.season, state.location, nil)
	switch {
	case err == nil:
		resp.StartDate = &start
	case !errors.Is(err, ErrNoStartDate):
		return results.OperationResult[*AutoBuildAnalysisResponse, error]{}, err
	}

	return results.SuccessResult[*AutoBuildAnalysisResponse, error](resp), nil
}

// loadAnalysis reads both seasons and runs the extractor, matcher and scorer.
// Configuration problems come back as a failure result.
func (s *ScheduleService) loadAnalysis(ctx context.Context, db bun.IDB, seasonID, sourceSeasonID uuid.UUID) (analysisResult, error) {
	fail := func(err error) (analysisResult, error) {
		return results.FailureResult[*analysisState, error](err), nil
	}

	season, err := s.repo.GetSeason(ctx, db, seasonID)
	if err != nil {
		if errors.Is(err, scheduledb.ErrNotFound) {
			return fail(ErrSeasonNotFound)
		}
		return analysisResult{}, fmt.Errorf("failed to load season: %w", err)
	}
	if sourceSeasonID == uuid.Nil || sourceSeasonID == seasonID {
		return fail(ErrNoSourceSeason)
	}

	league, err := s.repo.GetLeagueForSeason(ctx, db, seasonID)
	if err != nil {
		if errors.Is(err, scheduledb.ErrNotFound) {
			return fail(ErrNoLeagueConfigured)
		}
		return analysisResult{}, fmt.Errorf("failed to load league: %w", err)
	}

	source, err := s.repo.GetSeason(ctx, db, sourceSeasonID)
	if err != nil {
		if errors.Is(err, scheduledb.ErrNotFound) {
			return fail(ErrNoSourceSeason)
		}
		return analysisResult{}, fmt.Errorf("failed to load source season: %w", err)
	}

	location, err := s.seasonLocation(season)
	if err != nil {
		return fail(err)
	}
	sourceLocation, err := s.seasonLocation(source)
	if err != nil {
		return fail(err)
	}

	sourceGames, err := s.repo.ListSeasonGames(ctx, db, sourceSeasonID)
	if err != nil {
		return analysisResult{}, fmt.Errorf("failed to load source games: %w", err)
	}
	patterns := scheduledomain.ExtractPatterns(toSourceGames(sourceGames, sourceLocation))
	if len(patterns) == 0 {
		return fail(ErrSourceHasNoGames)
	}

	summaryRows, err := s.repo.ListSourceDivisionSummaries(ctx, db, sourceSeasonID)
	if err != nil {
		return analysisResult{}, fmt.Errorf("failed to load source divisions: %w", err)
	}
	divisions, err := s.repo.ListDivisions(ctx, db, seasonID)
	if err != nil {
		return analysisResult{}, fmt.Errorf("failed to load divisions: %w", err)
	}
	fields, err := s.repo.ListSeasonFields(ctx, db, seasonID)
	if err != nil {
		return analysisResult{}, fmt.Errorf("failed to load fields: %w", err)
	}

	summaries := toSourceSummaries(summaryRows)
	matches, err := scheduledomain.MatchDivisions(summaries, toCurrentSummaries(divisions), s.settings.Normalizer)
	if err != nil {
		if errors.Is(err, scheduledomain.ErrDuplicateDivision) {
			return fail(err)
		}
		return analysisResult{}, err
	}

	return results.SuccessResult[*analysisState, error](&analysisState{
		season:      season,
		source:      source,
		league:      league,
		location:    location,
		sourceGames: sourceGames,
		patterns:    patterns,
		summaries:   summaries,
		divisions:   divisions,
		fields:      fields,
		matches:     matches,
		feasibility: scheduledomain.ScoreFeasibility(matches, patterns, fieldNames(fields)),
	}), nil
}

// resolveStartDate picks the build anchor: the request override, then the
// season's start date, then its earliest timeslot. The result is midnight in
// loc.
func (s *ScheduleService) resolveStartDate(ctx context.Context, db bun.IDB, season *scheduledb.Season, loc *time.Location, override *time.Time) (time.Time, error) {
	if override != nil && !override.IsZero() {
		return localDate(*override, loc), nil
	}
	if season.StartDate != nil && !season.StartDate.IsZero() {
		return localDate(*season.StartDate, loc), nil
	}
	slots, err := s.repo.ListTimeslots(ctx, db, season.ID)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to load timeslots: %w", err)
	}
	if len(slots) == 0 {
		return time.Time{}, ErrNoStartDate
	}
	earliest := slots[0].StartsAt
	for _, slot := range slots[1:] {
		if slot.StartsAt.Before(earliest) {
			earliest = slot.StartsAt
		}
	}
	return localDate(earliest.In(loc), loc), nil
}

func countGameDays(patterns []scheduledomain.GamePlacementPattern) int {
	days := 0
	for _, p := range patterns {
		days = max(days, p.DayOrdinal+1)
	}
	return days
}
