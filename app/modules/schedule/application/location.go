package scheduleservice

import (
	"context"
	"errors"
	"fmt"
	"time"

	scheduledb "github.com/Black-And-White-Club/league-scheduler/app/modules/schedule/infrastructure/repositories"
	"github.com/Black-And-White-Club/league-scheduler/pkg/results"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type locationResult = results.OperationResult[*time.Location, error]

// SeasonLocation returns the time zone the season's calendar is kept in.
func (s *ScheduleService) SeasonLocation(ctx context.Context, seasonID uuid.UUID) (*time.Location, error) {
	locationTx := func(ctx context.Context, db bun.IDB) (locationResult, error) {
		season, err := s.repo.GetSeason(ctx, db, seasonID)
		if err != nil {
			if errors.Is(err, scheduledb.ErrNotFound) {
				return results.FailureResult[*time.Location, error](ErrSeasonNotFound), nil
			}
			return locationResult{}, fmt.Errorf("failed to load season: %w", err)
		}
		loc, err := s.seasonLocation(season)
		if err != nil {
			return results.FailureResult[*time.Location, error](err), nil
		}
		return results.SuccessResult[*time.Location, error](loc), nil
	}

	result, err := withTelemetry(s, ctx, "SeasonLocation", seasonID.String(), func(ctx context.Context) (locationResult, error) {
		return runReadOnly(s, ctx, locationTx)
	})
	return unwrap(result, err)
}

// seasonLocation loads the season's zone, falling back to the configured
// default when the season has none.
func (s *ScheduleService) seasonLocation(season *scheduledb.Season) (*time.Location, error) {
	if season.TimeZone == "" {
		return s.settings.DefaultLocation, nil
	}
	loc, err := time.LoadLocation(season.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("%w: season %s has %q", ErrInvalidTimeZone, season.ID, season.TimeZone)
	}
	return loc, nil
}

// localDate is midnight of t's calendar date, read in t's own location, moved
// into loc. Date-only columns arrive as midnight UTC.
func localDate(t time.Time, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}
