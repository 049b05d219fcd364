package scheduleservice

import (
	"errors"

	scheduledomain "github.com/Black-And-White-Club/league-scheduler/app/modules/schedule/domain"
)

// Configuration errors. They are not retryable: analysis and build stop on
// them and report them to the caller as a failure.
var (
	ErrNoSourceSeason      = errors.New("no source season selected")
	ErrSourceHasNoGames    = errors.New("source season has no scheduled games")
	ErrNoLeagueConfigured  = errors.New("current season has no league configured")
	ErrNothingToSchedule   = errors.New("current season has no divisions to schedule")
	ErrNoStartDate         = errors.New("no start date for the current season")
	ErrSeasonNotFound      = errors.New("season not found")
	ErrInvalidTimeZone     = errors.New("season time zone is not a valid IANA zone")
	ErrDuplicateDivision   = scheduledomain.ErrDuplicateDivision
	ErrBuildInProgress     = errors.New("a build is already running for this season")
	ErrInvalidBuildRequest = errors.New("invalid build request")
)

// IsConfigurationError reports whether err is one of the non-retryable
// configuration errors.
func IsConfigurationError(err error) bool {
	for _, target := range []error{
		ErrNoSourceSeason,
		ErrSourceHasNoGames,
		ErrNoLeagueConfigured,
		ErrNothingToSchedule,
		ErrNoStartDate,
		ErrDuplicateDivision,
		ErrInvalidBuildRequest,
		ErrInvalidTimeZone,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
