package scheduleservice

import (
	"time"

	scheduledomain "github.com/Black-And-White-Club/league-scheduler/app/modules/schedule/domain"
	"github.com/google/uuid"
)

// SourceSummary describes the source season an analysis ran against.
type SourceSummary struct {
	SeasonID  uuid.UUID                              `json:"seasonId"`
	Name      string                                 `json:"name"`
	Year      int                                    `json:"year"`
	GameCount int                                    `json:"gameCount"`
	Divisions []scheduledomain.SourceDivisionSummary `json:"divisions"`
	// GameDays is the number of distinct dates the source season played on.
	GameDays int `json:"gameDays"`
}

// AutoBuildAnalysisResponse is the analysis shown before a build.
type AutoBuildAnalysisResponse struct {
	SeasonID    uuid.UUID                           `json:"seasonId"`
	Source      SourceSummary                       `json:"source"`
	Matches     []scheduledomain.DivisionMatch      `json:"matches"`
	Feasibility scheduledomain.AutoBuildFeasibility `json:"feasibility"`
	// StartDate is the date a build would anchor to without an override.
	StartDate *time.Time `json:"startDate,omitempty"`
}

// Settings carries the tunables the service reads from configuration.
type Settings struct {
	Normalizer    scheduledomain.NameNormalizer
	DefaultMinGap time.Duration
	// DefaultLocation is the zone for seasons without their own. Nil means UTC.
	DefaultLocation *time.Location
}
