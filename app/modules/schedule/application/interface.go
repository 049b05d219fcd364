package scheduleservice

import (
	"context"
	"time"

	scheduledomain "github.com/Black-And-White-Club/league-scheduler/app/modules/schedule/domain"
	scheduledb "github.com/Black-And-White-Club/league-scheduler/app/modules/schedule/infrastructure/repositories"
	"github.com/google/uuid"
)

// Service defines the schedule auto-build operations.
type Service interface {
	// ListSourceCandidates lists earlier seasons of the same tenant that have games.
	ListSourceCandidates(ctx context.Context, seasonID uuid.UUID) ([]scheduledb.SourceCandidate, error)

	// Analyze matches the source season's divisions against the current
	// season's and scores how well a replay would fit.
	Analyze(ctx context.Context, seasonID, sourceSeasonID uuid.UUID) (*AutoBuildAnalysisResponse, error)

	// Build generates the season's games in one transaction.
	Build(ctx context.Context, seasonID uuid.UUID, req scheduledomain.AutoBuildRequest) (*scheduledomain.AutoBuildResult, error)

	// Undo deletes every game of the season. Returns the number deleted.
	Undo(ctx context.Context, seasonID uuid.UUID) (int, error)

	// SeasonLocation returns the time zone the season's calendar is kept in.
	SeasonLocation(ctx context.Context, seasonID uuid.UUID) (*time.Location, error)

	// Validate runs the QA checks over the season's stored games.
	Validate(ctx context.Context, seasonID uuid.UUID) (*scheduledomain.AutoBuildQaResult, error)

	// ExportQaWorkbook renders the QA result as an xlsx workbook.
	ExportQaWorkbook(ctx context.Context, seasonID uuid.UUID) ([]byte, error)

	// RenderGamesPerDateChart renders the games-per-date PNG.
	RenderGamesPerDateChart(ctx context.Context, seasonID uuid.UUID) ([]byte, error)
}

// AnalysisKey identifies one cached analysis. Fingerprint digests the target
// season's roster, fields and calendar, so edits to them miss the cache.
type AnalysisKey struct {
	SeasonID       uuid.UUID
	SourceSeasonID uuid.UUID
	Fingerprint    string
}

// AnalysisCache stores analysis responses between requests. Implementations
// serialise values themselves.
type AnalysisCache interface {
	Load(ctx context.Context, key AnalysisKey, dst any) (bool, error)
	Store(ctx context.Context, key AnalysisKey, v any) error
	// Invalidate drops every entry of the season, whatever its fingerprint.
	Invalidate(ctx context.Context, seasonID uuid.UUID) error
}

// BuildLock serialises builds of one season. TryLock returns
// ErrBuildInProgress when another holder has the season.
type BuildLock interface {
	TryLock(ctx context.Context, seasonID uuid.UUID) (unlock func(context.Context) error, err error)
}
