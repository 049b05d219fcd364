package scheduledb

import (
	"context"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Repository defines the contract for schedule persistence.
// Every method takes the bun.IDB to run against so callers can pass a
// transaction; nil falls back to the repository's connection.
//
// Error semantics:
//   - ErrNotFound: Record does not exist
//   - Other errors: Infrastructure failures (DB connection, query errors)
type Repository interface {
	// GetSeason retrieves a season by id.
	GetSeason(ctx context.Context, db bun.IDB, seasonID uuid.UUID) (*Season, error)

	// GetLeagueForSeason returns the season's first league by name.
	// Returns ErrNotFound when the season has no league.
	GetLeagueForSeason(ctx context.Context, db bun.IDB, seasonID uuid.UUID) (*League, error)

	// ListSourceCandidates lists the tenant's seasons before beforeYear that
	// have at least one game, newest first.
	ListSourceCandidates(ctx context.Context, db bun.IDB, tenantID uuid.UUID, beforeYear int) ([]SourceCandidate, error)

	// ListSourceDivisionSummaries lists the divisions that have games in the season.
	ListSourceDivisionSummaries(ctx context.Context, db bun.IDB, seasonID uuid.UUID) ([]DivisionSummaryRow, error)

	// ListDivisions lists every division of the season.
	ListDivisions(ctx context.Context, db bun.IDB, seasonID uuid.UUID) ([]DivisionRow, error)

	// ListTeams lists the season's teams, active or not.
	ListTeams(ctx context.Context, db bun.IDB, seasonID uuid.UUID) ([]TeamRow, error)

	// ListSeasonFields lists the fields assigned to the season.
	ListSeasonFields(ctx context.Context, db bun.IDB, seasonID uuid.UUID) ([]Field, error)

	// ListTimeslots lists the season's open timeslots in start order.
	ListTimeslots(ctx context.Context, db bun.IDB, seasonID uuid.UUID) ([]TimeslotRow, error)

	// ListPairings lists the season's pairing templates plus the shared ones.
	ListPairings(ctx context.Context, db bun.IDB, seasonID uuid.UUID) ([]Pairing, error)

	// ListSeasonGames lists the season's games ordered by date, field name,
	// round and game number.
	ListSeasonGames(ctx context.Context, db bun.IDB, seasonID uuid.UUID) ([]GameRow, error)

	// AnalysisFingerprint hashes the target season's divisions, teams, fields,
	// start date, time zone and first timeslot plus the source's game count.
	// Any roster or field edit changes it.
	AnalysisFingerprint(ctx context.Context, db bun.IDB, seasonID, sourceSeasonID uuid.UUID) (string, error)

	// CreateGames inserts games in one statement.
	CreateGames(ctx context.Context, db bun.IDB, games []*Game) error

	// DeleteSeasonGames deletes the season's games and the rows pointing at
	// them. Returns the number of games deleted.
	DeleteSeasonGames(ctx context.Context, db bun.IDB, seasonID uuid.UUID) (int, error)
}
