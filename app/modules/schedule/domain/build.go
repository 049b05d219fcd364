package scheduledomain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SizeMismatchResolution is the strategy chosen for one division.
type SizeMismatchResolution struct {
	DivisionID uuid.UUID          `json:"divisionId"`
	Strategy   ResolutionStrategy `json:"strategy"`
}

// AutoBuildRequest is the user's build instruction.
type AutoBuildRequest struct {
	SourceSeasonID       uuid.UUID                `json:"sourceSeasonId"`
	SkipDivisionIDs      []uuid.UUID              `json:"skipDivisionIds,omitempty"`
	Resolutions          []SizeMismatchResolution `json:"resolutions,omitempty"`
	IncludeBracketGames  bool                     `json:"includeBracketGames"`
	SkipAlreadyScheduled bool                     `json:"skipAlreadyScheduled"`
	// StartDate overrides the season's configured start date.
	StartDate *time.Time `json:"startDate,omitempty"`
}

// AutoBuildDivisionResult is the outcome for one current division.
type AutoBuildDivisionResult struct {
	AgegroupID   uuid.UUID          `json:"agegroupId"`
	DivisionID   uuid.UUID          `json:"divisionId"`
	AgegroupName string             `json:"agegroupName"`
	DivisionName string             `json:"divisionName"`
	MatchType    MatchType          `json:"matchType"`
	Status       BuildStatus        `json:"status"`
	GamesPlaced  int                `json:"gamesPlaced"`
	GamesFailed  int                `json:"gamesFailed"`
	Failures     []PlacementFailure `json:"failures,omitempty"`
	Message      string             `json:"message,omitempty"`
}

// AutoBuildResult aggregates a whole build.
type AutoBuildResult struct {
	SeasonID           uuid.UUID                 `json:"seasonId"`
	SourceSeasonID     uuid.UUID                 `json:"sourceSeasonId"`
	StartDate          time.Time                 `json:"startDate"`
	Divisions          []AutoBuildDivisionResult `json:"divisions"`
	DivisionsScheduled int                       `json:"divisionsScheduled"`
	DivisionsSkipped   int                       `json:"divisionsSkipped"`
	TotalGamesPlaced   int                       `json:"totalGamesPlaced"`
	GamesFailedToPlace int                       `json:"gamesFailedToPlace"`
}

// Field is a playing field assigned to the season.
type Field struct {
	ID   uuid.UUID
	Name string
}

// Team is a roster entry of a current division.
type Team struct {
	ID         uuid.UUID
	DivisionID uuid.UUID
	Name       string
	DivRank    int
	Active     bool
}

// Pairing is a fixture template for a pool of TeamCount teams.
type Pairing struct {
	TeamCount  int
	Round      int
	GameNumber int
	T1Type     SlotType
	T1No       int
	T2Type     SlotType
	T2No       int
}

// IsBracket reports whether either slot references another game's outcome.
func (p Pairing) IsBracket() bool {
	return !p.T1Type.IsTeam() || !p.T2Type.IsTeam()
}

// Timeslot is an open start time on a field. A nil AgegroupID means any
// agegroup may use it.
type Timeslot struct {
	ID         uuid.UUID
	AgegroupID *uuid.UUID
	FieldID    uuid.UUID
	FieldName  string
	StartsAt   time.Time
}

// ExistingGame is a game already stored for the season being built.
type ExistingGame struct {
	DivisionID uuid.UUID
	FieldID    uuid.UUID
	GameDate   time.Time
	T1ID       *uuid.UUID
	T2ID       *uuid.UUID
}

// BuildInput carries everything the planner reads. The planner never touches
// the store.
type BuildInput struct {
	SeasonID      uuid.UUID
	Request       AutoBuildRequest
	Matches       []DivisionMatch
	Patterns      []GamePlacementPattern
	// StartDate is in the current season's location; replayed games take
	// their wall-clock times there.
	StartDate     time.Time
	Fields        []Field
	Teams         []Team
	Pairings      []Pairing
	Timeslots     []Timeslot
	ExistingGames []ExistingGame
}

// BuildPlan is the planner's output: the result to report and the games to
// persist.
type BuildPlan struct {
	Result AutoBuildResult
	Games  []ScheduledGame
}

// divisionOutcome is what each strategy branch hands back to the tally.
type divisionOutcome struct {
	status     BuildStatus
	placements []Placement
	message    string
}

// PlanBuild decides every division's placement. ctx is checked between
// divisions; a cancelled context aborts the whole plan.
func PlanBuild(ctx context.Context, in BuildInput) (BuildPlan, error) {
	p := newPlanner(in)

	plan := BuildPlan{
		Result: AutoBuildResult{
			SeasonID:       in.SeasonID,
			SourceSeasonID: in.Request.SourceSeasonID,
			StartDate:      startOfDay(in.StartDate),
			Divisions:      []AutoBuildDivisionResult{},
		},
	}

	for _, m := range in.Matches {
		if m.MatchType == RemovedDivision || m.CurrentDivisionID == nil {
			continue
		}
		if err := ctx.Err(); err != nil {
			return BuildPlan{}, err
		}

		div := divisionContext{
			match:      m,
			agegroupID: derefID(m.CurrentAgegroupID),
			divisionID: *m.CurrentDivisionID,
		}
		outcome := p.planDivision(div)

		result, games := tally(div, outcome)
		plan.Games = append(plan.Games, games...)
		plan.Result.Divisions = append(plan.Result.Divisions, result)

		if result.Status.Scheduled() {
			plan.Result.DivisionsScheduled++
		} else {
			plan.Result.DivisionsSkipped++
		}
		plan.Result.TotalGamesPlaced += result.GamesPlaced
		plan.Result.GamesFailedToPlace += result.GamesFailed
	}

	return plan, nil
}

func (p *planner) planDivision(div divisionContext) divisionOutcome {
	if _, ok := p.skip[div.divisionID]; ok {
		return divisionOutcome{status: StatusSkipped, message: "division excluded by request"}
	}
	if p.in.Request.SkipAlreadyScheduled && p.existingByDivision[div.divisionID] > 0 {
		return divisionOutcome{status: StatusAlreadyScheduled, message: "division already has games"}
	}

	switch div.match.MatchType {
	case ExactMatch:
		return p.replayExact(div)
	case SizeMismatch:
		return p.resolveSizeMismatch(div, p.strategyFor(div.divisionID))
	case NewDivision:
		if p.strategyFor(div.divisionID) == Skip {
			return divisionOutcome{status: StatusSkipped, message: "skipped by resolution"}
		}
		return p.autoSchedule(div)
	default:
		return divisionOutcome{status: StatusSkipped, message: "unknown match type " + div.match.MatchType.String()}
	}
}

func (p *planner) resolveSizeMismatch(div divisionContext, strategy ResolutionStrategy) divisionOutcome {
	switch strategy {
	case UseCurrentPairings:
		return p.replayCurrentPairings(div)
	case Skip:
		return divisionOutcome{status: StatusSkipped, message: "skipped by resolution"}
	default:
		return p.autoSchedule(div)
	}
}

// strategyFor returns the requested strategy, defaulting to auto-schedule.
func (p *planner) strategyFor(divisionID uuid.UUID) ResolutionStrategy {
	if s, ok := p.resolutions[divisionID]; ok {
		return s
	}
	return AutoSchedule
}

func tally(div divisionContext, outcome divisionOutcome) (AutoBuildDivisionResult, []ScheduledGame) {
	result := AutoBuildDivisionResult{
		AgegroupID:   div.agegroupID,
		DivisionID:   div.divisionID,
		AgegroupName: div.match.AgegroupName,
		DivisionName: div.match.DivisionName,
		MatchType:    div.match.MatchType,
		Status:       outcome.status,
		Message:      outcome.message,
	}

	var games []ScheduledGame
	for _, placement := range outcome.placements {
		if game, ok := placement.Game(); ok {
			games = append(games, game)
			result.GamesPlaced++
			continue
		}
		if failure, ok := placement.Failure(); ok {
			result.Failures = append(result.Failures, failure)
			result.GamesFailed++
		}
	}
	return result, games
}

func derefID(id *uuid.UUID) uuid.UUID {
	if id == nil {
		return uuid.Nil
	}
	return *id
}
