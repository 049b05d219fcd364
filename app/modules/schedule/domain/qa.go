package scheduledomain

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/google/uuid"
)

// Severity partitions QA checks.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// QaGame is a stored game with the names the checks report.
type QaGame struct {
	ID           uuid.UUID
	AgegroupID   uuid.UUID
	AgegroupName string
	DivisionID   uuid.UUID
	DivisionName string
	FieldID      uuid.UUID
	FieldName    string
	GameDate     time.Time
	Round        int
	GameNumber   int
	T1Type       SlotType
	T1No         int
	T1ID         *uuid.UUID
	T2Type       SlotType
	T2No         int
	T2ID         *uuid.UUID
}

// QaTeam is a roster entry with its current rank and activity flag.
type QaTeam struct {
	ID           uuid.UUID
	DivisionID   uuid.UUID
	AgegroupName string
	DivisionName string
	Name         string
	DivRank      int
	Active       bool
}

// QaDivision carries the per-division settings the checks need.
type QaDivision struct {
	ID            uuid.UUID
	AgegroupName  string
	Name          string
	PoolFormat    PoolFormat
	GamesPerPair  int
	MinGapMinutes int
}

// QaSnapshot is the read-only input of a validation run. Game dates must be
// in the season's location: per-day checks group on their wall-clock date.
type QaSnapshot struct {
	SeasonID  uuid.UUID
	Games     []QaGame
	Teams     []QaTeam
	Divisions []QaDivision
}

// QaOptions tunes the checks.
type QaOptions struct {
	// DefaultMinGap applies to divisions without their own minimum gap.
	DefaultMinGap time.Duration
}

type UnscheduledTeam struct {
	TeamID       uuid.UUID `json:"teamId"`
	TeamName     string    `json:"teamName"`
	AgegroupName string    `json:"agegroupName"`
	DivisionName string    `json:"divisionName"`
}

type FieldDoubleBooking struct {
	FieldID   uuid.UUID   `json:"fieldId"`
	FieldName string      `json:"fieldName"`
	GameDate  time.Time   `json:"gameDate"`
	Count     int         `json:"count"`
	GameIDs   []uuid.UUID `json:"gameIds"`
}

type TeamDoubleBooking struct {
	TeamID       uuid.UUID   `json:"teamId"`
	TeamName     string      `json:"teamName"`
	AgegroupName string      `json:"agegroupName"`
	DivisionName string      `json:"divisionName"`
	GameDate     time.Time   `json:"gameDate"`
	Count        int         `json:"count"`
	GameIDs      []uuid.UUID `json:"gameIds"`
}

type RankMismatch struct {
	GameID       uuid.UUID `json:"gameId"`
	AgegroupName string    `json:"agegroupName"`
	DivisionName string    `json:"divisionName"`
	GameDate     time.Time `json:"gameDate"`
	Slot         string    `json:"slot"`
	RecordedNo   int       `json:"recordedNo"`
	TeamID       uuid.UUID `json:"teamId"`
	TeamName     string    `json:"teamName"`
	CurrentRank  int       `json:"currentRank"`
}

type BackToBackGame struct {
	TeamID               uuid.UUID `json:"teamId"`
	TeamName             string    `json:"teamName"`
	AgegroupName         string    `json:"agegroupName"`
	DivisionName         string    `json:"divisionName"`
	GameID               uuid.UUID `json:"gameId"`
	GameDate             time.Time `json:"gameDate"`
	FieldName            string    `json:"fieldName"`
	MinutesSincePrevious int       `json:"minutesSincePrevious"`
	MinGapMinutes        int       `json:"minGapMinutes"`
}

type RepeatedMatchup struct {
	AgegroupName string    `json:"agegroupName"`
	DivisionName string    `json:"divisionName"`
	TeamAID      uuid.UUID `json:"teamAId"`
	TeamAName    string    `json:"teamAName"`
	TeamBID      uuid.UUID `json:"teamBId"`
	TeamBName    string    `json:"teamBName"`
	GameCount    int       `json:"gameCount"`
}

type InactiveTeamInGame struct {
	GameID       uuid.UUID `json:"gameId"`
	GameDate     time.Time `json:"gameDate"`
	FieldName    string    `json:"fieldName"`
	Slot         string    `json:"slot"`
	TeamID       uuid.UUID `json:"teamId"`
	TeamName     string    `json:"teamName"`
	AgegroupName string    `json:"agegroupName"`
	DivisionName string    `json:"divisionName"`
}

// DateCount is a calendar date and its game count. Per-day dates in a QA
// result are the season's local dates, carried as midnight UTC.
type DateCount struct {
	Date      time.Time `json:"date"`
	GameCount int       `json:"gameCount"`
}

type TeamGameCount struct {
	TeamID       uuid.UUID `json:"teamId"`
	TeamName     string    `json:"teamName"`
	AgegroupName string    `json:"agegroupName"`
	DivisionName string    `json:"divisionName"`
	GameCount    int       `json:"gameCount"`
}

type TeamDayCount struct {
	TeamID    uuid.UUID `json:"teamId"`
	TeamName  string    `json:"teamName"`
	Date      time.Time `json:"date"`
	GameCount int       `json:"gameCount"`
}

type FieldDayCount struct {
	FieldID   uuid.UUID `json:"fieldId"`
	FieldName string    `json:"fieldName"`
	Date      time.Time `json:"date"`
	GameCount int       `json:"gameCount"`
}

type GameSpread struct {
	TeamID        uuid.UUID `json:"teamId"`
	TeamName      string    `json:"teamName"`
	AgegroupName  string    `json:"agegroupName"`
	DivisionName  string    `json:"divisionName"`
	Date          time.Time `json:"date"`
	GameCount     int       `json:"gameCount"`
	FirstGame     time.Time `json:"firstGame"`
	LastGame      time.Time `json:"lastGame"`
	SpreadMinutes int       `json:"spreadMinutes"`
}

type RoundRobinSummary struct {
	DivisionID    uuid.UUID `json:"divisionId"`
	AgegroupName  string    `json:"agegroupName"`
	DivisionName  string    `json:"divisionName"`
	PoolSize      int       `json:"poolSize"`
	GamesPerPair  int       `json:"gamesPerPair"`
	ExpectedGames int       `json:"expectedGames"`
	ActualGames   int       `json:"actualGames"`
}

type BracketGame struct {
	GameID       uuid.UUID `json:"gameId"`
	AgegroupName string    `json:"agegroupName"`
	DivisionName string    `json:"divisionName"`
	FieldName    string    `json:"fieldName"`
	GameDate     time.Time `json:"gameDate"`
	Round        int       `json:"round"`
	GameNumber   int       `json:"gameNumber"`
	T1Type       SlotType  `json:"t1Type"`
	T1No         int       `json:"t1No"`
	T2Type       SlotType  `json:"t2Type"`
	T2No         int       `json:"t2No"`
}

// AutoBuildQaResult collects every check's findings.
type AutoBuildQaResult struct {
	SeasonID   uuid.UUID `json:"seasonId"`
	TotalGames int       `json:"totalGames"`

	UnscheduledTeams    []UnscheduledTeam    `json:"unscheduledTeams"`
	FieldDoubleBookings []FieldDoubleBooking `json:"fieldDoubleBookings"`
	TeamDoubleBookings  []TeamDoubleBooking  `json:"teamDoubleBookings"`
	RankMismatches      []RankMismatch       `json:"rankMismatches"`

	BackToBackGames      []BackToBackGame     `json:"backToBackGames"`
	RepeatedMatchups     []RepeatedMatchup    `json:"repeatedMatchups"`
	InactiveTeamsInGames []InactiveTeamInGame `json:"inactiveTeamsInGames"`

	GamesPerDate        []DateCount         `json:"gamesPerDate"`
	GamesPerTeam        []TeamGameCount     `json:"gamesPerTeam"`
	GamesPerTeamPerDay  []TeamDayCount      `json:"gamesPerTeamPerDay"`
	GamesPerFieldPerDay []FieldDayCount     `json:"gamesPerFieldPerDay"`
	GameSpreads         []GameSpread        `json:"gameSpreads"`
	RoundRobinSummaries []RoundRobinSummary `json:"roundRobinSummaries"`
	BracketGames        []BracketGame       `json:"bracketGames"`
}

func (r AutoBuildQaResult) CriticalCount() int {
	return len(r.UnscheduledTeams) + len(r.FieldDoubleBookings) + len(r.TeamDoubleBookings) + len(r.RankMismatches)
}

func (r AutoBuildQaResult) WarningCount() int {
	return len(r.BackToBackGames) + len(r.RepeatedMatchups) + len(r.InactiveTeamsInGames)
}

// HasCriticalIssues reports a structurally broken schedule.
func (r AutoBuildQaResult) HasCriticalIssues() bool {
	return r.CriticalCount() > 0
}

// QaCheck is one named, independent check.
type QaCheck struct {
	Name     string
	Severity Severity
	run      func(*qaIndex, *AutoBuildQaResult)
}

// QaChecks lists every check in the order they run.
func QaChecks() []QaCheck {
	return slices.Clone(qaChecks)
}

var qaChecks = []QaCheck{
	{Name: "unscheduled-teams", Severity: SeverityCritical, run: checkUnscheduledTeams},
	{Name: "field-double-bookings", Severity: SeverityCritical, run: checkFieldDoubleBookings},
	{Name: "team-double-bookings", Severity: SeverityCritical, run: checkTeamDoubleBookings},
	{Name: "rank-mismatches", Severity: SeverityCritical, run: checkRankMismatches},
	{Name: "back-to-back-games", Severity: SeverityWarning, run: checkBackToBack},
	{Name: "repeated-matchups", Severity: SeverityWarning, run: checkRepeatedMatchups},
	{Name: "inactive-teams-in-games", Severity: SeverityWarning, run: checkInactiveTeams},
	{Name: "games-per-date", Severity: SeverityInfo, run: countGamesPerDate},
	{Name: "games-per-team", Severity: SeverityInfo, run: countGamesPerTeam},
	{Name: "games-per-team-per-day", Severity: SeverityInfo, run: countGamesPerTeamPerDay},
	{Name: "games-per-field-per-day", Severity: SeverityInfo, run: countGamesPerFieldPerDay},
	{Name: "game-spreads", Severity: SeverityInfo, run: computeGameSpreads},
	{Name: "round-robin-summaries", Severity: SeverityInfo, run: summarizeRoundRobins},
	{Name: "bracket-games", Severity: SeverityInfo, run: listBracketGames},
}

// ValidateSchedule runs every check over the snapshot. Checks do not depend
// on each other; ctx is checked between them.
func ValidateSchedule(ctx context.Context, snap QaSnapshot, opts QaOptions) (AutoBuildQaResult, error) {
	idx := newQaIndex(snap, opts)
	result := newQaResult(snap)

	for _, check := range qaChecks {
		if err := ctx.Err(); err != nil {
			return AutoBuildQaResult{}, err
		}
		check.run(idx, &result)
	}
	return result, nil
}

func newQaResult(snap QaSnapshot) AutoBuildQaResult {
	return AutoBuildQaResult{
		SeasonID:             snap.SeasonID,
		TotalGames:           len(snap.Games),
		UnscheduledTeams:     []UnscheduledTeam{},
		FieldDoubleBookings:  []FieldDoubleBooking{},
		TeamDoubleBookings:   []TeamDoubleBooking{},
		RankMismatches:       []RankMismatch{},
		BackToBackGames:      []BackToBackGame{},
		RepeatedMatchups:     []RepeatedMatchup{},
		InactiveTeamsInGames: []InactiveTeamInGame{},
		GamesPerDate:         []DateCount{},
		GamesPerTeam:         []TeamGameCount{},
		GamesPerTeamPerDay:   []TeamDayCount{},
		GamesPerFieldPerDay:  []FieldDayCount{},
		GameSpreads:          []GameSpread{},
		RoundRobinSummaries:  []RoundRobinSummary{},
		BracketGames:         []BracketGame{},
	}
}

// slotRef is one team appearance in a game.
type slotRef struct {
	name   string
	slot   SlotType
	no     int
	teamID *uuid.UUID
}

func (g QaGame) slots() []slotRef {
	return []slotRef{
		{name: "T1", slot: g.T1Type, no: g.T1No, teamID: g.T1ID},
		{name: "T2", slot: g.T2Type, no: g.T2No, teamID: g.T2ID},
	}
}

// teamIDs returns the distinct resolved teams of a game.
func (g QaGame) teamIDs() []uuid.UUID {
	var ids []uuid.UUID
	for _, s := range g.slots() {
		if s.teamID != nil && !slices.Contains(ids, *s.teamID) {
			ids = append(ids, *s.teamID)
		}
	}
	return ids
}

// qaIndex holds the lookups shared by the checks. It is read-only.
type qaIndex struct {
	games     []QaGame
	teams     map[uuid.UUID]QaTeam
	roster    []QaTeam
	divisions map[uuid.UUID]QaDivision
	divOrder  []QaDivision
	opts      QaOptions
}

func newQaIndex(snap QaSnapshot, opts QaOptions) *qaIndex {
	idx := &qaIndex{
		games:     slices.Clone(snap.Games),
		teams:     make(map[uuid.UUID]QaTeam, len(snap.Teams)),
		roster:    slices.Clone(snap.Teams),
		divisions: make(map[uuid.UUID]QaDivision, len(snap.Divisions)),
		divOrder:  slices.Clone(snap.Divisions),
		opts:      opts,
	}
	slices.SortFunc(idx.games, func(a, b QaGame) int {
		return cmp.Or(
			a.GameDate.Compare(b.GameDate),
			cmp.Compare(a.FieldName, b.FieldName),
			cmp.Compare(a.ID.String(), b.ID.String()),
		)
	})
	slices.SortFunc(idx.roster, compareTeams)
	slices.SortFunc(idx.divOrder, func(a, b QaDivision) int {
		return cmp.Or(cmp.Compare(a.AgegroupName, b.AgegroupName), cmp.Compare(a.Name, b.Name))
	})
	for _, t := range snap.Teams {
		idx.teams[t.ID] = t
	}
	for _, d := range snap.Divisions {
		idx.divisions[d.ID] = d
	}
	return idx
}

func compareTeams(a, b QaTeam) int {
	return cmp.Or(
		cmp.Compare(a.AgegroupName, b.AgegroupName),
		cmp.Compare(a.DivisionName, b.DivisionName),
		cmp.Compare(a.DivRank, b.DivRank),
		cmp.Compare(a.Name, b.Name),
		cmp.Compare(a.ID.String(), b.ID.String()),
	)
}

func (idx *qaIndex) teamName(id uuid.UUID) string {
	return idx.teams[id].Name
}

// minGap returns the division's minimum gap between starts.
func (idx *qaIndex) minGap(divisionID uuid.UUID) time.Duration {
	if d, ok := idx.divisions[divisionID]; ok && d.MinGapMinutes > 0 {
		return time.Duration(d.MinGapMinutes) * time.Minute
	}
	return idx.opts.DefaultMinGap
}
