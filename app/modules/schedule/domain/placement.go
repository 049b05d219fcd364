package scheduledomain

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ScheduledGame is a game the build will persist.
type ScheduledGame struct {
	AgegroupID uuid.UUID
	DivisionID uuid.UUID
	FieldID    uuid.UUID
	FieldName  string
	GameDate   time.Time
	Round      int
	GameNumber int
	T1Type     SlotType
	T1No       int
	T1ID       *uuid.UUID
	T2Type     SlotType
	T2No       int
	T2ID       *uuid.UUID
}

// FailureReason explains why a single game could not be placed.
type FailureReason string

const (
	FailureUnmappedField  FailureReason = "unmapped-field"
	FailureSlotOccupied   FailureReason = "slot-occupied"
	FailureNoOpenTimeslot FailureReason = "no-open-timeslot"
	FailureUnknownDay     FailureReason = "unknown-day"
)

// PlacementFailure records one game that was not placed.
type PlacementFailure struct {
	Reason     FailureReason `json:"reason"`
	Round      int           `json:"round"`
	GameNumber int           `json:"gameNumber"`
	FieldName  string        `json:"fieldName,omitempty"`
	GameDate   *time.Time    `json:"gameDate,omitempty"`
	Detail     string        `json:"detail,omitempty"`
}

// Placement is either a placed game or a failure.
type Placement struct {
	game    *ScheduledGame
	failure *PlacementFailure
}

func Placed(g ScheduledGame) Placement { return Placement{game: &g} }

func Failed(f PlacementFailure) Placement { return Placement{failure: &f} }

func (p Placement) Game() (ScheduledGame, bool) {
	if p.game == nil {
		return ScheduledGame{}, false
	}
	return *p.game, true
}

func (p Placement) Failure() (PlacementFailure, bool) {
	if p.failure == nil {
		return PlacementFailure{}, false
	}
	return *p.failure, true
}

type divisionContext struct {
	match      DivisionMatch
	agegroupID uuid.UUID
	divisionID uuid.UUID
}

type slotKey struct {
	field uuid.UUID
	at    int64
}

type teamKey struct {
	team uuid.UUID
	at   int64
}

// planner holds the lookup tables and the occupancy built up while divisions
// are placed. Occupancy starts from the season's existing games.
type planner struct {
	in                 BuildInput
	calendar           DayCalendar
	fields             map[string]Field
	ranks              map[uuid.UUID]map[int]Team
	activeCount        map[uuid.UUID]int
	pairingsBySize     map[int][]Pairing
	slots              []Timeslot
	fieldBusy          map[slotKey]struct{}
	teamBusy           map[teamKey]struct{}
	existingByDivision map[uuid.UUID]int
	skip               map[uuid.UUID]struct{}
	resolutions        map[uuid.UUID]ResolutionStrategy
}

func newPlanner(in BuildInput) *planner {
	p := &planner{
		in:                 in,
		calendar:           NewDayCalendar(in.Patterns),
		fields:             make(map[string]Field, len(in.Fields)),
		ranks:              make(map[uuid.UUID]map[int]Team),
		activeCount:        make(map[uuid.UUID]int),
		pairingsBySize:     make(map[int][]Pairing),
		fieldBusy:          make(map[slotKey]struct{}),
		teamBusy:           make(map[teamKey]struct{}),
		existingByDivision: make(map[uuid.UUID]int),
		skip:               make(map[uuid.UUID]struct{}, len(in.Request.SkipDivisionIDs)),
		resolutions:        make(map[uuid.UUID]ResolutionStrategy, len(in.Request.Resolutions)),
	}

	for _, f := range in.Fields {
		key := canonicalName(f.Name)
		if _, dup := p.fields[key]; !dup {
			p.fields[key] = f
		}
	}

	teams := slices.Clone(in.Teams)
	slices.SortFunc(teams, func(a, b Team) int {
		return cmp.Or(cmp.Compare(a.DivRank, b.DivRank), cmp.Compare(a.Name, b.Name))
	})
	for _, t := range teams {
		if !t.Active {
			continue
		}
		p.activeCount[t.DivisionID]++
		byRank, ok := p.ranks[t.DivisionID]
		if !ok {
			byRank = make(map[int]Team)
			p.ranks[t.DivisionID] = byRank
		}
		if _, taken := byRank[t.DivRank]; !taken {
			byRank[t.DivRank] = t
		}
	}

	for _, pr := range in.Pairings {
		p.pairingsBySize[pr.TeamCount] = append(p.pairingsBySize[pr.TeamCount], pr)
	}
	for size := range p.pairingsBySize {
		slices.SortFunc(p.pairingsBySize[size], func(a, b Pairing) int {
			return cmp.Or(cmp.Compare(a.Round, b.Round), cmp.Compare(a.GameNumber, b.GameNumber))
		})
	}

	startDay := startOfDay(in.StartDate)
	for _, s := range in.Timeslots {
		if s.StartsAt.Before(startDay) {
			continue
		}
		p.slots = append(p.slots, s)
	}
	slices.SortFunc(p.slots, compareTimeslots)

	for _, g := range in.ExistingGames {
		p.existingByDivision[g.DivisionID]++
		p.markBusy(g.FieldID, g.GameDate, g.T1ID, g.T2ID)
	}

	for _, id := range in.Request.SkipDivisionIDs {
		p.skip[id] = struct{}{}
	}
	for _, r := range in.Request.Resolutions {
		p.resolutions[r.DivisionID] = r.Strategy
	}
	return p
}

// compareTimeslots orders greedy candidates: earliest start, then field name,
// then field id.
func compareTimeslots(a, b Timeslot) int {
	return cmp.Or(
		a.StartsAt.Compare(b.StartsAt),
		cmp.Compare(strings.ToLower(a.FieldName), strings.ToLower(b.FieldName)),
		cmp.Compare(a.FieldID.String(), b.FieldID.String()),
	)
}

// replayExact places every source pattern of the division verbatim.
func (p *planner) replayExact(div divisionContext) divisionOutcome {
	patterns := p.divisionPatterns(div)
	placements := make([]Placement, 0, len(patterns))
	for _, pat := range patterns {
		at, ok := p.calendar.Resolve(p.in.StartDate, pat.DayOrdinal, pat.TimeOfDay)
		if !ok {
			placements = append(placements, Failed(PlacementFailure{
				Reason:     FailureUnknownDay,
				Round:      pat.Round,
				GameNumber: pat.GameNumber,
				FieldName:  pat.FieldName,
				Detail:     fmt.Sprintf("day ordinal %d is not in the source calendar", pat.DayOrdinal),
			}))
			continue
		}
		placements = append(placements, p.placeAt(div, pat.FieldName, at, pat.Round, pat.GameNumber,
			pat.T1Type, pat.T1No, pat.T2Type, pat.T2No))
	}
	return divisionOutcome{status: StatusPatternReplay, placements: placements}
}

// replayCurrentPairings keeps the source placement slots but fills them with
// the fixtures for the division's current pool size. A pairing takes the next
// free slot of its own round, then any free slot, then falls back to greedy.
func (p *planner) replayCurrentPairings(div divisionContext) divisionOutcome {
	patterns := p.divisionPatterns(div)
	pairings := p.pairingsFor(div)
	if len(pairings) == 0 {
		return divisionOutcome{
			status:  StatusPatternReplay,
			message: fmt.Sprintf("no pairings defined for %d teams", p.activeCount[div.divisionID]),
		}
	}

	used := make([]bool, len(patterns))
	byRound := make(map[int][]int)
	for i, pat := range patterns {
		byRound[pat.Round] = append(byRound[pat.Round], i)
	}
	nextFree := func(candidates []int) int {
		for _, i := range candidates {
			if !used[i] {
				return i
			}
		}
		return -1
	}
	all := make([]int, len(patterns))
	for i := range all {
		all[i] = i
	}

	var placements []Placement
	var leftovers []Pairing
	for _, pr := range pairings {
		i := nextFree(byRound[pr.Round])
		if i < 0 {
			leftovers = append(leftovers, pr)
			continue
		}
		used[i] = true
		placements = append(placements, p.placePairingAtPattern(div, patterns[i], pr))
	}

	for _, pr := range leftovers {
		i := nextFree(all)
		if i < 0 {
			placements = append(placements, p.placeGreedy(div, pr))
			continue
		}
		used[i] = true
		placements = append(placements, p.placePairingAtPattern(div, patterns[i], pr))
	}

	return divisionOutcome{status: StatusPatternReplay, placements: placements}
}

// autoSchedule ignores history and greedily places the division's pairings.
func (p *planner) autoSchedule(div divisionContext) divisionOutcome {
	pairings := p.pairingsFor(div)
	outcome := divisionOutcome{status: StatusAutoSchedule}
	if len(pairings) == 0 {
		outcome.message = fmt.Sprintf("no pairings defined for %d teams", p.activeCount[div.divisionID])
		return outcome
	}
	for _, pr := range pairings {
		outcome.placements = append(outcome.placements, p.placeGreedy(div, pr))
	}
	return outcome
}

func (p *planner) placePairingAtPattern(div divisionContext, pat GamePlacementPattern, pr Pairing) Placement {
	at, ok := p.calendar.Resolve(p.in.StartDate, pat.DayOrdinal, pat.TimeOfDay)
	if !ok {
		return p.placeGreedy(div, pr)
	}
	return p.placeAt(div, pat.FieldName, at, pr.Round, pr.GameNumber, pr.T1Type, pr.T1No, pr.T2Type, pr.T2No)
}

// placeAt places a game on a named field at an exact time.
func (p *planner) placeAt(div divisionContext, fieldName string, at time.Time, round, gameNumber int,
	t1Type SlotType, t1No int, t2Type SlotType, t2No int) Placement {

	field, ok := p.fields[canonicalName(fieldName)]
	if !ok {
		return Failed(PlacementFailure{
			Reason:     FailureUnmappedField,
			Round:      round,
			GameNumber: gameNumber,
			FieldName:  fieldName,
			GameDate:   &at,
			Detail:     fmt.Sprintf("field %q is not assigned to the season", fieldName),
		})
	}
	if _, busy := p.fieldBusy[slotKey{field: field.ID, at: at.Unix()}]; busy {
		return Failed(PlacementFailure{
			Reason:     FailureSlotOccupied,
			Round:      round,
			GameNumber: gameNumber,
			FieldName:  field.Name,
			GameDate:   &at,
			Detail:     "field already has a game at this time",
		})
	}

	game := p.newGame(div, field, at, round, gameNumber, t1Type, t1No, t2Type, t2No)
	p.markBusy(game.FieldID, game.GameDate, game.T1ID, game.T2ID)
	return Placed(game)
}

// placeGreedy takes the first open timeslot, in chronological order, where the
// field is free and neither team is already playing.
func (p *planner) placeGreedy(div divisionContext, pr Pairing) Placement {
	t1 := p.resolveTeam(div, pr.T1Type, pr.T1No)
	t2 := p.resolveTeam(div, pr.T2Type, pr.T2No)

	for _, s := range p.slots {
		if s.AgegroupID != nil && *s.AgegroupID != div.agegroupID {
			continue
		}
		if _, busy := p.fieldBusy[slotKey{field: s.FieldID, at: s.StartsAt.Unix()}]; busy {
			continue
		}
		if p.teamPlaying(t1, s.StartsAt) || p.teamPlaying(t2, s.StartsAt) {
			continue
		}

		game := p.newGame(div, Field{ID: s.FieldID, Name: s.FieldName}, s.StartsAt,
			pr.Round, pr.GameNumber, pr.T1Type, pr.T1No, pr.T2Type, pr.T2No)
		p.markBusy(game.FieldID, game.GameDate, game.T1ID, game.T2ID)
		return Placed(game)
	}

	return Failed(PlacementFailure{
		Reason:     FailureNoOpenTimeslot,
		Round:      pr.Round,
		GameNumber: pr.GameNumber,
		Detail:     "no open timeslot left for this pairing",
	})
}

func (p *planner) newGame(div divisionContext, field Field, at time.Time, round, gameNumber int,
	t1Type SlotType, t1No int, t2Type SlotType, t2No int) ScheduledGame {
	return ScheduledGame{
		AgegroupID: div.agegroupID,
		DivisionID: div.divisionID,
		FieldID:    field.ID,
		FieldName:  field.Name,
		GameDate:   at,
		Round:      round,
		GameNumber: gameNumber,
		T1Type:     t1Type,
		T1No:       t1No,
		T1ID:       p.resolveTeam(div, t1Type, t1No),
		T2Type:     t2Type,
		T2No:       t2No,
		T2ID:       p.resolveTeam(div, t2Type, t2No),
	}
}

// resolveTeam maps a seeded slot to the active team holding that DivRank.
// Bracket slots and unknown ranks stay unresolved.
func (p *planner) resolveTeam(div divisionContext, slot SlotType, no int) *uuid.UUID {
	if !slot.IsTeam() {
		return nil
	}
	team, ok := p.ranks[div.divisionID][no]
	if !ok {
		return nil
	}
	id := team.ID
	return &id
}

func (p *planner) teamPlaying(team *uuid.UUID, at time.Time) bool {
	if team == nil {
		return false
	}
	_, busy := p.teamBusy[teamKey{team: *team, at: at.Unix()}]
	return busy
}

func (p *planner) markBusy(field uuid.UUID, at time.Time, teams ...*uuid.UUID) {
	p.fieldBusy[slotKey{field: field, at: at.Unix()}] = struct{}{}
	for _, t := range teams {
		if t != nil {
			p.teamBusy[teamKey{team: *t, at: at.Unix()}] = struct{}{}
		}
	}
}

// divisionPatterns returns the source patterns behind a match in replay
// order, without bracket games unless the request includes them.
func (p *planner) divisionPatterns(div divisionContext) []GamePlacementPattern {
	patterns := PatternsFor(p.in.Patterns, div.match.SourceAgegroupName, div.match.SourceDivisionName)
	if p.in.Request.IncludeBracketGames {
		return patterns
	}
	return slices.DeleteFunc(patterns, GamePlacementPattern.IsBracket)
}

// pairingsFor returns the fixtures for the division's active team count. A
// pool size with no stored pairings gets a generated single round-robin.
func (p *planner) pairingsFor(div divisionContext) []Pairing {
	size := p.activeCount[div.divisionID]
	pairings, ok := p.pairingsBySize[size]
	if !ok {
		pairings = GenerateRoundRobin(size)
	}
	pairings = slices.Clone(pairings)
	if p.in.Request.IncludeBracketGames {
		return pairings
	}
	return slices.DeleteFunc(pairings, Pairing.IsBracket)
}
