package scheduledomain

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type qaFixture struct {
	division QaDivision
	teams    []QaTeam
	fieldA   uuid.UUID
	fieldB   uuid.UUID
	day      time.Time
}

func newQaFixture(teamCount int) qaFixture {
	f := qaFixture{
		division: QaDivision{
			ID:            uuid.New(),
			AgegroupName:  "U13",
			Name:          "Gold",
			PoolFormat:    PoolRoundRobin,
			GamesPerPair:  1,
			MinGapMinutes: 90,
		},
		fieldA: uuid.New(),
		fieldB: uuid.New(),
		day:    time.Date(2025, 9, 6, 0, 0, 0, 0, time.UTC),
	}
	for i := 1; i <= teamCount; i++ {
		f.teams = append(f.teams, QaTeam{
			ID:           uuid.New(),
			DivisionID:   f.division.ID,
			AgegroupName: "U13",
			DivisionName: "Gold",
			Name:         "Team " + string(rune('A'+i-1)),
			DivRank:      i,
			Active:       true,
		})
	}
	return f
}

// game pairs ranks a and b at the given hour on field.
func (f qaFixture) game(field uuid.UUID, hour, minute, a, b int) QaGame {
	name := "Field A"
	if field == f.fieldB {
		name = "Field B"
	}
	return QaGame{
		ID:           uuid.New(),
		AgegroupID:   uuid.Nil,
		AgegroupName: "U13",
		DivisionID:   f.division.ID,
		DivisionName: "Gold",
		FieldID:      field,
		FieldName:    name,
		GameDate:     f.day.Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute),
		T1Type:       SlotTeam,
		T1No:         a,
		T1ID:         ptrID(f.teams[a-1].ID),
		T2Type:       SlotTeam,
		T2No:         b,
		T2ID:         ptrID(f.teams[b-1].ID),
	}
}

func (f qaFixture) snapshot(games ...QaGame) QaSnapshot {
	return QaSnapshot{
		SeasonID:  uuid.New(),
		Games:     games,
		Teams:     f.teams,
		Divisions: []QaDivision{f.division},
	}
}

func validate(t *testing.T, snap QaSnapshot) AutoBuildQaResult {
	t.Helper()
	result, err := ValidateSchedule(context.Background(), snap, QaOptions{DefaultMinGap: time.Hour})
	require.NoError(t, err)
	return result
}

func TestValidateSchedule_GroupsByLocalDay(t *testing.T) {
	f := newQaFixture(4)
	loc := chicago(t)
	f.day = time.Date(2025, 9, 6, 0, 0, 0, 0, loc)

	// 17:00 and 19:30 CDT straddle UTC midnight.
	result := validate(t, f.snapshot(
		f.game(f.fieldA, 17, 0, 1, 2),
		f.game(f.fieldA, 19, 30, 1, 3),
	))

	require.Len(t, result.GamesPerDate, 1)
	assert.Equal(t, time.Date(2025, 9, 6, 0, 0, 0, 0, time.UTC), result.GamesPerDate[0].Date)
	assert.Equal(t, 2, result.GamesPerDate[0].GameCount)

	require.Len(t, result.GamesPerFieldPerDay, 1)
	assert.Equal(t, 2, result.GamesPerFieldPerDay[0].GameCount)

	// Team 1 plays twice on the same local day, 150 minutes apart.
	require.Len(t, result.GameSpreads, 1)
	assert.Equal(t, 150, result.GameSpreads[0].SpreadMinutes)
	assert.Equal(t, f.teams[0].ID, result.GameSpreads[0].TeamID)
}

func TestValidateSchedule_CleanSchedule(t *testing.T) {
	f := newQaFixture(4)
	result := validate(t, f.snapshot(
		f.game(f.fieldA, 9, 0, 1, 4),
		f.game(f.fieldB, 9, 0, 2, 3),
		f.game(f.fieldA, 12, 0, 1, 3),
		f.game(f.fieldB, 12, 0, 2, 4),
		f.game(f.fieldA, 15, 0, 1, 2),
		f.game(f.fieldB, 15, 0, 3, 4),
	))

	assert.False(t, result.HasCriticalIssues())
	assert.Equal(t, 0, result.CriticalCount())
	assert.Equal(t, 0, result.WarningCount())
	assert.Equal(t, 6, result.TotalGames)

	require.Len(t, result.RoundRobinSummaries, 1)
	rr := result.RoundRobinSummaries[0]
	assert.Equal(t, 4, rr.PoolSize)
	assert.Equal(t, 6, rr.ExpectedGames)
	assert.Equal(t, 6, rr.ActualGames)

	require.Len(t, result.GamesPerDate, 1)
	assert.Equal(t, f.day, result.GamesPerDate[0].Date)
	assert.Equal(t, 6, result.GamesPerDate[0].GameCount)

	require.Len(t, result.GamesPerTeam, 4)
	for _, c := range result.GamesPerTeam {
		assert.Equal(t, 3, c.GameCount)
	}
	assert.Equal(t, "Team A", result.GamesPerTeam[0].TeamName)

	require.Len(t, result.GamesPerFieldPerDay, 2)
	assert.Equal(t, "Field A", result.GamesPerFieldPerDay[0].FieldName)

	require.Len(t, result.GameSpreads, 4)
	assert.Equal(t, 360, result.GameSpreads[0].SpreadMinutes)
	assert.Empty(t, result.BracketGames)
}

func TestValidateSchedule_EmptySeason(t *testing.T) {
	f := newQaFixture(2)
	result := validate(t, f.snapshot())

	assert.Len(t, result.UnscheduledTeams, 2)
	assert.True(t, result.HasCriticalIssues())
	assert.NotNil(t, result.BackToBackGames)
	assert.NotNil(t, result.BracketGames)
	assert.Empty(t, result.GamesPerDate)
}

func TestValidateSchedule_FieldDoubleBooking(t *testing.T) {
	f := newQaFixture(4)
	g1 := f.game(f.fieldA, 9, 0, 1, 2)
	g2 := f.game(f.fieldA, 9, 0, 3, 4)
	result := validate(t, f.snapshot(g1, g2))

	require.Len(t, result.FieldDoubleBookings, 1)
	booking := result.FieldDoubleBookings[0]
	assert.Equal(t, 2, booking.Count)
	assert.Equal(t, f.fieldA, booking.FieldID)
	assert.ElementsMatch(t, []uuid.UUID{g1.ID, g2.ID}, booking.GameIDs)
	assert.True(t, result.HasCriticalIssues())
	assert.Empty(t, result.TeamDoubleBookings)
}

func TestValidateSchedule_TeamDoubleBooking(t *testing.T) {
	f := newQaFixture(3)
	result := validate(t, f.snapshot(
		f.game(f.fieldA, 9, 0, 1, 2),
		f.game(f.fieldB, 9, 0, 1, 3),
	))

	require.Len(t, result.TeamDoubleBookings, 1)
	assert.Equal(t, f.teams[0].ID, result.TeamDoubleBookings[0].TeamID)
	assert.Equal(t, 2, result.TeamDoubleBookings[0].Count)
	assert.Empty(t, result.FieldDoubleBookings)
}

func TestValidateSchedule_UnscheduledTeams(t *testing.T) {
	f := newQaFixture(4)
	f.teams[3].Active = false
	result := validate(t, f.snapshot(f.game(f.fieldA, 9, 0, 1, 2)))

	require.Len(t, result.UnscheduledTeams, 1)
	assert.Equal(t, "Team C", result.UnscheduledTeams[0].TeamName)
}

func TestValidateSchedule_RankMismatch(t *testing.T) {
	f := newQaFixture(4)
	g := f.game(f.fieldA, 9, 0, 1, 2)
	g.T2No = 3 // slot says seed 3 but team 2 is resolved
	result := validate(t, f.snapshot(g))

	require.Len(t, result.RankMismatches, 1)
	m := result.RankMismatches[0]
	assert.Equal(t, "T2", m.Slot)
	assert.Equal(t, 3, m.RecordedNo)
	assert.Equal(t, 2, m.CurrentRank)
	assert.Equal(t, f.teams[1].ID, m.TeamID)
}

func TestValidateSchedule_BackToBack(t *testing.T) {
	tests := []struct {
		name      string
		minGap    int
		secondMin int
		want      int
	}{
		{name: "inside division gap", minGap: 90, secondMin: 60, want: 1},
		{name: "exactly the gap", minGap: 90, secondMin: 90, want: 1},
		{name: "beyond the gap", minGap: 90, secondMin: 120, want: 0},
		{name: "falls back to default gap", minGap: 0, secondMin: 45, want: 1},
		{name: "beyond default gap", minGap: 0, secondMin: 75, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newQaFixture(3)
			f.division.MinGapMinutes = tt.minGap
			second := f.game(f.fieldB, 9, 0, 1, 3)
			second.GameDate = f.day.Add(9*time.Hour + time.Duration(tt.secondMin)*time.Minute)
			result := validate(t, f.snapshot(f.game(f.fieldA, 9, 0, 1, 2), second))

			require.Len(t, result.BackToBackGames, tt.want)
			if tt.want == 0 {
				return
			}
			b2b := result.BackToBackGames[0]
			assert.Equal(t, f.teams[0].ID, b2b.TeamID)
			assert.Equal(t, tt.secondMin, b2b.MinutesSincePrevious)
			assert.Equal(t, "Field B", b2b.FieldName)
			assert.Equal(t, second.ID, b2b.GameID)
		})
	}
}

func TestValidateSchedule_RepeatedMatchup(t *testing.T) {
	f := newQaFixture(2)
	reversed := f.game(f.fieldA, 15, 0, 2, 1)
	result := validate(t, f.snapshot(
		f.game(f.fieldA, 9, 0, 1, 2),
		f.game(f.fieldA, 12, 0, 1, 2),
		reversed,
	))

	require.Len(t, result.RepeatedMatchups, 1)
	rm := result.RepeatedMatchups[0]
	assert.Equal(t, 3, rm.GameCount)
	assert.ElementsMatch(t, []uuid.UUID{f.teams[0].ID, f.teams[1].ID}, []uuid.UUID{rm.TeamAID, rm.TeamBID})
	assert.Equal(t, 1, result.WarningCount())
	assert.False(t, result.HasCriticalIssues())

	require.Len(t, result.RoundRobinSummaries, 1)
	assert.Equal(t, 1, result.RoundRobinSummaries[0].ExpectedGames)
	assert.Equal(t, 3, result.RoundRobinSummaries[0].ActualGames)
}

func TestValidateSchedule_InactiveTeamInGame(t *testing.T) {
	f := newQaFixture(2)
	f.teams[1].Active = false
	result := validate(t, f.snapshot(f.game(f.fieldA, 9, 0, 1, 2)))

	require.Len(t, result.InactiveTeamsInGames, 1)
	assert.Equal(t, "T2", result.InactiveTeamsInGames[0].Slot)
	assert.Equal(t, "Team B", result.InactiveTeamsInGames[0].TeamName)
	assert.Empty(t, result.UnscheduledTeams)
}

func TestValidateSchedule_BracketGames(t *testing.T) {
	f := newQaFixture(4)
	f.division.PoolFormat = PoolBracket
	final := QaGame{
		ID:           uuid.New(),
		AgegroupName: "U13",
		DivisionID:   f.division.ID,
		DivisionName: "Gold",
		FieldID:      f.fieldA,
		FieldName:    "Field A",
		GameDate:     f.day.Add(16 * time.Hour),
		Round:        4,
		GameNumber:   7,
		T1Type:       "W",
		T1No:         5,
		T2Type:       "W",
		T2No:         6,
	}
	result := validate(t, f.snapshot(f.game(f.fieldA, 9, 0, 1, 2), f.game(f.fieldB, 9, 0, 3, 4), final))

	require.Len(t, result.BracketGames, 1)
	assert.Equal(t, final.ID, result.BracketGames[0].GameID)
	assert.Equal(t, SlotType("W"), result.BracketGames[0].T1Type)
	assert.Empty(t, result.RoundRobinSummaries)
	assert.Empty(t, result.RankMismatches)
}

func TestValidateSchedule_Cancelled(t *testing.T) {
	f := newQaFixture(2)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ValidateSchedule(ctx, f.snapshot(), QaOptions{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestQaChecks_Severities(t *testing.T) {
	counts := map[Severity]int{}
	for _, c := range QaChecks() {
		counts[c.Severity]++
	}
	assert.Equal(t, 4, counts[SeverityCritical])
	assert.Equal(t, 3, counts[SeverityWarning])
	assert.Equal(t, 7, counts[SeverityInfo])
}

func TestExpectedRoundRobinGames(t *testing.T) {
	assert.Equal(t, 0, ExpectedRoundRobinGames(0, 1))
	assert.Equal(t, 0, ExpectedRoundRobinGames(1, 1))
	assert.Equal(t, 28, ExpectedRoundRobinGames(8, 1))
	assert.Equal(t, 30, ExpectedRoundRobinGames(6, 2))
}
