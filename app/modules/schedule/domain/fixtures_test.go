package scheduledomain

import (
	"fmt"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// chicago is a zone with DST and a negative offset, so local evenings fall on
// the next UTC day.
func chicago(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/Chicago")
	require.NoError(t, err)
	return loc
}

var sourceSaturdays = []time.Time{
	time.Date(2024, 9, 7, 0, 0, 0, 0, time.UTC),
	time.Date(2024, 9, 14, 0, 0, 0, 0, time.UTC),
	time.Date(2024, 9, 21, 0, 0, 0, 0, time.UTC),
	time.Date(2024, 9, 28, 0, 0, 0, 0, time.UTC),
}

// sourceRoundRobin lays out a full round-robin for teamCount seeds over four
// Saturdays: two rounds per day, odd rounds at 09:00 and even rounds at
// 11:00, game i of a round on "Field i".
func sourceRoundRobin(agegroup, division string, teamCount int) []SourceGame {
	var games []SourceGame
	byRound := make(map[int]int)
	for _, pr := range GenerateRoundRobin(teamCount) {
		day := sourceSaturdays[(pr.Round-1)/2]
		hour := 9
		if pr.Round%2 == 0 {
			hour = 11
		}
		byRound[pr.Round]++
		games = append(games, SourceGame{
			ID:           uuid.New(),
			AgegroupName: agegroup,
			DivisionName: division,
			FieldName:    fmt.Sprintf("Field %d", byRound[pr.Round]),
			GameDate:     day.Add(time.Duration(hour) * time.Hour),
			Round:        pr.Round,
			GameNumber:   pr.GameNumber,
			T1Type:       pr.T1Type,
			T1No:         pr.T1No,
			T2Type:       pr.T2Type,
			T2No:         pr.T2No,
		})
	}
	return games
}

func namedFields(names ...string) []Field {
	fields := make([]Field, len(names))
	for i, n := range names {
		fields[i] = Field{ID: uuid.New(), Name: n}
	}
	return fields
}

func rosterFor(divisionID uuid.UUID, count int) []Team {
	teams := make([]Team, count)
	for i := range teams {
		teams[i] = Team{
			ID:         uuid.New(),
			DivisionID: divisionID,
			Name:       fmt.Sprintf("Team %02d", i+1),
			DivRank:    i + 1,
			Active:     true,
		}
	}
	return teams
}

func ptrID(id uuid.UUID) *uuid.UUID { return &id }
