package schedule_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/Black-And-White-Club/league-scheduler/integration_tests/testutils"
)

// twoSeasons is a 2024 season with two played round-robins and a 2025
// season with the same divisions and fields but no games.
type twoSeasons struct {
	Source      *testutils.SeasonFixture
	Target      *testutils.SeasonFixture
	SourceGames int
	TargetStart time.Time
}

var (
	sourceFirstDay = time.Date(2024, 9, 7, 0, 0, 0, 0, time.UTC) // Saturday
	targetStart    = time.Date(2025, 9, 6, 0, 0, 0, 0, time.UTC) // Saturday
	kickoff        = 9 * time.Hour
)

func seedTwoSeasons(t *testing.T) twoSeasons {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, testutils.CleanScheduleTables(ctx, testEnv.DB))

	gen := testutils.NewTestDataGenerator()
	t.Logf("fixture seed %d", gen.Seed())

	tenant := uuid.New()
	fields := gen.GenerateFields(tenant, 2)
	require.NoError(t, testutils.InsertFields(ctx, testEnv.DB, fields))

	divisions := []testutils.DivisionSpec{
		{Agegroup: "U12", Name: "Gold", Teams: 4},
		{Agegroup: "U10", Name: "Silver", Teams: 4},
	}

	source := gen.GenerateSeason(testutils.SeasonSpec{TenantID: tenant, Year: 2024, Fields: fields, Divisions: divisions})
	n := len(gen.ScheduleRoundRobin(source, 0, fields[0], sourceFirstDay, kickoff))
	n += len(gen.ScheduleRoundRobin(source, 1, fields[1], sourceFirstDay, kickoff))
	require.NoError(t, testutils.InsertSeasonFixture(ctx, testEnv.DB, source))

	start := targetStart
	target := gen.GenerateSeason(testutils.SeasonSpec{TenantID: tenant, Year: 2025, StartDate: &start, Fields: fields, Divisions: divisions})
	gen.AddWeeklyTimeslots(target, fields, targetStart, kickoff, 4, 3)
	require.NoError(t, testutils.InsertSeasonFixture(ctx, testEnv.DB, target))

	return twoSeasons{Source: source, Target: target, SourceGames: n, TargetStart: targetStart}
}
