package testutils

import (
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"

	scheduledomain "github.com/Black-And-White-Club/league-scheduler/app/modules/schedule/domain"
	scheduledb "github.com/Black-And-White-Club/league-scheduler/app/modules/schedule/infrastructure/repositories"
)

// TestDataGenerator provides methods to create test data for integration tests
type TestDataGenerator struct {
	faker *gofakeit.Faker
	seed  int64
}

// NewTestDataGenerator creates a new test data generator with optional seed
func NewTestDataGenerator(seed ...int64) *TestDataGenerator {
	var s int64
	if len(seed) > 0 {
		s = seed[0]
	} else {
		s = time.Now().UnixNano()
	}
	return &TestDataGenerator{
		faker: gofakeit.New(uint64(s)),
		seed:  s,
	}
}

// Seed returns the seed, for reproducing a failing run.
func (g *TestDataGenerator) Seed() int64 { return g.seed }

// DivisionSpec describes one division to generate.
type DivisionSpec struct {
	Agegroup string
	Name     string
	Teams    int
}

// SeasonSpec describes one season to generate.
type SeasonSpec struct {
	TenantID  uuid.UUID
	Year      int
	StartDate *time.Time
	TimeZone  string
	Fields    []scheduledb.Field
	Divisions []DivisionSpec
}

// SeasonFixture is a generated season ready for InsertSeasonFixture.
type SeasonFixture struct {
	Season       scheduledb.Season
	League       scheduledb.League
	Agegroups    []scheduledb.Agegroup
	Divisions    []scheduledb.Division
	Teams        []scheduledb.Team
	SeasonFields []scheduledb.SeasonField
	Timeslots    []scheduledb.Timeslot
	Games        []scheduledb.Game
}

// GenerateFields creates tenant fields with distinct names.
func (g *TestDataGenerator) GenerateFields(tenantID uuid.UUID, count int) []scheduledb.Field {
	fields := make([]scheduledb.Field, count)
	for i := range fields {
		fields[i] = scheduledb.Field{
			ID:       uuid.New(),
			TenantID: tenantID,
			Name:     fmt.Sprintf("%s Park %d", g.faker.City(), i+1),
		}
	}
	return fields
}

// GenerateSeason builds a season, its league, agegroups, divisions and
// ranked active teams, and assigns the listed fields to it.
func (g *TestDataGenerator) GenerateSeason(spec SeasonSpec) *SeasonFixture {
	f := &SeasonFixture{
		Season: scheduledb.Season{
			ID:        uuid.New(),
			TenantID:  spec.TenantID,
			Name:      fmt.Sprintf("%d %s League", spec.Year, g.faker.Company()),
			Path:      fmt.Sprintf("/seasons/%d", spec.Year),
			Year:      spec.Year,
			StartDate: spec.StartDate,
			TimeZone:  spec.TimeZone,
		},
	}
	f.League = scheduledb.League{ID: uuid.New(), SeasonID: f.Season.ID, Name: g.faker.Company() + " Youth"}

	agegroups := make(map[string]uuid.UUID)
	for _, ds := range spec.Divisions {
		agID, ok := agegroups[ds.Agegroup]
		if !ok {
			agID = uuid.New()
			agegroups[ds.Agegroup] = agID
			f.Agegroups = append(f.Agegroups, scheduledb.Agegroup{
				ID:        agID,
				LeagueID:  f.League.ID,
				Name:      ds.Agegroup,
				SortOrder: len(f.Agegroups),
			})
		}

		div := scheduledb.Division{
			ID:           uuid.New(),
			AgegroupID:   agID,
			Name:         ds.Name,
			PoolFormat:   "round-robin",
			GamesPerPair: 1,
		}
		f.Divisions = append(f.Divisions, div)

		for rank := 1; rank <= ds.Teams; rank++ {
			f.Teams = append(f.Teams, scheduledb.Team{
				ID:         uuid.New(),
				DivisionID: div.ID,
				Name:       fmt.Sprintf("%s %s", g.faker.LastName(), ds.Name),
				DivRank:    rank,
				Active:     true,
			})
		}
	}

	for _, field := range spec.Fields {
		f.SeasonFields = append(f.SeasonFields, scheduledb.SeasonField{SeasonID: f.Season.ID, FieldID: field.ID})
	}
	return f
}

// ScheduleRoundRobin adds a single round-robin for the division, one round
// per week from firstDay. Games of a round start an hour apart on field.
func (g *TestDataGenerator) ScheduleRoundRobin(f *SeasonFixture, divisionIdx int, field scheduledb.Field, firstDay time.Time, kickoff time.Duration) []scheduledb.Game {
	div := f.Divisions[divisionIdx]
	teamsByRank := make(map[int]uuid.UUID)
	for _, t := range f.Teams {
		if t.DivisionID == div.ID {
			teamsByRank[t.DivRank] = t.ID
		}
	}

	slotInRound := make(map[int]int)
	var added []scheduledb.Game
	for _, p := range scheduledomain.GenerateRoundRobin(len(teamsByRank)) {
		if !p.T1Type.IsTeam() || !p.T2Type.IsTeam() {
			continue
		}
		t1, ok1 := teamsByRank[p.T1No]
		t2, ok2 := teamsByRank[p.T2No]
		if !ok1 || !ok2 {
			continue
		}
		day := firstDay.AddDate(0, 0, 7*(p.Round-1))
		at := day.Add(kickoff + time.Duration(slotInRound[p.Round])*time.Hour)
		slotInRound[p.Round]++

		game := scheduledb.Game{
			ID:         uuid.New(),
			SeasonID:   f.Season.ID,
			LeagueID:   f.League.ID,
			AgegroupID: div.AgegroupID,
			DivisionID: div.ID,
			FieldID:    field.ID,
			GameDate:   at,
			Round:      p.Round,
			GameNumber: p.GameNumber,
			T1Type:     string(p.T1Type),
			T1No:       p.T1No,
			T1ID:       &t1,
			T2Type:     string(p.T2Type),
			T2No:       p.T2No,
			T2ID:       &t2,
		}
		f.Games = append(f.Games, game)
		added = append(added, game)
	}
	return added
}

// AddWeeklyTimeslots opens hourly slots on every field for the given number
// of weeks, starting at firstDay plus kickoff.
func (g *TestDataGenerator) AddWeeklyTimeslots(f *SeasonFixture, fields []scheduledb.Field, firstDay time.Time, kickoff time.Duration, weeks, perDay int) {
	for w := 0; w < weeks; w++ {
		day := firstDay.AddDate(0, 0, 7*w)
		for _, field := range fields {
			for s := 0; s < perDay; s++ {
				f.Timeslots = append(f.Timeslots, scheduledb.Timeslot{
					ID:       uuid.New(),
					SeasonID: f.Season.ID,
					FieldID:  field.ID,
					StartsAt: day.Add(kickoff + time.Duration(s)*time.Hour),
				})
			}
		}
	}
}
