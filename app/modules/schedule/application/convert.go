package scheduleservice

import (
	"time"

	scheduledomain "github.com/Black-And-White-Club/league-scheduler/app/modules/schedule/domain"
	scheduledb "github.com/Black-And-White-Club/league-scheduler/app/modules/schedule/infrastructure/repositories"
	"github.com/google/uuid"
)

// toSourceGames reads each game's wall clock in loc.
func toSourceGames(rows []scheduledb.GameRow, loc *time.Location) []scheduledomain.SourceGame {
	games := make([]scheduledomain.SourceGame, len(rows))
	for i, r := range rows {
		games[i] = scheduledomain.SourceGame{
			ID:           r.ID,
			AgegroupName: r.AgegroupName,
			DivisionName: r.DivisionName,
			FieldID:      r.FieldID,
			FieldName:    r.FieldName,
			GameDate:     r.GameDate.In(loc),
			Round:        r.Round,
			GameNumber:   r.GameNumber,
			T1Type:       scheduledomain.SlotType(r.T1Type),
			T1No:         r.T1No,
			T2Type:       scheduledomain.SlotType(r.T2Type),
			T2No:         r.T2No,
		}
	}
	return games
}

func toSourceSummaries(rows []scheduledb.DivisionSummaryRow) []scheduledomain.SourceDivisionSummary {
	out := make([]scheduledomain.SourceDivisionSummary, len(rows))
	for i, r := range rows {
		out[i] = scheduledomain.SourceDivisionSummary{
			AgegroupName: r.AgegroupName,
			DivisionName: r.DivisionName,
			TeamCount:    r.TeamCount,
			GameCount:    r.GameCount,
		}
	}
	return out
}

func toCurrentSummaries(rows []scheduledb.DivisionRow) []scheduledomain.CurrentDivisionSummary {
	out := make([]scheduledomain.CurrentDivisionSummary, len(rows))
	for i, r := range rows {
		out[i] = scheduledomain.CurrentDivisionSummary{
			AgegroupID:   r.AgegroupID,
			AgegroupName: r.AgegroupName,
			DivisionID:   r.ID,
			DivisionName: r.Name,
			TeamCount:    r.TeamCount,
		}
	}
	return out
}

func toFields(rows []scheduledb.Field) []scheduledomain.Field {
	out := make([]scheduledomain.Field, len(rows))
	for i, r := range rows {
		out[i] = scheduledomain.Field{ID: r.ID, Name: r.Name}
	}
	return out
}

func fieldNames(rows []scheduledb.Field) []string {
	names := make([]string, len(rows))
	for i, r := range rows {
		names[i] = r.Name
	}
	return names
}

func toTeams(rows []scheduledb.TeamRow) []scheduledomain.Team {
	out := make([]scheduledomain.Team, len(rows))
	for i, r := range rows {
		out[i] = scheduledomain.Team{
			ID:         r.ID,
			DivisionID: r.DivisionID,
			Name:       r.Name,
			DivRank:    r.DivRank,
			Active:     r.Active,
		}
	}
	return out
}

func toPairings(rows []scheduledb.Pairing) []scheduledomain.Pairing {
	out := make([]scheduledomain.Pairing, len(rows))
	for i, r := range rows {
		out[i] = scheduledomain.Pairing{
			TeamCount:  r.TeamCount,
			Round:      r.Round,
			GameNumber: r.GameNumber,
			T1Type:     scheduledomain.SlotType(r.T1Type),
			T1No:       r.T1No,
			T2Type:     scheduledomain.SlotType(r.T2Type),
			T2No:       r.T2No,
		}
	}
	return out
}

func toTimeslots(rows []scheduledb.TimeslotRow, loc *time.Location) []scheduledomain.Timeslot {
	out := make([]scheduledomain.Timeslot, len(rows))
	for i, r := range rows {
		out[i] = scheduledomain.Timeslot{
			ID:         r.ID,
			AgegroupID: r.AgegroupID,
			FieldID:    r.FieldID,
			FieldName:  r.FieldName,
			StartsAt:   r.StartsAt.In(loc),
		}
	}
	return out
}

func toExistingGames(rows []scheduledb.GameRow, loc *time.Location) []scheduledomain.ExistingGame {
	out := make([]scheduledomain.ExistingGame, len(rows))
	for i, r := range rows {
		out[i] = scheduledomain.ExistingGame{
			DivisionID: r.DivisionID,
			FieldID:    r.FieldID,
			GameDate:   r.GameDate.In(loc),
			T1ID:       r.T1ID,
			T2ID:       r.T2ID,
		}
	}
	return out
}

// toQaSnapshot reads game times in loc so per-day checks group by the
// season's calendar days.
func toQaSnapshot(seasonID uuid.UUID, loc *time.Location, games []scheduledb.GameRow, teams []scheduledb.TeamRow, divisions []scheduledb.DivisionRow) scheduledomain.QaSnapshot {
	snap := scheduledomain.QaSnapshot{
		SeasonID:  seasonID,
		Games:     make([]scheduledomain.QaGame, len(games)),
		Teams:     make([]scheduledomain.QaTeam, len(teams)),
		Divisions: make([]scheduledomain.QaDivision, len(divisions)),
	}
	for i, g := range games {
		snap.Games[i] = scheduledomain.QaGame{
			ID:           g.ID,
			AgegroupID:   g.AgegroupID,
			AgegroupName: g.AgegroupName,
			DivisionID:   g.DivisionID,
			DivisionName: g.DivisionName,
			FieldID:      g.FieldID,
			FieldName:    g.FieldName,
			GameDate:     g.GameDate.In(loc),
			Round:        g.Round,
			GameNumber:   g.GameNumber,
			T1Type:       scheduledomain.SlotType(g.T1Type),
			T1No:         g.T1No,
			T1ID:         g.T1ID,
			T2Type:       scheduledomain.SlotType(g.T2Type),
			T2No:         g.T2No,
			T2ID:         g.T2ID,
		}
	}
	for i, t := range teams {
		snap.Teams[i] = scheduledomain.QaTeam{
			ID:           t.ID,
			DivisionID:   t.DivisionID,
			AgegroupName: t.AgegroupName,
			DivisionName: t.DivisionName,
			Name:         t.Name,
			DivRank:      t.DivRank,
			Active:       t.Active,
		}
	}
	for i, d := range divisions {
		snap.Divisions[i] = scheduledomain.QaDivision{
			ID:            d.ID,
			AgegroupName:  d.AgegroupName,
			Name:          d.Name,
			PoolFormat:    scheduledomain.PoolFormat(d.PoolFormat),
			GamesPerPair:  d.GamesPerPair,
			MinGapMinutes: d.MinGapMinutes,
		}
	}
	return snap
}

// toGameModels maps planned games onto rows, taking each division's league.
func toGameModels(seasonID uuid.UUID, planned []scheduledomain.ScheduledGame, leagueByDivision map[uuid.UUID]uuid.UUID, fallbackLeague uuid.UUID) []*scheduledb.Game {
	out := make([]*scheduledb.Game, len(planned))
	for i, g := range planned {
		league, ok := leagueByDivision[g.DivisionID]
		if !ok {
			league = fallbackLeague
		}
		out[i] = &scheduledb.Game{
			ID:         uuid.New(),
			SeasonID:   seasonID,
			LeagueID:   league,
			AgegroupID: g.AgegroupID,
			DivisionID: g.DivisionID,
			FieldID:    g.FieldID,
			GameDate:   g.GameDate,
			Round:      g.Round,
			GameNumber: g.GameNumber,
			T1Type:     string(g.T1Type),
			T1No:       g.T1No,
			T1ID:       g.T1ID,
			T2Type:     string(g.T2Type),
			T2No:       g.T2No,
			T2ID:       g.T2ID,
		}
	}
	return out
}
