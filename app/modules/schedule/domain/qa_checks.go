package scheduledomain

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

type teamDivisionKey struct {
	team     uuid.UUID
	division uuid.UUID
}

type teamDayKey struct {
	team uuid.UUID
	day  int64
}

type fieldDayKey struct {
	field uuid.UUID
	day   int64
}

type pairKey struct {
	a uuid.UUID
	b uuid.UUID
}

func newPairKey(x, y uuid.UUID) pairKey {
	if strings.Compare(x.String(), y.String()) > 0 {
		x, y = y, x
	}
	return pairKey{a: x, b: y}
}

func checkUnscheduledTeams(idx *qaIndex, r *AutoBuildQaResult) {
	appearances := make(map[teamDivisionKey]int)
	for _, g := range idx.games {
		for _, id := range g.teamIDs() {
			appearances[teamDivisionKey{team: id, division: g.DivisionID}]++
		}
	}
	for _, t := range idx.roster {
		if !t.Active {
			continue
		}
		if appearances[teamDivisionKey{team: t.ID, division: t.DivisionID}] > 0 {
			continue
		}
		r.UnscheduledTeams = append(r.UnscheduledTeams, UnscheduledTeam{
			TeamID:       t.ID,
			TeamName:     t.Name,
			AgegroupName: t.AgegroupName,
			DivisionName: t.DivisionName,
		})
	}
}

func checkFieldDoubleBookings(idx *qaIndex, r *AutoBuildQaResult) {
	groups := make(map[slotKey][]QaGame)
	var order []slotKey
	for _, g := range idx.games {
		key := slotKey{field: g.FieldID, at: g.GameDate.Unix()}
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], g)
	}
	for _, key := range order {
		games := groups[key]
		if len(games) < 2 {
			continue
		}
		r.FieldDoubleBookings = append(r.FieldDoubleBookings, FieldDoubleBooking{
			FieldID:   games[0].FieldID,
			FieldName: games[0].FieldName,
			GameDate:  games[0].GameDate,
			Count:     len(games),
			GameIDs:   gameIDs(games),
		})
	}
}

func checkTeamDoubleBookings(idx *qaIndex, r *AutoBuildQaResult) {
	groups := make(map[teamKey][]QaGame)
	var order []teamKey
	for _, g := range idx.games {
		for _, id := range g.teamIDs() {
			key := teamKey{team: id, at: g.GameDate.Unix()}
			if _, ok := groups[key]; !ok {
				order = append(order, key)
			}
			groups[key] = append(groups[key], g)
		}
	}
	for _, key := range order {
		games := groups[key]
		if len(games) < 2 {
			continue
		}
		team, known := idx.teams[key.team]
		entry := TeamDoubleBooking{
			TeamID:       key.team,
			TeamName:     team.Name,
			AgegroupName: team.AgegroupName,
			DivisionName: team.DivisionName,
			GameDate:     games[0].GameDate,
			Count:        len(games),
			GameIDs:      gameIDs(games),
		}
		if !known {
			entry.AgegroupName = games[0].AgegroupName
			entry.DivisionName = games[0].DivisionName
		}
		r.TeamDoubleBookings = append(r.TeamDoubleBookings, entry)
	}
}

func checkRankMismatches(idx *qaIndex, r *AutoBuildQaResult) {
	for _, g := range idx.games {
		for _, s := range g.slots() {
			if !s.slot.IsTeam() || s.teamID == nil {
				continue
			}
			team, ok := idx.teams[*s.teamID]
			if !ok || team.DivRank == s.no {
				continue
			}
			r.RankMismatches = append(r.RankMismatches, RankMismatch{
				GameID:       g.ID,
				AgegroupName: g.AgegroupName,
				DivisionName: g.DivisionName,
				GameDate:     g.GameDate,
				Slot:         s.name,
				RecordedNo:   s.no,
				TeamID:       team.ID,
				TeamName:     team.Name,
				CurrentRank:  team.DivRank,
			})
		}
	}
}

func checkBackToBack(idx *qaIndex, r *AutoBuildQaResult) {
	byTeamDay := make(map[teamDayKey][]QaGame)
	for _, g := range idx.games {
		for _, id := range g.teamIDs() {
			key := teamDayKey{team: id, day: dateOf(g.GameDate).Unix()}
			byTeamDay[key] = append(byTeamDay[key], g)
		}
	}

	for _, key := range sortedTeamDayKeys(idx, byTeamDay) {
		games := byTeamDay[key]
		team := idx.teams[key.team]
		for i := 1; i < len(games); i++ {
			prev, cur := games[i-1], games[i]
			gap := idx.minGap(cur.DivisionID)
			elapsed := cur.GameDate.Sub(prev.GameDate)
			if elapsed <= 0 || elapsed > gap {
				continue
			}
			r.BackToBackGames = append(r.BackToBackGames, BackToBackGame{
				TeamID:               key.team,
				TeamName:             team.Name,
				AgegroupName:         cur.AgegroupName,
				DivisionName:         cur.DivisionName,
				GameID:               cur.ID,
				GameDate:             cur.GameDate,
				FieldName:            cur.FieldName,
				MinutesSincePrevious: int(elapsed / time.Minute),
				MinGapMinutes:        int(gap / time.Minute),
			})
		}
	}
}

func checkRepeatedMatchups(idx *qaIndex, r *AutoBuildQaResult) {
	counts := make(map[pairKey]int)
	first := make(map[pairKey]QaGame)
	var order []pairKey
	for _, g := range idx.games {
		if g.T1ID == nil || g.T2ID == nil || *g.T1ID == *g.T2ID {
			continue
		}
		key := newPairKey(*g.T1ID, *g.T2ID)
		if _, ok := counts[key]; !ok {
			order = append(order, key)
			first[key] = g
		}
		counts[key]++
	}

	for _, key := range order {
		if counts[key] < 2 {
			continue
		}
		g := first[key]
		r.RepeatedMatchups = append(r.RepeatedMatchups, RepeatedMatchup{
			AgegroupName: g.AgegroupName,
			DivisionName: g.DivisionName,
			TeamAID:      key.a,
			TeamAName:    idx.teamName(key.a),
			TeamBID:      key.b,
			TeamBName:    idx.teamName(key.b),
			GameCount:    counts[key],
		})
	}
	slices.SortStableFunc(r.RepeatedMatchups, func(a, b RepeatedMatchup) int {
		return cmp.Or(
			cmp.Compare(a.AgegroupName, b.AgegroupName),
			cmp.Compare(a.DivisionName, b.DivisionName),
			cmp.Compare(a.TeamAName, b.TeamAName),
			cmp.Compare(a.TeamBName, b.TeamBName),
		)
	})
}

func checkInactiveTeams(idx *qaIndex, r *AutoBuildQaResult) {
	for _, g := range idx.games {
		for _, s := range g.slots() {
			if s.teamID == nil {
				continue
			}
			team, ok := idx.teams[*s.teamID]
			if !ok || team.Active {
				continue
			}
			r.InactiveTeamsInGames = append(r.InactiveTeamsInGames, InactiveTeamInGame{
				GameID:       g.ID,
				GameDate:     g.GameDate,
				FieldName:    g.FieldName,
				Slot:         s.name,
				TeamID:       team.ID,
				TeamName:     team.Name,
				AgegroupName: team.AgegroupName,
				DivisionName: team.DivisionName,
			})
		}
	}
}

func countGamesPerDate(idx *qaIndex, r *AutoBuildQaResult) {
	counts := make(map[int64]int)
	var days []int64
	for _, g := range idx.games {
		day := dateOf(g.GameDate).Unix()
		if _, ok := counts[day]; !ok {
			days = append(days, day)
		}
		counts[day]++
	}
	for _, day := range days {
		r.GamesPerDate = append(r.GamesPerDate, DateCount{
			Date:      time.Unix(day, 0).UTC(),
			GameCount: counts[day],
		})
	}
}

func countGamesPerTeam(idx *qaIndex, r *AutoBuildQaResult) {
	counts := make(map[uuid.UUID]int)
	for _, g := range idx.games {
		for _, id := range g.teamIDs() {
			counts[id]++
		}
	}
	for _, t := range idx.roster {
		if !t.Active && counts[t.ID] == 0 {
			continue
		}
		r.GamesPerTeam = append(r.GamesPerTeam, TeamGameCount{
			TeamID:       t.ID,
			TeamName:     t.Name,
			AgegroupName: t.AgegroupName,
			DivisionName: t.DivisionName,
			GameCount:    counts[t.ID],
		})
	}
}

func countGamesPerTeamPerDay(idx *qaIndex, r *AutoBuildQaResult) {
	counts := make(map[teamDayKey]int)
	for _, g := range idx.games {
		for _, id := range g.teamIDs() {
			counts[teamDayKey{team: id, day: dateOf(g.GameDate).Unix()}]++
		}
	}
	for _, key := range sortedTeamDayKeys(idx, counts) {
		r.GamesPerTeamPerDay = append(r.GamesPerTeamPerDay, TeamDayCount{
			TeamID:    key.team,
			TeamName:  idx.teamName(key.team),
			Date:      time.Unix(key.day, 0).UTC(),
			GameCount: counts[key],
		})
	}
}

func countGamesPerFieldPerDay(idx *qaIndex, r *AutoBuildQaResult) {
	counts := make(map[fieldDayKey]int)
	names := make(map[uuid.UUID]string)
	for _, g := range idx.games {
		counts[fieldDayKey{field: g.FieldID, day: dateOf(g.GameDate).Unix()}]++
		names[g.FieldID] = g.FieldName
	}

	keys := make([]fieldDayKey, 0, len(counts))
	for key := range counts {
		keys = append(keys, key)
	}
	slices.SortFunc(keys, func(a, b fieldDayKey) int {
		return cmp.Or(
			cmp.Compare(strings.ToLower(names[a.field]), strings.ToLower(names[b.field])),
			cmp.Compare(a.field.String(), b.field.String()),
			cmp.Compare(a.day, b.day),
		)
	})
	for _, key := range keys {
		r.GamesPerFieldPerDay = append(r.GamesPerFieldPerDay, FieldDayCount{
			FieldID:   key.field,
			FieldName: names[key.field],
			Date:      time.Unix(key.day, 0).UTC(),
			GameCount: counts[key],
		})
	}
}

// computeGameSpreads reports, per team and day with at least two games, the
// minutes between the first and last start.
func computeGameSpreads(idx *qaIndex, r *AutoBuildQaResult) {
	byTeamDay := make(map[teamDayKey][]QaGame)
	for _, g := range idx.games {
		for _, id := range g.teamIDs() {
			key := teamDayKey{team: id, day: dateOf(g.GameDate).Unix()}
			byTeamDay[key] = append(byTeamDay[key], g)
		}
	}
	for _, key := range sortedTeamDayKeys(idx, byTeamDay) {
		games := byTeamDay[key]
		if len(games) < 2 {
			continue
		}
		team := idx.teams[key.team]
		firstGame, lastGame := games[0].GameDate, games[len(games)-1].GameDate
		r.GameSpreads = append(r.GameSpreads, GameSpread{
			TeamID:        key.team,
			TeamName:      team.Name,
			AgegroupName:  games[0].AgegroupName,
			DivisionName:  games[0].DivisionName,
			Date:          time.Unix(key.day, 0).UTC(),
			GameCount:     len(games),
			FirstGame:     firstGame,
			LastGame:      lastGame,
			SpreadMinutes: int(lastGame.Sub(firstGame) / time.Minute),
		})
	}
}

func summarizeRoundRobins(idx *qaIndex, r *AutoBuildQaResult) {
	poolSize := make(map[uuid.UUID]int)
	for _, t := range idx.roster {
		if t.Active {
			poolSize[t.DivisionID]++
		}
	}
	actual := make(map[uuid.UUID]int)
	for _, g := range idx.games {
		if g.T1Type.IsTeam() && g.T2Type.IsTeam() {
			actual[g.DivisionID]++
		}
	}

	for _, d := range idx.divOrder {
		if d.PoolFormat != "" && d.PoolFormat != PoolRoundRobin {
			continue
		}
		perPair := max(d.GamesPerPair, 1)
		n := poolSize[d.ID]
		r.RoundRobinSummaries = append(r.RoundRobinSummaries, RoundRobinSummary{
			DivisionID:    d.ID,
			AgegroupName:  d.AgegroupName,
			DivisionName:  d.Name,
			PoolSize:      n,
			GamesPerPair:  perPair,
			ExpectedGames: ExpectedRoundRobinGames(n, perPair),
			ActualGames:   actual[d.ID],
		})
	}
}

// ExpectedRoundRobinGames is n(n-1)/2 games per meeting.
func ExpectedRoundRobinGames(poolSize, gamesPerPair int) int {
	if poolSize < 2 {
		return 0
	}
	return poolSize * (poolSize - 1) / 2 * gamesPerPair
}

func listBracketGames(idx *qaIndex, r *AutoBuildQaResult) {
	for _, g := range idx.games {
		if g.T1Type.IsTeam() && g.T2Type.IsTeam() {
			continue
		}
		r.BracketGames = append(r.BracketGames, BracketGame{
			GameID:       g.ID,
			AgegroupName: g.AgegroupName,
			DivisionName: g.DivisionName,
			FieldName:    g.FieldName,
			GameDate:     g.GameDate,
			Round:        g.Round,
			GameNumber:   g.GameNumber,
			T1Type:       g.T1Type,
			T1No:         g.T1No,
			T2Type:       g.T2Type,
			T2No:         g.T2No,
		})
	}
}

// sortedTeamDayKeys orders keys by roster position, then day.
func sortedTeamDayKeys[V any](idx *qaIndex, m map[teamDayKey]V) []teamDayKey {
	position := make(map[uuid.UUID]int, len(idx.roster))
	for i, t := range idx.roster {
		position[t.ID] = i
	}
	rank := func(id uuid.UUID) int {
		if p, ok := position[id]; ok {
			return p
		}
		return len(idx.roster)
	}

	keys := make([]teamDayKey, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	slices.SortFunc(keys, func(a, b teamDayKey) int {
		return cmp.Or(
			cmp.Compare(rank(a.team), rank(b.team)),
			cmp.Compare(a.team.String(), b.team.String()),
			cmp.Compare(a.day, b.day),
		)
	})
	return keys
}

func gameIDs(games []QaGame) []uuid.UUID {
	ids := make([]uuid.UUID, len(games))
	for i, g := range games {
		ids[i] = g.ID
	}
	return ids
}
