package scheduleservice

import (
	"context"
	"fmt"
	"time"

	scheduledomain "github.com/Black-And-White-Club/league-scheduler/app/modules/schedule/domain"
	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

const (
	summarySheet   = "Summary"
	reportTimeFmt  = "2006-01-02 15:04"
	reportDateFmt  = "2006-01-02"
	chartAnchorCol = 5
)

// qaSheet is one check's findings laid out as rows.
type qaSheet struct {
	title    string
	check    string
	severity scheduledomain.Severity
	header   []any
	rows     [][]any
}

// BuildQaWorkbook lays the QA result out as an xlsx workbook: a summary sheet
// with one row per check, one sheet per check with findings, and the
// games-per-date chart when chartPNG is non-empty.
func BuildQaWorkbook(qa *scheduledomain.AutoBuildQaResult, chartPNG []byte) ([]byte, error) {
	if qa == nil {
		return nil, fmt.Errorf("qa result is nil")
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, fmt.Errorf("failed to rename summary sheet: %w", err)
	}

	sheets := qaSheets(qa)
	severities := make(map[string]scheduledomain.Severity, len(sheets))
	for _, c := range scheduledomain.QaChecks() {
		severities[c.Name] = c.Severity
	}

	summary := [][]any{
		{"Season", qa.SeasonID.String()},
		{"Total games", qa.TotalGames},
		{"Critical findings", qa.CriticalCount()},
		{"Warnings", qa.WarningCount()},
		{},
		{"Check", "Severity", "Entries"},
	}
	for _, sh := range sheets {
		summary = append(summary, []any{sh.check, string(severities[sh.check]), len(sh.rows)})
	}
	if err := writeRows(f, summarySheet, summary); err != nil {
		return nil, err
	}

	for _, sh := range sheets {
		if len(sh.rows) == 0 {
			continue
		}
		if _, err := f.NewSheet(sh.title); err != nil {
			return nil, fmt.Errorf("failed to create sheet %q: %w", sh.title, err)
		}
		if err := writeRows(f, sh.title, append([][]any{sh.header}, sh.rows...)); err != nil {
			return nil, err
		}
	}

	if len(chartPNG) > 0 {
		cell, err := excelize.CoordinatesToCellName(chartAnchorCol, 1)
		if err != nil {
			return nil, err
		}
		if err := f.AddPictureFromBytes(summarySheet, cell, &excelize.Picture{
			Extension: ".png",
			File:      chartPNG,
			Format:    &excelize.GraphicOptions{AltText: "Games per date"},
		}); err != nil {
			return nil, fmt.Errorf("failed to embed chart: %w", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func qaSheets(qa *scheduledomain.AutoBuildQaResult) []qaSheet {
	var sheets []qaSheet
	add := func(title, check string, header []any, rows [][]any) {
		sheets = append(sheets, qaSheet{title: title, check: check, header: header, rows: rows})
	}

	add("Unscheduled Teams", "unscheduled-teams",
		[]any{"Agegroup", "Division", "Team"},
		mapRows(qa.UnscheduledTeams, func(u scheduledomain.UnscheduledTeam) []any {
			return []any{u.AgegroupName, u.DivisionName, u.TeamName}
		}))
	add("Field Double Bookings", "field-double-bookings",
		[]any{"Field", "Time", "Games"},
		mapRows(qa.FieldDoubleBookings, func(b scheduledomain.FieldDoubleBooking) []any {
			return []any{b.FieldName, fmtTime(b.GameDate), b.Count}
		}))
	add("Team Double Bookings", "team-double-bookings",
		[]any{"Agegroup", "Division", "Team", "Time", "Games"},
		mapRows(qa.TeamDoubleBookings, func(b scheduledomain.TeamDoubleBooking) []any {
			return []any{b.AgegroupName, b.DivisionName, b.TeamName, fmtTime(b.GameDate), b.Count}
		}))
	add("Rank Mismatches", "rank-mismatches",
		[]any{"Agegroup", "Division", "Time", "Slot", "Recorded", "Team", "Current rank"},
		mapRows(qa.RankMismatches, func(m scheduledomain.RankMismatch) []any {
			return []any{m.AgegroupName, m.DivisionName, fmtTime(m.GameDate), m.Slot, m.RecordedNo, m.TeamName, m.CurrentRank}
		}))
	add("Back To Back", "back-to-back-games",
		[]any{"Agegroup", "Division", "Team", "Time", "Field", "Minutes since previous", "Min gap"},
		mapRows(qa.BackToBackGames, func(b scheduledomain.BackToBackGame) []any {
			return []any{b.AgegroupName, b.DivisionName, b.TeamName, fmtTime(b.GameDate), b.FieldName, b.MinutesSincePrevious, b.MinGapMinutes}
		}))
	add("Repeated Matchups", "repeated-matchups",
		[]any{"Agegroup", "Division", "Team A", "Team B", "Games"},
		mapRows(qa.RepeatedMatchups, func(m scheduledomain.RepeatedMatchup) []any {
			return []any{m.AgegroupName, m.DivisionName, m.TeamAName, m.TeamBName, m.GameCount}
		}))
	add("Inactive Teams", "inactive-teams-in-games",
		[]any{"Agegroup", "Division", "Team", "Time", "Field", "Slot"},
		mapRows(qa.InactiveTeamsInGames, func(i scheduledomain.InactiveTeamInGame) []any {
			return []any{i.AgegroupName, i.DivisionName, i.TeamName, fmtTime(i.GameDate), i.FieldName, i.Slot}
		}))
	add("Games Per Date", "games-per-date",
		[]any{"Date", "Games"},
		mapRows(qa.GamesPerDate, func(d scheduledomain.DateCount) []any {
			return []any{d.Date.Format(reportDateFmt), d.GameCount}
		}))
	add("Games Per Team", "games-per-team",
		[]any{"Agegroup", "Division", "Team", "Games"},
		mapRows(qa.GamesPerTeam, func(c scheduledomain.TeamGameCount) []any {
			return []any{c.AgegroupName, c.DivisionName, c.TeamName, c.GameCount}
		}))
	add("Games Per Team Per Day", "games-per-team-per-day",
		[]any{"Team", "Date", "Games"},
		mapRows(qa.GamesPerTeamPerDay, func(c scheduledomain.TeamDayCount) []any {
			return []any{c.TeamName, c.Date.Format(reportDateFmt), c.GameCount}
		}))
	add("Games Per Field Per Day", "games-per-field-per-day",
		[]any{"Field", "Date", "Games"},
		mapRows(qa.GamesPerFieldPerDay, func(c scheduledomain.FieldDayCount) []any {
			return []any{c.FieldName, c.Date.Format(reportDateFmt), c.GameCount}
		}))
	add("Game Spreads", "game-spreads",
		[]any{"Agegroup", "Division", "Team", "Date", "Games", "First", "Last", "Spread minutes"},
		mapRows(qa.GameSpreads, func(s scheduledomain.GameSpread) []any {
			return []any{s.AgegroupName, s.DivisionName, s.TeamName, s.Date.Format(reportDateFmt), s.GameCount, fmtTime(s.FirstGame), fmtTime(s.LastGame), s.SpreadMinutes}
		}))
	add("Round Robin", "round-robin-summaries",
		[]any{"Agegroup", "Division", "Pool size", "Games per pair", "Expected", "Actual"},
		mapRows(qa.RoundRobinSummaries, func(s scheduledomain.RoundRobinSummary) []any {
			return []any{s.AgegroupName, s.DivisionName, s.PoolSize, s.GamesPerPair, s.ExpectedGames, s.ActualGames}
		}))
	add("Bracket Games", "bracket-games",
		[]any{"Agegroup", "Division", "Field", "Time", "Round", "Game", "Slot 1", "Slot 2"},
		mapRows(qa.BracketGames, func(b scheduledomain.BracketGame) []any {
			return []any{
				b.AgegroupName, b.DivisionName, b.FieldName, fmtTime(b.GameDate), b.Round, b.GameNumber,
				fmt.Sprintf("%s%d", b.T1Type, b.T1No), fmt.Sprintf("%s%d", b.T2Type, b.T2No),
			}
		}))

	return sheets
}

func mapRows[T any](items []T, fn func(T) []any) [][]any {
	rows := make([][]any, 0, len(items))
	for _, item := range items {
		rows = append(rows, fn(item))
	}
	return rows
}

func fmtTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(reportTimeFmt)
}

// ExportQaWorkbook validates the season and returns the findings as xlsx.
func (s *ScheduleService) ExportQaWorkbook(ctx context.Context, seasonID uuid.UUID) ([]byte, error) {
	qa, err := s.Validate(ctx, seasonID)
	if err != nil {
		return nil, err
	}
	png, err := GenerateGamesPerDateChart(qa.GamesPerDate, DefaultChartPalette)
	if err != nil {
		s.logger.WarnContext(ctx, "Games per date chart failed, exporting without it", "error", err)
		png = nil
	}
	return BuildQaWorkbook(qa, png)
}

// RenderGamesPerDateChart validates the season and renders its games-per-date chart.
func (s *ScheduleService) RenderGamesPerDateChart(ctx context.Context, seasonID uuid.UUID) ([]byte, error) {
	qa, err := s.Validate(ctx, seasonID)
	if err != nil {
		return nil, err
	}
	return GenerateGamesPerDateChart(qa.GamesPerDate, DefaultChartPalette)
}
