package scheduledb

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const activeTeamCount = "(SELECT COUNT(*) FROM teams AS t WHERE t.division_id = d.id AND t.active) AS team_count"

// ListSourceDivisionSummaries lists the divisions that have games in the season.
func (r *Impl) ListSourceDivisionSummaries(ctx context.Context, db bun.IDB, seasonID uuid.UUID) ([]DivisionSummaryRow, error) {
	db = r.resolveDB(db)
	var rows []DivisionSummaryRow
	err := db.NewSelect().
		TableExpr("games AS g").
		ColumnExpr("ag.name AS agegroup_name").
		ColumnExpr("d.name AS division_name").
		ColumnExpr(activeTeamCount).
		ColumnExpr("COUNT(g.id) AS game_count").
		Join("JOIN divisions AS d ON d.id = g.division_id").
		Join("JOIN agegroups AS ag ON ag.id = d.agegroup_id").
		Where("g.season_id = ?", seasonID).
		GroupExpr("ag.name, d.id, d.name").
		OrderExpr("ag.name ASC, d.name ASC").
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("scheduledb.ListSourceDivisionSummaries: %w", err)
	}
	return rows, nil
}

// ListDivisions lists every division of the season.
func (r *Impl) ListDivisions(ctx context.Context, db bun.IDB, seasonID uuid.UUID) ([]DivisionRow, error) {
	db = r.resolveDB(db)
	var rows []DivisionRow
	err := db.NewSelect().
		TableExpr("divisions AS d").
		ColumnExpr("d.id, l.id AS league_id, d.agegroup_id, ag.name AS agegroup_name").
		ColumnExpr("d.name, d.pool_format, d.games_per_pair, d.min_gap_minutes").
		ColumnExpr(activeTeamCount).
		Join("JOIN agegroups AS ag ON ag.id = d.agegroup_id").
		Join("JOIN leagues AS l ON l.id = ag.league_id").
		Where("l.season_id = ?", seasonID).
		OrderExpr("ag.sort_order ASC, ag.name ASC, d.name ASC").
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("scheduledb.ListDivisions: %w", err)
	}
	return rows, nil
}

// ListTeams lists the season's teams, active or not.
func (r *Impl) ListTeams(ctx context.Context, db bun.IDB, seasonID uuid.UUID) ([]TeamRow, error) {
	db = r.resolveDB(db)
	var rows []TeamRow
	err := db.NewSelect().
		TableExpr("teams AS t").
		ColumnExpr("t.id, t.division_id, ag.name AS agegroup_name, d.name AS division_name").
		ColumnExpr("t.name, t.div_rank, t.active").
		Join("JOIN divisions AS d ON d.id = t.division_id").
		Join("JOIN agegroups AS ag ON ag.id = d.agegroup_id").
		Join("JOIN leagues AS l ON l.id = ag.league_id").
		Where("l.season_id = ?", seasonID).
		OrderExpr("ag.name ASC, d.name ASC, t.div_rank ASC, t.name ASC").
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("scheduledb.ListTeams: %w", err)
	}
	return rows, nil
}

// ListSeasonFields lists the fields assigned to the season.
func (r *Impl) ListSeasonFields(ctx context.Context, db bun.IDB, seasonID uuid.UUID) ([]Field, error) {
	db = r.resolveDB(db)
	var fields []Field
	err := db.NewSelect().
		Model(&fields).
		Join("JOIN season_fields AS sf ON sf.field_id = f.id").
		Where("sf.season_id = ?", seasonID).
		OrderExpr("f.name ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("scheduledb.ListSeasonFields: %w", err)
	}
	return fields, nil
}

// ListTimeslots lists the season's open timeslots in start order.
func (r *Impl) ListTimeslots(ctx context.Context, db bun.IDB, seasonID uuid.UUID) ([]TimeslotRow, error) {
	db = r.resolveDB(db)
	var rows []TimeslotRow
	err := db.NewSelect().
		TableExpr("timeslots AS ts").
		ColumnExpr("ts.id, ts.agegroup_id, ts.field_id, f.name AS field_name, ts.starts_at").
		Join("JOIN fields AS f ON f.id = ts.field_id").
		Where("ts.season_id = ?", seasonID).
		OrderExpr("ts.starts_at ASC, f.name ASC").
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("scheduledb.ListTimeslots: %w", err)
	}
	return rows, nil
}

// ListPairings lists the season's pairing templates plus the shared ones.
// Season-specific rows replace shared rows of the same pool size.
func (r *Impl) ListPairings(ctx context.Context, db bun.IDB, seasonID uuid.UUID) ([]Pairing, error) {
	db = r.resolveDB(db)
	var pairings []Pairing
	err := db.NewSelect().
		Model(&pairings).
		Where("p.season_id = ?", seasonID).
		WhereOr("p.season_id IS NULL AND NOT EXISTS (SELECT 1 FROM pairings AS sp WHERE sp.season_id = ? AND sp.team_count = p.team_count)", seasonID).
		OrderExpr("p.team_count ASC, p.round ASC, p.game_number ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("scheduledb.ListPairings: %w", err)
	}
	return pairings, nil
}

// analysisFingerprintSQL digests every input Analyze reads from the target
// season plus the source game count. Parameters: target, target, target,
// target, source.
const analysisFingerprintSQL = `
SELECT md5(concat_ws('|',
	(SELECT concat_ws(',', s.start_date, s.time_zone) FROM seasons AS s WHERE s.id = ?),
	(SELECT string_agg(concat_ws(',', d.id, ag.name, d.name, d.pool_format, d.games_per_pair, d.min_gap_minutes,
			(SELECT string_agg(concat_ws(':', t.id, t.div_rank, t.active), ';' ORDER BY t.id)
				FROM teams AS t WHERE t.division_id = d.id)), '/' ORDER BY d.id)
		FROM divisions AS d
		JOIN agegroups AS ag ON ag.id = d.agegroup_id
		JOIN leagues AS l ON l.id = ag.league_id
		WHERE l.season_id = ?),
	(SELECT string_agg(concat_ws(',', f.id, f.name), '/' ORDER BY f.id)
		FROM season_fields AS sf JOIN fields AS f ON f.id = sf.field_id
		WHERE sf.season_id = ?),
	(SELECT MIN(ts.starts_at) FROM timeslots AS ts WHERE ts.season_id = ?),
	(SELECT COUNT(*) FROM games AS g WHERE g.season_id = ?)
))`

// AnalysisFingerprint hashes the roster, fields and calendar inputs of an
// analysis.
func (r *Impl) AnalysisFingerprint(ctx context.Context, db bun.IDB, seasonID, sourceSeasonID uuid.UUID) (string, error) {
	db = r.resolveDB(db)
	var fingerprint string
	err := db.NewRaw(analysisFingerprintSQL, seasonID, seasonID, seasonID, seasonID, sourceSeasonID).
		Scan(ctx, &fingerprint)
	if err != nil {
		return "", fmt.Errorf("scheduledb.AnalysisFingerprint: %w", err)
	}
	return fingerprint, nil
}
