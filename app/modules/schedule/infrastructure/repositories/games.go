package scheduledb

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ListSeasonGames lists the season's games with agegroup, division and field names.
func (r *Impl) ListSeasonGames(ctx context.Context, db bun.IDB, seasonID uuid.UUID) ([]GameRow, error) {
	db = r.resolveDB(db)
	var rows []GameRow
	err := db.NewSelect().
		TableExpr("games AS g").
		ColumnExpr("g.id, g.agegroup_id, ag.name AS agegroup_name").
		ColumnExpr("g.division_id, d.name AS division_name").
		ColumnExpr("g.field_id, f.name AS field_name").
		ColumnExpr("g.game_date, g.round, g.game_number").
		ColumnExpr("g.t1_type, g.t1_no, g.t1_id, g.t2_type, g.t2_no, g.t2_id").
		Join("JOIN divisions AS d ON d.id = g.division_id").
		Join("JOIN agegroups AS ag ON ag.id = g.agegroup_id").
		Join("JOIN fields AS f ON f.id = g.field_id").
		Where("g.season_id = ?", seasonID).
		OrderExpr("g.game_date ASC, lower(f.name) ASC, g.round ASC, g.game_number ASC").
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("scheduledb.ListSeasonGames: %w", err)
	}
	return rows, nil
}

// CreateGames inserts games in one statement.
func (r *Impl) CreateGames(ctx context.Context, db bun.IDB, games []*Game) error {
	if len(games) == 0 {
		return nil
	}
	db = r.resolveDB(db)
	_, err := db.NewInsert().Model(&games).Exec(ctx)
	if err != nil {
		return fmt.Errorf("scheduledb.CreateGames: %w", err)
	}
	return nil
}

// DeleteSeasonGames removes bracket seed pointers and device links before the
// games themselves. Callers run it inside a transaction.
func (r *Impl) DeleteSeasonGames(ctx context.Context, db bun.IDB, seasonID uuid.UUID) (int, error) {
	db = r.resolveDB(db)

	seasonGames := db.NewSelect().
		Model((*Game)(nil)).
		Column("g.id").
		Where("g.season_id = ?", seasonID)

	if _, err := db.NewDelete().
		Model((*BracketSeed)(nil)).
		Where("bs.game_id IN (?)", seasonGames).
		Exec(ctx); err != nil {
		return 0, fmt.Errorf("scheduledb.DeleteSeasonGames: bracket seeds: %w", err)
	}

	if _, err := db.NewDelete().
		Model((*DeviceGameLink)(nil)).
		Where("dgl.game_id IN (?)", seasonGames).
		Exec(ctx); err != nil {
		return 0, fmt.Errorf("scheduledb.DeleteSeasonGames: device links: %w", err)
	}

	res, err := db.NewDelete().
		Model((*Game)(nil)).
		Where("g.season_id = ?", seasonID).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("scheduledb.DeleteSeasonGames: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return int(rows), nil
}
