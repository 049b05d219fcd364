package scheduledb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Impl implements the Repository interface using Bun ORM.
type Impl struct {
	db bun.IDB
}

// NewRepository creates a new schedule repository.
func NewRepository(db bun.IDB) Repository {
	return &Impl{db: db}
}

// resolveDB returns the provided db handle, falling back to the repository's
// default connection if db is nil.
func (r *Impl) resolveDB(db bun.IDB) bun.IDB {
	if db == nil {
		return r.db
	}
	return db
}

// GetSeason retrieves a season by id.
func (r *Impl) GetSeason(ctx context.Context, db bun.IDB, seasonID uuid.UUID) (*Season, error) {
	db = r.resolveDB(db)
	season := new(Season)
	err := db.NewSelect().
		Model(season).
		Where("s.id = ?", seasonID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scheduledb.GetSeason: %w", err)
	}
	return season, nil
}

// GetLeagueForSeason returns the season's first league by name.
func (r *Impl) GetLeagueForSeason(ctx context.Context, db bun.IDB, seasonID uuid.UUID) (*League, error) {
	db = r.resolveDB(db)
	league := new(League)
	err := db.NewSelect().
		Model(league).
		Where("l.season_id = ?", seasonID).
		OrderExpr("l.name ASC, l.id ASC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scheduledb.GetLeagueForSeason: %w", err)
	}
	return league, nil
}

// ListSourceCandidates lists the tenant's earlier seasons that have games.
func (r *Impl) ListSourceCandidates(ctx context.Context, db bun.IDB, tenantID uuid.UUID, beforeYear int) ([]SourceCandidate, error) {
	db = r.resolveDB(db)
	candidates := []SourceCandidate{}
	err := db.NewSelect().
		TableExpr("seasons AS s").
		ColumnExpr("s.id AS season_id").
		ColumnExpr("s.name, s.path, s.year").
		ColumnExpr("COUNT(g.id) AS scheduled_game_count").
		Join("JOIN games AS g ON g.season_id = s.id").
		Where("s.tenant_id = ?", tenantID).
		Where("s.year < ?", beforeYear).
		GroupExpr("s.id").
		OrderExpr("s.year DESC, s.name ASC").
		Scan(ctx, &candidates)
	if err != nil {
		return nil, fmt.Errorf("scheduledb.ListSourceCandidates: %w", err)
	}
	return candidates, nil
}
