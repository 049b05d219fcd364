package schedulemigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Creating schedule tables...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS seasons (
					id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
					tenant_id UUID NOT NULL,
					name VARCHAR(200) NOT NULL,
					path TEXT NOT NULL DEFAULT '',
					year INTEGER NOT NULL,
					start_date DATE,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);
				CREATE INDEX IF NOT EXISTS idx_seasons_tenant_year ON seasons(tenant_id, year);

				CREATE TABLE IF NOT EXISTS leagues (
					id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
					season_id UUID NOT NULL REFERENCES seasons(id) ON DELETE CASCADE,
					name VARCHAR(200) NOT NULL
				);

				CREATE TABLE IF NOT EXISTS agegroups (
					id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
					league_id UUID NOT NULL REFERENCES leagues(id) ON DELETE CASCADE,
					name VARCHAR(100) NOT NULL,
					sort_order INTEGER NOT NULL DEFAULT 0
				);

				CREATE TABLE IF NOT EXISTS divisions (
					id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
					agegroup_id UUID NOT NULL REFERENCES agegroups(id) ON DELETE CASCADE,
					name VARCHAR(100) NOT NULL,
					pool_format VARCHAR(20) NOT NULL DEFAULT 'round-robin',
					games_per_pair INTEGER NOT NULL DEFAULT 1,
					min_gap_minutes INTEGER NOT NULL DEFAULT 0
				);

				CREATE TABLE IF NOT EXISTS teams (
					id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
					division_id UUID NOT NULL REFERENCES divisions(id) ON DELETE CASCADE,
					name VARCHAR(200) NOT NULL,
					div_rank INTEGER NOT NULL,
					active BOOLEAN NOT NULL DEFAULT TRUE
				);
				CREATE INDEX IF NOT EXISTS idx_teams_division ON teams(division_id);

				CREATE TABLE IF NOT EXISTS fields (
					id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
					tenant_id UUID NOT NULL,
					name VARCHAR(200) NOT NULL
				);

				CREATE TABLE IF NOT EXISTS season_fields (
					season_id UUID NOT NULL REFERENCES seasons(id) ON DELETE CASCADE,
					field_id UUID NOT NULL REFERENCES fields(id) ON DELETE CASCADE,
					PRIMARY KEY (season_id, field_id)
				);

				CREATE TABLE IF NOT EXISTS timeslots (
					id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
					season_id UUID NOT NULL REFERENCES seasons(id) ON DELETE CASCADE,
					agegroup_id UUID REFERENCES agegroups(id) ON DELETE CASCADE,
					field_id UUID NOT NULL REFERENCES fields(id) ON DELETE CASCADE,
					starts_at TIMESTAMPTZ NOT NULL
				);
				CREATE INDEX IF NOT EXISTS idx_timeslots_season_start ON timeslots(season_id, starts_at);

				CREATE TABLE IF NOT EXISTS pairings (
					id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
					season_id UUID REFERENCES seasons(id) ON DELETE CASCADE,
					team_count INTEGER NOT NULL,
					round INTEGER NOT NULL,
					game_number INTEGER NOT NULL,
					t1_type VARCHAR(4) NOT NULL DEFAULT 'T',
					t1_no INTEGER NOT NULL,
					t2_type VARCHAR(4) NOT NULL DEFAULT 'T',
					t2_no INTEGER NOT NULL
				);
				CREATE INDEX IF NOT EXISTS idx_pairings_team_count ON pairings(team_count);
			`); err != nil {
				return fmt.Errorf("failed to create season structure tables: %w", err)
			}

			if _, err := tx.ExecContext(ctx, `
				CREATE TABLE IF NOT EXISTS games (
					id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
					season_id UUID NOT NULL REFERENCES seasons(id) ON DELETE CASCADE,
					league_id UUID NOT NULL REFERENCES leagues(id) ON DELETE CASCADE,
					agegroup_id UUID NOT NULL REFERENCES agegroups(id) ON DELETE CASCADE,
					division_id UUID NOT NULL REFERENCES divisions(id) ON DELETE CASCADE,
					field_id UUID NOT NULL REFERENCES fields(id),
					game_date TIMESTAMPTZ NOT NULL,
					round INTEGER NOT NULL,
					game_number INTEGER NOT NULL,
					t1_type VARCHAR(4) NOT NULL,
					t1_no INTEGER NOT NULL,
					t1_id UUID REFERENCES teams(id) ON DELETE SET NULL,
					t2_type VARCHAR(4) NOT NULL,
					t2_no INTEGER NOT NULL,
					t2_id UUID REFERENCES teams(id) ON DELETE SET NULL,
					created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
				);
				CREATE INDEX IF NOT EXISTS idx_games_season_date ON games(season_id, game_date);
				CREATE INDEX IF NOT EXISTS idx_games_division ON games(division_id);

				CREATE TABLE IF NOT EXISTS bracket_seeds (
					id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
					game_id UUID NOT NULL REFERENCES games(id),
					division_id UUID NOT NULL REFERENCES divisions(id) ON DELETE CASCADE,
					seed_no INTEGER NOT NULL,
					team_id UUID REFERENCES teams(id) ON DELETE SET NULL
				);
				CREATE INDEX IF NOT EXISTS idx_bracket_seeds_game ON bracket_seeds(game_id);

				CREATE TABLE IF NOT EXISTS device_game_links (
					id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
					device_id VARCHAR(100) NOT NULL,
					game_id UUID NOT NULL REFERENCES games(id)
				);
				CREATE INDEX IF NOT EXISTS idx_device_game_links_game ON device_game_links(game_id);
			`); err != nil {
				return fmt.Errorf("failed to create game tables: %w", err)
			}

			return nil
		})
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Rolling back schedule tables...")

		return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			if _, err := tx.ExecContext(ctx, `
				DROP TABLE IF EXISTS device_game_links;
				DROP TABLE IF EXISTS bracket_seeds;
				DROP TABLE IF EXISTS games;
				DROP TABLE IF EXISTS pairings;
				DROP TABLE IF EXISTS timeslots;
				DROP TABLE IF EXISTS season_fields;
				DROP TABLE IF EXISTS fields;
				DROP TABLE IF EXISTS teams;
				DROP TABLE IF EXISTS divisions;
				DROP TABLE IF EXISTS agegroups;
				DROP TABLE IF EXISTS leagues;
				DROP TABLE IF EXISTS seasons;
			`); err != nil {
				return fmt.Errorf("failed to drop schedule tables: %w", err)
			}
			return nil
		})
	})
}
