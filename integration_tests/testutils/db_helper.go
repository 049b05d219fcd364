package testutils

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"

	schedulequeue "github.com/Black-And-White-Club/league-scheduler/app/modules/schedule/infrastructure/queue"
	scheduledb "github.com/Black-And-White-Club/league-scheduler/app/modules/schedule/infrastructure/repositories"
	schedulemigrations "github.com/Black-And-White-Club/league-scheduler/app/modules/schedule/infrastructure/repositories/migrations"
)

// scheduleTables are truncated between tests, children first.
var scheduleTables = []string{
	"device_game_links",
	"bracket_seeds",
	"games",
	"pairings",
	"timeslots",
	"season_fields",
	"fields",
	"teams",
	"divisions",
	"agegroups",
	"leagues",
	"seasons",
}

// RunMigrations applies the schedule migrations and River's schema.
func RunMigrations(ctx context.Context, db *bun.DB, dsn string) error {
	migrator := migrate.NewMigrator(db, schedulemigrations.Migrations)
	if err := migrator.Init(ctx); err != nil {
		return fmt.Errorf("failed to initialize migration tables: %w", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run schedule migrations: %w", err)
	}
	if err := schedulequeue.Migrate(ctx, dsn); err != nil {
		return err
	}
	return nil
}

// CleanScheduleTables empties every schedule table.
func CleanScheduleTables(ctx context.Context, db bun.IDB) error {
	for _, table := range scheduleTables {
		if _, err := db.ExecContext(ctx, "TRUNCATE TABLE ? CASCADE", bun.Ident(table)); err != nil {
			return fmt.Errorf("failed to truncate %s: %w", table, err)
		}
	}
	return nil
}

// InsertSeasonFixture writes a generated season in dependency order. Fields
// are tenant-level and inserted by InsertFields.
func InsertSeasonFixture(ctx context.Context, db bun.IDB, f *SeasonFixture) error {
	return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(&f.Season).Exec(ctx); err != nil {
			return fmt.Errorf("insert season: %w", err)
		}
		if _, err := tx.NewInsert().Model(&f.League).Exec(ctx); err != nil {
			return fmt.Errorf("insert league: %w", err)
		}
		if err := insertAll(ctx, tx, &f.Agegroups); err != nil {
			return fmt.Errorf("insert agegroups: %w", err)
		}
		if err := insertAll(ctx, tx, &f.Divisions); err != nil {
			return fmt.Errorf("insert divisions: %w", err)
		}
		if err := insertAll(ctx, tx, &f.Teams); err != nil {
			return fmt.Errorf("insert teams: %w", err)
		}
		if err := insertAll(ctx, tx, &f.SeasonFields); err != nil {
			return fmt.Errorf("insert season fields: %w", err)
		}
		if err := insertAll(ctx, tx, &f.Timeslots); err != nil {
			return fmt.Errorf("insert timeslots: %w", err)
		}
		if err := insertAll(ctx, tx, &f.Games); err != nil {
			return fmt.Errorf("insert games: %w", err)
		}
		return nil
	})
}

// InsertFields writes tenant fields.
func InsertFields(ctx context.Context, db bun.IDB, fields []scheduledb.Field) error {
	return insertAll(ctx, db, &fields)
}

func insertAll[T any](ctx context.Context, db bun.IDB, rows *[]T) error {
	if len(*rows) == 0 {
		return nil
	}
	_, err := db.NewInsert().Model(rows).Exec(ctx)
	return err
}

// CountSeasonGames counts the games stored for a season.
func CountSeasonGames(ctx context.Context, db bun.IDB, f *SeasonFixture) (int, error) {
	return db.NewSelect().
		Model((*scheduledb.Game)(nil)).
		Where("g.season_id = ?", f.Season.ID).
		Count(ctx)
}
