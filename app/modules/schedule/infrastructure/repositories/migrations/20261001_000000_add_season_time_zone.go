package schedulemigrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Adding season time zone...")

		if _, err := db.ExecContext(ctx, `ALTER TABLE seasons ADD COLUMN IF NOT EXISTS time_zone TEXT`); err != nil {
			return fmt.Errorf("failed to add seasons.time_zone: %w", err)
		}
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		fmt.Println("Dropping season time zone...")

		if _, err := db.ExecContext(ctx, `ALTER TABLE seasons DROP COLUMN IF EXISTS time_zone`); err != nil {
			return fmt.Errorf("failed to drop seasons.time_zone: %w", err)
		}
		return nil
	})
}
