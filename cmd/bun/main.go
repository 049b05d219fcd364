package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Black-And-White-Club/league-scheduler/app"
	schedulequeue "github.com/Black-And-White-Club/league-scheduler/app/modules/schedule/infrastructure/queue"
	schedulemigrations "github.com/Black-And-White-Club/league-scheduler/app/modules/schedule/infrastructure/repositories/migrations"
	"github.com/Black-And-White-Club/league-scheduler/config"
	"github.com/uptrace/bun/migrate"
	"github.com/urfave/cli/v2"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newCLI(os.Stdout).RunContext(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

func newCLI(out io.Writer) *cli.App {
	return &cli.App{
		Name:  "bun",
		Usage: "manage the scheduler's database schema",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Value: "config.yaml", Usage: "path to the configuration file"},
		},
		Writer: out,
		Commands: []*cli.Command{
			{
				Name:  "migrate",
				Usage: "database migrations",
				Subcommands: []*cli.Command{
					{
						Name:  "init",
						Usage: "create the migration bookkeeping tables",
						Action: withMigrator(func(c *cli.Context, m *migrate.Migrator, _ string) error {
							return m.Init(c.Context)
						}),
					},
					{
						Name:  "up",
						Usage: "apply pending schedule migrations, then River's",
						Action: withMigrator(func(c *cli.Context, m *migrate.Migrator, dsn string) error {
							group, err := m.Migrate(c.Context)
							if err != nil {
								return err
							}
							fmt.Fprintf(c.App.Writer, "schedule: %s\n", describeGroup(group, "up to date"))
							if err := schedulequeue.Migrate(c.Context, dsn); err != nil {
								return err
							}
							fmt.Fprintln(c.App.Writer, "river: up to date")
							return nil
						}),
					},
					{
						Name:  "down",
						Usage: "roll back the last schedule migration group",
						Action: withMigrator(func(c *cli.Context, m *migrate.Migrator, _ string) error {
							group, err := m.Rollback(c.Context)
							if err != nil {
								return err
							}
							fmt.Fprintf(c.App.Writer, "schedule: %s\n", describeGroup(group, "nothing to roll back"))
							return nil
						}),
					},
					{
						Name:  "status",
						Usage: "list schedule migrations and whether they ran",
						Action: withMigrator(func(c *cli.Context, m *migrate.Migrator, _ string) error {
							ms, err := m.MigrationsWithStatus(c.Context)
							if err != nil {
								return err
							}
							writeStatus(c.App.Writer, ms)
							return nil
						}),
					},
				},
			},
		},
	}
}

// withMigrator opens the configured database for one command.
func withMigrator(fn func(c *cli.Context, m *migrate.Migrator, dsn string) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		cfg, err := config.LoadConfig(c.String("config"))
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		db := app.OpenDB(cfg.Postgres.DSN)
		defer db.Close()
		if err := db.PingContext(c.Context); err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		return fn(c, migrate.NewMigrator(db, schedulemigrations.Migrations), cfg.Postgres.DSN)
	}
}

func describeGroup(group *migrate.MigrationGroup, empty string) string {
	if group.IsZero() {
		return empty
	}
	return group.String()
}

func writeStatus(w io.Writer, ms migrate.MigrationSlice) {
	for _, m := range ms {
		state := "pending"
		if m.IsApplied() {
			state = fmt.Sprintf("group %d", m.GroupID)
		}
		fmt.Fprintf(w, "%-16s %-36s %s\n", m.Name, m.Comment, state)
	}
}
