package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"github.com/Black-And-White-Club/league-scheduler/app"
	"github.com/Black-And-White-Club/league-scheduler/app/modules/schedule"
	scheduleservice "github.com/Black-And-White-Club/league-scheduler/app/modules/schedule/application"
	schedulecache "github.com/Black-And-White-Club/league-scheduler/app/modules/schedule/infrastructure/cache"
	"github.com/Black-And-White-Club/league-scheduler/config"
	"github.com/Black-And-White-Club/league-scheduler/pkg/authjwt"
	"github.com/Black-And-White-Club/league-scheduler/pkg/dateparse"
	"github.com/Black-And-White-Club/league-scheduler/pkg/observability"
	"github.com/google/uuid"
	"github.com/urfave/cli/v2"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newCLI(os.Stdout).RunContext(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

func seasonFlag() cli.Flag {
	return &cli.StringFlag{Name: "season", Usage: "target season id", Required: true}
}

func newCLI(out io.Writer) *cli.App {
	return &cli.App{
		Name:  "scheduler",
		Usage: "auto-build league schedules from a prior season",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Value: "config.yaml", Usage: "path to the configuration file"},
		},
		Writer: out,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP API, event handlers and job workers",
				Action: serve,
			},
			{
				Name:  "sources",
				Usage: "list prior seasons with scheduled games",
				Flags: []cli.Flag{seasonFlag()},
				Action: withService(func(c *cli.Context, rt *runtime, seasonID uuid.UUID) error {
					candidates, err := rt.service.ListSourceCandidates(c.Context, seasonID)
					if err != nil {
						return err
					}
					return writeJSON(c.App.Writer, candidates)
				}),
			},
			{
				Name:  "analyze",
				Usage: "compare a source season against the target season",
				Flags: []cli.Flag{
					seasonFlag(),
					&cli.StringFlag{Name: "source", Usage: "source season id", Required: true},
				},
				Action: withService(func(c *cli.Context, rt *runtime, seasonID uuid.UUID) error {
					sourceID, err := uuid.Parse(c.String("source"))
					if err != nil {
						return fmt.Errorf("invalid --source: %w", err)
					}
					analysis, err := rt.service.Analyze(c.Context, seasonID, sourceID)
					if err != nil {
						return err
					}
					return writeJSON(c.App.Writer, analysis)
				}),
			},
			{
				Name:  "build",
				Usage: "place games into the target season",
				Flags: []cli.Flag{
					seasonFlag(),
					&cli.StringFlag{Name: "source", Usage: "source season id", Required: true},
					&cli.StringFlag{Name: "start", Usage: "first game date, e.g. 2025-09-06 or \"next saturday\""},
					&cli.StringSliceFlag{Name: "skip-division", Usage: "division id to leave unscheduled"},
					&cli.StringSliceFlag{Name: "resolution", Usage: "divisionID=use-current-pairings|auto-schedule|skip"},
					&cli.BoolFlag{Name: "include-brackets", Usage: "also place bracket games"},
					&cli.BoolFlag{Name: "skip-scheduled", Usage: "leave divisions that already have games alone"},
				},
				Action: withService(func(c *cli.Context, rt *runtime, seasonID uuid.UUID) error {
					loc, err := rt.service.SeasonLocation(c.Context, seasonID)
					if err != nil {
						return err
					}
					req, err := buildRequest(buildOptions{
						Source:          c.String("source"),
						Start:           c.String("start"),
						SkipDivisions:   c.StringSlice("skip-division"),
						Resolutions:     c.StringSlice("resolution"),
						IncludeBrackets: c.Bool("include-brackets"),
						SkipScheduled:   c.Bool("skip-scheduled"),
					}, dateparse.New(), loc)
					if err != nil {
						return err
					}

					var result any
					err = scheduleservice.WithBuildLock(c.Context, rt.lock, rt.obs.Logger, seasonID, func(ctx context.Context) error {
						r, err := rt.service.Build(ctx, seasonID, req)
						result = r
						return err
					})
					if err != nil {
						return err
					}
					return writeJSON(c.App.Writer, result)
				}),
			},
			{
				Name:  "undo",
				Usage: "delete every game of the target season",
				Flags: []cli.Flag{seasonFlag()},
				Action: withService(func(c *cli.Context, rt *runtime, seasonID uuid.UUID) error {
					var deleted int
					err := scheduleservice.WithBuildLock(c.Context, rt.lock, rt.obs.Logger, seasonID, func(ctx context.Context) error {
						n, err := rt.service.Undo(ctx, seasonID)
						deleted = n
						return err
					})
					if err != nil {
						return err
					}
					return writeJSON(c.App.Writer, map[string]int{"deleted": deleted})
				}),
			},
			{
				Name:  "validate",
				Usage: "run the QA checks on the target season",
				Flags: []cli.Flag{seasonFlag()},
				Action: withService(func(c *cli.Context, rt *runtime, seasonID uuid.UUID) error {
					qa, err := rt.service.Validate(c.Context, seasonID)
					if err != nil {
						return err
					}
					return writeJSON(c.App.Writer, qa)
				}),
			},
			{
				Name:  "export-qa",
				Usage: "write the QA report as an xlsx workbook",
				Flags: []cli.Flag{
					seasonFlag(),
					&cli.StringFlag{Name: "out", Usage: "output path", Value: "qa.xlsx"},
				},
				Action: withService(func(c *cli.Context, rt *runtime, seasonID uuid.UUID) error {
					data, err := rt.service.ExportQaWorkbook(c.Context, seasonID)
					if err != nil {
						return err
					}
					if err := os.WriteFile(c.String("out"), data, 0o644); err != nil {
						return fmt.Errorf("failed to write workbook: %w", err)
					}
					return writeJSON(c.App.Writer, map[string]any{"path": c.String("out"), "bytes": len(data)})
				}),
			},
			{
				Name:  "token",
				Usage: "issue an API token",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "subject", Required: true},
					&cli.StringFlag{Name: "role", Value: string(authjwt.RoleDirector)},
					&cli.DurationFlag{Name: "ttl", Usage: "token lifetime; defaults to jwt.default_ttl"},
				},
				Action: func(c *cli.Context) error {
					cfg, err := config.LoadConfig(c.String("config"))
					if err != nil {
						return fmt.Errorf("failed to load config: %w", err)
					}
					ttl := c.Duration("ttl")
					if ttl == 0 {
						ttl = cfg.JWT.DefaultTTL
					}
					token, err := issueToken(cfg.JWT.Secret, c.String("subject"), c.String("role"), ttl)
					if err != nil {
						return err
					}
					return writeJSON(c.App.Writer, map[string]string{"token": token})
				},
			},
		},
	}
}

func serve(c *cli.Context) error {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	obs, err := observability.Init(config.ToObsConfig(cfg))
	if err != nil {
		return err
	}

	application, err := app.NewApp(c.Context, cfg, obs)
	if err != nil {
		return fmt.Errorf("failed to initialize app: %w", err)
	}
	defer application.Close()

	return application.Run(c.Context)
}

// runtime is what the one-shot commands need: the service and a build lock.
type runtime struct {
	obs     observability.Observability
	service scheduleservice.Service
	lock    scheduleservice.BuildLock
	close   func()
}

func newRuntime(ctx context.Context, configPath string) (*runtime, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	obsCfg := config.ToObsConfig(cfg)
	obs := observability.NewNoop()
	obs.Logger = observability.NewLogger(os.Stderr, obsCfg)

	db := app.OpenDB(cfg.Postgres.DSN)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	deps := schedule.Dependencies{DB: db}
	if cfg.Redis.URL != "" {
		client, err := schedulecache.Connect(ctx, cfg.Redis.URL)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		deps.Redis = client
	}

	module, err := schedule.NewScheduleModule(ctx, cfg, obs, deps)
	if err != nil {
		db.Close()
		if deps.Redis != nil {
			deps.Redis.Close()
		}
		return nil, err
	}

	return &runtime{
		obs:     obs,
		service: module.ScheduleService,
		lock:    module.Lock,
		close: func() {
			if deps.Redis != nil {
				deps.Redis.Close()
			}
			db.Close()
		},
	}, nil
}

func withService(fn func(c *cli.Context, rt *runtime, seasonID uuid.UUID) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		seasonID, err := uuid.Parse(c.String("season"))
		if err != nil {
			return fmt.Errorf("invalid --season: %w", err)
		}
		rt, err := newRuntime(c.Context, c.String("config"))
		if err != nil {
			return err
		}
		defer rt.close()
		return fn(c, rt, seasonID)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
