package testutils

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"time"

	"github.com/testcontainers/testcontainers-go/modules/nats"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/uptrace/bun"

	"github.com/Black-And-White-Club/league-scheduler/app"
	"github.com/Black-And-White-Club/league-scheduler/config"
	"github.com/Black-And-White-Club/league-scheduler/integration_tests/containers"
	"github.com/Black-And-White-Club/league-scheduler/pkg/observability"
)

// TestEnvironment holds all resources needed for integration testing
type TestEnvironment struct {
	Ctx           context.Context
	CancelContext context.CancelFunc
	PgContainer   *postgres.PostgresContainer
	NatsContainer *nats.NATSContainer
	DB            *bun.DB
	Config        *config.Config
	Observability observability.Observability
}

// NewTestEnvironment starts Postgres and NATS, runs every migration and
// returns a config pointing at both. The caller runs Cleanup.
func NewTestEnvironment(ctx context.Context) (*TestEnvironment, error) {
	ctx, cancel := context.WithCancel(ctx)
	env := &TestEnvironment{
		Ctx:           ctx,
		CancelContext: cancel,
		Observability: observability.NewNoop(),
	}
	env.Observability.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))

	pgContainer, pgConnStr, err := containers.SetupPostgresContainer(ctx)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to setup postgres container: %w", err)
	}
	env.PgContainer = pgContainer

	natsContainer, natsURL, err := containers.SetupNatsContainer(ctx)
	if err != nil {
		env.Cleanup()
		return nil, fmt.Errorf("failed to setup nats container: %w", err)
	}
	env.NatsContainer = natsContainer

	env.DB = app.OpenDB(pgConnStr)
	if err := RunMigrations(ctx, env.DB, pgConnStr); err != nil {
		env.Cleanup()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	env.Config = &config.Config{
		Postgres: config.PostgresConfig{DSN: pgConnStr, MaxWorkers: 2},
		NATS:     config.NATSConfig{URL: natsURL, Durable: "scheduler-it", AckWait: 5 * time.Second},
		JWT:      config.JWTConfig{Secret: "integration-secret-0123456789abcdef", DefaultTTL: time.Hour},
		Schedule: config.ScheduleConfig{
			AnalysisCacheTTL: time.Minute,
			BuildLockTTL:     time.Minute,
		},
	}
	return env, nil
}

// Cleanup tears down all resources created for testing
func (env *TestEnvironment) Cleanup() {
	if env.CancelContext != nil {
		env.CancelContext()
	}
	if env.DB != nil {
		env.DB.Close()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if env.NatsContainer != nil {
		if err := env.NatsContainer.Terminate(ctx); err != nil {
			log.Printf("Error terminating NATS container: %v", err)
		}
	}
	if env.PgContainer != nil {
		if err := env.PgContainer.Terminate(ctx); err != nil {
			log.Printf("Error terminating Postgres container: %v", err)
		}
	}
}
