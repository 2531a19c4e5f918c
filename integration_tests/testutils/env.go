// Package testutils provisions the containers and connections shared by
// the integration tests. Tests are skipped unless INTEGRATION_TESTS is
// set; they need a local Docker daemon.
package testutils

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"

	ratingmigrations "github.com/sideout-club/sideout-backend/app/modules/rating/infrastructure/repositories/migrations"
	statsmigrations "github.com/sideout-club/sideout-backend/app/modules/stats/infrastructure/repositories/migrations"
	"github.com/sideout-club/sideout-backend/config"
	"github.com/sideout-club/sideout-backend/integration_tests/containers"
	"github.com/sideout-club/sideout-backend/internal/db/bundb"
	"github.com/sideout-club/sideout-backend/internal/eventbus"

	"github.com/ThreeDotsLabs/watermill"
)

// RequireIntegration skips the test unless integration tests are
// enabled.
func RequireIntegration(t *testing.T) {
	t.Helper()
	if os.Getenv("INTEGRATION_TESTS") == "" {
		t.Skip("set INTEGRATION_TESTS=1 to run integration tests")
	}
}

// TestEnvironment holds the containers and connections for one test
// package.
type TestEnvironment struct {
	Ctx           context.Context
	CancelContext context.CancelFunc
	PgContainer   *postgres.PostgresContainer
	NatsContainer testcontainers.Container
	DB            *bun.DB
	EventBus      *eventbus.EventBus
	Config        *config.Config
}

// NewTestEnvironment starts Postgres and NATS containers, runs the
// module migrations, and connects the event bus.
func NewTestEnvironment(t *testing.T) (*TestEnvironment, error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())

	pgContainer, pgConnStr, err := containers.SetupPostgresContainer(ctx)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to setup postgres container: %w", err)
	}

	natsContainer, natsURL, err := containers.SetupNatsContainer(ctx)
	if err != nil {
		pgContainer.Terminate(ctx)
		cancel()
		return nil, fmt.Errorf("failed to setup nats container: %w", err)
	}

	db, err := bundb.New(ctx, pgConnStr)
	if err != nil {
		cleanupContainers(ctx, pgContainer, natsContainer)
		cancel()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := runMigrations(ctx, db); err != nil {
		db.Close()
		cleanupContainers(ctx, pgContainer, natsContainer)
		cancel()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	bus, err := eventbus.New(natsURL, watermill.NopLogger{})
	if err != nil {
		db.Close()
		cleanupContainers(ctx, pgContainer, natsContainer)
		cancel()
		return nil, fmt.Errorf("failed to create event bus: %w", err)
	}

	cfg := &config.Config{
		Postgres: config.PostgresConfig{DSN: pgConnStr},
		NATS:     config.NATSConfig{URL: natsURL},
		Rating: config.RatingConfig{
			DefaultRating:    1200,
			KFactor:          32,
			RecentMatchLimit: 10,
			NemesisMinGames:  3,
		},
		Jobs: config.JobsConfig{
			ReconcileAfter:    10 * time.Minute,
			ReconcileInterval: 5 * time.Minute,
		},
	}

	return &TestEnvironment{
		Ctx:           ctx,
		CancelContext: cancel,
		PgContainer:   pgContainer,
		NatsContainer: natsContainer,
		DB:            db,
		EventBus:      bus,
		Config:        cfg,
	}, nil
}

func runMigrations(ctx context.Context, db *bun.DB) error {
	modules := []struct {
		name       string
		migrations *migrate.Migrations
	}{
		{"rating", ratingmigrations.Migrations},
		{"stats", statsmigrations.Migrations},
	}

	for _, mod := range modules {
		migrator := migrate.NewMigrator(db, mod.migrations)
		if err := migrator.Init(ctx); err != nil {
			return fmt.Errorf("failed to init %s migrations: %w", mod.name, err)
		}
		group, err := migrator.Migrate(ctx)
		if err != nil {
			return fmt.Errorf("failed to run %s migrations: %w", mod.name, err)
		}
		if group.IsZero() {
			log.Printf("No %s migrations to run", mod.name)
		} else {
			log.Printf("Ran %s migrations group #%d", mod.name, group.ID)
		}
	}
	return nil
}

// CleanTables truncates the pipeline tables for isolation between
// tests.
func (env *TestEnvironment) CleanTables(ctx context.Context) error {
	tables := []string{"matches", "players", "rating_history", "head_to_head_stats", "teammate_stats"}
	query := fmt.Sprintf("TRUNCATE TABLE %s CASCADE", strings.Join(tables, ", "))
	if _, err := env.DB.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to truncate tables: %w", err)
	}
	return nil
}

// Cleanup tears down connections and containers.
func (env *TestEnvironment) Cleanup() {
	if env.CancelContext != nil {
		env.CancelContext()
	}
	if env.EventBus != nil {
		if err := env.EventBus.Close(); err != nil {
			log.Printf("Error closing event bus: %v", err)
		}
	}
	if env.DB != nil {
		env.DB.Close()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	cleanupContainers(ctx, env.PgContainer, env.NatsContainer)
}

func cleanupContainers(ctx context.Context, pg *postgres.PostgresContainer, nats testcontainers.Container) {
	if pg != nil {
		if err := pg.Terminate(ctx); err != nil {
			log.Printf("Error terminating postgres container: %v", err)
		}
	}
	if nats != nil {
		if err := nats.Terminate(ctx); err != nil {
			log.Printf("Error terminating NATS container: %v", err)
		}
	}
}
