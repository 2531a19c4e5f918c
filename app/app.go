// Package app assembles the pipeline: database, event bus, module
// routers, background jobs, and the metrics endpoint.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/uptrace/bun"

	"github.com/sideout-club/sideout-backend/app/modules/rating"
	ratingdb "github.com/sideout-club/sideout-backend/app/modules/rating/infrastructure/repositories"
	"github.com/sideout-club/sideout-backend/app/modules/stats"
	statsdb "github.com/sideout-club/sideout-backend/app/modules/stats/infrastructure/repositories"
	"github.com/sideout-club/sideout-backend/config"
	"github.com/sideout-club/sideout-backend/internal/db/bundb"
	"github.com/sideout-club/sideout-backend/internal/eventbus"
	"github.com/sideout-club/sideout-backend/internal/httpserver"
	"github.com/sideout-club/sideout-backend/internal/jobs"
	"github.com/sideout-club/sideout-backend/internal/observability"
)

// App owns every long-lived component and their shutdown order.
type App struct {
	Config        *config.Config
	Observability *observability.Observability
	DB            *bun.DB
	EventBus      *eventbus.EventBus
	Router        *message.Router
	RatingModule  *rating.Module
	StatsModule   *stats.Module
	Jobs          *jobs.Service
	MetricsServer *httpserver.Server

	logger *slog.Logger
}

// Initialize builds every component. Nothing starts processing until
// Run is called.
func (app *App) Initialize(ctx context.Context, cfg *config.Config) error {
	app.Config = cfg

	obs, err := observability.Init(ctx, cfg.Observability)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	app.Observability = obs
	app.logger = obs.Logger

	db, err := bundb.New(ctx, cfg.Postgres.DSN)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.DB = db

	watermillLogger := watermill.NewSlogLogger(obs.Logger)

	bus, err := eventbus.New(cfg.NATS.URL, watermillLogger)
	if err != nil {
		return fmt.Errorf("failed to initialize event bus: %w", err)
	}
	app.EventBus = bus

	router, err := message.NewRouter(message.RouterConfig{}, watermillLogger)
	if err != nil {
		return fmt.Errorf("failed to create watermill router: %w", err)
	}
	app.Router = router

	ratingModule, err := rating.NewRatingModule(ctx, cfg, obs, ratingdb.NewRepository(), db, bus, router)
	if err != nil {
		return fmt.Errorf("failed to initialize rating module: %w", err)
	}
	app.RatingModule = ratingModule

	statsModule, err := stats.NewStatsModule(ctx, cfg, obs, statsdb.NewRepository(), db, bus, router)
	if err != nil {
		return fmt.Errorf("failed to initialize stats module: %w", err)
	}
	app.StatsModule = statsModule

	jobService, err := jobs.NewService(ctx, cfg, obs.Logger, statsModule.Metrics, statsModule.Service, bus)
	if err != nil {
		return fmt.Errorf("failed to initialize job service: %w", err)
	}
	app.Jobs = jobService

	app.MetricsServer = httpserver.New(cfg.Observability.MetricsAddress, obs.Registry)

	app.logger.InfoContext(ctx, "Application initialized")
	return nil
}

// Run starts the router, modules, jobs, and metrics server, then blocks
// until the context is canceled.
func (app *App) Run(ctx context.Context) error {
	if err := app.Jobs.Start(ctx); err != nil {
		return err
	}

	go func() {
		if err := app.MetricsServer.Start(); err != nil {
			app.logger.Error("Metrics server stopped", slog.Any("error", err))
		}
	}()

	var wg sync.WaitGroup
	wg.Add(2)
	go app.RatingModule.Run(ctx, &wg)
	go app.StatsModule.Run(ctx, &wg)

	// Router.Run blocks until the context is canceled; handlers only
	// receive messages once it is running.
	if err := app.Router.Run(ctx); err != nil {
		return fmt.Errorf("watermill router stopped: %w", err)
	}

	wg.Wait()
	return nil
}

// Close shuts components down in reverse dependency order.
func (app *App) Close(ctx context.Context) {
	if app.Jobs != nil {
		if err := app.Jobs.Stop(ctx); err != nil {
			app.logger.Error("Failed to stop job service", slog.Any("error", err))
		}
	}
	if app.RatingModule != nil {
		_ = app.RatingModule.Close()
	}
	if app.StatsModule != nil {
		_ = app.StatsModule.Close()
	}
	if app.Router != nil {
		if err := app.Router.Close(); err != nil {
			app.logger.Error("Failed to close router", slog.Any("error", err))
		}
	}
	if app.EventBus != nil {
		if err := app.EventBus.Close(); err != nil {
			app.logger.Error("Failed to close event bus", slog.Any("error", err))
		}
	}
	if app.MetricsServer != nil {
		if err := app.MetricsServer.Shutdown(ctx); err != nil {
			app.logger.Error("Failed to stop metrics server", slog.Any("error", err))
		}
	}
	if app.DB != nil {
		if err := app.DB.Close(); err != nil {
			app.logger.Error("Failed to close database", slog.Any("error", err))
		}
	}
	if app.Observability != nil {
		if err := app.Observability.Shutdown(ctx); err != nil {
			app.logger.Error("Failed to shut down observability", slog.Any("error", err))
		}
	}
}
