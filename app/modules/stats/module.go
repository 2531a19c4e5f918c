package stats

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/uptrace/bun"

	statsservice "github.com/sideout-club/sideout-backend/app/modules/stats/application"
	statsdb "github.com/sideout-club/sideout-backend/app/modules/stats/infrastructure/repositories"
	statsrouter "github.com/sideout-club/sideout-backend/app/modules/stats/infrastructure/router"
	"github.com/sideout-club/sideout-backend/app/shared/metrics/statsmetrics"
	"github.com/sideout-club/sideout-backend/config"
	"github.com/sideout-club/sideout-backend/internal/eventbus"
	"github.com/sideout-club/sideout-backend/internal/observability"
)

// Module wires the stats relay and nemesis updater.
type Module struct {
	Service    statsservice.Service
	Router     *statsrouter.StatsRouter
	Metrics    statsmetrics.StatsMetrics
	cancelFunc context.CancelFunc
	logger     *slog.Logger
}

// NewStatsModule creates the stats module and registers its handlers on
// the shared watermill router.
func NewStatsModule(
	ctx context.Context,
	cfg *config.Config,
	obs *observability.Observability,
	repo statsdb.Repository,
	db *bun.DB,
	bus *eventbus.EventBus,
	router *message.Router,
) (*Module, error) {
	logger := obs.Logger
	tracer := obs.Tracer("stats")
	metrics := statsmetrics.NewPrometheusMetrics(obs.Registry)

	service := statsservice.NewStatsService(
		repo,
		logger,
		metrics,
		tracer,
		db,
		cfg.Rating.RecentMatchLimit,
		cfg.Rating.NemesisMinGames,
	)

	statsRouter := statsrouter.NewStatsRouter(logger, router, bus, bus, cfg, tracer, obs.Registry)
	if err := statsRouter.Configure(ctx, service, metrics); err != nil {
		return nil, fmt.Errorf("failed to configure stats router: %w", err)
	}

	return &Module{
		Service: service,
		Router:  statsRouter,
		Metrics: metrics,
		logger:  logger,
	}, nil
}

// Run blocks until the context is canceled or Close is called.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	m.logger.Info("Starting stats module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	<-ctx.Done()
	m.logger.Info("Stats module stopped")
}

func (m *Module) Close() error {
	if m.cancelFunc != nil {
		m.cancelFunc()
	}
	return nil
}
