package rating

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/uptrace/bun"

	ratingservice "github.com/sideout-club/sideout-backend/app/modules/rating/application"
	ratingdb "github.com/sideout-club/sideout-backend/app/modules/rating/infrastructure/repositories"
	ratingrouter "github.com/sideout-club/sideout-backend/app/modules/rating/infrastructure/router"
	"github.com/sideout-club/sideout-backend/app/shared/metrics/ratingmetrics"
	sharedtypes "github.com/sideout-club/sideout-backend/app/shared/types"
	"github.com/sideout-club/sideout-backend/config"
	"github.com/sideout-club/sideout-backend/internal/eventbus"
	"github.com/sideout-club/sideout-backend/internal/observability"
	"github.com/sideout-club/sideout-backend/pkg/elo"
)

// Module wires the rating engine: repository, service, handlers, router.
type Module struct {
	Service    ratingservice.Service
	Router     *ratingrouter.RatingRouter
	cancelFunc context.CancelFunc
	logger     *slog.Logger
}

// NewRatingModule creates the rating module and registers its handlers on
// the shared watermill router.
func NewRatingModule(
	ctx context.Context,
	cfg *config.Config,
	obs *observability.Observability,
	repo ratingdb.Repository,
	db *bun.DB,
	bus *eventbus.EventBus,
	router *message.Router,
) (*Module, error) {
	logger := obs.Logger
	tracer := obs.Tracer("rating")
	metrics := ratingmetrics.NewPrometheusMetrics(obs.Registry)

	params := elo.Params{
		DefaultRating: sharedtypes.Rating(cfg.Rating.DefaultRating),
		KFactor:       cfg.Rating.KFactor,
	}

	service := ratingservice.NewRatingService(repo, logger, metrics, tracer, db, params, cfg.Rating.RecentMatchLimit)

	ratingRouter := ratingrouter.NewRatingRouter(logger, router, bus, bus, cfg, tracer, obs.Registry)
	if err := ratingRouter.Configure(ctx, service, metrics); err != nil {
		return nil, fmt.Errorf("failed to configure rating router: %w", err)
	}

	return &Module{
		Service: service,
		Router:  ratingRouter,
		logger:  logger,
	}, nil
}

// Run blocks until the context is canceled or Close is called.
func (m *Module) Run(ctx context.Context, wg *sync.WaitGroup) {
	m.logger.Info("Starting rating module")

	ctx, cancel := context.WithCancel(ctx)
	m.cancelFunc = cancel
	defer cancel()

	if wg != nil {
		defer wg.Done()
	}

	<-ctx.Done()
	m.logger.Info("Rating module stopped")
}

func (m *Module) Close() error {
	if m.cancelFunc != nil {
		m.cancelFunc()
	}
	return nil
}
