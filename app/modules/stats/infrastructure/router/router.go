package statsrouter

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/ThreeDotsLabs/watermill/components/metrics"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"

	statsservice "github.com/sideout-club/sideout-backend/app/modules/stats/application"
	statshandlers "github.com/sideout-club/sideout-backend/app/modules/stats/infrastructure/handlers"
	"github.com/sideout-club/sideout-backend/app/shared/attr"
	sharedevents "github.com/sideout-club/sideout-backend/app/shared/events"
	"github.com/sideout-club/sideout-backend/app/shared/metrics/statsmetrics"
	"github.com/sideout-club/sideout-backend/app/shared/utils"
	"github.com/sideout-club/sideout-backend/config"
)

const (
	TestEnvironmentFlag  = "APP_ENV"
	TestEnvironmentValue = "test"
)

// StatsRouter subscribes the stats module's handlers and publishes
// whatever events they return.
type StatsRouter struct {
	logger             *slog.Logger
	Router             *message.Router
	subscriber         message.Subscriber
	publisher          message.Publisher
	config             *config.Config
	tracer             trace.Tracer
	middlewareHelper   utils.MiddlewareHelpers
	metricsBuilder     *metrics.PrometheusMetricsBuilder
	prometheusRegistry *prometheus.Registry
	metricsEnabled     bool
}

func NewStatsRouter(
	logger *slog.Logger,
	router *message.Router,
	subscriber message.Subscriber,
	publisher message.Publisher,
	cfg *config.Config,
	tracer trace.Tracer,
	prometheusRegistry *prometheus.Registry,
) *StatsRouter {
	inTestEnv := os.Getenv(TestEnvironmentFlag) == TestEnvironmentValue

	var metricsBuilder *metrics.PrometheusMetricsBuilder
	if prometheusRegistry != nil && !inTestEnv {
		builder := metrics.NewPrometheusMetricsBuilder(prometheusRegistry, "stats", "")
		metricsBuilder = &builder
	}
	return &StatsRouter{
		logger:             logger,
		Router:             router,
		subscriber:         subscriber,
		publisher:          publisher,
		config:             cfg,
		tracer:             tracer,
		middlewareHelper:   utils.NewMiddlewareHelper(),
		metricsBuilder:     metricsBuilder,
		prometheusRegistry: prometheusRegistry,
		metricsEnabled:     prometheusRegistry != nil && !inTestEnv,
	}
}

// Configure adds middleware and registers the module's handlers on the
// router held by the StatsRouter.
func (r *StatsRouter) Configure(routerCtx context.Context, service statsservice.Service, statsMetrics statsmetrics.StatsMetrics) error {
	if r.metricsEnabled && r.metricsBuilder != nil {
		r.metricsBuilder.AddPrometheusRouterMetrics(r.Router)
	}

	handlers := statshandlers.NewStatsHandlers(service, r.logger, r.tracer, statsMetrics)

	r.Router.AddMiddleware(
		middleware.CorrelationID,
		r.middlewareHelper.CommonMetadataMiddleware("stats"),
		middleware.Recoverer,
		middleware.Retry{MaxRetries: 3}.Middleware,
	)

	return r.RegisterHandlers(routerCtx, handlers)
}

// RegisterHandlers subscribes each topic and publishes handler results to
// the topic each result message carries in its metadata.
func (r *StatsRouter) RegisterHandlers(ctx context.Context, handlers statshandlers.Handlers) error {
	eventsToHandlers := map[string]message.HandlerFunc{
		sharedevents.MatchRatingCalculatedV1: utils.WrapHandler("HandleMatchRatingCalculated", r.logger, r.tracer, handlers.HandleMatchRatingCalculated),
		sharedevents.HeadToHeadUpdatedV1:     utils.WrapHandler("HandleHeadToHeadUpdated", r.logger, r.tracer, handlers.HandleHeadToHeadUpdated),
	}

	for topic, handlerFunc := range eventsToHandlers {
		handlerName := fmt.Sprintf("stats.%s", topic)
		r.Router.AddHandler(
			handlerName,
			topic,
			r.subscriber,
			"",
			nil,
			func(msg *message.Message) ([]*message.Message, error) {
				messages, err := handlerFunc(msg)
				if err != nil {
					r.logger.ErrorContext(ctx, "Error processing message",
						attr.String("message_id", msg.UUID),
						attr.Error(err),
					)
					return nil, err
				}
				for _, m := range messages {
					publishTopic := m.Metadata.Get(utils.TopicMetadataKey)
					if publishTopic == "" {
						r.logger.Error("Handler result has no publish topic, dropping message",
							attr.String("handler", handlerName),
							attr.String("message_id", m.UUID),
						)
						continue
					}
					if err := r.publisher.Publish(publishTopic, m); err != nil {
						return nil, fmt.Errorf("failed to publish to %s: %w", publishTopic, err)
					}
				}
				return nil, nil
			},
		)
	}
	return nil
}

func (r *StatsRouter) Close() error {
	return r.Router.Close()
}
