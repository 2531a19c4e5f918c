package ratingrouter

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

	ratingservice "github.com/sideout-club/sideout-backend/app/modules/rating/application"
	ratinghandlers "github.com/sideout-club/sideout-backend/app/modules/rating/infrastructure/handlers"
	"github.com/sideout-club/sideout-backend/app/shared/attr"
	sharedevents "github.com/sideout-club/sideout-backend/app/shared/events"
	"github.com/sideout-club/sideout-backend/app/shared/metrics/ratingmetrics"
	"github.com/sideout-club/sideout-backend/app/shared/utils"
	"github.com/sideout-club/sideout-backend/config"
)

const (
	TestEnvironmentFlag  = "APP_ENV"
	TestEnvironmentValue = "test"
)

// RatingRouter subscribes the rating module's handlers and publishes
// whatever events they return.
type RatingRouter struct {
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

func NewRatingRouter(
	logger *slog.Logger,
	router *message.Router,
	subscriber message.Subscriber,
	publisher message.Publisher,
	cfg *config.Config,
	tracer trace.Tracer,
	prometheusRegistry *prometheus.Registry,
) *RatingRouter {
	inTestEnv := os.Getenv(TestEnvironmentFlag) == TestEnvironmentValue

	var metricsBuilder *metrics.PrometheusMetricsBuilder
	if prometheusRegistry != nil && !inTestEnv {
		builder := metrics.NewPrometheusMetricsBuilder(prometheusRegistry, "rating", "")
		metricsBuilder = &builder
	}
	return &RatingRouter{
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
// router held by the RatingRouter.
func (r *RatingRouter) Configure(routerCtx context.Context, service ratingservice.Service, ratingMetrics ratingmetrics.RatingMetrics) error {
	if r.metricsEnabled && r.metricsBuilder != nil {
		r.metricsBuilder.AddPrometheusRouterMetrics(r.Router)
	}

	handlers := ratinghandlers.NewRatingHandlers(service, r.logger, r.tracer, ratingMetrics)

	r.Router.AddMiddleware(
		middleware.CorrelationID,
		r.middlewareHelper.CommonMetadataMiddleware("rating"),
		middleware.Recoverer,
		middleware.Retry{MaxRetries: 3}.Middleware,
	)

	return r.RegisterHandlers(routerCtx, handlers)
}

// RegisterHandlers subscribes each topic and publishes handler results to
// the topic each result message carries in its metadata.
func (r *RatingRouter) RegisterHandlers(ctx context.Context, handlers ratinghandlers.Handlers) error {
	eventsToHandlers := map[string]message.HandlerFunc{
		sharedevents.MatchCompletedV1: utils.WrapHandler("HandleMatchCompleted", r.logger, r.tracer, handlers.HandleMatchCompleted),
	}

	for topic, handlerFunc := range eventsToHandlers {
		handlerName := fmt.Sprintf("rating.%s", topic)
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

func (r *RatingRouter) Close() error {
	return r.Router.Close()
}
