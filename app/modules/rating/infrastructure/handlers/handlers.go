package ratinghandlers

import (
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	ratingservice "github.com/sideout-club/sideout-backend/app/modules/rating/application"
	"github.com/sideout-club/sideout-backend/app/shared/metrics/ratingmetrics"
)

// RatingHandlers handles rating pipeline events.
type RatingHandlers struct {
	service ratingservice.Service
	logger  *slog.Logger
	tracer  trace.Tracer
	metrics ratingmetrics.RatingMetrics
}

// NewRatingHandlers creates a new RatingHandlers.
func NewRatingHandlers(
	service ratingservice.Service,
	logger *slog.Logger,
	tracer trace.Tracer,
	metrics ratingmetrics.RatingMetrics,
) *RatingHandlers {
	return &RatingHandlers{
		service: service,
		logger:  logger,
		tracer:  tracer,
		metrics: metrics,
	}
}
