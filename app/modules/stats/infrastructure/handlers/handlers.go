package statshandlers

import (
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	statsservice "github.com/sideout-club/sideout-backend/app/modules/stats/application"
	"github.com/sideout-club/sideout-backend/app/shared/metrics/statsmetrics"
)

// StatsHandlers handles statistics pipeline events.
type StatsHandlers struct {
	service statsservice.Service
	logger  *slog.Logger
	tracer  trace.Tracer
	metrics statsmetrics.StatsMetrics
}

// NewStatsHandlers creates a new StatsHandlers.
func NewStatsHandlers(
	service statsservice.Service,
	logger *slog.Logger,
	tracer trace.Tracer,
	metrics statsmetrics.StatsMetrics,
) *StatsHandlers {
	return &StatsHandlers{
		service: service,
		logger:  logger,
		tracer:  tracer,
		metrics: metrics,
	}
}
