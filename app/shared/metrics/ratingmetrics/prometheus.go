package ratingmetrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	sharedtypes "github.com/sideout-club/sideout-backend/app/shared/types"
)

// PrometheusMetrics implements RatingMetrics over a prometheus registry.
type PrometheusMetrics struct {
	operationAttempts  *prometheus.CounterVec
	operationSuccesses *prometheus.CounterVec
	operationFailures  *prometheus.CounterVec
	operationDuration  *prometheus.HistogramVec
	matchesRated       prometheus.Counter
	subgamesRated      prometheus.Counter
	ratingDelta        prometheus.Histogram
	duplicatesSkipped  prometheus.Counter
	handlerAttempts    *prometheus.CounterVec
	handlerSuccesses   *prometheus.CounterVec
	handlerFailures    *prometheus.CounterVec
	handlerDuration    *prometheus.HistogramVec
}

// NewPrometheusMetrics registers rating collectors on the given registry.
func NewPrometheusMetrics(registerer prometheus.Registerer) *PrometheusMetrics {
	m := &PrometheusMetrics{
		operationAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rating_operation_attempts_total",
			Help: "Total rating service operation attempts.",
		}, []string{"operation"}),
		operationSuccesses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rating_operation_successes_total",
			Help: "Total rating service operations that succeeded.",
		}, []string{"operation"}),
		operationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rating_operation_failures_total",
			Help: "Total rating service operations that failed.",
		}, []string{"operation"}),
		operationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "rating_operation_duration_seconds",
			Help:    "Duration of rating service operations.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		matchesRated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rating_matches_rated_total",
			Help: "Total matches whose ratings were applied.",
		}),
		subgamesRated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rating_subgames_rated_total",
			Help: "Total sub-games folded into rating updates.",
		}),
		ratingDelta: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "rating_delta_points",
			Help:    "Per-player net rating deltas applied per match.",
			Buckets: prometheus.LinearBuckets(-60, 10, 13),
		}),
		duplicatesSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rating_duplicate_triggers_skipped_total",
			Help: "Total rating triggers skipped because the match was already rated.",
		}),
		handlerAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rating_handler_attempts_total",
			Help: "Total rating handler invocations.",
		}, []string{"handler"}),
		handlerSuccesses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rating_handler_successes_total",
			Help: "Total rating handler invocations that succeeded.",
		}, []string{"handler"}),
		handlerFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rating_handler_failures_total",
			Help: "Total rating handler invocations that failed.",
		}, []string{"handler"}),
		handlerDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "rating_handler_duration_seconds",
			Help:    "Duration of rating handler invocations.",
			Buckets: prometheus.DefBuckets,
		}, []string{"handler"}),
	}

	registerer.MustRegister(
		m.operationAttempts,
		m.operationSuccesses,
		m.operationFailures,
		m.operationDuration,
		m.matchesRated,
		m.subgamesRated,
		m.ratingDelta,
		m.duplicatesSkipped,
		m.handlerAttempts,
		m.handlerSuccesses,
		m.handlerFailures,
		m.handlerDuration,
	)

	return m
}

func (m *PrometheusMetrics) RecordOperationAttempt(ctx context.Context, operationName string, matchID sharedtypes.MatchID) {
	m.operationAttempts.WithLabelValues(operationName).Inc()
}

func (m *PrometheusMetrics) RecordOperationSuccess(ctx context.Context, operationName string, matchID sharedtypes.MatchID) {
	m.operationSuccesses.WithLabelValues(operationName).Inc()
}

func (m *PrometheusMetrics) RecordOperationFailure(ctx context.Context, operationName string, matchID sharedtypes.MatchID) {
	m.operationFailures.WithLabelValues(operationName).Inc()
}

func (m *PrometheusMetrics) RecordOperationDuration(ctx context.Context, operationName string, duration time.Duration) {
	m.operationDuration.WithLabelValues(operationName).Observe(duration.Seconds())
}

func (m *PrometheusMetrics) RecordMatchRated(ctx context.Context, subgameCount int) {
	m.matchesRated.Inc()
	m.subgamesRated.Add(float64(subgameCount))
}

func (m *PrometheusMetrics) RecordRatingDelta(ctx context.Context, delta int) {
	m.ratingDelta.Observe(float64(delta))
}

func (m *PrometheusMetrics) RecordDuplicateSkipped(ctx context.Context) {
	m.duplicatesSkipped.Inc()
}

func (m *PrometheusMetrics) RecordHandlerAttempt(ctx context.Context, handlerName string) {
	m.handlerAttempts.WithLabelValues(handlerName).Inc()
}

func (m *PrometheusMetrics) RecordHandlerSuccess(ctx context.Context, handlerName string) {
	m.handlerSuccesses.WithLabelValues(handlerName).Inc()
}

func (m *PrometheusMetrics) RecordHandlerFailure(ctx context.Context, handlerName string) {
	m.handlerFailures.WithLabelValues(handlerName).Inc()
}

func (m *PrometheusMetrics) RecordHandlerDuration(ctx context.Context, handlerName string, duration time.Duration) {
	m.handlerDuration.WithLabelValues(handlerName).Observe(duration.Seconds())
}
