package statsmetrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusMetrics implements StatsMetrics over a prometheus registry.
type PrometheusMetrics struct {
	operationAttempts  *prometheus.CounterVec
	operationSuccesses *prometheus.CounterVec
	operationFailures  *prometheus.CounterVec
	operationDuration  *prometheus.HistogramVec
	pairingSuccesses   *prometheus.CounterVec
	pairingFailures    *prometheus.CounterVec
	statsComplete      prometheus.Counter
	statsIncomplete    prometheus.Counter
	nemesisAssigned    prometheus.Counter
	nemesisCleared     prometheus.Counter
	reconcileSweeps    prometheus.Counter
	reconcileRedriven  prometheus.Counter
	handlerAttempts    *prometheus.CounterVec
	handlerSuccesses   *prometheus.CounterVec
	handlerFailures    *prometheus.CounterVec
	handlerDuration    *prometheus.HistogramVec
}

// NewPrometheusMetrics registers stats collectors on the given registry.
func NewPrometheusMetrics(registerer prometheus.Registerer) *PrometheusMetrics {
	m := &PrometheusMetrics{
		operationAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stats_operation_attempts_total",
			Help: "Total stats service operation attempts.",
		}, []string{"operation"}),
		operationSuccesses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stats_operation_successes_total",
			Help: "Total stats service operations that succeeded.",
		}, []string{"operation"}),
		operationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stats_operation_failures_total",
			Help: "Total stats service operations that failed.",
		}, []string{"operation"}),
		operationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "stats_operation_duration_seconds",
			Help:    "Duration of stats service operations.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		pairingSuccesses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stats_pairing_successes_total",
			Help: "Total pairing aggregate updates that committed.",
		}, []string{"kind"}),
		pairingFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stats_pairing_failures_total",
			Help: "Total pairing aggregate updates that failed and were deferred.",
		}, []string{"kind"}),
		statsComplete: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stats_matches_completed_total",
			Help: "Total matches whose statistics fully committed.",
		}),
		statsIncomplete: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stats_matches_incomplete_total",
			Help: "Total stats runs left incomplete for the reconcile sweep.",
		}),
		nemesisAssigned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stats_nemesis_assigned_total",
			Help: "Total nemesis recomputes that assigned an opponent.",
		}),
		nemesisCleared: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stats_nemesis_cleared_total",
			Help: "Total nemesis recomputes that cleared the summary.",
		}),
		reconcileSweeps: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stats_reconcile_sweeps_total",
			Help: "Total reconciliation sweeps executed.",
		}),
		reconcileRedriven: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stats_reconcile_redriven_total",
			Help: "Total stuck matches re-driven by the reconciliation sweep.",
		}),
		handlerAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stats_handler_attempts_total",
			Help: "Total stats handler invocations.",
		}, []string{"handler"}),
		handlerSuccesses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stats_handler_successes_total",
			Help: "Total stats handler invocations that succeeded.",
		}, []string{"handler"}),
		handlerFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stats_handler_failures_total",
			Help: "Total stats handler invocations that failed.",
		}, []string{"handler"}),
		handlerDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "stats_handler_duration_seconds",
			Help:    "Duration of stats handler invocations.",
			Buckets: prometheus.DefBuckets,
		}, []string{"handler"}),
	}

	registerer.MustRegister(
		m.operationAttempts,
		m.operationSuccesses,
		m.operationFailures,
		m.operationDuration,
		m.pairingSuccesses,
		m.pairingFailures,
		m.statsComplete,
		m.statsIncomplete,
		m.nemesisAssigned,
		m.nemesisCleared,
		m.reconcileSweeps,
		m.reconcileRedriven,
		m.handlerAttempts,
		m.handlerSuccesses,
		m.handlerFailures,
		m.handlerDuration,
	)

	return m
}

func (m *PrometheusMetrics) RecordOperationAttempt(ctx context.Context, operationName, subject string) {
	m.operationAttempts.WithLabelValues(operationName).Inc()
}

func (m *PrometheusMetrics) RecordOperationSuccess(ctx context.Context, operationName, subject string) {
	m.operationSuccesses.WithLabelValues(operationName).Inc()
}

func (m *PrometheusMetrics) RecordOperationFailure(ctx context.Context, operationName, subject string) {
	m.operationFailures.WithLabelValues(operationName).Inc()
}

func (m *PrometheusMetrics) RecordOperationDuration(ctx context.Context, operationName string, duration time.Duration) {
	m.operationDuration.WithLabelValues(operationName).Observe(duration.Seconds())
}

func (m *PrometheusMetrics) RecordPairingSuccess(ctx context.Context, kind string) {
	m.pairingSuccesses.WithLabelValues(kind).Inc()
}

func (m *PrometheusMetrics) RecordPairingFailure(ctx context.Context, kind string) {
	m.pairingFailures.WithLabelValues(kind).Inc()
}

func (m *PrometheusMetrics) RecordStatsComplete(ctx context.Context) {
	m.statsComplete.Inc()
}

func (m *PrometheusMetrics) RecordStatsIncomplete(ctx context.Context) {
	m.statsIncomplete.Inc()
}

func (m *PrometheusMetrics) RecordNemesisAssigned(ctx context.Context) {
	m.nemesisAssigned.Inc()
}

func (m *PrometheusMetrics) RecordNemesisCleared(ctx context.Context) {
	m.nemesisCleared.Inc()
}

func (m *PrometheusMetrics) RecordReconcileSweep(ctx context.Context, redriven int) {
	m.reconcileSweeps.Inc()
	m.reconcileRedriven.Add(float64(redriven))
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
