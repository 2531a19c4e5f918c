package statsmetrics

import (
	"context"
	"time"
)

// StatsMetrics records telemetry for stats relay and nemesis operations.
type StatsMetrics interface {
	RecordOperationAttempt(ctx context.Context, operationName, subject string)
	RecordOperationSuccess(ctx context.Context, operationName, subject string)
	RecordOperationFailure(ctx context.Context, operationName, subject string)
	RecordOperationDuration(ctx context.Context, operationName string, duration time.Duration)
	RecordPairingSuccess(ctx context.Context, kind string)
	RecordPairingFailure(ctx context.Context, kind string)
	RecordStatsComplete(ctx context.Context)
	RecordStatsIncomplete(ctx context.Context)
	RecordNemesisAssigned(ctx context.Context)
	RecordNemesisCleared(ctx context.Context)
	RecordReconcileSweep(ctx context.Context, redriven int)
	RecordHandlerAttempt(ctx context.Context, handlerName string)
	RecordHandlerSuccess(ctx context.Context, handlerName string)
	RecordHandlerFailure(ctx context.Context, handlerName string)
	RecordHandlerDuration(ctx context.Context, handlerName string, duration time.Duration)
}
