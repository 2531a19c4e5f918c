package statsmetrics

import (
	"context"
	"time"
)

// NoOpMetrics discards all measurements. Useful in tests.
type NoOpMetrics struct{}

func NewNoop() *NoOpMetrics { return &NoOpMetrics{} }

func (NoOpMetrics) RecordOperationAttempt(ctx context.Context, operationName, subject string) {}

func (NoOpMetrics) RecordOperationSuccess(ctx context.Context, operationName, subject string) {}

func (NoOpMetrics) RecordOperationFailure(ctx context.Context, operationName, subject string) {}

func (NoOpMetrics) RecordOperationDuration(ctx context.Context, operationName string, duration time.Duration) {
}

func (NoOpMetrics) RecordPairingSuccess(ctx context.Context, kind string) {}

func (NoOpMetrics) RecordPairingFailure(ctx context.Context, kind string) {}

func (NoOpMetrics) RecordStatsComplete(ctx context.Context) {}

func (NoOpMetrics) RecordStatsIncomplete(ctx context.Context) {}

func (NoOpMetrics) RecordNemesisAssigned(ctx context.Context) {}

func (NoOpMetrics) RecordNemesisCleared(ctx context.Context) {}

func (NoOpMetrics) RecordReconcileSweep(ctx context.Context, redriven int) {}

func (NoOpMetrics) RecordHandlerAttempt(ctx context.Context, handlerName string) {}

func (NoOpMetrics) RecordHandlerSuccess(ctx context.Context, handlerName string) {}

func (NoOpMetrics) RecordHandlerFailure(ctx context.Context, handlerName string) {}

func (NoOpMetrics) RecordHandlerDuration(ctx context.Context, handlerName string, duration time.Duration) {
}
