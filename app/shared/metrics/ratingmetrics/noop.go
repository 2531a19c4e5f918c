package ratingmetrics

import (
	"context"
	"time"

	sharedtypes "github.com/sideout-club/sideout-backend/app/shared/types"
)

// NoOpMetrics discards all measurements. Useful in tests.
type NoOpMetrics struct{}

func NewNoop() *NoOpMetrics { return &NoOpMetrics{} }

func (NoOpMetrics) RecordOperationAttempt(ctx context.Context, operationName string, matchID sharedtypes.MatchID) {
}

func (NoOpMetrics) RecordOperationSuccess(ctx context.Context, operationName string, matchID sharedtypes.MatchID) {
}

func (NoOpMetrics) RecordOperationFailure(ctx context.Context, operationName string, matchID sharedtypes.MatchID) {
}

func (NoOpMetrics) RecordOperationDuration(ctx context.Context, operationName string, duration time.Duration) {
}

func (NoOpMetrics) RecordMatchRated(ctx context.Context, subgameCount int) {}

func (NoOpMetrics) RecordRatingDelta(ctx context.Context, delta int) {}

func (NoOpMetrics) RecordDuplicateSkipped(ctx context.Context) {}

func (NoOpMetrics) RecordHandlerAttempt(ctx context.Context, handlerName string) {}

func (NoOpMetrics) RecordHandlerSuccess(ctx context.Context, handlerName string) {}

func (NoOpMetrics) RecordHandlerFailure(ctx context.Context, handlerName string) {}

func (NoOpMetrics) RecordHandlerDuration(ctx context.Context, handlerName string, duration time.Duration) {
}
