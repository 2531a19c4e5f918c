package ratingmetrics

import (
	"context"
	"time"

	sharedtypes "github.com/sideout-club/sideout-backend/app/shared/types"
)

// RatingMetrics records telemetry for rating engine operations.
type RatingMetrics interface {
	RecordOperationAttempt(ctx context.Context, operationName string, matchID sharedtypes.MatchID)
	RecordOperationSuccess(ctx context.Context, operationName string, matchID sharedtypes.MatchID)
	RecordOperationFailure(ctx context.Context, operationName string, matchID sharedtypes.MatchID)
	RecordOperationDuration(ctx context.Context, operationName string, duration time.Duration)
	RecordMatchRated(ctx context.Context, subgameCount int)
	RecordRatingDelta(ctx context.Context, delta int)
	RecordDuplicateSkipped(ctx context.Context)
	RecordHandlerAttempt(ctx context.Context, handlerName string)
	RecordHandlerSuccess(ctx context.Context, handlerName string)
	RecordHandlerFailure(ctx context.Context, handlerName string)
	RecordHandlerDuration(ctx context.Context, handlerName string, duration time.Duration)
}
