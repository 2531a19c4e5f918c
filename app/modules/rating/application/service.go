package ratingservice

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	ratingdb "github.com/sideout-club/sideout-backend/app/modules/rating/infrastructure/repositories"
	"github.com/sideout-club/sideout-backend/app/shared/attr"
	"github.com/sideout-club/sideout-backend/app/shared/metrics/ratingmetrics"
	"github.com/sideout-club/sideout-backend/app/shared/results"
	sharedtypes "github.com/sideout-club/sideout-backend/app/shared/types"
	"github.com/sideout-club/sideout-backend/pkg/elo"
)

// RatingService implements the Service interface.
type RatingService struct {
	repo        ratingdb.Repository
	logger      *slog.Logger
	metrics     ratingmetrics.RatingMetrics
	tracer      trace.Tracer
	db          *bun.DB
	params      elo.Params
	recentLimit int
}

// NewRatingService creates a new RatingService.
func NewRatingService(
	repo ratingdb.Repository,
	logger *slog.Logger,
	metrics ratingmetrics.RatingMetrics,
	tracer trace.Tracer,
	db *bun.DB,
	params elo.Params,
	recentLimit int,
) *RatingService {
	return &RatingService{
		repo:        repo,
		logger:      logger,
		metrics:     metrics,
		tracer:      tracer,
		db:          db,
		params:      params,
		recentLimit: recentLimit,
	}
}

// operationFunc is the generic signature for service operation functions.
type operationFunc[S any, F any] func(ctx context.Context) (results.OperationResult[S, F], error)

// withTelemetry wraps a service operation with tracing, metrics, and panic recovery.
func withTelemetry[S any, F any](
	s *RatingService,
	ctx context.Context,
	operationName string,
	matchID sharedtypes.MatchID,
	op operationFunc[S, F],
) (result results.OperationResult[S, F], err error) {

	ctx, span := s.tracer.Start(ctx, operationName, trace.WithAttributes(
		attribute.String("operation", operationName),
		attribute.String("match_id", matchID.String()),
	))
	defer span.End()

	s.metrics.RecordOperationAttempt(ctx, operationName, matchID)

	startTime := time.Now()
	defer func() {
		s.metrics.RecordOperationDuration(ctx, operationName, time.Since(startTime))
	}()

	s.logger.InfoContext(ctx, operationName+" triggered",
		attr.String("operation", operationName),
		attr.MatchID("match_id", matchID),
		attr.ExtractCorrelationID(ctx),
	)

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", operationName, r)
			s.logger.ErrorContext(ctx, "Critical panic recovered",
				attr.MatchID("match_id", matchID),
				attr.ExtractCorrelationID(ctx),
				attr.Error(err),
			)
			s.metrics.RecordOperationFailure(ctx, operationName, matchID)
			span.RecordError(err)
			result = results.OperationResult[S, F]{}
		}
	}()

	result, err = op(ctx)

	if err != nil {
		wrappedErr := fmt.Errorf("%s: %w", operationName, err)
		s.logger.ErrorContext(ctx, "Operation failed with error",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.MatchID("match_id", matchID),
			attr.Error(wrappedErr),
		)
		s.metrics.RecordOperationFailure(ctx, operationName, matchID)
		span.RecordError(wrappedErr)
		return result, wrappedErr
	}

	if result.IsFailure() {
		s.logger.WarnContext(ctx, "Operation returned failure result",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.MatchID("match_id", matchID),
			attr.Any("failure_payload", *result.Failure),
		)
	}

	if result.IsSuccess() {
		s.logger.InfoContext(ctx, operationName+" completed successfully",
			attr.String("operation", operationName),
			attr.MatchID("match_id", matchID),
			attr.ExtractCorrelationID(ctx),
		)
		s.metrics.RecordOperationSuccess(ctx, operationName, matchID)
	}

	return result, nil
}

// runInTx ensures the operation runs within a transaction.
func runInTx[S any, F any](
	s *RatingService,
	ctx context.Context,
	fn func(ctx context.Context, db bun.IDB) (results.OperationResult[S, F], error),
) (results.OperationResult[S, F], error) {
	if s.db == nil {
		return fn(ctx, nil)
	}

	var result results.OperationResult[S, F]
	err := s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		var txErr error
		result, txErr = fn(ctx, tx)
		return txErr
	})

	return result, err
}
