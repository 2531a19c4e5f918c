package statsservice

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	statsdb "github.com/sideout-club/sideout-backend/app/modules/stats/infrastructure/repositories"
	"github.com/sideout-club/sideout-backend/app/shared/attr"
	"github.com/sideout-club/sideout-backend/app/shared/metrics/statsmetrics"
	"github.com/sideout-club/sideout-backend/app/shared/results"
)

// StatsService implements the Service interface.
type StatsService struct {
	repo            statsdb.Repository
	logger          *slog.Logger
	metrics         statsmetrics.StatsMetrics
	tracer          trace.Tracer
	db              *bun.DB
	recentLimit     int
	nemesisMinGames int

	// Nemesis recomputes fan out one per head-to-head event; the limiter
	// keeps a burst of finished matches from hammering the players table.
	nemesisLimiter *rate.Limiter
}

// NewStatsService creates a new StatsService.
func NewStatsService(
	repo statsdb.Repository,
	logger *slog.Logger,
	metrics statsmetrics.StatsMetrics,
	tracer trace.Tracer,
	db *bun.DB,
	recentLimit int,
	nemesisMinGames int,
) *StatsService {
	return &StatsService{
		repo:            repo,
		logger:          logger,
		metrics:         metrics,
		tracer:          tracer,
		db:              db,
		recentLimit:     recentLimit,
		nemesisMinGames: nemesisMinGames,
		nemesisLimiter:  rate.NewLimiter(rate.Limit(50), 100),
	}
}

// operationFunc is the generic signature for service operation functions.
type operationFunc[S any, F any] func(ctx context.Context) (results.OperationResult[S, F], error)

// withTelemetry wraps a service operation with tracing, metrics, and panic recovery.
func withTelemetry[S any, F any](
	s *StatsService,
	ctx context.Context,
	operationName string,
	subject string,
	op operationFunc[S, F],
) (result results.OperationResult[S, F], err error) {

	ctx, span := s.tracer.Start(ctx, operationName, trace.WithAttributes(
		attribute.String("operation", operationName),
		attribute.String("subject", subject),
	))
	defer span.End()

	s.metrics.RecordOperationAttempt(ctx, operationName, subject)

	startTime := time.Now()
	defer func() {
		s.metrics.RecordOperationDuration(ctx, operationName, time.Since(startTime))
	}()

	s.logger.InfoContext(ctx, operationName+" triggered",
		attr.String("operation", operationName),
		attr.String("subject", subject),
		attr.ExtractCorrelationID(ctx),
	)

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", operationName, r)
			s.logger.ErrorContext(ctx, "Critical panic recovered",
				attr.String("subject", subject),
				attr.ExtractCorrelationID(ctx),
				attr.Error(err),
			)
			s.metrics.RecordOperationFailure(ctx, operationName, subject)
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
			attr.String("subject", subject),
			attr.Error(wrappedErr),
		)
		s.metrics.RecordOperationFailure(ctx, operationName, subject)
		span.RecordError(wrappedErr)
		return result, wrappedErr
	}

	if result.IsFailure() {
		s.logger.WarnContext(ctx, "Operation returned failure result",
			attr.ExtractCorrelationID(ctx),
			attr.String("operation", operationName),
			attr.String("subject", subject),
			attr.Any("failure_payload", *result.Failure),
		)
	}

	if result.IsSuccess() {
		s.logger.InfoContext(ctx, operationName+" completed successfully",
			attr.String("operation", operationName),
			attr.String("subject", subject),
			attr.ExtractCorrelationID(ctx),
		)
		s.metrics.RecordOperationSuccess(ctx, operationName, subject)
	}

	return result, nil
}

// runInTx runs one unit of work in its own transaction. The stats relay
// calls it once per pairing so a single bad aggregate cannot roll back
// the others.
func (s *StatsService) runInTx(ctx context.Context, fn func(ctx context.Context, db bun.IDB) error) error {
	if s.db == nil {
		return fn(ctx, nil)
	}
	return s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		return fn(ctx, tx)
	})
}

// database returns the root handle for reads that need no transaction.
func (s *StatsService) database() bun.IDB {
	if s.db == nil {
		return nil
	}
	return s.db
}
