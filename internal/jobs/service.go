// Package jobs runs the background queue. Its one standing job is the
// pipeline reconciliation sweep, which re-drives matches that completed
// but never made it through rating or statistics.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"

	statsservice "github.com/sideout-club/sideout-backend/app/modules/stats/application"
	"github.com/sideout-club/sideout-backend/app/shared/attr"
	"github.com/sideout-club/sideout-backend/app/shared/metrics/statsmetrics"
	"github.com/sideout-club/sideout-backend/config"
)

// Service owns the River client and its pgx pool. River needs pgx
// directly; the bun connection the repositories use cannot drive it.
type Service struct {
	client  *river.Client[pgx.Tx]
	pool    *pgxpool.Pool
	logger  *slog.Logger
	metrics statsmetrics.StatsMetrics
}

// NewService builds the River client with the reconciliation worker
// registered and the sweep scheduled at cfg.Jobs.ReconcileInterval.
func NewService(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	metrics statsmetrics.StatsMetrics,
	statsService statsservice.Service,
	publisher message.Publisher,
) (*Service, error) {
	ctxLogger := logger.With(attr.String("component", "river_queue"))

	poolConfig, err := pgxpool.ParseConfig(cfg.Postgres.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	workers := river.NewWorkers()
	river.AddWorker(workers, NewReconcileWorker(statsService, publisher, ctxLogger, cfg.Jobs.ReconcileAfter))

	client, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: 10},
		},
		Workers: workers,
		PeriodicJobs: []*river.PeriodicJob{
			river.NewPeriodicJob(
				river.PeriodicInterval(cfg.Jobs.ReconcileInterval),
				func() (river.JobArgs, *river.InsertOpts) {
					return ReconcileArgs{}, nil
				},
				&river.PeriodicJobOpts{RunOnStart: true},
			),
		},
	})
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create River client: %w", err)
	}

	ctxLogger.InfoContext(ctx, "Queue service initialized",
		attr.String("reconcile_interval", cfg.Jobs.ReconcileInterval.String()),
		attr.String("reconcile_after", cfg.Jobs.ReconcileAfter.String()),
	)

	return &Service{
		client:  client,
		pool:    pool,
		logger:  ctxLogger,
		metrics: metrics,
	}, nil
}

func (s *Service) Start(ctx context.Context) error {
	start := time.Now()
	s.metrics.RecordOperationAttempt(ctx, "start_queue", "river")

	if err := s.client.Start(ctx); err != nil {
		s.metrics.RecordOperationFailure(ctx, "start_queue", "river")
		return fmt.Errorf("failed to start River client: %w", err)
	}

	s.metrics.RecordOperationSuccess(ctx, "start_queue", "river")
	s.metrics.RecordOperationDuration(ctx, "start_queue", time.Since(start))
	s.logger.InfoContext(ctx, "Queue service started")
	return nil
}

// Stop drains in-flight jobs, then closes the pool.
func (s *Service) Stop(ctx context.Context) error {
	if err := s.client.Stop(ctx); err != nil {
		s.pool.Close()
		return fmt.Errorf("failed to stop River client: %w", err)
	}
	s.pool.Close()
	s.logger.InfoContext(ctx, "Queue service stopped")
	return nil
}
