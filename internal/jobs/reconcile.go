package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/riverqueue/river"

	statsservice "github.com/sideout-club/sideout-backend/app/modules/stats/application"
	"github.com/sideout-club/sideout-backend/app/shared/attr"
	sharedevents "github.com/sideout-club/sideout-backend/app/shared/events"
	sharedtypes "github.com/sideout-club/sideout-backend/app/shared/types"
	"github.com/sideout-club/sideout-backend/app/shared/utils"
)

const reconcileBatchLimit = 100

// ReconcileArgs is the periodic job that sweeps for stalled matches.
type ReconcileArgs struct{}

func (ReconcileArgs) Kind() string { return "pipeline_reconcile" }

// ReconcileWorker re-drives matches whose pipeline stalled. Repairs go
// through the normal event topics, so the regular consumers and their
// idempotency guards do the actual work.
type ReconcileWorker struct {
	river.WorkerDefaults[ReconcileArgs]

	service   statsservice.Service
	publisher message.Publisher
	logger    *slog.Logger
	staleAge  time.Duration
}

func NewReconcileWorker(
	service statsservice.Service,
	publisher message.Publisher,
	logger *slog.Logger,
	staleAge time.Duration,
) *ReconcileWorker {
	return &ReconcileWorker{
		service:   service,
		publisher: publisher,
		logger:    logger,
		staleAge:  staleAge,
	}
}

func (w *ReconcileWorker) Work(ctx context.Context, job *river.Job[ReconcileArgs]) error {
	cutoff := time.Now().UTC().Add(-w.staleAge)

	report, err := w.service.ReconcileStuck(ctx, cutoff, reconcileBatchLimit)
	if err != nil {
		return fmt.Errorf("reconcile sweep failed: %w", err)
	}

	for _, stuck := range report.Redriven {
		topic, payload := redriveEvent(stuck)
		msg, err := utils.NewEvent(topic, payload)
		if err != nil {
			return err
		}
		if err := w.publisher.Publish(topic, msg); err != nil {
			return fmt.Errorf("failed to re-drive match %s: %w", stuck.MatchID, err)
		}
		w.logger.InfoContext(ctx, "Re-drove stalled match",
			attr.MatchID("match_id", stuck.MatchID),
			attr.String("pipeline_state", string(stuck.State)),
			attr.String("topic", topic),
		)
	}
	return nil
}

// redriveEvent picks the event that restarts the pipeline at the stage
// the match is stuck in.
func redriveEvent(stuck statsservice.StuckMatch) (string, any) {
	now := time.Now().UTC()
	if stuck.State == sharedtypes.PipelineStatePending {
		return sharedevents.MatchCompletedV1, &sharedevents.MatchCompletedPayloadV1{
			MatchID:        stuck.MatchID,
			PreviousStatus: sharedtypes.MatchStatusScheduled,
			NewStatus:      sharedtypes.MatchStatusCompleted,
			OccurredAt:     now,
		}
	}
	return sharedevents.MatchRatingCalculatedV1, &sharedevents.MatchRatingCalculatedPayloadV1{
		MatchID:    stuck.MatchID,
		OccurredAt: now,
	}
}
