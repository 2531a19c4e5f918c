package statshandlers

import (
	"context"
	"errors"
	"time"

	"github.com/sideout-club/sideout-backend/app/shared/attr"
	sharedevents "github.com/sideout-club/sideout-backend/app/shared/events"
	"github.com/sideout-club/sideout-backend/app/shared/utils"
)

// HandleMatchRatingCalculated runs the stats relay for a rated match and
// emits one head-to-head event per aggregate that changed, which drives
// the nemesis recomputes downstream.
func (h *StatsHandlers) HandleMatchRatingCalculated(
	ctx context.Context,
	payload *sharedevents.MatchRatingCalculatedPayloadV1,
) ([]utils.Result, error) {
	if payload == nil {
		return nil, errors.New("payload is nil")
	}

	h.metrics.RecordHandlerAttempt(ctx, "HandleMatchRatingCalculated")
	start := time.Now()
	defer func() {
		h.metrics.RecordHandlerDuration(ctx, "HandleMatchRatingCalculated", time.Since(start))
	}()

	result, err := h.service.ProcessMatchStats(ctx, payload.MatchID)
	if err != nil {
		// Includes partial pairing failures: redelivery retries only what
		// is missing thanks to per-aggregate idempotency.
		h.metrics.RecordHandlerFailure(ctx, "HandleMatchRatingCalculated")
		return nil, err
	}

	if result.IsFailure() {
		h.logger.WarnContext(ctx, "Match rejected by stats relay",
			attr.ExtractCorrelationID(ctx),
			attr.MatchID("match_id", payload.MatchID),
			attr.String("reason", result.Failure.Reason),
		)
		h.metrics.RecordHandlerSuccess(ctx, "HandleMatchRatingCalculated")
		return nil, nil
	}

	success := *result.Success
	h.metrics.RecordHandlerSuccess(ctx, "HandleMatchRatingCalculated")

	now := time.Now().UTC()
	out := make([]utils.Result, 0, len(success.UpdatedPairings))
	for _, pairing := range success.UpdatedPairings {
		out = append(out, utils.Result{
			Topic: sharedevents.HeadToHeadUpdatedV1,
			Payload: &sharedevents.HeadToHeadUpdatedPayloadV1{
				PlayerID:   pairing.PlayerID,
				OpponentID: pairing.OpponentID,
				MatchID:    success.MatchID,
				OccurredAt: now,
			},
		})
	}
	return out, nil
}
