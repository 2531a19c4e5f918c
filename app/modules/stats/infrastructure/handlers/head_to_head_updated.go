package statshandlers

import (
	"context"
	"errors"
	"time"

	"github.com/sideout-club/sideout-backend/app/shared/attr"
	sharedevents "github.com/sideout-club/sideout-backend/app/shared/events"
	"github.com/sideout-club/sideout-backend/app/shared/utils"
)

// HandleHeadToHeadUpdated recomputes the owning player's nemesis summary
// whenever one of their opponent aggregates changes. The recompute is a
// full rederivation, so redeliveries and reordering are harmless.
func (h *StatsHandlers) HandleHeadToHeadUpdated(
	ctx context.Context,
	payload *sharedevents.HeadToHeadUpdatedPayloadV1,
) ([]utils.Result, error) {
	if payload == nil {
		return nil, errors.New("payload is nil")
	}

	h.metrics.RecordHandlerAttempt(ctx, "HandleHeadToHeadUpdated")
	start := time.Now()
	defer func() {
		h.metrics.RecordHandlerDuration(ctx, "HandleHeadToHeadUpdated", time.Since(start))
	}()

	result, err := h.service.RecomputeNemesis(ctx, payload.PlayerID)
	if err != nil {
		h.metrics.RecordHandlerFailure(ctx, "HandleHeadToHeadUpdated")
		return nil, err
	}

	if result.IsFailure() {
		h.logger.WarnContext(ctx, "Nemesis recompute rejected",
			attr.ExtractCorrelationID(ctx),
			attr.PlayerID("player_id", payload.PlayerID),
			attr.String("reason", result.Failure.Reason),
		)
	}

	h.metrics.RecordHandlerSuccess(ctx, "HandleHeadToHeadUpdated")
	return nil, nil
}
