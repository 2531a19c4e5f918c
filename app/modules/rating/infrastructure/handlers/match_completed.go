package ratinghandlers

import (
	"context"
	"errors"
	"time"

	"github.com/sideout-club/sideout-backend/app/shared/attr"
	sharedevents "github.com/sideout-club/sideout-backend/app/shared/events"
	sharedtypes "github.com/sideout-club/sideout-backend/app/shared/types"
	"github.com/sideout-club/sideout-backend/app/shared/utils"
)

// HandleMatchCompleted reacts to a match status transition. It runs the
// rating engine and, once rating effects are committed, emits the event
// that drives the statistics stage.
//
// Redeliveries are safe: an already-rated match short-circuits inside the
// service transaction, and the rated event is re-emitted so a crash
// between commit and publish cannot strand the pipeline.
func (h *RatingHandlers) HandleMatchCompleted(
	ctx context.Context,
	payload *sharedevents.MatchCompletedPayloadV1,
) ([]utils.Result, error) {
	if payload == nil {
		return nil, errors.New("payload is nil")
	}

	h.metrics.RecordHandlerAttempt(ctx, "HandleMatchCompleted")
	start := time.Now()
	defer func() {
		h.metrics.RecordHandlerDuration(ctx, "HandleMatchCompleted", time.Since(start))
	}()

	// Only the transition into completed triggers rating. Other status
	// writes reaching this topic are ignored.
	if payload.NewStatus != sharedtypes.MatchStatusCompleted {
		h.logger.InfoContext(ctx, "Ignoring non-completion status change",
			attr.ExtractCorrelationID(ctx),
			attr.MatchID("match_id", payload.MatchID),
			attr.String("new_status", string(payload.NewStatus)),
		)
		h.metrics.RecordHandlerSuccess(ctx, "HandleMatchCompleted")
		return nil, nil
	}

	result, err := h.service.ProcessMatchRatings(ctx, payload.MatchID)
	if err != nil {
		h.metrics.RecordHandlerFailure(ctx, "HandleMatchCompleted")
		return nil, err
	}

	if result.IsFailure() {
		// Business failures are terminal: the match can never be rated as
		// written, so retrying would only redeliver the same failure.
		h.logger.WarnContext(ctx, "Match rejected by rating engine",
			attr.ExtractCorrelationID(ctx),
			attr.MatchID("match_id", payload.MatchID),
			attr.String("reason", result.Failure.Reason),
		)
		h.metrics.RecordHandlerSuccess(ctx, "HandleMatchCompleted")
		return nil, nil
	}

	success := *result.Success
	if success.AlreadyRated && success.State.StatsProcessed() {
		// The whole pipeline already finished for this match.
		h.metrics.RecordHandlerSuccess(ctx, "HandleMatchCompleted")
		return nil, nil
	}

	h.metrics.RecordHandlerSuccess(ctx, "HandleMatchCompleted")
	return []utils.Result{
		{
			Topic: sharedevents.MatchRatingCalculatedV1,
			Payload: &sharedevents.MatchRatingCalculatedPayloadV1{
				MatchID:      success.MatchID,
				Participants: success.Participants,
				OccurredAt:   time.Now().UTC(),
			},
		},
	}, nil
}
