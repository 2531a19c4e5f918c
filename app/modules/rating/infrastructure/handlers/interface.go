package ratinghandlers

import (
	"context"

	sharedevents "github.com/sideout-club/sideout-backend/app/shared/events"
	"github.com/sideout-club/sideout-backend/app/shared/utils"
)

// Handlers defines the rating module's event handlers.
type Handlers interface {
	HandleMatchCompleted(ctx context.Context, payload *sharedevents.MatchCompletedPayloadV1) ([]utils.Result, error)
}
