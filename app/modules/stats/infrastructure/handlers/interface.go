package statshandlers

import (
	"context"

	sharedevents "github.com/sideout-club/sideout-backend/app/shared/events"
	"github.com/sideout-club/sideout-backend/app/shared/utils"
)

// Handlers defines the stats module's event handlers.
type Handlers interface {
	HandleMatchRatingCalculated(ctx context.Context, payload *sharedevents.MatchRatingCalculatedPayloadV1) ([]utils.Result, error)
	HandleHeadToHeadUpdated(ctx context.Context, payload *sharedevents.HeadToHeadUpdatedPayloadV1) ([]utils.Result, error)
}
