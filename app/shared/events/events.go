// Package sharedevents defines the versioned topics and payloads exchanged
// between pipeline stages. Topics are NATS subjects; the first token names
// the JetStream stream they live on.
package sharedevents

import (
	"time"

	sharedtypes "github.com/sideout-club/sideout-backend/app/shared/types"
)

const (
	// MatchCompletedV1 is published by the app surface when a match's
	// status transitions into completed. Delivery is at least once.
	MatchCompletedV1 = "match.completed.v1"

	// MatchRatingCalculatedV1 is published by the rating module after its
	// transaction commits with the pipeline state advanced to rated.
	MatchRatingCalculatedV1 = "match.rating.calculated.v1"

	// HeadToHeadUpdatedV1 is published by the stats module after each
	// head-to-head aggregate commit.
	HeadToHeadUpdatedV1 = "stats.headtohead.updated.v1"
)

// MatchCompletedPayloadV1 carries the status transition observed by the
// app surface. Consumers re-read the match row; the payload is a trigger,
// not a snapshot.
type MatchCompletedPayloadV1 struct {
	MatchID        sharedtypes.MatchID     `json:"matchId"`
	PreviousStatus sharedtypes.MatchStatus `json:"previousStatus"`
	NewStatus      sharedtypes.MatchStatus `json:"newStatus"`
	OccurredAt     time.Time               `json:"occurredAt"`
}

// MatchRatingCalculatedPayloadV1 signals that rating effects for a match
// are committed and statistics aggregation may begin.
type MatchRatingCalculatedPayloadV1 struct {
	MatchID      sharedtypes.MatchID `json:"matchId"`
	Participants int                 `json:"participants"`
	OccurredAt   time.Time           `json:"occurredAt"`
}

// HeadToHeadUpdatedPayloadV1 signals that one head-to-head aggregate
// changed and the owner's nemesis summary should be recomputed.
type HeadToHeadUpdatedPayloadV1 struct {
	PlayerID   sharedtypes.PlayerID `json:"playerId"`
	OpponentID sharedtypes.PlayerID `json:"opponentId"`
	MatchID    sharedtypes.MatchID  `json:"matchId"`
	OccurredAt time.Time            `json:"occurredAt"`
}
