package ratingservice

import (
	"context"

	"github.com/sideout-club/sideout-backend/app/shared/results"
	sharedtypes "github.com/sideout-club/sideout-backend/app/shared/types"
)

// MatchRatingsSuccess reports the committed outcome of a rating run.
// AlreadyRated is set when the match had been processed before; the run
// changed nothing and Updates carries the previously committed changes.
type MatchRatingsSuccess struct {
	MatchID       sharedtypes.MatchID
	State         sharedtypes.PipelineState
	AlreadyRated  bool
	Draw          bool
	Winner        *sharedtypes.TeamSide
	Updates       map[sharedtypes.PlayerID]sharedtypes.RatingChange
	Participants  int
	SubgamesRated int
}

// MatchRatingsFailure reports a business failure. The match stays in its
// current pipeline state and the trigger must not be retried.
type MatchRatingsFailure struct {
	MatchID sharedtypes.MatchID
	Reason  string
}

// MatchRatingsResult is the envelope returned by ProcessMatchRatings.
type MatchRatingsResult = results.OperationResult[MatchRatingsSuccess, MatchRatingsFailure]

// Service is the rating module's application surface.
type Service interface {
	// ProcessMatchRatings applies the full rating effects of one completed
	// match in a single transaction, exactly once per match.
	ProcessMatchRatings(ctx context.Context, matchID sharedtypes.MatchID) (MatchRatingsResult, error)
}
