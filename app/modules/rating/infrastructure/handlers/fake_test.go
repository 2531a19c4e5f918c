package ratinghandlers

import (
	"context"

	ratingservice "github.com/sideout-club/sideout-backend/app/modules/rating/application"
	sharedtypes "github.com/sideout-club/sideout-backend/app/shared/types"
)

// FakeRatingService provides a programmable stub for the application
// Service interface.
type FakeRatingService struct {
	Calls []sharedtypes.MatchID

	ProcessMatchRatingsFunc func(ctx context.Context, matchID sharedtypes.MatchID) (ratingservice.MatchRatingsResult, error)
}

func (f *FakeRatingService) ProcessMatchRatings(ctx context.Context, matchID sharedtypes.MatchID) (ratingservice.MatchRatingsResult, error) {
	f.Calls = append(f.Calls, matchID)
	if f.ProcessMatchRatingsFunc != nil {
		return f.ProcessMatchRatingsFunc(ctx, matchID)
	}
	return ratingservice.MatchRatingsResult{}, nil
}

var _ ratingservice.Service = (*FakeRatingService)(nil)
