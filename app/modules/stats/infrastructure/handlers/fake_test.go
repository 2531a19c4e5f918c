package statshandlers

import (
	"context"
	"time"

	statsservice "github.com/sideout-club/sideout-backend/app/modules/stats/application"
	sharedtypes "github.com/sideout-club/sideout-backend/app/shared/types"
)

// FakeStatsService provides a programmable stub for the application
// Service interface.
type FakeStatsService struct {
	StatsCalls   []sharedtypes.MatchID
	NemesisCalls []sharedtypes.PlayerID

	ProcessMatchStatsFunc func(ctx context.Context, matchID sharedtypes.MatchID) (statsservice.MatchStatsResult, error)
	RecomputeNemesisFunc  func(ctx context.Context, playerID sharedtypes.PlayerID) (statsservice.NemesisResult, error)
	ReconcileStuckFunc    func(ctx context.Context, updatedBefore time.Time, limit int) (*statsservice.ReconcileReport, error)
}

func (f *FakeStatsService) ProcessMatchStats(ctx context.Context, matchID sharedtypes.MatchID) (statsservice.MatchStatsResult, error) {
	f.StatsCalls = append(f.StatsCalls, matchID)
	if f.ProcessMatchStatsFunc != nil {
		return f.ProcessMatchStatsFunc(ctx, matchID)
	}
	return statsservice.MatchStatsResult{}, nil
}

func (f *FakeStatsService) RecomputeNemesis(ctx context.Context, playerID sharedtypes.PlayerID) (statsservice.NemesisResult, error) {
	f.NemesisCalls = append(f.NemesisCalls, playerID)
	if f.RecomputeNemesisFunc != nil {
		return f.RecomputeNemesisFunc(ctx, playerID)
	}
	return statsservice.NemesisResult{}, nil
}

func (f *FakeStatsService) ReconcileStuck(ctx context.Context, updatedBefore time.Time, limit int) (*statsservice.ReconcileReport, error) {
	if f.ReconcileStuckFunc != nil {
		return f.ReconcileStuckFunc(ctx, updatedBefore, limit)
	}
	return &statsservice.ReconcileReport{}, nil
}

var _ statsservice.Service = (*FakeStatsService)(nil)
