package ratingservice

import (
	"context"

	"github.com/uptrace/bun"

	ratingdb "github.com/sideout-club/sideout-backend/app/modules/rating/infrastructure/repositories"
	sharedtypes "github.com/sideout-club/sideout-backend/app/shared/types"
)

// ------------------------
// Fake Rating Repo
// ------------------------

// FakeRatingRepository provides a programmable stub for the
// ratingdb.Repository interface. Its default behavior is an in-memory
// store so the engine's full write path can be observed without a
// database.
type FakeRatingRepository struct {
	trace []string

	Matches  map[sharedtypes.MatchID]*ratingdb.Match
	Profiles map[sharedtypes.PlayerID]*ratingdb.PlayerProfile
	History  []*ratingdb.RatingHistoryEntry

	GetMatchForUpdateFunc    func(ctx context.Context, db bun.IDB, id sharedtypes.MatchID) (*ratingdb.Match, error)
	GetMatchFunc             func(ctx context.Context, db bun.IDB, id sharedtypes.MatchID) (*ratingdb.Match, error)
	GetProfilesForUpdateFunc func(ctx context.Context, db bun.IDB, ids []sharedtypes.PlayerID) ([]*ratingdb.PlayerProfile, error)
	UpsertProfileFunc        func(ctx context.Context, db bun.IDB, profile *ratingdb.PlayerProfile) error
	InsertHistoryFunc        func(ctx context.Context, db bun.IDB, entries []*ratingdb.RatingHistoryEntry) error
	MarkRatedFunc            func(ctx context.Context, db bun.IDB, match *ratingdb.Match, updates map[sharedtypes.PlayerID]sharedtypes.RatingChange) error
}

// NewFakeRatingRepository initializes a new FakeRatingRepository with empty stores.
func NewFakeRatingRepository() *FakeRatingRepository {
	return &FakeRatingRepository{
		trace:    []string{},
		Matches:  map[sharedtypes.MatchID]*ratingdb.Match{},
		Profiles: map[sharedtypes.PlayerID]*ratingdb.PlayerProfile{},
	}
}

// Trace returns the sequence of method calls made to the fake.
func (f *FakeRatingRepository) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeRatingRepository) record(step string) {
	f.trace = append(f.trace, step)
}

// --- Repository Interface Implementation ---

func (f *FakeRatingRepository) GetMatchForUpdate(ctx context.Context, db bun.IDB, id sharedtypes.MatchID) (*ratingdb.Match, error) {
	f.record("GetMatchForUpdate")
	if f.GetMatchForUpdateFunc != nil {
		return f.GetMatchForUpdateFunc(ctx, db, id)
	}
	m, ok := f.Matches[id]
	if !ok {
		return nil, ratingdb.ErrNotFound
	}
	return m, nil
}

func (f *FakeRatingRepository) GetMatch(ctx context.Context, db bun.IDB, id sharedtypes.MatchID) (*ratingdb.Match, error) {
	f.record("GetMatch")
	if f.GetMatchFunc != nil {
		return f.GetMatchFunc(ctx, db, id)
	}
	m, ok := f.Matches[id]
	if !ok {
		return nil, ratingdb.ErrNotFound
	}
	return m, nil
}

func (f *FakeRatingRepository) GetProfilesForUpdate(ctx context.Context, db bun.IDB, ids []sharedtypes.PlayerID) ([]*ratingdb.PlayerProfile, error) {
	f.record("GetProfilesForUpdate")
	if f.GetProfilesForUpdateFunc != nil {
		return f.GetProfilesForUpdateFunc(ctx, db, ids)
	}
	var out []*ratingdb.PlayerProfile
	for _, id := range ids {
		if p, ok := f.Profiles[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *FakeRatingRepository) UpsertProfile(ctx context.Context, db bun.IDB, profile *ratingdb.PlayerProfile) error {
	f.record("UpsertProfile")
	if f.UpsertProfileFunc != nil {
		return f.UpsertProfileFunc(ctx, db, profile)
	}
	f.Profiles[profile.ID] = profile
	return nil
}

func (f *FakeRatingRepository) InsertHistory(ctx context.Context, db bun.IDB, entries []*ratingdb.RatingHistoryEntry) error {
	f.record("InsertHistory")
	if f.InsertHistoryFunc != nil {
		return f.InsertHistoryFunc(ctx, db, entries)
	}
	f.History = append(f.History, entries...)
	return nil
}

func (f *FakeRatingRepository) MarkRated(ctx context.Context, db bun.IDB, match *ratingdb.Match, updates map[sharedtypes.PlayerID]sharedtypes.RatingChange) error {
	f.record("MarkRated")
	if f.MarkRatedFunc != nil {
		return f.MarkRatedFunc(ctx, db, match, updates)
	}
	if match.PipelineState != sharedtypes.PipelineStatePending {
		return ratingdb.ErrNoRowsAffected
	}
	match.RatingUpdates = updates
	match.PipelineState = sharedtypes.PipelineStateRated
	return nil
}

// Ensure the fake actually satisfies the interface.
var _ ratingdb.Repository = (*FakeRatingRepository)(nil)
