package statsservice

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	statsdb "github.com/sideout-club/sideout-backend/app/modules/stats/infrastructure/repositories"
	sharedtypes "github.com/sideout-club/sideout-backend/app/shared/types"
)

type h2hKey struct {
	player   sharedtypes.PlayerID
	opponent sharedtypes.PlayerID
}

// FakeStatsRepository provides a programmable stub for the
// statsdb.Repository interface backed by in-memory stores.
type FakeStatsRepository struct {
	trace []string

	Matches     map[sharedtypes.MatchID]*statsdb.Match
	HeadToHead  map[h2hKey]*statsdb.HeadToHeadStat
	Teammates   map[h2hKey]*statsdb.TeammateStat
	Labels      map[sharedtypes.PlayerID]string
	Nemeses     map[sharedtypes.PlayerID]*sharedtypes.Nemesis
	Performance map[sharedtypes.PlayerID]*statsdb.PlayerPerformance

	GetMatchFunc                func(ctx context.Context, db bun.IDB, id sharedtypes.MatchID) (*statsdb.Match, error)
	GetHeadToHeadForUpdateFunc  func(ctx context.Context, db bun.IDB, playerID, opponentID sharedtypes.PlayerID) (*statsdb.HeadToHeadStat, error)
	UpsertHeadToHeadFunc        func(ctx context.Context, db bun.IDB, stat *statsdb.HeadToHeadStat) error
	GetTeammateForUpdateFunc    func(ctx context.Context, db bun.IDB, playerID, teammateID sharedtypes.PlayerID) (*statsdb.TeammateStat, error)
	UpsertTeammateFunc          func(ctx context.Context, db bun.IDB, stat *statsdb.TeammateStat) error
	MarkStatsCompleteFunc       func(ctx context.Context, db bun.IDB, id sharedtypes.MatchID) error
	UpdatePlayerPerformanceFunc func(ctx context.Context, db bun.IDB, perf *statsdb.PlayerPerformance) error
	UpdateNemesisFunc           func(ctx context.Context, db bun.IDB, playerID sharedtypes.PlayerID, nemesis *sharedtypes.Nemesis) error
	ListStuckFunc               func(ctx context.Context, db bun.IDB, state sharedtypes.PipelineState, updatedBefore time.Time, limit int) ([]*statsdb.Match, error)
}

// NewFakeStatsRepository initializes a new FakeStatsRepository with empty stores.
func NewFakeStatsRepository() *FakeStatsRepository {
	return &FakeStatsRepository{
		trace:       []string{},
		Matches:     map[sharedtypes.MatchID]*statsdb.Match{},
		HeadToHead:  map[h2hKey]*statsdb.HeadToHeadStat{},
		Teammates:   map[h2hKey]*statsdb.TeammateStat{},
		Labels:      map[sharedtypes.PlayerID]string{},
		Nemeses:     map[sharedtypes.PlayerID]*sharedtypes.Nemesis{},
		Performance: map[sharedtypes.PlayerID]*statsdb.PlayerPerformance{},
	}
}

// Trace returns the sequence of method calls made to the fake.
func (f *FakeStatsRepository) Trace() []string {
	out := make([]string, len(f.trace))
	copy(out, f.trace)
	return out
}

func (f *FakeStatsRepository) record(step string) {
	f.trace = append(f.trace, step)
}

// --- Repository Interface Implementation ---

func (f *FakeStatsRepository) GetMatch(ctx context.Context, db bun.IDB, id sharedtypes.MatchID) (*statsdb.Match, error) {
	f.record("GetMatch")
	if f.GetMatchFunc != nil {
		return f.GetMatchFunc(ctx, db, id)
	}
	m, ok := f.Matches[id]
	if !ok {
		return nil, statsdb.ErrNotFound
	}
	return m, nil
}

func (f *FakeStatsRepository) GetHeadToHeadForUpdate(ctx context.Context, db bun.IDB, playerID, opponentID sharedtypes.PlayerID) (*statsdb.HeadToHeadStat, error) {
	f.record("GetHeadToHeadForUpdate")
	if f.GetHeadToHeadForUpdateFunc != nil {
		return f.GetHeadToHeadForUpdateFunc(ctx, db, playerID, opponentID)
	}
	stat, ok := f.HeadToHead[h2hKey{playerID, opponentID}]
	if !ok {
		return nil, statsdb.ErrNotFound
	}
	return stat, nil
}

func (f *FakeStatsRepository) ListHeadToHead(ctx context.Context, db bun.IDB, playerID sharedtypes.PlayerID) ([]*statsdb.HeadToHeadStat, error) {
	f.record("ListHeadToHead")
	var out []*statsdb.HeadToHeadStat
	for key, stat := range f.HeadToHead {
		if key.player == playerID {
			out = append(out, stat)
		}
	}
	return out, nil
}

func (f *FakeStatsRepository) UpsertHeadToHead(ctx context.Context, db bun.IDB, stat *statsdb.HeadToHeadStat) error {
	f.record("UpsertHeadToHead")
	if f.UpsertHeadToHeadFunc != nil {
		return f.UpsertHeadToHeadFunc(ctx, db, stat)
	}
	f.HeadToHead[h2hKey{stat.PlayerID, stat.OpponentID}] = stat
	return nil
}

func (f *FakeStatsRepository) GetTeammateForUpdate(ctx context.Context, db bun.IDB, playerID, teammateID sharedtypes.PlayerID) (*statsdb.TeammateStat, error) {
	f.record("GetTeammateForUpdate")
	if f.GetTeammateForUpdateFunc != nil {
		return f.GetTeammateForUpdateFunc(ctx, db, playerID, teammateID)
	}
	stat, ok := f.Teammates[h2hKey{playerID, teammateID}]
	if !ok {
		return nil, statsdb.ErrNotFound
	}
	return stat, nil
}

func (f *FakeStatsRepository) UpsertTeammate(ctx context.Context, db bun.IDB, stat *statsdb.TeammateStat) error {
	f.record("UpsertTeammate")
	if f.UpsertTeammateFunc != nil {
		return f.UpsertTeammateFunc(ctx, db, stat)
	}
	f.Teammates[h2hKey{stat.PlayerID, stat.TeammateID}] = stat
	return nil
}

func (f *FakeStatsRepository) GetPlayerLabels(ctx context.Context, db bun.IDB, ids []sharedtypes.PlayerID) (map[sharedtypes.PlayerID]string, error) {
	f.record("GetPlayerLabels")
	labels := make(map[sharedtypes.PlayerID]string, len(ids))
	for _, id := range ids {
		if label, ok := f.Labels[id]; ok {
			labels[id] = label
		} else {
			labels[id] = string(id)
		}
	}
	return labels, nil
}

func (f *FakeStatsRepository) GetPlayerPerformanceForUpdate(ctx context.Context, db bun.IDB, playerID sharedtypes.PlayerID) (*statsdb.PlayerPerformance, error) {
	f.record("GetPlayerPerformanceForUpdate")
	perf, ok := f.Performance[playerID]
	if !ok {
		return nil, statsdb.ErrNotFound
	}
	return perf, nil
}

func (f *FakeStatsRepository) UpdatePlayerPerformance(ctx context.Context, db bun.IDB, perf *statsdb.PlayerPerformance) error {
	f.record("UpdatePlayerPerformance")
	if f.UpdatePlayerPerformanceFunc != nil {
		return f.UpdatePlayerPerformanceFunc(ctx, db, perf)
	}
	f.Performance[perf.ID] = perf
	return nil
}

func (f *FakeStatsRepository) MarkStatsComplete(ctx context.Context, db bun.IDB, id sharedtypes.MatchID) error {
	f.record("MarkStatsComplete")
	if f.MarkStatsCompleteFunc != nil {
		return f.MarkStatsCompleteFunc(ctx, db, id)
	}
	m, ok := f.Matches[id]
	if !ok || m.PipelineState != sharedtypes.PipelineStateRated {
		return statsdb.ErrNoRowsAffected
	}
	m.PipelineState = sharedtypes.PipelineStateStatsComplete
	return nil
}

func (f *FakeStatsRepository) UpdateNemesis(ctx context.Context, db bun.IDB, playerID sharedtypes.PlayerID, nemesis *sharedtypes.Nemesis) error {
	f.record("UpdateNemesis")
	if f.UpdateNemesisFunc != nil {
		return f.UpdateNemesisFunc(ctx, db, playerID, nemesis)
	}
	f.Nemeses[playerID] = nemesis
	return nil
}

func (f *FakeStatsRepository) ListStuck(ctx context.Context, db bun.IDB, state sharedtypes.PipelineState, updatedBefore time.Time, limit int) ([]*statsdb.Match, error) {
	f.record("ListStuck")
	if f.ListStuckFunc != nil {
		return f.ListStuckFunc(ctx, db, state, updatedBefore, limit)
	}
	var out []*statsdb.Match
	for _, m := range f.Matches {
		if m.Status == sharedtypes.MatchStatusCompleted && m.PipelineState == state && m.UpdatedAt.Before(updatedBefore) {
			out = append(out, m)
		}
	}
	return out, nil
}

// Ensure the fake actually satisfies the interface.
var _ statsdb.Repository = (*FakeStatsRepository)(nil)
