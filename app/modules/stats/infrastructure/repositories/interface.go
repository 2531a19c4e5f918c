package statsdb

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	sharedtypes "github.com/sideout-club/sideout-backend/app/shared/types"
)

// Repository is the stats module's database surface. Every method takes a
// bun.IDB so the service decides transaction scope; passing the root
// *bun.DB runs outside a transaction.
type Repository interface {
	// GetMatch loads a match without locking. The stats relay reads the
	// match once up front; correctness comes from per-aggregate
	// idempotency and the guarded state advance, not from a match lock.
	GetMatch(ctx context.Context, db bun.IDB, id sharedtypes.MatchID) (*Match, error)

	// GetHeadToHeadForUpdate loads one directed opponent aggregate under a
	// row lock. Returns ErrNotFound for a first encounter.
	GetHeadToHeadForUpdate(ctx context.Context, db bun.IDB, playerID, opponentID sharedtypes.PlayerID) (*HeadToHeadStat, error)

	// ListHeadToHead loads all of a player's opponent aggregates.
	ListHeadToHead(ctx context.Context, db bun.IDB, playerID sharedtypes.PlayerID) ([]*HeadToHeadStat, error)

	// UpsertHeadToHead writes one directed opponent aggregate.
	UpsertHeadToHead(ctx context.Context, db bun.IDB, stat *HeadToHeadStat) error

	// GetTeammateForUpdate loads one directed teammate aggregate under a
	// row lock. Returns ErrNotFound for a first pairing.
	GetTeammateForUpdate(ctx context.Context, db bun.IDB, playerID, teammateID sharedtypes.PlayerID) (*TeammateStat, error)

	// UpsertTeammate writes one directed teammate aggregate.
	UpsertTeammate(ctx context.Context, db bun.IDB, stat *TeammateStat) error

	// GetPlayerLabels resolves display labels for the given players.
	// Unknown players fall back to their raw ID.
	GetPlayerLabels(ctx context.Context, db bun.IDB, ids []sharedtypes.PlayerID) (map[sharedtypes.PlayerID]string, error)

	// GetPlayerPerformanceForUpdate loads one player's role and point
	// splits under a row lock. Returns ErrNotFound when the rating engine
	// has not materialized the profile yet.
	GetPlayerPerformanceForUpdate(ctx context.Context, db bun.IDB, playerID sharedtypes.PlayerID) (*PlayerPerformance, error)

	// UpdatePlayerPerformance writes one player's role and point splits,
	// touching nothing else on the profile.
	UpdatePlayerPerformance(ctx context.Context, db bun.IDB, perf *PlayerPerformance) error

	// MarkStatsComplete advances the pipeline state from rated to
	// stats_complete. Returns ErrNoRowsAffected if the match was not in
	// rated state.
	MarkStatsComplete(ctx context.Context, db bun.IDB, id sharedtypes.MatchID) error

	// UpdateNemesis replaces a player's derived nemesis summary. A nil
	// nemesis clears it.
	UpdateNemesis(ctx context.Context, db bun.IDB, playerID sharedtypes.PlayerID, nemesis *sharedtypes.Nemesis) error

	// ListStuck returns matches sitting in the given pipeline state whose
	// last update is older than the cutoff, oldest first.
	ListStuck(ctx context.Context, db bun.IDB, state sharedtypes.PipelineState, updatedBefore time.Time, limit int) ([]*Match, error)
}
