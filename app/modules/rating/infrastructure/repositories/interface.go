package ratingdb

import (
	"context"

	"github.com/uptrace/bun"

	sharedtypes "github.com/sideout-club/sideout-backend/app/shared/types"
)

// Repository is the rating module's database surface. Every method takes
// a bun.IDB so the service decides transaction scope; passing the root
// *bun.DB runs outside a transaction.
type Repository interface {
	// GetMatchForUpdate loads a match under a row lock so the pipeline
	// state check and the eventual state advance are atomic.
	GetMatchForUpdate(ctx context.Context, db bun.IDB, id sharedtypes.MatchID) (*Match, error)

	// GetMatch loads a match without locking.
	GetMatch(ctx context.Context, db bun.IDB, id sharedtypes.MatchID) (*Match, error)

	// GetProfilesForUpdate loads the given players' profiles under row
	// locks, in a deterministic order to avoid lock cycles between
	// concurrent matches sharing players.
	GetProfilesForUpdate(ctx context.Context, db bun.IDB, ids []sharedtypes.PlayerID) ([]*PlayerProfile, error)

	// UpsertProfile writes a profile, inserting it if the participant has
	// never been rated.
	UpsertProfile(ctx context.Context, db bun.IDB, profile *PlayerProfile) error

	// InsertHistory appends history rows.
	InsertHistory(ctx context.Context, db bun.IDB, entries []*RatingHistoryEntry) error

	// MarkRated records the rating-updates map and advances the pipeline
	// state from pending to rated. Returns ErrNoRowsAffected if the match
	// was not in pending state.
	MarkRated(ctx context.Context, db bun.IDB, match *Match, updates map[sharedtypes.PlayerID]sharedtypes.RatingChange) error
}
