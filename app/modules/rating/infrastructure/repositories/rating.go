package ratingdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/uptrace/bun"

	sharedtypes "github.com/sideout-club/sideout-backend/app/shared/types"
)

// RatingDBImpl implements Repository over bun.
type RatingDBImpl struct{}

var _ Repository = (*RatingDBImpl)(nil)

func NewRepository() *RatingDBImpl {
	return &RatingDBImpl{}
}

func (r *RatingDBImpl) GetMatchForUpdate(ctx context.Context, db bun.IDB, id sharedtypes.MatchID) (*Match, error) {
	var match Match
	err := db.NewSelect().
		Model(&match).
		Where("m.id = ?", id).
		For("UPDATE").
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch match %s for update: %w", id, err)
	}
	return &match, nil
}

func (r *RatingDBImpl) GetMatch(ctx context.Context, db bun.IDB, id sharedtypes.MatchID) (*Match, error) {
	var match Match
	err := db.NewSelect().
		Model(&match).
		Where("m.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch match %s: %w", id, err)
	}
	return &match, nil
}

func (r *RatingDBImpl) GetProfilesForUpdate(ctx context.Context, db bun.IDB, ids []sharedtypes.PlayerID) ([]*PlayerProfile, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	// Lock rows in sorted ID order so concurrent matches sharing players
	// acquire locks in the same order.
	ordered := make([]sharedtypes.PlayerID, len(ids))
	copy(ordered, ids)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i] < ordered[j] })

	var profiles []*PlayerProfile
	err := db.NewSelect().
		Model(&profiles).
		Where("p.id IN (?)", bun.In(ordered)).
		Order("id ASC").
		For("UPDATE").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch player profiles: %w", err)
	}
	return profiles, nil
}

func (r *RatingDBImpl) UpsertProfile(ctx context.Context, db bun.IDB, profile *PlayerProfile) error {
	profile.UpdatedAt = time.Now().UTC()
	_, err := db.NewInsert().
		Model(profile).
		On("CONFLICT (id) DO UPDATE").
		Set("rating = EXCLUDED.rating").
		Set("rating_peak = EXCLUDED.rating_peak").
		Set("rating_peak_at = EXCLUDED.rating_peak_at").
		Set("streak = EXCLUDED.streak").
		Set("recent_matches = EXCLUDED.recent_matches").
		Set("best_win = EXCLUDED.best_win").
		Set("games_played = EXCLUDED.games_played").
		Set("wins = EXCLUDED.wins").
		Set("losses = EXCLUDED.losses").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to upsert profile for %s: %w", profile.ID, err)
	}
	return nil
}

func (r *RatingDBImpl) InsertHistory(ctx context.Context, db bun.IDB, entries []*RatingHistoryEntry) error {
	if len(entries) == 0 {
		return nil
	}
	_, err := db.NewInsert().
		Model(&entries).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to insert rating history: %w", err)
	}
	return nil
}

func (r *RatingDBImpl) MarkRated(ctx context.Context, db bun.IDB, match *Match, updates map[sharedtypes.PlayerID]sharedtypes.RatingChange) error {
	match.RatingUpdates = updates
	match.PipelineState = sharedtypes.PipelineStateRated
	match.UpdatedAt = time.Now().UTC()

	res, err := db.NewUpdate().
		Model(match).
		Column("rating_updates", "pipeline_state", "updated_at").
		Where("id = ?", match.ID).
		Where("pipeline_state = ?", sharedtypes.PipelineStatePending).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to mark match %s rated: %w", match.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected for match %s: %w", match.ID, err)
	}
	if affected == 0 {
		return ErrNoRowsAffected
	}
	return nil
}
