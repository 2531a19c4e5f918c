package statsdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	sharedtypes "github.com/sideout-club/sideout-backend/app/shared/types"
)

// StatsDBImpl implements Repository over bun.
type StatsDBImpl struct{}

var _ Repository = (*StatsDBImpl)(nil)

func NewRepository() *StatsDBImpl {
	return &StatsDBImpl{}
}

func (r *StatsDBImpl) GetMatch(ctx context.Context, db bun.IDB, id sharedtypes.MatchID) (*Match, error) {
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

func (r *StatsDBImpl) GetHeadToHeadForUpdate(ctx context.Context, db bun.IDB, playerID, opponentID sharedtypes.PlayerID) (*HeadToHeadStat, error) {
	var stat HeadToHeadStat
	err := db.NewSelect().
		Model(&stat).
		Where("h2h.player_id = ?", playerID).
		Where("h2h.opponent_id = ?", opponentID).
		For("UPDATE").
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch head-to-head %s vs %s: %w", playerID, opponentID, err)
	}
	return &stat, nil
}

func (r *StatsDBImpl) ListHeadToHead(ctx context.Context, db bun.IDB, playerID sharedtypes.PlayerID) ([]*HeadToHeadStat, error) {
	var stats []*HeadToHeadStat
	err := db.NewSelect().
		Model(&stats).
		Where("h2h.player_id = ?", playerID).
		Order("opponent_id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list head-to-head for %s: %w", playerID, err)
	}
	return stats, nil
}

func (r *StatsDBImpl) UpsertHeadToHead(ctx context.Context, db bun.IDB, stat *HeadToHeadStat) error {
	stat.UpdatedAt = time.Now().UTC()
	_, err := db.NewInsert().
		Model(stat).
		On("CONFLICT (player_id, opponent_id) DO UPDATE").
		Set("opponent_label = EXCLUDED.opponent_label").
		Set("games_played = EXCLUDED.games_played").
		Set("games_won = EXCLUDED.games_won").
		Set("games_lost = EXCLUDED.games_lost").
		Set("total_points_scored = EXCLUDED.total_points_scored").
		Set("total_points_allowed = EXCLUDED.total_points_allowed").
		Set("largest_victory_margin = EXCLUDED.largest_victory_margin").
		Set("largest_defeat_margin = EXCLUDED.largest_defeat_margin").
		Set("cumulative_rating_delta = EXCLUDED.cumulative_rating_delta").
		Set("recent_matchups = EXCLUDED.recent_matchups").
		Set("last_played_at = EXCLUDED.last_played_at").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to upsert head-to-head %s vs %s: %w", stat.PlayerID, stat.OpponentID, err)
	}
	return nil
}

func (r *StatsDBImpl) GetTeammateForUpdate(ctx context.Context, db bun.IDB, playerID, teammateID sharedtypes.PlayerID) (*TeammateStat, error) {
	var stat TeammateStat
	err := db.NewSelect().
		Model(&stat).
		Where("tm.player_id = ?", playerID).
		Where("tm.teammate_id = ?", teammateID).
		For("UPDATE").
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch teammate stat %s with %s: %w", playerID, teammateID, err)
	}
	return &stat, nil
}

func (r *StatsDBImpl) UpsertTeammate(ctx context.Context, db bun.IDB, stat *TeammateStat) error {
	stat.UpdatedAt = time.Now().UTC()
	_, err := db.NewInsert().
		Model(stat).
		On("CONFLICT (player_id, teammate_id) DO UPDATE").
		Set("teammate_label = EXCLUDED.teammate_label").
		Set("games_played = EXCLUDED.games_played").
		Set("games_won = EXCLUDED.games_won").
		Set("games_lost = EXCLUDED.games_lost").
		Set("total_points_scored = EXCLUDED.total_points_scored").
		Set("total_points_allowed = EXCLUDED.total_points_allowed").
		Set("cumulative_rating_delta = EXCLUDED.cumulative_rating_delta").
		Set("recent_matchups = EXCLUDED.recent_matchups").
		Set("last_played_at = EXCLUDED.last_played_at").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to upsert teammate stat %s with %s: %w", stat.PlayerID, stat.TeammateID, err)
	}
	return nil
}

func (r *StatsDBImpl) GetPlayerLabels(ctx context.Context, db bun.IDB, ids []sharedtypes.PlayerID) (map[sharedtypes.PlayerID]string, error) {
	labels := make(map[sharedtypes.PlayerID]string, len(ids))
	for _, id := range ids {
		labels[id] = string(id)
	}
	if len(ids) == 0 {
		return labels, nil
	}

	var rows []*PlayerLabel
	err := db.NewSelect().
		Model(&rows).
		Where("p.id IN (?)", bun.In(ids)).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch player labels: %w", err)
	}
	for _, row := range rows {
		if row.DisplayName != "" {
			labels[row.ID] = row.DisplayName
		}
	}
	return labels, nil
}

func (r *StatsDBImpl) GetPlayerPerformanceForUpdate(ctx context.Context, db bun.IDB, playerID sharedtypes.PlayerID) (*PlayerPerformance, error) {
	var perf PlayerPerformance
	err := db.NewSelect().
		Model(&perf).
		Where("p.id = ?", playerID).
		For("UPDATE").
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch performance for %s: %w", playerID, err)
	}
	return &perf, nil
}

func (r *StatsDBImpl) UpdatePlayerPerformance(ctx context.Context, db bun.IDB, perf *PlayerPerformance) error {
	perf.UpdatedAt = time.Now().UTC()
	_, err := db.NewUpdate().
		Model(perf).
		Column("role_stats", "point_stats", "updated_at").
		Where("id = ?", perf.ID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update performance for %s: %w", perf.ID, err)
	}
	return nil
}

func (r *StatsDBImpl) MarkStatsComplete(ctx context.Context, db bun.IDB, id sharedtypes.MatchID) error {
	res, err := db.NewUpdate().
		Model((*Match)(nil)).
		Set("pipeline_state = ?", sharedtypes.PipelineStateStatsComplete).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", id).
		Where("pipeline_state = ?", sharedtypes.PipelineStateRated).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to mark match %s stats complete: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected for match %s: %w", id, err)
	}
	if affected == 0 {
		return ErrNoRowsAffected
	}
	return nil
}

func (r *StatsDBImpl) UpdateNemesis(ctx context.Context, db bun.IDB, playerID sharedtypes.PlayerID, nemesis *sharedtypes.Nemesis) error {
	row := &PlayerNemesis{
		ID:        playerID,
		Nemesis:   nemesis,
		UpdatedAt: time.Now().UTC(),
	}
	_, err := db.NewUpdate().
		Model(row).
		Column("nemesis", "updated_at").
		Where("id = ?", playerID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update nemesis for %s: %w", playerID, err)
	}
	return nil
}

func (r *StatsDBImpl) ListStuck(ctx context.Context, db bun.IDB, state sharedtypes.PipelineState, updatedBefore time.Time, limit int) ([]*Match, error) {
	var matches []*Match
	err := db.NewSelect().
		Model(&matches).
		Where("m.status = ?", sharedtypes.MatchStatusCompleted).
		Where("m.pipeline_state = ?", state).
		Where("m.updated_at < ?", updatedBefore).
		Order("updated_at ASC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list stuck matches in %s: %w", state, err)
	}
	return matches, nil
}
