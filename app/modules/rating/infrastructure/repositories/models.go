package ratingdb

import (
	"time"

	"github.com/uptrace/bun"

	sharedtypes "github.com/sideout-club/sideout-backend/app/shared/types"
)

// Match is the match document. Status is written by the app surface;
// pipeline_state and rating_updates are written only by this pipeline.
type Match struct {
	bun.BaseModel `bun:"table:matches,alias:m"`

	ID            sharedtypes.MatchID                                   `bun:"id,pk,type:uuid"`
	Status        sharedtypes.MatchStatus                               `bun:"status,notnull"`
	TeamA         []sharedtypes.PlayerID                                `bun:"team_a,type:jsonb,notnull"`
	TeamB         []sharedtypes.PlayerID                                `bun:"team_b,type:jsonb,notnull"`
	Subgames      []sharedtypes.SubgameResult                           `bun:"subgames,type:jsonb"`
	PipelineState sharedtypes.PipelineState                             `bun:"pipeline_state,notnull,default:'pending'"`
	RatingUpdates map[sharedtypes.PlayerID]sharedtypes.RatingChange     `bun:"rating_updates,type:jsonb"`
	CompletedAt   *time.Time                                            `bun:"completed_at,nullzero"`
	CreatedAt     time.Time                                             `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt     time.Time                                             `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// Participants returns both rosters in side order, A first.
func (m *Match) Participants() []sharedtypes.PlayerID {
	out := make([]sharedtypes.PlayerID, 0, len(m.TeamA)+len(m.TeamB))
	out = append(out, m.TeamA...)
	out = append(out, m.TeamB...)
	return out
}

// Roster returns the roster for a side.
func (m *Match) Roster(side sharedtypes.TeamSide) []sharedtypes.PlayerID {
	if side == sharedtypes.TeamSideA {
		return m.TeamA
	}
	return m.TeamB
}

// PlayerProfile is a participant's rating profile. Rating fields are
// written only by the rating engine; the nemesis field only by the
// nemesis updater.
type PlayerProfile struct {
	bun.BaseModel `bun:"table:players,alias:p"`

	ID            sharedtypes.PlayerID  `bun:"id,pk"`
	DisplayName   string                `bun:"display_name"`
	Rating        sharedtypes.Rating    `bun:"rating,notnull"`
	RatingPeak    sharedtypes.Rating    `bun:"rating_peak,notnull"`
	RatingPeakAt  *time.Time            `bun:"rating_peak_at,nullzero"`
	Streak        int                   `bun:"streak,notnull,default:0"`
	RecentMatches []sharedtypes.MatchID `bun:"recent_matches,type:jsonb"`
	BestWin       *sharedtypes.BestWin  `bun:"best_win,type:jsonb,nullzero"`
	Nemesis       *sharedtypes.Nemesis  `bun:"nemesis,type:jsonb,nullzero"`
	GamesPlayed   int                   `bun:"games_played,notnull,default:0"`
	Wins          int                   `bun:"wins,notnull,default:0"`
	Losses        int                   `bun:"losses,notnull,default:0"`
	CreatedAt     time.Time             `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt     time.Time             `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// Label returns the profile's display label with an ID fallback.
func (p *PlayerProfile) Label() string {
	if p.DisplayName != "" {
		return p.DisplayName
	}
	return string(p.ID)
}

// RatingHistoryEntry is one append-only history row. Written once by the
// rating engine; never mutated.
type RatingHistoryEntry struct {
	bun.BaseModel `bun:"table:rating_history,alias:rh"`

	ID             int64                `bun:"id,pk,autoincrement"`
	PlayerID       sharedtypes.PlayerID `bun:"player_id,notnull"`
	MatchID        sharedtypes.MatchID  `bun:"match_id,type:uuid,notnull"`
	PreviousRating sharedtypes.Rating   `bun:"previous_rating,notnull"`
	NewRating      sharedtypes.Rating   `bun:"new_rating,notnull"`
	Delta          int                  `bun:"delta,notnull"`
	OpponentLabel  string               `bun:"opponent_label"`
	Won            bool                 `bun:"won,notnull"`
	CreatedAt      time.Time            `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}
