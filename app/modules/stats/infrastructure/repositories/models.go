package statsdb

import (
	"time"

	"github.com/uptrace/bun"

	sharedtypes "github.com/sideout-club/sideout-backend/app/shared/types"
)

// Match is this module's read view over the matches table. The stats
// relay never writes anything on it except the pipeline state.
type Match struct {
	bun.BaseModel `bun:"table:matches,alias:m"`

	ID            sharedtypes.MatchID                               `bun:"id,pk,type:uuid"`
	Status        sharedtypes.MatchStatus                           `bun:"status,notnull"`
	TeamA         []sharedtypes.PlayerID                            `bun:"team_a,type:jsonb,notnull"`
	TeamB         []sharedtypes.PlayerID                            `bun:"team_b,type:jsonb,notnull"`
	Subgames      []sharedtypes.SubgameResult                       `bun:"subgames,type:jsonb"`
	PipelineState sharedtypes.PipelineState                         `bun:"pipeline_state,notnull"`
	RatingUpdates map[sharedtypes.PlayerID]sharedtypes.RatingChange `bun:"rating_updates,type:jsonb"`
	CompletedAt   *time.Time                                        `bun:"completed_at,nullzero"`
	UpdatedAt     time.Time                                         `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// Roster returns the roster for a side.
func (m *Match) Roster(side sharedtypes.TeamSide) []sharedtypes.PlayerID {
	if side == sharedtypes.TeamSideA {
		return m.TeamA
	}
	return m.TeamB
}

// Side returns which side a participant played on.
func (m *Match) Side(id sharedtypes.PlayerID) (sharedtypes.TeamSide, bool) {
	for _, p := range m.TeamA {
		if p == id {
			return sharedtypes.TeamSideA, true
		}
	}
	for _, p := range m.TeamB {
		if p == id {
			return sharedtypes.TeamSideB, true
		}
	}
	return "", false
}

// PlayerLabel is this module's read view over the players table for
// display labels on aggregates.
type PlayerLabel struct {
	bun.BaseModel `bun:"table:players,alias:p"`

	ID          sharedtypes.PlayerID `bun:"id,pk"`
	DisplayName string               `bun:"display_name"`
}

// PlayerNemesis is this module's write view over the players table: the
// nemesis updater owns that one column and touches nothing else.
type PlayerNemesis struct {
	bun.BaseModel `bun:"table:players,alias:p"`

	ID        sharedtypes.PlayerID `bun:"id,pk"`
	Nemesis   *sharedtypes.Nemesis `bun:"nemesis,type:jsonb,nullzero"`
	UpdatedAt time.Time            `bun:"updated_at,nullzero"`
}

// PlayerPerformance is this module's write view over the players table
// for the per-player role and point splits. The rating engine
// materializes the row; this module only ever updates its two columns.
type PlayerPerformance struct {
	bun.BaseModel `bun:"table:players,alias:p"`

	ID         sharedtypes.PlayerID    `bun:"id,pk"`
	RoleStats  *sharedtypes.RoleStats  `bun:"role_stats,type:jsonb,nullzero"`
	PointStats *sharedtypes.PointStats `bun:"point_stats,type:jsonb,nullzero"`
	UpdatedAt  time.Time               `bun:"updated_at,nullzero"`
}

// HeadToHeadStat is one directed opponent aggregate: how player_id has
// fared against opponent_id. Each match contributes to both directions.
type HeadToHeadStat struct {
	bun.BaseModel `bun:"table:head_to_head_stats,alias:h2h"`

	PlayerID              sharedtypes.PlayerID        `bun:"player_id,pk"`
	OpponentID            sharedtypes.PlayerID        `bun:"opponent_id,pk"`
	OpponentLabel         string                      `bun:"opponent_label"`
	GamesPlayed           int                         `bun:"games_played,notnull,default:0"`
	GamesWon              int                         `bun:"games_won,notnull,default:0"`
	GamesLost             int                         `bun:"games_lost,notnull,default:0"`
	TotalPointsScored     int                         `bun:"total_points_scored,notnull,default:0"`
	TotalPointsAllowed    int                         `bun:"total_points_allowed,notnull,default:0"`
	LargestVictoryMargin  int                         `bun:"largest_victory_margin,notnull,default:0"`
	LargestDefeatMargin   int                         `bun:"largest_defeat_margin,notnull,default:0"`
	CumulativeRatingDelta int                         `bun:"cumulative_rating_delta,notnull,default:0"`
	RecentMatchups        []sharedtypes.RecentMatchup `bun:"recent_matchups,type:jsonb"`
	LastPlayedAt          *time.Time                  `bun:"last_played_at,nullzero"`
	CreatedAt             time.Time                   `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt             time.Time                   `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// Contains reports whether a match already contributed to this aggregate.
func (s *HeadToHeadStat) Contains(matchID sharedtypes.MatchID) bool {
	for _, m := range s.RecentMatchups {
		if m.MatchID == matchID {
			return true
		}
	}
	return false
}

// TeammateStat is one directed teammate aggregate: how player_id has
// fared when paired with teammate_id.
type TeammateStat struct {
	bun.BaseModel `bun:"table:teammate_stats,alias:tm"`

	PlayerID              sharedtypes.PlayerID        `bun:"player_id,pk"`
	TeammateID            sharedtypes.PlayerID        `bun:"teammate_id,pk"`
	TeammateLabel         string                      `bun:"teammate_label"`
	GamesPlayed           int                         `bun:"games_played,notnull,default:0"`
	GamesWon              int                         `bun:"games_won,notnull,default:0"`
	GamesLost             int                         `bun:"games_lost,notnull,default:0"`
	TotalPointsScored     int                         `bun:"total_points_scored,notnull,default:0"`
	TotalPointsAllowed    int                         `bun:"total_points_allowed,notnull,default:0"`
	CumulativeRatingDelta int                         `bun:"cumulative_rating_delta,notnull,default:0"`
	RecentMatchups        []sharedtypes.RecentMatchup `bun:"recent_matchups,type:jsonb"`
	LastPlayedAt          *time.Time                  `bun:"last_played_at,nullzero"`
	CreatedAt             time.Time                   `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt             time.Time                   `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

// Contains reports whether a match already contributed to this aggregate.
func (s *TeammateStat) Contains(matchID sharedtypes.MatchID) bool {
	for _, m := range s.RecentMatchups {
		if m.MatchID == matchID {
			return true
		}
	}
	return false
}
