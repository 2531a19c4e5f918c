package sharedtypes

import (
	"time"

	"github.com/google/uuid"
)

// PlayerID identifies a participant. IDs are issued by the account surface
// and treated as opaque here.
type PlayerID string

// MatchID identifies a match document.
type MatchID uuid.UUID

func (id MatchID) String() string {
	return uuid.UUID(id).String()
}

// NewMatchID returns a fresh random MatchID.
func NewMatchID() MatchID {
	return MatchID(uuid.New())
}

// ParseMatchID parses the canonical string form of a MatchID.
func ParseMatchID(s string) (MatchID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return MatchID{}, err
	}
	return MatchID(u), nil
}

// MarshalText keeps the canonical UUID form in JSON and metadata.
func (id MatchID) MarshalText() ([]byte, error) {
	return []byte(uuid.UUID(id).String()), nil
}

func (id *MatchID) UnmarshalText(text []byte) error {
	u, err := uuid.Parse(string(text))
	if err != nil {
		return err
	}
	*id = MatchID(u)
	return nil
}

// Rating is a participant's skill rating.
type Rating int

// TeamSide names one of the two rosters in a match.
type TeamSide string

const (
	TeamSideA TeamSide = "teamA"
	TeamSideB TeamSide = "teamB"
)

// Opposite returns the other side.
func (s TeamSide) Opposite() TeamSide {
	if s == TeamSideA {
		return TeamSideB
	}
	return TeamSideA
}

// MatchStatus is the match lifecycle status, written only by the external
// app surface. completed and cancelled are terminal.
type MatchStatus string

const (
	MatchStatusScheduled MatchStatus = "scheduled"
	MatchStatusCompleted MatchStatus = "completed"
	MatchStatusCancelled MatchStatus = "cancelled"
)

// PipelineState tracks how far the rating/statistics pipeline has
// progressed for a match. It is monotonic: pending -> rated ->
// stats_complete, never reset.
type PipelineState string

const (
	PipelineStatePending       PipelineState = "pending"
	PipelineStateRated         PipelineState = "rated"
	PipelineStateStatsComplete PipelineState = "stats_complete"
)

// RatingCalculated reports whether the rating engine has already applied
// its effects for this state.
func (s PipelineState) RatingCalculated() bool {
	return s == PipelineStateRated || s == PipelineStateStatsComplete
}

// StatsProcessed reports whether the stats relay has completed all pairing
// updates for this state.
func (s PipelineState) StatsProcessed() bool {
	return s == PipelineStateStatsComplete
}

// SubgameResult is one ordered sub-game within a match.
type SubgameResult struct {
	Number int      `json:"number"`
	Winner TeamSide `json:"winner"`
	ScoreA int      `json:"scoreA"`
	ScoreB int      `json:"scoreB"`
}

// RatingChange records the rating movement of one participant for one
// match, as written into the match's rating-updates map.
type RatingChange struct {
	Previous Rating `json:"previous"`
	New      Rating `json:"new"`
	Delta    int    `json:"delta"`
}

// BestWin is the high-water mark of opponent quality a participant has
// beaten. Updated only when a win's opponent aggregate rating strictly
// exceeds the stored one.
type BestWin struct {
	OpponentTeamRating Rating    `json:"opponentTeamRating"`
	OpponentLabel      string    `json:"opponentLabel"`
	RatingGained       int       `json:"ratingGained"`
	MatchID            MatchID   `json:"matchId"`
	AchievedAt         time.Time `json:"achievedAt"`
}

// Nemesis is the derived toughest-opponent summary. It is recomputed from
// the full head-to-head set and is never a source of truth.
type Nemesis struct {
	OpponentID    PlayerID `json:"opponentId"`
	OpponentLabel string   `json:"opponentLabel"`
	GamesPlayed   int      `json:"gamesPlayed"`
	GamesWon      int      `json:"gamesWon"`
	GamesLost     int      `json:"gamesLost"`
	WinRate       float64  `json:"winRate"`
}

// TeamRole is a participant's position within their own roster, derived
// from pre-match ratings: the strongest untied member carries, the
// weakest untied member is the weak link, everyone else is balanced.
type TeamRole string

const (
	RoleWeakLink TeamRole = "weak_link"
	RoleCarry    TeamRole = "carry"
	RoleBalanced TeamRole = "balanced"
)

// RoleLine is the win record for one team role.
type RoleLine struct {
	Games   int     `json:"games"`
	Wins    int     `json:"wins"`
	WinRate float64 `json:"winRate"`
}

// RoleStats splits a participant's record by the role their pre-match
// rating gave them within their team.
type RoleStats struct {
	WeakLink RoleLine `json:"weakLink"`
	Carry    RoleLine `json:"carry"`
	Balanced RoleLine `json:"balanced"`
}

// Line returns the record for one role for in-place updates.
func (s *RoleStats) Line(role TeamRole) *RoleLine {
	switch role {
	case RoleWeakLink:
		return &s.WeakLink
	case RoleCarry:
		return &s.Carry
	default:
		return &s.Balanced
	}
}

// PointStats accumulates a participant's point differentials per
// sub-game, split between sub-games their team won and lost.
type PointStats struct {
	WonSubgamesDiff   int `json:"wonSubgamesDiff"`
	WonSubgamesCount  int `json:"wonSubgamesCount"`
	LostSubgamesDiff  int `json:"lostSubgamesDiff"`
	LostSubgamesCount int `json:"lostSubgamesCount"`
}

// RecentMatchup is one bounded-list entry on a teammate or head-to-head
// aggregate.
type RecentMatchup struct {
	MatchID       MatchID   `json:"matchId"`
	Won           bool      `json:"won"`
	PointsScored  int       `json:"pointsScored"`
	PointsAllowed int       `json:"pointsAllowed"`
	RatingDelta   int       `json:"ratingDelta"`
	PlayedAt      time.Time `json:"playedAt"`
}
