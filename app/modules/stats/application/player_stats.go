package statsservice

import (
	"context"
	"errors"
	"sort"

	"github.com/uptrace/bun"

	statsdb "github.com/sideout-club/sideout-backend/app/modules/stats/infrastructure/repositories"
	"github.com/sideout-club/sideout-backend/app/shared/attr"
	sharedtypes "github.com/sideout-club/sideout-backend/app/shared/types"
)

// playerLine is one participant's per-match performance slice: the role
// their pre-match rating gave them and their sub-game point splits.
type playerLine struct {
	playerID  sharedtypes.PlayerID
	role      sharedtypes.TeamRole
	won       bool
	wonDiff   int
	wonCount  int
	lostDiff  int
	lostCount int
}

// derivePlayerLines expands a match into one performance line per
// participant.
func derivePlayerLines(match *statsdb.Match) []playerLine {
	winner, draw := matchOutcome(match)

	var out []playerLine
	for _, side := range []sharedtypes.TeamSide{sharedtypes.TeamSideA, sharedtypes.TeamSideB} {
		roster := match.Roster(side)
		roles := assignRoles(roster, match.RatingUpdates)
		won := !draw && winner != nil && *winner == side

		wonDiff, wonCount, lostDiff, lostCount := 0, 0, 0, 0
		for _, sg := range match.Subgames {
			diff := sg.ScoreA - sg.ScoreB
			if side == sharedtypes.TeamSideB {
				diff = -diff
			}
			if sg.Winner == side {
				wonDiff += diff
				wonCount++
			} else {
				lostDiff += diff
				lostCount++
			}
		}

		for _, id := range roster {
			out = append(out, playerLine{
				playerID:  id,
				role:      roles[id],
				won:       won,
				wonDiff:   wonDiff,
				wonCount:  wonCount,
				lostDiff:  lostDiff,
				lostCount: lostCount,
			})
		}
	}
	return out
}

// assignRoles derives each roster member's team role from pre-match
// ratings: the strongest untied member carries, the weakest untied member
// is the weak link, middle positions and ties are balanced.
func assignRoles(roster []sharedtypes.PlayerID, updates map[sharedtypes.PlayerID]sharedtypes.RatingChange) map[sharedtypes.PlayerID]sharedtypes.TeamRole {
	roles := make(map[sharedtypes.PlayerID]sharedtypes.TeamRole, len(roster))
	if len(roster) == 1 {
		roles[roster[0]] = sharedtypes.RoleBalanced
		return roles
	}

	sorted := append([]sharedtypes.PlayerID{}, roster...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return updates[sorted[i]].Previous > updates[sorted[j]].Previous
	})

	highest := updates[sorted[0]].Previous
	lowest := updates[sorted[len(sorted)-1]].Previous
	for i, id := range sorted {
		switch {
		case i == 0 && updates[id].Previous > lowest:
			roles[id] = sharedtypes.RoleCarry
		case i == len(sorted)-1 && updates[id].Previous < highest:
			roles[id] = sharedtypes.RoleWeakLink
		default:
			roles[id] = sharedtypes.RoleBalanced
		}
	}
	return roles
}

// applyPlayerStats folds one match's performance lines into the players'
// role and point splits. It runs inside the state-advance transaction, so
// the guarded pipeline update is what makes it exactly-once. Players the
// rating engine has not materialized yet are skipped.
func (s *StatsService) applyPlayerStats(ctx context.Context, db bun.IDB, match *statsdb.Match) (int, error) {
	updated := 0
	for _, line := range derivePlayerLines(match) {
		perf, err := s.repo.GetPlayerPerformanceForUpdate(ctx, db, line.playerID)
		if err != nil {
			if errors.Is(err, statsdb.ErrNotFound) {
				s.logger.WarnContext(ctx, "No profile for player splits, skipping",
					attr.ExtractCorrelationID(ctx),
					attr.MatchID("match_id", match.ID),
					attr.PlayerID("player_id", line.playerID),
				)
				continue
			}
			return updated, err
		}

		if perf.RoleStats == nil {
			perf.RoleStats = &sharedtypes.RoleStats{}
		}
		record := perf.RoleStats.Line(line.role)
		record.Games++
		if line.won {
			record.Wins++
		}
		record.WinRate = float64(record.Wins) / float64(record.Games)

		if perf.PointStats == nil {
			perf.PointStats = &sharedtypes.PointStats{}
		}
		perf.PointStats.WonSubgamesDiff += line.wonDiff
		perf.PointStats.WonSubgamesCount += line.wonCount
		perf.PointStats.LostSubgamesDiff += line.lostDiff
		perf.PointStats.LostSubgamesCount += line.lostCount

		if err := s.repo.UpdatePlayerPerformance(ctx, db, perf); err != nil {
			return updated, err
		}
		updated++
	}
	return updated, nil
}
