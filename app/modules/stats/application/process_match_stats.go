package statsservice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	statsdb "github.com/sideout-club/sideout-backend/app/modules/stats/infrastructure/repositories"
	"github.com/sideout-club/sideout-backend/app/shared/attr"
	"github.com/sideout-club/sideout-backend/app/shared/results"
	sharedtypes "github.com/sideout-club/sideout-backend/app/shared/types"
)

// pairing is one directed aggregate update derived from a match.
type pairing struct {
	kind      string // "head_to_head" or "teammate"
	playerID  sharedtypes.PlayerID
	partnerID sharedtypes.PlayerID
	won       bool
	lost      bool
	scored    int
	allowed   int
}

// ProcessMatchStats folds one rated match into its head-to-head and
// teammate aggregates plus the participants' role and point splits.
// Unlike the rating engine, there is no single
// enclosing transaction: each pairing commits independently, so one
// failing aggregate defers only itself. The pipeline state advances to
// stats_complete only when every pairing is in; otherwise the run returns
// an error and redelivery (or the reconcile sweep) finishes the rest,
// with per-aggregate idempotency keeping replays harmless.
func (s *StatsService) ProcessMatchStats(ctx context.Context, matchID sharedtypes.MatchID) (MatchStatsResult, error) {
	return withTelemetry(s, ctx, "ProcessMatchStats", matchID.String(), func(ctx context.Context) (MatchStatsResult, error) {
		match, err := s.repo.GetMatch(ctx, s.database(), matchID)
		if err != nil {
			if errors.Is(err, statsdb.ErrNotFound) {
				return results.Failuref[MatchStatsSuccess, MatchStatsFailure](MatchStatsFailure{
					MatchID: matchID,
					Reason:  ErrMatchNotFound.Error(),
				}), nil
			}
			return MatchStatsResult{}, err
		}

		if !match.PipelineState.RatingCalculated() {
			return MatchStatsResult{}, ErrMatchNotRated
		}
		if match.PipelineState.StatsProcessed() {
			return results.Successf[MatchStatsSuccess, MatchStatsFailure](MatchStatsSuccess{
				MatchID:          matchID,
				State:            match.PipelineState,
				AlreadyProcessed: true,
			}), nil
		}

		labels, err := s.repo.GetPlayerLabels(ctx, s.database(), append(append([]sharedtypes.PlayerID{}, match.TeamA...), match.TeamB...))
		if err != nil {
			return MatchStatsResult{}, err
		}

		playedAt := time.Now().UTC()
		if match.CompletedAt != nil {
			playedAt = *match.CompletedAt
		}

		pairings := derivePairings(match)

		applied, skipped, failed := 0, 0, 0
		var updated []PairingRef
		for _, p := range pairings {
			var wrote bool
			txErr := s.runInTx(ctx, func(ctx context.Context, db bun.IDB) error {
				var innerErr error
				wrote, innerErr = s.applyPairing(ctx, db, match, p, labels[p.partnerID], playedAt)
				return innerErr
			})
			if txErr != nil {
				failed++
				s.metrics.RecordPairingFailure(ctx, p.kind)
				s.logger.ErrorContext(ctx, "Pairing update failed, deferring",
					attr.ExtractCorrelationID(ctx),
					attr.MatchID("match_id", matchID),
					attr.PlayerID("player_id", p.playerID),
					attr.PlayerID("partner_id", p.partnerID),
					attr.String("kind", p.kind),
					attr.Error(txErr),
				)
				continue
			}
			s.metrics.RecordPairingSuccess(ctx, p.kind)
			if wrote {
				applied++
				if p.kind == "head_to_head" {
					updated = append(updated, PairingRef{PlayerID: p.playerID, OpponentID: p.partnerID})
				}
			} else {
				skipped++
			}
		}

		if failed > 0 {
			s.metrics.RecordStatsIncomplete(ctx)
			return MatchStatsResult{}, fmt.Errorf("%d of %d pairings failed", failed, len(pairings))
		}

		// The per-player role and point splits ride the state-advance
		// transaction: the guarded update is their idempotency key, so they
		// apply exactly once no matter how often the match is redelivered.
		playersUpdated := 0
		if err := s.runInTx(ctx, func(ctx context.Context, db bun.IDB) error {
			if err := s.repo.MarkStatsComplete(ctx, db, matchID); err != nil {
				return err
			}
			var innerErr error
			playersUpdated, innerErr = s.applyPlayerStats(ctx, db, match)
			return innerErr
		}); err != nil {
			// A concurrent delivery may have advanced the state already;
			// aggregates are idempotent so that run and this one agree.
			if !errors.Is(err, statsdb.ErrNoRowsAffected) {
				return MatchStatsResult{}, err
			}
		}

		s.metrics.RecordStatsComplete(ctx)
		return results.Successf[MatchStatsSuccess, MatchStatsFailure](MatchStatsSuccess{
			MatchID:         matchID,
			State:           sharedtypes.PipelineStateStatsComplete,
			Applied:         applied,
			Skipped:         skipped,
			PlayersUpdated:  playersUpdated,
			UpdatedPairings: updated,
		}), nil
	})
}

// derivePairings expands a match into its directed aggregate updates:
// each participant gets one head-to-head pairing per opponent and one
// teammate pairing per partner.
func derivePairings(match *statsdb.Match) []pairing {
	winner, draw := matchOutcome(match)

	pointsA, pointsB := 0, 0
	for _, sg := range match.Subgames {
		pointsA += sg.ScoreA
		pointsB += sg.ScoreB
	}

	var out []pairing
	for _, side := range []sharedtypes.TeamSide{sharedtypes.TeamSideA, sharedtypes.TeamSideB} {
		roster := match.Roster(side)
		opponents := match.Roster(side.Opposite())

		won := !draw && winner != nil && *winner == side
		lost := !draw && winner != nil && *winner != side
		scored, allowed := pointsA, pointsB
		if side == sharedtypes.TeamSideB {
			scored, allowed = pointsB, pointsA
		}

		for _, player := range roster {
			for _, opponent := range opponents {
				out = append(out, pairing{
					kind:      "head_to_head",
					playerID:  player,
					partnerID: opponent,
					won:       won,
					lost:      lost,
					scored:    scored,
					allowed:   allowed,
				})
			}
			for _, teammate := range roster {
				if teammate == player {
					continue
				}
				out = append(out, pairing{
					kind:      "teammate",
					playerID:  player,
					partnerID: teammate,
					won:       won,
					lost:      lost,
					scored:    scored,
					allowed:   allowed,
				})
			}
		}
	}
	return out
}

// applyPairing updates one aggregate. Returns false when the match was
// already folded into it on an earlier delivery.
func (s *StatsService) applyPairing(ctx context.Context, db bun.IDB, match *statsdb.Match, p pairing, partnerLabel string, playedAt time.Time) (bool, error) {
	matchup := sharedtypes.RecentMatchup{
		MatchID:       match.ID,
		Won:           p.won,
		PointsScored:  p.scored,
		PointsAllowed: p.allowed,
		RatingDelta:   match.RatingUpdates[p.playerID].Delta,
		PlayedAt:      playedAt,
	}

	if p.kind == "teammate" {
		stat, err := s.repo.GetTeammateForUpdate(ctx, db, p.playerID, p.partnerID)
		if err != nil {
			if !errors.Is(err, statsdb.ErrNotFound) {
				return false, err
			}
			stat = &statsdb.TeammateStat{PlayerID: p.playerID, TeammateID: p.partnerID}
		}
		if stat.Contains(match.ID) {
			return false, nil
		}
		stat.TeammateLabel = partnerLabel
		stat.GamesPlayed++
		if p.won {
			stat.GamesWon++
		}
		if p.lost {
			stat.GamesLost++
		}
		stat.TotalPointsScored += p.scored
		stat.TotalPointsAllowed += p.allowed
		stat.CumulativeRatingDelta += matchup.RatingDelta
		stat.RecentMatchups = prependMatchup(stat.RecentMatchups, matchup, s.recentLimit)
		stat.LastPlayedAt = &playedAt
		return true, s.repo.UpsertTeammate(ctx, db, stat)
	}

	stat, err := s.repo.GetHeadToHeadForUpdate(ctx, db, p.playerID, p.partnerID)
	if err != nil {
		if !errors.Is(err, statsdb.ErrNotFound) {
			return false, err
		}
		stat = &statsdb.HeadToHeadStat{PlayerID: p.playerID, OpponentID: p.partnerID}
	}
	if stat.Contains(match.ID) {
		return false, nil
	}
	stat.OpponentLabel = partnerLabel
	stat.GamesPlayed++
	if p.won {
		stat.GamesWon++
		if margin := p.scored - p.allowed; margin > stat.LargestVictoryMargin {
			stat.LargestVictoryMargin = margin
		}
	}
	if p.lost {
		stat.GamesLost++
		if margin := p.allowed - p.scored; margin > stat.LargestDefeatMargin {
			stat.LargestDefeatMargin = margin
		}
	}
	stat.TotalPointsScored += p.scored
	stat.TotalPointsAllowed += p.allowed
	stat.CumulativeRatingDelta += matchup.RatingDelta
	stat.RecentMatchups = prependMatchup(stat.RecentMatchups, matchup, s.recentLimit)
	stat.LastPlayedAt = &playedAt
	return true, s.repo.UpsertHeadToHead(ctx, db, stat)
}

// matchOutcome rederives the match result from the committed rating
// updates, using the same rule the rating engine applied: higher average
// net delta wins, sub-game wins break a zero tie, an even split is a draw.
func matchOutcome(match *statsdb.Match) (*sharedtypes.TeamSide, bool) {
	avg := func(roster []sharedtypes.PlayerID) float64 {
		if len(roster) == 0 {
			return 0
		}
		sum := 0
		for _, id := range roster {
			sum += match.RatingUpdates[id].Delta
		}
		return float64(sum) / float64(len(roster))
	}
	avgA, avgB := avg(match.TeamA), avg(match.TeamB)

	winsA, winsB := 0, 0
	for _, sg := range match.Subgames {
		if sg.Winner == sharedtypes.TeamSideA {
			winsA++
		} else if sg.Winner == sharedtypes.TeamSideB {
			winsB++
		}
	}

	switch {
	case avgA > avgB:
		side := sharedtypes.TeamSideA
		return &side, false
	case avgB > avgA:
		side := sharedtypes.TeamSideB
		return &side, false
	case winsA > winsB:
		side := sharedtypes.TeamSideA
		return &side, false
	case winsB > winsA:
		side := sharedtypes.TeamSideB
		return &side, false
	default:
		return nil, true
	}
}

func prependMatchup(list []sharedtypes.RecentMatchup, m sharedtypes.RecentMatchup, limit int) []sharedtypes.RecentMatchup {
	if limit <= 0 {
		return list
	}
	out := make([]sharedtypes.RecentMatchup, 0, limit)
	out = append(out, m)
	for _, existing := range list {
		if len(out) == limit {
			break
		}
		out = append(out, existing)
	}
	return out
}
