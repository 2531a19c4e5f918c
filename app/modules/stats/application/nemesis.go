package statsservice

import (
	"context"

	"github.com/uptrace/bun"

	statsdb "github.com/sideout-club/sideout-backend/app/modules/stats/infrastructure/repositories"
	"github.com/sideout-club/sideout-backend/app/shared/results"
	sharedtypes "github.com/sideout-club/sideout-backend/app/shared/types"
)

// RecomputeNemesis rederives one player's toughest-opponent summary from
// their full head-to-head set and writes it onto the profile. The summary
// is derived data: recomputing from scratch on every trigger keeps it
// correct under any interleaving of aggregate updates.
func (s *StatsService) RecomputeNemesis(ctx context.Context, playerID sharedtypes.PlayerID) (NemesisResult, error) {
	if err := s.nemesisLimiter.Wait(ctx); err != nil {
		return NemesisResult{}, err
	}

	return withTelemetry(s, ctx, "RecomputeNemesis", string(playerID), func(ctx context.Context) (NemesisResult, error) {
		var nemesis *sharedtypes.Nemesis
		err := s.runInTx(ctx, func(ctx context.Context, db bun.IDB) error {
			stats, err := s.repo.ListHeadToHead(ctx, db, playerID)
			if err != nil {
				return err
			}
			nemesis = pickNemesis(stats, s.nemesisMinGames)
			return s.repo.UpdateNemesis(ctx, db, playerID, nemesis)
		})
		if err != nil {
			return NemesisResult{}, err
		}

		if nemesis != nil {
			s.metrics.RecordNemesisAssigned(ctx)
		} else {
			s.metrics.RecordNemesisCleared(ctx)
		}

		return results.Successf[NemesisSuccess, NemesisFailure](NemesisSuccess{
			PlayerID: playerID,
			Nemesis:  nemesis,
		}), nil
	})
}

// pickNemesis selects the toughest opponent: most losses against, with
// ties broken by most matchups, then by lowest opponent ID so the choice
// is deterministic. Opponents with fewer than minGames matchups, or none
// lost, never qualify; nil means the summary should be cleared.
func pickNemesis(stats []*statsdb.HeadToHeadStat, minGames int) *sharedtypes.Nemesis {
	var best *statsdb.HeadToHeadStat
	for _, st := range stats {
		if st.GamesPlayed < minGames || st.GamesLost == 0 {
			continue
		}
		if best == nil {
			best = st
			continue
		}
		switch {
		case st.GamesLost > best.GamesLost:
			best = st
		case st.GamesLost == best.GamesLost && st.GamesPlayed > best.GamesPlayed:
			best = st
		case st.GamesLost == best.GamesLost && st.GamesPlayed == best.GamesPlayed && st.OpponentID < best.OpponentID:
			best = st
		}
	}
	if best == nil {
		return nil
	}
	return &sharedtypes.Nemesis{
		OpponentID:    best.OpponentID,
		OpponentLabel: best.OpponentLabel,
		GamesPlayed:   best.GamesPlayed,
		GamesWon:      best.GamesWon,
		GamesLost:     best.GamesLost,
		WinRate:       float64(best.GamesWon) / float64(best.GamesPlayed),
	}
}
