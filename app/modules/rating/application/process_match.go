package ratingservice

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/uptrace/bun"

	ratingdb "github.com/sideout-club/sideout-backend/app/modules/rating/infrastructure/repositories"
	"github.com/sideout-club/sideout-backend/app/shared/attr"
	"github.com/sideout-club/sideout-backend/app/shared/results"
	sharedtypes "github.com/sideout-club/sideout-backend/app/shared/types"
	"github.com/sideout-club/sideout-backend/pkg/elo"
)

// ProcessMatchRatings applies the full rating effects of one completed
// match. Everything happens inside a single transaction: the pipeline
// state check, the profile updates, the history rows, and the state
// advance all commit or roll back together, so redelivered triggers can
// never double-apply.
func (s *RatingService) ProcessMatchRatings(ctx context.Context, matchID sharedtypes.MatchID) (MatchRatingsResult, error) {
	return withTelemetry(s, ctx, "ProcessMatchRatings", matchID, func(ctx context.Context) (MatchRatingsResult, error) {
		return runInTx(s, ctx, func(ctx context.Context, db bun.IDB) (MatchRatingsResult, error) {
			match, err := s.repo.GetMatchForUpdate(ctx, db, matchID)
			if err != nil {
				if errors.Is(err, ratingdb.ErrNotFound) {
					return results.Failuref[MatchRatingsSuccess, MatchRatingsFailure](MatchRatingsFailure{
						MatchID: matchID,
						Reason:  ErrMatchNotFound.Error(),
					}), nil
				}
				return MatchRatingsResult{}, err
			}

			if match.PipelineState.RatingCalculated() {
				s.metrics.RecordDuplicateSkipped(ctx)
				s.logger.InfoContext(ctx, "Match already rated, skipping",
					attr.ExtractCorrelationID(ctx),
					attr.MatchID("match_id", matchID),
					attr.String("pipeline_state", string(match.PipelineState)),
				)
				return results.Successf[MatchRatingsSuccess, MatchRatingsFailure](MatchRatingsSuccess{
					MatchID:      matchID,
					State:        match.PipelineState,
					AlreadyRated: true,
					Updates:      match.RatingUpdates,
					Participants: len(match.Participants()),
				}), nil
			}

			if err := validateMatch(match); err != nil {
				return results.Failuref[MatchRatingsSuccess, MatchRatingsFailure](MatchRatingsFailure{
					MatchID: matchID,
					Reason:  err.Error(),
				}), nil
			}

			outcome, err := s.applyRatings(ctx, db, match)
			if err != nil {
				return MatchRatingsResult{}, err
			}

			s.metrics.RecordMatchRated(ctx, len(match.Subgames))
			for _, change := range outcome.Updates {
				s.metrics.RecordRatingDelta(ctx, change.Delta)
			}

			return results.Successf[MatchRatingsSuccess, MatchRatingsFailure](*outcome), nil
		})
	})
}

// validateMatch rejects triggers the engine must never act on. Failures
// here leave the match in pending state permanently.
func validateMatch(m *ratingdb.Match) error {
	if m.Status != sharedtypes.MatchStatusCompleted {
		return ErrMatchNotCompleted
	}
	if len(m.TeamA) == 0 || len(m.TeamB) == 0 {
		return ErrEmptyRoster
	}
	if len(m.Subgames) == 0 {
		return ErrNoSubgames
	}
	for _, sg := range m.Subgames {
		if sg.Winner != sharedtypes.TeamSideA && sg.Winner != sharedtypes.TeamSideB {
			return ErrInvalidSubgame
		}
		if sg.ScoreA < 0 || sg.ScoreB < 0 {
			return ErrInvalidSubgame
		}
	}
	return nil
}

// applyRatings runs the sequential sub-game fold and writes every effect.
// Sub-games are processed in order against a working ratings map, so the
// expected score of game N reflects the deltas of games 1..N-1.
func (s *RatingService) applyRatings(ctx context.Context, db bun.IDB, match *ratingdb.Match) (*MatchRatingsSuccess, error) {
	now := time.Now().UTC()
	participants := match.Participants()

	profiles, err := s.loadProfiles(ctx, db, participants)
	if err != nil {
		return nil, err
	}

	current := make(map[sharedtypes.PlayerID]sharedtypes.Rating, len(participants))
	cumulative := make(map[sharedtypes.PlayerID]int, len(participants))
	for id, p := range profiles {
		current[id] = p.Rating
	}

	// Pre-match aggregates, used for best-win quality and history labels.
	preRatingA := s.params.TeamRating(rosterRatings(current, match.TeamA))
	preRatingB := s.params.TeamRating(rosterRatings(current, match.TeamB))

	winsA, winsB := 0, 0
	for _, sg := range match.Subgames {
		teamA := s.params.TeamRating(rosterRatings(current, match.TeamA))
		teamB := s.params.TeamRating(rosterRatings(current, match.TeamB))

		expectedA := elo.ExpectedScore(teamA, teamB)
		expectedB := elo.ExpectedScore(teamB, teamA)

		actualA, actualB := 0.0, 1.0
		if sg.Winner == sharedtypes.TeamSideA {
			actualA, actualB = 1.0, 0.0
			winsA++
		} else {
			winsB++
		}

		deltaA := s.params.Delta(actualA, expectedA)
		deltaB := s.params.Delta(actualB, expectedB)

		for _, id := range match.TeamA {
			current[id] += sharedtypes.Rating(deltaA)
			cumulative[id] += deltaA
		}
		for _, id := range match.TeamB {
			current[id] += sharedtypes.Rating(deltaB)
			cumulative[id] += deltaB
		}
	}

	winner, draw := resolveWinner(match, cumulative, winsA, winsB)
	if draw {
		s.logger.WarnContext(ctx, "Match resolved as draw, win/loss effects skipped",
			attr.ExtractCorrelationID(ctx),
			attr.MatchID("match_id", match.ID),
			attr.Int("subgame_wins_a", winsA),
			attr.Int("subgame_wins_b", winsB),
		)
	}

	labelA := rosterLabel(profiles, match.TeamA)
	labelB := rosterLabel(profiles, match.TeamB)

	updates := make(map[sharedtypes.PlayerID]sharedtypes.RatingChange, len(participants))
	history := make([]*ratingdb.RatingHistoryEntry, 0, len(participants))

	for _, side := range []sharedtypes.TeamSide{sharedtypes.TeamSideA, sharedtypes.TeamSideB} {
		opponentLabel := labelB
		opponentRating := preRatingB
		if side == sharedtypes.TeamSideB {
			opponentLabel = labelA
			opponentRating = preRatingA
		}
		won := !draw && winner != nil && *winner == side

		for _, id := range match.Roster(side) {
			p := profiles[id]
			delta := cumulative[id]
			previous := p.Rating
			next := previous + sharedtypes.Rating(delta)

			updates[id] = sharedtypes.RatingChange{
				Previous: previous,
				New:      next,
				Delta:    delta,
			}

			p.Rating = next
			p.GamesPlayed++
			if next > p.RatingPeak {
				p.RatingPeak = next
				peakAt := now
				p.RatingPeakAt = &peakAt
			}
			if !draw {
				p.Streak = elo.NextStreak(p.Streak, won)
				if won {
					p.Wins++
				} else {
					p.Losses++
				}
			}
			p.RecentMatches = prependCapped(p.RecentMatches, match.ID, s.recentLimit)

			// A win taken on the sub-game tiebreak nets zero; best-win
			// requires actual rating gained.
			if won && delta > 0 {
				beaten := sharedtypes.Rating(math.Round(opponentRating))
				if p.BestWin == nil || beaten > p.BestWin.OpponentTeamRating {
					p.BestWin = &sharedtypes.BestWin{
						OpponentTeamRating: beaten,
						OpponentLabel:      opponentLabel,
						RatingGained:       delta,
						MatchID:            match.ID,
						AchievedAt:         now,
					}
				}
			}

			history = append(history, &ratingdb.RatingHistoryEntry{
				PlayerID:       id,
				MatchID:        match.ID,
				PreviousRating: previous,
				NewRating:      next,
				Delta:          delta,
				OpponentLabel:  opponentLabel,
				Won:            won,
				CreatedAt:      now,
			})
		}
	}

	for _, id := range participants {
		if err := s.repo.UpsertProfile(ctx, db, profiles[id]); err != nil {
			return nil, err
		}
	}
	if err := s.repo.InsertHistory(ctx, db, history); err != nil {
		return nil, err
	}
	if err := s.repo.MarkRated(ctx, db, match, updates); err != nil {
		return nil, err
	}

	return &MatchRatingsSuccess{
		MatchID:       match.ID,
		State:         sharedtypes.PipelineStateRated,
		Draw:          draw,
		Winner:        winner,
		Updates:       updates,
		Participants:  len(participants),
		SubgamesRated: len(match.Subgames),
	}, nil
}

// loadProfiles locks existing profiles and fills in defaults for
// participants rated for the first time.
func (s *RatingService) loadProfiles(ctx context.Context, db bun.IDB, ids []sharedtypes.PlayerID) (map[sharedtypes.PlayerID]*ratingdb.PlayerProfile, error) {
	existing, err := s.repo.GetProfilesForUpdate(ctx, db, ids)
	if err != nil {
		return nil, err
	}

	profiles := make(map[sharedtypes.PlayerID]*ratingdb.PlayerProfile, len(ids))
	for _, p := range existing {
		profiles[p.ID] = p
	}
	for _, id := range ids {
		if _, ok := profiles[id]; ok {
			continue
		}
		profiles[id] = &ratingdb.PlayerProfile{
			ID:         id,
			Rating:     s.params.DefaultRating,
			RatingPeak: s.params.DefaultRating,
		}
	}
	return profiles, nil
}

// resolveWinner decides the match outcome from the average cumulative
// deltas. The side whose average net delta is higher wins; when the
// averages tie (both sides netting zero), the sub-game win count breaks
// the tie, and an even split is a draw.
func resolveWinner(match *ratingdb.Match, cumulative map[sharedtypes.PlayerID]int, winsA, winsB int) (*sharedtypes.TeamSide, bool) {
	avgA := averageDelta(cumulative, match.TeamA)
	avgB := averageDelta(cumulative, match.TeamB)

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

func averageDelta(cumulative map[sharedtypes.PlayerID]int, roster []sharedtypes.PlayerID) float64 {
	if len(roster) == 0 {
		return 0
	}
	sum := 0
	for _, id := range roster {
		sum += cumulative[id]
	}
	return float64(sum) / float64(len(roster))
}

func rosterRatings(current map[sharedtypes.PlayerID]sharedtypes.Rating, roster []sharedtypes.PlayerID) []sharedtypes.Rating {
	out := make([]sharedtypes.Rating, len(roster))
	for i, id := range roster {
		out[i] = current[id]
	}
	return out
}

func rosterLabel(profiles map[sharedtypes.PlayerID]*ratingdb.PlayerProfile, roster []sharedtypes.PlayerID) string {
	names := make([]string, len(roster))
	for i, id := range roster {
		names[i] = profiles[id].Label()
	}
	return strings.Join(names, " & ")
}

func prependCapped(list []sharedtypes.MatchID, id sharedtypes.MatchID, limit int) []sharedtypes.MatchID {
	if limit <= 0 {
		return list
	}
	out := make([]sharedtypes.MatchID, 0, limit)
	out = append(out, id)
	for _, existing := range list {
		if len(out) == limit {
			break
		}
		out = append(out, existing)
	}
	return out
}
