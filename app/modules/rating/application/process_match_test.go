package ratingservice

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel/trace/noop"

	ratingdb "github.com/sideout-club/sideout-backend/app/modules/rating/infrastructure/repositories"
	"github.com/sideout-club/sideout-backend/app/shared/metrics/ratingmetrics"
	sharedtypes "github.com/sideout-club/sideout-backend/app/shared/types"
	"github.com/sideout-club/sideout-backend/internal/observability"
	"github.com/sideout-club/sideout-backend/pkg/elo"
)

func newTestService(repo ratingdb.Repository) *RatingService {
	tracer := noop.NewTracerProvider().Tracer("test")
	return NewRatingService(repo, observability.NoOpLogger, ratingmetrics.NewNoop(), tracer, nil, elo.DefaultParams(), 10)
}

func completedMatch(id sharedtypes.MatchID, subgames []sharedtypes.SubgameResult) *ratingdb.Match {
	completedAt := time.Now().UTC()
	return &ratingdb.Match{
		ID:            id,
		Status:        sharedtypes.MatchStatusCompleted,
		TeamA:         []sharedtypes.PlayerID{"alice", "bob"},
		TeamB:         []sharedtypes.PlayerID{"carol", "dave"},
		Subgames:      subgames,
		PipelineState: sharedtypes.PipelineStatePending,
		CompletedAt:   &completedAt,
	}
}

func TestProcessMatchRatings_SingleSubgame(t *testing.T) {
	ctx := context.Background()
	repo := NewFakeRatingRepository()
	matchID := sharedtypes.NewMatchID()
	repo.Matches[matchID] = completedMatch(matchID, []sharedtypes.SubgameResult{
		{Number: 1, Winner: sharedtypes.TeamSideA, ScoreA: 21, ScoreB: 15},
	})

	svc := newTestService(repo)
	result, err := svc.ProcessMatchRatings(ctx, matchID)
	if err != nil {
		t.Fatalf("ProcessMatchRatings returned error: %v", err)
	}
	if !result.IsSuccess() {
		t.Fatalf("expected success, got %+v", result)
	}

	success := *result.Success
	if success.AlreadyRated {
		t.Error("expected a fresh run, got AlreadyRated")
	}
	if success.Draw {
		t.Error("expected a decided match, got draw")
	}
	if success.Winner == nil || *success.Winner != sharedtypes.TeamSideA {
		t.Errorf("expected team A to win, got %v", success.Winner)
	}

	// Equal 1200s with K=32 move exactly 16 points each way.
	for _, id := range []sharedtypes.PlayerID{"alice", "bob"} {
		if got := success.Updates[id].Delta; got != 16 {
			t.Errorf("winner %s delta = %d, want 16", id, got)
		}
		p := repo.Profiles[id]
		if p.Rating != 1216 {
			t.Errorf("winner %s rating = %d, want 1216", id, p.Rating)
		}
		if p.RatingPeak != 1216 {
			t.Errorf("winner %s peak = %d, want 1216", id, p.RatingPeak)
		}
		if p.Streak != 1 || p.Wins != 1 || p.Losses != 0 || p.GamesPlayed != 1 {
			t.Errorf("winner %s counters = streak %d wins %d losses %d played %d", id, p.Streak, p.Wins, p.Losses, p.GamesPlayed)
		}
		if p.BestWin == nil {
			t.Errorf("winner %s has no best win", id)
		} else if p.BestWin.OpponentTeamRating != 1200 {
			t.Errorf("winner %s best win opponent rating = %d, want 1200", id, p.BestWin.OpponentTeamRating)
		}
		if len(p.RecentMatches) != 1 || p.RecentMatches[0] != matchID {
			t.Errorf("winner %s recent matches = %v", id, p.RecentMatches)
		}
	}
	for _, id := range []sharedtypes.PlayerID{"carol", "dave"} {
		if got := success.Updates[id].Delta; got != -16 {
			t.Errorf("loser %s delta = %d, want -16", id, got)
		}
		p := repo.Profiles[id]
		if p.Rating != 1184 {
			t.Errorf("loser %s rating = %d, want 1184", id, p.Rating)
		}
		if p.RatingPeak != 1200 {
			t.Errorf("loser %s peak = %d, want 1200", id, p.RatingPeak)
		}
		if p.Streak != -1 || p.Wins != 0 || p.Losses != 1 {
			t.Errorf("loser %s counters = streak %d wins %d losses %d", id, p.Streak, p.Wins, p.Losses)
		}
		if p.BestWin != nil {
			t.Errorf("loser %s unexpectedly has a best win", id)
		}
	}

	if len(repo.History) != 4 {
		t.Fatalf("history rows = %d, want 4", len(repo.History))
	}
	match := repo.Matches[matchID]
	if match.PipelineState != sharedtypes.PipelineStateRated {
		t.Errorf("pipeline state = %s, want rated", match.PipelineState)
	}
	if len(match.RatingUpdates) != 4 {
		t.Errorf("rating updates entries = %d, want 4", len(match.RatingUpdates))
	}
}

func TestProcessMatchRatings_SequentialSubgames(t *testing.T) {
	ctx := context.Background()
	repo := NewFakeRatingRepository()
	matchID := sharedtypes.NewMatchID()
	repo.Matches[matchID] = completedMatch(matchID, []sharedtypes.SubgameResult{
		{Number: 1, Winner: sharedtypes.TeamSideA, ScoreA: 21, ScoreB: 12},
		{Number: 2, Winner: sharedtypes.TeamSideA, ScoreA: 21, ScoreB: 18},
	})

	svc := newTestService(repo)
	result, err := svc.ProcessMatchRatings(ctx, matchID)
	if err != nil {
		t.Fatalf("ProcessMatchRatings returned error: %v", err)
	}
	if !result.IsSuccess() {
		t.Fatalf("expected success, got %+v", result)
	}

	// The second game is rated from post-game-one ratings, so the favorite
	// earns less than 16: +16 then +15 for a 31 point swing.
	if got := result.Success.Updates["alice"].Delta; got != 31 {
		t.Errorf("cumulative delta = %d, want 31", got)
	}
	if got := result.Success.Updates["carol"].Delta; got != -31 {
		t.Errorf("cumulative delta = %d, want -31", got)
	}
	if result.Success.SubgamesRated != 2 {
		t.Errorf("subgames rated = %d, want 2", result.Success.SubgamesRated)
	}
}

func TestProcessMatchRatings_ComebackWinnerByCumulativeDelta(t *testing.T) {
	ctx := context.Background()
	repo := NewFakeRatingRepository()
	matchID := sharedtypes.NewMatchID()
	repo.Matches[matchID] = completedMatch(matchID, []sharedtypes.SubgameResult{
		{Number: 1, Winner: sharedtypes.TeamSideA, ScoreA: 21, ScoreB: 19},
		{Number: 2, Winner: sharedtypes.TeamSideB, ScoreA: 17, ScoreB: 21},
	})

	svc := newTestService(repo)
	result, err := svc.ProcessMatchRatings(ctx, matchID)
	if err != nil {
		t.Fatalf("ProcessMatchRatings returned error: %v", err)
	}
	if !result.IsSuccess() {
		t.Fatalf("expected success, got %+v", result)
	}

	// Game two was an upset against a now higher-rated team A, so team B
	// nets +1 overall (-16 then +17) and takes the match.
	if result.Success.Winner == nil || *result.Success.Winner != sharedtypes.TeamSideB {
		t.Fatalf("winner = %v, want teamB", result.Success.Winner)
	}
	if got := result.Success.Updates["carol"].Delta; got != 1 {
		t.Errorf("team B delta = %d, want 1", got)
	}
	if repo.Profiles["alice"].Losses != 1 {
		t.Errorf("team A should record the loss")
	}
}

func TestProcessMatchRatings_AlreadyRated(t *testing.T) {
	ctx := context.Background()
	repo := NewFakeRatingRepository()
	matchID := sharedtypes.NewMatchID()
	match := completedMatch(matchID, []sharedtypes.SubgameResult{
		{Number: 1, Winner: sharedtypes.TeamSideA, ScoreA: 21, ScoreB: 10},
	})
	match.PipelineState = sharedtypes.PipelineStateRated
	match.RatingUpdates = map[sharedtypes.PlayerID]sharedtypes.RatingChange{
		"alice": {Previous: 1200, New: 1216, Delta: 16},
	}
	repo.Matches[matchID] = match

	svc := newTestService(repo)
	result, err := svc.ProcessMatchRatings(ctx, matchID)
	if err != nil {
		t.Fatalf("ProcessMatchRatings returned error: %v", err)
	}
	if !result.IsSuccess() || !result.Success.AlreadyRated {
		t.Fatalf("expected AlreadyRated success, got %+v", result)
	}
	if result.Success.State != sharedtypes.PipelineStateRated {
		t.Errorf("state = %s, want rated", result.Success.State)
	}
	if got := result.Success.Updates["alice"].Delta; got != 16 {
		t.Errorf("previously committed delta = %d, want 16", got)
	}

	trace := repo.Trace()
	if len(trace) != 1 || trace[0] != "GetMatchForUpdate" {
		t.Errorf("duplicate trigger touched the store: %v", trace)
	}
}

func TestProcessMatchRatings_MatchNotFound(t *testing.T) {
	ctx := context.Background()
	repo := NewFakeRatingRepository()
	svc := newTestService(repo)

	result, err := svc.ProcessMatchRatings(ctx, sharedtypes.NewMatchID())
	if err != nil {
		t.Fatalf("expected handled business failure, got error: %v", err)
	}
	if !result.IsFailure() {
		t.Fatalf("expected failure result, got %+v", result)
	}
	if result.Failure.Reason != ErrMatchNotFound.Error() {
		t.Errorf("reason = %q", result.Failure.Reason)
	}
}

func TestProcessMatchRatings_ValidationFailures(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(m *ratingdb.Match)
		reason string
	}{
		{
			name:   "not completed",
			mutate: func(m *ratingdb.Match) { m.Status = sharedtypes.MatchStatusScheduled },
			reason: ErrMatchNotCompleted.Error(),
		},
		{
			name:   "cancelled",
			mutate: func(m *ratingdb.Match) { m.Status = sharedtypes.MatchStatusCancelled },
			reason: ErrMatchNotCompleted.Error(),
		},
		{
			name:   "no subgames",
			mutate: func(m *ratingdb.Match) { m.Subgames = nil },
			reason: ErrNoSubgames.Error(),
		},
		{
			name:   "empty roster",
			mutate: func(m *ratingdb.Match) { m.TeamB = nil },
			reason: ErrEmptyRoster.Error(),
		},
		{
			name: "unknown winner side",
			mutate: func(m *ratingdb.Match) {
				m.Subgames = []sharedtypes.SubgameResult{{Number: 1, Winner: "teamC", ScoreA: 21, ScoreB: 3}}
			},
			reason: ErrInvalidSubgame.Error(),
		},
		{
			name: "negative score",
			mutate: func(m *ratingdb.Match) {
				m.Subgames = []sharedtypes.SubgameResult{{Number: 1, Winner: sharedtypes.TeamSideA, ScoreA: -1, ScoreB: 3}}
			},
			reason: ErrInvalidSubgame.Error(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewFakeRatingRepository()
			matchID := sharedtypes.NewMatchID()
			match := completedMatch(matchID, []sharedtypes.SubgameResult{
				{Number: 1, Winner: sharedtypes.TeamSideA, ScoreA: 21, ScoreB: 15},
			})
			tt.mutate(match)
			repo.Matches[matchID] = match

			svc := newTestService(repo)
			result, err := svc.ProcessMatchRatings(ctx, matchID)
			if err != nil {
				t.Fatalf("expected handled business failure, got error: %v", err)
			}
			if !result.IsFailure() {
				t.Fatalf("expected failure result, got %+v", result)
			}
			if result.Failure.Reason != tt.reason {
				t.Errorf("reason = %q, want %q", result.Failure.Reason, tt.reason)
			}
			if match.PipelineState != sharedtypes.PipelineStatePending {
				t.Errorf("pipeline state advanced on invalid match")
			}
		})
	}
}

func TestProcessMatchRatings_WeakLinkFavorsBalancedTeams(t *testing.T) {
	ctx := context.Background()
	repo := NewFakeRatingRepository()
	matchID := sharedtypes.NewMatchID()
	repo.Matches[matchID] = completedMatch(matchID, []sharedtypes.SubgameResult{
		{Number: 1, Winner: sharedtypes.TeamSideB, ScoreA: 18, ScoreB: 21},
	})

	// Team A pairs a strong player with a weak one; weak-link weighting
	// pins their aggregate near the weaker rating.
	repo.Profiles["alice"] = &ratingdb.PlayerProfile{ID: "alice", DisplayName: "Alice", Rating: 2000, RatingPeak: 2000}
	repo.Profiles["bob"] = &ratingdb.PlayerProfile{ID: "bob", DisplayName: "Bob", Rating: 1000, RatingPeak: 1200}
	repo.Profiles["carol"] = &ratingdb.PlayerProfile{ID: "carol", DisplayName: "Carol", Rating: 1300, RatingPeak: 1300}
	repo.Profiles["dave"] = &ratingdb.PlayerProfile{ID: "dave", DisplayName: "Dave", Rating: 1300, RatingPeak: 1300}

	svc := newTestService(repo)
	result, err := svc.ProcessMatchRatings(ctx, matchID)
	if err != nil {
		t.Fatalf("ProcessMatchRatings returned error: %v", err)
	}
	if !result.IsSuccess() {
		t.Fatalf("expected success, got %+v", result)
	}

	// Aggregates are 1300 each (0.7*1000 + 0.3*2000 vs the 1300 pair), so
	// the winners gain the full even-odds 16.
	if got := result.Success.Updates["carol"].Delta; got != 16 {
		t.Errorf("winner delta = %d, want 16", got)
	}
	if got := result.Success.Updates["alice"].Delta; got != -16 {
		t.Errorf("loser delta = %d, want -16", got)
	}
}

func TestProcessMatchRatings_BestWinOnlyImproves(t *testing.T) {
	ctx := context.Background()
	repo := NewFakeRatingRepository()
	matchID := sharedtypes.NewMatchID()
	repo.Matches[matchID] = completedMatch(matchID, []sharedtypes.SubgameResult{
		{Number: 1, Winner: sharedtypes.TeamSideA, ScoreA: 21, ScoreB: 15},
	})

	existing := &sharedtypes.BestWin{
		OpponentTeamRating: 1500,
		OpponentLabel:      "Strong & Stronger",
		RatingGained:       20,
		MatchID:            sharedtypes.NewMatchID(),
		AchievedAt:         time.Now().Add(-24 * time.Hour),
	}
	repo.Profiles["alice"] = &ratingdb.PlayerProfile{ID: "alice", Rating: 1200, RatingPeak: 1200, BestWin: existing}

	svc := newTestService(repo)
	if _, err := svc.ProcessMatchRatings(ctx, matchID); err != nil {
		t.Fatalf("ProcessMatchRatings returned error: %v", err)
	}

	// The beaten team was rated 1200, below the stored 1500 mark.
	got := repo.Profiles["alice"].BestWin
	if got == nil || got.OpponentTeamRating != 1500 {
		t.Errorf("best win regressed: %+v", got)
	}

	// Bob had no best win, so any win records one.
	if bw := repo.Profiles["bob"].BestWin; bw == nil || bw.MatchID != matchID {
		t.Errorf("first win should set best win, got %+v", bw)
	}
}

func TestProcessMatchRatings_RecentMatchesCapped(t *testing.T) {
	ctx := context.Background()
	repo := NewFakeRatingRepository()
	matchID := sharedtypes.NewMatchID()
	repo.Matches[matchID] = completedMatch(matchID, []sharedtypes.SubgameResult{
		{Number: 1, Winner: sharedtypes.TeamSideA, ScoreA: 21, ScoreB: 15},
	})

	var recent []sharedtypes.MatchID
	for i := 0; i < 10; i++ {
		recent = append(recent, sharedtypes.NewMatchID())
	}
	repo.Profiles["alice"] = &ratingdb.PlayerProfile{ID: "alice", Rating: 1200, RatingPeak: 1200, RecentMatches: recent}

	svc := newTestService(repo)
	if _, err := svc.ProcessMatchRatings(ctx, matchID); err != nil {
		t.Fatalf("ProcessMatchRatings returned error: %v", err)
	}

	got := repo.Profiles["alice"].RecentMatches
	if len(got) != 10 {
		t.Fatalf("recent matches length = %d, want 10", len(got))
	}
	if got[0] != matchID {
		t.Errorf("newest match should be first, got %s", got[0])
	}
	if got[9] != recent[8] {
		t.Errorf("oldest entry should have been evicted")
	}
}

func TestProcessMatchRatings_DrawLeavesRecordsUntouched(t *testing.T) {
	ctx := context.Background()
	repo := NewFakeRatingRepository()
	matchID := sharedtypes.NewMatchID()

	// With A at 1193 and B at 1207, game one moves 17 points to A and game
	// two moves the same 17 back: zero net for everyone, one win each.
	match := completedMatch(matchID, []sharedtypes.SubgameResult{
		{Number: 1, Winner: sharedtypes.TeamSideA, ScoreA: 21, ScoreB: 19},
		{Number: 2, Winner: sharedtypes.TeamSideB, ScoreA: 19, ScoreB: 21},
	})
	repo.Matches[matchID] = match

	priorBest := &sharedtypes.BestWin{
		OpponentTeamRating: 1400,
		OpponentLabel:      "Old & Rivals",
		RatingGained:       12,
		MatchID:            sharedtypes.NewMatchID(),
		AchievedAt:         time.Now().Add(-48 * time.Hour),
	}
	repo.Profiles["alice"] = &ratingdb.PlayerProfile{
		ID: "alice", Rating: 1193, RatingPeak: 1250,
		Streak: 2, Wins: 3, Losses: 1, GamesPlayed: 4,
		BestWin: priorBest,
	}
	repo.Profiles["bob"] = &ratingdb.PlayerProfile{ID: "bob", Rating: 1193, RatingPeak: 1193}
	repo.Profiles["carol"] = &ratingdb.PlayerProfile{ID: "carol", Rating: 1207, RatingPeak: 1207, Streak: -1, Losses: 1, GamesPlayed: 1}
	repo.Profiles["dave"] = &ratingdb.PlayerProfile{ID: "dave", Rating: 1207, RatingPeak: 1207}

	svc := newTestService(repo)
	result, err := svc.ProcessMatchRatings(ctx, matchID)
	if err != nil {
		t.Fatalf("ProcessMatchRatings returned error: %v", err)
	}
	if !result.IsSuccess() {
		t.Fatalf("expected success, got %+v", result)
	}
	if !result.Success.Draw || result.Success.Winner != nil {
		t.Fatalf("expected a draw, got winner %v", result.Success.Winner)
	}

	alice := repo.Profiles["alice"]
	if alice.Rating != 1193 {
		t.Errorf("alice rating = %d, want 1193", alice.Rating)
	}
	if alice.Streak != 2 || alice.Wins != 3 || alice.Losses != 1 {
		t.Errorf("draw moved counters: streak %d wins %d losses %d", alice.Streak, alice.Wins, alice.Losses)
	}
	if alice.GamesPlayed != 5 {
		t.Errorf("games played = %d, want 5", alice.GamesPlayed)
	}
	if alice.BestWin != priorBest {
		t.Errorf("draw moved best win: %+v", alice.BestWin)
	}
	carol := repo.Profiles["carol"]
	if carol.Streak != -1 || carol.Wins != 0 || carol.Losses != 1 {
		t.Errorf("draw moved counters: streak %d wins %d losses %d", carol.Streak, carol.Wins, carol.Losses)
	}

	// History and rating updates are still written, all with zero delta
	// and no winner.
	if len(repo.History) != 4 {
		t.Fatalf("history rows = %d, want 4", len(repo.History))
	}
	for _, h := range repo.History {
		if h.Won {
			t.Errorf("history row for %s marked won on a draw", h.PlayerID)
		}
		if h.Delta != 0 {
			t.Errorf("history delta for %s = %d, want 0", h.PlayerID, h.Delta)
		}
	}
	stored := repo.Matches[matchID]
	if stored.PipelineState != sharedtypes.PipelineStateRated {
		t.Errorf("pipeline state = %s, want rated", stored.PipelineState)
	}
	if len(stored.RatingUpdates) != 4 {
		t.Fatalf("rating updates entries = %d, want 4", len(stored.RatingUpdates))
	}
	for id, change := range stored.RatingUpdates {
		if change.Delta != 0 || change.New != change.Previous {
			t.Errorf("update for %s = %+v, want zero movement", id, change)
		}
	}
}

func TestProcessMatchRatings_TiebreakWinNetsNoBestWin(t *testing.T) {
	ctx := context.Background()
	repo := NewFakeRatingRepository()
	matchID := sharedtypes.NewMatchID()

	// The favored pair wins 2-1 but the deltas (+11, -22, +11) cancel
	// exactly, so the match is decided on the sub-game count alone.
	repo.Matches[matchID] = completedMatch(matchID, []sharedtypes.SubgameResult{
		{Number: 1, Winner: sharedtypes.TeamSideA, ScoreA: 21, ScoreB: 17},
		{Number: 2, Winner: sharedtypes.TeamSideB, ScoreA: 18, ScoreB: 21},
		{Number: 3, Winner: sharedtypes.TeamSideA, ScoreA: 21, ScoreB: 19},
	})
	for _, id := range []sharedtypes.PlayerID{"alice", "bob"} {
		repo.Profiles[id] = &ratingdb.PlayerProfile{ID: id, Rating: 1323, RatingPeak: 1323}
	}
	for _, id := range []sharedtypes.PlayerID{"carol", "dave"} {
		repo.Profiles[id] = &ratingdb.PlayerProfile{ID: id, Rating: 1200, RatingPeak: 1200}
	}

	svc := newTestService(repo)
	result, err := svc.ProcessMatchRatings(ctx, matchID)
	if err != nil {
		t.Fatalf("ProcessMatchRatings returned error: %v", err)
	}
	if !result.IsSuccess() {
		t.Fatalf("expected success, got %+v", result)
	}
	if result.Success.Winner == nil || *result.Success.Winner != sharedtypes.TeamSideA {
		t.Fatalf("winner = %v, want teamA", result.Success.Winner)
	}
	if got := result.Success.Updates["alice"].Delta; got != 0 {
		t.Fatalf("cumulative delta = %d, want 0", got)
	}

	// The win still counts, but a zero-gain win never becomes best win.
	alice := repo.Profiles["alice"]
	if alice.Wins != 1 || alice.Streak != 1 {
		t.Errorf("winner counters = wins %d streak %d", alice.Wins, alice.Streak)
	}
	if alice.BestWin != nil {
		t.Errorf("zero-delta win recorded a best win: %+v", alice.BestWin)
	}
	if carol := repo.Profiles["carol"]; carol.Losses != 1 {
		t.Errorf("loser should record the loss, got %d", carol.Losses)
	}
}

func TestProcessMatchRatings_InfrastructureErrorPropagates(t *testing.T) {
	ctx := context.Background()
	repo := NewFakeRatingRepository()
	matchID := sharedtypes.NewMatchID()
	repo.Matches[matchID] = completedMatch(matchID, []sharedtypes.SubgameResult{
		{Number: 1, Winner: sharedtypes.TeamSideA, ScoreA: 21, ScoreB: 15},
	})

	dbErr := errors.New("connection reset")
	repo.UpsertProfileFunc = func(ctx context.Context, db bun.IDB, profile *ratingdb.PlayerProfile) error {
		return dbErr
	}

	svc := newTestService(repo)
	_, err := svc.ProcessMatchRatings(ctx, matchID)
	if err == nil || !errors.Is(err, dbErr) {
		t.Fatalf("expected wrapped infrastructure error, got %v", err)
	}
}

func TestResolveWinner(t *testing.T) {
	match := completedMatch(sharedtypes.NewMatchID(), nil)

	tests := []struct {
		name       string
		cumulative map[sharedtypes.PlayerID]int
		winsA      int
		winsB      int
		wantSide   *sharedtypes.TeamSide
		wantDraw   bool
	}{
		{
			name:       "positive average wins",
			cumulative: map[sharedtypes.PlayerID]int{"alice": 16, "bob": 16, "carol": -16, "dave": -16},
			winsA:      1,
			wantSide:   sidePtr(sharedtypes.TeamSideA),
		},
		{
			name:       "negative average loses",
			cumulative: map[sharedtypes.PlayerID]int{"alice": -1, "bob": -1, "carol": 1, "dave": 1},
			winsA:      1, winsB: 1,
			wantSide: sidePtr(sharedtypes.TeamSideB),
		},
		{
			name:       "zero net falls back to subgame wins",
			cumulative: map[sharedtypes.PlayerID]int{},
			winsA:      2, winsB: 1,
			wantSide: sidePtr(sharedtypes.TeamSideA),
		},
		{
			name:       "zero net and even wins is a draw",
			cumulative: map[sharedtypes.PlayerID]int{},
			winsA:      1, winsB: 1,
			wantDraw: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			side, draw := resolveWinner(match, tt.cumulative, tt.winsA, tt.winsB)
			if draw != tt.wantDraw {
				t.Fatalf("draw = %v, want %v", draw, tt.wantDraw)
			}
			if tt.wantSide == nil {
				if side != nil {
					t.Errorf("side = %v, want nil", *side)
				}
				return
			}
			if side == nil || *side != *tt.wantSide {
				t.Errorf("side = %v, want %v", side, *tt.wantSide)
			}
		})
	}
}

func sidePtr(s sharedtypes.TeamSide) *sharedtypes.TeamSide { return &s }
