package statsservice

import (
	"context"
	"time"

	"github.com/sideout-club/sideout-backend/app/shared/results"
	sharedtypes "github.com/sideout-club/sideout-backend/app/shared/types"
)

// PairingRef names one directed head-to-head aggregate that changed.
type PairingRef struct {
	PlayerID   sharedtypes.PlayerID
	OpponentID sharedtypes.PlayerID
}

// MatchStatsSuccess reports the outcome of a stats relay run. Applied
// counts aggregates written this run; Skipped counts aggregates that had
// already absorbed the match on an earlier delivery; PlayersUpdated
// counts profiles whose role and point splits moved.
type MatchStatsSuccess struct {
	MatchID          sharedtypes.MatchID
	State            sharedtypes.PipelineState
	AlreadyProcessed bool
	Applied          int
	Skipped          int
	PlayersUpdated   int
	UpdatedPairings  []PairingRef
}

// MatchStatsFailure reports a terminal business failure.
type MatchStatsFailure struct {
	MatchID sharedtypes.MatchID
	Reason  string
}

// MatchStatsResult is the envelope returned by ProcessMatchStats.
type MatchStatsResult = results.OperationResult[MatchStatsSuccess, MatchStatsFailure]

// NemesisSuccess reports a nemesis recompute. Nemesis is nil when the
// summary was cleared.
type NemesisSuccess struct {
	PlayerID sharedtypes.PlayerID
	Nemesis  *sharedtypes.Nemesis
}

// NemesisFailure reports a terminal business failure.
type NemesisFailure struct {
	PlayerID sharedtypes.PlayerID
	Reason   string
}

// NemesisResult is the envelope returned by RecomputeNemesis.
type NemesisResult = results.OperationResult[NemesisSuccess, NemesisFailure]

// StuckMatch is one stalled match found by the reconciliation sweep,
// with the state it was stuck in.
type StuckMatch struct {
	MatchID sharedtypes.MatchID
	State   sharedtypes.PipelineState
}

// ReconcileReport summarizes one reconciliation sweep.
type ReconcileReport struct {
	Examined    int
	Redriven    []StuckMatch
	SweptBefore time.Time
}

// Service is the stats module's application surface.
type Service interface {
	// ProcessMatchStats folds one rated match into every pairing
	// aggregate it touches, each in its own transaction, then advances
	// the pipeline state and applies the participants' role and point
	// splits together once all pairings are in.
	ProcessMatchStats(ctx context.Context, matchID sharedtypes.MatchID) (MatchStatsResult, error)

	// RecomputeNemesis rederives one player's toughest-opponent summary
	// from their full head-to-head set.
	RecomputeNemesis(ctx context.Context, playerID sharedtypes.PlayerID) (NemesisResult, error)

	// ReconcileStuck finds matches whose pipeline stalled and returns
	// them for re-driving.
	ReconcileStuck(ctx context.Context, updatedBefore time.Time, limit int) (*ReconcileReport, error)
}
