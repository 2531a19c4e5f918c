package statsservice

import (
	"context"
	"time"

	"github.com/sideout-club/sideout-backend/app/shared/attr"
	sharedtypes "github.com/sideout-club/sideout-backend/app/shared/types"
)

// ReconcileStuck finds matches whose pipeline stalled: completed matches
// still pending (the completion event was lost) and rated matches whose
// stats never finished (a pairing kept failing). The caller re-drives
// them through the normal event path so every repair goes through the
// same idempotent machinery as a first delivery.
func (s *StatsService) ReconcileStuck(ctx context.Context, updatedBefore time.Time, limit int) (*ReconcileReport, error) {
	report := &ReconcileReport{SweptBefore: updatedBefore}

	for _, state := range []sharedtypes.PipelineState{sharedtypes.PipelineStatePending, sharedtypes.PipelineStateRated} {
		matches, err := s.repo.ListStuck(ctx, s.database(), state, updatedBefore, limit)
		if err != nil {
			return nil, err
		}
		report.Examined += len(matches)
		for _, m := range matches {
			report.Redriven = append(report.Redriven, StuckMatch{MatchID: m.ID, State: state})
			s.logger.WarnContext(ctx, "Re-driving stalled match",
				attr.MatchID("match_id", m.ID),
				attr.String("pipeline_state", string(state)),
			)
		}
	}

	s.metrics.RecordReconcileSweep(ctx, len(report.Redriven))
	return report, nil
}
