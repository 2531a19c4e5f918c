package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/riverqueue/river"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	statsservice "github.com/sideout-club/sideout-backend/app/modules/stats/application"
	sharedevents "github.com/sideout-club/sideout-backend/app/shared/events"
	sharedtypes "github.com/sideout-club/sideout-backend/app/shared/types"
	"github.com/sideout-club/sideout-backend/app/shared/utils"
	"github.com/sideout-club/sideout-backend/internal/observability"
)

type fakeStatsService struct {
	ReconcileStuckFunc func(ctx context.Context, updatedBefore time.Time, limit int) (*statsservice.ReconcileReport, error)
}

func (f *fakeStatsService) ProcessMatchStats(ctx context.Context, matchID sharedtypes.MatchID) (statsservice.MatchStatsResult, error) {
	panic("not used")
}

func (f *fakeStatsService) RecomputeNemesis(ctx context.Context, playerID sharedtypes.PlayerID) (statsservice.NemesisResult, error) {
	panic("not used")
}

func (f *fakeStatsService) ReconcileStuck(ctx context.Context, updatedBefore time.Time, limit int) (*statsservice.ReconcileReport, error) {
	return f.ReconcileStuckFunc(ctx, updatedBefore, limit)
}

type fakePublisher struct {
	published []publishedMessage
	err       error
}

type publishedMessage struct {
	topic string
	msg   *message.Message
}

func (f *fakePublisher) Publish(topic string, messages ...*message.Message) error {
	if f.err != nil {
		return f.err
	}
	for _, m := range messages {
		f.published = append(f.published, publishedMessage{topic: topic, msg: m})
	}
	return nil
}

func (f *fakePublisher) Close() error { return nil }

func reconcileJob() *river.Job[ReconcileArgs] {
	return &river.Job[ReconcileArgs]{Args: ReconcileArgs{}}
}

func TestReconcileWorker_RedrivesByStage(t *testing.T) {
	pendingID := sharedtypes.NewMatchID()
	ratedID := sharedtypes.NewMatchID()

	service := &fakeStatsService{
		ReconcileStuckFunc: func(ctx context.Context, updatedBefore time.Time, limit int) (*statsservice.ReconcileReport, error) {
			assert.Equal(t, reconcileBatchLimit, limit)
			assert.WithinDuration(t, time.Now().UTC().Add(-30*time.Minute), updatedBefore, 5*time.Second)
			return &statsservice.ReconcileReport{
				Examined: 2,
				Redriven: []statsservice.StuckMatch{
					{MatchID: pendingID, State: sharedtypes.PipelineStatePending},
					{MatchID: ratedID, State: sharedtypes.PipelineStateRated},
				},
				SweptBefore: updatedBefore,
			}, nil
		},
	}
	publisher := &fakePublisher{}
	worker := NewReconcileWorker(service, publisher, observability.NoOpLogger, 30*time.Minute)

	err := worker.Work(context.Background(), reconcileJob())
	require.NoError(t, err)
	require.Len(t, publisher.published, 2)

	assert.Equal(t, sharedevents.MatchCompletedV1, publisher.published[0].topic)
	assert.Equal(t, sharedevents.MatchCompletedV1, publisher.published[0].msg.Metadata.Get(utils.TopicMetadataKey))
	var completed sharedevents.MatchCompletedPayloadV1
	require.NoError(t, json.Unmarshal(publisher.published[0].msg.Payload, &completed))
	assert.Equal(t, pendingID, completed.MatchID)
	assert.Equal(t, sharedtypes.MatchStatusCompleted, completed.NewStatus)

	assert.Equal(t, sharedevents.MatchRatingCalculatedV1, publisher.published[1].topic)
	var rated sharedevents.MatchRatingCalculatedPayloadV1
	require.NoError(t, json.Unmarshal(publisher.published[1].msg.Payload, &rated))
	assert.Equal(t, ratedID, rated.MatchID)
}

func TestReconcileWorker_NothingStuck(t *testing.T) {
	service := &fakeStatsService{
		ReconcileStuckFunc: func(ctx context.Context, updatedBefore time.Time, limit int) (*statsservice.ReconcileReport, error) {
			return &statsservice.ReconcileReport{SweptBefore: updatedBefore}, nil
		},
	}
	publisher := &fakePublisher{}
	worker := NewReconcileWorker(service, publisher, observability.NoOpLogger, time.Hour)

	require.NoError(t, worker.Work(context.Background(), reconcileJob()))
	assert.Empty(t, publisher.published)
}

func TestReconcileWorker_SweepErrorRetries(t *testing.T) {
	sweepErr := errors.New("connection reset")
	service := &fakeStatsService{
		ReconcileStuckFunc: func(ctx context.Context, updatedBefore time.Time, limit int) (*statsservice.ReconcileReport, error) {
			return nil, sweepErr
		},
	}
	worker := NewReconcileWorker(service, &fakePublisher{}, observability.NoOpLogger, time.Hour)

	err := worker.Work(context.Background(), reconcileJob())
	require.Error(t, err)
	assert.ErrorIs(t, err, sweepErr)
}

func TestReconcileWorker_PublishErrorRetries(t *testing.T) {
	service := &fakeStatsService{
		ReconcileStuckFunc: func(ctx context.Context, updatedBefore time.Time, limit int) (*statsservice.ReconcileReport, error) {
			return &statsservice.ReconcileReport{
				Examined: 1,
				Redriven: []statsservice.StuckMatch{
					{MatchID: sharedtypes.NewMatchID(), State: sharedtypes.PipelineStateRated},
				},
				SweptBefore: updatedBefore,
			}, nil
		},
	}
	worker := NewReconcileWorker(service, &fakePublisher{err: errors.New("nats down")}, observability.NoOpLogger, time.Hour)

	require.Error(t, worker.Work(context.Background(), reconcileJob()))
}
