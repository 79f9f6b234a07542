package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"ai-study-assist-be/internal/pkg/logger"
	"ai-study-assist-be/pkg/events"
	pktNats "ai-study-assist-be/pkg/nats"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSubscriber struct {
	subject string
	durable string
	handler pktNats.EventHandler
}

func (s *stubSubscriber) Subscribe(_ context.Context, subject, durableName string, handler pktNats.EventHandler) error {
	s.subject, s.durable, s.handler = subject, durableName, handler
	return nil
}

func studyEvent(eventType string, studentId float64, at time.Time) events.BaseEvent {
	return events.BaseEvent{
		Type:       eventType,
		Data:       map[string]interface{}{"student_id": studentId, "course_id": "bio-101"},
		OccurredAt: at,
	}
}

func TestActivityService_StartSubscribesToEveryStudyEvent(t *testing.T) {
	sub := &stubSubscriber{}
	notifier := &fakeNotifier{}
	svc := NewActivityService(sub, time.Hour, notifier, logger.NewNopLogger())

	require.NoError(t, svc.Start(context.Background()))
	assert.Equal(t, "study.>", sub.subject)
	assert.NotEmpty(t, sub.durable)

	require.NoError(t, sub.handler(context.Background(), studyEvent("GRAPH_LOADED", 4, time.Now())))
	assert.Len(t, svc.Recent(4, 0), 1)
	assert.Len(t, notifier.ofType(EventActivity), 1)
}

func TestActivityService_RecentIsNewestFirstAndCapped(t *testing.T) {
	svc := NewActivityService(&stubSubscriber{}, time.Hour, &fakeNotifier{}, logger.NewNopLogger())
	ctx := context.Background()
	start := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)

	for i := 0; i < ActivityLimit+5; i++ {
		ev := studyEvent(fmt.Sprintf("ASSIST_EXPLAIN_%d", i), 4, start.Add(time.Duration(i)*time.Minute))
		require.NoError(t, svc.Record(ctx, ev))
	}

	all := svc.Recent(4, 0)
	require.Len(t, all, ActivityLimit)
	assert.Equal(t, fmt.Sprintf("ASSIST_EXPLAIN_%d", ActivityLimit+4), all[0].Type)
	assert.Equal(t, "bio-101", all[0].CourseId)

	assert.Len(t, svc.Recent(4, 3), 3)
	assert.Empty(t, svc.Recent(5, 10))
}

func TestActivityService_EventWithoutStudentIsDropped(t *testing.T) {
	notifier := &fakeNotifier{}
	svc := NewActivityService(&stubSubscriber{}, time.Hour, notifier, logger.NewNopLogger())

	err := svc.Record(context.Background(), events.BaseEvent{
		Type: "ANNOTATION_DELETED",
		Data: map[string]interface{}{"annotation_id": float64(3)},
	})

	require.NoError(t, err)
	assert.Zero(t, notifier.count())
}
