package service

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"ai-study-assist-be/internal/dto"
	"ai-study-assist-be/internal/pkg/logger"
	"ai-study-assist-be/pkg/events"
	pktNats "ai-study-assist-be/pkg/nats"

	"github.com/patrickmn/go-cache"
)

const (
	EventActivity = "activity"

	// ActivityLimit caps the feed kept per student.
	ActivityLimit = 50

	activityDurable = "study-activity-feed"
)

// EventSubscriber is the consuming side of the study event bus.
type EventSubscriber interface {
	Subscribe(ctx context.Context, subject, durableName string, handler pktNats.EventHandler) error
}

var ErrNoEventBus = errors.New("event bus unavailable")

type IActivityService interface {
	Start(ctx context.Context) error
	Record(ctx context.Context, event events.Event) error
	Recent(studentId int64, limit int) []*dto.ActivityResponse
}

type activityService struct {
	subscriber EventSubscriber
	feeds      *cache.Cache
	mu         sync.Mutex
	notifier   Notifier
	logger     logger.ILogger
}

// NewActivityService keeps a short per-student feed of study events and
// forwards each one to the student's open pages.
func NewActivityService(subscriber EventSubscriber, retention time.Duration, notifier Notifier, logger logger.ILogger) IActivityService {
	return &activityService{
		subscriber: subscriber,
		feeds:      cache.New(retention, retention/2),
		notifier:   notifier,
		logger:     logger,
	}
}

// Start subscribes to every study event. Without a subscriber the feed only
// holds what Record is handed directly.
func (s *activityService) Start(ctx context.Context) error {
	if s.subscriber == nil {
		return ErrNoEventBus
	}
	return s.subscriber.Subscribe(ctx, pktNats.Subject(">"), activityDurable, s.Record)
}

// Record appends event to its student's feed. Events without a student are
// acknowledged and dropped.
func (s *activityService) Record(_ context.Context, event events.Event) error {
	studentId, ok := eventStudent(event)
	if !ok {
		s.logger.Debug("ACTIVITY", "Event without student skipped", map[string]interface{}{
			"type": event.EventType(),
		})
		return nil
	}

	item := &dto.ActivityResponse{
		Type:       event.EventType(),
		Data:       event.Payload(),
		OccurredAt: event.Timestamp(),
	}
	if course, ok := event.Payload()["course_id"].(string); ok {
		item.CourseId = course
	}

	key := strconv.FormatInt(studentId, 10)
	s.mu.Lock()
	var feed []*dto.ActivityResponse
	if x, found := s.feeds.Get(key); found {
		feed = x.([]*dto.ActivityResponse)
	}
	next := make([]*dto.ActivityResponse, 0, len(feed)+1)
	next = append(next, item)
	next = append(next, feed...)
	if len(next) > ActivityLimit {
		next = next[:ActivityLimit]
	}
	s.feeds.Set(key, next, cache.DefaultExpiration)
	s.mu.Unlock()

	s.notifier.Send(studentId, EventActivity, item)
	return nil
}

// Recent returns up to limit items, newest first. A limit outside
// 1..ActivityLimit means ActivityLimit.
func (s *activityService) Recent(studentId int64, limit int) []*dto.ActivityResponse {
	if limit <= 0 || limit > ActivityLimit {
		limit = ActivityLimit
	}

	x, found := s.feeds.Get(strconv.FormatInt(studentId, 10))
	if !found {
		return []*dto.ActivityResponse{}
	}
	feed := x.([]*dto.ActivityResponse)
	if len(feed) > limit {
		feed = feed[:limit]
	}
	out := make([]*dto.ActivityResponse, len(feed))
	copy(out, feed)
	return out
}

func eventStudent(event events.Event) (int64, bool) {
	id, ok := events.BaseEvent{Data: event.Payload()}.Int64("student_id")
	return id, ok && id > 0
}
