package service

import (
	"context"
	"encoding/json"

	"ai-study-assist-be/internal/dto"
	"ai-study-assist-be/internal/pkg/logger"
	"ai-study-assist-be/internal/repository/memory"

	"github.com/ThreeDotsLabs/watermill/message"
)

const EventAnnotationsReload = "annotations.reload"

// Notifier pushes a frame to a student's open connections.
type Notifier interface {
	Send(studentID int64, eventType string, data interface{})
}

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	subscriber message.Subscriber
	topicName  string
	cache      *memory.AnnotationCache
	notifier   Notifier
	logger     logger.ILogger
}

// NewConsumerService handles annotation-changed messages: it drops the
// student's cached lists and tells their open pages to reload.
func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	cache *memory.AnnotationCache,
	notifier Notifier,
	logger logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber: subscriber,
		topicName:  topicName,
		cache:      cache,
		notifier:   notifier,
		logger:     logger,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(msg *message.Message) {
	var payload dto.AnnotationChangedMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("CONSUMER", "Failed to unmarshal message", map[string]interface{}{"error": err.Error(), "uuid": msg.UUID})
		// Malformed messages will never succeed.
		msg.Ack()
		return
	}

	dropped := cs.cache.InvalidateStudent(payload.StudentId)
	if cs.notifier != nil {
		cs.notifier.Send(payload.StudentId, EventAnnotationsReload, payload)
	}

	cs.logger.Debug("CONSUMER", "Annotation change processed", map[string]interface{}{
		"student_id":    payload.StudentId,
		"annotation_id": payload.AnnotationId,
		"change":        payload.Change,
		"cache_dropped": dropped,
	})
	msg.Ack()
}
