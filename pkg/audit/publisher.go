package audit

import (
	"context"
	"strings"
	"time"

	"ai-study-assist-be/internal/pkg/logger"
	pkgEvents "ai-study-assist-be/pkg/events"
	pktNats "ai-study-assist-be/pkg/nats"
)

const (
	EventAnnotationCreated = "ANNOTATION_CREATED"
	EventAnnotationUpdated = "ANNOTATION_UPDATED"
	EventAnnotationDeleted = "ANNOTATION_DELETED"
	EventGraphLoaded       = "GRAPH_LOADED"
	assistEventPrefix      = "ASSIST_"
)

// Publisher records study activity on the event bus. Failures are logged,
// never returned.
type Publisher interface {
	PublishAnnotationCreated(ctx context.Context, annotationId, studentId int64, courseId, annotationType string)
	PublishAnnotationUpdated(ctx context.Context, annotationId, studentId int64)
	PublishAnnotationDeleted(ctx context.Context, annotationId, studentId int64)
	PublishAssistAction(ctx context.Context, studentId int64, courseId, action, mode string)
	PublishGraphLoaded(ctx context.Context, studentId int64, courseId string, concepts, edges int)
}

// AssistEventType maps an assist action name such as "save_note" to its
// event type, ASSIST_SAVE_NOTE.
func AssistEventType(action string) string {
	return assistEventPrefix + strings.ToUpper(action)
}

// NatsPublisher implements Publisher using NATS
type NatsPublisher struct {
	publisher *pktNats.Publisher
	logger    logger.ILogger
}

func NewNatsPublisher(publisher *pktNats.Publisher, logger logger.ILogger) *NatsPublisher {
	return &NatsPublisher{
		publisher: publisher,
		logger:    logger,
	}
}

func (p *NatsPublisher) publish(ctx context.Context, eventType string, data map[string]interface{}) {
	if p.publisher == nil {
		return
	}

	evt := pkgEvents.BaseEvent{
		Type:       eventType,
		Data:       data,
		OccurredAt: time.Now(),
	}
	if err := p.publisher.Publish(ctx, evt); err != nil {
		p.logger.Error("AUDIT", "Failed to publish "+eventType+" event", map[string]interface{}{"error": err.Error()})
	}
}

func (p *NatsPublisher) PublishAnnotationCreated(ctx context.Context, annotationId, studentId int64, courseId, annotationType string) {
	p.publish(ctx, EventAnnotationCreated, map[string]interface{}{
		"annotation_id":   annotationId,
		"student_id":      studentId,
		"course_id":       courseId,
		"annotation_type": annotationType,
	})
}

func (p *NatsPublisher) PublishAnnotationUpdated(ctx context.Context, annotationId, studentId int64) {
	p.publish(ctx, EventAnnotationUpdated, map[string]interface{}{
		"annotation_id": annotationId,
		"student_id":    studentId,
	})
}

func (p *NatsPublisher) PublishAnnotationDeleted(ctx context.Context, annotationId, studentId int64) {
	p.publish(ctx, EventAnnotationDeleted, map[string]interface{}{
		"annotation_id": annotationId,
		"student_id":    studentId,
	})
}

func (p *NatsPublisher) PublishAssistAction(ctx context.Context, studentId int64, courseId, action, mode string) {
	p.publish(ctx, AssistEventType(action), map[string]interface{}{
		"student_id": studentId,
		"course_id":  courseId,
		"mode":       mode,
	})
}

func (p *NatsPublisher) PublishGraphLoaded(ctx context.Context, studentId int64, courseId string, concepts, edges int) {
	p.publish(ctx, EventGraphLoaded, map[string]interface{}{
		"student_id": studentId,
		"course_id":  courseId,
		"concepts":   concepts,
		"edges":      edges,
	})
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) PublishAnnotationCreated(context.Context, int64, int64, string, string) {}
func (NopPublisher) PublishAnnotationUpdated(context.Context, int64, int64) {}
func (NopPublisher) PublishAnnotationDeleted(context.Context, int64, int64) {}
func (NopPublisher) PublishAssistAction(context.Context, int64, string, string, string) {}
func (NopPublisher) PublishGraphLoaded(context.Context, int64, string, int, int) {}
