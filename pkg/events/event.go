package events

import "time"

// Event is anything published on the study event bus.
type Event interface {
	// EventType is the upper-case code, e.g. "ANNOTATION_CREATED".
	EventType() string
	Payload() map[string]interface{}
	Timestamp() time.Time
}

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// Int64 reads a numeric payload field. JSON numbers decode as float64.
func (e BaseEvent) Int64(key string) (int64, bool) {
	switch v := e.Data[key].(type) {
	case float64:
		return int64(v), true
	case int64:
		return v, true
	case int:
		return int64(v), true
	default:
		return 0, false
	}
}
