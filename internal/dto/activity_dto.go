package dto

import "time"

type ActivityResponse struct {
	Type       string                 `json:"type"`
	CourseId   string                 `json:"course_id,omitempty"`
	Data       map[string]interface{} `json:"data"`
	OccurredAt time.Time              `json:"occurred_at"`
}
