package dto

import (
	"ai-study-assist-be/pkg/assist"
	"ai-study-assist-be/pkg/selection"
)

type CreateHostRequest struct {
	CourseId  string `json:"course_id"`
	ConceptId *int64 `json:"concept_id"`
}

type UpdateHostScopeRequest struct {
	CourseId  string `json:"course_id" validate:"required"`
	ConceptId *int64 `json:"concept_id"`
}

type RectDto struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width" validate:"gte=0"`
	Height float64 `json:"height" validate:"gte=0"`
}

// SelectionReleaseRequest is what the page saw when the pointer was
// released: the selected text, whether its common ancestor sits inside the
// watched region, its viewport rect and the page scroll offset.
type SelectionReleaseRequest struct {
	Text   string    `json:"text"`
	Inside bool      `json:"inside"`
	Rect   RectDto   `json:"rect"`
	Scroll AnchorDto `json:"scroll"`
}

type AssistChatRequest struct {
	Message string `json:"message" validate:"required"`
}

type HostResponse struct {
	Id        string          `json:"id"`
	CourseId  string          `json:"course_id"`
	ConceptId *int64          `json:"concept_id"`
	Selection selection.Event `json:"selection"`
	Session   assist.Snapshot `json:"session"`
}

// HostSnapshotMessage is pushed over the websocket on every session change.
type HostSnapshotMessage struct {
	HostId   string          `json:"host_id"`
	Snapshot assist.Snapshot `json:"snapshot"`
}

type ClickOutsideResponse struct {
	Dismissed bool         `json:"dismissed"`
	Host      HostResponse `json:"host"`
}
