package learning

import (
	"encoding/json"
	"fmt"

	"ai-study-assist-be/pkg/graph"
)

// --- Request/Response structs ---

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ExplainRequest struct {
	Text        string        `json:"text"`
	CourseID    string        `json:"course_id"`
	Mode        string        `json:"mode"`
	ChatHistory []ChatMessage `json:"chat_history,omitempty"`
}

type ExplainResponse struct {
	Explanation string `json:"explanation"`
	Mode        string `json:"mode"`
}

type CreateAnnotationRequest struct {
	StudentID      int64   `json:"student_id"`
	CourseID       string  `json:"course_id"`
	ConceptID      *int64  `json:"concept_id,omitempty"`
	ChunkReference *string `json:"chunk_reference,omitempty"`
	AnnotationType string  `json:"annotation_type"`
	SelectedText   string  `json:"selected_text"`
	AnnotationText *string `json:"annotation_text,omitempty"`
	Color          *string `json:"color,omitempty"`
}

type Annotation struct {
	ID             int64     `json:"id"`
	StudentID      int64     `json:"student_id"`
	CourseID       CourseRef `json:"course_id"`
	ConceptID      *int64    `json:"concept_id"`
	ChunkReference *string   `json:"chunk_reference"`
	AnnotationType string    `json:"annotation_type"`
	SelectedText   string    `json:"selected_text"`
	AnnotationText *string   `json:"annotation_text"`
	Color          *string   `json:"color"`
	CreatedAt      string    `json:"created_at"`
	UpdatedAt      string    `json:"updated_at"`
}

// CourseRef accepts the course either as its name or as a numeric id.
type CourseRef string

func (c *CourseRef) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*c = CourseRef(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("course_id: %w", err)
	}
	*c = CourseRef(n.String())
	return nil
}

// AnnotationFilter narrows a student's annotation list. Zero fields are omitted.
type AnnotationFilter struct {
	CourseID       string
	ConceptID      *int64
	AnnotationType string
}

type updateAnnotationRequest struct {
	AnnotationText string `json:"annotation_text"`
}

type MasteryOverview struct {
	StudentID      int64                 `json:"student_id"`
	CourseID       string                `json:"course_id"`
	OverallMastery float64               `json:"overall_mastery"`
	CompletedCount int                   `json:"completed_count"`
	TotalConcepts  int                   `json:"total_concepts"`
	Concepts       []graph.MasteryRecord `json:"concepts"`
}

// APIError is a non-2xx reply. Detail carries the service's "detail" field
// when present, otherwise the status text.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("learning api error: status %d: %s", e.Status, e.Detail)
}
