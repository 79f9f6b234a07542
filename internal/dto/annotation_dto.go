package dto

import "time"

type AnchorDto struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type CreateAnnotationRequest struct {
	StudentId      int64      `json:"-"`
	CourseId       string     `json:"course_id" validate:"required"`
	ConceptId      *int64     `json:"concept_id"`
	ChunkReference *string    `json:"chunk_reference"`
	AnnotationType string     `json:"annotation_type" validate:"required,oneof=note highlight bookmark"`
	SelectedText   string     `json:"selected_text" validate:"required"`
	AnnotationText *string    `json:"annotation_text"`
	Color          *string    `json:"color"`
	Anchor         *AnchorDto `json:"anchor"`
}

type AnnotationResponse struct {
	Id             int64      `json:"id"`
	StudentId      int64      `json:"student_id"`
	CourseId       string     `json:"course_id"`
	ConceptId      *int64     `json:"concept_id"`
	ChunkReference *string    `json:"chunk_reference"`
	AnnotationType string     `json:"annotation_type"`
	SelectedText   string     `json:"selected_text"`
	AnnotationText *string    `json:"annotation_text"`
	Color          *string    `json:"color"`
	Anchor         *AnchorDto `json:"anchor,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

type UpdateAnnotationRequest struct {
	Id             int64  `json:"-"`
	StudentId      int64  `json:"-"`
	AnnotationText string `json:"annotation_text" validate:"required"`
}

type AnnotationFilter struct {
	CourseId       string
	ConceptId      *int64
	AnnotationType string `validate:"omitempty,oneof=note highlight bookmark"`
}

type DeleteAnnotationResponse struct {
	Id int64 `json:"id"`
}

// AnnotationChangedMessage travels over the in-process bus after every write.
type AnnotationChangedMessage struct {
	StudentId    int64  `json:"student_id"`
	AnnotationId int64  `json:"annotation_id"`
	Change       string `json:"change"`
}
