package entity

import "time"

const (
	AnnotationTypeNote      = "note"
	AnnotationTypeHighlight = "highlight"
	AnnotationTypeBookmark  = "bookmark"
)

// AnnotationAnchor is the document-space point the annotation was made at.
type AnnotationAnchor struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Annotation struct {
	Id             int64
	StudentId      int64
	CourseId       string
	ConceptId      *int64
	ChunkReference *string
	AnnotationType string
	SelectedText   string
	AnnotationText *string
	Color          *string
	Anchor         *AnnotationAnchor
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// AnnotationFilter narrows a student's annotation list.
type AnnotationFilter struct {
	CourseId       string
	ConceptId      *int64
	AnnotationType string
}
