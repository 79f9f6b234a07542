package specification

import "gorm.io/gorm"

type ByAnnotationID struct {
	ID int64
}

func (s ByAnnotationID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("id = ?", s.ID)
}

type AnnotationOwnedByStudent struct {
	StudentID int64
}

func (s AnnotationOwnedByStudent) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("student_id = ?", s.StudentID)
}

type ByCourseID struct {
	CourseID string
}

func (s ByCourseID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("course_id = ?", s.CourseID)
}

type ByConceptID struct {
	ConceptID int64
}

func (s ByConceptID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("concept_id = ?", s.ConceptID)
}

type ByAnnotationType struct {
	Type string
}

func (s ByAnnotationType) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("annotation_type = ?", s.Type)
}

// NewestFirst orders by creation time, breaking ties on id so pages are stable.
type NewestFirst struct{}

func (NewestFirst) Apply(db *gorm.DB) *gorm.DB {
	return db.Order("created_at DESC").Order("id DESC")
}
