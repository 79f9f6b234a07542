package model

import (
	"time"

	"gorm.io/datatypes"
)

type Annotation struct {
	Id             int64          `gorm:"primaryKey;autoIncrement"`
	StudentId      int64          `gorm:"not null;index"`
	CourseId       string         `gorm:"type:varchar(255);not null;index"`
	ConceptId      *int64         `gorm:"index"`
	ChunkReference *string        `gorm:"type:varchar(255)"`
	AnnotationType string         `gorm:"type:varchar(20);not null"`
	SelectedText   string         `gorm:"type:text;not null"`
	AnnotationText *string        `gorm:"type:text"`
	Color          *string        `gorm:"type:varchar(20)"`
	Anchor         datatypes.JSON `json:"anchor,omitempty"`
	CreatedAt      time.Time      `gorm:"autoCreateTime"`
	UpdatedAt      time.Time      `gorm:"autoUpdateTime"`
}

func (Annotation) TableName() string {
	return "student_annotations"
}
