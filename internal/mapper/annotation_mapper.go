package mapper

import (
	"encoding/json"

	"ai-study-assist-be/internal/entity"
	"ai-study-assist-be/internal/model"

	"gorm.io/datatypes"
)

type AnnotationMapper struct{}

func NewAnnotationMapper() *AnnotationMapper {
	return &AnnotationMapper{}
}

func (m *AnnotationMapper) ToEntity(a *model.Annotation) *entity.Annotation {
	if a == nil {
		return nil
	}

	var anchor *entity.AnnotationAnchor
	if len(a.Anchor) > 0 {
		var decoded entity.AnnotationAnchor
		// Rows with an unreadable anchor are still returned, just without geometry.
		if err := json.Unmarshal(a.Anchor, &decoded); err == nil {
			anchor = &decoded
		}
	}

	return &entity.Annotation{
		Id:             a.Id,
		StudentId:      a.StudentId,
		CourseId:       a.CourseId,
		ConceptId:      a.ConceptId,
		ChunkReference: a.ChunkReference,
		AnnotationType: a.AnnotationType,
		SelectedText:   a.SelectedText,
		AnnotationText: a.AnnotationText,
		Color:          a.Color,
		Anchor:         anchor,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}

func (m *AnnotationMapper) ToModel(a *entity.Annotation) *model.Annotation {
	if a == nil {
		return nil
	}

	var anchor datatypes.JSON
	if a.Anchor != nil {
		raw, err := json.Marshal(a.Anchor)
		if err == nil {
			anchor = datatypes.JSON(raw)
		}
	}

	return &model.Annotation{
		Id:             a.Id,
		StudentId:      a.StudentId,
		CourseId:       a.CourseId,
		ConceptId:      a.ConceptId,
		ChunkReference: a.ChunkReference,
		AnnotationType: a.AnnotationType,
		SelectedText:   a.SelectedText,
		AnnotationText: a.AnnotationText,
		Color:          a.Color,
		Anchor:         anchor,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
}

func (m *AnnotationMapper) ToEntities(annotations []*model.Annotation) []*entity.Annotation {
	entities := make([]*entity.Annotation, len(annotations))
	for i, a := range annotations {
		entities[i] = m.ToEntity(a)
	}
	return entities
}
