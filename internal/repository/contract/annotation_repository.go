package contract

import (
	"context"

	"ai-study-assist-be/internal/entity"
	"ai-study-assist-be/internal/repository/specification"
)

type AnnotationRepository interface {
	Create(ctx context.Context, annotation *entity.Annotation) error
	Update(ctx context.Context, annotation *entity.Annotation) error
	Delete(ctx context.Context, id int64) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Annotation, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Annotation, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
