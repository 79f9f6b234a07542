package implementation

import (
	"context"
	"errors"

	"ai-study-assist-be/internal/entity"
	"ai-study-assist-be/internal/mapper"
	"ai-study-assist-be/internal/model"
	"ai-study-assist-be/internal/repository/contract"
	"ai-study-assist-be/internal/repository/specification"

	"gorm.io/gorm"
)

type AnnotationRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.AnnotationMapper
}

func NewAnnotationRepository(db *gorm.DB) contract.AnnotationRepository {
	return &AnnotationRepositoryImpl{
		db:     db,
		mapper: mapper.NewAnnotationMapper(),
	}
}

func (r *AnnotationRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *AnnotationRepositoryImpl) Create(ctx context.Context, annotation *entity.Annotation) error {
	m := r.mapper.ToModel(annotation)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*annotation = *r.mapper.ToEntity(m)
	return nil
}

func (r *AnnotationRepositoryImpl) Update(ctx context.Context, annotation *entity.Annotation) error {
	m := r.mapper.ToModel(annotation)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*annotation = *r.mapper.ToEntity(m)
	return nil
}

func (r *AnnotationRepositoryImpl) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&model.Annotation{}, id).Error
}

func (r *AnnotationRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Annotation, error) {
	var m model.Annotation
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *AnnotationRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Annotation, error) {
	var models []*model.Annotation
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *AnnotationRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Annotation{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
