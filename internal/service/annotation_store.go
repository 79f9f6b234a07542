package service

import (
	"context"
	"errors"
	"net/http"
	"time"

	"ai-study-assist-be/internal/entity"
	"ai-study-assist-be/internal/repository/specification"
	"ai-study-assist-be/internal/repository/unitofwork"
	"ai-study-assist-be/pkg/learning"
)

// AnnotationStore is where annotations live. UpdateText returns nil and
// Delete returns false when the annotation does not exist for the student.
type AnnotationStore interface {
	Create(ctx context.Context, a *entity.Annotation) error
	List(ctx context.Context, studentId int64, filter entity.AnnotationFilter) ([]*entity.Annotation, error)
	UpdateText(ctx context.Context, studentId, id int64, text string) (*entity.Annotation, error)
	Delete(ctx context.Context, studentId, id int64) (bool, error)
}

type databaseAnnotationStore struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewDatabaseAnnotationStore(uowFactory unitofwork.RepositoryFactory) AnnotationStore {
	return &databaseAnnotationStore{uowFactory: uowFactory}
}

func (s *databaseAnnotationStore) Create(ctx context.Context, a *entity.Annotation) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.AnnotationRepository().Create(ctx, a)
}

func (s *databaseAnnotationStore) List(ctx context.Context, studentId int64, filter entity.AnnotationFilter) ([]*entity.Annotation, error) {
	specs := []specification.Specification{
		specification.AnnotationOwnedByStudent{StudentID: studentId},
	}
	if filter.CourseId != "" {
		specs = append(specs, specification.ByCourseID{CourseID: filter.CourseId})
	}
	if filter.ConceptId != nil {
		specs = append(specs, specification.ByConceptID{ConceptID: *filter.ConceptId})
	}
	if filter.AnnotationType != "" {
		specs = append(specs, specification.ByAnnotationType{Type: filter.AnnotationType})
	}
	specs = append(specs, specification.NewestFirst{})

	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.AnnotationRepository().FindAll(ctx, specs...)
}

func (s *databaseAnnotationStore) UpdateText(ctx context.Context, studentId, id int64, text string) (*entity.Annotation, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	repo := uow.AnnotationRepository()
	a, err := repo.FindOne(ctx,
		specification.ByAnnotationID{ID: id},
		specification.AnnotationOwnedByStudent{StudentID: studentId},
	)
	if err != nil || a == nil {
		return nil, err
	}

	a.AnnotationText = &text
	if err := repo.Update(ctx, a); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *databaseAnnotationStore) Delete(ctx context.Context, studentId, id int64) (bool, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.AnnotationRepository()

	a, err := repo.FindOne(ctx,
		specification.ByAnnotationID{ID: id},
		specification.AnnotationOwnedByStudent{StudentID: studentId},
	)
	if err != nil || a == nil {
		return false, err
	}
	if err := repo.Delete(ctx, id); err != nil {
		return false, err
	}
	return true, nil
}

// remoteAnnotationStore delegates to the learning API, which owns access
// control for ids. Anchors are not stored remotely.
type remoteAnnotationStore struct {
	client *learning.Client
}

func NewRemoteAnnotationStore(client *learning.Client) AnnotationStore {
	return &remoteAnnotationStore{client: client}
}

func (s *remoteAnnotationStore) Create(ctx context.Context, a *entity.Annotation) error {
	created, err := s.client.CreateAnnotation(ctx, learning.CreateAnnotationRequest{
		StudentID:      a.StudentId,
		CourseID:       a.CourseId,
		ConceptID:      a.ConceptId,
		ChunkReference: a.ChunkReference,
		AnnotationType: a.AnnotationType,
		SelectedText:   a.SelectedText,
		AnnotationText: a.AnnotationText,
		Color:          a.Color,
	})
	if err != nil {
		return err
	}
	anchor := a.Anchor
	courseId := a.CourseId
	*a = *fromRemote(created, courseId)
	a.Anchor = anchor
	return nil
}

func (s *remoteAnnotationStore) List(ctx context.Context, studentId int64, filter entity.AnnotationFilter) ([]*entity.Annotation, error) {
	list, err := s.client.ListAnnotations(ctx, studentId, learning.AnnotationFilter{
		CourseID:       filter.CourseId,
		ConceptID:      filter.ConceptId,
		AnnotationType: filter.AnnotationType,
	})
	if err != nil {
		return nil, err
	}

	out := make([]*entity.Annotation, len(list))
	for i := range list {
		out[i] = fromRemote(&list[i], filter.CourseId)
	}
	return out, nil
}

func (s *remoteAnnotationStore) UpdateText(ctx context.Context, studentId, id int64, text string) (*entity.Annotation, error) {
	if ok, err := s.owns(ctx, studentId, id); err != nil || !ok {
		return nil, err
	}
	updated, err := s.client.UpdateAnnotation(ctx, id, text)
	if isRemoteNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return fromRemote(updated, ""), nil
}

func (s *remoteAnnotationStore) Delete(ctx context.Context, studentId, id int64) (bool, error) {
	if ok, err := s.owns(ctx, studentId, id); err != nil || !ok {
		return false, err
	}
	err := s.client.DeleteAnnotation(ctx, id)
	if isRemoteNotFound(err) {
		return false, nil
	}
	return err == nil, err
}

// owns reports whether id is among the student's annotations. The learning
// API does not scope update and delete by student.
func (s *remoteAnnotationStore) owns(ctx context.Context, studentId, id int64) (bool, error) {
	list, err := s.client.ListAnnotations(ctx, studentId, learning.AnnotationFilter{})
	if err != nil {
		return false, err
	}
	for i := range list {
		if list[i].ID == id {
			return true, nil
		}
	}
	return false, nil
}

func isRemoteNotFound(err error) bool {
	var apiErr *learning.APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// fromRemote maps a learning API record. courseId overrides the returned
// course reference, which may be a numeric id rather than the course name.
func fromRemote(a *learning.Annotation, courseId string) *entity.Annotation {
	if courseId == "" {
		courseId = string(a.CourseID)
	}
	return &entity.Annotation{
		Id:             a.ID,
		StudentId:      a.StudentID,
		CourseId:       courseId,
		ConceptId:      a.ConceptID,
		ChunkReference: a.ChunkReference,
		AnnotationType: a.AnnotationType,
		SelectedText:   a.SelectedText,
		AnnotationText: a.AnnotationText,
		Color:          a.Color,
		CreatedAt:      parseRemoteTime(a.CreatedAt),
		UpdatedAt:      parseRemoteTime(a.UpdatedAt),
	}
}

var remoteTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
}

// parseRemoteTime accepts ISO timestamps with or without a zone. Zoneless
// values are UTC.
func parseRemoteTime(s string) time.Time {
	for _, layout := range remoteTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
