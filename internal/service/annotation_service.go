package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"ai-study-assist-be/internal/dto"
	"ai-study-assist-be/internal/entity"
	"ai-study-assist-be/internal/pkg/logger"
	"ai-study-assist-be/internal/repository/memory"
	"ai-study-assist-be/pkg/assist"
	"ai-study-assist-be/pkg/audit"
)

var (
	ErrAnnotationNotFound    = errors.New("annotation not found")
	ErrInvalidAnnotationType = errors.New("annotation_type must be 'highlight', 'bookmark', or 'note'")
	ErrEmptySelectedText     = errors.New("selected_text is required")
	ErrEmptyCourse           = errors.New("course_id is required")
)

const (
	ChangeCreated = "created"
	ChangeUpdated = "updated"
	ChangeDeleted = "deleted"
)

type IAnnotationService interface {
	Create(ctx context.Context, req *dto.CreateAnnotationRequest) (*dto.AnnotationResponse, error)
	ListByStudent(ctx context.Context, studentId int64, filter dto.AnnotationFilter) ([]*dto.AnnotationResponse, error)
	Update(ctx context.Context, req *dto.UpdateAnnotationRequest) (*dto.AnnotationResponse, error)
	Delete(ctx context.Context, studentId, id int64) error
}

type annotationService struct {
	store            AnnotationStore
	cache            *memory.AnnotationCache
	publisherService IPublisherService
	eventPublisher   audit.Publisher
	logger           logger.ILogger
}

func NewAnnotationService(
	store AnnotationStore,
	cache *memory.AnnotationCache,
	publisherService IPublisherService,
	eventPublisher audit.Publisher,
	logger logger.ILogger,
) IAnnotationService {
	return &annotationService{
		store:            store,
		cache:            cache,
		publisherService: publisherService,
		eventPublisher:   eventPublisher,
		logger:           logger,
	}
}

func validAnnotationType(t string) bool {
	switch t {
	case entity.AnnotationTypeNote, entity.AnnotationTypeHighlight, entity.AnnotationTypeBookmark:
		return true
	}
	return false
}

func (s *annotationService) Create(ctx context.Context, req *dto.CreateAnnotationRequest) (*dto.AnnotationResponse, error) {
	if !validAnnotationType(req.AnnotationType) {
		return nil, ErrInvalidAnnotationType
	}
	if strings.TrimSpace(req.SelectedText) == "" {
		return nil, ErrEmptySelectedText
	}
	if req.CourseId == "" {
		return nil, ErrEmptyCourse
	}

	a := &entity.Annotation{
		StudentId:      req.StudentId,
		CourseId:       req.CourseId,
		ConceptId:      req.ConceptId,
		ChunkReference: req.ChunkReference,
		AnnotationType: req.AnnotationType,
		SelectedText:   req.SelectedText,
		AnnotationText: req.AnnotationText,
		Color:          req.Color,
	}
	if req.Anchor != nil {
		a.Anchor = &entity.AnnotationAnchor{X: req.Anchor.X, Y: req.Anchor.Y}
	}

	if err := s.store.Create(ctx, a); err != nil {
		return nil, err
	}

	s.changed(ctx, a.StudentId, a.Id, ChangeCreated)
	s.eventPublisher.PublishAnnotationCreated(ctx, a.Id, a.StudentId, a.CourseId, a.AnnotationType)

	return toAnnotationResponse(a), nil
}

func (s *annotationService) ListByStudent(ctx context.Context, studentId int64, filter dto.AnnotationFilter) ([]*dto.AnnotationResponse, error) {
	if filter.AnnotationType != "" && !validAnnotationType(filter.AnnotationType) {
		return nil, ErrInvalidAnnotationType
	}
	if cached, ok := s.cache.Get(studentId, filter); ok {
		return cached, nil
	}

	list, err := s.store.List(ctx, studentId, entity.AnnotationFilter{
		CourseId:       filter.CourseId,
		ConceptId:      filter.ConceptId,
		AnnotationType: filter.AnnotationType,
	})
	if err != nil {
		return nil, err
	}

	res := make([]*dto.AnnotationResponse, len(list))
	for i, a := range list {
		res[i] = toAnnotationResponse(a)
	}
	s.cache.Set(studentId, filter, res)
	return res, nil
}

func (s *annotationService) Update(ctx context.Context, req *dto.UpdateAnnotationRequest) (*dto.AnnotationResponse, error) {
	a, err := s.store.UpdateText(ctx, req.StudentId, req.Id, req.AnnotationText)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, ErrAnnotationNotFound
	}

	s.changed(ctx, req.StudentId, a.Id, ChangeUpdated)
	s.eventPublisher.PublishAnnotationUpdated(ctx, a.Id, req.StudentId)

	return toAnnotationResponse(a), nil
}

func (s *annotationService) Delete(ctx context.Context, studentId, id int64) error {
	found, err := s.store.Delete(ctx, studentId, id)
	if err != nil {
		return err
	}
	if !found {
		return ErrAnnotationNotFound
	}

	s.changed(ctx, studentId, id, ChangeDeleted)
	s.eventPublisher.PublishAnnotationDeleted(ctx, id, studentId)
	return nil
}

// changed drops cached lists right away so the writer reads its own write,
// then announces the change on the bus for open pages.
func (s *annotationService) changed(ctx context.Context, studentId, annotationId int64, change string) {
	s.cache.InvalidateStudent(studentId)

	payload, err := json.Marshal(dto.AnnotationChangedMessage{
		StudentId:    studentId,
		AnnotationId: annotationId,
		Change:       change,
	})
	if err != nil {
		return
	}
	if err := s.publisherService.Publish(ctx, payload); err != nil {
		s.logger.Warn("ANNOTATION", "Failed to publish change", map[string]interface{}{
			"annotation_id": annotationId,
			"error":         err.Error(),
		})
	}
}

func toAnnotationResponse(a *entity.Annotation) *dto.AnnotationResponse {
	res := &dto.AnnotationResponse{
		Id:             a.Id,
		StudentId:      a.StudentId,
		CourseId:       a.CourseId,
		ConceptId:      a.ConceptId,
		ChunkReference: a.ChunkReference,
		AnnotationType: a.AnnotationType,
		SelectedText:   a.SelectedText,
		AnnotationText: a.AnnotationText,
		Color:          a.Color,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
	if a.Anchor != nil {
		res.Anchor = &dto.AnchorDto{X: a.Anchor.X, Y: a.Anchor.Y}
	}
	return res
}

// AnnotationNoteSaver stores assist notes as annotations so they share the
// cache invalidation and events of every other write.
type AnnotationNoteSaver struct {
	Service IAnnotationService
}

var _ assist.NoteSaver = AnnotationNoteSaver{}

func (n AnnotationNoteSaver) SaveNote(ctx context.Context, req assist.NoteRequest) error {
	body := req.Body
	color := req.Color
	_, err := n.Service.Create(ctx, &dto.CreateAnnotationRequest{
		StudentId:      req.StudentID,
		CourseId:       req.CourseID,
		ConceptId:      req.ConceptID,
		AnnotationType: req.Type,
		SelectedText:   req.SelectedText,
		AnnotationText: &body,
		Color:          &color,
		Anchor:         &dto.AnchorDto{X: req.Anchor.X, Y: req.Anchor.Y},
	})
	return err
}
