package service

import (
	"context"
	"errors"
	"time"

	"ai-study-assist-be/internal/dto"
	"ai-study-assist-be/internal/pkg/logger"
	"ai-study-assist-be/internal/repository/memory"
	"ai-study-assist-be/pkg/assist"
	"ai-study-assist-be/pkg/audit"
	"ai-study-assist-be/pkg/selection"
)

const EventAssistSnapshot = "assist.snapshot"

var ErrHostNotFound = errors.New("assist host not found")

type IAssistService interface {
	CreateHost(ctx context.Context, studentId int64, req *dto.CreateHostRequest) (*dto.HostResponse, error)
	GetHost(studentId int64, hostId string) (*dto.HostResponse, error)
	UpdateScope(studentId int64, hostId string, req *dto.UpdateHostScopeRequest) (*dto.HostResponse, error)
	CloseHost(studentId int64, hostId string) error
	Release(studentId int64, hostId string, req *dto.SelectionReleaseRequest) (*dto.HostResponse, error)
	Explain(ctx context.Context, studentId int64, hostId string) (*dto.HostResponse, error)
	Examples(ctx context.Context, studentId int64, hostId string) (*dto.HostResponse, error)
	AskMore(ctx context.Context, studentId int64, hostId string) (*dto.HostResponse, error)
	SendChat(ctx context.Context, studentId int64, hostId string, req *dto.AssistChatRequest) (*dto.HostResponse, error)
	SaveNote(ctx context.Context, studentId int64, hostId string) (*dto.HostResponse, error)
	Dismiss(ctx context.Context, studentId int64, hostId string) (*dto.HostResponse, error)
	ClickOutside(ctx context.Context, studentId int64, hostId string) (*dto.ClickOutsideResponse, error)
}

type assistService struct {
	registry       *memory.HostRegistry
	explainer      assist.Explainer
	saver          assist.NoteSaver
	contextService IStudyContextService
	notifier       Notifier
	eventPublisher audit.Publisher
	timeout        time.Duration
	logger         logger.ILogger
}

func NewAssistService(
	registry *memory.HostRegistry,
	explainer assist.Explainer,
	saver assist.NoteSaver,
	contextService IStudyContextService,
	notifier Notifier,
	eventPublisher audit.Publisher,
	timeout time.Duration,
	logger logger.ILogger,
) IAssistService {
	return &assistService{
		registry:       registry,
		explainer:      explainer,
		saver:          saver,
		contextService: contextService,
		notifier:       notifier,
		eventPublisher: eventPublisher,
		timeout:        timeout,
		logger:         logger,
	}
}

// CreateHost opens a watched region for the student. Without a course the
// student's current study context supplies one.
func (s *assistService) CreateHost(ctx context.Context, studentId int64, req *dto.CreateHostRequest) (*dto.HostResponse, error) {
	courseId := req.CourseId
	if courseId == "" {
		var err error
		courseId, err = s.contextService.CourseOf(ctx, studentId)
		if err != nil {
			return nil, err
		}
	}

	doc := selection.NewDocument()
	scroll := &selection.ScrollState{}
	capture := selection.Observe(doc, func() selection.Container {
		return selection.ReportedContainer{}
	}, scroll)

	host := assist.NewHost(capture, s.explainer, s.saver,
		assist.Scope{StudentID: studentId, CourseID: courseId, ConceptID: req.ConceptId},
		assist.WithTimeout(s.timeout),
		assist.WithLogger(s.logger),
	)

	rec := s.registry.Add(studentId, courseId, req.ConceptId, doc, scroll, host)
	rec.Watch(host.Session().OnChange(func(snap assist.Snapshot) {
		s.notifier.Send(studentId, EventAssistSnapshot, dto.HostSnapshotMessage{
			HostId:   rec.ID,
			Snapshot: snap,
		})
	}))

	s.logger.Info("ASSIST", "Host opened", map[string]interface{}{
		"student_id": studentId,
		"host_id":    rec.ID,
		"course_id":  courseId,
	})
	return s.response(rec, courseId, req.ConceptId), nil
}

func (s *assistService) host(studentId int64, hostId string) (*memory.HostRecord, error) {
	rec, ok := s.registry.Get(studentId, hostId)
	if !ok {
		return nil, ErrHostNotFound
	}
	return rec, nil
}

func (s *assistService) GetHost(studentId int64, hostId string) (*dto.HostResponse, error) {
	rec, err := s.host(studentId, hostId)
	if err != nil {
		return nil, err
	}
	return s.current(rec), nil
}

func (s *assistService) UpdateScope(studentId int64, hostId string, req *dto.UpdateHostScopeRequest) (*dto.HostResponse, error) {
	rec, err := s.host(studentId, hostId)
	if err != nil {
		return nil, err
	}
	scope := assist.Scope{StudentID: studentId, CourseID: req.CourseId, ConceptID: req.ConceptId}
	rec.Host.Session().SetScope(scope)

	rec.Mu.Lock()
	rec.CourseId, rec.ConceptId = scope.CourseID, scope.ConceptID
	rec.Mu.Unlock()
	return s.current(rec), nil
}

func (s *assistService) CloseHost(studentId int64, hostId string) error {
	if !s.registry.Remove(studentId, hostId) {
		return ErrHostNotFound
	}
	s.logger.Info("ASSIST", "Host closed", map[string]interface{}{
		"student_id": studentId,
		"host_id":    hostId,
	})
	return nil
}

// Release replays a pointer release into the host's document.
func (s *assistService) Release(studentId int64, hostId string, req *dto.SelectionReleaseRequest) (*dto.HostResponse, error) {
	rec, err := s.host(studentId, hostId)
	if err != nil {
		return nil, err
	}

	rec.Mu.Lock()
	rec.Scroll.Set(selection.Point{X: req.Scroll.X, Y: req.Scroll.Y})
	rec.Document.Release(selection.StaticRange{
		Content:  req.Text,
		Ancestor: selection.ReportedNode{InsideContainer: req.Inside},
		Rect: selection.Rect{
			Left:   req.Rect.Left,
			Top:    req.Rect.Top,
			Width:  req.Rect.Width,
			Height: req.Rect.Height,
		},
	})
	rec.Mu.Unlock()

	return s.current(rec), nil
}

func (s *assistService) Explain(ctx context.Context, studentId int64, hostId string) (*dto.HostResponse, error) {
	return s.act(ctx, studentId, hostId, assist.ActionExplain, func(sess *assist.Session) (bool, error) {
		return true, sess.Explain(ctx)
	})
}

func (s *assistService) Examples(ctx context.Context, studentId int64, hostId string) (*dto.HostResponse, error) {
	return s.act(ctx, studentId, hostId, assist.ActionExamples, func(sess *assist.Session) (bool, error) {
		return true, sess.Examples(ctx)
	})
}

func (s *assistService) AskMore(ctx context.Context, studentId int64, hostId string) (*dto.HostResponse, error) {
	return s.act(ctx, studentId, hostId, assist.ActionAskMore, func(sess *assist.Session) (bool, error) {
		return true, sess.AskMore()
	})
}

func (s *assistService) SendChat(ctx context.Context, studentId int64, hostId string, req *dto.AssistChatRequest) (*dto.HostResponse, error) {
	return s.act(ctx, studentId, hostId, assist.ActionSendChat, func(sess *assist.Session) (bool, error) {
		return true, sess.SendChat(ctx, req.Message)
	})
}

func (s *assistService) SaveNote(ctx context.Context, studentId int64, hostId string) (*dto.HostResponse, error) {
	return s.act(ctx, studentId, hostId, assist.ActionSaveNote, func(sess *assist.Session) (bool, error) {
		return true, sess.SaveNote(ctx)
	})
}

func (s *assistService) Dismiss(ctx context.Context, studentId int64, hostId string) (*dto.HostResponse, error) {
	return s.act(ctx, studentId, hostId, assist.ActionDismiss, func(sess *assist.Session) (bool, error) {
		return sess.Dismiss(), nil
	})
}

func (s *assistService) ClickOutside(ctx context.Context, studentId int64, hostId string) (*dto.ClickOutsideResponse, error) {
	var dismissed bool
	res, err := s.act(ctx, studentId, hostId, assist.ActionClickOutside, func(sess *assist.Session) (bool, error) {
		dismissed = sess.ClickOutside()
		return dismissed, nil
	})
	if err != nil {
		return nil, err
	}
	return &dto.ClickOutsideResponse{Dismissed: dismissed, Host: *res}, nil
}

// act runs one toolbar action. fn reports whether the session changed; a
// no-op is not audited. A response dropped because the selection was
// replaced or dismissed meanwhile is not an error: the caller gets the
// current state.
func (s *assistService) act(ctx context.Context, studentId int64, hostId string, action assist.Action, fn func(*assist.Session) (bool, error)) (*dto.HostResponse, error) {
	rec, err := s.host(studentId, hostId)
	if err != nil {
		return nil, err
	}

	changed, err := fn(rec.Host.Session())
	if err != nil && !errors.Is(err, assist.ErrStaleResponse) {
		return nil, err
	}

	res := s.current(rec)
	if changed {
		s.eventPublisher.PublishAssistAction(ctx, studentId, res.CourseId, action.String(), res.Session.Mode.String())
	}
	return res, nil
}

func (s *assistService) current(rec *memory.HostRecord) *dto.HostResponse {
	rec.Mu.Lock()
	courseId, conceptId := rec.CourseId, rec.ConceptId
	rec.Mu.Unlock()
	return s.response(rec, courseId, conceptId)
}

func (s *assistService) response(rec *memory.HostRecord, courseId string, conceptId *int64) *dto.HostResponse {
	return &dto.HostResponse{
		Id:        rec.ID,
		CourseId:  courseId,
		ConceptId: conceptId,
		Selection: rec.Host.Capture().Selection(),
		Session:   rec.Host.Session().Snapshot(),
	}
}
