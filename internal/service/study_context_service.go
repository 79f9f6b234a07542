package service

import (
	"context"
	"strconv"
	"time"

	"ai-study-assist-be/internal/dto"
	"ai-study-assist-be/internal/pkg/logger"
	"ai-study-assist-be/pkg/studyctx"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

const EventContextChanged = "context.changed"

type IStudyContextService interface {
	Get(ctx context.Context, studentId int64) (*dto.StudyContextResponse, error)
	Update(ctx context.Context, studentId int64, req *dto.UpdateStudyContextRequest) (*dto.StudyContextResponse, error)
	StartSession(ctx context.Context, studentId int64, req *dto.StartSessionRequest) (*dto.StudyContextResponse, error)
	ResumeSession(ctx context.Context, studentId int64, req *dto.ResumeSessionRequest) (*dto.StudyContextResponse, error)
	ClearSession(ctx context.Context, studentId int64) (*dto.StudyContextResponse, error)
	CourseOf(ctx context.Context, studentId int64) (string, error)
}

type studyContextService struct {
	store    studyctx.Store
	open     *cache.Cache
	notifier Notifier
	logger   logger.ILogger
}

// NewStudyContextService keeps one open context per student so concurrent
// requests from the same student write in order.
func NewStudyContextService(store studyctx.Store, notifier Notifier, logger logger.ILogger) IStudyContextService {
	return &studyContextService{
		store:    store,
		open:     cache.New(30*time.Minute, 10*time.Minute),
		notifier: notifier,
		logger:   logger,
	}
}

func (s *studyContextService) context(ctx context.Context, studentId int64) (*studyctx.Context, error) {
	key := strconv.FormatInt(studentId, 10)
	if x, found := s.open.Get(key); found {
		return x.(*studyctx.Context), nil
	}

	base := studyctx.Defaults()
	base.StudentID = studentId
	sc, err := studyctx.Open(ctx, s.store, key, base)
	if err != nil {
		return nil, err
	}
	// The authenticated student always wins over whatever was stored.
	if sc.State().StudentID != studentId {
		if err := sc.SetStudent(ctx, studentId); err != nil {
			return nil, err
		}
	}

	if err := s.open.Add(key, sc, cache.DefaultExpiration); err != nil {
		// Another request opened it first.
		if x, found := s.open.Get(key); found {
			return x.(*studyctx.Context), nil
		}
	}
	return sc, nil
}

func (s *studyContextService) Get(ctx context.Context, studentId int64) (*dto.StudyContextResponse, error) {
	sc, err := s.context(ctx, studentId)
	if err != nil {
		return nil, err
	}
	return toStudyContextResponse(sc.State()), nil
}

func (s *studyContextService) CourseOf(ctx context.Context, studentId int64) (string, error) {
	sc, err := s.context(ctx, studentId)
	if err != nil {
		return "", err
	}
	return sc.State().CourseID, nil
}

func (s *studyContextService) Update(ctx context.Context, studentId int64, req *dto.UpdateStudyContextRequest) (*dto.StudyContextResponse, error) {
	sc, err := s.context(ctx, studentId)
	if err != nil {
		return nil, err
	}
	if req.CourseId != nil {
		if err := sc.SetCourse(ctx, *req.CourseId); err != nil {
			return nil, err
		}
	}
	if req.Mode != nil {
		if err := sc.SetMode(ctx, studyctx.Mode(*req.Mode)); err != nil {
			return nil, err
		}
	}
	return s.changed(studentId, sc), nil
}

func (s *studyContextService) StartSession(ctx context.Context, studentId int64, req *dto.StartSessionRequest) (*dto.StudyContextResponse, error) {
	sc, err := s.context(ctx, studentId)
	if err != nil {
		return nil, err
	}
	sessionId := req.SessionId
	if sessionId == "" {
		sessionId = uuid.NewString()
	}
	if err := sc.SetSession(ctx, sessionId, studyctx.Mode(req.Mode), req.SessionName, req.ExamDate); err != nil {
		return nil, err
	}

	s.logger.Info("CONTEXT", "Study session started", map[string]interface{}{
		"student_id": studentId,
		"session_id": sessionId,
		"mode":       req.Mode,
	})
	return s.changed(studentId, sc), nil
}

func (s *studyContextService) ResumeSession(ctx context.Context, studentId int64, req *dto.ResumeSessionRequest) (*dto.StudyContextResponse, error) {
	sc, err := s.context(ctx, studentId)
	if err != nil {
		return nil, err
	}
	if err := sc.ResumeSession(ctx, req.SessionId, studyctx.Mode(req.Mode)); err != nil {
		return nil, err
	}
	return s.changed(studentId, sc), nil
}

func (s *studyContextService) ClearSession(ctx context.Context, studentId int64) (*dto.StudyContextResponse, error) {
	sc, err := s.context(ctx, studentId)
	if err != nil {
		return nil, err
	}
	if err := sc.ClearSession(ctx); err != nil {
		return nil, err
	}
	return s.changed(studentId, sc), nil
}

func (s *studyContextService) changed(studentId int64, sc *studyctx.Context) *dto.StudyContextResponse {
	res := toStudyContextResponse(sc.State())
	s.notifier.Send(studentId, EventContextChanged, res)
	return res
}

func toStudyContextResponse(st studyctx.State) *dto.StudyContextResponse {
	res := &dto.StudyContextResponse{
		CourseId:    st.CourseID,
		StudentId:   st.StudentID,
		SessionId:   st.SessionID,
		SessionName: st.SessionName,
		ExamDate:    st.ExamDate,
	}
	if st.Mode != nil {
		mode := string(*st.Mode)
		res.Mode = &mode
	}
	return res
}
