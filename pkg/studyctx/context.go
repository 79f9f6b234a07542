package studyctx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// KeyPrefix namespaces stored contexts.
const KeyPrefix = "study-coach-session-v2:"

const (
	DefaultCourseID  = "demo-course"
	DefaultStudentID = int64(1)
)

var (
	ErrNotFound       = errors.New("studyctx: no stored context")
	ErrInvalidMode    = errors.New("studyctx: mode must be quick or comprehensive")
	ErrEmptyCourse    = errors.New("studyctx: course id is empty")
	ErrInvalidStudent = errors.New("studyctx: student id must be positive")
	ErrEmptySession   = errors.New("studyctx: session id is empty")
)

type Mode string

const (
	ModeQuick         Mode = "quick"
	ModeComprehensive Mode = "comprehensive"
)

func (m Mode) Valid() bool {
	return m == ModeQuick || m == ModeComprehensive
}

// State is the persisted study context.
type State struct {
	CourseID    string  `json:"courseId"`
	StudentID   int64   `json:"studentId"`
	SessionID   *string `json:"sessionId"`
	Mode        *Mode   `json:"mode"`
	SessionName *string `json:"sessionName"`
	ExamDate    *string `json:"examDate"`
}

// Defaults is the state used before anything is stored.
func Defaults() State {
	return State{CourseID: DefaultCourseID, StudentID: DefaultStudentID}
}

// Store is durable key/value storage for encoded contexts.
type Store interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
}

// Context is one client's study context. Every mutation is written through
// to the store.
type Context struct {
	mu    sync.RWMutex
	key   string
	store Store
	state State
}

// Open loads the context stored under clientKey on top of base. Missing or
// corrupt data leaves base untouched.
func Open(ctx context.Context, store Store, clientKey string, base State) (*Context, error) {
	c := &Context{key: KeyPrefix + clientKey, store: store, state: base}

	raw, err := store.Load(ctx, c.key)
	if errors.Is(err, ErrNotFound) {
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load study context: %w", err)
	}

	var saved State
	if err := json.Unmarshal(raw, &saved); err != nil {
		return c, nil
	}
	c.state = overlay(base, saved)
	return c, nil
}

// overlay copies the fields that are set in saved.
func overlay(base, saved State) State {
	out := base
	if saved.CourseID != "" {
		out.CourseID = saved.CourseID
	}
	if saved.StudentID > 0 {
		out.StudentID = saved.StudentID
	}
	if saved.SessionID != nil && *saved.SessionID != "" {
		out.SessionID = saved.SessionID
	}
	if saved.Mode != nil && saved.Mode.Valid() {
		out.Mode = saved.Mode
	}
	if saved.SessionName != nil && *saved.SessionName != "" {
		out.SessionName = saved.SessionName
	}
	if saved.ExamDate != nil && *saved.ExamDate != "" {
		out.ExamDate = saved.ExamDate
	}
	return out
}

// State returns a copy.
func (c *Context) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// mutate applies fn and persists. The lock is held across the write so
// stored snapshots land in mutation order. The in-memory state keeps the
// change even if the write fails.
func (c *Context) mutate(ctx context.Context, fn func(*State)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	fn(&c.state)
	raw, err := json.Marshal(c.state)
	if err != nil {
		return fmt.Errorf("encode study context: %w", err)
	}
	if err := c.store.Save(ctx, c.key, raw); err != nil {
		return fmt.Errorf("save study context: %w", err)
	}
	return nil
}

func (c *Context) SetCourse(ctx context.Context, courseID string) error {
	courseID = strings.TrimSpace(courseID)
	if courseID == "" {
		return ErrEmptyCourse
	}
	return c.mutate(ctx, func(s *State) { s.CourseID = courseID })
}

func (c *Context) SetStudent(ctx context.Context, studentID int64) error {
	if studentID <= 0 {
		return ErrInvalidStudent
	}
	return c.mutate(ctx, func(s *State) { s.StudentID = studentID })
}

func (c *Context) SetMode(ctx context.Context, mode Mode) error {
	if !mode.Valid() {
		return ErrInvalidMode
	}
	return c.mutate(ctx, func(s *State) { s.Mode = &mode })
}

// SetSession starts a new study session. An empty examDate clears it.
func (c *Context) SetSession(ctx context.Context, sessionID string, mode Mode, name, examDate string) error {
	if sessionID == "" {
		return ErrEmptySession
	}
	if !mode.Valid() {
		return ErrInvalidMode
	}
	return c.mutate(ctx, func(s *State) {
		s.SessionID = &sessionID
		s.Mode = &mode
		s.SessionName = &name
		s.ExamDate = nil
		if examDate != "" {
			s.ExamDate = &examDate
		}
	})
}

// ResumeSession switches to an existing session, keeping name and exam date.
func (c *Context) ResumeSession(ctx context.Context, sessionID string, mode Mode) error {
	if sessionID == "" {
		return ErrEmptySession
	}
	if !mode.Valid() {
		return ErrInvalidMode
	}
	return c.mutate(ctx, func(s *State) {
		s.SessionID = &sessionID
		s.Mode = &mode
	})
}

// ClearSession drops session, mode, name and exam date. Course and student stay.
func (c *Context) ClearSession(ctx context.Context) error {
	return c.mutate(ctx, func(s *State) {
		s.SessionID = nil
		s.Mode = nil
		s.SessionName = nil
		s.ExamDate = nil
	})
}
