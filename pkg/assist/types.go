package assist

import (
	"context"
	"errors"
	"time"

	"ai-study-assist-be/pkg/selection"
)

const (
	FallbackExplanation = "Failed to get explanation. Try again."
	FallbackChatReply   = "Failed to get response."
	SavedMessage        = "✓ Saved as note!"
	SaveFailedMessage   = "Failed to save"

	SavedMessageTTL = 2 * time.Second
	DefaultTimeout  = 30 * time.Second

	NoteType  = "note"
	NoteColor = "blue"
)

var (
	ErrHidden            = errors.New("assist: toolbar is not visible")
	ErrBusy              = errors.New("assist: a request is already in flight")
	ErrInvalidTransition = errors.New("assist: action not allowed in current mode")
	ErrEmptyInput        = errors.New("assist: chat input is empty")
	ErrStaleResponse     = errors.New("assist: response discarded for a replaced session")
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one chat message.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Scope is the study context a session runs in.
type Scope struct {
	StudentID int64
	CourseID  string
	ConceptID *int64
}

type ExplainRequest struct {
	Text     string
	CourseID string
	Kind     Kind
	History  []Turn
}

// Explainer is the remote explanation service.
type Explainer interface {
	Explain(ctx context.Context, req ExplainRequest) (string, error)
}

type NoteRequest struct {
	StudentID    int64
	CourseID     string
	ConceptID    *int64
	Type         string
	SelectedText string
	Body         string
	Color        string
	Anchor       selection.Point
}

// NoteSaver persists a note built from a finished explanation.
type NoteSaver interface {
	SaveNote(ctx context.Context, req NoteRequest) error
}

// Logger is the subset of the service logger used here.
type Logger interface {
	Warn(module, message string, details map[string]interface{})
}

type nopLogger struct{}

func (nopLogger) Warn(string, string, map[string]interface{}) {}

// Timer is a cancellable scheduled callback.
type Timer interface {
	Stop() bool
}

// Clock schedules callbacks. Tests swap it for a simulated clock.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
