package assist

import (
	"context"
	"strings"
	"sync"
	"time"

	"ai-study-assist-be/pkg/selection"
)

const logModule = "ASSIST"

// Snapshot is an immutable copy of the session view.
type Snapshot struct {
	Revision     uint64          `json:"revision"`
	Generation   uint64          `json:"generation"`
	Visible      bool            `json:"visible"`
	Mode         Mode            `json:"mode"`
	SelectedText string          `json:"selected_text"`
	Anchor       selection.Point `json:"anchor"`
	Explanation  string          `json:"explanation"`
	ChatHistory  []Turn          `json:"chat_history"`
	Saving       bool            `json:"saving"`
	SavedMessage string          `json:"saved_message"`
	Placement    Placement       `json:"placement"`
}

type Option func(*Session)

func WithClock(c Clock) Option {
	return func(s *Session) { s.clock = c }
}

// WithTimeout bounds every network call. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(s *Session) { s.timeout = d }
}

func WithLogger(l Logger) Option {
	return func(s *Session) { s.logger = l }
}

// WithDismissHook registers the host callback that hides the toolbar.
func WithDismissHook(fn func()) Option {
	return func(s *Session) { s.onDismiss = fn }
}

// Session is the per-selection toolbar state machine.
//
// All network calls run outside the lock. Each reset or dismissal bumps the
// generation, and a response is applied only while its generation is current.
type Session struct {
	explainer Explainer
	saver     NoteSaver
	scope     Scope
	clock     Clock
	timeout   time.Duration
	logger    Logger
	onDismiss func()

	mu           sync.Mutex
	visible      bool
	mode         Mode
	text         string
	anchor       selection.Point
	explanation  string
	history      []Turn
	saving       bool
	savedMessage string
	savedTimer   Timer
	saveSeq      uint64
	generation   uint64
	revision     uint64

	listenMu  sync.Mutex
	listeners map[int]func(Snapshot)
	nextID    int
}

func NewSession(explainer Explainer, saver NoteSaver, scope Scope, opts ...Option) *Session {
	s := &Session{
		explainer: explainer,
		saver:     saver,
		scope:     scope,
		clock:     realClock{},
		timeout:   DefaultTimeout,
		logger:    nopLogger{},
		listeners: make(map[int]func(Snapshot)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OnChange registers fn for every state change and returns a cancel func.
func (s *Session) OnChange(fn func(Snapshot)) func() {
	s.listenMu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.listenMu.Unlock()

	return func() {
		s.listenMu.Lock()
		delete(s.listeners, id)
		s.listenMu.Unlock()
	}
}

// SetScope replaces the study context used by later requests.
func (s *Session) SetScope(scope Scope) {
	s.mu.Lock()
	s.scope = scope
	s.mu.Unlock()
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Reset starts a fresh idle session for a newly shown selection.
func (s *Session) Reset(text string, anchor selection.Point) {
	s.mu.Lock()
	s.clearLocked()
	s.visible = true
	s.text = text
	s.anchor = anchor
	snap := s.changedLocked()
	s.mu.Unlock()

	s.emit(snap)
}

// Reposition moves the toolbar without touching the conversation.
func (s *Session) Reposition(anchor selection.Point) {
	s.mu.Lock()
	if s.anchor == anchor {
		s.mu.Unlock()
		return
	}
	s.anchor = anchor
	snap := s.changedLocked()
	s.mu.Unlock()

	s.emit(snap)
}

// Explain asks for a plain explanation of the selected text.
func (s *Session) Explain(ctx context.Context) error {
	return s.ask(ctx, ActionExplain)
}

// Examples asks for concrete examples of the selected text.
func (s *Session) Examples(ctx context.Context) error {
	return s.ask(ctx, ActionExamples)
}

func (s *Session) ask(ctx context.Context, action Action) error {
	s.mu.Lock()
	if err := s.guardLocked(action, true); err != nil {
		s.mu.Unlock()
		return err
	}
	s.mode = ModeLoading
	gen := s.generation
	req := ExplainRequest{
		Text:     s.text,
		CourseID: s.scope.CourseID,
		Kind:     kinds[action],
	}
	snap := s.changedLocked()
	s.mu.Unlock()
	s.emit(snap)

	reply, err := s.explain(ctx, req)

	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		return ErrStaleResponse
	}
	if err != nil {
		s.logger.Warn(logModule, "Explanation request failed", map[string]interface{}{
			"action": action.String(),
			"error":  err.Error(),
		})
		reply = FallbackExplanation
	}
	s.explanation = reply
	s.mode = settles[action]
	snap = s.changedLocked()
	s.mu.Unlock()

	s.emit(snap)
	return nil
}

// AskMore opens the chat panel. From a result the explanation seeds the
// conversation as the first assistant turn.
func (s *Session) AskMore() error {
	s.mu.Lock()
	if err := s.guardLocked(ActionAskMore, false); err != nil {
		s.mu.Unlock()
		return err
	}
	if s.mode == ModeResult {
		s.history = []Turn{{Role: RoleAssistant, Content: s.explanation}}
	} else {
		s.history = nil
	}
	s.mode = ModeChat
	snap := s.changedLocked()
	s.mu.Unlock()

	s.emit(snap)
	return nil
}

// SendChat appends the user's turn and asks for the assistant's reply.
func (s *Session) SendChat(ctx context.Context, input string) error {
	if strings.TrimSpace(input) == "" {
		return ErrEmptyInput
	}

	s.mu.Lock()
	if err := s.guardLocked(ActionSendChat, true); err != nil {
		s.mu.Unlock()
		return err
	}
	s.history = append(s.history, Turn{Role: RoleUser, Content: input})
	s.mode = ModeLoading
	gen := s.generation
	req := ExplainRequest{
		Text:     s.text,
		CourseID: s.scope.CourseID,
		Kind:     KindChat,
		History:  cloneTurns(s.history),
	}
	snap := s.changedLocked()
	s.mu.Unlock()
	s.emit(snap)

	reply, err := s.explain(ctx, req)

	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		return ErrStaleResponse
	}
	if err != nil {
		s.logger.Warn(logModule, "Chat request failed", map[string]interface{}{
			"turns": len(req.History),
			"error": err.Error(),
		})
		reply = FallbackChatReply
	}
	s.history = append(s.history, Turn{Role: RoleAssistant, Content: reply})
	s.mode = settles[ActionSendChat]
	snap = s.changedLocked()
	s.mu.Unlock()

	s.emit(snap)
	return nil
}

// SaveNote stores the current explanation as a note. The mode does not change.
func (s *Session) SaveNote(ctx context.Context) error {
	s.mu.Lock()
	if err := s.guardLocked(ActionSaveNote, true); err != nil {
		s.mu.Unlock()
		return err
	}
	s.stopSavedTimerLocked()
	s.saving = true
	s.savedMessage = ""
	s.saveSeq++
	seq := s.saveSeq
	gen := s.generation
	req := NoteRequest{
		StudentID:    s.scope.StudentID,
		CourseID:     s.scope.CourseID,
		ConceptID:    s.scope.ConceptID,
		Type:         NoteType,
		SelectedText: s.text,
		Body:         s.explanation,
		Color:        NoteColor,
		Anchor:       s.anchor,
	}
	snap := s.changedLocked()
	s.mu.Unlock()
	s.emit(snap)

	err := s.save(ctx, req)

	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		return ErrStaleResponse
	}
	s.saving = false
	if err != nil {
		s.logger.Warn(logModule, "Save as note failed", map[string]interface{}{
			"error": err.Error(),
		})
		s.savedMessage = SaveFailedMessage
	} else {
		s.savedMessage = SavedMessage
		s.savedTimer = s.clock.AfterFunc(SavedMessageTTL, func() {
			s.clearSavedMessage(gen, seq)
		})
	}
	snap = s.changedLocked()
	s.mu.Unlock()

	s.emit(snap)
	return nil
}

func (s *Session) clearSavedMessage(gen, seq uint64) {
	s.mu.Lock()
	if gen != s.generation || seq != s.saveSeq || s.savedMessage != SavedMessage {
		s.mu.Unlock()
		return
	}
	s.savedMessage = ""
	s.savedTimer = nil
	snap := s.changedLocked()
	s.mu.Unlock()

	s.emit(snap)
}

// Dismiss resets the session and tells the host to hide the toolbar. It
// reports false when the toolbar was already idle and hidden, which is a no-op.
func (s *Session) Dismiss() bool {
	s.mu.Lock()
	if !s.visible && s.mode == ModeIdle {
		s.mu.Unlock()
		return false
	}
	s.dismissLocked()
	return true
}

// ClickOutside dismisses only while idle and reports whether it did.
func (s *Session) ClickOutside() bool {
	s.mu.Lock()
	if !s.visible {
		s.mu.Unlock()
		return false
	}
	if _, ok := Next(s.mode, ActionClickOutside); !ok {
		s.mu.Unlock()
		return false
	}
	s.dismissLocked()
	return true
}

// dismissLocked must be called with mu held and releases it.
func (s *Session) dismissLocked() {
	text, anchor := s.text, s.anchor
	s.clearLocked()
	s.text, s.anchor = text, anchor
	s.visible = false
	snap := s.changedLocked()
	hook := s.onDismiss
	s.mu.Unlock()

	if hook != nil {
		hook()
	}
	s.emit(snap)
}

func (s *Session) guardLocked(action Action, network bool) error {
	if !s.visible {
		return ErrHidden
	}
	if s.mode == ModeLoading {
		return ErrBusy
	}
	if network && s.saving {
		return ErrBusy
	}
	if _, ok := Next(s.mode, action); !ok {
		return ErrInvalidTransition
	}
	return nil
}

func (s *Session) clearLocked() {
	s.generation++
	s.stopSavedTimerLocked()
	s.mode = ModeIdle
	s.explanation = ""
	s.history = nil
	s.saving = false
	s.savedMessage = ""
}

func (s *Session) stopSavedTimerLocked() {
	if s.savedTimer != nil {
		s.savedTimer.Stop()
		s.savedTimer = nil
	}
}

func (s *Session) changedLocked() Snapshot {
	s.revision++
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	return Snapshot{
		Revision:     s.revision,
		Generation:   s.generation,
		Visible:      s.visible,
		Mode:         s.mode,
		SelectedText: s.text,
		Anchor:       s.anchor,
		Explanation:  s.explanation,
		ChatHistory:  cloneTurns(s.history),
		Saving:       s.saving,
		SavedMessage: s.savedMessage,
		Placement:    Place(s.anchor, s.mode),
	}
}

func (s *Session) emit(snap Snapshot) {
	s.listenMu.Lock()
	fns := make([]func(Snapshot), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.listenMu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

func (s *Session) explain(ctx context.Context, req ExplainRequest) (string, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	return await(ctx, func(ctx context.Context) (string, error) {
		return s.explainer.Explain(ctx, req)
	})
}

func (s *Session) save(ctx context.Context, req NoteRequest) error {
	ctx, cancel := s.bound(ctx)
	defer cancel()
	_, err := await(ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.saver.SaveNote(ctx, req)
	})
	return err
}

func (s *Session) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

type outcome[T any] struct {
	val T
	err error
}

// await stops waiting once ctx is done, even if fn ignores its context.
func await[T any](ctx context.Context, fn func(ctx context.Context) (T, error)) (T, error) {
	done := make(chan outcome[T], 1)
	go func() {
		v, err := fn(ctx)
		done <- outcome[T]{val: v, err: err}
	}()

	select {
	case o := <-done:
		return o.val, o.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

func cloneTurns(turns []Turn) []Turn {
	if len(turns) == 0 {
		return []Turn{}
	}
	out := make([]Turn, len(turns))
	copy(out, turns)
	return out
}
