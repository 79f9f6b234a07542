package assist

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"ai-study-assist-be/pkg/selection"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type fakeExplainer struct {
	mu       sync.Mutex
	requests []ExplainRequest
	reply    string
	err      error
	gate     chan struct{}
}

func (f *fakeExplainer) Explain(ctx context.Context, req ExplainRequest) (string, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	gate := f.gate
	reply, err := f.reply, f.err
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return reply, err
}

func (f *fakeExplainer) last() ExplainRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

type fakeSaver struct {
	mu    sync.Mutex
	notes []NoteRequest
	err   error
}

func (f *fakeSaver) SaveNote(_ context.Context, req NoteRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notes = append(f.notes, req)
	return f.err
}

type fakeTimer struct {
	at      time.Duration
	fn      func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

// fakeClock only moves when Advance is called.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*fakeTimer
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{at: c.now + d, fn: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now += d
	var due []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired && t.at <= c.now {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()

	for _, t := range due {
		t.fn()
	}
}

var scope = Scope{StudentID: 7, CourseID: "bio-101"}

func newTestSession(t *testing.T, ex *fakeExplainer, sv *fakeSaver, opts ...Option) *Session {
	t.Helper()
	s := NewSession(ex, sv, scope, opts...)
	s.Reset("The Krebs cycle", selection.Point{X: 400, Y: 300})
	return s
}

func TestSession_ResetStartsIdle(t *testing.T) {
	s := newTestSession(t, &fakeExplainer{}, &fakeSaver{})

	snap := s.Snapshot()
	assert.True(t, snap.Visible)
	assert.Equal(t, ModeIdle, snap.Mode)
	assert.Equal(t, "The Krebs cycle", snap.SelectedText)
	assert.Empty(t, snap.ChatHistory)
	assert.Equal(t, Placement{Left: 250, Top: 240, Width: 300}, snap.Placement)
}

func TestSession_ExplainSuccess(t *testing.T) {
	ex := &fakeExplainer{reply: "It turns acetyl-CoA into energy carriers."}
	s := newTestSession(t, ex, &fakeSaver{})

	require.NoError(t, s.Explain(context.Background()))

	snap := s.Snapshot()
	assert.Equal(t, ModeResult, snap.Mode)
	assert.Equal(t, "It turns acetyl-CoA into energy carriers.", snap.Explanation)
	assert.Equal(t, ExplainRequest{Text: "The Krebs cycle", CourseID: "bio-101", Kind: KindExplain}, ex.last())
}

func TestSession_ExamplesUsesExamplesKind(t *testing.T) {
	ex := &fakeExplainer{reply: "1. ..."}
	s := newTestSession(t, ex, &fakeSaver{})

	require.NoError(t, s.Examples(context.Background()))

	assert.Equal(t, KindExamples, ex.last().Kind)
	assert.Equal(t, ModeResult, s.Snapshot().Mode)
}

func TestSession_ExplainFailureFallsBackToResult(t *testing.T) {
	s := newTestSession(t, &fakeExplainer{err: errors.New("upstream 502")}, &fakeSaver{})

	require.NoError(t, s.Explain(context.Background()))

	snap := s.Snapshot()
	assert.Equal(t, ModeResult, snap.Mode)
	assert.Equal(t, FallbackExplanation, snap.Explanation)
}

func TestSession_ExplainTimeoutFallsBackToResult(t *testing.T) {
	defer goleak.VerifyNone(t)

	ex := &fakeExplainer{gate: make(chan struct{})}
	s := newTestSession(t, ex, &fakeSaver{}, WithTimeout(10*time.Millisecond))

	require.NoError(t, s.Explain(context.Background()))

	assert.Equal(t, ModeResult, s.Snapshot().Mode)
	assert.Equal(t, FallbackExplanation, s.Snapshot().Explanation)
}

func TestSession_LoadingRejectsSecondAction(t *testing.T) {
	ex := &fakeExplainer{reply: "ok", gate: make(chan struct{})}
	s := newTestSession(t, ex, &fakeSaver{})

	done := make(chan error, 1)
	go func() { done <- s.Explain(context.Background()) }()
	require.Eventually(t, func() bool { return s.Snapshot().Mode == ModeLoading }, time.Second, time.Millisecond)

	assert.ErrorIs(t, s.Examples(context.Background()), ErrBusy)
	assert.ErrorIs(t, s.AskMore(), ErrBusy)
	assert.False(t, s.ClickOutside())

	close(ex.gate)
	require.NoError(t, <-done)
	assert.Equal(t, ModeResult, s.Snapshot().Mode)
}

func TestSession_AskMoreFromIdleStartsEmptyChat(t *testing.T) {
	ex := &fakeExplainer{}
	s := newTestSession(t, ex, &fakeSaver{})

	require.NoError(t, s.AskMore())

	snap := s.Snapshot()
	assert.Equal(t, ModeChat, snap.Mode)
	assert.Empty(t, snap.ChatHistory)
	assert.Empty(t, ex.requests)
	assert.Equal(t, 320.0, snap.Placement.Width)
}

func TestSession_AskMoreFromResultSeedsExplanation(t *testing.T) {
	s := newTestSession(t, &fakeExplainer{reply: "Short answer."}, &fakeSaver{})
	require.NoError(t, s.Explain(context.Background()))

	require.NoError(t, s.AskMore())

	assert.Equal(t, []Turn{{Role: RoleAssistant, Content: "Short answer."}}, s.Snapshot().ChatHistory)
}

func TestSession_ChatRoundTrip(t *testing.T) {
	ex := &fakeExplainer{reply: "X is Y"}
	s := newTestSession(t, ex, &fakeSaver{})
	require.NoError(t, s.AskMore())

	require.NoError(t, s.SendChat(context.Background(), "What is X?"))

	snap := s.Snapshot()
	assert.Equal(t, ModeChat, snap.Mode)
	assert.Equal(t, []Turn{
		{Role: RoleUser, Content: "What is X?"},
		{Role: RoleAssistant, Content: "X is Y"},
	}, snap.ChatHistory)

	req := ex.last()
	assert.Equal(t, KindChat, req.Kind)
	assert.Equal(t, []Turn{{Role: RoleUser, Content: "What is X?"}}, req.History)
}

func TestSession_ChatRequestCarriesPriorTurns(t *testing.T) {
	ex := &fakeExplainer{reply: "first"}
	s := newTestSession(t, ex, &fakeSaver{})
	require.NoError(t, s.Explain(context.Background()))
	require.NoError(t, s.AskMore())

	ex.reply = "second"
	require.NoError(t, s.SendChat(context.Background(), "why?"))

	assert.Equal(t, []Turn{
		{Role: RoleAssistant, Content: "first"},
		{Role: RoleUser, Content: "why?"},
	}, ex.last().History)
	assert.Len(t, s.Snapshot().ChatHistory, 3)
}

func TestSession_ChatFailureAppendsFallback(t *testing.T) {
	s := newTestSession(t, &fakeExplainer{err: errors.New("boom")}, &fakeSaver{})
	require.NoError(t, s.AskMore())

	require.NoError(t, s.SendChat(context.Background(), "hello?"))

	assert.Equal(t, []Turn{
		{Role: RoleUser, Content: "hello?"},
		{Role: RoleAssistant, Content: FallbackChatReply},
	}, s.Snapshot().ChatHistory)
	assert.Equal(t, ModeChat, s.Snapshot().Mode)
}

func TestSession_ChatRejectsBlankInput(t *testing.T) {
	ex := &fakeExplainer{}
	s := newTestSession(t, ex, &fakeSaver{})
	require.NoError(t, s.AskMore())
	before := s.Snapshot()

	assert.ErrorIs(t, s.SendChat(context.Background(), "   "), ErrEmptyInput)

	assert.Equal(t, before, s.Snapshot())
	assert.Empty(t, ex.requests)
}

func TestSession_InvalidTransitions(t *testing.T) {
	s := newTestSession(t, &fakeExplainer{reply: "ok"}, &fakeSaver{})

	assert.ErrorIs(t, s.SendChat(context.Background(), "hi"), ErrInvalidTransition)
	assert.ErrorIs(t, s.SaveNote(context.Background()), ErrInvalidTransition)

	require.NoError(t, s.Explain(context.Background()))
	assert.ErrorIs(t, s.Explain(context.Background()), ErrInvalidTransition)
}

func TestSession_SaveNoteSuccessClearsAfterTTL(t *testing.T) {
	clock := &fakeClock{}
	sv := &fakeSaver{}
	concept := int64(42)
	s := NewSession(&fakeExplainer{reply: "Body text"}, sv, Scope{StudentID: 7, CourseID: "bio-101", ConceptID: &concept}, WithClock(clock))
	s.Reset("Selected passage", selection.Point{X: 1, Y: 2})
	require.NoError(t, s.Explain(context.Background()))

	require.NoError(t, s.SaveNote(context.Background()))

	snap := s.Snapshot()
	assert.Equal(t, SavedMessage, snap.SavedMessage)
	assert.False(t, snap.Saving)
	assert.Equal(t, ModeResult, snap.Mode)
	require.Len(t, sv.notes, 1)
	assert.Equal(t, NoteRequest{
		StudentID:    7,
		CourseID:     "bio-101",
		ConceptID:    &concept,
		Type:         NoteType,
		SelectedText: "Selected passage",
		Body:         "Body text",
		Color:        NoteColor,
		Anchor:       selection.Point{X: 1, Y: 2},
	}, sv.notes[0])

	clock.Advance(1999 * time.Millisecond)
	assert.Equal(t, SavedMessage, s.Snapshot().SavedMessage)

	clock.Advance(time.Millisecond)
	assert.Empty(t, s.Snapshot().SavedMessage)
}

func TestSession_SaveNoteFailureDoesNotClear(t *testing.T) {
	clock := &fakeClock{}
	s := newTestSession(t, &fakeExplainer{reply: "Body"}, &fakeSaver{err: errors.New("db down")}, WithClock(clock))
	require.NoError(t, s.Explain(context.Background()))

	require.NoError(t, s.SaveNote(context.Background()))
	clock.Advance(time.Minute)

	assert.Equal(t, SaveFailedMessage, s.Snapshot().SavedMessage)
	assert.False(t, s.Snapshot().Saving)
}

func TestSession_SecondSaveKeepsItsOwnMessage(t *testing.T) {
	clock := &fakeClock{}
	sv := &fakeSaver{}
	s := newTestSession(t, &fakeExplainer{reply: "Body"}, sv, WithClock(clock))
	require.NoError(t, s.Explain(context.Background()))

	require.NoError(t, s.SaveNote(context.Background()))
	clock.Advance(1500 * time.Millisecond)
	require.NoError(t, s.SaveNote(context.Background()))
	clock.Advance(1000 * time.Millisecond)

	assert.Equal(t, SavedMessage, s.Snapshot().SavedMessage)
	clock.Advance(1000 * time.Millisecond)
	assert.Empty(t, s.Snapshot().SavedMessage)
	assert.Len(t, sv.notes, 2)
}

func TestSession_DismissResetsAndNotifiesHost(t *testing.T) {
	hidden := 0
	s := newTestSession(t, &fakeExplainer{reply: "x"}, &fakeSaver{}, WithDismissHook(func() { hidden++ }))
	require.NoError(t, s.Explain(context.Background()))

	assert.True(t, s.Dismiss())

	snap := s.Snapshot()
	assert.False(t, snap.Visible)
	assert.Equal(t, ModeIdle, snap.Mode)
	assert.Empty(t, snap.Explanation)
	assert.Equal(t, 1, hidden)
}

func TestSession_DismissIsIdempotent(t *testing.T) {
	hidden := 0
	s := NewSession(&fakeExplainer{}, &fakeSaver{}, scope, WithDismissHook(func() { hidden++ }))
	before := s.Snapshot()

	assert.NotPanics(t, func() {
		assert.False(t, s.Dismiss())
		assert.False(t, s.Dismiss())
	})

	assert.Equal(t, before, s.Snapshot())
	assert.Equal(t, 0, hidden)
}

func TestSession_ClickOutsideOnlyWhileIdle(t *testing.T) {
	s := newTestSession(t, &fakeExplainer{reply: "x"}, &fakeSaver{})
	require.NoError(t, s.AskMore())

	assert.False(t, s.ClickOutside())
	assert.True(t, s.Snapshot().Visible)

	s.Reset("another passage", selection.Point{})
	assert.True(t, s.ClickOutside())
	assert.False(t, s.Snapshot().Visible)
}

func TestSession_HiddenRejectsActions(t *testing.T) {
	s := NewSession(&fakeExplainer{}, &fakeSaver{}, scope)

	assert.ErrorIs(t, s.Explain(context.Background()), ErrHidden)
	assert.ErrorIs(t, s.AskMore(), ErrHidden)
}

func TestSession_StaleResponseIsDiscarded(t *testing.T) {
	ex := &fakeExplainer{reply: "answer for old text", gate: make(chan struct{})}
	s := newTestSession(t, ex, &fakeSaver{})

	done := make(chan error, 1)
	go func() { done <- s.Explain(context.Background()) }()
	require.Eventually(t, func() bool { return s.Snapshot().Mode == ModeLoading }, time.Second, time.Millisecond)

	s.Reset("new selection", selection.Point{X: 9, Y: 9})
	close(ex.gate)

	assert.ErrorIs(t, <-done, ErrStaleResponse)
	snap := s.Snapshot()
	assert.Equal(t, ModeIdle, snap.Mode)
	assert.Equal(t, "new selection", snap.SelectedText)
	assert.Empty(t, snap.Explanation)
}

func TestSession_OnChangeSeesLoading(t *testing.T) {
	s := newTestSession(t, &fakeExplainer{reply: "done"}, &fakeSaver{})
	var modes []Mode
	cancel := s.OnChange(func(snap Snapshot) { modes = append(modes, snap.Mode) })
	defer cancel()

	require.NoError(t, s.Explain(context.Background()))

	assert.Equal(t, []Mode{ModeLoading, ModeResult}, modes)
}

func TestNext(t *testing.T) {
	tests := []struct {
		from Mode
		act  Action
		want Mode
		ok   bool
	}{
		{ModeIdle, ActionExplain, ModeLoading, true},
		{ModeIdle, ActionAskMore, ModeChat, true},
		{ModeIdle, ActionSendChat, ModeIdle, false},
		{ModeLoading, ActionExplain, ModeLoading, false},
		{ModeLoading, ActionDismiss, ModeIdle, true},
		{ModeResult, ActionSaveNote, ModeResult, true},
		{ModeResult, ActionClickOutside, ModeResult, false},
		{ModeChat, ActionSendChat, ModeLoading, true},
		{ModeChat, ActionClickOutside, ModeChat, false},
	}

	for _, tt := range tests {
		t.Run(tt.from.String()+"/"+tt.act.String(), func(t *testing.T) {
			got, ok := Next(tt.from, tt.act)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPlace(t *testing.T) {
	assert.Equal(t, Placement{Left: 10, Top: -40, Width: 300}, Place(selection.Point{X: 20, Y: 20}, ModeIdle))
	assert.Equal(t, Placement{Left: 340, Top: 440, Width: 320}, Place(selection.Point{X: 500, Y: 500}, ModeChat))
}
