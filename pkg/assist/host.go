package assist

import (
	"sync"

	"ai-study-assist-be/pkg/selection"
)

// Host wires a selection capture to a session the way a page hosting a
// content region does: a new or re-shown selection resets the session, and
// dismissing the session hides the selection.
type Host struct {
	capture *selection.Capture
	session *Session

	mu          sync.Mutex
	lastText    string
	lastVisible bool

	unsubscribe func()
}

// NewHost binds capture to a session built from the given collaborators.
func NewHost(capture *selection.Capture, explainer Explainer, saver NoteSaver, scope Scope, opts ...Option) *Host {
	h := &Host{capture: capture}
	opts = append(opts, WithDismissHook(capture.Dismiss))
	h.session = NewSession(explainer, saver, scope, opts...)
	h.unsubscribe = capture.Subscribe(h.onSelection)
	return h
}

func (h *Host) Session() *Session { return h.session }

func (h *Host) Capture() *selection.Capture { return h.capture }

func (h *Host) onSelection(ev selection.Event) {
	h.mu.Lock()
	changed := ev.Text != h.lastText
	reshown := ev.Visible && !h.lastVisible
	h.lastText = ev.Text
	h.lastVisible = ev.Visible
	h.mu.Unlock()

	anchor := selection.Point{X: ev.AnchorX, Y: ev.AnchorY}
	switch {
	case !ev.Visible:
		h.session.Dismiss()
	case changed || reshown:
		h.session.Reset(ev.Text, anchor)
	default:
		h.session.Reposition(anchor)
	}
}

// Close detaches the host from the capture and the document.
func (h *Host) Close() {
	h.unsubscribe()
	h.session.Dismiss()
	h.capture.Close()
}
