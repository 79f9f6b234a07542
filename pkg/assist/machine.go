package assist

import (
	"fmt"
)

// Mode is the toolbar state.
type Mode uint8

const (
	ModeIdle Mode = iota
	ModeLoading
	ModeResult
	ModeChat
)

var modeNames = map[Mode]string{
	ModeIdle:    "idle",
	ModeLoading: "loading",
	ModeResult:  "result",
	ModeChat:    "chat",
}

func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("mode(%d)", uint8(m))
}

func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Mode) UnmarshalText(b []byte) error {
	for mode, name := range modeNames {
		if name == string(b) {
			*m = mode
			return nil
		}
	}
	return fmt.Errorf("assist: unknown mode %q", string(b))
}

// Action is a user intent fed into the session.
type Action uint8

const (
	ActionExplain Action = iota
	ActionExamples
	ActionAskMore
	ActionSendChat
	ActionSaveNote
	ActionDismiss
	ActionClickOutside
)

var actionNames = map[Action]string{
	ActionExplain:      "explain",
	ActionExamples:     "examples",
	ActionAskMore:      "ask_more",
	ActionSendChat:     "send_chat",
	ActionSaveNote:     "save_note",
	ActionDismiss:      "dismiss",
	ActionClickOutside: "click_outside",
}

func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return fmt.Sprintf("action(%d)", uint8(a))
}

// Kind is the explanation service mode sent on the wire.
type Kind string

const (
	KindExplain  Kind = "explain"
	KindExamples Kind = "examples"
	KindChat     Kind = "chat"
)

// transitions lists every legal move. Anything absent is rejected.
var transitions = map[Mode]map[Action]Mode{
	ModeIdle: {
		ActionExplain:      ModeLoading,
		ActionExamples:     ModeLoading,
		ActionAskMore:      ModeChat,
		ActionDismiss:      ModeIdle,
		ActionClickOutside: ModeIdle,
	},
	ModeLoading: {
		ActionDismiss: ModeIdle,
	},
	ModeResult: {
		ActionAskMore:  ModeChat,
		ActionSaveNote: ModeResult,
		ActionDismiss:  ModeIdle,
	},
	ModeChat: {
		ActionSendChat: ModeLoading,
		ActionDismiss:  ModeIdle,
	},
}

// settles maps a network action to the mode its response lands in.
var settles = map[Action]Mode{
	ActionExplain:  ModeResult,
	ActionExamples: ModeResult,
	ActionSendChat: ModeChat,
}

var kinds = map[Action]Kind{
	ActionExplain:  KindExplain,
	ActionExamples: KindExamples,
	ActionSendChat: KindChat,
}

// Next returns the mode reached by applying a in m.
func Next(m Mode, a Action) (Mode, bool) {
	row, ok := transitions[m]
	if !ok {
		return m, false
	}
	next, ok := row[a]
	if !ok {
		return m, false
	}
	return next, true
}
