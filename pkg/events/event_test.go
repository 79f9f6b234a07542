package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBaseEvent_Int64(t *testing.T) {
	e := BaseEvent{Data: map[string]interface{}{
		"from_json": float64(42),
		"native":    int64(7),
		"plain":     3,
		"text":      "9",
	}}

	tests := []struct {
		key    string
		want   int64
		wantOk bool
	}{
		{"from_json", 42, true},
		{"native", 7, true},
		{"plain", 3, true},
		{"text", 0, false},
		{"missing", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, ok := e.Int64(tt.key)
			assert.Equal(t, tt.wantOk, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
