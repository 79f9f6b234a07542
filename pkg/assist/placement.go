package assist

import (
	"math"

	"ai-study-assist-be/pkg/selection"
)

const (
	idleToolbarWidth  = 300
	panelToolbarWidth = 320
	toolbarMinLeft    = 10
	toolbarLift       = 60
)

// Placement is where the toolbar is drawn, in document coordinates.
type Placement struct {
	Left  float64 `json:"left"`
	Top   float64 `json:"top"`
	Width float64 `json:"width"`
}

// Place centers the toolbar above the anchor and keeps it off the left edge.
func Place(anchor selection.Point, mode Mode) Placement {
	width := float64(panelToolbarWidth)
	if mode == ModeIdle {
		width = idleToolbarWidth
	}
	return Placement{
		Left:  math.Max(toolbarMinLeft, anchor.X-width/2),
		Top:   anchor.Y - toolbarLift,
		Width: width,
	}
}
