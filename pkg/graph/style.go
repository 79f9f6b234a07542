package graph

import (
	"fmt"
	"math"
)

const (
	baseRadius  = 15
	radiusScale = 20
)

const (
	fillCompleted = "#10b981"
	fillActive    = "#3b82f6"
	fillDefault   = "#60a5fa"

	strokeSelected = "#1e40af"
	strokeDefault  = "#2563eb"

	labelActive  = "#1e293b"
	labelDefault = "#475569"
)

// Radius grows linearly with importance so low-importance nodes stay visible.
func Radius(importance float64) float64 {
	return baseRadius + radiusScale*clamp01(importance)
}

type EdgeStyle struct {
	Stroke       string  `json:"stroke"`
	StrokeWidth  float64 `json:"stroke_width"`
	Opacity      float64 `json:"opacity"`
	LabelOpacity float64 `json:"label_opacity"`
	Highlighted  bool    `json:"highlighted"`
}

// StyleEdge is a pure function of the current selection and the edge.
func StyleEdge(selected *NodeID, e Edge) EdgeStyle {
	lit := selected != nil && e.Touches(*selected)
	style := EdgeStyle{
		Stroke:       e.Relation.Color(),
		StrokeWidth:  2,
		Opacity:      0.4,
		LabelOpacity: 0.3,
		Highlighted:  lit,
	}
	if lit {
		style.StrokeWidth = 3
		style.Opacity = 0.8
		style.LabelOpacity = 0.9
	}
	return style
}

type NodeStyle struct {
	Radius      float64 `json:"radius"`
	Fill        string  `json:"fill"`
	Stroke      string  `json:"stroke"`
	StrokeWidth float64 `json:"stroke_width"`
	Opacity     float64 `json:"opacity"`
	LabelSize   float64 `json:"label_size"`
	LabelBold   bool    `json:"label_bold"`
	LabelColor  string  `json:"label_color"`
	Checkmark   bool    `json:"checkmark"`
}

// StyleNode applies completed, selected and hovered treatments. Completion
// decides the fill; the selection outline is drawn regardless.
func StyleNode(n Node, selected, hovered bool) NodeStyle {
	importance := clamp01(n.Importance)
	active := selected || hovered

	style := NodeStyle{
		Radius:      Radius(importance),
		Fill:        fillDefault,
		Stroke:      strokeDefault,
		StrokeWidth: 1,
		Opacity:     0.7 + importance*0.3,
		LabelSize:   11 + importance*3,
		LabelBold:   active,
		LabelColor:  labelDefault,
		Checkmark:   n.Completed,
	}

	switch {
	case n.Completed:
		style.Fill = fillCompleted
		style.Opacity = 0.9
	case active:
		style.Fill = fillActive
	}

	switch {
	case selected:
		style.Stroke = strokeSelected
		style.StrokeWidth = 3
	case hovered:
		style.StrokeWidth = 2
	}

	if active {
		style.LabelColor = labelActive
	}
	return style
}

// ImportanceLabel renders importance as a whole percentage.
func ImportanceLabel(importance float64) string {
	return fmt.Sprintf("%.0f%%", clamp01(importance)*100)
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Min(1, math.Max(0, v))
}
