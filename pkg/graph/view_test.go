package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset() Dataset {
	desc := "Energy conversion in cells"
	return Dataset{
		Nodes: []Node{
			{ID: 1, Name: "Cells", Importance: 0.5, X: 0, Y: 0},
			{ID: 2, Name: "Respiration", Importance: 1, X: 200, Y: 100, Description: &desc},
			{ID: 3, Name: "Photosynthesis", Importance: 0, X: 100, Y: 300},
		},
		Edges: []Edge{
			{Source: 1, Target: 2, Relation: RelationPrerequisite, Confidence: 0.9},
			{Source: 2, Target: 3, Relation: RelationRelated, Confidence: 0.7},
			{Source: 3, Target: 1, Relation: RelationPartOf, Confidence: 0.5},
			{Source: 99, Target: 2, Relation: RelationPrerequisite},
			{Source: 3, Target: 42, Relation: RelationRelated},
		},
	}
}

func TestView_ClickToggles(t *testing.T) {
	v := NewView(sampleDataset())

	require.NoError(t, v.Click(2))
	id, ok := v.Selected()
	require.True(t, ok)
	assert.Equal(t, NodeID(2), id)

	require.NoError(t, v.Click(3))
	id, _ = v.Selected()
	assert.Equal(t, NodeID(3), id)

	require.NoError(t, v.Click(3))
	_, ok = v.Selected()
	assert.False(t, ok)
}

func TestView_UnknownNode(t *testing.T) {
	v := NewView(sampleDataset())
	assert.ErrorIs(t, v.Click(42), ErrUnknownNode)
	assert.ErrorIs(t, v.Hover(42), ErrUnknownNode)
}

func TestView_HoverDoesNotSelect(t *testing.T) {
	v := NewView(sampleDataset())
	require.NoError(t, v.Click(1))
	require.NoError(t, v.Hover(3))

	sel, _ := v.Selected()
	hov, ok := v.Hovered()
	assert.Equal(t, NodeID(1), sel)
	assert.True(t, ok)
	assert.Equal(t, NodeID(3), hov)

	v.Leave()
	_, ok = v.Hovered()
	assert.False(t, ok)
	_, ok = v.Selected()
	assert.True(t, ok)
}

func TestView_DetailsPrerequisites(t *testing.T) {
	v := NewView(sampleDataset())

	require.NoError(t, v.Click(2))
	d, ok := v.Details()
	require.True(t, ok)
	assert.Equal(t, Names{"Cells"}, d.Prerequisites)
	assert.Equal(t, Names{"Photosynthesis"}, d.Related)
	assert.Equal(t, "100%", d.Importance)
	require.NotNil(t, d.Description)

	require.NoError(t, v.Click(1))
	d, _ = v.Details()
	assert.Empty(t, d.Prerequisites)
	assert.Equal(t, []string{NoneLabel}, d.PrerequisitesDisplay)
	assert.Equal(t, Names{"Photosynthesis"}, d.Related)
	assert.Equal(t, []string{"Photosynthesis"}, d.RelatedDisplay)
}

func TestView_DetailsRelatedCoversEveryNonPrerequisite(t *testing.T) {
	v := NewView(Dataset{
		Nodes: []Node{
			{ID: 1, Name: "Cells"},
			{ID: 2, Name: "Respiration"},
			{ID: 3, Name: "Photosynthesis"},
			{ID: 4, Name: "Mitochondria"},
		},
		Edges: []Edge{
			{Source: 3, Target: 1, Relation: RelationPartOf},
			{Source: 1, Target: 4, Relation: Relation("contains")},
			{Source: 2, Target: 1, Relation: RelationPrerequisite},
		},
	})

	require.NoError(t, v.Click(1))
	d, ok := v.Details()
	require.True(t, ok)
	assert.Equal(t, Names{"Photosynthesis", "Mitochondria"}, d.Related)
	assert.Equal(t, Names{"Respiration"}, d.Prerequisites)

	require.NoError(t, v.Click(2))
	d, _ = v.Details()
	assert.Equal(t, []string{NoneLabel}, d.RelatedDisplay)
}

func TestView_DanglingEdgesIgnored(t *testing.T) {
	v := NewView(sampleDataset())

	require.NoError(t, v.Click(3))
	d, _ := v.Details()
	assert.Equal(t, Names{"Respiration", "Cells"}, d.Related)

	scene := v.Scene()
	assert.Len(t, scene.Edges, 3)
	for _, e := range scene.Edges {
		assert.NotEqual(t, NodeID(99), e.Source)
		assert.NotEqual(t, NodeID(42), e.Target)
	}
}

func TestView_DetailsNothingSelected(t *testing.T) {
	v := NewView(sampleDataset())
	_, ok := v.Details()
	assert.False(t, ok)
	assert.Nil(t, v.Scene().Details)
}

func TestView_LoadReplacesState(t *testing.T) {
	v := NewView(sampleDataset())
	require.NoError(t, v.Click(2))
	require.NoError(t, v.Hover(3))

	v.Load(Dataset{Nodes: []Node{{ID: 2, Name: "Respiration"}}})

	sel, ok := v.Selected()
	assert.True(t, ok)
	assert.Equal(t, NodeID(2), sel)
	_, ok = v.Hovered()
	assert.False(t, ok)

	v.Load(Dataset{})
	_, ok = v.Selected()
	assert.False(t, ok)
	assert.True(t, v.Scene().Empty)
}

func TestView_SceneGeometry(t *testing.T) {
	v := NewView(sampleDataset())
	scene := v.Scene()

	assert.False(t, scene.Empty)
	assert.Equal(t, ViewBox{MinX: -100, MinY: -100, Width: 400, Height: 500}, scene.ViewBox)
	assert.Len(t, scene.Nodes, 3)
	assert.Len(t, scene.Legend, 5)

	first := scene.Edges[0]
	assert.Equal(t, 0.0, first.X1)
	assert.Equal(t, 200.0, first.X2)
	assert.Equal(t, "prerequisite", first.Label)
	assert.Equal(t, "part of", scene.Edges[2].Label)
}

func TestStyleEdge(t *testing.T) {
	e := Edge{Source: 1, Target: 2, Relation: RelationPrerequisite}
	one, three := NodeID(1), NodeID(3)

	tests := []struct {
		name     string
		selected *NodeID
		want     EdgeStyle
	}{
		{"no selection", nil, EdgeStyle{Stroke: "#ef4444", StrokeWidth: 2, Opacity: 0.4, LabelOpacity: 0.3}},
		{"endpoint selected", &one, EdgeStyle{Stroke: "#ef4444", StrokeWidth: 3, Opacity: 0.8, LabelOpacity: 0.9, Highlighted: true}},
		{"other node selected", &three, EdgeStyle{Stroke: "#ef4444", StrokeWidth: 2, Opacity: 0.4, LabelOpacity: 0.3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StyleEdge(tt.selected, e))
		})
	}

	assert.Equal(t, "#9ca3af", StyleEdge(nil, Edge{Relation: "unknown"}).Stroke)
}

func TestStyleNode(t *testing.T) {
	n := Node{ID: 1, Importance: 0.5}

	plain := StyleNode(n, false, false)
	assert.Equal(t, 25.0, plain.Radius)
	assert.Equal(t, fillDefault, plain.Fill)
	assert.Equal(t, 1.0, plain.StrokeWidth)
	assert.InDelta(t, 0.85, plain.Opacity, 1e-9)
	assert.Equal(t, 12.5, plain.LabelSize)
	assert.False(t, plain.LabelBold)

	hov := StyleNode(n, false, true)
	assert.Equal(t, fillActive, hov.Fill)
	assert.Equal(t, 2.0, hov.StrokeWidth)
	assert.True(t, hov.LabelBold)

	n.Completed = true
	sel := StyleNode(n, true, false)
	assert.Equal(t, fillCompleted, sel.Fill)
	assert.Equal(t, strokeSelected, sel.Stroke)
	assert.Equal(t, 3.0, sel.StrokeWidth)
	assert.Equal(t, 0.9, sel.Opacity)
	assert.True(t, sel.Checkmark)
}

func TestRadiusClamps(t *testing.T) {
	assert.Equal(t, 15.0, Radius(-1))
	assert.Equal(t, 35.0, Radius(2))
	assert.Equal(t, "50%", ImportanceLabel(0.5))
}

func TestMerge(t *testing.T) {
	ds := sampleDataset()
	merged := Merge(ds, []MasteryRecord{
		{ConceptID: 1, Completed: true},
		{ConceptID: 2, Completed: false},
		{ConceptID: 77, Completed: true},
	})

	assert.True(t, merged.Nodes[0].Completed)
	assert.False(t, merged.Nodes[1].Completed)
	assert.False(t, merged.Nodes[2].Completed)
	assert.False(t, ds.Nodes[0].Completed)
}

func TestPrerequisites(t *testing.T) {
	assert.Equal(t, Names{"Cells"}, Prerequisites(sampleDataset(), 2))
	assert.Empty(t, Prerequisites(sampleDataset(), 1))
	assert.Empty(t, Prerequisites(sampleDataset(), 500))
}
