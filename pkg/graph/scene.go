package graph

import "math"

// ScenePadding is the margin added around the node extents.
const ScenePadding = 100

type ViewBox struct {
	MinX   float64 `json:"min_x"`
	MinY   float64 `json:"min_y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type SceneEdge struct {
	Edge
	X1    float64   `json:"x1"`
	Y1    float64   `json:"y1"`
	X2    float64   `json:"x2"`
	Y2    float64   `json:"y2"`
	Label string    `json:"label"`
	Style EdgeStyle `json:"style"`
}

type SceneNode struct {
	Node
	ImportanceLabel string    `json:"importance_label"`
	Selected        bool      `json:"selected"`
	Hovered         bool      `json:"hovered"`
	Style           NodeStyle `json:"style"`
}

type LegendEntry struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

// Legend is fixed and drawn under every non-empty graph.
var Legend = []LegendEntry{
	{Label: "Not started", Color: fillDefault},
	{Label: "Completed", Color: fillCompleted},
	{Label: "Prerequisite", Color: RelationPrerequisite.Color()},
	{Label: "Related", Color: RelationRelated.Color()},
	{Label: "Part of", Color: RelationPartOf.Color()},
}

// Scene is everything a client needs to draw the graph. Empty is true when
// there are no nodes, in which case nothing should be drawn.
type Scene struct {
	Empty   bool          `json:"empty"`
	ViewBox ViewBox       `json:"view_box"`
	Edges   []SceneEdge   `json:"edges"`
	Nodes   []SceneNode   `json:"nodes"`
	Legend  []LegendEntry `json:"legend"`
	Details *Details      `json:"details,omitempty"`
}

func render(nodes []Node, index map[NodeID]int, edges []Edge, selected, hovered *NodeID) Scene {
	if len(nodes) == 0 {
		return Scene{Empty: true, Edges: []SceneEdge{}, Nodes: []SceneNode{}, Legend: []LegendEntry{}}
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, n := range nodes {
		minX = math.Min(minX, n.X)
		maxX = math.Max(maxX, n.X)
		minY = math.Min(minY, n.Y)
		maxY = math.Max(maxY, n.Y)
	}
	box := ViewBox{
		MinX:   minX - ScenePadding,
		MinY:   minY - ScenePadding,
		Width:  maxX - minX + 2*ScenePadding,
		Height: maxY - minY + 2*ScenePadding,
	}

	sceneEdges := make([]SceneEdge, 0, len(edges))
	for _, e := range edges {
		si, ok := index[e.Source]
		if !ok {
			continue
		}
		ti, ok := index[e.Target]
		if !ok {
			continue
		}
		src, dst := nodes[si], nodes[ti]
		sceneEdges = append(sceneEdges, SceneEdge{
			Edge:  e,
			X1:    src.X,
			Y1:    src.Y,
			X2:    dst.X,
			Y2:    dst.Y,
			Label: e.Relation.Label(),
			Style: StyleEdge(selected, e),
		})
	}

	sceneNodes := make([]SceneNode, 0, len(nodes))
	for _, n := range nodes {
		isSel := selected != nil && *selected == n.ID
		isHov := hovered != nil && *hovered == n.ID
		sceneNodes = append(sceneNodes, SceneNode{
			Node:            n,
			ImportanceLabel: ImportanceLabel(n.Importance),
			Selected:        isSel,
			Hovered:         isHov,
			Style:           StyleNode(n, isSel, isHov),
		})
	}

	scene := Scene{
		ViewBox: box,
		Edges:   sceneEdges,
		Nodes:   sceneNodes,
		Legend:  Legend,
	}
	if selected != nil {
		d := derive(nodes, index, edges, *selected)
		scene.Details = &d
	}
	return scene
}
