package graph

import (
	"errors"
	"sync"
)

var ErrUnknownNode = errors.New("graph: node not in current dataset")

// View owns one load cycle of concepts and edges plus the pointer state.
// Loading a new dataset replaces everything.
type View struct {
	mu       sync.RWMutex
	nodes    []Node
	index    map[NodeID]int
	edges    []Edge
	selected *NodeID
	hovered  *NodeID
}

func NewView(ds Dataset) *View {
	v := &View{}
	v.Load(ds)
	return v
}

// Load swaps in a new dataset. Selection and hover survive only if their
// node is still present.
func (v *View) Load(ds Dataset) {
	nodes := make([]Node, len(ds.Nodes))
	copy(nodes, ds.Nodes)
	edges := make([]Edge, len(ds.Edges))
	copy(edges, ds.Edges)

	index := make(map[NodeID]int, len(nodes))
	for i, n := range nodes {
		if _, dup := index[n.ID]; !dup {
			index[n.ID] = i
		}
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	v.nodes = nodes
	v.edges = edges
	v.index = index
	if v.selected != nil {
		if _, ok := index[*v.selected]; !ok {
			v.selected = nil
		}
	}
	if v.hovered != nil {
		if _, ok := index[*v.hovered]; !ok {
			v.hovered = nil
		}
	}
}

// Click toggles the selection on id.
func (v *View) Click(id NodeID) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, ok := v.index[id]; !ok {
		return ErrUnknownNode
	}
	if v.selected != nil && *v.selected == id {
		v.selected = nil
		return nil
	}
	v.selected = &id
	return nil
}

// Hover marks id as hovered. It never changes the selection.
func (v *View) Hover(id NodeID) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, ok := v.index[id]; !ok {
		return ErrUnknownNode
	}
	v.hovered = &id
	return nil
}

func (v *View) Leave() {
	v.mu.Lock()
	v.hovered = nil
	v.mu.Unlock()
}

func (v *View) Selected() (NodeID, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.selected == nil {
		return 0, false
	}
	return *v.selected, true
}

func (v *View) Hovered() (NodeID, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.hovered == nil {
		return 0, false
	}
	return *v.hovered, true
}

func (v *View) Node(id NodeID) (Node, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	i, ok := v.index[id]
	if !ok {
		return Node{}, false
	}
	return v.nodes[i], true
}

// Details derives the panel for the selected node. ok is false when nothing
// is selected.
func (v *View) Details() (Details, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.selected == nil {
		return Details{}, false
	}
	return derive(v.nodes, v.index, v.edges, *v.selected), true
}

// Scene renders the current state.
func (v *View) Scene() Scene {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return render(v.nodes, v.index, v.edges, v.selected, v.hovered)
}
