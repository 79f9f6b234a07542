package selection

import "sync"

// StaticRange is a Range whose values were resolved by a remote host, for
// example a browser posting the selection it saw on pointer release.
type StaticRange struct {
	Content  string
	Ancestor Node
	Rect     Rect
}

func (r StaticRange) Text() string         { return r.Content }
func (r StaticRange) CommonAncestor() Node { return r.Ancestor }
func (r StaticRange) BoundingRect() Rect   { return r.Rect }

// ReportedNode marks an ancestor whose containment the host already decided.
type ReportedNode struct {
	InsideContainer bool
}

// ReportedContainer trusts the containment decision carried by ReportedNode.
type ReportedContainer struct{}

func (ReportedContainer) Contains(n Node) bool {
	rn, ok := n.(ReportedNode)
	return ok && rn.InsideContainer
}

// ScrollState is an AnchorResolver whose offset is updated by the host before
// each release is dispatched.
type ScrollState struct {
	mu     sync.RWMutex
	offset Point
}

func (s *ScrollState) Set(p Point) {
	s.mu.Lock()
	s.offset = p
	s.mu.Unlock()
}

func (s *ScrollState) ScrollOffset() Point {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.offset
}
