package graph

// Relation is the type of a directed concept link.
type Relation string

const (
	RelationPrerequisite Relation = "prerequisite"
	RelationRelated      Relation = "related"
	RelationPartOf       Relation = "part_of"
)

// Label is the text drawn at an edge's midpoint.
func (r Relation) Label() string {
	switch r {
	case RelationPrerequisite:
		return "prerequisite"
	case RelationPartOf:
		return "part of"
	default:
		return "related"
	}
}

func (r Relation) Color() string {
	switch r {
	case RelationPrerequisite:
		return "#ef4444"
	case RelationRelated:
		return "#3b82f6"
	case RelationPartOf:
		return "#10b981"
	default:
		return "#9ca3af"
	}
}

type NodeID int64

// Node is a concept with layout coordinates supplied by the graph service.
type Node struct {
	ID          NodeID  `json:"id"`
	Name        string  `json:"name"`
	Importance  float64 `json:"importance"`
	Description *string `json:"description"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Completed   bool    `json:"completed"`
}

type Edge struct {
	Source     NodeID   `json:"source"`
	Target     NodeID   `json:"target"`
	Relation   Relation `json:"relation"`
	Confidence float64  `json:"confidence"`
}

// Touches reports whether id is either endpoint.
func (e Edge) Touches(id NodeID) bool {
	return e.Source == id || e.Target == id
}

// Other returns the endpoint opposite id.
func (e Edge) Other(id NodeID) NodeID {
	if e.Source == id {
		return e.Target
	}
	return e.Source
}

// Dataset is one load of the course graph.
type Dataset struct {
	Nodes []Node `json:"concepts"`
	Edges []Edge `json:"edges"`
}

// MasteryRecord is one concept entry of the mastery response.
type MasteryRecord struct {
	ConceptID   NodeID  `json:"concept_id"`
	ConceptName string  `json:"concept_name,omitempty"`
	Score       float64 `json:"mastery_score"`
	Status      string  `json:"status,omitempty"`
	Completed   bool    `json:"completed"`
}

// Merge marks a node completed iff the mastery response lists it as completed.
// The input dataset is not modified.
func Merge(ds Dataset, mastery []MasteryRecord) Dataset {
	done := make(map[NodeID]bool, len(mastery))
	for _, m := range mastery {
		if m.Completed {
			done[m.ConceptID] = true
		}
	}

	nodes := make([]Node, len(ds.Nodes))
	for i, n := range ds.Nodes {
		n.Completed = done[n.ID]
		nodes[i] = n
	}
	edges := make([]Edge, len(ds.Edges))
	copy(edges, ds.Edges)
	return Dataset{Nodes: nodes, Edges: edges}
}
