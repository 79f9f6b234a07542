package graph

// NoneLabel is shown for an empty relation list.
const NoneLabel = "None"

// Names is an ordered list of concept names for a details section.
type Names []string

// Display returns the names, or a single NoneLabel entry when empty.
func (n Names) Display() []string {
	if len(n) == 0 {
		return []string{NoneLabel}
	}
	return n
}

// Details is the side panel for the selected concept.
type Details struct {
	ID                   NodeID   `json:"id"`
	Name                 string   `json:"name"`
	Description          *string  `json:"description,omitempty"`
	Importance           string   `json:"importance"`
	Completed            bool     `json:"completed"`
	Prerequisites        Names    `json:"prerequisites"`
	Related              Names    `json:"related"`
	PrerequisitesDisplay []string `json:"prerequisites_display"`
	RelatedDisplay       []string `json:"related_display"`
}

// derive builds the details for id. Every non-prerequisite relation,
// including ones this package does not name, counts as related. Edges whose
// far endpoint is not in the dataset contribute nothing.
func derive(nodes []Node, index map[NodeID]int, edges []Edge, id NodeID) Details {
	n := nodes[index[id]]
	prereqs := Names{}
	related := Names{}

	for _, e := range edges {
		switch e.Relation {
		case RelationPrerequisite:
			if e.Target != id {
				continue
			}
			if i, ok := index[e.Source]; ok {
				prereqs = append(prereqs, nodes[i].Name)
			}
		default:
			if !e.Touches(id) {
				continue
			}
			if i, ok := index[e.Other(id)]; ok {
				related = append(related, nodes[i].Name)
			}
		}
	}

	return Details{
		ID:                   n.ID,
		Name:                 n.Name,
		Description:          n.Description,
		Importance:           ImportanceLabel(n.Importance),
		Completed:            n.Completed,
		Prerequisites:        prereqs,
		Related:              related,
		PrerequisitesDisplay: prereqs.Display(),
		RelatedDisplay:       related.Display(),
	}
}

// Prerequisites returns the names of nodes with a prerequisite edge into id.
func Prerequisites(ds Dataset, id NodeID) Names {
	v := NewView(ds)
	if _, ok := v.index[id]; !ok {
		return Names{}
	}
	return derive(v.nodes, v.index, v.edges, id).Prerequisites
}
