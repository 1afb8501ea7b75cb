package hierarchy

import "fmt"

// graph is the adjacency structure behind a Hierarchy. Iteration order is
// insertion order so that everything derived from it is deterministic.
type graph struct {
	nodes map[string]*vertex
	order []string
}

type vertex struct {
	id       string
	parents  []*vertex
	children []*vertex
	// childSet guards against duplicate relationships.
	childSet map[string]struct{}
}

func newGraph() *graph {
	return &graph{nodes: make(map[string]*vertex)}
}

// addNode adds a vertex if it does not already exist.
func (g *graph) addNode(id string) *vertex {
	if v, ok := g.nodes[id]; ok {
		return v
	}
	v := &vertex{id: id, childSet: make(map[string]struct{})}
	g.nodes[id] = v
	g.order = append(g.order, id)
	return v
}

// addEdge links parent to child. Both vertices must exist.
func (g *graph) addEdge(parentID, childID string) error {
	if parentID == childID {
		return fmt.Errorf("self-referential relationship not allowed: %s -> %s", parentID, childID)
	}
	parent, ok := g.nodes[parentID]
	if !ok {
		return fmt.Errorf("parent node not found: %s", parentID)
	}
	child, ok := g.nodes[childID]
	if !ok {
		return fmt.Errorf("child node not found: %s", childID)
	}
	if _, dup := parent.childSet[childID]; dup {
		return fmt.Errorf("duplicate relationship %s -> %s", parentID, childID)
	}
	parent.childSet[childID] = struct{}{}
	parent.children = append(parent.children, child)
	child.parents = append(child.parents, parent)
	return nil
}

// detectCycles runs a depth-first search with temporary and permanent marks
// and reports the first node found on a cycle.
func (g *graph) detectCycles() error {
	permanent := make(map[string]bool, len(g.nodes))
	temporary := make(map[string]bool)

	var visit func(v *vertex) error
	visit = func(v *vertex) error {
		if permanent[v.id] {
			return nil
		}
		if temporary[v.id] {
			return fmt.Errorf("cycle detected involving node '%s'", v.id)
		}
		temporary[v.id] = true
		for _, c := range v.children {
			if err := visit(c); err != nil {
				return err
			}
		}
		delete(temporary, v.id)
		permanent[v.id] = true
		return nil
	}

	for _, id := range g.order {
		if err := visit(g.nodes[id]); err != nil {
			return err
		}
	}
	return nil
}
