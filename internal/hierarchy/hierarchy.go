package hierarchy

import (
	"errors"
	"fmt"

	"github.com/vk/hiertask/internal/table"
)

// Kind tells terms and genes apart.
type Kind int

const (
	KindTerm Kind = iota
	KindGene
)

func (k Kind) String() string {
	switch k {
	case KindTerm:
		return "Term"
	case KindGene:
		return "Gene"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Columns selects which table fields hold the parent and the child.
type Columns struct {
	Parent int
	Child  int
}

// DefaultColumns is the fixed role assignment used for algorithm output.
var DefaultColumns = Columns{Parent: 0, Child: 1}

// Relation is one parent-to-child edge, in table order.
type Relation struct {
	Parent string
	Child  string
	// Gene is true when the child is a leaf gene.
	Gene      bool
	Weight    float64
	HasWeight bool
}

// BuildError reports a structurally invalid hierarchy.
type BuildError struct {
	Row int // 1-based data row, zero when not tied to a row
	Err error
}

func (e *BuildError) Error() string {
	if e.Row > 0 {
		return fmt.Sprintf("invalid hierarchy at row %d: %v", e.Row, e.Err)
	}
	return fmt.Sprintf("invalid hierarchy: %v", e.Err)
}

func (e *BuildError) Unwrap() error { return e.Err }

// Hierarchy is an immutable term/gene DAG plus the optional leaf feature table.
type Hierarchy struct {
	g         *graph
	kinds     map[string]Kind
	relations []Relation
	features  *table.FeatureTable
	sizes     map[string]int
}

// Build constructs a Hierarchy from the structural table and attaches the
// optional feature table.
func Build(structure *table.Table, features *table.FeatureTable, cols Columns) (*Hierarchy, error) {
	rows := structure.Rows()
	g := newGraph()
	parents := make(map[string]bool)
	flaggedGenes := make(map[string]bool)

	for i, r := range rows {
		if cols.Parent < 0 || cols.Child < 0 || cols.Parent >= len(r.Fields) || cols.Child >= len(r.Fields) {
			return nil, &BuildError{Row: i + 1, Err: fmt.Errorf("column index out of range for %d fields", len(r.Fields))}
		}
		p, c := r.Fields[cols.Parent], r.Fields[cols.Child]
		g.addNode(p)
		g.addNode(c)
		parents[p] = true
		if r.Flag == table.FlagGene {
			flaggedGenes[c] = true
		}
	}

	kinds := make(map[string]Kind, len(g.order))
	for _, id := range g.order {
		switch {
		case flaggedGenes[id] && parents[id]:
			return nil, &BuildError{Err: fmt.Errorf("gene %q has children", id)}
		case flaggedGenes[id] || !parents[id]:
			kinds[id] = KindGene
		default:
			kinds[id] = KindTerm
		}
	}

	relations := make([]Relation, 0, len(rows))
	for i, r := range rows {
		p, c := r.Fields[cols.Parent], r.Fields[cols.Child]
		if err := g.addEdge(p, c); err != nil {
			return nil, &BuildError{Row: i + 1, Err: err}
		}
		relations = append(relations, Relation{
			Parent:    p,
			Child:     c,
			Gene:      kinds[c] == KindGene,
			Weight:    r.Weight,
			HasWeight: r.HasWeight,
		})
	}

	if err := g.detectCycles(); err != nil {
		return nil, &BuildError{Err: err}
	}

	h := &Hierarchy{g: g, kinds: kinds, relations: relations}
	if features != nil {
		if err := h.attach(features); err != nil {
			return nil, err
		}
	}
	h.sizes = h.computeSizes()
	return h, nil
}

var errDanglingLeaf = errors.New("feature table references a gene that is not a leaf of the hierarchy")

func (h *Hierarchy) attach(ft *table.FeatureTable) error {
	for i, fr := range ft.Rows {
		for _, gene := range [2]string{fr.Gene1, fr.Gene2} {
			if k, ok := h.kinds[gene]; !ok || k != KindGene {
				return &BuildError{Err: fmt.Errorf("feature row %d: %w: %q", i+1, errDanglingLeaf, gene)}
			}
		}
	}
	h.features = ft
	return nil
}

// computeSizes counts the distinct genes below each node. A gene has size 1.
func (h *Hierarchy) computeSizes() map[string]int {
	below := make(map[string]map[string]struct{}, len(h.g.order))
	var collect func(v *vertex) map[string]struct{}
	collect = func(v *vertex) map[string]struct{} {
		if s, ok := below[v.id]; ok {
			return s
		}
		s := make(map[string]struct{})
		if h.kinds[v.id] == KindGene {
			s[v.id] = struct{}{}
		}
		for _, c := range v.children {
			for gene := range collect(c) {
				s[gene] = struct{}{}
			}
		}
		below[v.id] = s
		return s
	}

	sizes := make(map[string]int, len(h.g.order))
	for _, id := range h.g.order {
		sizes[id] = len(collect(h.g.nodes[id]))
	}
	return sizes
}

// Nodes returns every node id in first-appearance order.
func (h *Hierarchy) Nodes() []string {
	return append([]string(nil), h.g.order...)
}

// Terms returns the term ids in first-appearance order.
func (h *Hierarchy) Terms() []string { return h.ofKind(KindTerm) }

// Genes returns the gene ids in first-appearance order.
func (h *Hierarchy) Genes() []string { return h.ofKind(KindGene) }

func (h *Hierarchy) ofKind(k Kind) []string {
	var out []string
	for _, id := range h.g.order {
		if h.kinds[id] == k {
			out = append(out, id)
		}
	}
	return out
}

// Kind reports the kind of a node.
func (h *Hierarchy) Kind(id string) (Kind, bool) {
	k, ok := h.kinds[id]
	return k, ok
}

// Size returns the number of distinct genes at or below a node.
func (h *Hierarchy) Size(id string) int { return h.sizes[id] }

// Children returns the direct children of a node in table order.
func (h *Hierarchy) Children(id string) []string {
	v, ok := h.g.nodes[id]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(v.children))
	for _, c := range v.children {
		out = append(out, c.id)
	}
	return out
}

// Roots returns the nodes without parents.
func (h *Hierarchy) Roots() []string {
	var out []string
	for _, id := range h.g.order {
		if len(h.g.nodes[id].parents) == 0 {
			out = append(out, id)
		}
	}
	return out
}

// Relations returns every parent-to-child edge in table order.
func (h *Hierarchy) Relations() []Relation { return h.relations }

// Features returns the attached leaf feature table, or nil.
func (h *Hierarchy) Features() *table.FeatureTable { return h.features }
