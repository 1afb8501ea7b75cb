package ndex

import (
	"encoding/json"
	"fmt"

	"github.com/vk/hiertask/internal/hierarchy"
	"github.com/vk/hiertask/internal/table"
)

// Edge interaction types written to the CX network.
const (
	InteractionChildParent = "Child-Parent"
	InteractionGeneTerm    = "Gene-Term"
	InteractionFeature     = "Feature"
)

// Attribute names used on nodes and edges.
const (
	AttrNodeType = "NodeType"
	AttrSize     = "Size"
	AttrEdgeType = "EdgeType"
	AttrWeight   = "Weight"
)

type cxNode struct {
	ID   int    `json:"@id"`
	Name string `json:"n"`
}

type cxEdge struct {
	ID          int    `json:"@id"`
	Source      int    `json:"s"`
	Target      int    `json:"t"`
	Interaction string `json:"i"`
}

type cxAttr struct {
	PropertyOf int    `json:"po"`
	Name       string `json:"n"`
	Value      any    `json:"v"`
	DataType   string `json:"d,omitempty"`
}

type cxNetworkAttr struct {
	Name  string `json:"n"`
	Value string `json:"v"`
}

type cxMeta struct {
	Name             string `json:"name"`
	ElementCount     int    `json:"elementCount"`
	IDCounter        int    `json:"idCounter,omitempty"`
	Version          string `json:"version"`
	ConsistencyGroup int    `json:"consistencyGroup"`
}

// network is the CX document for one hierarchy.
type network struct {
	nodes      []cxNode
	edges      []cxEdge
	nodeAttrs  []cxAttr
	edgeAttrs  []cxAttr
	netAttrs   []cxNetworkAttr
	nodeByName map[string]int
}

// encodeOptions carries the presentation details that end up as network attributes.
type encodeOptions struct {
	Name        string
	Layout      string
	MainFeature string
	Features    *table.FeatureTable
}

func newNetwork(h *hierarchy.Hierarchy, opts encodeOptions) (*network, error) {
	n := &network{
		nodes:      []cxNode{},
		edges:      []cxEdge{},
		nodeAttrs:  []cxAttr{},
		edgeAttrs:  []cxAttr{},
		nodeByName: make(map[string]int),
	}

	for _, id := range append(h.Terms(), h.Genes()...) {
		nid := len(n.nodes)
		n.nodes = append(n.nodes, cxNode{ID: nid, Name: id})
		n.nodeByName[id] = nid

		kind, _ := h.Kind(id)
		n.nodeAttrs = append(n.nodeAttrs,
			cxAttr{PropertyOf: nid, Name: AttrNodeType, Value: kind.String()},
			cxAttr{PropertyOf: nid, Name: AttrSize, Value: h.Size(id), DataType: "integer"},
		)
	}

	for _, r := range h.Relations() {
		interaction := InteractionChildParent
		if r.Gene {
			interaction = InteractionGeneTerm
		}
		eid := len(n.edges)
		n.edges = append(n.edges, cxEdge{
			ID:          eid,
			Source:      n.nodeByName[r.Child],
			Target:      n.nodeByName[r.Parent],
			Interaction: interaction,
		})
		n.edgeAttrs = append(n.edgeAttrs, cxAttr{PropertyOf: eid, Name: AttrEdgeType, Value: interaction})
		if r.HasWeight {
			n.edgeAttrs = append(n.edgeAttrs, cxAttr{PropertyOf: eid, Name: AttrWeight, Value: r.Weight, DataType: "double"})
		}
	}

	if ft := opts.Features; ft != nil {
		feature := opts.MainFeature
		if feature == "" {
			feature = ft.Columns[2]
		}
		for i, fr := range ft.Rows {
			s, ok1 := n.nodeByName[fr.Gene1]
			t, ok2 := n.nodeByName[fr.Gene2]
			if !ok1 || !ok2 {
				return nil, fmt.Errorf("feature row %d references unknown gene", i+1)
			}
			eid := len(n.edges)
			n.edges = append(n.edges, cxEdge{ID: eid, Source: s, Target: t, Interaction: InteractionFeature})
			n.edgeAttrs = append(n.edgeAttrs,
				cxAttr{PropertyOf: eid, Name: AttrEdgeType, Value: InteractionFeature},
				cxAttr{PropertyOf: eid, Name: feature, Value: fr.HasEdge, DataType: "double"},
			)
		}
	}

	n.netAttrs = []cxNetworkAttr{
		{Name: "name", Value: opts.Name},
		{Name: "layout", Value: opts.Layout},
		{Name: "description", Value: fmt.Sprintf("Hierarchy of %d terms over %d genes", len(h.Terms()), len(h.Genes()))},
	}
	return n, nil
}

// MarshalJSON renders the network as a CX aspect list.
func (n *network) MarshalJSON() ([]byte, error) {
	meta := []cxMeta{
		{Name: "nodes", ElementCount: len(n.nodes), IDCounter: len(n.nodes), Version: "1.0", ConsistencyGroup: 1},
		{Name: "edges", ElementCount: len(n.edges), IDCounter: len(n.edges), Version: "1.0", ConsistencyGroup: 1},
		{Name: "nodeAttributes", ElementCount: len(n.nodeAttrs), Version: "1.0", ConsistencyGroup: 1},
		{Name: "edgeAttributes", ElementCount: len(n.edgeAttrs), Version: "1.0", ConsistencyGroup: 1},
		{Name: "networkAttributes", ElementCount: len(n.netAttrs), Version: "1.0", ConsistencyGroup: 1},
	}
	aspects := []map[string]any{
		{"numberVerification": []map[string]int64{{"longNumber": 281474976710655}}},
		{"metaData": meta},
		{"networkAttributes": n.netAttrs},
		{"nodes": n.nodes},
		{"edges": n.edges},
		{"nodeAttributes": n.nodeAttrs},
		{"edgeAttributes": n.edgeAttrs},
		{"status": []map[string]any{{"error": "", "success": true}}},
	}
	return json.Marshal(aspects)
}
