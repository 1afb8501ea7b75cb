package ndex

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/hiertask/internal/hierarchy"
	"github.com/vk/hiertask/internal/table"
)

func TestNewNetwork_EdgesPointChildToParent(t *testing.T) {
	h := buildHierarchy(t)
	n, err := newNetwork(h, encodeOptions{Name: "x", Layout: "bubble-collect", Features: h.Features()})
	require.NoError(t, err)

	names := make([]string, len(n.nodes))
	for i, node := range n.nodes {
		names[i] = node.Name
	}
	assert.Equal(t, []string{"T1", "Root", "g1", "g2"}, names, "terms first, then genes")

	first := n.edges[0]
	assert.Equal(t, "g1", n.nodes[first.Source].Name)
	assert.Equal(t, "T1", n.nodes[first.Target].Name)
	assert.Equal(t, InteractionGeneTerm, first.Interaction)

	third := n.edges[2]
	assert.Equal(t, "T1", n.nodes[third.Source].Name)
	assert.Equal(t, InteractionChildParent, third.Interaction)

	feature := n.edges[3]
	assert.Equal(t, InteractionFeature, feature.Interaction)

	var hasFeatureAttr bool
	for _, a := range n.edgeAttrs {
		if a.PropertyOf == feature.ID && a.Name == table.ColumnHasEdge {
			hasFeatureAttr = true
			assert.Equal(t, 1.0, a.Value)
		}
	}
	assert.True(t, hasFeatureAttr, "feature edge carries the has_edge column by default")
}

func TestNetwork_MarshalEmpty(t *testing.T) {
	empty, err := table.Parse([]byte("# nothing\n"))
	require.NoError(t, err)
	h, err := hierarchy.Build(empty, nil, hierarchy.DefaultColumns)
	require.NoError(t, err)

	n, err := newNetwork(h, encodeOptions{Name: "empty"})
	require.NoError(t, err)
	raw, err := json.Marshal(n)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `{"nodes":[]}`)
	assert.NotContains(t, string(raw), "null")
}
