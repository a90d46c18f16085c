package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chainSDL = `
type A { b: B }
type B { c: C }
type C { d: D }
type D { name: String }
type E { name: String }
`

func TestDistances_Chain(t *testing.T) {
	m := Build(mustParse(t, chainSDL), BuildOptions{})

	dist := Distances(m, "A")
	assert.Equal(t, map[string]int{
		"A": 0,
		"B": 1,
		"C": 2,
		"D": 3,
		"E": Unreachable,
	}, dist)
}

func TestDistances_Undirected(t *testing.T) {
	m := Build(mustParse(t, chainSDL), BuildOptions{})

	// Edges point A->B->C->D but hops count both ways.
	dist := Distances(m, "C")
	assert.Equal(t, 2, dist["A"])
	assert.Equal(t, 1, dist["B"])
	assert.Equal(t, 0, dist["C"])
	assert.Equal(t, 1, dist["D"])
	assert.Equal(t, Unreachable, dist["E"])
}

func TestDistances_UnknownFocal(t *testing.T) {
	m := Build(mustParse(t, chainSDL), BuildOptions{})

	dist := Distances(m, "Nope")
	for id, d := range dist {
		assert.Equal(t, Unreachable, d, "node %s", id)
	}
	assert.Len(t, dist, 5)
}

func TestFilterByDepth_Neighborhood(t *testing.T) {
	m := Build(mustParse(t, chainSDL), BuildOptions{})
	dist := Distances(m, "A")

	near := FilterByDepth(m, dist, 1)
	assert.Equal(t, []string{"A", "B"}, near.Order())
	assert.Equal(t, []FieldEdge{
		{Source: "A", Target: "B", Label: "b"},
	}, near.Edges)
}

func TestFilterByDepth_FocalAlwaysSurvives(t *testing.T) {
	m := Build(mustParse(t, chainSDL), BuildOptions{})
	dist := Distances(m, "E")

	only := FilterByDepth(m, dist, 2)
	assert.Equal(t, []string{"E"}, only.Order())
	assert.Empty(t, only.Edges)
}

func TestFilterByDepth_SharesNodes(t *testing.T) {
	m := Build(mustParse(t, chainSDL), BuildOptions{})
	dist := Distances(m, "A")

	near := FilterByDepth(m, dist, 1)
	orig, ok := m.Node("A")
	require.True(t, ok)
	kept, ok := near.Node("A")
	require.True(t, ok)
	assert.Same(t, orig, kept)
}

func TestFilterByDepth_FullDepthKeepsComponent(t *testing.T) {
	m := Build(mustParse(t, chainSDL), BuildOptions{})
	dist := Distances(m, "A")

	all := FilterByDepth(m, dist, 10)
	assert.Equal(t, []string{"A", "B", "C", "D"}, all.Order())
	assert.False(t, all.HasNode("E"))
	assert.Equal(t, 3, all.EdgeCount())
}
