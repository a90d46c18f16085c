package graph

import "math"

// Unreachable marks nodes with no path to the focal node.
const Unreachable = math.MaxInt32

// Distances computes hop counts from focalID to every node over the model's
// edges, ignoring direction. Every node appears in the result; nodes in other
// components carry Unreachable. An unknown focalID yields an all-Unreachable
// map.
func Distances(m *Model, focalID string) map[string]int {
	dist := make(map[string]int, len(m.Nodes))
	for id := range m.Nodes {
		dist[id] = Unreachable
	}
	if !m.HasNode(focalID) {
		return dist
	}

	adj := make(map[string][]string, len(m.Nodes))
	for _, e := range m.Edges {
		adj[e.Source] = append(adj[e.Source], e.Target)
		adj[e.Target] = append(adj[e.Target], e.Source)
	}

	dist[focalID] = 0
	queue := []string{focalID}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		next := dist[id] + 1
		for _, nb := range adj[id] {
			if dist[nb] <= next {
				continue
			}
			dist[nb] = next
			queue = append(queue, nb)
		}
	}
	return dist
}

// FilterByDepth returns a model restricted to nodes within maxDepth hops of
// the focal node, per the dist map from Distances. The focal node itself sits
// at distance zero so it always survives, even fully disconnected. Edges are
// kept only when both endpoints survive. Nodes are shared with the input
// model, not copied.
func FilterByDepth(m *Model, dist map[string]int, maxDepth int) *Model {
	out := NewModel()
	for _, id := range m.order {
		d, ok := dist[id]
		if !ok || d > maxDepth {
			continue
		}
		out.AddNode(m.Nodes[id])
	}
	for _, e := range m.Edges {
		if out.HasNode(e.Source) && out.HasNode(e.Target) {
			out.Edges = append(out.Edges, e)
		}
	}
	return out
}
