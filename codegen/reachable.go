package codegen

import (
	"sort"

	"github.com/coregx/bxgrep/compiler"
	"github.com/coregx/bxgrep/graph"
)

// reachableLabels computes, for every vertex, the set of pattern labels a
// thread resting there could still go on to complete: its own labels plus
// everything reachable from any successor. A vertex's set only ever
// grows, so this is a backward fixed point over the full vertex set
// rather than a single reverse-topological pass — needed because a
// repetition's back edge can make a label-bearing vertex depend on one
// that would otherwise be visited "before" it in any acyclic ordering.
func reachableLabels(g *compiler.Graph, order []graph.Vertex) map[graph.Vertex][]uint32 {
	sets := make(map[graph.Vertex]map[uint32]bool, len(order))
	for _, v := range order {
		s := map[uint32]bool{}
		for _, lbl := range g.Label(v).Labels {
			s[lbl] = true
		}
		sets[v] = s
	}

	for pass := 0; pass < len(order)+1; pass++ {
		changed := false
		for _, v := range order {
			s := sets[v]
			for _, succ := range g.OutVertices(v) {
				for lbl := range sets[succ] {
					if !s[lbl] {
						s[lbl] = true
						changed = true
					}
				}
			}
		}
		if !changed {
			break
		}
	}

	reach := make(map[graph.Vertex][]uint32, len(order))
	for _, v := range order {
		labels := make([]uint32, 0, len(sets[v]))
		for lbl := range sets[v] {
			labels = append(labels, lbl)
		}
		sort.Slice(labels, func(i, j int) bool { return labels[i] < labels[j] })
		reach[v] = labels
	}
	return reach
}
