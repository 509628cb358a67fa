// Package codegen walks a compiler.Graph and emits the bytecode program.Vm
// executes: one instruction snippet per vertex, laid out so that
// single-successor chains fall straight through without an explicit jump.
package codegen

import (
	"github.com/coregx/bxgrep/compiler"
	"github.com/coregx/bxgrep/graph"
)

// discoverRank walks g from start with a BFS that pushes single-successor
// vertices to the FRONT of the frontier instead of the back: a vertex
// reached along a straight run of out-degree-1 edges gets discovered
// immediately after its predecessor, so its code can be laid out right
// after — letting the emitter skip the jump and simply fall through.
// Branchier vertices queue normally (back), deferring their subtrees.
func discoverRank(g *compiler.Graph, start graph.Vertex) []graph.Vertex {
	visited := map[graph.Vertex]bool{start: true}
	order := []graph.Vertex{start}
	deque := []graph.Vertex{start}

	for len(deque) > 0 {
		v := deque[0]
		deque = deque[1:]
		for _, s := range g.OutVertices(v) {
			if visited[s] {
				continue
			}
			visited[s] = true
			order = append(order, s)
			if g.OutDegree(s) == 1 {
				deque = append([]graph.Vertex{s}, deque...)
			} else {
				deque = append(deque, s)
			}
		}
	}
	return order
}
