package codegen

import (
	"github.com/coregx/bxgrep/compiler"
	"github.com/coregx/bxgrep/graph"
)

// jumpTableEligible reports whether v's successors can be dispatched
// through a direct 257-slot JUMP_TABLE: more than three successors (below
// that a short FORK/JUMP chain is cheaper), v itself not completing a
// match (a labeled vertex needs its LABEL/MATCH sequence ahead of
// dispatch, which a bare table can't carry), and every successor's
// accepted bytes pairwise disjoint from every other's (so at most one
// successor ever claims a given byte — pivotStates' "max|t[b]|<=1").
func jumpTableEligible(g *compiler.Graph, v graph.Vertex, succs []graph.Vertex) bool {
	if len(succs) <= 3 || len(g.Label(v).Labels) != 0 {
		return false
	}
	var seen [256]bool
	for _, s := range succs {
		for _, b := range g.Label(s).Transition.AcceptedBytes().Bytes() {
			if seen[b] {
				return false
			}
			seen[b] = true
		}
	}
	return true
}

// tableTargets returns, for each of the 256 byte values, the successor
// that claims it (nil if none — the VM dies on that slot).
func tableTargets(g *compiler.Graph, succs []graph.Vertex) [256]*graph.Vertex {
	var table [256]*graph.Vertex
	for i := range succs {
		s := succs[i]
		for _, b := range g.Label(s).Transition.AcceptedBytes().Bytes() {
			table[b] = &succs[i]
		}
	}
	return table
}
