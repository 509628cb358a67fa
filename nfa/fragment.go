package nfa

import "github.com/coregx/bxgrep/graph"

// backEdge is a deferred graph edge: recorded now, added to the graph
// only once flushed. Non-greedy repetition uses this to make sure a
// loop-back edge lands after every continuation edge a fragment will
// ever receive, so "stop repeating" keeps priority over "repeat again"
// at the shared exit vertex.
type backEdge struct {
	from, to graph.Vertex
}

// fragment is an in-progress piece of NFA under construction: inList is
// where control may enter, outList is where control exits once the
// fragment's predicates have matched, and skippable records whether the
// fragment as a whole can be traversed without consuming a byte.
type fragment struct {
	in, out   []graph.Vertex
	skippable bool
	pending   []backEdge
}

// emptyFragment is the concatenation identity: matches zero bytes,
// contributes no vertices of its own.
func emptyFragment() fragment {
	return fragment{skippable: true}
}

// unionVertices returns a ∪ b, preserving a's order then b's, skipping
// duplicates already present — edge order encodes alternation priority,
// so insertion order must never be disturbed by set operations.
func unionVertices(a, b []graph.Vertex) []graph.Vertex {
	out := make([]graph.Vertex, len(a), len(a)+len(b))
	copy(out, a)
	for _, v := range b {
		found := false
		for _, u := range out {
			if u == v {
				found = true
				break
			}
		}
		if !found {
			out = append(out, v)
		}
	}
	return out
}
