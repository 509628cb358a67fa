package compiler

import (
	"github.com/coregx/bxgrep/graph"
	"github.com/coregx/bxgrep/nfa"
	"github.com/coregx/bxgrep/program"
)

// unsetLabel mirrors nfa.UnsetLabel without importing it as a value
// (program.UnsetLabel is the single source of truth both packages defer to).
const unsetLabel = program.UnsetLabel

// labelGuardStates propagates per-pattern ownership backward through the
// NFA: a vertex's computed label is the pattern it (and every path
// forward from it to a match) belongs to, or unsetLabel if more than one
// pattern's matches are reachable from it. It is a backward fixed point —
// match vertices seed their own label, then each non-match vertex adopts
// the single label shared by all of its successors, propagating inward
// until nothing changes. Ties (a vertex whose successors disagree) keep
// the smaller label, a determinism convention rather than a semantic
// claim of unique ownership; Compiler only relies on this for the
// CHECK_HALT accounting in numCheckedStates, not for match correctness —
// subset labels used for actual hit reporting are read directly off each
// subset's constituent match vertices in determinize, independent of this
// pass.
func labelGuardStates(src *nfa.Graph) map[graph.Vertex]uint32 {
	labels := make(map[graph.Vertex]uint32, src.NumVertices())
	for _, v := range src.Vertices() {
		data := src.Label(v)
		if data.IsMatch {
			labels[v] = data.Label
		} else {
			labels[v] = unsetLabel
		}
	}

	for pass := 0; pass < src.NumVertices()+1; pass++ {
		changed := false
		for _, v := range src.Vertices() {
			if src.Label(v).IsMatch {
				continue // seeded, never revised
			}
			successors := src.OutVertices(v)
			if len(successors) == 0 {
				continue
			}
			candidate := unsetLabel
			for _, s := range successors {
				sl := labels[s]
				if sl == unsetLabel {
					continue
				}
				if candidate == unsetLabel || sl < candidate {
					candidate = sl
				}
			}
			if labels[v] != candidate {
				labels[v] = candidate
				changed = true
			}
		}
		if !changed {
			break
		}
	}
	return labels
}
