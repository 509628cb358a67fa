package nfa

import (
	"github.com/coregx/bxgrep/encoding"
	"github.com/coregx/bxgrep/pattern"
)

// compileRepetition unrolls {min,max} copies of the body per the standard
// four-step construction: mandatory copies first, then either an
// unbounded plus-loop or a chain of optional tail copies, with the
// greedy/non-greedy flag controlling whether each "try again" edge is
// wired immediately (ahead of whatever continuation follows) or deferred
// until the whole pattern is flushed (behind it).
func (b *Builder) compileRepetition(n *pattern.Node, encs []encoding.Encoder, caseFold bool) (fragment, error) {
	body := n.Left
	min, max, greedy := n.Min, n.Max, n.Greedy

	current := emptyFragment()
	var last fragment
	haveLast := false
	for i := 0; i < min; i++ {
		g, err := b.compile(body, encs, caseFold)
		if err != nil {
			return fragment{}, err
		}
		current = b.concat(current, g)
		last = g
		haveLast = true
	}

	if max == pattern.Unbounded {
		if !haveLast {
			g, err := b.compile(body, encs, caseFold)
			if err != nil {
				return fragment{}, err
			}
			current = g
			current.skippable = true
			last = g
		}
		// The self-loop wraps only the final mandatory copy (or the sole
		// copy when min==0) — per spec.md §4.5 step 2, "for every u in
		// out, v in in of the final copy add u→v" — not the whole
		// unrolled fragment, whose in-list (for min>1) is the *first*
		// copy's entry, not the last copy's.
		for _, u := range last.out {
			for _, v := range last.in {
				b.addRepeatEdge(u, v, greedy, &current)
			}
			if !greedy {
				data := b.g.Label(u)
				data.LazyLoop = true
				b.g.SetLabel(u, data)
			}
		}
		return current, nil
	}

	// Bounded tail: (max-min) optional copies, each reachable directly
	// from wherever the chain stood before it (enter) and each also
	// leaving that prior point in the fragment's own out-list (skip).
	for i := 0; i < max-min; i++ {
		g, err := b.compile(body, encs, caseFold)
		if err != nil {
			return fragment{}, err
		}
		for _, u := range current.out {
			for _, v := range g.in {
				b.addRepeatEdge(u, v, greedy, &current)
			}
		}
		newOut := unionVertices(g.out, current.out)
		newIn := current.in
		if len(newIn) == 0 {
			newIn = g.in
		}
		current = fragment{
			in:        newIn,
			out:       newOut,
			skippable: current.skippable,
			pending:   append(current.pending, g.pending...),
		}
	}
	return current, nil
}
