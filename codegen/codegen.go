package codegen

import (
	"sort"

	"github.com/coregx/bxgrep/bitset"
	"github.com/coregx/bxgrep/compiler"
	"github.com/coregx/bxgrep/graph"
	"github.com/coregx/bxgrep/internal/conv"
	"github.com/coregx/bxgrep/program"
)

// patchKind identifies how a deferred operand should be resolved once
// every vertex's final address is known.
type patchKind int

const (
	patchU16 patchKind = iota
	patchU32
	patchJumpSlot
)

type patch struct {
	operandAddr uint32
	target      graph.Vertex
	kind        patchKind
}

// Generate walks g (as produced by package compiler) starting at start and
// returns the runnable program.Program. patterns is copied verbatim into
// the result's pattern table, in the same compile-order index the
// compiler used for vertex labels.
func Generate(g *compiler.Graph, start graph.Vertex, patterns []program.PatternInfo) *program.Program {
	order := discoverRank(g, start)
	rankOf := make(map[graph.Vertex]int, len(order))
	for i, v := range order {
		rankOf[v] = i
	}
	reach := reachableLabels(g, order)

	// numCheckedStates accounts for index 0, reserved; every vertex with
	// more than one predecessor (threads can converge on it within a
	// single frame) gets its own CHECK_HALT index from 1 up, so a second
	// thread reaching it this frame dies instead of duplicating work.
	checkIndex := map[graph.Vertex]uint16{}
	var nextCheck uint16 = 1
	for _, v := range order {
		if v == start {
			continue
		}
		if g.InDegree(v) > 1 {
			checkIndex[v] = nextCheck
			nextCheck++
		}
	}

	w := program.NewWriter()
	addr := make(map[graph.Vertex]uint32, len(order))
	var patches []patch

	for _, v := range order {
		addr[v] = w.Here()
		data := g.Label(v)

		if v != start {
			if _, err := data.Transition.Lower(w); err != nil {
				// Every vertex reaching codegen was narrowed successfully
				// upstream; a failure here means the graph itself is
				// malformed, not a recoverable runtime condition.
				panic("bxgrep/codegen: " + err.Error())
			}
			if idx, ok := checkIndex[v]; ok {
				w.CheckHalt(idx)
			}
		}

		succs := g.OutVertices(v)
		labels := append([]uint32{}, data.Labels...)
		sort.Slice(labels, func(i, j int) bool { return labels[i] < labels[j] })

		if len(labels) > 0 {
			stop := make(map[uint32]bool, len(data.StopLabels))
			for _, l := range data.StopLabels {
				stop[l] = true
			}
			emitMatches(w, labels, stop, len(succs) > 0)
		}

		emitDispatch(w, g, v, succs, rankOf, &patches)
	}

	for _, p := range patches {
		target, ok := addr[p.target]
		if !ok {
			continue
		}
		switch p.kind {
		case patchU16:
			w.PatchU16(p.operandAddr, conv.Uint32ToUint16(target))
		case patchU32:
			w.PatchU32(p.operandAddr, target)
		case patchJumpSlot:
			w.PatchJumpSlot(p.operandAddr, conv.Uint32ToUint16(target))
		}
	}

	var firstByteSet bitset.ByteSet
	for _, s := range g.OutVertices(start) {
		firstByteSet = firstByteSet.Union(g.Label(s).Transition.AcceptedBytes())
	}

	// vertexLabels lets the VM tell, for a thread carried to any given
	// address, which labels it could still go on to complete — including
	// labels it hasn't tagged itself with yet via LABEL.
	vertexLabels := make(map[uint32][]uint32, len(order))
	for _, v := range order {
		if labels := reach[v]; len(labels) > 0 {
			vertexLabels[addr[v]] = labels
		}
	}

	return &program.Program{
		Code:             w.Bytes(),
		FirstByteSet:     firstByteSet,
		NumCheckedStates: uint32(nextCheck),
		Patterns:         patterns,
		VertexLabels:     vertexLabels,
	}
}

// emitMatches tags the executing thread with each label completing at this
// vertex and records a pending match — one LABEL+MATCH(or FINISH) pair per
// label, since a single thread carries only one label at a time. All but
// the last pair are reached by FORKing a copy off the main thread; the
// main thread itself runs the first pair inline, and every pair but the
// last then JUMPs to the shared continuation immediately following the
// last pair, where dispatch to successors (or nothing, for FINISH) begins.
//
// A label in stop gets FINISH even when hasMore is true: it is a lazy
// repetition's loop exit, and must commit the moment it's reached rather
// than extend through the vertex's own self-loop.
func emitMatches(w *program.Writer, labels []uint32, stop map[uint32]bool, hasMore bool) {
	n := len(labels)
	forkAddrs := make([]uint32, n-1)
	for i := range forkAddrs {
		forkAddrs[i] = w.Fork()
	}

	copyAddrs := make([]uint32, n)
	var jumpAddrs []uint32
	for i, lbl := range labels {
		copyAddrs[i] = w.Here()
		w.Label(lbl)
		if hasMore && !stop[lbl] {
			w.Match()
		} else {
			w.Finish()
		}
		if i < n-1 {
			jumpAddrs = append(jumpAddrs, w.Jump())
		}
	}

	for i, fa := range forkAddrs {
		w.PatchU16(fa, conv.Uint32ToUint16(copyAddrs[i+1]))
	}
	cont := conv.Uint32ToUint16(w.Here())
	for _, j := range jumpAddrs {
		w.PatchU16(j, cont)
	}
}
