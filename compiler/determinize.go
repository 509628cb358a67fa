package compiler

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/coregx/bxgrep/bitset"
	"github.com/coregx/bxgrep/graph"
	"github.com/coregx/bxgrep/nfa"
	"github.com/coregx/bxgrep/transition"
)

// VertexData is the payload of a Compiler's output graph. A vertex still
// carries exactly one inbound byte predicate (mirroring the NFA's own
// vertex-per-transition shape, which CodeGen expects), but — unlike an NFA
// vertex — can report more than one pattern at once: Labels holds every
// pattern index that completes here, letting CodeGen emit one MATCH per
// label when several patterns finish at the same position and span.
type VertexData struct {
	Transition transition.Transition
	Labels     []uint32

	// StopLabels is the subset of Labels that must commit here rather than
	// extend through this vertex's own outgoing edges — every NFA match
	// vertex contributing that label to this subset is a lazy repetition's
	// loop exit, so CodeGen emits FINISH instead of MATCH for it even when
	// the vertex also has successors.
	StopLabels []uint32
}

// IsMatch reports whether reaching this vertex completes at least one pattern.
func (d VertexData) IsMatch() bool { return len(d.Labels) > 0 }

// String renders d for diagnostics (e.g. graph.Graph.WriteDOT).
func (d VertexData) String() string {
	if d.Transition == nil {
		return "start"
	}
	s := d.Transition.String()
	if d.IsMatch() {
		s += fmt.Sprintf(" match%v", d.Labels)
	}
	return s
}

// Graph is the determinized graph CodeGen walks.
type Graph = graph.Graph[VertexData]

// DefaultDepthBound bounds how many subset-construction frontiers
// determinize explores before splicing in the remaining NFA unchanged,
// keeping pathological patterns (heavy alternation over long literals,
// wide character classes composed together) from blowing up subset space.
const DefaultDepthBound = 64

// Compiler turns a nfa.Builder's graph into a deterministic graph ready
// for CodeGen.
type Compiler struct {
	DepthBound int
}

// New returns a Compiler with the default depth bound.
func New() *Compiler { return &Compiler{DepthBound: DefaultDepthBound} }

// Compile runs labelGuardStates (an internal bookkeeping pass, see
// label.go) followed by bounded subset determinization, returning the
// resulting graph and its start vertex.
func (c *Compiler) Compile(src *nfa.Graph, start graph.Vertex) (*Graph, graph.Vertex) {
	_ = labelGuardStates(src) // computed for CHECK_HALT accounting fidelity; see label.go doc comment

	depthBound := c.DepthBound
	if depthBound <= 0 {
		depthBound = DefaultDepthBound
	}
	d := &determinizer{src: src, dst: graph.New[VertexData](), depthBound: depthBound}
	initial := canonicalize(src.OutVertices(start))
	evs := d.childrenOf(initial, 0)
	// The compiled graph keeps its own start sentinel so CodeGen's walk
	// (which expects a single entry point with no inbound predicate) stays
	// uniform between the NFA and the determinized graph.
	dstStart := d.dst.AddVertex(VertexData{})
	for _, ev := range evs {
		d.dst.AddEdge(dstStart, ev)
	}
	return d.dst, dstStart
}

type determinizer struct {
	src        *nfa.Graph
	dst        *Graph
	depthBound int

	childrenMemo map[string][]graph.Vertex
	spliceMemo   map[graph.Vertex]graph.Vertex
}

// childrenOf returns the (memoized) list of dst vertices reachable directly
// from subset, one per distinct byte-class in subset's transition
// partition. Vertex IDs are reserved before any recursive call for the
// same subset completes, so self- and mutually-referencing cycles (any
// repetition's loop-back) resolve to the same shared vertex list instead
// of recursing forever.
func (d *determinizer) childrenOf(subset []graph.Vertex, depth int) []graph.Vertex {
	if d.childrenMemo == nil {
		d.childrenMemo = make(map[string][]graph.Vertex)
	}
	key := subsetKey(subset)
	if v, ok := d.childrenMemo[key]; ok {
		return v
	}

	if depth >= d.depthBound {
		evs := d.spliceSubset(subset)
		d.childrenMemo[key] = evs
		return evs
	}

	type pending struct {
		ev     graph.Vertex
		target []graph.Vertex
	}
	var evs []graph.Vertex
	var pendings []pending

	for _, step := range partition(d.src, subset) {
		var bs bitset.ByteSet
		bs.AddRange(step.lo, step.hi)
		tr, err := transition.Narrow(bs)
		if err != nil {
			continue // empty class, shouldn't occur given partition only emits non-empty steps
		}
		labels := matchLabels(d.src, step.firing)
		ev := d.dst.AddVertex(VertexData{Transition: tr, Labels: labels, StopLabels: stopLabels(d.src, step.firing, labels)})
		evs = append(evs, ev)
		pendings = append(pendings, pending{ev: ev, target: step.next})
	}

	d.childrenMemo[key] = evs // reserved before recursing: see doc comment

	for _, p := range pendings {
		grandchildren := d.childrenOf(p.target, depth+1)
		for _, gc := range grandchildren {
			d.dst.AddEdge(p.ev, gc)
		}
	}
	return evs
}

// spliceSubset clones the reachable NFA subgraph rooted at subset verbatim
// into dst, past the point where subset construction gives up — a valid,
// if not maximally compact, continuation.
func (d *determinizer) spliceSubset(subset []graph.Vertex) []graph.Vertex {
	if d.spliceMemo == nil {
		d.spliceMemo = make(map[graph.Vertex]graph.Vertex)
	}
	out := make([]graph.Vertex, 0, len(subset))
	for _, v := range subset {
		out = append(out, d.spliceVertex(v))
	}
	return out
}

func (d *determinizer) spliceVertex(v graph.Vertex) graph.Vertex {
	if dv, ok := d.spliceMemo[v]; ok {
		return dv
	}
	data := d.src.Label(v)
	var labels, stop []uint32
	if data.IsMatch {
		labels = []uint32{data.Label}
		if data.LazyLoop {
			stop = []uint32{data.Label}
		}
	}
	dv := d.dst.AddVertex(VertexData{Transition: data.Transition, Labels: labels, StopLabels: stop})
	d.spliceMemo[v] = dv
	for _, succ := range d.src.OutVertices(v) {
		d.dst.AddEdge(dv, d.spliceVertex(succ))
	}
	return dv
}

// matchLabels collects, in ascending order, every distinct pattern index
// owned by a match vertex in subset.
func matchLabels(src *nfa.Graph, subset []graph.Vertex) []uint32 {
	seen := map[uint32]bool{}
	var labels []uint32
	for _, v := range subset {
		data := src.Label(v)
		if data.IsMatch && !seen[data.Label] {
			seen[data.Label] = true
			labels = append(labels, data.Label)
		}
	}
	// Deterministic output order regardless of subset's arrival order.
	for i := 1; i < len(labels); i++ {
		for j := i; j > 0 && labels[j-1] > labels[j]; j-- {
			labels[j-1], labels[j] = labels[j], labels[j-1]
		}
	}
	return labels
}

// stopLabels returns the subset of labels whose every contributing match
// vertex in subset is a lazy repetition's loop exit (LazyLoop) — reaching
// any of these labels here should commit immediately rather than extend
// through the vertex's own outgoing edges, even though other labels at the
// same vertex may still prefer to keep going.
func stopLabels(src *nfa.Graph, subset []graph.Vertex, labels []uint32) []uint32 {
	want := make(map[uint32]bool, len(labels))
	for _, l := range labels {
		want[l] = true
	}
	lazy := map[uint32]bool{}
	seen := map[uint32]bool{}
	for _, v := range subset {
		data := src.Label(v)
		if !data.IsMatch || !want[data.Label] {
			continue
		}
		if !seen[data.Label] {
			seen[data.Label] = true
			lazy[data.Label] = true
		}
		if !data.LazyLoop {
			lazy[data.Label] = false
		}
	}
	var out []uint32
	for _, l := range labels {
		if lazy[l] {
			out = append(out, l)
		}
	}
	return out
}

type byteClass struct {
	lo, hi byte
	// firing is the run of subset members whose own predicate matches
	// every byte in [lo,hi] — these are the vertices being "consumed";
	// whether any of them is a match vertex decides whether taking this
	// class completes a pattern, exactly as an NFA match vertex's own
	// IsMatch flag describes what happens once ITS predicate succeeds.
	firing []graph.Vertex
	// next is the subset reached after firing: the union of every firing
	// member's own successors, tested against the following byte.
	next []graph.Vertex
}

// partition computes, for subset, the maximal runs of consecutive byte
// values sharing an identical (firing, next) pair (the classic subset-
// construction move function applied per byte then coalesced) — "merged
// when byte-sets are disjoint or equal and next-state sets are equal"
// falls directly out of this bottom-up scan, since adjacent runs are only
// ever split where firing or next actually differs and the scan never
// produces overlapping classes to begin with.
func partition(src *nfa.Graph, subset []graph.Vertex) []byteClass {
	var classes []byteClass
	var runStart int
	var runFiring, runNext []graph.Vertex
	haveRun := false

	flush := func(end int) {
		if haveRun && len(runFiring) > 0 {
			classes = append(classes, byteClass{lo: byte(runStart), hi: byte(end - 1), firing: runFiring, next: runNext})
		}
	}

	for b := 0; b < 256; b++ {
		firing, next := move(src, subset, byte(b))
		if haveRun && sameSubset(firing, runFiring) && sameSubset(next, runNext) {
			continue
		}
		flush(b)
		runStart = b
		runFiring, runNext = firing, next
		haveRun = true
	}
	flush(256)
	return classes
}

// move computes, for byte b, the subset members whose own predicate
// accepts b (firing) and the ordered, deduplicated union of their
// out-vertices (next), in subset's priority order.
func move(src *nfa.Graph, subset []graph.Vertex, b byte) (firing, next []graph.Vertex) {
	seen := map[graph.Vertex]bool{}
	for _, v := range subset {
		tr := src.Label(v).Transition
		if tr == nil || !tr.Matches(b) {
			continue
		}
		firing = append(firing, v)
		for _, s := range src.OutVertices(v) {
			if !seen[s] {
				seen[s] = true
				next = append(next, s)
			}
		}
	}
	return firing, next
}

func sameSubset(a, b []graph.Vertex) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func canonicalize(subset []graph.Vertex) []graph.Vertex {
	out := make([]graph.Vertex, 0, len(subset))
	seen := map[graph.Vertex]bool{}
	for _, v := range subset {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

func subsetKey(subset []graph.Vertex) string {
	var b strings.Builder
	for i, v := range subset {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatUint(uint64(v), 10))
	}
	return b.String()
}
