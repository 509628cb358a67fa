// Package vm executes a compiled program.Program against a byte stream,
// block by block, reporting every leftmost-longest, non-overlapping match
// through a HitCallback.
//
// The execution model is a direct generalization of a Pike-VM thread-queue
// simulation (queue/nextQueue swap, sparse-set dedup, epsilon-closure via a
// dispatch switch) to interpret bytecode instructions instead of walking an
// NFA graph directly: every byte position runs the active thread list
// through execute, which steps non-consuming instructions (LABEL, MATCH,
// CHECK_HALT, FORK, JUMP, JUMP_TABLE) until a consuming one is reached.
package vm

import (
	"github.com/coregx/bxgrep/bitset"
	"github.com/coregx/bxgrep/internal/simdscan"
	"github.com/coregx/bxgrep/internal/sparse"
	"github.com/coregx/bxgrep/prefilter"
	"github.com/coregx/bxgrep/program"
)

// HitCallback receives one committed match: the absolute start and end
// byte offsets and the userIndex of the pattern that matched.
type HitCallback func(start, end, userIndex uint64)

// Vm holds one search's mutable state: thread lists, dedup sets, and
// pending-match bookkeeping. A Vm is exclusively owned by one caller at a
// time; the Program it executes is immutable and may be shared by any
// number of Vms running concurrently.
type Vm struct {
	prog *program.Program
	cfg  Config

	active []thread
	next   []thread

	seen *sparse.SparseSet // CHECK_HALT dedup, keyed by check index
	live *sparse.SparseSet // labels with a pending, uncommitted match

	matchStarts []uint64 // indexed by label: start offset of the pending match
	matchEnds   []uint64 // indexed by label: best (longest) end offset so far
	pending     []bool   // scratch, reset every frame: label still has a surviving thread
	lastEnd     []uint64 // indexed by label: end offset of the most recently committed match

	prefilter *prefilter.Prefilter // optional fast-skip accelerator, never authoritative

	offset uint64
}

// SetPrefilter installs pf as the fast-skip strategy Search uses whenever
// no thread is currently active, in place of the plain FirstByteSet scan.
// pf is purely an acceleration — passing nil reverts to the FirstByteSet
// scan, and either way the Vm alone decides what counts as a match.
func (v *Vm) SetPrefilter(pf *prefilter.Prefilter) {
	v.prefilter = pf
}

// New returns a Vm ready to execute prog.
func New(prog *program.Program, cfg Config) *Vm {
	numLabels := uint32(len(prog.Patterns))
	v := &Vm{
		prog:        prog,
		cfg:         cfg,
		active:      make([]thread, 0, cfg.ThreadCapacity),
		next:        make([]thread, 0, cfg.ThreadCapacity),
		seen:        sparse.NewSparseSet(maxUint32(prog.NumCheckedStates, 1)),
		live:        sparse.NewSparseSet(maxUint32(numLabels, 1)),
		matchStarts: make([]uint64, numLabels),
		matchEnds:   make([]uint64, numLabels),
		pending:     make([]bool, numLabels),
		lastEnd:     make([]uint64, numLabels),
	}
	return v
}

func maxUint32(a, b uint32) uint32 {
	if a > b {
		return a
	}
	return b
}

// Reset clears all thread lists and sparse sets, discarding any in-flight
// search state. The next search begins as if the Vm were freshly created.
func (v *Vm) Reset() {
	v.active = v.active[:0]
	v.next = v.next[:0]
	v.seen.Clear()
	v.live.Clear()
	for i := range v.matchStarts {
		v.matchStarts[i] = 0
		v.matchEnds[i] = 0
		v.pending[i] = false
		v.lastEnd[i] = 0
	}
	v.offset = 0
}

// Search scans block, treating its first byte as absolute offset
// startOffset, injecting a fresh start thread at every position (the
// unanchored ".*?" prefix) and fast-skipping ahead via FirstByteSet
// whenever no thread currently survives. It returns whether any thread —
// an in-progress continuation or an uncommitted pending match — remains
// alive at block end; the caller should feed the next block (or call
// CloseOut at true end of input) to preserve exact blocking-independent
// semantics.
func (v *Vm) Search(block []byte, startOffset uint64, hit HitCallback) bool {
	rel := uint64(0)
	n := uint64(len(block))

	for rel < n {
		if len(v.active) == 0 {
			next, found := v.nextCandidate(block, rel)
			if !found {
				break
			}
			rel = next
		}
		v.runFrame(block[rel], startOffset+rel, hit)
		rel++
	}

	v.offset = startOffset + rel
	return len(v.active) > 0 || !v.live.IsEmpty()
}

// StartsWith runs only the initial closure anchored at startOffset: no
// fast-skip, and no new start thread is injected at any position beyond
// startOffset. Any match is reported with its real (anchored) start offset.
func (v *Vm) StartsWith(block []byte, startOffset uint64, hit HitCallback) {
	v.active = append(v.active, newThread(0, startOffset))

	rel := uint64(0)
	n := uint64(len(block))
	for rel < n && len(v.active) > 0 {
		v.runFrameNoSeed(block[rel], startOffset+rel, hit)
		rel++
	}
	v.offset = startOffset + rel
}

// CloseOut commits any still-pending matches that survive end of input:
// once the stream is known to have ended, nothing can extend them further,
// so every thread still active (carrying its own in-flight match state) is
// killed first, feeding die's usual leftmost-longest bookkeeping, and
// everything left pending in live is then unconditionally emitted.
func (v *Vm) CloseOut(hit HitCallback) {
	for _, t := range v.active {
		v.die(t)
	}
	v.active = v.active[:0]

	var labels []uint32
	v.live.Iter(func(label uint32) { labels = append(labels, label) })
	for _, label := range labels {
		v.live.Remove(label)
		v.emit(label, hit)
	}
}

// runFrame processes one byte position for Search: seed a fresh start
// thread at the end of the priority order (so already-running, earlier-
// start threads win any CHECK_HALT collision against it), then run every
// active thread's execute step.
func (v *Vm) runFrame(b byte, offset uint64, hit HitCallback) {
	v.active = append(v.active, newThread(0, offset))
	v.runFrameNoSeed(b, offset, hit)
}

// runFrameNoSeed runs the current v.active list against b without adding a
// new start thread — used by StartsWith, and internally by runFrame once
// seeding is done.
func (v *Vm) runFrameNoSeed(b byte, offset uint64, hit HitCallback) {
	v.seen.Clear()
	for i := range v.pending {
		v.pending[i] = false
	}

	v.next = v.next[:0]
	for _, t := range v.active {
		v.execute(t, b, offset)
	}
	v.active, v.next = v.next, v.active[:0]

	v.reconcileLive(hit)
}

// nextCandidate returns the next relative offset at or after from worth
// seeding a fresh start thread at, preferring the installed prefilter (a
// tighter, multi-literal-aware skip) and falling back to a plain
// FirstByteSet scan when none is installed.
func (v *Vm) nextCandidate(block []byte, from uint64) (uint64, bool) {
	if v.prefilter != nil {
		m, ok := v.prefilter.Find(block, int(from))
		if !ok {
			return 0, false
		}
		return uint64(m.Start), true
	}

	pos := scanFirstByte(block, from, v.prog.FirstByteSet)
	if pos >= uint64(len(block)) {
		return 0, false
	}
	return pos, true
}

// scanFirstByte returns the first offset at or after from where block
// contains a byte in set, or len(block) if none remains. The scan itself
// is delegated to simdscan, which takes the singleton/pair fast paths
// whenever set is small enough to qualify.
func scanFirstByte(block []byte, from uint64, set bitset.ByteSet) uint64 {
	if from >= uint64(len(block)) {
		return uint64(len(block))
	}
	idx := simdscan.ScanSet(block[from:], set)
	if idx < 0 {
		return uint64(len(block))
	}
	return from + uint64(idx)
}
