package vm

import "testing"

// TestVm_BlockingEquivalence checks that splitting the same input across
// two Search calls (as a streaming caller feeding successive buffers
// would) produces exactly the same committed matches as one call over
// the whole input — thread state, seen/live bookkeeping and pending
// candidates all need to survive a Search boundary untouched.
func TestVm_BlockingEquivalence(t *testing.T) {
	prog := plusProgram(99)

	whole := New(prog, DefaultConfig())
	wholeHitFn, wholeHits := recorder()
	whole.Search([]byte("aaa"), 0, wholeHitFn)
	whole.CloseOut(wholeHitFn)

	split := New(prog, DefaultConfig())
	splitHitFn, splitHits := recorder()
	split.Search([]byte("aa"), 0, splitHitFn)
	split.Search([]byte("a"), 2, splitHitFn)
	split.CloseOut(splitHitFn)

	if len(*wholeHits) != len(*splitHits) {
		t.Fatalf("hit count differs: whole=%+v split=%+v", *wholeHits, *splitHits)
	}
	for i := range *wholeHits {
		if (*wholeHits)[i] != (*splitHits)[i] {
			t.Fatalf("hit %d differs: whole=%+v split=%+v", i, (*wholeHits)[i], (*splitHits)[i])
		}
	}
}
