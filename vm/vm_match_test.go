package vm

import (
	"testing"

	"github.com/coregx/bxgrep/bitset"
	"github.com/coregx/bxgrep/program"
)

type hit struct {
	start, end, userIndex uint64
}

func recorder() (HitCallback, *[]hit) {
	var hits []hit
	return func(start, end, userIndex uint64) {
		hits = append(hits, hit{start, end, userIndex})
	}, &hits
}

// literalProgram builds LIT b -> LABEL label -> FINISH: the smallest
// possible program, matching exactly one byte.
func literalProgram(b byte, label uint32, userIndex uint64) *program.Program {
	w := program.NewWriter()
	w.Lit(b)
	w.Label(label)
	w.Finish()
	return &program.Program{
		Code:             w.Bytes(),
		FirstByteSet:     bitset.FromRange(b, b),
		NumCheckedStates: 1,
		Patterns:         []program.PatternInfo{{UserIndex: userIndex}},
	}
}

func TestVm_BasicLiteralMatch(t *testing.T) {
	prog := literalProgram('a', 0, 7)
	v := New(prog, DefaultConfig())
	hitFn, hits := recorder()

	v.Search([]byte("xa"), 0, hitFn)
	v.CloseOut(hitFn)

	want := []hit{{1, 2, 7}}
	if len(*hits) != len(want) || (*hits)[0] != want[0] {
		t.Fatalf("got %+v, want %+v", *hits, want)
	}
}

func TestVm_AtMostOnePerLabelAcrossStarts(t *testing.T) {
	prog := literalProgram('a', 0, 1)
	v := New(prog, DefaultConfig())
	hitFn, hits := recorder()

	v.Search([]byte("aa"), 0, hitFn)
	v.CloseOut(hitFn)

	want := []hit{{0, 1, 1}, {1, 2, 1}}
	if len(*hits) != len(want) {
		t.Fatalf("got %+v, want %+v", *hits, want)
	}
	for i, w := range want {
		if (*hits)[i] != w {
			t.Fatalf("hit %d: got %+v, want %+v", i, (*hits)[i], w)
		}
	}
}

// alternationProgram builds a FORK between a one-byte arm and a two-byte
// arm, both completing the same label — grounding for leftmost-longest:
// the shorter arm dies first and is recorded live, then the longer arm's
// later death must extend rather than be dropped.
func alternationProgram() *program.Program {
	w := program.NewWriter()
	forkAddr := w.Fork() // -> branch B

	// branch A: one byte
	w.Lit('a')
	w.Label(0)
	w.Finish()

	branchB := w.Here()
	w.PatchU16(forkAddr, uint16(branchB))

	// branch B: two bytes, same label
	w.Lit('a')
	secondLitAddr := w.Here()
	w.Lit('a')
	w.Label(0)
	w.Finish()

	return &program.Program{
		Code:             w.Bytes(),
		FirstByteSet:     bitset.FromRange('a', 'a'),
		NumCheckedStates: 1,
		Patterns:         []program.PatternInfo{{UserIndex: 55}},
		VertexLabels: map[uint32][]uint32{
			branchB:       {0},
			secondLitAddr: {0},
		},
	}
}

func TestVm_LeftmostLongestExtension(t *testing.T) {
	prog := alternationProgram()
	v := New(prog, DefaultConfig())
	hitFn, hits := recorder()

	v.Search([]byte("aa"), 0, hitFn)
	v.CloseOut(hitFn)

	want := hit{0, 2, 55}
	if len(*hits) != 1 || (*hits)[0] != want {
		t.Fatalf("got %+v, want exactly [%+v]", *hits, want)
	}
}

// twoPatternProgram forks at the very start into two independent
// single-byte patterns with distinct labels, each committing on its own.
func twoPatternProgram() *program.Program {
	w := program.NewWriter()
	forkAddr := w.Fork()

	w.Lit('a')
	w.Label(0)
	w.Finish()

	branchB := w.Here()
	w.PatchU16(forkAddr, uint16(branchB))

	w.Lit('b')
	w.Label(1)
	w.Finish()

	fbs := bitset.FromRange('a', 'a').Union(bitset.FromRange('b', 'b'))

	return &program.Program{
		Code:             w.Bytes(),
		FirstByteSet:     fbs,
		NumCheckedStates: 1,
		Patterns: []program.PatternInfo{
			{UserIndex: 10},
			{UserIndex: 20},
		},
	}
}

func TestVm_MultiLabelSimultaneousMatch(t *testing.T) {
	prog := twoPatternProgram()
	v := New(prog, DefaultConfig())
	hitFn, hits := recorder()

	v.Search([]byte("ab"), 0, hitFn)
	v.CloseOut(hitFn)

	want := []hit{{0, 1, 10}, {1, 2, 20}}
	if len(*hits) != len(want) {
		t.Fatalf("got %+v, want %+v", *hits, want)
	}
	for i, w := range want {
		if (*hits)[i] != w {
			t.Fatalf("hit %d: got %+v, want %+v", i, (*hits)[i], w)
		}
	}
}
