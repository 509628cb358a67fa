package vm

import "github.com/coregx/bxgrep/program"

// thread is one logical execution of a compiled program: a program counter
// plus the bookkeeping needed to eventually attribute and commit a match.
// label stays program.UnsetLabel until the thread executes a LABEL
// instruction, after which it never reverts — a thread that has diverged
// into one pattern's match path never rejoins another's.
type thread struct {
	pc        uint32
	start     uint64
	label     uint32
	matchedAt uint64
	hasMatch  bool
}

func newThread(pc uint32, start uint64) thread {
	return thread{pc: pc, start: start, label: program.UnsetLabel}
}
