package codegen

import (
	"github.com/coregx/bxgrep/compiler"
	"github.com/coregx/bxgrep/graph"
	"github.com/coregx/bxgrep/program"
)

// emitDispatch lays out v's transfer of control to its successors: a
// direct JUMP_TABLE when eligible, otherwise a FORK chain for every
// successor but the last, which either falls through (already next in
// rank order) or gets an explicit JUMP.
func emitDispatch(w *program.Writer, g *compiler.Graph, v graph.Vertex, succs []graph.Vertex, rankOf map[graph.Vertex]int, patches *[]patch) {
	if len(succs) == 0 {
		return
	}

	if jumpTableEligible(g, v, succs) {
		table := tableTargets(g, succs)
		tableAddr := w.JumpTable()
		for b := 0; b < 256; b++ {
			if table[b] == nil {
				w.PatchJumpSlot(tableAddr+uint32(2*b), uint16(program.DieOffset))
				continue
			}
			*patches = append(*patches, patch{
				operandAddr: tableAddr + uint32(2*b),
				target:      *table[b],
				kind:        patchJumpSlot,
			})
		}
		return
	}

	vRank := rankOf[v]
	for i, s := range succs {
		last := i == len(succs)-1
		if last && rankOf[s] == vRank+1 {
			continue // falls straight through into s's own snippet
		}
		if last {
			emitJump(w, s, patches)
			continue
		}
		emitFork(w, s, patches)
	}
}

// emitJump transfers control unconditionally to target via a 16-bit JUMP
// operand, patched once every vertex's address is known.
//
// TODO: programs whose target offset exceeds 16 bits need a LONG_FORK
// (32-bit operand) immediately followed by HALT on the spawning thread to
// simulate an unconditional far jump; not yet wired in since the depth
// bound keeps determinized graphs from growing this large in practice.
func emitJump(w *program.Writer, target graph.Vertex, patches *[]patch) {
	addr := w.Jump()
	*patches = append(*patches, patch{operandAddr: addr, target: target, kind: patchU16})
}

// emitFork spawns a thread at target while the current thread continues
// at the next instruction.
func emitFork(w *program.Writer, target graph.Vertex, patches *[]patch) {
	addr := w.Fork()
	*patches = append(*patches, patch{operandAddr: addr, target: target, kind: patchU16})
}
