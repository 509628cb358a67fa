package vm

import "github.com/coregx/bxgrep/program"

// execute runs t starting at its current pc, with byte b available for at
// most one consuming instruction this frame (exactly as a Pike-VM's step
// plus epsilon-closure are fused into one call): it walks CHECK_HALT,
// LABEL, MATCH, FORK/JUMP and dispatch freely, and the first LIT/EITHER/
// RANGE/BIT_VECTOR/JUMP_TABLE(_RANGE) it meets consumes b. Any further
// consuming instruction reached afterward in the same call belongs to a
// successor vertex waiting on the *next* byte, so it is carried rather
// than tested again.
//
// A FORK processes its sibling immediately, depth-first, against the same
// byte and the same consumed state, before t's own path continues — this
// reproduces "forks push behind the current thread, preserving left-first
// alternation priority" without a second, explicit epsilon-closure pass.
func (v *Vm) execute(t thread, b byte, offset uint64) {
	v.step(t, b, offset, false)
}

func (v *Vm) step(t thread, b byte, offset uint64, consumed bool) {
	for {
		d := program.Decode(v.prog.Code, t.pc)
		switch d.Op {
		case program.OpCheckHalt:
			idx := uint32(d.CheckIdx)
			if v.seen.Contains(idx) {
				v.die(t)
				return
			}
			v.seen.Insert(idx)
			t.pc = d.Next

		case program.OpLabel:
			t.label = d.Label
			t.pc = d.Next

		case program.OpMatch:
			t.hasMatch = true
			t.matchedAt = matchEnd(offset, consumed)
			t.pc = d.Next

		case program.OpFinish:
			t.hasMatch = true
			t.matchedAt = matchEnd(offset, consumed)
			v.die(t)
			return

		case program.OpHalt:
			v.die(t)
			return

		case program.OpJump:
			t.pc = d.Offset32

		case program.OpFork, program.OpLongFork:
			sibling := t
			sibling.pc = d.Offset32
			v.step(sibling, b, offset, consumed)
			t.pc = d.Next

		case program.OpJumpTable:
			if consumed {
				v.carry(t)
				return
			}
			slotsAddr, _ := program.JumpTableBase(t.pc)
			target := program.JumpTableSlot(v.prog.Code, slotsAddr+2*uint32(b))
			if target == uint16(program.DieOffset) {
				v.die(t)
				return
			}
			t.pc = uint32(target)

		case program.OpJumpTableRange:
			if consumed {
				v.carry(t)
				return
			}
			lo, hi, slotsAddr, _ := program.JumpTableRangeBounds(v.prog.Code, t.pc)
			if b < lo || b > hi {
				v.die(t)
				return
			}
			target := program.JumpTableSlot(v.prog.Code, slotsAddr+2*uint32(b-lo))
			if target == uint16(program.DieOffset) {
				v.die(t)
				return
			}
			t.pc = uint32(target)

		case program.OpLit:
			if consumed {
				v.carry(t)
				return
			}
			if b != d.B1 {
				v.die(t)
				return
			}
			t.pc = d.Next
			consumed = true

		case program.OpEither:
			if consumed {
				v.carry(t)
				return
			}
			if b != d.B1 && b != d.B2 {
				v.die(t)
				return
			}
			t.pc = d.Next
			consumed = true

		case program.OpRange:
			if consumed {
				v.carry(t)
				return
			}
			if b < d.B1 || b > d.B2 {
				v.die(t)
				return
			}
			t.pc = d.Next
			consumed = true

		case program.OpBitVector:
			if consumed {
				v.carry(t)
				return
			}
			if !d.Set.Contains(b) {
				v.die(t)
				return
			}
			t.pc = d.Next
			consumed = true
		}
	}
}

// matchEnd reports the byte offset one past the last consumed byte: offset
// itself for a zero-width match reached before b is consumed, offset+1 once
// b has been consumed this frame.
func matchEnd(offset uint64, consumed bool) uint64 {
	if consumed {
		return offset + 1
	}
	return offset
}

// carry moves t into next's generation. Every label t's resting address
// could still go on to complete — not just the one t has already tagged
// itself with via LABEL — blocks that label's commit for as long as t
// survives, since t might still reach it and extend (or create) a
// pending match there. A thread mid-way through the longer arm of an
// alternation that hasn't reached its own LABEL yet still threatens
// whatever label that arm eventually completes as.
//
// A thread whose own start is later than a window already open for one
// of these labels can never win that window (leftmost already lost), so
// it must not hold it open — otherwise a later-start thread that just
// happens to survive would block the earlier window from ever
// committing, silently merging it with whatever that thread goes on to
// match instead of letting both matches surface separately.
func (v *Vm) carry(t thread) {
	v.next = append(v.next, t)
	for _, lbl := range v.prog.VertexLabels[t.pc] {
		if v.live.Contains(lbl) && t.start != v.matchStarts[lbl] {
			continue
		}
		v.pending[lbl] = true
	}
}

// die retires t. A thread carrying a pending match (hasMatch) contributes
// it to its label's candidate record; leftmost-longest falls out of two
// rules: the first thread ever to reach a match for a label establishes
// that label's leftmost start (starts only ever arrive in non-decreasing
// order as offset advances), and any later death with a longer matchedAt
// at that same start extends the recorded end. A death with a later start
// than the recorded one is never leftmost and is simply dropped.
//
// A death whose start falls inside the most recently committed match for
// this label is discarded outright: matches are non-overlapping, and that
// committed match already claimed every offset up to its own end.
func (v *Vm) die(t thread) {
	if !t.hasMatch {
		return
	}
	label := t.label
	if t.start < v.lastEnd[label] {
		return
	}
	switch {
	case !v.live.Contains(label):
		v.live.Insert(label)
		v.matchStarts[label] = t.start
		v.matchEnds[label] = t.matchedAt
	case t.start > v.matchStarts[label]:
		// Not leftmost: an earlier-start candidate is already pending.
	case t.start < v.matchStarts[label]:
		v.matchStarts[label] = t.start
		v.matchEnds[label] = t.matchedAt
	case t.matchedAt > v.matchEnds[label]:
		v.matchEnds[label] = t.matchedAt
	}
}

// reconcileLive commits any label whose pending match survived this whole
// frame with no thread left carrying it forward — nothing remains that
// could extend it, so its recorded (start, end) is final.
func (v *Vm) reconcileLive(hit HitCallback) {
	var done []uint32
	v.live.Iter(func(label uint32) {
		if !v.pending[label] {
			done = append(done, label)
		}
	})
	for _, label := range done {
		v.live.Remove(label)
		v.emit(label, hit)
	}
}

// emit commits label's pending match: stamped into lastEnd first, so any
// later-arriving thread whose start falls within this span is suppressed
// in die before it can ever reopen or merge with the window just closed,
// regardless of whether a caller-supplied hit is even present to report it.
func (v *Vm) emit(label uint32, hit HitCallback) {
	v.lastEnd[label] = v.matchEnds[label]
	if hit == nil {
		return
	}
	hit(v.matchStarts[label], v.matchEnds[label], v.prog.Patterns[label].UserIndex)
}
