package program

import "github.com/coregx/bxgrep/bitset"

// Decoded holds one decoded instruction's operands. Only the fields
// relevant to Op are populated; the rest are zero.
type Decoded struct {
	Op       Opcode
	B1, B2   byte          // LIT / EITHER / RANGE operands
	Set      bitset.ByteSet // BIT_VECTOR operand
	Offset32 uint32         // JUMP / FORK / LONG_FORK absolute target
	CheckIdx uint16         // CHECK_HALT operand
	Label    uint32         // LABEL operand
	Next     uint32         // address of the instruction following this one
}

// JumpTableBase returns the address of slot 0 for a JUMP_TABLE at pc, and
// the address just past the table (its "Next").
func JumpTableBase(pc uint32) (slotsAddr, next uint32) {
	slotsAddr = pc + 1
	next = slotsAddr + jumpTableSlots*2
	return
}

// JumpTableRangeBounds returns the [lo,hi] and slot base/next addresses for
// a JUMP_TABLE_RANGE at pc.
func JumpTableRangeBounds(code []byte, pc uint32) (lo, hi byte, slotsAddr, next uint32) {
	lo, hi = code[pc+1], code[pc+2]
	slotsAddr = pc + 3
	n := uint32(int(hi)-int(lo)) + 1
	next = slotsAddr + n*2
	return
}

// JumpTableSlot reads the 16-bit offset at the given jump-table slot address.
func JumpTableSlot(code []byte, slotAddr uint32) uint16 {
	return getU16(code[slotAddr : slotAddr+2])
}

// Decode reads the instruction at pc and returns it along with the address
// of the following instruction (Decoded.Next). It panics if pc is out of
// bounds or the opcode byte is unrecognized — both indicate a corrupt or
// mis-generated program, never a condition reachable from well-formed input.
func Decode(code []byte, pc uint32) Decoded {
	op := Opcode(code[pc])
	d := Decoded{Op: op}
	switch op {
	case OpLit:
		d.B1 = code[pc+1]
		d.Next = pc + sizeLit
	case OpEither:
		d.B1, d.B2 = code[pc+1], code[pc+2]
		d.Next = pc + sizeEither
	case OpRange:
		d.B1, d.B2 = code[pc+1], code[pc+2]
		d.Next = pc + sizeRange
	case OpBitVector:
		var buf [32]byte
		copy(buf[:], code[pc+1:pc+1+32])
		d.Set = bitset.Unmarshal(buf)
		d.Next = pc + sizeBitVector
	case OpJumpTable:
		_, next := JumpTableBase(pc)
		d.Next = next
	case OpJumpTableRange:
		_, _, _, next := JumpTableRangeBounds(code, pc)
		d.Next = next
	case OpJump:
		d.Offset32 = uint32(getU16(code[pc+1 : pc+3]))
		d.Next = pc + sizeJump
	case OpFork:
		d.Offset32 = uint32(getU16(code[pc+1 : pc+3]))
		d.Next = pc + sizeFork
	case OpLongFork:
		d.Offset32 = getU32(code[pc+1 : pc+5])
		d.Next = pc + sizeLongFork
	case OpCheckHalt:
		d.CheckIdx = getU16(code[pc+1 : pc+3])
		d.Next = pc + sizeCheckHalt
	case OpLabel:
		d.Label = getU32(code[pc+1 : pc+5])
		d.Next = pc + sizeLabel
	case OpMatch, OpHalt, OpFinish:
		d.Next = pc + sizeNullary
	default:
		panic("program: unrecognized opcode in bytecode stream")
	}
	return d
}
