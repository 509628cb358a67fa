package program

import "github.com/coregx/bxgrep/bitset"

// Writer appends instructions to a growing byte-addressed code buffer.
// Codegen uses it to emit one snippet per discovered vertex; operand
// positions for jump/fork targets are returned so codegen can backpatch
// them once every vertex's final address is known.
type Writer struct {
	code []byte
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Here returns the current end of the code buffer — the address the next
// emitted instruction will occupy.
func (w *Writer) Here() uint32 {
	return uint32(len(w.code))
}

// Bytes returns the underlying code buffer.
func (w *Writer) Bytes() []byte {
	return w.code
}

// Lit emits LIT b.
func (w *Writer) Lit(b byte) {
	w.code = append(w.code, byte(OpLit), b)
}

// Either emits EITHER b1 b2.
func (w *Writer) Either(b1, b2 byte) {
	w.code = append(w.code, byte(OpEither), b1, b2)
}

// Range emits RANGE lo hi.
func (w *Writer) Range(lo, hi byte) {
	w.code = append(w.code, byte(OpRange), lo, hi)
}

// BitVector emits BIT_VECTOR followed by the set's 32-byte encoding.
func (w *Writer) BitVector(bs bitset.ByteSet) {
	w.code = append(w.code, byte(OpBitVector))
	buf := bs.Marshal()
	w.code = append(w.code, buf[:]...)
}

// JumpTable emits JUMP_TABLE followed by 256 placeholder offsets and
// returns the address of the first offset slot, for later patching via
// PatchJumpSlot.
func (w *Writer) JumpTable() (tableAddr uint32) {
	w.code = append(w.code, byte(OpJumpTable))
	tableAddr = w.Here()
	for i := 0; i < jumpTableSlots; i++ {
		w.code = append(w.code, 0, 0)
	}
	return tableAddr
}

// JumpTableRange emits JUMP_TABLE_RANGE lo hi followed by (hi-lo+1)
// placeholder offsets, returning the address of the first slot.
func (w *Writer) JumpTableRange(lo, hi byte) (tableAddr uint32) {
	w.code = append(w.code, byte(OpJumpTableRange), lo, hi)
	tableAddr = w.Here()
	n := int(hi) - int(lo) + 1
	for i := 0; i < n; i++ {
		w.code = append(w.code, 0, 0)
	}
	return tableAddr
}

// PatchJumpSlot overwrites a 16-bit jump-table slot at the given address.
func (w *Writer) PatchJumpSlot(slotAddr uint32, target uint16) {
	putU16(w.code[slotAddr:slotAddr+2], target)
}

// Jump emits JUMP with a placeholder 16-bit offset and returns the address
// of the operand for later patching.
func (w *Writer) Jump() (operandAddr uint32) {
	w.code = append(w.code, byte(OpJump), 0, 0)
	return w.Here() - 2
}

// Fork emits FORK with a placeholder 16-bit offset and returns the operand
// address for later patching.
func (w *Writer) Fork() (operandAddr uint32) {
	w.code = append(w.code, byte(OpFork), 0, 0)
	return w.Here() - 2
}

// LongFork emits LONG_FORK with a placeholder 32-bit offset and returns the
// operand address for later patching.
func (w *Writer) LongFork() (operandAddr uint32) {
	w.code = append(w.code, byte(OpLongFork), 0, 0, 0, 0)
	return w.Here() - 4
}

// PatchU16 overwrites a 16-bit operand at the given address with target.
func (w *Writer) PatchU16(operandAddr uint32, target uint16) {
	putU16(w.code[operandAddr:operandAddr+2], target)
}

// PatchU32 overwrites a 32-bit operand at the given address with target.
func (w *Writer) PatchU32(operandAddr uint32, target uint32) {
	putU32(w.code[operandAddr:operandAddr+4], target)
}

// CheckHalt emits CHECK_HALT with the given check index.
func (w *Writer) CheckHalt(checkIndex uint16) {
	w.code = append(w.code, byte(OpCheckHalt), 0, 0)
	putU16(w.code[len(w.code)-2:], checkIndex)
}

// Label emits LABEL n.
func (w *Writer) Label(n uint32) {
	w.code = append(w.code, byte(OpLabel), 0, 0, 0, 0)
	putU32(w.code[len(w.code)-4:], n)
}

// Match emits MATCH.
func (w *Writer) Match() {
	w.code = append(w.code, byte(OpMatch))
}

// Halt emits HALT.
func (w *Writer) Halt() {
	w.code = append(w.code, byte(OpHalt))
}

// Finish emits FINISH.
func (w *Writer) Finish() {
	w.code = append(w.code, byte(OpFinish))
}
