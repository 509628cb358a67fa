// Package transition implements the single-byte predicates that label NFA
// vertices (see package nfa) and lower into the bytecode opcodes consumed
// by the VM.
//
// Transition is a tagged variant rather than an interface hierarchy with
// virtual dispatch into a placement-new buffer (the approach taken by the
// engine this design is modeled on): each case is a plain Go type
// implementing the same three-method contract, and lowering appends to an
// ordinary growable []byte via *program.Writer instead of writing into a
// pre-sized arena.
package transition

import (
	"errors"

	"github.com/coregx/bxgrep/bitset"
	"github.com/coregx/bxgrep/program"
)

// ErrEmptyTransition is returned by Lower (or by the narrowing helper that
// feeds it) when asked to lower a transition accepting no bytes at all.
var ErrEmptyTransition = errors.New("bxgrep/transition: empty transition cannot be lowered")

// Transition is a single-byte predicate: "does byte b satisfy?", "what is
// the full set of accepted bytes?", and "how does this lower into
// bytecode?".
type Transition interface {
	// Matches reports whether b satisfies the predicate.
	Matches(b byte) bool

	// AcceptedBytes returns the full set of bytes this transition accepts.
	AcceptedBytes() bitset.ByteSet

	// Lower appends the bytecode form of this transition to w and returns
	// the number of instructions emitted (always 1 for every variant).
	Lower(w *program.Writer) (count int, err error)

	// String returns a short human-readable label, used for DOT rendering
	// and factor-path analysis.
	String() string
}

// Literal matches exactly one byte.
type Literal struct {
	B byte
}

func (t Literal) Matches(b byte) bool { return b == t.B }

func (t Literal) AcceptedBytes() bitset.ByteSet {
	return bitset.FromRange(t.B, t.B)
}

func (t Literal) Lower(w *program.Writer) (int, error) {
	w.Lit(t.B)
	return 1, nil
}

func (t Literal) String() string { return byteLabel(t.B) }

// Either matches one of two bytes — the shape produced by case-folding an
// ASCII letter.
type Either struct {
	B1, B2 byte
}

func (t Either) Matches(b byte) bool { return b == t.B1 || b == t.B2 }

func (t Either) AcceptedBytes() bitset.ByteSet {
	var bs bitset.ByteSet
	bs.Add(t.B1)
	bs.Add(t.B2)
	return bs
}

func (t Either) Lower(w *program.Writer) (int, error) {
	w.Either(t.B1, t.B2)
	return 1, nil
}

func (t Either) String() string { return "[" + byteLabel(t.B1) + byteLabel(t.B2) + "]" }

// Range matches any byte in the inclusive range [Lo, Hi].
type Range struct {
	Lo, Hi byte
}

func (t Range) Matches(b byte) bool { return b >= t.Lo && b <= t.Hi }

func (t Range) AcceptedBytes() bitset.ByteSet {
	return bitset.FromRange(t.Lo, t.Hi)
}

func (t Range) Lower(w *program.Writer) (int, error) {
	w.Range(t.Lo, t.Hi)
	return 1, nil
}

func (t Range) String() string {
	if t.Lo == t.Hi {
		return byteLabel(t.Lo)
	}
	return "[" + byteLabel(t.Lo) + "-" + byteLabel(t.Hi) + "]"
}

// ByteSetTrans matches any byte in an arbitrary set, such as a character
// class. Label is an optional human-readable name (e.g. "\\d") used only
// for diagnostics.
type ByteSetTrans struct {
	Set   bitset.ByteSet
	Label string
}

func (t ByteSetTrans) Matches(b byte) bool { return t.Set.Contains(b) }

func (t ByteSetTrans) AcceptedBytes() bitset.ByteSet { return t.Set }

// Lower narrows the set to its most compact representation before
// emitting: empty is an error, a single byte becomes LIT, a pair becomes
// EITHER, a contiguous run becomes RANGE, and anything else becomes a full
// BIT_VECTOR. This is the one narrowing point in the package — every other
// variant already knows its own minimal form.
func (t ByteSetTrans) Lower(w *program.Writer) (int, error) {
	narrowed, err := Narrow(t.Set)
	if err != nil {
		return 0, err
	}
	if _, ok := narrowed.(ByteSetTrans); ok {
		w.BitVector(t.Set)
		return 1, nil
	}
	return narrowed.Lower(w)
}

func (t ByteSetTrans) String() string {
	if t.Label != "" {
		return t.Label
	}
	lo, hi, ok := t.Set.AsRange()
	if ok {
		return Range{Lo: lo, Hi: hi}.String()
	}
	return "(class)"
}

// Narrow picks the narrowest Transition variant that exactly represents
// the given byte set, in the order the lowerer is required to try: empty
// is an error, then single-byte, then two-byte, then contiguous range,
// falling back to a ByteSetTrans (which Lower then emits as BIT_VECTOR).
func Narrow(bs bitset.ByteSet) (Transition, error) {
	if bs.IsEmpty() {
		return nil, ErrEmptyTransition
	}
	if lo, hi, ok := bs.AsRange(); ok {
		if lo == hi {
			return Literal{B: lo}, nil
		}
		return Range{Lo: lo, Hi: hi}, nil
	}
	if b1, b2, ok := bs.AsPair(); ok {
		return Either{B1: b1, B2: b2}, nil
	}
	return ByteSetTrans{Set: bs}, nil
}

func byteLabel(b byte) string {
	if b >= 0x20 && b < 0x7f {
		return string(rune(b))
	}
	const hex = "0123456789abcdef"
	return "\\x" + string(hex[b>>4]) + string(hex[b&0xf])
}
