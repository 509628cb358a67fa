// Package encoding maps Unicode codepoint ranges onto the byte-range paths
// the NFA builder strings together to recognize them. Each Encoder turns a
// single [lo, hi] codepoint range into one or more EncodedPath alternatives,
// where each path is itself a fixed-length sequence of byte-range steps
// (one per encoded byte). The NFA builder chains a path's steps back to
// front and joins the resulting alternatives, so the byte-range splitting
// done here is the only place encoding-specific logic lives.
package encoding

import (
	"fmt"
)

// MaxCodepoint is the highest valid Unicode scalar value, used by callers
// (e.g. a DOT node) that need to span the entire representable range.
const MaxCodepoint = 0x10FFFF

// ByteRangeStep matches any single byte in [Lo, Hi].
type ByteRangeStep struct {
	Lo, Hi byte
}

// EncodedPath is one fixed-length alternative: a sequence of byte-range
// steps that together match one (possibly multi-byte) encoded unit.
type EncodedPath []ByteRangeStep

// NonRepresentableError reports a codepoint range that an encoding cannot
// represent (e.g. a codepoint above U+00FF requested of Latin-1).
type NonRepresentableError struct {
	Encoding string
	Lo, Hi   rune
}

func (e *NonRepresentableError) Error() string {
	return fmt.Sprintf("bxgrep/encoding: %s cannot represent U+%04X-U+%04X", e.Encoding, e.Lo, e.Hi)
}

// Encoder maps codepoint ranges onto byte-range paths for one text encoding.
type Encoder interface {
	// Name identifies the encoding, e.g. "ascii", "utf-8", "utf-16le".
	Name() string

	// EncodeRange returns the set of byte-range paths matching every
	// codepoint in [lo, hi]. All returned paths have the same length for
	// a fixed-width encoding; UTF-8 and UTF-16 may return paths of mixed
	// length when the range spans an encoding-length boundary.
	EncodeRange(lo, hi rune) ([]EncodedPath, error)

	// MaxUnitBytes returns the largest number of bytes one encoded unit
	// can occupy, used by callers sizing lookahead buffers.
	MaxUnitBytes() int
}

// ByName returns the built-in Encoder for a name, or false if unknown.
func ByName(name string) (Encoder, bool) {
	switch name {
	case "ascii":
		return ASCII{}, true
	case "latin1":
		return Latin1{}, true
	case "utf-8", "utf8":
		return UTF8{}, true
	case "utf-16le", "utf16le":
		return UTF16{BigEndian: false}, true
	case "utf-16be", "utf16be":
		return UTF16{BigEndian: true}, true
	case "utf-32le", "utf32le":
		return UTF32{BigEndian: false}, true
	case "utf-32be", "utf32be":
		return UTF32{BigEndian: true}, true
	default:
		return nil, false
	}
}
