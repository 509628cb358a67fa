// Package simdscan provides the byte and byte-pair scans Vm.Search's
// fast-skip step uses when a program's FirstByteSet reduces to one or two
// candidate bytes, plus a portable fallback for the general case.
//
// HasAVX2 records whether the running CPU could execute a vectorized
// implementation; it is exported for dispatch the day real assembly lands
// in this package, but every scan here runs the portable SWAR (SIMD
// Within A Register) technique today, processing 8 bytes per uint64
// comparison rather than one byte per loop iteration.
package simdscan

import (
	"encoding/binary"
	"math/bits"

	"golang.org/x/sys/cpu"

	"github.com/coregx/bxgrep/bitset"
)

// HasAVX2 reports whether the CPU supports AVX2, the feature the teacher's
// arch-specific memchr dispatches on. This package has no AVX2 assembly of
// its own yet, so the flag is currently informational only — every scan
// below runs the portable SWAR path regardless of its value.
var HasAVX2 = cpu.X86.HasAVX2

const (
	lo8 = 0x0101010101010101
	hi8 = 0x8080808080808080
)

// ScanByte returns the index of the first occurrence of b in haystack, or
// -1 if none exists.
func ScanByte(haystack []byte, b byte) int {
	n := len(haystack)
	if n < 8 {
		for i := 0; i < n; i++ {
			if haystack[i] == b {
				return i
			}
		}
		return -1
	}

	mask := uint64(b) * lo8
	i := 0
	for i+8 <= n {
		chunk := binary.LittleEndian.Uint64(haystack[i:])
		xor := chunk ^ mask
		if hit := (xor - lo8) &^ xor & hi8; hit != 0 {
			return i + bits.TrailingZeros64(hit)/8
		}
		i += 8
	}
	for ; i < n; i++ {
		if haystack[i] == b {
			return i
		}
	}
	return -1
}

// ScanBytePair returns the index of the first occurrence of either b1 or
// b2 in haystack, or -1 if neither is present.
func ScanBytePair(haystack []byte, b1, b2 byte) int {
	n := len(haystack)
	if n < 8 {
		for i := 0; i < n; i++ {
			if haystack[i] == b1 || haystack[i] == b2 {
				return i
			}
		}
		return -1
	}

	mask1 := uint64(b1) * lo8
	mask2 := uint64(b2) * lo8
	i := 0
	for i+8 <= n {
		chunk := binary.LittleEndian.Uint64(haystack[i:])
		xor1 := chunk ^ mask1
		xor2 := chunk ^ mask2
		hit1 := (xor1 - lo8) &^ xor1 & hi8
		hit2 := (xor2 - lo8) &^ xor2 & hi8
		if hit := hit1 | hit2; hit != 0 {
			return i + bits.TrailingZeros64(hit)/8
		}
		i += 8
	}
	for ; i < n; i++ {
		if haystack[i] == b1 || haystack[i] == b2 {
			return i
		}
	}
	return -1
}

// ScanSet returns the index of the first byte at or after 0 in haystack
// that belongs to set, or -1 if none exists. It dispatches to ScanByte or
// ScanBytePair when set reduces to one or two bytes, and otherwise falls
// back to a plain membership scan.
func ScanSet(haystack []byte, set bitset.ByteSet) int {
	switch set.Count() {
	case 0:
		return -1
	case 1:
		return ScanByte(haystack, set.Bytes()[0])
	case 2:
		if b1, b2, ok := set.AsPair(); ok {
			return ScanBytePair(haystack, b1, b2)
		}
		fallthrough
	default:
		for i, b := range haystack {
			if set.Contains(b) {
				return i
			}
		}
		return -1
	}
}
