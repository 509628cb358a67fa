// Package conv provides bounds-checked integer narrowing helpers shared
// by the compile pipeline. Each one panics on overflow rather than
// silently wrapping, since every call site narrows a value whose range
// the caller already believes is bounded (a vertex count, a code
// address, a pattern index) — overflow here means that belief was
// wrong, not a condition the caller should recover from.
package conv

import "math"

// IntToUint32 safely converts an int to uint32.
// Panics if n < 0 or n > math.MaxUint32.
func IntToUint32(n int) uint32 {
	if n < 0 || uint(n) > math.MaxUint32 {
		panic("bxgrep/internal/conv: int value out of uint32 range")
	}
	return uint32(n)
}

// IntToUint16 safely converts an int to uint16.
// Panics if n < 0 or n > math.MaxUint16.
func IntToUint16(n int) uint16 {
	if n < 0 || n > math.MaxUint16 {
		panic("bxgrep/internal/conv: int value out of uint16 range")
	}
	return uint16(n)
}

// Uint64ToUint32 safely converts a uint64 to uint32.
// Panics if n > math.MaxUint32.
func Uint64ToUint32(n uint64) uint32 {
	if n > math.MaxUint32 {
		panic("bxgrep/internal/conv: uint64 value out of uint32 range")
	}
	return uint32(n)
}

// Uint32ToUint16 safely converts a uint32 to uint16.
// Panics if n > math.MaxUint16.
func Uint32ToUint16(n uint32) uint16 {
	if n > math.MaxUint16 {
		panic("bxgrep/internal/conv: uint32 value out of uint16 range")
	}
	return uint16(n)
}
