package encoding

// UTF32 maps Unicode scalar values onto a fixed 4-byte code unit equal to
// the codepoint itself.
type UTF32 struct {
	BigEndian bool
}

func (e UTF32) Name() string {
	if e.BigEndian {
		return "utf-32be"
	}
	return "utf-32le"
}

func (UTF32) MaxUnitBytes() int { return 4 }

func (e UTF32) EncodeRange(lo, hi rune) ([]EncodedPath, error) {
	if lo < 0 || hi > maxRune || lo > hi {
		return nil, &NonRepresentableError{Encoding: e.Name(), Lo: lo, Hi: hi}
	}

	if lo <= 0xD7FF && hi >= 0xE000 {
		var paths []EncodedPath
		paths = append(paths, e.encodeSimple(lo, 0xD7FF)...)
		paths = append(paths, e.encodeSimple(0xE000, hi)...)
		return paths, nil
	}
	if lo >= surrogateLo && hi <= surrogateHi {
		return nil, nil
	}
	if lo >= surrogateLo && lo <= surrogateHi {
		lo = 0xE000
	}
	if hi >= surrogateLo && hi <= surrogateHi {
		hi = 0xD7FF
	}
	if lo > hi {
		return nil, nil
	}
	return e.encodeSimple(lo, hi), nil
}

// encodeSimple splits [lo, hi] by peeling the top three bytes byte-by-byte
// until only the lowest byte varies, the general fixed-width recursive
// range-splitting shape used across every encoding in this package.
func (e UTF32) encodeSimple(lo, hi rune) []EncodedPath {
	b := [4]struct{ lo, hi byte }{
		{byte(lo >> 24), byte(hi >> 24)},
		{byte(lo >> 16), byte(hi >> 16)},
		{byte(lo >> 8), byte(hi >> 8)},
		{byte(lo), byte(hi)},
	}
	paths := splitBytes(b[:])
	if e.BigEndian {
		return paths
	}
	for i, p := range paths {
		paths[i] = reversePath(p)
	}
	return paths
}

// splitBytes recursively splits a big-endian multi-byte range into paths
// whose steps are each a contiguous byte range, peeling the most
// significant byte first exactly as unitRangePaths does for one 16-bit
// unit, generalized to N bytes.
func splitBytes(b []struct{ lo, hi byte }) []EncodedPath {
	if len(b) == 1 {
		return []EncodedPath{{{Lo: b[0].lo, Hi: b[0].hi}}}
	}
	if b[0].lo == b[0].hi {
		rest := splitBytes(b[1:])
		out := make([]EncodedPath, len(rest))
		for i, r := range rest {
			out[i] = append(EncodedPath{{Lo: b[0].lo, Hi: b[0].hi}}, r...)
		}
		return out
	}

	var paths []EncodedPath

	loRest := make([]struct{ lo, hi byte }, len(b)-1)
	copy(loRest, b[1:])
	loRest[0] = struct{ lo, hi byte }{b[1].lo, 0xFF}
	for i := 2; i < len(loRest); i++ {
		loRest[i] = struct{ lo, hi byte }{0x00, 0xFF}
	}
	for _, r := range splitBytes(loRest) {
		paths = append(paths, append(EncodedPath{{Lo: b[0].lo, Hi: b[0].lo}}, r...))
	}

	if b[0].hi > b[0].lo+1 {
		midRest := make([]struct{ lo, hi byte }, len(b)-1)
		for i := range midRest {
			midRest[i] = struct{ lo, hi byte }{0x00, 0xFF}
		}
		for _, r := range splitBytes(midRest) {
			paths = append(paths, append(EncodedPath{{Lo: b[0].lo + 1, Hi: b[0].hi - 1}}, r...))
		}
	}

	hiRest := make([]struct{ lo, hi byte }, len(b)-1)
	copy(hiRest, b[1:])
	hiRest[len(hiRest)-1] = struct{ lo, hi byte }{0x00, b[len(b)-1].hi}
	for i := 0; i < len(hiRest)-1; i++ {
		hiRest[i] = struct{ lo, hi byte }{0x00, 0xFF}
	}
	for _, r := range splitBytes(hiRest) {
		paths = append(paths, append(EncodedPath{{Lo: b[0].hi, Hi: b[0].hi}}, r...))
	}

	return paths
}

func reversePath(p EncodedPath) EncodedPath {
	out := make(EncodedPath, len(p))
	for i, step := range p {
		out[len(p)-1-i] = step
	}
	return out
}
