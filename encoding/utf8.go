package encoding

// UTF8 maps Unicode scalar values onto their UTF-8 byte sequences. The
// range splitting below mirrors the structure of a standard UTF-8 range
// compiler: split by encoded length first, then peel off lead-byte and
// continuation-byte sub-ranges until every remaining byte position varies
// independently over its full span.
type UTF8 struct{}

func (UTF8) Name() string      { return "utf-8" }
func (UTF8) MaxUnitBytes() int { return 4 }

const (
	maxRune     = 0x10FFFF
	surrogateLo = 0xD800
	surrogateHi = 0xDFFF
)

func (e UTF8) EncodeRange(lo, hi rune) ([]EncodedPath, error) {
	if lo < 0 || hi > maxRune || lo > hi {
		return nil, &NonRepresentableError{Encoding: e.Name(), Lo: lo, Hi: hi}
	}

	var paths []EncodedPath

	if lo <= 0x7F {
		asciiHi := hi
		if asciiHi > 0x7F {
			asciiHi = 0x7F
		}
		paths = append(paths, EncodedPath{{Lo: byte(lo), Hi: byte(asciiHi)}})
		lo = 0x80
	}
	if lo > hi {
		return paths, nil
	}

	if lo <= 0x7FF {
		twoHi := hi
		if twoHi > 0x7FF {
			twoHi = 0x7FF
		}
		paths = append(paths, encodeUTF8_2(lo, twoHi)...)
		lo = 0x800
	}
	if lo > hi {
		return paths, nil
	}

	if lo <= 0xFFFF {
		threeHi := hi
		if threeHi > 0xFFFF {
			threeHi = 0xFFFF
		}
		paths = append(paths, encodeUTF8_3(lo, threeHi)...)
		lo = 0x10000
	}
	if lo > hi {
		return paths, nil
	}

	paths = append(paths, encodeUTF8_4(lo, hi)...)
	return paths, nil
}

// encodeUTF8_2 encodes a range within U+0080-U+07FF: 110xxxxx 10xxxxxx.
func encodeUTF8_2(lo, hi rune) []EncodedPath {
	loLead := byte(0xC0 | (lo >> 6))
	loCont := byte(0x80 | (lo & 0x3F))
	hiLead := byte(0xC0 | (hi >> 6))
	hiCont := byte(0x80 | (hi & 0x3F))

	if loLead == hiLead {
		return []EncodedPath{{{Lo: loLead, Hi: loLead}, {Lo: loCont, Hi: hiCont}}}
	}

	var paths []EncodedPath
	paths = append(paths, EncodedPath{{Lo: loLead, Hi: loLead}, {Lo: loCont, Hi: 0xBF}})
	if hiLead > loLead+1 {
		paths = append(paths, EncodedPath{{Lo: loLead + 1, Hi: hiLead - 1}, {Lo: 0x80, Hi: 0xBF}})
	}
	paths = append(paths, EncodedPath{{Lo: hiLead, Hi: hiLead}, {Lo: 0x80, Hi: hiCont}})
	return paths
}

// encodeUTF8_3 encodes a range within U+0800-U+FFFF, excluding the
// surrogate gap U+D800-U+DFFF (not valid Unicode scalar values, so never
// UTF-8 encoded).
func encodeUTF8_3(lo, hi rune) []EncodedPath {
	if lo <= 0xD7FF && hi >= 0xE000 {
		var paths []EncodedPath
		paths = append(paths, encodeUTF8_3Simple(lo, 0xD7FF)...)
		paths = append(paths, encodeUTF8_3Simple(0xE000, hi)...)
		return paths
	}
	if lo >= surrogateLo && hi <= surrogateHi {
		return nil
	}
	if lo >= surrogateLo && lo <= surrogateHi {
		lo = 0xE000
	}
	if hi >= surrogateLo && hi <= surrogateHi {
		hi = 0xD7FF
	}
	if lo > hi {
		return nil
	}
	return encodeUTF8_3Simple(lo, hi)
}

func encodeUTF8_3Simple(lo, hi rune) []EncodedPath {
	loLead := byte(0xE0 | (lo >> 12))
	loCont1 := byte(0x80 | ((lo >> 6) & 0x3F))
	loCont2 := byte(0x80 | (lo & 0x3F))
	hiLead := byte(0xE0 | (hi >> 12))
	hiCont1 := byte(0x80 | ((hi >> 6) & 0x3F))
	hiCont2 := byte(0x80 | (hi & 0x3F))

	var paths []EncodedPath

	switch {
	case loLead == hiLead && loCont1 == hiCont1:
		paths = append(paths, EncodedPath{
			{Lo: loLead, Hi: loLead},
			{Lo: loCont1, Hi: loCont1},
			{Lo: loCont2, Hi: hiCont2},
		})
	case loLead == hiLead:
		for cont1 := loCont1; cont1 <= hiCont1; cont1++ {
			c2Lo, c2Hi := byte(0x80), byte(0xBF)
			if cont1 == loCont1 {
				c2Lo = loCont2
			}
			if cont1 == hiCont1 {
				c2Hi = hiCont2
			}
			paths = append(paths, EncodedPath{
				{Lo: loLead, Hi: loLead},
				{Lo: cont1, Hi: cont1},
				{Lo: c2Lo, Hi: c2Hi},
			})
		}
	default:
		for lead := loLead; lead <= hiLead; lead++ {
			var c1Lo byte
			switch {
			case lead == loLead:
				c1Lo = loCont1
			case lead == 0xE0:
				c1Lo = 0xA0 // avoid overlong 3-byte encodings
			default:
				c1Lo = 0x80
			}
			var c1Hi byte
			switch {
			case lead == hiLead:
				c1Hi = hiCont1
			case lead == 0xED:
				c1Hi = 0x9F // avoid the surrogate range D800-DFFF
			default:
				c1Hi = 0xBF
			}
			for cont1 := c1Lo; cont1 <= c1Hi; cont1++ {
				c2Lo, c2Hi := byte(0x80), byte(0xBF)
				if lead == loLead && cont1 == loCont1 {
					c2Lo = loCont2
				}
				if lead == hiLead && cont1 == hiCont1 {
					c2Hi = hiCont2
				}
				paths = append(paths, EncodedPath{
					{Lo: lead, Hi: lead},
					{Lo: cont1, Hi: cont1},
					{Lo: c2Lo, Hi: c2Hi},
				})
			}
		}
	}
	return paths
}

// encodeUTF8_4 encodes a range within U+10000-U+10FFFF: 11110xxx 10xxxxxx
// 10xxxxxx 10xxxxxx, respecting the F0/F4 continuation-byte restrictions
// that keep the result within the valid Unicode range.
func encodeUTF8_4(lo, hi rune) []EncodedPath {
	if hi > maxRune {
		hi = maxRune
	}
	if lo < 0x10000 {
		lo = 0x10000
	}
	if lo > hi {
		return nil
	}

	loLead := byte(0xF0 | (lo >> 18))
	hiLead := byte(0xF0 | (hi >> 18))

	var paths []EncodedPath
	for lead := loLead; lead <= hiLead; lead++ {
		c1Lo, c1Hi := byte(0x80), byte(0xBF)
		if lead == 0xF0 {
			c1Lo = 0x90
		}
		if lead == 0xF4 {
			c1Hi = 0x8F
		}
		paths = append(paths, EncodedPath{
			{Lo: lead, Hi: lead},
			{Lo: c1Lo, Hi: c1Hi},
			{Lo: 0x80, Hi: 0xBF},
			{Lo: 0x80, Hi: 0xBF},
		})
	}
	return paths
}
