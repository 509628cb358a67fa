package encoding

// ASCII maps codepoints U+0000-U+007F onto themselves, one byte each.
type ASCII struct{}

func (ASCII) Name() string      { return "ascii" }
func (ASCII) MaxUnitBytes() int { return 1 }

func (e ASCII) EncodeRange(lo, hi rune) ([]EncodedPath, error) {
	if lo < 0 || hi > 0x7F {
		return nil, &NonRepresentableError{Encoding: e.Name(), Lo: lo, Hi: hi}
	}
	return []EncodedPath{{{Lo: byte(lo), Hi: byte(hi)}}}, nil
}

// Latin1 maps codepoints U+0000-U+00FF onto themselves, one byte each.
type Latin1 struct{}

func (Latin1) Name() string      { return "latin1" }
func (Latin1) MaxUnitBytes() int { return 1 }

func (e Latin1) EncodeRange(lo, hi rune) ([]EncodedPath, error) {
	if lo < 0 || hi > 0xFF {
		return nil, &NonRepresentableError{Encoding: e.Name(), Lo: lo, Hi: hi}
	}
	return []EncodedPath{{{Lo: byte(lo), Hi: byte(hi)}}}, nil
}
