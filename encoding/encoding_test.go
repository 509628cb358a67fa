package encoding

import (
	"testing"
)

// pathMatches reports whether buf is exactly one path's length and every
// byte in buf falls within the corresponding step's range.
func pathMatches(p EncodedPath, buf []byte) bool {
	if len(p) != len(buf) {
		return false
	}
	for i, step := range p {
		if buf[i] < step.Lo || buf[i] > step.Hi {
			return false
		}
	}
	return true
}

func anyPathMatches(paths []EncodedPath, buf []byte) bool {
	for _, p := range paths {
		if pathMatches(p, buf) {
			return true
		}
	}
	return false
}

func TestASCIIRejectsAboveRange(t *testing.T) {
	if _, err := (ASCII{}).EncodeRange(0x41, 0x80); err == nil {
		t.Fatal("expected NonRepresentableError for range crossing 0x7F")
	}
	paths, err := (ASCII{}).EncodeRange('A', 'Z')
	if err != nil {
		t.Fatalf("EncodeRange: %v", err)
	}
	if !anyPathMatches(paths, []byte{'M'}) {
		t.Fatal("expected 'M' to match A-Z range")
	}
}

func TestLatin1AcceptsFullByteRange(t *testing.T) {
	paths, err := (Latin1{}).EncodeRange(0x00, 0xFF)
	if err != nil {
		t.Fatalf("EncodeRange: %v", err)
	}
	if !anyPathMatches(paths, []byte{0xE9}) {
		t.Fatal("expected 0xE9 to match full Latin-1 range")
	}
}

func TestUTF8KnownCodepoints(t *testing.T) {
	cases := []struct {
		name string
		cp   rune
		want []byte
	}{
		{"ascii-A", 'A', []byte{0x41}},
		{"euro-sign", 0x20AC, []byte{0xE2, 0x82, 0xAC}},
		{"emoji", 0x1F600, []byte{0xF0, 0x9F, 0x98, 0x80}},
		{"two-byte-boundary", 0x80, []byte{0xC2, 0x80}},
		{"three-byte-boundary", 0x800, []byte{0xE0, 0xA0, 0x80}},
		{"cyrillic", 0x0411, []byte{0xD0, 0x91}}, // 'Б'
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			paths, err := (UTF8{}).EncodeRange(c.cp, c.cp)
			if err != nil {
				t.Fatalf("EncodeRange: %v", err)
			}
			if !anyPathMatches(paths, c.want) {
				t.Fatalf("U+%04X: no path matched %x, paths=%v", c.cp, c.want, paths)
			}
		})
	}
}

func TestUTF8RejectsOutOfRangeCodepoint(t *testing.T) {
	if _, err := (UTF8{}).EncodeRange(0x110000, 0x110000); err == nil {
		t.Fatal("expected NonRepresentableError above U+10FFFF")
	}
}

func TestUTF8SurrogatesProduceNoPaths(t *testing.T) {
	paths, err := (UTF8{}).EncodeRange(0xD800, 0xDFFF)
	if err != nil {
		t.Fatalf("EncodeRange: %v", err)
	}
	if len(paths) != 0 {
		t.Fatalf("surrogate-only range should produce no paths, got %v", paths)
	}
}

func TestUTF8RangeSpanningSurrogateGapExcludesIt(t *testing.T) {
	paths, err := (UTF8{}).EncodeRange(0xD000, 0xE500)
	if err != nil {
		t.Fatalf("EncodeRange: %v", err)
	}
	// 0xD7FF encodes to ED 9F BF; a surrogate like 0xD900 must not match.
	if !anyPathMatches(paths, []byte{0xED, 0x9F, 0xBF}) {
		t.Fatal("expected U+D7FF to be covered")
	}
	for _, p := range paths {
		if pathMatches(p, []byte{0xED, 0xA4, 0x80}) { // would-be encoding of U+D900
			t.Fatal("surrogate U+D900 must not be matched by any path")
		}
	}
}

func TestUTF16LEBMPAndSupplementary(t *testing.T) {
	paths, err := (UTF16{BigEndian: false}).EncodeRange('A', 'A')
	if err != nil {
		t.Fatalf("EncodeRange: %v", err)
	}
	if !anyPathMatches(paths, []byte{0x41, 0x00}) {
		t.Fatal("expected LE 'A' = 41 00")
	}

	paths, err = (UTF16{BigEndian: false}).EncodeRange(0x1F600, 0x1F600)
	if err != nil {
		t.Fatalf("EncodeRange: %v", err)
	}
	// U+1F600 -> surrogate pair D83D DE00 -> LE bytes 3D D8 00 DE
	if !anyPathMatches(paths, []byte{0x3D, 0xD8, 0x00, 0xDE}) {
		t.Fatalf("expected LE surrogate-pair bytes for U+1F600, got %v", paths)
	}
}

func TestUTF16BEMatchesByteOrder(t *testing.T) {
	paths, err := (UTF16{BigEndian: true}).EncodeRange('A', 'A')
	if err != nil {
		t.Fatalf("EncodeRange: %v", err)
	}
	if !anyPathMatches(paths, []byte{0x00, 0x41}) {
		t.Fatal("expected BE 'A' = 00 41")
	}
}

func TestUTF32RoundTrip(t *testing.T) {
	paths, err := (UTF32{BigEndian: true}).EncodeRange(0x1F600, 0x1F600)
	if err != nil {
		t.Fatalf("EncodeRange: %v", err)
	}
	if !anyPathMatches(paths, []byte{0x00, 0x01, 0xF6, 0x00}) {
		t.Fatalf("expected BE 4-byte encoding, got %v", paths)
	}

	paths, err = (UTF32{BigEndian: false}).EncodeRange(0x1F600, 0x1F600)
	if err != nil {
		t.Fatalf("EncodeRange: %v", err)
	}
	if !anyPathMatches(paths, []byte{0x00, 0xF6, 0x01, 0x00}) {
		t.Fatalf("expected LE 4-byte encoding, got %v", paths)
	}
}

func TestByName(t *testing.T) {
	for _, name := range []string{"ascii", "latin1", "utf-8", "utf-16le", "utf-16be", "utf-32le", "utf-32be"} {
		if _, ok := ByName(name); !ok {
			t.Fatalf("ByName(%q) should resolve", name)
		}
	}
	if _, ok := ByName("nonsense"); ok {
		t.Fatal("ByName should reject unknown encodings")
	}
}
