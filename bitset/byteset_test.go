package bitset

import "testing"

func TestAddContains(t *testing.T) {
	var bs ByteSet
	if !bs.IsEmpty() {
		t.Fatal("new set should be empty")
	}
	bs.Add('a')
	bs.Add('z')
	if !bs.Contains('a') || !bs.Contains('z') {
		t.Fatal("expected a and z in set")
	}
	if bs.Contains('b') {
		t.Fatal("b should not be in set")
	}
	if bs.Count() != 2 {
		t.Fatalf("count = %d, want 2", bs.Count())
	}
}

func TestAddRange(t *testing.T) {
	bs := FromRange('a', 'z')
	for b := 'a'; b <= 'z'; b++ {
		if !bs.Contains(byte(b)) {
			t.Fatalf("expected %c in range", b)
		}
	}
	if bs.Contains('A') {
		t.Fatal("A should not be in a-z range")
	}
	if bs.Count() != 26 {
		t.Fatalf("count = %d, want 26", bs.Count())
	}
}

func TestUnionIntersect(t *testing.T) {
	a := FromRange('a', 'm')
	b := FromRange('h', 'z')
	u := a.Union(b)
	if u.Count() != 26 {
		t.Fatalf("union count = %d, want 26", u.Count())
	}
	i := a.Intersect(b)
	lo, hi, ok := i.AsRange()
	if !ok || lo != 'h' || hi != 'm' {
		t.Fatalf("intersection = [%c,%c] ok=%v, want [h,m]", lo, hi, ok)
	}
}

func TestDisjointEqual(t *testing.T) {
	a := FromRange('a', 'c')
	b := FromRange('x', 'z')
	if !a.Disjoint(b) {
		t.Fatal("a and b should be disjoint")
	}
	c := FromRange('a', 'c')
	if !a.Equal(c) {
		t.Fatal("a and c should be equal")
	}
}

func TestAsRangeAsPair(t *testing.T) {
	var bs ByteSet
	bs.Add('x')
	if _, _, ok := bs.AsRange(); !ok {
		t.Fatal("singleton should be a range")
	}
	bs.Add('y')
	lo, hi, ok := bs.AsRange()
	if !ok || lo != 'x' || hi != 'y' {
		t.Fatalf("want [x,y], got [%c,%c] ok=%v", lo, hi, ok)
	}
	b1, b2, ok := bs.AsPair()
	if !ok || b1 != 'x' || b2 != 'y' {
		t.Fatalf("want pair (x,y), got (%c,%c) ok=%v", b1, b2, ok)
	}

	var sparse ByteSet
	sparse.Add('a')
	sparse.Add('z')
	if _, _, ok := sparse.AsRange(); ok {
		t.Fatal("a,z should not collapse to a range")
	}
	if _, _, ok := sparse.AsPair(); !ok {
		t.Fatal("a,z should collapse to a pair")
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	bs := FromRange(0x20, 0x7e)
	bs.Add(0xff)
	buf := bs.Marshal()
	got := Unmarshal(buf)
	if !bs.Equal(got) {
		t.Fatal("round trip mismatch")
	}
}

func TestFull(t *testing.T) {
	f := Full()
	if f.Count() != 256 {
		t.Fatalf("full count = %d, want 256", f.Count())
	}
}
