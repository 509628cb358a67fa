package simdscan

import (
	"bytes"
	"testing"

	"github.com/coregx/bxgrep/bitset"
)

func TestScanByte(t *testing.T) {
	tests := []struct {
		name     string
		haystack []byte
		needle   byte
		want     int
	}{
		{"empty", []byte{}, 'a', -1},
		{"single_match", []byte{'a'}, 'a', 0},
		{"single_no_match", []byte{'a'}, 'b', -1},
		{"first_position", []byte("hello"), 'h', 0},
		{"middle_position", []byte("hello"), 'l', 2},
		{"last_position", []byte("hello"), 'o', 4},
		{"not_found", []byte("hello"), 'x', -1},
		{"crosses_chunk_boundary", []byte("aaaaaaaaZ"), 'Z', 8},
		{"exact_one_chunk", []byte("abcdefgh"), 'h', 7},
		{"longer_found", []byte("the quick brown fox jumps over the lazy dog"), 'q', 4},
		{"longer_last_char", []byte("the quick brown fox jumps over the lazy dog"), 'g', 42},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScanByte(tt.haystack, tt.needle)
			if got != tt.want {
				t.Errorf("ScanByte(%q, %q) = %d, want %d", tt.haystack, tt.needle, got, tt.want)
			}
			if std := bytes.IndexByte(tt.haystack, tt.needle); got != std {
				t.Errorf("ScanByte disagrees with bytes.IndexByte: got %d, want %d", got, std)
			}
		})
	}
}

func TestScanBytePair(t *testing.T) {
	tests := []struct {
		name     string
		haystack []byte
		b1, b2   byte
		want     int
	}{
		{"empty", []byte{}, 'a', 'b', -1},
		{"matches_first_needle", []byte("hello world"), 'o', 'w', 4},
		{"matches_second_needle_only", []byte("xyz"), 'a', 'z', 2},
		{"neither_present", []byte("hello"), 'x', 'z', -1},
		{"crosses_chunk_boundary", []byte("aaaaaaaaZ"), 'Q', 'Z', 8},
		{"same_needle_twice", []byte("hello"), 'l', 'l', 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScanBytePair(tt.haystack, tt.b1, tt.b2)
			if got != tt.want {
				t.Errorf("ScanBytePair(%q, %q, %q) = %d, want %d", tt.haystack, tt.b1, tt.b2, got, tt.want)
			}
		})
	}
}

func TestScanSet(t *testing.T) {
	t.Run("empty set never matches", func(t *testing.T) {
		if got := ScanSet([]byte("anything"), bitset.New()); got != -1 {
			t.Errorf("ScanSet with empty set = %d, want -1", got)
		}
	})

	t.Run("singleton dispatches like ScanByte", func(t *testing.T) {
		set := bitset.FromRange('x', 'x')
		if got := ScanSet([]byte("abcxdef"), set); got != 3 {
			t.Errorf("ScanSet = %d, want 3", got)
		}
	})

	t.Run("pair dispatches like ScanBytePair", func(t *testing.T) {
		var set bitset.ByteSet
		set.Add('y')
		set.Add('x')
		if got := ScanSet([]byte("abcxdef"), set); got != 3 {
			t.Errorf("ScanSet = %d, want 3", got)
		}
	})

	t.Run("general range falls back to membership scan", func(t *testing.T) {
		set := bitset.FromRange('0', '9')
		if got := ScanSet([]byte("abc9def"), set); got != 3 {
			t.Errorf("ScanSet = %d, want 3", got)
		}
		if got := ScanSet([]byte("abcdef"), set); got != -1 {
			t.Errorf("ScanSet = %d, want -1", got)
		}
	})
}
