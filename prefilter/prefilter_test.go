package prefilter

import (
	"testing"

	"github.com/coregx/bxgrep/bitset"
	"github.com/coregx/bxgrep/pattern"
)

func literalNode(s string) *pattern.Node {
	var n *pattern.Node
	for _, r := range s {
		lit := pattern.NewLiteral(r)
		if n == nil {
			n = lit
			continue
		}
		n = pattern.NewConcatenation(n, lit)
	}
	return n
}

func asciiPattern(expr, literal string, userIndex uint64) pattern.Pattern {
	return pattern.Pattern{
		Expression: expr,
		Encodings:  []string{"ascii"},
		UserIndex:  userIndex,
		Tree:       pattern.NewRegexp(literalNode(literal)),
	}
}

func TestBuild_FixedStringLiterals(t *testing.T) {
	ps := []pattern.Pattern{
		asciiPattern("foo", "foo", 1),
		asciiPattern("bar", "bar", 2),
	}

	pf, ok := Build(ps)
	if !ok || pf == nil {
		t.Fatalf("Build() ok=%v, want true with a non-nil prefilter", ok)
	}

	m, found := pf.Find([]byte("xx bar yy"), 0)
	if !found {
		t.Fatalf("Find() found=false, want a hit on \"bar\"")
	}
	if m.Start != 3 || m.End != 6 {
		t.Fatalf("Find() = %+v, want Start=3 End=6", m)
	}
}

func TestBuild_LiteralPrefixOfLargerPattern(t *testing.T) {
	// "foo" followed by a char class: the prefix "foo" is still a safe,
	// if partial, literal requirement.
	tail := pattern.NewCharClass(bitset.FromRange('0', '9'), "")
	tree := pattern.NewConcatenation(literalNode("foo"), tail)

	ps := []pattern.Pattern{{
		Expression: "foo[0-9]",
		Encodings:  []string{"ascii"},
		UserIndex:  1,
		Tree:       pattern.NewRegexp(tree),
	}}

	pf, ok := Build(ps)
	if !ok || pf == nil {
		t.Fatalf("Build() ok=%v, want true", ok)
	}

	m, found := pf.Find([]byte("see foo5 here"), 0)
	if !found || m.Start != 4 {
		t.Fatalf("Find() = %+v found=%v, want a hit at Start=4", m, found)
	}
}

func TestBuild_NoLiteralFactorMakesItUnusable(t *testing.T) {
	// A pattern opening with a character class has no extractable
	// literal, so no prefilter can safely be built for the whole set —
	// skipping ahead could step over a match for this pattern.
	tree := pattern.NewCharClass(bitset.FromRange('a', 'z'), "")

	ps := []pattern.Pattern{
		asciiPattern("foo", "foo", 1),
		{
			Expression: "[a-z]",
			Encodings:  []string{"ascii"},
			UserIndex:  2,
			Tree:       pattern.NewRegexp(tree),
		},
	}

	if _, ok := Build(ps); ok {
		t.Fatalf("Build() ok=true, want false when one pattern has no literal factor")
	}
}

func TestBuild_CaseInsensitiveSkipsExtraction(t *testing.T) {
	p := asciiPattern("foo", "foo", 1)
	p.CaseInsensitive = true

	if _, ok := Build([]pattern.Pattern{p}); ok {
		t.Fatalf("Build() ok=true, want false for a case-insensitive pattern")
	}
}

func TestBuild_EmptySet(t *testing.T) {
	if _, ok := Build(nil); ok {
		t.Fatalf("Build(nil) ok=true, want false")
	}
}

func TestLiteralPrefix_StopsAtFirstNonLiteral(t *testing.T) {
	tail := pattern.NewCharClass(bitset.FromRange('0', '9'), "")
	tree := pattern.NewConcatenation(literalNode("ab"), tail)

	cps, full := literalPrefix(tree)
	if full {
		t.Fatalf("literalPrefix() full=true, want false (tail is non-literal)")
	}
	if string(cps) != "ab" {
		t.Fatalf("literalPrefix() = %q, want %q", string(cps), "ab")
	}
}

func TestLiteralPrefix_WholeLiteralChainIsFull(t *testing.T) {
	cps, full := literalPrefix(literalNode("hello"))
	if !full {
		t.Fatalf("literalPrefix() full=false, want true for an all-literal chain")
	}
	if string(cps) != "hello" {
		t.Fatalf("literalPrefix() = %q, want %q", string(cps), "hello")
	}
}
