package nfa

import (
	"testing"

	"github.com/coregx/bxgrep/bitset"
	"github.com/coregx/bxgrep/graph"
	"github.com/coregx/bxgrep/pattern"
)

func lit(cp rune) *pattern.Node { return pattern.NewLiteral(cp) }

func asciiPattern(expr string, tree *pattern.Node) pattern.Pattern {
	return pattern.Pattern{Expression: expr, Encodings: []string{"ascii"}, Tree: pattern.NewRegexp(tree)}
}

func TestLiteralProducesSingleMatchVertex(t *testing.T) {
	b := NewBuilder()
	if err := b.AddPattern(0, asciiPattern("a", lit('a'))); err != nil {
		t.Fatalf("AddPattern: %v", err)
	}
	g := b.Graph()
	if g.NumVertices() != 2 {
		t.Fatalf("NumVertices() = %d, want 2 (start + 1 literal)", g.NumVertices())
	}
	v := graphVertex(g, 1)
	data := g.Label(v)
	if !data.IsMatch || data.Label != 0 {
		t.Fatalf("vertex 1 = %+v, want IsMatch with label 0", data)
	}
	if !g.HasEdge(b.Start(), v) {
		t.Fatal("start should have an edge into the literal vertex")
	}
}

func TestConcatenationChainsVertices(t *testing.T) {
	b := NewBuilder()
	tree := pattern.NewConcatenation(lit('a'), lit('b'))
	if err := b.AddPattern(0, asciiPattern("ab", tree)); err != nil {
		t.Fatalf("AddPattern: %v", err)
	}
	g := b.Graph()
	// start -> 'a' -> 'b', 'b' isMatch
	a := graphVertex(g, 1)
	bb := graphVertex(g, 2)
	if !g.HasEdge(a, bb) {
		t.Fatal("'a' vertex should have an edge into 'b' vertex")
	}
	if g.Label(bb).IsMatch != true {
		t.Fatal("'b' vertex should be the match vertex")
	}
	if g.Label(a).IsMatch {
		t.Fatal("'a' vertex should not be a match vertex")
	}
}

func TestAlternationEntersAndExitsBothBranches(t *testing.T) {
	b := NewBuilder()
	tree := pattern.NewAlternation(lit('a'), lit('b'))
	if err := b.AddPattern(0, asciiPattern("a|b", tree)); err != nil {
		t.Fatalf("AddPattern: %v", err)
	}
	g := b.Graph()
	a := graphVertex(g, 1)
	bb := graphVertex(g, 2)
	if !g.HasEdge(b.Start(), a) || !g.HasEdge(b.Start(), bb) {
		t.Fatal("start should reach both alternation branches")
	}
	if !g.Label(a).IsMatch || !g.Label(bb).IsMatch {
		t.Fatal("both branches should be match vertices")
	}
}

func TestGreedyStarAddsSelfLoopEagerly(t *testing.T) {
	b := NewBuilder()
	// A bare a* is nullable at the top level and gets rejected (same as
	// a?, below) — concatenate with a mandatory literal so the whole
	// pattern requires at least one byte, and inspect the star's vertex.
	star := pattern.NewRepetition(lit('a'), 0, pattern.Unbounded, true)
	tree := pattern.NewConcatenation(star, lit('b'))
	if err := b.AddPattern(0, asciiPattern("a*b", tree)); err != nil {
		t.Fatalf("AddPattern: %v", err)
	}
	g := b.Graph()
	a := graphVertex(g, 1)
	if !g.HasEdge(a, a) {
		t.Fatal("greedy a* should have a self-loop on its one vertex")
	}
	if !g.HasEdge(b.Start(), a) {
		t.Fatal("start should reach the loop body directly (min=0)")
	}
}

func TestNullableTopLevelStarIsRejectedAsEmptyPattern(t *testing.T) {
	b := NewBuilder()
	tree := pattern.NewRepetition(lit('a'), 0, pattern.Unbounded, true)
	err := b.AddPattern(0, asciiPattern("a*", tree))
	ce, ok := err.(*pattern.CompileError)
	if !ok {
		t.Fatalf("expected *pattern.CompileError, got %v", err)
	}
	if ce.Kind != pattern.ErrEmptyPattern {
		t.Fatalf("expected ErrEmptyPattern for a top-level a*, got %v", ce.Kind)
	}
}

func TestLazyPlusDefersLoopEdgeButStillAddsIt(t *testing.T) {
	b := NewBuilder()
	tree := pattern.NewRepetition(lit('a'), 1, pattern.Unbounded, false)
	if err := b.AddPattern(0, asciiPattern("a+?", tree)); err != nil {
		t.Fatalf("AddPattern: %v", err)
	}
	g := b.Graph()
	a := graphVertex(g, 1)
	if !g.HasEdge(a, a) {
		t.Fatal("lazy a+? should still have a self-loop once flushed")
	}
}

func TestBoundedRepetitionUnrollsMandatoryAndOptionalCopies(t *testing.T) {
	b := NewBuilder()
	tree := pattern.NewRepetition(lit('a'), 2, 4, true)
	if err := b.AddPattern(0, asciiPattern("a{2,4}", tree)); err != nil {
		t.Fatalf("AddPattern: %v", err)
	}
	g := b.Graph()
	// start + 4 copies of 'a' = 5 vertices
	if g.NumVertices() != 5 {
		t.Fatalf("NumVertices() = %d, want 5", g.NumVertices())
	}
	// every copy from the 2nd mandatory one onward should be a match vertex
	matchCount := 0
	for _, v := range g.Vertices() {
		if g.Label(v).IsMatch {
			matchCount++
		}
	}
	if matchCount != 3 {
		t.Fatalf("expected 3 match vertices (copies 2,3,4), got %d", matchCount)
	}
}

func TestExactZeroZeroRepetitionIsRejectedAsEmptyPattern(t *testing.T) {
	b := NewBuilder()
	tree := pattern.NewRepetition(lit('a'), 0, 0, true)
	err := b.AddPattern(0, asciiPattern("a{0}", tree))
	ce, ok := err.(*pattern.CompileError)
	if !ok {
		t.Fatalf("expected *pattern.CompileError, got %v", err)
	}
	if ce.Kind != pattern.ErrEmptyPattern {
		t.Fatalf("expected ErrEmptyPattern, got %v", ce.Kind)
	}
}

func TestOptionalWrapperIsRejectedWhenWholePatternIsSkippable(t *testing.T) {
	b := NewBuilder()
	tree := pattern.NewRepetition(lit('a'), 0, 1, true)
	err := b.AddPattern(0, asciiPattern("a?", tree))
	ce, ok := err.(*pattern.CompileError)
	if !ok {
		t.Fatalf("expected *pattern.CompileError, got %v", err)
	}
	if ce.Kind != pattern.ErrEmptyPattern {
		t.Fatalf("expected ErrEmptyPattern for a top-level a?, got %v", ce.Kind)
	}
}

func TestCharClassUsesBytesetDirectly(t *testing.T) {
	b := NewBuilder()
	var bs bitset.ByteSet
	bs.AddRange('a', 'z')
	tree := pattern.NewCharClass(bs, "[a-z]")
	if err := b.AddPattern(0, asciiPattern("[a-z]", tree)); err != nil {
		t.Fatalf("AddPattern: %v", err)
	}
	g := b.Graph()
	v := graphVertex(g, 1)
	if !g.Label(v).Transition.Matches('m') {
		t.Fatal("charclass vertex should match 'm'")
	}
	if g.Label(v).Transition.Matches('0') {
		t.Fatal("charclass vertex should not match '0'")
	}
}

func TestMultiplePatternsGetDistinctLabels(t *testing.T) {
	b := NewBuilder()
	if err := b.AddPattern(0, asciiPattern("a", lit('a'))); err != nil {
		t.Fatalf("AddPattern(0): %v", err)
	}
	if err := b.AddPattern(1, asciiPattern("b", lit('b'))); err != nil {
		t.Fatalf("AddPattern(1): %v", err)
	}
	g := b.Graph()
	a := graphVertex(g, 1)
	bb := graphVertex(g, 2)
	if g.Label(a).Label != 0 || g.Label(bb).Label != 1 {
		t.Fatalf("expected labels 0 and 1, got %d and %d", g.Label(a).Label, g.Label(bb).Label)
	}
}

// graphVertex is a tiny test helper: vertex IDs are allocated in creation
// order starting at 0 (the start sentinel), so index i is simply Vertex(i).
func graphVertex(g *Graph, i int) graph.Vertex {
	return graph.Vertex(i)
}
