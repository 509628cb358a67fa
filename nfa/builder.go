// Package nfa builds the vertex-labeled NFA that the Compiler and CodeGen
// packages turn into a runnable program: one vertex per consumed byte
// position, carrying its own single-byte predicate, with edges between
// vertices ordered to encode alternation priority.
//
// Builder walks an already-parsed pattern.Node tree directly, producing
// one Fragment per subtree via ordinary recursion rather than the
// teacher's token-stream-driven AddXxx/Patch calls against an explicit
// Fragment stack — there is no lexer feeding tokens one at a time here,
// the whole tree is already in hand, so recursive descent plays the same
// role the teacher's stack discipline does.
package nfa

import (
	"fmt"
	"unicode"

	"github.com/coregx/bxgrep/bitset"
	"github.com/coregx/bxgrep/encoding"
	"github.com/coregx/bxgrep/graph"
	"github.com/coregx/bxgrep/pattern"
	"github.com/coregx/bxgrep/program"
	"github.com/coregx/bxgrep/transition"
)

// UnsetLabel marks a vertex that carries no pattern label.
const UnsetLabel = program.UnsetLabel

// VertexData is the payload carried by every graph vertex: the single-byte
// predicate consumed to enter it (nil only for the start sentinel), its
// pattern label (a compile-order index, not the caller's UserIndex — that
// mapping lives in the pattern table built alongside the program), and
// whether it is an accept vertex.
type VertexData struct {
	Transition transition.Transition
	Label      uint32
	IsMatch    bool

	// LazyLoop marks a vertex that is the exit point of a non-greedy
	// repetition's self-loop: if it ever becomes a pattern's own accept
	// vertex (nothing follows the repetition), CodeGen commits the match
	// there immediately instead of extending it through the loop edge.
	LazyLoop bool
}

// String renders d for diagnostics (e.g. graph.Graph.WriteDOT).
func (d VertexData) String() string {
	if d.Transition == nil {
		return "start"
	}
	s := d.Transition.String()
	if d.IsMatch {
		s += fmt.Sprintf(" match(%d)", d.Label)
	}
	return s
}

// Graph is the NFA's underlying vertex-labeled graph.
type Graph = graph.Graph[VertexData]

// Builder accumulates one NFA across however many patterns are added to
// it, sharing a single start sentinel per invariant 1 (in-degree 0, no
// transition).
type Builder struct {
	g     *Graph
	start graph.Vertex
}

// NewBuilder returns a Builder with only the start sentinel present.
func NewBuilder() *Builder {
	g := graph.New[VertexData]()
	start := g.AddVertex(VertexData{Label: UnsetLabel})
	return &Builder{g: g, start: start}
}

// Graph returns the graph built so far.
func (b *Builder) Graph() *Graph { return b.g }

// Start returns the shared start sentinel.
func (b *Builder) Start() graph.Vertex { return b.start }

// AddPattern compiles p's parse tree into the shared graph, wiring the
// start sentinel to the pattern's entry vertices and tagging its accept
// vertices with patternIndex (p's position in the caller's pattern table,
// not p.UserIndex — the program's pattern table maps the former to the
// latter at hit-reporting time). It returns *pattern.CompileError wrapping
// pattern.ErrEmptyPattern or pattern.ErrEncodingNonRepresentable/
// pattern.ErrEncodingUnknown on failure; the graph is left unmodified by a
// failed call beyond any vertices already allocated for the failed
// pattern, which simply become unreachable dead weight — acceptable since
// Builder graphs are write-once and never rebuilt in place.
func (b *Builder) AddPattern(patternIndex uint32, p pattern.Pattern) error {
	if p.Tree == nil {
		return &pattern.CompileError{
			Kind: pattern.ErrEmptyPattern, UserIndex: p.UserIndex, Expression: p.Expression,
			Detail: "nil parse tree",
		}
	}
	root := p.Tree
	if root.Kind == pattern.Regexp {
		root = root.Left
	}
	if root == nil {
		return &pattern.CompileError{
			Kind: pattern.ErrEmptyPattern, UserIndex: p.UserIndex, Expression: p.Expression,
		}
	}

	encoders := make([]encoding.Encoder, 0, len(p.Encodings))
	for _, name := range p.Encodings {
		enc, ok := encoding.ByName(name)
		if !ok {
			return &pattern.CompileError{
				Kind: pattern.ErrEncodingUnknown, UserIndex: p.UserIndex,
				Expression: p.Expression, Encoding: name,
			}
		}
		encoders = append(encoders, enc)
	}

	frag, err := b.compile(root, encoders, p.CaseInsensitive)
	if err != nil {
		if nr, ok := err.(*encoding.NonRepresentableError); ok {
			return &pattern.CompileError{
				Kind: pattern.ErrEncodingNonRepresentable, UserIndex: p.UserIndex,
				Expression: p.Expression, Encoding: nr.Encoding, Detail: nr.Error(),
			}
		}
		return &pattern.CompileError{
			Kind: pattern.ErrEncodingNonRepresentable, UserIndex: p.UserIndex,
			Expression: p.Expression, Detail: err.Error(),
		}
	}

	b.flushPending(&frag)

	if len(frag.in) == 0 || frag.skippable {
		return &pattern.CompileError{
			Kind: pattern.ErrEmptyPattern, UserIndex: p.UserIndex, Expression: p.Expression,
		}
	}

	for _, v := range frag.in {
		if !b.g.HasEdge(b.start, v) {
			b.g.AddEdge(b.start, v)
		}
	}
	for _, v := range frag.out {
		data := b.g.Label(v)
		data.IsMatch = true
		data.Label = patternIndex
		b.g.SetLabel(v, data)
	}
	return nil
}

// compile walks one subtree into a fresh Fragment.
func (b *Builder) compile(n *pattern.Node, encs []encoding.Encoder, caseFold bool) (fragment, error) {
	switch n.Kind {
	case pattern.Literal:
		return b.compileLiteral(n.Codepoint, encs, caseFold)
	case pattern.Dot:
		return b.compileDot(encs)
	case pattern.CharClass:
		return b.compileCharClass(n)
	case pattern.Concatenation:
		left, err := b.compile(n.Left, encs, caseFold)
		if err != nil {
			return fragment{}, err
		}
		right, err := b.compile(n.Right, encs, caseFold)
		if err != nil {
			return fragment{}, err
		}
		return b.concat(left, right), nil
	case pattern.Alternation:
		left, err := b.compile(n.Left, encs, caseFold)
		if err != nil {
			return fragment{}, err
		}
		right, err := b.compile(n.Right, encs, caseFold)
		if err != nil {
			return fragment{}, err
		}
		return b.alternate(left, right), nil
	case pattern.Repetition:
		return b.compileRepetition(n, encs, caseFold)
	case pattern.Regexp:
		return b.compile(n.Left, encs, caseFold)
	default:
		return fragment{}, fmt.Errorf("bxgrep/nfa: unsupported node kind %v", n.Kind)
	}
}

// concat implements the concatenation combinator: f2's in-vertices become
// reachable from every one of f1's out-vertices (deduplicated — invariant
// 3 forbids parallel edges into the same predicate), skippability of
// either side leaks its neighbor's in/out list into the combined one so a
// skippable operand acts as a true no-op.
func (b *Builder) concat(f1, f2 fragment) fragment {
	for _, u := range f1.out {
		for _, v := range f2.in {
			if !b.g.HasEdge(u, v) {
				b.g.AddEdge(u, v)
			}
		}
	}
	in := append([]graph.Vertex{}, f1.in...)
	if f1.skippable {
		in = unionVertices(in, f2.in)
	}
	out := append([]graph.Vertex{}, f2.out...)
	if f2.skippable {
		out = unionVertices(out, f1.out)
	}
	return fragment{
		in:        in,
		out:       out,
		skippable: f1.skippable && f2.skippable,
		pending:   append(append([]backEdge{}, f1.pending...), f2.pending...),
	}
}

// alternate implements the alternation combinator: left-priority edge
// order is preserved by appending f1's vertices before f2's in every
// union.
func (b *Builder) alternate(f1, f2 fragment) fragment {
	return fragment{
		in:        unionVertices(f1.in, f2.in),
		out:       unionVertices(f1.out, f2.out),
		skippable: f1.skippable || f2.skippable,
		pending:   append(append([]backEdge{}, f1.pending...), f2.pending...),
	}
}

// flushPending adds every deferred back-edge now that the whole pattern
// has been compiled, so a non-greedy repetition's loop-back edge always
// lands after any continuation edge it received along the way.
func (b *Builder) flushPending(f *fragment) {
	for _, e := range f.pending {
		if !b.g.HasEdge(e.from, e.to) {
			b.g.AddEdge(e.from, e.to)
		}
	}
	f.pending = nil
}

// addRepeatEdge wires a repetition's "try again" edge: added immediately
// (ahead of any continuation edge added later by an enclosing
// concatenation) for greedy, or deferred until flushPending for
// non-greedy, so continuation always outranks another repeat.
func (b *Builder) addRepeatEdge(from, to graph.Vertex, greedy bool, frag *fragment) {
	if greedy {
		if !b.g.HasEdge(from, to) {
			b.g.AddEdge(from, to)
		}
		return
	}
	frag.pending = append(frag.pending, backEdge{from: from, to: to})
}

func (b *Builder) compileCharClass(n *pattern.Node) (fragment, error) {
	tr, err := transition.Narrow(n.Byteset)
	if err != nil {
		return fragment{}, err
	}
	if n.Label != "" {
		if bst, ok := tr.(transition.ByteSetTrans); ok {
			bst.Label = n.Label
			tr = bst
		}
	}
	v := b.g.AddVertex(VertexData{Transition: tr, Label: UnsetLabel})
	return fragment{in: []graph.Vertex{v}, out: []graph.Vertex{v}}, nil
}

func (b *Builder) compileDot(encs []encoding.Encoder) (fragment, error) {
	var paths []encoding.EncodedPath
	for _, enc := range encs {
		p, err := enc.EncodeRange(0, encoding.MaxCodepoint)
		if err != nil {
			return fragment{}, err
		}
		paths = append(paths, p...)
	}
	return b.buildAlternatePaths(paths)
}

func (b *Builder) compileLiteral(cp rune, encs []encoding.Encoder, caseFold bool) (fragment, error) {
	cps := []rune{cp}
	if caseFold {
		cps = foldOrbit(cp)
	}
	var paths []encoding.EncodedPath
	for _, enc := range encs {
		for _, c := range cps {
			p, err := enc.EncodeRange(c, c)
			if err != nil {
				return fragment{}, err
			}
			paths = append(paths, p...)
		}
	}
	if len(paths) == 0 {
		return fragment{}, fmt.Errorf("bxgrep/nfa: literal U+%04X produced no encoded path", cp)
	}
	return b.buildAlternatePaths(paths)
}

// buildAlternatePaths turns a set of alternative byte-range-step chains
// (e.g. one per case-fold orbit member, or one per requested encoding)
// into a single Fragment, each chain a Fragment of its own first, unioned
// left to right.
func (b *Builder) buildAlternatePaths(paths []encoding.EncodedPath) (fragment, error) {
	var combined fragment
	for i, p := range paths {
		chain := b.buildChain(p)
		if i == 0 {
			combined = chain
			continue
		}
		combined = b.alternate(combined, chain)
	}
	return combined, nil
}

// buildChain lays one EncodedPath out as a linear chain of fresh vertices,
// one per byte-range step, each narrowed to its most compact Transition.
func (b *Builder) buildChain(path encoding.EncodedPath) fragment {
	var first, prev graph.Vertex
	for i, step := range path {
		var bs bitset.ByteSet
		bs.AddRange(step.Lo, step.Hi)
		tr, _ := transition.Narrow(bs) // Lo<=Hi guaranteed by the encoder, never empty
		v := b.g.AddVertex(VertexData{Transition: tr, Label: UnsetLabel})
		if i == 0 {
			first = v
		} else {
			b.g.AddEdge(prev, v)
		}
		prev = v
	}
	return fragment{in: []graph.Vertex{first}, out: []graph.Vertex{prev}}
}

// foldOrbit returns cp followed by every other codepoint unicode.SimpleFold
// reaches before cycling back, the case-insensitive equivalence class cp
// belongs to.
func foldOrbit(cp rune) []rune {
	orbit := []rune{cp}
	for f := unicode.SimpleFold(cp); f != cp; f = unicode.SimpleFold(f) {
		orbit = append(orbit, f)
	}
	return orbit
}
