// Package pattern defines the parse-tree node vocabulary NfaBuilder
// consumes and the Pattern/Set types used to accumulate patterns before
// compilation. It owns vocabulary only: parsing a regex surface syntax
// into a Node tree is an external collaborator's job.
package pattern

import "github.com/coregx/bxgrep/bitset"

// Kind identifies which shape a Node takes. Only the fields relevant to
// Kind are populated on any given Node; the rest are zero.
type Kind int

const (
	// Regexp is the root of a pattern's tree; Left holds the body.
	Regexp Kind = iota
	// Alternation matches Left or Right.
	Alternation
	// Concatenation matches Left followed by Right.
	Concatenation
	// Repetition matches Left between Min and Max times (Max < 0 means
	// unbounded) greedily or lazily per Greedy.
	Repetition
	// Dot matches any single encoded codepoint.
	Dot
	// CharClass matches any codepoint in Byteset; Label is an optional
	// display name (e.g. "\\d") carried through to diagnostics.
	CharClass
	// Literal matches exactly one codepoint.
	Literal
)

func (k Kind) String() string {
	switch k {
	case Regexp:
		return "REGEXP"
	case Alternation:
		return "ALTERNATION"
	case Concatenation:
		return "CONCATENATION"
	case Repetition:
		return "REPETITION"
	case Dot:
		return "DOT"
	case CharClass:
		return "CHAR_CLASS"
	case Literal:
		return "LITERAL"
	default:
		return "UNKNOWN"
	}
}

// Unbounded is the Max value denoting an unbounded repetition (the "∞" in
// {min,∞}).
const Unbounded = -1

// Node is one parse-tree node. Field names match the vocabulary an
// external parser is expected to produce: kind, left, right, min, max,
// greedy, codepoint, byteset.
type Node struct {
	Kind  Kind
	Left  *Node
	Right *Node

	// Repetition bounds.
	Min    int
	Max    int
	Greedy bool

	// Literal.
	Codepoint rune

	// CharClass.
	Byteset bitset.ByteSet
	Label   string
}

// NewLiteral returns a Literal node for cp.
func NewLiteral(cp rune) *Node {
	return &Node{Kind: Literal, Codepoint: cp}
}

// NewDot returns a Dot node.
func NewDot() *Node {
	return &Node{Kind: Dot}
}

// NewCharClass returns a CharClass node over bs, with an optional label.
func NewCharClass(bs bitset.ByteSet, label string) *Node {
	return &Node{Kind: CharClass, Byteset: bs, Label: label}
}

// NewConcatenation returns a Concatenation node of left then right.
func NewConcatenation(left, right *Node) *Node {
	return &Node{Kind: Concatenation, Left: left, Right: right}
}

// NewAlternation returns an Alternation node of left or right.
func NewAlternation(left, right *Node) *Node {
	return &Node{Kind: Alternation, Left: left, Right: right}
}

// NewRepetition returns a Repetition node of body, repeated [min,max]
// times (max == Unbounded for no upper bound), greedily or lazily.
func NewRepetition(body *Node, min, max int, greedy bool) *Node {
	return &Node{Kind: Repetition, Left: body, Min: min, Max: max, Greedy: greedy}
}

// NewRegexp returns the root node wrapping body.
func NewRegexp(body *Node) *Node {
	return &Node{Kind: Regexp, Left: body}
}
