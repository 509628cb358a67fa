package pattern

// Pattern is one request to compile an expression into the engine: a
// parse tree's source text, the ordered encodings it must be matched
// against, case-folding/fixed-string flags, and the caller's opaque
// identifier returned verbatim on every hit.
type Pattern struct {
	Expression      string
	Encodings       []string
	CaseInsensitive bool
	FixedString     bool
	UserIndex       uint64

	// Tree is the parse tree to compile. Producing it is an external
	// parser's responsibility; Set only stores and validates it.
	Tree *Node
}
