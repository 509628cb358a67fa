// Package prefilter wraps a multi-literal Aho-Corasick automaton around the
// literal factors extracted from a pattern set, giving Vm.Search a faster
// way to jump to the next offset worth trying than scanning byte by byte.
//
// A Prefilter never decides a match: it only promises that some pattern's
// required literal begins at the position it returns. The Vm always
// re-verifies with its own thread simulation, so a Prefilter built here can
// never change which matches are reported, only how quickly the scan
// reaches the positions where they start.
package prefilter

import (
	"github.com/coregx/ahocorasick"
	"github.com/coregx/bxgrep/encoding"
	"github.com/coregx/bxgrep/pattern"
)

// Prefilter accelerates candidate discovery with a multi-literal automaton
// built from every pattern's extractable literal factor.
type Prefilter struct {
	automaton *ahocorasick.Automaton
}

// Match is the next candidate position reported by Find.
type Match struct {
	Start, End int
}

// Build constructs a Prefilter over ps. ok is false when at least one
// pattern has no extractable literal factor (it opens with a character
// class, a repetition, or is case-insensitive) — skipping ahead would then
// risk passing over a genuine match for that pattern that starts without a
// literal ever appearing, so no prefilter is built at all.
func Build(ps []pattern.Pattern) (pf *Prefilter, ok bool) {
	if len(ps) == 0 {
		return nil, false
	}

	builder := ahocorasick.NewBuilder()
	added := 0
	for _, p := range ps {
		lits, ok := literalFactors(p)
		if !ok {
			return nil, false
		}
		for _, lit := range lits {
			builder.AddPattern(lit)
			added++
		}
	}
	if added == 0 {
		return nil, false
	}

	auto, err := builder.Build()
	if err != nil {
		return nil, false
	}
	return &Prefilter{automaton: auto}, true
}

// Find returns the next position at or after from where some pattern's
// literal factor begins, or ok=false if none occurs in haystack[from:].
func (p *Prefilter) Find(haystack []byte, from int) (m Match, ok bool) {
	found := p.automaton.Find(haystack, from)
	if found == nil {
		return Match{}, false
	}
	return Match{Start: found.Start, End: found.End}, true
}

// literalFactors returns, for each of p's encodings, the byte sequence that
// must appear for p to have any chance of matching: the literal run formed
// by walking p.Tree's leftmost concatenation spine up to the first
// non-literal node. For a FixedString pattern this walk consumes the whole
// tree; for others it yields whatever literal prefix exists, which is
// still always a safe (if partial) requirement. ok is false if no
// encoding yields a usable non-empty literal.
func literalFactors(p pattern.Pattern) (lits [][]byte, ok bool) {
	if p.Tree == nil || p.CaseInsensitive {
		return nil, false
	}

	body := p.Tree
	if body.Kind == pattern.Regexp {
		body = body.Left
	}
	if body == nil {
		return nil, false
	}

	codepoints, _ := literalPrefix(body)
	if len(codepoints) == 0 {
		return nil, false
	}

	for _, name := range p.Encodings {
		enc, known := encoding.ByName(name)
		if !known {
			return nil, false
		}
		lit, encoded := encodeLiteralRun(codepoints, enc)
		if !encoded {
			return nil, false
		}
		lits = append(lits, lit)
	}
	return lits, len(lits) > 0
}

// literalPrefix returns the codepoints making up the longest literal run
// reachable from n by walking through Concatenation nodes, and whether
// that run consumed n entirely. A parent concatenation may only fold in
// codepoints from its right side once the left side came back "full" —
// otherwise the literal run stops wherever it first met something other
// than a Literal.
func literalPrefix(n *pattern.Node) (codepoints []rune, full bool) {
	switch n.Kind {
	case pattern.Literal:
		return []rune{n.Codepoint}, true
	case pattern.Concatenation:
		left, leftFull := literalPrefix(n.Left)
		if !leftFull {
			return left, false
		}
		right, rightFull := literalPrefix(n.Right)
		return append(left, right...), rightFull
	default:
		return nil, false
	}
}

// encodeLiteralRun encodes codepoints through enc one at a time, relying
// on EncodeRange(cp, cp) always yielding exactly one single-byte-per-step
// path (a single codepoint can never straddle an encoding-length
// boundary). ok is false if the encoding can't represent one of the
// codepoints at all.
func encodeLiteralRun(codepoints []rune, enc encoding.Encoder) (lit []byte, ok bool) {
	for _, cp := range codepoints {
		paths, err := enc.EncodeRange(cp, cp)
		if err != nil || len(paths) != 1 {
			return nil, false
		}
		for _, step := range paths[0] {
			if step.Lo != step.Hi {
				return nil, false
			}
			lit = append(lit, step.Lo)
		}
	}
	return lit, len(lit) > 0
}
