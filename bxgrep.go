// Package bxgrep compiles a set of patterns into a single runnable
// program and wraps it in a Vm ready to search byte streams: pattern.Set
// accumulates patterns, nfa.Builder lowers each into a shared NFA,
// compiler.Compiler determinizes it into a per-byte-class DFA-like graph,
// and codegen.Generate lowers that into a program.Program the vm package
// executes. A Compile call walks that whole pipeline in one step.
package bxgrep

import (
	"github.com/coregx/bxgrep/codegen"
	"github.com/coregx/bxgrep/compiler"
	"github.com/coregx/bxgrep/internal/conv"
	"github.com/coregx/bxgrep/nfa"
	"github.com/coregx/bxgrep/pattern"
	"github.com/coregx/bxgrep/prefilter"
	"github.com/coregx/bxgrep/program"
	"github.com/coregx/bxgrep/vm"
)

// Engine is a compiled pattern set ready to search byte streams. Program
// is immutable and safe to share across goroutines, each driving its own
// Vm via NewSearcher.
type Engine struct {
	Program *program.Program

	// prefilter accelerates Searcher.Search's fast-skip step; nil when no
	// pattern in the set had an extractable literal factor.
	prefilter *prefilter.Prefilter
}

// Compile lowers every pattern in ps (in compile order) into one Engine.
// It stops at the first pattern that fails to compile — an empty pattern,
// an unknown encoding, or a codepoint no named encoding can represent —
// and returns that pattern's *pattern.CompileError.
func Compile(ps *pattern.Set) (*Engine, error) {
	patterns := ps.Patterns()

	builder := nfa.NewBuilder()
	infos := make([]program.PatternInfo, len(patterns))
	for i, p := range patterns {
		if err := builder.AddPattern(conv.IntToUint32(i), p); err != nil {
			return nil, err
		}
		infos[i] = patternInfo(p)
	}

	det := compiler.New()
	detGraph, detStart := det.Compile(builder.Graph(), builder.Start())

	prog := codegen.Generate(detGraph, detStart, infos)

	pf, _ := prefilter.Build(patterns)

	return &Engine{Program: prog, prefilter: pf}, nil
}

func patternInfo(p pattern.Pattern) program.PatternInfo {
	encoding := ""
	for i, name := range p.Encodings {
		if i > 0 {
			encoding += ","
		}
		encoding += name
	}
	return program.PatternInfo{
		Expression:      p.Expression,
		Encoding:        encoding,
		UserIndex:       p.UserIndex,
		CaseInsensitive: p.CaseInsensitive,
		FixedString:     p.FixedString,
	}
}

// NewSearcher returns a Vm bound to e's program, with e's prefilter (if
// any) already installed.
func (e *Engine) NewSearcher() *vm.Vm {
	v := vm.New(e.Program, vm.DefaultConfig())
	if e.prefilter != nil {
		v.SetPrefilter(e.prefilter)
	}
	return v
}

// Search runs one full, blocking-independent search of haystack against
// e's program, reporting every leftmost-longest, non-overlapping match
// through hit.
func (e *Engine) Search(haystack []byte, hit vm.HitCallback) {
	v := e.NewSearcher()
	v.Search(haystack, 0, hit)
	v.CloseOut(hit)
}
