// Command bxgrep is a thin driver over the bxgrep engine: enough to
// exercise compilation, search, program serialization, and NFA DOT
// rendering end to end. It accepts only literal substring patterns (no
// regex surface syntax is parsed anywhere in this module) via repeated
// -e flags.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/coregx/bxgrep"
	"github.com/coregx/bxgrep/internal/conv"
	"github.com/coregx/bxgrep/nfa"
	"github.com/coregx/bxgrep/pattern"
	"github.com/coregx/bxgrep/program"
)

type patternFlags []string

func (p *patternFlags) String() string { return fmt.Sprint([]string(*p)) }
func (p *patternFlags) Set(s string) error {
	*p = append(*p, s)
	return nil
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	var err error
	switch os.Args[1] {
	case "search":
		err = runSearch(os.Args[2:])
	case "program":
		err = runProgram(os.Args[2:])
	case "graph":
		err = runGraph(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "bxgrep:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: bxgrep <search|program|graph> -e PATTERN [-e PATTERN ...] [flags]")
}

// buildSet turns each literal pattern string in exprs into a Concatenation
// of Literal nodes matching it byte-for-byte, and accumulates them (in
// order, UserIndex == flag position) into a pattern.Set.
func buildSet(exprs []string, caseInsensitive bool) (*pattern.Set, error) {
	set := pattern.NewSet()
	for i, expr := range exprs {
		if expr == "" {
			return nil, fmt.Errorf("empty -e pattern at index %d", i)
		}
		tree := literalTree(expr)
		p := pattern.Pattern{
			Expression:      expr,
			Encodings:       []string{"ascii"},
			CaseInsensitive: caseInsensitive,
			FixedString:     true,
			UserIndex:       uint64(i),
			Tree:            pattern.NewRegexp(tree),
		}
		if _, err := set.AddPattern(p); err != nil {
			return nil, err
		}
	}
	return set, nil
}

func literalTree(s string) *pattern.Node {
	runes := []rune(s)
	n := pattern.NewLiteral(runes[0])
	for _, r := range runes[1:] {
		n = pattern.NewConcatenation(n, pattern.NewLiteral(r))
	}
	return n
}

func readHaystack(path string) ([]byte, error) {
	if path == "" || path == "-" {
		return os.ReadFile("/dev/stdin")
	}
	return os.ReadFile(path)
}

func runSearch(args []string) error {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	var exprs patternFlags
	fs.Var(&exprs, "e", "literal pattern to search for (repeatable)")
	caseInsensitive := fs.Bool("i", false, "case-insensitive match")
	input := fs.String("f", "-", "input file (default: stdin)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if len(exprs) == 0 {
		return fmt.Errorf("search requires at least one -e pattern")
	}

	set, err := buildSet(exprs, *caseInsensitive)
	if err != nil {
		return err
	}
	engine, err := bxgrep.Compile(set)
	if err != nil {
		return err
	}

	haystack, err := readHaystack(*input)
	if err != nil {
		return err
	}

	engine.Search(haystack, func(start, end, userIndex uint64) {
		fmt.Printf("%d:%d:%d:%q\n", start, end, userIndex, haystack[start:end])
	})
	return nil
}

func runProgram(args []string) error {
	fs := flag.NewFlagSet("program", flag.ExitOnError)
	var exprs patternFlags
	fs.Var(&exprs, "e", "literal pattern to compile (repeatable)")
	caseInsensitive := fs.Bool("i", false, "case-insensitive match")
	output := fs.String("o", "", "write serialized program to this file instead of a summary")
	load := fs.String("load", "", "deserialize a program from this file instead of compiling -e patterns")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var prog *program.Program
	if *load != "" {
		buf, err := os.ReadFile(*load)
		if err != nil {
			return err
		}
		prog, err = program.Deserialize(buf)
		if err != nil {
			return err
		}
	} else {
		if len(exprs) == 0 {
			return fmt.Errorf("program requires at least one -e pattern, or -load")
		}
		set, err := buildSet(exprs, *caseInsensitive)
		if err != nil {
			return err
		}
		engine, err := bxgrep.Compile(set)
		if err != nil {
			return err
		}
		prog = engine.Program
	}

	if *output != "" {
		return os.WriteFile(*output, prog.Serialize(), 0o644)
	}
	fmt.Printf("code bytes: %d\n", len(prog.Code))
	fmt.Printf("checked states: %d\n", prog.NumCheckedStates)
	fmt.Printf("patterns: %d\n", len(prog.Patterns))
	for i, pi := range prog.Patterns {
		fmt.Printf("  [%d] %q encoding=%s userIndex=%d caseInsensitive=%v fixedString=%v\n",
			i, pi.Expression, pi.Encoding, pi.UserIndex, pi.CaseInsensitive, pi.FixedString)
	}
	return nil
}

func runGraph(args []string) error {
	fs := flag.NewFlagSet("graph", flag.ExitOnError)
	var exprs patternFlags
	fs.Var(&exprs, "e", "literal pattern to compile (repeatable)")
	caseInsensitive := fs.Bool("i", false, "case-insensitive match")
	name := fs.String("name", "nfa", "digraph name")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if len(exprs) == 0 {
		return fmt.Errorf("graph requires at least one -e pattern")
	}

	set, err := buildSet(exprs, *caseInsensitive)
	if err != nil {
		return err
	}

	builder := nfa.NewBuilder()
	for i, p := range set.Patterns() {
		if err := builder.AddPattern(conv.IntToUint32(i), p); err != nil {
			return err
		}
	}
	return builder.Graph().WriteDOT(os.Stdout, *name)
}
