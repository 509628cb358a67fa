package pattern

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel error kinds, matched via errors.Is against CompileError.Unwrap.
var (
	// ErrEmptyPattern is returned when a pattern admits only the empty
	// match (rejected per the single-inbound-predicate invariant: a
	// start vertex that is also a match vertex).
	ErrEmptyPattern = errors.New("bxgrep/pattern: pattern admits only the empty match")

	// ErrEncodingUnknown is returned when a pattern names an encoding not
	// in the encoder catalog.
	ErrEncodingUnknown = errors.New("bxgrep/pattern: unknown encoding")

	// ErrEncodingNonRepresentable is returned when a literal codepoint has
	// no encoding under one of the pattern's requested encoders.
	ErrEncodingNonRepresentable = errors.New("bxgrep/pattern: codepoint not representable in encoding")
)

// CompileError reports a single pattern's compile-time failure, carrying
// enough context for a caller to locate the offending pattern: its
// userIndex, an optional source name, the expression text, and the
// encoding in play when the error occurred.
type CompileError struct {
	Kind       error
	UserIndex  uint64
	Source     string
	Expression string
	Encoding   string
	Detail     string
}

func (e *CompileError) Error() string {
	var b strings.Builder
	if e.Source != "" {
		fmt.Fprintf(&b, "%s: ", e.Source)
	}
	fmt.Fprintf(&b, "pattern %d (%q)", e.UserIndex, e.Expression)
	if e.Encoding != "" {
		fmt.Fprintf(&b, " [%s]", e.Encoding)
	}
	fmt.Fprintf(&b, ": %v", e.Kind)
	if e.Detail != "" {
		fmt.Fprintf(&b, ": %s", e.Detail)
	}
	return b.String()
}

func (e *CompileError) Unwrap() error {
	return e.Kind
}

// ErrorList accumulates the per-pattern errors produced while adding a
// batch of patterns, preserving the order they occurred in.
type ErrorList struct {
	Errors []*CompileError
}

func (l *ErrorList) Error() string {
	if len(l.Errors) == 1 {
		return l.Errors[0].Error()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d pattern errors:", len(l.Errors))
	for _, e := range l.Errors {
		fmt.Fprintf(&b, "\n  %s", e.Error())
	}
	return b.String()
}

func (l *ErrorList) add(e *CompileError) {
	l.Errors = append(l.Errors, e)
}

func (l *ErrorList) asError() error {
	if len(l.Errors) == 0 {
		return nil
	}
	return l
}
