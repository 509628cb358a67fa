package pattern

import "github.com/coregx/bxgrep/encoding"

// ErrorPolicy controls how AddPatternList behaves when a pattern in the
// batch fails validation.
type ErrorPolicy int

const (
	// FailFast stops at the first invalid pattern and returns its error
	// alone; patterns before it in the batch are still added to the Set.
	FailFast ErrorPolicy = iota
	// CollectAll validates every pattern in the batch, skips the invalid
	// ones, and returns an *ErrorList of everything that failed.
	CollectAll
)

// Config configures a Set's validation behavior.
type Config struct {
	policy ErrorPolicy
}

// Option configures a Config.
type Option func(*Config)

// WithErrorPolicy sets how AddPatternList handles per-pattern failures.
func WithErrorPolicy(p ErrorPolicy) Option {
	return func(c *Config) { c.policy = p }
}

// Set accumulates Patterns added one at a time or in batches, assigning
// each an implicit compile-order position while preserving the caller's
// UserIndex verbatim. It is the ledger NfaBuilder and Compiler walk in
// order to produce one NFA per pattern, modeled on the teacher's
// PatternMap: an ordered, validate-on-insert accumulator rather than a
// bare slice.
type Set struct {
	cfg      Config
	patterns []Pattern
}

// NewSet returns an empty Set configured by opts (default: FailFast).
func NewSet(opts ...Option) *Set {
	s := &Set{}
	for _, opt := range opts {
		opt(&s.cfg)
	}
	return s
}

// Len returns the number of patterns currently in the set.
func (s *Set) Len() int { return len(s.patterns) }

// Patterns returns the patterns added so far, in compile order.
func (s *Set) Patterns() []Pattern {
	return s.patterns
}

// AddPattern validates and appends a single pattern, returning its
// compile-order index. Validation at this stage is limited to what can be
// checked without building an NFA: every named encoding must be known.
// EmptyPattern and EncodingNonRepresentable are detected later, by
// NfaBuilder, once the parse tree and a resolved Encoder are available.
func (s *Set) AddPattern(p Pattern) (int, error) {
	if err := s.validate(p); err != nil {
		return -1, err
	}
	s.patterns = append(s.patterns, p)
	return len(s.patterns) - 1, nil
}

// AddPatternList adds every pattern in ps, honoring the Set's configured
// ErrorPolicy. Under FailFast, it stops at (and returns) the first error;
// patterns validated before the failure remain in the Set. Under
// CollectAll, every pattern is attempted and all failures are returned
// together as an *ErrorList; valid patterns are still added.
func (s *Set) AddPatternList(ps []Pattern) error {
	if s.cfg.policy == FailFast {
		for _, p := range ps {
			if _, err := s.AddPattern(p); err != nil {
				return err
			}
		}
		return nil
	}

	var errs ErrorList
	for _, p := range ps {
		if _, err := s.AddPattern(p); err != nil {
			if ce, ok := err.(*CompileError); ok {
				errs.add(ce)
			}
		}
	}
	return errs.asError()
}

func (s *Set) validate(p Pattern) error {
	if len(p.Encodings) == 0 {
		return &CompileError{
			Kind:       ErrEncodingUnknown,
			UserIndex:  p.UserIndex,
			Expression: p.Expression,
			Detail:     "no encodings specified",
		}
	}
	for _, name := range p.Encodings {
		if _, ok := encoding.ByName(name); !ok {
			return &CompileError{
				Kind:       ErrEncodingUnknown,
				UserIndex:  p.UserIndex,
				Expression: p.Expression,
				Encoding:   name,
			}
		}
	}
	return nil
}
