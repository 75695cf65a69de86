// Package match applies textual patterns to file contents and produces located chunks.
//
// Patterns use Perl/Python-compatible syntax (lookarounds, backreferences) through
// regexp2. Matching is purely textual; scanned code is never executed.
package match

import (
	"fmt"
	"time"

	"github.com/dlclark/regexp2"
)

// DefaultMatchTimeout bounds a single pattern run over one file.
const DefaultMatchTimeout = 10 * time.Second

// PatternError reports a malformed pattern. It signals a bug in a rule definition.
type PatternError struct {
	Expr string
	Err  error
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("invalid pattern %q: %v", e.Expr, e.Err)
}

func (e *PatternError) Unwrap() error {
	return e.Err
}

// RegexPattern is a compiled pattern plus its matching mode. It is immutable.
type RegexPattern struct {
	expr       string
	multiline  bool
	ignoreCase bool
	re         *regexp2.Regexp
}

type patternConfig struct {
	multiline  bool
	ignoreCase bool
	timeout    time.Duration
}

// PatternOption configures a RegexPattern.
type PatternOption func(*patternConfig)

// WithMultiline lets matches span lines and anchors ^ and $ at line boundaries.
// Without it the pattern is applied to one line at a time.
func WithMultiline() PatternOption {
	return func(c *patternConfig) {
		c.multiline = true
	}
}

// WithIgnoreCase makes the pattern case-insensitive.
func WithIgnoreCase() PatternOption {
	return func(c *patternConfig) {
		c.ignoreCase = true
	}
}

// WithMatchTimeout overrides DefaultMatchTimeout. Non-positive values are ignored.
func WithMatchTimeout(d time.Duration) PatternOption {
	return func(c *patternConfig) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// NewRegexPattern compiles expr. A malformed expression yields a *PatternError.
func NewRegexPattern(expr string, opts ...PatternOption) (*RegexPattern, error) {
	cfg := patternConfig{timeout: DefaultMatchTimeout}
	for _, opt := range opts {
		opt(&cfg)
	}

	if expr == "" {
		return nil, &PatternError{Expr: expr, Err: fmt.Errorf("empty pattern")}
	}

	flags := regexp2.None
	if cfg.multiline {
		flags |= regexp2.Multiline
	}
	if cfg.ignoreCase {
		flags |= regexp2.IgnoreCase
	}

	re, err := regexp2.Compile(expr, flags)
	if err != nil {
		return nil, &PatternError{Expr: expr, Err: err}
	}
	re.MatchTimeout = cfg.timeout

	return &RegexPattern{
		expr:       expr,
		multiline:  cfg.multiline,
		ignoreCase: cfg.ignoreCase,
		re:         re,
	}, nil
}

// MustRegexPattern is like NewRegexPattern but panics on a malformed expression.
// Use it for rule tables compiled at init time.
func MustRegexPattern(expr string, opts ...PatternOption) *RegexPattern {
	p, err := NewRegexPattern(expr, opts...)
	if err != nil {
		panic(err)
	}
	return p
}

// Expr returns the source expression.
func (p *RegexPattern) Expr() string {
	return p.expr
}

// IsMultiline reports whether matches may span lines.
func (p *RegexPattern) IsMultiline() bool {
	return p.multiline
}

// IsIgnoreCase reports whether matching is case-insensitive.
func (p *RegexPattern) IsIgnoreCase() bool {
	return p.ignoreCase
}

func (p *RegexPattern) String() string {
	mode := "line"
	if p.multiline {
		mode = "multiline"
	}
	if p.ignoreCase {
		mode += ",ignorecase"
	}
	return fmt.Sprintf("/%s/ (%s)", p.expr, mode)
}
