package css

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrSyntax is returned (wrapped) when stylesheet block structure is broken.
var ErrSyntax = errors.New("stylesheet syntax error")

// Rule is a qualified rule found in the stylesheet. Selector is the prelude
// text without surrounding whitespace and comments, exactly as in the source
// until changed.
type Rule struct {
	Selector   string // Current selector text
	Original   string // Selector text as parsed
	SourceLine int    // Line number in source for error reporting
}

// Changed reports whether selector differs from the source.
func (r *Rule) Changed() bool {
	return r.Selector != r.Original
}

// StylesheetItem is a single piece of the stylesheet in source order.
// Exactly one of Verbatim or Rule is non-nil.
type StylesheetItem struct {
	Verbatim *string // Source text reproduced as is
	Rule     *Rule   // Rule selector which may be rewritten
}

// Stylesheet is a stylesheet split into rule selectors and everything else.
type Stylesheet struct {
	Items    []StylesheetItem // All pieces in source order
	Warnings []string         // Problems which did not prevent parsing
}

// Rules returns all rules (including nested ones) in source order.
func (s *Stylesheet) Rules() []*Rule {
	var rules []*Rule
	for _, item := range s.Items {
		if item.Rule != nil {
			rules = append(rules, item.Rule)
		}
	}
	return rules
}

// RewriteSelectors calls fn for every rule in source order. fn may change
// Rule.Selector. First error stops processing.
func (s *Stylesheet) RewriteSelectors(fn func(rule *Rule) error) error {
	for _, rule := range s.Rules() {
		if err := fn(rule); err != nil {
			return fmt.Errorf("rule at line %d: %w", rule.SourceLine, err)
		}
	}
	return nil
}

// WriteTo writes the stylesheet to w, implementing io.WriterTo. Output is
// byte identical to the source except for changed selectors.
func (s *Stylesheet) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for _, item := range s.Items {
		var (
			n   int
			err error
		)
		switch {
		case item.Verbatim != nil:
			n, err = io.WriteString(w, *item.Verbatim)
		case item.Rule != nil:
			n, err = io.WriteString(w, item.Rule.Selector)
		}
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// String returns the CSS text of the stylesheet.
func (s *Stylesheet) String() string {
	var sb strings.Builder
	s.WriteTo(&sb) //nolint:errcheck
	return sb.String()
}
