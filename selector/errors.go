package selector

import "fmt"

// SyntaxError reports selector text which cannot be parsed. No partial tree
// is produced.
type SyntaxError struct {
	Selector string
	Offset   int
	Msg      string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("selector %q: syntax error at offset %d: %s", e.Selector, e.Offset, e.Msg)
}

// ConfigurationError reports invalid rewrite options. It is always returned
// before any selector text is looked at.
type ConfigurationError struct {
	Option string
	Value  string
	Msg    string
}

func (e *ConfigurationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("option %s: %s", e.Option, e.Msg)
	}
	return fmt.Sprintf("option %s has invalid value %q: %s", e.Option, e.Value, e.Msg)
}
