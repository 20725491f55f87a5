package config

import (
	"path/filepath"
	"strings"
)

// Syntax selects how stylesheets are parsed.
// ENUM(auto, css, scss)
type Syntax int

// SCSS reports whether file at path should be parsed as SCSS.
func (s Syntax) SCSS(path string) bool {
	switch s {
	case SyntaxScss:
		return true
	case SyntaxCss:
		return false
	default:
		return strings.EqualFold(filepath.Ext(path), ".scss")
	}
}
