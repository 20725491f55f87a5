// Package selector keeps CSS selector lists in a lossless tree, so that
// individual tag, class and id terms can be replaced or removed while every
// other byte of the original text is reproduced unchanged.
package selector

import (
	"io"
	"strings"
)

// NodeType identifies the variant of a Node.
type NodeType int

const (
	TypeTag NodeType = iota
	TypeClass
	TypeID
	TypeUniversal
	TypeAttribute
	TypePseudo
	TypeNesting
	TypePlaceholder
	TypeInterpolation
	TypeCombinator
	TypeComment
)

var nodeTypeNames = [...]string{
	TypeTag:           "tag",
	TypeClass:         "class",
	TypeID:            "id",
	TypeUniversal:     "universal",
	TypeAttribute:     "attribute",
	TypePseudo:        "pseudo",
	TypeNesting:       "nesting",
	TypePlaceholder:   "placeholder",
	TypeInterpolation: "interpolation",
	TypeCombinator:    "combinator",
	TypeComment:       "comment",
}

func (t NodeType) String() string {
	if t < 0 || int(t) >= len(nodeTypeNames) {
		return "unknown"
	}
	return nodeTypeNames[t]
}

// Node is a single term of a selector: one of Tag, Class, ID, Universal,
// Attribute, Pseudo, Nesting, Placeholder, Interpolation, Combinator or
// Comment. The set is closed, nodes are values and never change once built,
// only selector lists held by Pseudo.Args are edited in place. String returns
// the exact source text of the node.
type Node interface {
	Type() NodeType
	String() string
	node()
}

// Tag is an element type selector. Prefix keeps namespace text ("svg|", "|")
// when present, Value is the local name as written.
type Tag struct {
	Prefix string
	Value  string
}

// Class is a class selector, Value excludes the leading dot.
type Class struct {
	Value string
}

// ID is an id selector, Value excludes the leading hash.
type ID struct {
	Value string
}

// Universal is "*", possibly namespaced.
type Universal struct {
	Prefix string
}

// Attribute is an attribute selector. Raw holds the complete bracketed text
// including quoting and flags.
type Attribute struct {
	Name string
	Raw  string
}

// Pseudo is a pseudo-class or pseudo-element. Selector list arguments of
// :not(), :is(), :has() and the like are parsed into Args, then Raw is the
// text up to and including the opening parenthesis and the closing one is
// implied. Any other arguments stay in Raw verbatim.
type Pseudo struct {
	Name    string
	Element bool
	Raw     string
	Args    *List
}

// Nesting is "&", with SCSS suffix when present ("&__item").
type Nesting struct {
	Raw string
}

// Placeholder is SCSS "%name".
type Placeholder struct {
	Value string
}

// Interpolation is SCSS "#{...}".
type Interpolation struct {
	Raw string
}

// Comment is a comment found between simple selectors of one compound, with
// no whitespace around it.
type Comment struct {
	Raw string
}

// CombinatorKind is the relationship between two compounds.
type CombinatorKind int

const (
	Descendant CombinatorKind = iota
	Child
	NextSibling
	SubsequentSibling
	Column
)

func (k CombinatorKind) String() string {
	switch k {
	case Child:
		return ">"
	case NextSibling:
		return "+"
	case SubsequentSibling:
		return "~"
	case Column:
		return "||"
	default:
		return " "
	}
}

// Combinator separates compounds. Raw is the literal text that produced it,
// surrounding whitespace and comments included.
type Combinator struct {
	Kind CombinatorKind
	Raw  string
}

func (Tag) Type() NodeType           { return TypeTag }
func (Class) Type() NodeType         { return TypeClass }
func (ID) Type() NodeType            { return TypeID }
func (Universal) Type() NodeType     { return TypeUniversal }
func (Attribute) Type() NodeType     { return TypeAttribute }
func (Pseudo) Type() NodeType        { return TypePseudo }
func (Nesting) Type() NodeType       { return TypeNesting }
func (Placeholder) Type() NodeType   { return TypePlaceholder }
func (Interpolation) Type() NodeType { return TypeInterpolation }
func (Combinator) Type() NodeType    { return TypeCombinator }
func (Comment) Type() NodeType       { return TypeComment }

func (n Tag) String() string           { return n.Prefix + n.Value }
func (n Class) String() string         { return "." + n.Value }
func (n ID) String() string            { return "#" + n.Value }
func (n Universal) String() string     { return n.Prefix + "*" }
func (n Attribute) String() string     { return n.Raw }
func (n Nesting) String() string       { return n.Raw }
func (n Placeholder) String() string   { return "%" + n.Value }
func (n Interpolation) String() string { return n.Raw }
func (n Combinator) String() string    { return n.Raw }
func (n Comment) String() string       { return n.Raw }

func (n Pseudo) String() string {
	if n.Args == nil {
		return n.Raw
	}
	return n.Raw + n.Args.String() + ")"
}

func (Tag) node()           {}
func (Class) node()         {}
func (ID) node()            {}
func (Universal) node()     {}
func (Attribute) node()     {}
func (Pseudo) node()        {}
func (Nesting) node()       {}
func (Placeholder) node()   {}
func (Interpolation) node() {}
func (Combinator) node()    {}
func (Comment) node()       {}

// Compound is a run of simple selectors with no combinator between them. It
// may be empty: removal of its last node keeps the compound as a placeholder.
type Compound struct {
	Nodes []Node
}

// Selector is one comma separated alternative. Combinators[i] sits between
// Compounds[i] and Compounds[i+1]. Before and After keep whitespace and
// comments around the selector.
type Selector struct {
	Before      string
	Compounds   []*Compound
	Combinators []Combinator
	After       string
}

// List is a complete selector list as found in a rule prelude.
type List struct {
	Selectors []*Selector
}

// WriteTo writes the list source text to w, implementing io.WriterTo.
func (l *List) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, l.String())
	return int64(n), err
}

// String returns the list source text. For an unmodified list it is
// identical to the text the list was parsed from.
func (l *List) String() string {
	var sb strings.Builder
	for i, sel := range l.Selectors {
		if i > 0 {
			sb.WriteByte(',')
		}
		sel.print(&sb)
	}
	return sb.String()
}

// String returns the selector source text.
func (s *Selector) String() string {
	var sb strings.Builder
	s.print(&sb)
	return sb.String()
}

func (s *Selector) print(sb *strings.Builder) {
	sb.WriteString(s.Before)
	for i, c := range s.Compounds {
		c.print(sb)
		if i < len(s.Combinators) {
			sb.WriteString(s.Combinators[i].Raw)
		}
	}
	sb.WriteString(s.After)
}

// String returns the compound source text, empty for a placeholder compound.
func (c *Compound) String() string {
	var sb strings.Builder
	c.print(&sb)
	return sb.String()
}

func (c *Compound) print(sb *strings.Builder) {
	for _, n := range c.Nodes {
		sb.WriteString(n.String())
	}
}
