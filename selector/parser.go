package selector

import (
	"errors"
	"fmt"
	"io"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

type token struct {
	tt   css.TokenType
	data string
	off  int
}

// ParseOption changes how selector text is read.
type ParseOption func(*parser)

// WithSCSS additionally accepts SCSS placeholders ("%name"), interpolation
// ("#{...}"), suffixed parent references ("&__item") and "//" line comments.
func WithSCSS() ParseOption {
	return func(p *parser) {
		p.scss = true
	}
}

type parser struct {
	text  string
	toks  []token
	pos   int
	scss  bool
	depth int // nesting level of pseudo selector arguments
}

// Parse reads selector list text into a tree. Printing the returned list
// reproduces text exactly. Malformed input results in *SyntaxError.
//
// Empty compounds are accepted anywhere, so whatever is left after removal
// ("a > ", ", b", "") parses again.
func Parse(text string, opts ...ParseOption) (*List, error) {
	p := &parser{text: text}
	for _, opt := range opts {
		opt(p)
	}
	toks, err := tokenize(text, p.scss)
	if err != nil {
		return nil, err
	}
	p.toks = toks
	l, err := p.parseList()
	if err != nil {
		return nil, err
	}
	if !p.eof() {
		return nil, p.errorf(p.peek().off, "unexpected %q", p.peek().data)
	}
	return l, nil
}

// tokenize splits text with css lexer. Every byte of the input ends up in
// exactly one token so offsets are cumulative token lengths. SCSS line
// comments are unknown to the lexer, they are cut out here and lexing
// restarts after them.
func tokenize(text string, scss bool) ([]token, error) {
	var (
		toks []token
		off  int
	)
	l := css.NewLexer(parse.NewInputString(text))
	for {
		tt, data := l.Next()
		if tt == css.ErrorToken {
			if err := l.Err(); err != nil && !errors.Is(err, io.EOF) {
				return nil, &SyntaxError{Selector: text, Offset: off, Msg: err.Error()}
			}
			if off < len(text) {
				return nil, &SyntaxError{Selector: text, Offset: off, Msg: "unexpected character"}
			}
			return toks, nil
		}
		if len(data) == 0 {
			return nil, &SyntaxError{Selector: text, Offset: off, Msg: "unexpected character"}
		}
		if tt == css.UnicodeRangeToken {
			// "u+a" is a tag followed by sibling combinator in selector context
			toks = append(toks,
				token{tt: css.IdentToken, data: string(data[:1]), off: off},
				token{tt: css.DelimToken, data: "+", off: off + 1})
			off += 2
			l = css.NewLexer(parse.NewInputString(text[off:]))
			continue
		}
		if scss && tt == css.DelimToken && data[0] == '/' && strings.HasPrefix(text[off+1:], "/") {
			end := len(text)
			if i := strings.IndexByte(text[off:], '\n'); i >= 0 {
				end = off + i
			}
			toks = append(toks, token{tt: css.CommentToken, data: text[off:end], off: off})
			off = end
			l = css.NewLexer(parse.NewInputString(text[off:]))
			continue
		}
		toks = append(toks, token{tt: tt, data: string(data), off: off})
		off += len(data)
	}
}

func (p *parser) eof() bool {
	return p.pos >= len(p.toks)
}

func (p *parser) peekAt(n int) token {
	if p.pos+n >= len(p.toks) {
		return token{tt: css.ErrorToken, off: len(p.text)}
	}
	return p.toks[p.pos+n]
}

func (p *parser) peek() token {
	return p.peekAt(0)
}

func (p *parser) next() token {
	t := p.peek()
	p.pos++
	return t
}

func (p *parser) errorf(off int, format string, args ...any) error {
	return &SyntaxError{Selector: p.text, Offset: off, Msg: fmt.Sprintf(format, args...)}
}

func isTrivia(tt css.TokenType) bool {
	return tt == css.WhitespaceToken || tt == css.CommentToken
}

func isDelim(t token, s string) bool {
	return t.tt == css.DelimToken && t.data == s
}

func combinatorKind(t token) (CombinatorKind, bool) {
	if t.tt == css.ColumnToken {
		return Column, true
	}
	if t.tt != css.DelimToken {
		return Descendant, false
	}
	switch t.data {
	case ">":
		return Child, true
	case "+":
		return NextSibling, true
	case "~":
		return SubsequentSibling, true
	}
	return Descendant, false
}

// atEnd reports whether current selector ends here: at a comma, at the
// parenthesis closing pseudo arguments or at the end of input.
func (p *parser) atEnd() bool {
	if p.eof() {
		return true
	}
	switch p.peek().tt {
	case css.CommaToken:
		return true
	case css.RightParenthesisToken:
		return p.depth > 0
	}
	return false
}

// commentsOnly reports whether tokens from index from up to the current
// position are all comments.
func (p *parser) commentsOnly(from int) bool {
	for _, t := range p.toks[from:p.pos] {
		if t.tt != css.CommentToken {
			return false
		}
	}
	return true
}

// trivia consumes whitespace and comments.
func (p *parser) trivia() string {
	var sb strings.Builder
	for !p.eof() && isTrivia(p.peek().tt) {
		sb.WriteString(p.next().data)
	}
	return sb.String()
}

func (p *parser) parseList() (*List, error) {
	list := &List{}
	for {
		sel, err := p.parseSelector()
		if err != nil {
			return nil, err
		}
		list.Selectors = append(list.Selectors, sel)
		if p.eof() || p.peek().tt != css.CommaToken {
			return list, nil
		}
		p.next()
	}
}

func (p *parser) parseSelector() (*Selector, error) {
	sel := &Selector{Before: p.trivia()}
	cur := &Compound{}
	sel.Compounds = append(sel.Compounds, cur)

	for !p.atEnd() {
		t := p.peek()
		if _, isComb := combinatorKind(t); !isComb && !isTrivia(t.tt) {
			n, err := p.parseSimple()
			if err != nil {
				return nil, err
			}
			cur.Nodes = append(cur.Nodes, n)
			continue
		}

		from := p.pos
		raw := p.trivia()
		kind, explicit := combinatorKind(p.peek())
		switch {
		case explicit:
			raw += p.next().data + p.trivia()
		case p.atEnd():
			sel.After = raw
			return sel, nil
		case p.commentsOnly(from):
			// comment alone does not separate compounds
			for _, c := range p.toks[from:p.pos] {
				cur.Nodes = append(cur.Nodes, Comment{Raw: c.data})
			}
			continue
		}
		sel.Combinators = append(sel.Combinators, Combinator{Kind: kind, Raw: raw})
		cur = &Compound{}
		sel.Compounds = append(sel.Compounds, cur)
	}
	return sel, nil
}

func (p *parser) parseSimple() (Node, error) {
	t := p.peek()
	switch t.tt {
	case css.IdentToken:
		p.next()
		if n, ok := p.namespaced(t.data); ok {
			return n, nil
		}
		return Tag{Value: t.data}, nil
	case css.HashToken:
		p.next()
		return ID{Value: t.data[1:]}, nil
	case css.ColonToken:
		return p.parsePseudo()
	case css.LeftBracketToken:
		return p.parseAttribute()
	case css.DelimToken:
		switch t.data {
		case "*":
			p.next()
			if n, ok := p.namespaced("*"); ok {
				return n, nil
			}
			return Universal{}, nil
		case "|":
			if n, ok := p.namespaced(""); ok {
				return n, nil
			}
		case ".":
			p.next()
			nt := p.peek()
			if nt.tt == css.IdentToken {
				p.next()
				return Class{Value: nt.data}, nil
			}
			if p.scss && isDelim(nt, "#") && p.peekAt(1).tt == css.LeftBraceToken {
				raw, err := p.parseInterpolation()
				if err != nil {
					return nil, err
				}
				return Interpolation{Raw: "." + raw}, nil
			}
			return nil, p.errorf(t.off, "expected class name after '.'")
		case "&":
			p.next()
			raw := t.data
			if nt := p.peek(); p.scss && nt.tt == css.IdentToken && (nt.data[0] == '-' || nt.data[0] == '_') {
				raw += p.next().data
			}
			return Nesting{Raw: raw}, nil
		case "%":
			if p.scss && p.peekAt(1).tt == css.IdentToken {
				p.next()
				return Placeholder{Value: p.next().data}, nil
			}
		case "#":
			if p.scss && p.peekAt(1).tt == css.LeftBraceToken {
				raw, err := p.parseInterpolation()
				if err != nil {
					return nil, err
				}
				return Interpolation{Raw: raw}, nil
			}
		}
	}
	return nil, p.errorf(t.off, "unexpected %q", t.data)
}

// namespaced completes "ns|name" or "ns|*" when current token is '|'.
// Nothing is consumed when the construct does not match.
func (p *parser) namespaced(ns string) (Node, bool) {
	if !isDelim(p.peek(), "|") {
		return nil, false
	}
	switch nt := p.peekAt(1); {
	case nt.tt == css.IdentToken:
		p.pos += 2
		return Tag{Prefix: ns + "|", Value: nt.data}, true
	case isDelim(nt, "*"):
		p.pos += 2
		return Universal{Prefix: ns + "|"}, true
	}
	return nil, false
}

func (p *parser) parsePseudo() (Node, error) {
	raw := p.next().data
	n := Pseudo{}
	if p.peek().tt == css.ColonToken {
		raw += p.next().data
		n.Element = true
	}
	t := p.peek()
	switch t.tt {
	case css.IdentToken:
		p.next()
		n.Name, n.Raw = t.data, raw+t.data
		return n, nil
	case css.FunctionToken:
		name := strings.TrimSuffix(t.data, "(")
		if takesSelectors(name) {
			if args, ok := p.selectorArgs(); ok {
				n.Name, n.Raw, n.Args = name, raw+t.data, args
				return n, nil
			}
		}
		args, err := p.balanced()
		if err != nil {
			return nil, err
		}
		n.Name, n.Raw = name, raw+args
		return n, nil
	}
	return nil, p.errorf(t.off, "expected name after %q", raw)
}

// takesSelectors reports whether functional pseudo with this name has
// selector list argument.
func takesSelectors(name string) bool {
	name = strings.ToLower(name)
	if strings.HasPrefix(name, "-") {
		// vendor prefix
		if i := strings.IndexByte(name[1:], '-'); i >= 0 {
			name = name[i+2:]
		}
	}
	switch name {
	case "not", "is", "where", "has", "matches", "any", "host", "host-context", "slotted":
		return true
	}
	return false
}

// selectorArgs parses argument of functional pseudo at current function
// token as selector list. When argument is not a selector list nothing is
// consumed and false is returned.
func (p *parser) selectorArgs() (*List, bool) {
	start := p.pos
	p.next()
	p.depth++
	l, err := p.parseList()
	p.depth--
	if err != nil || p.eof() || p.peek().tt != css.RightParenthesisToken {
		p.pos = start
		return nil, false
	}
	p.next()
	return l, true
}

func (p *parser) parseAttribute() (Node, error) {
	start := p.pos
	raw, err := p.balanced()
	if err != nil {
		return nil, err
	}
	inner := p.toks[start+1 : p.pos-1]
	for _, t := range inner {
		switch t.tt {
		case css.LeftBracketToken, css.LeftBraceToken, css.LeftParenthesisToken, css.FunctionToken:
			return nil, p.errorf(t.off, "unexpected %q in attribute selector", t.data)
		}
	}
	name := attributeName(inner)
	if name == "" {
		return nil, p.errorf(p.toks[start].off, "expected attribute name")
	}
	return Attribute{Name: name, Raw: raw}, nil
}

func attributeName(toks []token) string {
	var sig []token
	for _, t := range toks {
		if !isTrivia(t.tt) {
			sig = append(sig, t)
		}
	}
	switch {
	case len(sig) >= 3 && (sig[0].tt == css.IdentToken || isDelim(sig[0], "*")) && isDelim(sig[1], "|") && sig[2].tt == css.IdentToken:
		return sig[2].data
	case len(sig) >= 2 && isDelim(sig[0], "|") && sig[1].tt == css.IdentToken:
		return sig[1].data
	case len(sig) >= 1 && sig[0].tt == css.IdentToken:
		return sig[0].data
	}
	return ""
}

func (p *parser) parseInterpolation() (string, error) {
	hash := p.next()
	body, err := p.balanced()
	if err != nil {
		return "", err
	}
	return hash.data + body, nil
}

// balanced consumes tokens from the current opening bracket up to and
// including its matching closing one and returns the source text covered.
func (p *parser) balanced() (string, error) {
	open := p.peek()
	var stack []css.TokenType
	for !p.eof() {
		t := p.next()
		switch t.tt {
		case css.FunctionToken, css.LeftParenthesisToken:
			stack = append(stack, css.RightParenthesisToken)
		case css.LeftBracketToken:
			stack = append(stack, css.RightBracketToken)
		case css.LeftBraceToken:
			stack = append(stack, css.RightBraceToken)
		case css.RightParenthesisToken, css.RightBracketToken, css.RightBraceToken:
			if len(stack) == 0 || stack[len(stack)-1] != t.tt {
				return "", p.errorf(t.off, "unbalanced %q", t.data)
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return p.text[open.off : t.off+len(t.data)], nil
			}
		case css.BadStringToken, css.BadURLToken:
			return "", p.errorf(t.off, "unterminated string")
		case css.StringToken:
			if !terminated(t.data) {
				return "", p.errorf(t.off, "unterminated string")
			}
		}
	}
	return "", p.errorf(open.off, "unterminated %q", open.data)
}

// terminated reports whether quoted string token ends with unescaped closing
// quote.
func terminated(s string) bool {
	if len(s) < 2 || s[len(s)-1] != s[0] {
		return false
	}
	n := 0
	for i := len(s) - 2; i > 0 && s[i] == '\\'; i-- {
		n++
	}
	return n%2 == 0
}
