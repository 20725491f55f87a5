package css

import (
	"bytes"
	"fmt"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"
)

// Parser locates rule selectors in CSS and SCSS stylesheets without
// interpreting anything else, so the rest of the text can be reproduced as is.
type Parser struct {
	log  *zap.Logger
	scss bool
}

// NewParser creates a new stylesheet parser. When scss is set "//" line
// comments and "#{...}" interpolation are recognized.
func NewParser(log *zap.Logger, scss bool) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{log: log.Named("css-parser"), scss: scss}
}

// Parse splits stylesheet text into rules and verbatim pieces.
// The optional source parameter identifies what's being parsed (for debug logging).
func (p *Parser) Parse(data []byte, source ...string) (*Stylesheet, error) {
	src := ""
	if len(source) > 0 {
		src = source[0]
	}
	p.log.Debug("Parsing stylesheet", zap.String("source", src), zap.Int("bytes", len(data)), zap.Bool("scss", p.scss))

	toks, err := p.tokenize(data)
	if err != nil {
		return nil, err
	}

	sc := &scanner{src: data, toks: toks, scss: p.scss, sheet: &Stylesheet{}, line: 1}
	if err := sc.run(); err != nil {
		return nil, err
	}
	for _, w := range sc.sheet.Warnings {
		p.log.Debug("Stylesheet warning", zap.String("source", src), zap.String("warning", w))
	}
	p.log.Debug("Parsed stylesheet", zap.String("source", src), zap.Int("rules", len(sc.sheet.Rules())))
	return sc.sheet, nil
}

type token struct {
	tt       css.TokenType
	off, end int
}

// tokenize runs css lexer over the whole input. SCSS line comments are not
// known to the lexer, they are cut out here and lexing restarts after them.
func (p *Parser) tokenize(data []byte) ([]token, error) {
	var (
		toks []token
		off  int
	)
	l := css.NewLexer(parse.NewInputBytes(data))
	for {
		tt, text := l.Next()
		if tt == css.ErrorToken {
			if off < len(data) {
				return nil, fmt.Errorf("%w: line %d: unexpected character", ErrSyntax, bytes.Count(data[:off], []byte{'\n'})+1)
			}
			return toks, nil
		}
		if len(text) == 0 {
			return nil, fmt.Errorf("%w: line %d: unexpected character", ErrSyntax, bytes.Count(data[:off], []byte{'\n'})+1)
		}
		start := off
		off += len(text)
		if p.scss && tt == css.DelimToken && text[0] == '/' && off < len(data) && data[off] == '/' {
			end := len(data)
			if i := bytes.IndexByte(data[start:], '\n'); i >= 0 {
				end = start + i
			}
			toks = append(toks, token{tt: css.CommentToken, off: start, end: end})
			off = end
			l = css.NewLexer(parse.NewInputBytes(data[off:]))
			continue
		}
		toks = append(toks, token{tt: tt, off: start, end: off})
	}
}

type blockKind int

const (
	blockRules        blockKind = iota // rules, at-rules and declarations
	blockKeyframes                     // keyframe selectors ("from", "50%")
	blockDeclarations                  // @font-face, @page, SCSS nested properties
)

func atRuleBlock(name string) blockKind {
	name = strings.ToLower(strings.TrimPrefix(name, "@"))
	if strings.HasPrefix(name, "-") {
		// vendor prefix
		if i := strings.IndexByte(name[1:], '-'); i >= 0 {
			name = name[i+2:]
		}
	}
	switch name {
	case "keyframes":
		return blockKeyframes
	case "font-face", "page", "counter-style", "property", "font-palette-values", "viewport":
		return blockDeclarations
	}
	return blockRules
}

type scanner struct {
	src   []byte
	toks  []token
	scss  bool
	stack []blockKind
	sheet *Stylesheet

	emitted int // source emitted into items so far

	lineOff int
	line    int
}

func (s *scanner) text(t token) string {
	return string(s.src[t.off:t.end])
}

func (s *scanner) lineAt(off int) int {
	if off < s.lineOff {
		s.lineOff, s.line = 0, 1
	}
	s.line += bytes.Count(s.src[s.lineOff:off], []byte{'\n'})
	s.lineOff = off
	return s.line
}

func (s *scanner) errorf(off int, format string, args ...any) error {
	return fmt.Errorf("%w: line %d: %s", ErrSyntax, s.lineAt(off), fmt.Sprintf(format, args...))
}

func (s *scanner) current() blockKind {
	if len(s.stack) == 0 {
		return blockRules
	}
	return s.stack[len(s.stack)-1]
}

func (s *scanner) is(i int, tt css.TokenType) bool {
	return i < len(s.toks) && s.toks[i].tt == tt
}

func (s *scanner) run() error {
	for i := 0; i < len(s.toks); {
		t := s.toks[i]
		switch t.tt {
		case css.WhitespaceToken, css.CommentToken, css.CDOToken, css.CDCToken, css.SemicolonToken:
			i++
			continue
		case css.RightBraceToken:
			if len(s.stack) == 0 {
				return s.errorf(t.off, "unexpected '}'")
			}
			s.stack = s.stack[:len(s.stack)-1]
			i++
			continue
		case css.AtKeywordToken:
			j := s.statementEnd(i, false)
			switch {
			case s.is(j, css.LeftBraceToken):
				s.stack = append(s.stack, atRuleBlock(s.text(t)))
				i = j + 1
			case s.is(j, css.SemicolonToken):
				i = j + 1
			default:
				i = j
			}
			continue
		}

		custom := (t.tt == css.IdentToken || t.tt == css.CustomPropertyNameToken) && strings.HasPrefix(s.text(t), "--")
		j := s.statementEnd(i, custom)
		if !s.is(j, css.LeftBraceToken) {
			if len(s.stack) == 0 && !s.variable(t) {
				s.sheet.Warnings = append(s.sheet.Warnings, fmt.Sprintf("line %d: ignoring statement outside of any block", s.lineAt(t.off)))
			}
			if s.is(j, css.SemicolonToken) {
				j++
			}
			i = j
			continue
		}

		if j == i {
			// block without prelude, nothing to rewrite
			s.stack = append(s.stack, s.current())
			i++
			continue
		}
		last := j - 1
		for last > i && (s.toks[last].tt == css.WhitespaceToken || s.toks[last].tt == css.CommentToken) {
			last--
		}
		if s.current() == blockRules && !(s.scss && s.nestedProperty(i, last)) {
			s.addRule(t.off, s.toks[last].end)
			s.stack = append(s.stack, blockRules)
		} else {
			s.stack = append(s.stack, blockDeclarations)
		}
		i = j + 1
	}
	if len(s.stack) > 0 {
		return s.errorf(len(s.src), "unclosed block")
	}
	s.flush(len(s.src))
	return nil
}

// statementEnd returns index of token which terminates statement started at
// i: semicolon, opening or closing brace outside of any brackets. Custom
// property values may hold braces.
func (s *scanner) statementEnd(i int, custom bool) int {
	depth := 0
	for ; i < len(s.toks); i++ {
		switch s.toks[i].tt {
		case css.FunctionToken, css.LeftParenthesisToken, css.LeftBracketToken:
			depth++
		case css.RightParenthesisToken, css.RightBracketToken:
			if depth > 0 {
				depth--
			}
		case css.LeftBraceToken:
			if depth == 0 && !custom && !s.interpolation(i) {
				return i
			}
			depth++
		case css.RightBraceToken:
			if depth == 0 {
				return i
			}
			depth--
		case css.SemicolonToken:
			if depth == 0 {
				return i
			}
		}
	}
	return i
}

// interpolation reports whether brace at i opens SCSS "#{".
func (s *scanner) interpolation(i int) bool {
	if !s.scss || i == 0 {
		return false
	}
	prev := s.toks[i-1]
	return prev.tt == css.DelimToken && prev.end == s.toks[i].off && s.src[prev.off] == '#'
}

// variable reports whether statement starting with t is SCSS variable
// declaration.
func (s *scanner) variable(t token) bool {
	return s.scss && t.tt == css.DelimToken && s.src[t.off] == '$'
}

// nestedProperty detects SCSS "font: {" and "font: bold {" which look like
// rules but hold declarations.
func (s *scanner) nestedProperty(i, last int) bool {
	if s.toks[i].tt != css.IdentToken || !s.is(i+1, css.ColonToken) {
		return false
	}
	return i+1 == last || s.is(i+2, css.WhitespaceToken)
}

func (s *scanner) addRule(start, end int) {
	s.flush(start)
	sel := string(s.src[start:end])
	s.sheet.Items = append(s.sheet.Items, StylesheetItem{
		Rule: &Rule{Selector: sel, Original: sel, SourceLine: s.lineAt(start)},
	})
	s.emitted = end
}

func (s *scanner) flush(upto int) {
	if upto <= s.emitted {
		return
	}
	text := string(s.src[s.emitted:upto])
	s.sheet.Items = append(s.sheet.Items, StylesheetItem{Verbatim: &text})
	s.emitted = upto
}
