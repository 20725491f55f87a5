package selector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		in   string
		scss bool
	}{
		{name: "tag", in: "div"},
		{name: "compound", in: "div.foo#bar"},
		{name: "descendant", in: "ul li"},
		{name: "odd spacing", in: "  a  >  b  "},
		{name: "newlines and tabs", in: "a\n\tb,\n.c"},
		{name: "all combinators", in: "ul li, ol > li + li ~ p"},
		{name: "no spaces around combinators", in: "a>b+c~d"},
		{name: "universal", in: "*"},
		{name: "universal compound", in: "*.x"},
		{name: "namespaces", in: "svg|rect, *|a, |b, ns|*"},
		{name: "attribute quoted", in: `a[href^="http"]`},
		{name: "attribute single quoted with flag", in: `input[ type = 'text' i ]`},
		{name: "attribute with comma inside", in: `a[data-x="a,b"], b`},
		{name: "pseudo class", in: "a:hover"},
		{name: "pseudo element", in: "p::first-line"},
		{name: "functional pseudo", in: "li:nth-child(2n + 1)"},
		{name: "pseudo with selector list", in: ":not(.a, .b) > span"},
		{name: "nested functional pseudo", in: ":is(h1, :not(h2)) a"},
		{name: "comment as descendant", in: "a /* note */ b"},
		{name: "comment inside compound", in: "a/**/.x"},
		{name: "relative selector argument", in: "li:has(> .foo,+ b)"},
		{name: "vendor any", in: ":-webkit-any( a , b )"},
		{name: "non selector arguments", in: ":nth-child(2n of .a):lang(en)"},
		{name: "empty compound before combinator", in: "a > "},
		{name: "empty compounds between combinators", in: "a >  > c"},
		{name: "empty alternative", in: ", a,,b,"},
		{name: "empty", in: ""},
		{name: "blank", in: "   "},
		{name: "empty pseudo argument", in: "a:not()"},
		{name: "nesting", in: "& > .child, &:hover"},
		{name: "leading combinator", in: "> li"},
		{name: "column combinator", in: "col.selected||td"},
		{name: "sibling tag", in: "u+a"},
		{name: "scss interpolation in class", in: ".btn-#{$name}", scss: true},
		{name: "scss interpolation as compound", in: "#{$sel} a", scss: true},
		{name: "scss placeholder", in: "%placeholder", scss: true},
		{name: "scss suffix", in: "&__elem, &-mod", scss: true},
		{name: "scss line comment", in: "a, // note\nb.x // tail", scss: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var opts []ParseOption
			if tt.scss {
				opts = append(opts, WithSCSS())
			}
			l, err := Parse(tt.in, opts...)
			require.NoError(t, err)
			assert.Equal(t, tt.in, l.String())
		})
	}
}

func TestParse_Structure(t *testing.T) {
	l, err := Parse("div.foo > span, #a .b")
	require.NoError(t, err)
	require.Len(t, l.Selectors, 2)

	first := l.Selectors[0]
	require.Len(t, first.Compounds, 2)
	require.Len(t, first.Combinators, 1)
	assert.Equal(t, []Node{Tag{Value: "div"}, Class{Value: "foo"}}, first.Compounds[0].Nodes)
	assert.Equal(t, Combinator{Kind: Child, Raw: " > "}, first.Combinators[0])
	assert.Equal(t, []Node{Tag{Value: "span"}}, first.Compounds[1].Nodes)

	second := l.Selectors[1]
	assert.Equal(t, " ", second.Before)
	assert.Equal(t, []Node{ID{Value: "a"}}, second.Compounds[0].Nodes)
	assert.Equal(t, Descendant, second.Combinators[0].Kind)
	assert.Equal(t, []Node{Class{Value: "b"}}, second.Compounds[1].Nodes)
}

func TestParse_NodeDetails(t *testing.T) {
	l, err := Parse(`svg|rect[xlink|href="#x"]::before:not(.a)`)
	require.NoError(t, err)
	nodes := l.Selectors[0].Compounds[0].Nodes
	require.Len(t, nodes, 4)

	assert.Equal(t, Tag{Prefix: "svg|", Value: "rect"}, nodes[0])
	assert.Equal(t, Attribute{Name: "href", Raw: `[xlink|href="#x"]`}, nodes[1])
	assert.Equal(t, Pseudo{Name: "before", Element: true, Raw: "::before"}, nodes[2])

	not, ok := nodes[3].(Pseudo)
	require.True(t, ok)
	assert.Equal(t, "not", not.Name)
	assert.Equal(t, ":not(", not.Raw)
	require.NotNil(t, not.Args)
	assert.Equal(t, []Node{Class{Value: "a"}}, not.Args.Selectors[0].Compounds[0].Nodes)
	assert.Equal(t, ":not(.a)", not.String())
}

func TestParse_PseudoArguments(t *testing.T) {
	tests := []struct {
		in        string
		selectors int // 0 when argument stays opaque
	}{
		{in: ":not(.a, .b)", selectors: 2},
		{in: ":is(h1)", selectors: 1},
		{in: ":WHERE(a b)", selectors: 1},
		{in: ":-moz-any(a, b, c)", selectors: 3},
		{in: "::slotted(span)", selectors: 1},
		{in: ":host-context(.dark)", selectors: 1},
		{in: ":nth-child(2n+1)"},
		{in: ":lang(en)"},
		{in: ":not(2n)"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			l := mustParse(t, tt.in)
			ps, ok := l.Selectors[0].Compounds[0].Nodes[0].(Pseudo)
			require.True(t, ok)
			if tt.selectors == 0 {
				assert.Nil(t, ps.Args)
				assert.Equal(t, tt.in, ps.Raw)
				return
			}
			require.NotNil(t, ps.Args)
			assert.Len(t, ps.Args.Selectors, tt.selectors)
			assert.Equal(t, tt.in, ps.String())
		})
	}
}

func TestParse_EmptyCompounds(t *testing.T) {
	l := mustParse(t, "a > ")
	sel := l.Selectors[0]
	require.Len(t, sel.Compounds, 2)
	assert.Empty(t, sel.Compounds[1].Nodes)
	assert.Equal(t, Combinator{Kind: Child, Raw: " > "}, sel.Combinators[0])

	l = mustParse(t, ", a")
	require.Len(t, l.Selectors, 2)
	assert.Empty(t, l.Selectors[0].Compounds[0].Nodes)
	assert.Equal(t, " ", l.Selectors[1].Before)

	l = mustParse(t, "")
	require.Len(t, l.Selectors, 1)
	require.Len(t, l.Selectors[0].Compounds, 1)
	assert.Empty(t, l.Selectors[0].Compounds[0].Nodes)
}

func TestParse_CommentInsideCompound(t *testing.T) {
	l := mustParse(t, "a/* x */.b")
	sel := l.Selectors[0]
	require.Len(t, sel.Compounds, 1)
	assert.Empty(t, sel.Combinators)
	assert.Equal(t, []Node{Tag{Value: "a"}, Comment{Raw: "/* x */"}, Class{Value: "b"}}, sel.Compounds[0].Nodes)

	l = mustParse(t, "a /* x */.b")
	sel = l.Selectors[0]
	require.Len(t, sel.Compounds, 2)
	assert.Equal(t, Combinator{Kind: Descendant, Raw: " /* x */"}, sel.Combinators[0])
}

func TestParse_SCSSLineComment(t *testing.T) {
	const in = "a, // first\nb.x"
	l, err := Parse(in, WithSCSS())
	require.NoError(t, err)
	require.Len(t, l.Selectors, 2)
	assert.Equal(t, " // first\n", l.Selectors[1].Before)
	assert.Equal(t, in, l.String())

	_, err = Parse(in)
	var se *SyntaxError
	require.ErrorAs(t, err, &se)
}

func TestParse_SyntaxErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{name: "unterminated attribute", in: "[data-x"},
		{name: "unterminated string", in: `a[title="x]`},
		{name: "unterminated pseudo", in: "a:not(b"},
		{name: "stray paren", in: "a)"},
		{name: "stray bracket", in: "a]"},
		{name: "unterminated selector argument", in: ":is(.a, .b"},
		{name: "stray paren after argument", in: ":not(a))"},
		{name: "bad string in argument", in: `:not([x="y)`},
		{name: "number", in: ".5"},
		{name: "block", in: "a { }"},
		{name: "bare colon", in: "a:"},
		{name: "attribute without name", in: `["x"]`},
		{name: "placeholder outside scss", in: "%foo"},
		{name: "interpolation outside scss", in: "#{$x}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.in)
			var se *SyntaxError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tt.in, se.Selector)
		})
	}
}

func TestParse_Deterministic(t *testing.T) {
	const in = "a.b > c:hover, d[e] ~ f"
	l1, err := Parse(in)
	require.NoError(t, err)
	l2, err := Parse(in)
	require.NoError(t, err)
	assert.Equal(t, l1, l2)
}

func TestTerminated(t *testing.T) {
	assert.True(t, terminated(`""`))
	assert.True(t, terminated(`'a'`))
	assert.True(t, terminated(`"a\\"`))
	assert.False(t, terminated(`"a\"`))
	assert.False(t, terminated(`"a`))
	assert.False(t, terminated(`"`))
}
