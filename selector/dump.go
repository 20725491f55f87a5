package selector

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

type treeWriter struct {
	w   io.Writer
	err error
}

func (tw *treeWriter) line(depth int, format string, args ...any) {
	if tw.err != nil {
		return
	}
	_, tw.err = fmt.Fprintf(tw.w, strings.Repeat("  ", depth)+format+"\n", args...)
}

func (tw *treeWriter) text(depth int, label, value string) {
	tw.line(depth, "%s: %s", label, quoteText(value))
}

func quoteText(raw string) string {
	if raw == "" {
		return raw
	}
	return strconv.Quote(raw)
}

// Dump writes indented tree of l to w starting at depth, one node per line.
// Used for debug reports.
func Dump(w io.Writer, depth int, l *List) error {
	tw := &treeWriter{w: w}
	tw.list(depth, l)
	return tw.err
}

func (tw *treeWriter) list(depth int, l *List) {
	tw.line(depth, "list (%d)", len(l.Selectors))
	for _, sel := range l.Selectors {
		tw.line(depth+1, "selector")
		if sel.Before != "" {
			tw.text(depth+2, "before", sel.Before)
		}
		for i, c := range sel.Compounds {
			if len(c.Nodes) == 0 {
				tw.line(depth+2, "compound (empty)")
			} else {
				tw.line(depth+2, "compound")
			}
			for _, n := range c.Nodes {
				ps, ok := n.(Pseudo)
				if !ok || ps.Args == nil {
					tw.text(depth+3, n.Type().String(), n.String())
					continue
				}
				tw.text(depth+3, "pseudo", ps.Raw+")")
				tw.list(depth+4, ps.Args)
			}
			if i < len(sel.Combinators) {
				comb := sel.Combinators[i]
				tw.text(depth+2, "combinator "+strconv.Quote(comb.Kind.String()), comb.Raw)
			}
		}
		if sel.After != "" {
			tw.text(depth+2, "after", sel.After)
		}
	}
}
