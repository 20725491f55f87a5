package selector

type op int

const (
	opKeep op = iota
	opRemove
	opReplace
)

// Action is what a VisitFunc wants done with the node it was given.
type Action struct {
	op   op
	node Node
}

// Keep leaves the visited node alone.
var Keep = Action{}

// Remove drops the visited node. A compound left without nodes stays in
// place and prints as nothing.
func Remove() Action {
	return Action{op: opRemove}
}

// Replace substitutes n for the visited node. A combinator may only be
// replaced by another Combinator.
func Replace(n Node) Action {
	return Action{op: opReplace, node: n}
}

// VisitFunc is called by Walk for every node.
type VisitFunc func(n Node) Action

// combinatorSlot marks edit position of a combinator rather than of a node
// inside a compound.
const combinatorSlot = -1

type edit struct {
	sel       *Selector
	part, idx int
	action    Action
}

// Walk calls fn for every node of l in source order: the nodes of each
// compound, then the combinator following it. Selector lists inside pseudo
// arguments are walked depth first, right after the pseudo itself, unless
// the pseudo is to be removed or replaced. Requested changes are collected
// first and applied once the traversal is over, so fn always sees the
// original tree. Walk returns the number of nodes changed.
//
// Removing a combinator is not supported and such requests are ignored, as
// are attempts to replace a combinator with anything but a Combinator.
func Walk(l *List, fn VisitFunc) int {
	var edits []edit
	collect(l, fn, &edits)
	return apply(edits)
}

func collect(l *List, fn VisitFunc, edits *[]edit) {
	for _, sel := range l.Selectors {
		for ci, c := range sel.Compounds {
			for ni, n := range c.Nodes {
				a := fn(n)
				if a.op != opKeep {
					*edits = append(*edits, edit{sel: sel, part: ci, idx: ni, action: a})
					continue
				}
				if ps, ok := n.(Pseudo); ok && ps.Args != nil {
					collect(ps.Args, fn, edits)
				}
			}
			if ci < len(sel.Combinators) {
				if a := fn(sel.Combinators[ci]); a.op != opKeep {
					*edits = append(*edits, edit{sel: sel, part: ci, idx: combinatorSlot, action: a})
				}
			}
		}
	}
}

func apply(edits []edit) int {
	var (
		applied   int
		shrinking = make(map[*Compound]struct{})
	)
	for _, e := range edits {
		sel := e.sel
		if e.idx == combinatorSlot {
			if comb, ok := e.action.node.(Combinator); ok && e.action.op == opReplace {
				sel.Combinators[e.part] = comb
				applied++
			}
			continue
		}
		c := sel.Compounds[e.part]
		switch e.action.op {
		case opRemove:
			c.Nodes[e.idx] = nil
			shrinking[c] = struct{}{}
			applied++
		case opReplace:
			if e.action.node == nil {
				continue
			}
			if _, ok := e.action.node.(Combinator); ok {
				continue
			}
			c.Nodes[e.idx] = e.action.node
			applied++
		}
	}
	for c := range shrinking {
		kept := c.Nodes[:0]
		for _, n := range c.Nodes {
			if n != nil {
				kept = append(kept, n)
			}
		}
		c.Nodes = kept
	}
	return applied
}

// Matches reports whether n is a tag, class or id selector of the requested
// kind whose value equals value exactly. Any other node never matches.
func Matches(n Node, kind Kind, value string) bool {
	switch n := n.(type) {
	case Tag:
		return kind == KindTag && n.Value == value
	case Class:
		return kind == KindClass && n.Value == value
	case ID:
		return kind == KindID && n.Value == value
	case Universal, Attribute, Pseudo, Nesting, Placeholder, Interpolation, Combinator, Comment:
		return false
	}
	return false
}
