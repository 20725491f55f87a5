package selector

import "strings"

// Kind is the type of selector which can be searched for or substituted.
type Kind int

const (
	KindTag Kind = iota
	KindClass
	KindID
)

var kindNames = map[Kind]string{
	KindTag:   "tag",
	KindClass: "class",
	KindID:    "id",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// IsValid reports whether k is one of tag, class or id.
func (k Kind) IsValid() bool {
	_, ok := kindNames[k]
	return ok
}

// KindNames returns names accepted by ParseKind.
func KindNames() []string {
	return []string{"tag", "class", "id"}
}

// ParseKind converts "tag", "class" or "id" to Kind.
func ParseKind(name string) (Kind, error) {
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}
	return KindTag, &ConfigurationError{Option: "type", Value: name, Msg: "should be one of [" + strings.Join(KindNames(), ", ") + "]"}
}

// Mode selects what happens to matching nodes.
type Mode int

const (
	ModeReplace Mode = iota
	ModeRemove
)

func (m Mode) String() string {
	switch m {
	case ModeReplace:
		return "replace"
	case ModeRemove:
		return "remove"
	}
	return "unknown"
}

// Target is a kind and value pair, written as "type:value" on the command
// line.
type Target struct {
	Kind  Kind
	Value string
}

// ParseTarget reads "type:value". Everything after the first colon is the
// value.
func ParseTarget(s string) (Target, error) {
	name, value, found := strings.Cut(s, ":")
	if !found {
		return Target{}, &ConfigurationError{Option: "target", Value: s, Msg: `expected "type:value"`}
	}
	kind, err := ParseKind(name)
	if err != nil {
		return Target{}, err
	}
	if value == "" {
		return Target{}, &ConfigurationError{Option: "target", Value: s, Msg: "empty value"}
	}
	return Target{Kind: kind, Value: value}, nil
}

func (t Target) String() string {
	return t.Kind.String() + ":" + t.Value
}

func (t Target) check(option string) error {
	if !t.Kind.IsValid() {
		return &ConfigurationError{Option: option, Value: t.Kind.String(), Msg: "type should be one of [" + strings.Join(KindNames(), ", ") + "]"}
	}
	if t.Value == "" {
		return &ConfigurationError{Option: option, Msg: "empty value"}
	}
	return nil
}

// Options describe a single rewrite: what to look for, and what to put in its
// place unless Mode is ModeRemove.
type Options struct {
	From Target
	To   *Target
	Mode Mode
	SCSS bool
}

// Validate checks options without touching any selector text.
func (o Options) Validate() error {
	if err := o.From.check("from"); err != nil {
		return err
	}
	switch o.Mode {
	case ModeReplace:
		if o.To == nil {
			return &ConfigurationError{Option: "to", Msg: "replacement is required unless removing"}
		}
	case ModeRemove:
	default:
		return &ConfigurationError{Option: "mode", Value: o.Mode.String(), Msg: "should be replace or remove"}
	}
	if o.To != nil {
		if err := o.To.check("to"); err != nil {
			return err
		}
	}
	return nil
}

// NewNode returns the tag, class or id node for kind with empty formatting,
// printing as "value", ".value" or "#value".
func NewNode(kind Kind, value string) Node {
	switch kind {
	case KindClass:
		return Class{Value: value}
	case KindID:
		return ID{Value: value}
	default:
		return Tag{Value: value}
	}
}

// Rewriter applies validated Options to selector lists. It holds no mutable
// state and may be shared between goroutines.
type Rewriter struct {
	from     Target
	mode     Mode
	template Node
}

// NewRewriter validates opts and prepares replacement node.
func NewRewriter(opts Options) (*Rewriter, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	r := &Rewriter{from: opts.From, mode: opts.Mode}
	if opts.Mode == ModeReplace {
		r.template = NewNode(opts.To.Kind, opts.To.Value)
	}
	return r, nil
}

// Rewrite removes or replaces every matching node of l in place and returns
// the number of nodes changed. Nodes are values, so every replaced position
// receives its own copy of the template.
func (r *Rewriter) Rewrite(l *List) int {
	return Walk(l, func(n Node) Action {
		if !Matches(n, r.from.Kind, r.from.Value) {
			return Keep
		}
		if r.mode == ModeRemove {
			return Remove()
		}
		return Replace(r.template)
	})
}

// RewriteString parses text, rewrites it and prints it back. When nothing
// matched text is returned as is.
func (r *Rewriter) RewriteString(text string, opts ...ParseOption) (string, int, error) {
	l, err := Parse(text, opts...)
	if err != nil {
		return "", 0, err
	}
	n := r.Rewrite(l)
	if n == 0 {
		return text, 0, nil
	}
	return l.String(), n, nil
}

// RewriteSelector rewrites a single selector list. Options are validated
// before text is parsed.
func RewriteSelector(text string, opts Options) (string, error) {
	r, err := NewRewriter(opts)
	if err != nil {
		return "", err
	}
	var popts []ParseOption
	if opts.SCSS {
		popts = append(popts, WithSCSS())
	}
	out, _, err := r.RewriteString(text, popts...)
	return out, err
}
