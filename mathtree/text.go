package mathtree

import "strings"

// TextAtom is a leaf: a single character or a control word such as `\alpha`.
type TextAtom struct {
	atomBase
	value string
}

// NewText creates a leaf holding value.
func NewText(value string) *TextAtom {
	return &TextAtom{value: value}
}

func (a *TextAtom) Type() string { return TypeText }

// Value returns the markup the leaf stands for.
func (a *TextAtom) Value() string { return a.value }

// SetValue replaces the leaf's markup. Callers that edit inside a macro must
// run ReconcileAncestors afterwards.
func (a *TextAtom) SetValue(value string) { a.value = value }

func (a *TextAtom) Serialize(opts SerializeOptions) string {
	result := a.value
	if opts.SkipStyles {
		return result
	}
	if a.style.Color != "" {
		result = `\textcolor{` + a.style.Color + `}{` + result + `}`
	}
	if a.style.BackgroundColor != "" {
		result = `\colorbox{` + a.style.BackgroundColor + `}{` + result + `}`
	}
	return result
}

func (a *TextAtom) Render(ctx *Context) *Box {
	if a.value == "" {
		return nil
	}
	box := &Box{
		Type:  TypeText,
		Text:  strings.TrimPrefix(a.value, `\`),
		Style: a.style,
	}
	if ctx != nil && ctx.Layout != nil {
		ctx.Layout.BindCaret(box, a)
	}
	return box
}

func (a *TextAtom) Snapshot() Snapshot {
	s := a.snapshot(TypeText)
	s.Value = a.value
	return s
}

func (a *TextAtom) ApplyStyle(style Style, opts StyleOptions) {
	applyStyle(a, style, opts)
}

// GroupAtom is a container. A braced group serializes as `{...}`; the root
// group serializes its body bare.
type GroupAtom struct {
	atomBase
	root bool
}

// NewGroup creates a braced group owning children.
func NewGroup(children ...Atom) *GroupAtom {
	g := &GroupAtom{}
	SetBody(g, children...)
	return g
}

// NewRoot creates the root of a tree.
func NewRoot(children ...Atom) *GroupAtom {
	g := &GroupAtom{root: true}
	SetBody(g, children...)
	return g
}

func (g *GroupAtom) Type() string {
	if g.root {
		return TypeRoot
	}
	return TypeGroup
}

func (g *GroupAtom) Serialize(opts SerializeOptions) string {
	body := SerializeBody(g.body, opts)
	if g.root {
		return body
	}
	return "{" + body + "}"
}

func (g *GroupAtom) Render(ctx *Context) *Box {
	if ctx == nil || ctx.Layout == nil {
		return nil
	}
	return ctx.Layout.ComposeAsUnit(ctx, g.body, CompositionGroup)
}

func (g *GroupAtom) Snapshot() Snapshot {
	return g.snapshot(g.Type())
}

func (g *GroupAtom) ApplyStyle(style Style, opts StyleOptions) {
	applyStyle(g, style, opts)
}
