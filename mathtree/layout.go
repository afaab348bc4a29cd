package mathtree

// Composition names how a Layout combines atoms into one box.
type Composition string

const (
	// CompositionLift flattens the atoms into a single positioned unit.
	CompositionLift  Composition = "lift"
	CompositionGroup Composition = "group"
)

// Box is the visual result of rendering an atom.
type Box struct {
	Type        string
	Composition Composition
	Text        string
	Style       Style
	Caret       string
	Children    []*Box
}

// Layout turns atoms into boxes.
type Layout interface {
	// ComposeAsUnit renders atoms and combines them. It returns nil when
	// nothing visible was produced.
	ComposeAsUnit(ctx *Context, atoms []Atom, kind Composition) *Box
	// BindCaret attaches the cursor marker of atom, if any, to box.
	BindCaret(box *Box, atom Atom)
}

// Context is passed down a render pass.
type Context struct {
	Layout Layout
	Mode   string
}
