// Package mathtree holds the editable tree behind a math field: atoms that
// own their children, serialize back to markup, render through a Layout and
// persist as JSON snapshots.
package mathtree

// Atom types as they appear in snapshots.
const (
	TypeRoot          = "root"
	TypeGroup         = "group"
	TypeText          = "text"
	TypeMacro         = "macro"
	TypeMacroArgument = "macro-argument"
)

// Serialization modes.
const (
	ModeMath = "math"
	ModeText = "text"
)

// SerializeOptions controls how atoms are written back to markup.
type SerializeOptions struct {
	Expand      bool   // serialize macro bodies instead of their invocation
	DefaultMode string // mode the output is embedded in
	SkipStyles  bool   // omit color commands
}

// Atom is a node of the math tree.
//
// Children are owned by their parent. Parent is a back reference used for
// upward traversal only.
type Atom interface {
	Type() string
	Parent() Atom
	Body() []Atom
	Style() Style
	Caret() string
	CaptureSelection() bool

	Serialize(opts SerializeOptions) string
	Render(ctx *Context) *Box
	Snapshot() Snapshot
	ApplyStyle(style Style, opts StyleOptions)

	base() *atomBase
}

// atomBase carries the state every atom shares.
type atomBase struct {
	parent Atom
	body   []Atom
	style  Style
	caret  string
}

func (a *atomBase) base() *atomBase { return a }

// Parent returns the owning atom, or nil at the root.
func (a *atomBase) Parent() Atom { return a.parent }

// Body returns the children. Callers must not modify the slice; use SetBody.
func (a *atomBase) Body() []Atom { return a.body }

func (a *atomBase) Style() Style { return a.style }

// Caret returns the cursor marker bound to this atom, if any.
func (a *atomBase) Caret() string { return a.caret }

// CaptureSelection reports whether the atom is selected as a single unit.
func (a *atomBase) CaptureSelection() bool { return false }

func (a *atomBase) snapshot(atomType string) Snapshot {
	s := Snapshot{Type: atomType}
	if !a.style.IsEmpty() {
		style := a.style
		s.Style = &style
	}
	for _, child := range a.body {
		s.Body = append(s.Body, child.Snapshot())
	}
	return s
}

// SetBody replaces the children of parent and points each child back at it.
func SetBody(parent Atom, children ...Atom) {
	b := parent.base()
	for _, old := range b.body {
		if old.base().parent == parent {
			old.base().parent = nil
		}
	}
	b.body = children
	for _, child := range children {
		child.base().parent = parent
	}
}

// SetCaret binds a cursor marker to atom. An empty marker clears it.
func SetCaret(atom Atom, caret string) {
	atom.base().caret = caret
}
