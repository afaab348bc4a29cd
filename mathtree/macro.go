package mathtree

import (
	"fmt"

	"github.com/rgonek/mathmacro/matcher"
)

// MacroAtom is an invocation of a macro whose expansion is held, editable,
// in its body.
//
// The argument encoding is derived from the body. It is cached and only
// refreshed by ReloadArgs, which ReconcileAncestors calls after an edit.
type MacroAtom struct {
	atomBase
	command          string
	def              string
	args             string
	expand           bool
	capture          bool
	captureSelection *bool // explicit override, kept for snapshots
}

// MacroOption configures a MacroAtom at construction.
type MacroOption func(*MacroAtom)

// WithArgs sets the initial argument encoding, e.g. "{a}{b}". The empty
// string means no arguments: WithArgs("") and omitting the option are
// indistinguishable.
func WithArgs(args string) MacroOption {
	return func(m *MacroAtom) { m.args = args }
}

// WithExpand makes expanding serialization write the body.
func WithExpand(expand bool) MacroOption {
	return func(m *MacroAtom) { m.expand = expand }
}

// WithCaptureSelection overrides the selection behavior derived from args.
func WithCaptureSelection(capture bool) MacroOption {
	return func(m *MacroAtom) { m.captureSelection = &capture }
}

// NewMacro creates a macro atom owning body. def must be non-empty.
func NewMacro(command, def string, body []Atom, opts ...MacroOption) (*MacroAtom, error) {
	if def == "" {
		return nil, fmt.Errorf("macro %s: %w", command, matcher.ErrInvalidTemplate)
	}

	m := &MacroAtom{command: command, def: def}
	for _, opt := range opts {
		opt(m)
	}
	if m.captureSelection != nil {
		m.capture = *m.captureSelection
	} else {
		m.capture = m.args == ""
	}
	SetBody(m, body...)

	return m, nil
}

func (m *MacroAtom) Type() string { return TypeMacro }

// Command returns the invocation token, e.g. `\foo`.
func (m *MacroAtom) Command() string { return m.command }

// Def returns the definition template.
func (m *MacroAtom) Def() string { return m.def }

// Args returns the current argument encoding. ok is false when there is none.
func (m *MacroAtom) Args() (args string, ok bool) {
	return m.args, m.args != ""
}

// Expand reports whether expanding serialization writes the body.
func (m *MacroAtom) Expand() bool { return m.expand }

// CaptureSelection defaults to true for macros constructed without
// arguments. It is fixed at construction; reloading args does not change it.
func (m *MacroAtom) CaptureSelection() bool { return m.capture }

func (m *MacroAtom) Serialize(opts SerializeOptions) string {
	if opts.Expand && m.expand {
		return SerializeBody(m.body, opts)
	}
	return m.command + m.args
}

// ApplyStyle forwards only color attributes. Typography inside a macro
// belongs to its definition.
func (m *MacroAtom) ApplyStyle(style Style, opts StyleOptions) {
	applyStyle(m, style.Colors(), opts)
}

func (m *MacroAtom) Render(ctx *Context) *Box {
	if ctx == nil || ctx.Layout == nil {
		return nil
	}
	box := ctx.Layout.ComposeAsUnit(ctx, m.body, CompositionLift)
	if box == nil {
		return nil
	}
	ctx.Layout.BindCaret(box, m)
	return box
}

// ReloadArgs recomputes the argument encoding by matching the serialized
// body against the definition template. A body that no longer fits clears
// the encoding.
func (m *MacroAtom) ReloadArgs() error {
	body := SerializeBody(m.body, SerializeOptions{
		Expand:      false,
		DefaultMode: ModeMath,
		SkipStyles:  true,
	})

	args, ok, err := matcher.Match(m.def, body)
	if err != nil {
		return fmt.Errorf("reload args of %s: %w", m.command, err)
	}
	if !ok {
		m.args = ""
		return nil
	}

	m.args = matcher.Encode(args)
	return nil
}

func (m *MacroAtom) Snapshot() Snapshot {
	s := m.snapshot(TypeMacro)
	s.Command = m.command
	s.Def = m.def
	s.Args = m.args
	s.Expand = m.expand
	if m.captureSelection != nil {
		capture := *m.captureSelection
		s.CaptureSelection = &capture
	}
	return s
}

// MacroArgumentAtom marks an argument substitution point inside a macro
// body. It has no content and produces no output.
type MacroArgumentAtom struct {
	atomBase
}

// NewMacroArgument creates an argument marker.
func NewMacroArgument() *MacroArgumentAtom {
	return &MacroArgumentAtom{}
}

func (a *MacroArgumentAtom) Type() string { return TypeMacroArgument }

func (a *MacroArgumentAtom) Serialize(SerializeOptions) string { return "" }

// Render produces nothing; argument substitution is not drawn.
func (a *MacroArgumentAtom) Render(*Context) *Box { return nil }

func (a *MacroArgumentAtom) Snapshot() Snapshot {
	return Snapshot{Type: TypeMacroArgument}
}

func (a *MacroArgumentAtom) ApplyStyle(style Style, opts StyleOptions) {
	applyStyle(a, style, opts)
}
