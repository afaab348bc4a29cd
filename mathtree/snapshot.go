package mathtree

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnknownAtomType indicates a snapshot names an atom type this package
// cannot build.
var ErrUnknownAtomType = errors.New("unknown atom type")

// Snapshot is the persisted form of an atom. Unset fields are omitted.
type Snapshot struct {
	Type             string     `json:"type"`
	Value            string     `json:"value,omitempty"`
	Command          string     `json:"command,omitempty"`
	Def              string     `json:"def,omitempty"`
	Args             string     `json:"args,omitempty"`
	Expand           bool       `json:"expand,omitempty"`
	CaptureSelection *bool      `json:"captureSelection,omitempty"`
	Style            *Style     `json:"style,omitempty"`
	Body             []Snapshot `json:"body,omitempty"`
}

// FromSnapshot rebuilds an atom and its descendants. Macro arguments are
// taken from the snapshot as-is, not re-derived from the body.
func FromSnapshot(s Snapshot) (Atom, error) {
	body := make([]Atom, 0, len(s.Body))
	for index, child := range s.Body {
		atom, err := FromSnapshot(child)
		if err != nil {
			return nil, fmt.Errorf("%s body[%d]: %w", s.Type, index, err)
		}
		body = append(body, atom)
	}

	var atom Atom
	switch s.Type {
	case TypeRoot:
		atom = NewRoot(body...)
	case TypeGroup:
		atom = NewGroup(body...)
	case TypeText:
		atom = NewText(s.Value)
	case TypeMacro:
		opts := []MacroOption{WithArgs(s.Args), WithExpand(s.Expand)}
		if s.CaptureSelection != nil {
			opts = append(opts, WithCaptureSelection(*s.CaptureSelection))
		}
		macro, err := NewMacro(s.Command, s.Def, body, opts...)
		if err != nil {
			return nil, err
		}
		atom = macro
	case TypeMacroArgument:
		atom = NewMacroArgument()
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAtomType, s.Type)
	}

	if s.Style != nil {
		atom.base().style = *s.Style
	}

	return atom, nil
}

// Marshal encodes the tree rooted at atom as JSON.
func Marshal(atom Atom) ([]byte, error) {
	return json.Marshal(atom.Snapshot())
}

// Unmarshal decodes a JSON snapshot into a tree.
func Unmarshal(data []byte) (Atom, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot JSON: %w", err)
	}
	return FromSnapshot(s)
}
