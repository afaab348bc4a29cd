// Package htmlbox is a reference layout for mathtree: it composes atoms into
// boxes and writes box trees as HTML spans.
package htmlbox

import "github.com/rgonek/mathmacro/mathtree"

// Layout implements mathtree.Layout. The zero value is ready to use.
type Layout struct{}

var _ mathtree.Layout = Layout{}

// ComposeAsUnit renders atoms in order and collects the visible boxes under
// one box of the given composition.
func (Layout) ComposeAsUnit(ctx *mathtree.Context, atoms []mathtree.Atom, kind mathtree.Composition) *mathtree.Box {
	var children []*mathtree.Box
	for _, atom := range atoms {
		if box := atom.Render(ctx); box != nil {
			children = append(children, box)
		}
	}
	if len(children) == 0 {
		return nil
	}

	return &mathtree.Box{
		Type:        string(kind),
		Composition: kind,
		Children:    children,
	}
}

func (Layout) BindCaret(box *mathtree.Box, atom mathtree.Atom) {
	if box == nil || atom == nil {
		return
	}
	if caret := atom.Caret(); caret != "" {
		box.Caret = caret
	}
}

// Box renders root in math mode with this layout.
func Box(root mathtree.Atom) *mathtree.Box {
	if root == nil {
		return nil
	}
	return root.Render(&mathtree.Context{Layout: Layout{}, Mode: mathtree.ModeMath})
}
