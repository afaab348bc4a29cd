package mathtree

import "fmt"

// AtomAt follows path, a list of child indexes, down from root.
func AtomAt(root Atom, path []int) (Atom, error) {
	current := root
	for depth, index := range path {
		body := current.Body()
		if index < 0 || index >= len(body) {
			return nil, fmt.Errorf("path %v: index %d out of range at depth %d (%d children)", path, index, depth, len(body))
		}
		current = body[index]
	}
	return current, nil
}

// Walk visits root and its descendants in pre-order. Returning false from
// fn skips the atom's children.
func Walk(root Atom, fn func(Atom) bool) {
	if !fn(root) {
		return
	}
	for _, child := range root.Body() {
		Walk(child, fn)
	}
}

// Macros returns every macro atom under root in pre-order.
func Macros(root Atom) []*MacroAtom {
	var result []*MacroAtom
	Walk(root, func(atom Atom) bool {
		if macro, ok := atom.(*MacroAtom); ok {
			result = append(result, macro)
		}
		return true
	})
	return result
}
