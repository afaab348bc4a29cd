package htmlbox

import (
	"fmt"
	"io"
	"strings"

	"github.com/rgonek/mathmacro/mathtree"
	xhtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	classPrefix = "mm-"
	rootClass   = "mathmacro"
)

// Render writes box as nested span elements wrapped in a root span. A nil
// box writes an empty root.
func Render(w io.Writer, box *mathtree.Box) error {
	root := newSpan(rootClass)
	if child := boxNode(box); child != nil {
		root.AppendChild(child)
	}

	if err := xhtml.Render(w, root); err != nil {
		return fmt.Errorf("failed to render HTML: %w", err)
	}
	return nil
}

// RenderString is Render into a string.
func RenderString(box *mathtree.Box) (string, error) {
	var sb strings.Builder
	if err := Render(&sb, box); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// RenderAtom lays out root with Layout and renders the result.
func RenderAtom(w io.Writer, root mathtree.Atom) error {
	return Render(w, Box(root))
}

func boxNode(box *mathtree.Box) *xhtml.Node {
	if box == nil {
		return nil
	}

	node := newSpan(classPrefix + box.Type)
	if css := styleCSS(box.Style); css != "" {
		node.Attr = append(node.Attr, xhtml.Attribute{Key: "style", Val: css})
	}
	if box.Caret != "" {
		node.Attr = append(node.Attr, xhtml.Attribute{Key: "data-caret", Val: box.Caret})
	}

	if box.Text != "" {
		node.AppendChild(&xhtml.Node{Type: xhtml.TextNode, Data: box.Text})
	}
	for _, child := range box.Children {
		if childNode := boxNode(child); childNode != nil {
			node.AppendChild(childNode)
		}
	}

	return node
}

func newSpan(class string) *xhtml.Node {
	return &xhtml.Node{
		Type:     xhtml.ElementNode,
		DataAtom: atom.Span,
		Data:     "span",
		Attr:     []xhtml.Attribute{{Key: "class", Val: class}},
	}
}

func styleCSS(style mathtree.Style) string {
	if style.IsEmpty() {
		return ""
	}

	declarations := []struct {
		property string
		value    string
	}{
		{"color", style.Color},
		{"background-color", style.BackgroundColor},
		{"font-family", style.FontFamily},
		{"font-style", style.FontShape},
		{"font-weight", style.FontSeries},
		{"font-size", style.FontSize},
	}

	var parts []string
	for _, d := range declarations {
		if d.value != "" {
			parts = append(parts, d.property+": "+d.value)
		}
	}
	return strings.Join(parts, "; ")
}
