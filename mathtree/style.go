package mathtree

// Style holds the visual attributes an atom can carry.
type Style struct {
	Color           string `json:"color,omitempty"`
	BackgroundColor string `json:"backgroundColor,omitempty"`
	FontFamily      string `json:"fontFamily,omitempty"`
	FontShape       string `json:"fontShape,omitempty"`
	FontSeries      string `json:"fontSeries,omitempty"`
	FontSize        string `json:"fontSize,omitempty"`
}

// IsEmpty reports whether no attribute is set.
func (s Style) IsEmpty() bool {
	return s == Style{}
}

// Colors returns only the color attributes of s.
func (s Style) Colors() Style {
	return Style{Color: s.Color, BackgroundColor: s.BackgroundColor}
}

// StyleOperation selects how ApplyStyle combines attributes.
type StyleOperation string

const (
	StyleSet    StyleOperation = "set"
	StyleToggle StyleOperation = "toggle"
)

// StyleOptions controls style application.
type StyleOptions struct {
	Operation StyleOperation
}

// applyStyle merges style into atom and its descendants. Each child applies
// the style through its own ApplyStyle so variants can restrict it.
func applyStyle(atom Atom, style Style, opts StyleOptions) {
	b := atom.base()
	b.style = mergeStyle(b.style, style, opts.Operation)
	for _, child := range b.body {
		child.ApplyStyle(style, opts)
	}
}

func mergeStyle(current, style Style, op StyleOperation) Style {
	merge := func(current, value string) string {
		if value == "" {
			return current
		}
		if op == StyleToggle && current == value {
			return ""
		}
		return value
	}

	return Style{
		Color:           merge(current.Color, style.Color),
		BackgroundColor: merge(current.BackgroundColor, style.BackgroundColor),
		FontFamily:      merge(current.FontFamily, style.FontFamily),
		FontShape:       merge(current.FontShape, style.FontShape),
		FontSeries:      merge(current.FontSeries, style.FontSeries),
		FontSize:        merge(current.FontSize, style.FontSize),
	}
}
