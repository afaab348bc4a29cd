package markup

import "github.com/rgonek/mathmacro/mathtree"

// Result holds the output of a parse.
type Result struct {
	Root     *mathtree.GroupAtom
	Warnings []Warning
}

// WarningType categorizes parse warnings.
type WarningType string

const (
	WarningUnterminatedGroup WarningType = "unterminated_group"
	WarningUnexpectedBrace   WarningType = "unexpected_brace"
	WarningMissingArgument   WarningType = "missing_argument"
	WarningUnresolvedMacro   WarningType = "unresolved_macro"
	WarningAmbiguousTemplate WarningType = "ambiguous_template"
	WarningUnboundParameter  WarningType = "unbound_parameter"
)

// Warning represents a non-fatal issue encountered while parsing.
type Warning struct {
	Type    WarningType `json:"type"`
	Command string      `json:"command,omitempty"`
	Message string      `json:"message"`
}
