package markup

import (
	"context"
	"errors"
)

// ErrUnresolved indicates that a resolver recognized a command as a macro
// but could not produce its definition.
var ErrUnresolved = errors.New("unresolved macro definition")

// ResolutionMode controls how unresolved resolver results are handled.
type ResolutionMode string

const (
	// ResolutionBestEffort keeps the command as a plain symbol and warns.
	ResolutionBestEffort ResolutionMode = "best_effort"
	// ResolutionStrict fails the parse when a resolver returns ErrUnresolved.
	ResolutionStrict ResolutionMode = "strict"
)

// MacroResolver looks up definitions for commands missing from the catalog.
type MacroResolver func(ctx context.Context, in ResolveInput) (ResolveOutput, error)

// ResolveInput describes the command being resolved.
type ResolveInput struct {
	Name    string // without the leading backslash
	Command string
}

// ResolveOutput carries a resolver-provided definition.
type ResolveOutput struct {
	Definition Definition
	Handled    bool
}
