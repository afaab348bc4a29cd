package markup

import (
	"fmt"
	"log/slog"
)

// DefaultMaxDepth bounds nested macro expansion.
const DefaultMaxDepth = 64

// Config holds parser configuration.
type Config struct {
	Macros         Catalog        `json:"macros,omitempty"`
	MaxDepth       int            `json:"maxDepth,omitempty"`
	ResolutionMode ResolutionMode `json:"resolutionMode,omitempty"`
	Resolver       MacroResolver  `json:"-"`
	Logger         *slog.Logger   `json:"-"`
}

func (c Config) applyDefaults() Config {
	if c.MaxDepth == 0 {
		c.MaxDepth = DefaultMaxDepth
	}
	if c.ResolutionMode == "" {
		c.ResolutionMode = ResolutionBestEffort
	}
	if c.Logger == nil {
		c.Logger = slog.New(slog.DiscardHandler)
	}
	return c
}

// clone returns a copy of Config that shares no map with the original.
func (c Config) clone() Config {
	cloned := c
	cloned.Macros = c.Macros.clone()
	return cloned
}

// Validate checks that config values are valid.
func (c Config) Validate() error {
	if c.MaxDepth < 1 {
		return fmt.Errorf("maxDepth must be positive, got %d", c.MaxDepth)
	}
	if c.ResolutionMode != ResolutionBestEffort && c.ResolutionMode != ResolutionStrict {
		return fmt.Errorf("invalid resolutionMode %q", c.ResolutionMode)
	}
	if err := c.Macros.Validate(); err != nil {
		return fmt.Errorf("invalid macros: %w", err)
	}
	return nil
}
