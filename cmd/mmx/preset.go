package main

import (
	"fmt"
	"strings"

	"github.com/rgonek/mathmacro/markup"
)

const (
	presetBalanced = "balanced"
	presetStrict   = "strict"
	presetShallow  = "shallow"
)

const shallowMaxDepth = 8

func presetConfig(preset string) (markup.Config, error) {
	switch strings.ToLower(strings.TrimSpace(preset)) {
	case "", presetBalanced:
		return markup.Config{}, nil
	case presetStrict:
		return markup.Config{
			ResolutionMode: markup.ResolutionStrict,
		}, nil
	case presetShallow:
		return markup.Config{
			MaxDepth: shallowMaxDepth,
		}, nil
	default:
		return markup.Config{}, fmt.Errorf("unknown preset %q (allowed: balanced, strict, shallow)", preset)
	}
}

// resolveConfig applies explicit settings on top of a preset.
func resolveConfig(preset string, maxDepth int, strict bool) (markup.Config, error) {
	cfg, err := presetConfig(preset)
	if err != nil {
		return markup.Config{}, err
	}

	if maxDepth > 0 {
		cfg.MaxDepth = maxDepth
	}
	if strict {
		cfg.ResolutionMode = markup.ResolutionStrict
	}

	return cfg, nil
}
