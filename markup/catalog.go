package markup

import (
	"fmt"
	"os"

	"github.com/rgonek/mathmacro/matcher"
	"gopkg.in/yaml.v3"
)

// Definition describes one macro.
type Definition struct {
	Def              string `yaml:"def" json:"def"`
	Args             int    `yaml:"args,omitempty" json:"args,omitempty"`
	Expand           bool   `yaml:"expand,omitempty" json:"expand,omitempty"`
	CaptureSelection *bool  `yaml:"captureSelection,omitempty" json:"captureSelection,omitempty"`
}

// ArgCount returns the number of arguments the macro consumes: Args when
// set, otherwise the highest placeholder in the template.
func (d Definition) ArgCount() int {
	if d.Args > 0 {
		return d.Args
	}
	return matcher.ArgCount(d.Def)
}

// Catalog maps macro names, without the leading backslash, to definitions.
type Catalog map[string]Definition

type catalogFile struct {
	Macros Catalog `yaml:"macros"`
}

// LoadCatalog reads a YAML macro catalog from path.
func LoadCatalog(path string) (Catalog, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is supplied by the user
	if err != nil {
		return nil, fmt.Errorf("failed to read macro catalog: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes a YAML document of the form:
//
//	macros:
//	  half:
//	    def: \frac{1}{2}
//	  pair:
//	    def: \left(#1,#2\right)
//
// Whitespace in templates is insignificant, as it is in math markup.
func ParseCatalog(data []byte) (Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse macro catalog: %w", err)
	}
	if err := file.Macros.Validate(); err != nil {
		return nil, err
	}
	return file.Macros, nil
}

// Validate checks names and templates.
func (c Catalog) Validate() error {
	for name, def := range c {
		if !isMacroName(name) {
			return fmt.Errorf("invalid macro name %q: must be ASCII letters", name)
		}
		if err := def.Validate(); err != nil {
			return fmt.Errorf("macro %q: %w", name, err)
		}
	}
	return nil
}

// Validate checks that the template is usable. An explicit Args must agree
// with the placeholders, otherwise recovered arguments would not round-trip.
func (d Definition) Validate() error {
	if d.Def == "" {
		return matcher.ErrInvalidTemplate
	}
	for _, number := range matcher.Placeholders(d.Def) {
		if number < 1 || number > matcher.MaxArgs {
			return fmt.Errorf("placeholder #%d out of range: must be between #1 and #%d", number, matcher.MaxArgs)
		}
	}
	if d.Args < 0 || d.Args > matcher.MaxArgs {
		return fmt.Errorf("args must be between 0 and %d, got %d", matcher.MaxArgs, d.Args)
	}
	if highest := matcher.ArgCount(d.Def); d.Args > 0 && d.Args != highest {
		return fmt.Errorf("args is %d but the highest placeholder is #%d", d.Args, highest)
	}
	return nil
}

func (c Catalog) clone() Catalog {
	if c == nil {
		return nil
	}

	dst := make(Catalog, len(c))
	for name, def := range c {
		if def.CaptureSelection != nil {
			capture := *def.CaptureSelection
			def.CaptureSelection = &capture
		}
		dst[name] = def
	}

	return dst
}

func isMacroName(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		if !isLetter(name[i]) {
			return false
		}
	}
	return true
}
