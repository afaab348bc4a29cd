// Package markup parses math markup into a mathtree, expanding macros from a
// catalog into editable macro atoms.
package markup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/rgonek/mathmacro/matcher"
	"github.com/rgonek/mathmacro/mathtree"
)

var (
	// ErrMacroCycle indicates a macro definition refers back to a macro that
	// is already being expanded.
	ErrMacroCycle = errors.New("macro cycle detected")
	// ErrMaxDepth indicates macro expansion nested deeper than MaxDepth.
	ErrMaxDepth = errors.New("max expansion depth exceeded")
)

// Parser converts markup into a tree.
type Parser struct {
	config Config
}

type state struct {
	ctx       context.Context
	config    Config
	warnings  []Warning
	expanding []string
	warned    map[string]bool
}

// New creates a Parser with the given config.
func New(config Config) (*Parser, error) {
	cfg := config.applyDefaults().clone()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Parser{config: cfg}, nil
}

// Parse parses input into a tree rooted at a root group.
func (p *Parser) Parse(input string) (Result, error) {
	return p.ParseWithContext(context.Background(), input)
}

// ParseWithContext is Parse with a context passed to the resolver hook.
func (p *Parser) ParseWithContext(ctx context.Context, input string) (Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	s := &state{
		ctx:    ctx,
		config: p.config,
		warned: make(map[string]bool),
	}

	atoms, _, err := s.parseSequence(&scanner{src: input}, false)
	if err != nil {
		return Result{}, err
	}

	return Result{
		Root:     mathtree.NewRoot(atoms...),
		Warnings: s.warnings,
	}, nil
}

func (s *state) checkContext() error {
	if err := s.ctx.Err(); err != nil {
		return err
	}
	return nil
}

func (s *state) addWarning(warnType WarningType, command, message string) {
	s.warnings = append(s.warnings, Warning{
		Type:    warnType,
		Command: command,
		Message: message,
	})
}

// parseSequence reads atoms until the end of input or, inside a group, the
// matching closing brace. closed reports whether that brace was seen.
func (s *state) parseSequence(sc *scanner, inGroup bool) (atoms []mathtree.Atom, closed bool, err error) {
	for {
		tok := sc.next()
		switch tok.kind {
		case tokenEOF:
			return atoms, false, nil

		case tokenClose:
			if inGroup {
				return atoms, true, nil
			}
			s.addWarning(WarningUnexpectedBrace, "", "unexpected closing brace dropped")

		case tokenOpen:
			children, groupClosed, err := s.parseSequence(sc, true)
			if err != nil {
				return nil, false, err
			}
			if !groupClosed {
				s.addWarning(WarningUnterminatedGroup, "", "group closed at end of input")
			}
			atoms = append(atoms, mathtree.NewGroup(children...))

		case tokenCommand:
			atom, err := s.parseCommand(sc, tok.text)
			if err != nil {
				return nil, false, err
			}
			atoms = append(atoms, atom)

		case tokenParam:
			atoms = append(atoms, mathtree.NewMacroArgument())

		default:
			atoms = append(atoms, mathtree.NewText(tok.text))
		}
	}
}

func (s *state) parseCommand(sc *scanner, command string) (mathtree.Atom, error) {
	def, ok, err := s.lookup(command)
	if err != nil {
		return nil, err
	}
	if !ok {
		return mathtree.NewText(command), nil
	}
	return s.expandMacro(sc, command, def)
}

// lookup finds the definition of command in the catalog, then through the
// resolver hook.
func (s *state) lookup(command string) (Definition, bool, error) {
	name := strings.TrimPrefix(command, `\`)
	if !isMacroName(name) {
		return Definition{}, false, nil
	}
	if def, ok := s.config.Macros[name]; ok {
		return def, true, nil
	}
	if s.config.Resolver == nil {
		return Definition{}, false, nil
	}

	if err := s.checkContext(); err != nil {
		return Definition{}, false, err
	}

	output, err := s.config.Resolver(s.ctx, ResolveInput{Name: name, Command: command})
	if err != nil {
		if errors.Is(err, ErrUnresolved) {
			if s.config.ResolutionMode == ResolutionStrict {
				return Definition{}, false, fmt.Errorf("unresolved macro %s: %w", command, err)
			}
			s.addWarning(
				WarningUnresolvedMacro,
				command,
				fmt.Sprintf("unresolved macro %s; kept as a plain command", command),
			)
			return Definition{}, false, nil
		}
		return Definition{}, false, fmt.Errorf("macro resolver failed: %w", err)
	}

	if !output.Handled {
		return Definition{}, false, nil
	}
	if err := output.Definition.Validate(); err != nil {
		return Definition{}, false, fmt.Errorf("invalid resolver output for %s: %w", command, err)
	}

	return output.Definition, true, nil
}

func (s *state) expandMacro(sc *scanner, command string, def Definition) (mathtree.Atom, error) {
	if err := s.checkContext(); err != nil {
		return nil, err
	}
	if err := s.checkCycle(command, def.Def); err != nil {
		return nil, err
	}
	if len(s.expanding) >= s.config.MaxDepth {
		return nil, fmt.Errorf("%w (%d) while expanding %s", ErrMaxDepth, s.config.MaxDepth, command)
	}

	template := normalize(def.Def, true)
	if !s.warned[command] {
		for _, ambiguity := range matcher.Ambiguities(template) {
			s.addWarning(WarningAmbiguousTemplate, command, ambiguity.String())
		}
		s.warned[command] = true
	}

	count := def.ArgCount()
	args := make([]string, 0, count)
	for i := 0; i < count; i++ {
		arg, found, closed := sc.argument()
		if !found {
			s.addWarning(
				WarningMissingArgument,
				command,
				fmt.Sprintf("%s expects %d arguments, got %d", command, count, i),
			)
			break
		}
		if !closed {
			s.addWarning(WarningUnterminatedGroup, command, "argument closed at end of input")
		}
		args = append(args, normalize(arg, false))
	}

	expansion := s.substitute(command, template, args)

	// Missing arguments are recorded as empty so the encoding matches what
	// the body serializes to.
	recorded := slices.Clone(args)
	for len(recorded) < count {
		recorded = append(recorded, "")
	}

	s.expanding = append(s.expanding, command)
	body, _, err := s.parseSequence(&scanner{src: expansion}, false)
	s.expanding = s.expanding[:len(s.expanding)-1]
	if err != nil {
		return nil, err
	}

	opts := []mathtree.MacroOption{
		mathtree.WithArgs(matcher.Encode(recorded)),
		mathtree.WithExpand(def.Expand),
	}
	if def.CaptureSelection != nil {
		opts = append(opts, mathtree.WithCaptureSelection(*def.CaptureSelection))
	}

	macro, err := mathtree.NewMacro(command, template, body, opts...)
	if err != nil {
		return nil, err
	}

	s.config.Logger.Debug("expanded macro",
		slog.String("command", command),
		slog.Int("args", len(args)),
		slog.Int("depth", len(s.expanding)),
	)

	return macro, nil
}

// checkCycle rejects a definition that invokes a macro already on the
// expansion stack. Only the definition is inspected; arguments may
// legitimately nest the same macro.
func (s *state) checkCycle(command, def string) error {
	stack := append(slices.Clone(s.expanding), command)
	sc := &scanner{src: def}
	for tok := sc.next(); tok.kind != tokenEOF; tok = sc.next() {
		if tok.kind != tokenCommand || !slices.Contains(stack, tok.text) {
			continue
		}
		chain := append(stack, tok.text)
		return fmt.Errorf("%w: %s", ErrMacroCycle, strings.Join(chain, " -> "))
	}
	return nil
}

// substitute replaces #n with the n-th argument. Parameters without an
// argument stay in place and parse as argument markers.
func (s *state) substitute(command, template string, args []string) string {
	var w markupWriter
	sc := &scanner{src: template}
	for tok := sc.next(); tok.kind != tokenEOF; tok = sc.next() {
		if tok.kind != tokenParam {
			w.write(tok.text)
			continue
		}

		number, err := strconv.Atoi(tok.text[1:])
		if err != nil || number < 1 || number > len(args) {
			s.addWarning(
				WarningUnboundParameter,
				command,
				fmt.Sprintf("parameter %s of %s has no argument", tok.text, command),
			)
			w.write(tok.text)
			continue
		}
		w.write(args[number-1])
	}
	return w.String()
}
