package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/rgonek/mathmacro/markup"
	"github.com/rgonek/mathmacro/mathtree"
	"github.com/spf13/cobra"
)

// app carries state shared by the subcommands of one invocation.
type app struct {
	cfgFile string
	defines []string
	config  *Config
	logger  *slog.Logger
}

func newRootCmd(version string) *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "mmx",
		Short: "Math markup macro tool",
		Long: `mmx parses math markup, expands macros from a catalog into editable
macro atoms and keeps their recorded arguments in sync after edits.`,
		Version: version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "version" {
				return nil
			}
			return a.setup(cmd)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default: ./mmx.yaml)")
	flags.StringArrayVar(&a.defines, "define", nil, "inline macro definition name=template (repeatable)")
	flags.String("macros", "", "path to a YAML macro catalog")
	flags.String("preset", "", "preset: balanced|strict|shallow")
	flags.Int("max-depth", 0, "maximum nested macro expansion depth")
	flags.Bool("strict", false, "fail on unresolved macros and on parse warnings")
	flags.String("log-level", "", "log level (debug|info|warn|error)")
	flags.StringP("output", "o", "", "output format (text|json)")

	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{outputText, outputJSON}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("preset", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{presetBalanced, presetStrict, presetShallow}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(newVersionCmd(version))
	rootCmd.AddCommand(a.newParseCmd())
	rootCmd.AddCommand(a.newRenderCmd())
	rootCmd.AddCommand(a.newReconcileCmd())
	rootCmd.AddCommand(a.newScanCmd())

	return rootCmd
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := loadConfig(a.cfgFile, cmd.Root().PersistentFlags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cmd.ErrOrStderr(), cfg.LogLevel)
	if err != nil {
		return err
	}

	a.config = cfg
	a.logger = logger
	return nil
}

func (a *app) newParser() (*markup.Parser, error) {
	cfg, err := resolveConfig(a.config.Preset, a.config.MaxDepth, a.config.Strict)
	if err != nil {
		return nil, err
	}

	if a.config.Macros != "" {
		catalog, err := markup.LoadCatalog(a.config.Macros)
		if err != nil {
			return nil, err
		}
		cfg.Macros = catalog
	}

	defines, err := parseDefines(a.defines)
	if err != nil {
		return nil, err
	}
	if len(defines) > 0 {
		cfg.Resolver = definesResolver(defines)
	}
	cfg.Logger = a.logger

	return markup.New(cfg)
}

// strict reports whether warnings fail a command.
func (a *app) strict() bool {
	if a.config.Strict {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(a.config.Preset), presetStrict)
}

func (a *app) parse(ctx context.Context, errOut io.Writer, input string) (markup.Result, error) {
	p, err := a.newParser()
	if err != nil {
		return markup.Result{}, err
	}

	result, err := p.ParseWithContext(ctx, input)
	if err != nil {
		return markup.Result{}, err
	}
	if err := a.reportWarnings(errOut, result.Warnings); err != nil {
		return markup.Result{}, err
	}

	return result, nil
}

func (a *app) reportWarnings(w io.Writer, warnings []markup.Warning) error {
	for _, warning := range warnings {
		_, _ = fmt.Fprintf(w, "warning: [%s] %s\n", warning.Type, warning.Message)
	}
	if a.strict() && len(warnings) > 0 {
		return fmt.Errorf("%d parse warning(s) in strict mode", len(warnings))
	}
	return nil
}

// parseDefines reads name=template pairs. An empty template declares a macro
// whose definition is unknown.
func parseDefines(values []string) (markup.Catalog, error) {
	catalog := make(markup.Catalog, len(values))
	for _, value := range values {
		name, def, ok := strings.Cut(value, "=")
		name = strings.TrimPrefix(strings.TrimSpace(name), `\`)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid define %q: expected name=template", value)
		}
		catalog[name] = markup.Definition{Def: def}
	}
	return catalog, nil
}

func definesResolver(defines markup.Catalog) markup.MacroResolver {
	return func(_ context.Context, in markup.ResolveInput) (markup.ResolveOutput, error) {
		def, ok := defines[in.Name]
		if !ok {
			return markup.ResolveOutput{}, nil
		}
		if def.Def == "" {
			return markup.ResolveOutput{}, fmt.Errorf("%s declared without a template: %w", in.Command, markup.ErrUnresolved)
		}
		return markup.ResolveOutput{Definition: def, Handled: true}, nil
	}
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}

	data, err := os.ReadFile(path) //nolint:gosec // path is supplied by the user
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

func writeSnapshot(w io.Writer, root mathtree.Atom) error {
	data, err := mathtree.Marshal(root)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
