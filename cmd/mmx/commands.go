package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rgonek/mathmacro/htmlbox"
	"github.com/rgonek/mathmacro/mathtree"
	"github.com/rgonek/mathmacro/mdscan"
	"github.com/spf13/cobra"
)

func newVersionCmd(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "mmx v%s\n", version)
		},
	}
}

func (a *app) newParseCmd() *cobra.Command {
	var expand bool

	cmd := &cobra.Command{
		Use:   "parse <expr>",
		Short: "Parse markup and print its serialization or snapshot",
		Example: `  mmx parse --define 'half=\frac{1}{2}' '\half+x'
  mmx parse --macros macros.yaml --expand '\pair{a}{b}'
  mmx parse -o json '\pair{a}{b}'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := a.parse(cmd.Context(), cmd.ErrOrStderr(), args[0])
			if err != nil {
				return err
			}

			if a.config.Output == outputJSON {
				return writeSnapshot(cmd.OutOrStdout(), result.Root)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), result.Root.Serialize(mathtree.SerializeOptions{
				Expand:      expand,
				DefaultMode: mathtree.ModeMath,
			}))
			return err
		},
	}
	cmd.Flags().BoolVar(&expand, "expand", false, "serialize expandable macros as their bodies")

	return cmd
}

func (a *app) newRenderCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "render <expr>",
		Short: "Render markup as HTML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := a.parse(cmd.Context(), cmd.ErrOrStderr(), args[0])
			if err != nil {
				return err
			}

			if err := htmlbox.RenderAtom(cmd.OutOrStdout(), result.Root); err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout())
			return err
		},
	}
}

func (a *app) newReconcileCmd() *cobra.Command {
	var sets []string

	cmd := &cobra.Command{
		Use:   "reconcile <snapshot.json>",
		Short: "Edit leaves of a snapshot and recompute macro arguments",
		Long: `Load a tree snapshot, replace the values of the text leaves named by
--set, and recompute the arguments of every macro above each edit.

A path lists child indexes from the root separated by dots, e.g. 0.1.0.
Use - to read the snapshot from stdin.`,
		Example: `  mmx parse -o json --define 'f=\frac{#1}{#2}' '\f{a}{b}' > tree.json
  mmx reconcile tree.json --set 0.1.0=c`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			root, err := mathtree.Unmarshal(data)
			if err != nil {
				return err
			}

			reloaded := 0
			reconciler := mathtree.Reconciler{
				Logger:   a.logger,
				OnReload: func(*mathtree.MacroAtom) { reloaded++ },
			}
			for _, set := range sets {
				leaf, value, err := parseSet(root, set)
				if err != nil {
					return err
				}
				leaf.SetValue(value)
				if err := reconciler.Walk(leaf.Parent()); err != nil {
					return err
				}
			}
			a.logger.Info("reconciled snapshot", "edits", len(sets), "reloads", reloaded)

			if a.config.Output == outputJSON {
				return writeSnapshot(cmd.OutOrStdout(), root)
			}
			renderMacroTable(cmd.OutOrStdout(), root)
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&sets, "set", nil, "edit path=value (repeatable)")

	return cmd
}

func (a *app) newScanCmd() *cobra.Command {
	var languages []string

	cmd := &cobra.Command{
		Use:   "scan <file.md>",
		Short: "List math snippets in a Markdown file and the macros they use",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			snippets, err := mdscan.New(languages...).Scan(data)
			if err != nil {
				return err
			}

			rows := make([]scanRow, 0, len(snippets))
			for _, snippet := range snippets {
				result, err := a.parse(cmd.Context(), cmd.ErrOrStderr(), snippet.Source)
				if err != nil {
					return fmt.Errorf("line %d: %w", snippet.Line, err)
				}
				row := scanRow{Snippet: snippet, Warnings: len(result.Warnings)}
				for _, macro := range mathtree.Macros(result.Root) {
					row.Macros = append(row.Macros, macro.Serialize(mathtree.SerializeOptions{}))
				}
				rows = append(rows, row)
			}

			if a.config.Output == outputJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(rows)
			}
			renderScanTable(cmd.OutOrStdout(), rows)
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&languages, "lang", nil, "fence languages treated as math (default: math, latex, tex)")

	return cmd
}

type scanRow struct {
	mdscan.Snippet
	Macros   []string `json:"macros,omitempty"`
	Warnings int      `json:"warnings"`
}

func renderScanTable(w io.Writer, rows []scanRow) {
	if len(rows) == 0 {
		_, _ = fmt.Fprintln(w, "(no math found)")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Line", "Kind", "Source", "Macros", "Warnings"})
	for _, row := range rows {
		kind := "inline"
		if row.Display {
			kind = "display"
		}
		t.AppendRow(table.Row{row.Line, kind, row.Source, strings.Join(row.Macros, " "), row.Warnings})
	}
	t.Render()
}

func renderMacroTable(w io.Writer, root mathtree.Atom) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Path", "Command", "Args", "Body"})

	walkPaths(root, nil, func(path []int, atom mathtree.Atom) {
		macro, ok := atom.(*mathtree.MacroAtom)
		if !ok {
			return
		}
		args, ok := macro.Args()
		if !ok {
			args = "(none)"
		}
		body := mathtree.SerializeBody(macro.Body(), mathtree.SerializeOptions{SkipStyles: true})
		t.AppendRow(table.Row{formatPath(path), macro.Command(), args, body})
	})

	t.Render()
	_, _ = fmt.Fprintln(w, root.Serialize(mathtree.SerializeOptions{}))
}

func walkPaths(atom mathtree.Atom, path []int, fn func([]int, mathtree.Atom)) {
	fn(path, atom)
	for i, child := range atom.Body() {
		childPath := append(append([]int(nil), path...), i)
		walkPaths(child, childPath, fn)
	}
}

// parseSet resolves "path=value" to the text leaf at path.
func parseSet(root mathtree.Atom, set string) (*mathtree.TextAtom, string, error) {
	rawPath, value, ok := strings.Cut(set, "=")
	if !ok {
		return nil, "", fmt.Errorf("invalid --set %q: expected path=value", set)
	}

	path, err := parsePath(rawPath)
	if err != nil {
		return nil, "", err
	}
	atom, err := mathtree.AtomAt(root, path)
	if err != nil {
		return nil, "", err
	}
	leaf, ok := atom.(*mathtree.TextAtom)
	if !ok {
		return nil, "", fmt.Errorf("atom at %s is a %s, not a text leaf", rawPath, atom.Type())
	}

	return leaf, value, nil
}

func parsePath(raw string) ([]int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	parts := strings.Split(raw, ".")
	path := make([]int, 0, len(parts))
	for _, part := range parts {
		index, err := strconv.Atoi(part)
		if err != nil || index < 0 {
			return nil, fmt.Errorf("invalid path %q: %q is not a child index", raw, part)
		}
		path = append(path, index)
	}
	return path, nil
}

func formatPath(path []int) string {
	if len(path) == 0 {
		return "."
	}
	parts := make([]string, len(path))
	for i, index := range path {
		parts[i] = strconv.Itoa(index)
	}
	return strings.Join(parts, ".")
}
