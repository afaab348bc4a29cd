package markup

import (
	"context"
	"errors"
	"testing"

	"github.com/rgonek/mathmacro/internal/testutil"
	"github.com/rgonek/mathmacro/matcher"
	"github.com/rgonek/mathmacro/mathtree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestParser(t testing.TB, cfg Config) *Parser {
	t.Helper()

	if cfg.Logger == nil {
		cfg.Logger = testutil.NewTestLogger(t)
	}
	p, err := New(cfg)
	require.NoError(t, err)

	return p
}

func testCatalog() Catalog {
	return Catalog{
		"foo":  {Def: `\frac{#1}{#2}`},
		"half": {Def: `\frac{1}{2}`},
		"vec":  {Def: `\overrightarrow{#1}`, Expand: true},
	}
}

func firstMacro(t testing.TB, root mathtree.Atom) *mathtree.MacroAtom {
	t.Helper()

	macros := mathtree.Macros(root)
	require.NotEmpty(t, macros)
	return macros[0]
}

func TestParseExpandsMacro(t *testing.T) {
	p := newTestParser(t, Config{Macros: testCatalog()})

	result, err := p.Parse(`\foo{a}{b}`)
	require.NoError(t, err)
	assert.Empty(t, result.Warnings)

	macro := firstMacro(t, result.Root)
	assert.Equal(t, `\foo`, macro.Command())
	assert.Equal(t, `\frac{#1}{#2}`, macro.Def())
	args, ok := macro.Args()
	assert.True(t, ok)
	assert.Equal(t, "{a}{b}", args)
	assert.False(t, macro.CaptureSelection())

	assert.Equal(t, `\frac{a}{b}`, mathtree.SerializeBody(macro.Body(), mathtree.SerializeOptions{}))
	assert.Equal(t, `\foo{a}{b}`, result.Root.Serialize(mathtree.SerializeOptions{}))
}

func TestParsedArgsSurviveReload(t *testing.T) {
	inputs := []string{
		`\foo{a}{b}`,
		`\foo{x+1}{\sqrt{2}}`,
		`\foo{\half}{b}`,
		`\foo a b`,
		`\foo{x + 1}{b}`,
		`\foo{\alpha x}{ b }`,
		`\foo{\half y}{b}`,
		`\foo{a}`,
		`\pair{a}{b}`,
		`\pair{ a + 1 }{\beta c}`,
		`\greek{x}`,
		`\after{\alpha}`,
	}
	catalog := testCatalog()
	catalog["pair"] = Definition{Def: `\left(#1, #2\right)`}
	catalog["greek"] = Definition{Def: `\alpha #1`}
	catalog["after"] = Definition{Def: `#1 x`}
	p := newTestParser(t, Config{Macros: catalog})

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			result, err := p.Parse(input)
			require.NoError(t, err)

			macro := firstMacro(t, result.Root)
			before, ok := macro.Args()
			require.True(t, ok)
			require.NoError(t, macro.ReloadArgs())
			after, ok := macro.Args()
			assert.True(t, ok)
			assert.Equal(t, before, after)
		})
	}
}

func TestParseNormalizesArgWhitespace(t *testing.T) {
	catalog := testCatalog()
	catalog["pair"] = Definition{Def: `\left(#1, #2\right)`}
	p := newTestParser(t, Config{Macros: catalog})

	result, err := p.Parse(`\foo{x + 1}{\alpha b}`)
	require.NoError(t, err)
	args, _ := firstMacro(t, result.Root).Args()
	assert.Equal(t, `{x+1}{\alpha b}`, args)

	result, err = p.Parse(`\pair{a}{b}`)
	require.NoError(t, err)
	macro := firstMacro(t, result.Root)
	assert.Equal(t, `\left(#1,#2\right)`, macro.Def())

	leaf, err := mathtree.AtomAt(result.Root, []int{0, 2})
	require.NoError(t, err)
	text, ok := leaf.(*mathtree.TextAtom)
	require.True(t, ok)
	require.Equal(t, "a", text.Value())
	text.SetValue("c")
	require.NoError(t, mathtree.ReconcileAncestors(macro))
	assert.Equal(t, `\pair{c}{b}`, result.Root.Serialize(mathtree.SerializeOptions{}))
}

func TestParseMacroWithoutArguments(t *testing.T) {
	p := newTestParser(t, Config{Macros: testCatalog()})

	result, err := p.Parse(`\half+x`)
	require.NoError(t, err)

	macro := firstMacro(t, result.Root)
	_, ok := macro.Args()
	assert.False(t, ok)
	assert.True(t, macro.CaptureSelection())
	assert.Equal(t, `\half+x`, result.Root.Serialize(mathtree.SerializeOptions{}))
}

func TestParseExpandedSerialization(t *testing.T) {
	p := newTestParser(t, Config{Macros: testCatalog()})

	result, err := p.Parse(`\vec{v}+\foo{1}{2}`)
	require.NoError(t, err)

	assert.Equal(t, `\overrightarrow{v}+\foo{1}{2}`, result.Root.Serialize(mathtree.SerializeOptions{Expand: true}))
	assert.Equal(t, `\vec{v}+\foo{1}{2}`, result.Root.Serialize(mathtree.SerializeOptions{}))
}

func TestParseEditAndReconcile(t *testing.T) {
	p := newTestParser(t, Config{Macros: testCatalog()})

	result, err := p.Parse(`\foo{a}{b}`)
	require.NoError(t, err)

	atom, err := mathtree.AtomAt(result.Root, []int{0, 1, 0})
	require.NoError(t, err)
	leaf, ok := atom.(*mathtree.TextAtom)
	require.True(t, ok)
	require.Equal(t, "a", leaf.Value())

	leaf.SetValue("c")
	require.NoError(t, mathtree.ReconcileAncestors(leaf.Parent()))

	assert.Equal(t, `\foo{c}{b}`, result.Root.Serialize(mathtree.SerializeOptions{}))
}

func TestParseKeepsPlainCommands(t *testing.T) {
	p := newTestParser(t, Config{})

	result, err := p.Parse(`\alpha b + \, c^{2}`)
	require.NoError(t, err)
	assert.Equal(t, `\alpha b+\,c^{2}`, result.Root.Serialize(mathtree.SerializeOptions{}))
	assert.Empty(t, mathtree.Macros(result.Root))
}

func TestParseWarnings(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  WarningType
	}{
		{name: "unterminated group", input: `{a`, want: WarningUnterminatedGroup},
		{name: "unexpected brace", input: `a}`, want: WarningUnexpectedBrace},
		{name: "missing argument", input: `\foo{a}`, want: WarningMissingArgument},
		{name: "missing argument inside group", input: `{\foo{a}}`, want: WarningMissingArgument},
		{name: "unterminated argument", input: `\foo{a}{b`, want: WarningUnterminatedGroup},
	}

	p := newTestParser(t, Config{Macros: testCatalog()})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := p.Parse(tt.input)
			require.NoError(t, err)
			require.NotEmpty(t, result.Warnings)
			assert.Equal(t, tt.want, result.Warnings[0].Type)
		})
	}
}

func TestParseMissingArgumentKeepsPartialArgs(t *testing.T) {
	p := newTestParser(t, Config{Macros: testCatalog()})

	result, err := p.Parse(`\foo{a}`)
	require.NoError(t, err)

	macro := firstMacro(t, result.Root)
	args, _ := macro.Args()
	assert.Equal(t, "{a}{}", args)

	var markers int
	mathtree.Walk(macro, func(atom mathtree.Atom) bool {
		if atom.Type() == mathtree.TypeMacroArgument {
			markers++
		}
		return true
	})
	assert.Equal(t, 1, markers)

	require.NoError(t, macro.ReloadArgs())
	reloaded, _ := macro.Args()
	assert.Equal(t, args, reloaded)

	var unbound bool
	for _, warning := range result.Warnings {
		unbound = unbound || warning.Type == WarningUnboundParameter
	}
	assert.True(t, unbound)
}

func TestParseAmbiguousTemplateWarnsOnce(t *testing.T) {
	p := newTestParser(t, Config{Macros: Catalog{"cat": {Def: `#1#2`}}})

	result, err := p.Parse(`\cat{a}{b}\cat{c}{d}`)
	require.NoError(t, err)

	require.Len(t, result.Warnings, 1)
	assert.Equal(t, WarningAmbiguousTemplate, result.Warnings[0].Type)
	assert.Equal(t, `\cat`, result.Warnings[0].Command)
}

func TestParseExplicitArgCount(t *testing.T) {
	t.Run("matching placeholders", func(t *testing.T) {
		p := newTestParser(t, Config{Macros: Catalog{"add": {Def: `#1+#2`, Args: 2}}})

		result, err := p.Parse(`\add{a}{b}`)
		require.NoError(t, err)
		assert.Empty(t, result.Warnings)

		macro := firstMacro(t, result.Root)
		before, _ := macro.Args()
		require.NoError(t, macro.ReloadArgs())
		after, _ := macro.Args()
		assert.Equal(t, "{a}{b}", before)
		assert.Equal(t, before, after)
	})

	t.Run("mismatch is rejected", func(t *testing.T) {
		for _, def := range []Definition{{Def: `#1+#2`, Args: 1}, {Def: `#1`, Args: 3}} {
			_, err := New(Config{Macros: Catalog{"inc": def}})
			require.Error(t, err)
			assert.Contains(t, err.Error(), "highest placeholder")
		}
	})
}

func TestParseCaptureSelectionFromDefinition(t *testing.T) {
	capture := true
	p := newTestParser(t, Config{Macros: Catalog{"box": {Def: `\boxed{#1}`, CaptureSelection: &capture}}})

	result, err := p.Parse(`\box{x}`)
	require.NoError(t, err)
	assert.True(t, firstMacro(t, result.Root).CaptureSelection())
}

func TestParseDetectsCycles(t *testing.T) {
	t.Run("self reference", func(t *testing.T) {
		p := newTestParser(t, Config{Macros: Catalog{"loop": {Def: `x\loop`}}})
		_, err := p.Parse(`\loop`)
		require.ErrorIs(t, err, ErrMacroCycle)
	})

	t.Run("mutual reference", func(t *testing.T) {
		p := newTestParser(t, Config{Macros: Catalog{"a": {Def: `\b`}, "b": {Def: `\a`}}})
		_, err := p.Parse(`\a`)
		require.ErrorIs(t, err, ErrMacroCycle)
		assert.Contains(t, err.Error(), `\a -> \b -> \a`)
	})

	t.Run("same macro in argument is not a cycle", func(t *testing.T) {
		p := newTestParser(t, Config{Macros: Catalog{"paren": {Def: `(#1)`}}})
		result, err := p.Parse(`\paren{\paren{x}}`)
		require.NoError(t, err)
		assert.Len(t, mathtree.Macros(result.Root), 2)
	})
}

func TestParseMaxDepth(t *testing.T) {
	p := newTestParser(t, Config{
		MaxDepth: 2,
		Macros: Catalog{
			"a": {Def: `\b`},
			"b": {Def: `\c`},
			"c": {Def: `x`},
		},
	})

	_, err := p.Parse(`\a`)
	require.ErrorIs(t, err, ErrMaxDepth)

	result, err := p.Parse(`\b`)
	require.NoError(t, err)
	assert.Len(t, mathtree.Macros(result.Root), 2)
}

func TestParseResolver(t *testing.T) {
	resolver := func(_ context.Context, in ResolveInput) (ResolveOutput, error) {
		switch in.Name {
		case "dyn":
			return ResolveOutput{Definition: Definition{Def: `[#1]`}, Handled: true}, nil
		case "missing":
			return ResolveOutput{}, ErrUnresolved
		case "broken":
			return ResolveOutput{}, errors.New("boom")
		case "empty":
			return ResolveOutput{Handled: true}, nil
		default:
			return ResolveOutput{}, nil
		}
	}

	t.Run("handled", func(t *testing.T) {
		p := newTestParser(t, Config{Resolver: resolver})
		result, err := p.Parse(`\dyn{x}\alpha`)
		require.NoError(t, err)

		macro := firstMacro(t, result.Root)
		args, _ := macro.Args()
		assert.Equal(t, "{x}", args)
		assert.Equal(t, `\dyn{x}\alpha`, result.Root.Serialize(mathtree.SerializeOptions{}))
	})

	t.Run("unresolved best effort", func(t *testing.T) {
		p := newTestParser(t, Config{Resolver: resolver})
		result, err := p.Parse(`\missing`)
		require.NoError(t, err)
		require.Len(t, result.Warnings, 1)
		assert.Equal(t, WarningUnresolvedMacro, result.Warnings[0].Type)
		assert.Empty(t, mathtree.Macros(result.Root))
	})

	t.Run("unresolved strict", func(t *testing.T) {
		p := newTestParser(t, Config{Resolver: resolver, ResolutionMode: ResolutionStrict})
		_, err := p.Parse(`\missing`)
		require.ErrorIs(t, err, ErrUnresolved)
	})

	t.Run("resolver failure", func(t *testing.T) {
		p := newTestParser(t, Config{Resolver: resolver})
		_, err := p.Parse(`\broken`)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "macro resolver failed")
	})

	t.Run("handled without template", func(t *testing.T) {
		p := newTestParser(t, Config{Resolver: resolver})
		_, err := p.Parse(`\empty`)
		require.ErrorIs(t, err, matcher.ErrInvalidTemplate)
	})

	t.Run("handled with mismatched args", func(t *testing.T) {
		p := newTestParser(t, Config{Resolver: resolver})
		_, err := p.Parse(`\skewed{a}`)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid resolver output for \\skewed")
	})

	t.Run("catalog wins over resolver", func(t *testing.T) {
		p := newTestParser(t, Config{Resolver: resolver, Macros: Catalog{"dyn": {Def: `<#1>`}}})
		result, err := p.Parse(`\dyn{x}`)
		require.NoError(t, err)
		assert.Equal(t, `<#1>`, firstMacro(t, result.Root).Def())
	})
}

func TestParseWithCanceledContext(t *testing.T) {
	p := newTestParser(t, Config{Macros: testCatalog()})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.ParseWithContext(ctx, `\half`)
	require.ErrorIs(t, err, context.Canceled)
}
