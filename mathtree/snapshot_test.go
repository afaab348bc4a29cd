package mathtree

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMacroSnapshotJSON(t *testing.T) {
	macro := newTestMacro(t, `\foo`, `\frac{#1}{#2}`, []Atom{NewText(`\frac`)}, WithArgs("{a}{b}"), WithExpand(true))

	data, err := Marshal(macro)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"type": "macro",
		"command": "\\foo",
		"def": "\\frac{#1}{#2}",
		"args": "{a}{b}",
		"expand": true,
		"body": [{"type": "text", "value": "\\frac"}]
	}`, string(data))
}

func TestMacroSnapshotOmitsUnsetFields(t *testing.T) {
	macro := newTestMacro(t, `\half`, `\frac{1}{2}`, nil)

	data, err := Marshal(macro)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"macro","command":"\\half","def":"\\frac{1}{2}"}`, string(data))
}

func TestMacroSnapshotKeepsExplicitCaptureSelection(t *testing.T) {
	macro := newTestMacro(t, `\foo`, `#1`, nil, WithArgs("{a}"), WithCaptureSelection(false))

	data, err := Marshal(macro)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"captureSelection":false`)
}

func TestUnmarshalKeepsPersistedArgs(t *testing.T) {
	input := []byte(`{"type":"root","body":[
		{"type":"macro","command":"\\inner","def":"[#1]","args":"{stale}","captureSelection":true,
		 "body":[{"type":"text","value":"["},{"type":"text","value":"y"},{"type":"text","value":"]"}]}
	]}`)

	root, err := Unmarshal(input)
	require.NoError(t, err)

	macro, ok := root.Body()[0].(*MacroAtom)
	require.True(t, ok)

	args, _ := macro.Args()
	assert.Equal(t, "{stale}", args)
	assert.True(t, macro.CaptureSelection())
	assert.Same(t, root, macro.Parent())
	assert.Same(t, macro, macro.Body()[1].Parent())

	require.NoError(t, ReconcileAncestors(macro))
	args, _ = macro.Args()
	assert.Equal(t, "{y}", args)
}

func TestSnapshotRoundTrip(t *testing.T) {
	inner := NewText("a")
	inner.ApplyStyle(Style{Color: "blue"}, StyleOptions{Operation: StyleSet})
	macro := newTestMacro(t, `\foo`, `#1 + \placeholder`, []Atom{inner, NewText("+"), NewMacroArgument()}, WithArgs("{a}"))
	root := NewRoot(macro, NewGroup(NewText("b")))

	data, err := Marshal(root)
	require.NoError(t, err)

	rebuilt, err := Unmarshal(data)
	require.NoError(t, err)

	assert.Equal(t, root.Snapshot(), rebuilt.Snapshot())
	assert.Equal(t, root.Serialize(SerializeOptions{}), rebuilt.Serialize(SerializeOptions{}))
}

func TestMacroArgumentSnapshotJSON(t *testing.T) {
	data, err := json.Marshal(NewMacroArgument().Snapshot())
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"macro-argument"}`, string(data))
}

func TestUnmarshalErrors(t *testing.T) {
	t.Run("unknown type", func(t *testing.T) {
		_, err := Unmarshal([]byte(`{"type":"root","body":[{"type":"matrix"}]}`))
		require.ErrorIs(t, err, ErrUnknownAtomType)
		assert.Contains(t, err.Error(), "body[0]")
	})

	t.Run("macro without template", func(t *testing.T) {
		_, err := Unmarshal([]byte(`{"type":"macro","command":"\\foo"}`))
		require.Error(t, err)
	})

	t.Run("invalid json", func(t *testing.T) {
		_, err := Unmarshal([]byte(`{`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "snapshot JSON")
	})
}
