package validator_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/WebWorksCollection/csspp/internal/position"
	"github.com/WebWorksCollection/csspp/internal/resolver"
	"github.com/WebWorksCollection/csspp/internal/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Run("jsonc with comments", func(t *testing.T) {
		doc := `{
  // button styling constraints
  "name": "buttons",
  "rules": [
    {"property": "color", "type": "color"},
    {"property": "z-index", "type": "integer", "min": 0, "max": 100},
  ]
}`
		prog, err := validator.Parse([]byte(doc), ".jsonc")
		require.NoError(t, err)
		assert.Equal(t, "buttons", prog.Name)
		require.Len(t, prog.Rules, 2)
		assert.Equal(t, "color", prog.Rules[0].Type)
		require.NotNil(t, prog.Rules[1].Min)
		assert.Equal(t, 0.0, *prog.Rules[1].Min)
		require.NotNil(t, prog.Rules[1].Max)
		assert.Equal(t, 100.0, *prog.Rules[1].Max)
	})

	t.Run("yaml", func(t *testing.T) {
		doc := "name: layout\nrules:\n  - property: margin\n    type: number\n"
		prog, err := validator.Parse([]byte(doc), ".yaml")
		require.NoError(t, err)
		assert.Equal(t, "layout", prog.Name)
		require.Len(t, prog.Rules, 1)
		assert.Equal(t, "margin", prog.Rules[0].Property)
	})

	t.Run("unknown format", func(t *testing.T) {
		_, err := validator.Parse([]byte("{}"), ".toml")
		require.ErrorIs(t, err, validator.ErrUnsupportedFormat)
	})
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "buttons.jsonc")
	require.NoError(t, os.WriteFile(path, []byte(`{"rules": [{"property": "cursor", "enum": ["pointer"]}]}`), 0o644))

	prog, err := validator.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "buttons", prog.Name)
	require.Len(t, prog.Rules, 1)
}

func TestRegistry(t *testing.T) {
	dir := t.TempDir()
	doc := "rules:\n  - property: color\n    type: color\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "buttons.yaml"), []byte(doc), 0o644))

	reg := validator.NewRegistry(resolver.New(dir))

	prog, err := reg.Lookup("buttons")
	require.NoError(t, err)
	require.Len(t, prog.Rules, 1)

	again, err := reg.Lookup("buttons")
	require.NoError(t, err)
	assert.Same(t, prog, again)

	_, err = reg.Lookup("missing")
	require.ErrorIs(t, err, resolver.ErrNotFound)
}

func TestRuntimeRun(t *testing.T) {
	pos := position.New("styles.scss")
	decl := func(name, value string) validator.Declaration {
		return validator.Declaration{Name: name, Value: value, Pos: pos}
	}

	t.Run("conforming declarations pass", func(t *testing.T) {
		min, max := 0.0, 100.0
		prog := &validator.Program{Name: "buttons", Rules: []validator.Rule{
			{Property: "color", Type: "color"},
			{Property: "z-index", Type: "integer", Min: &min, Max: &max},
		}}
		v := validator.NewRuntime().Run(prog, []validator.Declaration{
			decl("color", "#fff"),
			decl("z-index", "10"),
		}, nil)
		assert.True(t, v.OK)
		assert.Empty(t, v.Failures)
	})

	t.Run("bad color", func(t *testing.T) {
		prog := &validator.Program{Rules: []validator.Rule{{Property: "color", Type: "color"}}}
		v := validator.NewRuntime().Run(prog, []validator.Declaration{decl("color", "bogus-color")}, nil)
		require.Len(t, v.Failures, 1)
		assert.False(t, v.OK)
		assert.Contains(t, v.Failures[0].Text, "not a valid color")
	})

	t.Run("integer above maximum", func(t *testing.T) {
		max := 100.0
		prog := &validator.Program{Rules: []validator.Rule{{Property: "z-index", Type: "integer", Max: &max}}}
		v := validator.NewRuntime().Run(prog, []validator.Declaration{decl("z-index", "250")}, nil)
		require.Len(t, v.Failures, 1)
		assert.Contains(t, v.Failures[0].Text, "above the maximum")
	})

	t.Run("enum entries resolve variables", func(t *testing.T) {
		prog := &validator.Program{Rules: []validator.Rule{
			{Property: "cursor", Enum: []string{"pointer", "$fallback"}},
		}}
		vars := map[string]string{"fallback": "default"}

		v := validator.NewRuntime().Run(prog, []validator.Declaration{decl("cursor", "default")}, vars)
		assert.True(t, v.OK)

		v = validator.NewRuntime().Run(prog, []validator.Declaration{decl("cursor", "grab")}, vars)
		require.Len(t, v.Failures, 1)
		assert.Contains(t, v.Failures[0].Text, "not one of")
	})

	t.Run("patterns match whole values", func(t *testing.T) {
		prog := &validator.Program{Rules: []validator.Rule{
			{Property: "font-family", Pattern: "serif|sans-serif"},
		}}
		rt := validator.NewRuntime()

		v := rt.Run(prog, []validator.Declaration{decl("font-family", "serif")}, nil)
		assert.True(t, v.OK)

		v = rt.Run(prog, []validator.Declaration{decl("font-family", "serif-extra")}, nil)
		require.Len(t, v.Failures, 1)
		assert.Contains(t, v.Failures[0].Text, "does not match")
	})

	t.Run("forbidden property glob", func(t *testing.T) {
		prog := &validator.Program{Rules: []validator.Rule{{Property: "-*", Forbid: true}}}
		v := validator.NewRuntime().Run(prog, []validator.Declaration{decl("-moz-appearance", "none")}, nil)
		require.Len(t, v.Failures, 1)
		assert.Contains(t, v.Failures[0].Text, "not allowed")
	})

	t.Run("required property missing", func(t *testing.T) {
		prog := &validator.Program{Rules: []validator.Rule{{Property: "display", Required: true}}}
		v := validator.NewRuntime().Run(prog, nil, nil)
		require.Len(t, v.Failures, 1)
		assert.Contains(t, v.Failures[0].Text, "required property")
		assert.True(t, v.Failures[0].Pos.IsZero())
	})

	t.Run("identifier type", func(t *testing.T) {
		prog := &validator.Program{Rules: []validator.Rule{{Property: "float", Type: "identifier"}}}

		v := validator.NewRuntime().Run(prog, []validator.Declaration{decl("float", "left")}, nil)
		assert.True(t, v.OK)

		v = validator.NewRuntime().Run(prog, []validator.Declaration{decl("float", "3px")}, nil)
		require.Len(t, v.Failures, 1)
		assert.Contains(t, v.Failures[0].Text, "not an identifier")
	})
}
