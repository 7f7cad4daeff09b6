package lexer_test

import (
	"testing"

	"github.com/WebWorksCollection/csspp/internal/ast"
	"github.com/WebWorksCollection/csspp/internal/errs"
	"github.com/WebWorksCollection/csspp/internal/lexer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scanAll pulls tokens until EOF, returning them without the EOF sentinel.
func scanAll(t *testing.T, input string) ([]*ast.Node, *errs.Reporter) {
	t.Helper()
	rep := errs.NewReporter()
	l := lexer.New(input, "test.scss", rep)
	var tokens []*ast.Node
	for {
		tok := l.NextToken()
		if tok.Kind == ast.KindEOF {
			return tokens, rep
		}
		tokens = append(tokens, tok)
	}
}

func kinds(tokens []*ast.Node) []ast.Kind {
	out := make([]ast.Kind, len(tokens))
	for i, tok := range tokens {
		out[i] = tok.Kind
	}
	return out
}

func TestNextTokenBasics(t *testing.T) {
	t.Run("simple rule", func(t *testing.T) {
		tokens, rep := scanAll(t, "div { color: red; }")
		require.False(t, rep.HasErrors())
		assert.Equal(t, []ast.Kind{
			ast.KindIdentifier, ast.KindWhitespace, ast.KindOpenCurly,
			ast.KindWhitespace, ast.KindIdentifier, ast.KindColon,
			ast.KindWhitespace, ast.KindIdentifier, ast.KindSemicolon,
			ast.KindWhitespace, ast.KindCloseCurly,
		}, kinds(tokens))
		assert.Equal(t, "div", tokens[0].Value)
		assert.Equal(t, "color", tokens[4].Value)
	})

	t.Run("whitespace runs collapse to one token", func(t *testing.T) {
		tokens, _ := scanAll(t, "a   \t\n  b")
		require.Len(t, tokens, 3)
		assert.Equal(t, ast.KindWhitespace, tokens[1].Kind)
	})

	t.Run("eof repeats", func(t *testing.T) {
		l := lexer.New("", "test.scss", errs.NewReporter())
		assert.Equal(t, ast.KindEOF, l.NextToken().Kind)
		assert.Equal(t, ast.KindEOF, l.NextToken().Kind)
	})
}

func TestNextTokenNumbers(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		kind    ast.Kind
		integer int64
		decimal float64
		dim     string
	}{
		{"integer", "42", ast.KindInteger, 42, 0, ""},
		{"negative integer", "-7", ast.KindInteger, -7, 0, ""},
		{"dimension", "3px", ast.KindInteger, 3, 0, "px"},
		{"decimal", "0.5", ast.KindDecimal, 0, 0.5, ""},
		{"leading dot decimal", ".25em", ast.KindDecimal, 0, 0.25, "em"},
		{"signed decimal", "+1.5", ast.KindDecimal, 0, 1.5, ""},
		{"exponent", "1e3", ast.KindDecimal, 0, 1000, ""},
		{"percent", "50%", ast.KindPercent, 0, 50, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, rep := scanAll(t, tt.input)
			require.False(t, rep.HasErrors())
			require.Len(t, tokens, 1)
			tok := tokens[0]
			assert.Equal(t, tt.kind, tok.Kind)
			assert.Equal(t, tt.integer, tok.Integer)
			assert.InDelta(t, tt.decimal, tok.Decimal, 1e-9)
			assert.Equal(t, tt.dim, tok.Value)
		})
	}

	t.Run("em is a dimension not an exponent", func(t *testing.T) {
		tokens, _ := scanAll(t, "5em")
		require.Len(t, tokens, 1)
		assert.Equal(t, ast.KindInteger, tokens[0].Kind)
		assert.Equal(t, "em", tokens[0].Value)
	})
}

func TestNextTokenStringsAndComments(t *testing.T) {
	t.Run("double quoted string", func(t *testing.T) {
		tokens, rep := scanAll(t, `"hello world"`)
		require.False(t, rep.HasErrors())
		require.Len(t, tokens, 1)
		assert.Equal(t, ast.KindString, tokens[0].Kind)
		assert.Equal(t, "hello world", tokens[0].Value)
	})

	t.Run("single quoted string with escape", func(t *testing.T) {
		tokens, _ := scanAll(t, `'it\'s'`)
		require.Len(t, tokens, 1)
		assert.Equal(t, "it's", tokens[0].Value)
	})

	t.Run("unterminated string reports an error", func(t *testing.T) {
		tokens, rep := scanAll(t, `"oops`)
		require.Len(t, tokens, 1)
		assert.Equal(t, "oops", tokens[0].Value)
		assert.True(t, rep.HasErrors())
	})

	t.Run("newline in string reports an error", func(t *testing.T) {
		_, rep := scanAll(t, "\"broken\nstring\"")
		assert.True(t, rep.HasErrors())
	})

	t.Run("block comment", func(t *testing.T) {
		tokens, rep := scanAll(t, "/* note */")
		require.False(t, rep.HasErrors())
		require.Len(t, tokens, 1)
		assert.Equal(t, ast.KindComment, tokens[0].Kind)
		assert.Equal(t, "note", tokens[0].Value)
	})

	t.Run("line comment ends at newline", func(t *testing.T) {
		tokens, _ := scanAll(t, "// note\ndiv")
		require.Len(t, tokens, 3)
		assert.Equal(t, ast.KindComment, tokens[0].Kind)
		assert.Equal(t, "note", tokens[0].Value)
		assert.Equal(t, "div", tokens[2].Value)
	})

	t.Run("unterminated comment reports an error", func(t *testing.T) {
		_, rep := scanAll(t, "/* never closed")
		assert.True(t, rep.HasErrors())
	})
}

func TestNextTokenIdentLike(t *testing.T) {
	t.Run("at keyword", func(t *testing.T) {
		tokens, _ := scanAll(t, "@media")
		require.Len(t, tokens, 1)
		assert.Equal(t, ast.KindAtKeyword, tokens[0].Kind)
		assert.Equal(t, "media", tokens[0].Value)
	})

	t.Run("hash", func(t *testing.T) {
		tokens, _ := scanAll(t, "#footer")
		require.Len(t, tokens, 1)
		assert.Equal(t, ast.KindHash, tokens[0].Kind)
		assert.Equal(t, "footer", tokens[0].Value)
	})

	t.Run("variable", func(t *testing.T) {
		tokens, rep := scanAll(t, "$width")
		require.False(t, rep.HasErrors())
		require.Len(t, tokens, 1)
		assert.Equal(t, ast.KindVariable, tokens[0].Kind)
		assert.Equal(t, "width", tokens[0].Value)
	})

	t.Run("function", func(t *testing.T) {
		tokens, _ := scanAll(t, "calc(")
		require.Len(t, tokens, 1)
		assert.Equal(t, ast.KindFunction, tokens[0].Kind)
		assert.Equal(t, "calc", tokens[0].Value)
	})

	t.Run("vendor prefixed identifier", func(t *testing.T) {
		tokens, _ := scanAll(t, "-webkit-transform")
		require.Len(t, tokens, 1)
		assert.Equal(t, ast.KindIdentifier, tokens[0].Kind)
		assert.Equal(t, "-webkit-transform", tokens[0].Value)
	})

	t.Run("quoted url", func(t *testing.T) {
		tokens, rep := scanAll(t, `url("image.png")`)
		require.False(t, rep.HasErrors())
		require.Len(t, tokens, 1)
		assert.Equal(t, ast.KindURL, tokens[0].Kind)
		assert.Equal(t, "image.png", tokens[0].Value)
	})

	t.Run("unquoted url", func(t *testing.T) {
		tokens, rep := scanAll(t, "url( image.png )")
		require.False(t, rep.HasErrors())
		require.Len(t, tokens, 1)
		assert.Equal(t, "image.png", tokens[0].Value)
	})
}

func TestNextTokenOperators(t *testing.T) {
	tests := []struct {
		input string
		kind  ast.Kind
	}{
		{"~=", ast.KindIncludes},
		{"|=", ast.KindDashMatch},
		{"^=", ast.KindPrefixMatch},
		{"$=", ast.KindSuffixMatch},
		{"*=", ast.KindSubstringMatch},
		{"~", ast.KindPrecede},
		{"*", ast.KindMultiply},
		{">", ast.KindGreaterThan},
		{"<", ast.KindLessThan},
		{"&", ast.KindReference},
		{"!", ast.KindExclamation},
		{"=", ast.KindEqual},
		{"==", ast.KindEqual},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tokens, rep := scanAll(t, tt.input)
			require.False(t, rep.HasErrors())
			require.Len(t, tokens, 1)
			assert.Equal(t, tt.kind, tokens[0].Kind)
		})
	}

	t.Run("cdo and cdc", func(t *testing.T) {
		tokens, _ := scanAll(t, "<!-- -->")
		require.Len(t, tokens, 3)
		assert.Equal(t, ast.KindCDO, tokens[0].Kind)
		assert.Equal(t, ast.KindCDC, tokens[2].Kind)
	})
}

func TestNextTokenPositions(t *testing.T) {
	t.Run("line tracking", func(t *testing.T) {
		tokens, _ := scanAll(t, "a\nb\nc")
		require.Len(t, tokens, 5)
		assert.Equal(t, 1, tokens[0].Pos.Line)
		assert.Equal(t, 2, tokens[2].Pos.Line)
		assert.Equal(t, 3, tokens[4].Pos.Line)
	})

	t.Run("carriage return newline counts one line", func(t *testing.T) {
		tokens, _ := scanAll(t, "a\r\nb")
		require.Len(t, tokens, 3)
		assert.Equal(t, 2, tokens[2].Pos.Line)
	})

	t.Run("form feed advances the page", func(t *testing.T) {
		tokens, _ := scanAll(t, "a\fb")
		require.Len(t, tokens, 3)
		assert.Equal(t, 1, tokens[0].Pos.Page)
		assert.Equal(t, 2, tokens[2].Pos.Page)
		assert.Equal(t, 1, tokens[2].Pos.Line)
	})

	t.Run("filename is carried", func(t *testing.T) {
		tokens, _ := scanAll(t, "a")
		assert.Equal(t, "test.scss", tokens[0].Pos.Filename)
	})
}

func TestNextTokenErrors(t *testing.T) {
	t.Run("stray percent is reported and skipped", func(t *testing.T) {
		tokens, rep := scanAll(t, "a % b")
		assert.True(t, rep.HasErrors())
		// the stray character disappears from the stream
		assert.Equal(t, []ast.Kind{
			ast.KindIdentifier, ast.KindWhitespace,
			ast.KindWhitespace, ast.KindIdentifier,
		}, kinds(tokens))
	})

	t.Run("dollar without a name is reported", func(t *testing.T) {
		_, rep := scanAll(t, "$ width")
		assert.True(t, rep.HasErrors())
	})

	t.Run("escape resolves hex code points", func(t *testing.T) {
		// the space terminates the hex escape and belongs to it
		tokens, rep := scanAll(t, `\41 bc`)
		require.False(t, rep.HasErrors())
		require.Len(t, tokens, 1)
		assert.Equal(t, "Abc", tokens[0].Value)
	})
}
