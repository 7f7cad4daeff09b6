package lsp

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/WebWorksCollection/csspp/internal/uriutil"
)

func TestInitialize(t *testing.T) {
	s := NewServer()
	var ctx *glsp.Context

	result, err := s.handleInitialize(ctx, &protocol.InitializeParams{})
	require.NoError(t, err)

	init, ok := result.(protocol.InitializeResult)
	require.True(t, ok)
	require.NotNil(t, init.ServerInfo)
	assert.Equal(t, "csspp-language-server", init.ServerInfo.Name)

	sync, ok := init.Capabilities.TextDocumentSync.(protocol.TextDocumentSyncOptions)
	require.True(t, ok)
	require.NotNil(t, sync.OpenClose)
	assert.True(t, *sync.OpenClose)
	require.NotNil(t, sync.Change)
	assert.Equal(t, protocol.TextDocumentSyncKindIncremental, *sync.Change)
}

func TestDocumentLifecycle(t *testing.T) {
	s := NewServer()
	var ctx *glsp.Context
	uri := "file:///site.scss"

	t.Run("open registers the document", func(t *testing.T) {
		err := s.handleDidOpen(ctx, &protocol.DidOpenTextDocumentParams{
			TextDocument: protocol.TextDocumentItem{
				URI:        uri,
				LanguageID: "scss",
				Version:    1,
				Text:       "a { color: red; }",
			},
		})
		require.NoError(t, err)
		require.NotNil(t, s.documents.Get(uri))
	})

	t.Run("ranged change applies", func(t *testing.T) {
		err := s.handleDidChange(ctx, &protocol.DidChangeTextDocumentParams{
			TextDocument: protocol.VersionedTextDocumentIdentifier{
				TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: uri},
				Version:                2,
			},
			ContentChanges: []any{
				protocol.TextDocumentContentChangeEvent{
					Range: &protocol.Range{
						Start: protocol.Position{Line: 0, Character: 11},
						End:   protocol.Position{Line: 0, Character: 14},
					},
					Text: "blue",
				},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, "a { color: blue; }", s.documents.Get(uri).Content())
	})

	t.Run("whole document change applies", func(t *testing.T) {
		err := s.handleDidChange(ctx, &protocol.DidChangeTextDocumentParams{
			TextDocument: protocol.VersionedTextDocumentIdentifier{
				TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: uri},
				Version:                3,
			},
			ContentChanges: []any{
				protocol.TextDocumentContentChangeEventWhole{Text: "b { color: green; }"},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, "b { color: green; }", s.documents.Get(uri).Content())
	})

	t.Run("change for an unopened document errors", func(t *testing.T) {
		err := s.handleDidChange(ctx, &protocol.DidChangeTextDocumentParams{
			TextDocument: protocol.VersionedTextDocumentIdentifier{
				TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: "file:///other.scss"},
				Version:                1,
			},
		})
		require.Error(t, err)
	})

	t.Run("close forgets the document", func(t *testing.T) {
		err := s.handleDidClose(ctx, &protocol.DidCloseTextDocumentParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: uri},
		})
		require.NoError(t, err)
		assert.Nil(t, s.documents.Get(uri))

		err = s.handleDidClose(ctx, &protocol.DidCloseTextDocumentParams{
			TextDocument: protocol.TextDocumentIdentifier{URI: uri},
		})
		require.Error(t, err)
	})
}

func TestDiagnostics(t *testing.T) {
	uri := "file:///site.scss"

	open := func(content string) *Server {
		s := NewServer()
		s.DidOpen(uri, "scss", 1, content)
		return s
	}

	t.Run("clean document has none", func(t *testing.T) {
		s := open("a { color: red; }")
		assert.Empty(t, s.Diagnostics(uri))
	})

	t.Run("unopened document has none", func(t *testing.T) {
		s := NewServer()
		assert.Empty(t, s.Diagnostics(uri))
	})

	t.Run("non style sheet is skipped", func(t *testing.T) {
		s := NewServer()
		s.DidOpen("file:///notes.txt", "plaintext", 1, "a { color: $missing; }")
		assert.Empty(t, s.Diagnostics("file:///notes.txt"))
	})

	t.Run("undefined variable reports an error", func(t *testing.T) {
		s := open("a {\n  color: $missing;\n}")
		diags := s.Diagnostics(uri)
		require.Len(t, diags, 1)
		d := diags[0]
		require.NotNil(t, d.Severity)
		assert.Equal(t, protocol.DiagnosticSeverityError, *d.Severity)
		assert.Equal(t, protocol.UInteger(1), d.Range.Start.Line)
		assert.Equal(t, protocol.UInteger(1), d.Range.End.Line)
		assert.Equal(t, protocol.UInteger(0), d.Range.Start.Character)
		require.NotNil(t, d.Source)
		assert.Equal(t, "csspp", *d.Source)
		assert.Contains(t, d.Message, "$missing")
	})

	t.Run("directives map to their severities", func(t *testing.T) {
		s := open("@warning \"careful\";\n@info \"fyi\";\n@debug \"trace\";")
		diags := s.Diagnostics(uri)
		require.Len(t, diags, 3)
		assert.Equal(t, protocol.DiagnosticSeverityWarning, *diags[0].Severity)
		assert.Equal(t, protocol.DiagnosticSeverityInformation, *diags[1].Severity)
		assert.Equal(t, protocol.DiagnosticSeverityHint, *diags[2].Severity)
	})

	t.Run("line numbers follow the source", func(t *testing.T) {
		s := open("a { color: red; }\nb { color: blue; }\nc { color: $gone; }")
		diags := s.Diagnostics(uri)
		require.Len(t, diags, 1)
		assert.Equal(t, protocol.UInteger(2), diags[0].Range.Start.Line)
	})
}

func TestDiagnosticsImports(t *testing.T) {
	dir := t.TempDir()
	uri := uriutil.PathToURI(filepath.Join(dir, "site.scss"))

	t.Run("imports resolve next to the document", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "base.scss"), []byte("$c: red;\n"), 0o644))
		s := NewServer()
		s.DidOpen(uri, "scss", 1, "@import \"base\";\np { color: $c; }")
		assert.Empty(t, s.Diagnostics(uri))
	})

	t.Run("imported errors anchor at the top", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.scss"), []byte("q { color: $missing; }\n"), 0o644))
		s := NewServer()
		s.DidOpen(uri, "scss", 1, "@import \"broken\";\np { color: red; }")
		diags := s.Diagnostics(uri)
		require.Len(t, diags, 1)
		assert.Equal(t, protocol.UInteger(0), diags[0].Range.Start.Line)
		assert.Contains(t, diags[0].Message, "broken.scss(")
	})
}
