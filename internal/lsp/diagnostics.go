package lsp

import (
	"path/filepath"
	"strings"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/WebWorksCollection/csspp/internal/compiler"
	"github.com/WebWorksCollection/csspp/internal/documents"
	"github.com/WebWorksCollection/csspp/internal/errs"
	"github.com/WebWorksCollection/csspp/internal/lexer"
	"github.com/WebWorksCollection/csspp/internal/parser"
	"github.com/WebWorksCollection/csspp/internal/position"
	"github.com/WebWorksCollection/csspp/internal/uriutil"
)

const diagnosticSource = "csspp"

// Diagnostics compiles the document at uri from its in-memory content
// and maps every reporter message to a protocol diagnostic. Documents
// that are not style sheets produce none. Exposed for testing.
func (s *Server) Diagnostics(uri string) []protocol.Diagnostic {
	doc := s.documents.Get(uri)
	if doc == nil || !documents.IsStyleSheet(doc.LanguageID(), uri) {
		return []protocol.Diagnostic{}
	}

	path := uriutil.URIToPath(uri)
	name := filepath.Base(path)

	rep := errs.NewReporter()
	root := parser.New(lexer.New(doc.Content(), name, rep), rep).Stylesheet()

	c := compiler.New(rep)
	c.SetRoot(root)
	// imports resolve relative to the document on disk
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		c.AddPath(dir)
	}
	c.Compile(true)

	lines := strings.Split(doc.Content(), "\n")
	msgs := rep.Messages()
	diags := make([]protocol.Diagnostic, 0, len(msgs))
	for _, msg := range msgs {
		diags = append(diags, toDiagnostic(msg, name, lines))
	}
	return diags
}

// toDiagnostic places a message on the line it was reported at, spanning
// the whole line. Messages raised inside imported files anchor at the
// top of the open document, prefixed with their origin.
func toDiagnostic(msg errs.Message, docName string, lines []string) protocol.Diagnostic {
	text := msg.Text
	line := msg.Pos.Total - 1
	if msg.Pos.Filename != "" && msg.Pos.Filename != docName {
		text = msg.Pos.String() + ": " + text
		line = 0
	}
	if line < 0 {
		line = 0
	}
	if line >= len(lines) {
		line = len(lines) - 1
	}

	severity := severityOf(msg.Severity)
	return protocol.Diagnostic{
		Range: protocol.Range{
			Start: protocol.Position{Line: protocol.UInteger(line), Character: 0},
			End: protocol.Position{
				Line:      protocol.UInteger(line),
				Character: protocol.UInteger(position.StringLengthUTF16(lines[line])),
			},
		},
		Severity: &severity,
		Source:   strPtr(diagnosticSource),
		Message:  text,
	}
}

func severityOf(s errs.Severity) protocol.DiagnosticSeverity {
	switch s {
	case errs.SeverityError:
		return protocol.DiagnosticSeverityError
	case errs.SeverityWarning:
		return protocol.DiagnosticSeverityWarning
	case errs.SeverityInfo:
		return protocol.DiagnosticSeverityInformation
	default:
		return protocol.DiagnosticSeverityHint
	}
}
