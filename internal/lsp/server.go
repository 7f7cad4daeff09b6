// Package lsp implements the csspp language server. It keeps the
// client's open documents in sync and pushes fresh compile diagnostics
// whenever one of them opens or changes.
package lsp

import (
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"github.com/WebWorksCollection/csspp/internal/documents"
	"github.com/WebWorksCollection/csspp/internal/log"
	"github.com/WebWorksCollection/csspp/internal/version"
)

const serverName = "csspp-language-server"

// Server owns the document manager and the glsp plumbing.
type Server struct {
	documents  *documents.Manager
	glspServer *server.Server
	context    *glsp.Context
}

// NewServer wires the protocol handlers for a stdio language server.
func NewServer() *Server {
	s := &Server{documents: documents.NewManager()}

	handler := protocol.Handler{
		Initialize:            s.handleInitialize,
		Initialized:           s.handleInitialized,
		Shutdown:              s.handleShutdown,
		SetTrace:              s.handleSetTrace,
		TextDocumentDidOpen:   s.handleDidOpen,
		TextDocumentDidChange: s.handleDidChange,
		TextDocumentDidClose:  s.handleDidClose,
	}
	s.glspServer = server.NewServer(&handler, serverName, false)
	return s
}

// RunStdio serves the client on stdin and stdout until it disconnects.
func (s *Server) RunStdio() error {
	return s.glspServer.RunStdio()
}

func (s *Server) handleInitialize(context *glsp.Context, params *protocol.InitializeParams) (any, error) {
	clientName := "unknown"
	if params.ClientInfo != nil {
		clientName = params.ClientInfo.Name
	}
	log.Info("initializing for client: %s", clientName)

	// The only capability csspp needs is document sync; diagnostics are
	// pushed, not pulled.
	syncKind := protocol.TextDocumentSyncKindIncremental
	capabilities := protocol.ServerCapabilities{
		TextDocumentSync: protocol.TextDocumentSyncOptions{
			OpenClose: boolPtr(true),
			Change:    &syncKind,
		},
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    serverName,
			Version: strPtr(version.GetVersion()),
		},
	}, nil
}

func (s *Server) handleInitialized(context *glsp.Context, params *protocol.InitializedParams) error {
	// keep the context so later notifications can push diagnostics
	s.context = context
	log.Debug("server initialized")
	return nil
}

func (s *Server) handleShutdown(context *glsp.Context) error {
	log.Debug("server shutting down")
	return nil
}

func (s *Server) handleSetTrace(context *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (s *Server) handleDidOpen(context *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	doc := params.TextDocument
	log.Debug("document opened: %s (language: %s, version: %d)", doc.URI, doc.LanguageID, doc.Version)

	s.DidOpen(doc.URI, doc.LanguageID, int(doc.Version), doc.Text)
	s.publishDiagnostics(context, doc.URI)
	return nil
}

// DidOpen registers a document without a client round trip. Exposed for
// testing.
func (s *Server) DidOpen(uri, languageID string, version int, content string) {
	s.documents.DidOpen(uri, languageID, version, content)
}

func (s *Server) handleDidChange(context *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	uri := params.TextDocument.URI
	ver := int(params.TextDocument.Version)
	log.Debug("document changed: %s (version: %d, changes: %d)", uri, ver, len(params.ContentChanges))

	// glsp delivers the changes untyped; ranged and whole-document
	// events arrive as different types
	changes := make([]protocol.TextDocumentContentChangeEvent, 0, len(params.ContentChanges))
	for _, raw := range params.ContentChanges {
		switch change := raw.(type) {
		case protocol.TextDocumentContentChangeEvent:
			changes = append(changes, change)
		case protocol.TextDocumentContentChangeEventWhole:
			changes = append(changes, protocol.TextDocumentContentChangeEvent{Text: change.Text})
		}
	}

	if err := s.documents.DidChange(uri, ver, changes); err != nil {
		return err
	}
	s.publishDiagnostics(context, uri)
	return nil
}

func (s *Server) handleDidClose(context *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	uri := params.TextDocument.URI
	log.Debug("document closed: %s", uri)

	if err := s.documents.DidClose(uri); err != nil {
		return err
	}
	// drop any diagnostics still showing for the closed document
	s.notify(context, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: []protocol.Diagnostic{},
	})
	return nil
}

// publishDiagnostics recompiles the document and pushes the result.
func (s *Server) publishDiagnostics(context *glsp.Context, uri string) {
	s.notify(context, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: s.Diagnostics(uri),
	})
}

func (s *Server) notify(context *glsp.Context, params protocol.PublishDiagnosticsParams) {
	if context == nil {
		context = s.context
	}
	if context == nil {
		return
	}
	context.Notify(protocol.ServerTextDocumentPublishDiagnostics, params)
}

func boolPtr(b bool) *bool {
	return &b
}

func strPtr(s string) *string {
	return &s
}
