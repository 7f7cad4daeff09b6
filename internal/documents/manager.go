package documents

import (
	"fmt"
	"strings"
	"sync"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/WebWorksCollection/csspp/internal/position"
)

// Manager holds the open documents, keyed by URI. All methods are safe
// for concurrent use.
type Manager struct {
	mu   sync.RWMutex
	docs map[string]*Document
}

// NewManager creates an empty document manager.
func NewManager() *Manager {
	return &Manager{docs: make(map[string]*Document)}
}

// Get returns the document for uri, or nil when it is not open.
func (m *Manager) Get(uri string) *Document {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.docs[uri]
}

// DidOpen registers a newly opened document. Reopening a URI replaces
// the previous document.
func (m *Manager) DidOpen(uri, languageID string, version int, content string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[uri] = NewDocument(uri, languageID, version, content)
}

// DidClose forgets a document.
func (m *Manager) DidClose(uri string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[uri]; !ok {
		return fmt.Errorf("document not found: %s", uri)
	}
	delete(m.docs, uri)
	return nil
}

// DidChange applies the client's edits in order and moves the document
// to the given version.
func (m *Manager) DidChange(uri string, version int, changes []protocol.TextDocumentContentChangeEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc, ok := m.docs[uri]
	if !ok {
		return fmt.Errorf("document not found: %s", uri)
	}

	content := doc.Content()
	for _, change := range changes {
		if change.Range == nil {
			// full replacement
			content = change.Text
			continue
		}
		next, err := applyIncrementalChange(content, *change.Range, change.Text)
		if err != nil {
			return fmt.Errorf("failed to apply changes: %w", err)
		}
		content = next
	}
	return doc.SetContent(content, version)
}

// applyIncrementalChange splices text over one range of content. Ranges
// count lines from zero and columns in UTF-16 code units, so columns are
// converted to byte offsets before slicing.
func applyIncrementalChange(content string, rng protocol.Range, text string) (string, error) {
	lines := strings.Split(content, "\n")

	startLine, endLine := int(rng.Start.Line), int(rng.End.Line)
	startCol, endCol := int(rng.Start.Character), int(rng.End.Character)

	// Clients may address the position just past the last line to append
	// at the end of the file; normalize it to the end of the last line.
	if startLine == len(lines) && startCol == 0 && endLine == len(lines) && endCol == 0 {
		startLine, endLine = len(lines)-1, len(lines)-1
		startCol = position.StringLengthUTF16(lines[startLine])
		endCol = startCol
	}
	if startLine >= len(lines) || endLine >= len(lines) || endLine < startLine {
		return "", fmt.Errorf("change range %d:%d..%d:%d out of bounds (%d lines)",
			rng.Start.Line, rng.Start.Character, rng.End.Line, rng.End.Character, len(lines))
	}

	startByte := position.UTF16ToByteOffset(lines[startLine], startCol)
	endByte := position.UTF16ToByteOffset(lines[endLine], endCol)

	var b strings.Builder
	for i := 0; i < startLine; i++ {
		b.WriteString(lines[i])
		b.WriteString("\n")
	}
	b.WriteString(lines[startLine][:startByte])
	b.WriteString(text)
	b.WriteString(lines[endLine][endByte:])
	for i := endLine + 1; i < len(lines); i++ {
		b.WriteString("\n")
		b.WriteString(lines[i])
	}
	return b.String(), nil
}
