// Package documents tracks the text documents a language client has open
// and applies the edits it sends, both full replacements and incremental
// range edits.
package documents

import "fmt"

// Document is one open text document, identified by its URI.
type Document struct {
	uri        string
	languageID string
	content    string
	version    int
}

// NewDocument creates a document at its initial version.
func NewDocument(uri, languageID string, version int, content string) *Document {
	return &Document{
		uri:        uri,
		languageID: languageID,
		version:    version,
		content:    content,
	}
}

func (d *Document) URI() string        { return d.uri }
func (d *Document) LanguageID() string { return d.languageID }
func (d *Document) Version() int       { return d.version }
func (d *Document) Content() string    { return d.content }

// SetContent replaces the document text. Updates older than the version
// already applied are rejected so an out-of-order notification cannot
// roll the document back.
func (d *Document) SetContent(content string, version int) error {
	if version < d.version {
		return fmt.Errorf("rejected stale update: document version is %d but update version is %d", d.version, version)
	}
	d.content = content
	d.version = version
	return nil
}
