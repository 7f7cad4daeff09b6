package documents

import (
	"path"
	"strings"
)

// IsStyleSheet reports whether an open document should be compiled as a
// style sheet. The client's language identifier wins when it sends one;
// otherwise the file extension decides.
func IsStyleSheet(languageID, uri string) bool {
	switch strings.ToLower(languageID) {
	case "scss", "css":
		return true
	case "":
		// no identifier, fall back to the extension
	default:
		return false
	}
	switch strings.ToLower(path.Ext(uri)) {
	case ".scss", ".css":
		return true
	}
	return false
}
