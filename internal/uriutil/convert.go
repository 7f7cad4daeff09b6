// Package uriutil converts between file system paths and file:// URIs,
// the form language clients identify documents by.
package uriutil

import (
	"net/url"
	"path/filepath"
	"runtime"
	"strings"
)

// PathToURI converts a file system path to a file:// URI. The path is
// made absolute first, each segment is percent-encoded, and Windows
// shapes come out the way clients expect: C:\proj as file:///C:/proj
// and the UNC \\server\share as file://server/share.
func PathToURI(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	if runtime.GOOS == "windows" && strings.HasPrefix(abs, `\\`) {
		unc := filepath.ToSlash(strings.TrimPrefix(abs, `\\`))
		return "file://" + escapeSegments(unc)
	}

	abs = filepath.ToSlash(abs)
	if !strings.HasPrefix(abs, "/") {
		// a Windows drive path such as C:/proj
		abs = "/" + abs
	}
	return "file://" + escapeSegments(abs)
}

func escapeSegments(path string) string {
	segments := strings.Split(path, "/")
	for i, seg := range segments {
		if seg != "" {
			segments[i] = url.PathEscape(seg)
		}
	}
	return strings.Join(segments, "/")
}

// URIToPath converts a file:// URI back to a file system path, decoding
// percent escapes and restoring Windows drive letters and UNC hosts.
// Anything that does not parse as a file URI degrades to stripping the
// scheme prefix.
func URIToPath(uri string) string {
	parsed, err := url.Parse(uri)
	if err != nil || parsed.Scheme != "file" {
		return uriFallback(uri)
	}

	if parsed.Host != "" {
		// file://server/share names a UNC path
		if runtime.GOOS == "windows" {
			host, _ := url.PathUnescape(parsed.Host)
			path, _ := url.PathUnescape(parsed.Path)
			return `\\` + host + strings.ReplaceAll(path, "/", `\`)
		}
		return parsed.Host + parsed.Path
	}

	path, err := url.PathUnescape(parsed.Path)
	if err != nil {
		path = parsed.Path
	}
	return filepath.FromSlash(stripDriveSlash(path))
}

// stripDriveSlash turns /C:/proj into C:/proj.
func stripDriveSlash(path string) string {
	if len(path) >= 3 && path[0] == '/' && path[2] == ':' {
		return path[1:]
	}
	return path
}

func uriFallback(uri string) string {
	path := uri
	if strings.HasPrefix(path, "file://") {
		path = path[len("file://"):]
	}
	return filepath.FromSlash(stripDriveSlash(path))
}
