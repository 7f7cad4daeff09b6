// Package resolver locates files named by @import statements and validator
// programs through an ordered list of search directories.
package resolver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ErrNotFound indicates a name did not resolve in any search directory.
var ErrNotFound = errors.New("file not found")

// NotFoundError carries the name that failed and where it was looked for.
type NotFoundError struct {
	Name     string
	Searched []string
}

func (e *NotFoundError) Error() string {
	if len(e.Searched) == 0 {
		return fmt.Sprintf("file %q not found (no search paths configured)", e.Name)
	}
	return fmt.Sprintf("file %q not found in %s", e.Name, strings.Join(e.Searched, ", "))
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// NewNotFoundError creates a NotFoundError.
func NewNotFoundError(name string, searched []string) *NotFoundError {
	return &NotFoundError{Name: name, Searched: searched}
}

// Resolver tries search directories in order; the first hit wins.
type Resolver struct {
	paths []string
}

// New creates a resolver with the given initial search paths.
func New(paths ...string) *Resolver {
	r := &Resolver{}
	for _, p := range paths {
		r.AddPath(p)
	}
	return r
}

// AddPath appends a search directory.
func (r *Resolver) AddPath(dir string) {
	r.paths = append(r.paths, dir)
}

// ClearPaths removes all search directories.
func (r *Resolver) ClearPaths() {
	r.paths = nil
}

// Paths returns the configured search directories in order.
func (r *Resolver) Paths() []string {
	out := make([]string, len(r.paths))
	copy(out, r.paths)
	return out
}

// Find resolves name through the search paths, trying the bare name first
// and then each extension in order. An absolute name skips the search paths.
// The returned path points at an existing regular file.
func (r *Resolver) Find(name string, exts ...string) (string, error) {
	candidates := make([]string, 0, len(exts)+1)
	candidates = append(candidates, name)
	for _, ext := range exts {
		candidates = append(candidates, name+ext)
	}

	if filepath.IsAbs(name) {
		for _, c := range candidates {
			if isFile(c) {
				return c, nil
			}
		}
		return "", NewNotFoundError(name, nil)
	}

	for _, dir := range r.paths {
		for _, c := range candidates {
			full := filepath.Join(dir, c)
			if isFile(full) {
				return full, nil
			}
		}
	}
	return "", NewNotFoundError(name, r.Paths())
}

// Expand resolves glob patterns to matching files, leaving plain names
// untouched so missing-file errors surface later with a good message.
// Patterns support doublestar syntax, including ** for recursive matching.
func Expand(patterns []string) ([]string, error) {
	var out []string
	for _, pattern := range patterns {
		if !strings.ContainsAny(pattern, "*?[{") {
			out = append(out, pattern)
			continue
		}
		matches, err := doublestar.FilepathGlob(filepath.ToSlash(pattern))
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", pattern, err)
		}
		out = append(out, matches...)
	}
	return out, nil
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
