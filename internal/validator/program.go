// Package validator loads and runs the declarative programs applied to
// compiled declarations through @validate. Programs are JSON, JSONC or YAML
// documents naming per-property rules; verdicts are advisory, the caller
// decides whether a failure is fatal.
package validator

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// ErrUnsupportedFormat indicates a program file extension with no parser.
var ErrUnsupportedFormat = errors.New("unsupported validator program format")

// UnsupportedFormatError carries the offending extension.
type UnsupportedFormatError struct {
	Format string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported validator program format %q (want .json, .jsonc, .yaml or .yml)", e.Format)
}

func (e *UnsupportedFormatError) Unwrap() error {
	return ErrUnsupportedFormat
}

// NewUnsupportedFormatError creates a new unsupported format error
func NewUnsupportedFormatError(format string) error {
	return &UnsupportedFormatError{Format: format}
}

// Program is one named validation script: a list of property rules.
type Program struct {
	Name  string `json:"name" yaml:"name"`
	Rules []Rule `json:"rules" yaml:"rules"`
}

// Rule constrains the declarations whose property name matches Property,
// which may be a glob pattern. Enum entries starting with '$' are resolved
// against the variables the compiler exposes at run time.
type Rule struct {
	Property string   `json:"property" yaml:"property"`
	Type     string   `json:"type,omitempty" yaml:"type,omitempty"`
	Enum     []string `json:"enum,omitempty" yaml:"enum,omitempty"`
	Pattern  string   `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	Min      *float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max      *float64 `json:"max,omitempty" yaml:"max,omitempty"`
	Forbid   bool     `json:"forbid,omitempty" yaml:"forbid,omitempty"`
	Required bool     `json:"required,omitempty" yaml:"required,omitempty"`
}

// Parse decodes a program from data in the given format, an extension such
// as ".jsonc". JSON input may carry comments.
func Parse(data []byte, format string) (*Program, error) {
	var prog Program
	switch strings.ToLower(format) {
	case ".json", ".jsonc":
		if err := json.Unmarshal(jsonc.ToJSON(data), &prog); err != nil {
			return nil, fmt.Errorf("failed to parse validator program: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &prog); err != nil {
			return nil, fmt.Errorf("failed to parse validator program: %w", err)
		}
	default:
		return nil, NewUnsupportedFormatError(format)
	}
	return &prog, nil
}

// Load reads and parses a program file. A program without an explicit name
// takes the file's base name.
func Load(path string) (*Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read validator program: %w", err)
	}
	prog, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return nil, err
	}
	if prog.Name == "" {
		base := filepath.Base(path)
		prog.Name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return prog, nil
}
