package errs

import (
	"errors"
	"fmt"
)

// Sentinel errors for failure summaries.
var (
	// ErrCompileFailed indicates diagnostics with error severity were reported.
	ErrCompileFailed = errors.New("compilation failed")

	// ErrTooManyErrors indicates the configured error limit was exceeded.
	ErrTooManyErrors = errors.New("too many errors")
)

// CompileError summarizes a run that reported errors.
type CompileError struct {
	Errors   int
	Warnings int
}

func (e *CompileError) Error() string {
	if e.Warnings > 0 {
		return fmt.Sprintf("compilation failed with %d error(s) and %d warning(s)", e.Errors, e.Warnings)
	}
	return fmt.Sprintf("compilation failed with %d error(s)", e.Errors)
}

func (e *CompileError) Unwrap() error {
	return ErrCompileFailed
}

// NewCompileError creates a CompileError from reporter counters.
func NewCompileError(errCount, warnCount int) *CompileError {
	return &CompileError{Errors: errCount, Warnings: warnCount}
}

// TooManyErrorsError summarizes a run stopped by the error limit.
type TooManyErrorsError struct {
	Errors int
	Limit  int
}

func (e *TooManyErrorsError) Error() string {
	return fmt.Sprintf("too many errors (%d reported, limit %d)", e.Errors, e.Limit)
}

func (e *TooManyErrorsError) Unwrap() error {
	return ErrTooManyErrors
}

// NewTooManyErrorsError creates a TooManyErrorsError.
func NewTooManyErrorsError(errCount, limit int) *TooManyErrorsError {
	return &TooManyErrorsError{Errors: errCount, Limit: limit}
}
