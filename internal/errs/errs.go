// Package errs carries the diagnostics stream for the preprocessor. Syntax
// and semantic problems found while walking a document are reported here with
// a position and a severity; they are never raised as Go errors, so a broken
// stylesheet still produces a best-effort tree. Go errors are reserved for
// environment failures and are defined next to the code that detects them.
package errs

import (
	"fmt"
	"io"
	"sync"

	"github.com/WebWorksCollection/csspp/internal/position"
)

// Severity classifies a reported message.
type Severity int

const (
	SeverityDebug Severity = iota
	SeverityInfo
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "debug"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

// Message is one reported diagnostic.
type Message struct {
	Pos      position.Position
	Severity Severity
	Text     string
}

func (m Message) String() string {
	return fmt.Sprintf("%s: %s: %s", m.Pos, m.Severity, m.Text)
}

// ansi colors per severity, used only when the reporter writes to a terminal.
var severityColors = map[Severity]string{
	SeverityDebug:   "\033[2m",
	SeverityInfo:    "\033[36m",
	SeverityWarning: "\033[33m",
	SeverityError:   "\033[31m",
}

// Format renders the message for human output, with ANSI colors when enabled.
func (m Message) Format(color bool) string {
	if !color {
		return m.String()
	}
	return fmt.Sprintf("%s: %s%s\033[0m: %s", m.Pos, severityColors[m.Severity], m.Severity, m.Text)
}

// Reporter accumulates diagnostics for one compilation and optionally writes
// them as they arrive. A nil output collects silently, which is what the
// language server wants; the CLI sets stderr.
type Reporter struct {
	mu       sync.Mutex
	out      io.Writer
	color    bool
	limit    int
	messages []Message
	errors   int
	warnings int
}

// NewReporter returns a collect-only reporter. Call SetOutput to stream
// messages somewhere as they are reported.
func NewReporter() *Reporter {
	return &Reporter{}
}

// SetOutput directs formatted messages to w as they arrive. nil disables
// streaming; messages are still collected.
func (r *Reporter) SetOutput(w io.Writer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.out = w
}

// SetColor enables ANSI colors on streamed output.
func (r *Reporter) SetColor(enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.color = enabled
}

// SetLimit caps the number of reported errors. Once the cap is reached a
// single "too many errors" message is emitted and further reports are
// counted but neither collected nor written. Zero means no limit.
func (r *Reporter) SetLimit(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.limit = n
}

// Report records one diagnostic at the given position.
func (r *Reporter) Report(pos position.Position, severity Severity, format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if severity == SeverityError {
		r.errors++
	}
	if severity == SeverityWarning {
		r.warnings++
	}

	if r.limit > 0 && r.errors > r.limit {
		if r.errors == r.limit+1 {
			r.append(Message{Pos: pos, Severity: SeverityError, Text: "too many errors, further messages suppressed"})
		}
		return
	}

	r.append(Message{Pos: pos, Severity: severity, Text: fmt.Sprintf(format, args...)})
}

// append assumes the lock is held.
func (r *Reporter) append(m Message) {
	r.messages = append(r.messages, m)
	if r.out != nil {
		fmt.Fprintln(r.out, m.Format(r.color))
	}
}

// Error reports an error message.
func (r *Reporter) Error(pos position.Position, format string, args ...any) {
	r.Report(pos, SeverityError, format, args...)
}

// Warning reports a warning message.
func (r *Reporter) Warning(pos position.Position, format string, args ...any) {
	r.Report(pos, SeverityWarning, format, args...)
}

// Info reports an informational message.
func (r *Reporter) Info(pos position.Position, format string, args ...any) {
	r.Report(pos, SeverityInfo, format, args...)
}

// Messages returns a copy of everything reported so far.
func (r *Reporter) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Message, len(r.messages))
	copy(out, r.messages)
	return out
}

// ErrorCount returns how many errors were reported, including suppressed ones.
func (r *Reporter) ErrorCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.errors
}

// WarningCount returns how many warnings were reported.
func (r *Reporter) WarningCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.warnings
}

// HasErrors reports whether any error was reported.
func (r *Reporter) HasErrors() bool {
	return r.ErrorCount() > 0
}

// Err summarizes the run as a Go error for callers that fail the build on
// any diagnostic error. Returns nil when no errors were reported.
func (r *Reporter) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.errors == 0 {
		return nil
	}
	if r.limit > 0 && r.errors > r.limit {
		return NewTooManyErrorsError(r.errors, r.limit)
	}
	return NewCompileError(r.errors, r.warnings)
}

// Reset clears collected messages and counters for reuse.
func (r *Reporter) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = nil
	r.errors = 0
	r.warnings = 0
}
