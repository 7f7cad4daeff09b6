// Package log is the process-wide leveled logger. The CLI and the
// language server both route their operational chatter through it; the
// compiler itself reports through errs and never logs.
package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// Level orders message severities from chattiest to quietest.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// ParseLevel maps a flag value like "debug" or "warn" to a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

var (
	mu       sync.Mutex
	output   io.Writer = os.Stderr
	minLevel           = LevelInfo
	prefix             = "[CSSPP]"
)

// SetOutput redirects messages, or silences them when w is nil.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// SetLevel sets the minimum level a message needs to be written.
func SetLevel(level Level) {
	mu.Lock()
	defer mu.Unlock()
	minLevel = level
}

// GetLevel returns the current minimum level.
func GetLevel() Level {
	mu.Lock()
	defer mu.Unlock()
	return minLevel
}

func Debug(format string, args ...any) { write(LevelDebug, format, args...) }

func Info(format string, args ...any) { write(LevelInfo, format, args...) }

func Warn(format string, args ...any) { write(LevelWarn, format, args...) }

func Error(format string, args ...any) { write(LevelError, format, args...) }

func write(level Level, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	if level < minLevel || output == nil {
		return
	}
	fmt.Fprintf(output, prefix+" "+format+"\n", args...)
}
