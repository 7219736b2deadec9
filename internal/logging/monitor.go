// Package logging wraps the standard logger with severity levels and
// once-only diagnostics for repeated configuration problems.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
)

// Level is the severity of a log line.
type Level int

const (
	Trace Level = iota
	Debug
	Info
	Warn
	Error
)

// String returns the label printed in front of each line.
func (l Level) String() string {
	switch l {
	case Trace:
		return "TRACE"
	case Debug:
		return "DEBUG"
	case Info:
		return "INFO"
	case Warn:
		return "WARN"
	case Error:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Monitor writes leveled lines through a *log.Logger and remembers which
// messages were already emitted by LogOnce.
type Monitor struct {
	logger *log.Logger
	min    Level

	mu   sync.Mutex
	seen map[string]struct{}
}

// New creates a monitor writing to w with the given prefix. Lines below min
// are discarded.
func New(w io.Writer, prefix string, min Level) *Monitor {
	return &Monitor{
		logger: log.New(w, prefix, log.LstdFlags),
		min:    min,
		seen:   make(map[string]struct{}),
	}
}

// Default returns a stderr monitor. Verbose lowers the threshold to Debug.
func Default(verbose bool) *Monitor {
	min := Info
	if verbose {
		min = Debug
	}
	return New(os.Stderr, "", min)
}

// Discard returns a monitor that drops everything. Useful in tests.
func Discard() *Monitor {
	return New(io.Discard, "", Error+1)
}

// Enabled reports whether lines at level would be written.
func (m *Monitor) Enabled(level Level) bool {
	return m != nil && level >= m.min
}

// Log writes a formatted line at the given level.
func (m *Monitor) Log(level Level, format string, args ...any) {
	if !m.Enabled(level) {
		return
	}
	m.logger.Printf("[%s] %s", level, fmt.Sprintf(format, args...))
}

// LogOnce writes a formatted line the first time this exact message is seen
// at this level and reports whether it was written.
func (m *Monitor) LogOnce(level Level, format string, args ...any) bool {
	if m == nil {
		return false
	}
	msg := fmt.Sprintf(format, args...)
	key := level.String() + "|" + msg

	m.mu.Lock()
	_, dup := m.seen[key]
	if !dup {
		m.seen[key] = struct{}{}
	}
	m.mu.Unlock()

	if dup {
		return false
	}
	m.Log(level, "%s", msg)
	return true
}

func (m *Monitor) Tracef(format string, args ...any) { m.Log(Trace, format, args...) }
func (m *Monitor) Debugf(format string, args ...any) { m.Log(Debug, format, args...) }
func (m *Monitor) Infof(format string, args ...any)  { m.Log(Info, format, args...) }
func (m *Monitor) Warnf(format string, args ...any)  { m.Log(Warn, format, args...) }
func (m *Monitor) Errorf(format string, args ...any) { m.Log(Error, format, args...) }
