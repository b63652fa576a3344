// Package logging provides the leveled logger threaded through the trace
// transform pipeline. There is no package-level logger; every component
// receives its *Logger at construction time.
package logging

import (
	"fmt"
	"io"
	"log"
	"strings"
)

// Level is a log severity. Messages above the logger's threshold are dropped.
type Level int

const (
	Error Level = iota
	Warning
	Info
	Debug
	Trace
)

// String returns the lower-case level name
func (l Level) String() string {
	switch l {
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Info:
		return "info"
	case Debug:
		return "debug"
	case Trace:
		return "trace"
	default:
		return fmt.Sprintf("level(%d)", int(l))
	}
}

// ParseLevel converts a level name into a Level
func ParseLevel(name string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "error":
		return Error, nil
	case "warning", "warn":
		return Warning, nil
	case "", "info":
		return Info, nil
	case "debug":
		return Debug, nil
	case "trace":
		return Trace, nil
	}
	return Info, fmt.Errorf("unknown log level %q", name)
}

// Options configures a Logger
type Options struct {
	// Threshold is the most verbose level that is still written
	Threshold Level

	// Timestamps prefixes every line with date and time
	Timestamps bool

	// Levels prefixes every line with the level name
	Levels bool
}

// Logger writes leveled messages to an underlying *log.Logger
type Logger struct {
	out  *log.Logger
	opts Options
}

// New creates a logger writing to w
func New(w io.Writer, opts Options) *Logger {
	flags := 0
	if opts.Timestamps {
		flags = log.LstdFlags | log.Lmicroseconds
	}
	return &Logger{
		out:  log.New(w, "", flags),
		opts: opts,
	}
}

// Discard returns a logger that drops everything
func Discard() *Logger {
	return New(io.Discard, Options{Threshold: Error})
}

// Enabled reports whether messages at level l are written.
// A nil logger is disabled for every level.
func (l *Logger) Enabled(level Level) bool {
	return l != nil && level <= l.opts.Threshold
}

// Threshold returns the configured threshold
func (l *Logger) Threshold() Level {
	if l == nil {
		return Error
	}
	return l.opts.Threshold
}

func (l *Logger) logf(level Level, format string, args ...interface{}) {
	if !l.Enabled(level) {
		return
	}
	msg := fmt.Sprintf(format, args...)
	if l.opts.Levels {
		msg = "[" + strings.ToUpper(level.String()) + "] " + msg
	}
	l.out.Output(3, msg)
}

// Errorf logs at Error level
func (l *Logger) Errorf(format string, args ...interface{}) { l.logf(Error, format, args...) }

// Warnf logs at Warning level
func (l *Logger) Warnf(format string, args ...interface{}) { l.logf(Warning, format, args...) }

// Infof logs at Info level
func (l *Logger) Infof(format string, args ...interface{}) { l.logf(Info, format, args...) }

// Debugf logs at Debug level
func (l *Logger) Debugf(format string, args ...interface{}) { l.logf(Debug, format, args...) }

// Tracef logs at Trace level
func (l *Logger) Tracef(format string, args ...interface{}) { l.logf(Trace, format, args...) }
