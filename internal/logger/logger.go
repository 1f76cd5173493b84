// Package logger provides the leveled logger shared by the phase cycle and
// its command.
package logger

import (
	"fmt"
	"io"
	logpkg "log"
	"strings"
	"sync/atomic"
)

// Level defines severity for logger output.
type Level int32

const (
	// LevelError logs only failures.
	LevelError Level = iota
	// LevelWarn adds recoverable problems.
	LevelWarn
	// LevelInfo adds lifecycle events such as start and stop.
	LevelInfo
	// LevelDebug adds every phase transition.
	LevelDebug
)

func (l Level) String() string {
	switch l {
	case LevelError:
		return "error"
	case LevelWarn:
		return "warn"
	case LevelInfo:
		return "info"
	case LevelDebug:
		return "debug"
	}
	return fmt.Sprintf("level(%d)", int32(l))
}

// ParseLevel parses a level name such as "info" or "DEBUG".
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "error":
		return LevelError, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "info", "":
		return LevelInfo, nil
	case "debug":
		return LevelDebug, nil
	}
	return LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// Logger provides leveled logging. A nil *Logger discards everything.
type Logger struct {
	level  atomic.Int32
	logger *logpkg.Logger
}

// New creates a logger writing to w with the desired level and prefix.
func New(w io.Writer, level Level, prefix string) *Logger {
	l := &Logger{
		logger: logpkg.New(w, prefix, logpkg.LstdFlags|logpkg.Lmicroseconds),
	}
	l.level.Store(int32(level))
	return l
}

// Discard returns a logger that writes nowhere.
func Discard() *Logger {
	return New(io.Discard, LevelError, "")
}

// SetLevel adjusts current logging level.
func (l *Logger) SetLevel(level Level) {
	if l == nil {
		return
	}
	l.level.Store(int32(level))
}

// Enabled reports whether messages at level would be written.
func (l *Logger) Enabled(level Level) bool {
	return l != nil && level <= Level(l.level.Load())
}

func (l *Logger) logf(target Level, format string, args ...any) {
	if !l.Enabled(target) {
		return
	}
	l.logger.Output(3, fmt.Sprintf(format, args...))
}

// Debugf prints debug messages.
func (l *Logger) Debugf(format string, args ...any) {
	l.logf(LevelDebug, format, args...)
}

// Infof prints info messages.
func (l *Logger) Infof(format string, args ...any) {
	l.logf(LevelInfo, format, args...)
}

// Warnf prints warning messages.
func (l *Logger) Warnf(format string, args ...any) {
	l.logf(LevelWarn, format, args...)
}

// Errorf prints error messages.
func (l *Logger) Errorf(format string, args ...any) {
	l.logf(LevelError, format, args...)
}
