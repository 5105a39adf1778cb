package assets

import (
	"fmt"
	"log"
	"os"
	"sync/atomic"
)

// Logger is the diagnostic sink a Facade reports recoverable decode
// issues to (missing/undecodable textures, fallback resolutions).
type Logger interface {
	DebugEnabled() bool
	SetDebug(enabled bool)
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// StdLogger writes to the standard log package, gating Debugf on an
// atomically toggled flag so it can be flipped from another goroutine
// without a lock.
type StdLogger struct {
	debug  atomic.Bool
	prefix string
	out    *log.Logger
	err    *log.Logger
}

func NewStdLogger(prefix string, debug bool) *StdLogger {
	l := &StdLogger{
		prefix: prefix,
		out:    log.New(os.Stdout, "", log.LstdFlags|log.Lmicroseconds),
		err:    log.New(os.Stderr, "", log.LstdFlags|log.Lmicroseconds),
	}
	l.debug.Store(debug)
	return l
}

func (l *StdLogger) DebugEnabled() bool    { return l.debug.Load() }
func (l *StdLogger) SetDebug(enabled bool) { l.debug.Store(enabled) }

func (l *StdLogger) line(level, format string, args ...any) string {
	msg := fmt.Sprintf(format, args...)
	if l.prefix == "" {
		return level + ": " + msg
	}
	return "[" + l.prefix + "] " + level + ": " + msg
}

func (l *StdLogger) Debugf(format string, args ...any) {
	if !l.debug.Load() {
		return
	}
	l.out.Print(l.line("DEBUG", format, args...))
}

func (l *StdLogger) Infof(format string, args ...any) { l.out.Print(l.line("INFO", format, args...)) }
func (l *StdLogger) Warnf(format string, args ...any) { l.err.Print(l.line("WARN", format, args...)) }
func (l *StdLogger) Errorf(format string, args ...any) {
	l.err.Print(l.line("ERROR", format, args...))
}

type nopLogger struct{}

func (nopLogger) DebugEnabled() bool           { return false }
func (nopLogger) SetDebug(bool)                {}
func (nopLogger) Debugf(string, ...any)        {}
func (nopLogger) Infof(string, ...any)         {}
func (nopLogger) Warnf(string, ...any)         {}
func (nopLogger) Errorf(string, ...any)        {}
