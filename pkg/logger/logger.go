package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// Logger wraps a logrus logger with the level gating and emoji progress
// output used by the CLI. It is safe for concurrent use by page workers.
type Logger struct {
	entry   *logrus.Entry
	verbose bool

	mu  *sync.Mutex
	out io.Writer
}

// NewLogger creates a new logger with specified level and verbose mode
func NewLogger(level string, verbose bool) *Logger {
	base := logrus.New()
	base.SetOutput(os.Stderr)
	base.SetLevel(parseLogLevel(level))
	base.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: !verbose,
		FullTimestamp:    true,
	})

	return &Logger{
		entry:   logrus.NewEntry(base),
		verbose: verbose,
		mu:      &sync.Mutex{},
		out:     os.Stdout,
	}
}

// SetOutput redirects both log lines and progress lines
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entry.Logger.SetOutput(w)
	l.out = w
}

// WithField returns a child logger that tags every line with key=value
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return &Logger{
		entry:   l.entry.WithField(key, value),
		verbose: l.verbose,
		mu:      l.mu,
		out:     l.out,
	}
}

// Verbose reports whether step-by-step progress is shown
func (l *Logger) Verbose() bool {
	return l.verbose
}

// Debug logs debug information (only in debug mode)
func (l *Logger) Debug(format string, args ...interface{}) {
	l.entry.Debugf(format, args...)
}

// Info logs informational messages (only in verbose mode)
func (l *Logger) Info(format string, args ...interface{}) {
	if l.verbose {
		l.entry.Infof(format, args...)
	}
}

// Warn logs warning messages
func (l *Logger) Warn(format string, args ...interface{}) {
	l.entry.Warnf(format, args...)
}

// Error logs error messages
func (l *Logger) Error(format string, args ...interface{}) {
	l.entry.Errorf(format, args...)
}

// ProgressAlways prints a milestone line regardless of verbose mode
func (l *Logger) ProgressAlways(emoji, format string, args ...interface{}) {
	l.progress(emoji, format, args...)
}

// Progress prints step-by-step progress (only in verbose mode)
func (l *Logger) Progress(emoji, format string, args ...interface{}) {
	if l.verbose {
		l.progress(emoji, format, args...)
	}
}

func (l *Logger) progress(emoji, format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)

	// Workers report concurrently; keep lines whole
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.out, "%s %s\n", emoji, message)
}

func parseLogLevel(level string) logrus.Level {
	switch strings.ToLower(level) {
	case "debug":
		return logrus.DebugLevel
	case "warn":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

// Discard returns a logger that writes nowhere, for tests and library use
func Discard() *Logger {
	l := NewLogger("error", false)
	l.SetOutput(io.Discard)
	return l
}
