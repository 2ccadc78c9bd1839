// Package log provides structured logging for the NCN core. It wraps
// logrus with per-module child loggers so each component in pkg/ncncore
// tags its entries with a "module" field rather than each caller
// formatting its own messages.
package log

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Logger wraps a logrus.Entry with NCN-specific conveniences.
type Logger struct {
	entry *logrus.Entry
}

// defaultLogger is the process-wide logger used by the package-level
// convenience functions and by components that receive no explicit
// logger.
var defaultLogger = New(logrus.InfoLevel)

// New creates a Logger that writes structured text to stderr at the
// given level.
func New(level logrus.Level) *Logger {
	base := logrus.New()
	base.SetOutput(os.Stderr)
	base.SetLevel(level)
	base.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return &Logger{entry: logrus.NewEntry(base)}
}

// NewWithOutput creates a Logger writing to an arbitrary destination,
// primarily for tests that want to capture output.
func NewWithOutput(level logrus.Level, w io.Writer) *Logger {
	base := logrus.New()
	base.SetOutput(w)
	base.SetLevel(level)
	base.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	return &Logger{entry: logrus.NewEntry(base)}
}

// LevelFromString parses a log level from its string representation.
// The match is case-insensitive. Unrecognized strings fall back to Info.
func LevelFromString(s string) logrus.Level {
	lvl, err := logrus.ParseLevel(strings.TrimSpace(s))
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}

// SetDefault replaces the package-level default logger.
func SetDefault(l *Logger) {
	if l != nil {
		defaultLogger = l
	}
}

// Default returns the current package-level default logger.
func Default() *Logger {
	return defaultLogger
}

// Module returns a child logger tagged with the given module name. This
// is the primary way subsystems (ballot box, reward router, epoch state,
// ...) obtain their own contextual logger.
func (l *Logger) Module(name string) *Logger {
	return &Logger{entry: l.entry.WithField("module", name)}
}

// With returns a child logger with additional key-value context. args
// must be an even-length list of alternating keys and values, matching
// the calling convention of slog-style loggers used elsewhere in the
// pack.
func (l *Logger) With(args ...any) *Logger {
	fields := make(logrus.Fields, len(args)/2)
	for i := 0; i+1 < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			continue
		}
		fields[key] = args[i+1]
	}
	return &Logger{entry: l.entry.WithFields(fields)}
}

// Debug logs at DebugLevel.
func (l *Logger) Debug(msg string, args ...any) { l.With(args...).entry.Debug(msg) }

// Info logs at InfoLevel.
func (l *Logger) Info(msg string, args ...any) { l.With(args...).entry.Info(msg) }

// Warn logs at WarnLevel.
func (l *Logger) Warn(msg string, args ...any) { l.With(args...).entry.Warn(msg) }

// Error logs at ErrorLevel.
func (l *Logger) Error(msg string, args ...any) { l.With(args...).entry.Error(msg) }

// ---------------------------------------------------------------------------
// Package-level convenience functions -- delegate to defaultLogger.
// ---------------------------------------------------------------------------

// Debug logs at DebugLevel using the default logger.
func Debug(msg string, args ...any) { defaultLogger.Debug(msg, args...) }

// Info logs at InfoLevel using the default logger.
func Info(msg string, args ...any) { defaultLogger.Info(msg, args...) }

// Warn logs at WarnLevel using the default logger.
func Warn(msg string, args ...any) { defaultLogger.Warn(msg, args...) }

// Error logs at ErrorLevel using the default logger.
func Error(msg string, args ...any) { defaultLogger.Error(msg, args...) }
