package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/vvka-141/pgbulk/pkg/pgbulk"
)

// Log formats accepted by NewStructuredLogger.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// StructuredLogger adapts a logrus entry to pgbulk.Logger so every line can
// carry fields such as the batch run id.
type StructuredLogger struct {
	entry *logrus.Entry
}

// NewStructuredLogger writes to stderr in the given format ("text" or "json").
func NewStructuredLogger(format string, verbose bool) (*StructuredLogger, error) {
	return NewStructuredLoggerTo(os.Stderr, format, verbose)
}

// NewStructuredLoggerTo writes to out.
func NewStructuredLoggerTo(out io.Writer, format string, verbose bool) (*StructuredLogger, error) {
	l := logrus.New()
	l.SetOutput(out)

	switch strings.ToLower(format) {
	case "", FormatText:
		l.SetFormatter(&logrus.TextFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
			FullTimestamp:   true,
		})
	case FormatJSON:
		l.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, fmt.Errorf("%w: unknown log format %q (use text or json)", pgbulk.ErrInvalidConfig, format)
	}

	l.SetLevel(logrus.InfoLevel)
	if verbose {
		l.SetLevel(logrus.DebugLevel)
	}

	return &StructuredLogger{entry: logrus.NewEntry(l)}, nil
}

// WithField returns a logger that adds key=value to every line.
func (l *StructuredLogger) WithField(key string, value interface{}) *StructuredLogger {
	return &StructuredLogger{entry: l.entry.WithField(key, value)}
}

func (l *StructuredLogger) Verbose(format string, args ...interface{}) {
	l.entry.Debugf(format, args...)
}

func (l *StructuredLogger) Info(format string, args ...interface{}) {
	l.entry.Infof(format, args...)
}

func (l *StructuredLogger) Error(format string, args ...interface{}) {
	l.entry.Errorf(format, args...)
}

// WithRunID tags logger with the batch run id when it supports fields.
// Other loggers are returned unchanged.
func WithRunID(logger pgbulk.Logger, runID string) pgbulk.Logger {
	if s, ok := logger.(*StructuredLogger); ok {
		return s.WithField("run_id", runID)
	}
	return logger
}

var (
	_ pgbulk.Logger = (*StructuredLogger)(nil)
	_ pgbulk.Logger = (*ConsoleLogger)(nil)
	_ pgbulk.Logger = (*NullLogger)(nil)
)
