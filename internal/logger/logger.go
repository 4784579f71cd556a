// Package logger provides a module-scoped structured logger built on log/slog.
//
// Components receive a Logger through their constructors or options and
// scope it with Module:
//
//	log := logger.NewSlogLogger(os.Stderr, logger.LogLevelInfo, logger.FormatText)
//	qlog := log.Module("queue")
//	qlog.Info("queue closed", logger.Int("remaining", 3))
//
// Tests use NewSlogLogger over a bytes.Buffer, or Discard.
package logger

import (
	"context"
	"io"
	"log/slog"
	"slices"
	"strings"
	"time"
)

// LogLevel represents log severity levels
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// Format selects the slog handler.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

const moduleKey = "module"

// Field represents a structured log field.
type Field struct {
	Key   string
	Value any
}

// Logger is the logging interface injected into components.
type Logger interface {
	// Module returns a logger scoped to a sub-module ("parent.child").
	Module(name string) Logger

	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)

	// With returns a logger that adds fields to every record.
	With(fields ...Field) Logger

	// Enabled reports whether records at level would be written.
	Enabled(level LogLevel) bool
}

func String(key, value string) Field { return Field{Key: key, Value: value} }

func Int(key string, value int) Field { return Field{Key: key, Value: value} }

func Int64(key string, value int64) Field { return Field{Key: key, Value: value} }

func Bool(key string, value bool) Field { return Field{Key: key, Value: value} }

func Any(key string, value any) Field { return Field{Key: key, Value: value} }

// Duration formats value as a human readable string rounded to microseconds.
func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value}
}

// Error creates an error field. The key is always "error"; a nil err
// produces a nil value.
func Error(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

// ParseLevel converts a level name to a LogLevel. Unknown names map to info.
func ParseLevel(level string) LogLevel {
	switch LogLevel(strings.ToLower(strings.TrimSpace(level))) {
	case LogLevelDebug:
		return LogLevelDebug
	case LogLevelWarn, "warning":
		return LogLevelWarn
	case LogLevelError:
		return LogLevelError
	default:
		return LogLevelInfo
	}
}

func toSlogLevel(level LogLevel) slog.Level {
	switch level {
	case LogLevelDebug:
		return slog.LevelDebug
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// slogLogger implements Logger for a specific module
type slogLogger struct {
	module string
	logger *slog.Logger
	level  slog.Level
	fields []Field
}

// NewSlogLogger creates a root Logger writing to w.
func NewSlogLogger(w io.Writer, level LogLevel, format Format) Logger {
	lvl := toSlogLevel(level)
	opts := &slog.HandlerOptions{Level: lvl}
	var h slog.Handler
	if format == FormatJSON {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return &slogLogger{logger: slog.New(h), level: lvl}
}

// Discard returns a Logger that drops every record.
func Discard() Logger {
	return NewSlogLogger(io.Discard, LogLevelError, FormatText)
}

func (l *slogLogger) Module(name string) Logger {
	module := name
	if l.module != "" {
		module = l.module + "." + name
	}
	return &slogLogger{
		module: module,
		logger: l.logger,
		level:  l.level,
		fields: slices.Clone(l.fields),
	}
}

func (l *slogLogger) With(fields ...Field) Logger {
	return &slogLogger{
		module: l.module,
		logger: l.logger,
		level:  l.level,
		fields: slices.Concat(l.fields, fields),
	}
}

func (l *slogLogger) Enabled(level LogLevel) bool {
	return l.level <= toSlogLevel(level)
}

func (l *slogLogger) Debug(msg string, fields ...Field) { l.log(slog.LevelDebug, msg, fields) }
func (l *slogLogger) Info(msg string, fields ...Field)  { l.log(slog.LevelInfo, msg, fields) }
func (l *slogLogger) Warn(msg string, fields ...Field)  { l.log(slog.LevelWarn, msg, fields) }
func (l *slogLogger) Error(msg string, fields ...Field) { l.log(slog.LevelError, msg, fields) }

func (l *slogLogger) log(level slog.Level, msg string, fields []Field) {
	if level < l.level {
		return
	}
	attrs := make([]slog.Attr, 0, 1+len(l.fields)+len(fields))
	if l.module != "" {
		attrs = append(attrs, slog.String(moduleKey, l.module))
	}
	for _, f := range l.fields {
		attrs = append(attrs, fieldToAttr(f))
	}
	for _, f := range fields {
		attrs = append(attrs, fieldToAttr(f))
	}
	l.logger.LogAttrs(context.Background(), level, msg, attrs...)
}

func fieldToAttr(f Field) slog.Attr {
	switch v := f.Value.(type) {
	case string:
		return slog.String(f.Key, v)
	case int:
		return slog.Int(f.Key, v)
	case int64:
		return slog.Int64(f.Key, v)
	case bool:
		return slog.Bool(f.Key, v)
	case time.Duration:
		// slog.Duration prints nanoseconds in JSON
		return slog.String(f.Key, v.Round(time.Microsecond).String())
	default:
		return slog.Any(f.Key, v)
	}
}
