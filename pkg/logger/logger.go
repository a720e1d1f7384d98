// Package logger wraps github.com/charmbracelet/log behind a small
// context-carried interface so engine components never reach for a
// global logger directly.
package logger

import (
	"context"
	"io"
	"os"

	charmlog "github.com/charmbracelet/log"
)

// LogLevel mirrors the subset of charmlog levels the engine cares about.
type LogLevel int

const (
	DebugLevel LogLevel = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

func (l LogLevel) toCharmlogLevel() charmlog.Level {
	switch l {
	case DebugLevel:
		return charmlog.DebugLevel
	case WarnLevel:
		return charmlog.WarnLevel
	case ErrorLevel:
		return charmlog.ErrorLevel
	default:
		return charmlog.InfoLevel
	}
}

// Logger is the capability set every engine package depends on.
type Logger interface {
	Debug(msg string, keyvals ...any)
	Info(msg string, keyvals ...any)
	Warn(msg string, keyvals ...any)
	Error(msg string, keyvals ...any)
	With(keyvals ...any) Logger
}

type charmLogger struct {
	inner *charmlog.Logger
}

func (l *charmLogger) Debug(msg string, keyvals ...any) { l.inner.Debug(msg, keyvals...) }
func (l *charmLogger) Info(msg string, keyvals ...any)  { l.inner.Info(msg, keyvals...) }
func (l *charmLogger) Warn(msg string, keyvals ...any)  { l.inner.Warn(msg, keyvals...) }
func (l *charmLogger) Error(msg string, keyvals ...any) { l.inner.Error(msg, keyvals...) }

func (l *charmLogger) With(keyvals ...any) Logger {
	return &charmLogger{inner: l.inner.With(keyvals...)}
}

// Config controls the constructed logger's destination, level and format.
type Config struct {
	Level  LogLevel
	Output io.Writer
	JSON   bool
}

func TestConfig() *Config {
	return &Config{Level: DebugLevel, Output: io.Discard}
}

// NewLogger builds a Logger from Config, defaulting to stderr text output.
func NewLogger(cfg *Config) Logger {
	if cfg == nil {
		cfg = &Config{Level: InfoLevel, Output: os.Stderr}
	}
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	opts := charmlog.Options{ReportTimestamp: true}
	if cfg.JSON {
		opts.Formatter = charmlog.JSONFormatter
	}
	inner := charmlog.NewWithOptions(out, opts)
	inner.SetLevel(cfg.Level.toCharmlogLevel())
	return &charmLogger{inner: inner}
}

type ctxKey int

const LoggerCtxKey ctxKey = iota

var defaultLogger = NewLogger(&Config{Level: InfoLevel, Output: os.Stderr})

// ContextWithLogger attaches a Logger to ctx for downstream retrieval.
func ContextWithLogger(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, LoggerCtxKey, l)
}

// FromContext returns the Logger attached to ctx, or the process default
// when none is present (or the value is of the wrong type, or nil).
func FromContext(ctx context.Context) Logger {
	if ctx == nil {
		return defaultLogger
	}
	l, ok := ctx.Value(LoggerCtxKey).(Logger)
	if !ok || l == nil {
		return defaultLogger
	}
	return l
}
