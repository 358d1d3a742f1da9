// Package log wraps zap with named loggers, rule based filtering and
// a process wide default logger.
package log

import (
	"context"
	"io"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"moul.io/zapfilter"
)

type (
	Level = zapcore.Level
	Field = zap.Field
)

const (
	DebugLevel = zapcore.DebugLevel
	InfoLevel  = zapcore.InfoLevel
	WarnLevel  = zapcore.WarnLevel
	ErrorLevel = zapcore.ErrorLevel
	FatalLevel = zapcore.FatalLevel
)

type Logger struct {
	l     *zap.Logger
	level Level
}

type Option = zap.Option

func WithCaller(enabled bool) Option {
	return zap.WithCaller(enabled)
}

func AddCallerSkip(skip int) Option {
	return zap.AddCallerSkip(skip)
}

// New creates a logger with JSON output.
func New(out io.Writer, level Level, opts ...Option) *Logger {
	return newLogger(out, level, prodEncoder(), opts...)
}

// DevLogger creates a logger with human readable console output.
func DevLogger(out io.Writer, level Level, opts ...Option) *Logger {
	return newLogger(out, level, devEncoder(), opts...)
}

// FilteredLogger wraps delegate with zapfilter rules
// (e.g. "debug:ingest.* info:*").
func FilteredLogger(delegate *Logger, rules string) *Logger {
	filtered := zap.New(zapfilter.NewFilteringCore(
		delegate.l.Core(), zapfilter.MustParseRules(rules)))
	return &Logger{l: filtered, level: delegate.level}
}

func newLogger(out io.Writer, level Level, enc zapcore.Encoder, opts ...Option) *Logger {
	if out == nil {
		out = os.Stderr
	}
	core := zapcore.NewCore(enc, zapcore.AddSync(out), level)
	return &Logger{l: zap.New(core, opts...), level: level}
}

func prodEncoder() zapcore.Encoder {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	return zapcore.NewJSONEncoder(cfg)
}

func devEncoder() zapcore.Encoder {
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return zapcore.NewConsoleEncoder(cfg)
}

func (l *Logger) Named(name string) *Logger {
	return &Logger{l: l.l.Named(name), level: l.level}
}

func (l *Logger) Debug(msg string, fields ...Field) { l.l.Debug(msg, fields...) }
func (l *Logger) Info(msg string, fields ...Field)  { l.l.Info(msg, fields...) }
func (l *Logger) Warn(msg string, fields ...Field)  { l.l.Warn(msg, fields...) }
func (l *Logger) Error(msg string, fields ...Field) { l.l.Error(msg, fields...) }
func (l *Logger) Fatal(msg string, fields ...Field) { l.l.Fatal(msg, fields...) }

func (l *Logger) Level() Level       { return l.level }
func (l *Logger) Sync() error        { return l.l.Sync() }
func (l *Logger) Zap() *zap.Logger   { return l.l }
func (l *Logger) DebugEnabled() bool { return l.level <= DebugLevel }

func ParseLevel(text string) (Level, error) {
	return zapcore.ParseLevel(text)
}

//nolint:gochecknoglobals // process wide default logger
var (
	std     = DevLogger(os.Stderr, InfoLevel)
	stdLock sync.Mutex
)

func Default() *Logger { return std }

func ResetDefault(l *Logger) {
	stdLock.Lock()
	defer stdLock.Unlock()
	std = l
}

func Debug(msg string, fields ...Field) { std.Debug(msg, fields...) }
func Info(msg string, fields ...Field)  { std.Info(msg, fields...) }
func Warn(msg string, fields ...Field)  { std.Warn(msg, fields...) }
func Error(msg string, fields ...Field) { std.Error(msg, fields...) }
func Fatal(msg string, fields ...Field) { std.Fatal(msg, fields...) }

type ctxKey struct{}

func AddToContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// GetFromContext returns the logger stored in ctx, falling back to the
// default logger.
func GetFromContext(ctx context.Context) *Logger {
	if l, ok := ctx.Value(ctxKey{}).(*Logger); ok {
		return l
	}
	return std
}
