// Package logger wraps log/slog behind a small context-first interface.
//
// A process initializes the global logger once with Init or InitWithWriter
// and then hands out component loggers with Named. Every record carries the
// component name and the call site that emitted it.
package logger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

// Frames between runtime.Callers and the code that logged: callSite, log
// and the level method.
const callSiteSkip = 3

// ErrNilWriter is returned when the logger is initialized without an output.
var ErrNilWriter = errors.New("logger writer is nil")

// Logger is the logging surface used across the engine.
type Logger interface {
	Info(ctx context.Context, msg string, fields ...Field)
	Error(ctx context.Context, msg string, fields ...Field)
	Debug(ctx context.Context, msg string, fields ...Field)
	Warn(ctx context.Context, msg string, fields ...Field)
	Fatal(ctx context.Context, msg string, fields ...Field)

	// Named returns a child logger for a sub component. Names nest with dots.
	Named(name string) Logger
	// With returns a child logger that attaches fields to every record.
	With(fields ...Field) Logger
}

// Field is one structured key/value pair.
type Field struct {
	Key   string
	Value any
}

func String(key, val string) Field                 { return Field{Key: key, Value: val} }
func Int(key string, val int) Field                { return Field{Key: key, Value: val} }
func Float64(key string, val float64) Field        { return Field{Key: key, Value: val} }
func Bool(key string, val bool) Field              { return Field{Key: key, Value: val} }
func Duration(key string, val time.Duration) Field { return Field{Key: key, Value: val} }
func Any(key string, val any) Field                { return Field{Key: key, Value: val} }
func Error(err error) Field                        { return Field{Key: "error", Value: err} }

type slogLogger struct {
	base      *slog.Logger
	component string
}

func (l *slogLogger) Named(name string) Logger {
	if name == "" {
		return l
	}
	component := name
	if l.component != "" {
		component = l.component + "." + name
	}
	return &slogLogger{base: l.base, component: component}
}

func (l *slogLogger) With(fields ...Field) Logger {
	if len(fields) == 0 {
		return l
	}
	args := make([]any, 0, len(fields))
	for _, f := range fields {
		args = append(args, slog.Any(f.Key, f.Value))
	}
	return &slogLogger{base: l.base.With(args...), component: l.component}
}

func (l *slogLogger) Info(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, slog.LevelInfo, msg, fields)
}

func (l *slogLogger) Error(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, slog.LevelError, msg, fields)
}

func (l *slogLogger) Debug(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, slog.LevelDebug, msg, fields)
}

func (l *slogLogger) Warn(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, slog.LevelWarn, msg, fields)
}

func (l *slogLogger) Fatal(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, slog.LevelError, msg, fields)
	os.Exit(1)
}

func (l *slogLogger) log(ctx context.Context, level slog.Level, msg string, fields []Field) {
	if ctx == nil {
		ctx = context.Background()
	}
	if !l.base.Enabled(ctx, level) {
		return
	}
	attrs := make([]slog.Attr, 0, len(fields)+2)
	if l.component != "" {
		attrs = append(attrs, slog.String("component", l.component))
	}
	for _, f := range fields {
		attrs = append(attrs, slog.Any(f.Key, f.Value))
	}
	attrs = append(attrs, slog.String("source", callSite()))
	l.base.LogAttrs(ctx, level, msg, attrs...)
}

// callSite reports the caller of the level method as path:line, relative to
// the working directory when possible.
func callSite() string {
	pcs := make([]uintptr, 1)
	if runtime.Callers(callSiteSkip+1, pcs) == 0 {
		return "unknown:0"
	}
	frame, _ := runtime.CallersFrames(pcs).Next()
	file := frame.File
	if cwd, err := os.Getwd(); err == nil {
		if rel, err := filepath.Rel(cwd, file); err == nil {
			file = rel
		}
	} else {
		file = filepath.Base(file)
	}
	return fmt.Sprintf("%s:%d", file, frame.Line)
}

var (
	global   Logger
	levelVar slog.LevelVar
)

// Init initializes the global logger on stdout.
func Init() error {
	return InitWithWriter(os.Stdout)
}

// InitWithWriter initializes the global logger on w. The CLI passes stderr so
// stdout stays free for command output and MCP frames.
func InitWithWriter(w io.Writer) error {
	if w == nil {
		return ErrNilWriter
	}
	levelVar.Set(slog.LevelInfo)
	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: &levelVar})
	global = &slogLogger{base: slog.New(h)}
	return nil
}

// Get returns the global logger. It panics when Init was never called.
func Get() Logger {
	if global == nil {
		panic("logger not initialized: call logger.Init first")
	}
	return global
}

// Named returns a component logger derived from the global one.
func Named(name string) Logger {
	return Get().Named(name)
}

// Sync is a no-op; slog writes through.
func Sync() error { return nil }

// SetLevel changes the minimum level of the global handler.
func SetLevel(level slog.Level) { levelVar.Set(level) }

// SetLevelString accepts debug, info, warn, warning or error in any case.
// An empty string means info.
func SetLevelString(level string) error {
	var lvl slog.Level
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		lvl = slog.LevelDebug
	case "", "info":
		lvl = slog.LevelInfo
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		return fmt.Errorf("unknown log level %q", level)
	}
	SetLevel(lvl)
	return nil
}
