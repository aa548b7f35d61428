// Package logger provides structured logging built on log/slog.
package logger

import (
	"context"
	"io"
	"log/slog"
	"time"
)

// Level represents the minimum logging level.
type Level slog.Level

// Log levels, mirroring slog.
const (
	LevelDebug = Level(slog.LevelDebug)
	LevelInfo  = Level(slog.LevelInfo)
	LevelWarn  = Level(slog.LevelWarn)
	LevelError = Level(slog.LevelError)
)

// TraceIDFn extracts a trace ID from the context for log correlation.
type TraceIDFn func(ctx context.Context) string

// LoggerInterface is the logging contract consumed by infrastructure adapters.
type LoggerInterface interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)
}

// Logger wraps slog with context-aware methods and trace ID injection.
type Logger struct {
	handler   slog.Handler
	traceIDFn TraceIDFn
}

// New creates a Logger writing JSON to w at the given minimum level.
// The service name is attached to every record. traceIDFn may be nil.
func New(w io.Writer, minLevel Level, serviceName string, traceIDFn TraceIDFn) *Logger {
	handler := slog.Handler(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: slog.Level(minLevel),
	}))
	if serviceName != "" {
		handler = handler.WithAttrs([]slog.Attr{slog.String("service", serviceName)})
	}
	return &Logger{handler: handler, traceIDFn: traceIDFn}
}

// Slog returns a *slog.Logger backed by the same handler, for application
// services that take slog directly.
func (l *Logger) Slog() *slog.Logger {
	return slog.New(l.handler)
}

// Debug logs at debug level.
func (l *Logger) Debug(ctx context.Context, msg string, args ...any) {
	l.write(ctx, slog.LevelDebug, msg, args...)
}

// Info logs at info level.
func (l *Logger) Info(ctx context.Context, msg string, args ...any) {
	l.write(ctx, slog.LevelInfo, msg, args...)
}

// Warn logs at warn level.
func (l *Logger) Warn(ctx context.Context, msg string, args ...any) {
	l.write(ctx, slog.LevelWarn, msg, args...)
}

// Error logs at error level.
func (l *Logger) Error(ctx context.Context, msg string, args ...any) {
	l.write(ctx, slog.LevelError, msg, args...)
}

func (l *Logger) write(ctx context.Context, level slog.Level, msg string, args ...any) {
	if !l.handler.Enabled(ctx, level) {
		return
	}
	r := slog.NewRecord(time.Now(), level, msg, 0)
	if l.traceIDFn != nil {
		if traceID := l.traceIDFn(ctx); traceID != "" {
			r.Add("trace_id", traceID)
		}
	}
	r.Add(args...)
	_ = l.handler.Handle(ctx, r)
}
