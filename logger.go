package ezfs

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with ezfs-specific helpers.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// LogOpen logs a file open.
func (l *Logger) LogOpen(ctx context.Context, path string, mode Mode) {
	l.DebugContext(ctx, "file opened",
		"path", path,
		"mode", mode.String(),
	)
}

// LogFlush logs a write flush.
func (l *Logger) LogFlush(ctx context.Context, path string, size int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "flush failed",
			"path", path,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "flush completed",
			"path", path,
			"bytes", size,
		)
	}
}

// LogRead logs a read.
func (l *Logger) LogRead(ctx context.Context, path string, size int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "read failed",
			"path", path,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "read completed",
			"path", path,
			"bytes", size,
		)
	}
}

// LogRemove logs a remove operation.
func (l *Logger) LogRemove(ctx context.Context, path string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "remove failed",
			"path", path,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "remove completed",
			"path", path,
		)
	}
}

// LogRename logs a rename operation.
func (l *Logger) LogRename(ctx context.Context, src, dst string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "rename failed",
			"src", src,
			"dst", dst,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "rename completed",
			"src", src,
			"dst", dst,
		)
	}
}
