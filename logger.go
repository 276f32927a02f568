package echoscan

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with echoscan-specific context.
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

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// WithDataset adds a dataset field to the logger.
func (l *Logger) WithDataset(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("dataset", name),
	}
}

// WithPatchSize adds a patch_size field to the logger.
func (l *Logger) WithPatchSize(size int) *Logger {
	return &Logger{
		Logger: l.Logger.With("patch_size", size),
	}
}

// WithSamples adds a samples field to the logger.
func (l *Logger) WithSamples(n int) *Logger {
	return &Logger{
		Logger: l.Logger.With("samples", n),
	}
}

// LogRead logs a dataset read.
func (l *Logger) LogRead(ctx context.Context, path string, points, dropped int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "read failed",
			"path", path,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "dataset loaded",
			"path", path,
			"points", points,
			"dropped", dropped,
		)
	}
}

// LogDetect logs a detection pass.
func (l *Logger) LogDetect(ctx context.Context, matches, skipped int, elapsed time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "detection failed",
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "detection completed",
			"matches", matches,
			"skipped_pairs", skipped,
			"elapsed", elapsed,
		)
	}
}

// LogReport logs report generation.
func (l *Logger) LogReport(ctx context.Context, path string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "report write failed",
			"path", path,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "report written",
			"path", path,
		)
	}
}

// LogCache logs a parse-cache outcome.
func (l *Logger) LogCache(ctx context.Context, path string, hit bool) {
	l.DebugContext(ctx, "parse cache",
		"path", path,
		"hit", hit,
	)
}
