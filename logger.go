package dedupe

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with dedupe-specific context.
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
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithRunID adds a run_id field to the logger (useful for tagging every
// line of one run).
func (l *Logger) WithRunID(id string) *Logger {
	return &Logger{
		Logger: l.Logger.With("run_id", id),
	}
}

// LogPlan logs a partition planning operation.
func (l *Logger) LogPlan(ctx context.Context, buckets int, comparisons int64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "planning failed",
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "planning completed",
			"buckets", buckets,
			"comparisons", comparisons,
		)
	}
}

// LogRun logs a deduplication run.
func (l *Logger) LogRun(ctx context.Context, runID string, comparisons int64, pairs int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "run failed",
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "run completed",
			"run_id", runID,
			"comparisons", comparisons,
			"pairs", pairs,
		)
	}
}

// LogStore logs a result store write.
func (l *Logger) LogStore(ctx context.Context, key string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "store write failed",
			"key", key,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "result stored",
			"key", key,
		)
	}
}

// LogEvaluation logs an evaluation against a gold standard.
func (l *Logger) LogEvaluation(ctx context.Context, precision, recall, f1 float64) {
	l.InfoContext(ctx, "evaluation completed",
		"precision", precision,
		"recall", recall,
		"f1", f1,
	)
}
