package nodefinder

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"

	"github.com/hupe1980/nodefinder/model"
)

// Logger wraps slog.Logger with nodefinder-specific context.
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
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
			Level: slog.Level(1000),
		})),
	}
}

// WithRunID tags every record with the run ID.
func (l *Logger) WithRunID(id uuid.UUID) *Logger {
	return &Logger{
		Logger: l.Logger.With("run_id", id.String()),
	}
}

// WithDimension adds a dimension field to the logger.
func (l *Logger) WithDimension(dim int) *Logger {
	return &Logger{
		Logger: l.Logger.With("dimension", dim),
	}
}

// LogNodeFound logs a newly accepted node.
func (l *Logger) LogNodeFound(ctx context.Context, node model.Result, total int) {
	l.InfoContext(ctx, "node found",
		"pos", node.Pos,
		"value", node.Value,
		"nodes", total,
	)
}

// LogRefinement logs a refinement decision. Discarded refinements are
// redundant with nodes that were already found.
func (l *Logger) LogRefinement(ctx context.Context, pos []float64, expanded, scheduled bool) {
	msg := "refinement queued"
	switch {
	case expanded && scheduled:
		msg = "refinement expanded"
	case !scheduled:
		msg = "refinement discarded"
	}
	l.DebugContext(ctx, msg,
		"pos", pos,
	)
}

// LogCheckpoint logs a checkpoint write.
func (l *Logger) LogCheckpoint(ctx context.Context, path string, mirror bool, bytes int64, results int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "checkpoint failed",
			"path", path,
			"mirror", mirror,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "checkpoint saved",
			"path", path,
			"mirror", mirror,
			"bytes", bytes,
			"results", results,
		)
	}
}

// LogLoad logs a checkpoint load.
func (l *Logger) LogLoad(ctx context.Context, path string, mirror bool, results int, err error) {
	if err != nil {
		l.WarnContext(ctx, "checkpoint load failed",
			"path", path,
			"mirror", mirror,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "checkpoint loaded",
			"path", path,
			"mirror", mirror,
			"results", results,
		)
	}
}

// LogRun logs the end of a run.
func (l *Logger) LogRun(ctx context.Context, nodes, rejected int, evaluations int64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "search failed",
			"nodes", nodes,
			"rejected", rejected,
			"evaluations", evaluations,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "search completed",
			"nodes", nodes,
			"rejected", rejected,
			"evaluations", evaluations,
		)
	}
}
