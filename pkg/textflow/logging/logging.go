// Package logging wraps slog.Logger with the field names textflow uses.
package logging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/cognicore/textflow/pkg/textflow/internalerr"
)

// Logger wraps slog.Logger with pipeline-specific helpers.
type Logger struct {
	*slog.Logger
}

// New creates a Logger with the given handler.
// If handler is nil, uses a text handler to stderr at Info.
func New(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	return &Logger{Logger: slog.New(handler)}
}

// NewText creates a Logger that writes human-readable text to w.
func NewText(w io.Writer, level slog.Level) *Logger {
	return New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// NewJSON creates a Logger that writes JSON lines to w.
func NewJSON(w io.Writer, level slog.Level) *Logger {
	return New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// Noop discards everything.
func Noop() *Logger {
	return New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.Level(1000)}))
}

// FromConfig builds a logger from the "format" ("text" or "json") and
// "level" ("debug", "info", "warn", "error") settings.
func FromConfig(w io.Writer, format, level string) (*Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(format) {
	case "", "text":
		return NewText(w, lvl), nil
	case "json":
		return NewJSON(w, lvl), nil
	}
	return nil, fmt.Errorf("log format %q: %w", format, internalerr.ErrInvalidConfig)
}

// ParseLevel maps a level name to a slog.Level. Empty means Info.
func ParseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("log level %q: %w", s, internalerr.ErrInvalidConfig)
	}
	return lvl, nil
}

// WithStage tags every entry with the pipeline stage.
func (l *Logger) WithStage(stage string) *Logger {
	return &Logger{Logger: l.Logger.With("stage", stage)}
}

// LogSnapshot logs a stage completion.
func (l *Logger) LogSnapshot(ctx context.Context, stage, id, parentID string, records int) {
	l.InfoContext(ctx, "snapshot created",
		"stage", stage,
		"dataset_id", id,
		"parent_id", parentID,
		"records", records,
	)
}

// LogStageFailure logs a stage that could not complete. Remote failures are
// expected and logged at Warn; anything else at Error.
func (l *Logger) LogStageFailure(ctx context.Context, stage string, err error) {
	if errors.Is(err, internalerr.ErrExternalService) {
		l.WarnContext(ctx, "remote service failed",
			"stage", stage,
			"error", err,
		)
		return
	}
	l.ErrorContext(ctx, "stage failed",
		"stage", stage,
		"error", err,
	)
}
