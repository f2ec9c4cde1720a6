// Package ctxlog carries a charmbracelet/log logger through context.Context.
package ctxlog

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
)

type key struct{}

var loggerKey = key{}

// New creates a logger with short timestamps writing to w at the given level.
func New(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
		Prefix:          "loggraph",
	})
}

// WithLogger returns a new context with the provided logger embedded.
func WithLogger(ctx context.Context, logger *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext extracts the logger from ctx, falling back to log.Default().
func FromContext(ctx context.Context) *log.Logger {
	if ctx != nil {
		if logger, ok := ctx.Value(loggerKey).(*log.Logger); ok {
			return logger
		}
	}
	return log.Default()
}
