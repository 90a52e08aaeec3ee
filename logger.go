package childproc

import (
	"io"
	"log/slog"
)

// NopLogger returns a logger that discards all output.
// Use this when you want silent operation with no logging overhead.
func NopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// loggerWithComponent returns log, or a silent logger when nil, with the
// component field set.
func loggerWithComponent(log *slog.Logger, component string) *slog.Logger {
	if log == nil {
		log = NopLogger()
	}

	return log.With("component", component)
}
