package config

import "log/slog"

// Options configures how a child process is spawned.
type Options struct {
	// Logger is the slog logger for debug output.
	// If nil, logging is disabled (silent operation).
	Logger *slog.Logger

	// Verbose merges the child's standard error into its output stream.
	// When false, standard error is inherited from the parent unchanged.
	Verbose bool

	// Env is the child's environment in "KEY=value" form.
	// If nil, the parent's environment is inherited.
	Env []string

	// Dir sets the working directory of the child.
	// If empty, the parent's working directory is used.
	Dir string

	// ProcessGroup starts the child as the leader of a new process group.
	// On Unix, Terminate then signals the whole group.
	ProcessGroup bool

	// Flushers are buffered sinks flushed, in order, before the child is
	// created. Standard output and standard error are always synced.
	Flushers []Flusher
}
