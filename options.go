package childproc

import (
	"log/slog"

	"github.com/wagiedev/childproc-go/internal/config"
)

// Options holds the settings applied when a child is spawned.
type Options = config.Options

// Option configures Options using the functional options pattern.
type Option func(*Options)

// applyOptions applies functional options to a fresh Options struct.
func applyOptions(opts []Option) *Options {
	options := &Options{}
	for _, opt := range opts {
		opt(options)
	}

	return options
}

// WithLogger sets the logger for lifecycle and debug output.
// If not set, logging is disabled (silent operation).
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithVerbose merges the child's standard error into its output stream.
// When disabled the child writes standard error to the parent's.
func WithVerbose(verbose bool) Option {
	return func(o *Options) {
		o.Verbose = verbose
	}
}

// WithEnv sets the child's environment as KEY=value pairs.
// If not set, the child inherits the parent's environment.
func WithEnv(env []string) Option {
	return func(o *Options) {
		o.Env = env
	}
}

// WithDir sets the working directory of the child.
func WithDir(dir string) Option {
	return func(o *Options) {
		o.Dir = dir
	}
}

// WithProcessGroup starts the child in its own process group so Terminate
// also stops its descendants.
func WithProcessGroup(enabled bool) Option {
	return func(o *Options) {
		o.ProcessGroup = enabled
	}
}

// WithFlushers adds buffered sinks that are flushed before the child starts,
// so their content is not interleaved with the child's output.
func WithFlushers(flushers ...Flusher) Option {
	return func(o *Options) {
		o.Flushers = append(o.Flushers, flushers...)
	}
}
