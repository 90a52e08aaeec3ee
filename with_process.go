package childproc

import (
	"context"
)

// WithProcess manages a child's lifecycle with automatic cleanup.
//
// It spawns path with args on the default reactor, runs fn, and closes the
// process afterwards. Close does not stop the child; fn should call Result
// (or Terminate and then Result) when it needs the child gone. If Close
// fails, a warning is logged but does not override the callback's error.
//
// Example usage:
//
//	err := childproc.WithProcess(ctx, "/bin/cat", nil, func(p childproc.Process) error {
//	    if _, err := p.Stdin().Write([]byte("ping\n")); err != nil {
//	        return err
//	    }
//	    _ = p.Stdin().Close()
//	    _, err := io.Copy(os.Stdout, p.Stdout())
//	    return err
//	},
//	    childproc.WithLogger(log),
//	)
func WithProcess(
	ctx context.Context,
	path string,
	args []string,
	fn func(Process) error,
	opts ...Option,
) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	options := applyOptions(opts)
	log := loggerWithComponent(options.Logger, "with_process")

	p, err := New(nil, path, args, opts...)
	if err != nil {
		return err
	}

	defer func() {
		if closeErr := p.Close(); closeErr != nil {
			log.Warn("failed to close process", "error", closeErr)
		}
	}()

	return fn(p)
}
