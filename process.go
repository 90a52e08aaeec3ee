package childproc

import (
	"context"

	"github.com/wagiedev/childproc-go/internal/procinfo"
	"github.com/wagiedev/childproc-go/internal/subprocess"
)

// ProcessInfo is a point-in-time snapshot of a child's OS statistics.
type ProcessInfo = procinfo.Info

// Process is a child process with piped standard input and output.
//
// Terminate may be called concurrently with Result and Close. All other
// methods should be called from one goroutine at a time.
type Process interface {
	// Stdin returns the stream feeding the child's standard input.
	// Close it to signal end of input.
	Stdin() Stream

	// Stdout returns the stream carrying the child's standard output, and
	// its standard error when verbose.
	Stdout() Stream

	// Pid returns the OS process id.
	Pid() int

	// ID returns the identifier correlating this child in logs.
	ID() string

	// Terminate forcibly stops the child without waiting for it.
	// It does nothing once the child has been reaped or closed.
	Terminate()

	// Result blocks until the child exits and returns its exit code.
	// The code is memoized after the first successful call.
	Result() (int, error)

	// Inspect reports live OS statistics for the child.
	Inspect(ctx context.Context) (*ProcessInfo, error)

	// Close releases the streams and the OS handle. It does not stop the child.
	// Close waits for a Terminate already in progress; a later Terminate
	// does nothing.
	Close() error
}

// Compile-time verification that the subprocess implementation satisfies Process.
var _ Process = (*subprocess.Subprocess)(nil)

// New spawns path with args and connects its standard streams to r.
//
// args does not include the program name; path is passed as argv[0]. If r is
// nil DefaultReactor is used. No shell is involved, so args reach the child
// verbatim.
//
// Example usage:
//
//	p, err := childproc.New(nil, "/bin/echo", []string{"hello"},
//	    childproc.WithLogger(logger),
//	)
//	if err != nil {
//	    return err
//	}
//	defer p.Close()
func New(r Reactor, path string, args []string, opts ...Option) (Process, error) {
	options := applyOptions(opts)

	p, err := subprocess.New(options.Logger, r, path, args, options)
	if err != nil {
		return nil, err
	}

	return p, nil
}
