// Package reactor adopts pipe descriptors as asynchronous streams.
//
// A Go program has one event loop: the runtime network poller. Files wrapping
// non-blocking descriptors are registered with it by os.NewFile, after which
// reads and writes park the calling goroutine instead of an OS thread, and
// read/write deadlines are honored. On Windows anonymous pipes cannot be
// opened for overlapped I/O, so streams fall back to blocking reads on their
// own thread and deadlines are not supported.
package reactor

import (
	"fmt"
	"os"

	"github.com/wagiedev/childproc-go/internal/config"
)

type poller struct{}

// Compile-time verification that poller implements config.Reactor.
var _ config.Reactor = poller{}

// New returns the reactor backed by the Go runtime poller.
func New() config.Reactor {
	return poller{}
}

// Attach makes fd ready for the poller and wraps it in an *os.File.
func (poller) Attach(fd uintptr, name string) (config.Stream, error) {
	if err := prepare(fd); err != nil {
		return nil, fmt.Errorf("prepare %s descriptor: %w", name, err)
	}

	f := os.NewFile(fd, name)
	if f == nil {
		return nil, fmt.Errorf("invalid %s descriptor %d", name, fd)
	}

	return f, nil
}
