package childproc

import (
	"github.com/wagiedev/childproc-go/internal/config"
	"github.com/wagiedev/childproc-go/internal/reactor"
)

// Stream is one end of a pipe to or from the child, adopted by a Reactor.
type Stream = config.Stream

// Reactor turns raw pipe descriptors into asynchronous streams.
//
// Implement this to route the child's pipes through a custom event loop or
// to wrap them for testing. The default implementation registers descriptors
// with the Go runtime network poller.
type Reactor = config.Reactor

// Flusher is a buffered sink written out before each child starts.
type Flusher = config.Flusher

// DefaultReactor returns the reactor backed by the Go runtime poller.
func DefaultReactor() Reactor {
	return reactor.New()
}
