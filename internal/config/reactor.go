// Package config provides configuration types for child processes.
package config

import (
	"io"
	"time"
)

// Stream is an asynchronous byte stream connected to one end of a pipe
// shared with the child process.
//
// *os.File satisfies Stream. Reads and writes carry no framing and no
// buffering; deadlines are honored when the descriptor is registered with a
// poller.
type Stream interface {
	io.ReadWriteCloser

	SetDeadline(t time.Time) error
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
}

// Reactor adopts raw OS descriptors as asynchronous streams.
// Implement this to route child I/O through a custom event loop, or to
// observe stream registration in tests.
//
// The default implementation registers descriptors with the Go runtime
// network poller.
type Reactor interface {
	// Attach takes ownership of fd and returns a stream for it.
	// On error the caller still owns fd.
	Attach(fd uintptr, name string) (Stream, error)
}

// Flusher is a buffered sink that can be forced to write out pending data.
// *bufio.Writer satisfies Flusher.
type Flusher interface {
	Flush() error
}
