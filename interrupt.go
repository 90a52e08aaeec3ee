package childproc

import (
	"errors"
	"os"
	"time"
)

// Interrupt terminates p and unblocks any pending reads and writes on its
// streams.
//
// Terminate alone stops only the child. Descendants that inherited the pipes
// keep them open, so a reader waiting for end of output would block until
// they exit. Interrupt expires both streams' deadlines; where the reactor
// does not support deadlines the streams are closed instead. Reads and writes
// that were cut short report an error for which IsInterrupted is true.
func Interrupt(p Process) {
	p.Terminate()

	now := time.Now()

	for _, s := range []Stream{p.Stdin(), p.Stdout()} {
		if err := s.SetDeadline(now); err != nil {
			_ = s.Close()
		}
	}
}

// IsInterrupted reports whether err comes from stream I/O cut short by Interrupt.
func IsInterrupted(err error) bool {
	return errors.Is(err, os.ErrDeadlineExceeded) || errors.Is(err, os.ErrClosed)
}
