//go:build darwin || aix

package subprocess

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// newPipe creates a close-on-exec pipe. There is no pipe2 here, so the fork
// lock keeps a concurrent fork from inheriting the descriptors before the
// flag is set.
func newPipe(p *[2]int) error {
	syscall.ForkLock.RLock()
	defer syscall.ForkLock.RUnlock()

	if err := unix.Pipe(p[:]); err != nil {
		return err
	}

	unix.CloseOnExec(p[0])
	unix.CloseOnExec(p[1])

	return nil
}
