//go:build linux || freebsd || netbsd || openbsd || dragonfly || solaris || illumos

package subprocess

import "golang.org/x/sys/unix"

// newPipe creates a close-on-exec pipe atomically.
func newPipe(p *[2]int) error {
	return unix.Pipe2(p[:], unix.O_CLOEXEC)
}
