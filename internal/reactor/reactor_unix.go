//go:build unix

package reactor

import "golang.org/x/sys/unix"

// prepare switches fd to non-blocking mode so os.NewFile registers it with
// the runtime poller.
func prepare(fd uintptr) error {
	return unix.SetNonblock(int(fd), true)
}
