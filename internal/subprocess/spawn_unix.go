//go:build unix

package subprocess

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"os"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/wagiedev/childproc-go/internal/config"
	"github.com/wagiedev/childproc-go/internal/errors"
	"github.com/wagiedev/childproc-go/internal/executable"
)

const (
	readEnd  = 0
	writeEnd = 1
)

// spawn creates the pipes and forks the child.
//
// Both pipes are close-on-exec, so the only descriptors the new image sees
// are the ones placed at 0, 1 and 2. The child branch runs inside
// syscall.ForkExec: it dup2s Files onto 0..2, execs, and on failure exits
// immediately after reporting errno through a close-on-exec pipe, so a
// failed exec surfaces here as an error rather than as a second copy of
// the parent.
func spawn(log *slog.Logger, path string, args []string, options *config.Options) (*spawnResult, error) {
	var toChild, fromChild [2]int

	if err := newPipe(&toChild); err != nil {
		return nil, &errors.PipeCreationError{Pipe: "stdin", Code: errors.CodeOf(err), Err: err}
	}

	if err := newPipe(&fromChild); err != nil {
		closeFds(toChild[readEnd], toChild[writeEnd])

		return nil, &errors.PipeCreationError{Pipe: "stdout", Code: errors.CodeOf(err), Err: err}
	}

	stderr := uintptr(unix.Stderr)
	if options.Verbose {
		stderr = uintptr(fromChild[writeEnd])
	}

	env := options.Env
	if env == nil {
		env = os.Environ()
	}

	attr := &syscall.ProcAttr{
		Dir:   options.Dir,
		Env:   env,
		Files: []uintptr{uintptr(toChild[readEnd]), uintptr(fromChild[writeEnd]), stderr},
		Sys:   &syscall.SysProcAttr{Setpgid: options.ProcessGroup},
	}

	pid, err := syscall.ForkExec(path, executable.Argv(path, args), attr)

	// The child ends belong to the child now, or to nobody if it failed.
	closeFds(toChild[readEnd], fromChild[writeEnd])

	if err != nil {
		closeFds(toChild[writeEnd], fromChild[readEnd])

		return nil, &errors.ProcessCreationError{
			CommandLine: executable.Display(path, args),
			Code:        errors.CodeOf(err),
			Err:         err,
		}
	}

	return &spawnResult{
		handle: &unixProcess{id: pid, log: log},
		stdin:  uintptr(toChild[writeEnd]),
		stdout: uintptr(fromChild[readEnd]),
	}, nil
}

// unixProcess identifies a child by pid.
type unixProcess struct {
	id  int
	log *slog.Logger
}

func (p *unixProcess) pid() int {
	return p.id
}

func (p *unixProcess) kill(group bool) error {
	target := p.id
	if group {
		target = -p.id
	}

	err := unix.Kill(target, unix.SIGKILL)
	if err == nil || stderrors.Is(err, unix.ESRCH) {
		return nil
	}

	// The group may not exist if the child has not reached setpgid yet.
	if group {
		errSingle := unix.Kill(p.id, unix.SIGKILL)
		if errSingle == nil || stderrors.Is(errSingle, unix.ESRCH) {
			return nil
		}
	}

	return fmt.Errorf("kill %d: %w", target, err)
}

// wait reaps the child. Abnormal termination and wait failures are reported
// as exit code 1.
func (p *unixProcess) wait() (int, error) {
	var status unix.WaitStatus

	for {
		_, err := unix.Wait4(p.id, &status, 0, nil)
		if err == nil {
			break
		}

		if stderrors.Is(err, unix.EINTR) {
			continue
		}

		p.log.Warn("Wait for child process failed, reporting failure", "pid", p.id, "error", err)

		return 1, nil
	}

	if !status.Exited() {
		p.log.Debug("Child process did not exit normally",
			"pid", p.id,
			"signaled", status.Signaled(),
			"signal", status.Signal().String(),
		)

		return 1, nil
	}

	return status.ExitStatus(), nil
}

// release is a no-op; reaping in wait frees the pid.
func (p *unixProcess) release() error {
	return nil
}

func closeFds(fds ...int) {
	for _, fd := range fds {
		_ = unix.Close(fd)
	}
}

func closeDescriptor(fd uintptr) error {
	return unix.Close(int(fd))
}

// IsBrokenPipe reports whether err is a write to a pipe with no reader,
// which happens when the child exits without consuming all of its input.
func IsBrokenPipe(err error) bool {
	return stderrors.Is(err, unix.EPIPE)
}
