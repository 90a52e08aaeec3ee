//go:build windows

package subprocess

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"syscall"
	"unicode/utf16"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/wagiedev/childproc-go/internal/config"
	"github.com/wagiedev/childproc-go/internal/errors"
	"github.com/wagiedev/childproc-go/internal/executable"
)

// spawn creates the pipes and the child process.
//
// All pipe ends and the duplicated stderr are created non-inheritable. The
// child's handles are marked inheritable only under syscall.ForkLock right
// before CreateProcess, which is further restricted to an explicit handle
// list, so no other process started by the host can pick them up.
func spawn(log *slog.Logger, path string, args []string, options *config.Options) (*spawnResult, error) {
	var parentRead, childWrite windows.Handle

	if err := windows.CreatePipe(&parentRead, &childWrite, nil, 0); err != nil {
		return nil, pipeError("stdout", err)
	}

	var childRead, parentWrite windows.Handle

	if err := windows.CreatePipe(&childRead, &parentWrite, nil, 0); err != nil {
		closeHandles(parentRead, childWrite)

		return nil, pipeError("stdin", err)
	}

	// The child ends belong to the child now, or to nobody if it failed.
	defer closeHandles(childRead, childWrite)

	stderr := childWrite
	if !options.Verbose {
		stderr = duplicateStderr(log)
		if stderr != 0 {
			defer closeHandles(stderr)
		}
	}

	commandLine := windows.ComposeCommandLine(executable.Argv(path, args))

	pi, err := createProcess(path, commandLine, childRead, childWrite, stderr, options)
	if err != nil {
		closeHandles(parentRead, parentWrite)

		return nil, &errors.ProcessCreationError{
			CommandLine: commandLine,
			Code:        errors.CodeOf(err),
			Err:         err,
		}
	}

	closeHandles(pi.Thread)

	return &spawnResult{
		handle: &windowsProcess{process: pi.Process, id: int(pi.ProcessId)},
		stdin:  uintptr(parentWrite),
		stdout: uintptr(parentRead),
	}, nil
}

func createProcess(
	path string,
	commandLine string,
	stdin, stdout, stderr windows.Handle,
	options *config.Options,
) (*windows.ProcessInformation, error) {
	appName, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return nil, err
	}

	cmdLine, err := windows.UTF16PtrFromString(commandLine)
	if err != nil {
		return nil, err
	}

	var dir *uint16

	if options.Dir != "" {
		dir, err = windows.UTF16PtrFromString(options.Dir)
		if err != nil {
			return nil, err
		}
	}

	flags := uint32(windows.EXTENDED_STARTUPINFO_PRESENT | windows.CREATE_UNICODE_ENVIRONMENT)
	if options.ProcessGroup {
		flags |= windows.CREATE_NEW_PROCESS_GROUP
	}

	var env *uint16

	if options.Env != nil {
		block, err := environmentBlock(options.Env)
		if err != nil {
			return nil, err
		}

		env = &block[0]
	}

	inherit := []windows.Handle{stdin, stdout}
	if stderr != 0 && stderr != stdout {
		inherit = append(inherit, stderr)
	}

	attrs, err := windows.NewProcThreadAttributeList(1)
	if err != nil {
		return nil, fmt.Errorf("allocate attribute list: %w", err)
	}
	defer attrs.Delete()

	err = attrs.Update(
		windows.PROC_THREAD_ATTRIBUTE_HANDLE_LIST,
		unsafe.Pointer(&inherit[0]),
		uintptr(len(inherit))*unsafe.Sizeof(inherit[0]),
	)
	if err != nil {
		return nil, fmt.Errorf("set inherited handle list: %w", err)
	}

	si := &windows.StartupInfoEx{ProcThreadAttributeList: attrs.List()}
	si.Cb = uint32(unsafe.Sizeof(*si))
	si.Flags = windows.STARTF_USESTDHANDLES
	si.StdInput = stdin
	si.StdOutput = stdout
	si.StdErr = stderr

	pi := new(windows.ProcessInformation)

	// ForkLock keeps os/exec from starting a process that would inherit
	// these handles while they are marked.
	syscall.ForkLock.Lock()

	err = markInheritable(inherit)
	if err == nil {
		err = windows.CreateProcess(appName, cmdLine, nil, nil, true, flags, env, dir, &si.StartupInfo, pi)
	}

	syscall.ForkLock.Unlock()
	runtime.KeepAlive(inherit)

	if err != nil {
		return nil, err
	}

	return pi, nil
}

// markInheritable sets the inherit flag on handles. They are closed by the
// caller right after process creation, so the flag is never cleared.
func markInheritable(handles []windows.Handle) error {
	for _, h := range handles {
		if err := windows.SetHandleInformation(h, windows.HANDLE_FLAG_INHERIT, windows.HANDLE_FLAG_INHERIT); err != nil {
			return fmt.Errorf("mark handle inheritable: %w", err)
		}
	}

	return nil
}

// duplicateStderr duplicates the parent's standard error as a
// non-inheritable handle. Returns 0 when the parent has none.
func duplicateStderr(log *slog.Logger) windows.Handle {
	h, err := windows.GetStdHandle(windows.STD_ERROR_HANDLE)
	if err != nil || h == 0 || h == windows.InvalidHandle {
		log.Debug("Parent has no standard error handle")

		return 0
	}

	self := windows.CurrentProcess()

	var dup windows.Handle

	if err := windows.DuplicateHandle(self, h, self, &dup, 0, false, windows.DUPLICATE_SAME_ACCESS); err != nil {
		log.Debug("Failed to duplicate standard error handle", "error", err)

		return 0
	}

	return dup
}

// environmentBlock encodes env as a double-NUL-terminated UTF-16 block.
func environmentBlock(env []string) ([]uint16, error) {
	var block []uint16

	for _, kv := range env {
		if strings.IndexByte(kv, 0) >= 0 {
			return nil, fmt.Errorf("environment entry contains NUL: %q", kv)
		}

		block = append(block, utf16.Encode([]rune(kv))...)
		block = append(block, 0)
	}

	if len(block) == 0 {
		block = append(block, 0)
	}

	return append(block, 0), nil
}

// windowsProcess identifies a child by its process handle.
type windowsProcess struct {
	process windows.Handle
	id      int
}

func (p *windowsProcess) pid() int {
	return p.id
}

// kill terminates the process with exit code 1. Windows has no process-group
// kill; the group flag only affects console signal delivery.
func (p *windowsProcess) kill(bool) error {
	if event, err := windows.WaitForSingleObject(p.process, 0); err == nil && event == windows.WAIT_OBJECT_0 {
		return nil
	}

	if err := windows.TerminateProcess(p.process, 1); err != nil {
		return fmt.Errorf("terminate process %d: %w", p.id, err)
	}

	return nil
}

func (p *windowsProcess) wait() (int, error) {
	if _, err := windows.WaitForSingleObject(p.process, windows.INFINITE); err != nil {
		return -1, &errors.ProcessQueryError{Pid: p.id, Code: errors.CodeOf(err), Err: err}
	}

	var code uint32

	if err := windows.GetExitCodeProcess(p.process, &code); err != nil {
		return -1, &errors.ProcessQueryError{Pid: p.id, Code: errors.CodeOf(err), Err: err}
	}

	return int(code), nil
}

func (p *windowsProcess) release() error {
	return windows.CloseHandle(p.process)
}

func pipeError(pipe string, err error) error {
	return &errors.PipeCreationError{Pipe: pipe, Code: errors.CodeOf(err), Err: err}
}

func closeHandles(handles ...windows.Handle) {
	for _, h := range handles {
		_ = windows.CloseHandle(h)
	}
}

func closeDescriptor(fd uintptr) error {
	return windows.CloseHandle(windows.Handle(fd))
}

// IsBrokenPipe reports whether err is a write to a pipe with no reader,
// which happens when the child exits without consuming all of its input.
func IsBrokenPipe(err error) bool {
	return stderrors.Is(err, windows.ERROR_BROKEN_PIPE) || stderrors.Is(err, windows.ERROR_NO_DATA)
}
