package errors

import (
	"errors"
	"fmt"
	"syscall"
)

// SystemError is the base interface for all errors raised by a failed
// operating system interaction.
type SystemError interface {
	error
	IsSystemError() bool
	// OSCode returns the underlying OS error code, or 0 when unknown.
	OSCode() int
}

// Compile-time verification that all error types implement SystemError.
var (
	_ SystemError = (*PipeCreationError)(nil)
	_ SystemError = (*ProcessCreationError)(nil)
	_ SystemError = (*ProcessQueryError)(nil)
	_ SystemError = (*StreamAttachError)(nil)
	_ SystemError = (*ExecutableNotFoundError)(nil)
)

// Sentinel errors for commonly checked conditions.
var (
	// ErrProcessReleased indicates the process was closed and its OS handle
	// can no longer be queried.
	ErrProcessReleased = errors.New("process released")

	// ErrEmptyExecutable indicates no executable path was supplied.
	ErrEmptyExecutable = errors.New("empty executable path")
)

// CodeOf extracts the OS error code from err.
// Returns 0 if err does not wrap a syscall.Errno.
func CodeOf(err error) int {
	if errno, ok := errors.AsType[syscall.Errno](err); ok {
		return int(errno)
	}

	return 0
}

// PipeCreationError indicates an OS pipe pair could not be created or prepared.
type PipeCreationError struct {
	// Pipe names the channel being created ("stdin" or "stdout").
	Pipe string
	Code int
	Err  error
}

func (e *PipeCreationError) Error() string {
	return fmt.Sprintf("failed to create %s pipe (code %d): %v", e.Pipe, e.Code, e.Err)
}

func (e *PipeCreationError) Unwrap() error {
	return e.Err
}

// IsSystemError implements SystemError.
func (e *PipeCreationError) IsSystemError() bool { return true }

// OSCode implements SystemError.
func (e *PipeCreationError) OSCode() int { return e.Code }

// ProcessCreationError indicates the child process could not be created or its
// image could not be executed.
type ProcessCreationError struct {
	CommandLine string
	Code        int
	Err         error
}

func (e *ProcessCreationError) Error() string {
	return fmt.Sprintf("failed to spawn %s (code %d): %v", e.CommandLine, e.Code, e.Err)
}

func (e *ProcessCreationError) Unwrap() error {
	return e.Err
}

// IsSystemError implements SystemError.
func (e *ProcessCreationError) IsSystemError() bool { return true }

// OSCode implements SystemError.
func (e *ProcessCreationError) OSCode() int { return e.Code }

// ProcessQueryError indicates the exit status of a tracked process could not
// be read from the OS.
type ProcessQueryError struct {
	Pid  int
	Code int
	Err  error
}

func (e *ProcessQueryError) Error() string {
	return fmt.Sprintf("lost control of child process %d, can't get exit code (code %d): %v",
		e.Pid, e.Code, e.Err)
}

func (e *ProcessQueryError) Unwrap() error {
	return e.Err
}

// IsSystemError implements SystemError.
func (e *ProcessQueryError) IsSystemError() bool { return true }

// OSCode implements SystemError.
func (e *ProcessQueryError) OSCode() int { return e.Code }

// StreamAttachError indicates a pipe end could not be adopted by the reactor.
// The child, if already started, has been killed and reaped.
type StreamAttachError struct {
	Stream string
	Err    error
}

func (e *StreamAttachError) Error() string {
	return fmt.Sprintf("failed to attach %s stream: %v", e.Stream, e.Err)
}

func (e *StreamAttachError) Unwrap() error {
	return e.Err
}

// IsSystemError implements SystemError.
func (e *StreamAttachError) IsSystemError() bool { return true }

// OSCode implements SystemError.
func (e *StreamAttachError) OSCode() int { return CodeOf(e.Err) }

// ExecutableNotFoundError indicates the executable could not be located.
type ExecutableNotFoundError struct {
	Name          string
	SearchedPaths []string
}

func (e *ExecutableNotFoundError) Error() string {
	return fmt.Sprintf("executable %q not found in: %v", e.Name, e.SearchedPaths)
}

// IsSystemError implements SystemError.
func (e *ExecutableNotFoundError) IsSystemError() bool { return true }

// OSCode implements SystemError.
func (e *ExecutableNotFoundError) OSCode() int { return 0 }
