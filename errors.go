package childproc

import "github.com/wagiedev/childproc-go/internal/errors"

// Re-export error types from internal package

// PipeCreationError indicates an OS pipe could not be created.
type PipeCreationError = errors.PipeCreationError

// ProcessCreationError indicates the OS refused to start the child.
type ProcessCreationError = errors.ProcessCreationError

// ProcessQueryError indicates the child's exit status could not be retrieved.
type ProcessQueryError = errors.ProcessQueryError

// StreamAttachError indicates a pipe end could not be attached to the reactor.
type StreamAttachError = errors.StreamAttachError

// ExecutableNotFoundError indicates an executable could not be located.
type ExecutableNotFoundError = errors.ExecutableNotFoundError

// SystemError is the base interface for all OS interaction errors.
type SystemError = errors.SystemError

// Re-export sentinel errors from internal package.
var (
	// ErrProcessReleased indicates the process was closed.
	ErrProcessReleased = errors.ErrProcessReleased

	// ErrEmptyExecutable indicates no executable path was supplied.
	ErrEmptyExecutable = errors.ErrEmptyExecutable
)
