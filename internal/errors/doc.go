// Package errors defines error types for child process management.
//
// This package provides structured error types for the failure scenarios of
// spawning and supervising a child process. Every error that originates from an
// operating system call carries the OS error code and, where applicable, the
// command line that was being launched. All error types support error
// unwrapping and can be checked using errors.Is, errors.As, and errors.AsType.
package errors
