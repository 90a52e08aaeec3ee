package subprocess

import (
	"context"
	stderrors "errors"
	"io"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	"github.com/oklog/ulid/v2"
	"github.com/wagiedev/childproc-go/internal/config"
	"github.com/wagiedev/childproc-go/internal/errors"
	"github.com/wagiedev/childproc-go/internal/procinfo"
	"github.com/wagiedev/childproc-go/internal/reactor"
)

// processHandle is the platform identity of a started child.
type processHandle interface {
	pid() int
	// kill forcibly stops the child, or its whole group when group is set.
	// A child that is already gone is not an error.
	kill(group bool) error
	// wait blocks until the child exits and returns its exit code.
	wait() (int, error)
	// release frees OS resources tied to the identity.
	release() error
}

// spawnResult is what a platform spawn hands back: the process identity and
// the parent ends of the two pipes.
type spawnResult struct {
	handle processHandle
	stdin  uintptr
	stdout uintptr
}

// Subprocess is a running or exited child process with piped stdin/stdout.
type Subprocess struct {
	log    *slog.Logger
	id     string
	path   string
	args   []string
	group  bool
	handle processHandle
	stdin  config.Stream
	stdout config.Stream

	waitMu   sync.Mutex   // Serializes Result and handle release
	killMu   sync.RWMutex // Held for reading while Terminate uses the handle
	exitCode *int         // Set once the child has been reaped
	reaped   atomic.Bool
	released atomic.Bool
}

// New spawns path with args and attaches its pipes to r.
//
// args does not include argv[0]; the child sees path as argv[0]. If r is nil
// the runtime poller reactor is used. If log is nil logging is disabled.
//
// Returns PipeCreationError, ProcessCreationError or StreamAttachError on
// failure. No child is left running when New fails.
func New(
	log *slog.Logger,
	r config.Reactor,
	path string,
	args []string,
	options *config.Options,
) (*Subprocess, error) {
	if options == nil {
		options = &config.Options{}
	}

	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	if r == nil {
		r = reactor.New()
	}

	if path == "" {
		return nil, errors.ErrEmptyExecutable
	}

	id := ulid.Make().String()
	log = log.With("component", "subprocess", "subprocess_id", id)

	log.Info("Running executable", "path", path, "args", args, "verbose", options.Verbose)

	// Anything the parent has buffered must reach its destination before the
	// child exists, so output ordering on a shared terminal is preserved.
	flushOutput(log, options.Flushers)

	spawned, err := spawn(log, path, args, options)
	if err != nil {
		log.Error("Failed to spawn child process", "error", err)

		return nil, err
	}

	s := &Subprocess{
		log:    log,
		id:     id,
		path:   path,
		args:   args,
		group:  options.ProcessGroup,
		handle: spawned.handle,
	}

	stdin, err := r.Attach(spawned.stdin, "stdin")
	if err != nil {
		_ = closeDescriptor(spawned.stdin)
		_ = closeDescriptor(spawned.stdout)
		s.abandon()

		return nil, &errors.StreamAttachError{Stream: "stdin", Err: err}
	}

	stdout, err := r.Attach(spawned.stdout, "stdout")
	if err != nil {
		_ = stdin.Close()
		_ = closeDescriptor(spawned.stdout)
		s.abandon()

		return nil, &errors.StreamAttachError{Stream: "stdout", Err: err}
	}

	s.stdin = stdin
	s.stdout = stdout

	log.Info("Subprocess started", "pid", s.handle.pid())

	return s, nil
}

// ID returns the unique identifier used to correlate this child in logs.
func (s *Subprocess) ID() string {
	return s.id
}

// Pid returns the OS process id of the child.
func (s *Subprocess) Pid() int {
	return s.handle.pid()
}

// Stdin returns the stream connected to the child's standard input.
// Close it to signal end of input.
func (s *Subprocess) Stdin() config.Stream {
	return s.stdin
}

// Stdout returns the stream connected to the child's standard output,
// which also carries standard error in verbose mode.
func (s *Subprocess) Stdout() config.Stream {
	return s.stdout
}

// Terminate forcibly stops the child without waiting for it.
//
// It does not set the exit code and does not close the streams. Terminate is
// safe to call while another goroutine is blocked in Result. Calling it after
// the child exited, or after Close, does nothing; OS failures are logged only.
func (s *Subprocess) Terminate() {
	s.killMu.RLock()
	defer s.killMu.RUnlock()

	if s.released.Load() {
		s.log.Debug("Terminate after close ignored")

		return
	}

	// Once reaped the pid may already belong to an unrelated process.
	if s.reaped.Load() {
		s.log.Debug("Terminate after exit ignored")

		return
	}

	s.log.Debug("Terminating child process", "pid", s.handle.pid(), "process_group", s.group)

	if err := s.handle.kill(s.group); err != nil {
		s.log.Warn("Failed to terminate child process", "pid", s.handle.pid(), "error", err)
	}
}

// Result returns the child's exit code, blocking until it exits.
//
// The first successful call reaps the child and memoizes the code; later
// calls return it without touching the OS. On Unix a child that did not exit
// normally (for example killed by a signal) reports 1.
func (s *Subprocess) Result() (int, error) {
	s.waitMu.Lock()
	defer s.waitMu.Unlock()

	if s.exitCode != nil {
		return *s.exitCode, nil
	}

	if s.released.Load() {
		return -1, errors.ErrProcessReleased
	}

	s.log.Debug("Waiting for child process to exit", "pid", s.handle.pid())

	code, err := s.handle.wait()
	if err != nil {
		s.log.Error("Failed to get child exit code", "pid", s.handle.pid(), "error", err)

		return -1, err
	}

	s.exitCode = &code
	s.reaped.Store(true)

	s.log.Info("Execution finished", "exit_code", code)

	return code, nil
}

// Inspect reports live OS statistics for the child.
func (s *Subprocess) Inspect(ctx context.Context) (*procinfo.Info, error) {
	if s.released.Load() {
		return nil, errors.ErrProcessReleased
	}

	return procinfo.Inspect(ctx, s.handle.pid())
}

// Close closes both streams and releases the OS process handle.
//
// Close does not kill the child; call Terminate first to stop it. It blocks
// while a Result or Terminate call is in progress, and a Terminate that
// starts after Close does nothing, so the handle is never used once released.
// Close is safe to call multiple times.
func (s *Subprocess) Close() error {
	if !s.released.CompareAndSwap(false, true) {
		return nil
	}

	var errs []error

	for _, stream := range []config.Stream{s.stdin, s.stdout} {
		if stream == nil {
			continue
		}

		if err := stream.Close(); err != nil && !stderrors.Is(err, os.ErrClosed) {
			errs = append(errs, err)
		}
	}

	s.waitMu.Lock()
	defer s.waitMu.Unlock()

	// Wait out a kill already in flight.
	s.killMu.Lock()
	defer s.killMu.Unlock()

	if err := s.handle.release(); err != nil {
		errs = append(errs, err)
	}

	s.log.Debug("Subprocess closed")

	return stderrors.Join(errs...)
}

// abandon kills and reaps a child whose construction failed after creation,
// so it is neither orphaned nor left as a zombie.
func (s *Subprocess) abandon() {
	s.log.Warn("Abandoning child process after failed setup", "pid", s.handle.pid())

	if err := s.handle.kill(s.group); err != nil {
		s.log.Warn("Failed to kill abandoned child process", "error", err)
	}

	if _, err := s.handle.wait(); err != nil {
		s.log.Warn("Failed to reap abandoned child process", "error", err)
	}

	if err := s.handle.release(); err != nil {
		s.log.Debug("Failed to release abandoned child process", "error", err)
	}

	s.reaped.Store(true)
	s.released.Store(true)
}

// flushOutput writes out the configured buffered sinks and syncs the
// standard streams. Failures are logged and never abort the spawn.
func flushOutput(log *slog.Logger, flushers []config.Flusher) {
	for i, f := range flushers {
		if err := f.Flush(); err != nil {
			log.Warn("Failed to flush buffered output", "flusher", i, "error", err)
		}
	}

	// Sync reports EINVAL for terminals and pipes, which have nothing to flush.
	for _, f := range []*os.File{os.Stdout, os.Stderr} {
		if err := f.Sync(); err != nil {
			log.Debug("Standard stream not synced", "file", f.Name(), "error", err)
		}
	}
}
