// Package childproc launches external programs as child processes with their
// standard input and output connected to asynchronous byte streams.
//
// The same API works on POSIX systems, where the child is created with
// fork/exec, and on Windows, where it is created with CreateProcess and a
// pinned set of inheritable handles. Only the two pipe ends reach the child.
//
// # Basic Usage
//
// For a one-shot run that feeds input and collects all output, use Output:
//
//	res, err := childproc.Output(ctx, "/usr/bin/sort", nil, []byte("b\na\n"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Printf("exit %d: %s", res.ExitCode, res.Output)
//
// # Streaming
//
// For full control over the streams, use New or the WithProcess helper:
//
//	err := childproc.WithProcess(ctx, "/bin/cat", nil, func(p childproc.Process) error {
//	    if _, err := p.Stdin().Write([]byte("hello\n")); err != nil {
//	        return err
//	    }
//	    if err := p.Stdin().Close(); err != nil {
//	        return err
//	    }
//
//	    out, err := io.ReadAll(p.Stdout())
//	    if err != nil {
//	        return err
//	    }
//
//	    code, err := p.Result()
//	    ...
//	},
//	    childproc.WithLogger(slog.Default()),
//	)
//
// Streams are registered with the Go runtime poller, so reads and writes
// honour deadlines set with SetDeadline and friends.
//
// # Termination
//
// Terminate stops the child forcibly and may be called from any goroutine,
// including while another goroutine is blocked in Result. To bound a run by
// time, race Terminate against a timer or context; Output does this for ctx.
//
// # Error Handling
//
// Failures are reported with typed errors carrying the OS error code:
//
//	p, err := childproc.New(nil, path, args)
//	if err != nil {
//	    if spawnErr, ok := errors.AsType[*childproc.ProcessCreationError](err); ok {
//	        log.Fatalf("could not start %s (code %d)", spawnErr.CommandLine, spawnErr.Code)
//	    }
//	    log.Fatal(err)
//	}
package childproc
