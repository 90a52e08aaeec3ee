package childproc

import (
	"bytes"
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/wagiedev/childproc-go/internal/subprocess"
)

// Result is the outcome of a completed Output run.
type Result struct {
	// ExitCode is the child's exit code. A child that did not exit normally
	// reports 1.
	ExitCode int
	// Output holds everything the child wrote to its output stream.
	Output []byte
}

// Output runs path with args, writes input to its standard input, and
// collects its output until the child exits.
//
// If ctx is done before the child exits, the child is interrupted (see
// Interrupt) and the partial Result is returned together with the context
// error. Output read before that point is kept; descendants still holding the
// pipes do not delay the return. A child that exits without reading all of
// input is not an error.
//
// Example usage:
//
//	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
//	defer cancel()
//
//	res, err := childproc.Output(ctx, "/usr/bin/tr", []string{"a-z", "A-Z"}, []byte("hello\n"))
//	if err != nil {
//	    return err
//	}
//	fmt.Print(string(res.Output)) // HELLO
func Output(
	ctx context.Context,
	path string,
	args []string,
	input []byte,
	opts ...Option,
) (*Result, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	options := applyOptions(opts)
	log := loggerWithComponent(options.Logger, "output")

	p, err := New(nil, path, args, opts...)
	if err != nil {
		return nil, err
	}

	defer func() {
		if closeErr := p.Close(); closeErr != nil {
			log.Warn("failed to close process", "error", closeErr)
		}
	}()

	exited := make(chan struct{})
	defer close(exited)

	go func() {
		select {
		case <-ctx.Done():
			log.Debug("Context done, interrupting child", "pid", p.Pid(), "error", ctx.Err())
			Interrupt(p)
		case <-exited:
		}
	}()

	var (
		g   errgroup.Group
		out bytes.Buffer
	)

	g.Go(func() error {
		_, err := p.Stdin().Write(input)
		if closeErr := p.Stdin().Close(); err == nil {
			err = closeErr
		}

		if err != nil && !IsBrokenPipe(err) && !interruptedByCtx(ctx, err) {
			p.Terminate()

			return fmt.Errorf("write stdin: %w", err)
		}

		return nil
	})

	g.Go(func() error {
		if _, err := out.ReadFrom(p.Stdout()); err != nil && !interruptedByCtx(ctx, err) {
			p.Terminate()

			return fmt.Errorf("read stdout: %w", err)
		}

		return nil
	})

	pumpErr := g.Wait()

	code, err := p.Result()
	if err != nil {
		return nil, err
	}

	res := &Result{ExitCode: code, Output: out.Bytes()}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return res, fmt.Errorf("child process interrupted: %w", ctxErr)
	}

	if pumpErr != nil {
		return res, pumpErr
	}

	return res, nil
}

// IsBrokenPipe reports whether err comes from writing to a child that no
// longer reads its input.
func IsBrokenPipe(err error) bool {
	return subprocess.IsBrokenPipe(err)
}

// interruptedByCtx reports whether err is the expected outcome of Interrupt
// after ctx ended.
func interruptedByCtx(ctx context.Context, err error) bool {
	return ctx.Err() != nil && IsInterrupted(err)
}
