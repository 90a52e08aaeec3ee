// Command childproc runs a program with its standard streams piped through
// the childproc library and exits with the program's exit code.
//
//	childproc [flags] <program> [args...]
//
// Settings come from flags, CHILDPROC_* environment variables (for example
// CHILDPROC_TIMEOUT=5s) and an optional YAML config file, in that order of
// precedence.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	childproc "github.com/wagiedev/childproc-go"
	"github.com/wagiedev/childproc-go/internal/executable"
)

// Exit codes reported when the program itself could not produce one.
const (
	exitUsage    = 2
	exitTimeout  = 124
	exitNoStart  = 126
	exitNotFound = 127
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)

	stop()
	os.Exit(code)
}

// run executes one program and returns the exit code for this process.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cfg, argv, err := loadConfig(args, stderr)
	if errors.Is(err, pflag.ErrHelp) {
		return 0
	}

	if err != nil {
		fmt.Fprintf(stderr, "childproc: %v\n", err)

		return exitUsage
	}

	if len(argv) == 0 {
		fmt.Fprintln(stderr, "childproc: no program given")

		return exitUsage
	}

	level, _ := parseLevel(cfg.LogLevel)
	log := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	path, err := executable.NewResolver(&executable.Config{
		SearchPaths: cfg.SearchPaths,
		Logger:      log,
	}).Resolve(argv[0])
	if err != nil {
		fmt.Fprintf(stderr, "childproc: %v\n", err)

		return exitNotFound
	}

	p, err := childproc.New(nil, path, argv[1:],
		childproc.WithLogger(log),
		childproc.WithVerbose(cfg.Verbose),
		childproc.WithDir(cfg.Dir),
		childproc.WithProcessGroup(cfg.ProcessGroup),
	)
	if err != nil {
		fmt.Fprintf(stderr, "childproc: %v\n", err)

		return exitNoStart
	}

	defer func() {
		if err := p.Close(); err != nil {
			log.Warn("failed to close process", "error", err)
		}
	}()

	if cfg.Timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	stopWatch := context.AfterFunc(ctx, func() {
		log.Info("Terminating program", "reason", context.Cause(ctx))
		childproc.Interrupt(p)
	})
	defer stopWatch()

	// The input pump is not waited for: the terminal may never close stdin.
	go pumpInput(log, stdin, p.Stdin())

	var (
		g        errgroup.Group
		exitCode int
	)

	g.Go(func() error {
		_, err := io.Copy(stdout, p.Stdout())
		if err != nil && ctx.Err() != nil && childproc.IsInterrupted(err) {
			return nil
		}

		return err
	})

	g.Go(func() error {
		code, err := p.Result()
		exitCode = code

		return err
	})

	if err := g.Wait(); err != nil {
		fmt.Fprintf(stderr, "childproc: %v\n", err)

		if exitCode <= 0 {
			exitCode = 1
		}
	}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		fmt.Fprintf(stderr, "childproc: timed out after %v\n", cfg.Timeout)

		return exitTimeout
	}

	return exitCode
}

// pumpInput copies src into the program's stdin and closes it at EOF.
func pumpInput(log *slog.Logger, src io.Reader, dst childproc.Stream) {
	_, err := io.Copy(dst, src)
	if err != nil && !childproc.IsBrokenPipe(err) && !childproc.IsInterrupted(err) {
		log.Warn("failed to forward stdin", "error", err)
	}

	if err := dst.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
		log.Debug("failed to close program stdin", "error", err)
	}
}
