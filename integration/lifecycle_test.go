//go:build integration

package integration

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	childproc "github.com/wagiedev/childproc-go"
)

// TestLifecycle_NoDescriptorGrowth tests that repeated spawn/reap/close cycles
// do not leak pipe descriptors in the parent.
func TestLifecycle_NoDescriptorGrowth(t *testing.T) {
	echo := requireTool(t, "echo")

	run := func() {
		p, err := childproc.New(nil, echo, []string{"cycle"}, childproc.WithLogger(testLogger()))
		require.NoError(t, err)

		_, err = io.Copy(io.Discard, p.Stdout())
		require.NoError(t, err)

		_, err = p.Result()
		require.NoError(t, err)
		require.NoError(t, p.Close())
	}

	// Warm up lazily created runtime descriptors such as the poller.
	run()

	before := openDescriptors(t)
	if before < 0 {
		t.Skip("descriptor count not available")
	}

	for range 200 {
		run()
	}

	require.Equal(t, before, openDescriptors(t))
}

// TestLifecycle_ConcurrentChildren tests many children running at once, each
// with its own streams and result.
func TestLifecycle_ConcurrentChildren(t *testing.T) {
	sh := requireTool(t, "sh")

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)

	for i := range 32 {
		g.Go(func() error {
			n := i % 10

			res, err := childproc.Output(gctx, sh, []string{"-c", `read n; echo "got $n"; exit $((n % 5))`},
				fmt.Appendf(nil, "%d\n", n),
				childproc.WithLogger(testLogger()),
			)
			if err != nil {
				return err
			}

			if want := fmt.Sprintf("got %d\n", n); string(res.Output) != want {
				return fmt.Errorf("child %d: output %q, want %q", i, res.Output, want)
			}

			if res.ExitCode != n%5 {
				return fmt.Errorf("child %d: exit code %d, want %d", i, res.ExitCode, n%5)
			}

			return nil
		})
	}

	require.NoError(t, g.Wait())
}

// TestLifecycle_InspectAfterReap tests that a reaped child is no longer
// reported as running.
func TestLifecycle_InspectAfterReap(t *testing.T) {
	sleep := requireTool(t, "sleep")

	p, err := childproc.New(nil, sleep, []string{"30"})
	require.NoError(t, err)

	defer func() { _ = p.Close() }()

	info, err := p.Inspect(t.Context())
	require.NoError(t, err)
	require.Equal(t, p.Pid(), info.Pid)
	require.Contains(t, info.Name, "sleep")

	p.Terminate()

	code, err := p.Result()
	require.NoError(t, err)
	require.Equal(t, 1, code)

	if info, err := p.Inspect(t.Context()); err == nil {
		require.False(t, info.Running && !info.Zombie(), "reaped child still running")
	}
}

// TestLifecycle_CloseWithoutResult tests that Close releases a child that
// keeps running, and that a later Result reports the release.
func TestLifecycle_CloseWithoutResult(t *testing.T) {
	sleep := requireTool(t, "sleep")

	p, err := childproc.New(nil, sleep, []string{"1"})
	require.NoError(t, err)

	require.NoError(t, p.Close())
	require.NoError(t, p.Close())

	_, err = p.Result()
	require.ErrorIs(t, err, childproc.ErrProcessReleased)
}
