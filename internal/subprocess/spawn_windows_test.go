//go:build windows

package subprocess

import (
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sys/windows"

	"github.com/wagiedev/childproc-go/internal/config"
)

func inheritFlag(t *testing.T, h windows.Handle) bool {
	t.Helper()

	var flags uint32

	require.NoError(t, windows.GetHandleInformation(h, &flags))

	return flags&windows.HANDLE_FLAG_INHERIT != 0
}

func TestDuplicateStderr_NotInheritable(t *testing.T) {
	h := duplicateStderr(slog.Default())
	if h == 0 {
		t.Skip("test process has no standard error handle")
	}

	defer closeHandles(h)

	require.False(t, inheritFlag(t, h))
}

func TestMarkInheritable(t *testing.T) {
	var r, w windows.Handle

	require.NoError(t, windows.CreatePipe(&r, &w, nil, 0))

	defer closeHandles(r, w)

	require.False(t, inheritFlag(t, r))
	require.NoError(t, markInheritable([]windows.Handle{r}))
	require.True(t, inheritFlag(t, r))
	require.False(t, inheritFlag(t, w))
}

// TestSpawn_ParentEndsNotInheritable tests that the handles kept by the parent
// can never leak into another child.
func TestSpawn_ParentEndsNotInheritable(t *testing.T) {
	comspec := os.Getenv("ComSpec")
	if comspec == "" {
		t.Skip("ComSpec not set")
	}

	spawned, err := spawn(slog.Default(), comspec, []string{"/c", "exit 0"}, &config.Options{})
	require.NoError(t, err)

	defer func() {
		_, _ = spawned.handle.wait()
		_ = spawned.handle.release()
		_ = closeDescriptor(spawned.stdin)
		_ = closeDescriptor(spawned.stdout)
	}()

	require.False(t, inheritFlag(t, windows.Handle(spawned.stdin)))
	require.False(t, inheritFlag(t, windows.Handle(spawned.stdout)))
}
