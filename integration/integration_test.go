//go:build integration

package integration

import (
	"log/slog"
	"os"
	"os/exec"
	"runtime"
	"testing"
)

// requireTool returns the absolute path of name or skips the test.
func requireTool(t *testing.T, name string) string {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("integration scenarios use POSIX tools")
	}

	path, err := exec.LookPath(name)
	if err != nil {
		t.Skipf("%s not installed", name)
	}

	return path
}

// testLogger logs at debug level when CHILDPROC_TEST_DEBUG is set.
func testLogger() *slog.Logger {
	level := slog.LevelWarn
	if os.Getenv("CHILDPROC_TEST_DEBUG") != "" {
		level = slog.LevelDebug
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// openDescriptors counts the descriptors open in this process, or -1 where
// the platform does not expose them.
func openDescriptors(t *testing.T) int {
	t.Helper()

	entries, err := os.ReadDir("/proc/self/fd")
	if err != nil {
		return -1
	}

	return len(entries)
}
