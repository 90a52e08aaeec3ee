//go:build unix

package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRun_PipesStreams(t *testing.T) {
	var stdout, stderr bytes.Buffer

	code := run(t.Context(), []string{"tr", "a-z", "A-Z"}, strings.NewReader("hello\n"), &stdout, &stderr)

	require.Equal(t, 0, code, stderr.String())
	require.Equal(t, "HELLO\n", stdout.String())
}

func TestRun_ExitCodePropagates(t *testing.T) {
	var stdout, stderr bytes.Buffer

	code := run(t.Context(), []string{"sh", "-c", "exit 42"}, strings.NewReader(""), &stdout, &stderr)

	require.Equal(t, 42, code)
}

func TestRun_Verbose(t *testing.T) {
	var stdout, stderr bytes.Buffer

	code := run(t.Context(), []string{"-v", "sh", "-c", "echo oops >&2"}, strings.NewReader(""), &stdout, &stderr)

	require.Equal(t, 0, code)
	require.Equal(t, "oops\n", stdout.String())
}

func TestRun_Timeout(t *testing.T) {
	var stdout, stderr bytes.Buffer

	start := time.Now()
	code := run(t.Context(), []string{"--timeout", "100ms", "sleep", "30"}, strings.NewReader(""), &stdout, &stderr)

	require.Equal(t, exitTimeout, code)
	require.Less(t, time.Since(start), 10*time.Second)
	require.Contains(t, stderr.String(), "timed out")
}

func TestRun_NotFound(t *testing.T) {
	var stdout, stderr bytes.Buffer

	code := run(t.Context(), []string{"childproc-no-such-program"}, strings.NewReader(""), &stdout, &stderr)

	require.Equal(t, exitNotFound, code)
	require.Contains(t, stderr.String(), "not found")
}

func TestRun_Usage(t *testing.T) {
	var stdout, stderr bytes.Buffer

	require.Equal(t, exitUsage, run(t.Context(), nil, strings.NewReader(""), &stdout, &stderr))
	require.Contains(t, stderr.String(), "no program given")

	require.Equal(t, 0, run(t.Context(), []string{"-h"}, strings.NewReader(""), &stdout, &stderr))
}

// TestRun_TimeoutGrandchildHoldsPipe tests that --timeout returns even when a
// background descendant keeps stdout open.
func TestRun_TimeoutGrandchildHoldsPipe(t *testing.T) {
	var stdout, stderr bytes.Buffer

	start := time.Now()
	code := run(t.Context(), []string{"--timeout", "200ms", "sh", "-c", "sleep 30 & echo x; wait"},
		strings.NewReader(""), &stdout, &stderr)

	require.Equal(t, exitTimeout, code, stderr.String())
	require.Less(t, time.Since(start), 5*time.Second)
	require.Equal(t, "x\n", stdout.String())
	require.NotContains(t, stderr.String(), "deadline exceeded")
}
