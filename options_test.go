package childproc

import (
	"bufio"
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestApplyOptions_Defaults(t *testing.T) {
	options := applyOptions(nil)

	require.Nil(t, options.Logger)
	require.False(t, options.Verbose)
	require.False(t, options.ProcessGroup)
	require.Nil(t, options.Env)
	require.Empty(t, options.Dir)
	require.Empty(t, options.Flushers)
}

func TestApplyOptions_All(t *testing.T) {
	logger := slog.Default()
	first := bufio.NewWriter(&bytes.Buffer{})
	second := bufio.NewWriter(&bytes.Buffer{})

	options := applyOptions([]Option{
		WithLogger(logger),
		WithVerbose(true),
		WithEnv([]string{"A=1"}),
		WithDir("/tmp"),
		WithProcessGroup(true),
		WithFlushers(first),
		WithFlushers(second),
	})

	require.Same(t, logger, options.Logger)
	require.True(t, options.Verbose)
	require.Equal(t, []string{"A=1"}, options.Env)
	require.Equal(t, "/tmp", options.Dir)
	require.True(t, options.ProcessGroup)
	require.Equal(t, []Flusher{first, second}, options.Flushers)
}

func TestApplyOptions_LaterWins(t *testing.T) {
	options := applyOptions([]Option{WithVerbose(true), WithVerbose(false)})

	require.False(t, options.Verbose)
}
