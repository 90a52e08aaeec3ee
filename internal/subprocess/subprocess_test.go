package subprocess

import (
	"bufio"
	"bytes"
	stderrors "errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/wagiedev/childproc-go/internal/config"
	"github.com/wagiedev/childproc-go/internal/errors"
)

// fakeHandle is a processHandle double that counts OS calls and can be made
// to fail after the first wait, as if the process had been reaped elsewhere.
type fakeHandle struct {
	code     int
	waitErrs []error
	killErr  error

	waits    int
	kills    int
	releases int
}

func (h *fakeHandle) pid() int { return 4242 }

func (h *fakeHandle) kill(bool) error {
	h.kills++

	return h.killErr
}

func (h *fakeHandle) wait() (int, error) {
	h.waits++

	if len(h.waitErrs) > 0 {
		err := h.waitErrs[0]
		h.waitErrs = h.waitErrs[1:]

		if err != nil {
			return -1, err
		}
	}

	return h.code, nil
}

func (h *fakeHandle) release() error {
	h.releases++

	return nil
}

func newFake(h *fakeHandle) *Subprocess {
	return &Subprocess{log: slog.Default(), id: "test", handle: h}
}

// blockingKillHandle is a processHandle whose kill blocks until unblocked, and
// which records whether it was ever used after release.
type blockingKillHandle struct {
	fakeHandle

	killing      chan struct{}
	unblock      chan struct{}
	released     atomic.Bool
	usedReleased atomic.Bool
	killCalls    atomic.Int32
}

func (h *blockingKillHandle) kill(bool) error {
	if h.killCalls.Add(1) == 1 {
		close(h.killing)
		<-h.unblock
	}

	if h.released.Load() {
		h.usedReleased.Store(true)
	}

	return nil
}

func (h *blockingKillHandle) release() error {
	h.released.Store(true)

	return nil
}

// TestResult_Memoized tests that the OS wait runs once and later calls reuse the code
// even when the OS state has since been invalidated.
func TestResult_Memoized(t *testing.T) {
	h := &fakeHandle{
		code:     7,
		waitErrs: []error{nil, stderrors.New("no child processes")},
	}
	s := newFake(h)

	code, err := s.Result()
	require.NoError(t, err)
	require.Equal(t, 7, code)

	code, err = s.Result()
	require.NoError(t, err)
	require.Equal(t, 7, code)
	require.Equal(t, 1, h.waits)
}

// TestResult_QueryFailureNotMemoized tests that a failed query can be retried.
func TestResult_QueryFailureNotMemoized(t *testing.T) {
	queryErr := &errors.ProcessQueryError{Pid: 4242, Code: 6, Err: stderrors.New("invalid handle")}
	h := &fakeHandle{code: 3, waitErrs: []error{queryErr}}
	s := newFake(h)

	_, err := s.Result()
	require.ErrorIs(t, err, queryErr)

	code, err := s.Result()
	require.NoError(t, err)
	require.Equal(t, 3, code)
	require.Equal(t, 2, h.waits)
}

func TestTerminate_AfterResultIsNoop(t *testing.T) {
	h := &fakeHandle{}
	s := newFake(h)

	_, err := s.Result()
	require.NoError(t, err)

	s.Terminate()
	require.Zero(t, h.kills)
}

// TestTerminate_SwallowsKillError tests that OS kill failures never reach the caller.
func TestTerminate_SwallowsKillError(t *testing.T) {
	h := &fakeHandle{killErr: stderrors.New("access denied")}
	s := newFake(h)

	require.NotPanics(t, s.Terminate)
	require.Equal(t, 1, h.kills)
}

func TestTerminate_DoesNotSetResult(t *testing.T) {
	h := &fakeHandle{code: 1}
	s := newFake(h)

	s.Terminate()
	require.Nil(t, s.exitCode)
	require.Zero(t, h.waits)
}

func TestClose_Idempotent(t *testing.T) {
	h := &fakeHandle{}
	s := newFake(h)

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())
	require.Equal(t, 1, h.releases)
}

func TestClose_ThenResultWithoutMemo(t *testing.T) {
	h := &fakeHandle{}
	s := newFake(h)

	require.NoError(t, s.Close())

	_, err := s.Result()
	require.ErrorIs(t, err, errors.ErrProcessReleased)
	require.Zero(t, h.waits)

	s.Terminate()
	require.Zero(t, h.kills)

	_, err = s.Inspect(t.Context())
	require.ErrorIs(t, err, errors.ErrProcessReleased)
}

func TestClose_KeepsMemoizedResult(t *testing.T) {
	h := &fakeHandle{code: 5}
	s := newFake(h)

	_, err := s.Result()
	require.NoError(t, err)
	require.NoError(t, s.Close())

	code, err := s.Result()
	require.NoError(t, err)
	require.Equal(t, 5, code)
}

func TestAbandon_KillsReapsAndReleases(t *testing.T) {
	h := &fakeHandle{}
	s := newFake(h)

	s.abandon()

	require.Equal(t, 1, h.kills)
	require.Equal(t, 1, h.waits)
	require.Equal(t, 1, h.releases)
	require.True(t, s.released.Load())
}

func TestNew_EmptyPath(t *testing.T) {
	_, err := New(nil, nil, "", nil, nil)

	require.ErrorIs(t, err, errors.ErrEmptyExecutable)
}

type failingFlusher struct{ calls int }

func (f *failingFlusher) Flush() error {
	f.calls++

	return stderrors.New("disk full")
}

// TestFlushOutput tests that every flusher runs and failures do not stop the rest.
func TestFlushOutput(t *testing.T) {
	var sink bytes.Buffer

	w := bufio.NewWriter(&sink)
	_, err := w.WriteString("queued before spawn")
	require.NoError(t, err)

	failing := &failingFlusher{}

	flushOutput(slog.Default(), []config.Flusher{failing, w})

	require.Equal(t, 1, failing.calls)
	require.Equal(t, "queued before spawn", sink.String())
	require.Zero(t, w.Buffered())
}

// TestClose_WaitsForInFlightTerminate tests that the handle is not released
// while a kill is using it, and is never used afterwards.
func TestClose_WaitsForInFlightTerminate(t *testing.T) {
	h := &blockingKillHandle{killing: make(chan struct{}), unblock: make(chan struct{})}
	s := &Subprocess{log: slog.Default(), id: "test", handle: h}

	go s.Terminate()

	<-h.killing

	closed := make(chan error, 1)

	go func() { closed <- s.Close() }()

	select {
	case <-closed:
		t.Fatal("Close released the handle during a kill")
	case <-time.After(50 * time.Millisecond):
	}

	close(h.unblock)

	select {
	case err := <-closed:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Close did not return after the kill finished")
	}

	s.Terminate()

	require.True(t, h.released.Load())
	require.False(t, h.usedReleased.Load())
	require.EqualValues(t, 1, h.killCalls.Load())
}
