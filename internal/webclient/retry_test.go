package webclient

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoWithRetryStopsOnSuccess(t *testing.T) {
	var calls int
	status, body, err := DoWithRetry(context.Background(), 3, time.Millisecond, func() (int, []byte, error) {
		calls++
		if calls < 2 {
			return http.StatusServiceUnavailable, nil, nil
		}
		return http.StatusOK, []byte("ok"), nil
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", string(body))
	assert.Equal(t, 2, calls)
}

func TestDoWithRetryDoesNotRetryClientErrors(t *testing.T) {
	var calls int
	status, _, err := DoWithRetry(context.Background(), 5, time.Millisecond, func() (int, []byte, error) {
		calls++
		return http.StatusBadRequest, nil, nil
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, 1, calls)
}

func TestDoWithRetryReturnsLastError(t *testing.T) {
	boom := errors.New("boom")
	var calls int
	_, _, err := DoWithRetry(context.Background(), 3, time.Millisecond, func() (int, []byte, error) {
		calls++
		return 0, nil, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 3, calls)
}

func TestDoWithRetryHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := DoWithRetry(ctx, 3, time.Hour, func() (int, []byte, error) {
		return http.StatusTooManyRequests, nil, nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDoRequestWithRetryReplaysBody(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		payload, _ := io.ReadAll(r.Body)
		if atomic.AddInt32(&hits, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write(append([]byte("echo:"), payload...))
	}))
	defer srv.Close()

	req, err := http.NewRequest(http.MethodPost, srv.URL, strings.NewReader("payload"))
	require.NoError(t, err)

	status, body, err := DoRequestWithRetry(context.Background(), NewDefault(time.Second), req, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "echo:payload", string(body))
	assert.EqualValues(t, 2, atomic.LoadInt32(&hits))
}
