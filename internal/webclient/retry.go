package webclient

import (
	"context"
	"net/http"
	"time"
)

type AttemptFunc func() (status int, body []byte, err error)

const maxRetryDelay = 30 * time.Second

// DoWithRetry retries the attempt function on transient errors (429/5xx) or non-nil errors.
func DoWithRetry(ctx context.Context, attempts int, initialDelay time.Duration, fn AttemptFunc) (int, []byte, error) {
	if attempts <= 0 {
		attempts = 1
	}
	if initialDelay <= 0 {
		initialDelay = 2 * time.Second
	}
	delay := initialDelay
	for i := 0; i < attempts; i++ {
		status, body, err := fn()
		if err == nil && !Retryable(status) {
			return status, body, nil
		}
		if i == attempts-1 {
			return status, body, err
		}
		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return status, body, ctx.Err()
		case <-t.C:
		}
		if delay < maxRetryDelay {
			delay *= 2
			if delay > maxRetryDelay {
				delay = maxRetryDelay
			}
		}
	}
	return 0, nil, context.DeadlineExceeded
}

// Retryable 429 与 5xx 视为可重试
func Retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}
