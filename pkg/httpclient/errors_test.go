package httpclient

import (
	"errors"
	"testing"
	"time"
)

func TestRetryableErrorError(t *testing.T) {
	withRetryAfter := &RetryableError{StatusCode: 429, Message: "rate limited", RetryAfter: 30 * time.Second}
	if got, want := withRetryAfter.Error(), "HTTP 429: rate limited (retry after 30s)"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	withoutRetryAfter := &RetryableError{StatusCode: 529, Message: "overloaded"}
	if got, want := withoutRetryAfter.Error(), "HTTP 529: overloaded"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestRetryableErrorUnwrapAndIs(t *testing.T) {
	root := errors.New("transport reset")
	wrapped := &RetryableError{StatusCode: 503, Message: "max retries (5) exceeded", Err: root}

	if !errors.Is(wrapped, root) {
		t.Error("errors.Is(wrapped, root) = false, want true")
	}

	var asRetryable *RetryableError
	if !errors.As(wrapped, &asRetryable) || asRetryable.StatusCode != 503 {
		t.Error("errors.As should recover the RetryableError with its StatusCode")
	}
}

func TestRetryableErrorIsRetryable(t *testing.T) {
	err := &RetryableError{StatusCode: 429}
	if !err.IsRetryable() {
		t.Error("IsRetryable() = false, want true")
	}
}
