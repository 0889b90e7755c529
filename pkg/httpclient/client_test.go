package httpclient

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestDefaultStrategy(t *testing.T) {
	cases := map[int]RetryStrategy{
		http.StatusOK:                  NoRetry,
		http.StatusTooManyRequests:     SmartRetry,
		http.StatusServiceUnavailable:  SmartRetry,
		http.StatusRequestTimeout:      ConservativeRetry,
		http.StatusInternalServerError: ConservativeRetry,
		http.StatusBadGateway:          ConservativeRetry,
		http.StatusGatewayTimeout:      ConservativeRetry,
		http.StatusUnauthorized:        NoRetry,
		529:                            NoRetry,
	}
	for status, want := range cases {
		if got := DefaultStrategy(status); got != want {
			t.Errorf("DefaultStrategy(%d) = %v, want %v", status, got, want)
		}
	}
}

// AnthropicProvider builds its Client with WithMaxRetries(0), which puts
// Do in passthrough mode: the raw response (even a non-2xx one) must
// come back unmodified so the provider's own classifyStatusError can
// inspect it.
func TestDoPassthroughModeReturnsRawResponseOnNonRetryableStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(529)
		w.Write([]byte(`{"error":{"type":"overloaded_error","message":"overloaded"}}`))
	}))
	defer srv.Close()

	c := New(WithMaxRetries(0))
	req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
	resp, err := c.Do(req)
	if err != nil {
		t.Fatalf("Do() returned unexpected error in passthrough mode: %v", err)
	}
	if resp.StatusCode != 529 {
		t.Fatalf("StatusCode = %d, want 529", resp.StatusCode)
	}
}

func TestDoPassthroughModeDoesNotRetry(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := New(WithMaxRetries(0))
	req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
	if _, err := c.Do(req); err != nil {
		t.Fatalf("Do() returned unexpected error: %v", err)
	}
	if attempts != 1 {
		t.Fatalf("attempts = %d, want 1 (no retrying in passthrough mode)", attempts)
	}
}

func TestDoSmartRetryEventuallySucceeds(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(WithMaxRetries(5), WithBaseDelay(time.Millisecond), WithMaxDelay(5*time.Millisecond))
	req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
	resp, err := c.Do(req)
	if err != nil {
		t.Fatalf("Do() returned unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("StatusCode = %d, want 200", resp.StatusCode)
	}
	if attempts != 3 {
		t.Fatalf("attempts = %d, want 3", attempts)
	}
}

func TestCalculateDelayConservativeRetryStopsAfterTwoAttempts(t *testing.T) {
	c := New()
	if d := c.calculateDelay(ConservativeRetry, 0, RateLimitInfo{}); d <= 0 {
		t.Errorf("calculateDelay(ConservativeRetry, 0, ...) = %v, want > 0", d)
	}
	if d := c.calculateDelay(ConservativeRetry, 2, RateLimitInfo{}); d != 0 {
		t.Errorf("calculateDelay(ConservativeRetry, 2, ...) = %v, want 0 (stop retrying)", d)
	}
}

func TestDoUsesRetryAfterHeaderFromParser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := New(
		WithMaxRetries(1),
		WithHeaderParser(func(http.Header) RateLimitInfo { return RateLimitInfo{RetryAfter: time.Millisecond} }),
	)
	req, _ := http.NewRequest(http.MethodGet, srv.URL, nil)
	start := time.Now()
	if _, err := c.Do(req); err == nil {
		t.Fatal("Do() expected an error after exhausting retries")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("Do() took %v, expected the short RetryAfter hint to be honored", elapsed)
	}
}
