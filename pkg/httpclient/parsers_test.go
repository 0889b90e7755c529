package httpclient

import (
	"net/http"
	"testing"
	"time"
)

func TestParseAnthropicHeaders(t *testing.T) {
	h := http.Header{}
	h.Set("retry-after", "12")
	h.Set("anthropic-ratelimit-requests-reset", "2026-01-01T00:00:00Z")
	h.Set("anthropic-ratelimit-input-tokens-remaining", "4000")
	h.Set("anthropic-ratelimit-output-tokens-remaining", "2000")
	h.Set("anthropic-ratelimit-requests-remaining", "3")

	info := ParseAnthropicHeaders(h)

	if info.RetryAfter != 12*time.Second {
		t.Errorf("RetryAfter = %v, want 12s", info.RetryAfter)
	}
	if info.InputTokensRemaining != 4000 {
		t.Errorf("InputTokensRemaining = %d, want 4000", info.InputTokensRemaining)
	}
	if info.OutputTokensRemaining != 2000 {
		t.Errorf("OutputTokensRemaining = %d, want 2000", info.OutputTokensRemaining)
	}
	if info.RequestsRemaining != 3 {
		t.Errorf("RequestsRemaining = %d, want 3", info.RequestsRemaining)
	}
	if info.ResetTime == 0 {
		t.Error("ResetTime = 0, want a parsed reset timestamp")
	}
}

func TestParseAnthropicHeadersEmpty(t *testing.T) {
	info := ParseAnthropicHeaders(http.Header{})
	if info != (RateLimitInfo{}) {
		t.Errorf("ParseAnthropicHeaders(empty) = %+v, want zero value", info)
	}
}

func TestParseOpenAIHeaders(t *testing.T) {
	h := http.Header{}
	h.Set("Retry-After", "5")
	h.Set("x-ratelimit-remaining-requests", "10")
	h.Set("x-ratelimit-remaining-tokens", "9000")

	info := ParseOpenAIHeaders(h)
	if info.RetryAfter != 5*time.Second {
		t.Errorf("RetryAfter = %v, want 5s", info.RetryAfter)
	}
	if info.RequestsRemaining != 10 {
		t.Errorf("RequestsRemaining = %d, want 10", info.RequestsRemaining)
	}
	if info.TokensRemaining != 9000 {
		t.Errorf("TokensRemaining = %d, want 9000", info.TokensRemaining)
	}
}

func TestParseGeminiHeaders(t *testing.T) {
	h := http.Header{}
	h.Set("Retry-After", "7")

	info := ParseGeminiHeaders(h)
	if info.RetryAfter != 7*time.Second {
		t.Errorf("RetryAfter = %v, want 7s", info.RetryAfter)
	}
}
