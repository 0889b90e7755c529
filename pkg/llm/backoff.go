package llm

import (
	"math/rand"
	"time"
)

// BackoffProfile bounds one family of retryable provider error.
// Rate-limit and overload errors get distinct profiles, each with its own
// retry counter inside Backoff. Retries under either profile happen within
// one continuation round and do not advance the continuation loop's
// attempt counter.
type BackoffProfile struct {
	Base       time.Duration
	Cap        time.Duration
	MaxRetries int
	// CountsAgainstBudget is false for the rate-limit profile and true for
	// the overload profile; Backoff does not read it.
	CountsAgainstBudget bool
}

var (
	RateLimitBackoff = BackoffProfile{
		Base:                2 * time.Second,
		Cap:                 60 * time.Second,
		MaxRetries:          5,
		CountsAgainstBudget: false,
	}
	OverloadBackoff = BackoffProfile{
		Base:                2 * time.Second,
		Cap:                 32 * time.Second,
		MaxRetries:          5,
		CountsAgainstBudget: true,
	}
)

// Delay returns the exponential-with-jitter delay for the given zero-based
// retry attempt, capped at profile.Cap. Rate-limit and overload both jitter
// by up to +/-5% around the exponential base (a tenth of it, centred on
// zero), not over its full range, so the
// retry budget stays close to the unjittered geometric series.
func (p BackoffProfile) Delay(attempt int) time.Duration {
	exp := p.Base << uint(attempt)
	if exp <= 0 || exp > p.Cap { // overflow or past the ceiling
		exp = p.Cap
	}
	if exp <= 0 {
		return 0
	}
	jitter := time.Duration(float64(exp) * 0.1 * (0.5 - rand.Float64()))
	delay := exp + jitter
	if delay < 0 {
		delay = 0
	}
	if delay > p.Cap {
		delay = p.Cap
	}
	return delay
}

// ErrorKind classifies a provider error for backoff routing.
type ErrorKind int

const (
	ErrorOther ErrorKind = iota
	ErrorRateLimit
	ErrorOverload
)

// Backoff runs fn, retrying per the profile selected by classify(err)
// until it succeeds, a non-retryable error is returned, or the selected
// profile's retry budget is exhausted. sleep is injected for testability.
func Backoff(classify func(error) ErrorKind, sleep func(time.Duration), fn func() error) error {
	rateLimitAttempts := 0
	overloadAttempts := 0

	for {
		err := fn()
		if err == nil {
			return nil
		}

		switch classify(err) {
		case ErrorRateLimit:
			if rateLimitAttempts >= RateLimitBackoff.MaxRetries {
				return err
			}
			sleep(RateLimitBackoff.Delay(rateLimitAttempts))
			rateLimitAttempts++
		case ErrorOverload:
			if overloadAttempts >= OverloadBackoff.MaxRetries {
				return err
			}
			sleep(OverloadBackoff.Delay(overloadAttempts))
			overloadAttempts++
		default:
			return err
		}
	}
}
