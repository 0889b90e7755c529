package llm

import (
	"time"

	"github.com/kadirpekel/refactorctl/pkg/refoerr"
)

// MaxContinuations bounds the number of length-triggered continuation
// round trips for a single Complete call, independent of the backoff
// retry budgets: the continuation loop itself is capped separately
// from provider-error retries.
const MaxContinuations = 8

// RetryClassifier lets a provider tag an error as rate-limit or overload
// so Complete can route it through the matching backoff profile. A
// provider error that does not implement this is routed to the overload
// profile if it is a refoerr.LLMTransient error, and is otherwise not
// retried.
type RetryClassifier interface {
	RetryKind() ErrorKind
}

func classifyProviderError(err error) ErrorKind {
	if err == nil {
		return ErrorOther
	}
	if rc, ok := err.(RetryClassifier); ok {
		return rc.RetryKind()
	}
	if refoerr.IsKind(err, refoerr.LLMTransient) {
		return ErrorOverload
	}
	return ErrorOther
}

// Client drives a Provider through the continuation cascade: request,
// detect length-truncation, size and request an overlap, join the next
// chunk in, repeat until finish_reason != length or MaxContinuations is
// hit, then run the advisory repair/validate pass.
type Client struct {
	Provider    Provider
	Diagnostics *Diagnostics
	Stitch      LLMStitchFunc // optional; enables the llm_stitch join level
	Sleep       func(time.Duration)
}

// NewClient builds a Client around a concrete Provider. Sleep defaults to
// time.Sleep; tests override it to avoid real delays.
func NewClient(p Provider) *Client {
	return &Client{
		Provider:    p,
		Diagnostics: &Diagnostics{},
		Sleep:       time.Sleep,
	}
}

// CompletionResult is Complete's return value: the fully-joined content
// plus bookkeeping useful for lineage and diagnostics.
type CompletionResult struct {
	Response    Response
	ContentType ContentType
	Continued   bool
	Warnings    []ValidationWarning
}

// Complete runs messages through the provider, transparently continuing
// through length-limited responses until a natural stop or
// MaxContinuations is reached.
func (c *Client) Complete(messages []Message, opts RequestOptions) (CompletionResult, error) {
	firstUser := ""
	for _, m := range messages {
		if m.Role == "user" {
			firstUser = m.Content
			break
		}
	}
	ct := DetectContentType(firstUser)

	budget := opts.MaxTokens
	if opts.ExtendedThinking {
		budget += opts.ThinkingBudget
	}
	if budget > c.Provider.StreamingThreshold() {
		opts.Stream = true
	}

	working := make([]Message, len(messages))
	copy(working, messages)

	var accumulated string
	var last Response
	continued := false

	for attempt := 0; attempt <= MaxContinuations; attempt++ {
		c.Diagnostics.RecordAttempt()
		observeAttempt(c.Provider.Name())

		var resp Response
		err := Backoff(classifyProviderError, c.Sleep, func() error {
			var callErr error
			resp, callErr = c.Provider.Complete(working, opts)
			return callErr
		})
		if err != nil {
			return CompletionResult{}, err
		}
		last = resp

		if accumulated == "" {
			accumulated = resp.Content
		} else {
			overlap := ComputeOverlapWindow(ct, accumulated)
			result := Join(ct, accumulated, overlap, resp.Content, c.Stitch)
			c.Diagnostics.RecordJoin(result.Strategy)
			observeJoin(c.Provider.Name(), result.Strategy)
			accumulated = result.Content
		}

		if resp.FinishReason != FinishLength || attempt == MaxContinuations {
			break
		}

		continued = true
		overlap := ComputeOverlapWindow(ct, accumulated)
		working = append(working,
			Message{Role: "assistant", Content: resp.Content},
			Message{Role: "user", Content: BuildContinuationPrompt(ct, overlap)},
		)
	}

	if repaired, changed := RepairEscapes(ct, accumulated); changed {
		accumulated = repaired
		c.Diagnostics.RecordStructureRepair()
	}

	warnings := ValidateJoined(ct, accumulated)

	final := last
	final.Content = accumulated
	return CompletionResult{
		Response:    final,
		ContentType: ct,
		Continued:   continued,
		Warnings:    warnings,
	}, nil
}
