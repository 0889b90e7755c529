// Package llm implements the LLM Client and Continuation Engine, the
// hardest single subsystem: multi-strategy overlap detection, joining,
// and retry/backoff logic that stitches length-limited responses into
// one coherent artifact. The join cascade and backoff constants are
// ported from base_llm_continuation.py; request construction and the
// provider boundary follow a hand-rolled net/http client convention,
// no vendor SDK.
package llm

import "github.com/kadirpekel/refactorctl/pkg/lineage"

// Message is one role-tagged turn in a conversation.
type Message struct {
	Role    string // "system", "user", "assistant"
	Content string
}

// FinishReason mirrors the provider's stop reason; "length" is the only
// value the continuation engine treats specially.
type FinishReason string

const (
	FinishStop   FinishReason = "stop"
	FinishLength FinishReason = "length"
)

// Usage is normalized token accounting across providers.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Response is the normalized shape every provider's raw response is
// wrapped into at the boundary, standing in for the dynamic response
// objects an LLM SDK would otherwise hand back.
type Response struct {
	Content      string
	FinishReason FinishReason
	Model        string
	Usage        Usage
	Raw          any
}

// LineageRecord satisfies lineage.llmResponseLike so a Response can be
// handed directly to lineage.SerializeValue without pkg/lineage needing
// to import this package.
func (r Response) LineageRecord() lineage.LLMResponseRecord {
	return lineage.LLMResponseRecord{
		Content:      r.Content,
		FinishReason: string(r.FinishReason),
		Model:        r.Model,
		Usage: map[string]int{
			"prompt_tokens":     r.Usage.PromptTokens,
			"completion_tokens": r.Usage.CompletionTokens,
			"total_tokens":      r.Usage.TotalTokens,
		},
	}
}

// RequestOptions carries the provider-agnostic request knobs; unset
// fields fall back to provider/config defaults.
type RequestOptions struct {
	Model            string
	MaxTokens        int
	Temperature      float64
	HasTemperature   bool // false omits temperature for providers that reject it
	ExtendedThinking bool
	ThinkingBudget   int
	APIBase          string
	Stream           bool
}

// Provider is the request/response oracle boundary: the LLM SDK itself
// is explicitly out of scope, so implementations talk raw HTTP (see
// provider_anthropic.go), never a vendor SDK.
type Provider interface {
	Name() string
	Complete(messages []Message, opts RequestOptions) (Response, error)
	SupportsTemperature() bool
	StreamingThreshold() int // token budget above which the continuation engine flags the request as stream-worthy
}
