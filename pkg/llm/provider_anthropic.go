package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"

	"github.com/kadirpekel/refactorctl/pkg/httpclient"
	"github.com/kadirpekel/refactorctl/pkg/refoerr"
)

const (
	anthropicDefaultAPIBase  = "https://api.anthropic.com"
	anthropicAPIVersion      = "2023-06-01"
	anthropicDefaultModel    = "claude-3-5-sonnet-20241022"
	anthropicStreamThreshold = 8000
)

// AnthropicProvider talks to the Anthropic messages API directly over
// net/http, treating the vendor SDK as out of scope: the
// provider boundary here is a request/response oracle, nothing more.
type AnthropicProvider struct {
	APIKey  string
	APIBase string
	http    *httpclient.Client
}

// NewAnthropicProvider builds a provider using httpclient purely as raw
// transport: its own retry loop is disabled (WithMaxRetries(0)) because the
// continuation engine's Backoff implements the rate-limit/overload
// profiles itself. The Anthropic header parser stays wired in so a
// future caller that re-enables retries (WithMaxRetries > 0) inherits
// correct Retry-After/reset-time handling for free. A corporate-network
// CA certificate or a dev-only skip-verify can be supplied via
// ANTHROPIC_CA_CERT and ANTHROPIC_TLS_INSECURE_SKIP_VERIFY.
func NewAnthropicProvider(apiKey, apiBase string) *AnthropicProvider {
	if apiBase == "" {
		apiBase = anthropicDefaultAPIBase
	}
	opts := []httpclient.Option{
		httpclient.WithMaxRetries(0),
		httpclient.WithHeaderParser(httpclient.ParseAnthropicHeaders),
	}
	if tlsConfig := tlsConfigFromEnv(); tlsConfig != nil {
		opts = append(opts, httpclient.WithTLSConfig(tlsConfig))
	}
	return &AnthropicProvider{
		APIKey:  apiKey,
		APIBase: apiBase,
		http:    httpclient.New(opts...),
	}
}

func tlsConfigFromEnv() *httpclient.TLSConfig {
	caCert := os.Getenv("ANTHROPIC_CA_CERT")
	insecure, _ := strconv.ParseBool(os.Getenv("ANTHROPIC_TLS_INSECURE_SKIP_VERIFY"))
	if caCert == "" && !insecure {
		return nil
	}
	return &httpclient.TLSConfig{CACertificate: caCert, InsecureSkipVerify: insecure}
}

func (p *AnthropicProvider) Name() string { return "anthropic" }

func (p *AnthropicProvider) SupportsTemperature() bool { return true }

func (p *AnthropicProvider) StreamingThreshold() int { return anthropicStreamThreshold }

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	System      string             `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
	Temperature *float64           `json:"temperature,omitempty"`
	Stream      bool               `json:"stream,omitempty"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Model      string `json:"model"`
	StopReason string `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

type anthropicErrorEnvelope struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Complete issues one request over the messages API. opts.Stream, set by
// the continuation engine once max_tokens (plus any extended-thinking
// budget) crosses StreamingThreshold, is advisory here: this provider
// always buffers the full response, so a request the engine flagged as
// stream-worthy is logged rather than sent with "stream": true, which
// would require consuming the server-sent-events framing instead of a
// plain JSON body.
func (p *AnthropicProvider) Complete(messages []Message, opts RequestOptions) (Response, error) {
	if opts.Stream {
		slog.Debug("anthropic.streaming_threshold_exceeded", "max_tokens", opts.MaxTokens, "thinking_budget", opts.ThinkingBudget)
	}

	apiBase := p.APIBase
	if opts.APIBase != "" {
		apiBase = opts.APIBase
	}

	model := opts.Model
	if model == "" {
		model = anthropicDefaultModel
	}

	req := anthropicRequest{
		Model:     model,
		MaxTokens: opts.MaxTokens,
	}
	if req.MaxTokens == 0 {
		req.MaxTokens = 4096
	}
	if opts.HasTemperature {
		t := opts.Temperature
		req.Temperature = &t
	}

	for _, m := range messages {
		if m.Role == "system" {
			req.System = m.Content
			continue
		}
		req.Messages = append(req.Messages, anthropicMessage{Role: m.Role, Content: m.Content})
	}

	body, err := json.Marshal(req)
	if err != nil {
		return Response{}, refoerr.Wrap(refoerr.LLMPermanent, "failed to marshal anthropic request", err)
	}

	httpReq, err := http.NewRequest(http.MethodPost, apiBase+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return Response{}, refoerr.Wrap(refoerr.LLMPermanent, "failed to build anthropic request", err)
	}
	httpReq.Header.Set("content-type", "application/json")
	httpReq.Header.Set("x-api-key", p.APIKey)
	httpReq.Header.Set("anthropic-version", anthropicAPIVersion)

	httpResp, err := p.http.Do(httpReq)
	if err != nil {
		return Response{}, classifyTransportError(err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return Response{}, refoerr.Wrap(refoerr.LLMTransient, "failed to read anthropic response body", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return Response{}, classifyStatusError(httpResp.StatusCode, respBody)
	}

	var parsed anthropicResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return Response{}, refoerr.Wrap(refoerr.LLMPermanent, "failed to parse anthropic response", err)
	}

	var text string
	for _, block := range parsed.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}

	finish := FinishStop
	if parsed.StopReason == "max_tokens" {
		finish = FinishLength
	}

	return Response{
		Content:      text,
		FinishReason: finish,
		Model:        parsed.Model,
		Usage: Usage{
			PromptTokens:     parsed.Usage.InputTokens,
			CompletionTokens: parsed.Usage.OutputTokens,
			TotalTokens:      parsed.Usage.InputTokens + parsed.Usage.OutputTokens,
		},
		Raw: parsed,
	}, nil
}

// providerStatusError carries an HTTP status code so classifyProviderError
// (engine.go) can route rate-limit (429) and overload (529/503) responses
// to the matching backoff profile.
type providerStatusError struct {
	statusCode int
	inner      *refoerr.Error
}

func (e *providerStatusError) Error() string { return e.inner.Error() }

func (e *providerStatusError) Unwrap() error { return e.inner }

func (e *providerStatusError) RetryKind() ErrorKind {
	switch e.statusCode {
	case http.StatusTooManyRequests:
		return ErrorRateLimit
	case http.StatusServiceUnavailable, 529:
		return ErrorOverload
	default:
		return ErrorOther
	}
}

func classifyStatusError(status int, body []byte) error {
	var env anthropicErrorEnvelope
	_ = json.Unmarshal(body, &env)
	msg := env.Error.Message
	if msg == "" {
		msg = fmt.Sprintf("anthropic returned HTTP %d", status)
	}

	kind := refoerr.LLMPermanent
	if status == http.StatusTooManyRequests || status == http.StatusServiceUnavailable || status == 529 {
		kind = refoerr.LLMTransient
	}

	return &providerStatusError{
		statusCode: status,
		inner:      refoerr.New(kind, msg),
	}
}

func classifyTransportError(err error) error {
	if _, ok := err.(*httpclient.RetryableError); ok {
		return refoerr.Wrap(refoerr.LLMTransient, "anthropic transport error", err)
	}
	return refoerr.Wrap(refoerr.LLMTransient, "anthropic request failed", err)
}
