// Copyright 2025 Kadir Pekel
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package agent

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/kadirpekel/refactorctl/pkg/configresolver"
	"github.com/kadirpekel/refactorctl/pkg/lineage"
	"github.com/kadirpekel/refactorctl/pkg/llm"
	"github.com/kadirpekel/refactorctl/pkg/refoerr"
)

// Ops is the capability set every agent variant must satisfy: name,
// system prompt lookup, request formatting, and the context keys it
// depends on. Modeled as composition rather than a Config+LLM+Base
// multiple-inheritance hierarchy.
type Ops interface {
	Name() string
	SystemPrompt() string
	FormatRequest(data map[string]any) string
	RequiredKeys() []string
}

// Agent is the base runtime shared by every agent variant: it embeds a
// bound config view, holds an LLM client, and drives one invocation
// through get-data -> format -> complete -> process-response ->
// lineage-emit.
type Agent struct {
	kind     Kind
	name     string
	cfg      *configresolver.Node // agent's own llm_config.agents.<name> view
	client   *llm.Client
	tracker  *lineage.Tracker
	provider string
	model    string

	requestOptions llm.RequestOptions
	logLevel       LogDetail

	// formatRequest/requiredKeys allow a caller to specialize the default
	// Ops behavior per agent kind without a new type per variant; domain
	// logic of individual agents beyond their pipeline role is explicitly
	// out of scope.
	formatRequest func(data map[string]any) string
	requiredKeys  []string

	mu      sync.Mutex
	metrics Metrics
}

// Config bundles the construction-time dependencies for an Agent.
type Config struct {
	Kind    Kind
	Name    string // defaults to string(Kind) when empty
	Root    *configresolver.Node
	Client  *llm.Client
	Tracker *lineage.Tracker

	// Explicit per-call overrides; empty strings fall through the
	// resolution chain in configresolver.ResolveAgentValue.
	Provider    string
	Model       string
	Temperature float64
	MaxTokens   int

	FormatRequest func(data map[string]any) string
	RequiredKeys  []string
}

// New builds an Agent, resolving provider/model through the standard
// config chain and the log-detail level from
// logging.agent_level.
func New(c Config) (*Agent, error) {
	name := c.Name
	if name == "" {
		name = string(c.Kind)
	}

	provider := c.Provider
	if provider == "" {
		if v, ok := c.Root.GetString(fmt.Sprintf("llm_config.agents.%s.provider", name)); ok && v != "" {
			provider = v
		} else if v, ok := c.Root.GetString("llm_config.default_provider"); ok && v != "" {
			provider = v
		} else {
			provider = "anthropic"
		}
	}

	model, err := c.Root.ResolveAgentValue(name, "model", c.Model, provider)
	if err != nil {
		return nil, err
	}

	temperature := c.Temperature
	hasTemperature := true
	if v, ok := c.Root.Get(fmt.Sprintf("llm_config.agents.%s.temperature", name)); ok {
		if f, ok := v.(float64); ok {
			temperature = f
		}
	}

	maxTokens := c.MaxTokens
	if maxTokens == 0 {
		maxTokens = 4096
	}

	logLevelStr, _ := c.Root.GetString("logging.agent_level")
	logLevel := ParseLogDetail(logLevelStr)

	formatRequest := c.FormatRequest
	if formatRequest == nil {
		formatRequest = defaultFormatRequest
	}

	a := &Agent{
		kind:     c.Kind,
		name:     name,
		cfg:      c.Root.AgentNode(name),
		client:   c.Client,
		tracker:  c.Tracker,
		provider: provider,
		model:    model,
		requestOptions: llm.RequestOptions{
			Model:          model,
			MaxTokens:      maxTokens,
			Temperature:    temperature,
			HasTemperature: hasTemperature,
		},
		logLevel:      logLevel,
		formatRequest: formatRequest,
		requiredKeys:  c.RequiredKeys,
	}
	return a, nil
}

func defaultFormatRequest(data map[string]any) string {
	return fmt.Sprintf("%v", data)
}

// Name satisfies Ops.
func (a *Agent) Name() string { return a.name }

// RequiredKeys satisfies Ops.
func (a *Agent) RequiredKeys() []string { return a.requiredKeys }

// FormatRequest satisfies Ops.
func (a *Agent) FormatRequest(data map[string]any) string { return a.formatRequest(data) }

// SystemPrompt resolves llm_config.agents.<name>.prompts.system,
// defaulting to the empty string when absent.
func (a *Agent) SystemPrompt() string {
	s, _ := a.cfg.GetString("prompts.system")
	return s
}

// Prompt returns a named prompt template, or an InputValidation error
// when it is not configured, mirroring _get_prompt.
func (a *Agent) Prompt(kind string) (string, error) {
	s, ok := a.cfg.GetString("prompts." + kind)
	if !ok {
		return "", refoerr.New(refoerr.InputValidation, fmt.Sprintf("no prompt template found for type: %s", kind))
	}
	return s, nil
}

// Metrics returns a snapshot of the accumulated per-agent counters.
func (a *Agent) Metrics() Metrics {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.metrics
}

// getData extracts the data an agent works from out of the context,
// the Go analog of _get_data: context is already a map, so it is
// returned as-is.
func getData(ctx *configresolver.Node) map[string]any {
	return ctx.Data()
}

// Process runs one full invocation: resolve data, build messages, drive
// the continuation engine, wrap the result, and emit exactly one
// lineage event regardless of outcome. The runtime
// never retries; that is the Task Wrapper's job (4.E).
func (a *Agent) Process(ctx *configresolver.Node) Response {
	start := time.Now()
	data := getData(ctx)
	systemMessage := a.SystemPrompt()
	userMessage := a.FormatRequest(data)

	input := Input{
		SystemPrompt:     systemMessage,
		UserMessage:      userMessage,
		FormattedRequest: userMessage,
		RawContext:       data,
		Timestamp:        start,
	}

	messages := []llm.Message{
		{Role: "system", Content: systemMessage},
		{Role: "user", Content: userMessage},
	}

	opts := a.requestOptions
	if v, ok := ctx.Get("max_tokens"); ok {
		if n, ok := v.(int); ok {
			opts.MaxTokens = n
		}
	}

	result, err := a.client.Complete(messages, opts)
	duration := time.Since(start)

	a.mu.Lock()
	a.metrics.TotalRequests++
	a.metrics.TotalDuration += duration
	if result.Continued {
		a.metrics.ContinuationAttempts++
	}
	a.mu.Unlock()

	var resp Response
	if err != nil {
		a.mu.Lock()
		a.metrics.FailedRequests++
		a.metrics.LastError = err.Error()
		a.mu.Unlock()

		resp = Response{
			Success:   false,
			Data:      map[string]any{},
			Error:     fmt.Sprintf("LLM completion failed: %v", err),
			Input:     input,
			Timestamp: time.Now().UTC(),
			Err:       err,
		}
	} else {
		a.mu.Lock()
		a.metrics.SuccessfulRequests++
		a.mu.Unlock()

		responseData := map[string]any{
			"response":   result.Response.Content,
			"raw_output": result.Response,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		}
		if result.Response.Usage.TotalTokens > 0 {
			responseData["usage"] = map[string]int{
				"prompt_tokens":     result.Response.Usage.PromptTokens,
				"completion_tokens": result.Response.Usage.CompletionTokens,
				"total_tokens":      result.Response.Usage.TotalTokens,
			}
		}

		resp = Response{
			Success:   true,
			Data:      responseData,
			Input:     input,
			RawOutput: result.Response,
			Metrics:   map[string]any{"token_usage": result.Response.Usage},
			Timestamp: time.Now().UTC(),
		}
	}

	observeOutcome(a.name, resp.Success, duration.Seconds())

	if a.logLevel >= LogDetailed {
		slog.Debug("agent.processed", "agent", a.name, "success", resp.Success, "duration", duration)
	}

	if a.tracker != nil {
		a.tracker.Track(lineage.TrackParams{
			AgentName: a.name,
			AgentType: string(a.kind),
			Context:   ctx,
			LLMInput: lineage.LLMInput{
				System:           systemMessage,
				User:             userMessage,
				FormattedRequest: userMessage,
			},
			LLMOutput: resp.RawOutput,
			Metrics:   a.Metrics().Snapshot(),
			Err:       errorOrNil(resp),
		})
	}

	return resp
}

func errorOrNil(r Response) error {
	if r.Success {
		return nil
	}
	if r.Err != nil {
		return r.Err
	}
	return refoerr.New(refoerr.LLMPermanent, r.Error)
}
