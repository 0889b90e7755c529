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

// Package agent implements the Agent Runtime, the
// base execution contract shared by every agent variant, ported from
// _examples/original_source/c4h_agents/agents/base_agent.py.
package agent

import (
	"strings"
	"time"
)

// Kind selects one of the known agent variants (AgentTaskConfig.agent_kind).
type Kind string

const (
	KindDiscovery        Kind = "discovery"
	KindSolutionDesigner Kind = "solution_designer"
	KindCoder            Kind = "coder"
	KindAssurance        Kind = "assurance"
	KindSemanticIterator Kind = "semantic_iterator"
	KindSemanticMerge    Kind = "semantic_merge"
	KindSemanticExtract  Kind = "semantic_extract"
	KindAssetManager     Kind = "asset_manager"
)

// LogDetail is the per-agent log verbosity level, resolved from
// logging.agent_level independently of the process-wide slog level.
type LogDetail int

const (
	LogMinimal LogDetail = iota
	LogBasic
	LogDetailed
	LogDebug
)

// ParseLogDetail converts a string level to a LogDetail, defaulting to
// LogBasic on anything unrecognized, matching LogDetail.from_str.
func ParseLogDetail(s string) LogDetail {
	switch strings.ToLower(s) {
	case "minimal":
		return LogMinimal
	case "detailed":
		return LogDetailed
	case "debug":
		return LogDebug
	default:
		return LogBasic
	}
}

// Input captures everything sent to the model for one invocation, kept
// on the response for lineage and debugging (c4h's AgentInput).
type Input struct {
	SystemPrompt     string
	UserMessage      string
	FormattedRequest string
	RawContext       map[string]any
	Timestamp        time.Time
}

// Response is the standard AgentResponse shape
// Invariant: Success == false implies Error != "".
type Response struct {
	Success   bool
	Data      map[string]any
	Error     string
	Input     Input
	RawOutput any
	Metrics   map[string]any
	Timestamp time.Time

	// Err carries the classified underlying error (e.g. a *refoerr.Error
	// with Kind LLMTransient) so the Task Wrapper can decide whether a
	// failure is worth retrying without re-parsing Error. Nil on success.
	Err error
}

// Metrics accumulates per-agent counters across every invocation
// (c4h_agents/agents/base_config.py: _update_metrics).
type Metrics struct {
	TotalRequests        int
	SuccessfulRequests   int
	FailedRequests       int
	TotalDuration        time.Duration
	ContinuationAttempts int
	LastError            string
}

// Snapshot returns a copy of m safe to attach to a lineage event or
// export as a Prometheus gauge set.
func (m Metrics) Snapshot() map[string]any {
	return map[string]any{
		"total_requests":        m.TotalRequests,
		"successful_requests":   m.SuccessfulRequests,
		"failed_requests":       m.FailedRequests,
		"total_duration":        m.TotalDuration.Seconds(),
		"continuation_attempts": m.ContinuationAttempts,
		"last_error":            m.LastError,
	}
}
