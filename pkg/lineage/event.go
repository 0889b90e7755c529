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

// Package lineage implements the structured, parent-linked event capture
// described in, ported from
// _examples/original_source/c4h_agents/agents/base_lineage.py.
package lineage

import "time"

// Agent identifies the emitting agent.
type Agent struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Workflow carries the run/step identifiers that tie an event into its
// workflow's execution.
type Workflow struct {
	RunID         string   `json:"run_id"`
	ParentID      string   `json:"parent_id,omitempty"`
	Step          int      `json:"step"`
	ExecutionPath []string `json:"execution_path"`
}

// LLMInput captures what was sent to the model.
type LLMInput struct {
	System          string `json:"system,omitempty"`
	User            string `json:"user,omitempty"`
	FormattedRequest string `json:"formatted_request,omitempty"`
}

// Event is one write-once lineage record. Instances are never mutated
// after construction; on success they are atomically renamed into place.
type Event struct {
	EventID   string         `json:"event_id"`
	Timestamp time.Time      `json:"timestamp"`
	Agent     Agent          `json:"agent"`
	Workflow  Workflow       `json:"workflow"`
	LLMInput  LLMInput       `json:"llm_input"`
	LLMOutput any            `json:"llm_output,omitempty"`
	Metrics   map[string]any `json:"metrics,omitempty"`
	Error     string         `json:"error,omitempty"`
}
