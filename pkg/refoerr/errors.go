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

// Package refoerr defines the error kinds shared across the orchestrator,
// matching the propagation policy: agents return failed AgentResponses,
// the task wrapper retries transient LLM errors, the team decides whether
// to keep going, and the orchestrator aborts the workflow on team failure.
package refoerr

import "fmt"

// Kind classifies an error for dispatch purposes (retry, fail task, fail
// workflow, or log-and-swallow).
type Kind string

const (
	// ConfigurationMissing means a required value was absent after the
	// full config resolution chain. Fatal at startup.
	ConfigurationMissing Kind = "configuration_missing"

	// InputValidation means a missing project path, malformed intent, or
	// missing required context key. Returned in the AgentResponse.
	InputValidation Kind = "input_validation"

	// LLMTransient means a rate-limit or overload response. Retried
	// internally by the continuation engine and, at the task level, by
	// the task wrapper.
	LLMTransient Kind = "llm_transient"

	// LLMPermanent means a bad request, authentication failure, or
	// content-filter rejection. Surfaced as a task failure.
	LLMPermanent Kind = "llm_permanent"

	// ContinuationGiveUp means every join strategy was exhausted and the
	// lightweight validation still failed. The best-effort content is
	// kept; this is a warning, not a task failure, unless strict mode is
	// requested.
	ContinuationGiveUp Kind = "continuation_give_up"

	// LineageWrite means a lineage backend failed to persist an event.
	// Logged only, never surfaced to the caller.
	LineageWrite Kind = "lineage_write"

	// ExecutionLimit means the team count exceeded max_teams.
	ExecutionLimit Kind = "execution_limit"
)

// Error wraps an underlying error with a Kind so callers can dispatch on
// errors.As without string-matching messages.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind reports whether the first *Error found along err's Unwrap chain
// has the given Kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if err == nil {
		return false
	}
	for {
		if ae, ok := err.(*Error); ok {
			e = ae
			break
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
		if err == nil {
			return false
		}
	}
	return e.Kind == kind
}
