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

// Package task implements the Task Wrapper, ported from
// tasks.py's run_agent_task: one agent invocation wrapped with retry,
// an approval gate (no-op in core), and result normalization into a
// TaskResult.
package task

import (
	"sync"
	"time"

	"github.com/kadirpekel/refactorctl/pkg/agent"
	"github.com/kadirpekel/refactorctl/pkg/configresolver"
	"github.com/kadirpekel/refactorctl/pkg/refoerr"
)

// Runner is the subset of *agent.Agent a Task depends on, satisfied by
// any agent variant.
type Runner interface {
	Process(ctx *configresolver.Node) agent.Response
	Name() string
}

// Result is the TaskResult shape
type Result struct {
	Success    bool
	ResultData map[string]any
	StageData  map[string]any
	Error      string
}

// ApprovalGate decides whether a task is allowed to proceed. The core
// ships only a no-op gate; human-in-the-loop approval is reserved for
// future work.
type ApprovalGate func(ctx *configresolver.Node) bool

// AlwaysApprove is the core's no-op approval gate.
func AlwaysApprove(*configresolver.Node) bool { return true }

// Config configures one Task.
type Config struct {
	Agent             Runner
	TaskName          string
	RequiresApproval  bool
	MaxRetries        int
	RetryDelaySeconds float64
	Approve           ApprovalGate // defaults to AlwaysApprove
	Sleep             func(time.Duration)
}

// Task wraps one agent invocation with retry and result normalization.
type Task struct {
	agent             Runner
	name              string
	requiresApproval  bool
	maxRetries        int
	retryDelaySeconds float64
	approve           ApprovalGate
	sleep             func(time.Duration)

	metricsMu sync.Mutex
	attempts  int
}

// New builds a Task around an agent Runner.
func New(c Config) *Task {
	approve := c.Approve
	if approve == nil {
		approve = AlwaysApprove
	}
	sleep := c.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}
	return &Task{
		agent:             c.Agent,
		name:              c.TaskName,
		requiresApproval:  c.RequiresApproval,
		maxRetries:        c.MaxRetries,
		retryDelaySeconds: c.RetryDelaySeconds,
		approve:           approve,
		sleep:             sleep,
	}
}

// Execute runs the wrapped agent, retrying automatically only on
// LLMTransient failures up to MaxRetries. Non-transient failures and a
// declined approval gate fail immediately without consuming the retry
// budget.
func (t *Task) Execute(ctx *configresolver.Node) Result {
	if t.requiresApproval && !t.approve(ctx) {
		return Result{
			Success: false,
			Error:   "task requires approval and was not approved",
			StageData: map[string]any{
				"status":    "failed",
				"error":     "task requires approval and was not approved",
				"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
			},
		}
	}

	var resp agent.Response
	for attempt := 0; ; attempt++ {
		t.metricsMu.Lock()
		t.attempts++
		t.metricsMu.Unlock()

		resp = t.agent.Process(ctx)
		if resp.Success {
			break
		}
		if !refoerr.IsKind(resp.Err, refoerr.LLMTransient) || attempt >= t.maxRetries {
			break
		}
		if t.retryDelaySeconds > 0 {
			t.sleep(time.Duration(t.retryDelaySeconds * float64(time.Second)))
		}
	}

	status := "completed"
	if !resp.Success {
		status = "failed"
	}

	stageData := map[string]any{
		"status":    status,
		"error":     resp.Error,
		"timestamp": resp.Timestamp.Format(time.RFC3339Nano),
		"metrics":   resp.Metrics,
	}
	if rawOutput, ok := resp.Data["raw_output"]; ok {
		stageData["raw_output"] = rawOutput
	}

	return Result{
		Success:    resp.Success,
		ResultData: resp.Data,
		StageData:  stageData,
		Error:      resp.Error,
	}
}

// Attempts reports how many times Execute has invoked the wrapped agent
// across its lifetime, useful for asserting retry-budget behavior.
func (t *Task) Attempts() int {
	t.metricsMu.Lock()
	defer t.metricsMu.Unlock()
	return t.attempts
}
