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

package team

import (
	"log/slog"

	"github.com/kadirpekel/refactorctl/pkg/configresolver"
	"github.com/kadirpekel/refactorctl/pkg/task"
)

// Team is the ordered list of tasks plus a routing block, modeled on a
// sequential coordination loop but without DAG or autonomous execution
// modes — this core only needs strictly sequential task execution
// within one team.
type Team struct {
	ID             string
	Name           string
	Tasks          []*task.Task
	Routing        Routing
	StopOnFailure  bool // buildTeam sets true when stop_on_failure is absent from config
	InputDataRules []InputDataRule
}

// InputDataRule attaches a structured input_data payload to the team
// result when the outgoing next_team matches ToTeam, for well-known
// transitions that need a structured input_data payload.
type InputDataRule struct {
	ToTeam string
	Build  func(ctx *configresolver.Node, data map[string]any) map[string]any
}

// Execute runs every task in order, aggregates successful result data,
// evaluates routing, and returns the Team's Result.
//
// Open Question decision: stop_on_failure gates only
// task-to-task continuation within this team; whether the workflow as a
// whole continues to the routed next_team is always the Orchestrator's
// call, made on team-level success/failure regardless of this flag.
func (t *Team) Execute(ctx *configresolver.Node) Result {
	results := make([]task.Result, 0, len(t.Tasks))
	data := map[string]any{}
	overallSuccess := true

	for i, tk := range t.Tasks {
		taskCtx := configresolver.NewNode(configresolver.DeepMerge(ctx.Data(), map[string]any{
			"team_id":    t.ID,
			"team_name":  t.Name,
			"task_index": i,
		}))

		r := tk.Execute(taskCtx)
		results = append(results, r)

		if !r.Success {
			overallSuccess = false
		}
		for k, v := range r.ResultData {
			data[k] = v
		}

		if !r.Success && t.StopOnFailure {
			slog.Warn("team stopping on task failure", "team_id", t.ID, "task_index", i, "error", r.Error)
			break
		}
	}

	nextTeam := determineNextTeam(t.Routing, results)

	result := Result{
		Success:  overallSuccess,
		Data:     data,
		NextTeam: nextTeam,
		TeamID:   t.ID,
	}
	if !overallSuccess {
		result.Error = firstError(results)
	}

	for _, rule := range t.InputDataRules {
		if rule.ToTeam != "" && rule.ToTeam == nextTeam {
			result.InputData = rule.Build(ctx, data)
			break
		}
	}

	return result
}

func firstError(results []task.Result) string {
	for _, r := range results {
		if !r.Success {
			return r.Error
		}
	}
	return ""
}
