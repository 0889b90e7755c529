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

// Package orchestrator implements the Team router,
// ported from
// _examples/original_source/c4h_services/src/orchestration/orchestrator.go:
// loads teams from config, runs the team graph up to a bounded step
// count, threads context between teams, and aggregates results.
package orchestrator

import "github.com/kadirpekel/refactorctl/pkg/team"

// DefaultMaxTeams is execute_workflow's default max_teams.
const DefaultMaxTeams = 10

// TeamResult is the per-team entry recorded in a Record's TeamResults
// map, the Go shape of one team_result dict in the original.
type TeamResult struct {
	Success   bool           `json:"success"`
	Data      map[string]any `json:"data,omitempty"`
	InputData map[string]any `json:"input_data,omitempty"`
	NextTeam  string         `json:"next_team,omitempty"`
	Error     string         `json:"error,omitempty"`
}

func teamResultOf(r team.Result) TeamResult {
	return TeamResult{
		Success:   r.Success,
		Data:      r.Data,
		InputData: r.InputData,
		NextTeam:  r.NextTeam,
		Error:     r.Error,
	}
}

// Record is the final workflow record produced by ExecuteWorkflow:
// {status, workflow_run_id, execution_path, team_results,
// teams_executed, data, timestamp}.
type Record struct {
	Status         string                `json:"status"`
	WorkflowRunID  string                `json:"workflow_run_id"`
	ExecutionPath  []string              `json:"execution_path"`
	TeamResults    map[string]TeamResult `json:"team_results"`
	TeamsExecuted  int                   `json:"teams_executed"`
	Data           map[string]any        `json:"data"`
	Timestamp      string                `json:"timestamp"`
	Error          string                `json:"error,omitempty"`
	FailedTeamID   string                `json:"failed_team_id,omitempty"`
}
