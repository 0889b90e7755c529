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

// Package team implements Team, ported from
// _examples/original_source/c4h_services/src/orchestration/team.go.
package team

import (
	"github.com/kadirpekel/refactorctl/pkg/agent"
)

// AgentTaskConfig is the AgentTaskConfig record
type AgentTaskConfig struct {
	AgentKind         agent.Kind
	Config            map[string]any
	TaskName          string
	RequiresApproval  bool
	MaxRetries        int
	RetryDelaySeconds float64
}

// RoutingRule pairs a built-in condition with the team to run if it
// evaluates true.
type RoutingRule struct {
	Condition string
	NextTeam  string
}

// Routing is the Team.routing block
type Routing struct {
	Rules   []RoutingRule
	Default string // empty means terminal (null next_team)
}

// Result is the value Team.Execute returns:
// {success, data, input_data?, next_team, team_id, error?}.
type Result struct {
	Success   bool
	Data      map[string]any
	InputData map[string]any // only set for well-known transitions
	NextTeam  string
	TeamID    string
	Error     string
}
