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

package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kadirpekel/refactorctl/pkg/configresolver"
	"github.com/kadirpekel/refactorctl/pkg/refoerr"
	"github.com/kadirpekel/refactorctl/pkg/team"
)

// Orchestrator loads teams from config, runs the team graph up to a
// bounded step count, threads context between teams, and aggregates
// results.
type Orchestrator struct {
	deps   Deps
	config map[string]any
	teams  map[string]*team.Team
	tracer trace.Tracer
}

// New builds an Orchestrator, loading teams from the given config.
func New(deps Deps) (*Orchestrator, error) {
	teams, err := loadTeams(deps)
	if err != nil {
		return nil, err
	}
	o := &Orchestrator{
		deps:   deps,
		config: deps.Root.Data(),
		teams:  teams,
		tracer: otel.Tracer("refactorctl/orchestrator"),
	}
	slog.Info("orchestrator.initialized", "teams_loaded", len(teams))
	return o, nil
}

// InitializeWorkflow normalizes the project path, stamps a fresh
// workflow run id and start time, ensures orchestration.enabled, and
// fills discovery-agent scanning defaults, returning (prepared_config,
// context)
func InitializeWorkflow(projectPath string, intent map[string]any, cfg map[string]any) (map[string]any, *configresolver.Node, error) {
	prepared := configresolver.DeepMerge(cfg, map[string]any{})

	if projectPath == "" {
		node := configresolver.NewNode(prepared)
		if v, ok := node.GetString("project.path"); ok {
			projectPath = v
		}
	}
	if projectPath == "" {
		return nil, nil, refoerr.New(refoerr.InputValidation, "no project path specified in arguments or config")
	}

	prepared = configresolver.DeepMerge(prepared, map[string]any{
		"project": map[string]any{"path": projectPath},
	})

	workflowID := fmt.Sprintf("wf_%s_%s", time.Now().Format("1504"), uuid.NewString())
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)

	prepared = configresolver.DeepMerge(prepared, map[string]any{
		"system":          map[string]any{"runid": workflowID},
		"workflow_run_id": workflowID,
		"runtime": map[string]any{
			"workflow": map[string]any{"start_time": timestamp},
		},
		"orchestration": map[string]any{"enabled": true},
	})

	prepared = applyDiscoveryDefaults(prepared)

	ctx := configresolver.NewNode(configresolver.DeepMerge(prepared, map[string]any{
		"project_path":    projectPath,
		"intent":          intent,
		"workflow_run_id": workflowID,
		"system":          map[string]any{"runid": workflowID},
		"timestamp":       timestamp,
	}))

	slog.Info("workflow.initialized", "workflow_id", workflowID, "project_path", projectPath)
	return prepared, ctx, nil
}

// applyDiscoveryDefaults fills llm_config.agents.discovery.tartxt_config
// defaults (script_path, input_paths) when absent, matching
// initialize_workflow's tartxt_config handling. The discovery agent's
// file-scanning script itself is out of scope; only
// the default wiring of its config keys is reproduced here.
func applyDiscoveryDefaults(cfg map[string]any) map[string]any {
	node := configresolver.NewNode(cfg)
	discoveryNode := node.GetNode("llm_config.agents.discovery.tartxt_config")

	update := map[string]any{}
	if _, ok := discoveryNode.GetString("script_path"); !ok {
		if base, ok := discoveryNode.GetString("script_base_path"); ok && base != "" {
			update["script_path"] = base + "/tartxt.py"
		} else {
			update["script_path"] = "pkg/discovery/skills/tartxt.go"
		}
	}
	if _, ok := discoveryNode.Get("input_paths"); !ok {
		update["input_paths"] = []any{"./"}
	}
	if len(update) == 0 {
		return cfg
	}

	return configresolver.DeepMerge(cfg, map[string]any{
		"llm_config": map[string]any{
			"agents": map[string]any{
				"discovery": map[string]any{
					"tartxt_config": update,
				},
			},
		},
	})
}

// ExecuteWorkflow runs the team graph starting at entryTeam, threading
// context between teams and stopping on a null next_team, a team
// failure, or max_teams reached.
func (o *Orchestrator) ExecuteWorkflow(entryTeam string, ctx *configresolver.Node, maxTeams int) (Record, error) {
	if maxTeams <= 0 {
		maxTeams = DefaultMaxTeams
	}

	if cfgRaw, ok := ctx.Get("config"); ok {
		if cfgMap, ok := cfgRaw.(map[string]any); ok && !configsEqual(cfgMap, o.config) {
			teams, err := loadTeams(Deps{Root: configresolver.NewNode(cfgMap), Providers: o.deps.Providers, Tracker: o.deps.Tracker})
			if err != nil {
				return Record{}, err
			}
			o.teams = teams
			o.config = cfgMap
			slog.Info("orchestrator.teams_reloaded_with_updated_config", "teams_count", len(teams))
		}
	}

	workflowRunID := ResolveWorkflowRunID(ctx)
	data := configresolver.DeepMerge(ctx.Data(), map[string]any{
		"system":          map[string]any{"runid": workflowRunID},
		"workflow_run_id": workflowRunID,
	})
	current := configresolver.NewNode(data)

	if _, ok := o.teams[entryTeam]; !ok {
		return Record{}, fmt.Errorf("entry team %q not found", entryTeam)
	}

	spanCtx, span := o.tracer.Start(context.Background(), "orchestrator.execute_workflow",
		trace.WithAttributes(attribute.String("workflow.run_id", workflowRunID), attribute.String("entry_team", entryTeam)))
	defer span.End()

	var executionPath []string
	teamResults := map[string]TeamResult{}
	accumulated := map[string]any{}
	status := "success"
	var workflowError, failedTeamID string

	currentTeamID := entryTeam
	teamsExecuted := 0

	for currentTeamID != "" && teamsExecuted < maxTeams {
		currentTeam, ok := o.teams[currentTeamID]
		if !ok {
			status = "error"
			workflowError = fmt.Sprintf("team %s not found", currentTeamID)
			failedTeamID = currentTeamID
			break
		}

		slog.Info("orchestrator.executing_team", "team_id", currentTeamID, "step", teamsExecuted+1)
		executionPath = append(executionPath, currentTeamID)

		_, teamSpan := o.tracer.Start(spanCtx, "orchestrator.team",
			trace.WithAttributes(attribute.String("team.id", currentTeamID)))
		result := currentTeam.Execute(current)
		teamSpan.End()

		teamResults[currentTeamID] = teamResultOf(result)

		if result.Success {
			merged := configresolver.DeepMerge(current.Data(), result.Data)
			for k, v := range result.Data {
				accumulated[k] = v
			}
			if result.InputData != nil {
				merged["input_data"] = result.InputData
			}
			current = configresolver.NewNode(merged)
		} else {
			slog.Warn("orchestrator.team_execution_failed", "team_id", currentTeamID, "error", result.Error)
			status = "error"
			workflowError = result.Error
			failedTeamID = currentTeamID
			break
		}

		currentTeamID = result.NextTeam
		teamsExecuted++

		if currentTeamID == "" {
			slog.Info("orchestrator.workflow_completed", "teams_executed", teamsExecuted)
		}
	}

	if teamsExecuted >= maxTeams && currentTeamID != "" {
		slog.Warn("orchestrator.max_teams_reached", "max_teams", maxTeams)
		status = "error"
		workflowError = refoerr.New(refoerr.ExecutionLimit, fmt.Sprintf("exceeded maximum team limit of %d", maxTeams)).Error()
	}

	record := Record{
		Status:        status,
		WorkflowRunID: workflowRunID,
		ExecutionPath: executionPath,
		TeamResults:   teamResults,
		TeamsExecuted: teamsExecuted,
		Data:          accumulated,
		Timestamp:     time.Now().UTC().Format(time.RFC3339Nano),
		Error:         workflowError,
		FailedTeamID:  failedTeamID,
	}

	slog.Info("orchestrator.workflow_result", "status", status, "teams_executed", teamsExecuted, "execution_path", executionPath)
	return record, nil
}

// ResolveWorkflowRunID implements: ensure the
// workflow run id is propagated to system.runid and workflow_run_id,
// generating one if neither is already present.
func ResolveWorkflowRunID(ctx *configresolver.Node) string {
	if v, ok := ctx.GetString("workflow_run_id"); ok && v != "" {
		return v
	}
	if v, ok := ctx.GetString("system.runid"); ok && v != "" {
		return v
	}
	return uuid.NewString()
}

func configsEqual(a, b map[string]any) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		bv, ok := b[k]
		if !ok {
			return false
		}
		if !valuesEqual(v, bv) {
			return false
		}
	}
	return true
}

func valuesEqual(a, b any) bool {
	am, aok := a.(map[string]any)
	bm, bok := b.(map[string]any)
	if aok && bok {
		return configsEqual(am, bm)
	}
	if aok != bok {
		return false
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}
