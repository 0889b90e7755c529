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

// Package replay implements the workflow-from-lineage replay path,
// ported from lineage_utils.py: load a prior lineage event, rebuild
// the context a downstream stage expects, and re-enter the
// orchestrator from that stage.
package replay

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/kadirpekel/refactorctl/pkg/configresolver"
	"github.com/kadirpekel/refactorctl/pkg/lineage"
	"github.com/kadirpekel/refactorctl/pkg/orchestrator"
	"github.com/kadirpekel/refactorctl/pkg/refoerr"
)

// GenerateNewRunID mirrors orchestrator's wf_<HHMM>_<UUID> run id format,
// used when a replay requests a fresh run id rather than reusing the
// source event's.
func GenerateNewRunID() string {
	return fmt.Sprintf("wf_%s_%s", time.Now().Format("1504"), uuid.NewString())
}

// PrepareContextFromLineage builds the context a downstream stage expects
// from a previously recorded event, implementing
// 3's per-stage shaping rules.
func PrepareContextFromLineage(ev *lineage.Event, stage string, config map[string]any, keepRunID bool) (*configresolver.Node, error) {
	originalRunID := ev.Workflow.RunID
	if originalRunID == "" {
		return nil, refoerr.New(refoerr.InputValidation, "no workflow run ID found in lineage data")
	}

	workflowRunID := originalRunID
	if !keepRunID {
		workflowRunID = GenerateNewRunID()
		slog.Info("lineage.generated_new_run_id", "original_run_id", originalRunID, "new_run_id", workflowRunID)
	} else {
		slog.Info("lineage.using_original_run_id", "run_id", workflowRunID)
	}

	agentName := ev.Agent.Name
	if agentName == "" {
		return nil, refoerr.New(refoerr.InputValidation, "no agent name found in lineage data")
	}
	if ev.LLMOutput == nil {
		return nil, refoerr.New(refoerr.InputValidation, "no LLM output found in lineage data")
	}

	cfgNode := configresolver.NewNode(config)
	context := map[string]any{
		"workflow_run_id": workflowRunID,
		"system":          map[string]any{"runid": workflowRunID},
		"timestamp":       time.Now().UTC().Format(time.RFC3339Nano),
		"config":          config,
		"lineage_source": map[string]any{
			"agent":           agentName,
			"event_id":        ev.EventID,
			"original_run_id": originalRunID,
		},
	}

	if projectPath, ok := cfgNode.GetString("project.path"); ok && projectPath != "" {
		context["project_path"] = projectPath
		context["project"] = cfgNode.GetNode("project").Data()
	}

	intent, _ := cfgNode.Get("intent")

	switch {
	case stage == "solution_designer" && agentName == "discovery":
		context["input_data"] = map[string]any{
			"discovery_data": map[string]any{
				"response":   ev.LLMOutput,
				"raw_output": ev.LLMOutput,
			},
			"intent": intent,
		}
	case stage == "coder" && agentName == "solution_designer":
		context["input_data"] = map[string]any{
			"response":   ev.LLMOutput,
			"raw_output": ev.LLMOutput,
		}
	default:
		context["input_data"] = map[string]any{
			"response":   ev.LLMOutput,
			"raw_output": ev.LLMOutput,
			"intent":     intent,
		}
	}

	slog.Info("context.prepared_from_lineage", "workflow_id", workflowRunID, "source_agent", agentName, "target_stage", stage)
	return configresolver.NewNode(context), nil
}

// RunWorkflowFromLineage loads eventFile, rebuilds the context for stage,
// and re-enters the orchestrator at that stage.
func RunWorkflowFromLineage(orch *orchestrator.Orchestrator, eventFile string, stage string, config map[string]any, keepRunID bool) (orchestrator.Record, error) {
	ev, err := lineage.LoadEvent(eventFile)
	if err != nil {
		return orchestrator.Record{}, fmt.Errorf("failed to load lineage file: %w", err)
	}

	ctx, err := PrepareContextFromLineage(ev, stage, config, keepRunID)
	if err != nil {
		return orchestrator.Record{}, err
	}

	result, err := orch.ExecuteWorkflow(stage, ctx, orchestrator.DefaultMaxTeams)
	if err != nil {
		return orchestrator.Record{}, err
	}
	slog.Info("replay.completed", "workflow_id", result.WorkflowRunID, "status", result.Status)
	return result, nil
}

// InspectLineage loads an event file and returns a one-line human-readable
// summary of that event, including its parent_id, grounded on
// c4h_services/examples/check_lineage.py.
func InspectLineage(eventFile string) (string, error) {
	ev, err := lineage.LoadEvent(eventFile)
	if err != nil {
		return "", fmt.Errorf("failed to load lineage file: %w", err)
	}
	return fmt.Sprintf(
		"event_id=%s agent=%s/%s run_id=%s parent_id=%s step=%d execution_path=%v",
		ev.EventID, ev.Agent.Name, ev.Agent.Type, ev.Workflow.RunID, ev.Workflow.ParentID,
		ev.Workflow.Step, ev.Workflow.ExecutionPath,
	), nil
}
