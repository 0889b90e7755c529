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

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/kadirpekel/refactorctl/pkg/configresolver"
	"github.com/kadirpekel/refactorctl/pkg/lineage"
	"github.com/kadirpekel/refactorctl/pkg/llm"
	"github.com/kadirpekel/refactorctl/pkg/orchestrator"
	"github.com/kadirpekel/refactorctl/pkg/project"
	"github.com/kadirpekel/refactorctl/pkg/statefile"
	"github.com/kadirpekel/refactorctl/pkg/tracing"
)

// WorkflowCmd runs a single workflow in-process, writing a lineage trail
// and a workflow state file as it goes.
type WorkflowCmd struct {
	Config        string   `short:"c" required:"" help:"Path to the app config file." type:"path"`
	ProjectPath   string   `help:"Path to the project being refactored (overrides config)." type:"path"`
	IntentFile    string   `help:"Path to a JSON file describing the refactoring intent." type:"path"`
	SystemConfigs []string `help:"Additional system config files, merged before the app config." type:"path"`
	EntryTeam     string   `help:"Team to start the workflow at." default:"discovery"`
	MaxTeams      int      `help:"Maximum number of teams to execute before aborting." default:"10"`
}

func (c *WorkflowCmd) Run(cli *CLI) error {
	systemConfig := map[string]any{}
	for _, path := range c.SystemConfigs {
		loader, err := configresolver.NewLoader(configresolver.LoaderOptions{Path: path})
		if err != nil {
			return fmt.Errorf("system config %s: %w", path, err)
		}
		data, err := loader.Load()
		if err != nil {
			return fmt.Errorf("system config %s: %w", path, err)
		}
		systemConfig = configresolver.DeepMerge(systemConfig, data)
	}

	appLoader, err := configresolver.NewLoader(configresolver.LoaderOptions{Path: c.Config})
	if err != nil {
		return err
	}
	appConfig, err := appLoader.Load()
	if err != nil {
		return fmt.Errorf("failed to load config %s: %w", c.Config, err)
	}

	mergedConfig := configresolver.DeepMerge(systemConfig, appConfig)

	shutdownTracing, err := tracing.Init(context.Background(), tracing.ConfigFromMap(mergedConfig))
	if err != nil {
		return err
	}
	defer shutdownTracing(context.Background())

	var intent map[string]any
	if c.IntentFile != "" {
		raw, err := os.ReadFile(c.IntentFile)
		if err != nil {
			return fmt.Errorf("failed to read intent file %s: %w", c.IntentFile, err)
		}
		if err := json.Unmarshal(raw, &intent); err != nil {
			return fmt.Errorf("failed to parse intent file %s: %w", c.IntentFile, err)
		}
	}

	preparedConfig, ctx, err := orchestrator.InitializeWorkflow(c.ProjectPath, intent, mergedConfig)
	if err != nil {
		return err
	}

	proj, err := project.FromConfig(configresolver.NewNode(preparedConfig))
	if err != nil {
		return fmt.Errorf("failed to resolve project paths: %w", err)
	}

	runID := orchestrator.ResolveWorkflowRunID(ctx)

	tracker := lineage.NewTracker(proj.Paths.Workspace+"/lineage", lineage.NoopRemoteBackend{})

	state, err := statefile.New(proj.Paths.Workspace+"/workflows", runID)
	if err != nil {
		return fmt.Errorf("failed to create workflow state directory: %w", err)
	}
	state.MarkStarted()

	providers := llm.NewProviderRegistry()
	if apiKey := os.Getenv("ANTHROPIC_API_KEY"); apiKey != "" {
		if err := providers.Register(llm.NewAnthropicProvider(apiKey, "")); err != nil {
			return err
		}
	}

	orch, err := orchestrator.New(orchestrator.Deps{
		Root:      configresolver.NewNode(preparedConfig),
		Providers: providers,
		Tracker:   tracker,
	})
	if err != nil {
		return err
	}

	entryTeam := c.EntryTeam
	record, err := orch.ExecuteWorkflow(entryTeam, ctx, c.MaxTeams)
	if err != nil {
		state.MarkError(err.Error())
		return err
	}

	for i, stage := range record.ExecutionPath {
		result := record.TeamResults[stage]
		state.WriteStageEvent(i+1, stage, result)
	}

	if record.Status == "success" {
		state.MarkCompleted()
	} else {
		state.MarkError(record.Error)
	}

	out, _ := json.MarshalIndent(record, "", "  ")
	fmt.Println(string(out))

	if record.Status != "success" {
		return fmt.Errorf("workflow finished with status %q: %s", record.Status, record.Error)
	}
	return nil
}
