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
	"fmt"
	"log/slog"

	"github.com/mitchellh/mapstructure"

	"github.com/kadirpekel/refactorctl/pkg/agent"
	"github.com/kadirpekel/refactorctl/pkg/configresolver"
	"github.com/kadirpekel/refactorctl/pkg/lineage"
	"github.com/kadirpekel/refactorctl/pkg/llm"
	"github.com/kadirpekel/refactorctl/pkg/task"
	"github.com/kadirpekel/refactorctl/pkg/team"
)

// agentTaskConfig is the decoded shape of one entry in a team's "tasks"
// list, matching AgentTaskConfig's fields.
type agentTaskConfig struct {
	AgentKind         string  `mapstructure:"agent_kind"`
	Name              string  `mapstructure:"name"`
	MaxRetries        int     `mapstructure:"max_retries"`
	RetryDelaySeconds float64 `mapstructure:"retry_delay_seconds"`
	RequiresApproval  bool    `mapstructure:"requires_approval"`
}

// Deps bundles the shared collaborators every built agent needs: the
// provider registry to resolve "provider" -> llm.Provider, and the
// lineage tracker every Agent Runtime invocation writes to.
type Deps struct {
	Root      *configresolver.Node
	Providers *llm.ProviderRegistry
	Tracker   *lineage.Tracker
}

// loadTeams implements Orchestrator._load_teams: read
// orchestration.teams from config, or fall back to the default
// discovery -> solution -> coder chain for backward compatibility.
func loadTeams(deps Deps) (map[string]*team.Team, error) {
	teamsNode := deps.Root.GetNode("orchestration.teams")
	raw := teamsNode.Data()
	if len(raw) == 0 {
		slog.Warn("orchestrator.no_teams_found, loading default teams")
		return loadDefaultTeams(deps)
	}

	teams := make(map[string]*team.Team, len(raw))
	for teamID, v := range raw {
		teamCfg, ok := v.(map[string]any)
		if !ok {
			continue
		}
		t, err := buildTeam(deps, teamID, teamCfg)
		if err != nil {
			slog.Error("orchestrator.team_load_failed", "team_id", teamID, "error", err)
			continue
		}
		teams[teamID] = t
		slog.Info("orchestrator.team_loaded", "team_id", teamID, "name", t.Name, "tasks", len(t.Tasks))
	}
	return teams, nil
}

func buildTeam(deps Deps, teamID string, teamCfg map[string]any) (*team.Team, error) {
	node := configresolver.NewNode(teamCfg)

	name, _ := node.GetString("name")
	if name == "" {
		name = teamID
	}

	var tasks []*task.Task
	if rawTasks, ok := node.Get("tasks"); ok {
		if seq, ok := rawTasks.([]any); ok {
			for i, rawTask := range seq {
				taskCfg, ok := rawTask.(map[string]any)
				if !ok {
					continue
				}
				tk, err := buildTask(deps, teamID, i, taskCfg)
				if err != nil {
					slog.Error("orchestrator.missing_agent_class", "team_id", teamID, "index", i, "error", err)
					continue
				}
				tasks = append(tasks, tk)
			}
		}
	}

	routing := parseRouting(node)

	stopOnFailure := true
	if v, ok := node.Get("stop_on_failure"); ok {
		if b, ok := v.(bool); ok {
			stopOnFailure = b
		}
	}

	return &team.Team{
		ID:             teamID,
		Name:           name,
		Tasks:          tasks,
		Routing:        routing,
		StopOnFailure:  stopOnFailure,
		InputDataRules: wellKnownInputDataRules(teamID),
	}, nil
}

func buildTask(deps Deps, teamID string, index int, taskCfg map[string]any) (*task.Task, error) {
	cfg := agentTaskConfig{MaxRetries: 3, RetryDelaySeconds: 30.0}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &cfg,
	})
	if err != nil {
		return nil, fmt.Errorf("task %d in team %q: building config decoder: %w", index, teamID, err)
	}
	if err := decoder.Decode(taskCfg); err != nil {
		return nil, fmt.Errorf("task %d in team %q: decoding task config: %w", index, teamID, err)
	}

	if cfg.AgentKind == "" {
		return nil, fmt.Errorf("task %d in team %q has no agent_kind", index, teamID)
	}
	if cfg.Name == "" {
		cfg.Name = fmt.Sprintf("%s-%d", teamID, index)
	}

	a, err := agent.New(agent.Config{
		Kind:    agent.Kind(cfg.AgentKind),
		Name:    cfg.AgentKind,
		Root:    deps.Root,
		Client:  llm.NewClient(&lazyProvider{registry: deps.Providers, root: deps.Root, agentName: cfg.AgentKind}),
		Tracker: deps.Tracker,
	})
	if err != nil {
		return nil, err
	}

	return task.New(task.Config{
		Agent:             a,
		TaskName:          cfg.Name,
		RequiresApproval:  cfg.RequiresApproval,
		MaxRetries:        cfg.MaxRetries,
		RetryDelaySeconds: cfg.RetryDelaySeconds,
	}), nil
}

// lazyProvider defers provider resolution to call time, since the
// agent's provider is itself resolved from config (explicit ->
// llm_config.agents.<name>.provider -> llm_config.default_provider).
// This lets the provider registry be populated (or reloaded) after
// teams are built without re-wiring every agent.
type lazyProvider struct {
	registry  *llm.ProviderRegistry
	root      *configresolver.Node
	agentName string
}

func (p *lazyProvider) resolve() (llm.Provider, error) {
	name, ok := p.root.GetString(fmt.Sprintf("llm_config.agents.%s.provider", p.agentName))
	if !ok || name == "" {
		name, ok = p.root.GetString("llm_config.default_provider")
		if !ok || name == "" {
			name = "anthropic"
		}
	}
	return p.registry.Get(name)
}

func (p *lazyProvider) Name() string {
	prov, err := p.resolve()
	if err != nil {
		return "unknown"
	}
	return prov.Name()
}

func (p *lazyProvider) Complete(messages []llm.Message, opts llm.RequestOptions) (llm.Response, error) {
	prov, err := p.resolve()
	if err != nil {
		return llm.Response{}, err
	}
	return prov.Complete(messages, opts)
}

func (p *lazyProvider) SupportsTemperature() bool {
	prov, err := p.resolve()
	if err != nil {
		return true
	}
	return prov.SupportsTemperature()
}

func (p *lazyProvider) StreamingThreshold() int {
	prov, err := p.resolve()
	if err != nil {
		return 1 << 20
	}
	return prov.StreamingThreshold()
}

func parseRouting(node *configresolver.Node) team.Routing {
	routingNode := node.GetNode("routing")
	var routing team.Routing

	if rawRules, ok := routingNode.Get("rules"); ok {
		if seq, ok := rawRules.([]any); ok {
			for _, rawRule := range seq {
				ruleMap, ok := rawRule.(map[string]any)
				if !ok {
					continue
				}
				ruleNode := configresolver.NewNode(ruleMap)
				condition, _ := ruleNode.GetString("condition")
				nextTeam, _ := ruleNode.GetString("next_team")
				routing.Rules = append(routing.Rules, team.RoutingRule{
					Condition: condition,
					NextTeam:  nextTeam,
				})
			}
		}
	}
	routing.Default, _ = routingNode.GetString("default")
	return routing
}

// wellKnownInputDataRules hardcodes the two transitions spec.md names
// explicitly (section 4.F step 6): discovery -> solution and
// solution -> coder, ported from Team._team_id/_next_team special
// casing in the original.
func wellKnownInputDataRules(teamID string) []team.InputDataRule {
	switch teamID {
	case "discovery":
		return []team.InputDataRule{{
			ToTeam: "solution",
			Build: func(ctx *configresolver.Node, data map[string]any) map[string]any {
				intent, _ := ctx.Get("intent")
				project, _ := ctx.Get("project")
				return map[string]any{
					"discovery_data": data,
					"intent":         intent,
					"project":        project,
				}
			},
		}}
	case "solution":
		return []team.InputDataRule{{
			ToTeam: "coder",
			Build: func(ctx *configresolver.Node, data map[string]any) map[string]any {
				return data
			},
		}}
	default:
		return nil
	}
}

// loadDefaultTeams builds the discovery -> solution -> coder chain used
// when orchestration.teams is absent from config, matching
// Orchestrator._load_default_teams.
func loadDefaultTeams(deps Deps) (map[string]*team.Team, error) {
	discoveryTask, err := buildTask(deps, "discovery", 0, map[string]any{"agent_kind": "discovery"})
	if err != nil {
		return nil, err
	}
	solutionTask, err := buildTask(deps, "solution", 0, map[string]any{"agent_kind": "solution_designer"})
	if err != nil {
		return nil, err
	}
	coderTask, err := buildTask(deps, "coder", 0, map[string]any{"agent_kind": "coder"})
	if err != nil {
		return nil, err
	}

	teams := map[string]*team.Team{
		"discovery": {
			ID: "discovery", Name: "Discovery Team",
			Tasks:          []*task.Task{discoveryTask},
			Routing:        team.Routing{Default: "solution"},
			StopOnFailure:  true,
			InputDataRules: wellKnownInputDataRules("discovery"),
		},
		"solution": {
			ID: "solution", Name: "Solution Design Team",
			Tasks:          []*task.Task{solutionTask},
			Routing:        team.Routing{Default: "coder"},
			StopOnFailure:  true,
			InputDataRules: wellKnownInputDataRules("solution"),
		},
		"coder": {
			ID: "coder", Name: "Coder Team",
			Tasks:         []*task.Task{coderTask},
			Routing:       team.Routing{Default: ""},
			StopOnFailure: true,
		},
	}
	slog.Info("orchestrator.default_teams_loaded", "teams", []string{"discovery", "solution", "coder"})
	return teams, nil
}
