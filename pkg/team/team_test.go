package team

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kadirpekel/refactorctl/pkg/agent"
	"github.com/kadirpekel/refactorctl/pkg/configresolver"
	"github.com/kadirpekel/refactorctl/pkg/task"
)

type fakeAgent struct {
	name string
	resp agent.Response
}

func (a *fakeAgent) Name() string { return a.name }

func (a *fakeAgent) Process(ctx *configresolver.Node) agent.Response { return a.resp }

func newTask(name string, success bool, data map[string]any) *task.Task {
	return task.New(task.Config{
		Agent:    &fakeAgent{name: name, resp: agent.Response{Success: success, Data: data}},
		TaskName: name,
	})
}

func TestTeamExecuteStopsOnFailureWhenConfigured(t *testing.T) {
	tm := &Team{
		ID:            "discovery",
		Name:          "Discovery Team",
		Tasks:         []*task.Task{newTask("scan", false, nil), newTask("never-runs", true, nil)},
		StopOnFailure: true,
		Routing:       Routing{Default: "solution"},
	}

	result := tm.Execute(configresolver.NewNode(nil))
	require.False(t, result.Success)
	assert.NotEmpty(t, result.Error)
}

func TestTeamExecuteContinuesWhenNotStoppingOnFailure(t *testing.T) {
	tm := &Team{
		ID:            "discovery",
		Tasks:         []*task.Task{newTask("scan", false, nil), newTask("still-runs", true, map[string]any{"x": 1})},
		StopOnFailure: false,
		Routing:       Routing{Default: "solution"},
	}

	result := tm.Execute(configresolver.NewNode(nil))
	require.False(t, result.Success)
	assert.Equal(t, 1, result.Data["x"])
}

func TestTeamExecuteAppliesWellKnownInputDataRuleDiscoveryToSolution(t *testing.T) {
	tm := &Team{
		ID:      "discovery",
		Tasks:   []*task.Task{newTask("scan", true, map[string]any{"response": "found issues"})},
		Routing: Routing{Default: "solution"},
		InputDataRules: []InputDataRule{{
			ToTeam: "solution",
			Build: func(ctx *configresolver.Node, data map[string]any) map[string]any {
				intent, _ := ctx.Get("intent")
				return map[string]any{"discovery_data": data, "intent": intent}
			},
		}},
	}

	ctx := configresolver.NewNode(map[string]any{"intent": map[string]any{"description": "refactor"}})
	result := tm.Execute(ctx)

	require.True(t, result.Success)
	assert.Equal(t, "solution", result.NextTeam)
	require.NotNil(t, result.InputData)
	assert.Equal(t, map[string]any{"response": "found issues"}, result.InputData["discovery_data"])
}

func TestTeamExecuteRoutingRuleOverridesDefault(t *testing.T) {
	tm := &Team{
		ID:    "coder",
		Tasks: []*task.Task{newTask("apply", false, nil)},
		Routing: Routing{
			Rules:   []RoutingRule{{Condition: "any_failure", NextTeam: "review"}},
			Default: "done",
		},
	}

	result := tm.Execute(configresolver.NewNode(nil))
	assert.Equal(t, "review", result.NextTeam)
}
