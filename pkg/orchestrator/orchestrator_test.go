package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kadirpekel/refactorctl/pkg/configresolver"
	"github.com/kadirpekel/refactorctl/pkg/lineage"
	"github.com/kadirpekel/refactorctl/pkg/llm"
)

type fakeProvider struct {
	name    string
	content string
}

func (p *fakeProvider) Name() string { return p.name }
func (p *fakeProvider) Complete(messages []llm.Message, opts llm.RequestOptions) (llm.Response, error) {
	return llm.Response{Content: p.content, FinishReason: llm.FinishStop}, nil
}
func (p *fakeProvider) SupportsTemperature() bool { return true }
func (p *fakeProvider) StreamingThreshold() int   { return 1 << 20 }

func newTestDeps(t *testing.T, root map[string]any) Deps {
	t.Helper()
	registry := llm.NewProviderRegistry()
	require.NoError(t, registry.Register(&fakeProvider{name: "anthropic", content: `{"result": "ok"}`}))
	return Deps{
		Root:      configresolver.NewNode(root),
		Providers: registry,
		Tracker:   lineage.NewTracker(t.TempDir(), lineage.NoopRemoteBackend{}),
	}
}

func TestInitializeWorkflowStampsRunIDAndProjectPath(t *testing.T) {
	_, ctx, err := InitializeWorkflow("/tmp/some-project", map[string]any{"description": "extract helper"}, map[string]any{})
	require.NoError(t, err)

	runID, ok := ctx.GetString("workflow_run_id")
	require.True(t, ok)
	assert.Contains(t, runID, "wf_")

	systemRunID, ok := ctx.GetString("system.runid")
	require.True(t, ok)
	assert.Equal(t, runID, systemRunID)

	projectPath, ok := ctx.GetString("project_path")
	require.True(t, ok)
	assert.Equal(t, "/tmp/some-project", projectPath)
}

func TestInitializeWorkflowRequiresAProjectPath(t *testing.T) {
	_, _, err := InitializeWorkflow("", nil, map[string]any{})
	require.Error(t, err)
}

func TestNewFallsBackToDefaultTeamsWhenConfigHasNone(t *testing.T) {
	orch, err := New(newTestDeps(t, map[string]any{}))
	require.NoError(t, err)

	for _, id := range []string{"discovery", "solution", "coder"} {
		_, ok := orch.teams[id]
		assert.True(t, ok, "expected default team %q", id)
	}
}

func TestExecuteWorkflowRunsDefaultChainToCompletion(t *testing.T) {
	orch, err := New(newTestDeps(t, map[string]any{}))
	require.NoError(t, err)

	_, ctx, err := InitializeWorkflow("/tmp/project", nil, map[string]any{})
	require.NoError(t, err)

	record, err := orch.ExecuteWorkflow("discovery", ctx, DefaultMaxTeams)
	require.NoError(t, err)
	assert.Equal(t, "success", record.Status)
	assert.Equal(t, []string{"discovery", "solution", "coder"}, record.ExecutionPath)
}

func TestExecuteWorkflowTripsExecutionLimitBeforeChainCompletes(t *testing.T) {
	orch, err := New(newTestDeps(t, map[string]any{}))
	require.NoError(t, err)

	_, ctx, err := InitializeWorkflow("/tmp/project", nil, map[string]any{})
	require.NoError(t, err)

	// The default chain is discovery -> solution -> coder; capping at 1
	// team must trip ExecutionLimit since "discovery" still routes on to
	// "solution".
	record, err := orch.ExecuteWorkflow("discovery", ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "error", record.Status)
	assert.Contains(t, record.Error, "maximum team limit")
	assert.Equal(t, 1, record.TeamsExecuted)
}

func TestExecuteWorkflowRejectsUnknownEntryTeam(t *testing.T) {
	orch, err := New(newTestDeps(t, map[string]any{}))
	require.NoError(t, err)

	_, ctx, err := InitializeWorkflow("/tmp/project", nil, map[string]any{})
	require.NoError(t, err)

	_, err = orch.ExecuteWorkflow("nonexistent", ctx, DefaultMaxTeams)
	require.Error(t, err)
}
