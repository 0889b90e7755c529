package agent

import (
	"testing"

	"github.com/kadirpekel/refactorctl/pkg/configresolver"
	"github.com/kadirpekel/refactorctl/pkg/lineage"
	"github.com/kadirpekel/refactorctl/pkg/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProvider is a stub llm.Provider returning one canned, non-length
// response, used to exercise the Agent Runtime without a real provider.
type fakeProvider struct {
	response llm.Response
	err      error
	calls    int
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) Complete(messages []llm.Message, opts llm.RequestOptions) (llm.Response, error) {
	p.calls++
	if p.err != nil {
		return llm.Response{}, p.err
	}
	return p.response, nil
}

func (p *fakeProvider) SupportsTemperature() bool { return true }
func (p *fakeProvider) StreamingThreshold() int    { return 1 << 20 }

func newTestAgent(t *testing.T, provider *fakeProvider) (*Agent, *lineage.Tracker) {
	t.Helper()
	root := configresolver.NewNode(map[string]any{
		"llm_config": map[string]any{
			"agents": map[string]any{
				"discovery": map[string]any{
					"provider": "fake",
					"model":    "fake-model",
					"prompts": map[string]any{
						"system": "you are a discovery agent",
					},
				},
			},
		},
	})
	tracker := lineage.NewTracker(t.TempDir(), lineage.NoopRemoteBackend{})
	a, err := New(Config{
		Kind:    KindDiscovery,
		Name:    "discovery",
		Root:    root,
		Client:  llm.NewClient(provider),
		Tracker: tracker,
	})
	require.NoError(t, err)
	return a, tracker
}

func TestAgentProcessSuccess(t *testing.T) {
	provider := &fakeProvider{response: llm.Response{
		Content:      "the refactor plan",
		FinishReason: llm.FinishStop,
		Model:        "fake-model",
	}}
	a, _ := newTestAgent(t, provider)

	ctx := configresolver.NewNode(map[string]any{"workflow_run_id": "wf_run"})
	resp := a.Process(ctx)

	require.True(t, resp.Success)
	assert.Empty(t, resp.Error)
	assert.Equal(t, "the refactor plan", resp.Data["response"])
	assert.NotEmpty(t, resp.Data["timestamp"])

	metrics := a.Metrics()
	assert.Equal(t, 1, metrics.TotalRequests)
	assert.Equal(t, 1, metrics.SuccessfulRequests)
	assert.Equal(t, 0, metrics.FailedRequests)
}

func TestAgentProcessFailureSetsError(t *testing.T) {
	provider := &fakeProvider{err: assertError("boom")}
	a, _ := newTestAgent(t, provider)

	ctx := configresolver.NewNode(map[string]any{"workflow_run_id": "wf_run"})
	resp := a.Process(ctx)

	require.False(t, resp.Success)
	assert.NotEmpty(t, resp.Error)

	metrics := a.Metrics()
	assert.Equal(t, 1, metrics.FailedRequests)
}

type assertError string

func (e assertError) Error() string { return string(e) }
