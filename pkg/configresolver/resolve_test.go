package configresolver

import (
	"testing"

	"github.com/kadirpekel/refactorctl/pkg/refoerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveAgentValueExplicitWins(t *testing.T) {
	n := NewNode(map[string]any{})
	v, err := n.ResolveAgentValue("discovery", "model", "explicit-model", "anthropic")
	require.NoError(t, err)
	assert.Equal(t, "explicit-model", v)
}

func TestResolveAgentValueFallsBackToAgentConfig(t *testing.T) {
	n := NewNode(map[string]any{
		"llm_config": map[string]any{
			"agents": map[string]any{
				"discovery": map[string]any{"model": "agent-model"},
			},
		},
	})
	v, err := n.ResolveAgentValue("discovery", "model", "", "anthropic")
	require.NoError(t, err)
	assert.Equal(t, "agent-model", v)
}

func TestResolveAgentValueFallsBackToProviderDefault(t *testing.T) {
	n := NewNode(map[string]any{
		"llm_config": map[string]any{
			"providers": map[string]any{
				"anthropic": map[string]any{"default_model": "provider-model"},
			},
		},
	})
	v, err := n.ResolveAgentValue("discovery", "model", "", "anthropic")
	require.NoError(t, err)
	assert.Equal(t, "provider-model", v)
}

func TestResolveAgentValueFallsBackToGlobalDefault(t *testing.T) {
	n := NewNode(map[string]any{
		"llm_config": map[string]any{"default_model": "global-model"},
	})
	v, err := n.ResolveAgentValue("discovery", "model", "", "anthropic")
	require.NoError(t, err)
	assert.Equal(t, "global-model", v)
}

func TestResolveAgentValueFailsWithConfigurationMissing(t *testing.T) {
	n := NewNode(map[string]any{})
	_, err := n.ResolveAgentValue("discovery", "model", "", "anthropic")
	require.Error(t, err)
	assert.True(t, refoerr.IsKind(err, refoerr.ConfigurationMissing))
}
