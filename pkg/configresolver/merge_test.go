package configresolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeepMergeEmptyOverrideIsIdentity(t *testing.T) {
	base := map[string]any{
		"llm_config": map[string]any{
			"default_model": "claude-sonnet",
		},
		"logging": map[string]any{"level": "info"},
	}
	merged := DeepMerge(base, map[string]any{})
	assert.Equal(t, base, merged)
}

func TestDeepMergeNullDeletesKey(t *testing.T) {
	base := map[string]any{"a": 1, "b": 2}
	merged := DeepMerge(base, map[string]any{"a": nil})
	_, exists := merged["a"]
	assert.False(t, exists)
	assert.Equal(t, 2, merged["b"])
}

func TestDeepMergeSequencesReplaced(t *testing.T) {
	base := map[string]any{"tools": []any{"a", "b", "c"}}
	override := map[string]any{"tools": []any{"x"}}
	merged := DeepMerge(base, override)
	assert.Equal(t, []any{"x"}, merged["tools"])
}

func TestDeepMergeMapsRecursive(t *testing.T) {
	base := map[string]any{
		"llm_config": map[string]any{
			"agents": map[string]any{
				"discovery": map[string]any{"model": "a"},
			},
		},
	}
	override := map[string]any{
		"llm_config": map[string]any{
			"agents": map[string]any{
				"discovery": map[string]any{"temperature": 0.2},
			},
		},
	}
	merged := DeepMerge(base, override)
	agent := merged["llm_config"].(map[string]any)["agents"].(map[string]any)["discovery"].(map[string]any)
	assert.Equal(t, "a", agent["model"])
	assert.Equal(t, 0.2, agent["temperature"])
}

func TestDeepMergeRuntimeValuesPropagateToAgents(t *testing.T) {
	base := map[string]any{
		"llm_config": map[string]any{
			"agents": map[string]any{
				"discovery": map[string]any{"model": "a"},
				"coder":     map[string]any{"model": "b", "workflow_run_id": "keep-me"},
			},
		},
	}
	override := map[string]any{
		"workflow_run_id": "wf_1200_abcd",
	}
	merged := DeepMerge(base, override)
	agents := merged["llm_config"].(map[string]any)["agents"].(map[string]any)
	discovery := agents["discovery"].(map[string]any)
	coder := agents["coder"].(map[string]any)

	require.Equal(t, "wf_1200_abcd", discovery["workflow_run_id"])
	// coder already had its own value; it must not be overwritten.
	require.Equal(t, "keep-me", coder["workflow_run_id"])
}

func TestDeepMergeDoesNotMutateInputs(t *testing.T) {
	base := map[string]any{"a": map[string]any{"b": 1}}
	override := map[string]any{"a": map[string]any{"c": 2}}
	DeepMerge(base, override)
	_, hasC := base["a"].(map[string]any)["c"]
	assert.False(t, hasC)
}
