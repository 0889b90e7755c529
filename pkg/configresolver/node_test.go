package configresolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetDottedPath(t *testing.T) {
	n := NewNode(map[string]any{
		"llm_config": map[string]any{
			"agents": map[string]any{
				"discovery": map[string]any{"model": "claude-sonnet"},
			},
		},
	})
	v, ok := n.Get("llm_config.agents.discovery.model")
	require.True(t, ok)
	assert.Equal(t, "claude-sonnet", v)
}

func TestGetMissingPath(t *testing.T) {
	n := NewNode(map[string]any{"a": map[string]any{"b": 1}})
	_, ok := n.Get("a.c.d")
	assert.False(t, ok)
}

func TestGetWildcardSegment(t *testing.T) {
	n := NewNode(map[string]any{
		"llm_config": map[string]any{
			"providers": map[string]any{
				"anthropic": map[string]any{"default_model": "claude-sonnet"},
			},
		},
	})
	v, ok := n.Get("llm_config.providers.*.default_model")
	require.True(t, ok)
	assert.Equal(t, "claude-sonnet", v)
}

func TestGetNodeEquivalentToGet(t *testing.T) {
	n := NewNode(map[string]any{
		"a": map[string]any{"b": map[string]any{"c": "value"}},
	})
	direct, ok1 := n.Get("a.b.c")
	viaNode, ok2 := n.GetNode("a.b").Get("c")
	require.Equal(t, ok1, ok2)
	assert.Equal(t, direct, viaNode)
}

func TestGetNodeOnMissingPrefixReturnsEmptyNode(t *testing.T) {
	n := NewNode(map[string]any{"a": 1})
	sub := n.GetNode("missing.prefix")
	_, ok := sub.Get("anything")
	assert.False(t, ok)
}
