package lineage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/kadirpekel/refactorctl/pkg/configresolver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveRunIDPriorityChain(t *testing.T) {
	ctx := configresolver.NewNode(map[string]any{
		"system":          map[string]any{"runid": "from-system"},
		"workflow_run_id": "from-workflow",
	})
	assert.Equal(t, "from-system", ResolveRunID(ctx))

	ctx2 := configresolver.NewNode(map[string]any{
		"workflow_run_id": "from-workflow",
	})
	assert.Equal(t, "from-workflow", ResolveRunID(ctx2))

	ctx3 := configresolver.NewNode(map[string]any{})
	id := ResolveRunID(ctx3)
	assert.NotEmpty(t, id)
}

func TestTrackWritesAtomicFileEvent(t *testing.T) {
	dir := t.TempDir()
	tracker := NewTracker(dir, NoopRemoteBackend{})

	ctx := configresolver.NewNode(map[string]any{
		"workflow_run_id": "wf_1200_abcd",
	})

	ev := tracker.Track(TrackParams{
		AgentName: "discovery",
		AgentType: "discovery",
		Context:   ctx,
		LLMInput:  LLMInput{System: "sys", User: "user"},
		LLMOutput: "some content",
	})

	require.NotEmpty(t, ev.EventID)
	require.Equal(t, "wf_1200_abcd", ev.Workflow.RunID)

	matches, err := filepath.Glob(filepath.Join(dir, "*", "wf_1200_abcd", "events", "*.json"))
	require.NoError(t, err)
	require.Len(t, matches, 1)

	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	var loaded Event
	require.NoError(t, json.Unmarshal(data, &loaded))
	assert.Equal(t, ev.EventID, loaded.EventID)

	// No leftover temp files.
	tmpMatches, _ := filepath.Glob(filepath.Join(dir, "*", "wf_1200_abcd", "events", "*.tmp"))
	assert.Empty(t, tmpMatches)
}

func TestTrackParentChainAcrossEvents(t *testing.T) {
	dir := t.TempDir()
	tracker := NewTracker(dir, NoopRemoteBackend{})

	rootCtx := configresolver.NewNode(map[string]any{"workflow_run_id": "wf_run"})
	first := tracker.Track(TrackParams{AgentName: "discovery", AgentType: "discovery", Context: rootCtx})

	childCtx := configresolver.NewNode(map[string]any{
		"workflow_run_id": "wf_run",
		"parent_id":       first.EventID,
		"lineage_metadata": map[string]any{
			"execution_path": first.Workflow.ExecutionPath,
		},
	})
	second := tracker.Track(TrackParams{AgentName: "solution_designer", AgentType: "solution_designer", Context: childCtx})

	assert.Equal(t, first.EventID, second.Workflow.ParentID)
	assert.Len(t, second.Workflow.ExecutionPath, len(first.Workflow.ExecutionPath)+1)
	assert.Equal(t, first.Workflow.ExecutionPath, second.Workflow.ExecutionPath[:len(first.Workflow.ExecutionPath)])
}
