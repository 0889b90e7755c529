package replay

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kadirpekel/refactorctl/pkg/lineage"
)

func writeEvent(t *testing.T, ev lineage.Event) string {
	t.Helper()
	data, err := json.Marshal(ev)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "event.json")
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func discoveryEvent() lineage.Event {
	return lineage.Event{
		EventID:   "evt-1",
		Agent:     lineage.Agent{Name: "discovery", Type: "discovery"},
		Workflow:  lineage.Workflow{RunID: "wf_0101_abc", Step: 1, ExecutionPath: []string{"discovery"}},
		LLMOutput: "found three duplicated helpers",
	}
}

func TestPrepareContextFromLineageShapesDiscoveryToSolution(t *testing.T) {
	ev := discoveryEvent()
	config := map[string]any{"intent": map[string]any{"description": "dedupe helpers"}}

	ctx, err := PrepareContextFromLineage(&ev, "solution_designer", config, true)
	require.NoError(t, err)

	inputData, ok := ctx.Get("input_data")
	require.True(t, ok)
	m := inputData.(map[string]any)
	discoveryData := m["discovery_data"].(map[string]any)
	assert.Equal(t, "found three duplicated helpers", discoveryData["response"])
	assert.NotNil(t, m["intent"])

	runID, _ := ctx.GetString("workflow_run_id")
	assert.Equal(t, "wf_0101_abc", runID)
}

func TestPrepareContextFromLineageShapesSolutionToCoder(t *testing.T) {
	ev := lineage.Event{
		EventID:   "evt-2",
		Agent:     lineage.Agent{Name: "solution_designer"},
		Workflow:  lineage.Workflow{RunID: "wf_0101_xyz"},
		LLMOutput: map[string]any{"diff": "..."},
	}

	ctx, err := PrepareContextFromLineage(&ev, "coder", map[string]any{}, true)
	require.NoError(t, err)

	inputData, _ := ctx.Get("input_data")
	m := inputData.(map[string]any)
	assert.NotContains(t, m, "discovery_data")
	assert.NotContains(t, m, "intent")
}

func TestPrepareContextFromLineageGeneratesNewRunIDUnlessKept(t *testing.T) {
	ev := discoveryEvent()
	ctx, err := PrepareContextFromLineage(&ev, "solution_designer", map[string]any{}, false)
	require.NoError(t, err)

	runID, _ := ctx.GetString("workflow_run_id")
	assert.NotEqual(t, "wf_0101_abc", runID)
}

func TestPrepareContextFromLineageRejectsMissingRunID(t *testing.T) {
	ev := lineage.Event{Agent: lineage.Agent{Name: "discovery"}, LLMOutput: "x"}
	_, err := PrepareContextFromLineage(&ev, "solution_designer", map[string]any{}, true)
	require.Error(t, err)
}

func TestInspectLineageSummarizesEvent(t *testing.T) {
	ev := discoveryEvent()
	path := writeEvent(t, ev)

	summary, err := InspectLineage(path)
	require.NoError(t, err)
	assert.Contains(t, summary, "evt-1")
	assert.Contains(t, summary, "discovery")
	assert.Contains(t, summary, "wf_0101_abc")
}
