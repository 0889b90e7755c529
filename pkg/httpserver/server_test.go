package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kadirpekel/refactorctl/pkg/configresolver"
	"github.com/kadirpekel/refactorctl/pkg/orchestrator"
)

type fakeRunner struct {
	record orchestrator.Record
	err    error
	calls  int
}

func (r *fakeRunner) ExecuteWorkflow(entryTeam string, ctx *configresolver.Node, maxTeams int) (orchestrator.Record, error) {
	r.calls++
	return r.record, r.err
}

func TestHandleSubmitStartsWorkflowAsync(t *testing.T) {
	runner := &fakeRunner{record: orchestrator.Record{Status: "success"}}
	srv := New(runner, "discovery", "", 10)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	body, _ := json.Marshal(map[string]any{"project_path": "/tmp/project"})
	resp, err := http.Post(ts.URL+"/api/v1/workflow", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusAccepted, resp.StatusCode)

	var out workflowResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.NotEmpty(t, out.WorkflowID)
	assert.Equal(t, "started", out.Status)
}

func TestHandleSubmitRejectsMissingProjectPath(t *testing.T) {
	runner := &fakeRunner{}
	srv := New(runner, "discovery", "", 10)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	body, _ := json.Marshal(map[string]any{})
	resp, err := http.Post(ts.URL+"/api/v1/workflow", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandleGetReflectsCompletedStatus(t *testing.T) {
	runner := &fakeRunner{record: orchestrator.Record{Status: "success"}}
	srv := New(runner, "discovery", "", 10)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	body, _ := json.Marshal(map[string]any{"project_path": "/tmp/project"})
	resp, err := http.Post(ts.URL+"/api/v1/workflow", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	var submitted workflowResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&submitted))
	resp.Body.Close()

	require.Eventually(t, func() bool {
		getResp, err := http.Get(ts.URL + "/api/v1/workflow/" + submitted.WorkflowID)
		require.NoError(t, err)
		defer getResp.Body.Close()
		var out workflowResponse
		require.NoError(t, json.NewDecoder(getResp.Body).Decode(&out))
		return out.Status == "success"
	}, time.Second, 10*time.Millisecond)
}

func TestHandleGetReturnsNotFoundForUnknownID(t *testing.T) {
	srv := New(&fakeRunner{}, "discovery", "", 10)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/v1/workflow/does-not-exist")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
