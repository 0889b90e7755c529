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

package httpserver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client submits workflows to a running Server and, optionally, polls
// until a terminal status — the CLI "client" mode
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{BaseURL: baseURL, HTTP: &http.Client{Timeout: 30 * time.Second}}
}

// Submit posts a new workflow and returns its initial status.
func (c *Client) Submit(req submitRequest) (workflowResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return workflowResponse{}, err
	}

	resp, err := c.HTTP.Post(c.BaseURL+"/api/v1/workflow", "application/json", bytes.NewReader(body))
	if err != nil {
		return workflowResponse{}, fmt.Errorf("submit workflow: %w", err)
	}
	defer resp.Body.Close()

	var out workflowResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return workflowResponse{}, fmt.Errorf("decode submit response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return out, fmt.Errorf("submit workflow failed with status %d", resp.StatusCode)
	}
	return out, nil
}

// Get polls a workflow's current status.
func (c *Client) Get(id string) (workflowResponse, error) {
	resp, err := c.HTTP.Get(c.BaseURL + "/api/v1/workflow/" + id)
	if err != nil {
		return workflowResponse{}, fmt.Errorf("get workflow: %w", err)
	}
	defer resp.Body.Close()

	var out workflowResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return workflowResponse{}, fmt.Errorf("decode get response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return out, fmt.Errorf("get workflow failed with status %d", resp.StatusCode)
	}
	return out, nil
}

// terminalStatuses are the workflow statuses Poll stops on.
var terminalStatuses = map[string]bool{
	"success": true,
	"error":   true,
	"failed":  true,
}

// Poll repeatedly calls Get until the workflow reaches a terminal status,
// maxPolls is exhausted, or interval sleeps maxPolls times without
// reaching one.
func (c *Client) Poll(id string, interval time.Duration, maxPolls int) (workflowResponse, error) {
	var last workflowResponse
	for i := 0; i < maxPolls; i++ {
		resp, err := c.Get(id)
		if err != nil {
			return resp, err
		}
		last = resp
		if terminalStatuses[resp.Status] {
			return resp, nil
		}
		time.Sleep(interval)
	}
	return last, fmt.Errorf("workflow %s did not reach a terminal status after %d polls", id, maxPolls)
}

// SubmitRequest and WorkflowResponse re-export the server's request/
// response shapes so callers outside this package (the CLI) can build
// them without reaching into unexported types.
type SubmitRequest = submitRequest
type WorkflowResponse = workflowResponse
