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

package lineage

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/kadirpekel/refactorctl/pkg/configresolver"
)

// Tracker picks a stable run id per workflow and writes one Event per
// track_llm_interaction call, following
// c4h_agents/agents/base_lineage.py.
type Tracker struct {
	root   string
	remote RemoteBackend
}

// RemoteBackend is the optional Marquez/OpenLineage-style collector.
// Its absence, or any failure within it, must never fail the caller.
type RemoteBackend interface {
	EmitComplete(ctx Event) error
}

func NewTracker(root string, remote RemoteBackend) *Tracker {
	return &Tracker{root: root, remote: remote}
}

// ResolveRunID implements the priority chain:
// system.runid -> workflow_run_id -> runtime.workflow_run_id ->
// runtime.run_id -> runtime.workflow.id -> freshly generated UUID.
func ResolveRunID(ctx *configresolver.Node) string {
	candidates := []string{
		"system.runid",
		"workflow_run_id",
		"runtime.workflow_run_id",
		"runtime.run_id",
		"runtime.workflow.id",
	}
	for _, path := range candidates {
		if v, ok := ctx.GetString(path); ok && v != "" {
			return v
		}
	}
	return uuid.NewString()
}

// resolveParentID implements: explicit parent_id -> parent_run_id ->
// workflow-run-id if it differs from self's run id, else none.
func resolveParentID(ctx *configresolver.Node, selfRunID string) string {
	if v, ok := ctx.GetString("parent_id"); ok && v != "" {
		return v
	}
	if v, ok := ctx.GetString("parent_run_id"); ok && v != "" {
		return v
	}
	if v, ok := ctx.GetString("workflow_run_id"); ok && v != "" && v != selfRunID {
		return v
	}
	return ""
}

func resolveStep(ctx *configresolver.Node) int {
	for _, path := range []string{"step", "sequence"} {
		if v, ok := ctx.Get(path); ok {
			switch n := v.(type) {
			case int:
				return n
			case float64:
				return int(n)
			}
		}
	}
	return 0
}

func resolveExecutionPath(ctx *configresolver.Node, agentType, eventID string) []string {
	var inherited []string
	if v, ok := ctx.Get("lineage_metadata.execution_path"); ok {
		if seq, ok := v.([]string); ok {
			inherited = append(inherited, seq...)
		} else if seq, ok := v.([]any); ok {
			for _, item := range seq {
				if s, ok := item.(string); ok {
					inherited = append(inherited, s)
				}
			}
		}
	}
	short := eventID
	if len(short) > 8 {
		short = short[:8]
	}
	return append(inherited, fmt.Sprintf("%s:%s", agentType, short))
}

// TrackParams is the input to one track_llm_interaction call.
type TrackParams struct {
	EventID   string // optional; generated if empty
	AgentName string
	AgentType string
	Context   *configresolver.Node
	LLMInput  LLMInput
	LLMOutput any
	Metrics   map[string]any
	Err       error
}

// Track derives identifiers, builds an Event, and attempts to persist it
// to the file backend and the optional remote backend. Per the failure
// policy in and 4.E, any tracking error is logged and
// swallowed — Track never returns an error to the caller.
func (t *Tracker) Track(p TrackParams) *Event {
	eventID := p.EventID
	if eventID == "" {
		eventID = uuid.NewString()
	}
	runID := ResolveRunID(p.Context)

	ev := &Event{
		EventID:   eventID,
		Timestamp: time.Now().UTC(),
		Agent:     Agent{Name: p.AgentName, Type: p.AgentType},
		Workflow: Workflow{
			RunID:         runID,
			ParentID:      resolveParentID(p.Context, runID),
			Step:          resolveStep(p.Context),
			ExecutionPath: resolveExecutionPath(p.Context, p.AgentType, eventID),
		},
		LLMInput:  p.LLMInput,
		LLMOutput: SerializeValue(p.LLMOutput),
		Metrics:   p.Metrics,
	}
	if p.Err != nil {
		ev.Error = p.Err.Error()
	}

	if err := t.writeFileEvent(ev); err != nil {
		slog.Warn("lineage write failed", "event_id", eventID, "error", err)
	}

	if t.remote != nil {
		if err := t.remote.EmitComplete(*ev); err != nil {
			slog.Warn("lineage remote emit failed", "event_id", eventID, "error", err)
		}
	}

	return ev
}

// writeFileEvent stores the event at
// <root>/<YYYYMMDD>/<run_id>/events/<event_id>.json, writing to a temp
// file then renaming into place so readers never observe a partial
// write. Reserved subdirectories errors/, inputs/, outputs/ are created
// alongside events/ for forward compatibility.
func (t *Tracker) writeFileEvent(ev *Event) error {
	dayDir := ev.Timestamp.Format("20060102")
	runDir := filepath.Join(t.root, dayDir, ev.Workflow.RunID)
	eventsDir := filepath.Join(runDir, "events")

	for _, sub := range []string{"events", "errors", "inputs", "outputs"} {
		if err := os.MkdirAll(filepath.Join(runDir, sub), 0o755); err != nil {
			return fmt.Errorf("failed to create %s dir: %w", sub, err)
		}
	}

	data, err := json.MarshalIndent(ev, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	finalPath := filepath.Join(eventsDir, ev.EventID+".json")
	tmpFile, err := os.CreateTemp(eventsDir, ev.EventID+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, finalPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename into place: %w", err)
	}

	return nil
}

// LoadEvent reads back a previously written event file, used by the
// lineage replay path.
func LoadEvent(path string) (*Event, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read event file: %w", err)
	}
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, fmt.Errorf("failed to parse event file: %w", err)
	}
	return &ev, nil
}
