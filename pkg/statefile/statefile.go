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

// Package statefile writes the durable workflow completion marker:
// <workflow_root>/<YYMMDD_HHMM>_<run_id>/workflow_state.txt plus
// per-stage event logs under events/<NN>_<stage>.txt. It is the one
// piece of local persistence the CLI's "workflow" mode relies on to know
// a run finished.
package statefile

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kadirpekel/refactorctl/pkg/utils"
)

// State writes the workflow_state.txt marker and per-stage event logs
// for a single workflow run.
type State struct {
	dir string
}

// New creates the run directory <root>/<YYMMDD_HHMM>_<runID> and its
// events/ subdirectory.
func New(root, runID string) (*State, error) {
	dir := filepath.Join(root, fmt.Sprintf("%s_%s", time.Now().UTC().Format("060102_1504"), runID))
	if err := utils.EnsureDir(filepath.Join(dir, "events")); err != nil {
		return nil, err
	}
	return &State{dir: dir}, nil
}

// Dir returns the run's state directory.
func (s *State) Dir() string { return s.dir }

// MarkStarted writes workflow_state.txt with a "started" status.
func (s *State) MarkStarted() { s.writeStatus("started") }

// MarkCompleted writes workflow_state.txt with a "completed" status.
func (s *State) MarkCompleted() { s.writeStatus("completed") }

// MarkError writes workflow_state.txt with an "error: <message>" status.
func (s *State) MarkError(message string) { s.writeStatus(fmt.Sprintf("error: %s", message)) }

func (s *State) writeStatus(status string) {
	path := filepath.Join(s.dir, "workflow_state.txt")
	body := fmt.Sprintf("%s\n%s\n", time.Now().UTC().Format(time.RFC3339Nano), status)
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		// A failed state-file write must not take down the workflow; the
		// lineage trail remains the durable record either way.
		fmt.Fprintf(os.Stderr, "statefile: failed to write %s: %v\n", path, err)
	}
}

// WriteStageEvent writes a human-readable event log for the Nth stage,
// numbered per the events/<NN>_<stage>.txt convention. data is rendered
// as YAML for easy diffing and manual inspection.
func (s *State) WriteStageEvent(n int, stage string, data any) {
	path := filepath.Join(s.dir, "events", fmt.Sprintf("%02d_%s.txt", n, stage))
	rendered, err := yaml.Marshal(data)
	if err != nil {
		rendered = []byte(fmt.Sprintf("%+v\n", data))
	}
	body := fmt.Sprintf("%s\n%s", time.Now().UTC().Format(time.RFC3339Nano), rendered)
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "statefile: failed to write %s: %v\n", path, err)
	}
}
