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

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/kadirpekel/refactorctl/pkg/httpserver"
)

// ClientCmd submits a workflow to a running service and, optionally,
// polls it until it reaches a terminal status.
type ClientCmd struct {
	URL          string        `required:"" help:"Base URL of the running service, e.g. http://localhost:8000."`
	ProjectPath  string        `required:"" help:"Path to the project being refactored." type:"path"`
	IntentFile   string        `help:"Path to a JSON file describing the refactoring intent." type:"path"`
	Poll         bool          `help:"Poll the workflow until it reaches a terminal status."`
	PollInterval time.Duration `help:"Delay between polls." default:"2s"`
	MaxPolls     int           `help:"Maximum number of polls before giving up." default:"150"`
}

func (c *ClientCmd) Run(cli *CLI) error {
	var intent map[string]any
	if c.IntentFile != "" {
		raw, err := os.ReadFile(c.IntentFile)
		if err != nil {
			return fmt.Errorf("failed to read intent file %s: %w", c.IntentFile, err)
		}
		if err := json.Unmarshal(raw, &intent); err != nil {
			return fmt.Errorf("failed to parse intent file %s: %w", c.IntentFile, err)
		}
	}

	client := httpserver.NewClient(c.URL)

	resp, err := client.Submit(httpserver.SubmitRequest{
		ProjectPath: c.ProjectPath,
		Intent:      intent,
	})
	if err != nil {
		return err
	}

	if !c.Poll {
		out, _ := json.MarshalIndent(resp, "", "  ")
		fmt.Println(string(out))
		return nil
	}

	final, err := client.Poll(resp.WorkflowID, c.PollInterval, c.MaxPolls)
	out, _ := json.MarshalIndent(final, "", "  ")
	fmt.Println(string(out))
	if err != nil {
		return err
	}
	if final.Status != "success" && final.Status != "started" {
		return fmt.Errorf("workflow %s finished with status %q", final.WorkflowID, final.Status)
	}
	return nil
}
