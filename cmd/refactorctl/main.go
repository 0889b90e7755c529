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

// Command refactorctl drives the LLM code-refactoring orchestrator from
// the command line in three modes: run a workflow
// in-process, serve it over HTTP, or submit one to a running service.
package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/kadirpekel/refactorctl/pkg/logger"
)

// CLI defines the command-line interface.
type CLI struct {
	Workflow WorkflowCmd `cmd:"" help:"Run a single refactoring workflow in-process."`
	Service  ServiceCmd  `cmd:"" help:"Start the workflow HTTP service."`
	Client   ClientCmd   `cmd:"" help:"Submit a workflow to a running service."`
	Replay   ReplayCmd   `cmd:"" help:"Inspect or resume from a recorded lineage event."`

	LogLevel string `help:"Log level (debug, normal, info, warn, error)." default:"normal"`
	LogFile  string `help:"Log file path (empty = stderr)." type:"path"`
}

func main() {
	_ = godotenv.Load() // optional; provider API keys may already be in the environment

	cli := CLI{}
	ctx := kong.Parse(&cli,
		kong.Name("refactorctl"),
		kong.Description("refactorctl - LLM-driven code refactoring orchestrator"),
		kong.UsageOnError(),
	)

	level, err := logger.ParseLevel(normalizeLogLevel(cli.LogLevel))
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid --log-level: %v\n", err)
		os.Exit(1)
	}

	var out *os.File = os.Stderr
	if cli.LogFile != "" {
		f, cleanup, err := logger.OpenLogFile(cli.LogFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to open log file: %v\n", err)
			os.Exit(1)
		}
		defer cleanup()
		out = f
	}
	logger.Init(level, out, "simple")

	err = ctx.Run(&cli)
	ctx.FatalIfErrorf(err)
}

// normalizeLogLevel maps the CLI's workflow-mode "debug"/"normal" pair
// onto the underlying slog level names.
func normalizeLogLevel(level string) string {
	if level == "normal" {
		return "info"
	}
	return level
}
