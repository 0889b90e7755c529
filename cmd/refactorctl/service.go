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
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kadirpekel/refactorctl/pkg/configresolver"
	"github.com/kadirpekel/refactorctl/pkg/httpserver"
	"github.com/kadirpekel/refactorctl/pkg/lineage"
	"github.com/kadirpekel/refactorctl/pkg/llm"
	"github.com/kadirpekel/refactorctl/pkg/orchestrator"
	"github.com/kadirpekel/refactorctl/pkg/tracing"
)

// ServiceCmd starts the workflow HTTP service.
type ServiceCmd struct {
	Config      string `short:"c" required:"" help:"Path to the app config file." type:"path"`
	Port        int    `help:"Port to listen on." default:"8000"`
	EntryTeam   string `help:"Team to start submitted workflows at." default:"discovery"`
	MaxTeams    int    `help:"Maximum number of teams to execute per workflow." default:"10"`
	StorageRoot string `help:"Optional directory for per-workflow state files." type:"path"`
}

func (c *ServiceCmd) Run(cli *CLI) error {
	loader, err := configresolver.NewLoader(configresolver.LoaderOptions{Path: c.Config})
	if err != nil {
		return err
	}
	appConfig, err := loader.Load()
	if err != nil {
		return fmt.Errorf("failed to load config %s: %w", c.Config, err)
	}

	shutdownTracing, err := tracing.Init(context.Background(), tracing.ConfigFromMap(appConfig))
	if err != nil {
		return err
	}
	defer shutdownTracing(context.Background())

	providers := llm.NewProviderRegistry()
	if apiKey := os.Getenv("ANTHROPIC_API_KEY"); apiKey != "" {
		if err := providers.Register(llm.NewAnthropicProvider(apiKey, "")); err != nil {
			return err
		}
	}

	tracker := lineage.NewTracker(c.StorageRoot+"/lineage", lineage.NoopRemoteBackend{})

	orch, err := orchestrator.New(orchestrator.Deps{
		Root:      configresolver.NewNode(appConfig),
		Providers: providers,
		Tracker:   tracker,
	})
	if err != nil {
		return err
	}

	srv := httpserver.New(orch, c.EntryTeam, c.StorageRoot, c.MaxTeams)

	httpSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", c.Port),
		Handler: srv.Handler(),
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		slog.Info("service.shutting_down")
		shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 10*time.Second)
		defer shutdownCancel()
		_ = httpSrv.Shutdown(shutdownCtx)
		cancel()
	}()

	slog.Info("service.listening", "port", c.Port)
	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
